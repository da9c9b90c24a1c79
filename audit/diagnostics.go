package audit

import (
	"regexp"
	"strings"
)

// Diagnosis classifies the text produced by the signature verifier. The
// matched phrases come from git and ssh-keygen output and are an external
// contract; everything that depends on them goes through
// ClassifyVerification.
type Diagnosis int

const (
	DiagnosisGood Diagnosis = iota
	// DiagnosisNamespace means the allowed-signers entries lack or reject
	// the "git" namespace.
	DiagnosisNamespace
	// DiagnosisMissingConfig means git had no allowed-signers file to use.
	DiagnosisMissingConfig
	DiagnosisBadSignature
)

func (d Diagnosis) String() string {
	switch d {
	case DiagnosisGood:
		return "good"
	case DiagnosisNamespace:
		return "namespace-mismatch"
	case DiagnosisMissingConfig:
		return "missing-configuration"
	default:
		return "bad-signature"
	}
}

// Kind returns the error kind a failed verification is reported as.
func (d Diagnosis) Kind() Kind {
	switch d {
	case DiagnosisGood:
		return KindUnknown
	case DiagnosisNamespace, DiagnosisMissingConfig:
		return ConfigError
	default:
		return GitFailure
	}
}

// ClassifyVerification maps the verifier result to a diagnosis.
func ClassifyVerification(ok bool, diag string) Diagnosis {
	lower := strings.ToLower(diag)
	switch {
	case strings.Contains(lower, "namespace"):
		return DiagnosisNamespace
	case strings.Contains(lower, "allowedsignersfile needs to be configured"),
		strings.Contains(lower, "allowedsignersfile not configured"):
		return DiagnosisMissingConfig
	case ok:
		return DiagnosisGood
	default:
		return DiagnosisBadSignature
	}
}

var keyInfoRe = regexp.MustCompile(`with ([A-Za-z0-9-]+) key ([A-Za-z0-9-]+:[A-Za-z0-9+/=]+)`)

// ParseKeyInfo extracts the key type and fingerprint from a successful
// verification message such as
//
//	Good "git" signature for alice@example.com with ED25519 key SHA256:...
//
// Both results are empty when the text carries no fingerprint.
func ParseKeyInfo(diag string) (keyType, fingerprint string) {
	m := keyInfoRe.FindStringSubmatch(diag)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

var principalRe = regexp.MustCompile(`Good "[^"]*" signature for (\S+)`)

// ParsePrincipal extracts the matched allowed-signers principal.
func ParsePrincipal(diag string) string {
	m := principalRe.FindStringSubmatch(diag)
	if m == nil {
		return ""
	}
	return m[1]
}
