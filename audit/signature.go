package audit

import (
	"fmt"
	"strings"

	"github.com/moby/buildkit/util/gitutil/gitsign"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

const (
	sshSignatureHeader = "-----BEGIN SSH SIGNATURE-----"
	pgpSignatureHeader = "-----BEGIN PGP SIGNATURE-----"
	x509SignatureHead  = "-----BEGIN SIGNED MESSAGE-----"

	signRemedy = "Sign the inception commit with an SSH key:\n\n  git -c gpg.format=ssh -c user.signingkey=~/.ssh/id_ed25519.pub commit --allow-empty -S -s -m \"" + InitializationMessage + "\""
)

// SignatureInfo describes the inception commit signature.
type SignatureInfo struct {
	Type    string `json:"type"`
	Version int    `json:"version,omitempty"`
	// Namespace is the namespace declared inside the signature block.
	Namespace string `json:"namespace,omitempty"`
	// EmbeddedFingerprint is the fingerprint of the public key carried in
	// the signature block. It is not authenticated on its own.
	EmbeddedFingerprint string `json:"embeddedFingerprint,omitempty"`
	// KeyType and Fingerprint are reported by the verifier after a
	// successful authentication.
	KeyType     string             `json:"keyType,omitempty"`
	Fingerprint string             `json:"fingerprint,omitempty"`
	Principal   string             `json:"principal,omitempty"`
	Anchor      *TrustAnchorConfig `json:"anchor,omitempty"`
	Diagnosis   string             `json:"diagnosis,omitempty"`
}

// ParseSignatureBlock confirms the commit carries an SSH signature and
// describes it.
func ParseSignatureBlock(c *InceptionCommit) (*SignatureInfo, error) {
	block := strings.TrimSpace(c.Signature)
	if block == "" {
		return nil, newError(GitFailure, signRemedy, "no signature found on inception commit %s", c.Hash)
	}
	if !strings.HasPrefix(block, sshSignatureHeader) {
		kind := "unrecognized"
		switch {
		case strings.HasPrefix(block, pgpSignatureHeader):
			kind = "PGP"
		case strings.HasPrefix(block, x509SignatureHead):
			kind = "X.509"
		}
		return nil, newError(GitFailure, signRemedy, "inception commit %s carries a %s signature, expected an SSH signature", c.Hash, kind)
	}
	sig, err := gitsign.ParseSignature([]byte(block))
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrapf(err, "malformed SSH signature on inception commit %s", c.Hash), signRemedy)
	}
	if sig.SSHSignature == nil {
		return nil, newError(GitFailure, signRemedy, "malformed SSH signature on inception commit %s", c.Hash)
	}
	info := &SignatureInfo{
		Type:      "ssh",
		Version:   int(sig.SSHSignature.Version),
		Namespace: sig.SSHSignature.Namespace,
	}
	if pk := sig.SSHSignature.PublicKey; pk != nil {
		info.EmbeddedFingerprint = ssh.FingerprintSHA256(pk)
	}
	return info, nil
}

// AuthenticateSignature verifies the inception commit signature against the
// resolved trust anchor. It is the only check performing cryptographic
// validation.
func AuthenticateSignature(repo Repository, files FileReader, c *InceptionCommit) (*SignatureInfo, error) {
	info, err := ParseSignatureBlock(c)
	if err != nil {
		return nil, err
	}

	anchor, err := ResolveTrustAnchor(repo, files)
	info.Anchor = anchor
	if err != nil {
		return info, err
	}

	ok, diag, err := repo.VerifySignature(c.Hash, anchor.File)
	if err != nil {
		return info, Wrap(GitFailure, errors.Wrapf(err, "failed to verify signature of %s", c.Hash), "")
	}
	logrus.Debugf("signature verification of %s against %s: ok=%v output=%q", c.Hash, anchor.File, ok, diag)

	d := ClassifyVerification(ok, diag)
	entry, hasEntry := signerFor(anchor.Signers, info.EmbeddedFingerprint)
	if d == DiagnosisGood && hasEntry && !entry.AllowsGit() {
		d = DiagnosisNamespace
	}
	info.Diagnosis = d.String()

	switch d {
	case DiagnosisNamespace:
		remedy := fmt.Sprintf("Every entry in %s must allow the git namespace, for example:\n\n  %s", anchor.File, allowedSignersExample)
		if hasEntry {
			remedy = fmt.Sprintf("Change line %d of %s to:\n\n  %s", entry.Line, anchor.File, entry.Corrected())
		}
		return info, newError(ConfigError, remedy,
			"trust anchor %s does not allow the \"git\" namespace for the signing key %s: %s", anchor.File, info.EmbeddedFingerprint, oneLine(diag))
	case DiagnosisMissingConfig:
		return info, newError(ConfigError,
			fmt.Sprintf("Set the allowed signers file:\n\n  git config%s %s %s", scopeFlag(anchor.Scope), AllowedSignersKey, anchor.File),
			"git has no allowed signers file configured: %s", oneLine(diag))
	case DiagnosisBadSignature:
		remedy := fmt.Sprintf("Confirm the signing key is listed in %s:\n\n  %s", anchor.File, allowedSignersLineFormat)
		if !hasEntry && info.EmbeddedFingerprint != "" {
			remedy = fmt.Sprintf("The signing key %s is not listed in %s. Add it as:\n\n  %s", info.EmbeddedFingerprint, anchor.File, allowedSignersLineFormat)
		}
		return info, newError(GitFailure, remedy,
			"signature verification of inception commit %s failed against %s: %s", c.Hash, anchor.File, oneLine(diag))
	}

	info.KeyType, info.Fingerprint = ParseKeyInfo(diag)
	info.Principal = ParsePrincipal(diag)
	return info, nil
}

func oneLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(no diagnostic output)"
	}
	return strings.Join(strings.Fields(s), " ")
}
