package audit

import (
	"github.com/pkg/errors"
)

// CheckName identifies one of the six Progressive Trust checks.
type CheckName string

const (
	CheckStructure CheckName = "structure"
	CheckContent   CheckName = "content"
	CheckFormat    CheckName = "format"
	CheckSignature CheckName = "signature"
	CheckIdentity  CheckName = "identity"
	CheckStandards CheckName = "standards"
)

// Checks lists every check in execution order.
func Checks() []CheckName {
	return []CheckName{CheckStructure, CheckContent, CheckFormat, CheckSignature, CheckIdentity, CheckStandards}
}

// Phase returns the fixed Progressive Trust phase of the check, or 0 for an
// unknown name.
func (c CheckName) Phase() int {
	switch c {
	case CheckStructure, CheckContent, CheckFormat:
		return 2
	case CheckSignature:
		return 3
	case CheckIdentity:
		return 4
	case CheckStandards:
		return 5
	default:
		return 0
	}
}

// Local reports whether a failure of the check breaks local trust. Phases 2
// and 3 are local, 4 and 5 are remote and advisory.
func (c CheckName) Local() bool {
	p := c.Phase()
	return p >= 2 && p <= 3
}

// PhaseTitle names a Progressive Trust phase for display.
func PhaseTitle(phase int) string {
	switch phase {
	case 2:
		return "Wholeness"
	case 3:
		return "Proofs"
	case 4:
		return "References"
	case 5:
		return "Requirements"
	default:
		return ""
	}
}

// CheckOutcome is the recorded result of a single check.
type CheckOutcome struct {
	Name     CheckName `json:"name"`
	Phase    int       `json:"phase"`
	Passed   bool      `json:"passed"`
	Recorded bool      `json:"-"`
	Err      error     `json:"-"`
}

// TrustAssessment holds the outcome of every check for one audit run. It is
// created fresh per run and threaded through the phases.
type TrustAssessment struct {
	outcomes map[CheckName]*CheckOutcome
}

func NewTrustAssessment() *TrustAssessment {
	a := &TrustAssessment{outcomes: make(map[CheckName]*CheckOutcome, len(Checks()))}
	for _, c := range Checks() {
		a.outcomes[c] = &CheckOutcome{Name: c, Phase: c.Phase()}
	}
	return a
}

// Record stores the result of a check. Each check is recorded at most once;
// a second call is rejected so a passed check can never flip to failed.
func (a *TrustAssessment) Record(name CheckName, passed bool, err error) error {
	o, ok := a.outcomes[name]
	if !ok {
		return errors.Errorf("unknown check %q", name)
	}
	if o.Recorded {
		return errors.Errorf("check %q already recorded", name)
	}
	o.Passed = passed
	o.Err = err
	o.Recorded = true
	return nil
}

// Passed reports whether the named check passed.
func (a *TrustAssessment) Passed(name CheckName) bool {
	if o, ok := a.outcomes[name]; ok {
		return o.Passed
	}
	return false
}

// Outcome returns a copy of the named check's outcome.
func (a *TrustAssessment) Outcome(name CheckName) (CheckOutcome, bool) {
	o, ok := a.outcomes[name]
	if !ok {
		return CheckOutcome{}, false
	}
	return *o, true
}

// Outcomes returns every outcome in execution order.
func (a *TrustAssessment) Outcomes() []CheckOutcome {
	out := make([]CheckOutcome, 0, len(a.outcomes))
	for _, c := range Checks() {
		out = append(out, *a.outcomes[c])
	}
	return out
}

// LocalPassed is the conjunction of all phase 2 and 3 checks.
func (a *TrustAssessment) LocalPassed() bool {
	return a.all(func(c CheckName) bool { return c.Local() })
}

// RemotePassed is the conjunction of all phase 4 and 5 checks.
func (a *TrustAssessment) RemotePassed() bool {
	return a.all(func(c CheckName) bool { return c.Phase() >= 4 })
}

func (a *TrustAssessment) all(filter func(CheckName) bool) bool {
	for _, c := range Checks() {
		if filter(c) && !a.outcomes[c].Passed {
			return false
		}
	}
	return true
}

// Verdict is derived from an assessment and never stored.
type Verdict struct {
	LocalPassed  bool `json:"localPassed"`
	RemotePassed bool `json:"remotePassed"`
	ExitStatus   int  `json:"exitStatus"`
}

// Verdict computes the final classification. Only local checks decide the
// exit status; remote failures are warnings.
func (a *TrustAssessment) Verdict() Verdict {
	v := Verdict{
		LocalPassed:  a.LocalPassed(),
		RemotePassed: a.RemotePassed(),
		ExitStatus:   ExitSuccess,
	}
	if !v.LocalPassed {
		v.ExitStatus = ExitGeneralFailure
	}
	return v
}
