package audit

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Auditor runs the Progressive Trust phases against one repository.
type Auditor struct {
	repo      Repository
	files     FileReader
	standards StandardsSource
	prompter  Prompter
	opener    URLOpener
	reporter  Reporter
	skipStd   bool
}

type Option func(*Auditor)

func WithFileReader(f FileReader) Option {
	return func(a *Auditor) {
		a.files = f
	}
}

func WithStandardsSource(s StandardsSource) Option {
	return func(a *Auditor) {
		a.standards = s
	}
}

func WithPrompter(p Prompter, open URLOpener) Option {
	return func(a *Auditor) {
		a.prompter = p
		a.opener = open
	}
}

func WithReporter(r Reporter) Option {
	return func(a *Auditor) {
		a.reporter = r
	}
}

// WithoutStandards skips phase 5. The check is reported as skipped and
// counted as passed.
func WithoutStandards() Option {
	return func(a *Auditor) {
		a.skipStd = true
	}
}

func New(repo Repository, opts ...Option) *Auditor {
	a := &Auditor{
		repo:     repo,
		files:    osFiles{},
		reporter: nopReporter{},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Report is the result of one audit run.
type Report struct {
	Commit     *InceptionCommit `json:"commit"`
	DID        string           `json:"did"`
	Signature  *SignatureInfo   `json:"signature,omitempty"`
	Identity   *IdentityInfo    `json:"identity,omitempty"`
	Standards  *StandardsReport `json:"standards,omitempty"`
	Assessment *TrustAssessment `json:"-"`
	Verdict    Verdict          `json:"verdict"`
}

// Outcomes returns the per-check outcomes in execution order.
func (r *Report) Outcomes() []CheckOutcome {
	return r.Assessment.Outcomes()
}

// Err aggregates the errors of all failed checks, or nil when every check
// passed.
func (r *Report) Err() error {
	var errs *multierror.Error
	for _, o := range r.Assessment.Outcomes() {
		if o.Err != nil {
			errs = multierror.Append(errs, errors.Wrapf(o.Err, "%s (phase %d)", o.Name, o.Phase))
		}
	}
	return errs.ErrorOrNil()
}

// Run executes every phase in order. Each phase runs regardless of earlier
// outcomes; only a missing or unreadable inception commit aborts the run, in
// which case the returned error is classified and the report is nil.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	as := NewTrustAssessment()

	hash, err := LocateInceptionCommit(a.repo)
	if err != nil {
		return nil, err
	}
	commit, err := LoadInceptionCommit(a.repo, hash)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("located inception commit %s", commit.Hash)

	rep := &Report{Commit: commit, DID: commit.DID(), Assessment: as}

	a.reporter.BeginPhase(2, PhaseTitle(2))
	a.record(as, CheckStructure, ValidateStructure(commit), fmt.Sprintf("inception commit %s is a root commit with an intact object", commit.Hash))
	a.record(as, CheckContent, ValidateContent(a.repo, commit), fmt.Sprintf("inception commit is empty (tree %s)", commit.Tree))
	a.record(as, CheckFormat, ValidateFormat(commit), "commit message carries the initialization line and a sign-off")

	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	a.reporter.BeginPhase(3, PhaseTitle(3))
	sig, err := AuthenticateSignature(a.repo, a.files, commit)
	rep.Signature = sig
	var sigDetail []string
	if sig != nil {
		if sig.Anchor != nil && sig.Anchor.File != "" {
			sigDetail = append(sigDetail, fmt.Sprintf("trust anchor: %s (%s)", sig.Anchor.File, sig.Anchor.Scope))
		}
		if sig.Fingerprint != "" {
			sigDetail = append(sigDetail, fmt.Sprintf("key: %s %s", sig.KeyType, sig.Fingerprint))
		}
	}
	a.record(as, CheckSignature, err, "signature authenticated against the trust anchor", sigDetail...)

	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	a.reporter.BeginPhase(4, PhaseTitle(4))
	var anchor *TrustAnchorConfig
	if sig != nil {
		anchor = sig.Anchor
	}
	id, err := AffirmIdentity(a.repo, commit, anchor)
	rep.Identity = id
	var idDetail []string
	if id != nil && err == nil {
		idDetail = append(idDetail, "committer: "+id.CommitterName)
	}
	a.record(as, CheckIdentity, err, "committer name matches the signing key fingerprint", idDetail...)

	a.reporter.BeginPhase(5, PhaseTitle(5))
	var (
		std    *StandardsReport
		stdErr error
	)
	if a.skipStd {
		std = &StandardsReport{Skipped: true, Reason: "disabled"}
	} else {
		std, stdErr = SurfaceStandards(ctx, a.standards, a.prompter, a.opener)
	}
	rep.Standards = std
	stdMsg := "community standards surfaced"
	var stdDetail []string
	if std != nil {
		switch {
		case std.Skipped:
			stdMsg = "community standards check skipped: " + std.Reason
		default:
			stdDetail = append(stdDetail, fmt.Sprintf("%s health: %d%%", std.Repository, std.HealthPercentage))
			if len(std.Missing) > 0 {
				stdDetail = append(stdDetail, fmt.Sprintf("missing: %v", std.Missing))
			}
			if std.URL != "" {
				stdDetail = append(stdDetail, "review: "+std.URL)
			}
		}
	}
	a.record(as, CheckStandards, stdErr, stdMsg, stdDetail...)

	rep.Verdict = as.Verdict()
	return rep, nil
}

func (a *Auditor) record(as *TrustAssessment, name CheckName, err error, okMsg string, detail ...string) {
	if rerr := as.Record(name, err == nil, err); rerr != nil {
		logrus.Errorf("%v", rerr)
		return
	}
	ev := Event{
		Check:  name,
		Phase:  name.Phase(),
		Passed: err == nil,
		Detail: detail,
	}
	switch {
	case err == nil:
		ev.Severity = SeverityInfo
		ev.Message = okMsg
	case name.Local():
		ev.Severity = SeverityCritical
	default:
		ev.Severity = SeverityWarning
	}
	if err != nil {
		ev.Message = err.Error()
		ev.Remedy = RemedyOf(err)
		if k := KindOf(err); k != KindUnknown {
			ev.Kind = k.String()
		}
	}
	a.reporter.Report(ev)
}
