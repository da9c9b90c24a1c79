package progress

import (
	"encoding/json"
	"io"

	"github.com/openintegrity/oi-audit/audit"
)

type jsonPrinter struct {
	out    io.Writer
	events []audit.Event
}

type jsonReport struct {
	Commit    string                 `json:"commit"`
	DID       string                 `json:"did"`
	Verdict   jsonVerdict            `json:"verdict"`
	Events    []audit.Event          `json:"events"`
	Signature *audit.SignatureInfo   `json:"signature,omitempty"`
	Identity  *audit.IdentityInfo    `json:"identity,omitempty"`
	Standards *audit.StandardsReport `json:"standards,omitempty"`
}

type jsonVerdict struct {
	LocalPassed  bool `json:"localPassed"`
	RemotePassed bool `json:"remotePassed"`
	ExitStatus   int  `json:"exitStatus"`
}

func (p *jsonPrinter) BeginPhase(int, string) {}

func (p *jsonPrinter) Report(ev audit.Event) {
	p.events = append(p.events, ev)
}

func (p *jsonPrinter) Finish(rep *audit.Report) error {
	out := jsonReport{
		Commit: rep.Commit.Hash,
		DID:    rep.DID,
		Verdict: jsonVerdict{
			LocalPassed:  rep.Verdict.LocalPassed,
			RemotePassed: rep.Verdict.RemotePassed,
			ExitStatus:   rep.Verdict.ExitStatus,
		},
		Events:    p.events,
		Signature: rep.Signature,
		Identity:  rep.Identity,
		Standards: rep.Standards,
	}
	if out.Events == nil {
		out.Events = []audit.Event{}
	}
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
