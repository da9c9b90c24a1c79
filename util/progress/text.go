package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/morikuni/aec"
	"github.com/openintegrity/oi-audit/audit"
	"github.com/sirupsen/logrus"
)

const (
	markPassed  = "✓"
	markFailed  = "✗"
	markWarning = "!"
)

type textPrinter struct {
	out   io.Writer
	color bool
	quiet bool

	// phase header is deferred so quiet mode prints it only when a check in
	// the phase fails
	pending string
}

func (p *textPrinter) apply(s string, attrs ...aec.ANSI) string {
	if !p.color {
		return s
	}
	return aec.Apply(s, attrs...)
}

func (p *textPrinter) BeginPhase(phase int, title string) {
	p.pending = fmt.Sprintf("Phase %d: %s", phase, title)
	if !p.quiet {
		p.flushHeader()
	}
}

func (p *textPrinter) flushHeader() {
	if p.pending == "" {
		return
	}
	fmt.Fprintln(p.out, p.apply(p.pending, aec.Bold))
	p.pending = ""
}

func (p *textPrinter) Report(ev audit.Event) {
	if p.quiet && ev.Passed {
		return
	}
	p.flushHeader()

	var mark string
	switch {
	case ev.Passed:
		mark = p.apply(markPassed, aec.GreenF)
	case ev.Severity == audit.SeverityWarning:
		mark = p.apply(markWarning, aec.YellowF)
	default:
		mark = p.apply(markFailed, aec.RedF)
	}

	line := fmt.Sprintf(" %s %s: %s", mark, ev.Check, ev.Message)
	if !ev.Passed && ev.Severity == audit.SeverityWarning {
		line += p.apply(" (warning only)", aec.YellowF)
	}
	fmt.Fprintln(p.out, line)

	if !ev.Passed || logrus.GetLevel() >= logrus.InfoLevel {
		for _, d := range ev.Detail {
			fmt.Fprintf(p.out, "     %s\n", d)
		}
	}
	if ev.Remedy != "" {
		for i, l := range strings.Split(ev.Remedy, "\n") {
			if i == 0 {
				fmt.Fprintf(p.out, "     %s %s\n", p.apply("remedy:", aec.Faint), l)
				continue
			}
			fmt.Fprintf(p.out, "       %s\n", l)
		}
	}
}

func (p *textPrinter) Finish(rep *audit.Report) error {
	if !p.quiet {
		fmt.Fprintln(p.out)
		fmt.Fprintf(p.out, "Inception commit: %s\n", rep.Commit.Hash)
		fmt.Fprintf(p.out, "Repository DID:   %s\n", rep.DID)
	}

	var remote []string
	for _, o := range rep.Outcomes() {
		if !o.Name.Local() && !o.Passed {
			remote = append(remote, string(o.Name))
		}
	}

	var verdict string
	if rep.Verdict.LocalPassed {
		verdict = p.apply("PASSED", aec.GreenF, aec.Bold)
	} else {
		verdict = p.apply("FAILED", aec.RedF, aec.Bold)
	}
	summary := fmt.Sprintf("Inception commit audit %s", verdict)
	if len(remote) > 0 {
		summary += p.apply(fmt.Sprintf(" (%d remote warning(s): %s)", len(remote), strings.Join(remote, ", ")), aec.YellowF)
	}
	_, err := fmt.Fprintln(p.out, summary)
	return err
}
