package progress

import (
	"io"
	"os"

	"github.com/openintegrity/oi-audit/audit"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

const (
	PrinterModeText  = "text"
	PrinterModeQuiet = "quiet"
	PrinterModeJSON  = "json"
)

// Printer renders audit events as they are reported and a final summary
// once the run completes.
type Printer interface {
	audit.Reporter
	Finish(rep *audit.Report) error
}

type printerOpts struct {
	color bool
}

type PrinterOpt func(b *printerOpts)

// WithColor enables ANSI colors in text output.
func WithColor(enabled bool) PrinterOpt {
	return func(opt *printerOpts) {
		opt.color = enabled
	}
}

func NewPrinter(out io.Writer, mode string, opts ...PrinterOpt) (Printer, error) {
	opt := &printerOpts{}
	for _, o := range opts {
		o(opt)
	}

	switch mode {
	case PrinterModeText, "":
		return &textPrinter{out: out, color: opt.color}, nil
	case PrinterModeQuiet:
		return &textPrinter{out: out, color: opt.color, quiet: true}, nil
	case PrinterModeJSON:
		return &jsonPrinter{out: out}, nil
	default:
		return nil, audit.Wrap(audit.UsageError, errors.Errorf("invalid output format %q", mode), "Use --format text or --format json.")
	}
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ColorEnabled resolves whether colors should be used on w. An explicit
// setting wins over NO_COLOR, which wins over terminal detection.
func ColorEnabled(w io.Writer, explicit *bool) bool {
	if explicit != nil {
		return *explicit
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(w)
}
