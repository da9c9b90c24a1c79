package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openintegrity/oi-audit/audit"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Terminal asks questions on an interactive terminal.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

var _ audit.Prompter = &Terminal{}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Confirm prints question with a [y/N] hint and reads one answer. An empty
// answer or end of input selects def.
func (t *Terminal) Confirm(question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		fmt.Fprintf(t.out, "%s %s ", question, hint)
		line, err := t.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return def, errors.Wrap(err, "failed to read answer")
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(t.out)
			}
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if errors.Is(err, io.EOF) {
			return def, nil
		}
		fmt.Fprintln(t.out, "Please answer yes or no.")
	}
}

// NonInteractive answers every question with its default.
type NonInteractive struct{}

func (NonInteractive) Confirm(_ string, def bool) (bool, error) {
	return def, nil
}

// New picks a prompter for in and out. Without an explicit choice, prompts
// are only shown when both ends are terminals.
func New(in io.Reader, out io.Writer, interactive *bool) audit.Prompter {
	enabled := isTerminal(in) && isTerminal(out)
	if interactive != nil {
		enabled = *interactive
	}
	if !enabled {
		return NonInteractive{}
	}
	return NewTerminal(in, out)
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// OpenURL opens u in the default browser, keeping the browser's own output
// off stdout.
func OpenURL(u string) error {
	browser.Stdout = os.Stderr
	return browser.OpenURL(u)
}
