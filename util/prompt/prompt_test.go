package prompt

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminalConfirm(t *testing.T) {
	cases := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "yes long", input: "YES\n", want: true},
		{name: "no", input: "n\n", def: true, want: false},
		{name: "empty default no", input: "\n", want: false},
		{name: "empty default yes", input: "\n", def: true, want: true},
		{name: "eof", input: "", def: true, want: true},
		{name: "retry", input: "maybe\nyes\n", want: true},
		{name: "no trailing newline", input: "y", want: true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			ok, err := NewTerminal(strings.NewReader(tt.input), out).Confirm("Open the page?", tt.def)
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
			require.True(t, strings.HasPrefix(out.String(), "Open the page? "))
		})
	}
}

func TestTerminalConfirmHint(t *testing.T) {
	out := &bytes.Buffer{}
	_, err := NewTerminal(strings.NewReader("\n"), out).Confirm("Continue?", true)
	require.NoError(t, err)
	require.Equal(t, "Continue? [Y/n] ", out.String())

	out.Reset()
	_, err = NewTerminal(strings.NewReader("what\nn\n"), out).Confirm("Continue?", false)
	require.NoError(t, err)
	require.Equal(t, "Continue? [y/N] Please answer yes or no.\nContinue? [y/N] ", out.String())
}

func TestNonInteractive(t *testing.T) {
	ok, err := NonInteractive{}.Confirm("Open?", false)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = NonInteractive{}.Confirm("Open?", true)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNew(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	require.IsType(t, NonInteractive{}, New(f, f, nil))

	off := false
	require.IsType(t, NonInteractive{}, New(f, f, &off))

	on := true
	require.IsType(t, &Terminal{}, New(f, f, &on))
}
