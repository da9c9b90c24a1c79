package commands

import (
	"bytes"
	"encoding/json"
	stderrs "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openintegrity/oi-audit/audit"
	"github.com/openintegrity/oi-audit/util/cobrautil"
	"github.com/openintegrity/oi-audit/util/gitutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestDisableFlagsInUseLineIsSet(t *testing.T) {
	rootCmd := NewRootCmd("oi-audit", StdStreams())

	var errs []error
	visitAll(rootCmd, func(c *cobra.Command) {
		if !c.DisableFlagsInUseLine {
			errs = append(errs, errors.New("DisableFlagsInUseLine is not set for "+c.CommandPath()))
		}
	})
	err := stderrs.Join(errs...)
	require.NoError(t, err)
}

func visitAll(root *cobra.Command, fn func(*cobra.Command)) {
	for _, cmd := range root.Commands() {
		visitAll(cmd, fn)
	}
	fn(root)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("OI_AUDIT_CONFIG", "")
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCmd("oi-audit", Streams{In: strings.NewReader(""), Out: out, Err: errOut})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "github.com/openintegrity/oi-audit "))
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--unknown"},
		{"extra"},
		{"version", "extra"},
		{"--format", "yaml", "version"},
		{"--quiet", "--debug", "version"},
		{"--color=maybe"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := execute(t, args...)
			require.Error(t, err)
			require.Equal(t, audit.UsageError, audit.KindOf(err))
			require.Equal(t, 2, audit.ExitCode(err))
		})
	}
}

func TestConfigFileErrors(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "version")
	require.Error(t, err)
	require.Equal(t, audit.IOError, audit.KindOf(err))

	fp := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(fp, []byte(`format = "xml"`), 0o600))
	_, _, err = execute(t, "--config", fp, "version")
	require.Error(t, err)
	require.Equal(t, audit.ConfigError, audit.KindOf(err))
}

func newRepo(t *testing.T, msg string) string {
	t.Helper()
	dir := gitutil.Mktmp(t)
	g, err := gitutil.New(gitutil.WithWorkingDir(dir))
	if err != nil {
		t.Skipf("git not available: %v", err)
	}
	if err := g.CheckVersion(); err != nil {
		t.Skipf("git too old: %v", err)
	}
	gitutil.GitInit(g, t)
	gitutil.GitCommit(g, t, msg)
	return dir
}

func TestAuditNotARepository(t *testing.T) {
	dir := t.TempDir()
	if _, err := gitutil.New(); err != nil {
		t.Skipf("git not available: %v", err)
	}
	_, _, err := execute(t, "-C", dir, "--no-standards")
	require.Error(t, err)
	require.Equal(t, audit.GitFailure, audit.KindOf(err))
	require.Equal(t, 5, audit.ExitCode(err))
}

func TestAuditUnsignedJSON(t *testing.T) {
	dir := newRepo(t, "Initialize repository and establish a SHA-1 root of trust\n\nSigned-off-by: oi-audit <oi-audit@example.com>")

	out, _, err := execute(t, "-C", dir, "--format", "json", "--no-standards", "--no-interactive")
	var ec cobrautil.ExitCodeError
	require.True(t, errors.As(err, &ec), "%v", err)
	require.Equal(t, 1, int(ec))

	var doc struct {
		DID     string
		Verdict struct {
			LocalPassed bool
			ExitStatus  int
		}
		Events []audit.Event
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.True(t, strings.HasPrefix(doc.DID, "did:repo:"))
	require.False(t, doc.Verdict.LocalPassed)
	require.Equal(t, 1, doc.Verdict.ExitStatus)
	require.Len(t, doc.Events, 6)

	passed := map[audit.CheckName]bool{}
	for _, ev := range doc.Events {
		passed[ev.Check] = ev.Passed
	}
	require.True(t, passed[audit.CheckStructure])
	require.True(t, passed[audit.CheckContent])
	require.True(t, passed[audit.CheckFormat])
	require.False(t, passed[audit.CheckSignature])
	require.False(t, passed[audit.CheckIdentity])
	require.True(t, passed[audit.CheckStandards])
}

func TestAuditConfigFormat(t *testing.T) {
	dir := newRepo(t, "Initial commit")

	fp := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(fp, []byte("format = \"json\"\nstandards = false\ncolor = false\n"), 0o600))

	out, _, err := execute(t, "-C", dir, "--config", fp)
	require.Error(t, err)
	require.True(t, json.Valid([]byte(out)), out)

	out, _, err = execute(t, "-C", dir, "--config", fp, "--format", "text", "audit")
	require.Error(t, err)
	require.Contains(t, out, "Phase 2: Wholeness")
	require.Contains(t, out, "✗ format:")
	require.Contains(t, out, "Inception commit audit FAILED")
	require.NotContains(t, out, "\x1b[")
}
