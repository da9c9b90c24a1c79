package gitutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testCommitterName  = "oi-audit"
	testCommitterEmail = "oi-audit@example.com"
)

func GitInit(c *Git, tb testing.TB) {
	tb.Helper()
	out, err := fakeGit(c, "init")
	require.NoError(tb, err)
	require.Contains(tb, out, "Initialized empty Git repository")
	GitCheckoutBranch(c, tb, "main")
	_, _ = fakeGit(c, "branch", "-D", "master")
}

func GitCommit(c *Git, tb testing.TB, msg string) {
	tb.Helper()
	out, err := fakeGit(c, "commit", "--allow-empty", "-m", msg)
	require.NoError(tb, err)
	require.Contains(tb, out, "main", msg)
}

func GitCheckoutBranch(c *Git, tb testing.TB, name string) {
	tb.Helper()
	out, err := fakeGit(c, "checkout", "-b", name)
	require.NoError(tb, err)
	require.Empty(tb, out)
}

func GitAdd(c *Git, tb testing.TB, files ...string) {
	tb.Helper()
	args := append([]string{"add"}, files...)
	_, err := fakeGit(c, args...)
	require.NoError(tb, err)
}

func GitConfig(c *Git, tb testing.TB, scope, key, value string) {
	tb.Helper()
	_, err := fakeGit(c, "config", scope, key, value)
	require.NoError(tb, err)
}

func GitSetRemote(c *Git, tb testing.TB, name string, url string) {
	tb.Helper()
	_, err := fakeGit(c, "remote", "add", name, url)
	require.NoError(tb, err)
}

// Mktmp switches to a fresh directory and isolates git from the user's
// global and system configuration.
func Mktmp(tb testing.TB) string {
	tb.Helper()
	folder := tb.TempDir()
	home := filepath.Join(folder, ".home")
	require.NoError(tb, os.MkdirAll(home, 0o755))
	tb.Setenv("HOME", home)
	tb.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	tb.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	repo := filepath.Join(folder, "repo")
	require.NoError(tb, os.MkdirAll(repo, 0o755))
	current, err := os.Getwd()
	require.NoError(tb, err)
	require.NoError(tb, os.Chdir(repo))
	tb.Cleanup(func() {
		require.NoError(tb, os.Chdir(current))
	})
	return repo
}

func fakeGit(c *Git, args ...string) (string, error) {
	allArgs := []string{
		"-c", "user.name=" + testCommitterName,
		"-c", "user.email=" + testCommitterEmail,
		"-c", "commit.gpgSign=false",
		"-c", "tag.gpgSign=false",
	}
	allArgs = append(allArgs, args...)
	return c.clean(c.run(allArgs...))
}
