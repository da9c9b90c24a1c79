package gitutil

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/openintegrity/oi-audit/audit"
	"github.com/pkg/errors"
)

// MinVersionConstraint is the oldest git release able to verify ssh
// commit signatures against an allowed signers file.
// constraint syntax: https://github.com/Masterminds/semver#checking-version-constraints
const MinVersionConstraint = ">= 2.34.0-0"

var gitVersionRegex = regexp.MustCompile(`git version (\d+\.\d+(?:\.\d+)?)`)

// Version returns the version reported by the git executable.
func (c *Git) Version() (string, error) {
	out, err := c.clean(c.run("--version"))
	if err != nil {
		return "", err
	}
	return parseVersion(out)
}

// CheckVersion fails with a missing dependency error when git is too old.
func (c *Git) CheckVersion() error {
	v, err := c.Version()
	if err != nil {
		return audit.Wrap(audit.DependencyError, err, "Install git 2.34 or later.")
	}
	return checkVersion(v)
}

func parseVersion(out string) (string, error) {
	m := gitVersionRegex.FindStringSubmatch(out)
	if m == nil {
		return "", errors.Errorf("unexpected git version output %q", out)
	}
	return m[1], nil
}

func checkVersion(v string) error {
	gitVersion, err := semver.NewVersion(v)
	if err != nil {
		return audit.Wrap(audit.DependencyError, errors.Wrapf(err, "invalid git version %q", v), "Install git 2.34 or later.")
	}
	c, err := semver.NewConstraint(MinVersionConstraint)
	if err != nil {
		return err
	}
	if !c.Check(gitVersion) {
		return audit.Wrap(audit.DependencyError, errors.Errorf("git %s is too old to verify ssh signatures", v), "Install git 2.34 or later.")
	}
	return nil
}
