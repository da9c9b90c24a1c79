package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// AllowedSignersKey names the allowed-signers file git verifies SSH
	// signatures against.
	AllowedSignersKey = "gpg.ssh.allowedSignersFile"

	// ConventionalAnchorFile is where repositories keep their own signer set,
	// relative to the top of the working tree.
	ConventionalAnchorFile = ".repo/config/verification/allowed_commit_signers"

	allowedSignersLineFormat = `<principal> namespaces="git" <key-type> <public-key>`
	allowedSignersExample    = `alice@example.com namespaces="git" ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAI...`
)

// DeprecatedAnchorKeys are configuration keys from earlier tooling that must
// be migrated to AllowedSignersKey.
func DeprecatedAnchorKeys() []string {
	return []string{"gpg.ssh.allowedSigners", "gpg.ssh.allowedsigners.file"}
}

// TrustAnchorConfig is the resolved trust anchor for one verification.
type TrustAnchorConfig struct {
	Scope Scope `json:"scope"`
	// File is the absolute path of the allowed-signers file.
	File string `json:"file"`
	// Configured is the raw configuration value File was derived from.
	Configured    string `json:"configured,omitempty"`
	Deprecated    bool   `json:"deprecated,omitempty"`
	DeprecatedKey string `json:"deprecatedKey,omitempty"`
	// Signers holds the parsed entries of File.
	Signers []AllowedSigner `json:"-"`
}

// ResolveTrustAnchor decides which allowed-signers file governs signature
// verification. Single-commit repositories trust the operator's global
// configuration; repositories with further commits prefer their own local
// signer set.
func ResolveTrustAnchor(repo Repository, files FileReader) (*TrustAnchorConfig, error) {
	if files == nil {
		files = osFiles{}
	}
	for _, key := range DeprecatedAnchorKeys() {
		for _, scope := range []Scope{ScopeLocal, ScopeGlobal} {
			v, ok, err := repo.ConfigGet(key, scope)
			if err != nil {
				return nil, Wrap(GitFailure, errors.Wrapf(err, "failed to read %s configuration", scope), "")
			}
			if !ok {
				continue
			}
			flag := scopeFlag(scope)
			cfg := &TrustAnchorConfig{Scope: scope, Configured: v, Deprecated: true, DeprecatedKey: key}
			return cfg, newError(ConfigError,
				fmt.Sprintf("Migrate the value to the current key:\n\n  git config%s %s %q\n  git config%s --unset %s", flag, AllowedSignersKey, v, flag, key),
				"deprecated trust anchor key %s is set in %s configuration to %q", key, scope, v)
		}
	}

	count, err := repo.CommitCount()
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrap(err, "failed to count commits"), "")
	}

	var scope Scope
	var value string
	if count <= 1 {
		scope = ScopeGlobal
		v, ok, err := repo.ConfigGet(AllowedSignersKey, ScopeGlobal)
		if err != nil {
			return nil, Wrap(GitFailure, errors.Wrap(err, "failed to read global configuration"), "")
		}
		if !ok || strings.TrimSpace(v) == "" {
			return nil, newError(ConfigError,
				fmt.Sprintf("Configure your personal trust anchor:\n\n  git config --global %s ~/.config/ssh/allowed_signers", AllowedSignersKey),
				"no global trust anchor configured: %s is not set and the repository has only its inception commit", AllowedSignersKey)
		}
		value = v
	} else {
		v, ok, err := repo.ConfigGet(AllowedSignersKey, ScopeLocal)
		if err != nil {
			return nil, Wrap(GitFailure, errors.Wrap(err, "failed to read local configuration"), "")
		}
		if ok && strings.TrimSpace(v) != "" {
			scope = ScopeLocal
			value = v
		} else {
			root, err := repo.RootDir()
			if err != nil {
				return nil, Wrap(GitFailure, errors.Wrap(err, "failed to locate working tree"), "")
			}
			conventional := filepath.Join(root, filepath.FromSlash(ConventionalAnchorFile))
			if _, err := files.ReadFile(conventional); err == nil {
				return nil, newError(ConfigError,
					fmt.Sprintf("Point the local configuration at it:\n\n  git config %s %s", AllowedSignersKey, ConventionalAnchorFile),
					"repository trust anchor %s exists but %s is not set in local configuration", conventional, AllowedSignersKey)
			}
			logrus.Debugf("no local trust anchor for %d-commit repository, falling back to global", count)
			scope = ScopeGlobal
			v, ok, err := repo.ConfigGet(AllowedSignersKey, ScopeGlobal)
			if err != nil {
				return nil, Wrap(GitFailure, errors.Wrap(err, "failed to read global configuration"), "")
			}
			if !ok || strings.TrimSpace(v) == "" {
				return nil, newError(ConfigError,
					fmt.Sprintf("Configure a repository trust anchor:\n\n  git config %s %s\n\nor a personal one:\n\n  git config --global %s ~/.config/ssh/allowed_signers", AllowedSignersKey, ConventionalAnchorFile, AllowedSignersKey),
					"no trust anchor configured: %s is set in neither local nor global configuration", AllowedSignersKey)
			}
			value = v
		}
	}

	file, err := expandAnchorPath(repo, strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	cfg := &TrustAnchorConfig{Scope: scope, File: file, Configured: value}

	dt, err := files.ReadFile(file)
	if err != nil {
		what := "does not exist"
		if !errors.Is(err, os.ErrNotExist) {
			what = "is not readable"
		}
		return cfg, newError(ConfigError,
			fmt.Sprintf("Create it with one line per signer:\n\n  %s\n\nfor example:\n\n  %s", allowedSignersLineFormat, allowedSignersExample),
			"trust anchor file %s (%s %s) %s", file, scope, AllowedSignersKey, what)
	}
	signers, err := ParseAllowedSigners(dt)
	if err != nil {
		logrus.Debugf("ignoring unparsable entries in %s: %v", file, err)
	}
	cfg.Signers = signers
	logrus.Debugf("resolved %s trust anchor %s with %d signer(s)", scope, file, len(signers))
	return cfg, nil
}

// expandAnchorPath resolves "~" against the home directory and relative
// paths against the top of the working tree.
func expandAnchorPath(repo Repository, p string) (string, error) {
	switch {
	case p == "~" || strings.HasPrefix(p, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", Wrap(IOError, errors.Wrap(err, "failed to resolve home directory"), "")
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
	case filepath.IsAbs(p):
		return filepath.Clean(p), nil
	}
	root, err := repo.RootDir()
	if err != nil {
		return "", Wrap(GitFailure, errors.Wrap(err, "failed to locate working tree"), "")
	}
	return filepath.Join(root, p), nil
}

func scopeFlag(s Scope) string {
	if s == ScopeGlobal {
		return " --global"
	}
	return ""
}
