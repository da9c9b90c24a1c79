package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveTrustAnchor(t *testing.T) {
	localAnchor := filepath.Join(repoRoot, ".repo/config/verification/allowed_commit_signers")
	signer := "a@example.com namespaces=\"git\" ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIJ0+DDqd1Q8YsGuDYBTZwXLxIZv3xyVbOZ3nmJUMjKIW\n"

	tests := []struct {
		name   string
		count  int
		local  map[string]string
		global map[string]string
		files  mapFiles
		scope  Scope
		file   string
		kind   Kind
		msg    string
		remedy string
	}{
		{
			name:   "single commit uses global",
			count:  1,
			local:  map[string]string{AllowedSignersKey: localAnchor},
			global: map[string]string{AllowedSignersKey: anchorPath},
			files:  mapFiles{anchorPath: signer, localAnchor: signer},
			scope:  ScopeGlobal,
			file:   anchorPath,
		},
		{
			name:   "single commit without global",
			count:  1,
			local:  map[string]string{AllowedSignersKey: localAnchor},
			files:  mapFiles{localAnchor: signer},
			kind:   ConfigError,
			msg:    "no global trust anchor",
			remedy: "git config --global gpg.ssh.allowedSignersFile",
		},
		{
			name:   "multi commit prefers local",
			count:  3,
			local:  map[string]string{AllowedSignersKey: ConventionalAnchorFile},
			global: map[string]string{AllowedSignersKey: anchorPath},
			files:  mapFiles{anchorPath: signer, localAnchor: signer},
			scope:  ScopeLocal,
			file:   localAnchor,
		},
		{
			name:   "multi commit conventional file without configuration",
			count:  2,
			global: map[string]string{AllowedSignersKey: anchorPath},
			files:  mapFiles{anchorPath: signer, localAnchor: signer},
			kind:   ConfigError,
			msg:    "is not set in local configuration",
			remedy: "git config gpg.ssh.allowedSignersFile " + ConventionalAnchorFile,
		},
		{
			name:   "multi commit falls back to global",
			count:  2,
			global: map[string]string{AllowedSignersKey: anchorPath},
			files:  mapFiles{anchorPath: signer},
			scope:  ScopeGlobal,
			file:   anchorPath,
		},
		{
			name:   "multi commit without any configuration",
			count:  2,
			files:  mapFiles{},
			kind:   ConfigError,
			msg:    "neither local nor global",
			remedy: ConventionalAnchorFile,
		},
		{
			name:   "deprecated local key",
			count:  1,
			local:  map[string]string{"gpg.ssh.allowedSigners": "/etc/signers"},
			global: map[string]string{AllowedSignersKey: anchorPath},
			files:  mapFiles{anchorPath: signer},
			kind:   ConfigError,
			msg:    "deprecated trust anchor key gpg.ssh.allowedSigners",
			remedy: `git config gpg.ssh.allowedSignersFile "/etc/signers"`,
		},
		{
			name:   "deprecated global key",
			count:  1,
			global: map[string]string{"gpg.ssh.allowedSigners": "~/signers", AllowedSignersKey: anchorPath},
			files:  mapFiles{anchorPath: signer},
			kind:   ConfigError,
			msg:    "global configuration",
			remedy: "git config --global --unset gpg.ssh.allowedSigners",
		},
		{
			name:   "missing anchor file",
			count:  1,
			global: map[string]string{AllowedSignersKey: anchorPath},
			files:  mapFiles{},
			kind:   ConfigError,
			msg:    anchorPath + " (global gpg.ssh.allowedSignersFile) does not exist",
			remedy: `namespaces="git"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{
				count: tt.count,
				root:  repoRoot,
				config: map[Scope]map[string]string{
					ScopeLocal:  tt.local,
					ScopeGlobal: tt.global,
				},
			}
			cfg, err := ResolveTrustAnchor(repo, tt.files)
			if tt.kind != KindUnknown {
				require.Error(t, err)
				require.Equal(t, tt.kind, KindOf(err))
				require.Contains(t, err.Error(), tt.msg)
				require.Contains(t, RemedyOf(err), tt.remedy)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.scope, cfg.Scope)
			require.Equal(t, tt.file, cfg.File)
			require.False(t, cfg.Deprecated)
			require.Len(t, cfg.Signers, 1)
		})
	}
}

func TestResolveTrustAnchorDeprecatedFlag(t *testing.T) {
	repo := &fakeRepo{
		count: 1,
		config: map[Scope]map[string]string{
			ScopeGlobal: {"gpg.ssh.allowedSigners": "/etc/signers"},
		},
	}
	cfg, err := ResolveTrustAnchor(repo, mapFiles{})
	require.Error(t, err)
	require.NotNil(t, cfg)
	require.True(t, cfg.Deprecated)
	require.Equal(t, "gpg.ssh.allowedSigners", cfg.DeprecatedKey)
	require.Equal(t, ScopeGlobal, cfg.Scope)
}

func TestResolveTrustAnchorHome(t *testing.T) {
	t.Setenv("HOME", "/home/bob")
	file := filepath.Join("/home/bob", ".config/ssh/allowed_signers")
	repo := &fakeRepo{
		count: 1,
		config: map[Scope]map[string]string{
			ScopeGlobal: {AllowedSignersKey: "~/.config/ssh/allowed_signers"},
		},
	}
	cfg, err := ResolveTrustAnchor(repo, mapFiles{file: ""})
	require.NoError(t, err)
	require.Equal(t, file, cfg.File)
	require.Equal(t, "~/.config/ssh/allowed_signers", cfg.Configured)
}
