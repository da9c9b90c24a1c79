package audit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAffirmIdentity(t *testing.T) {
	f := newFixture(t)
	anchor := &TrustAnchorConfig{Scope: ScopeGlobal, File: anchorPath}
	info, err := AffirmIdentity(f.repo, f.commit(t), anchor)
	require.NoError(t, err)
	require.Equal(t, f.key.fp, info.Fingerprint)
	require.Equal(t, f.key.fp, info.CommitterName)
	require.Equal(t, "a@example.com", info.CommitterEmail)
	require.Equal(t, "ED25519", info.KeyType)
}

func TestAffirmIdentityMismatch(t *testing.T) {
	f := newFixture(t, withCommitter("Alice <a@example.com>"))
	anchor := &TrustAnchorConfig{Scope: ScopeGlobal, File: anchorPath}
	info, err := AffirmIdentity(f.repo, f.commit(t), anchor)
	require.Error(t, err)
	require.Equal(t, GitFailure, KindOf(err))
	require.Contains(t, err.Error(), `committer name "Alice"`)
	require.Contains(t, err.Error(), f.key.fp)
	require.Contains(t, RemedyOf(err), "Open Integrity conformance requires")
	require.Equal(t, "Alice", info.CommitterName)
}

func TestAffirmIdentityWithoutAnchor(t *testing.T) {
	f := newFixture(t)
	_, err := AffirmIdentity(f.repo, f.commit(t), nil)
	require.Error(t, err)
	require.Empty(t, f.repo.verifyCalls)
}

func TestAffirmIdentityNoFingerprint(t *testing.T) {
	f := newFixture(t)
	f.repo.verify = func(_, _ string) (bool, string) {
		return false, "No principal matched."
	}
	_, err := AffirmIdentity(f.repo, f.commit(t), &TrustAnchorConfig{File: anchorPath})
	require.Error(t, err)
	require.Contains(t, err.Error(), "could not determine the signing key fingerprint")
}
