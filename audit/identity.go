package audit

import (
	"fmt"

	"github.com/pkg/errors"
)

// IdentityInfo binds the verified signing key to the committer identity.
type IdentityInfo struct {
	Fingerprint    string `json:"fingerprint"`
	KeyType        string `json:"keyType,omitempty"`
	CommitterName  string `json:"committerName"`
	CommitterEmail string `json:"committerEmail,omitempty"`
}

// AffirmIdentity confirms the committer name of the inception commit is
// literally the fingerprint of the key that signed it. The committer name
// serves as a trust reference rather than a display name.
func AffirmIdentity(repo Repository, c *InceptionCommit, anchor *TrustAnchorConfig) (*IdentityInfo, error) {
	if anchor == nil || anchor.File == "" {
		return nil, newError(GitFailure, "Resolve the signature check first; identity is affirmed against the same trust anchor.",
			"cannot affirm identity of %s without a resolved trust anchor", c.Hash)
	}
	ok, diag, err := repo.VerifySignature(c.Hash, anchor.File)
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrapf(err, "failed to verify signature of %s", c.Hash), "")
	}
	keyType, fp := ParseKeyInfo(diag)
	if !ok || fp == "" {
		return nil, newError(GitFailure, fmt.Sprintf("Confirm the signing key is listed in %s.", anchor.File),
			"could not determine the signing key fingerprint of %s: %s", c.Hash, oneLine(diag))
	}
	name, email, err := repo.CommitterIdentity(c.Hash)
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrapf(err, "failed to read committer of %s", c.Hash), "")
	}
	info := &IdentityInfo{Fingerprint: fp, KeyType: keyType, CommitterName: name, CommitterEmail: email}
	if name != fp {
		return info, newError(GitFailure,
			fmt.Sprintf("Open Integrity conformance requires the committer name of the inception commit to be the signing key fingerprint. Recreate the inception commit with:\n\n  git -c user.name=%q -c gpg.format=ssh commit --allow-empty -S -s -m %q", fp, InitializationMessage),
			"committer name %q of %s does not match signing key fingerprint %q", name, c.Hash, fp)
	}
	return info, nil
}
