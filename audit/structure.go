package audit

import (
	"strings"

	"github.com/pkg/errors"
)

// EmptyTreeSHA1 is the empty tree object of a SHA-1 repository.
const EmptyTreeSHA1 = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// ValidateStructure confirms the inception commit is a well-formed root commit
// whose object content hashes to its identifier.
func ValidateStructure(c *InceptionCommit) error {
	if len(c.Parents) > 0 {
		return newError(GitFailure, "The inception commit must be the repository's first commit.",
			"commit %s has %d parent(s) and is not a root commit", c.Hash, len(c.Parents))
	}
	if c.obj != nil {
		if err := c.obj.VerifyChecksum(c.Hash); err != nil {
			return Wrap(GitFailure, errors.Wrapf(err, "commit object %s does not match its hash", c.Hash),
				"Run `git fsck` to check the object database for corruption.")
		}
	}
	return nil
}

// ValidateContent confirms the inception commit carries no files by comparing
// its tree with the canonical empty tree.
func ValidateContent(repo Repository, c *InceptionCommit) error {
	empty, err := repo.EmptyTreeHash()
	if err != nil {
		return Wrap(GitFailure, errors.Wrap(err, "failed to compute empty tree hash"), "")
	}
	empty = strings.TrimSpace(empty)
	if empty == "" {
		empty = EmptyTreeSHA1
	}
	if c.Tree != empty {
		return newError(GitFailure,
			"Recreate the inception commit with `git commit --allow-empty` so it tracks no files.",
			"inception commit %s is not empty: tree %s differs from empty tree %s", c.Hash, c.Tree, empty)
	}
	return nil
}
