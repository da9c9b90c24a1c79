package audit

import (
	"strings"

	"github.com/moby/buildkit/util/gitutil/gitobject"
	"github.com/pkg/errors"
)

// Actor is a name and email pair recorded on a commit.
type Actor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// InceptionCommit is the root commit of the audited repository. It is read
// fresh on every run and never modified.
type InceptionCommit struct {
	Hash      string   `json:"hash"`
	Tree      string   `json:"tree"`
	Parents   []string `json:"parents,omitempty"`
	Message   string   `json:"message"`
	Author    Actor    `json:"author"`
	Committer Actor    `json:"committer"`
	// Signature is the armored signature block, empty when unsigned.
	Signature string `json:"-"`
	Raw       []byte `json:"-"`

	obj *gitobject.GitObject
}

// DID returns the decentralized identifier naming the repository.
func (c *InceptionCommit) DID() string {
	return "did:repo:" + c.Hash
}

// LocateInceptionCommit returns the hash of the repository's root commit.
// When several zero-parent commits exist the first one reported by the
// repository wins.
func LocateInceptionCommit(repo Repository) (string, error) {
	hash, err := repo.RootCommit()
	if err != nil {
		return "", Wrap(GitFailure, errors.Wrap(err, "failed to locate inception commit"), "Run the audit inside a repository that has at least one commit.")
	}
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return "", newError(GitFailure, "Create a signed, empty inception commit before auditing.", "no inception commit found: the repository has no root commit")
	}
	return hash, nil
}

// LoadInceptionCommit reads the commit object and its recorded attributes.
func LoadInceptionCommit(repo Repository, hash string) (*InceptionCommit, error) {
	raw, err := repo.ReadObject(hash)
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrapf(err, "failed to read commit object %s", hash), "")
	}
	obj, err := gitobject.Parse(raw)
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrapf(err, "failed to parse commit object %s", hash), "")
	}
	c, err := obj.ToCommit()
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrapf(err, "object %s is not a commit", hash), "")
	}
	tree, err := repo.TreeHashOf(hash)
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrapf(err, "failed to read tree of %s", hash), "")
	}
	msg, err := repo.CommitMessage(hash)
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrapf(err, "failed to read message of %s", hash), "")
	}
	name, email, err := repo.CommitterIdentity(hash)
	if err != nil {
		return nil, Wrap(GitFailure, errors.Wrapf(err, "failed to read committer of %s", hash), "")
	}
	return &InceptionCommit{
		Hash:      hash,
		Tree:      strings.TrimSpace(tree),
		Parents:   c.Parents,
		Message:   msg,
		Author:    Actor{Name: c.Author.Name, Email: c.Author.Email},
		Committer: Actor{Name: name, Email: email},
		Signature: obj.Signature,
		Raw:       raw,
		obj:       obj,
	}, nil
}
