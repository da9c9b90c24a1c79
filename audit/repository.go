package audit

import (
	"os"
)

// Scope selects the configuration level a key is read from.
type Scope int

const (
	ScopeLocal Scope = iota
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "local"
}

func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Repository is the read-only view of a version-controlled repository that
// the audit runs against. Implementations must never write to the repository
// or its configuration, so an audit can be repeated any number of times.
type Repository interface {
	// RootCommit returns the first zero-parent commit in the
	// implementation's traversal order.
	RootCommit() (string, error)
	CommitCount() (int, error)
	// ReadObject returns the raw, uncompressed commit object without the
	// "<type> <size>\x00" header.
	ReadObject(hash string) ([]byte, error)
	TreeHashOf(hash string) (string, error)
	EmptyTreeHash() (string, error)
	CommitMessage(hash string) (string, error)
	CommitterIdentity(hash string) (name, email string, err error)
	// ConfigGet returns the value of key at scope and whether it was set.
	ConfigGet(key string, scope Scope) (string, bool, error)
	// VerifySignature authenticates the commit signature against the
	// allowed-signers file and returns the verifier's diagnostic text.
	VerifySignature(hash, anchorFile string) (bool, string, error)
	// RootDir is the top-level directory of the working tree.
	RootDir() (string, error)
}

// FileReader reads trust-anchor files from disk.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

type osFiles struct{}

func (osFiles) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}
