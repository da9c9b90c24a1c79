package audit

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

const (
	emptyTree    = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
	nonEmptyTree = "a0b1c2d3e4f5a0b1c2d3e4f5a0b1c2d3e4f5a0b1"
	anchorPath   = "/home/alice/.config/ssh/allowed_signers"
	repoRoot     = "/src/project"
)

var conformantMessage = InitializationMessage + "\n\nSigned-off-by: Alice <a@example.com>\n"

type testKey struct {
	signer ssh.Signer
	fp     string
}

func newTestKey(t *testing.T) testKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)
	return testKey{signer: signer, fp: ssh.FingerprintSHA256(signer.PublicKey())}
}

func (k testKey) authorized() string {
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(k.signer.PublicKey())))
}

// signBlock produces an armored SSHSIG block over payload.
func signBlock(t *testing.T, k testKey, namespace string, payload []byte) string {
	t.Helper()
	h := sha512.Sum512(payload)
	signed := append([]byte("SSHSIG"), ssh.Marshal(struct {
		Namespace     string
		Reserved      string
		HashAlgorithm string
		Hash          []byte
	}{namespace, "", "sha512", h[:]})...)
	sig, err := k.signer.Sign(rand.Reader, signed)
	require.NoError(t, err)
	blob := append([]byte("SSHSIG"), ssh.Marshal(struct {
		Version       uint32
		PublicKey     []byte
		Namespace     string
		Reserved      string
		HashAlgorithm string
		Signature     []byte
	}{1, k.signer.PublicKey().Marshal(), namespace, "", "sha512", ssh.Marshal(sig)})...)
	enc := base64.StdEncoding.EncodeToString(blob)
	var lines []string
	lines = append(lines, "-----BEGIN SSH SIGNATURE-----")
	for len(enc) > 70 {
		lines = append(lines, enc[:70])
		enc = enc[70:]
	}
	lines = append(lines, enc, "-----END SSH SIGNATURE-----")
	return strings.Join(lines, "\n")
}

type commitFields struct {
	tree      string
	parents   []string
	author    string
	committer string
	message   string
	signature string
}

// buildCommit renders a raw commit object and its SHA-1 id.
func buildCommit(c commitFields) (string, []byte) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tree %s\n", c.tree)
	for _, p := range c.parents {
		fmt.Fprintf(&sb, "parent %s\n", p)
	}
	fmt.Fprintf(&sb, "author %s 1700000000 +0000\n", c.author)
	fmt.Fprintf(&sb, "committer %s 1700000000 +0000\n", c.committer)
	if c.signature != "" {
		sb.WriteString("gpgsig " + strings.ReplaceAll(c.signature, "\n", "\n ") + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(c.message)
	raw := []byte(sb.String())
	h := sha1.New()
	fmt.Fprintf(h, "commit %d\x00", len(raw))
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil)), raw
}

type fakeRepo struct {
	hashes    []string
	count     int
	objects   map[string][]byte
	trees     map[string]string
	messages  map[string]string
	committer map[string][2]string
	config    map[Scope]map[string]string
	root      string

	// noEmptyTree makes EmptyTreeHash return nothing.
	noEmptyTree bool

	// verify returns the verifier result for an anchor file.
	verify      func(hash, anchor string) (bool, string)
	verifyCalls []string
}

func (r *fakeRepo) RootCommit() (string, error) {
	if len(r.hashes) == 0 {
		return "", nil
	}
	return r.hashes[0], nil
}

func (r *fakeRepo) CommitCount() (int, error) {
	return r.count, nil
}

func (r *fakeRepo) ReadObject(hash string) ([]byte, error) {
	dt, ok := r.objects[hash]
	if !ok {
		return nil, fmt.Errorf("fatal: bad object %s", hash)
	}
	return dt, nil
}

func (r *fakeRepo) TreeHashOf(hash string) (string, error) {
	return r.trees[hash], nil
}

func (r *fakeRepo) EmptyTreeHash() (string, error) {
	if r.noEmptyTree {
		return "", nil
	}
	return emptyTree + "\n", nil
}

func (r *fakeRepo) CommitMessage(hash string) (string, error) {
	return r.messages[hash], nil
}

func (r *fakeRepo) CommitterIdentity(hash string) (string, string, error) {
	c := r.committer[hash]
	return c[0], c[1], nil
}

func (r *fakeRepo) ConfigGet(key string, scope Scope) (string, bool, error) {
	v, ok := r.config[scope][key]
	return v, ok, nil
}

func (r *fakeRepo) VerifySignature(hash, anchor string) (bool, string, error) {
	r.verifyCalls = append(r.verifyCalls, anchor)
	if r.verify == nil {
		return false, "", nil
	}
	ok, diag := r.verify(hash, anchor)
	return ok, diag, nil
}

func (r *fakeRepo) RootDir() (string, error) {
	return r.root, nil
}

type mapFiles map[string]string

func (m mapFiles) ReadFile(name string) ([]byte, error) {
	v, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	return []byte(v), nil
}

func goodDiag(k testKey) string {
	return fmt.Sprintf("Good \"git\" signature for a@example.com with ED25519 key %s\n", k.fp)
}

// fixture is a conformant single-commit repository signed by key.
type fixture struct {
	key   testKey
	hash  string
	repo  *fakeRepo
	files mapFiles
}

type fixtureOpt func(*commitFields)

func newFixture(t *testing.T, opts ...fixtureOpt) *fixture {
	t.Helper()
	k := newTestKey(t)
	cf := commitFields{
		tree:      emptyTree,
		author:    "Alice <a@example.com>",
		committer: k.fp + " <a@example.com>",
		message:   conformantMessage,
	}
	for _, o := range opts {
		o(&cf)
	}
	if cf.signature == "" {
		cf.signature = signBlock(t, k, "git", []byte(cf.message))
	} else if cf.signature == "-" {
		cf.signature = ""
	}
	hash, raw := buildCommit(cf)
	committerName := strings.TrimSpace(cf.committer[:strings.Index(cf.committer, "<")])
	f := &fixture{
		key:  k,
		hash: hash,
		repo: &fakeRepo{
			hashes:    []string{hash},
			count:     1,
			objects:   map[string][]byte{hash: raw},
			trees:     map[string]string{hash: cf.tree + "\n"},
			messages:  map[string]string{hash: cf.message},
			committer: map[string][2]string{hash: {committerName, "a@example.com"}},
			config: map[Scope]map[string]string{
				ScopeLocal:  {},
				ScopeGlobal: {AllowedSignersKey: anchorPath},
			},
			root: repoRoot,
		},
		files: mapFiles{
			anchorPath: `a@example.com namespaces="git" ` + k.authorized() + "\n",
		},
	}
	f.repo.verify = func(_, anchor string) (bool, string) {
		if _, ok := f.files[anchor]; !ok {
			return false, "error: gpg.ssh.allowedSignersFile needs to be configured and exist for ssh signature verification"
		}
		if !strings.Contains(f.files[anchor], k.authorized()) {
			return false, "No principal matched.\n"
		}
		return true, goodDiag(k)
	}
	return f
}

func withTree(tree string) fixtureOpt {
	return func(c *commitFields) { c.tree = tree }
}

func withMessage(msg string) fixtureOpt {
	return func(c *commitFields) { c.message = msg }
}

func withCommitter(committer string) fixtureOpt {
	return func(c *commitFields) { c.committer = committer }
}

func withSignature(sig string) fixtureOpt {
	return func(c *commitFields) { c.signature = sig }
}

func (f *fixture) commit(t *testing.T) *InceptionCommit {
	t.Helper()
	c, err := LoadInceptionCommit(f.repo, f.hash)
	require.NoError(t, err)
	return c
}
