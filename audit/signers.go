package audit

import (
	"bufio"
	"bytes"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// AllowedSigner is one entry of an allowed-signers file.
type AllowedSigner struct {
	Line       int
	Principals []string
	Options    map[string]string
	Key        ssh.PublicKey
}

// Fingerprint returns the SHA256 fingerprint of the entry's key.
func (s AllowedSigner) Fingerprint() string {
	return ssh.FingerprintSHA256(s.Key)
}

// Namespaces returns the namespaces the entry is restricted to. An empty
// result means the option is absent.
func (s AllowedSigner) Namespaces() []string {
	v, ok := s.Options["namespaces"]
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// AllowsGit reports whether the entry explicitly permits the git namespace.
func (s AllowedSigner) AllowsGit() bool {
	for _, ns := range s.Namespaces() {
		if ns == "git" {
			return true
		}
	}
	return false
}

// Corrected renders the entry with namespaces="git" set.
func (s AllowedSigner) Corrected() string {
	var opts []string
	opts = append(opts, `namespaces="git"`)
	keys := make([]string, 0, len(s.Options))
	for k := range s.Options {
		if k != "namespaces" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := s.Options[k]
		if v == "" {
			opts = append(opts, k)
		} else {
			opts = append(opts, k+`="`+v+`"`)
		}
	}
	key := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(s.Key)))
	return strings.Join(s.Principals, ",") + " " + strings.Join(opts, ",") + " " + key
}

// ParseAllowedSigners parses the ssh-keygen allowed-signers format:
//
//	principals [options] keytype base64-key [comment]
//
// Malformed lines are skipped and reported in the returned error; valid
// entries are always returned.
func ParseAllowedSigners(dt []byte) ([]AllowedSigner, error) {
	var out []AllowedSigner
	var errs *multierror.Error
	sc := bufio.NewScanner(bytes.NewReader(dt))
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := parseAllowedSignerLine(line)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "line %d", n))
			continue
		}
		s.Line = n
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return out, errs.ErrorOrNil()
}

func parseAllowedSignerLine(line string) (AllowedSigner, error) {
	fields, err := splitQuoted(line, func(r rune) bool { return r == ' ' || r == '\t' })
	if err != nil {
		return AllowedSigner{}, err
	}
	if len(fields) < 3 {
		return AllowedSigner{}, errors.Errorf("expected at least 3 fields, got %d", len(fields))
	}
	s := AllowedSigner{
		Principals: strings.Split(strings.Trim(fields[0], `"`), ","),
		Options:    map[string]string{},
	}
	rest := fields[1:]
	if !isKeyType(rest[0]) {
		opts, err := splitQuoted(rest[0], func(r rune) bool { return r == ',' })
		if err != nil {
			return AllowedSigner{}, err
		}
		for _, opt := range opts {
			k, v, _ := strings.Cut(opt, "=")
			s.Options[strings.ToLower(k)] = strings.Trim(v, `"`)
		}
		rest = rest[1:]
	}
	if len(rest) < 2 {
		return AllowedSigner{}, errors.New("missing public key")
	}
	key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(rest[0] + " " + rest[1]))
	if err != nil {
		return AllowedSigner{}, errors.Wrap(err, "invalid public key")
	}
	s.Key = key
	return s, nil
}

// splitQuoted splits s at runes matching sep, ignoring separators inside
// double quotes. Quotes are kept in the returned fields.
func splitQuoted(s string, sep func(rune) bool) ([]string, error) {
	var out []string
	var cur strings.Builder
	quoted := false
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			cur.WriteRune(r)
		case !quoted && sep(r):
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out, nil
}

func isKeyType(s string) bool {
	return strings.HasPrefix(s, "ssh-") ||
		strings.HasPrefix(s, "ecdsa-sha2-") ||
		strings.HasPrefix(s, "sk-ssh-") ||
		strings.HasPrefix(s, "sk-ecdsa-")
}

// signerFor returns the entry whose key has the given fingerprint. When the
// key is listed more than once, an entry allowing the git namespace wins.
func signerFor(signers []AllowedSigner, fingerprint string) (AllowedSigner, bool) {
	var (
		first AllowedSigner
		found bool
	)
	for _, s := range signers {
		if s.Key == nil || s.Fingerprint() != fingerprint {
			continue
		}
		if s.AllowsGit() {
			return s, true
		}
		if !found {
			first, found = s, true
		}
	}
	return first, found
}
