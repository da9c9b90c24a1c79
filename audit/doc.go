// Package audit implements the Progressive Trust audit of a repository's
// inception commit.
//
// The audit runs four phases in order against a read-only Repository:
//
//   - phase 2 (wholeness): the root commit is intact, empty and carries the
//     required initialization message;
//   - phase 3 (proofs): its SSH signature authenticates against the resolved
//     allowed-signers file;
//   - phase 4 (references): the committer name is the signing key
//     fingerprint;
//   - phase 5 (requirements): the hosting platform's community standards are
//     surfaced.
//
// Phases 2 and 3 are local and decide the exit status. Phases 4 and 5 are
// remote and only ever produce warnings.
package audit
