package audit

import (
	"regexp"
	"strings"
)

// InitializationMessage is the line every conformant inception commit
// message must contain.
const InitializationMessage = "Initialize repository and establish a SHA-1 root of trust"

var signoffRe = regexp.MustCompile(`^Signed-off-by: \S.*$`)

// ValidateFormat confirms the commit message carries the initialization line
// and at least one sign-off.
func ValidateFormat(c *InceptionCommit) error {
	var hasInit, hasSignoff bool
	for _, line := range strings.Split(c.Message, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == InitializationMessage {
			hasInit = true
		}
		if signoffRe.MatchString(line) {
			hasSignoff = true
		}
	}
	switch {
	case !hasInit && !hasSignoff:
		return newError(GitFailure, formatRemedy(c),
			"commit message of %s is missing both the line %q and a Signed-off-by line", c.Hash, InitializationMessage)
	case !hasInit:
		return newError(GitFailure, formatRemedy(c),
			"commit message of %s is missing the line %q", c.Hash, InitializationMessage)
	case !hasSignoff:
		return newError(GitFailure, formatRemedy(c),
			"commit message of %s is missing a Signed-off-by line", c.Hash)
	}
	return nil
}

func formatRemedy(c *InceptionCommit) string {
	who := "Name <email>"
	if c.Author.Name != "" {
		who = c.Author.Name + " <" + c.Author.Email + ">"
	}
	return "The message must read:\n\n  " + InitializationMessage + "\n\n  Signed-off-by: " + who
}
