package audit

import (
	"github.com/pkg/errors"
)

// Kind classifies an audit error. Each kind maps to a process exit status.
type Kind int

const (
	KindUnknown Kind = iota
	UsageError
	IOError
	GitFailure
	ConfigError
	DependencyError
)

func (k Kind) String() string {
	switch k {
	case UsageError:
		return "UsageError"
	case IOError:
		return "IOError"
	case GitFailure:
		return "GitFailure"
	case ConfigError:
		return "ConfigError"
	case DependencyError:
		return "DependencyError"
	default:
		return "Unknown"
	}
}

// Exit statuses returned by the oi-audit binary.
const (
	ExitSuccess           = 0
	ExitGeneralFailure    = 1
	ExitUsage             = 2
	ExitIO                = 3
	ExitRepository        = 5
	ExitConfig            = 6
	ExitMissingDependency = 127
)

// ExitCode returns the exit status associated with the kind.
func (k Kind) ExitCode() int {
	switch k {
	case UsageError:
		return ExitUsage
	case IOError:
		return ExitIO
	case GitFailure:
		return ExitRepository
	case ConfigError:
		return ExitConfig
	case DependencyError:
		return ExitMissingDependency
	default:
		return ExitGeneralFailure
	}
}

// Error is a classified audit failure. Remedy holds the operator action that
// resolves it, usually an exact command or configuration line.
type Error struct {
	Kind   Kind
	Err    error
	Remedy string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, remedy string, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...), Remedy: remedy}
}

// Wrap classifies err as kind. A nil err returns nil.
func Wrap(kind Kind, err error, remedy string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err, Remedy: remedy}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// RemedyOf returns the remediation text carried by err, if any.
func RemedyOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Remedy
	}
	return ""
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return KindOf(err).ExitCode()
}
