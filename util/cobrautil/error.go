package cobrautil

import (
	"fmt"
)

// ExitCodeError carries a process exit status out of a command without an
// error message of its own.
type ExitCodeError int

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("exiting with code %d", int(e))
}

func (e ExitCodeError) Unwrap() error {
	return nil
}
