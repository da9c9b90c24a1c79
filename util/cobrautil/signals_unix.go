//go:build !windows

package cobrautil

import (
	"os"

	"golang.org/x/sys/unix"
)

var interruptSignals = []os.Signal{unix.SIGTERM, unix.SIGINT}
