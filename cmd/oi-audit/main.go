package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/openintegrity/oi-audit/audit"
	"github.com/openintegrity/oi-audit/commands"
	"github.com/openintegrity/oi-audit/util/cobrautil"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	streams := commands.StdStreams()
	rootCmd := commands.NewRootCmd(filepath.Base(os.Args[0]), streams)

	stop := setupDebugProfiles()
	err := rootCmd.Execute()
	stop()
	os.Exit(exitCode(streams.Err, err))
}

// exitCode reports err on w and returns the process exit status for it.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return audit.ExitSuccess
	}

	var ec cobrautil.ExitCodeError
	if errors.As(err, &ec) {
		// the report has already been printed
		return int(ec)
	}

	var ierr *cobrautil.InterruptedError
	if errors.As(err, &ierr) {
		return ierr.ExitCode()
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		fmt.Fprintf(w, "ERROR: %+v\n", err)
	} else {
		fmt.Fprintf(w, "ERROR: %v\n", err)
	}
	if remedy := audit.RemedyOf(err); remedy != "" {
		for _, l := range strings.Split(remedy, "\n") {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}
	return audit.ExitCode(err)
}
