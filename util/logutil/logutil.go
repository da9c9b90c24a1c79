package logutil

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// EnvGitTrace keeps the per-invocation git command lines in debug output.
const EnvGitTrace = "OI_AUDIT_GIT_TRACE"

// gitTraceFilter matches the debug line logged for every git invocation.
const gitTraceFilter = "running git "

// Level maps a verbosity name to a logrus level. Unknown names map to the
// default warning level.
func Level(verbosity string) logrus.Level {
	switch verbosity {
	case "quiet":
		return logrus.ErrorLevel
	case "verbose":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.WarnLevel
	}
}

// Configure sets up the standard logger to write text logs to out at lvl.
func Configure(out io.Writer, lvl logrus.Level) {
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	logrus.SetLevel(lvl)
	if trace, _ := strconv.ParseBool(os.Getenv(EnvGitTrace)); !trace {
		logrus.AddHook(NewFilter(gitTraceFilter))
	}
}
