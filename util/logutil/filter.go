package logutil

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewFilter returns a hook that drops debug entries containing any of the
// given substrings.
func NewFilter(filters ...string) logrus.Hook {
	dl := logrus.New()
	dl.SetOutput(io.Discard)
	return &logsFilter{
		filters:       filters,
		discardLogger: dl,
	}
}

type logsFilter struct {
	filters       []string
	discardLogger *logrus.Logger
}

func (d *logsFilter) Levels() []logrus.Level {
	return []logrus.Level{logrus.DebugLevel}
}

func (d *logsFilter) Fire(entry *logrus.Entry) error {
	for _, f := range d.filters {
		if strings.Contains(entry.Message, f) {
			entry.Logger = d.discardLogger
			return nil
		}
	}
	return nil
}
