package audit

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrHostingUnavailable is returned by a StandardsSource when the hosting
// integration is missing, unauthenticated, or the repository has no
// recognized remote.
var ErrHostingUnavailable = errors.New("hosting integration unavailable")

// StandardsReport is the community-standards state of the hosted repository.
type StandardsReport struct {
	Platform         string   `json:"platform,omitempty"`
	Repository       string   `json:"repository,omitempty"`
	URL              string   `json:"url,omitempty"`
	HealthPercentage int      `json:"healthPercentage,omitempty"`
	Missing          []string `json:"missing,omitempty"`
	Skipped          bool     `json:"skipped,omitempty"`
	Reason           string   `json:"reason,omitempty"`
}

// StandardsSource looks up community-standards expectations on the hosting
// platform.
type StandardsSource interface {
	CommunityStandards(ctx context.Context) (*StandardsReport, error)
}

// Prompter asks the operator a yes/no question.
type Prompter interface {
	Confirm(question string, def bool) (bool, error)
}

// URLOpener presents a URL to the operator, typically in a browser.
type URLOpener func(url string) error

// SurfaceStandards surfaces the hosting platform's community-standards state.
// It never gates trust: an unavailable integration is a skipped check, and
// the content of the compliance report does not affect the result.
func SurfaceStandards(ctx context.Context, src StandardsSource, p Prompter, open URLOpener) (*StandardsReport, error) {
	if src == nil {
		return &StandardsReport{Skipped: true, Reason: "no hosting integration configured"}, nil
	}
	rep, err := src.CommunityStandards(ctx)
	if err != nil {
		if errors.Is(err, ErrHostingUnavailable) {
			logrus.Debugf("skipping community standards check: %v", err)
			return &StandardsReport{Skipped: true, Reason: err.Error()}, nil
		}
		return nil, Wrap(IOError, errors.Wrap(err, "failed to query community standards"),
			"Check network access and hosting credentials (GH_TOKEN or GITHUB_TOKEN).")
	}
	if rep.URL != "" && p != nil && open != nil {
		yes, err := p.Confirm(fmt.Sprintf("Open the community standards page for %s in your browser?", rep.Repository), false)
		if err != nil {
			logrus.Debugf("prompt failed: %v", err)
		} else if yes {
			if err := open(rep.URL); err != nil {
				logrus.Warnf("failed to open %s: %v", rep.URL, err)
			}
		}
	}
	return rep, nil
}
