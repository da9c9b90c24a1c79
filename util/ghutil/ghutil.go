package ghutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/openintegrity/oi-audit/audit"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	defaultAPIURL    = "https://api.github.com"
	defaultServerURL = "https://github.com"
	requestTimeout   = 15 * time.Second
)

// Repository is a GitHub owner/name pair.
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRemote extracts the GitHub repository from a git remote URL. It
// accepts https, ssh and scp-like forms.
func ParseRemote(remote string) (Repository, bool) {
	remote = strings.TrimSpace(remote)
	var host, p string
	if u, err := url.Parse(remote); err == nil && u.Scheme != "" && u.Host != "" {
		host, p = u.Hostname(), u.Path
	} else if at := strings.Index(remote, "@"); at >= 0 {
		// git@github.com:owner/repo.git
		rest := remote[at+1:]
		h, pp, ok := strings.Cut(rest, ":")
		if !ok {
			return Repository{}, false
		}
		host, p = h, pp
	} else {
		return Repository{}, false
	}
	if !strings.EqualFold(host, "github.com") && !strings.EqualFold(host, "www.github.com") && !strings.EqualFold(host, "ssh.github.com") {
		return Repository{}, false
	}
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, false
	}
	return Repository{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}, true
}

// ActionsRepository returns the repository a GitHub Actions workflow runs
// for, if any.
func ActionsRepository() (Repository, bool) {
	// "GITHUB_ACTIONS": "true"
	if gha, ok := os.LookupEnv("GITHUB_ACTIONS"); !ok {
		return Repository{}, false
	} else if v, _ := strconv.ParseBool(gha); !v {
		return Repository{}, false
	}
	// "GITHUB_SERVER_URL": "https://github.com"
	if s := os.Getenv("GITHUB_SERVER_URL"); s != "" && !strings.EqualFold(strings.TrimSuffix(s, "/"), defaultServerURL) {
		return Repository{}, false
	}
	// "GITHUB_REPOSITORY": "openintegrity/example"
	owner, name, ok := strings.Cut(os.Getenv("GITHUB_REPOSITORY"), "/")
	if !ok || owner == "" || name == "" {
		return Repository{}, false
	}
	return Repository{Owner: owner, Name: name}, true
}

// Token returns the GitHub token from the environment.
func Token() string {
	for _, k := range []string{"GH_TOKEN", "GITHUB_TOKEN"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Client queries GitHub community standards for a single repository.
type Client struct {
	repo      Repository
	known     bool
	reason    string
	token     string
	apiURL    string
	serverURL string
	http      *http.Client
}

var _ audit.StandardsSource = &Client{}

type Option func(*Client)

// WithToken overrides the token discovered from the environment.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithAPIURL points the client at another API endpoint.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimSuffix(u, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New returns a client for the repository behind remoteURL. When the remote
// is not a GitHub repository, the GitHub Actions environment is consulted.
func New(remoteURL string, opts ...Option) *Client {
	c := &Client{
		token:     Token(),
		apiURL:    defaultAPIURL,
		serverURL: defaultServerURL,
	}
	if r, ok := ParseRemote(remoteURL); ok {
		c.repo, c.known = r, true
	} else if r, ok := ActionsRepository(); ok {
		c.repo, c.known = r, true
	} else if remoteURL == "" {
		c.reason = "repository has no origin or upstream remote"
	} else {
		c.reason = fmt.Sprintf("remote %s is not a GitHub repository", remoteURL)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type communityProfile struct {
	HealthPercentage int                        `json:"health_percentage"`
	Files            map[string]json.RawMessage `json:"files"`
}

// CommunityStandards fetches the community profile of the repository.
func (c *Client) CommunityStandards(ctx context.Context) (*audit.StandardsReport, error) {
	if !c.known {
		return nil, errors.Wrap(audit.ErrHostingUnavailable, c.reason)
	}
	if c.token == "" {
		return nil, errors.Wrap(audit.ErrHostingUnavailable, "not authenticated to GitHub (set GH_TOKEN or GITHUB_TOKEN)")
	}

	hctx := ctx
	if c.http != nil {
		hctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	}
	hc := oauth2.NewClient(hctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token}))
	hc.Timeout = requestTimeout

	endpoint := fmt.Sprintf("%s/repos/%s/%s/community/profile", c.apiURL, url.PathEscape(c.repo.Owner), url.PathEscape(c.repo.Name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	logrus.Debugf("fetching community profile %s", endpoint)
	resp, err := hc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch community profile for %s", c.repo)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.Wrap(audit.ErrHostingUnavailable, "GitHub rejected the provided token")
	case resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrapf(audit.ErrHostingUnavailable, "GitHub denied access to %s (forbidden or rate limited)", c.repo)
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(audit.ErrHostingUnavailable, "repository %s is not visible with the provided token", c.repo)
	case resp.StatusCode != http.StatusOK:
		dt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("community profile for %s: %s: %s", c.repo, resp.Status, strings.TrimSpace(string(dt)))
	}

	var p communityProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, errors.Wrapf(err, "failed to decode community profile for %s", c.repo)
	}

	var missing []string
	for name, v := range p.Files {
		if len(v) == 0 || string(v) == "null" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)

	return &audit.StandardsReport{
		Platform:         "github",
		Repository:       c.repo.String(),
		URL:              fmt.Sprintf("%s/%s/%s/community", c.serverURL, c.repo.Owner, c.repo.Name),
		HealthPercentage: p.HealthPercentage,
		Missing:          missing,
	}, nil
}
