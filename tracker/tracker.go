// Package tracker fetches issue and pull request data from the GitHub issue tracker
package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/omega-numworks/omegabot/reference"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultRequestTimeout is the timeout applied to every tracker request unless overridden
	DefaultRequestTimeout = 10 * time.Second

	shortSHALength = 7
)

// Repository identifies a tracker repository
type Repository struct {
	Owner string
	Name  string
}

// String returns the owner/name form of the repository
func (r Repository) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// ParseRepository parses an owner/name repository identifier
func ParseRepository(id string) (r Repository, err error) {
	parts := strings.Split(id, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("Invalid repository [%s], expected owner/name", id)
	}

	return Repository{Owner: parts[0], Name: parts[1]}, nil
}

// DefaultRepositories maps every reference selector to its repository
var DefaultRepositories = map[reference.Selector]Repository{
	reference.Default: {Owner: "omega-numworks", Name: "omega"},
	reference.Epsilon: {Owner: "numworks", Name: "epsilon"},
	reference.Upsilon: {Owner: "UpsilonNumworks", Name: "Upsilon"},
	reference.Lambda:  {Owner: "Lambda-Numworks", Name: "Lambda"},
}

// Author holds the identity of an issue's author
type Author struct {
	Login     string
	URL       string
	AvatarURL string
}

// Issue holds the tracker data rendered for an issue or pull request
type Issue struct {
	Title  string
	URL    string
	Body   string
	Author Author
	Locked bool

	// PullRequestURL is the API url of the pull request. Empty when the issue isn't a pull request
	PullRequestURL string

	Comments int
	State    string

	// ClosedBy and ClosedAt are only set on closed issues
	ClosedBy string
	ClosedAt time.Time

	Labels []string
}

// IsPullRequest returns true if the issue is a pull request
func (i *Issue) IsPullRequest() bool {
	return i.PullRequestURL != ""
}

// Commit holds the summary of a pull request commit
type Commit struct {
	ShortSHA       string
	URL            string
	Message        string
	CommitterLogin string
}

// Client fetches issues from GitHub
type Client struct {
	gh *github.Client
}

type clientOptions struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// Option defines an option for the tracker Client
type Option func(*clientOptions)

// OptionBaseURL sets the API base url (mostly useful for tests and enterprise hosts)
func OptionBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// OptionToken sets the token used to authenticate requests
func OptionToken(token string) Option {
	return func(o *clientOptions) {
		o.token = token
	}
}

// OptionTimeout sets the timeout of every request
func OptionTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// OptionHTTPClient sets the http client used for requests. When set, OptionTimeout is ignored
func OptionHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// NewClient creates a new tracker Client
func NewClient(options ...Option) (c *Client, err error) {
	opts := clientOptions{timeout: DefaultRequestTimeout}
	for _, option := range options {
		option(&opts)
	}

	httpClient := opts.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	gh := github.NewClient(httpClient)
	if opts.token != "" {
		gh = gh.WithAuthToken(opts.token)
	}

	if opts.baseURL != "" {
		baseURL := opts.baseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL = baseURL + "/"
		}

		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid tracker base url [%s]", opts.baseURL)
		}
		gh.BaseURL = u
	}

	return &Client{gh: gh}, nil
}

// FetchIssue fetches an issue by number
func (c *Client) FetchIssue(ctx context.Context, repo Repository, number int) (issue *Issue, err error) {
	gi, _, err := c.gh.Issues.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("issue %s#%d", repo, number))
	}

	return convertIssue(gi)
}

// FetchCommits fetches the commits of a pull request issue, following the pull request url
// carried by the issue
func (c *Client) FetchCommits(ctx context.Context, issue *Issue) (commits []Commit, err error) {
	if !issue.IsPullRequest() {
		return nil, fmt.Errorf("Issue [%s] isn't a pull request", issue.URL)
	}

	req, err := c.gh.NewRequest(http.MethodGet, issue.PullRequestURL+"/commits", nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Error creating commits request for [%s]", issue.PullRequestURL)
	}

	var rcs []*github.RepositoryCommit
	if _, err = c.gh.Do(ctx, req, &rcs); err != nil {
		return nil, classify(err, fmt.Sprintf("commits of %s", issue.PullRequestURL))
	}

	commits = make([]Commit, 0, len(rcs))
	for _, rc := range rcs {
		commits = append(commits, convertCommit(rc))
	}

	return commits, nil
}

// convertIssue validates a github.Issue and converts it to our Issue type
func convertIssue(gi *github.Issue) (issue *Issue, err error) {
	missing := make([]string, 0)
	if gi.Title == nil {
		missing = append(missing, "title")
	}
	if gi.HTMLURL == nil {
		missing = append(missing, "html_url")
	}
	if gi.User == nil || gi.User.Login == nil {
		missing = append(missing, "user.login")
	}
	if gi.State == nil {
		missing = append(missing, "state")
	}
	if gi.GetState() == "closed" && gi.ClosedAt == nil {
		missing = append(missing, "closed_at")
	}

	if len(missing) > 0 {
		return nil, &ParseFailedError{What: "issue", Reason: fmt.Sprintf("missing required fields %v", missing)}
	}

	author := gi.GetUser()
	issue = &Issue{
		Title:          gi.GetTitle(),
		URL:            gi.GetHTMLURL(),
		Body:           gi.GetBody(),
		Author:         Author{Login: author.GetLogin(), URL: author.GetHTMLURL(), AvatarURL: author.GetAvatarURL()},
		Locked:         gi.GetLocked(),
		PullRequestURL: gi.GetPullRequestLinks().GetURL(),
		Comments:       gi.GetComments(),
		State:          gi.GetState(),
	}

	if issue.State == "closed" {
		issue.ClosedBy = gi.GetClosedBy().GetLogin()
		issue.ClosedAt = gi.GetClosedAt().Time
	}

	issue.Labels = make([]string, 0, len(gi.Labels))
	for _, l := range gi.Labels {
		issue.Labels = append(issue.Labels, l.GetName())
	}

	return issue, nil
}

// convertCommit converts a github.RepositoryCommit to our Commit type
func convertCommit(rc *github.RepositoryCommit) Commit {
	sha := rc.GetSHA()
	if len(sha) > shortSHALength {
		sha = sha[:shortSHALength]
	}

	return Commit{
		ShortSHA:       sha,
		URL:            rc.GetHTMLURL(),
		Message:        rc.GetCommit().GetMessage(),
		CommitterLogin: rc.GetCommitter().GetLogin(),
	}
}
