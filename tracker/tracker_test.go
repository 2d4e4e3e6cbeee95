package tracker_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/omega-numworks/omegabot/reference"
	"github.com/omega-numworks/omegabot/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const closedPullRequest = `{
	"title": "Fix the grapher",
	"html_url": "https://github.com/omega-numworks/omega/pull/42",
	"body": "Fixes the grapher zoom",
	"user": {"login": "quentinguidee", "html_url": "https://github.com/quentinguidee", "avatar_url": "https://avatars.githubusercontent.com/u/1"},
	"locked": true,
	"pull_request": {"url": "%s/repos/omega-numworks/omega/pulls/42"},
	"comments": 3,
	"state": "closed",
	"closed_by": {"login": "m4xi1m3"},
	"closed_at": "2020-05-03T14:07:00Z",
	"labels": [{"name": "bug"}, {"name": "grapher"}]
}`

const openIssue = `{
	"title": "Crash on boot",
	"html_url": "https://github.com/numworks/epsilon/issues/7",
	"body": null,
	"user": {"login": "someone", "html_url": "https://github.com/someone", "avatar_url": "https://avatars.githubusercontent.com/u/2"},
	"comments": 0,
	"state": "open",
	"labels": []
}`

const commits = `[
	{"sha": "0123456789abcdef", "html_url": "https://github.com/omega-numworks/omega/commit/0123456", "commit": {"message": "Fix zoom"}, "committer": {"login": "quentinguidee"}},
	{"sha": "fedcba9876543210", "html_url": "https://github.com/omega-numworks/omega/commit/fedcba9", "commit": {"message": "Add test"}, "committer": null}
]`

func newTestServer(t *testing.T) (server *httptest.Server, client *tracker.Client) {
	mux := http.NewServeMux()
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/repos/omega-numworks/omega/issues/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, closedPullRequest, server.URL)
	})
	mux.HandleFunc("/repos/numworks/epsilon/issues/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, openIssue)
	})
	mux.HandleFunc("/repos/omega-numworks/omega/issues/13", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title": "No author", "html_url": "https://github.com/x", "state": "open"}`)
	})
	mux.HandleFunc("/repos/omega-numworks/omega/issues/14", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title": `)
	})
	mux.HandleFunc("/repos/omega-numworks/omega/pulls/42/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, commits)
	})
	mux.HandleFunc("/repos/omega-numworks/omega/pulls/43/commits", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "boom"}`)
	})

	client, err := tracker.NewClient(tracker.OptionBaseURL(server.URL), tracker.OptionTimeout(5*time.Second))
	require.NoError(t, err)

	return server, client
}

func TestFetchClosedPullRequest(t *testing.T) {
	server, client := newTestServer(t)

	issue, err := client.FetchIssue(context.Background(), tracker.DefaultRepositories[reference.Default], 42)
	require.NoError(t, err)

	assert.Equal(t, &tracker.Issue{
		Title:          "Fix the grapher",
		URL:            "https://github.com/omega-numworks/omega/pull/42",
		Body:           "Fixes the grapher zoom",
		Author:         tracker.Author{Login: "quentinguidee", URL: "https://github.com/quentinguidee", AvatarURL: "https://avatars.githubusercontent.com/u/1"},
		Locked:         true,
		PullRequestURL: server.URL + "/repos/omega-numworks/omega/pulls/42",
		Comments:       3,
		State:          "closed",
		ClosedBy:       "m4xi1m3",
		ClosedAt:       time.Date(2020, time.May, 3, 14, 7, 0, 0, time.UTC),
		Labels:         []string{"bug", "grapher"},
	}, issue)
	assert.True(t, issue.IsPullRequest())
}

func TestFetchOpenIssueWithNullBody(t *testing.T) {
	_, client := newTestServer(t)

	issue, err := client.FetchIssue(context.Background(), tracker.Repository{Owner: "numworks", Name: "epsilon"}, 7)
	require.NoError(t, err)

	assert.Equal(t, "", issue.Body)
	assert.Equal(t, "open", issue.State)
	assert.Equal(t, "", issue.ClosedBy)
	assert.True(t, issue.ClosedAt.IsZero())
	assert.Empty(t, issue.Labels)
	assert.False(t, issue.IsPullRequest())
}

func TestFetchMissingIssue(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.FetchIssue(context.Background(), tracker.Repository{Owner: "omega-numworks", Name: "omega"}, 404)

	var fetchErr *tracker.FetchFailedError
	if assert.ErrorAs(t, err, &fetchErr) {
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
		assert.Contains(t, fetchErr.Error(), "404")
	}
}

func TestFetchIssueMissingRequiredFields(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.FetchIssue(context.Background(), tracker.Repository{Owner: "omega-numworks", Name: "omega"}, 13)

	var parseErr *tracker.ParseFailedError
	if assert.ErrorAs(t, err, &parseErr) {
		assert.Contains(t, parseErr.Reason, "user.login")
	}
}

func TestFetchIssueMalformedJSON(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.FetchIssue(context.Background(), tracker.Repository{Owner: "omega-numworks", Name: "omega"}, 14)

	var parseErr *tracker.ParseFailedError
	assert.ErrorAs(t, err, &parseErr)
}

func TestFetchCommits(t *testing.T) {
	server, client := newTestServer(t)

	commits, err := client.FetchCommits(context.Background(), &tracker.Issue{PullRequestURL: server.URL + "/repos/omega-numworks/omega/pulls/42"})
	require.NoError(t, err)

	assert.Equal(t, []tracker.Commit{
		{ShortSHA: "0123456", URL: "https://github.com/omega-numworks/omega/commit/0123456", Message: "Fix zoom", CommitterLogin: "quentinguidee"},
		{ShortSHA: "fedcba9", URL: "https://github.com/omega-numworks/omega/commit/fedcba9", Message: "Add test", CommitterLogin: ""},
	}, commits)
}

func TestFetchCommitsFailure(t *testing.T) {
	server, client := newTestServer(t)

	_, err := client.FetchCommits(context.Background(), &tracker.Issue{PullRequestURL: server.URL + "/repos/omega-numworks/omega/pulls/43"})

	var fetchErr *tracker.FetchFailedError
	if assert.ErrorAs(t, err, &fetchErr) {
		assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	}
}

func TestFetchCommitsOfPlainIssue(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.FetchCommits(context.Background(), &tracker.Issue{URL: "https://github.com/x/y/issues/1"})

	assert.EqualError(t, err, "Issue [https://github.com/x/y/issues/1] isn't a pull request")
}

func TestParseRepository(t *testing.T) {
	tests := map[string]struct {
		id            string
		expected      tracker.Repository
		expectedError string
	}{
		"Valid":        {id: "numworks/epsilon", expected: tracker.Repository{Owner: "numworks", Name: "epsilon"}},
		"MissingName":  {id: "numworks/", expectedError: "Invalid repository [numworks/], expected owner/name"},
		"TooManyParts": {id: "a/b/c", expectedError: "Invalid repository [a/b/c], expected owner/name"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := tracker.ParseRepository(tc.id)

			if tc.expectedError != "" {
				assert.EqualError(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, r)
				assert.Equal(t, tc.id, r.String())
			}
		})
	}
}
