package plugins_test

import (
	"context"

	"github.com/omega-numworks/omegabot/colorapi"
	"github.com/omega-numworks/omegabot/tracker"
	"github.com/stretchr/testify/mock"
)

// mockIssueFetcher holds a mock implementation of IssueFetcher
type mockIssueFetcher struct {
	mock.Mock
}

// FetchIssue mocks an implementation of FetchIssue
func (mf *mockIssueFetcher) FetchIssue(ctx context.Context, repo tracker.Repository, number int) (issue *tracker.Issue, err error) {
	args := mf.Called(repo, number)

	if args.Get(0) != nil {
		issue = args.Get(0).(*tracker.Issue)
	}

	return issue, args.Error(1)
}

// FetchCommits mocks an implementation of FetchCommits
func (mf *mockIssueFetcher) FetchCommits(ctx context.Context, issue *tracker.Issue) (commits []tracker.Commit, err error) {
	args := mf.Called(issue.PullRequestURL)

	if args.Get(0) != nil {
		commits = args.Get(0).([]tracker.Commit)
	}

	return commits, args.Error(1)
}

// mockColorFetcher holds a mock implementation of ColorFetcher
type mockColorFetcher struct {
	mock.Mock
}

// FetchColor mocks an implementation of FetchColor
func (mf *mockColorFetcher) FetchColor(ctx context.Context, code string) (color *colorapi.Color, err error) {
	args := mf.Called(code)

	if args.Get(0) != nil {
		color = args.Get(0).(*colorapi.Color)
	}

	return color, args.Error(1)
}
