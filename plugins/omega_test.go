package plugins_test

import (
	"testing"
	"time"

	"github.com/omega-numworks/omegabot"
	"github.com/omega-numworks/omegabot/colorapi"
	"github.com/omega-numworks/omegabot/dismiss"
	"github.com/omega-numworks/omegabot/plugins"
	"github.com/omega-numworks/omegabot/test/assertanswer"
	"github.com/omega-numworks/omegabot/test/assertplugin"
	"github.com/omega-numworks/omegabot/test/capture"
	"github.com/omega-numworks/omegabot/tracker"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var omegaRepo = tracker.Repository{Owner: "omega-numworks", Name: "omega"}

var casper = &colorapi.Color{
	Name: "Casper",
	Hex:  "#A1B2C3",
	Formats: []colorapi.Format{
		{Name: "rgb", Components: []string{"161", "178", "195"}},
		{Name: "hsl", Components: []string{"210", "24", "70"}},
		{Name: "hsv", Components: []string{"210", "17", "76"}},
	},
}

func newIssue(title string) *tracker.Issue {
	return &tracker.Issue{
		Title:  title,
		URL:    "https://github.com/omega-numworks/omega/issues/1",
		Author: tracker.Author{Login: "quentinguidee"},
		State:  "open",
		Labels: []string{},
	}
}

func newPullRequest(title string) *tracker.Issue {
	pr := newIssue(title)
	pr.PullRequestURL = "https://api.github.com/repos/omega-numworks/omega/pulls/42"

	return pr
}

type omegaFixture struct {
	omega    *plugins.Omega
	issues   *mockIssueFetcher
	colors   *mockColorFetcher
	registry *dismiss.Registry
	asserter *assertplugin.Asserter
}

func newOmegaFixture(t *testing.T, pc *viper.Viper) (f *omegaFixture) {
	f = &omegaFixture{issues: new(mockIssueFetcher), colors: new(mockColorFetcher)}
	f.registry = dismiss.New(dismiss.OptionTimeout(time.Hour))
	t.Cleanup(func() { f.registry.Close() })

	o, err := plugins.NewOmega(pc, f.issues, f.colors, f.registry)
	require.NoError(t, err)

	f.omega = o
	f.asserter = assertplugin.New(t, "bot")

	return f
}

func sentAttachments(t *testing.T, sent []capture.SentMessage) (attachments []slack.Attachment) {
	attachments = make([]slack.Attachment, 0)
	for _, s := range sent {
		a, err := s.Attachments()
		require.NoError(t, err)
		attachments = append(attachments, a...)
	}

	return attachments
}

func TestColorAnswer(t *testing.T) {
	f := newOmegaFixture(t, viper.New())
	f.colors.On("FetchColor", "a1b2c3").Return(casper, nil)

	assert.True(t, f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "#a1b2c3"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasAttachmentTitle(t, answers[0], "Casper color") &&
			assert.Equal(t, "#a1b2c3", answers[0].Attachments[0].Color) &&
			assert.Empty(t, emojis)
	}))

	assert.Equal(t, 0, f.registry.Len())
}

func TestColorFetchFailure(t *testing.T) {
	f := newOmegaFixture(t, viper.New())
	f.colors.On("FetchColor", "ffffff").Return(nil, &colorapi.FetchFailedError{StatusCode: 404, Code: "ffffff"})

	assert.True(t, f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "#ffffff"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return assert.Len(t, answers, 1) && assertanswer.HasText(t, answers[0], "Error during request (404)")
	}))
}

func TestColorWithOtherTextIsIgnored(t *testing.T) {
	f := newOmegaFixture(t, viper.New())

	assert.True(t, f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "my color is #a1b2c3"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return assert.Empty(t, answers)
	}))

	f.colors.AssertNotCalled(t, "FetchColor", mock.Anything)
}

func TestIssueEmbedsArePostedAndDismissible(t *testing.T) {
	f := newOmegaFixture(t, viper.New())
	f.issues.On("FetchIssue", omegaRepo, 1).Return(newIssue("Crash on boot"), nil)
	f.issues.On("FetchIssue", tracker.Repository{Owner: "numworks", Name: "epsilon"}, 2).Return(newIssue("Grapher zoom"), nil)

	assert.True(t, f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "see #1 and #2e"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return assert.Empty(t, answers) && assert.Equal(t, []string{"wastebasket", "wastebasket"}, emojis)
	}))

	sent := f.asserter.ChatDriver.SentMessages()
	if assert.Len(t, sent, 2) {
		attachments := sentAttachments(t, sent)
		if assert.Len(t, attachments, 2) {
			assert.Equal(t, "Crash on boot", attachments[0].Title)
			assert.Equal(t, "Grapher zoom", attachments[1].Title)
		}

		for _, s := range sent {
			assert.Equal(t, "C1", s.ChannelID)
			assert.True(t, f.registry.Pending(dismiss.MessageID{Channel: s.ChannelID, Timestamp: s.Timestamp}))
		}
	}
}

func TestIssueEmbedInThread(t *testing.T) {
	f := newOmegaFixture(t, viper.New())
	f.issues.On("FetchIssue", omegaRepo, 1).Return(newIssue("Crash on boot"), nil)

	f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Timestamp: "1589212300.000", ThreadTimestamp: "1589212200.000", Text: "#1"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return true
	})

	sent := f.asserter.ChatDriver.SentMessages()
	if assert.Len(t, sent, 1) {
		_, values, err := sent[0].Values()
		require.NoError(t, err)
		assert.Equal(t, "1589212200.000", values.Get("thread_ts"))
	}
}

func TestFetchFailureStopsTheBatch(t *testing.T) {
	f := newOmegaFixture(t, viper.New())
	f.issues.On("FetchIssue", omegaRepo, 1).Return(newIssue("Crash on boot"), nil)
	f.issues.On("FetchIssue", omegaRepo, 2).Return(nil, &tracker.FetchFailedError{StatusCode: 404, What: "issue"})

	assert.True(t, f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "#1 #2 #3"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasText(t, answers[0], "Error during request (404)") &&
			assert.Equal(t, []string{"wastebasket"}, emojis)
	}))

	assert.Len(t, f.asserter.ChatDriver.SentMessages(), 1)
	f.issues.AssertNotCalled(t, "FetchIssue", omegaRepo, 3)
}

func TestParseFailureStopsTheBatchSilently(t *testing.T) {
	f := newOmegaFixture(t, viper.New())
	f.issues.On("FetchIssue", omegaRepo, 1).Return(nil, &tracker.ParseFailedError{What: "issue", Reason: "missing required fields [title]"})

	assert.True(t, f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "#1 #2"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return assert.Empty(t, answers) && assert.Empty(t, emojis)
	}))

	assert.Empty(t, f.asserter.ChatDriver.SentMessages())
	f.issues.AssertNotCalled(t, "FetchIssue", omegaRepo, 2)
}

func TestPullRequestCommits(t *testing.T) {
	tests := map[string]struct {
		commits        []tracker.Commit
		commitsErr     error
		expectedFields []string
	}{
		"WithCommits": {
			commits:        []tracker.Commit{{ShortSHA: "0123456", URL: "https://github.com/c/0123456", Message: "Fix zoom", CommitterLogin: "quentinguidee"}},
			expectedFields: []string{"Commits", "Additional informations"},
		},
		"CommitsFetchFailure": {
			commitsErr:     &tracker.FetchFailedError{StatusCode: 500, What: "commits"},
			expectedFields: []string{"Additional informations"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := newOmegaFixture(t, viper.New())
			pr := newPullRequest("Fix the grapher")
			f.issues.On("FetchIssue", omegaRepo, 42).Return(pr, nil)
			f.issues.On("FetchCommits", pr.PullRequestURL).Return(tc.commits, tc.commitsErr)

			assert.True(t, f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "#42"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
				return assert.Empty(t, answers)
			}))

			attachments := sentAttachments(t, f.asserter.ChatDriver.SentMessages())
			if assert.Len(t, attachments, 1) {
				fields := make([]string, 0)
				for _, field := range attachments[0].Fields {
					fields = append(fields, field.Title)
				}
				assert.Equal(t, tc.expectedFields, fields)
			}
		})
	}
}

func TestReactionFailureLeavesEmbedUndismissible(t *testing.T) {
	f := newOmegaFixture(t, viper.New())
	f.asserter.EmojiReactor.AddErr = assert.AnError
	f.issues.On("FetchIssue", omegaRepo, 1).Return(newIssue("Crash on boot"), nil)

	f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "#1"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return assert.Empty(t, answers)
	})

	assert.Len(t, f.asserter.ChatDriver.SentMessages(), 1)
	assert.Equal(t, 0, f.registry.Len())
}

func TestDismiss(t *testing.T) {
	tests := map[string]struct {
		reaction        string
		userIsBot       bool
		expectedDeleted bool
	}{
		"HumanWithMarker": {reaction: "wastebasket", expectedDeleted: true},
		"BotWithMarker":   {reaction: "wastebasket", userIsBot: true, expectedDeleted: false},
		"HumanOtherEmoji": {reaction: "thumbsup", expectedDeleted: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := newOmegaFixture(t, viper.New())
			f.issues.On("FetchIssue", omegaRepo, 1).Return(newIssue("Crash on boot"), nil)

			f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "#1"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
				return true
			})

			sent := f.asserter.ChatDriver.SentMessages()
			require.Len(t, sent, 1)

			r := &omegabot.IncomingReaction{Reaction: tc.reaction, User: "U1", UserIsBot: tc.userIsBot, Channel: "C1", Timestamp: sent[0].Timestamp}
			assert.True(t, f.asserter.HandlesReaction(&f.omega.Plugin, r, func(t *testing.T, deleted []capture.DeletedMessage) bool {
				if tc.expectedDeleted {
					return assert.Equal(t, []capture.DeletedMessage{{ChannelID: "C1", Timestamp: sent[0].Timestamp}}, deleted)
				}

				return assert.Empty(t, deleted)
			}))

			assert.Equal(t, !tc.expectedDeleted, f.registry.Pending(dismiss.MessageID{Channel: "C1", Timestamp: sent[0].Timestamp}))
		})
	}
}

func TestSecondDismissIsNoop(t *testing.T) {
	f := newOmegaFixture(t, viper.New())
	f.issues.On("FetchIssue", omegaRepo, 1).Return(newIssue("Crash on boot"), nil)

	f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "#1"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return true
	})

	ts := f.asserter.ChatDriver.SentMessages()[0].Timestamp
	r := &omegabot.IncomingReaction{Reaction: "wastebasket", User: "U1", Channel: "C1", Timestamp: ts}

	f.asserter.HandlesReaction(&f.omega.Plugin, r, func(t *testing.T, deleted []capture.DeletedMessage) bool {
		return assert.Len(t, deleted, 1)
	})
	assert.True(t, f.asserter.HandlesReaction(&f.omega.Plugin, r, func(t *testing.T, deleted []capture.DeletedMessage) bool {
		return assert.Empty(t, deleted)
	}))
}

func TestRepositoryOverrides(t *testing.T) {
	pc := viper.New()
	pc.Set("repositories.e", "omega-numworks/epsilon-fork")

	f := newOmegaFixture(t, pc)
	f.issues.On("FetchIssue", tracker.Repository{Owner: "omega-numworks", Name: "epsilon-fork"}, 3).Return(newIssue("Fork issue"), nil)

	f.asserter.AnswersAndReacts(&f.omega.Plugin, &slack.Msg{Channel: "C1", Text: "#3e"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
		return assert.Empty(t, answers)
	})

	f.issues.AssertExpectations(t)
}

func TestInvalidRepositoryOverride(t *testing.T) {
	pc := viper.New()
	pc.Set("repositories.u", "not-a-repository")

	_, err := plugins.NewOmega(pc, new(mockIssueFetcher), new(mockColorFetcher), dismiss.New())

	assert.EqualError(t, err, "Invalid [repositories.u] configuration for plugin [omega]: Invalid repository [not-a-repository], expected owner/name")
}

func TestOmegaHelpEntries(t *testing.T) {
	f := newOmegaFixture(t, viper.New())

	if assert.Len(t, f.omega.HearActions, 2) {
		assert.Equal(t, "#<hex code>", f.omega.HearActions[0].Usage)
		assert.Equal(t, "#<number>[e|u|l]", f.omega.HearActions[1].Usage)
	}

	if assert.Len(t, f.omega.ReactionActions, 1) {
		assert.Contains(t, f.omega.ReactionActions[0].Description, ":wastebasket:")
	}
}
