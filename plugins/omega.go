// Package plugins provides the plugins of the omegabot instance
package plugins

import (
	"context"
	"fmt"
	"time"

	"github.com/omega-numworks/omegabot"
	"github.com/omega-numworks/omegabot/actions"
	"github.com/omega-numworks/omegabot/colorapi"
	"github.com/omega-numworks/omegabot/config"
	"github.com/omega-numworks/omegabot/dismiss"
	"github.com/omega-numworks/omegabot/embed"
	"github.com/omega-numworks/omegabot/plugin"
	"github.com/omega-numworks/omegabot/reference"
	"github.com/omega-numworks/omegabot/tracker"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

const (
	// OmegaPluginName holds identifying name for the omega plugin
	OmegaPluginName = "omega"
)

// Configuration keys of the omega plugin
const (
	// TrackerBaseURLKey is the issue tracker api base url, string value
	TrackerBaseURLKey = "trackerBaseURL"
	// TrackerTokenKey is the issue tracker api token, string value
	TrackerTokenKey = "trackerToken"
	// ColorBaseURLKey is the color api base url, string value
	ColorBaseURLKey = "colorBaseURL"
	// RequestTimeoutKey is the timeout of every outbound request, duration value
	RequestTimeoutKey = "requestTimeout"
	// DismissTimeoutKey is the length of the window during which issue embeds can be dismissed, duration value
	DismissTimeoutKey = "dismissTimeout"
	// DismissEmojiKey is the name of the emoji that dismisses an issue embed, string value
	DismissEmojiKey = "dismissEmoji"
	// RepositoriesKey is the section mapping repository selectors to owner/name repositories
	RepositoriesKey = "repositories"
)

const requestFailedFormat = "Error during request (%d)"

// IssueFetcher fetches issues and pull request commits
type IssueFetcher interface {
	FetchIssue(ctx context.Context, repo tracker.Repository, number int) (issue *tracker.Issue, err error)
	FetchCommits(ctx context.Context, issue *tracker.Issue) (commits []tracker.Commit, err error)
}

// ColorFetcher looks up colors by their hexadecimal code
type ColorFetcher interface {
	FetchColor(ctx context.Context, code string) (color *colorapi.Color, err error)
}

// Omega holds the plugin data for the omega plugin
type Omega struct {
	omegabot.Plugin

	issues         IssueFetcher
	colors         ColorFetcher
	registry       *dismiss.Registry
	repositories   map[reference.Selector]tracker.Repository
	requestTimeout time.Duration
}

// NewOmega creates a new instance of the omega plugin. Issue embeds are registered with the
// registry so they can be dismissed
func NewOmega(pc *config.PluginConfig, issues IssueFetcher, colors ColorFetcher, registry *dismiss.Registry) (o *Omega, err error) {
	repositories, err := resolveRepositories(pc)
	if err != nil {
		return nil, err
	}

	o = &Omega{issues: issues, colors: colors, registry: registry, repositories: repositories}
	o.requestTimeout = config.GetDurationOrDefault(pc, RequestTimeoutKey, tracker.DefaultRequestTimeout)

	o.Plugin = *plugin.New(OmegaPluginName).
		WithHearAction(actions.NewHearAction().
			WithMatcher(matchColor).
			WithUsage("#<hex code>").
			WithDescription("Show the name and notations of a color").
			WithAnswerer(o.answerColor).
			Build()).
		WithHearAction(actions.NewHearAction().
			WithMatcher(matchIssueReferences).
			WithUsage("#<number>[e|u|l]").
			WithDescription("Show an issue or pull request of omega, or of epsilon (e), upsilon (u) or lambda (l) with a suffix").
			WithAnswerer(o.postIssues).
			Build()).
		WithReactionAction(actions.NewReactionAction().
			WithDescriptionf("Delete an issue embed by reacting with :%s: while the bot's own :%s: is still on it", registry.Marker(), registry.Marker()).
			WithHandler(o.dismissEmbed).
			Build()).
		Build()

	return o, nil
}

// resolveRepositories returns the default repositories with the overrides found in the plugin configuration
func resolveRepositories(pc *config.PluginConfig) (repositories map[reference.Selector]tracker.Repository, err error) {
	repositories = make(map[reference.Selector]tracker.Repository)
	for sel, repo := range tracker.DefaultRepositories {
		repositories[sel] = repo
	}

	for _, sel := range reference.Selectors {
		key := fmt.Sprintf("%s.%s", RepositoriesKey, sel)
		if !pc.IsSet(key) {
			continue
		}

		repo, err := tracker.ParseRepository(pc.GetString(key))
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid [%s] configuration for plugin [%s]", key, OmegaPluginName)
		}
		repositories[sel] = repo
	}

	return repositories, nil
}

func matchColor(m *omegabot.IncomingMessage) bool {
	_, ok := reference.ParseColor(m.NormalizedText)
	return ok
}

func matchIssueReferences(m *omegabot.IncomingMessage) bool {
	return reference.HasReferences(m.NormalizedText)
}

// answerColor answers with the embed of the color found in the message
func (o *Omega) answerColor(m *omegabot.IncomingMessage) *omegabot.Answer {
	code, _ := reference.ParseColor(m.NormalizedText)

	ctx, cancel := context.WithTimeout(context.Background(), o.requestTimeout)
	defer cancel()

	color, err := o.colors.FetchColor(ctx, code)
	if err != nil {
		var fetchErr *colorapi.FetchFailedError
		if errors.As(err, &fetchErr) {
			return &omegabot.Answer{Text: fmt.Sprintf(requestFailedFormat, fetchErr.StatusCode)}
		}

		o.Logger.Printf("[%s] Error fetching color #%s: %v\n", OmegaPluginName, code, err)
		return nil
	}

	d, err := embed.RenderColor(color, code)
	if err != nil {
		o.Logger.Printf("[%s] Error rendering color #%s: %v\n", OmegaPluginName, code, err)
		return nil
	}

	return &omegabot.Answer{Attachments: []slack.Attachment{d.Attachment()}}
}

// postIssues posts the embed of every issue referenced in the message and registers it with the
// dismiss registry. Processing stops at the first fetch failure. The embeds are posted directly
// rather than answered since each one is tracked on its own
func (o *Omega) postIssues(m *omegabot.IncomingMessage) *omegabot.Answer {
	for _, ref := range reference.Find(m.NormalizedText) {
		issue, err := o.fetchIssue(ref)
		if err != nil {
			var fetchErr *tracker.FetchFailedError
			if errors.As(err, &fetchErr) {
				return &omegabot.Answer{Text: fmt.Sprintf(requestFailedFormat, fetchErr.StatusCode)}
			}

			o.Logger.Printf("[%s] Error fetching issue %s: %v\n", OmegaPluginName, ref, err)
			return nil
		}

		var commits []tracker.Commit
		if issue.IsPullRequest() {
			if commits, err = o.fetchCommits(issue); err != nil {
				o.Logger.Printf("[%s] Error fetching commits of %s, rendering without them: %v\n", OmegaPluginName, ref, err)
				commits = nil
			}
		}

		if err = o.postDismissible(m, embed.RenderIssue(issue, commits)); err != nil {
			o.Logger.Printf("[%s] Error posting issue %s: %v\n", OmegaPluginName, ref, err)
			return nil
		}
	}

	return nil
}

func (o *Omega) fetchIssue(ref reference.Reference) (issue *tracker.Issue, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.requestTimeout)
	defer cancel()

	return o.issues.FetchIssue(ctx, o.repositories[ref.Selector], ref.Number)
}

func (o *Omega) fetchCommits(issue *tracker.Issue) (commits []tracker.Commit, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.requestTimeout)
	defer cancel()

	return o.issues.FetchCommits(ctx, issue)
}

// postDismissible sends a document to the message's channel (in its thread, if any) and registers it
// with the dismiss registry
func (o *Omega) postDismissible(m *omegabot.IncomingMessage, d *embed.Document) (err error) {
	options := []slack.MsgOption{slack.MsgOptionAttachments(d.Attachment()), slack.MsgOptionAsUser(true)}
	if m.ThreadTimestamp != "" {
		options = append(options, slack.MsgOptionTS(m.ThreadTimestamp))
	}

	channelID, timestamp, _, err := o.ChatDriver.SendMessage(m.Channel, options...)
	if err != nil {
		return err
	}

	id := dismiss.MessageID{Channel: channelID, Timestamp: timestamp}
	if err = o.registry.Register(o.EmojiReactor, id); err != nil {
		// The embed stays, it just can't be dismissed
		o.Logger.Printf("[%s] Error registering [%s] as dismissible: %v\n", OmegaPluginName, id, err)
	}

	return nil
}

// dismissEmbed deletes an issue embed when a human reacts with the dismiss emoji while its window is open
func (o *Omega) dismissEmbed(r *omegabot.IncomingReaction) {
	id := dismiss.MessageID{Channel: r.Channel, Timestamp: r.Timestamp}

	deleted, err := o.registry.OnReaction(o.ChatDriver, r.Reaction, id, r.UserIsBot)
	if err != nil {
		o.Logger.Printf("[%s] Error dismissing [%s]: %v\n", OmegaPluginName, id, err)
		return
	}

	if deleted {
		o.Logger.Debugf("[%s] User [%s] dismissed [%s]\n", OmegaPluginName, r.User, id)
	}
}
