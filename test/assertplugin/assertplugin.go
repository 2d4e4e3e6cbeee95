package assertplugin

import (
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/omega-numworks/omegabot"
	"github.com/omega-numworks/omegabot/test/capture"
	"github.com/slack-go/slack"
)

// Asserter represents a plugin driver/asserter and holds the bot identifier that tests are using when
// sending test messages for processing
type Asserter struct {
	t              *testing.T
	botUserID      string
	logger         *log.Logger
	userInfoFinder omegabot.UserInfoFinder

	// ChatDriver captures messages sent or deleted by plugins outside of answers
	ChatDriver *capture.ChatDriverCaptor

	// EmojiReactor captures reactions added or removed by plugins
	EmojiReactor *capture.EmojiReactionCaptor
}

// Option defines an option for the Asserter
type Option func(*Asserter)

// OptionLog sets a logger for the asserter such that this logger is attached to the plugin when driven by
// the asserter
func OptionLog(logger *log.Logger) func(*Asserter) {
	return func(a *Asserter) {
		a.logger = logger
	}
}

// OptionUserInfoFinder sets the UserInfoFinder injected in plugins
func OptionUserInfoFinder(finder omegabot.UserInfoFinder) func(*Asserter) {
	return func(a *Asserter) {
		a.userInfoFinder = finder
	}
}

// New creates a new asserter with the given botUserID (only include the id without the '@' prefix).
// The botUserID is used in order to detect commands formed with <@botUserID>
func New(t *testing.T, botUserID string, options ...Option) (a *Asserter) {
	a = &Asserter{t: t, botUserID: botUserID, logger: log.New(io.Discard, "", 0), userInfoFinder: &unknownUserInfoFinder{}}
	a.ChatDriver = capture.NewChatDriver()
	a.EmojiReactor = capture.NewEmojiReactionCaptor()

	for _, option := range options {
		option(a)
	}

	return a
}

// ResultValidator is a function to do further validation of the answers and emoji reactions resulting from
// a plugin processing of all of its commands and hear actions. The return value is meant to be true if validation
// is successful and false otherwise (following the testify convention)
type ResultValidator func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool

// DeletionValidator is a function to validate the messages deleted while a plugin handled a reaction
type DeletionValidator func(t *testing.T, deleted []capture.DeletedMessage) bool

// AnswersAndReacts drives a plugin and collects Answers as well as emoji reactions added during the processing
// of the message. Once all of those have been collected, it passes handling to a validator to assert the expected
// answers and emoji reactions. It follows the style of github.com/stretchr/testify/assert as far as returning
// true/false to indicate success for further nested testing
func (a *Asserter) AnswersAndReacts(p *omegabot.Plugin, m *slack.Msg, validate ResultValidator) (valid bool) {
	a.inject(p)

	before := len(a.EmojiReactor.Emojis())
	answers := a.driveActions(p, m)

	return validate(a.t, answers, a.EmojiReactor.Emojis()[before:])
}

// HandlesReaction runs all reaction actions of a plugin and passes the messages deleted during the
// processing to the validator
func (a *Asserter) HandlesReaction(p *omegabot.Plugin, r *omegabot.IncomingReaction, validate DeletionValidator) (valid bool) {
	a.inject(p)

	before := len(a.ChatDriver.DeletedMessages())
	for _, ra := range p.ReactionActions {
		ra.Handle(r)
	}

	return validate(a.t, a.ChatDriver.DeletedMessages()[before:])
}

func (a *Asserter) inject(p *omegabot.Plugin) {
	p.Logger = omegabot.NewSLogger(a.logger, true)
	p.ChatDriver = a.ChatDriver
	p.EmojiReactor = a.EmojiReactor
	p.UserInfoFinder = a.userInfoFinder
}

func (a *Asserter) driveActions(p *omegabot.Plugin, m *slack.Msg) (answers []*omegabot.Answer) {
	answers = make([]*omegabot.Answer, 0)
	botMentionPrefix := fmt.Sprintf("<@%s> ", a.botUserID)

	if strings.HasPrefix(m.Text, botMentionPrefix) {
		normalizedText := strings.TrimPrefix(m.Text, botMentionPrefix)
		answers = append(answers, runActions(p.Commands, &omegabot.IncomingMessage{NormalizedText: normalizedText, Msg: *m})...)
	} else if strings.HasPrefix(m.Channel, "D") {
		answers = append(answers, runActions(p.Commands, &omegabot.IncomingMessage{NormalizedText: m.Text, Msg: *m})...)
	}

	return append(answers, runActions(p.HearActions, &omegabot.IncomingMessage{NormalizedText: m.Text, Msg: *m})...)
}

func runActions(actions []omegabot.ActionDefinition, m *omegabot.IncomingMessage) (answers []*omegabot.Answer) {
	answers = make([]*omegabot.Answer, 0)

	for _, action := range actions {
		if action.Match(m) {
			a := action.Answer(m)

			if a != nil {
				answers = append(answers, a)
			}
		}
	}

	return answers
}

type unknownUserInfoFinder struct {
}

func (u *unknownUserInfoFinder) GetUserInfo(userID string) (user *slack.User, err error) {
	return nil, fmt.Errorf("user_not_found: [%s]", userID)
}
