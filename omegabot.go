package omegabot

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"sync"
	"syscall"

	lru "github.com/hashicorp/golang-lru"
	"github.com/omega-numworks/omegabot/config"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	// VERSION represents the current engine version
	VERSION = "1.0.0"

	defaultLogPrefix = "omegabot: "
	defaultLogFlags  = log.Lshortfile | log.LstdFlags
)

// Bot represents what defines a bot: mostly, a name and its plugins
type Bot struct {
	name                    string
	config                  *viper.Viper
	defaultAction           Answerer
	plugins                 []*Plugin
	triggeringMsgToResponse *lru.ARCCache

	// Flattened plugin actions, set once when the bot starts
	commandsWithID        []actionDefinitionWithID
	hearActionsWithID     []actionDefinitionWithID
	reactionActionsWithID []reactionActionDefinitionWithID

	identityLock sync.RWMutex
	selfID       string
	selfName     string
	mentionRegex *regexp.Regexp

	log   *sLogger
	meter metric.Meter
	*instrumenter

	closers []io.Closer
}

// Plugin represents a plugin: its name, its actions and the services injected by the engine
// when it starts
type Plugin struct {
	Name string

	Commands        []ActionDefinition
	HearActions     []ActionDefinition
	ReactionActions []ReactionActionDefinition

	// Logger is injected on startup
	Logger SLogger

	// ChatDriver is injected on startup and used to send or delete messages outside of answers
	ChatDriver ChatDriver

	// EmojiReactor is injected on startup
	EmojiReactor EmojiReactor

	// UserInfoFinder is injected on startup
	UserInfoFinder UserInfoFinder
}

// ActionDefinition represents how an action is triggered, published, used and described
// along with defining the function defining its behavior
type ActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	// Matcher that will determine whether or not the action should be triggered
	Match Matcher

	// Usage example
	Usage string

	// Help description for the action
	Description string

	// Function to execute if the Matcher matches
	Answer Answerer
}

// String returns a friendly description of an ActionDefinition
func (a ActionDefinition) String() string {
	return fmt.Sprintf("`%s` - %s", a.Usage, a.Description)
}

// ReactionActionDefinition represents an action run on every emoji reaction added to a message
type ReactionActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	// Help description for the action
	Description string

	// Function to execute for every reaction
	Handle ReactionHandler
}

// IncomingMessage holds data for an incoming slack message. In addition to a slack.Msg, it also has
// a normalized text that is the original text stripped from the "<@Mention>" prefix when a message
// is addressed to a bot
type IncomingMessage struct {
	// The original slack.Msg text stripped from the "<@Mention>" prefix, if applicable
	NormalizedText string
	slack.Msg
}

// IncomingReaction holds data for an emoji reaction added to a message
type IncomingReaction struct {
	// Reaction is the emoji name (i.e. wastebasket rather than :wastebasket:)
	Reaction string

	// User is the id of the user who reacted
	User string

	// UserIsBot is true when the reacting user is a bot (including this one)
	UserIsBot bool

	// Channel and Timestamp identify the message reacted to
	Channel   string
	Timestamp string
}

// Matcher is the function that determines whether or not an action should be triggered. Note that a match doesn't guarantee that the action should
// actually respond with anything once invoked
type Matcher func(m *IncomingMessage) bool

// Answerer is what gets executed when an ActionDefinition is triggered. To signal the absence of an answer, an action should return nil
type Answerer func(m *IncomingMessage) *Answer

// ReactionHandler is what gets executed for every reaction
type ReactionHandler func(r *IncomingReaction)

// actionDefinitionWithID holds an action definition along with its identifier string and the name of its plugin
type actionDefinitionWithID struct {
	ActionDefinition
	id         string
	pluginName string
}

// reactionActionDefinitionWithID holds a reaction action definition along with the name of its plugin
type reactionActionDefinitionWithID struct {
	ReactionActionDefinition
	pluginName string
}

// SlackMessageID holds the elements that form a unique message identifier for slack. Technically, slack also uses
// the workspace id as the first part of that unique identifier but since an instance only lives within
// a single workspace, that part is left out
type SlackMessageID struct {
	channelID string
	timestamp string
}

func (id SlackMessageID) String() string {
	return fmt.Sprintf("%s/%s", id.channelID, id.timestamp)
}

// OutgoingMessage holds a plugin generated answer along with the plugin action identifier
type OutgoingMessage struct {
	*Answer

	channelID string

	// The identifier of the source of the outgoing message. The format being: pluginName.c[commandIndex] (for a command) or pluginName.h[actionIndex] (for an hear action)
	pluginIdentifier string
}

// terminationEvent ends the event loop
type terminationEvent struct {
}

// runDependencies holds the platform services used while running
type runDependencies struct {
	chatDriver     ChatDriver
	emojiReactor   EmojiReactor
	userInfoFinder UserInfoFinder
	selfInfoFinder selfInfoFinder
}

// Option defines an option for a Bot
type Option func(*Bot)

// OptionLog sets a logger for the bot. If OptionLogfile is also used, the last one wins
func OptionLog(logger *log.Logger) func(*Bot) {
	return func(b *Bot) {
		b.log = NewSLogger(logger, b.config.GetBool(config.DebugKey))
	}
}

// OptionLogfile sets a logfile for the bot. If OptionLog is also used, the last one wins
func OptionLogfile(logfile *os.File) func(*Bot) {
	return func(b *Bot) {
		b.log = NewSLogger(log.New(logfile, defaultLogPrefix, defaultLogFlags), b.config.GetBool(config.DebugKey))
	}
}

// OptionMeter sets the meter used to create all instruments. Defaults to a no-op meter
func OptionMeter(meter metric.Meter) func(*Bot) {
	return func(b *Bot) {
		b.meter = meter
	}
}

// New creates a new bot given a name and a configuration. Plugins are added with RegisterPlugin or
// with the Builder
func New(name string, v *viper.Viper, options ...Option) (b *Bot, err error) {
	triggeringMsgToResponse, err := lru.NewARC(v.GetInt(config.ResponseCacheSizeKey))
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid response cache size [%d]", v.GetInt(config.ResponseCacheSizeKey))
	}

	b = &Bot{
		name:                    name,
		config:                  v,
		plugins:                 make([]*Plugin, 0),
		triggeringMsgToResponse: triggeringMsgToResponse,
		log:                     NewSLogger(log.New(os.Stdout, defaultLogPrefix, defaultLogFlags), v.GetBool(config.DebugKey)),
		meter:                   noop.NewMeterProvider().Meter(name),
		closers:                 make([]io.Closer, 0),
	}
	b.defaultAction = func(m *IncomingMessage) *Answer {
		return &Answer{Text: fmt.Sprintf("I don't understand, ask me for \"%s\" to get a list of things I do", helpPluginName)}
	}

	for _, option := range options {
		option(b)
	}

	return b, nil
}

// RegisterPlugin registers a plugin with the engine. This should be invoked prior to calling Run
func (b *Bot) RegisterPlugin(p *Plugin) {
	b.plugins = append(b.plugins, p)
}

// Close closes all closers registered with the bot (stores, registries). It should be deferred
// right after creating the bot
func (b *Bot) Close() (err error) {
	for _, c := range b.closers {
		if cerr := c.Close(); cerr != nil {
			b.log.Printf("Error closing [%v]: %v\n", c, cerr)
			err = cerr
		}
	}

	return err
}

// Run connects to slack and processes events until the process is interrupted
func (b *Bot) Run() (err error) {
	api := slack.New(
		b.config.GetString(config.TokenKey),
		slack.OptionDebug(b.config.GetBool(config.DebugKey)),
		slack.OptionLog(log.New(os.Stdout, "slack: ", defaultLogFlags)),
	)

	rtm := api.NewRTM()
	go rtm.ManageConnection()
	go b.watchForTerminationSignalToAbort(rtm.IncomingEvents)

	err = b.runInternal(rtm.IncomingEvents, &runDependencies{chatDriver: api, emojiReactor: api, userInfoFinder: api, selfInfoFinder: rtm})

	if derr := rtm.Disconnect(); derr != nil {
		b.log.Printf("Error disconnecting: %v\n", derr)
	}

	return err
}

// watchForTerminationSignalToAbort waits for a SIGTERM or SIGINT and sends a termination event to end the event loop.
// This is meant to run in a goroutine given that it is blocking
func (b *Bot) watchForTerminationSignalToAbort(events chan<- slack.RTMEvent) {
	tSignals := make(chan os.Signal, 1)
	signal.Notify(tSignals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-tSignals

	b.log.Debugf("Received termination signal [%s], terminating processing\n", sig)
	events <- slack.RTMEvent{Type: "termination", Data: &terminationEvent{}}
}

// runInternal sets up plugins and processes events until the events channel closes, a termination event
// is received or the credentials are rejected. Workers are drained before returning
func (b *Bot) runInternal(events <-chan slack.RTMEvent, deps *runDependencies) (err error) {
	b.RegisterPlugin(&b.newHelpPlugin(VERSION).Plugin)

	b.instrumenter, err = newInstrumenter(b.name, b.meter, b.plugins)
	if err != nil {
		return errors.Wrap(err, "Error creating instruments")
	}

	services, err := b.newServices(deps)
	if err != nil {
		return err
	}

	b.injectServices(services)
	b.attachIdentifiersToPluginActions()

	pr, err := newPartitionRouter(b.config.GetInt(config.MessageProcessingPartitionCount), b.config.GetInt(config.MessageProcessingBufferedMessageCount), b.log, b.instrumenter)
	if err != nil {
		return err
	}

	pr.start(func(e slack.RTMEvent) {
		b.processEvent(e, services)
	})
	defer pr.stop()

	for e := range events {
		switch ev := e.Data.(type) {
		case *slack.ConnectedEvent:
			b.log.Printf("Connected, connection counter: %d\n", ev.ConnectionCount)
			b.cacheSelfIdentity(deps.selfInfoFinder)

		case *slack.MessageEvent:
			b.coreMetrics.msgsSeen.Add(context.Background(), 1, b.nameAttrs(""))
			pr.route(e, originalMessageID(ev))

		case *slack.ReactionAddedEvent:
			b.coreMetrics.msgsSeen.Add(context.Background(), 1, b.nameAttrs(""))
			pr.route(e, SlackMessageID{channelID: ev.Item.Channel, timestamp: ev.Item.Timestamp})

		case *slack.LatencyReport:
			b.log.Printf("Current latency: %v\n", ev.Value)
			b.coreMetrics.slackLatencyMillis.Record(context.Background(), ev.Value.Milliseconds(), b.nameAttrs(""))

		case *slack.RTMError:
			b.log.Printf("Error: %s\n", ev.Error())

		case *slack.InvalidAuthEvent:
			b.log.Printf("Invalid credentials\n")
			return fmt.Errorf("Invalid credentials")

		case *terminationEvent:
			b.log.Debugf("Termination event received, stopping\n")
			return nil

		default:
			// Ignoring other events
		}
	}

	return nil
}

// newServices decorates the platform services with telemetry and caching
func (b *Bot) newServices(deps *runDependencies) (services *runDependencies, err error) {
	cd, err := newChatDriverWithTelemetry(deps.chatDriver, b.name, b.meter)
	if err != nil {
		return nil, errors.Wrap(err, "Error instrumenting chat driver")
	}

	er, err := newEmojiReactorWithTelemetry(deps.emojiReactor, b.name, b.meter)
	if err != nil {
		return nil, errors.Wrap(err, "Error instrumenting emoji reactor")
	}

	tuf, err := newUserInfoFinderWithTelemetry(deps.userInfoFinder, b.name, b.meter)
	if err != nil {
		return nil, errors.Wrap(err, "Error instrumenting user info finder")
	}

	uf, err := NewCachingUserInfoFinder(b.config, tuf, b.log)
	if err != nil {
		return nil, err
	}

	return &runDependencies{chatDriver: cd, emojiReactor: er, userInfoFinder: uf, selfInfoFinder: deps.selfInfoFinder}, nil
}

// injectServices sets the services on every plugin
func (b *Bot) injectServices(services *runDependencies) {
	for _, p := range b.plugins {
		p.Logger = b.log
		p.ChatDriver = services.chatDriver
		p.EmojiReactor = services.emojiReactor
		p.UserInfoFinder = services.userInfoFinder
	}
}

// attachIdentifiersToPluginActions flattens plugin actions and attaches an identifier to each of them.
// The identifiers are generated the following way:
//   - pluginName.c[pluginIndexOfTheCommand] for commands
//   - pluginName.h[pluginIndexOfTheHearAction] for hear actions
//
// Identifiers key the answers tracked for a triggering message so they only need to be stable
// for the duration of an execution
func (b *Bot) attachIdentifiersToPluginActions() {
	b.commandsWithID = make([]actionDefinitionWithID, 0)
	b.hearActionsWithID = make([]actionDefinitionWithID, 0)
	b.reactionActionsWithID = make([]reactionActionDefinitionWithID, 0)

	for _, p := range b.plugins {
		for i, c := range p.Commands {
			b.commandsWithID = append(b.commandsWithID, actionDefinitionWithID{ActionDefinition: c, id: fmt.Sprintf("%s.c[%d]", p.Name, i), pluginName: p.Name})
		}

		for i, h := range p.HearActions {
			b.hearActionsWithID = append(b.hearActionsWithID, actionDefinitionWithID{ActionDefinition: h, id: fmt.Sprintf("%s.h[%d]", p.Name, i), pluginName: p.Name})
		}

		for _, r := range p.ReactionActions {
			b.reactionActionsWithID = append(b.reactionActionsWithID, reactionActionDefinitionWithID{ReactionActionDefinition: r, pluginName: p.Name})
		}
	}
}

// cacheSelfIdentity gets "our" identity and keeps it to recognize our own messages and mentions
func (b *Bot) cacheSelfIdentity(sif selfInfoFinder) {
	info := sif.GetInfo()
	if info == nil || info.User == nil {
		b.log.Printf("Connected but self identity is unavailable\n")
		return
	}

	b.identityLock.Lock()
	defer b.identityLock.Unlock()

	b.selfID = info.User.ID
	b.selfName = info.User.Name
	b.mentionRegex = regexp.MustCompile(fmt.Sprintf(`(?s)^(?:<@%s>|@?%s):?\s+(.+)$`, regexp.QuoteMeta(b.selfID), regexp.QuoteMeta(b.selfName)))

	b.log.Debugf("Caching self id [%s] and self name [%s]\n", b.selfID, b.selfName)
}

func (b *Bot) identity() (selfID string, mentionRegex *regexp.Regexp) {
	b.identityLock.RLock()
	defer b.identityLock.RUnlock()

	return b.selfID, b.mentionRegex
}

// originalMessageID returns the id of the message an event is about. For deletions, that's the id
// of the deleted message rather than the id of the deletion event
func originalMessageID(msgEvent *slack.MessageEvent) (id SlackMessageID) {
	switch msgEvent.SubType {
	case "message_deleted":
		return SlackMessageID{channelID: msgEvent.Channel, timestamp: msgEvent.DeletedTimestamp}
	case "message_changed":
		if msgEvent.SubMessage != nil {
			return SlackMessageID{channelID: msgEvent.Channel, timestamp: msgEvent.SubMessage.Timestamp}
		}
	}

	return SlackMessageID{channelID: msgEvent.Channel, timestamp: msgEvent.Timestamp}
}

// processEvent processes an event dispatched to a partition worker
func (b *Bot) processEvent(e slack.RTMEvent, services *runDependencies) {
	switch ev := e.Data.(type) {
	case *slack.MessageEvent:
		b.processMessageEvent(ev, services)
	case *slack.ReactionAddedEvent:
		d := measure(func() {
			b.processReactionEvent(ev, services)
		})
		b.recordProcessed(reactionMsgType, d)
	}
}

// processMessageEvent handles new and deleted messages. Edits and other message subtypes are ignored
func (b *Bot) processMessageEvent(msgEvent *slack.MessageEvent, services *runDependencies) {
	switch msgEvent.SubType {
	case "message_deleted":
		d := measure(func() {
			b.processDeletedMessage(msgEvent, services.chatDriver)
		})
		b.recordProcessed(deleteMsgType, d)

	case "", "thread_broadcast", "file_share", "me_message":
		if !b.isFromHuman(&msgEvent.Msg, services.userInfoFinder) {
			b.log.Debugf("Ignoring message [%s] not written by a human\n", originalMessageID(msgEvent))
			return
		}

		d := measure(func() {
			b.processNewMessage(msgEvent, services.chatDriver)
		})
		b.recordProcessed(newMsgType, d)

	default:
		b.log.Debugf("Ignoring message [%s] with subtype [%s]\n", originalMessageID(msgEvent), msgEvent.SubType)
	}
}

// isFromHuman returns false for messages posted by bots, including ourselves. Messages whose author can't be
// resolved are considered human-authored
func (b *Bot) isFromHuman(m *slack.Msg, finder UserInfoFinder) bool {
	selfID, _ := b.identity()

	if m.BotID != "" || m.SubType == "bot_message" || m.User == "" || m.User == selfID {
		return false
	}

	bot, err := isBot(finder, m.User)
	if err != nil {
		b.log.Printf("Error resolving author [%s] of message, processing it as human-authored: %v\n", m.User, err)
		return true
	}

	return !bot
}

// processDeletedMessage deletes all answers triggered by a message that was deleted
func (b *Bot) processDeletedMessage(msgEvent *slack.MessageEvent, deleter MessageDeleter) {
	deletedMessageID := SlackMessageID{channelID: msgEvent.Channel, timestamp: msgEvent.DeletedTimestamp}

	existingResponses, exists := b.triggeringMsgToResponse.Get(deletedMessageID)
	if !exists {
		return
	}

	for _, r := range existingResponses.(map[string]SlackMessageID) {
		if _, _, err := deleter.DeleteMessage(r.channelID, r.timestamp); err != nil {
			b.log.Printf("Error deleting answer [%s] to deleted message [%s]: %v\n", r, deletedMessageID, err)
		}
	}

	b.triggeringMsgToResponse.Remove(deletedMessageID)
}

// processNewMessage routes a new message to plugin actions and sends their answers
func (b *Bot) processNewMessage(msgEvent *slack.MessageEvent, sender MessageSender) {
	incomingMessageID := SlackMessageID{channelID: msgEvent.Channel, timestamp: msgEvent.Timestamp}

	outMsgs := b.routeMessage(&msgEvent.Msg)
	b.sendOutgoingMessages(sender, &msgEvent.Msg, incomingMessageID, outMsgs)
}

// routeMessage runs actions for a message. The rules are the following:
//  1. Hear actions run on every message
//  2. Commands run on messages with a direct mention to us (@name) or on direct messages
//  3. A directed message that matches no command nor hear action gets the default answer
func (b *Bot) routeMessage(m *slack.Msg) (responses []*OutgoingMessage) {
	responses = make([]*OutgoingMessage, 0)

	commandText, directed, mentioned := b.commandText(m)

	commandsMatched := false
	if directed {
		var cmdResponses []*OutgoingMessage
		cmdResponses, commandsMatched = b.handleMessage(b.commandsWithID, commandText, m, mentioned)
		responses = append(responses, cmdResponses...)
	}

	hearResponses, hearMatched := b.handleMessage(b.hearActionsWithID, m.Text, m, false)
	responses = append(responses, hearResponses...)

	if directed && !commandsMatched && !hearMatched {
		answer := b.defaultAction(&IncomingMessage{NormalizedText: commandText, Msg: *m})
		responses = append(responses, &OutgoingMessage{Answer: addressTo(answer, m, mentioned), channelID: m.Channel, pluginIdentifier: "default"})
	}

	return responses
}

// commandText returns the text of a command when the message is addressed to us
func (b *Bot) commandText(m *slack.Msg) (text string, directed bool, mentioned bool) {
	_, mentionRegex := b.identity()

	if mentionRegex != nil {
		if matches := mentionRegex.FindStringSubmatch(m.Text); matches != nil {
			return matches[1], true, true
		}
	}

	if isDirectChannel(m.Channel) {
		return m.Text, true, false
	}

	return "", false, false
}

func isDirectChannel(channelID string) bool {
	return len(channelID) > 0 && channelID[0] == 'D'
}

// handleMessage runs every matching action. Note that more than one action can be triggered during the processing of a single message
func (b *Bot) handleMessage(actions []actionDefinitionWithID, text string, m *slack.Msg, mentioned bool) (outMsgs []*OutgoingMessage, matched bool) {
	outMsgs = make([]*OutgoingMessage, 0)
	inMsg := &IncomingMessage{NormalizedText: text, Msg: *m}

	for _, action := range actions {
		if !action.Match(inMsg) {
			continue
		}

		matched = true

		var answer *Answer
		d := measure(func() {
			answer = action.Answer(inMsg)
		})
		b.recordPluginAction(action.pluginName, d, answer != nil)

		if answer != nil {
			outMsgs = append(outMsgs, &OutgoingMessage{Answer: addressTo(answer, m, mentioned), channelID: m.Channel, pluginIdentifier: action.id})
		}
	}

	return outMsgs, matched
}

// addressTo prefixes the answer to a mention with a mention of its author
func addressTo(answer *Answer, m *slack.Msg, mentioned bool) *Answer {
	if !mentioned || answer.Text == "" {
		return answer
	}

	addressed := *answer
	addressed.Text = fmt.Sprintf("<@%s>: %s", m.User, answer.Text)

	return &addressed
}

// sendOutgoingMessages sends out answers and keeps track of them to delete them along with the triggering message
func (b *Bot) sendOutgoingMessages(sender MessageSender, m *slack.Msg, incomingMessageID SlackMessageID, outMsgs []*OutgoingMessage) {
	newResponseByActionID := make(map[string]SlackMessageID)

	for _, o := range outMsgs {
		rID, tracked, err := b.sendNewMessage(sender, o, m)
		if err != nil {
			b.log.Printf("Unable to send answer triggered by [%s]: %v\n", incomingMessageID, err)
		} else if tracked {
			newResponseByActionID[o.pluginIdentifier] = rID
		}
	}

	if len(newResponseByActionID) > 0 {
		b.log.Debugf("Adding answers to triggering message [%s]: %v\n", incomingMessageID, newResponseByActionID)
		b.triggeringMsgToResponse.Add(incomingMessageID, newResponseByActionID)
	}
}

// sendNewMessage sends an answer and returns the id of the message. Ephemeral answers aren't tracked
func (b *Bot) sendNewMessage(sender MessageSender, o *OutgoingMessage, m *slack.Msg) (rID SlackMessageID, tracked bool, err error) {
	selfID, _ := b.identity()
	sendOpts := ApplyAnswerOpts(o.Options...)

	options := []slack.MsgOption{slack.MsgOptionText(o.Text, false), slack.MsgOptionUser(selfID), slack.MsgOptionAsUser(true)}
	if len(o.Attachments) > 0 {
		options = append(options, slack.MsgOptionAttachments(o.Attachments...))
	}

	if len(o.ContentBlocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(o.ContentBlocks...))
	}

	if threadTS, threaded := b.resolveThreading(sendOpts, m); threaded {
		options = append(options, slack.MsgOptionTS(threadTS))

		if b.resolveBroadcast(sendOpts) {
			options = append(options, slack.MsgOptionBroadcast())
		}
	}

	userID, ephemeral := sendOpts[EphemeralAnswerToOpt]
	if ephemeral {
		options = append(options, slack.MsgOptionPostEphemeral(userID))
	}

	channelID, timestamp, _, err := sender.SendMessage(o.channelID, options...)
	if err != nil {
		return SlackMessageID{}, false, err
	}

	return SlackMessageID{channelID: channelID, timestamp: timestamp}, !ephemeral, nil
}

// resolveThreading returns the timestamp of the thread to answer in, if any. Answers to messages in a thread
// stay in that thread unless an answer option explicitly disables threading
func (b *Bot) resolveThreading(sendOpts map[string]string, m *slack.Msg) (threadTS string, threaded bool) {
	threaded = b.config.GetBool(config.ThreadedRepliesKey) || m.ThreadTimestamp != ""
	if v, ok := sendOpts[ThreadedReplyOpt]; ok {
		threaded, _ = strconv.ParseBool(v)
	}

	if !threaded {
		return "", false
	}

	if ts, ok := sendOpts[ThreadTimestamp]; ok {
		return ts, true
	}

	if m.ThreadTimestamp != "" {
		return m.ThreadTimestamp, true
	}

	return m.Timestamp, true
}

func (b *Bot) resolveBroadcast(sendOpts map[string]string) (broadcast bool) {
	broadcast = b.config.GetBool(config.BroadcastThreadedRepliesKey)
	if v, ok := sendOpts[BroadcastOpt]; ok {
		broadcast, _ = strconv.ParseBool(v)
	}

	return broadcast
}

// processReactionEvent resolves whether the reacting user is a bot and runs every reaction action
func (b *Bot) processReactionEvent(ev *slack.ReactionAddedEvent, services *runDependencies) {
	if ev.Item.Type != "message" {
		return
	}

	r := &IncomingReaction{Reaction: ev.Reaction, User: ev.User, Channel: ev.Item.Channel, Timestamp: ev.Item.Timestamp}

	selfID, _ := b.identity()
	if ev.User == selfID {
		r.UserIsBot = true
	} else {
		bot, err := isBot(services.userInfoFinder, ev.User)
		if err != nil {
			b.log.Printf("Error resolving user [%s] reacting to [%s/%s], treating it as a bot: %v\n", ev.User, r.Channel, r.Timestamp, err)
			bot = true
		}
		r.UserIsBot = bot
	}

	for _, action := range b.reactionActionsWithID {
		d := measure(func() {
			action.Handle(r)
		})
		b.recordPluginAction(action.pluginName, d, false)
	}
}
