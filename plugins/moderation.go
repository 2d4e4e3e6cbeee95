package plugins

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/omega-numworks/omegabot"
	"github.com/omega-numworks/omegabot/config"
	"github.com/omega-numworks/omegabot/store"
	"github.com/pkg/errors"
)

const (
	// ModerationPluginName holds identifying name for the moderation plugin
	ModerationPluginName = "moderation"
)

// Configuration keys of the moderation plugin
const (
	// RegexChannelsKey is the section mapping channel ids to the pattern their messages must match
	RegexChannelsKey = "regexChannels"
	// AdminsKey lists the user ids allowed to change format overrides, string slice value. Everyone can
	// when empty
	AdminsKey = "admins"
)

var setFormatRegex = regexp.MustCompile(`(?s)\Aformat set <#([A-Za-z0-9]+)(?:\|[^>]*)?>\s+(.+)\z`)
var clearFormatRegex = regexp.MustCompile(`\Aformat clear <#([A-Za-z0-9]+)(?:\|[^>]*)?>\s*\z`)
var listFormatRegex = regexp.MustCompile(`\Aformat list\s*\z`)

// Moderation holds the plugin data for the moderation plugin
type Moderation struct {
	omegabot.Plugin

	configured   map[string]*regexp.Regexp
	formatStorer store.StringStorer
	admins       map[string]bool

	compiledLock sync.Mutex
	compiled     map[string]*regexp.Regexp
}

// NewModeration creates a new instance of the moderation plugin. Channel formats come from the configuration
// and can be overridden at runtime with overrides persisted in formatStorer
func NewModeration(pc *config.PluginConfig, formatStorer store.StringStorer) (m *Moderation, err error) {
	m = &Moderation{formatStorer: formatStorer, compiled: make(map[string]*regexp.Regexp)}

	m.configured = make(map[string]*regexp.Regexp)
	for channelID, pattern := range pc.GetStringMapString(RegexChannelsKey) {
		re, err := compileFormat(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid format for channel [%s] in plugin [%s] configuration", channelID, ModerationPluginName)
		}

		// Configuration keys come back lowercased while channel ids are uppercase
		m.configured[strings.ToUpper(channelID)] = re
	}

	m.admins = make(map[string]bool)
	for _, userID := range pc.GetStringSlice(AdminsKey) {
		m.admins[userID] = true
	}

	hearActions := []omegabot.ActionDefinition{
		{
			Hidden:      false,
			Match:       m.matchUnformattedMessage,
			Usage:       "any message in a moderated channel",
			Description: "Delete messages that don't match their channel's format",
			Answer:      m.deleteMessage,
		}}

	commands := []omegabot.ActionDefinition{
		{
			Hidden:      false,
			Match:       matchSetFormat,
			Usage:       "format set <#channel> <pattern>",
			Description: "Require every message of a channel to match the pattern",
			Answer:      m.setFormat,
		},
		{
			Hidden:      false,
			Match:       matchClearFormat,
			Usage:       "format clear <#channel>",
			Description: "Remove the format override of a channel",
			Answer:      m.clearFormat,
		},
		{
			Hidden:      false,
			Match:       matchListFormats,
			Usage:       "format list",
			Description: "List the format of every moderated channel",
			Answer:      m.listFormats,
		},
	}

	m.Plugin = omegabot.Plugin{Name: ModerationPluginName, Commands: commands, HearActions: hearActions}

	return m, nil
}

// compileFormat compiles a pattern that has to match a whole message
func compileFormat(pattern string) (re *regexp.Regexp, err error) {
	return regexp.Compile(fmt.Sprintf("^(?:%s)$", pattern))
}

func matchSetFormat(m *omegabot.IncomingMessage) bool {
	return setFormatRegex.MatchString(m.NormalizedText)
}

func matchClearFormat(m *omegabot.IncomingMessage) bool {
	return clearFormatRegex.MatchString(m.NormalizedText)
}

func matchListFormats(m *omegabot.IncomingMessage) bool {
	return listFormatRegex.MatchString(m.NormalizedText)
}

// formatOf returns the format of a channel. Overrides take precedence over the configuration
func (mod *Moderation) formatOf(channelID string) (re *regexp.Regexp, ok bool) {
	pattern, err := mod.formatStorer.GetString(channelID)
	if err == nil {
		if re, err = mod.compiledOverride(pattern); err == nil {
			return re, true
		}

		mod.Logger.Printf("[%s] Ignoring invalid stored format [%s] for channel [%s]: %v\n", ModerationPluginName, pattern, channelID, err)
	}

	re, ok = mod.configured[channelID]
	return re, ok
}

func (mod *Moderation) compiledOverride(pattern string) (re *regexp.Regexp, err error) {
	mod.compiledLock.Lock()
	defer mod.compiledLock.Unlock()

	if re, ok := mod.compiled[pattern]; ok {
		return re, nil
	}

	if re, err = compileFormat(pattern); err != nil {
		return nil, err
	}
	mod.compiled[pattern] = re

	return re, nil
}

// matchUnformattedMessage returns true if the message's channel has a format that the message doesn't match
func (mod *Moderation) matchUnformattedMessage(m *omegabot.IncomingMessage) bool {
	re, ok := mod.formatOf(m.Channel)
	if !ok {
		return false
	}

	return !re.MatchString(m.NormalizedText)
}

// deleteMessage deletes the message without notice
func (mod *Moderation) deleteMessage(m *omegabot.IncomingMessage) *omegabot.Answer {
	if _, _, err := mod.ChatDriver.DeleteMessage(m.Channel, m.Timestamp); err != nil {
		mod.Logger.Printf("[%s] Error deleting message [%s] in channel [%s]: %v\n", ModerationPluginName, m.Timestamp, m.Channel, err)
		return nil
	}

	mod.Logger.Debugf("[%s] Deleted message [%s] from [%s] in channel [%s]\n", ModerationPluginName, m.Timestamp, m.User, m.Channel)

	return nil
}

// isAllowed returns true if the user may change format overrides
func (mod *Moderation) isAllowed(userID string) bool {
	return len(mod.admins) == 0 || mod.admins[userID]
}

func notAllowedAnswer(m *omegabot.IncomingMessage) *omegabot.Answer {
	return &omegabot.Answer{Text: "Sorry, only moderators can change channel formats", Options: []omegabot.AnswerOption{omegabot.AnswerEphemeral(m.User)}}
}

// setFormat stores a format override for a channel
func (mod *Moderation) setFormat(m *omegabot.IncomingMessage) *omegabot.Answer {
	if !mod.isAllowed(m.User) {
		return notAllowedAnswer(m)
	}

	match := setFormatRegex.FindStringSubmatch(m.NormalizedText)
	channelID, pattern := strings.ToUpper(match[1]), strings.TrimSpace(match[2])

	if _, err := compileFormat(pattern); err != nil {
		return &omegabot.Answer{Text: fmt.Sprintf("`%s` isn't a valid pattern: %v", pattern, err)}
	}

	if err := mod.formatStorer.PutString(channelID, pattern); err != nil {
		mod.Logger.Printf("[%s] Error persisting format of channel [%s]: %v\n", ModerationPluginName, channelID, err)
		return &omegabot.Answer{Text: fmt.Sprintf("I couldn't save the format of <#%s>", channelID)}
	}

	return &omegabot.Answer{Text: fmt.Sprintf("Messages in <#%s> must now match `%s`", channelID, pattern)}
}

// clearFormat deletes the format override of a channel. The configured format, if any, applies again
func (mod *Moderation) clearFormat(m *omegabot.IncomingMessage) *omegabot.Answer {
	if !mod.isAllowed(m.User) {
		return notAllowedAnswer(m)
	}

	channelID := strings.ToUpper(clearFormatRegex.FindStringSubmatch(m.NormalizedText)[1])

	if err := mod.formatStorer.DeleteString(channelID); err != nil {
		mod.Logger.Printf("[%s] Error deleting format of channel [%s]: %v\n", ModerationPluginName, channelID, err)
		return &omegabot.Answer{Text: fmt.Sprintf("I couldn't clear the format of <#%s>", channelID)}
	}

	if re, ok := mod.configured[channelID]; ok {
		return &omegabot.Answer{Text: fmt.Sprintf("Cleared the override of <#%s>, messages must match the configured `%s` again", channelID, unwrapFormat(re))}
	}

	return &omegabot.Answer{Text: fmt.Sprintf("Cleared the format of <#%s>", channelID)}
}

// listFormats answers with the format of every moderated channel
func (mod *Moderation) listFormats(m *omegabot.IncomingMessage) *omegabot.Answer {
	overrides, err := mod.formatStorer.Scan()
	if err != nil {
		mod.Logger.Printf("[%s] Error loading format overrides: %v\n", ModerationPluginName, err)
		return &omegabot.Answer{Text: "I couldn't load the channel formats"}
	}

	formats := make(map[string]string)
	for channelID, re := range mod.configured {
		formats[channelID] = fmt.Sprintf("`%s`", unwrapFormat(re))
	}

	for channelID, pattern := range overrides {
		formats[channelID] = fmt.Sprintf("`%s` (override)", pattern)
	}

	if len(formats) == 0 {
		return &omegabot.Answer{Text: "No channel is moderated"}
	}

	channelIDs := make([]string, 0, len(formats))
	for channelID := range formats {
		channelIDs = append(channelIDs, channelID)
	}
	sort.Strings(channelIDs)

	var b strings.Builder
	b.WriteString("Moderated channels:\n")
	for _, channelID := range channelIDs {
		fmt.Fprintf(&b, "\t• <#%s> %s\n", channelID, formats[channelID])
	}

	return &omegabot.Answer{Text: b.String()}
}

// unwrapFormat returns the pattern as configured, without the whole-message anchors
func unwrapFormat(re *regexp.Regexp) string {
	return strings.TrimSuffix(strings.TrimPrefix(re.String(), "^(?:"), ")$")
}
