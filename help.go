package omegabot

import (
	"fmt"
	"io"
	"strings"
)

type helpPlugin struct {
	Plugin

	name            string
	engineVersion   string
	commands        []ActionDefinition
	hearActions     []ActionDefinition
	reactionActions []ReactionActionDefinition
}

const (
	helpPluginName = "help"
)

func (b *Bot) newHelpPlugin(version string) *helpPlugin {
	helpPlugin := new(helpPlugin)
	helpPlugin.name = b.name
	helpPlugin.engineVersion = version
	helpPlugin.commands, helpPlugin.hearActions, helpPlugin.reactionActions = findAllActions(b.plugins)

	helpPlugin.Plugin = Plugin{Name: helpPluginName, Commands: []ActionDefinition{{
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "help")
		},
		Usage:       helpPluginName,
		Description: "Reply with usage instructions",
		Answer:      helpPlugin.showHelp,
	}}}
	helpPlugin.commands = append(helpPlugin.commands, helpPlugin.Commands...)

	return helpPlugin
}

// showHelp generates a message providing a list of all of the commands, hear actions and reaction actions.
// Note that definitions with the flag Hidden set to true won't be included in the list
func (h *helpPlugin) showHelp(m *IncomingMessage) *Answer {
	var b strings.Builder

	userID := m.User
	user, err := h.UserInfoFinder.GetUserInfo(userID)
	if err != nil {
		h.Logger.Debugf("Error getting user info for user id [%s] so skipping mentioning the name (it would be awkward): %v\n", userID, err)
	} else {
		fmt.Fprintf(&b, "🤝 Hi, `%s`! ", user.RealName)
	}

	fmt.Fprintf(&b, "I'm `%s` (engine `v%s`) and I listen to the team's chat and provide automated functions :genie:.\n", h.name, h.engineVersion)

	fmt.Fprintf(&b, "\nI currently support the following commands (mention me or send me a direct message):\n")
	appendActions(&b, h.commands)

	if len(h.hearActions) > 0 {
		fmt.Fprintf(&b, "\nAnd listen for the following:\n")
		appendActions(&b, h.hearActions)
	}

	if len(h.reactionActions) > 0 {
		fmt.Fprintf(&b, "\nAnd watch reactions to:\n")
		for _, ra := range h.reactionActions {
			fmt.Fprintf(&b, "\t• %s\n", ra.Description)
		}
	}

	return &Answer{Text: b.String(), Options: []AnswerOption{AnswerInThread()}}
}

func appendActions(w io.Writer, actions []ActionDefinition) {
	for _, value := range actions {
		if value.Usage != "" {
			fmt.Fprintf(w, "\t• `%s` - %s\n", value.Usage, value.Description)
		}
	}
}

func findAllActions(plugins []*Plugin) (commands []ActionDefinition, hearActions []ActionDefinition, reactionActions []ReactionActionDefinition) {
	commands = make([]ActionDefinition, 0)
	hearActions = make([]ActionDefinition, 0)
	reactionActions = make([]ReactionActionDefinition, 0)

	for _, p := range plugins {
		commands = append(commands, filterNonHiddenActions(p.Commands)...)
		hearActions = append(hearActions, filterNonHiddenActions(p.HearActions)...)

		for _, ra := range p.ReactionActions {
			if !ra.Hidden && ra.Description != "" {
				reactionActions = append(reactionActions, ra)
			}
		}
	}

	return commands, hearActions, reactionActions
}

func filterNonHiddenActions(actions []ActionDefinition) (visibleActions []ActionDefinition) {
	visibleActions = make([]ActionDefinition, 0)
	for _, a := range actions {
		if !a.Hidden {
			visibleActions = append(visibleActions, a)
		}
	}

	return visibleActions
}
