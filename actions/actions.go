/*
Package actions provides a fluent API for creating omegabot plugin actions. Typical usages
will also involve using the plugin fluent API from github.com/omega-numworks/omegabot/plugin.

A quick example:

	p = plugin.New("colors").
		WithHearAction(actions.NewHearAction().
			WithMatcher(func(m *omegabot.IncomingMessage) bool {
				_, ok := reference.ParseColor(m.NormalizedText)
				return ok
			}).
			WithUsage("#rrggbb").
			WithDescription("Describe a color").
			WithAnswerer(describeColor).
			Build()).
		WithReactionAction(actions.NewReactionAction().
			WithDescription("React with :wastebasket: to dismiss a preview").
			WithHandler(dismiss).
			Build()).
		Build()
*/
package actions

import (
	"fmt"

	"github.com/omega-numworks/omegabot"
)

// ActionBuilder holds the action to build
type ActionBuilder struct {
	action omegabot.ActionDefinition
}

// ReactionActionBuilder holds the reaction action to build
type ReactionActionBuilder struct {
	reactionAction omegabot.ReactionActionDefinition
}

var (
	// Default to always match. Answerers returning nil give the same behavior and usually
	// need the same extraction logic as the matcher anyway
	defaultMatcher = func(m *omegabot.IncomingMessage) bool {
		return true
	}

	// Default to always return nil. This is not a default you want to use in most cases
	defaultAnswerer = func(m *omegabot.IncomingMessage) *omegabot.Answer {
		return nil
	}
)

// newAction creates a new action and returns the ActionBuilder to set various attributes
// of the action. When done with the setup, the caller is expected to call Build() to get
// the action
func newAction() (ab *ActionBuilder) {
	ab = new(ActionBuilder)
	ab.action = omegabot.ActionDefinition{Hidden: false}

	ab.action.Match = defaultMatcher
	ab.action.Answer = defaultAnswerer

	return ab
}

// NewCommand returns a new ActionBuilder to build a new command
func NewCommand() (ab *ActionBuilder) {
	return newAction()
}

// NewHearAction returns a new ActionBuilder to build a new hear action
func NewHearAction() (ab *ActionBuilder) {
	return newAction()
}

// WithMatcher sets the action's matcher function
func (ab *ActionBuilder) WithMatcher(matcher omegabot.Matcher) *ActionBuilder {
	ab.action.Match = matcher
	return ab
}

// WithUsage sets the action usage
func (ab *ActionBuilder) WithUsage(usage string) *ActionBuilder {
	ab.action.Usage = usage
	return ab
}

// WithDescription sets the action description
func (ab *ActionBuilder) WithDescription(description string) *ActionBuilder {
	ab.action.Description = description
	return ab
}

// WithDescriptionf sets the action description delegating format and arguments to fmt.Sprintf
func (ab *ActionBuilder) WithDescriptionf(format string, a ...interface{}) *ActionBuilder {
	ab.action.Description = fmt.Sprintf(format, a...)
	return ab
}

// WithAnswerer sets the action's answerer function
func (ab *ActionBuilder) WithAnswerer(answerer omegabot.Answerer) *ActionBuilder {
	ab.action.Answer = answerer
	return ab
}

// Hidden sets the action to hidden
func (ab *ActionBuilder) Hidden() *ActionBuilder {
	ab.action.Hidden = true
	return ab
}

// Build returns the ActionDefinition
func (ab *ActionBuilder) Build() omegabot.ActionDefinition {
	return ab.action
}

// NewReactionAction returns a new ReactionActionBuilder. The default handler does nothing
func NewReactionAction() (rab *ReactionActionBuilder) {
	rab = new(ReactionActionBuilder)
	rab.reactionAction = omegabot.ReactionActionDefinition{Hidden: false}
	rab.reactionAction.Handle = func(r *omegabot.IncomingReaction) {}

	return rab
}

// WithDescription sets the reaction action description
func (rab *ReactionActionBuilder) WithDescription(desc string) *ReactionActionBuilder {
	rab.reactionAction.Description = desc
	return rab
}

// WithDescriptionf sets the reaction action description delegating format and arguments to fmt.Sprintf
func (rab *ReactionActionBuilder) WithDescriptionf(format string, a ...interface{}) *ReactionActionBuilder {
	rab.reactionAction.Description = fmt.Sprintf(format, a...)
	return rab
}

// WithHandler sets the function run for every reaction
func (rab *ReactionActionBuilder) WithHandler(handler omegabot.ReactionHandler) *ReactionActionBuilder {
	rab.reactionAction.Handle = handler
	return rab
}

// Hidden sets the reaction action to hidden
func (rab *ReactionActionBuilder) Hidden() *ReactionActionBuilder {
	rab.reactionAction.Hidden = true
	return rab
}

// Build returns the ReactionActionDefinition
func (rab *ReactionActionBuilder) Build() omegabot.ReactionActionDefinition {
	return rab.reactionAction
}
