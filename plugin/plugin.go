// Package plugin provides a fluent API to assemble an omegabot.Plugin from actions built with
// github.com/omega-numworks/omegabot/actions
package plugin

import (
	"github.com/omega-numworks/omegabot"
)

// PluginBuilder holds a plugin to build
type PluginBuilder struct {
	plugin *omegabot.Plugin
}

// New creates a new PluginBuilder with a plugin with the given name and empty set of actions
func New(name string) (pb *PluginBuilder) {
	pb = new(PluginBuilder)
	pb.plugin = new(omegabot.Plugin)
	pb.plugin.Name = name
	pb.plugin.Commands = make([]omegabot.ActionDefinition, 0)
	pb.plugin.HearActions = make([]omegabot.ActionDefinition, 0)
	pb.plugin.ReactionActions = make([]omegabot.ReactionActionDefinition, 0)

	return pb
}

// WithCommand adds a command to the plugin
func (pb *PluginBuilder) WithCommand(command omegabot.ActionDefinition) *PluginBuilder {
	pb.plugin.Commands = append(pb.plugin.Commands, command)
	return pb
}

// WithHearAction adds an hear action to the plugin
func (pb *PluginBuilder) WithHearAction(hearAction omegabot.ActionDefinition) *PluginBuilder {
	pb.plugin.HearActions = append(pb.plugin.HearActions, hearAction)
	return pb
}

// WithReactionAction adds a reaction action to the plugin
func (pb *PluginBuilder) WithReactionAction(reactionAction omegabot.ReactionActionDefinition) *PluginBuilder {
	pb.plugin.ReactionActions = append(pb.plugin.ReactionActions, reactionAction)
	return pb
}

// Build returns the created Plugin instance
func (pb *PluginBuilder) Build() (p *omegabot.Plugin) {
	return pb.plugin
}
