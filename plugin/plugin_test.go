package plugin_test

import (
	"testing"

	"github.com/omega-numworks/omegabot/actions"
	"github.com/omega-numworks/omegabot/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNewPlugin(t *testing.T) {
	p := plugin.New("omega").Build()

	require.NotNil(t, p)
	assert.Equal(t, "omega", p.Name)
	assert.Empty(t, p.Commands)
	assert.Empty(t, p.HearActions)
	assert.Empty(t, p.ReactionActions)
}

func TestPluginWithManyCommands(t *testing.T) {
	p := plugin.New("moderation").
		WithCommand(actions.NewCommand().WithUsage("format set").Build()).
		WithCommand(actions.NewCommand().WithUsage("format clear").Build()).
		Build()

	require.Len(t, p.Commands, 2)
	assert.Equal(t, "format set", p.Commands[0].Usage)
	assert.Equal(t, "format clear", p.Commands[1].Usage)
	assert.Empty(t, p.HearActions)
	assert.Empty(t, p.ReactionActions)
}

func TestPluginWithActionsOfAllTypes(t *testing.T) {
	p := plugin.New("omega").
		WithCommand(actions.NewCommand().WithUsage("command").Build()).
		WithHearAction(actions.NewHearAction().WithUsage("listener").Build()).
		WithReactionAction(actions.NewReactionAction().WithDescription("reaction").Build()).
		Build()

	require.Len(t, p.Commands, 1)
	assert.Equal(t, "command", p.Commands[0].Usage)
	require.Len(t, p.HearActions, 1)
	assert.Equal(t, "listener", p.HearActions[0].Usage)
	require.Len(t, p.ReactionActions, 1)
	assert.Equal(t, "reaction", p.ReactionActions[0].Description)
}
