package omegabot

import (
	"io"

	"github.com/omega-numworks/omegabot/config"
	"github.com/spf13/viper"
)

// Builder holds a bot instance to build
type Builder struct {
	bot *Bot
	err error
}

// NewBot returns a new Builder used to set up a new bot
func NewBot(name string, v *viper.Viper, options ...Option) (bb *Builder) {
	bb = new(Builder)
	bb.bot, bb.err = New(name, v, options...)

	return bb
}

// WithPlugin adds a plugin to the bot
func (bb *Builder) WithPlugin(p *Plugin) *Builder {
	if bb.err != nil {
		return bb
	}

	bb.bot.RegisterPlugin(p)

	return bb
}

// WithPluginErr adds a plugin that has a creation function returning (Plugin, error) to the bot
func (bb *Builder) WithPluginErr(p *Plugin, err error) *Builder {
	if bb.err == nil && err != nil {
		bb.err = err
	}

	return bb.WithPlugin(p)
}

// WithPluginCloserErr adds a plugin that has a creation function returning (io.Closer, Plugin, error) to the bot.
// The closer is closed when the bot is closed
func (bb *Builder) WithPluginCloserErr(closer io.Closer, p *Plugin, err error) *Builder {
	if bb.err == nil && err != nil {
		bb.err = err
	}

	if bb.err != nil {
		return bb
	}

	bb.bot.RegisterPlugin(p)

	if closer != nil {
		bb.bot.closers = append(bb.bot.closers, closer)
	}

	return bb
}

// WithCloser registers a closer closed along with the bot
func (bb *Builder) WithCloser(closer io.Closer) *Builder {
	if bb.err == nil {
		bb.bot.closers = append(bb.bot.closers, closer)
	}

	return bb
}

// WithConfigurablePluginErr adds a plugin created from its configuration section (plugins.<name>). A missing
// section fails the build
func (bb *Builder) WithConfigurablePluginErr(name string, newInstance func(c *config.PluginConfig) (p *Plugin, err error)) *Builder {
	if bb.err != nil {
		return bb
	}

	pc, err := config.GetPluginConfig(bb.bot.config, name)
	if err != nil {
		bb.err = err
		return bb
	}

	return bb.WithPluginErr(newInstance(pc))
}

// WithConfigurablePluginCloserErr adds a plugin with a closer created from its configuration section
func (bb *Builder) WithConfigurablePluginCloserErr(name string, newInstance func(c *config.PluginConfig) (closer io.Closer, p *Plugin, err error)) *Builder {
	if bb.err != nil {
		return bb
	}

	pc, err := config.GetPluginConfig(bb.bot.config, name)
	if err != nil {
		bb.err = err
		return bb
	}

	return bb.WithPluginCloserErr(newInstance(pc))
}

// Build returns the built bot. If there was an error during setup, the error is returned along with a nil bot
func (bb *Builder) Build() (b *Bot, err error) {
	if bb.err != nil {
		return nil, bb.err
	}

	return bb.bot, nil
}
