// Command omegabot runs the Omega community bot
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/omega-numworks/omegabot"
	"github.com/omega-numworks/omegabot/colorapi"
	"github.com/omega-numworks/omegabot/config"
	"github.com/omega-numworks/omegabot/dismiss"
	"github.com/omega-numworks/omegabot/plugins"
	"github.com/omega-numworks/omegabot/store"
	"github.com/omega-numworks/omegabot/store/inmemorydb"
	"github.com/omega-numworks/omegabot/tracker"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	name = "omegabot"

	envPrefix        = "OMEGABOT"
	formatsStoreName = "formats"
	metricsInterval  = time.Minute
	shutdownTimeout  = 5 * time.Second
)

var (
	configPath     string
	metricsEnabled bool
	debug          bool
)

var rootCmd = &cobra.Command{
	Use:   name,
	Short: "Run the Omega community bot",
	Long: `omegabot connects to slack and:
  - posts issue and pull request embeds for references like #12 or #3e
  - posts color embeds for color codes like #a1b2c3
  - deletes messages that don't match the format of moderated channels

The slack token can be set in the configuration file or with the OMEGABOT_TOKEN
environment variable.

Examples:
  omegabot --config omegabot.yml
  omegabot --config omegabot.yml --debug --metrics`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
	rootCmd.Flags().BoolVar(&metricsEnabled, "metrics", false, "Export metrics to stdout")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.MarkFlagRequired("config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) (err error) {
	v, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := log.New(os.Stdout, name+": ", log.Lshortfile|log.LstdFlags)

	meter, shutdownMetrics, err := newMeter(metricsEnabled)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := shutdownMetrics(ctx); err != nil {
			logger.Printf("Error flushing metrics: %v\n", err)
		}
	}()

	omegaConfig := config.GetPluginConfigOrEmpty(v, plugins.OmegaPluginName)
	issues, err := newIssueFetcher(omegaConfig)
	if err != nil {
		return err
	}

	registry := dismiss.New(
		dismiss.OptionTimeout(config.GetDurationOrDefault(omegaConfig, plugins.DismissTimeoutKey, dismiss.DefaultTimeout)),
		dismiss.OptionMarker(stringOrDefault(omegaConfig, plugins.DismissEmojiKey, dismiss.DefaultMarker)),
		dismiss.OptionLogger(omegabot.NewSLogger(logger, v.GetBool(config.DebugKey))))

	bot, err := omegabot.NewBot(name, v, omegabot.OptionLog(logger), omegabot.OptionMeter(meter)).
		WithPluginErr(newOmegaPlugin(omegaConfig, issues, newColorFetcher(omegaConfig), registry)).
		WithPluginCloserErr(newModerationPlugin(config.GetPluginConfigOrEmpty(v, plugins.ModerationPluginName), v.GetString(config.StoragePathKey))).
		WithCloser(registry).
		Build()
	if err != nil {
		registry.Close()
		return err
	}
	defer bot.Close()

	return bot.Run()
}

// loadConfig reads the configuration file layered over the defaults. Environment variables
// prefixed with OMEGABOT_ override file values
func loadConfig(path string) (v *viper.Viper, err error) {
	v = config.NewViperWithDefaults()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "Error loading configuration file [%s]", path)
	}

	if debug {
		v.Set(config.DebugKey, true)
	}

	if v.GetString(config.TokenKey) == "" {
		return nil, fmt.Errorf("Missing slack token, set [%s] in [%s] or %s_TOKEN", config.TokenKey, path, envPrefix)
	}

	return v, nil
}

// newMeter returns a meter exporting to stdout when metrics are enabled and a no-op meter otherwise
func newMeter(enabled bool) (meter metric.Meter, shutdown func(context.Context) error, err error) {
	if !enabled {
		return noop.NewMeterProvider().Meter(name), func(context.Context) error { return nil }, nil
	}

	exp, err := stdoutmetric.New()
	if err != nil {
		return nil, nil, errors.Wrap(err, "Error creating metrics exporter")
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(metricsInterval))))

	// The http clients' otelhttp transports report through the global provider
	otel.SetMeterProvider(mp)

	return mp.Meter(name), mp.Shutdown, nil
}

func newIssueFetcher(pc *config.PluginConfig) (c *tracker.Client, err error) {
	options := []tracker.Option{tracker.OptionTimeout(config.GetDurationOrDefault(pc, plugins.RequestTimeoutKey, tracker.DefaultRequestTimeout))}

	if token := pc.GetString(plugins.TrackerTokenKey); token != "" {
		options = append(options, tracker.OptionToken(token))
	}

	if baseURL := pc.GetString(plugins.TrackerBaseURLKey); baseURL != "" {
		options = append(options, tracker.OptionBaseURL(baseURL))
	}

	return tracker.NewClient(options...)
}

func newColorFetcher(pc *config.PluginConfig) (c *colorapi.Client) {
	return colorapi.NewClient(
		colorapi.OptionBaseURL(stringOrDefault(pc, plugins.ColorBaseURLKey, colorapi.DefaultBaseURL)),
		colorapi.OptionTimeout(config.GetDurationOrDefault(pc, plugins.RequestTimeoutKey, colorapi.DefaultRequestTimeout)))
}

func newOmegaPlugin(pc *config.PluginConfig, issues plugins.IssueFetcher, colors plugins.ColorFetcher, registry *dismiss.Registry) (p *omegabot.Plugin, err error) {
	o, err := plugins.NewOmega(pc, issues, colors, registry)
	if err != nil {
		return nil, err
	}

	return &o.Plugin, nil
}

// newModerationPlugin creates the moderation plugin with its format overrides kept in leveldb
// behind an in-memory cache
func newModerationPlugin(pc *config.PluginConfig, storagePath string) (closer io.Closer, p *omegabot.Plugin, err error) {
	ldb, err := store.NewLevelDB(formatsStoreName, storagePath)
	if err != nil {
		return nil, nil, err
	}

	formatStorer, err := inmemorydb.New(ldb)
	if err != nil {
		ldb.Close()
		return nil, nil, err
	}

	m, err := plugins.NewModeration(pc, formatStorer)
	if err != nil {
		formatStorer.Close()
		return nil, nil, err
	}

	return formatStorer, &m.Plugin, nil
}

func stringOrDefault(pc *config.PluginConfig, key string, defaultValue string) string {
	if value := pc.GetString(key); value != "" {
		return value
	}

	return defaultValue
}
