// Package config provides the configuration keys and defaults of an omegabot instance
// along with helpers to access plugin configuration sections
package config

import (
	"fmt"
	"github.com/spf13/viper"
	"time"
)

const (
	// TokenKey is the slack token, string value
	TokenKey = "token"
	// DebugKey enables debug logging, bool value
	DebugKey = "debug"
	// ResponseCacheSizeKey is the number of triggering messages whose answers are tracked, int value
	ResponseCacheSizeKey = "responseCacheSize"
	// UserInfoCacheSizeKey is the number of entries to keep in the user info cache, int value. Defaults to no caching
	UserInfoCacheSizeKey = "userInfoCacheSize"
	// ThreadedRepliesKey enables answering in threads, bool value
	ThreadedRepliesKey = "threadedReplies"
	// BroadcastThreadedRepliesKey enables broadcasting of threaded answers to the channel, bool value
	BroadcastThreadedRepliesKey = "broadcastThreadedReplies"
	// StoragePathKey is the directory where persistent stores live, string value
	StoragePathKey = "storagePath"
	// MessageProcessingPartitionCount is the number of message processing workers, must be a power of two
	MessageProcessingPartitionCount = "advanced.messageProcessingPartitionCount"
	// MessageProcessingBufferedMessageCount is the buffer size of each worker queue
	MessageProcessingBufferedMessageCount = "advanced.messageProcessingBufferedMessageCount"
	// PluginsKey is the root of all plugin configuration sections
	PluginsKey = "plugins"
)

const (
	defaultResponseCacheSize                     = 5000
	defaultUserInfoCacheSize                     = 0
	defaultStoragePath                           = "~/.omegabot"
	defaultMessageProcessingPartitionCount       = 16
	defaultMessageProcessingBufferedMessageCount = 10
)

// PluginConfig is a viper sub-configuration scoped to a single plugin
type PluginConfig = viper.Viper

// NewViperWithDefaults creates a new viper instance with all defaults set
func NewViperWithDefaults() (v *viper.Viper) {
	v = viper.New()
	setDefaults(v)

	return v
}

// LayerConfigWithDefaults sets the defaults on an existing viper instance. Values already
// set on the instance take precedence over the defaults
func LayerConfigWithDefaults(v *viper.Viper) (layered *viper.Viper) {
	setDefaults(v)

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(DebugKey, false)
	v.SetDefault(ResponseCacheSizeKey, defaultResponseCacheSize)
	v.SetDefault(UserInfoCacheSizeKey, defaultUserInfoCacheSize)
	v.SetDefault(ThreadedRepliesKey, false)
	v.SetDefault(BroadcastThreadedRepliesKey, false)
	v.SetDefault(StoragePathKey, defaultStoragePath)
	v.SetDefault(MessageProcessingPartitionCount, defaultMessageProcessingPartitionCount)
	v.SetDefault(MessageProcessingBufferedMessageCount, defaultMessageProcessingBufferedMessageCount)
}

// GetPluginConfig returns the configuration section of a plugin or an error if the
// plugin has no configuration
func GetPluginConfig(v *viper.Viper, name string) (pc *PluginConfig, err error) {
	pc = v.Sub(fmt.Sprintf("%s.%s", PluginsKey, name))
	if pc == nil {
		return nil, fmt.Errorf("Missing plugin configuration for plugin [%s]", name)
	}

	return pc, nil
}

// GetPluginConfigOrEmpty returns the configuration section of a plugin or an empty configuration
// when the plugin has none. Useful for plugins that work with defaults only
func GetPluginConfigOrEmpty(v *viper.Viper, name string) (pc *PluginConfig) {
	pc, err := GetPluginConfig(v, name)
	if err != nil {
		return viper.New()
	}

	return pc
}

// GetDurationOrDefault returns the duration value of a key, falling back to the default when the
// key is unset or not a positive duration
func GetDurationOrDefault(pc *PluginConfig, key string, defaultValue time.Duration) (d time.Duration) {
	if !pc.IsSet(key) {
		return defaultValue
	}

	d = pc.GetDuration(key)
	if d <= 0 {
		return defaultValue
	}

	return d
}
