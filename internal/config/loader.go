package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from, in priority order:
// BOT_* environment variables, the config file at path, and defaults.
// A missing config file is not an error; defaults plus environment apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType(strings.TrimPrefix(filepath.Ext(path), "."))

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
		// No config file is fine, defaults and environment take over.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if len(cfg.Scheduler.Tasks) == 0 {
		cfg.Scheduler.Tasks = DefaultSchedulerTasks
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Registered empty so AutomaticEnv resolves BOT_TELEGRAM_TOKEN even
	// without a config file; validation still rejects an empty token.
	v.SetDefault("telegram.token", "")

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("telegram.drop_pending_updates", DefaultDropPendingUpdates)

	v.SetDefault("monitor.poll_timeout", DefaultMonitorPollTimeout)
	v.SetDefault("monitor.idle_interval", DefaultMonitorIdleInterval)
	v.SetDefault("monitor.buffer_size", DefaultMonitorBufferSize)
	v.SetDefault("monitor.drain_interval", DefaultMonitorDrainInterval)
	v.SetDefault("monitor.recent_limit", DefaultMonitorRecentLimit)
}
