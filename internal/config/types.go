// Package config manages application configuration from defaults, the
// config.yaml file, and BOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration wraps every error produced while loading configuration.
var ErrConfiguration = errors.New("configuration error")

// Config is the root application configuration.
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// TelegramConfig holds Bot API credentials and startup behavior.
type TelegramConfig struct {
	Token              string `mapstructure:"token"                validate:"required"`
	DropPendingUpdates bool   `mapstructure:"drop_pending_updates"`
}

// LogConfig controls the slog output.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DatabaseConfig locates the SQLite registry cache.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// MonitorConfig tunes the polling loop and the consumer drain cadence.
type MonitorConfig struct {
	PollTimeout   int           `mapstructure:"poll_timeout"   validate:"required,min=1,max=50"`
	IdleInterval  time.Duration `mapstructure:"idle_interval"  validate:"required,min=100ms,max=1m"`
	BufferSize    int           `mapstructure:"buffer_size"    validate:"required,min=1,max=10000"`
	DrainInterval time.Duration `mapstructure:"drain_interval" validate:"required,min=50ms,max=10s"`
	RecentLimit   int           `mapstructure:"recent_limit"   validate:"required,min=1,max=100000"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables one scheduled task. Schedule is a cron expression,
// optionally with a seconds field.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Validate checks the complete configuration against the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, task := range c.Scheduler.Tasks {
		if task.Enabled && task.Schedule == "" {
			return fmt.Errorf("scheduler task %q is enabled but has no schedule", name)
		}
	}
	return nil
}
