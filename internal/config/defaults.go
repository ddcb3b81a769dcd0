package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultDBPath = "storage.db"

	DefaultMonitorPollTimeout   = 1 // seconds, passed to the getUpdates long poll
	DefaultMonitorIdleInterval  = 2 * time.Second
	DefaultMonitorBufferSize    = 100
	DefaultMonitorDrainInterval = 250 * time.Millisecond
	DefaultMonitorRecentLimit   = 500

	DefaultDropPendingUpdates = false
)

// DefaultSchedulerTasks enables the built-in maintenance tasks.
var DefaultSchedulerTasks = map[string]TaskConfig{
	"cache_flush":     {Enabled: true, Schedule: "*/5 * * * *"},
	"sql_maintenance": {Enabled: true, Schedule: "0 4 * * *"},
}
