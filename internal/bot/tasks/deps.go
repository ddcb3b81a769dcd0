// Package tasks implements the scheduled maintenance tasks: periodic
// registry cache flushes and SQLite upkeep.
package tasks

import (
	"log/slog"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/database"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

// RegistryView is the read-only slice of the orchestrator tasks need:
// a consistent snapshot of the discovered-chat registry.
type RegistryView interface {
	DiscoveredChats() []telegram.DiscoveredChat
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Registry RegistryView
}
