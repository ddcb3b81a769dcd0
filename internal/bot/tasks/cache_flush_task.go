package tasks

import (
	"context"
	"fmt"
)

// newCacheFlushTask creates the task that persists the current registry
// snapshot to the SQLite cache.
func newCacheFlushTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cache_flush")

	return func(ctx context.Context) error {
		chats := deps.Registry.DiscoveredChats()
		if err := deps.Store.ReplaceChats(ctx, chats); err != nil {
			return fmt.Errorf("cache flush failed: %w", err)
		}
		log.InfoContext(ctx, "Flushed registry to cache", "chats", len(chats))
		return nil
	}
}
