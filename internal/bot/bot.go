// Package bot wires the monitoring service, the update processor, and the
// scheduler together and manages their lifecycle.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/analytics"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/config"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/database"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/logger"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/monitor"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

// Bot owns the discovered-chat registry and runs the consumer loop that
// feeds it. The registry itself is single-writer and unsynchronized; the mu
// here serializes the consumer's writes against snapshot readers (statistics
// requests and the cache-flush task).
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	store     database.Store
	monitor   *monitor.Service
	scheduler *Scheduler

	mu        sync.Mutex
	processor *telegram.UpdateProcessor
}

// NewBot creates the orchestrator with all required dependencies.
func NewBot(
	log *slog.Logger,
	cfg *config.Config,
	store database.Store,
	processor *telegram.UpdateProcessor,
	mon *monitor.Service,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    log.With("component", "bot_orchestrator"),
		cfg:       cfg,
		store:     store,
		monitor:   mon,
		scheduler: scheduler,
		processor: processor,
	}
}

// Run seeds the registry from the cache, starts monitoring and the
// scheduler, and drives the consumer loop until ctx is cancelled. On
// shutdown the monitor is joined and the registry is flushed once more.
func (b *Bot) Run(ctx context.Context) error {
	b.seedFromCache(ctx)

	b.mu.Lock()
	offset := b.processor.Watermark()
	b.mu.Unlock()
	b.monitor.Start(offset)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.consumeLoop(gCtx)
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return err
		}
		<-gCtx.Done()
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	b.logger.Info("Bot orchestrator running")
	err := g.Wait()

	b.monitor.Stop()
	b.drainAndProcess(context.Background())
	if flushErr := b.FlushCache(context.Background()); flushErr != nil {
		b.logger.Error("Failed to flush registry cache on shutdown", "error", flushErr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// consumeLoop periodically drains the monitor's delivery channel and feeds
// each batch to the processor. Draining continues while paused so the queue
// never grows; only the recent-activity feed is suspended.
func (b *Bot) consumeLoop(ctx context.Context) {
	interval := b.cfg.Monitor.DrainInterval
	if interval <= 0 {
		interval = config.DefaultMonitorDrainInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.drainAndProcess(ctx)
		}
	}
}

func (b *Bot) drainAndProcess(ctx context.Context) {
	for _, batch := range b.monitor.ReceiveUpdates() {
		b.mu.Lock()
		b.processor.ProcessBatch(batch)
		watermark := b.processor.Watermark()
		b.mu.Unlock()

		b.monitor.Record(batch)

		if b.logger.Enabled(ctx, slog.LevelDebug) {
			for i := range batch {
				b.logger.DebugContext(ctx, "Processed update", logger.UpdateAttrs(&batch[i])...)
			}
		}
		b.logger.InfoContext(ctx, "Processed update batch", "size", len(batch), "watermark", watermark)
	}
}

func (b *Bot) seedFromCache(ctx context.Context) {
	cached, err := b.store.LoadChats(ctx)
	if err != nil {
		b.logger.Warn("Failed to load registry cache, starting empty", "error", err)
		return
	}
	if len(cached) == 0 {
		return
	}

	b.mu.Lock()
	b.processor.Seed(cached)
	b.mu.Unlock()
	b.logger.Info("Seeded registry from cache", "chats", len(cached))
}

// DiscoveredChats returns a registry snapshot ordered by last activity.
func (b *Bot) DiscoveredChats() []telegram.DiscoveredChat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processor.DiscoveredChats()
}

// Watermark returns the highest update ID processed so far.
func (b *Bot) Watermark() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processor.Watermark()
}

// Statistics computes aggregate statistics from the current registry
// snapshot.
func (b *Bot) Statistics() analytics.Statistics {
	return analytics.Compute(b.DiscoveredChats())
}

// FlushCache persists the current registry snapshot to the store.
func (b *Bot) FlushCache(ctx context.Context) error {
	return b.store.ReplaceChats(ctx, b.DiscoveredChats())
}

// TogglePause flips the monitor's pause flag and returns the new state.
// Ingestion and offset bookkeeping continue while paused; only the
// recent-activity feed stops.
func (b *Bot) TogglePause() bool {
	return b.monitor.TogglePause()
}

// RecentActivity returns the monitor's recent-activity feed, oldest first.
func (b *Bot) RecentActivity() []monitor.RecentMessage {
	return b.monitor.Recent()
}
