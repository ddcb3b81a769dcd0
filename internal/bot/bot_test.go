// Package bot_test tests the orchestrator lifecycle with a scripted update
// source and an in-memory store.
package bot_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/bot"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/config"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/monitor"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

// scriptedFetcher replays canned batches in order, then returns empty polls.
type scriptedFetcher struct {
	mu     sync.Mutex
	script [][]telegram.Update
}

func (f *scriptedFetcher) FetchUpdates(ctx context.Context, _ int64, _ int) ([]telegram.Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.script) == 0 {
		return nil, nil
	}
	batch := f.script[0]
	f.script = f.script[1:]
	return batch, nil
}

// memoryStore is a database.Store that keeps the last replaced snapshot.
type memoryStore struct {
	mu       sync.Mutex
	seed     []telegram.DiscoveredChat
	loadErr  error
	replaced [][]telegram.DiscoveredChat
}

func (s *memoryStore) Ping(context.Context) error { return nil }

func (s *memoryStore) ReplaceChats(_ context.Context, chats []telegram.DiscoveredChat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced = append(s.replaced, append([]telegram.DiscoveredChat(nil), chats...))
	return nil
}

func (s *memoryStore) LoadChats(context.Context) ([]telegram.DiscoveredChat, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.seed, nil
}

func (s *memoryStore) RunSQLMaintenance(context.Context) error { return nil }

func (s *memoryStore) flushes() [][]telegram.DiscoveredChat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaced
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Monitor: config.MonitorConfig{
			PollTimeout:   1,
			IdleInterval:  5 * time.Millisecond,
			BufferSize:    8,
			DrainInterval: 5 * time.Millisecond,
			RecentLimit:   10,
		},
	}
}

func newTestBot(t *testing.T, store *memoryStore, fetcher monitor.Fetcher) *bot.Bot {
	t.Helper()

	cfg := testConfig()
	mon := monitor.NewService(fetcher, nil, monitor.Options{
		PollTimeoutSeconds: cfg.Monitor.PollTimeout,
		IdleInterval:       cfg.Monitor.IdleInterval,
		BufferSize:         cfg.Monitor.BufferSize,
		RecentLimit:        cfg.Monitor.RecentLimit,
	})
	sched, err := bot.NewScheduler(nil, &config.SchedulerConfig{}, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error: %v", err)
	}
	return bot.NewBot(discardLogger(), cfg, store, telegram.NewUpdateProcessor(), mon, sched)
}

// runBot starts Run in the background and returns a cancel-and-join helper.
func runBot(t *testing.T, app *bot.Bot) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- app.Run(ctx) }()

	return func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Run() did not return after cancellation")
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRunProcessesAndFlushesOnShutdown(t *testing.T) {
	t.Parallel()

	chat := telegram.Chat{ID: 7, Type: telegram.ChatTypePrivate, FirstName: "Ada"}
	fetcher := &scriptedFetcher{script: [][]telegram.Update{
		{
			{ID: 4, Message: &telegram.Message{Chat: chat, Date: 100, Text: "one"}},
			{ID: 5, Message: &telegram.Message{Chat: chat, Date: 101, Text: "two"}},
		},
	}}
	store := &memoryStore{}

	app := newTestBot(t, store, fetcher)
	stop := runBot(t, app)

	waitFor(t, func() bool { return app.Watermark() == 5 })

	chats := app.DiscoveredChats()
	if len(chats) != 1 || chats[0].MessageCount != 2 {
		t.Fatalf("registry = %+v, want one chat with two messages", chats)
	}
	if recent := app.RecentActivity(); len(recent) != 2 {
		t.Errorf("recent feed has %d entries, want 2", len(recent))
	}

	stats := app.Statistics()
	if stats.TotalMessages != 2 || stats.TotalChats != 1 {
		t.Errorf("stats = {messages %d, chats %d}, want {2, 1}", stats.TotalMessages, stats.TotalChats)
	}

	stop()

	flushes := store.flushes()
	if len(flushes) == 0 {
		t.Fatal("registry was not flushed on shutdown")
	}
	final := flushes[len(flushes)-1]
	if len(final) != 1 || final[0].Chat.ID != 7 || final[0].MessageCount != 2 {
		t.Errorf("final flush = %+v, want chat 7 with two messages", final)
	}
}

func TestRunSeedsRegistryFromCache(t *testing.T) {
	t.Parallel()

	store := &memoryStore{seed: []telegram.DiscoveredChat{
		{
			Chat:         telegram.Chat{ID: 1, Type: telegram.ChatTypeGroup, Title: "Cached"},
			LastSeen:     50,
			MessageCount: 3,
		},
	}}
	chat := telegram.Chat{ID: 2, Type: telegram.ChatTypePrivate, FirstName: "New"}
	fetcher := &scriptedFetcher{script: [][]telegram.Update{
		{{ID: 1, Message: &telegram.Message{Chat: chat, Date: 100, Text: "hi"}}},
	}}

	app := newTestBot(t, store, fetcher)
	stop := runBot(t, app)
	defer stop()

	waitFor(t, func() bool { return len(app.DiscoveredChats()) == 2 })

	chats := app.DiscoveredChats()
	if chats[0].Chat.ID != 2 || chats[1].Chat.ID != 1 {
		t.Errorf("order = [%d, %d], want live chat first by last_seen", chats[0].Chat.ID, chats[1].Chat.ID)
	}
	if chats[1].Chat.Title != "Cached" || chats[1].MessageCount != 3 {
		t.Errorf("seeded entry = %+v, want the cached chat intact", chats[1])
	}
}

func TestRunStartsEmptyWhenCacheLoadFails(t *testing.T) {
	t.Parallel()

	store := &memoryStore{loadErr: errors.New("disk gone")}
	app := newTestBot(t, store, &scriptedFetcher{})
	stop := runBot(t, app)
	defer stop()

	if chats := app.DiscoveredChats(); len(chats) != 0 {
		t.Errorf("registry = %+v, want empty after failed cache load", chats)
	}
	if app.Watermark() != 0 {
		t.Errorf("Watermark() = %d, want 0", app.Watermark())
	}
}

func TestRunKeepsDrainingWhilePaused(t *testing.T) {
	t.Parallel()

	chat := telegram.Chat{ID: 3, Type: telegram.ChatTypePrivate, FirstName: "Quiet"}
	fetcher := &scriptedFetcher{script: [][]telegram.Update{
		{{ID: 8, Message: &telegram.Message{Chat: chat, Date: 100, Text: "hidden"}}},
	}}
	store := &memoryStore{}

	app := newTestBot(t, store, fetcher)
	if !app.TogglePause() {
		t.Fatal("TogglePause() = false, want true")
	}
	stop := runBot(t, app)
	defer stop()

	// Ingestion continues while paused; only the feed stays empty.
	waitFor(t, func() bool { return app.Watermark() == 8 })

	if chats := app.DiscoveredChats(); len(chats) != 1 || chats[0].MessageCount != 1 {
		t.Errorf("registry = %+v, want the paused-time message counted", chats)
	}
	if recent := app.RecentActivity(); len(recent) != 0 {
		t.Errorf("recent feed has %d entries while paused, want 0", len(recent))
	}
}
