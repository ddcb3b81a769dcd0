// Package monitor implements the live monitoring service: a cancellable
// background loop that polls for new updates, tracks the update offset, and
// hands batches to the consumer over a bounded channel.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

// Fetcher is the slice of the Telegram client the monitor depends on.
type Fetcher interface {
	FetchUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]telegram.Update, error)
}

// RecentMessage is one entry of the user-visible recent-activity feed.
type RecentMessage struct {
	Timestamp int64
	ChatName  string
	Sender    string
	Text      string
}

// Options tune the polling loop. Zero values fall back to the defaults used
// by the original tool: 1s long poll, 2s idle sleep, 100 queued batches, 500
// recent messages.
type Options struct {
	PollTimeoutSeconds int
	IdleInterval       time.Duration
	BufferSize         int
	RecentLimit        int
}

func (o *Options) applyDefaults() {
	if o.PollTimeoutSeconds <= 0 {
		o.PollTimeoutSeconds = 1
	}
	if o.IdleInterval <= 0 {
		o.IdleInterval = 2 * time.Second
	}
	if o.BufferSize <= 0 {
		o.BufferSize = 100
	}
	if o.RecentLimit <= 0 {
		o.RecentLimit = 500
	}
}

// Service owns at most one background polling goroutine. Start and Stop are
// idempotent; TogglePause affects only the recent-activity feed, never the
// polling or offset bookkeeping, so no updates are lost while paused.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger
	opts    Options

	mu      sync.Mutex
	active  bool
	paused  bool
	cancel  context.CancelFunc
	done    chan struct{}
	updates chan []telegram.Update
	recent  []RecentMessage
}

// NewService creates a monitoring service around the given fetcher.
func NewService(fetcher Fetcher, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	opts.applyDefaults()
	return &Service{
		fetcher: fetcher,
		logger:  logger.With("component", "monitor"),
		opts:    opts,
	}
}

// Active reports whether the polling goroutine is running.
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Paused reports whether the recent-activity feed is suspended.
func (s *Service) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// TogglePause flips the pause flag and returns the new state. Polling keeps
// running either way.
func (s *Service) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	return s.paused
}

// Start launches the polling goroutine beginning after the given offset
// watermark. Calling Start while already running is a no-op.
func (s *Service) Start(offset int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.updates = make(chan []telegram.Update, s.opts.BufferSize)
	s.active = true

	go s.poll(ctx, offset, s.updates, s.done)
	s.logger.Info("Monitoring started", "offset", offset)
}

// Stop cancels the polling goroutine and waits for it to exit. Any batches
// already queued remain drainable via ReceiveUpdates. Safe to call when
// stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.active = false
	s.cancel = nil
	s.mu.Unlock()

	// The in-flight fetch shares the cancelled context, so the join is
	// bounded by the idle interval rather than a full network timeout.
	cancel()
	<-done
	s.logger.Info("Monitoring stopped")
}

func (s *Service) poll(ctx context.Context, offset int64, out chan<- []telegram.Update, done chan<- struct{}) {
	defer close(done)

	idle := time.NewTimer(s.opts.IdleInterval)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, err := s.fetcher.FetchUpdates(ctx, offset+1, s.opts.PollTimeoutSeconds)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			// Transient errors are retried at the fixed idle interval; the
			// registry never sees them.
			s.logger.Debug("Update fetch failed, retrying", "error", err)
		case len(batch) > 0:
			for i := range batch {
				if batch[i].ID > offset {
					offset = batch[i].ID
				}
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		}

		// The pause between polls is unconditional, also after a delivered
		// batch; the long poll itself keeps latency low on busy streams.
		idle.Reset(s.opts.IdleInterval)
		select {
		case <-ctx.Done():
			return
		case <-idle.C:
		}
	}
}

// ReceiveUpdates drains every batch currently queued without blocking and
// returns them in delivery order. It returns nil when nothing is queued or
// monitoring has never been started.
func (s *Service) ReceiveUpdates() [][]telegram.Update {
	s.mu.Lock()
	ch := s.updates
	s.mu.Unlock()
	if ch == nil {
		return nil
	}

	var batches [][]telegram.Update
	for {
		select {
		case batch := <-ch:
			batches = append(batches, batch)
		default:
			return batches
		}
	}
}

// Record appends the message-bearing updates of a batch to the
// recent-activity feed. While paused it does nothing, which is what makes
// pause stop the display without stopping ingestion.
func (s *Service) Record(batch []telegram.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return
	}

	for i := range batch {
		msg := batch[i].Message
		if msg == nil {
			msg = batch[i].ChannelPost
		}
		if msg == nil {
			continue
		}
		s.recent = append(s.recent, RecentMessage{
			Timestamp: msg.Date,
			ChatName:  msg.Chat.DisplayName(),
			Sender:    msg.SenderName(),
			Text:      msg.Text,
		})
	}
	if over := len(s.recent) - s.opts.RecentLimit; over > 0 {
		s.recent = append([]RecentMessage(nil), s.recent[over:]...)
	}
}

// Recent returns a copy of the recent-activity feed, oldest first.
func (s *Service) Recent() []RecentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecentMessage(nil), s.recent...)
}
