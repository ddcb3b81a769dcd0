package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

// Store is the data access layer for the registry cache.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// ReplaceChats overwrites the cached registry with the given snapshot in
	// a single transaction.
	ReplaceChats(ctx context.Context, chats []telegram.DiscoveredChat) error

	// LoadChats returns every cached chat with its topics, ordered by
	// last_seen descending.
	LoadChats(ctx context.Context) ([]telegram.DiscoveredChat, error)

	// RunSQLMaintenance performs database maintenance such as VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) ReplaceChats(ctx context.Context, chats []telegram.DiscoveredChat) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				s.logger.ErrorContext(ctx, "Failed to roll back chat replacement", "error", rollbackErr)
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topics`); err != nil {
		return fmt.Errorf("failed to clear cached topics: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chats`); err != nil {
		return fmt.Errorf("failed to clear cached chats: %w", err)
	}

	now := time.Now().UTC()
	for i := range chats {
		row := newCachedChat(&chats[i])
		row.CreatedAt = now
		row.UpdatedAt = now

		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO chats (chat_id, chat_type, title, username, first_name, last_name,
			                   message_count, last_seen, created_at, updated_at)
			VALUES (:chat_id, :chat_type, :title, :username, :first_name, :last_name,
			        :message_count, :last_seen, :created_at, :updated_at)`, row); err != nil {
			return fmt.Errorf("failed to insert chat %d: %w", row.ChatID, err)
		}

		for _, topic := range chats[i].Topics {
			topicRow := CachedTopic{
				ChatID:       row.ChatID,
				ThreadID:     topic.ThreadID,
				Name:         topic.Name,
				MessageCount: topic.MessageCount,
				LastSeen:     topic.LastSeen,
			}
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO topics (chat_id, thread_id, name, message_count, last_seen)
				VALUES (:chat_id, :thread_id, :name, :message_count, :last_seen)`, topicRow); err != nil {
				return fmt.Errorf("failed to insert topic %d of chat %d: %w", topic.ThreadID, row.ChatID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat replacement: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Replaced cached registry", "chats", len(chats))
	return nil
}

func (s *sqlxStore) LoadChats(ctx context.Context) ([]telegram.DiscoveredChat, error) {
	var chatRows []CachedChat
	if err := s.db.SelectContext(ctx, &chatRows, `
		SELECT chat_id, chat_type, title, username, first_name, last_name,
		       message_count, last_seen, created_at, updated_at
		FROM chats ORDER BY last_seen DESC, chat_id ASC`); err != nil {
		return nil, fmt.Errorf("failed to load cached chats: %w", err)
	}

	var topicRows []CachedTopic
	if err := s.db.SelectContext(ctx, &topicRows, `
		SELECT chat_id, thread_id, name, message_count, last_seen
		FROM topics ORDER BY chat_id, thread_id`); err != nil {
		return nil, fmt.Errorf("failed to load cached topics: %w", err)
	}

	topicsByChat := make(map[int64][]CachedTopic, len(chatRows))
	for _, t := range topicRows {
		topicsByChat[t.ChatID] = append(topicsByChat[t.ChatID], t)
	}

	chats := make([]telegram.DiscoveredChat, 0, len(chatRows))
	for _, row := range chatRows {
		chats = append(chats, row.toDiscoveredChat(topicsByChat[row.ChatID]))
	}
	return chats, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	for _, stmt := range []string{"VACUUM", "ANALYZE"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("maintenance statement %s failed: %w", stmt, err)
		}
	}
	return nil
}
