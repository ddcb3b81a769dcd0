// Package logger provides structured logging for the chat-discovery service.
// It uses Go's slog package with configurable level and format.
package logger

import (
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

// NewLogger creates a new slog Logger with the specified level and format.
// If jsonOutput is true, logs are formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// UpdateAttrs summarizes one update for debug logging: its ID and kind, plus
// chat and text preview when the update carries a message.
func UpdateAttrs(u *telegram.Update) []any {
	attrs := []any{"update_id", u.ID, "update_type", u.Kind()}

	msg := u.Message
	if msg == nil {
		msg = u.ChannelPost
	}
	if msg == nil {
		msg = u.EditedMessage
	}
	if msg != nil {
		attrs = append(attrs,
			"chat_id", msg.Chat.ID,
			"message_id", msg.ID,
			"text_preview", truncateString(msg.Text, 50),
		)
		if msg.From != nil {
			attrs = append(attrs, "user_id", msg.From.ID)
		}
	}
	return attrs
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	cut := maxLen - 3
	// Back up to a rune boundary so the preview stays valid UTF-8.
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
