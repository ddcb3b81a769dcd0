// Package logger_test tests log attribute construction.
package logger_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/logger"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

func attrValue(attrs []any, key string) (any, bool) {
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i] == key {
			return attrs[i+1], true
		}
	}
	return nil, false
}

func TestUpdateAttrs(t *testing.T) {
	t.Parallel()

	u := telegram.Update{
		ID: 12,
		Message: &telegram.Message{
			ID:   3,
			Chat: telegram.Chat{ID: 7, Type: telegram.ChatTypePrivate, FirstName: "Ada"},
			From: &telegram.User{ID: 9, Username: "ada"},
			Date: 100,
			Text: "short text",
		},
	}

	attrs := logger.UpdateAttrs(&u)
	if got, _ := attrValue(attrs, "update_id"); got != int64(12) {
		t.Errorf("update_id = %v, want 12", got)
	}
	if got, _ := attrValue(attrs, "update_type"); got != "message" {
		t.Errorf("update_type = %v, want message", got)
	}
	if got, _ := attrValue(attrs, "chat_id"); got != int64(7) {
		t.Errorf("chat_id = %v, want 7", got)
	}
	if got, _ := attrValue(attrs, "text_preview"); got != "short text" {
		t.Errorf("text_preview = %v, want the untruncated text", got)
	}
	if got, _ := attrValue(attrs, "user_id"); got != int64(9) {
		t.Errorf("user_id = %v, want 9", got)
	}
}

func TestUpdateAttrsTextPreviewTruncation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{name: "long ascii", text: strings.Repeat("a", 120)},
		// Multi-byte runes straddling the cut point must not be split.
		{name: "long cyrillic", text: strings.Repeat("ж", 80)},
		{name: "long emoji", text: strings.Repeat("🙂", 40)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			u := telegram.Update{
				ID: 1,
				Message: &telegram.Message{
					Chat: telegram.Chat{ID: 1, Type: telegram.ChatTypePrivate},
					Date: 100,
					Text: tc.text,
				},
			}

			got, ok := attrValue(logger.UpdateAttrs(&u), "text_preview")
			if !ok {
				t.Fatal("text_preview attribute missing")
			}
			preview, ok := got.(string)
			if !ok {
				t.Fatalf("text_preview is %T, want string", got)
			}
			if !strings.HasSuffix(preview, "...") {
				t.Errorf("preview %q does not end with ellipsis", preview)
			}
			if len(preview) > 50 {
				t.Errorf("preview is %d bytes, want at most 50", len(preview))
			}
			if !utf8.ValidString(preview) {
				t.Errorf("preview %q is not valid UTF-8", preview)
			}
		})
	}
}
