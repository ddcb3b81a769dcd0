package database

import (
	"time"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

// CachedChat is the persisted projection of one discovered chat. Optional
// name fields are stored as empty strings, matching the wire types.
type CachedChat struct {
	ChatID       int64  `db:"chat_id"`
	ChatType     string `db:"chat_type"`
	Title        string `db:"title"`
	Username     string `db:"username"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	MessageCount int    `db:"message_count"`
	LastSeen     int64  `db:"last_seen"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CachedTopic is the persisted projection of one forum topic.
type CachedTopic struct {
	ChatID       int64  `db:"chat_id"`
	ThreadID     int64  `db:"thread_id"`
	Name         string `db:"name"`
	MessageCount int    `db:"message_count"`
	LastSeen     int64  `db:"last_seen"`
}

// newCachedChat projects a registry entry into its row form.
func newCachedChat(chat *telegram.DiscoveredChat) CachedChat {
	return CachedChat{
		ChatID:       chat.Chat.ID,
		ChatType:     string(chat.Chat.Type),
		Title:        chat.Chat.Title,
		Username:     chat.Chat.Username,
		FirstName:    chat.Chat.FirstName,
		LastName:     chat.Chat.LastName,
		MessageCount: chat.MessageCount,
		LastSeen:     chat.LastSeen,
	}
}

// toDiscoveredChat rebuilds the registry entry from its row form.
func (c CachedChat) toDiscoveredChat(topics []CachedTopic) telegram.DiscoveredChat {
	chat := telegram.DiscoveredChat{
		Chat: telegram.Chat{
			ID:        c.ChatID,
			Type:      telegram.ChatType(c.ChatType),
			Title:     c.Title,
			Username:  c.Username,
			FirstName: c.FirstName,
			LastName:  c.LastName,
		},
		MessageCount: c.MessageCount,
		LastSeen:     c.LastSeen,
	}
	for _, t := range topics {
		chat.Topics = append(chat.Topics, telegram.TopicInfo{
			ThreadID:     t.ThreadID,
			Name:         t.Name,
			MessageCount: t.MessageCount,
			LastSeen:     t.LastSeen,
		})
	}
	return chat
}
