// Package telegram defines the Bot API wire types, the raw API client, and
// the update processor that folds incoming updates into the discovered-chat
// registry.
package telegram

import (
	"encoding/json"
	"fmt"
)

// ChatType identifies the kind of conversation an update originates from.
type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

// User represents a Telegram user or bot. Values are immutable once received.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat represents a conversation endpoint. Negative IDs denote groups,
// supergroups, and channels.
type Chat struct {
	ID        int64    `json:"id"`
	Type      ChatType `json:"type"`
	Title     string   `json:"title,omitempty"`
	Username  string   `json:"username,omitempty"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
}

// DisplayName returns a human-readable name for the chat.
// Resolution order: title, @username, first+last name, "Chat {id}".
func (c Chat) DisplayName() string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Username != "":
		return "@" + c.Username
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return fmt.Sprintf("Chat %d", c.ID)
	}
}

// Message represents a message or channel post. From is nil for channel
// posts. ThreadID is set only for messages inside forum topics.
type Message struct {
	ID       int64    `json:"message_id"`
	From     *User    `json:"from,omitempty"`
	Chat     Chat     `json:"chat"`
	Date     int64    `json:"date"`
	Text     string   `json:"text,omitempty"`
	ThreadID int64    `json:"message_thread_id,omitempty"`
	ReplyTo  *Message `json:"reply_to_message,omitempty"`
}

// SenderName returns the best available name for the message sender, or an
// empty string for sender-less messages such as channel posts.
func (m *Message) SenderName() string {
	if m.From == nil {
		return ""
	}
	if m.From.Username != "" {
		return "@" + m.From.Username
	}
	if m.From.LastName != "" {
		return m.From.FirstName + " " + m.From.LastName
	}
	return m.From.FirstName
}

// Update is one event from the getUpdates stream. At most one of the typed
// payload fields is set; payload keys the client does not model are kept in
// Extra so their kind can still be reported.
type Update struct {
	ID            int64    `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
	ChannelPost   *Message `json:"channel_post,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// updateAlias avoids recursing into Update.UnmarshalJSON.
type updateAlias Update

// UnmarshalJSON decodes the typed fields and stashes every other payload key
// into Extra.
func (u *Update) UnmarshalJSON(data []byte) error {
	var alias updateAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "update_id")
	delete(raw, "message")
	delete(raw, "edited_message")
	delete(raw, "channel_post")

	*u = Update(alias)
	if len(raw) > 0 {
		u.Extra = raw
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON: Extra keys are emitted back at
// the top level so a round trip does not lose unmodeled payloads.
func (u Update) MarshalJSON() ([]byte, error) {
	merged := make(map[string]any, len(u.Extra)+4)
	for k, v := range u.Extra {
		merged[k] = v
	}
	merged["update_id"] = u.ID
	if u.Message != nil {
		merged["message"] = u.Message
	}
	if u.EditedMessage != nil {
		merged["edited_message"] = u.EditedMessage
	}
	if u.ChannelPost != nil {
		merged["channel_post"] = u.ChannelPost
	}
	return json.Marshal(merged)
}

// knownExtraKinds are Bot API update kinds the processor does not act on but
// still labels precisely. Checked in declaration order.
var knownExtraKinds = []string{
	"edited_channel_post",
	"business_connection",
	"business_message",
	"edited_business_message",
	"deleted_business_messages",
	"message_reaction",
	"message_reaction_count",
	"inline_query",
	"chosen_inline_result",
	"callback_query",
	"shipping_query",
	"pre_checkout_query",
	"purchased_paid_media",
	"poll",
	"poll_answer",
	"my_chat_member",
	"chat_member",
	"chat_join_request",
	"chat_boost",
	"removed_chat_boost",
}

// Kind reports which update variant this is: "message", "edited_message",
// "channel_post", one of the known extra kinds, "other_<key>" for an
// unrecognized payload key, or "unknown" for an empty update.
func (u *Update) Kind() string {
	switch {
	case u.Message != nil:
		return "message"
	case u.EditedMessage != nil:
		return "edited_message"
	case u.ChannelPost != nil:
		return "channel_post"
	}

	for _, kind := range knownExtraKinds {
		if _, ok := u.Extra[kind]; ok {
			return kind
		}
	}

	for key := range u.Extra {
		return "other_" + key
	}
	return "unknown"
}

// TopicInfo aggregates activity of one forum topic (thread) within a chat.
// Name stays empty unless supplied out-of-band; regular messages never carry
// the topic name.
type TopicInfo struct {
	ThreadID     int64  `json:"thread_id"`
	Name         string `json:"name,omitempty"`
	MessageCount int    `json:"message_count"`
	LastSeen     int64  `json:"last_seen"`
}

// DiscoveredChat is a registry entry: the chat metadata as first seen plus
// running activity counters. Chat metadata is never overwritten by later
// messages.
type DiscoveredChat struct {
	Chat         Chat        `json:"chat"`
	LastSeen     int64       `json:"last_seen"`
	MessageCount int         `json:"message_count"`
	Topics       []TopicInfo `json:"topics,omitempty"`
}
