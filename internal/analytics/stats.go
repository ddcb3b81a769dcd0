// Package analytics derives aggregate statistics from the discovered-chat
// registry. All computations are pure: a Statistics value is built fresh from
// a registry snapshot and never mutated afterwards.
package analytics

import (
	"sort"
	"time"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

// ChatActivity pairs a chat display name with its message count.
type ChatActivity struct {
	Name  string
	Count int
}

// HourBucket is one hour-of-day slot in the activity histogram.
type HourBucket struct {
	Hour  int
	Count int
}

// Statistics summarizes activity across all discovered chats.
//
// HourlyDistribution buckets each chat's whole message count at the hour of
// its last activity (local time), not per message. This coarse-graining is
// deliberate: per-message timestamps are not retained by the registry.
type Statistics struct {
	TotalMessages        int
	TotalChats           int
	TotalTopics          int
	MessagesPerChat      []ChatActivity
	HourlyDistribution   []HourBucket
	ChatTypeDistribution map[telegram.ChatType]int
}

// Compute builds statistics from a registry snapshot.
func Compute(chats []telegram.DiscoveredChat) Statistics {
	stats := Statistics{
		TotalChats:           len(chats),
		MessagesPerChat:      make([]ChatActivity, 0, len(chats)),
		ChatTypeDistribution: make(map[telegram.ChatType]int),
	}

	hourly := make(map[int]int)
	for _, chat := range chats {
		stats.TotalMessages += chat.MessageCount
		stats.TotalTopics += len(chat.Topics)
		stats.MessagesPerChat = append(stats.MessagesPerChat, ChatActivity{
			Name:  chat.Chat.DisplayName(),
			Count: chat.MessageCount,
		})
		stats.ChatTypeDistribution[chat.Chat.Type]++

		hour := time.Unix(chat.LastSeen, 0).Hour()
		hourly[hour] += chat.MessageCount
	}

	// Stable: chats with equal counts keep their input order.
	sort.SliceStable(stats.MessagesPerChat, func(i, j int) bool {
		return stats.MessagesPerChat[i].Count > stats.MessagesPerChat[j].Count
	})

	stats.HourlyDistribution = make([]HourBucket, 0, len(hourly))
	for hour, count := range hourly {
		stats.HourlyDistribution = append(stats.HourlyDistribution, HourBucket{Hour: hour, Count: count})
	}
	sort.Slice(stats.HourlyDistribution, func(i, j int) bool {
		return stats.HourlyDistribution[i].Hour < stats.HourlyDistribution[j].Hour
	})

	return stats
}

// TopChats returns the n busiest chats, fewer if less are known. n <= 0
// returns an empty slice.
func (s Statistics) TopChats(n int) []ChatActivity {
	if n < 0 {
		n = 0
	}
	if n > len(s.MessagesPerChat) {
		n = len(s.MessagesPerChat)
	}
	return s.MessagesPerChat[:n]
}
