// Package analytics_test tests statistics derivation.
package analytics_test

import (
	"testing"
	"time"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/analytics"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

func TestComputeEmpty(t *testing.T) {
	t.Parallel()

	stats := analytics.Compute(nil)
	if stats.TotalMessages != 0 || stats.TotalChats != 0 || stats.TotalTopics != 0 {
		t.Errorf("totals = {%d, %d, %d}, want all zero",
			stats.TotalMessages, stats.TotalChats, stats.TotalTopics)
	}
	if len(stats.MessagesPerChat) != 0 {
		t.Errorf("MessagesPerChat = %v, want empty", stats.MessagesPerChat)
	}
	if len(stats.HourlyDistribution) != 0 {
		t.Errorf("HourlyDistribution = %v, want empty", stats.HourlyDistribution)
	}
	if len(stats.ChatTypeDistribution) != 0 {
		t.Errorf("ChatTypeDistribution = %v, want empty", stats.ChatTypeDistribution)
	}
	if got := stats.TopChats(5); len(got) != 0 {
		t.Errorf("TopChats(5) = %v, want empty", got)
	}
}

func TestComputeTotals(t *testing.T) {
	t.Parallel()

	chats := []telegram.DiscoveredChat{
		{
			Chat:         telegram.Chat{ID: 100, Type: telegram.ChatTypePrivate, FirstName: "Ada"},
			LastSeen:     1000,
			MessageCount: 2,
		},
		{
			Chat:         telegram.Chat{ID: 200, Type: telegram.ChatTypeGroup, Title: "Ops"},
			LastSeen:     900,
			MessageCount: 1,
			Topics: []telegram.TopicInfo{
				{ThreadID: 1, MessageCount: 1, LastSeen: 900},
			},
		},
	}

	stats := analytics.Compute(chats)
	if stats.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", stats.TotalMessages)
	}
	if stats.TotalChats != 2 {
		t.Errorf("TotalChats = %d, want 2", stats.TotalChats)
	}
	if stats.TotalTopics != 1 {
		t.Errorf("TotalTopics = %d, want 1", stats.TotalTopics)
	}

	if len(stats.MessagesPerChat) != 2 {
		t.Fatalf("MessagesPerChat has %d entries, want 2", len(stats.MessagesPerChat))
	}
	if stats.MessagesPerChat[0].Name != "Ada" || stats.MessagesPerChat[0].Count != 2 {
		t.Errorf("top chat = %+v, want {Ada 2}", stats.MessagesPerChat[0])
	}
	if stats.MessagesPerChat[1].Name != "Ops" || stats.MessagesPerChat[1].Count != 1 {
		t.Errorf("second chat = %+v, want {Ops 1}", stats.MessagesPerChat[1])
	}

	if stats.ChatTypeDistribution[telegram.ChatTypePrivate] != 1 ||
		stats.ChatTypeDistribution[telegram.ChatTypeGroup] != 1 {
		t.Errorf("ChatTypeDistribution = %v, want one private and one group", stats.ChatTypeDistribution)
	}
}

func TestMessagesPerChatStableSort(t *testing.T) {
	t.Parallel()

	// Three chats with an equal count must keep their input order.
	chats := []telegram.DiscoveredChat{
		{Chat: telegram.Chat{ID: 1, Type: telegram.ChatTypePrivate, FirstName: "First"}, MessageCount: 5},
		{Chat: telegram.Chat{ID: 2, Type: telegram.ChatTypePrivate, FirstName: "Second"}, MessageCount: 5},
		{Chat: telegram.Chat{ID: 3, Type: telegram.ChatTypePrivate, FirstName: "Busy"}, MessageCount: 9},
		{Chat: telegram.Chat{ID: 4, Type: telegram.ChatTypePrivate, FirstName: "Third"}, MessageCount: 5},
	}

	stats := analytics.Compute(chats)
	wantNames := []string{"Busy", "First", "Second", "Third"}
	for i, want := range wantNames {
		if stats.MessagesPerChat[i].Name != want {
			t.Errorf("MessagesPerChat[%d].Name = %q, want %q", i, stats.MessagesPerChat[i].Name, want)
		}
	}
}

func TestHourlyDistribution(t *testing.T) {
	t.Parallel()

	// Two chats last active in distinct hours plus one sharing the first
	// chat's hour. Expected hours are derived the same way Compute does to
	// stay independent of the local zone.
	base := time.Date(2026, 8, 30, 9, 15, 0, 0, time.Local).Unix()
	later := time.Date(2026, 8, 30, 17, 45, 0, 0, time.Local).Unix()

	chats := []telegram.DiscoveredChat{
		{Chat: telegram.Chat{ID: 1, Type: telegram.ChatTypePrivate}, LastSeen: base, MessageCount: 3},
		{Chat: telegram.Chat{ID: 2, Type: telegram.ChatTypePrivate}, LastSeen: later, MessageCount: 2},
		{Chat: telegram.Chat{ID: 3, Type: telegram.ChatTypePrivate}, LastSeen: base + 60, MessageCount: 4},
	}

	stats := analytics.Compute(chats)
	if len(stats.HourlyDistribution) != 2 {
		t.Fatalf("got %d buckets, want 2: %v", len(stats.HourlyDistribution), stats.HourlyDistribution)
	}

	baseHour := time.Unix(base, 0).Hour()
	laterHour := time.Unix(later, 0).Hour()
	want := map[int]int{baseHour: 7, laterHour: 2}
	for _, bucket := range stats.HourlyDistribution {
		if want[bucket.Hour] != bucket.Count {
			t.Errorf("bucket hour %d = %d, want %d", bucket.Hour, bucket.Count, want[bucket.Hour])
		}
	}
	// Buckets come out sorted by hour.
	if stats.HourlyDistribution[0].Hour > stats.HourlyDistribution[1].Hour {
		t.Errorf("buckets not sorted by hour: %v", stats.HourlyDistribution)
	}
}

func TestTopChatsClamping(t *testing.T) {
	t.Parallel()

	chats := []telegram.DiscoveredChat{
		{Chat: telegram.Chat{ID: 1, Type: telegram.ChatTypePrivate, FirstName: "A"}, MessageCount: 3},
		{Chat: telegram.Chat{ID: 2, Type: telegram.ChatTypePrivate, FirstName: "B"}, MessageCount: 2},
	}
	stats := analytics.Compute(chats)

	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "negative", n: -1, want: 0},
		{name: "zero", n: 0, want: 0},
		{name: "partial", n: 1, want: 1},
		{name: "exact", n: 2, want: 2},
		{name: "more than known", n: 10, want: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := stats.TopChats(tc.n); len(got) != tc.want {
				t.Errorf("TopChats(%d) returned %d entries, want %d", tc.n, len(got), tc.want)
			}
		})
	}

	top := stats.TopChats(1)
	if top[0].Name != "A" {
		t.Errorf("TopChats(1)[0].Name = %q, want A", top[0].Name)
	}
}
