package telegram

import "sort"

// UpdateProcessor folds update batches into the discovered-chat registry and
// tracks the highest update ID seen. It is not safe for concurrent use; the
// registry has a single writer and callers serialize snapshot reads
// themselves.
type UpdateProcessor struct {
	chats     map[int64]*DiscoveredChat
	watermark int64
}

// NewUpdateProcessor returns a processor with an empty registry.
func NewUpdateProcessor() *UpdateProcessor {
	return &UpdateProcessor{chats: make(map[int64]*DiscoveredChat)}
}

// Watermark returns the highest update ID processed so far. It only ever
// increases; duplicate and out-of-order IDs are folded, not rejected.
func (p *UpdateProcessor) Watermark() int64 {
	return p.watermark
}

// Seed merges previously discovered chats (for example a persisted cache)
// into the registry. Entries for chat IDs already present are left untouched.
func (p *UpdateProcessor) Seed(chats []DiscoveredChat) {
	for _, c := range chats {
		if _, ok := p.chats[c.Chat.ID]; ok {
			continue
		}
		entry := c
		entry.Topics = append([]TopicInfo(nil), c.Topics...)
		p.chats[c.Chat.ID] = &entry
	}
}

// ProcessBatch folds a batch of updates into the registry in order. It never
// fails: updates with missing optional fields simply skip the corresponding
// enrichment, and unrecognized kinds only advance the watermark.
func (p *UpdateProcessor) ProcessBatch(updates []Update) {
	for i := range updates {
		u := &updates[i]
		if u.ID > p.watermark {
			p.watermark = u.ID
		}

		if u.Message != nil {
			p.recordMessage(u.Message)
		}
		if u.ChannelPost != nil {
			p.recordMessage(u.ChannelPost)
		}
		if u.EditedMessage != nil {
			// Edits bump activity on known chats only; an edit must never
			// create a registry entry.
			if entry, ok := p.chats[u.EditedMessage.Chat.ID]; ok {
				if u.EditedMessage.Date > entry.LastSeen {
					entry.LastSeen = u.EditedMessage.Date
				}
			}
		}
	}
}

func (p *UpdateProcessor) recordMessage(msg *Message) {
	entry, ok := p.chats[msg.Chat.ID]
	if !ok {
		// Snapshot chat metadata as first seen; later messages do not
		// overwrite it.
		entry = &DiscoveredChat{Chat: msg.Chat, LastSeen: msg.Date}
		p.chats[msg.Chat.ID] = entry
	}

	entry.MessageCount++
	if msg.Date > entry.LastSeen {
		entry.LastSeen = msg.Date
	}

	if msg.ThreadID == 0 {
		return
	}
	for i := range entry.Topics {
		if entry.Topics[i].ThreadID == msg.ThreadID {
			entry.Topics[i].MessageCount++
			if msg.Date > entry.Topics[i].LastSeen {
				entry.Topics[i].LastSeen = msg.Date
			}
			return
		}
	}
	entry.Topics = append(entry.Topics, TopicInfo{
		ThreadID:     msg.ThreadID,
		MessageCount: 1,
		LastSeen:     msg.Date,
	})
}

// DiscoveredChats returns a snapshot of the registry ordered by last activity
// (most recent first, ties by chat ID ascending so output is reproducible).
func (p *UpdateProcessor) DiscoveredChats() []DiscoveredChat {
	chats := make([]DiscoveredChat, 0, len(p.chats))
	for _, entry := range p.chats {
		c := *entry
		c.Topics = append([]TopicInfo(nil), entry.Topics...)
		chats = append(chats, c)
	}
	sort.Slice(chats, func(i, j int) bool {
		if chats[i].LastSeen != chats[j].LastSeen {
			return chats[i].LastSeen > chats[j].LastSeen
		}
		return chats[i].Chat.ID < chats[j].Chat.ID
	})
	return chats
}
