package chatsync

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// MessageCache is the local copy of one session's message log. The log is
// append-only and immutable, so a differing count is the only change signal.
type MessageCache struct {
	mu       sync.RWMutex
	messages []models.Message
}

// NewMessageCache creates an empty cache
func NewMessageCache() *MessageCache {
	return &MessageCache{}
}

// Append adds a locally emitted message before its write is confirmed
func (c *MessageCache) Append(msg models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// Apply reconciles the cache with a fetched log. When the counts match the
// cache is left untouched; otherwise it is replaced and the messages not seen
// before are returned.
func (c *MessageCache) Apply(fetched []models.Message) (bool, []models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(fetched) == len(c.messages) {
		return false, nil
	}

	known := make(map[uuid.UUID]struct{}, len(c.messages))
	for _, m := range c.messages {
		known[m.ID] = struct{}{}
	}
	var added []models.Message
	for _, m := range fetched {
		if _, ok := known[m.ID]; !ok {
			added = append(added, m)
		}
	}

	c.messages = fetched
	return true, added
}

// Messages returns the cached slice itself. Callers must not modify it.
func (c *MessageCache) Messages() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.messages
}

// Snapshot returns a copy of the cached messages
func (c *MessageCache) Snapshot() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len is the number of cached messages
func (c *MessageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// LastAgentMessage returns the most recent agent-authored message
func (c *MessageCache) LastAgentMessage() (models.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].SenderType == models.SenderAgent {
			return c.messages[i], true
		}
	}
	return models.Message{}, false
}

// Reset empties the cache
func (c *MessageCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
