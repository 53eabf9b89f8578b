package application

import (
	"sync"
	"time"

	"github.com/example/chat-assistant/internal/roster"
)

// rosterCache stores recently loaded conversation rosters so a burst of
// scheduling requests in one conversation does not reread the membership
// table each time. Entries expire quickly; role changes become visible
// after at most one TTL.
type rosterCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]rosterCacheEntry
}

type rosterCacheEntry struct {
	members   []roster.Member
	expiresAt time.Time
}

func newRosterCache(ttl time.Duration, maxEntries int, now func() time.Time) *rosterCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &rosterCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]rosterCacheEntry),
	}
}

func (c *rosterCache) Get(conversationID string) ([]roster.Member, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[conversationID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, conversationID)
		c.mu.Unlock()
		return nil, false
	}
	return cloneMembers(entry.members), true
}

func (c *rosterCache) Put(conversationID string, members []roster.Member) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		// Full cache: drop everything rather than track recency.
		c.entries = make(map[string]rosterCacheEntry)
	}
	c.entries[conversationID] = rosterCacheEntry{
		members:   cloneMembers(members),
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *rosterCache) Invalidate(conversationID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, conversationID)
	c.mu.Unlock()
}

func cloneMembers(members []roster.Member) []roster.Member {
	if members == nil {
		return nil
	}
	cloned := make([]roster.Member, len(members))
	copy(cloned, members)
	return cloned
}
