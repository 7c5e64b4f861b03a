package cache

import (
	"sync"

	"github.com/questmaster/studio/internal/model/core"
)

// QuestCache maps quest ids to their current titles. Backends keep it
// warm so annotation appends can check quest existence without a
// round trip, and handlers can log titles cheaply.
type QuestCache struct {
	mu     sync.RWMutex
	titles map[core.QuestID]string
}

// NewQuestCache creates an empty QuestCache
func NewQuestCache() *QuestCache {
	return &QuestCache{
		titles: make(map[core.QuestID]string),
	}
}

// Set stores or replaces the title for a quest id
func (c *QuestCache) Set(id core.QuestID, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.titles[id] = title
}

// Get retrieves the title for a quest id
func (c *QuestCache) Get(id core.QuestID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	title, ok := c.titles[id]
	return title, ok
}

// Has reports whether the quest id is known
func (c *QuestCache) Has(id core.QuestID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.titles[id]
	return ok
}

// Len returns the number of cached quests
func (c *QuestCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.titles)
}

// Reset clears the cache
func (c *QuestCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.titles = make(map[core.QuestID]string)
}
