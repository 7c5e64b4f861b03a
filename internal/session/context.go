// Package session tracks the state of one editing session: which quest
// is open in the editor and the progression engine accumulating XP for
// the session's events.
package session

import (
	"sync"

	"github.com/questmaster/studio/internal/model/core"
	"github.com/questmaster/studio/internal/progression"
)

// Context holds the active quest and the session's progression engine.
// The engine itself is safe for concurrent use; the context guards the
// active quest id.
type Context struct {
	mu     sync.RWMutex
	active core.QuestID
	open   bool
	engine *progression.Engine
}

// NewContext creates a session context around the given engine.
func NewContext(engine *progression.Engine) *Context {
	return &Context{engine: engine}
}

// ActiveQuest returns the quest currently open in the editor, and
// whether any quest is open at all.
func (c *Context) ActiveQuest() (core.QuestID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active, c.open
}

// SetActiveQuest marks a quest as open in the editor.
func (c *Context) SetActiveQuest(id core.QuestID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = id
	c.open = true
}

// Engine returns the session's progression engine.
func (c *Context) Engine() *progression.Engine {
	return c.engine
}
