package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questmaster/studio/internal/progression"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	engine, err := progression.New(progression.DefaultConfig())
	require.NoError(t, err)
	return NewContext(engine)
}

func TestActiveQuest_NoneOpen(t *testing.T) {
	c := newTestContext(t)

	_, ok := c.ActiveQuest()
	assert.False(t, ok)
}

func TestSetActiveQuest(t *testing.T) {
	c := newTestContext(t)

	c.SetActiveQuest(7)

	id, ok := c.ActiveQuest()
	require.True(t, ok)
	assert.EqualValues(t, 7, id)

	// opening another quest replaces the first
	c.SetActiveQuest(9)
	id, _ = c.ActiveQuest()
	assert.EqualValues(t, 9, id)
}

func TestEngine_SharedAcrossQuests(t *testing.T) {
	c := newTestContext(t)

	c.SetActiveQuest(1)
	c.Engine().AddEvent("create_quest")
	c.SetActiveQuest(2)
	c.Engine().AddEvent("create_quest")

	// XP accumulates per session, not per quest
	assert.Equal(t, 6, c.Engine().State().Score)
}
