package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestNew_RequiresTiers(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_RequiresZeroThresholdStart(t *testing.T) {
	_, err := New(Config{
		Tiers: []Tier{{Name: "Journeyman", Threshold: 10}},
	})
	assert.Error(t, err)
}

func TestAddEvent_KnownEvent(t *testing.T) {
	e := newTestEngine(t)

	score, tier := e.AddEvent("create_quest")

	assert.Equal(t, 3, score)
	assert.Equal(t, "Apprentice", tier)
	assert.Equal(t, []string{"+3 XP: create_quest"}, e.State().Achievements)
}

func TestAddEvent_UnknownEventScoresZero(t *testing.T) {
	e := newTestEngine(t)

	score, tier := e.AddEvent("no_such_event")

	assert.Equal(t, 0, score)
	assert.Equal(t, "Apprentice", tier)
	assert.Empty(t, e.State().Achievements, "zero-delta events must not be logged")
}

func TestAddEvent_TierUpgrade(t *testing.T) {
	e := newTestEngine(t)

	// 2x boss_fight = 40, then 2x save_map = 50 -> Parchment Master
	e.AddEvent("boss_fight")
	e.AddEvent("boss_fight")
	e.AddEvent("save_map")
	score, tier := e.AddEvent("save_map")

	assert.Equal(t, 50, score)
	assert.Equal(t, "Parchment Master", tier)

	// 2x boss_fight + save_map = 95, one more save_map crosses 100
	e.AddEvent("boss_fight")
	e.AddEvent("boss_fight")
	e.AddEvent("save_map")
	score, tier = e.AddEvent("save_map")

	assert.Equal(t, 100, score)
	assert.Equal(t, "Document Archmage", tier)
}

func TestAddEvent_ScoreIsMonotone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Events["penalty"] = -5
	e, err := New(cfg)
	require.NoError(t, err)

	e.AddEvent("boss_fight")
	score, _ := e.AddEvent("penalty")

	// negative deltas do apply to the score but are not logged
	assert.Equal(t, 15, score)
	assert.Equal(t, []string{"+20 XP: boss_fight"}, e.State().Achievements)
}

func TestTieBreak_LaterDefinedTierWins(t *testing.T) {
	e, err := New(Config{
		Tiers: []Tier{
			{Name: "Novice", Threshold: 0},
			{Name: "Adept", Threshold: 10},
			{Name: "Adept II", Threshold: 10},
		},
		Events: map[string]int{"win": 10},
	})
	require.NoError(t, err)

	_, tier := e.AddEvent("win")
	assert.Equal(t, "Adept II", tier)
}

func TestProgressToNextTier(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, 0, e.ProgressToNextTier())

	e.AddEvent("boss_fight") // 20 of the 0..50 span
	assert.Equal(t, 40, e.ProgressToNextTier())

	e.AddEvent("boss_fight")
	e.AddEvent("boss_fight")
	e.AddEvent("save_map")
	e.AddEvent("save_map")
	e.AddEvent("save_map") // 75: halfway through 50..100
	assert.Equal(t, 50, e.ProgressToNextTier())
}

func TestProgressToNextTier_AtMaxThreshold(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 5; i++ {
		e.AddEvent("boss_fight")
	}
	state := e.State()
	require.Equal(t, 100, state.Score)
	require.Equal(t, "Document Archmage", state.Tier)

	// exactly on the max threshold the span collapses and the guard
	// reports 0, not 100
	assert.Equal(t, 0, e.ProgressToNextTier())
}

func TestProgressToNextTier_BeyondMaxThreshold(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 6; i++ {
		e.AddEvent("boss_fight")
	}
	require.Equal(t, 120, e.State().Score)

	// past the top tier the span guard divides by one
	assert.Equal(t, 2000, e.ProgressToNextTier())
}

func TestState_ReturnsCopy(t *testing.T) {
	e := newTestEngine(t)
	e.AddEvent("create_quest")

	state := e.State()
	state.Achievements[0] = "mutated"

	assert.Equal(t, []string{"+3 XP: create_quest"}, e.State().Achievements)
}
