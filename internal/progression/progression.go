// Package progression converts named authoring events into an
// accumulating XP score and a derived tier. The engine is pure state
// plus immutable configuration: no persistence, no failures. Unknown
// event names degrade to a zero delta.
package progression

import (
	"fmt"
	"sort"
	"sync"
)

// Tier names a progression level and the minimum score that grants it.
type Tier struct {
	Name      string `json:"name" mapstructure:"name"`
	Threshold int    `json:"threshold" mapstructure:"threshold"`
}

// Config holds the tier ladder and the event score table. It is loaded
// once and never mutated at runtime; alternate configurations exist
// only for deterministic testing.
type Config struct {
	Tiers  []Tier         `json:"tiers" mapstructure:"tiers"`
	Events map[string]int `json:"events" mapstructure:"events"`
}

// DefaultConfig returns the stock guild ladder and event table.
func DefaultConfig() Config {
	return Config{
		Tiers: []Tier{
			{Name: "Apprentice", Threshold: 0},
			{Name: "Parchment Master", Threshold: 50},
			{Name: "Document Archmage", Threshold: 100},
		},
		Events: map[string]int{
			"create_quest": 3,
			"export":       2,
			"save_map":     5,
			"boss_fight":   20,
		},
	}
}

// State is a point-in-time copy of the engine's accumulator.
type State struct {
	Score        int      `json:"score"`
	Tier         string   `json:"tier"`
	Achievements []string `json:"achievements"`
}

// Engine applies events to a monotone (score, tier) pair. AddEvent is
// atomic under a mutex so the engine can be shared across callers
// without breaking score monotonicity.
type Engine struct {
	mu           sync.Mutex
	tiers        []Tier
	events       map[string]int
	score        int
	tier         string
	achievements []string
}

// New creates an engine from cfg. The tier ladder is sorted ascending
// by threshold with a stable sort, so when two tiers share a threshold
// the later-defined one wins derivation. A zero-threshold starting
// tier is required.
func New(cfg Config) (*Engine, error) {
	if len(cfg.Tiers) == 0 {
		return nil, fmt.Errorf("progression config has no tiers")
	}

	tiers := make([]Tier, len(cfg.Tiers))
	copy(tiers, cfg.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Threshold < tiers[j].Threshold })

	if tiers[0].Threshold != 0 {
		return nil, fmt.Errorf("progression config needs a zero-threshold starting tier, lowest is %d", tiers[0].Threshold)
	}

	events := make(map[string]int, len(cfg.Events))
	for name, delta := range cfg.Events {
		events[name] = delta
	}

	return &Engine{
		tiers:  tiers,
		events: events,
		tier:   tiers[0].Name,
	}, nil
}

// AddEvent applies the named event and returns the updated score and
// tier. Events worth a positive delta are appended to the achievements
// log as "+{delta} XP: {event}"; zero and negative deltas are not
// logged. Unknown events are a no-op worth zero.
func (e *Engine) AddEvent(event string) (int, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delta := e.events[event]
	e.score += delta
	e.deriveTier()
	if delta > 0 {
		e.achievements = append(e.achievements, fmt.Sprintf("+%d XP: %s", delta, event))
	}
	return e.score, e.tier
}

// deriveTier recomputes the tier as a pure projection of the score:
// the highest-threshold tier whose threshold is <= score.
// Caller must hold e.mu.
func (e *Engine) deriveTier() {
	tier := e.tiers[0].Name
	for _, t := range e.tiers {
		if t.Threshold <= e.score {
			tier = t.Name
		}
	}
	e.tier = tier
}

// ProgressToNextTier returns the percent of the way from the current
// tier's threshold to the next one, truncated to an integer.
//
// When the score sits exactly on the maximum threshold, the previous
// and next thresholds coincide and the span guard yields 0 rather
// than 100. The progress bar depends on that boundary behavior.
func (e *Engine) ProgressToNextTier() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.tiers[len(e.tiers)-1].Threshold
	for _, t := range e.tiers {
		if t.Threshold > e.score {
			next = t.Threshold
			break
		}
	}

	prev := 0
	for _, t := range e.tiers {
		if t.Threshold <= e.score {
			prev = t.Threshold
		}
	}

	span := next - prev
	if span < 1 {
		span = 1
	}
	return int(float64(e.score-prev) / float64(span) * 100)
}

// State returns a copy of the current accumulator, including the full
// achievements log. Truncation for display is the caller's concern.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	achievements := make([]string, len(e.achievements))
	copy(achievements, e.achievements)
	return State{
		Score:        e.score,
		Tier:         e.tier,
		Achievements: achievements,
	}
}
