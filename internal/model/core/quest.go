// internal/model/core/quest.go
package core

import "time"

// QuestID identifies a quest in whichever backend stores it.
type QuestID uint

// Difficulty is one of the four fixed quest tiers.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
	DifficultyEpic   Difficulty = "Epic"
)

// Difficulties returns the fixed tier set in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyEpic}
}

// IsValid reports whether d is a member of the fixed tier set.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyEpic:
		return true
	}
	return false
}

// DraftTitlePrefix is the literal prefix used when naming new drafts.
// Draft numbering counts existing quests whose title starts with it.
const DraftTitlePrefix = "New Quest"

// DefaultReward is the reward assigned to a freshly created draft.
const DefaultReward = 10

// Quest is the authored entity. ID and CreatedAt are set once at
// creation; the remaining fields change only through field updates.
type Quest struct {
	ID          QuestID
	Title       string
	Difficulty  Difficulty
	Reward      int
	Description string
	Deadline    string
	CreatedAt   time.Time
}
