// internal/model/core/update.go
package core

// FieldUpdate is a closed command type with one variant per updatable
// quest field. Storage backends dispatch on the concrete type, so a
// misspelled field name can't silently no-op: unknown names coming in
// over the wire fail at the boundary where they are mapped to a
// variant, and an unrecognized variant is rejected by the backend.
type FieldUpdate interface {
	// Field returns the canonical column name the update targets.
	Field() string

	fieldUpdate()
}

// TitleUpdate replaces the quest title.
type TitleUpdate struct {
	Title string
}

// DifficultyUpdate replaces the quest difficulty tier.
type DifficultyUpdate struct {
	Difficulty Difficulty
}

// RewardUpdate replaces the quest reward.
type RewardUpdate struct {
	Reward int
}

// DescriptionUpdate replaces the quest description.
type DescriptionUpdate struct {
	Description string
}

// DeadlineUpdate replaces the quest deadline. The value is opaque to
// the store; date validation is a presentation concern.
type DeadlineUpdate struct {
	Deadline string
}

func (TitleUpdate) Field() string       { return "title" }
func (DifficultyUpdate) Field() string  { return "difficulty" }
func (RewardUpdate) Field() string      { return "reward" }
func (DescriptionUpdate) Field() string { return "description" }
func (DeadlineUpdate) Field() string    { return "deadline" }

func (TitleUpdate) fieldUpdate()       {}
func (DifficultyUpdate) fieldUpdate()  {}
func (RewardUpdate) fieldUpdate()      {}
func (DescriptionUpdate) fieldUpdate() {}
func (DeadlineUpdate) fieldUpdate()    {}
