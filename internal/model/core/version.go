// internal/model/core/version.go
package core

import "time"

// VersionSnapshot is a fully-materialized copy of a quest's versioned
// fields at one point in time. For any quest the snapshots form a
// strictly append-only sequence: one written at creation, one after
// every accepted field update. Snapshots are never edited or removed.
//
// Deadline is deliberately absent: the version table has never carried
// it and history readers don't expect it.
type VersionSnapshot struct {
	ID          uint
	QuestID     QuestID
	Title       string
	Difficulty  Difficulty
	Reward      int
	Description string
	CreatedAt   time.Time
}
