// internal/model/core/annotation.go
package core

// MarkerKind labels what a map annotation represents.
type MarkerKind string

const (
	MarkerCity   MarkerKind = "city"
	MarkerLair   MarkerKind = "lair"
	MarkerTavern MarkerKind = "tavern"

	// MarkerRoute marks one vertex of a free-hand route drawn in the
	// map editor.
	MarkerRoute MarkerKind = "route"
)

// Annotation is a point marker placed on a quest's map. Annotations are
// append-only: once written they are never moved, merged, or deleted,
// and duplicates at the same coordinate are allowed. X and Y are scene
// coordinates resolved by the map editor; no bounds are enforced here.
type Annotation struct {
	ID      uint
	QuestID QuestID
	X       float64
	Y       float64
	Kind    MarkerKind
	Label   string
}
