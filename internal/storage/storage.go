// internal/storage/storage.go
package storage

import (
	"github.com/questmaster/studio/internal/model/core"
)

// Sentinel errors shared by all backends live in the core package so
// backend subpackages can return them without importing this one.
// Aliased here for caller convenience.
var (
	ErrQuestNotFound     = core.ErrQuestNotFound
	ErrInvalidField      = core.ErrInvalidField
	ErrInvalidDifficulty = core.ErrInvalidDifficulty
)

// Backend is the interface all storage implementations must satisfy.
// Reads of a missing quest report absence, not an error; creation and
// update fail hard. Quests are never deleted.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Quest authoring. CreateDraft inserts a quest with a counted
	// draft title and default field values, and writes the initial
	// version snapshot. ApplyUpdate persists the field change and
	// appends a snapshot of the complete post-update state; a rejected
	// update leaves both the quest and its history untouched.
	CreateDraft() (core.QuestID, error)
	ApplyUpdate(id core.QuestID, update core.FieldUpdate) error
	GetQuest(id core.QuestID) (core.Quest, bool, error)
	ListVersions(id core.QuestID) ([]core.VersionSnapshot, error)

	// Map annotations (append + list only).
	AddAnnotation(a *core.Annotation) error
	ListAnnotations(id core.QuestID) ([]core.Annotation, error)

	// Export bookkeeping.
	RecordExport(e *core.ExportRecord) error
	ListExports(id core.QuestID) ([]core.ExportRecord, error)
}

// BundleExporter is an optional interface for backends that can write
// a quest's full bundle (quest, versions, annotations) to a file.
type BundleExporter interface {
	ExportBundle(id core.QuestID) (string, error)
}
