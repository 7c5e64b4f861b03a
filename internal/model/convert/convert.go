// Package convert translates between the plain domain structs in
// model/core and the GORM table models in model.
package convert

import (
	"encoding/json"

	"github.com/questmaster/studio/internal/model"
	"github.com/questmaster/studio/internal/model/core"
)

// QuestToGorm converts a core quest to its table model.
func QuestToGorm(q core.Quest) model.Quest {
	m := model.Quest{
		Title:       q.Title,
		Difficulty:  string(q.Difficulty),
		Reward:      q.Reward,
		Description: q.Description,
		Deadline:    q.Deadline,
	}
	m.ID = uint(q.ID)
	m.CreatedAt = q.CreatedAt
	return m
}

// QuestFromGorm converts a quest table row to its core struct.
func QuestFromGorm(m model.Quest) core.Quest {
	return core.Quest{
		ID:          core.QuestID(m.ID),
		Title:       m.Title,
		Difficulty:  core.Difficulty(m.Difficulty),
		Reward:      m.Reward,
		Description: m.Description,
		Deadline:    m.Deadline,
		CreatedAt:   m.CreatedAt,
	}
}

// SnapshotOf builds the version row for a quest's current state.
// The whole record is materialized, not a diff, so every version row
// is self-contained.
func SnapshotOf(q core.Quest) model.QuestVersion {
	return model.QuestVersion{
		QuestID:     uint(q.ID),
		Title:       q.Title,
		Difficulty:  string(q.Difficulty),
		Reward:      q.Reward,
		Description: q.Description,
	}
}

// VersionFromGorm converts a version table row to its core struct.
func VersionFromGorm(m model.QuestVersion) core.VersionSnapshot {
	return core.VersionSnapshot{
		ID:          m.ID,
		QuestID:     core.QuestID(m.QuestID),
		Title:       m.Title,
		Difficulty:  core.Difficulty(m.Difficulty),
		Reward:      m.Reward,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// AnnotationToGorm converts a core annotation to its table model.
func AnnotationToGorm(a core.Annotation) model.QuestAnnotation {
	return model.QuestAnnotation{
		QuestID: uint(a.QuestID),
		X:       a.X,
		Y:       a.Y,
		Kind:    string(a.Kind),
		Label:   a.Label,
	}
}

// AnnotationFromGorm converts an annotation table row to its core struct.
func AnnotationFromGorm(m model.QuestAnnotation) core.Annotation {
	return core.Annotation{
		ID:      m.ID,
		QuestID: core.QuestID(m.QuestID),
		X:       m.X,
		Y:       m.Y,
		Kind:    core.MarkerKind(m.Kind),
		Label:   m.Label,
	}
}

// ExportToGorm converts a core export record to its table model.
// Snapshot marshalling failures degrade to a null payload; the export
// itself is still recorded.
func ExportToGorm(e core.ExportRecord) model.ExportRecord {
	m := model.ExportRecord{
		QuestID:    uint(e.QuestID),
		Format:     e.Format,
		OutputPath: e.OutputPath,
	}
	if e.Snapshot != nil {
		if data, err := json.Marshal(e.Snapshot); err == nil {
			m.Payload = data
		}
	}
	return m
}

// ExportFromGorm converts an export table row to its core struct.
func ExportFromGorm(m model.ExportRecord) core.ExportRecord {
	e := core.ExportRecord{
		ID:         m.ID,
		QuestID:    core.QuestID(m.QuestID),
		Format:     m.Format,
		OutputPath: m.OutputPath,
		CreatedAt:  m.CreatedAt,
	}
	if len(m.Payload) > 0 {
		var snapshot map[string]any
		if err := json.Unmarshal(m.Payload, &snapshot); err == nil {
			e.Snapshot = snapshot
		}
	}
	return e
}
