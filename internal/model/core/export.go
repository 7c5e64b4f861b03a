// internal/model/core/export.go
package core

import "time"

// ExportRecord captures one completed export of a quest: the target
// format, where the rendered document landed, and the flat snapshot
// that was substituted into the template.
type ExportRecord struct {
	ID         uint
	QuestID    QuestID
	Format     string
	OutputPath string
	Snapshot   map[string]any
	CreatedAt  time.Time
}
