// Package export renders quests into documents: a flat key/value
// snapshot for template substitution, an HTML "guild contract"
// parchment, and a gzipped JSON bundle of a quest's full history.
package export

import (
	"time"

	"github.com/questmaster/studio/internal/model/core"
)

// Snapshot flattens a quest into the key/value form handed to the
// template layer. Every value is display-ready; nothing here is meant
// to round-trip back into the store.
func Snapshot(q core.Quest) map[string]any {
	return map[string]any{
		"id":          uint(q.ID),
		"title":       q.Title,
		"difficulty":  string(q.Difficulty),
		"reward":      q.Reward,
		"description": q.Description,
		"deadline":    q.Deadline,
		"createdAt":   q.CreatedAt.UTC().Format(time.RFC3339),
	}
}
