// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/questmaster/studio/internal/config"
	"github.com/questmaster/studio/internal/export"
	"github.com/questmaster/studio/internal/model/core"
)

// questRecord groups a quest with its version history, annotation log,
// and export history
type questRecord struct {
	Quest       core.Quest
	Versions    []core.VersionSnapshot
	Annotations []core.Annotation
	Exports     []core.ExportRecord
}

// Backend stores quests in memory and exports bundles to JSON. It is
// the zero-dependency backend used for tests and scratch sessions.
type Backend struct {
	cfg config.MemoryConfig

	quests map[core.QuestID]*questRecord

	idCounter         uint
	versionCounter    uint
	annotationCounter uint
	exportCounter     uint
	mu                sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:    cfg,
		quests: make(map[core.QuestID]*questRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// CreateDraft inserts a new draft quest and writes its initial version
// snapshot. Draft titles count existing quests whose title begins with
// the draft prefix; the count is a numbering heuristic, not a
// uniqueness guarantee, and retitled quests can leave gaps.
func (b *Backend) CreateDraft() (core.QuestID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, rec := range b.quests {
		if strings.HasPrefix(rec.Quest.Title, core.DraftTitlePrefix) {
			count++
		}
	}

	title := core.DraftTitlePrefix
	if count > 0 {
		title = fmt.Sprintf("%s #%d", core.DraftTitlePrefix, count+1)
	}

	b.idCounter++
	quest := core.Quest{
		ID:         core.QuestID(b.idCounter),
		Title:      title,
		Difficulty: core.DifficultyEasy,
		Reward:     core.DefaultReward,
		CreatedAt:  time.Now().UTC(),
	}

	rec := &questRecord{Quest: quest}
	b.quests[quest.ID] = rec
	b.snapshotLocked(rec)

	return quest.ID, nil
}

// ApplyUpdate persists a field update and appends a snapshot of the
// complete post-update state. A rejected update changes nothing.
func (b *Backend) ApplyUpdate(id core.QuestID, update core.FieldUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.quests[id]
	if !ok {
		return core.ErrQuestNotFound
	}

	switch u := update.(type) {
	case core.TitleUpdate:
		rec.Quest.Title = u.Title
	case core.DifficultyUpdate:
		if !u.Difficulty.IsValid() {
			return core.ErrInvalidDifficulty
		}
		rec.Quest.Difficulty = u.Difficulty
	case core.RewardUpdate:
		rec.Quest.Reward = u.Reward
	case core.DescriptionUpdate:
		rec.Quest.Description = u.Description
	case core.DeadlineUpdate:
		rec.Quest.Deadline = u.Deadline
	default:
		return core.ErrInvalidField
	}

	b.snapshotLocked(rec)
	return nil
}

// snapshotLocked appends a version snapshot of the record's current
// state. Caller must hold b.mu.
func (b *Backend) snapshotLocked(rec *questRecord) {
	b.versionCounter++
	rec.Versions = append(rec.Versions, core.VersionSnapshot{
		ID:          b.versionCounter,
		QuestID:     rec.Quest.ID,
		Title:       rec.Quest.Title,
		Difficulty:  rec.Quest.Difficulty,
		Reward:      rec.Quest.Reward,
		Description: rec.Quest.Description,
		CreatedAt:   time.Now().UTC(),
	})
}

// GetQuest returns the quest's current field values. A missing id is
// reported as absence, not an error.
func (b *Backend) GetQuest(id core.QuestID) (core.Quest, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.quests[id]
	if !ok {
		return core.Quest{}, false, nil
	}
	return rec.Quest, true, nil
}

// ListVersions returns the quest's version history, oldest first.
func (b *Backend) ListVersions(id core.QuestID) ([]core.VersionSnapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.quests[id]
	if !ok {
		return []core.VersionSnapshot{}, nil
	}
	versions := make([]core.VersionSnapshot, len(rec.Versions))
	copy(versions, rec.Versions)
	return versions, nil
}

// AddAnnotation appends a map annotation. This backend checks quest
// existence and fails with ErrQuestNotFound for unknown ids.
func (b *Backend) AddAnnotation(a *core.Annotation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.quests[a.QuestID]
	if !ok {
		return core.ErrQuestNotFound
	}

	b.annotationCounter++
	a.ID = b.annotationCounter
	rec.Annotations = append(rec.Annotations, *a)
	return nil
}

// ListAnnotations returns the quest's annotations in insertion order.
func (b *Backend) ListAnnotations(id core.QuestID) ([]core.Annotation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.quests[id]
	if !ok {
		return []core.Annotation{}, nil
	}
	annotations := make([]core.Annotation, len(rec.Annotations))
	copy(annotations, rec.Annotations)
	return annotations, nil
}

// RecordExport appends an export record for the quest.
func (b *Backend) RecordExport(e *core.ExportRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.quests[e.QuestID]
	if !ok {
		return core.ErrQuestNotFound
	}

	b.exportCounter++
	e.ID = b.exportCounter
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	rec.Exports = append(rec.Exports, *e)
	return nil
}

// ListExports returns the quest's export history in insertion order.
func (b *Backend) ListExports(id core.QuestID) ([]core.ExportRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.quests[id]
	if !ok {
		return []core.ExportRecord{}, nil
	}
	exports := make([]core.ExportRecord, len(rec.Exports))
	copy(exports, rec.Exports)
	return exports, nil
}

// ExportBundle writes the quest's full bundle (quest, versions,
// annotations) as JSON to the configured output directory.
func (b *Backend) ExportBundle(id core.QuestID) (string, error) {
	b.mu.RLock()
	rec, ok := b.quests[id]
	if !ok {
		b.mu.RUnlock()
		return "", core.ErrQuestNotFound
	}
	bundle := export.BuildBundle(export.StudioVersion, rec.Quest, rec.Versions, rec.Annotations)
	compress := b.cfg.CompressOutput
	outputDir := b.cfg.OutputDir
	b.mu.RUnlock()

	return export.WriteBundle(outputDir, compress, bundle)
}
