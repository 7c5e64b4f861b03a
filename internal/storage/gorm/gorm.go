// Package gormstorage implements the storage.Backend interface on top
// of a GORM connection. It is shared by the SQLite and Postgres
// backends, which only differ in how the *gorm.DB is opened.
//
// Mutations to a single quest (field update + version snapshot) are
// serialized through a per-quest mutex and written in one transaction,
// so snapshots stay strictly ordered and no two updates interleave.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/questmaster/studio/internal/cache"
	"github.com/questmaster/studio/internal/export"
	"github.com/questmaster/studio/internal/logging"
	"github.com/questmaster/studio/internal/model"
	"github.com/questmaster/studio/internal/model/convert"
	"github.com/questmaster/studio/internal/model/core"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	QuestCache *cache.QuestCache
	LogManager *logging.SlogManager

	// Bundle export destination.
	OutputDir      string
	CompressOutput bool
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps Dependencies

	// createMu serializes draft creation so the title-prefix count
	// can't race with the insert it numbers.
	createMu sync.Mutex

	lockMu sync.Mutex
	locks  map[core.QuestID]*sync.Mutex
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps:  deps,
		locks: make(map[core.QuestID]*sync.Mutex),
	}
}

// Init migrates the schema, seeds instance info, and warms the quest
// cache from existing rows.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("no database connection injected")
	}
	if err := b.setupDB(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return b.warmCache()
}

// Close is a no-op; connection lifecycle belongs to whoever opened it.
func (b *Backend) Close() error {
	return nil
}

// setupDB migrates tables and creates default guild settings if they don't exist.
func (b *Backend) setupDB() error {
	db := b.deps.DB
	log := b.deps.LogManager

	if !db.Migrator().HasTable(&model.StudioInfo{}) {
		if err := db.AutoMigrate(&model.StudioInfo{}); err != nil {
			log.WriteLog("setupDB", fmt.Sprintf("Failed to create studio_info table: %s", err), "ERROR")
			return fmt.Errorf("failed to auto-migrate StudioInfo: %w", err)
		}
		if err := db.Create(&model.StudioInfo{
			GuildName:        "Quest Studio",
			GuildDescription: "Quest authoring guild",
			GuildWebsite:     "https://guild.example.com",
		}).Error; err != nil {
			return fmt.Errorf("failed to create studio_info entry: %w", err)
		}
	}

	log.WriteLog("setupDB", "Migrating schema", "INFO")
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// warmCache loads existing quest ids and titles so annotation appends
// can check existence without a round trip.
func (b *Backend) warmCache() error {
	if b.deps.QuestCache == nil {
		return nil
	}
	var quests []model.Quest
	if err := b.deps.DB.Select("id", "title").Find(&quests).Error; err != nil {
		return fmt.Errorf("failed to warm quest cache: %w", err)
	}
	b.deps.QuestCache.Reset()
	for _, q := range quests {
		b.deps.QuestCache.Set(core.QuestID(q.ID), q.Title)
	}
	return nil
}

// questLock returns the mutex serializing writes for one quest.
func (b *Backend) questLock(id core.QuestID) *sync.Mutex {
	b.lockMu.Lock()
	defer b.lockMu.Unlock()
	mu, ok := b.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		b.locks[id] = mu
	}
	return mu
}

// CreateDraft inserts a new draft quest and its initial version
// snapshot in one transaction. The draft title counts existing quests
// whose title begins with the draft prefix; the numbering is a
// heuristic kept for compatibility, not a uniqueness guarantee.
func (b *Backend) CreateDraft() (core.QuestID, error) {
	b.createMu.Lock()
	defer b.createMu.Unlock()

	db := b.deps.DB

	var count int64
	if err := db.Model(&model.Quest{}).
		Where("title LIKE ?", core.DraftTitlePrefix+"%").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count drafts: %w", err)
	}

	title := core.DraftTitlePrefix
	if count > 0 {
		title = fmt.Sprintf("%s #%d", core.DraftTitlePrefix, count+1)
	}

	quest := model.Quest{
		Title:       title,
		Difficulty:  string(core.DifficultyEasy),
		Reward:      core.DefaultReward,
		Description: "",
		Deadline:    "",
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quest).Error; err != nil {
			return fmt.Errorf("failed to insert draft: %w", err)
		}
		version := convert.SnapshotOf(convert.QuestFromGorm(quest))
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("failed to insert initial version: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if b.deps.QuestCache != nil {
		b.deps.QuestCache.Set(core.QuestID(quest.ID), quest.Title)
	}
	return core.QuestID(quest.ID), nil
}

// ApplyUpdate persists one field change and appends a snapshot of the
// complete post-update state, atomically per quest.
func (b *Backend) ApplyUpdate(id core.QuestID, update core.FieldUpdate) error {
	mu := b.questLock(id)
	mu.Lock()
	defer mu.Unlock()

	db := b.deps.DB

	var quest model.Quest
	if err := db.First(&quest, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.ErrQuestNotFound
		}
		return fmt.Errorf("failed to load quest %d: %w", id, err)
	}

	var value any
	switch u := update.(type) {
	case core.TitleUpdate:
		quest.Title = u.Title
		value = u.Title
	case core.DifficultyUpdate:
		if !u.Difficulty.IsValid() {
			return core.ErrInvalidDifficulty
		}
		quest.Difficulty = string(u.Difficulty)
		value = string(u.Difficulty)
	case core.RewardUpdate:
		quest.Reward = u.Reward
		value = u.Reward
	case core.DescriptionUpdate:
		quest.Description = u.Description
		value = u.Description
	case core.DeadlineUpdate:
		quest.Deadline = u.Deadline
		value = u.Deadline
	default:
		return core.ErrInvalidField
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Quest{}).
			Where("id = ?", uint(id)).
			Update(update.Field(), value).Error; err != nil {
			return fmt.Errorf("failed to update %s: %w", update.Field(), err)
		}
		version := convert.SnapshotOf(convert.QuestFromGorm(quest))
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("failed to insert version: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, ok := update.(core.TitleUpdate); ok && b.deps.QuestCache != nil {
		b.deps.QuestCache.Set(id, quest.Title)
	}
	return nil
}

// GetQuest returns the quest's current field values. A missing id is
// reported as absence, not an error.
func (b *Backend) GetQuest(id core.QuestID) (core.Quest, bool, error) {
	var quest model.Quest
	err := b.deps.DB.First(&quest, uint(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Quest{}, false, nil
	}
	if err != nil {
		return core.Quest{}, false, fmt.Errorf("failed to load quest %d: %w", id, err)
	}
	return convert.QuestFromGorm(quest), true, nil
}

// ListVersions returns the quest's version history, oldest first.
func (b *Backend) ListVersions(id core.QuestID) ([]core.VersionSnapshot, error) {
	var rows []model.QuestVersion
	if err := b.deps.DB.
		Where("quest_id = ?", uint(id)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	versions := make([]core.VersionSnapshot, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, convert.VersionFromGorm(row))
	}
	return versions, nil
}

// AddAnnotation appends a map annotation. This backend checks quest
// existence (via the warm cache, falling back to the table) and fails
// with ErrQuestNotFound for unknown ids.
func (b *Backend) AddAnnotation(a *core.Annotation) error {
	if err := b.ensureQuestExists(a.QuestID); err != nil {
		return err
	}

	row := convert.AnnotationToGorm(*a)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert annotation: %w", err)
	}
	a.ID = row.ID
	return nil
}

// ListAnnotations returns the quest's annotations in insertion order.
func (b *Backend) ListAnnotations(id core.QuestID) ([]core.Annotation, error) {
	var rows []model.QuestAnnotation
	if err := b.deps.DB.
		Where("quest_id = ?", uint(id)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	annotations := make([]core.Annotation, 0, len(rows))
	for _, row := range rows {
		annotations = append(annotations, convert.AnnotationFromGorm(row))
	}
	return annotations, nil
}

// RecordExport appends an export record for the quest.
func (b *Backend) RecordExport(e *core.ExportRecord) error {
	if err := b.ensureQuestExists(e.QuestID); err != nil {
		return err
	}

	row := convert.ExportToGorm(*e)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert export record: %w", err)
	}
	e.ID = row.ID
	e.CreatedAt = row.CreatedAt
	return nil
}

// ListExports returns the quest's export history in insertion order.
func (b *Backend) ListExports(id core.QuestID) ([]core.ExportRecord, error) {
	var rows []model.ExportRecord
	if err := b.deps.DB.
		Where("quest_id = ?", uint(id)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	exports := make([]core.ExportRecord, 0, len(rows))
	for _, row := range rows {
		exports = append(exports, convert.ExportFromGorm(row))
	}
	return exports, nil
}

// ExportBundle writes the quest's full bundle (quest, versions,
// annotations) as JSON to the configured output directory.
func (b *Backend) ExportBundle(id core.QuestID) (string, error) {
	quest, found, err := b.GetQuest(id)
	if err != nil {
		return "", err
	}
	if !found {
		return "", core.ErrQuestNotFound
	}
	versions, err := b.ListVersions(id)
	if err != nil {
		return "", err
	}
	annotations, err := b.ListAnnotations(id)
	if err != nil {
		return "", err
	}

	bundle := export.BuildBundle(export.StudioVersion, quest, versions, annotations)
	return export.WriteBundle(b.deps.OutputDir, b.deps.CompressOutput, bundle)
}

// ensureQuestExists consults the warm cache first and falls back to
// the table, caching a hit for next time.
func (b *Backend) ensureQuestExists(id core.QuestID) error {
	if b.deps.QuestCache != nil && b.deps.QuestCache.Has(id) {
		return nil
	}

	var quest model.Quest
	err := b.deps.DB.Select("id", "title").First(&quest, uint(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.ErrQuestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check quest %d: %w", id, err)
	}
	if b.deps.QuestCache != nil {
		b.deps.QuestCache.Set(id, quest.Title)
	}
	return nil
}
