// Package postgresstorage implements the storage.Backend interface
// using GORM/PostgreSQL. It wraps the shared GORM backend; the
// Postgres-specific concern is connecting, which goes through the
// database manager so an unreachable guild server degrades to the
// local SQLite fallback instead of failing startup.
// Writes happen synchronously; authoring traffic is interactive-speed,
// so there is no batch queue in front of the database.
package postgresstorage

import (
	"github.com/questmaster/studio/internal/cache"
	"github.com/questmaster/studio/internal/config"
	"github.com/questmaster/studio/internal/database"
	"github.com/questmaster/studio/internal/logging"

	gormstorage "github.com/questmaster/studio/internal/storage/gorm"
)

// Backend wraps the GORM backend over the managed connection.
type Backend struct {
	*gormstorage.Backend
	manager *database.Manager
}

// New connects via the database manager using the viper db.* settings.
// The SQLite dump path doubles as the offline fallback file.
func New(memCfg config.MemoryConfig, sqliteCfg config.SqliteConfig, questCache *cache.QuestCache, logManager *logging.SlogManager) (*Backend, error) {
	manager := database.NewManager(logManager, sqliteCfg.DumpPath)
	if err := manager.Connect(); err != nil {
		return nil, err
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:             manager.DB,
		QuestCache:     questCache,
		LogManager:     logManager,
		OutputDir:      memCfg.OutputDir,
		CompressOutput: memCfg.CompressOutput,
	})

	return &Backend{Backend: gormBackend, manager: manager}, nil
}

// UsingFallback reports whether the backend runs on the local SQLite
// fallback instead of the guild Postgres server.
func (b *Backend) UsingFallback() bool {
	return b.manager.UsingFallback
}
