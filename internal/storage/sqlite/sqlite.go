// Package sqlitestorage implements the storage.Backend interface using
// a SQLite database. It wraps the GORM backend via composition. The
// only SQLite-specific concerns are: (a) opening the database (file
// path or in-memory), and (b) the periodic disk dump via VACUUM INTO
// when running in memory.
package sqlitestorage

import (
	"fmt"
	"time"

	"github.com/questmaster/studio/internal/cache"
	"github.com/questmaster/studio/internal/config"
	"github.com/questmaster/studio/internal/database"
	"github.com/questmaster/studio/internal/logging"

	gormstorage "github.com/questmaster/studio/internal/storage/gorm"

	"gorm.io/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      config.SqliteConfig
	log      *logging.SlogManager
	stopChan chan struct{}
}

// New creates a new SQLite storage backend. An empty cfg.Path selects
// an in-memory database dumped to cfg.DumpPath on an interval.
func New(cfg config.SqliteConfig, memCfg config.MemoryConfig, questCache *cache.QuestCache, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.GetSqliteDBStandalone(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:             db,
		QuestCache:     questCache,
		LogManager:     logManager,
		OutputDir:      memCfg.OutputDir,
		CompressOutput: memCfg.CompressOutput,
	})

	return &Backend{
		Backend:  gormBackend,
		db:       db,
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump
// goroutine when running in memory.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.Path == "" && b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, takes a final dump, and closes the
// embedded GORM backend.
func (b *Backend) Close() error {
	close(b.stopChan)
	if b.cfg.Path == "" && b.cfg.DumpPath != "" {
		if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
			b.log.WriteLog("sqlite:Close", fmt.Sprintf("Error taking final dump: %v", err), "ERROR")
		}
	}
	return b.Backend.Close()
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
