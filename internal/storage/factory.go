// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/questmaster/studio/internal/cache"
	"github.com/questmaster/studio/internal/config"
	"github.com/questmaster/studio/internal/logging"
	"github.com/questmaster/studio/internal/storage/memory"
	postgresstorage "github.com/questmaster/studio/internal/storage/postgres"
	sqlitestorage "github.com/questmaster/studio/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, questCache *cache.QuestCache, logManager *logging.SlogManager) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgresstorage.New(cfg.Memory, cfg.Sqlite, questCache, logManager)
	case "sqlite":
		return sqlitestorage.New(cfg.Sqlite, cfg.Memory, questCache, logManager)
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
