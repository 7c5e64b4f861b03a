// Package database opens the studio's GORM connections. The guild
// Postgres server is preferred; authoring must keep working offline,
// so Manager falls back to a local SQLite file when it is unreachable.
package database

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/questmaster/studio/internal/logging"
)

// sqlitePragmas tune SQLite for interactive-speed authoring writes.
var sqlitePragmas = []string{
	"PRAGMA user_version = 1;",
	"PRAGMA journal_mode = MEMORY;",
	"PRAGMA synchronous = OFF;",
	"PRAGMA cache_size = -32000;",
	"PRAGMA temp_store = MEMORY;",
}

// Manager opens the authoring database. Connect tries the guild
// Postgres server first and falls back to the local SQLite file at
// FallbackPath when the server cannot be reached or validated.
type Manager struct {
	DB            *gorm.DB
	SqlDB         *sql.DB
	UsingFallback bool
	FallbackPath  string

	log *logging.SlogManager
}

// NewManager creates a database manager with the given SQLite fallback
// file.
func NewManager(logManager *logging.SlogManager, fallbackPath string) *Manager {
	return &Manager{
		FallbackPath: fallbackPath,
		log:          logManager,
	}
}

// Connect establishes the connection, preferring Postgres. After a
// successful call DB is non-nil and UsingFallback reports which side
// was opened.
func (m *Manager) Connect() error {
	db, err := GetPostgresDBStandalone()
	if err == nil {
		sqlDB, pingErr := validate(db)
		if pingErr == nil {
			m.DB = db
			m.SqlDB = sqlDB
			m.SqlDB.SetMaxOpenConns(10)
			m.writeLog("database:Connect", "Connected to guild Postgres server", "INFO")
			return nil
		}
		err = pingErr
	}

	m.writeLog("database:Connect",
		fmt.Sprintf("Postgres unreachable, falling back to local SQLite: %v", err), "WARN")

	m.UsingFallback = true
	db, fallbackErr := GetSqliteDBStandalone(m.FallbackPath)
	if fallbackErr != nil || db == nil {
		return fmt.Errorf("postgres unreachable (%v) and SQLite fallback failed: %v", err, fallbackErr)
	}

	m.DB = db
	m.SqlDB, fallbackErr = db.DB()
	if fallbackErr != nil {
		return fmt.Errorf("failed to access sql interface: %w", fallbackErr)
	}

	m.writeLog("database:Connect",
		fmt.Sprintf("Using local SQLite fallback at %s", m.FallbackPath), "INFO")
	return nil
}

func (m *Manager) writeLog(functionName, data, level string) {
	if m.log != nil {
		m.log.WriteLog(functionName, data, level)
	}
}

// validate confirms the connection actually answers, not just that
// GORM accepted the DSN.
func validate(db *gorm.DB) (*sql.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	return sqlDB, nil
}

// GetPostgresDBStandalone returns a connection to the Postgres database using viper config.
func GetPostgresDBStandalone() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// GetSqliteDBStandalone returns a connection to a SQLite database.
// If path is empty, uses an in-memory database.
func GetSqliteDBStandalone(path string) (*gorm.DB, error) {
	dsn := "file::memory:?cache=shared"
	if path != "" {
		dsn = path
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	for _, pragma := range sqlitePragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}

	return db, nil
}

// DumpMemoryDBToDisk vacuums the in-memory database to a disk file.
func DumpMemoryDBToDisk(db *gorm.DB, sqliteFilePath string) error {
	if sqliteFilePath == "" {
		return fmt.Errorf("sqlite file path not set")
	}

	// remove existing file if it exists
	if exists, err := os.Stat(sqliteFilePath); err == nil && exists != nil {
		if err := os.Remove(sqliteFilePath); err != nil {
			return fmt.Errorf("error removing existing DB file: %s", err)
		}
	}

	err := db.Exec("VACUUM INTO 'file:" + sqliteFilePath + "';").Error
	if err != nil {
		return fmt.Errorf("error dumping memory DB to disk: %s", err)
	}

	return nil
}
