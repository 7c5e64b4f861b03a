package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/questmaster/studio/internal/progression"
)

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SqliteConfig holds SQLite storage backend settings. An empty Path
// selects an in-memory database with periodic disk dumps.
type SqliteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type   string
	Memory MemoryConfig
	Sqlite SqliteConfig
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./studiologs")
	viper.SetDefault("parchmentsDir", "./parchments")

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.memory.outputDir", "./parchments")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "./quest_studio.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "30s")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "queststudio")

	viper.SetDefault("api.serverUrl", "https://guild.example.com")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.studioTag", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "queststudio-metrics")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
	viper.SetDefault("otel.batchTimeout", "5s")

	defaults := progression.DefaultConfig()
	tiers := make([]map[string]any, 0, len(defaults.Tiers))
	for _, t := range defaults.Tiers {
		tiers = append(tiers, map[string]any{"name": t.Name, "threshold": t.Threshold})
	}
	viper.SetDefault("progression.tiers", tiers)
	viper.SetDefault("progression.events", defaults.Events)

	viper.SetConfigName("queststudio.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Storage returns the storage backend configuration.
func Storage() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		Sqlite: SqliteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// Progression returns the tier ladder and event score table. Falls
// back to the stock configuration if the config file carries a shape
// viper can't unmarshal.
func Progression() progression.Config {
	cfg := progression.Config{}
	if err := viper.UnmarshalKey("progression.tiers", &cfg.Tiers); err != nil || len(cfg.Tiers) == 0 {
		return progression.DefaultConfig()
	}
	if err := viper.UnmarshalKey("progression.events", &cfg.Events); err != nil || len(cfg.Events) == 0 {
		cfg.Events = progression.DefaultConfig().Events
	}
	return cfg
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
