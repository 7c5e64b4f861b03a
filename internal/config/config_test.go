package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "queststudio.cfg.json"), []byte(content), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"parchmentsDir": "/tmp/parchments",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "/tmp/parchments", viper.GetString("parchmentsDir"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./studiologs", viper.GetString("logsDir"))
	assert.Equal(t, "./parchments", viper.GetString("parchmentsDir"))
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))
	assert.Equal(t, "./parchments", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, false, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "./quest_studio.db", viper.GetString("storage.sqlite.dumpPath"))
	assert.Equal(t, "30s", viper.GetString("storage.sqlite.dumpInterval"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "queststudio", viper.GetString("db.database"))
	assert.Equal(t, "https://guild.example.com", viper.GetString("api.serverUrl"))
	assert.Equal(t, "", viper.GetString("api.apiKey"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "8086", viper.GetString("influx.port"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "", viper.GetString("otel.endpoint"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetDuration(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testDuration", "5s")
	assert.Equal(t, 5*time.Second, GetDuration("testDuration"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestStorage_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)
	require.NoError(t, Load(dir))

	cfg := Storage()
	assert.Equal(t, "sqlite", cfg.Type)
	assert.Equal(t, "./parchments", cfg.Memory.OutputDir)
	assert.Equal(t, false, cfg.Memory.CompressOutput)
	assert.Equal(t, "", cfg.Sqlite.Path)
	assert.Equal(t, 30*time.Second, cfg.Sqlite.DumpInterval)
}

func TestStorage_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "memory",
			"memory": { "outputDir": "/tmp/out", "compressOutput": true },
			"sqlite": { "dumpInterval": "10m" }
		}
	}`)
	require.NoError(t, Load(dir))

	cfg := Storage()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "/tmp/out", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, cfg.Sqlite.DumpInterval)
}

func TestProgression_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)
	require.NoError(t, Load(dir))

	cfg := Progression()
	require.Len(t, cfg.Tiers, 3)
	assert.Equal(t, "Apprentice", cfg.Tiers[0].Name)
	assert.Equal(t, 0, cfg.Tiers[0].Threshold)
	assert.Equal(t, 3, cfg.Events["create_quest"])
	assert.Equal(t, 20, cfg.Events["boss_fight"])
}

func TestProgression_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"progression": {
			"tiers": [
				{ "name": "Novice", "threshold": 0 },
				{ "name": "Scribe", "threshold": 25 }
			],
			"events": { "create_quest": 7 }
		}
	}`)
	require.NoError(t, Load(dir))

	cfg := Progression()
	require.Len(t, cfg.Tiers, 2)
	assert.Equal(t, "Scribe", cfg.Tiers[1].Name)
	assert.Equal(t, 25, cfg.Tiers[1].Threshold)
	assert.Equal(t, 7, cfg.Events["create_quest"])
}
