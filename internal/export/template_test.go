package export

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questmaster/studio/internal/model/core"
)

func testQuest() core.Quest {
	return core.Quest{
		ID:          7,
		Title:       "Dragon Hunt",
		Difficulty:  core.DifficultyHard,
		Reward:      500,
		Description: "Slay the wyrm terrorizing the valley.",
		Deadline:    "2026-10-01 12:00",
		CreatedAt:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRender_SubstitutesQuestFields(t *testing.T) {
	e, err := NewEngine(t.TempDir())
	require.NoError(t, err)

	html, err := e.Render(testQuest(), nil, DefaultTemplate)
	require.NoError(t, err)

	assert.Contains(t, html, "Dragon Hunt")
	assert.Contains(t, html, "Hard")
	assert.Contains(t, html, "500 gold")
	assert.Contains(t, html, "2026-10-01 12:00")
	assert.NotContains(t, html, "Map markers", "no overlay section without annotations")
}

func TestRender_EmbedsOverlayWKT(t *testing.T) {
	e, err := NewEngine(t.TempDir())
	require.NoError(t, err)

	annotations := []core.Annotation{
		{X: 10, Y: 20, Kind: core.MarkerCity, Label: "Rivertown"},
		{X: 30, Y: 40, Kind: core.MarkerLair, Label: "Wyrm Cave"},
	}
	html, err := e.Render(testQuest(), annotations, DefaultTemplate)
	require.NoError(t, err)

	assert.Contains(t, html, "MULTIPOINT")
	assert.Contains(t, html, "10 20")
}

func TestRender_UnknownTemplate(t *testing.T) {
	e, err := NewEngine(t.TempDir())
	require.NoError(t, err)

	_, err = e.Render(testQuest(), nil, "no_such.tmpl")
	assert.Error(t, err)
}

func TestExportHTML_WritesDocument(t *testing.T) {
	dir := t.TempDir()
	e, err := NewEngine(dir)
	require.NoError(t, err)

	path, err := e.ExportHTML(testQuest(), nil)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Dragon Hunt")
	assert.True(t, strings.HasPrefix(path, dir))
	assert.True(t, strings.HasSuffix(path, ".html"))
	assert.Contains(t, path, "7_", "filename starts with the quest id")
}

func TestBatchRender_Count(t *testing.T) {
	e, err := NewEngine(t.TempDir())
	require.NoError(t, err)

	results, err := e.BatchRender(25)
	require.NoError(t, err)
	require.Len(t, results, 25)
	assert.Contains(t, results[0], "Test Quest")
}

func TestSnapshot_Flattens(t *testing.T) {
	snap := Snapshot(testQuest())

	assert.Equal(t, uint(7), snap["id"])
	assert.Equal(t, "Dragon Hunt", snap["title"])
	assert.Equal(t, "Hard", snap["difficulty"])
	assert.Equal(t, 500, snap["reward"])
	assert.Equal(t, "2026-09-01T10:00:00Z", snap["createdAt"])
}

func TestWriteBundle_Plain(t *testing.T) {
	dir := t.TempDir()

	bundle := BuildBundle(StudioVersion, testQuest(),
		[]core.VersionSnapshot{{Title: "New Quest", Difficulty: core.DifficultyEasy, Reward: 10}},
		[]core.Annotation{{X: 1, Y: 2, Kind: core.MarkerTavern, Label: "Inn"}})

	path, err := WriteBundle(dir, false, bundle)
	require.NoError(t, err)
	assert.Contains(t, path, "Dragon_Hunt_")
	assert.True(t, strings.HasSuffix(path, ".json"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Bundle
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, StudioVersion, decoded.StudioVersion)
	assert.Equal(t, "Dragon Hunt", decoded.Quest.Title)
	require.Len(t, decoded.Versions, 1)
	assert.Equal(t, "New Quest", decoded.Versions[0].Title)
	require.Len(t, decoded.Annotations, 1)
	assert.Equal(t, "tavern", decoded.Annotations[0].Kind)
}

func TestWriteBundle_Gzip(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteBundle(dir, true, BuildBundle(StudioVersion, testQuest(), nil, nil))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json.gz"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)

	var decoded Bundle
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Dragon Hunt", decoded.Quest.Title)
}
