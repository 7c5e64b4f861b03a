package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/questmaster/studio/internal/geo"
	"github.com/questmaster/studio/internal/model/core"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// DefaultTemplate is the stock parchment layout.
const DefaultTemplate = "guild_contract.html.tmpl"

// Engine renders quest snapshots through the embedded parchment
// templates and writes the results under the output directory.
type Engine struct {
	tmpl      *template.Template
	outputDir string
}

// NewEngine parses the embedded templates. outputDir is created lazily
// on first export.
func NewEngine(outputDir string) (*Engine, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Engine{
		tmpl:      tmpl,
		outputDir: outputDir,
	}, nil
}

// Render substitutes the quest snapshot into the named template and
// returns the HTML. The annotation overlay, if any, is embedded as WKT.
func (e *Engine) Render(q core.Quest, annotations []core.Annotation, templateName string) (string, error) {
	data := map[string]any{
		"Quest":      Snapshot(q),
		"Now":        time.Now(),
		"OverlayWKT": geo.OverlayWKT(annotations),
	}

	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, templateName, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", templateName, err)
	}
	return buf.String(), nil
}

// ExportHTML renders the quest and writes the document to the output
// directory, returning the written path.
func (e *Engine) ExportHTML(q core.Quest, annotations []core.Annotation) (string, error) {
	html, err := e.Render(q, annotations, DefaultTemplate)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := e.DefaultOutputPath(q.ID, "html")
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return outputPath, nil
}

// DefaultOutputPath builds the conventional "{id}_{timestamp}.{ext}"
// path under the output directory.
func (e *Engine) DefaultOutputPath(id core.QuestID, ext string) string {
	ts := time.Now().Format("20060102_150405")
	return filepath.Join(e.outputDir, fmt.Sprintf("%d_%s.%s", uint(id), ts, ext))
}

// BatchRender renders n synthetic quests through the default template
// and returns the HTML results. This is the stress path used to gauge
// render throughput before a mass parchment run.
func (e *Engine) BatchRender(n int) ([]string, error) {
	base := core.Quest{
		Title:       "Test Quest",
		Difficulty:  core.DifficultyMedium,
		Reward:      100,
		Description: strings.Repeat("Lorem ipsum ", 20),
		Deadline:    "2025-12-31 23:59",
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	results := make([]string, 0, n)
	for i := 0; i < n; i++ {
		q := base
		q.ID = core.QuestID(i + 1)
		html, err := e.Render(q, nil, DefaultTemplate)
		if err != nil {
			return nil, err
		}
		results = append(results, html)
	}
	return results, nil
}
