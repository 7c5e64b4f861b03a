package export

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/questmaster/studio/internal/model/core"
)

// StudioVersion is stamped into exported bundles. It can be overridden
// at build time via ldflags.
var StudioVersion = "0.1.0"

// Bundle is the root JSON structure of a quest bundle export: the
// quest's current state plus its complete version history and
// annotation log.
type Bundle struct {
	StudioVersion string           `json:"studioVersion"`
	ExportedAt    string           `json:"exportedAt"`
	Quest         QuestJSON        `json:"quest"`
	Versions      []VersionJSON    `json:"versions"`
	Annotations   []AnnotationJSON `json:"annotations"`
}

// QuestJSON is the bundle form of a quest.
type QuestJSON struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Difficulty  string `json:"difficulty"`
	Reward      int    `json:"reward"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	CreatedAt   string `json:"createdAt"`
}

// VersionJSON is the bundle form of one version snapshot.
type VersionJSON struct {
	Title       string `json:"title"`
	Difficulty  string `json:"difficulty"`
	Reward      int    `json:"reward"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// AnnotationJSON is the bundle form of one map annotation.
type AnnotationJSON struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Kind  string  `json:"kind"`
	Label string  `json:"label"`
}

// BuildBundle assembles the export structure for a quest.
func BuildBundle(version string, q core.Quest, versions []core.VersionSnapshot, annotations []core.Annotation) Bundle {
	b := Bundle{
		StudioVersion: version,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Quest: QuestJSON{
			ID:          uint(q.ID),
			Title:       q.Title,
			Difficulty:  string(q.Difficulty),
			Reward:      q.Reward,
			Description: q.Description,
			Deadline:    q.Deadline,
			CreatedAt:   q.CreatedAt.UTC().Format(time.RFC3339),
		},
		Versions:    make([]VersionJSON, 0, len(versions)),
		Annotations: make([]AnnotationJSON, 0, len(annotations)),
	}

	for _, v := range versions {
		b.Versions = append(b.Versions, VersionJSON{
			Title:       v.Title,
			Difficulty:  string(v.Difficulty),
			Reward:      v.Reward,
			Description: v.Description,
			CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, a := range annotations {
		b.Annotations = append(b.Annotations, AnnotationJSON{
			X:     a.X,
			Y:     a.Y,
			Kind:  string(a.Kind),
			Label: a.Label,
		})
	}
	return b
}

// WriteBundle writes a quest bundle to outputDir, optionally gzipped,
// and returns the written path. Filenames follow
// "{title}_{timestamp}.json[.gz]" with whitespace and colons replaced.
func WriteBundle(outputDir string, compress bool, bundle Bundle) (string, error) {
	name := strings.ReplaceAll(bundle.Quest.Title, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	timestamp := time.Now().Format("20060102_150405")

	var filename string
	if compress {
		filename = fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", name, timestamp)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, filename)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create bundle file: %w", err)
	}
	defer file.Close()

	if compress {
		gz := gzip.NewWriter(file)
		defer gz.Close()
		if err := json.NewEncoder(gz).Encode(bundle); err != nil {
			return "", fmt.Errorf("failed to encode bundle: %w", err)
		}
	} else {
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		if err := enc.Encode(bundle); err != nil {
			return "", fmt.Errorf("failed to encode bundle: %w", err)
		}
	}

	return outputPath, nil
}
