// Package handlers implements the authoring command surface. Each
// command takes string args off the wire, parses them, and drives the
// storage backend, export engine, and progression engine.
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/questmaster/studio/internal/dispatcher"
	"github.com/questmaster/studio/internal/export"
	"github.com/questmaster/studio/internal/geo"
	"github.com/questmaster/studio/internal/influx"
	"github.com/questmaster/studio/internal/logging"
	"github.com/questmaster/studio/internal/model/core"
	"github.com/questmaster/studio/internal/session"
	"github.com/questmaster/studio/internal/storage"
)

// Dependencies holds all dependencies needed by handlers.
type Dependencies struct {
	Backend    storage.Backend
	Exporter   *export.Engine
	LogManager *logging.SlogManager
	Influx     *influx.Manager // optional
}

// Service provides handler methods for processing authoring commands.
type Service struct {
	deps         Dependencies
	session      *session.Context
	writeLogFunc func(functionName, data, level string)
}

// NewService creates a new handler service.
func NewService(deps Dependencies, sess *session.Context) *Service {
	s := &Service{
		deps:    deps,
		session: sess,
	}
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

// Session returns the editing session context.
func (s *Service) Session() *session.Context {
	return s.session
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// recordEvent feeds the progression engine and, when InfluxDB is
// wired, records the command as an authoring event point.
func (s *Service) recordEvent(command, event string, questID core.QuestID) {
	score, _ := s.session.Engine().AddEvent(event)
	if s.deps.Influx != nil {
		if err := s.deps.Influx.WriteAuthoringEvent(context.Background(), command, uint(questID), score); err != nil {
			s.writeLog(command, fmt.Sprintf("Error writing authoring event: %v", err), "WARN")
		}
	}
}

// questIDArg resolves the quest id for a command: the first arg when
// present, otherwise the quest open in the session.
func (s *Service) questIDArg(args []string) (core.QuestID, error) {
	if len(args) > 0 && args[0] != "" {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid quest id %q: %w", args[0], err)
		}
		return core.QuestID(id), nil
	}
	if id, ok := s.session.ActiveQuest(); ok {
		return id, nil
	}
	return 0, fmt.Errorf("no quest id given and no quest open")
}

// parseFieldUpdate maps a wire-level field name and value to a typed
// update. Unknown field names are rejected with ErrInvalidField before
// the backend is touched.
func parseFieldUpdate(field, value string) (core.FieldUpdate, error) {
	switch field {
	case "title":
		return core.TitleUpdate{Title: value}, nil
	case "difficulty":
		return core.DifficultyUpdate{Difficulty: core.Difficulty(value)}, nil
	case "reward":
		reward, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid reward %q: %w", value, err)
		}
		return core.RewardUpdate{Reward: reward}, nil
	case "description":
		return core.DescriptionUpdate{Description: value}, nil
	case "deadline":
		return core.DeadlineUpdate{Deadline: value}, nil
	default:
		return nil, core.ErrInvalidField
	}
}

// CreateQuest inserts a new draft quest and opens it in the session.
func (s *Service) CreateQuest() (core.QuestID, error) {
	functionName := "quest:create"

	id, err := s.deps.Backend.CreateDraft()
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error creating draft: %v", err), "ERROR")
		return 0, err
	}

	s.session.SetActiveQuest(id)
	s.recordEvent(functionName, "create_quest", id)
	s.writeLog(functionName, fmt.Sprintf("Created draft quest %d", id), "INFO")
	return id, nil
}

// UpdateQuest applies one field update to a quest.
// Args: [questID, field, value].
func (s *Service) UpdateQuest(args []string) error {
	functionName := "quest:update"

	if len(args) < 3 {
		return fmt.Errorf("expected [id, field, value], got %d args", len(args))
	}
	id, err := s.questIDArg(args)
	if err != nil {
		return err
	}

	update, err := parseFieldUpdate(args[1], args[2])
	if err != nil {
		return err
	}

	if err := s.deps.Backend.ApplyUpdate(id, update); err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error updating quest %d: %v", id, err), "ERROR")
		return err
	}
	return nil
}

// GetQuest returns the quest's current field values as a snapshot map,
// or nil when the quest does not exist.
func (s *Service) GetQuest(args []string) (map[string]any, error) {
	id, err := s.questIDArg(args)
	if err != nil {
		return nil, err
	}

	quest, found, err := s.deps.Backend.GetQuest(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return export.Snapshot(quest), nil
}

// ListVersions returns the quest's version history, oldest first.
func (s *Service) ListVersions(args []string) ([]core.VersionSnapshot, error) {
	id, err := s.questIDArg(args)
	if err != nil {
		return nil, err
	}
	return s.deps.Backend.ListVersions(id)
}

// AddAnnotation appends a map annotation to a quest.
// Args: [questID, x, y, kind, label].
func (s *Service) AddAnnotation(args []string) (*core.Annotation, error) {
	functionName := "annotation:add"

	if len(args) < 5 {
		return nil, fmt.Errorf("expected [id, x, y, kind, label], got %d args", len(args))
	}
	id, err := s.questIDArg(args)
	if err != nil {
		return nil, err
	}

	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid x coordinate %q: %w", args[1], err)
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid y coordinate %q: %w", args[2], err)
	}

	annotation := &core.Annotation{
		QuestID: id,
		X:       x,
		Y:       y,
		Kind:    core.MarkerKind(args[3]),
		Label:   args[4],
	}

	if err := s.deps.Backend.AddAnnotation(annotation); err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error adding annotation to quest %d: %v", id, err), "ERROR")
		return nil, err
	}
	return annotation, nil
}

// AddRoute takes a free-hand route from the map editor and appends one
// route annotation per vertex, in drawing order.
// Args: [questID, routeJSON, label]; routeJSON is "[[x1,y1],[x2,y2],...]".
func (s *Service) AddRoute(args []string) ([]core.Annotation, error) {
	functionName := "annotation:route"

	if len(args) < 3 {
		return nil, fmt.Errorf("expected [id, route, label], got %d args", len(args))
	}
	id, err := s.questIDArg(args)
	if err != nil {
		return nil, err
	}

	route, err := geo.ParseRoute(args[1])
	if err != nil {
		return nil, err
	}

	seq := route.Coordinates()
	added := make([]core.Annotation, 0, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		annotation := &core.Annotation{
			QuestID: id,
			X:       xy.X,
			Y:       xy.Y,
			Kind:    core.MarkerRoute,
			Label:   args[2],
		}
		if err := s.deps.Backend.AddAnnotation(annotation); err != nil {
			s.writeLog(functionName, fmt.Sprintf("Error adding route to quest %d: %v", id, err), "ERROR")
			return nil, err
		}
		added = append(added, *annotation)
	}

	s.writeLog(functionName, fmt.Sprintf("Added %d-point route to quest %d", len(added), id), "INFO")
	return added, nil
}

// ListAnnotations returns the quest's annotations in insertion order.
func (s *Service) ListAnnotations(args []string) ([]core.Annotation, error) {
	id, err := s.questIDArg(args)
	if err != nil {
		return nil, err
	}
	return s.deps.Backend.ListAnnotations(id)
}

// SaveMap records a map editing session as complete, awarding the
// save_map event for the quest.
func (s *Service) SaveMap(args []string) error {
	id, err := s.questIDArg(args)
	if err != nil {
		return err
	}
	s.recordEvent("map:save", "save_map", id)
	return nil
}

// ExportHTML renders the quest as a parchment HTML document, writes it
// to the output directory, and records the export.
func (s *Service) ExportHTML(args []string) (string, error) {
	functionName := "export:html"

	id, err := s.questIDArg(args)
	if err != nil {
		return "", err
	}

	quest, found, err := s.deps.Backend.GetQuest(id)
	if err != nil {
		return "", err
	}
	if !found {
		return "", core.ErrQuestNotFound
	}

	annotations, err := s.deps.Backend.ListAnnotations(id)
	if err != nil {
		return "", err
	}

	outputPath, err := s.deps.Exporter.ExportHTML(quest, annotations)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error exporting quest %d: %v", id, err), "ERROR")
		return "", err
	}

	record := &core.ExportRecord{
		QuestID:    id,
		Format:     "html",
		OutputPath: outputPath,
		Snapshot:   export.Snapshot(quest),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.deps.Backend.RecordExport(record); err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error recording export for quest %d: %v", id, err), "WARN")
	}

	s.recordEvent(functionName, "export", id)
	s.writeLog(functionName, fmt.Sprintf("Exported quest %d to %s", id, outputPath), "INFO")
	return outputPath, nil
}

// ExportBundle writes the quest's full bundle (quest, versions,
// annotations) as JSON via the backend, when it supports it.
func (s *Service) ExportBundle(args []string) (string, error) {
	functionName := "export:bundle"

	id, err := s.questIDArg(args)
	if err != nil {
		return "", err
	}

	exporter, ok := s.deps.Backend.(storage.BundleExporter)
	if !ok {
		return "", fmt.Errorf("storage backend does not support bundle export")
	}

	outputPath, err := exporter.ExportBundle(id)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error exporting bundle for quest %d: %v", id, err), "ERROR")
		return "", err
	}

	record := &core.ExportRecord{
		QuestID:    id,
		Format:     "bundle",
		OutputPath: outputPath,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.deps.Backend.RecordExport(record); err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error recording export for quest %d: %v", id, err), "WARN")
	}

	s.recordEvent(functionName, "export", id)
	return outputPath, nil
}

// ListExports returns the quest's export history in insertion order.
func (s *Service) ListExports(args []string) ([]core.ExportRecord, error) {
	id, err := s.questIDArg(args)
	if err != nil {
		return nil, err
	}
	return s.deps.Backend.ListExports(id)
}

// ProgressEvent applies a named progression event and returns the
// updated score and tier. Unknown events score zero.
func (s *Service) ProgressEvent(args []string) (map[string]any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("expected [event], got no args")
	}

	score, tier := s.session.Engine().AddEvent(args[0])
	return map[string]any{
		"score": score,
		"tier":  tier,
	}, nil
}

// ProgressState returns the session's progression state: score, tier,
// progress percent toward the next tier, and the achievements log.
func (s *Service) ProgressState() map[string]any {
	engine := s.session.Engine()
	state := engine.State()
	return map[string]any{
		"score":        state.Score,
		"tier":         state.Tier,
		"progress":     engine.ProgressToNextTier(),
		"achievements": state.Achievements,
	}
}

// RegisterHandlers wires every authoring command into the dispatcher.
// Mutating commands are logged; reads are registered bare.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register("quest:create", func(e dispatcher.Event) (any, error) {
		return s.CreateQuest()
	}, dispatcher.Logged())

	d.Register("quest:update", func(e dispatcher.Event) (any, error) {
		if err := s.UpdateQuest(e.Args); err != nil {
			return nil, err
		}
		return "ok", nil
	}, dispatcher.Logged())

	d.Register("quest:get", func(e dispatcher.Event) (any, error) {
		return s.GetQuest(e.Args)
	})

	d.Register("quest:versions", func(e dispatcher.Event) (any, error) {
		return s.ListVersions(e.Args)
	})

	d.Register("annotation:add", func(e dispatcher.Event) (any, error) {
		return s.AddAnnotation(e.Args)
	}, dispatcher.Logged())

	d.Register("annotation:route", func(e dispatcher.Event) (any, error) {
		return s.AddRoute(e.Args)
	}, dispatcher.Logged())

	d.Register("annotations:list", func(e dispatcher.Event) (any, error) {
		return s.ListAnnotations(e.Args)
	})

	d.Register("map:save", func(e dispatcher.Event) (any, error) {
		if err := s.SaveMap(e.Args); err != nil {
			return nil, err
		}
		return "ok", nil
	}, dispatcher.Logged())

	d.Register("export:html", func(e dispatcher.Event) (any, error) {
		return s.ExportHTML(e.Args)
	}, dispatcher.Logged())

	d.Register("export:bundle", func(e dispatcher.Event) (any, error) {
		return s.ExportBundle(e.Args)
	}, dispatcher.Logged())

	d.Register("exports:list", func(e dispatcher.Event) (any, error) {
		return s.ListExports(e.Args)
	})

	d.Register("progress:event", func(e dispatcher.Event) (any, error) {
		return s.ProgressEvent(e.Args)
	})

	d.Register("progress:state", func(e dispatcher.Event) (any, error) {
		return s.ProgressState(), nil
	})
}
