package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/questmaster/studio/internal/api"
	"github.com/questmaster/studio/internal/config"
	"github.com/questmaster/studio/internal/model/core"
)

// runMaintenance executes one-shot maintenance subcommands and exits.
func runMaintenance(args []string) error {
	switch strings.ToLower(args[0]) {
	case "bundle":
		return exportBundles(args[1:])
	case "history":
		return printHistory(args[1:])
	case "render":
		return renderQuests(args[1:])
	case "batchrender":
		return batchRender(args[1:])
	case "upload":
		return uploadBundle(args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// exportBundles writes the full JSON bundle for each given quest id.
func exportBundles(questIDs []string) error {
	if len(questIDs) == 0 {
		return fmt.Errorf("no quest ids provided")
	}
	for _, questID := range questIDs {
		path, err := handlerService.ExportBundle([]string{questID})
		if err != nil {
			return fmt.Errorf("error exporting bundle for quest %s: %w", questID, err)
		}
		fmt.Println("Wrote bundle to", path)
	}
	return nil
}

// printHistory dumps the version history for each given quest id.
func printHistory(questIDs []string) error {
	if len(questIDs) == 0 {
		return fmt.Errorf("no quest ids provided")
	}
	for _, questID := range questIDs {
		versions, err := handlerService.ListVersions([]string{questID})
		if err != nil {
			return fmt.Errorf("error listing versions for quest %s: %w", questID, err)
		}
		fmt.Printf("Quest %s: %d versions\n", questID, len(versions))
		for i, v := range versions {
			fmt.Printf("  v%d: %q %s reward=%d %s\n",
				i+1, v.Title, v.Difficulty, v.Reward, v.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

// renderQuests exports each given quest as a parchment HTML document.
func renderQuests(questIDs []string) error {
	if len(questIDs) == 0 {
		return fmt.Errorf("no quest ids provided")
	}
	for _, questID := range questIDs {
		path, err := handlerService.ExportHTML([]string{questID})
		if err != nil {
			return fmt.Errorf("error rendering quest %s: %w", questID, err)
		}
		fmt.Println("Wrote parchment to", path)
	}
	return nil
}

// batchRender runs the synthetic render stress path.
func batchRender(args []string) error {
	n := 100
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid count %q: %w", args[0], err)
		}
		n = parsed
	}

	results, err := exportEngine.BatchRender(n)
	if err != nil {
		return fmt.Errorf("batch render failed: %w", err)
	}
	fmt.Printf("Rendered %d documents\n", len(results))
	return nil
}

// uploadBundle publishes an exported bundle to the guild frontend.
// Args: [questID, filePath].
func uploadBundle(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: upload <questID> <filePath>")
	}

	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quest id %q: %w", args[0], err)
	}

	quest, found, err := storageBackend.GetQuest(core.QuestID(id))
	if err != nil {
		return err
	}
	if !found {
		return core.ErrQuestNotFound
	}

	client := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		return fmt.Errorf("guild frontend not reachable: %w", err)
	}

	state := sessionCtx.Engine().State()
	meta := api.UploadMetadata{
		QuestTitle: quest.Title,
		Difficulty: string(quest.Difficulty),
		Reward:     quest.Reward,
		AuthorTier: state.Tier,
		StudioTag:  config.GetString("api.studioTag"),
	}

	if err := client.Upload(args[1], meta); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Println("Uploaded", args[1])
	return nil
}
