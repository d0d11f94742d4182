// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it opens the dictionary store and injects
// it into the tools, prompts and resources that depend on it.
// No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/kanjidict/internal/config"
	"github.com/HendryAvila/kanjidict/internal/dictionary"
	"github.com/HendryAvila/kanjidict/internal/dicttools"
	"github.com/HendryAvila/kanjidict/internal/prompts"
	"github.com/HendryAvila/kanjidict/internal/resources"
)

// Version is set at build time via ldflags.
var Version = "dev"

// tool is the shape every dicttools handler shares.
type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function closes the dictionary database and must
// be called on shutdown (typically via defer). It is always non-nil.
func New(cfg config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := dictionary.New(dictionary.Config{
		DataDir:  cfg.Database.DataDir,
		FileName: cfg.Database.FileName,
		Logger:   logger,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("opening dictionary: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("dictionary close failed", "err", err)
		}
	}

	s := server.NewMCPServer(
		"kanjidict",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	for _, t := range dictionaryTools(store, cfg.Export.Dir) {
		s.AddTool(t.Definition(), t.Handle)
	}

	// --- Register prompts ---

	studyPrompt := prompts.NewStudyPrompt()
	s.AddPrompt(studyPrompt.Definition(), studyPrompt.Handle)

	overviewPrompt := prompts.NewOverviewPrompt()
	s.AddPrompt(overviewPrompt.Definition(), overviewPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.StatsResource(), resourceHandler.HandleStats)
	s.AddResource(resourceHandler.ReferenceTypesResource(), resourceHandler.HandleReferenceTypes)

	logger.Info("mcp server ready", "version", Version, "database", store.Path())
	return s, cleanup, nil
}

// noop is the cleanup returned when the store could not be opened.
func noop() {}

// dictionaryTools lists every MCP tool backed by the store.
func dictionaryTools(store *dictionary.Store, exportDir string) []tool {
	return []tool{
		// --- Kanji ---
		dicttools.NewKanjiCreateTool(store),
		dicttools.NewKanjiGetTool(store),
		dicttools.NewKanjiSearchTool(store),
		dicttools.NewKanjiUpdateTool(store),
		dicttools.NewKanjiUpdateFieldTool(store),

		// --- Meanings & reading groups ---
		dicttools.NewMeaningAddTool(store),
		dicttools.NewMeaningUpdateTool(store),
		dicttools.NewMeaningListTool(store),
		dicttools.NewReadingGroupAddTool(store),
		dicttools.NewReadingGroupUpdateTool(store),
		dicttools.NewReadingGroupAssignTool(store),
		dicttools.NewReadingGroupingTool(store),

		// --- Readings ---
		dicttools.NewReadingAddTool(store),
		dicttools.NewReadingUpdateTool(store),
		dicttools.NewReadingListTool(store),

		// --- Components ---
		dicttools.NewComponentCreateTool(store),
		dicttools.NewComponentGetTool(store),
		dicttools.NewComponentSearchTool(store),
		dicttools.NewComponentUpdateTool(store),
		dicttools.NewFormAddTool(store),
		dicttools.NewFormUpdateTool(store),
		dicttools.NewFormListTool(store),
		dicttools.NewOccurrenceAddTool(store),
		dicttools.NewOccurrenceUpdateTool(store),
		dicttools.NewOccurrenceListTool(store),
		dicttools.NewGroupingCreateTool(store),
		dicttools.NewGroupingUpdateTool(store),
		dicttools.NewGroupingListTool(store),
		dicttools.NewGroupingMemberTool(store),

		// --- Reference types ---
		dicttools.NewReferenceTypeListTool(store),
		dicttools.NewReferenceTypeCreateTool(store),
		dicttools.NewReferenceTypeUpdateTool(store),
		dicttools.NewKanjiClassifyTool(store),

		// --- Vocabulary ---
		dicttools.NewVocabCreateTool(store),
		dicttools.NewVocabGetTool(store),
		dicttools.NewVocabSearchTool(store),
		dicttools.NewVocabUpdateTool(store),
		dicttools.NewVocabLinkTool(store),

		// --- Ordering ---
		dicttools.NewReorderTool(store),
		dicttools.NewMoveTool(store),
		dicttools.NewDeleteTool(store),

		// --- Database ---
		dicttools.NewExportTool(store, exportDir),
		dicttools.NewImportTool(store),
		dicttools.NewSeedTool(store),
		dicttools.NewClearTool(store),
		dicttools.NewStatsTool(store),
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to use the dictionary.
func serverInstructions() string {
	return `You have access to kanjidict, a personal kanji and vocabulary study dictionary.

## WHAT IS IN IT

- Kanji with stroke counts, JLPT/Joyo/Kentei levels, notes and stroke-order images
- Meanings per kanji, optionally grouped under readings (reading groups)
- On and kun readings with okurigana and school level (小 中 高 外)
- Components (building blocks and the 214 Kangxi radicals), their variant forms,
  where they occur in kanji, and named groupings of those occurrences
- Classification types (六書) and position types (偏, 旁, 冠, ...)
- Vocabulary words linked to the kanji they are written with

## HOW TO WORK WITH IT

1. Look before you write: kanji_get, component_get and vocab_get show the current state.
2. Ids are stable; display positions are 0-based and always contiguous.
   Use dict_reorder (full list) or dict_move (one step) to change order,
   and dict_delete to remove any row. Never renumber rows by hand.
3. Update tools only change the fields you pass. An empty string clears a text field.
4. "Validation error: ..." means the input was wrong; fix it and retry.
   "Unexpected error: ..." means something failed on the server; report it.

## DATA SAFETY

- db_clear and db_import replace data. Suggest db_export first and ask before running them.
- db_seed only fills empty tables, so it is safe to run on an existing dictionary.
- Do not overwrite notes_personal without asking: it holds the user's own notes.`
}
