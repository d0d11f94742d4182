package dicttools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

// ─── ExportTool ─────────────────────────────────────────────────────────────

// ExportTool handles the db_export MCP tool.
type ExportTool struct {
	store      *dictionary.Store
	defaultDir string
}

// NewExportTool creates an ExportTool writing to defaultDir unless the
// caller names another directory.
func NewExportTool(store *dictionary.Store, defaultDir string) *ExportTool {
	return &ExportTool{store: store, defaultDir: defaultDir}
}

// Definition returns the MCP tool definition for db_export.
func (t *ExportTool) Definition() mcp.Tool {
	return mcp.NewTool("db_export",
		mcp.WithDescription("Write a snapshot of the whole dictionary to kanji-dictionary-YYYY-MM-DD-HH-MM.db."),
		mcp.WithString("dir", mcp.Description(fmt.Sprintf("Target directory (default %s)", t.defaultDir))),
	)
}

// Handle processes the db_export tool call.
func (t *ExportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := req.GetString("dir", t.defaultDir)
	path, err := t.store.Export(ctx, dir)
	if err != nil {
		return errorResult("db_export", err), nil
	}
	return mcp.NewToolResultText("Exported to " + path), nil
}

// ─── ImportTool ─────────────────────────────────────────────────────────────

// ImportTool handles the db_import MCP tool.
type ImportTool struct {
	store *dictionary.Store
}

// NewImportTool creates an ImportTool.
func NewImportTool(store *dictionary.Store) *ImportTool {
	return &ImportTool{store: store}
}

// Definition returns the MCP tool definition for db_import.
func (t *ImportTool) Definition() mcp.Tool {
	return mcp.NewTool("db_import",
		mcp.WithDescription(
			"Replace the whole dictionary with the contents of an exported .db file. "+
				"Older exports are upgraded on the way in. The current data is lost unless exported first."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the .db, .sqlite or .sqlite3 file")),
	)
}

// Handle processes the db_import tool call.
func (t *ImportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}
	if err := t.store.Import(ctx, path); err != nil {
		return errorResult("db_import", err), nil
	}
	st, err := t.store.Stats(ctx)
	if err != nil {
		return errorResult("db_import", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Imported %s: %d kanji, %d components, %d vocabulary",
		path, st.Kanji, st.Components, st.Vocabulary)), nil
}

// ─── SeedTool ───────────────────────────────────────────────────────────────

// SeedTool handles the db_seed MCP tool.
type SeedTool struct {
	store *dictionary.Store
}

// NewSeedTool creates a SeedTool.
func NewSeedTool(store *dictionary.Store) *SeedTool {
	return &SeedTool{store: store}
}

// Definition returns the MCP tool definition for db_seed.
func (t *SeedTool) Definition() mcp.Tool {
	return mcp.NewTool("db_seed",
		mcp.WithDescription("Load the built-in sample kanji, radicals, readings and vocabulary. Tables that already hold data are left alone."),
	)
}

// Handle processes the db_seed tool call.
func (t *SeedTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.store.Seed(ctx)
	if errors.Is(err, dictionary.ErrAlreadySeeded) {
		return mcp.NewToolResultText(res.Message()), nil
	}
	if err != nil {
		return errorResult("db_seed", err), nil
	}
	return mcp.NewToolResultText(res.Message()), nil
}

// ─── ClearTool ──────────────────────────────────────────────────────────────

// ClearTool handles the db_clear MCP tool.
type ClearTool struct {
	store *dictionary.Store
}

// NewClearTool creates a ClearTool.
func NewClearTool(store *dictionary.Store) *ClearTool {
	return &ClearTool{store: store}
}

// Definition returns the MCP tool definition for db_clear.
func (t *ClearTool) Definition() mcp.Tool {
	return mcp.NewTool("db_clear",
		mcp.WithDescription(
			"Delete every kanji, component and word. Classification and position types are kept. "+
				"Requires confirm=true."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
	)
}

// Handle processes the db_clear tool call.
func (t *ClearTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !boolArg(req, "confirm", false) {
		return mcp.NewToolResultError("refusing to clear the dictionary without confirm=true"), nil
	}
	if err := t.store.Clear(ctx); err != nil {
		return errorResult("db_clear", err), nil
	}
	return mcp.NewToolResultText("Dictionary cleared."), nil
}

// ─── StatsTool ──────────────────────────────────────────────────────────────

// StatsTool handles the dict_stats MCP tool.
type StatsTool struct {
	store *dictionary.Store
}

// NewStatsTool creates a StatsTool.
func NewStatsTool(store *dictionary.Store) *StatsTool {
	return &StatsTool{store: store}
}

// Definition returns the MCP tool definition for dict_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("dict_stats",
		mcp.WithDescription("Count the rows of every table and report the schema version."),
	)
}

// Handle processes the dict_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := t.store.Stats(ctx)
	if err != nil {
		return errorResult("dict_stats", err), nil
	}
	return mcp.NewToolResultText(st.String()), nil
}
