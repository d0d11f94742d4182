package dicttools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

func kindOption() mcp.ToolOption {
	return mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("'on' for on'yomi, 'kun' for kun'yomi"),
		mcp.Enum(string(dictionary.OnReading), string(dictionary.KunReading)),
	)
}

// ─── ReadingAddTool ─────────────────────────────────────────────────────────

// ReadingAddTool handles the reading_add MCP tool.
type ReadingAddTool struct {
	store *dictionary.Store
}

// NewReadingAddTool creates a ReadingAddTool.
func NewReadingAddTool(store *dictionary.Store) *ReadingAddTool {
	return &ReadingAddTool{store: store}
}

// Definition returns the MCP tool definition for reading_add.
func (t *ReadingAddTool) Definition() mcp.Tool {
	return mcp.NewTool("reading_add",
		mcp.WithDescription("Add an on or kun reading to a kanji. Kun readings may carry okurigana."),
		kindOption(),
		mcp.WithNumber("kanji_id", mcp.Required(), mcp.Description("Kanji id")),
		mcp.WithString("reading", mcp.Required(), mcp.Description("The reading in kana, e.g. ニチ or ひ")),
		mcp.WithString("okurigana", mcp.Description("Okurigana of a kun reading, e.g. い for たか.い")),
		mcp.WithString("reading_level",
			mcp.Description("School level the reading is taught at (default 小)"),
			mcp.Enum(dictionary.ReadingLevels...),
		),
		mcp.WithNumber("position", mcp.Description("0-based position to insert at")),
	)
}

// Handle processes the reading_add tool call.
func (t *ReadingAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := dictionary.ParseReadingKind(req.GetString("kind", ""))
	if err != nil {
		return errorResult("reading_add", err), nil
	}
	kanjiID, errRes := requireID(req, "kanji_id")
	if errRes != nil {
		return errRes, nil
	}
	r, err := t.store.AddReading(ctx, kind, kanjiID, dictionary.AddReadingParams{
		Reading:      req.GetString("reading", ""),
		Okurigana:    optString(req, "okurigana"),
		ReadingLevel: req.GetString("reading_level", ""),
		Position:     optInt(req, "position"),
	})
	if err != nil {
		return errorResult("reading_add", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s reading %s added (id %d, level %s)", kind, r.Full(), r.ID, r.ReadingLevel)), nil
}

// ─── ReadingUpdateTool ──────────────────────────────────────────────────────

// ReadingUpdateTool handles the reading_update MCP tool.
type ReadingUpdateTool struct {
	store *dictionary.Store
}

// NewReadingUpdateTool creates a ReadingUpdateTool.
func NewReadingUpdateTool(store *dictionary.Store) *ReadingUpdateTool {
	return &ReadingUpdateTool{store: store}
}

// Definition returns the MCP tool definition for reading_update.
func (t *ReadingUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("reading_update",
		mcp.WithDescription("Edit an on or kun reading. Only provided fields change."),
		kindOption(),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Reading id")),
		mcp.WithString("reading", mcp.Description("New reading")),
		mcp.WithString("okurigana", mcp.Description("New okurigana (kun only); empty clears")),
		mcp.WithString("reading_level", mcp.Description("New level"), mcp.Enum(dictionary.ReadingLevels...)),
	)
}

// Handle processes the reading_update tool call.
func (t *ReadingUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := dictionary.ParseReadingKind(req.GetString("kind", ""))
	if err != nil {
		return errorResult("reading_update", err), nil
	}
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if !hasAnyArg(req, "reading", "okurigana", "reading_level") {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	r, err := t.store.UpdateReading(ctx, kind, id, dictionary.UpdateReadingParams{
		Reading:      optString(req, "reading"),
		Okurigana:    optString(req, "okurigana"),
		ReadingLevel: optString(req, "reading_level"),
	})
	if err != nil {
		return errorResult("reading_update", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s reading %d updated: %s (%s)", kind, r.ID, r.Full(), r.ReadingLevel)), nil
}

// ─── ReadingListTool ────────────────────────────────────────────────────────

// ReadingListTool handles the reading_list MCP tool.
type ReadingListTool struct {
	store *dictionary.Store
}

// NewReadingListTool creates a ReadingListTool.
func NewReadingListTool(store *dictionary.Store) *ReadingListTool {
	return &ReadingListTool{store: store}
}

// Definition returns the MCP tool definition for reading_list.
func (t *ReadingListTool) Definition() mcp.Tool {
	return mcp.NewTool("reading_list",
		mcp.WithDescription("List the readings of a kanji with their ids, on readings first."),
		mcp.WithNumber("kanji_id", mcp.Required(), mcp.Description("Kanji id")),
	)
}

// Handle processes the reading_list tool call.
func (t *ReadingListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kanjiID, errRes := requireID(req, "kanji_id")
	if errRes != nil {
		return errRes, nil
	}

	var b strings.Builder
	for _, kind := range []dictionary.ReadingKind{dictionary.OnReading, dictionary.KunReading} {
		rs, err := t.store.ListReadings(ctx, kind, kanjiID)
		if err != nil {
			return errorResult("reading_list", err), nil
		}
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(string(kind)))
		if len(rs) == 0 {
			b.WriteString("  (none)\n")
		}
		for _, r := range rs {
			fmt.Fprintf(&b, "  [%d] %s %s\n", r.ID, r.Full(), r.ReadingLevel)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
