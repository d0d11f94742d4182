package dicttools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

// entityNames lists the entities for the schema enums.
func entityNames(list []dictionary.Entity) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = string(e)
	}
	return out
}

// ─── ReorderTool ────────────────────────────────────────────────────────────

// ReorderTool handles the dict_reorder MCP tool.
type ReorderTool struct {
	store *dictionary.Store
}

// NewReorderTool creates a ReorderTool.
func NewReorderTool(store *dictionary.Store) *ReorderTool {
	return &ReorderTool{store: store}
}

// Definition returns the MCP tool definition for dict_reorder.
func (t *ReorderTool) Definition() mcp.Tool {
	return mcp.NewTool("dict_reorder",
		mcp.WithDescription(
			"Set the display order of one sibling list, e.g. the meanings of a kanji or the forms of a component. "+
				"ids must list every current sibling exactly once, in the new order. "+
				"parent_id is the owning row (kanji, component, reading group, grouping or word); "+
				"it is ignored for classification_type and position_type."),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Enum(entityNames(dictionary.OrderedEntities())...),
			mcp.Description("Which sibling list"),
		),
		mcp.WithNumber("parent_id", mcp.Description("Owning row id")),
		mcp.WithArray("ids",
			mcp.Required(),
			mcp.Description("Every sibling id in the new order"),
			mcp.Items(map[string]any{"type": "number"}),
		),
	)
}

// Handle processes the dict_reorder tool call.
func (t *ReorderTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := dictionary.ParseEntity(req.GetString("entity", ""))
	if err != nil {
		return errorResult("dict_reorder", err), nil
	}
	ids, err := idsArg(req, "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.Reorder(ctx, e, idArg(req, "parent_id"), ids); err != nil {
		return errorResult("dict_reorder", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reordered %d %s rows", len(ids), e)), nil
}

// ─── MoveTool ───────────────────────────────────────────────────────────────

// MoveTool handles the dict_move MCP tool.
type MoveTool struct {
	store *dictionary.Store
}

// NewMoveTool creates a MoveTool.
func NewMoveTool(store *dictionary.Store) *MoveTool {
	return &MoveTool{store: store}
}

// Definition returns the MCP tool definition for dict_move.
func (t *MoveTool) Definition() mcp.Tool {
	return mcp.NewTool("dict_move",
		mcp.WithDescription("Move one row up or down among its siblings. Moving past either end does nothing."),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Enum(entityNames(dictionary.OrderedEntities())...),
			mcp.Description("Kind of row"),
		),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Row id")),
		mcp.WithString("direction",
			mcp.Required(),
			mcp.Enum(string(dictionary.Up), string(dictionary.Down)),
			mcp.Description("Where to move it"),
		),
	)
}

// Handle processes the dict_move tool call.
func (t *MoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := dictionary.ParseEntity(req.GetString("entity", ""))
	if err != nil {
		return errorResult("dict_move", err), nil
	}
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	dir, err := dictionary.ParseDirection(req.GetString("direction", ""))
	if err != nil {
		return errorResult("dict_move", err), nil
	}
	if err := t.store.Move(ctx, e, id, dir); err != nil {
		return errorResult("dict_move", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved %s %d %s", e, id, dir)), nil
}

// ─── DeleteTool ─────────────────────────────────────────────────────────────

// DeleteTool handles the dict_delete MCP tool.
type DeleteTool struct {
	store *dictionary.Store
}

// NewDeleteTool creates a DeleteTool.
func NewDeleteTool(store *dictionary.Store) *DeleteTool {
	return &DeleteTool{store: store}
}

// Definition returns the MCP tool definition for dict_delete.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("dict_delete",
		mcp.WithDescription(
			"Delete any row by entity and id. Dependent rows go with it (deleting a kanji removes its "+
				"meanings, readings and occurrences) and the remaining siblings are renumbered."),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Enum(entityNames(dictionary.Entities())...),
			mcp.Description("Kind of row"),
		),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Row id")),
	)
}

// Handle processes the dict_delete tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := dictionary.ParseEntity(req.GetString("entity", ""))
	if err != nil {
		return errorResult("dict_delete", err), nil
	}
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if err := t.store.Delete(ctx, e, id); err != nil {
		return errorResult("dict_delete", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %s %d", e, id)), nil
}
