package dicttools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

// ─── MeaningAddTool ─────────────────────────────────────────────────────────

// MeaningAddTool handles the meaning_add MCP tool.
type MeaningAddTool struct {
	store *dictionary.Store
}

// NewMeaningAddTool creates a MeaningAddTool.
func NewMeaningAddTool(store *dictionary.Store) *MeaningAddTool {
	return &MeaningAddTool{store: store}
}

// Definition returns the MCP tool definition for meaning_add.
func (t *MeaningAddTool) Definition() mcp.Tool {
	return mcp.NewTool("meaning_add",
		mcp.WithDescription("Add a meaning to a kanji. Appended last unless a position is given."),
		mcp.WithNumber("kanji_id", mcp.Required(), mcp.Description("Kanji id")),
		mcp.WithString("meaning_text", mcp.Required(), mcp.Description("The meaning, e.g. 'sun'")),
		mcp.WithString("additional_info", mcp.Description("Usage note or example")),
		mcp.WithNumber("position", mcp.Description("0-based position to insert at")),
	)
}

// Handle processes the meaning_add tool call.
func (t *MeaningAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kanjiID, errRes := requireID(req, "kanji_id")
	if errRes != nil {
		return errRes, nil
	}
	m, err := t.store.AddMeaning(ctx, kanjiID, dictionary.AddMeaningParams{
		MeaningText:    req.GetString("meaning_text", ""),
		AdditionalInfo: optString(req, "additional_info"),
		Position:       optInt(req, "position"),
	})
	if err != nil {
		return errorResult("meaning_add", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Meaning %q added (id %d, position %d)", m.MeaningText, m.ID, m.DisplayOrder)), nil
}

// ─── MeaningUpdateTool ──────────────────────────────────────────────────────

// MeaningUpdateTool handles the meaning_update MCP tool.
type MeaningUpdateTool struct {
	store *dictionary.Store
}

// NewMeaningUpdateTool creates a MeaningUpdateTool.
func NewMeaningUpdateTool(store *dictionary.Store) *MeaningUpdateTool {
	return &MeaningUpdateTool{store: store}
}

// Definition returns the MCP tool definition for meaning_update.
func (t *MeaningUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("meaning_update",
		mcp.WithDescription("Edit a meaning. Only provided fields change; an empty additional_info clears it."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Meaning id")),
		mcp.WithString("meaning_text", mcp.Description("New meaning text")),
		mcp.WithString("additional_info", mcp.Description("New additional info")),
	)
}

// Handle processes the meaning_update tool call.
func (t *MeaningUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if !hasAnyArg(req, "meaning_text", "additional_info") {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	m, err := t.store.UpdateMeaning(ctx, id, dictionary.UpdateMeaningParams{
		MeaningText:    optString(req, "meaning_text"),
		AdditionalInfo: optString(req, "additional_info"),
	})
	if err != nil {
		return errorResult("meaning_update", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Meaning %d updated: %q", m.ID, m.MeaningText)), nil
}

// ─── MeaningListTool ────────────────────────────────────────────────────────

// MeaningListTool handles the meaning_list MCP tool.
type MeaningListTool struct {
	store *dictionary.Store
}

// NewMeaningListTool creates a MeaningListTool.
func NewMeaningListTool(store *dictionary.Store) *MeaningListTool {
	return &MeaningListTool{store: store}
}

// Definition returns the MCP tool definition for meaning_list.
func (t *MeaningListTool) Definition() mcp.Tool {
	return mcp.NewTool("meaning_list",
		mcp.WithDescription(
			"List the meanings of a kanji with their ids. When reading grouping is on, also shows each "+
				"reading group with its member ids and the meanings not assigned to any group.",
		),
		mcp.WithNumber("kanji_id", mcp.Required(), mcp.Description("Kanji id")),
	)
}

// Handle processes the meaning_list tool call.
func (t *MeaningListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kanjiID, errRes := requireID(req, "kanji_id")
	if errRes != nil {
		return errRes, nil
	}
	meanings, err := t.store.ListMeanings(ctx, kanjiID)
	if err != nil {
		return errorResult("meaning_list", err), nil
	}
	enabled, err := t.store.GroupingEnabled(ctx, kanjiID)
	if err != nil {
		return errorResult("meaning_list", err), nil
	}

	var b strings.Builder
	if len(meanings) == 0 {
		b.WriteString("No meanings yet.\n")
	}
	for _, m := range meanings {
		fmt.Fprintf(&b, "%d. [%d] %s", m.DisplayOrder+1, m.ID, m.MeaningText)
		if m.AdditionalInfo != nil {
			fmt.Fprintf(&b, " (%s)", *m.AdditionalInfo)
		}
		b.WriteString("\n")
	}
	if !enabled {
		return mcp.NewToolResultText(b.String()), nil
	}

	groups, err := t.store.ListReadingGroups(ctx, kanjiID)
	if err != nil {
		return errorResult("meaning_list", err), nil
	}
	members, err := t.store.ListGroupMembersByKanji(ctx, kanjiID)
	if err != nil {
		return errorResult("meaning_list", err), nil
	}
	unassigned, err := t.store.UnassignedMeanings(ctx, kanjiID)
	if err != nil {
		return errorResult("meaning_list", err), nil
	}

	b.WriteString("\nReading groups:\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "[%d] %s:", g.ID, g.ReadingText)
		for _, m := range members[g.ID] {
			fmt.Fprintf(&b, " %s (member %d)", m.MeaningText, m.ID)
		}
		b.WriteString("\n")
	}
	if len(unassigned) > 0 {
		fmt.Fprintf(&b, "Unassigned: %s\n", dictionary.FormatMeanings(unassigned))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── ReadingGroupAddTool ────────────────────────────────────────────────────

// ReadingGroupAddTool handles the reading_group_add MCP tool.
type ReadingGroupAddTool struct {
	store *dictionary.Store
}

// NewReadingGroupAddTool creates a ReadingGroupAddTool.
func NewReadingGroupAddTool(store *dictionary.Store) *ReadingGroupAddTool {
	return &ReadingGroupAddTool{store: store}
}

// Definition returns the MCP tool definition for reading_group_add.
func (t *ReadingGroupAddTool) Definition() mcp.Tool {
	return mcp.NewTool("reading_group_add",
		mcp.WithDescription(
			"Add a reading group to a kanji, e.g. 'ニチ・ジツ'. Adding the first group turns on grouped "+
				"display of the kanji's meanings.",
		),
		mcp.WithNumber("kanji_id", mcp.Required(), mcp.Description("Kanji id")),
		mcp.WithString("reading_text", mcp.Required(), mcp.Description("Reading(s) the group stands for")),
		mcp.WithNumber("position", mcp.Description("0-based position to insert at")),
	)
}

// Handle processes the reading_group_add tool call.
func (t *ReadingGroupAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kanjiID, errRes := requireID(req, "kanji_id")
	if errRes != nil {
		return errRes, nil
	}
	g, err := t.store.AddReadingGroup(ctx, kanjiID, req.GetString("reading_text", ""), optInt(req, "position"))
	if err != nil {
		return errorResult("reading_group_add", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reading group %q added (id %d)", g.ReadingText, g.ID)), nil
}

// ─── ReadingGroupUpdateTool ─────────────────────────────────────────────────

// ReadingGroupUpdateTool handles the reading_group_update MCP tool.
type ReadingGroupUpdateTool struct {
	store *dictionary.Store
}

// NewReadingGroupUpdateTool creates a ReadingGroupUpdateTool.
func NewReadingGroupUpdateTool(store *dictionary.Store) *ReadingGroupUpdateTool {
	return &ReadingGroupUpdateTool{store: store}
}

// Definition returns the MCP tool definition for reading_group_update.
func (t *ReadingGroupUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("reading_group_update",
		mcp.WithDescription("Rename a reading group."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Reading group id")),
		mcp.WithString("reading_text", mcp.Required(), mcp.Description("New reading text")),
	)
}

// Handle processes the reading_group_update tool call.
func (t *ReadingGroupUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	g, err := t.store.UpdateReadingGroup(ctx, id, req.GetString("reading_text", ""))
	if err != nil {
		return errorResult("reading_group_update", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reading group %d renamed to %q", g.ID, g.ReadingText)), nil
}

// ─── ReadingGroupAssignTool ─────────────────────────────────────────────────

// ReadingGroupAssignTool handles the reading_group_assign MCP tool.
type ReadingGroupAssignTool struct {
	store *dictionary.Store
}

// NewReadingGroupAssignTool creates a ReadingGroupAssignTool.
func NewReadingGroupAssignTool(store *dictionary.Store) *ReadingGroupAssignTool {
	return &ReadingGroupAssignTool{store: store}
}

// Definition returns the MCP tool definition for reading_group_assign.
func (t *ReadingGroupAssignTool) Definition() mcp.Tool {
	return mcp.NewTool("reading_group_assign",
		mcp.WithDescription(
			"Assign a meaning to a reading group, or take it out again with unassign=true. "+
				"Both must belong to the same kanji. Assigning twice is harmless.",
		),
		mcp.WithNumber("group_id", mcp.Required(), mcp.Description("Reading group id")),
		mcp.WithNumber("meaning_id", mcp.Required(), mcp.Description("Meaning id")),
		mcp.WithBoolean("unassign", mcp.Description("Remove the meaning from the group instead")),
	)
}

// Handle processes the reading_group_assign tool call.
func (t *ReadingGroupAssignTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, errRes := requireID(req, "group_id")
	if errRes != nil {
		return errRes, nil
	}
	meaningID, errRes := requireID(req, "meaning_id")
	if errRes != nil {
		return errRes, nil
	}

	if boolArg(req, "unassign", false) {
		if err := t.store.UnassignMeaning(ctx, groupID, meaningID); err != nil {
			return errorResult("reading_group_assign", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Meaning %d removed from reading group %d", meaningID, groupID)), nil
	}

	m, err := t.store.AssignMeaning(ctx, groupID, meaningID)
	if err != nil {
		return errorResult("reading_group_assign", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Meaning %q assigned to reading group %d (member %d)", m.MeaningText, groupID, m.ID)), nil
}

// ─── ReadingGroupingTool ────────────────────────────────────────────────────

// ReadingGroupingTool handles the reading_grouping MCP tool.
type ReadingGroupingTool struct {
	store *dictionary.Store
}

// NewReadingGroupingTool creates a ReadingGroupingTool.
func NewReadingGroupingTool(store *dictionary.Store) *ReadingGroupingTool {
	return &ReadingGroupingTool{store: store}
}

// Definition returns the MCP tool definition for reading_grouping.
func (t *ReadingGroupingTool) Definition() mcp.Tool {
	return mcp.NewTool("reading_grouping",
		mcp.WithDescription(
			"Manage grouped meaning display for a kanji. 'status' reports whether grouping is on, "+
				"'disable' removes every reading group (meanings stay), 'cleanup' removes groups with no meanings.",
		),
		mcp.WithNumber("kanji_id", mcp.Required(), mcp.Description("Kanji id")),
		mcp.WithString("action", mcp.Required(), mcp.Enum("status", "disable", "cleanup")),
	)
}

// Handle processes the reading_grouping tool call.
func (t *ReadingGroupingTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kanjiID, errRes := requireID(req, "kanji_id")
	if errRes != nil {
		return errRes, nil
	}

	switch action := req.GetString("action", ""); action {
	case "status":
		on, err := t.store.GroupingEnabled(ctx, kanjiID)
		if err != nil {
			return errorResult("reading_grouping", err), nil
		}
		if on {
			return mcp.NewToolResultText("Reading grouping is on."), nil
		}
		return mcp.NewToolResultText("Reading grouping is off."), nil
	case "disable":
		n, err := t.store.DisableGrouping(ctx, kanjiID)
		if err != nil {
			return errorResult("reading_grouping", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Reading grouping disabled: %d group(s) removed", n)), nil
	case "cleanup":
		n, err := t.store.DeleteEmptyGroups(ctx, kanjiID)
		if err != nil {
			return errorResult("reading_grouping", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Removed %d empty reading group(s)", n)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("'action' must be status, disable or cleanup, got %q", action)), nil
	}
}
