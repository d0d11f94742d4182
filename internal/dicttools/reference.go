package dicttools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

// Reference tools serve both whole-table lists: classification types
// (六書 categories) and position types (偏, 旁, 冠, ...).

const (
	refClassification = "classification"
	refPosition       = "position"
)

func refTypeOption() mcp.ToolOption {
	return mcp.WithString("type",
		mcp.Required(),
		mcp.Enum(refClassification, refPosition),
		mcp.Description("Which reference list: classification types or position types"),
	)
}

// refLine renders one reference row for text output.
func refLine(id int64, name string, ja, en *string, order int) string {
	line := fmt.Sprintf("%d. [%d] %s", order+1, id, name)
	if ja != nil {
		line += " " + *ja
	}
	if en != nil {
		line += " (" + *en + ")"
	}
	return line
}

// ─── ReferenceTypeListTool ──────────────────────────────────────────────────

// ReferenceTypeListTool handles the reference_type_list MCP tool.
type ReferenceTypeListTool struct {
	store *dictionary.Store
}

// NewReferenceTypeListTool creates a ReferenceTypeListTool.
func NewReferenceTypeListTool(store *dictionary.Store) *ReferenceTypeListTool {
	return &ReferenceTypeListTool{store: store}
}

// Definition returns the MCP tool definition for reference_type_list.
func (t *ReferenceTypeListTool) Definition() mcp.Tool {
	return mcp.NewTool("reference_type_list",
		mcp.WithDescription("List classification types or position types in display order, with their ids."),
		refTypeOption(),
	)
}

// Handle processes the reference_type_list tool call.
func (t *ReferenceTypeListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var lines []string
	switch kind := req.GetString("type", ""); kind {
	case refClassification:
		types, err := t.store.ListClassificationTypes(ctx)
		if err != nil {
			return errorResult("reference_type_list", err), nil
		}
		for _, ct := range types {
			lines = append(lines, refLine(ct.ID, ct.TypeName, ct.NameJapanese, ct.NameEnglish, ct.DisplayOrder))
		}
	case refPosition:
		types, err := t.store.ListPositionTypes(ctx)
		if err != nil {
			return errorResult("reference_type_list", err), nil
		}
		for _, pt := range types {
			lines = append(lines, refLine(pt.ID, pt.PositionName, pt.NameJapanese, pt.NameEnglish, pt.DisplayOrder))
		}
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown type %q: use classification or position", kind)), nil
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("No entries. Run db_seed to load the standard lists."), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n") + "\n"), nil
}

// ─── ReferenceTypeCreateTool ────────────────────────────────────────────────

// ReferenceTypeCreateTool handles the reference_type_create MCP tool.
type ReferenceTypeCreateTool struct {
	store *dictionary.Store
}

// NewReferenceTypeCreateTool creates a ReferenceTypeCreateTool.
func NewReferenceTypeCreateTool(store *dictionary.Store) *ReferenceTypeCreateTool {
	return &ReferenceTypeCreateTool{store: store}
}

// Definition returns the MCP tool definition for reference_type_create.
func (t *ReferenceTypeCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("reference_type_create",
		mcp.WithDescription("Add a classification type or position type. The name must be unique within its list."),
		refTypeOption(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Unique key, e.g. 'phono_semantic' or 'hen'")),
		mcp.WithString("name_japanese", mcp.Description("Japanese name, e.g. 形声")),
		mcp.WithString("name_english", mcp.Description("English name")),
		mcp.WithString("description", mcp.Description("Long description")),
		mcp.WithString("description_short", mcp.Description("One-line description")),
		mcp.WithNumber("position", mcp.Description("0-based position to insert at")),
	)
}

// Handle processes the reference_type_create tool call.
func (t *ReferenceTypeCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := dictionary.ReferenceTypeParams{
		Name:             req.GetString("name", ""),
		NameJapanese:     optString(req, "name_japanese"),
		NameEnglish:      optString(req, "name_english"),
		Description:      optString(req, "description"),
		DescriptionShort: optString(req, "description_short"),
		Position:         optInt(req, "position"),
	}
	switch kind := req.GetString("type", ""); kind {
	case refClassification:
		ct, err := t.store.CreateClassificationType(ctx, p)
		if err != nil {
			return errorResult("reference_type_create", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Classification type %s created (id %d)", ct.TypeName, ct.ID)), nil
	case refPosition:
		pt, err := t.store.CreatePositionType(ctx, p)
		if err != nil {
			return errorResult("reference_type_create", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Position type %s created (id %d)", pt.PositionName, pt.ID)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown type %q: use classification or position", kind)), nil
	}
}

// ─── ReferenceTypeUpdateTool ────────────────────────────────────────────────

// ReferenceTypeUpdateTool handles the reference_type_update MCP tool.
type ReferenceTypeUpdateTool struct {
	store *dictionary.Store
}

// NewReferenceTypeUpdateTool creates a ReferenceTypeUpdateTool.
func NewReferenceTypeUpdateTool(store *dictionary.Store) *ReferenceTypeUpdateTool {
	return &ReferenceTypeUpdateTool{store: store}
}

// Definition returns the MCP tool definition for reference_type_update.
func (t *ReferenceTypeUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("reference_type_update",
		mcp.WithDescription("Edit a classification type or position type. Only provided fields change."),
		refTypeOption(),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Type id")),
		mcp.WithString("name", mcp.Description("New unique key")),
		mcp.WithString("name_japanese", mcp.Description("Japanese name; empty clears")),
		mcp.WithString("name_english", mcp.Description("English name; empty clears")),
		mcp.WithString("description", mcp.Description("Long description; empty clears")),
		mcp.WithString("description_short", mcp.Description("One-line description; empty clears")),
	)
}

// Handle processes the reference_type_update tool call.
func (t *ReferenceTypeUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if !hasAnyArg(req, "name", "name_japanese", "name_english", "description", "description_short") {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	p := dictionary.UpdateReferenceTypeParams{
		Name:             optString(req, "name"),
		NameJapanese:     optString(req, "name_japanese"),
		NameEnglish:      optString(req, "name_english"),
		Description:      optString(req, "description"),
		DescriptionShort: optString(req, "description_short"),
	}
	switch kind := req.GetString("type", ""); kind {
	case refClassification:
		ct, err := t.store.UpdateClassificationType(ctx, id, p)
		if err != nil {
			return errorResult("reference_type_update", err), nil
		}
		return jsonResult("reference_type_update", fmt.Sprintf("Classification type %d updated", ct.ID), ct)
	case refPosition:
		pt, err := t.store.UpdatePositionType(ctx, id, p)
		if err != nil {
			return errorResult("reference_type_update", err), nil
		}
		return jsonResult("reference_type_update", fmt.Sprintf("Position type %d updated", pt.ID), pt)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown type %q: use classification or position", kind)), nil
	}
}

// ─── KanjiClassifyTool ──────────────────────────────────────────────────────

// KanjiClassifyTool handles the kanji_classify MCP tool.
type KanjiClassifyTool struct {
	store *dictionary.Store
}

// NewKanjiClassifyTool creates a KanjiClassifyTool.
func NewKanjiClassifyTool(store *dictionary.Store) *KanjiClassifyTool {
	return &KanjiClassifyTool{store: store}
}

// Definition returns the MCP tool definition for kanji_classify.
func (t *KanjiClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("kanji_classify",
		mcp.WithDescription(
			"Tag a kanji with a classification type, by id or by name. "+
				"A kanji may carry several; the first one is its primary classification. "+
				"Without a type the current classifications are listed."),
		mcp.WithNumber("kanji_id", mcp.Required(), mcp.Description("Kanji id")),
		mcp.WithNumber("classification_type_id", mcp.Description("Classification type id")),
		mcp.WithString("type_name", mcp.Description("Classification type name, e.g. phono_semantic")),
		mcp.WithNumber("position", mcp.Description("0-based position to insert at")),
	)
}

// Handle processes the kanji_classify tool call.
func (t *KanjiClassifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kanjiID, errRes := requireID(req, "kanji_id")
	if errRes != nil {
		return errRes, nil
	}

	typeID := idArg(req, "classification_type_id")
	if name := req.GetString("type_name", ""); typeID == 0 && name != "" {
		ct, err := t.store.GetClassificationTypeByName(ctx, name)
		if err != nil {
			return errorResult("kanji_classify", err), nil
		}
		typeID = ct.ID
	}
	if typeID > 0 {
		if _, err := t.store.AddKanjiClassification(ctx, kanjiID, typeID, optInt(req, "position")); err != nil {
			return errorResult("kanji_classify", err), nil
		}
	}

	list, err := t.store.ListKanjiClassifications(ctx, kanjiID)
	if err != nil {
		return errorResult("kanji_classify", err), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No classifications."), nil
	}
	var b strings.Builder
	for i, kc := range list {
		fmt.Fprintf(&b, "%s\n", refLine(kc.ID, kc.TypeName, kc.NameJapanese, kc.NameEnglish, i))
	}
	return mcp.NewToolResultText(b.String()), nil
}
