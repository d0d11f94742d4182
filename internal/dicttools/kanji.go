package dicttools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

// kanjiProperties are the optional kanji fields shared by create and update.
func kanjiProperties() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("stroke_count", mcp.Description("Number of strokes (1-64)")),
		mcp.WithString("short_meaning", mcp.Description("Short English gloss, e.g. 'sun, day'")),
		mcp.WithString("search_keywords", mcp.Description("Extra keywords matched by search (romaji, kana, synonyms)")),
		mcp.WithNumber("radical_id", mcp.Description("Component id of the kanji's radical")),
		mcp.WithString("jlpt_level", mcp.Description("JLPT level"), mcp.Enum(dictionary.JLPTLevels...)),
		mcp.WithString("joyo_level", mcp.Description("Joyo grade"), mcp.Enum(dictionary.JoyoLevels...)),
		mcp.WithString("kentei_level", mcp.Description("Kanji Kentei level: 10..3, pre2, 2, pre1, 1 (labels like '準2級' are accepted)")),
		mcp.WithString("stroke_diagram_image", mcp.Description("Stroke order diagram, base64-encoded")),
		mcp.WithString("stroke_gif_image", mcp.Description("Stroke order animation, base64-encoded")),
		mcp.WithString("notes_etymology", mcp.Description("Etymology notes")),
		mcp.WithString("notes_semantic", mcp.Description("Semantic analysis notes")),
		mcp.WithString("notes_education_mnemonics", mcp.Description("Mnemonics and teaching notes")),
		mcp.WithString("notes_personal", mcp.Description("Personal notes")),
		mcp.WithNumber("identifier", mcp.Description("Your own numbering, e.g. a textbook index")),
		mcp.WithNumber("radical_stroke_count", mcp.Description("Strokes outside the radical")),
	}
}

var kanjiUpdateKeys = []string{
	"character", "stroke_count", "short_meaning", "search_keywords", "radical_id",
	"jlpt_level", "joyo_level", "kentei_level", "stroke_diagram_image", "stroke_gif_image",
	"notes_etymology", "notes_semantic", "notes_education_mnemonics", "notes_personal",
	"identifier", "radical_stroke_count",
}

// ─── KanjiCreateTool ────────────────────────────────────────────────────────

// KanjiCreateTool handles the kanji_create MCP tool.
type KanjiCreateTool struct {
	store *dictionary.Store
}

// NewKanjiCreateTool creates a KanjiCreateTool with the given store.
func NewKanjiCreateTool(store *dictionary.Store) *KanjiCreateTool {
	return &KanjiCreateTool{store: store}
}

// Definition returns the MCP tool definition for kanji_create.
func (t *KanjiCreateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Add a kanji to the dictionary. The character must be a single character and not already present."),
		mcp.WithString("character",
			mcp.Required(),
			mcp.Description("The kanji itself, e.g. 日"),
		),
	}
	return mcp.NewTool("kanji_create", append(opts, kanjiProperties()...)...)
}

// Handle processes the kanji_create tool call.
func (t *KanjiCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	character := req.GetString("character", "")
	if strings.TrimSpace(character) == "" {
		return mcp.NewToolResultError("'character' is required"), nil
	}
	diagram, err := imageArg(req, "stroke_diagram_image")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	gif, err := imageArg(req, "stroke_gif_image")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	k, err := t.store.CreateKanji(ctx, dictionary.CreateKanjiParams{
		Character:               character,
		StrokeCount:             optInt(req, "stroke_count"),
		ShortMeaning:            optString(req, "short_meaning"),
		SearchKeywords:          optString(req, "search_keywords"),
		RadicalID:               optID(req, "radical_id"),
		JLPTLevel:               optString(req, "jlpt_level"),
		JoyoLevel:               optString(req, "joyo_level"),
		KenteiLevel:             optString(req, "kentei_level"),
		StrokeDiagramImage:      diagram,
		StrokeGIFImage:          gif,
		NotesEtymology:          optString(req, "notes_etymology"),
		NotesSemantic:           optString(req, "notes_semantic"),
		NotesEducationMnemonics: optString(req, "notes_education_mnemonics"),
		NotesPersonal:           optString(req, "notes_personal"),
		Identifier:              optInt(req, "identifier"),
		RadicalStrokeCount:      optInt(req, "radical_stroke_count"),
	})
	if err != nil {
		return errorResult("kanji_create", err), nil
	}
	return jsonResult("kanji_create", fmt.Sprintf("Kanji %s created (id %d)", k.Character, k.ID), k)
}

// ─── KanjiGetTool ───────────────────────────────────────────────────────────

// KanjiGetTool handles the kanji_get MCP tool.
type KanjiGetTool struct {
	store *dictionary.Store
}

// NewKanjiGetTool creates a KanjiGetTool.
func NewKanjiGetTool(store *dictionary.Store) *KanjiGetTool {
	return &KanjiGetTool{store: store}
}

// Definition returns the MCP tool definition for kanji_get.
func (t *KanjiGetTool) Definition() mcp.Tool {
	return mcp.NewTool("kanji_get",
		mcp.WithDescription(
			"Show everything known about one kanji: meanings (grouped by reading when grouping is on), "+
				"readings, classifications, components and vocabulary. Look up by id or by character.",
		),
		mcp.WithNumber("id", mcp.Description("Kanji id")),
		mcp.WithString("character", mcp.Description("The kanji itself, used when id is not given")),
		mcp.WithString("format",
			mcp.Description("'card' (default) for a readable summary, 'json' for the full record"),
			mcp.Enum("card", "json"),
		),
	)
}

// Handle processes the kanji_get tool call.
func (t *KanjiGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := idArg(req, "id")
	if id == 0 {
		character := req.GetString("character", "")
		if strings.TrimSpace(character) == "" {
			return mcp.NewToolResultError("'id' or 'character' is required"), nil
		}
		k, err := t.store.GetKanjiByCharacter(ctx, character)
		if err != nil {
			return errorResult("kanji_get", err), nil
		}
		id = k.ID
	}

	d, err := t.store.GetKanjiDetail(ctx, id)
	if err != nil {
		return errorResult("kanji_get", err), nil
	}
	if req.GetString("format", "card") == "json" {
		return jsonResult("kanji_get", "", d)
	}
	return mcp.NewToolResultText(d.Format()), nil
}

// ─── KanjiSearchTool ────────────────────────────────────────────────────────

// KanjiSearchTool handles the kanji_search MCP tool.
type KanjiSearchTool struct {
	store *dictionary.Store
}

// NewKanjiSearchTool creates a KanjiSearchTool.
func NewKanjiSearchTool(store *dictionary.Store) *KanjiSearchTool {
	return &KanjiSearchTool{store: store}
}

// Definition returns the MCP tool definition for kanji_search.
func (t *KanjiSearchTool) Definition() mcp.Tool {
	numbers := mcp.Items(map[string]any{"type": "number"})
	strs := mcp.Items(map[string]any{"type": "string"})
	lengths := []string{string(dictionary.TextEmpty), string(dictionary.TextShort), string(dictionary.TextMedium), string(dictionary.TextLong)}
	return mcp.NewTool("kanji_search",
		mcp.WithDescription(
			"Search kanji. Every filter given must match (AND). With no filters, lists kanji newest first. "+
				"Text filters are substring matches; full-width input is folded first.",
		),
		mcp.WithString("search", mcp.Description("Matches character, short meaning or keywords")),
		mcp.WithString("character", mcp.Description("Exact character")),
		mcp.WithString("search_keywords", mcp.Description("Matches short meaning or keywords")),
		mcp.WithString("meanings", mcp.Description("Matches any meaning text")),
		mcp.WithString("on_yomi", mcp.Description("Matches an on reading")),
		mcp.WithString("kun_yomi", mcp.Description("Matches a kun reading including okurigana")),
		mcp.WithNumber("stroke_count_min", mcp.Description("Minimum strokes")),
		mcp.WithNumber("stroke_count_max", mcp.Description("Maximum strokes")),
		mcp.WithArray("jlpt_levels", mcp.Description("Any of these JLPT levels"), strs),
		mcp.WithArray("joyo_levels", mcp.Description("Any of these Joyo grades"), strs),
		mcp.WithArray("kentei_levels", mcp.Description("Any of these Kentei levels"), strs),
		mcp.WithNumber("radical_id", mcp.Description("Radical component id")),
		mcp.WithArray("component_ids", mcp.Description("Kanji containing all of these components"), numbers),
		mcp.WithArray("classification_type_ids", mcp.Description("Kanji with all of these classifications"), numbers),
		mcp.WithString("stroke_diagram", mcp.Description("Filter on the stroke diagram"), mcp.Enum("has", "missing")),
		mcp.WithString("stroke_animation", mcp.Description("Filter on the stroke animation"), mcp.Enum("has", "missing")),
		mcp.WithString("notes_etymology", mcp.Description("Etymology notes length"), mcp.Enum(lengths...)),
		mcp.WithString("notes_semantic", mcp.Description("Semantic notes length"), mcp.Enum(lengths...)),
		mcp.WithString("notes_mnemonics", mcp.Description("Mnemonic notes length"), mcp.Enum(lengths...)),
		mcp.WithString("notes_personal", mcp.Description("Personal notes length"), mcp.Enum(lengths...)),
		mcp.WithString("sort", mcp.Description("character, strokeCount, jlptLevel, joyoLevel, identifier, createdAt (default), updatedAt")),
		mcp.WithString("order", mcp.Description("asc or desc (default desc)"), mcp.Enum("asc", "desc")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 50)")),
	)
}

// Handle processes the kanji_search tool call.
func (t *KanjiSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	componentIDs, err := idsArg(req, "component_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	classificationIDs, err := idsArg(req, "classification_type_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	field, err := dictionary.ParseKanjiSortField(req.GetString("sort", ""))
	if err != nil {
		return errorResult("kanji_search", err), nil
	}

	filters := dictionary.KanjiFilters{
		Search:                req.GetString("search", ""),
		Character:             req.GetString("character", ""),
		SearchKeywords:        req.GetString("search_keywords", ""),
		Meanings:              req.GetString("meanings", ""),
		OnYomi:                req.GetString("on_yomi", ""),
		KunYomi:               req.GetString("kun_yomi", ""),
		StrokeCountMin:        optInt(req, "stroke_count_min"),
		StrokeCountMax:        optInt(req, "stroke_count_max"),
		JLPTLevels:            stringsArg(req, "jlpt_levels"),
		JoyoLevels:            stringsArg(req, "joyo_levels"),
		KenteiLevels:          stringsArg(req, "kentei_levels"),
		RadicalID:             optID(req, "radical_id"),
		ComponentIDs:          componentIDs,
		ClassificationTypeIDs: classificationIDs,
		StrokeDiagram:         dictionary.Presence(req.GetString("stroke_diagram", "")),
		StrokeAnimation:       dictionary.Presence(req.GetString("stroke_animation", "")),
		NotesEtymology:        dictionary.TextLength(req.GetString("notes_etymology", "")),
		NotesSemantic:         dictionary.TextLength(req.GetString("notes_semantic", "")),
		NotesMnemonics:        dictionary.TextLength(req.GetString("notes_mnemonics", "")),
		NotesPersonal:         dictionary.TextLength(req.GetString("notes_personal", "")),
		Limit:                 intArg(req, "limit", 50),
	}
	sort := dictionary.KanjiSort{Field: field, Asc: req.GetString("order", "desc") == "asc"}

	results, err := t.store.SearchKanji(ctx, filters, sort)
	if err != nil {
		return errorResult("kanji_search", err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No kanji found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d kanji:\n\n", len(results))
	for _, k := range results {
		fmt.Fprintf(&b, "[%d] %s", k.ID, k.Character)
		if k.ShortMeaning != nil {
			fmt.Fprintf(&b, " %s", *k.ShortMeaning)
		}
		var facts []string
		if k.StrokeCount != nil {
			facts = append(facts, fmt.Sprintf("%d strokes", *k.StrokeCount))
		}
		if k.JLPTLevel != nil {
			facts = append(facts, *k.JLPTLevel)
		}
		if len(facts) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(facts, ", "))
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── KanjiUpdateTool ────────────────────────────────────────────────────────

// KanjiUpdateTool handles the kanji_update MCP tool.
type KanjiUpdateTool struct {
	store *dictionary.Store
}

// NewKanjiUpdateTool creates a KanjiUpdateTool.
func NewKanjiUpdateTool(store *dictionary.Store) *KanjiUpdateTool {
	return &KanjiUpdateTool{store: store}
}

// Definition returns the MCP tool definition for kanji_update.
func (t *KanjiUpdateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Update a kanji. Only provided fields change; an empty string clears a text field."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Kanji id")),
		mcp.WithString("character", mcp.Description("New character")),
	}
	return mcp.NewTool("kanji_update", append(opts, kanjiProperties()...)...)
}

// Handle processes the kanji_update tool call.
func (t *KanjiUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	diagram, err := imageArg(req, "stroke_diagram_image")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	gif, err := imageArg(req, "stroke_gif_image")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := dictionary.UpdateKanjiParams{
		Character:               optString(req, "character"),
		StrokeCount:             optInt(req, "stroke_count"),
		ShortMeaning:            optString(req, "short_meaning"),
		SearchKeywords:          optString(req, "search_keywords"),
		RadicalID:               optID(req, "radical_id"),
		JLPTLevel:               optString(req, "jlpt_level"),
		JoyoLevel:               optString(req, "joyo_level"),
		KenteiLevel:             optString(req, "kentei_level"),
		StrokeDiagramImage:      diagram,
		StrokeGIFImage:          gif,
		NotesEtymology:          optString(req, "notes_etymology"),
		NotesSemantic:           optString(req, "notes_semantic"),
		NotesEducationMnemonics: optString(req, "notes_education_mnemonics"),
		NotesPersonal:           optString(req, "notes_personal"),
		Identifier:              optInt(req, "identifier"),
		RadicalStrokeCount:      optInt(req, "radical_stroke_count"),
	}
	if !hasAnyArg(req, kanjiUpdateKeys...) {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}

	k, err := t.store.UpdateKanji(ctx, id, params)
	if err != nil {
		return errorResult("kanji_update", err), nil
	}
	return jsonResult("kanji_update", fmt.Sprintf("Kanji %s updated", k.Character), k)
}

// ─── KanjiUpdateFieldTool ───────────────────────────────────────────────────

// KanjiUpdateFieldTool handles the kanji_update_field MCP tool.
type KanjiUpdateFieldTool struct {
	store *dictionary.Store
}

// NewKanjiUpdateFieldTool creates a KanjiUpdateFieldTool.
func NewKanjiUpdateFieldTool(store *dictionary.Store) *KanjiUpdateFieldTool {
	return &KanjiUpdateFieldTool{store: store}
}

// Definition returns the MCP tool definition for kanji_update_field.
func (t *KanjiUpdateFieldTool) Definition() mcp.Tool {
	return mcp.NewTool("kanji_update_field",
		mcp.WithDescription(
			"Set a single kanji field, e.g. while editing inline. A null value clears the field. "+
				"Image fields take base64 data.",
		),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Kanji id")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name"), mcp.Enum(dictionary.KanjiFieldNames()...)),
		withAnyValue("value", "New value (string, number or null)"),
	)
}

// Handle processes the kanji_update_field tool call.
func (t *KanjiUpdateFieldTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	field := req.GetString("field", "")
	if field == "" {
		return mcp.NewToolResultError("'field' is required"), nil
	}

	value := req.GetArguments()["value"]
	if _, ok := value.(string); ok && strings.HasSuffix(strings.ToLower(field), "image") {
		img, err := imageArg(req, "value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		value = nil
		if img != nil {
			value = img
		}
	}

	k, err := t.store.UpdateKanjiField(ctx, id, field, value)
	if err != nil {
		return errorResult("kanji_update_field", err), nil
	}
	return jsonResult("kanji_update_field", fmt.Sprintf("Kanji %s: %s updated", k.Character, field), k)
}
