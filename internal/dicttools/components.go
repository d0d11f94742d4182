package dicttools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

func componentProperties() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("stroke_count", mcp.Description("Number of strokes")),
		mcp.WithString("short_meaning", mcp.Description("Short English gloss")),
		mcp.WithString("search_keywords", mcp.Description("Extra keywords matched by search")),
		mcp.WithNumber("source_kanji_id", mcp.Description("Kanji this component derives from")),
		mcp.WithString("description", mcp.Description("Free-form description")),
		mcp.WithBoolean("can_be_radical", mcp.Description("Whether the component is one of the 214 Kangxi radicals")),
		mcp.WithNumber("kangxi_number", mcp.Description("Kangxi radical number (1-214)")),
		mcp.WithString("kangxi_meaning", mcp.Description("Traditional meaning of the radical")),
		mcp.WithString("radical_name_japanese", mcp.Description("Japanese name of the radical, e.g. さんずい")),
	}
}

var componentUpdateKeys = []string{
	"character", "stroke_count", "short_meaning", "search_keywords", "source_kanji_id",
	"description", "can_be_radical", "kangxi_number", "kangxi_meaning", "radical_name_japanese",
}

// ─── ComponentCreateTool ────────────────────────────────────────────────────

// ComponentCreateTool handles the component_create MCP tool.
type ComponentCreateTool struct {
	store *dictionary.Store
}

// NewComponentCreateTool creates a ComponentCreateTool.
func NewComponentCreateTool(store *dictionary.Store) *ComponentCreateTool {
	return &ComponentCreateTool{store: store}
}

// Definition returns the MCP tool definition for component_create.
func (t *ComponentCreateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Add a component (a building block of kanji, possibly a Kangxi radical)."),
		mcp.WithString("character", mcp.Required(), mcp.Description("The component, e.g. 水")),
	}
	return mcp.NewTool("component_create", append(opts, componentProperties()...)...)
}

// Handle processes the component_create tool call.
func (t *ComponentCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := t.store.CreateComponent(ctx, dictionary.CreateComponentParams{
		Character:           req.GetString("character", ""),
		StrokeCount:         optInt(req, "stroke_count"),
		ShortMeaning:        optString(req, "short_meaning"),
		SearchKeywords:      optString(req, "search_keywords"),
		SourceKanjiID:       optID(req, "source_kanji_id"),
		Description:         optString(req, "description"),
		CanBeRadical:        boolArg(req, "can_be_radical", false),
		KangxiNumber:        optInt(req, "kangxi_number"),
		KangxiMeaning:       optString(req, "kangxi_meaning"),
		RadicalNameJapanese: optString(req, "radical_name_japanese"),
	})
	if err != nil {
		return errorResult("component_create", err), nil
	}
	return jsonResult("component_create", fmt.Sprintf("Component %s created (id %d)", c.Character, c.ID), c)
}

// ─── ComponentGetTool ───────────────────────────────────────────────────────

// ComponentGetTool handles the component_get MCP tool.
type ComponentGetTool struct {
	store *dictionary.Store
}

// NewComponentGetTool creates a ComponentGetTool.
func NewComponentGetTool(store *dictionary.Store) *ComponentGetTool {
	return &ComponentGetTool{store: store}
}

// componentView is a component with its child lists.
type componentView struct {
	Component   *dictionary.Component          `json:"component"`
	Forms       []dictionary.ComponentForm     `json:"forms"`
	Groupings   []dictionary.ComponentGrouping `json:"groupings"`
	Occurrences []dictionary.Occurrence        `json:"occurrences"`
}

// Definition returns the MCP tool definition for component_get.
func (t *ComponentGetTool) Definition() mcp.Tool {
	return mcp.NewTool("component_get",
		mcp.WithDescription("Show a component with its forms, groupings and the kanji it appears in. Look it up by id, character or Kangxi number."),
		mcp.WithNumber("id", mcp.Description("Component id")),
		mcp.WithString("character", mcp.Description("Component character")),
		mcp.WithNumber("kangxi_number", mcp.Description("Kangxi radical number")),
	)
}

// Handle processes the component_get tool call.
func (t *ComponentGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		c   *dictionary.Component
		err error
	)
	switch {
	case idArg(req, "id") > 0:
		c, err = t.store.GetComponent(ctx, idArg(req, "id"))
	case req.GetString("character", "") != "":
		c, err = t.store.GetComponentByCharacter(ctx, req.GetString("character", ""))
	case intArg(req, "kangxi_number", 0) > 0:
		c, err = t.store.GetComponentByKangxiNumber(ctx, intArg(req, "kangxi_number", 0))
	default:
		return mcp.NewToolResultError("one of 'id', 'character' or 'kangxi_number' is required"), nil
	}
	if err != nil {
		return errorResult("component_get", err), nil
	}

	v := componentView{Component: c}
	if v.Forms, err = t.store.ListForms(ctx, c.ID); err != nil {
		return errorResult("component_get", err), nil
	}
	if v.Groupings, err = t.store.ListGroupings(ctx, c.ID); err != nil {
		return errorResult("component_get", err), nil
	}
	if v.Occurrences, err = t.store.ListOccurrencesForComponent(ctx, c.ID); err != nil {
		return errorResult("component_get", err), nil
	}
	summary := fmt.Sprintf("%s: %d forms, %d groupings, appears in %d kanji",
		dictionary.FormatKangxi(*c), len(v.Forms), len(v.Groupings), len(v.Occurrences))
	return jsonResult("component_get", summary, v)
}

// ─── ComponentSearchTool ────────────────────────────────────────────────────

// ComponentSearchTool handles the component_search MCP tool.
type ComponentSearchTool struct {
	store *dictionary.Store
}

// NewComponentSearchTool creates a ComponentSearchTool.
func NewComponentSearchTool(store *dictionary.Store) *ComponentSearchTool {
	return &ComponentSearchTool{store: store}
}

// Definition returns the MCP tool definition for component_search.
func (t *ComponentSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("component_search",
		mcp.WithDescription("Search components by text, Kangxi number and stroke count. With radicals_only the Kangxi radicals are listed in radical order."),
		mcp.WithString("search", mcp.Description("Matches character, meaning and keywords")),
		mcp.WithString("kangxi_search", mcp.Description("Matches Kangxi number (full-width digits ok), meaning or Japanese name")),
		mcp.WithBoolean("radicals_only", mcp.Description("Only components that can be radicals")),
		mcp.WithNumber("kangxi_number", mcp.Description("Exact Kangxi number")),
		mcp.WithNumber("stroke_count_min", mcp.Description("Minimum strokes")),
		mcp.WithNumber("stroke_count_max", mcp.Description("Maximum strokes")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 50)")),
	)
}

// Handle processes the component_search tool call.
func (t *ComponentSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := dictionary.ComponentFilters{
		Search:         req.GetString("search", ""),
		KangxiSearch:   req.GetString("kangxi_search", ""),
		KangxiNumber:   optInt(req, "kangxi_number"),
		StrokeCountMin: optInt(req, "stroke_count_min"),
		StrokeCountMax: optInt(req, "stroke_count_max"),
		Limit:          intArg(req, "limit", 50),
	}
	if boolArg(req, "radicals_only", false) {
		yes := true
		f.CanBeRadical = &yes
	}
	cs, err := t.store.SearchComponents(ctx, f)
	if err != nil {
		return errorResult("component_search", err), nil
	}
	if len(cs) == 0 {
		return mcp.NewToolResultText("No components found."), nil
	}

	forms, err := t.store.FormCounts(ctx)
	if err != nil {
		return errorResult("component_search", err), nil
	}
	groupings, err := t.store.GroupingCounts(ctx)
	if err != nil {
		return errorResult("component_search", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d components:\n\n", len(cs))
	for _, c := range cs {
		fmt.Fprintf(&b, "[%d] %s", c.ID, dictionary.FormatKangxi(c))
		if c.StrokeCount != nil {
			fmt.Fprintf(&b, " · %d strokes", *c.StrokeCount)
		}
		if n := forms[c.ID]; n > 0 {
			fmt.Fprintf(&b, " · %d forms", n)
		}
		if n := groupings[c.ID]; n > 0 {
			fmt.Fprintf(&b, " · %d groupings", n)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── ComponentUpdateTool ────────────────────────────────────────────────────

// ComponentUpdateTool handles the component_update MCP tool.
type ComponentUpdateTool struct {
	store *dictionary.Store
}

// NewComponentUpdateTool creates a ComponentUpdateTool.
func NewComponentUpdateTool(store *dictionary.Store) *ComponentUpdateTool {
	return &ComponentUpdateTool{store: store}
}

// Definition returns the MCP tool definition for component_update.
func (t *ComponentUpdateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Edit a component. Only provided fields change; an empty string clears a text field."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Component id")),
		mcp.WithString("character", mcp.Description("New character")),
	}
	return mcp.NewTool("component_update", append(opts, componentProperties()...)...)
}

// Handle processes the component_update tool call.
func (t *ComponentUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if !hasAnyArg(req, componentUpdateKeys...) {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	c, err := t.store.UpdateComponent(ctx, id, dictionary.UpdateComponentParams{
		Character:           optString(req, "character"),
		StrokeCount:         optInt(req, "stroke_count"),
		ShortMeaning:        optString(req, "short_meaning"),
		SearchKeywords:      optString(req, "search_keywords"),
		SourceKanjiID:       optID(req, "source_kanji_id"),
		Description:         optString(req, "description"),
		CanBeRadical:        optBool(req, "can_be_radical"),
		KangxiNumber:        optInt(req, "kangxi_number"),
		KangxiMeaning:       optString(req, "kangxi_meaning"),
		RadicalNameJapanese: optString(req, "radical_name_japanese"),
	})
	if err != nil {
		return errorResult("component_update", err), nil
	}
	return jsonResult("component_update", fmt.Sprintf("Component %d updated", c.ID), c)
}

// ─── FormAddTool ────────────────────────────────────────────────────────────

// FormAddTool handles the form_add MCP tool.
type FormAddTool struct {
	store *dictionary.Store
}

// NewFormAddTool creates a FormAddTool.
func NewFormAddTool(store *dictionary.Store) *FormAddTool {
	return &FormAddTool{store: store}
}

// Definition returns the MCP tool definition for form_add.
func (t *FormAddTool) Definition() mcp.Tool {
	return mcp.NewTool("form_add",
		mcp.WithDescription("Add a variant form to a component, e.g. 氵 for 水. The first form is the primary one."),
		mcp.WithNumber("component_id", mcp.Required(), mcp.Description("Component id")),
		mcp.WithString("form_character", mcp.Required(), mcp.Description("The variant character")),
		mcp.WithString("form_name", mcp.Description("Name of the form, e.g. さんずい")),
		mcp.WithNumber("stroke_count", mcp.Description("Strokes of the form")),
		mcp.WithString("usage_notes", mcp.Description("Where the form is used")),
		mcp.WithNumber("position", mcp.Description("0-based position to insert at")),
	)
}

// Handle processes the form_add tool call.
func (t *FormAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	componentID, errRes := requireID(req, "component_id")
	if errRes != nil {
		return errRes, nil
	}
	f, err := t.store.AddForm(ctx, componentID, dictionary.AddFormParams{
		FormCharacter: req.GetString("form_character", ""),
		FormName:      optString(req, "form_name"),
		StrokeCount:   optInt(req, "stroke_count"),
		UsageNotes:    optString(req, "usage_notes"),
		Position:      optInt(req, "position"),
	})
	if err != nil {
		return errorResult("form_add", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Form %s added (id %d, position %d)", f.FormCharacter, f.ID, f.DisplayOrder)), nil
}

// ─── FormUpdateTool ─────────────────────────────────────────────────────────

// FormUpdateTool handles the form_update MCP tool.
type FormUpdateTool struct {
	store *dictionary.Store
}

// NewFormUpdateTool creates a FormUpdateTool.
func NewFormUpdateTool(store *dictionary.Store) *FormUpdateTool {
	return &FormUpdateTool{store: store}
}

// Definition returns the MCP tool definition for form_update.
func (t *FormUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("form_update",
		mcp.WithDescription("Edit a component form. Only provided fields change."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Form id")),
		mcp.WithString("form_character", mcp.Description("New character")),
		mcp.WithString("form_name", mcp.Description("New name; empty clears")),
		mcp.WithNumber("stroke_count", mcp.Description("New stroke count")),
		mcp.WithString("usage_notes", mcp.Description("New usage notes; empty clears")),
	)
}

// Handle processes the form_update tool call.
func (t *FormUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if !hasAnyArg(req, "form_character", "form_name", "stroke_count", "usage_notes") {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	f, err := t.store.UpdateForm(ctx, id, dictionary.UpdateFormParams{
		FormCharacter: optString(req, "form_character"),
		FormName:      optString(req, "form_name"),
		StrokeCount:   optInt(req, "stroke_count"),
		UsageNotes:    optString(req, "usage_notes"),
	})
	if err != nil {
		return errorResult("form_update", err), nil
	}
	return jsonResult("form_update", fmt.Sprintf("Form %d updated", f.ID), f)
}

// ─── FormListTool ───────────────────────────────────────────────────────────

// FormListTool handles the form_list MCP tool.
type FormListTool struct {
	store *dictionary.Store
}

// NewFormListTool creates a FormListTool.
func NewFormListTool(store *dictionary.Store) *FormListTool {
	return &FormListTool{store: store}
}

// Definition returns the MCP tool definition for form_list.
func (t *FormListTool) Definition() mcp.Tool {
	return mcp.NewTool("form_list",
		mcp.WithDescription("List the forms of a component in display order."),
		mcp.WithNumber("component_id", mcp.Required(), mcp.Description("Component id")),
	)
}

// Handle processes the form_list tool call.
func (t *FormListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	componentID, errRes := requireID(req, "component_id")
	if errRes != nil {
		return errRes, nil
	}
	if _, err := t.store.GetComponent(ctx, componentID); err != nil {
		return errorResult("form_list", err), nil
	}
	forms, err := t.store.ListForms(ctx, componentID)
	if err != nil {
		return errorResult("form_list", err), nil
	}
	if len(forms) == 0 {
		return mcp.NewToolResultText("No forms."), nil
	}
	var b strings.Builder
	for i, f := range forms {
		fmt.Fprintf(&b, "%d. [%d] %s", i+1, f.ID, f.FormCharacter)
		if f.FormName != nil {
			fmt.Fprintf(&b, " %s", *f.FormName)
		}
		if i == 0 {
			b.WriteString(" (primary)")
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── OccurrenceAddTool ──────────────────────────────────────────────────────

// OccurrenceAddTool handles the occurrence_add MCP tool.
type OccurrenceAddTool struct {
	store *dictionary.Store
}

// NewOccurrenceAddTool creates an OccurrenceAddTool.
func NewOccurrenceAddTool(store *dictionary.Store) *OccurrenceAddTool {
	return &OccurrenceAddTool{store: store}
}

// Definition returns the MCP tool definition for occurrence_add.
func (t *OccurrenceAddTool) Definition() mcp.Tool {
	return mcp.NewTool("occurrence_add",
		mcp.WithDescription("Record that a component appears in a kanji, optionally in a given form and position."),
		mcp.WithNumber("kanji_id", mcp.Required(), mcp.Description("Kanji id")),
		mcp.WithNumber("component_id", mcp.Required(), mcp.Description("Component id")),
		mcp.WithNumber("component_form_id", mcp.Description("Form of the component used in this kanji")),
		mcp.WithNumber("position_type_id", mcp.Description("Where the component sits (see reference_type_list type=position)")),
		mcp.WithBoolean("is_radical", mcp.Description("Whether the component is this kanji's radical")),
		mcp.WithString("analysis_notes", mcp.Description("Notes on the role of the component")),
		mcp.WithNumber("position", mcp.Description("0-based position to insert at")),
	)
}

// Handle processes the occurrence_add tool call.
func (t *OccurrenceAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kanjiID, errRes := requireID(req, "kanji_id")
	if errRes != nil {
		return errRes, nil
	}
	componentID, errRes := requireID(req, "component_id")
	if errRes != nil {
		return errRes, nil
	}
	o, err := t.store.AddOccurrence(ctx, kanjiID, dictionary.AddOccurrenceParams{
		ComponentID:     componentID,
		ComponentFormID: optID(req, "component_form_id"),
		PositionTypeID:  optID(req, "position_type_id"),
		IsRadical:       boolArg(req, "is_radical", false),
		AnalysisNotes:   optString(req, "analysis_notes"),
		Position:        optInt(req, "position"),
	})
	if err != nil {
		return errorResult("occurrence_add", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s added to %s (occurrence id %d)", o.DisplayCharacter(), o.KanjiCharacter, o.ID)), nil
}

// ─── OccurrenceUpdateTool ───────────────────────────────────────────────────

// OccurrenceUpdateTool handles the occurrence_update MCP tool.
type OccurrenceUpdateTool struct {
	store *dictionary.Store
}

// NewOccurrenceUpdateTool creates an OccurrenceUpdateTool.
func NewOccurrenceUpdateTool(store *dictionary.Store) *OccurrenceUpdateTool {
	return &OccurrenceUpdateTool{store: store}
}

// Definition returns the MCP tool definition for occurrence_update.
func (t *OccurrenceUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("occurrence_update",
		mcp.WithDescription("Edit a component occurrence. Pass 0 for component_form_id or position_type_id to clear it."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Occurrence id")),
		mcp.WithNumber("component_form_id", mcp.Description("Form id, 0 clears")),
		mcp.WithNumber("position_type_id", mcp.Description("Position type id, 0 clears")),
		mcp.WithBoolean("is_radical", mcp.Description("Whether the component is the radical")),
		mcp.WithString("analysis_notes", mcp.Description("Notes; empty clears")),
	)
}

// Handle processes the occurrence_update tool call.
func (t *OccurrenceUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if !hasAnyArg(req, "component_form_id", "position_type_id", "is_radical", "analysis_notes") {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	o, err := t.store.UpdateOccurrence(ctx, id, dictionary.UpdateOccurrenceParams{
		ComponentFormID: optID(req, "component_form_id"),
		PositionTypeID:  optID(req, "position_type_id"),
		IsRadical:       optBool(req, "is_radical"),
		AnalysisNotes:   optString(req, "analysis_notes"),
	})
	if err != nil {
		return errorResult("occurrence_update", err), nil
	}
	return jsonResult("occurrence_update", fmt.Sprintf("Occurrence %d updated", o.ID), o)
}

// ─── OccurrenceListTool ─────────────────────────────────────────────────────

// OccurrenceListTool handles the occurrence_list MCP tool.
type OccurrenceListTool struct {
	store *dictionary.Store
}

// NewOccurrenceListTool creates an OccurrenceListTool.
func NewOccurrenceListTool(store *dictionary.Store) *OccurrenceListTool {
	return &OccurrenceListTool{store: store}
}

// Definition returns the MCP tool definition for occurrence_list.
func (t *OccurrenceListTool) Definition() mcp.Tool {
	return mcp.NewTool("occurrence_list",
		mcp.WithDescription("List component occurrences, either the components of a kanji or the kanji containing a component."),
		mcp.WithNumber("kanji_id", mcp.Description("List the components of this kanji")),
		mcp.WithNumber("component_id", mcp.Description("List the kanji containing this component")),
	)
}

// Handle processes the occurrence_list tool call.
func (t *OccurrenceListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		occs []dictionary.Occurrence
		err error
	)
	byKanji := idArg(req, "kanji_id") > 0
	switch {
	case byKanji:
		occs, err = t.store.ListOccurrencesForKanji(ctx, idArg(req, "kanji_id"))
	case idArg(req, "component_id") > 0:
		occs, err = t.store.ListOccurrencesForComponent(ctx, idArg(req, "component_id"))
	default:
		return mcp.NewToolResultError("one of 'kanji_id' or 'component_id' is required"), nil
	}
	if err != nil {
		return errorResult("occurrence_list", err), nil
	}
	if len(occs) == 0 {
		return mcp.NewToolResultText("No occurrences."), nil
	}

	var b strings.Builder
	for _, o := range occs {
		if byKanji {
			fmt.Fprintf(&b, "[%d] %s", o.ID, o.DisplayCharacter())
		} else {
			fmt.Fprintf(&b, "[%d] %s", o.ID, o.KanjiCharacter)
			if o.KanjiShortMeaning != nil {
				fmt.Fprintf(&b, " %s", *o.KanjiShortMeaning)
			}
		}
		if o.PositionName != nil {
			fmt.Fprintf(&b, " (%s)", *o.PositionName)
		}
		if o.IsRadical {
			b.WriteString(" [radical]")
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── GroupingCreateTool ─────────────────────────────────────────────────────

// GroupingCreateTool handles the grouping_create MCP tool.
type GroupingCreateTool struct {
	store *dictionary.Store
}

// NewGroupingCreateTool creates a GroupingCreateTool.
func NewGroupingCreateTool(store *dictionary.Store) *GroupingCreateTool {
	return &GroupingCreateTool{store: store}
}

// Definition returns the MCP tool definition for grouping_create.
func (t *GroupingCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("grouping_create",
		mcp.WithDescription("Create a named grouping of a component's occurrences, e.g. 'semantic' versus 'phonetic'."),
		mcp.WithNumber("component_id", mcp.Required(), mcp.Description("Component id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Grouping name")),
		mcp.WithString("description", mcp.Description("What the grouped kanji have in common")),
		mcp.WithNumber("position", mcp.Description("0-based position to insert at")),
	)
}

// Handle processes the grouping_create tool call.
func (t *GroupingCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	componentID, errRes := requireID(req, "component_id")
	if errRes != nil {
		return errRes, nil
	}
	g, err := t.store.CreateGrouping(ctx, componentID, req.GetString("name", ""), optString(req, "description"), optInt(req, "position"))
	if err != nil {
		return errorResult("grouping_create", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Grouping %q created for %s (id %d)", g.Name, g.ComponentCharacter, g.ID)), nil
}

// ─── GroupingUpdateTool ─────────────────────────────────────────────────────

// GroupingUpdateTool handles the grouping_update MCP tool.
type GroupingUpdateTool struct {
	store *dictionary.Store
}

// NewGroupingUpdateTool creates a GroupingUpdateTool.
func NewGroupingUpdateTool(store *dictionary.Store) *GroupingUpdateTool {
	return &GroupingUpdateTool{store: store}
}

// Definition returns the MCP tool definition for grouping_update.
func (t *GroupingUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("grouping_update",
		mcp.WithDescription("Rename a grouping or change its description."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Grouping id")),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("description", mcp.Description("New description; empty clears")),
	)
}

// Handle processes the grouping_update tool call.
func (t *GroupingUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if !hasAnyArg(req, "name", "description") {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	g, err := t.store.UpdateGrouping(ctx, id, dictionary.UpdateGroupingParams{
		Name:        optString(req, "name"),
		Description: optString(req, "description"),
	})
	if err != nil {
		return errorResult("grouping_update", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Grouping %d updated: %s", g.ID, g.Name)), nil
}

// ─── GroupingListTool ───────────────────────────────────────────────────────

// GroupingListTool handles the grouping_list MCP tool.
type GroupingListTool struct {
	store *dictionary.Store
}

// NewGroupingListTool creates a GroupingListTool.
func NewGroupingListTool(store *dictionary.Store) *GroupingListTool {
	return &GroupingListTool{store: store}
}

// Definition returns the MCP tool definition for grouping_list.
func (t *GroupingListTool) Definition() mcp.Tool {
	return mcp.NewTool("grouping_list",
		mcp.WithDescription("List groupings with their member kanji. Without component_id every grouping is listed."),
		mcp.WithNumber("component_id", mcp.Description("Only groupings of this component")),
	)
}

// Handle processes the grouping_list tool call.
func (t *GroupingListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		gs  []dictionary.ComponentGrouping
		err error
	)
	if id := idArg(req, "component_id"); id > 0 {
		gs, err = t.store.ListGroupings(ctx, id)
	} else {
		gs, err = t.store.ListAllGroupings(ctx)
	}
	if err != nil {
		return errorResult("grouping_list", err), nil
	}
	if len(gs) == 0 {
		return mcp.NewToolResultText("No groupings."), nil
	}

	var b strings.Builder
	for _, g := range gs {
		fmt.Fprintf(&b, "[%d] %s %s (%d)", g.ID, g.ComponentCharacter, g.Name, g.OccurrenceCount)
		if g.Description != nil {
			fmt.Fprintf(&b, ": %s", *g.Description)
		}
		b.WriteString("\n")
		members, err := t.store.ListGroupingMembers(ctx, g.ID)
		if err != nil {
			return errorResult("grouping_list", err), nil
		}
		for _, m := range members {
			fmt.Fprintf(&b, "    %s (occurrence %d)\n", m.KanjiCharacter, m.OccurrenceID)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── GroupingMemberTool ─────────────────────────────────────────────────────

// GroupingMemberTool handles the grouping_member MCP tool: add, remove
// and reorder occurrences inside a grouping.
type GroupingMemberTool struct {
	store *dictionary.Store
}

// NewGroupingMemberTool creates a GroupingMemberTool.
func NewGroupingMemberTool(store *dictionary.Store) *GroupingMemberTool {
	return &GroupingMemberTool{store: store}
}

// Definition returns the MCP tool definition for grouping_member.
func (t *GroupingMemberTool) Definition() mcp.Tool {
	return mcp.NewTool("grouping_member",
		mcp.WithDescription(
			"Manage the occurrences inside a grouping. 'add' and 'remove' take occurrence_id; "+
				"'reorder' takes occurrence_ids listing every member in the new order. "+
				"Adding an occurrence that is already a member is a no-op."),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("add", "remove", "reorder"),
			mcp.Description("What to do"),
		),
		mcp.WithNumber("grouping_id", mcp.Required(), mcp.Description("Grouping id")),
		mcp.WithNumber("occurrence_id", mcp.Description("Occurrence id for add/remove")),
		mcp.WithArray("occurrence_ids",
			mcp.Description("Every member occurrence id in the new order, for reorder"),
			mcp.Items(map[string]any{"type": "number"}),
		),
	)
}

// Handle processes the grouping_member tool call.
func (t *GroupingMemberTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupingID, errRes := requireID(req, "grouping_id")
	if errRes != nil {
		return errRes, nil
	}

	switch action := req.GetString("action", ""); action {
	case "add":
		occurrenceID, errRes := requireID(req, "occurrence_id")
		if errRes != nil {
			return errRes, nil
		}
		m, err := t.store.AddGroupingMember(ctx, groupingID, occurrenceID)
		if err != nil {
			return errorResult("grouping_member", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s is in grouping %d at position %d", m.KanjiCharacter, groupingID, m.DisplayOrder)), nil

	case "remove":
		occurrenceID, errRes := requireID(req, "occurrence_id")
		if errRes != nil {
			return errRes, nil
		}
		if err := t.store.RemoveGroupingMember(ctx, groupingID, occurrenceID); err != nil {
			return errorResult("grouping_member", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Occurrence %d removed from grouping %d", occurrenceID, groupingID)), nil

	case "reorder":
		ids, err := idsArg(req, "occurrence_ids")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := t.store.ReorderGroupingMembers(ctx, groupingID, ids); err != nil {
			return errorResult("grouping_member", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Grouping %d reordered (%d members)", groupingID, len(ids))), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q: use add, remove or reorder", action)), nil
	}
}
