package dicttools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rivo/uniseg"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

func vocabularyProperties() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("kana", mcp.Description("Reading in kana")),
		mcp.WithString("short_meaning", mcp.Description("Short English gloss")),
		mcp.WithString("search_keywords", mcp.Description("Extra keywords matched by search")),
		mcp.WithString("jlpt_level", mcp.Description("JLPT level"), mcp.Enum(dictionary.JLPTLevels...)),
		mcp.WithBoolean("is_common", mcp.Description("Whether the word is in common use")),
		mcp.WithString("description", mcp.Description("Longer notes on the word")),
	}
}

// vocabularyView is a word with its kanji links.
type vocabularyView struct {
	Vocabulary *dictionary.Vocabulary  `json:"vocabulary"`
	Kanji      []dictionary.VocabKanji `json:"kanji"`
}

// resolveKanjiID accepts kanji_id or a kanji character under key.
func resolveKanjiID(ctx context.Context, store *dictionary.Store, req mcp.CallToolRequest, idKey, charKey string) (int64, error) {
	if id := idArg(req, idKey); id > 0 {
		return id, nil
	}
	k, err := store.GetKanjiByCharacter(ctx, req.GetString(charKey, ""))
	if err != nil {
		return 0, err
	}
	return k.ID, nil
}

// ─── VocabCreateTool ────────────────────────────────────────────────────────

// VocabCreateTool handles the vocab_create MCP tool.
type VocabCreateTool struct {
	store *dictionary.Store
}

// NewVocabCreateTool creates a VocabCreateTool.
func NewVocabCreateTool(store *dictionary.Store) *VocabCreateTool {
	return &VocabCreateTool{store: store}
}

// Definition returns the MCP tool definition for vocab_create.
func (t *VocabCreateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Add a vocabulary word. With link_kanji the kanji of the word that are already in the " +
				"dictionary are linked in order."),
		mcp.WithString("word", mcp.Required(), mcp.Description("The written word, e.g. 火山")),
		mcp.WithBoolean("link_kanji", mcp.Description("Link each known kanji of the word (default true)")),
	}
	return mcp.NewTool("vocab_create", append(opts, vocabularyProperties()...)...)
}

// Handle processes the vocab_create tool call.
func (t *VocabCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := t.store.CreateVocabulary(ctx, dictionary.CreateVocabularyParams{
		Word:           req.GetString("word", ""),
		Kana:           optString(req, "kana"),
		ShortMeaning:   optString(req, "short_meaning"),
		SearchKeywords: optString(req, "search_keywords"),
		JLPTLevel:      optString(req, "jlpt_level"),
		IsCommon:       boolArg(req, "is_common", false),
		Description:    optString(req, "description"),
	})
	if err != nil {
		return errorResult("vocab_create", err), nil
	}

	var linked []string
	if boolArg(req, "link_kanji", true) {
		gr := uniseg.NewGraphemes(v.Word)
		for gr.Next() {
			k, err := t.store.GetKanjiByCharacter(ctx, gr.Str())
			if errors.Is(err, dictionary.ErrNotFound) {
				continue
			}
			if err != nil {
				return errorResult("vocab_create", err), nil
			}
			if _, err := t.store.LinkKanji(ctx, v.ID, k.ID, nil, nil); err != nil {
				return errorResult("vocab_create", err), nil
			}
			linked = append(linked, k.Character)
		}
	}

	summary := fmt.Sprintf("Word %s created (id %d)", v.Word, v.ID)
	if len(linked) > 0 {
		summary += ", linked " + strings.Join(linked, " ")
	}
	return mcp.NewToolResultText(summary), nil
}

// ─── VocabGetTool ───────────────────────────────────────────────────────────

// VocabGetTool handles the vocab_get MCP tool.
type VocabGetTool struct {
	store *dictionary.Store
}

// NewVocabGetTool creates a VocabGetTool.
func NewVocabGetTool(store *dictionary.Store) *VocabGetTool {
	return &VocabGetTool{store: store}
}

// Definition returns the MCP tool definition for vocab_get.
func (t *VocabGetTool) Definition() mcp.Tool {
	return mcp.NewTool("vocab_get",
		mcp.WithDescription("Show a word with the kanji it is written with. Look it up by id or by word."),
		mcp.WithNumber("id", mcp.Description("Vocabulary id")),
		mcp.WithString("word", mcp.Description("The written word")),
	)
}

// Handle processes the vocab_get tool call.
func (t *VocabGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		v   *dictionary.Vocabulary
		err error
	)
	switch {
	case idArg(req, "id") > 0:
		v, err = t.store.GetVocabulary(ctx, idArg(req, "id"))
	case req.GetString("word", "") != "":
		v, err = t.store.GetVocabularyByWord(ctx, req.GetString("word", ""))
	default:
		return mcp.NewToolResultError("one of 'id' or 'word' is required"), nil
	}
	if err != nil {
		return errorResult("vocab_get", err), nil
	}
	links, err := t.store.ListVocabKanji(ctx, v.ID)
	if err != nil {
		return errorResult("vocab_get", err), nil
	}
	return jsonResult("vocab_get", formatWord(*v), vocabularyView{Vocabulary: v, Kanji: links})
}

func formatWord(v dictionary.Vocabulary) string {
	s := fmt.Sprintf("[%d] %s", v.ID, v.Word)
	if v.Kana != nil {
		s += "（" + *v.Kana + "）"
	}
	if v.ShortMeaning != nil {
		s += " " + *v.ShortMeaning
	}
	if v.JLPTLevel != nil {
		s += " · JLPT " + *v.JLPTLevel
	}
	if v.IsCommon {
		s += " · common"
	}
	return s
}

// ─── VocabSearchTool ────────────────────────────────────────────────────────

// VocabSearchTool handles the vocab_search MCP tool.
type VocabSearchTool struct {
	store *dictionary.Store
}

// NewVocabSearchTool creates a VocabSearchTool.
func NewVocabSearchTool(store *dictionary.Store) *VocabSearchTool {
	return &VocabSearchTool{store: store}
}

// Definition returns the MCP tool definition for vocab_search.
func (t *VocabSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("vocab_search",
		mcp.WithDescription("Search vocabulary. All filters combine; results are newest first."),
		mcp.WithString("word", mcp.Description("Substring of the written word")),
		mcp.WithString("kana", mcp.Description("Substring of the reading")),
		mcp.WithString("search", mcp.Description("Matches meaning and keywords")),
		mcp.WithArray("jlpt_levels",
			mcp.Description("Any of these JLPT levels"),
			mcp.Items(map[string]any{"type": "string", "enum": dictionary.JLPTLevels}),
		),
		mcp.WithBoolean("is_common", mcp.Description("Only common (true) or uncommon (false) words")),
		mcp.WithArray("contains_kanji_ids",
			mcp.Description("Words written with every one of these kanji"),
			mcp.Items(map[string]any{"type": "number"}),
		),
		mcp.WithString("description", mcp.Description("Filter by description"), mcp.Enum("filled", "empty")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 50)")),
	)
}

// Handle processes the vocab_search tool call.
func (t *VocabSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kanjiIDs, err := idsArg(req, "contains_kanji_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f := dictionary.VocabularyFilters{
		Word:             req.GetString("word", ""),
		Kana:             req.GetString("kana", ""),
		Search:           req.GetString("search", ""),
		JLPTLevels:       stringsArg(req, "jlpt_levels"),
		IsCommon:         optBool(req, "is_common"),
		ContainsKanjiIDs: kanjiIDs,
		Limit:            intArg(req, "limit", 50),
	}
	switch d := req.GetString("description", ""); d {
	case "":
	case "filled":
		f.Description = dictionary.Has
	case "empty":
		f.Description = dictionary.Missing
	default:
		f.Description = dictionary.Presence(d)
	}

	words, err := t.store.SearchVocabulary(ctx, f)
	if err != nil {
		return errorResult("vocab_search", err), nil
	}
	if len(words) == 0 {
		return mcp.NewToolResultText("No vocabulary found."), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d words:\n\n", len(words))
	for _, v := range words {
		b.WriteString(formatWord(v) + "\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── VocabUpdateTool ────────────────────────────────────────────────────────

// VocabUpdateTool handles the vocab_update MCP tool.
type VocabUpdateTool struct {
	store *dictionary.Store
}

// NewVocabUpdateTool creates a VocabUpdateTool.
func NewVocabUpdateTool(store *dictionary.Store) *VocabUpdateTool {
	return &VocabUpdateTool{store: store}
}

// Definition returns the MCP tool definition for vocab_update.
func (t *VocabUpdateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Edit a vocabulary word. Only provided fields change; an empty string clears a text field."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Vocabulary id")),
		mcp.WithString("word", mcp.Description("New written word")),
	}
	return mcp.NewTool("vocab_update", append(opts, vocabularyProperties()...)...)
}

// Handle processes the vocab_update tool call.
func (t *VocabUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if !hasAnyArg(req, "word", "kana", "short_meaning", "search_keywords", "jlpt_level", "is_common", "description") {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	v, err := t.store.UpdateVocabulary(ctx, id, dictionary.UpdateVocabularyParams{
		Word:           optString(req, "word"),
		Kana:           optString(req, "kana"),
		ShortMeaning:   optString(req, "short_meaning"),
		SearchKeywords: optString(req, "search_keywords"),
		JLPTLevel:      optString(req, "jlpt_level"),
		IsCommon:       optBool(req, "is_common"),
		Description:    optString(req, "description"),
	})
	if err != nil {
		return errorResult("vocab_update", err), nil
	}
	return mcp.NewToolResultText("Updated " + formatWord(*v)), nil
}

// ─── VocabLinkTool ──────────────────────────────────────────────────────────

// VocabLinkTool handles the vocab_link MCP tool.
type VocabLinkTool struct {
	store *dictionary.Store
}

// NewVocabLinkTool creates a VocabLinkTool.
func NewVocabLinkTool(store *dictionary.Store) *VocabLinkTool {
	return &VocabLinkTool{store: store}
}

// Definition returns the MCP tool definition for vocab_link.
func (t *VocabLinkTool) Definition() mcp.Tool {
	return mcp.NewTool("vocab_link",
		mcp.WithDescription(
			"Link a kanji to a word, or with link_id edit the analysis notes of an existing link. "+
				"The same kanji may be linked twice (人人)."),
		mcp.WithNumber("vocab_id", mcp.Description("Vocabulary id, for a new link")),
		mcp.WithNumber("kanji_id", mcp.Description("Kanji id, for a new link")),
		mcp.WithString("kanji", mcp.Description("Kanji character, instead of kanji_id")),
		mcp.WithNumber("link_id", mcp.Description("Existing link id, to edit its notes")),
		mcp.WithString("analysis_notes", mcp.Description("How the kanji contributes to the word; empty clears")),
		mcp.WithNumber("position", mcp.Description("0-based position to insert at")),
	)
}

// Handle processes the vocab_link tool call.
func (t *VocabLinkTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if linkID := idArg(req, "link_id"); linkID > 0 {
		vk, err := t.store.UpdateVocabKanjiNotes(ctx, linkID, optString(req, "analysis_notes"))
		if err != nil {
			return errorResult("vocab_link", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Notes of link %d (%s) updated", vk.ID, vk.KanjiCharacter)), nil
	}

	vocabID, errRes := requireID(req, "vocab_id")
	if errRes != nil {
		return errRes, nil
	}
	if idArg(req, "kanji_id") == 0 && req.GetString("kanji", "") == "" {
		return mcp.NewToolResultError("one of 'kanji_id' or 'kanji' is required"), nil
	}
	kanjiID, err := resolveKanjiID(ctx, t.store, req, "kanji_id", "kanji")
	if err != nil {
		return errorResult("vocab_link", err), nil
	}
	vk, err := t.store.LinkKanji(ctx, vocabID, kanjiID, optString(req, "analysis_notes"), optInt(req, "position"))
	if err != nil {
		return errorResult("vocab_link", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s linked at position %d (link id %d)", vk.KanjiCharacter, vk.DisplayOrder, vk.ID)), nil
}
