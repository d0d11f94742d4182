package dictionary

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// Vocabulary is a word studied alongside the kanji it is written with.
type Vocabulary struct {
	ID             int64   `json:"id"`
	Word           string  `json:"word"`
	Kana           *string `json:"kana,omitempty"`
	ShortMeaning   *string `json:"short_meaning,omitempty"`
	SearchKeywords *string `json:"search_keywords,omitempty"`
	JLPTLevel      *string `json:"jlpt_level,omitempty"`
	IsCommon       bool    `json:"is_common"`
	Description    *string `json:"description,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// CreateVocabularyParams holds the input for CreateVocabulary.
type CreateVocabularyParams struct {
	Word           string
	Kana           *string
	ShortMeaning   *string
	SearchKeywords *string
	JLPTLevel      *string
	IsCommon       bool
	Description    *string
}

// UpdateVocabularyParams holds partial update fields for a word.
type UpdateVocabularyParams struct {
	Word           *string
	Kana           *string
	ShortMeaning   *string
	SearchKeywords *string
	JLPTLevel      *string
	IsCommon       *bool
	Description    *string
}

// VocabularyFilters narrows SearchVocabulary. Description uses Has for
// "filled" and Missing for "empty".
type VocabularyFilters struct {
	Word             string
	Kana             string
	Search           string
	JLPTLevels       []string
	IsCommon         *bool
	ContainsKanjiIDs []int64
	Description      Presence
	Limit            int
}

// VocabKanji links a word to one of the kanji it is written with.
type VocabKanji struct {
	ID                int64   `json:"id"`
	VocabID           int64   `json:"vocab_id"`
	KanjiID           int64   `json:"kanji_id"`
	AnalysisNotes     *string `json:"analysis_notes,omitempty"`
	DisplayOrder      int     `json:"display_order"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
	KanjiCharacter    string  `json:"kanji_character"`
	KanjiShortMeaning *string `json:"kanji_short_meaning,omitempty"`
}

const vocabularyColumns = `v.id, v.word, v.kana, v.short_meaning, v.search_keywords, v.jlpt_level, v.is_common,
	v.description, v.created_at, v.updated_at`

func queryVocabulary(ctx context.Context, q dbtx, query string, args ...any) ([]Vocabulary, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vocabulary
	for rows.Next() {
		var (
			v                       Vocabulary
			kana, meaning, keywords sql.NullString
			jlpt, desc              sql.NullString
			isCommon                int
		)
		if err := rows.Scan(&v.ID, &v.Word, &kana, &meaning, &keywords, &jlpt, &isCommon, &desc, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		v.Kana = scanNullString(kana)
		v.ShortMeaning = scanNullString(meaning)
		v.SearchKeywords = scanNullString(keywords)
		v.JLPTLevel = scanNullString(jlpt)
		v.IsCommon = isCommon != 0
		v.Description = scanNullString(desc)
		out = append(out, v)
	}
	return out, rows.Err()
}

func validateVocabularyFields(kana, meaning, keywords, jlpt, desc *string) error {
	return firstErr(
		checkText("kana", kana, maxShortText),
		checkText("short_meaning", meaning, maxShortText),
		checkText("search_keywords", keywords, maxLongText),
		checkLevel("jlpt_level", jlpt, JLPTLevels),
		checkText("description", desc, maxLongText),
	)
}

// ─── Operations ──────────────────────────────────────────────────────────────

// CreateVocabulary inserts a word.
func (s *Store) CreateVocabulary(ctx context.Context, p CreateVocabularyParams) (*Vocabulary, error) {
	word, err := validate.Required("word", p.Word)
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		validate.MaxLength("word", word, maxShortText),
		validateVocabularyFields(p.Kana, p.ShortMeaning, p.SearchKeywords, p.JLPTLevel, p.Description),
	); err != nil {
		return nil, err
	}

	now := Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO vocabulary (word, kana, short_meaning, search_keywords, jlpt_level, is_common, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		word, nullString(p.Kana), nullString(p.ShortMeaning), nullString(p.SearchKeywords), nullString(p.JLPTLevel),
		boolToInt(p.IsCommon), nullString(p.Description), now, now)
	if err != nil {
		return nil, wrapErr("create", "vocabulary", err)
	}
	id, _ := res.LastInsertId()
	return s.GetVocabulary(ctx, id)
}

// GetVocabulary returns a word by id.
func (s *Store) GetVocabulary(ctx context.Context, id int64) (*Vocabulary, error) {
	out, err := queryVocabulary(ctx, s.db, `SELECT `+vocabularyColumns+` FROM vocabulary v WHERE v.id = ?`, id)
	if err != nil {
		return nil, wrapErr("get", "vocabulary", err)
	}
	if len(out) == 0 {
		return nil, wrapErr("get", "vocabulary", notFound("vocabulary", id))
	}
	return &out[0], nil
}

// GetVocabularyByWord returns the oldest entry for a written word.
func (s *Store) GetVocabularyByWord(ctx context.Context, word string) (*Vocabulary, error) {
	w, err := validate.Required("word", word)
	if err != nil {
		return nil, err
	}
	out, err := queryVocabulary(ctx, s.db, `SELECT `+vocabularyColumns+` FROM vocabulary v WHERE v.word = ? ORDER BY v.id LIMIT 1`, w)
	if err != nil {
		return nil, wrapErr("get", "vocabulary", err)
	}
	if len(out) == 0 {
		return nil, wrapErr("get", "vocabulary", &NotFoundError{Entity: "vocabulary", Key: w})
	}
	return &out[0], nil
}

// ListVocabulary returns every word, newest first.
func (s *Store) ListVocabulary(ctx context.Context) ([]Vocabulary, error) {
	out, err := queryVocabulary(ctx, s.db, `SELECT `+vocabularyColumns+` FROM vocabulary v ORDER BY v.id DESC`)
	return out, wrapErr("list", "vocabulary", err)
}

// CommonWords returns the words flagged as common, by word.
func (s *Store) CommonWords(ctx context.Context, limit int) ([]Vocabulary, error) {
	query := `SELECT ` + vocabularyColumns + ` FROM vocabulary v WHERE v.is_common = 1 ORDER BY v.word, v.id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	out, err := queryVocabulary(ctx, s.db, query)
	return out, wrapErr("list", "vocabulary", err)
}

// SearchVocabulary returns the words matching every enabled filter, newest first.
func (s *Store) SearchVocabulary(ctx context.Context, f VocabularyFilters) ([]Vocabulary, error) {
	if err := validate.AllOf("jlpt_levels", f.JLPTLevels, JLPTLevels); err != nil {
		return nil, err
	}
	if f.Description != "" && f.Description != Has && f.Description != Missing {
		return nil, validate.Errorf("description", "must be %q or %q, got %q", Has, Missing, f.Description)
	}

	var w whereClause
	w.like(validate.FoldQuery(f.Word), "v.word")
	w.like(validate.FoldQuery(f.Kana), "v.kana")
	w.like(validate.FoldQuery(f.Search), "v.short_meaning", "v.search_keywords")
	w.in("v.jlpt_level", f.JLPTLevels)
	if f.IsCommon != nil {
		w.add("v.is_common = ?", boolToInt(*f.IsCommon))
	}
	for _, kid := range f.ContainsKanjiIDs {
		w.add("v.id IN (SELECT vocab_id FROM vocab_kanji WHERE kanji_id = ?)", kid)
	}
	w.presence("v.description", f.Description)

	query := `SELECT ` + vocabularyColumns + ` FROM vocabulary v` + w.String() + ` ORDER BY v.id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	out, err := queryVocabulary(ctx, s.db, query, w.args...)
	return out, wrapErr("search", "vocabulary", err)
}

// UpdateVocabulary applies a partial update to a word.
func (s *Store) UpdateVocabulary(ctx context.Context, id int64, p UpdateVocabularyParams) (*Vocabulary, error) {
	if err := validateVocabularyFields(p.Kana, p.ShortMeaning, p.SearchKeywords, p.JLPTLevel, p.Description); err != nil {
		return nil, err
	}
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Word != nil {
		word, err := validate.Required("word", *p.Word)
		if err != nil {
			return nil, err
		}
		if err := validate.MaxLength("word", word, maxShortText); err != nil {
			return nil, err
		}
		set("word", word)
	}
	if p.Kana != nil {
		set("kana", nullString(p.Kana))
	}
	if p.ShortMeaning != nil {
		set("short_meaning", nullString(p.ShortMeaning))
	}
	if p.SearchKeywords != nil {
		set("search_keywords", nullString(p.SearchKeywords))
	}
	if p.JLPTLevel != nil {
		set("jlpt_level", nullString(p.JLPTLevel))
	}
	if p.IsCommon != nil {
		set("is_common", boolToInt(*p.IsCommon))
	}
	if p.Description != nil {
		set("description", nullString(p.Description))
	}
	if len(sets) > 0 {
		if err := s.updateRow(ctx, "vocabulary", "vocabulary", id, sets, args); err != nil {
			return nil, err
		}
	}
	return s.GetVocabulary(ctx, id)
}

// DeleteVocabulary removes a word and its kanji links.
func (s *Store) DeleteVocabulary(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityVocabulary, id)
}

// CountVocabulary returns the number of words.
func (s *Store) CountVocabulary(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vocabulary`).Scan(&n)
	return n, wrapErr("count", "vocabulary", err)
}

// ─── Vocabulary kanji ────────────────────────────────────────────────────────

const vocabKanjiSelect = `SELECT vk.id, vk.vocab_id, vk.kanji_id, vk.analysis_notes, vk.display_order,
		vk.created_at, vk.updated_at, k.character, k.short_meaning
	FROM vocab_kanji vk
	JOIN kanjis k ON k.id = vk.kanji_id`

func queryVocabKanji(ctx context.Context, q dbtx, where string, args ...any) ([]VocabKanji, error) {
	rows, err := q.QueryContext(ctx, vocabKanjiSelect+` `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VocabKanji
	for rows.Next() {
		var vk VocabKanji
		var notes, meaning sql.NullString
		if err := rows.Scan(&vk.ID, &vk.VocabID, &vk.KanjiID, &notes, &vk.DisplayOrder,
			&vk.CreatedAt, &vk.UpdatedAt, &vk.KanjiCharacter, &meaning); err != nil {
			return nil, err
		}
		vk.AnalysisNotes = scanNullString(notes)
		vk.KanjiShortMeaning = scanNullString(meaning)
		out = append(out, vk)
	}
	return out, rows.Err()
}

// LinkKanji appends a kanji to a word. A word may list the same kanji
// more than once (人人).
func (s *Store) LinkKanji(ctx context.Context, vocabID, kanjiID int64, notes *string, position *int) (*VocabKanji, error) {
	if err := checkText("analysis_notes", notes, maxLongText); err != nil {
		return nil, err
	}
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, "vocabulary", "vocabulary", vocabID); err != nil {
			return err
		}
		if err := ensureExists(ctx, tx, "kanjis", "kanji", kanjiID); err != nil {
			return err
		}
		var err error
		id, err = insertOrdered(ctx, tx, EntityVocabKanji, vocabID, position, func(order int) (int64, error) {
			now := Now()
			res, err := tx.ExecContext(ctx,
				`INSERT INTO vocab_kanji (vocab_id, kanji_id, analysis_notes, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				vocabID, kanjiID, nullString(notes), order, now, now)
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", "vocabulary kanji", err)
	}
	return s.GetVocabKanji(ctx, id)
}

// GetVocabKanji returns a word-kanji link by id.
func (s *Store) GetVocabKanji(ctx context.Context, id int64) (*VocabKanji, error) {
	out, err := queryVocabKanji(ctx, s.db, `WHERE vk.id = ?`, id)
	if err != nil {
		return nil, wrapErr("get", "vocabulary kanji", err)
	}
	if len(out) == 0 {
		return nil, wrapErr("get", "vocabulary kanji", notFound("vocabulary kanji", id))
	}
	return &out[0], nil
}

// ListVocabKanji returns the kanji of a word in display order.
func (s *Store) ListVocabKanji(ctx context.Context, vocabID int64) ([]VocabKanji, error) {
	out, err := queryVocabKanji(ctx, s.db, `WHERE vk.vocab_id = ? ORDER BY vk.display_order, vk.id`, vocabID)
	return out, wrapErr("list", "vocabulary kanji", err)
}

// ListVocabularyForKanji returns the words written with a kanji, by word.
func (s *Store) ListVocabularyForKanji(ctx context.Context, kanjiID int64) ([]Vocabulary, error) {
	out, err := queryVocabulary(ctx, s.db,
		`SELECT `+vocabularyColumns+` FROM vocabulary v
		 WHERE v.id IN (SELECT vocab_id FROM vocab_kanji WHERE kanji_id = ?)
		 ORDER BY v.word, v.id`, kanjiID)
	return out, wrapErr("list", "vocabulary", err)
}

// UpdateVocabKanjiNotes replaces the analysis notes of a link. nil or ""
// clears them.
func (s *Store) UpdateVocabKanjiNotes(ctx context.Context, id int64, notes *string) (*VocabKanji, error) {
	if err := checkText("analysis_notes", notes, maxLongText); err != nil {
		return nil, err
	}
	if err := s.updateRow(ctx, "vocabulary kanji", "vocab_kanji", id, []string{"analysis_notes = ?"}, []any{nullString(notes)}); err != nil {
		return nil, err
	}
	return s.GetVocabKanji(ctx, id)
}

// UnlinkKanji removes a word-kanji link and compacts the word's other links.
func (s *Store) UnlinkKanji(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityVocabKanji, id)
}
