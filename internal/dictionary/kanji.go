package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Kanji is the primary study entity.
type Kanji struct {
	ID                      int64   `json:"id"`
	Character               string  `json:"character"`
	StrokeCount             *int    `json:"stroke_count,omitempty"`
	ShortMeaning            *string `json:"short_meaning,omitempty"`
	SearchKeywords          *string `json:"search_keywords,omitempty"`
	RadicalID               *int64  `json:"radical_id,omitempty"`
	JLPTLevel               *string `json:"jlpt_level,omitempty"`
	JoyoLevel               *string `json:"joyo_level,omitempty"`
	KenteiLevel             *string `json:"kentei_level,omitempty"`
	StrokeDiagramImage      []byte  `json:"-"`
	StrokeGIFImage          []byte  `json:"-"`
	NotesEtymology          *string `json:"notes_etymology,omitempty"`
	NotesSemantic           *string `json:"notes_semantic,omitempty"`
	NotesEducationMnemonics *string `json:"notes_education_mnemonics,omitempty"`
	NotesPersonal           *string `json:"notes_personal,omitempty"`
	Identifier              *int    `json:"identifier,omitempty"`
	RadicalStrokeCount      *int    `json:"radical_stroke_count,omitempty"`
	CreatedAt               string  `json:"created_at"`
	UpdatedAt               string  `json:"updated_at"`
}

// HasStrokeDiagram reports whether a stroke order diagram is stored.
func (k Kanji) HasStrokeDiagram() bool { return len(k.StrokeDiagramImage) > 0 }

// HasStrokeAnimation reports whether a stroke order animation is stored.
func (k Kanji) HasStrokeAnimation() bool { return len(k.StrokeGIFImage) > 0 }

// CreateKanjiParams holds the input for creating a kanji. Character is
// required; everything else may be left nil.
type CreateKanjiParams struct {
	Character               string
	StrokeCount             *int
	ShortMeaning            *string
	SearchKeywords          *string
	RadicalID               *int64
	JLPTLevel               *string
	JoyoLevel               *string
	KenteiLevel             *string
	StrokeDiagramImage      []byte
	StrokeGIFImage          []byte
	NotesEtymology          *string
	NotesSemantic           *string
	NotesEducationMnemonics *string
	NotesPersonal           *string
	Identifier              *int
	RadicalStrokeCount      *int
}

// UpdateKanjiParams holds partial update fields. Nil fields are left
// alone; an empty string clears a text field.
type UpdateKanjiParams struct {
	Character               *string
	StrokeCount             *int
	ShortMeaning            *string
	SearchKeywords          *string
	RadicalID               *int64
	JLPTLevel               *string
	JoyoLevel               *string
	KenteiLevel             *string
	StrokeDiagramImage      []byte
	StrokeGIFImage          []byte
	NotesEtymology          *string
	NotesSemantic           *string
	NotesEducationMnemonics *string
	NotesPersonal           *string
	Identifier              *int
	RadicalStrokeCount      *int
}

const kanjiColumns = `k.id, k.character, k.stroke_count, k.short_meaning, k.search_keywords, k.radical_id,
	k.jlpt_level, k.joyo_level, k.kanji_kentei_level, k.stroke_diagram_image, k.stroke_gif_image,
	k.notes_etymology, k.notes_semantic, k.notes_education_mnemonics, k.notes_personal,
	k.identifier, k.radical_stroke_count, k.created_at, k.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKanji(r rowScanner) (Kanji, error) {
	var (
		k                                              Kanji
		strokes, radicalID, identifier, radicalStrokes sql.NullInt64
		shortMeaning, keywords, jlpt, joyo, kentei     sql.NullString
		etymology, semantic, mnemonics, personal       sql.NullString
	)
	err := r.Scan(&k.ID, &k.Character, &strokes, &shortMeaning, &keywords, &radicalID,
		&jlpt, &joyo, &kentei, &k.StrokeDiagramImage, &k.StrokeGIFImage,
		&etymology, &semantic, &mnemonics, &personal,
		&identifier, &radicalStrokes, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		return Kanji{}, err
	}
	k.StrokeCount = scanNullInt(strokes)
	k.ShortMeaning = scanNullString(shortMeaning)
	k.SearchKeywords = scanNullString(keywords)
	k.RadicalID = scanNullInt64(radicalID)
	k.JLPTLevel = scanNullString(jlpt)
	k.JoyoLevel = scanNullString(joyo)
	k.KenteiLevel = scanNullString(kentei)
	k.NotesEtymology = scanNullString(etymology)
	k.NotesSemantic = scanNullString(semantic)
	k.NotesEducationMnemonics = scanNullString(mnemonics)
	k.NotesPersonal = scanNullString(personal)
	k.Identifier = scanNullInt(identifier)
	k.RadicalStrokeCount = scanNullInt(radicalStrokes)
	return k, nil
}

func (s *Store) queryKanji(ctx context.Context, q dbtx, query string, args ...any) ([]Kanji, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Kanji
	for rows.Next() {
		k, err := scanKanji(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// ─── Validation ──────────────────────────────────────────────────────────────

func normalizeKentei(v *string) *string {
	if v == nil {
		return nil
	}
	n := NormalizeKenteiLevel(*v)
	return &n
}

func validateKanjiFields(strokes *int, shortMeaning, keywords, jlpt, joyo, kentei *string, notes ...*string) error {
	err := firstErr(
		checkStrokeCount("stroke_count", strokes),
		checkText("short_meaning", shortMeaning, maxShortText),
		checkText("search_keywords", keywords, maxLongText),
		checkLevel("jlpt_level", jlpt, JLPTLevels),
		checkLevel("joyo_level", joyo, JoyoLevels),
		checkLevel("kentei_level", kentei, KenteiLevels),
	)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if err := checkText("notes", n, maxLongText); err != nil {
			return err
		}
	}
	return nil
}

// ─── Operations ──────────────────────────────────────────────────────────────

// CreateKanji inserts a kanji. The character must be a single character
// not already in the dictionary.
func (s *Store) CreateKanji(ctx context.Context, p CreateKanjiParams) (*Kanji, error) {
	char, err := validate.SingleCharacter("character", p.Character)
	if err != nil {
		return nil, err
	}
	p.KenteiLevel = normalizeKentei(p.KenteiLevel)
	if err := validateKanjiFields(p.StrokeCount, p.ShortMeaning, p.SearchKeywords, p.JLPTLevel, p.JoyoLevel, p.KenteiLevel,
		p.NotesEtymology, p.NotesSemantic, p.NotesEducationMnemonics, p.NotesPersonal); err != nil {
		return nil, err
	}

	now := Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO kanjis (character, stroke_count, short_meaning, search_keywords, radical_id,
			jlpt_level, joyo_level, kanji_kentei_level, stroke_diagram_image, stroke_gif_image,
			notes_etymology, notes_semantic, notes_education_mnemonics, notes_personal,
			identifier, radical_stroke_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		char, nullInt(p.StrokeCount), nullString(p.ShortMeaning), nullString(p.SearchKeywords), nullInt64(p.RadicalID),
		nullString(p.JLPTLevel), nullString(p.JoyoLevel), nullString(p.KenteiLevel), nullBlob(p.StrokeDiagramImage), nullBlob(p.StrokeGIFImage),
		nullString(p.NotesEtymology), nullString(p.NotesSemantic), nullString(p.NotesEducationMnemonics), nullString(p.NotesPersonal),
		nullInt(p.Identifier), nullInt(p.RadicalStrokeCount), now, now,
	)
	if isUniqueViolation(err) {
		return nil, wrapErr("create", "kanji", fmt.Errorf("%w: kanji %q", ErrDuplicate, char))
	}
	if isForeignKeyViolation(err) {
		return nil, wrapErr("create", "kanji", notFound("radical component", derefInt64(p.RadicalID)))
	}
	if err != nil {
		return nil, wrapErr("create", "kanji", err)
	}
	id, _ := res.LastInsertId()
	return s.GetKanji(ctx, id)
}

// GetKanji returns a kanji by id.
func (s *Store) GetKanji(ctx context.Context, id int64) (*Kanji, error) {
	k, err := scanKanji(s.db.QueryRowContext(ctx, `SELECT `+kanjiColumns+` FROM kanjis k WHERE k.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrapErr("get", "kanji", notFound("kanji", id))
	}
	if err != nil {
		return nil, wrapErr("get", "kanji", err)
	}
	return &k, nil
}

// GetKanjiByCharacter returns the kanji for a character.
func (s *Store) GetKanjiByCharacter(ctx context.Context, character string) (*Kanji, error) {
	char, err := validate.SingleCharacter("character", character)
	if err != nil {
		return nil, err
	}
	k, err := scanKanji(s.db.QueryRowContext(ctx, `SELECT `+kanjiColumns+` FROM kanjis k WHERE k.character = ?`, char))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrapErr("get", "kanji", &NotFoundError{Entity: "kanji", Key: char})
	}
	if err != nil {
		return nil, wrapErr("get", "kanji", err)
	}
	return &k, nil
}

// GetKanjiByIDs returns the kanji with the given ids, ordered by id.
// Unknown ids are skipped.
func (s *Store) GetKanjiByIDs(ctx context.Context, ids []int64) ([]Kanji, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out, err := s.queryKanji(ctx, s.db,
		`SELECT `+kanjiColumns+` FROM kanjis k WHERE k.id IN (`+placeholders(len(ids))+`) ORDER BY k.id`,
		int64Args(ids)...)
	return out, wrapErr("list", "kanji", err)
}

// ListKanji returns every kanji, newest first.
func (s *Store) ListKanji(ctx context.Context) ([]Kanji, error) {
	out, err := s.queryKanji(ctx, s.db, `SELECT `+kanjiColumns+` FROM kanjis k ORDER BY k.id DESC`)
	return out, wrapErr("list", "kanji", err)
}

// CountKanji returns the number of kanji.
func (s *Store) CountKanji(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kanjis`).Scan(&n)
	return n, wrapErr("count", "kanji", err)
}

// UpdateKanji applies a partial update and returns the updated kanji.
func (s *Store) UpdateKanji(ctx context.Context, id int64, p UpdateKanjiParams) (*Kanji, error) {
	p.KenteiLevel = normalizeKentei(p.KenteiLevel)
	if err := validateKanjiFields(p.StrokeCount, p.ShortMeaning, p.SearchKeywords, p.JLPTLevel, p.JoyoLevel, p.KenteiLevel,
		p.NotesEtymology, p.NotesSemantic, p.NotesEducationMnemonics, p.NotesPersonal); err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Character != nil {
		char, err := validate.SingleCharacter("character", *p.Character)
		if err != nil {
			return nil, err
		}
		set("character", char)
	}
	if p.StrokeCount != nil {
		set("stroke_count", *p.StrokeCount)
	}
	if p.ShortMeaning != nil {
		set("short_meaning", nullString(p.ShortMeaning))
	}
	if p.SearchKeywords != nil {
		set("search_keywords", nullString(p.SearchKeywords))
	}
	if p.RadicalID != nil {
		set("radical_id", nullInt64(p.RadicalID))
	}
	if p.JLPTLevel != nil {
		set("jlpt_level", nullString(p.JLPTLevel))
	}
	if p.JoyoLevel != nil {
		set("joyo_level", nullString(p.JoyoLevel))
	}
	if p.KenteiLevel != nil {
		set("kanji_kentei_level", nullString(p.KenteiLevel))
	}
	if p.StrokeDiagramImage != nil {
		set("stroke_diagram_image", nullBlob(p.StrokeDiagramImage))
	}
	if p.StrokeGIFImage != nil {
		set("stroke_gif_image", nullBlob(p.StrokeGIFImage))
	}
	if p.NotesEtymology != nil {
		set("notes_etymology", nullString(p.NotesEtymology))
	}
	if p.NotesSemantic != nil {
		set("notes_semantic", nullString(p.NotesSemantic))
	}
	if p.NotesEducationMnemonics != nil {
		set("notes_education_mnemonics", nullString(p.NotesEducationMnemonics))
	}
	if p.NotesPersonal != nil {
		set("notes_personal", nullString(p.NotesPersonal))
	}
	if p.Identifier != nil {
		set("identifier", *p.Identifier)
	}
	if p.RadicalStrokeCount != nil {
		set("radical_stroke_count", *p.RadicalStrokeCount)
	}

	if len(sets) == 0 {
		return s.GetKanji(ctx, id)
	}
	if err := s.updateRow(ctx, "kanji", "kanjis", id, sets, args); err != nil {
		return nil, err
	}
	return s.GetKanji(ctx, id)
}

// updateRow runs UPDATE table SET sets..., updated_at WHERE id and maps the
// usual constraint failures.
func (s *Store) updateRow(ctx context.Context, entity, table string, id int64, sets []string, args []any) error {
	sets = append(sets, "updated_at = ?")
	args = append(args, Now(), id)
	res, err := s.db.ExecContext(ctx, `UPDATE `+table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if isUniqueViolation(err) {
		return wrapErr("update", entity, fmt.Errorf("%w: %v", ErrDuplicate, err))
	}
	if isForeignKeyViolation(err) {
		return wrapErr("update", entity, validate.Errorf("reference", "points to a row that does not exist"))
	}
	if err != nil {
		return wrapErr("update", entity, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrapErr("update", entity, notFound(entity, id))
	}
	return nil
}

// kanjiFields maps field names accepted by UpdateKanjiField (camelCase or
// snake_case, case-insensitive) to columns and their kind.
var kanjiFields = map[string]struct {
	column string
	kind   fieldKind
}{
	"character":               {"character", fieldCharacter},
	"strokecount":             {"stroke_count", fieldStrokeCount},
	"shortmeaning":            {"short_meaning", fieldShortText},
	"searchkeywords":          {"search_keywords", fieldLongText},
	"radicalid":               {"radical_id", fieldReference},
	"jlptlevel":               {"jlpt_level", fieldJLPT},
	"joyolevel":               {"joyo_level", fieldJoyo},
	"kenteilevel":             {"kanji_kentei_level", fieldKentei},
	"kanjikenteilevel":        {"kanji_kentei_level", fieldKentei},
	"strokediagramimage":      {"stroke_diagram_image", fieldBlob},
	"strokegifimage":          {"stroke_gif_image", fieldBlob},
	"notesetymology":          {"notes_etymology", fieldLongText},
	"notessemantic":           {"notes_semantic", fieldLongText},
	"noteseducationmnemonics": {"notes_education_mnemonics", fieldLongText},
	"notespersonal":           {"notes_personal", fieldLongText},
	"identifier":              {"identifier", fieldInt},
	"radicalstrokecount":      {"radical_stroke_count", fieldInt},
}

type fieldKind int

const (
	fieldShortText fieldKind = iota
	fieldLongText
	fieldCharacter
	fieldStrokeCount
	fieldInt
	fieldReference
	fieldJLPT
	fieldJoyo
	fieldKentei
	fieldBlob
)

// KanjiFieldNames lists the field names UpdateKanjiField accepts.
func KanjiFieldNames() []string {
	return []string{
		"character", "strokeCount", "shortMeaning", "searchKeywords", "radicalId",
		"jlptLevel", "joyoLevel", "kenteiLevel", "strokeDiagramImage", "strokeGifImage",
		"notesEtymology", "notesSemantic", "notesEducationMnemonics", "notesPersonal",
		"identifier", "radicalStrokeCount",
	}
}

// UpdateKanjiField sets a single field. A nil value clears it (except the
// character, which is required). Numbers may arrive as int, int64 or
// float64; images as []byte.
func (s *Store) UpdateKanjiField(ctx context.Context, id int64, field string, value any) (*Kanji, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(field), "_", ""))
	f, ok := kanjiFields[key]
	if !ok {
		return nil, validate.Errorf("field", "unknown kanji field %q", field)
	}

	v, err := coerceField(f.column, f.kind, value)
	if err != nil {
		return nil, err
	}
	if err := s.updateRow(ctx, "kanji", "kanjis", id, []string{f.column + " = ?"}, []any{v}); err != nil {
		return nil, err
	}
	return s.GetKanji(ctx, id)
}

func coerceField(col string, kind fieldKind, value any) (any, error) {
	if value == nil {
		if kind == fieldCharacter {
			return nil, validate.Errorf(col, "is required")
		}
		return nil, nil
	}

	switch kind {
	case fieldBlob:
		b, ok := value.([]byte)
		if !ok {
			return nil, validate.Errorf(col, "must be binary data")
		}
		return nullBlob(b), nil
	case fieldStrokeCount, fieldInt, fieldReference:
		n, ok := toInt(value)
		if !ok {
			return nil, validate.Errorf(col, "must be a whole number")
		}
		if kind == fieldStrokeCount {
			if err := validate.IntRange(col, n, minStrokeCount, maxStrokeCount); err != nil {
				return nil, err
			}
		}
		if kind == fieldReference && n == 0 {
			return nil, nil
		}
		return n, nil
	}

	str, ok := value.(string)
	if !ok {
		return nil, validate.Errorf(col, "must be text")
	}
	switch kind {
	case fieldCharacter:
		return validate.SingleCharacter(col, str)
	case fieldJLPT:
		return levelValue(col, str, JLPTLevels)
	case fieldJoyo:
		return levelValue(col, str, JoyoLevels)
	case fieldKentei:
		return levelValue(col, NormalizeKenteiLevel(str), KenteiLevels)
	case fieldShortText:
		if err := validate.MaxLength(col, str, maxShortText); err != nil {
			return nil, err
		}
	default:
		if err := validate.MaxLength(col, str, maxLongText); err != nil {
			return nil, err
		}
	}
	return nullString(&str), nil
}

func levelValue(col, v string, allowed []string) (any, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if err := validate.OneOf(col, v, allowed); err != nil {
		return nil, err
	}
	return v, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func nullBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// DeleteKanji removes a kanji and everything attached to it.
func (s *Store) DeleteKanji(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityKanji, id)
}

// ─── Search ──────────────────────────────────────────────────────────────────

// KanjiFilters narrows SearchKanji. Zero values disable a filter; all
// enabled filters must hold.
type KanjiFilters struct {
	Search                string
	Character             string
	SearchKeywords        string
	Meanings              string
	OnYomi                string
	KunYomi               string
	StrokeCountMin        *int
	StrokeCountMax        *int
	JLPTLevels            []string
	JoyoLevels            []string
	KenteiLevels          []string
	RadicalID             *int64
	ComponentIDs          []int64
	ClassificationTypeIDs []int64
	StrokeDiagram         Presence
	StrokeAnimation       Presence
	NotesEtymology        TextLength
	NotesSemantic         TextLength
	NotesMnemonics        TextLength
	NotesPersonal         TextLength
	Limit                 int
}

// KanjiSortField names a sortable kanji column.
type KanjiSortField string

const (
	SortCharacter   KanjiSortField = "character"
	SortStrokeCount KanjiSortField = "strokeCount"
	SortJLPTLevel   KanjiSortField = "jlptLevel"
	SortJoyoLevel   KanjiSortField = "joyoLevel"
	SortIdentifier  KanjiSortField = "identifier"
	SortCreatedAt   KanjiSortField = "createdAt"
	SortUpdatedAt   KanjiSortField = "updatedAt"
)

// KanjiSort orders SearchKanji results. The zero value sorts by creation
// time, newest first.
type KanjiSort struct {
	Field KanjiSortField
	Asc   bool
}

// Level columns sort by difficulty rather than alphabetically; NULLs go last.
var kanjiSortExpr = map[KanjiSortField]string{
	SortCharacter:   "k.character",
	SortStrokeCount: "k.stroke_count",
	SortJLPTLevel:   "CASE k.jlpt_level WHEN 'N5' THEN 1 WHEN 'N4' THEN 2 WHEN 'N3' THEN 3 WHEN 'N2' THEN 4 WHEN 'N1' THEN 5 WHEN 'non-jlpt' THEN 6 END",
	SortJoyoLevel:   "CASE k.joyo_level WHEN 'elementary1' THEN 1 WHEN 'elementary2' THEN 2 WHEN 'elementary3' THEN 3 WHEN 'elementary4' THEN 4 WHEN 'elementary5' THEN 5 WHEN 'elementary6' THEN 6 WHEN 'secondary' THEN 7 WHEN 'non-joyo' THEN 8 END",
	SortIdentifier:  "k.identifier",
	SortCreatedAt:   "k.created_at",
	SortUpdatedAt:   "k.updated_at",
}

// ParseKanjiSortField validates a sort field coming from user input.
func ParseKanjiSortField(s string) (KanjiSortField, error) {
	if s == "" {
		return SortCreatedAt, nil
	}
	for f := range kanjiSortExpr {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", validate.Errorf("sort", "unknown sort field %q", s)
}

func (f KanjiFilters) validate() error {
	err := firstErr(
		validate.AllOf("jlpt_levels", f.JLPTLevels, JLPTLevels),
		validate.AllOf("joyo_levels", f.JoyoLevels, JoyoLevels),
		validate.AllOf("kentei_levels", f.KenteiLevels, KenteiLevels),
	)
	if err != nil {
		return err
	}
	for field, p := range map[string]Presence{"stroke_diagram": f.StrokeDiagram, "stroke_animation": f.StrokeAnimation} {
		if p != "" && p != Has && p != Missing {
			return validate.Errorf(field, "must be has or missing, got %q", p)
		}
	}
	for field, l := range map[string]TextLength{
		"notes_etymology": f.NotesEtymology, "notes_semantic": f.NotesSemantic,
		"notes_mnemonics": f.NotesMnemonics, "notes_personal": f.NotesPersonal,
	} {
		switch l {
		case "", TextEmpty, TextShort, TextMedium, TextLong:
		default:
			return validate.Errorf(field, "must be empty, short, medium or long, got %q", l)
		}
	}
	return nil
}

// SearchKanji returns the kanji matching every enabled filter.
func (s *Store) SearchKanji(ctx context.Context, f KanjiFilters, sort KanjiSort) ([]Kanji, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	var w whereClause
	w.like(validate.FoldQuery(f.Search), "k.character", "k.short_meaning", "k.search_keywords")
	if c := strings.TrimSpace(f.Character); c != "" {
		w.add("k.character = ?", c)
	}
	w.like(validate.FoldQuery(f.SearchKeywords), "k.short_meaning", "k.search_keywords")
	if m := validate.FoldQuery(f.Meanings); m != "" {
		w.add("k.id IN (SELECT kanji_id FROM kanji_meanings WHERE meaning_text LIKE ?)", "%"+m+"%")
	}
	if on := validate.FoldQuery(f.OnYomi); on != "" {
		w.add("k.id IN (SELECT kanji_id FROM on_readings WHERE reading LIKE ?)", "%"+on+"%")
	}
	if kun := validate.FoldQuery(f.KunYomi); kun != "" {
		w.add("k.id IN (SELECT kanji_id FROM kun_readings WHERE reading || COALESCE(okurigana, '') LIKE ?)", "%"+kun+"%")
	}
	if f.StrokeCountMin != nil {
		w.add("k.stroke_count >= ?", *f.StrokeCountMin)
	}
	if f.StrokeCountMax != nil {
		w.add("k.stroke_count <= ?", *f.StrokeCountMax)
	}
	w.in("k.jlpt_level", f.JLPTLevels)
	w.in("k.joyo_level", f.JoyoLevels)
	w.in("k.kanji_kentei_level", f.KenteiLevels)
	if f.RadicalID != nil {
		w.add("k.radical_id = ?", *f.RadicalID)
	}
	for _, cid := range f.ComponentIDs {
		w.add("k.id IN (SELECT kanji_id FROM component_occurrences WHERE component_id = ?)", cid)
	}
	for _, tid := range f.ClassificationTypeIDs {
		w.add("k.id IN (SELECT kanji_id FROM kanji_classifications WHERE classification_type_id = ?)", tid)
	}
	w.presence("k.stroke_diagram_image", f.StrokeDiagram)
	w.presence("k.stroke_gif_image", f.StrokeAnimation)
	w.textLength("k.notes_etymology", f.NotesEtymology)
	w.textLength("k.notes_semantic", f.NotesSemantic)
	w.textLength("k.notes_education_mnemonics", f.NotesMnemonics)
	w.textLength("k.notes_personal", f.NotesPersonal)

	field := sort.Field
	if field == "" {
		field = SortCreatedAt
	}
	expr, ok := kanjiSortExpr[field]
	if !ok {
		return nil, validate.Errorf("sort", "unknown sort field %q", field)
	}
	dir := "DESC"
	if sort.Asc {
		dir = "ASC"
	}

	query := `SELECT ` + kanjiColumns + ` FROM kanjis k` + w.String() +
		` ORDER BY (` + expr + `) IS NULL, ` + expr + ` ` + dir + `, k.id ` + dir
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	out, err := s.queryKanji(ctx, s.db, query, w.args...)
	return out, wrapErr("search", "kanji", err)
}
