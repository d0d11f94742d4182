package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// Component is a building block of kanji. Components that can act as a
// radical carry their Kangxi number (1-214).
type Component struct {
	ID                  int64   `json:"id"`
	Character           string  `json:"character"`
	StrokeCount         *int    `json:"stroke_count,omitempty"`
	ShortMeaning        *string `json:"short_meaning,omitempty"`
	SearchKeywords      *string `json:"search_keywords,omitempty"`
	SourceKanjiID       *int64  `json:"source_kanji_id,omitempty"`
	Description         *string `json:"description,omitempty"`
	CanBeRadical        bool    `json:"can_be_radical"`
	KangxiNumber        *int    `json:"kangxi_number,omitempty"`
	KangxiMeaning       *string `json:"kangxi_meaning,omitempty"`
	RadicalNameJapanese *string `json:"radical_name_japanese,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// CreateComponentParams holds the input for CreateComponent.
type CreateComponentParams struct {
	Character           string
	StrokeCount         *int
	ShortMeaning        *string
	SearchKeywords      *string
	SourceKanjiID       *int64
	Description         *string
	CanBeRadical        bool
	KangxiNumber        *int
	KangxiMeaning       *string
	RadicalNameJapanese *string
}

// UpdateComponentParams holds partial update fields for a component.
type UpdateComponentParams struct {
	Character           *string
	StrokeCount         *int
	ShortMeaning        *string
	SearchKeywords      *string
	SourceKanjiID       *int64
	Description         *string
	CanBeRadical        *bool
	KangxiNumber        *int
	KangxiMeaning       *string
	RadicalNameJapanese *string
}

// ComponentFilters narrows SearchComponents. Zero values disable a filter.
type ComponentFilters struct {
	Search         string
	KangxiSearch   string
	CanBeRadical   *bool
	KangxiNumber   *int
	StrokeCountMin *int
	StrokeCountMax *int
	Limit          int
}

const (
	minKangxiNumber = 1
	maxKangxiNumber = 214
)

const componentColumns = `c.id, c.character, c.stroke_count, c.short_meaning, c.search_keywords, c.source_kanji_id,
	c.description, c.can_be_radical, c.kangxi_number, c.kangxi_meaning, c.radical_name_japanese,
	c.created_at, c.updated_at`

func scanComponent(r rowScanner) (Component, error) {
	var (
		c                            Component
		strokes, sourceKanji, kangxi sql.NullInt64
		shortMeaning, keywords, desc sql.NullString
		kangxiMeaning, radicalName   sql.NullString
		canBeRadical                 int
	)
	err := r.Scan(&c.ID, &c.Character, &strokes, &shortMeaning, &keywords, &sourceKanji,
		&desc, &canBeRadical, &kangxi, &kangxiMeaning, &radicalName, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Component{}, err
	}
	c.StrokeCount = scanNullInt(strokes)
	c.ShortMeaning = scanNullString(shortMeaning)
	c.SearchKeywords = scanNullString(keywords)
	c.SourceKanjiID = scanNullInt64(sourceKanji)
	c.Description = scanNullString(desc)
	c.CanBeRadical = canBeRadical != 0
	c.KangxiNumber = scanNullInt(kangxi)
	c.KangxiMeaning = scanNullString(kangxiMeaning)
	c.RadicalNameJapanese = scanNullString(radicalName)
	return c, nil
}

func queryComponents(ctx context.Context, q dbtx, query string, args ...any) ([]Component, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func checkKangxiNumber(v *int) error {
	if v == nil {
		return nil
	}
	return validate.IntRange("kangxi_number", *v, minKangxiNumber, maxKangxiNumber)
}

func validateComponentFields(strokes *int, kangxi *int, texts map[string]*string) error {
	if err := firstErr(checkStrokeCount("stroke_count", strokes), checkKangxiNumber(kangxi)); err != nil {
		return err
	}
	for field, v := range texts {
		limit := maxShortText
		if field == "description" || field == "search_keywords" {
			limit = maxLongText
		}
		if err := checkText(field, v, limit); err != nil {
			return err
		}
	}
	return nil
}

// ─── Operations ──────────────────────────────────────────────────────────────

// CreateComponent inserts a component. Unlike kanji, the same character may
// be registered more than once.
func (s *Store) CreateComponent(ctx context.Context, p CreateComponentParams) (*Component, error) {
	char, err := validate.SingleCharacter("character", p.Character)
	if err != nil {
		return nil, err
	}
	if err := validateComponentFields(p.StrokeCount, p.KangxiNumber, map[string]*string{
		"short_meaning": p.ShortMeaning, "search_keywords": p.SearchKeywords, "description": p.Description,
		"kangxi_meaning": p.KangxiMeaning, "radical_name_japanese": p.RadicalNameJapanese,
	}); err != nil {
		return nil, err
	}

	now := Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO components (character, stroke_count, short_meaning, search_keywords, source_kanji_id,
			description, can_be_radical, kangxi_number, kangxi_meaning, radical_name_japanese, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		char, nullInt(p.StrokeCount), nullString(p.ShortMeaning), nullString(p.SearchKeywords), nullInt64(p.SourceKanjiID),
		nullString(p.Description), boolToInt(p.CanBeRadical), nullInt(p.KangxiNumber), nullString(p.KangxiMeaning),
		nullString(p.RadicalNameJapanese), now, now,
	)
	if isForeignKeyViolation(err) {
		return nil, wrapErr("create", "component", notFound("source kanji", derefInt64(p.SourceKanjiID)))
	}
	if err != nil {
		return nil, wrapErr("create", "component", err)
	}
	id, _ := res.LastInsertId()
	return s.GetComponent(ctx, id)
}

// GetComponent returns a component by id.
func (s *Store) GetComponent(ctx context.Context, id int64) (*Component, error) {
	c, err := scanComponent(s.db.QueryRowContext(ctx, `SELECT `+componentColumns+` FROM components c WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrapErr("get", "component", notFound("component", id))
	}
	if err != nil {
		return nil, wrapErr("get", "component", err)
	}
	return &c, nil
}

// GetComponentByCharacter returns the oldest component for a character.
func (s *Store) GetComponentByCharacter(ctx context.Context, character string) (*Component, error) {
	char, err := validate.SingleCharacter("character", character)
	if err != nil {
		return nil, err
	}
	c, err := scanComponent(s.db.QueryRowContext(ctx,
		`SELECT `+componentColumns+` FROM components c WHERE c.character = ? ORDER BY c.id LIMIT 1`, char))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrapErr("get", "component", &NotFoundError{Entity: "component", Key: char})
	}
	if err != nil {
		return nil, wrapErr("get", "component", err)
	}
	return &c, nil
}

// GetComponentByKangxiNumber returns the radical with the given Kangxi number.
func (s *Store) GetComponentByKangxiNumber(ctx context.Context, number int) (*Component, error) {
	if err := validate.IntRange("kangxi_number", number, minKangxiNumber, maxKangxiNumber); err != nil {
		return nil, err
	}
	c, err := scanComponent(s.db.QueryRowContext(ctx,
		`SELECT `+componentColumns+` FROM components c WHERE c.kangxi_number = ? ORDER BY c.id LIMIT 1`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrapErr("get", "component", &NotFoundError{Entity: "radical", Key: "kangxi " + strconv.Itoa(number)})
	}
	if err != nil {
		return nil, wrapErr("get", "component", err)
	}
	return &c, nil
}

// ListComponents returns every component, newest first.
func (s *Store) ListComponents(ctx context.Context) ([]Component, error) {
	out, err := queryComponents(ctx, s.db, `SELECT `+componentColumns+` FROM components c ORDER BY c.id DESC`)
	return out, wrapErr("list", "component", err)
}

// ListRadicals returns the components that can be a radical, by Kangxi number.
func (s *Store) ListRadicals(ctx context.Context) ([]Component, error) {
	out, err := queryComponents(ctx, s.db,
		`SELECT `+componentColumns+` FROM components c WHERE c.can_be_radical = 1
		 ORDER BY c.kangxi_number IS NULL, c.kangxi_number, c.id`)
	return out, wrapErr("list", "radical", err)
}

// SearchComponents returns the components matching every enabled filter,
// newest first.
func (s *Store) SearchComponents(ctx context.Context, f ComponentFilters) ([]Component, error) {
	var w whereClause
	w.like(validate.FoldQuery(f.Search), "c.character", "c.short_meaning", "c.search_keywords")
	if q := validate.FoldQuery(f.KangxiSearch); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			w.add("(c.kangxi_number = ? OR c.kangxi_meaning LIKE ?)", n, "%"+q+"%")
		} else {
			w.add("c.kangxi_meaning LIKE ?", "%"+q+"%")
		}
	}
	if f.CanBeRadical != nil {
		w.add("c.can_be_radical = ?", boolToInt(*f.CanBeRadical))
	}
	if f.KangxiNumber != nil {
		w.add("c.kangxi_number = ?", *f.KangxiNumber)
	}
	if f.StrokeCountMin != nil {
		w.add("c.stroke_count >= ?", *f.StrokeCountMin)
	}
	if f.StrokeCountMax != nil {
		w.add("c.stroke_count <= ?", *f.StrokeCountMax)
	}

	query := `SELECT ` + componentColumns + ` FROM components c` + w.String() + ` ORDER BY c.id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	out, err := queryComponents(ctx, s.db, query, w.args...)
	return out, wrapErr("search", "component", err)
}

// UpdateComponent applies a partial update and returns the updated component.
func (s *Store) UpdateComponent(ctx context.Context, id int64, p UpdateComponentParams) (*Component, error) {
	if err := validateComponentFields(p.StrokeCount, p.KangxiNumber, map[string]*string{
		"short_meaning": p.ShortMeaning, "search_keywords": p.SearchKeywords, "description": p.Description,
		"kangxi_meaning": p.KangxiMeaning, "radical_name_japanese": p.RadicalNameJapanese,
	}); err != nil {
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
	if p.SourceKanjiID != nil {
		set("source_kanji_id", nullInt64(p.SourceKanjiID))
	}
	if p.Description != nil {
		set("description", nullString(p.Description))
	}
	if p.CanBeRadical != nil {
		set("can_be_radical", boolToInt(*p.CanBeRadical))
	}
	if p.KangxiNumber != nil {
		set("kangxi_number", *p.KangxiNumber)
	}
	if p.KangxiMeaning != nil {
		set("kangxi_meaning", nullString(p.KangxiMeaning))
	}
	if p.RadicalNameJapanese != nil {
		set("radical_name_japanese", nullString(p.RadicalNameJapanese))
	}

	if len(sets) > 0 {
		if err := s.updateRow(ctx, "component", "components", id, sets, args); err != nil {
			return nil, err
		}
	}
	return s.GetComponent(ctx, id)
}

// DeleteComponent removes a component with its forms, groupings and every
// occurrence of it in kanji.
func (s *Store) DeleteComponent(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityComponent, id)
}

// CountComponents returns the number of components.
func (s *Store) CountComponents(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM components`).Scan(&n)
	return n, wrapErr("count", "component", err)
}

// FormCounts maps component id to its number of forms. Components without
// forms are absent.
func (s *Store) FormCounts(ctx context.Context) (map[int64]int, error) {
	out, err := countBy(ctx, s.db, `SELECT component_id, COUNT(*) FROM component_forms GROUP BY component_id`)
	return out, wrapErr("count", "component form", err)
}

// GroupingCounts maps component id to its number of groupings.
func (s *Store) GroupingCounts(ctx context.Context) (map[int64]int, error) {
	out, err := countBy(ctx, s.db, `SELECT component_id, COUNT(*) FROM component_groupings GROUP BY component_id`)
	return out, wrapErr("count", "component grouping", err)
}

func countBy(ctx context.Context, q dbtx, query string, args ...any) (map[int64]int, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// FormatKangxi renders a radical as "#85 水 (water)".
func FormatKangxi(c Component) string {
	var b strings.Builder
	if c.KangxiNumber != nil {
		fmt.Fprintf(&b, "#%d ", *c.KangxiNumber)
	}
	b.WriteString(c.Character)
	if c.KangxiMeaning != nil {
		fmt.Fprintf(&b, " (%s)", *c.KangxiMeaning)
	}
	return b.String()
}
