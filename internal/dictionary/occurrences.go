package dictionary

import (
	"context"
	"database/sql"
	"errors"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// Occurrence records that a component appears in a kanji, optionally in a
// specific form and position. The character, meaning and position columns
// are joined in for display.
type Occurrence struct {
	ID                   int64   `json:"id"`
	KanjiID              int64   `json:"kanji_id"`
	ComponentID          int64   `json:"component_id"`
	ComponentFormID      *int64  `json:"component_form_id,omitempty"`
	PositionTypeID       *int64  `json:"position_type_id,omitempty"`
	IsRadical            bool    `json:"is_radical"`
	AnalysisNotes        *string `json:"analysis_notes,omitempty"`
	DisplayOrder         int     `json:"display_order"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
	KanjiCharacter       string  `json:"kanji_character"`
	KanjiShortMeaning    *string `json:"kanji_short_meaning,omitempty"`
	ComponentCharacter   string  `json:"component_character"`
	ComponentMeaning     *string `json:"component_meaning,omitempty"`
	FormCharacter        *string `json:"form_character,omitempty"`
	PositionName         *string `json:"position_name,omitempty"`
	PositionNameJapanese *string `json:"position_name_japanese,omitempty"`
}

// DisplayCharacter is the form character when one is set, otherwise the
// component character.
func (o Occurrence) DisplayCharacter() string {
	if o.FormCharacter != nil {
		return *o.FormCharacter
	}
	return o.ComponentCharacter
}

// AddOccurrenceParams holds the input for AddOccurrence.
type AddOccurrenceParams struct {
	ComponentID     int64
	ComponentFormID *int64
	PositionTypeID  *int64
	IsRadical       bool
	AnalysisNotes   *string
	Position        *int
}

// UpdateOccurrenceParams holds partial update fields for an occurrence. A
// zero form or position id clears it.
type UpdateOccurrenceParams struct {
	ComponentFormID *int64
	PositionTypeID  *int64
	IsRadical       *bool
	AnalysisNotes   *string
}

const occurrenceSelect = `SELECT o.id, o.kanji_id, o.component_id, o.component_form_id, o.position_type_id,
		o.is_radical, o.analysis_notes, o.display_order, o.created_at, o.updated_at,
		k.character, k.short_meaning, c.character, c.short_meaning, f.form_character,
		p.position_name, p.name_japanese
	FROM component_occurrences o
	JOIN kanjis k ON k.id = o.kanji_id
	JOIN components c ON c.id = o.component_id
	LEFT JOIN component_forms f ON f.id = o.component_form_id
	LEFT JOIN position_types p ON p.id = o.position_type_id`

func queryOccurrences(ctx context.Context, q dbtx, where string, args ...any) ([]Occurrence, error) {
	rows, err := q.QueryContext(ctx, occurrenceSelect+` `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Occurrence
	for rows.Next() {
		var (
			o                                   Occurrence
			formID, positionID                  sql.NullInt64
			isRadical                           int
			notes, kanjiMeaning, compMeaning    sql.NullString
			formChar, positionName, positionJap sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.KanjiID, &o.ComponentID, &formID, &positionID,
			&isRadical, &notes, &o.DisplayOrder, &o.CreatedAt, &o.UpdatedAt,
			&o.KanjiCharacter, &kanjiMeaning, &o.ComponentCharacter, &compMeaning, &formChar,
			&positionName, &positionJap); err != nil {
			return nil, err
		}
		o.ComponentFormID = scanNullInt64(formID)
		o.PositionTypeID = scanNullInt64(positionID)
		o.IsRadical = isRadical != 0
		o.AnalysisNotes = scanNullString(notes)
		o.KanjiShortMeaning = scanNullString(kanjiMeaning)
		o.ComponentMeaning = scanNullString(compMeaning)
		o.FormCharacter = scanNullString(formChar)
		o.PositionName = scanNullString(positionName)
		o.PositionNameJapanese = scanNullString(positionJap)
		out = append(out, o)
	}
	return out, rows.Err()
}

// checkOccurrenceRefs verifies the optional form belongs to the component
// and the optional position type exists.
func checkOccurrenceRefs(ctx context.Context, q dbtx, componentID int64, formID, positionID *int64) error {
	if formID != nil && *formID != 0 {
		var owner int64
		err := q.QueryRowContext(ctx, `SELECT component_id FROM component_forms WHERE id = ?`, *formID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("component form", *formID)
		}
		if err != nil {
			return err
		}
		if owner != componentID {
			return validate.Errorf("component_form_id", "form %d is not a form of component %d", *formID, componentID)
		}
	}
	if positionID != nil && *positionID != 0 {
		if err := ensureExists(ctx, q, "position_types", "position type", *positionID); err != nil {
			return err
		}
	}
	return nil
}

// AddOccurrence appends a component occurrence to a kanji.
func (s *Store) AddOccurrence(ctx context.Context, kanjiID int64, p AddOccurrenceParams) (*Occurrence, error) {
	if err := checkText("analysis_notes", p.AnalysisNotes, maxLongText); err != nil {
		return nil, err
	}

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, "kanjis", "kanji", kanjiID); err != nil {
			return err
		}
		if err := ensureExists(ctx, tx, "components", "component", p.ComponentID); err != nil {
			return err
		}
		if err := checkOccurrenceRefs(ctx, tx, p.ComponentID, p.ComponentFormID, p.PositionTypeID); err != nil {
			return err
		}
		var err error
		id, err = insertOrdered(ctx, tx, EntityOccurrence, kanjiID, p.Position, func(order int) (int64, error) {
			now := Now()
			res, err := tx.ExecContext(ctx,
				`INSERT INTO component_occurrences (kanji_id, component_id, component_form_id, position_type_id,
					is_radical, analysis_notes, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				kanjiID, p.ComponentID, nullInt64(p.ComponentFormID), nullInt64(p.PositionTypeID),
				boolToInt(p.IsRadical), nullString(p.AnalysisNotes), order, now, now)
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", "component occurrence", err)
	}
	return s.GetOccurrence(ctx, id)
}

// GetOccurrence returns an occurrence by id.
func (s *Store) GetOccurrence(ctx context.Context, id int64) (*Occurrence, error) {
	out, err := queryOccurrences(ctx, s.db, `WHERE o.id = ?`, id)
	if err != nil {
		return nil, wrapErr("get", "component occurrence", err)
	}
	if len(out) == 0 {
		return nil, wrapErr("get", "component occurrence", notFound("component occurrence", id))
	}
	return &out[0], nil
}

// ListOccurrencesForKanji returns the components of a kanji in display order.
func (s *Store) ListOccurrencesForKanji(ctx context.Context, kanjiID int64) ([]Occurrence, error) {
	out, err := queryOccurrences(ctx, s.db, `WHERE o.kanji_id = ? ORDER BY o.display_order, o.id`, kanjiID)
	return out, wrapErr("list", "component occurrence", err)
}

// ListOccurrencesForComponent returns every kanji occurrence of a
// component, ordered by kanji.
func (s *Store) ListOccurrencesForComponent(ctx context.Context, componentID int64) ([]Occurrence, error) {
	out, err := queryOccurrences(ctx, s.db, `WHERE o.component_id = ? ORDER BY k.id, o.display_order`, componentID)
	return out, wrapErr("list", "component occurrence", err)
}

// RadicalOccurrence returns the occurrence marked as the kanji's radical,
// or nil when none is marked.
func (s *Store) RadicalOccurrence(ctx context.Context, kanjiID int64) (*Occurrence, error) {
	out, err := queryOccurrences(ctx, s.db,
		`WHERE o.kanji_id = ? AND o.is_radical = 1 ORDER BY o.display_order, o.id LIMIT 1`, kanjiID)
	if err != nil {
		return nil, wrapErr("get", "component occurrence", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// UpdateOccurrence applies a partial update to an occurrence.
func (s *Store) UpdateOccurrence(ctx context.Context, id int64, p UpdateOccurrenceParams) (*Occurrence, error) {
	if err := checkText("analysis_notes", p.AnalysisNotes, maxLongText); err != nil {
		return nil, err
	}
	current, err := s.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOccurrenceRefs(ctx, s.db, current.ComponentID, p.ComponentFormID, p.PositionTypeID); err != nil {
		return nil, wrapErr("update", "component occurrence", err)
	}

	var sets []string
	var args []any
	if p.ComponentFormID != nil {
		sets = append(sets, "component_form_id = ?")
		args = append(args, nullInt64(p.ComponentFormID))
	}
	if p.PositionTypeID != nil {
		sets = append(sets, "position_type_id = ?")
		args = append(args, nullInt64(p.PositionTypeID))
	}
	if p.IsRadical != nil {
		sets = append(sets, "is_radical = ?")
		args = append(args, boolToInt(*p.IsRadical))
	}
	if p.AnalysisNotes != nil {
		sets = append(sets, "analysis_notes = ?")
		args = append(args, nullString(p.AnalysisNotes))
	}
	if len(sets) > 0 {
		if err := s.updateRow(ctx, "component occurrence", "component_occurrences", id, sets, args); err != nil {
			return nil, err
		}
	}
	return s.GetOccurrence(ctx, id)
}

// DeleteOccurrence removes an occurrence, compacting the kanji's other
// occurrences and every grouping it was a member of.
func (s *Store) DeleteOccurrence(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityOccurrence, id)
}
