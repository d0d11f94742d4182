package dictionary

import (
	"context"
	"database/sql"
	"strings"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ReadingKind selects between on'yomi and kun'yomi.
type ReadingKind string

const (
	OnReading  ReadingKind = "on"
	KunReading ReadingKind = "kun"
)

// ParseReadingKind validates a reading kind coming from user input.
func ParseReadingKind(s string) (ReadingKind, error) {
	switch k := ReadingKind(strings.ToLower(strings.TrimSpace(s))); k {
	case OnReading, KunReading:
		return k, nil
	default:
		return "", validate.Errorf("kind", "must be on or kun, got %q", s)
	}
}

func (k ReadingKind) entity() Entity {
	if k == KunReading {
		return EntityKunReading
	}
	return EntityOnReading
}

func (k ReadingKind) table() string {
	return entities[k.entity()].table
}

// Reading is one on or kun reading of a kanji. Okurigana is only set on
// kun readings.
type Reading struct {
	ID           int64       `json:"id"`
	KanjiID      int64       `json:"kanji_id"`
	Kind         ReadingKind `json:"kind"`
	Reading      string      `json:"reading"`
	Okurigana    *string     `json:"okurigana,omitempty"`
	ReadingLevel string      `json:"reading_level"`
	DisplayOrder int         `json:"display_order"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
}

// Full returns the reading with its okurigana, e.g. "たか.い" -> "たかい".
func (r Reading) Full() string {
	return r.Reading + derefString(r.Okurigana)
}

// AddReadingParams holds the input for AddReading. An empty ReadingLevel
// defaults to 小.
type AddReadingParams struct {
	Reading      string
	Okurigana    *string
	ReadingLevel string
	Position     *int
}

// UpdateReadingParams holds partial update fields for a reading.
type UpdateReadingParams struct {
	Reading      *string
	Okurigana    *string
	ReadingLevel *string
}

func (k ReadingKind) columns() string {
	if k == KunReading {
		return `id, kanji_id, reading, okurigana, reading_level, display_order, created_at, updated_at`
	}
	return `id, kanji_id, reading, NULL, reading_level, display_order, created_at, updated_at`
}

func queryReadings(ctx context.Context, q dbtx, kind ReadingKind, where string, args ...any) ([]Reading, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+kind.columns()+` FROM `+kind.table()+` `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		r := Reading{Kind: kind}
		var okurigana sql.NullString
		if err := rows.Scan(&r.ID, &r.KanjiID, &r.Reading, &okurigana, &r.ReadingLevel, &r.DisplayOrder, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		r.Okurigana = scanNullString(okurigana)
		out = append(out, r)
	}
	return out, rows.Err()
}

func checkOkurigana(kind ReadingKind, v *string) error {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	if kind != KunReading {
		return validate.Errorf("okurigana", "only kun readings carry okurigana")
	}
	return validate.MaxLength("okurigana", *v, maxCharacterField)
}

// AddReading appends an on or kun reading to a kanji.
func (s *Store) AddReading(ctx context.Context, kind ReadingKind, kanjiID int64, p AddReadingParams) (*Reading, error) {
	reading, err := validate.Required("reading", p.Reading)
	if err != nil {
		return nil, err
	}
	level := strings.TrimSpace(p.ReadingLevel)
	if level == "" {
		level = ReadingLevels[0]
	}
	if err := firstErr(
		validate.MaxLength("reading", reading, maxShortText),
		validate.OneOf("reading_level", level, ReadingLevels),
		checkOkurigana(kind, p.Okurigana),
	); err != nil {
		return nil, err
	}

	label := entities[kind.entity()].label
	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, "kanjis", "kanji", kanjiID); err != nil {
			return err
		}
		id, err = insertOrdered(ctx, tx, kind.entity(), kanjiID, p.Position, func(order int) (int64, error) {
			now := Now()
			var res sql.Result
			var err error
			if kind == KunReading {
				res, err = tx.ExecContext(ctx,
					`INSERT INTO kun_readings (kanji_id, reading, okurigana, reading_level, display_order, created_at, updated_at)
					 VALUES (?, ?, ?, ?, ?, ?, ?)`,
					kanjiID, reading, nullString(p.Okurigana), level, order, now, now)
			} else {
				res, err = tx.ExecContext(ctx,
					`INSERT INTO on_readings (kanji_id, reading, reading_level, display_order, created_at, updated_at)
					 VALUES (?, ?, ?, ?, ?, ?)`,
					kanjiID, reading, level, order, now, now)
			}
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", label, err)
	}
	return s.GetReading(ctx, kind, id)
}

// GetReading returns a reading by id.
func (s *Store) GetReading(ctx context.Context, kind ReadingKind, id int64) (*Reading, error) {
	label := entities[kind.entity()].label
	out, err := queryReadings(ctx, s.db, kind, `WHERE id = ?`, id)
	if err != nil {
		return nil, wrapErr("get", label, err)
	}
	if len(out) == 0 {
		return nil, wrapErr("get", label, notFound(label, id))
	}
	return &out[0], nil
}

// ListReadings returns the readings of one kind for a kanji in display order.
func (s *Store) ListReadings(ctx context.Context, kind ReadingKind, kanjiID int64) ([]Reading, error) {
	out, err := queryReadings(ctx, s.db, kind, `WHERE kanji_id = ? ORDER BY display_order, id`, kanjiID)
	return out, wrapErr("list", entities[kind.entity()].label, err)
}

// UpdateReading applies a partial update to a reading.
func (s *Store) UpdateReading(ctx context.Context, kind ReadingKind, id int64, p UpdateReadingParams) (*Reading, error) {
	var sets []string
	var args []any
	if p.Reading != nil {
		reading, err := validate.Required("reading", *p.Reading)
		if err != nil {
			return nil, err
		}
		if err := validate.MaxLength("reading", reading, maxShortText); err != nil {
			return nil, err
		}
		sets = append(sets, "reading = ?")
		args = append(args, reading)
	}
	if p.ReadingLevel != nil {
		level := strings.TrimSpace(*p.ReadingLevel)
		if err := validate.OneOf("reading_level", level, ReadingLevels); err != nil {
			return nil, err
		}
		sets = append(sets, "reading_level = ?")
		args = append(args, level)
	}
	if p.Okurigana != nil {
		if err := checkOkurigana(kind, p.Okurigana); err != nil {
			return nil, err
		}
		if kind == KunReading {
			sets = append(sets, "okurigana = ?")
			args = append(args, nullString(p.Okurigana))
		}
	}
	if len(sets) > 0 {
		if err := s.updateRow(ctx, entities[kind.entity()].label, kind.table(), id, sets, args); err != nil {
			return nil, err
		}
	}
	return s.GetReading(ctx, kind, id)
}

// DeleteReading removes a reading and compacts its siblings.
func (s *Store) DeleteReading(ctx context.Context, kind ReadingKind, id int64) error {
	return s.Delete(ctx, kind.entity(), id)
}

// ReorderReadings sets the order of one kind of reading for a kanji.
func (s *Store) ReorderReadings(ctx context.Context, kind ReadingKind, kanjiID int64, ids []int64) error {
	return s.Reorder(ctx, kind.entity(), kanjiID, ids)
}

// MoveReading swaps a reading with its neighbour.
func (s *Store) MoveReading(ctx context.Context, kind ReadingKind, id int64, dir Direction) error {
	return s.Move(ctx, kind.entity(), id, dir)
}
