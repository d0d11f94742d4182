package dictionary

import (
	"context"
	"database/sql"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ComponentForm is a variant shape of a component, e.g. 氵 for 水. The
// first form in display order is the primary one.
type ComponentForm struct {
	ID            int64   `json:"id"`
	ComponentID   int64   `json:"component_id"`
	FormCharacter string  `json:"form_character"`
	FormName      *string `json:"form_name,omitempty"`
	StrokeCount   *int    `json:"stroke_count,omitempty"`
	UsageNotes    *string `json:"usage_notes,omitempty"`
	DisplayOrder  int     `json:"display_order"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// AddFormParams holds the input for AddForm.
type AddFormParams struct {
	FormCharacter string
	FormName      *string
	StrokeCount   *int
	UsageNotes    *string
	Position      *int
}

// UpdateFormParams holds partial update fields for a form.
type UpdateFormParams struct {
	FormCharacter *string
	FormName      *string
	StrokeCount   *int
	UsageNotes    *string
}

const formColumns = `id, component_id, form_character, form_name, stroke_count, usage_notes, display_order, created_at, updated_at`

func queryForms(ctx context.Context, q dbtx, where string, args ...any) ([]ComponentForm, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+formColumns+` FROM component_forms `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ComponentForm
	for rows.Next() {
		var f ComponentForm
		var name, notes sql.NullString
		var strokes sql.NullInt64
		if err := rows.Scan(&f.ID, &f.ComponentID, &f.FormCharacter, &name, &strokes, &notes, &f.DisplayOrder, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.FormName = scanNullString(name)
		f.StrokeCount = scanNullInt(strokes)
		f.UsageNotes = scanNullString(notes)
		out = append(out, f)
	}
	return out, rows.Err()
}

// AddForm appends a form to a component.
func (s *Store) AddForm(ctx context.Context, componentID int64, p AddFormParams) (*ComponentForm, error) {
	char, err := validate.SingleCharacter("form_character", p.FormCharacter)
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		checkText("form_name", p.FormName, maxShortText),
		checkStrokeCount("stroke_count", p.StrokeCount),
		checkText("usage_notes", p.UsageNotes, maxLongText),
	); err != nil {
		return nil, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, "components", "component", componentID); err != nil {
			return err
		}
		id, err = insertOrdered(ctx, tx, EntityForm, componentID, p.Position, func(order int) (int64, error) {
			now := Now()
			res, err := tx.ExecContext(ctx,
				`INSERT INTO component_forms (component_id, form_character, form_name, stroke_count, usage_notes, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				componentID, char, nullString(p.FormName), nullInt(p.StrokeCount), nullString(p.UsageNotes), order, now, now)
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", "component form", err)
	}
	return s.GetForm(ctx, id)
}

// GetForm returns a form by id.
func (s *Store) GetForm(ctx context.Context, id int64) (*ComponentForm, error) {
	out, err := queryForms(ctx, s.db, `WHERE id = ?`, id)
	if err != nil {
		return nil, wrapErr("get", "component form", err)
	}
	if len(out) == 0 {
		return nil, wrapErr("get", "component form", notFound("component form", id))
	}
	return &out[0], nil
}

// ListForms returns the forms of a component in display order.
func (s *Store) ListForms(ctx context.Context, componentID int64) ([]ComponentForm, error) {
	out, err := queryForms(ctx, s.db, `WHERE component_id = ? ORDER BY display_order, id`, componentID)
	return out, wrapErr("list", "component form", err)
}

// PrimaryForm returns the first form of a component, or nil when it has none.
func (s *Store) PrimaryForm(ctx context.Context, componentID int64) (*ComponentForm, error) {
	out, err := queryForms(ctx, s.db, `WHERE component_id = ? ORDER BY display_order, id LIMIT 1`, componentID)
	if err != nil {
		return nil, wrapErr("get", "component form", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// UpdateForm applies a partial update to a form.
func (s *Store) UpdateForm(ctx context.Context, id int64, p UpdateFormParams) (*ComponentForm, error) {
	if err := firstErr(
		checkText("form_name", p.FormName, maxShortText),
		checkStrokeCount("stroke_count", p.StrokeCount),
		checkText("usage_notes", p.UsageNotes, maxLongText),
	); err != nil {
		return nil, err
	}
	var sets []string
	var args []any
	if p.FormCharacter != nil {
		char, err := validate.SingleCharacter("form_character", *p.FormCharacter)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "form_character = ?")
		args = append(args, char)
	}
	if p.FormName != nil {
		sets = append(sets, "form_name = ?")
		args = append(args, nullString(p.FormName))
	}
	if p.StrokeCount != nil {
		sets = append(sets, "stroke_count = ?")
		args = append(args, *p.StrokeCount)
	}
	if p.UsageNotes != nil {
		sets = append(sets, "usage_notes = ?")
		args = append(args, nullString(p.UsageNotes))
	}
	if len(sets) > 0 {
		if err := s.updateRow(ctx, "component form", "component_forms", id, sets, args); err != nil {
			return nil, err
		}
	}
	return s.GetForm(ctx, id)
}

// DeleteForm removes a form. Occurrences that used it fall back to the
// component itself.
func (s *Store) DeleteForm(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityForm, id)
}
