package dictionary

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// Classification types and position types are whole-table reference lists
// with the same shape: a unique key, Japanese and English names, and two
// descriptions. The helpers here serve both.

// ReferenceTypeParams holds the input for creating a reference type.
// Name is the unique key (type_name or position_name).
type ReferenceTypeParams struct {
	Name             string
	NameJapanese     *string
	NameEnglish      *string
	Description      *string
	DescriptionShort *string
	Position         *int
}

// UpdateReferenceTypeParams holds partial update fields for a reference type.
type UpdateReferenceTypeParams struct {
	Name             *string
	NameJapanese     *string
	NameEnglish      *string
	Description      *string
	DescriptionShort *string
}

type refTable struct {
	entity  Entity
	nameCol string
}

var (
	classificationTypesTable = refTable{entity: EntityClassificationType, nameCol: "type_name"}
	positionTypesTable       = refTable{entity: EntityPositionType, nameCol: "position_name"}
)

func (r refTable) spec() entitySpec { return entities[r.entity] }

type refRow struct {
	id               int64
	name             string
	nameJapanese     *string
	nameEnglish      *string
	description      *string
	descriptionShort *string
	displayOrder     int
}

func (r refTable) query(ctx context.Context, q dbtx, where string, args ...any) ([]refRow, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, `+r.nameCol+`, name_japanese, name_english, description, description_short, display_order
		 FROM `+r.spec().table+` `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []refRow
	for rows.Next() {
		var row refRow
		var ja, en, desc, short sql.NullString
		if err := rows.Scan(&row.id, &row.name, &ja, &en, &desc, &short, &row.displayOrder); err != nil {
			return nil, err
		}
		row.nameJapanese = scanNullString(ja)
		row.nameEnglish = scanNullString(en)
		row.description = scanNullString(desc)
		row.descriptionShort = scanNullString(short)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r refTable) list(ctx context.Context, q dbtx) ([]refRow, error) {
	out, err := r.query(ctx, q, `ORDER BY display_order, id`)
	return out, wrapErr("list", r.spec().label, err)
}

func (r refTable) get(ctx context.Context, q dbtx, id int64) (refRow, error) {
	out, err := r.query(ctx, q, `WHERE id = ?`, id)
	if err != nil {
		return refRow{}, wrapErr("get", r.spec().label, err)
	}
	if len(out) == 0 {
		return refRow{}, wrapErr("get", r.spec().label, notFound(r.spec().label, id))
	}
	return out[0], nil
}

func (r refTable) getByName(ctx context.Context, q dbtx, name string) (refRow, error) {
	out, err := r.query(ctx, q, `WHERE `+r.nameCol+` = ?`, name)
	if err != nil {
		return refRow{}, wrapErr("get", r.spec().label, err)
	}
	if len(out) == 0 {
		return refRow{}, wrapErr("get", r.spec().label, &NotFoundError{Entity: r.spec().label, Key: name})
	}
	return out[0], nil
}

func checkReferenceTexts(nameJapanese, nameEnglish, description, descriptionShort *string) error {
	return firstErr(
		checkText("name_japanese", nameJapanese, maxShortText),
		checkText("name_english", nameEnglish, maxShortText),
		checkText("description", description, maxLongText),
		checkText("description_short", descriptionShort, maxShortText),
	)
}

func (r refTable) create(ctx context.Context, s *Store, p ReferenceTypeParams) (int64, error) {
	label := r.spec().label
	name, err := validate.Required(r.nameCol, p.Name)
	if err != nil {
		return 0, err
	}
	if err := firstErr(validate.MaxLength(r.nameCol, name, maxShortText),
		checkReferenceTexts(p.NameJapanese, p.NameEnglish, p.Description, p.DescriptionShort)); err != nil {
		return 0, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err = insertOrdered(ctx, tx, r.entity, 0, p.Position, func(order int) (int64, error) {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO `+r.spec().table+` (`+r.nameCol+`, name_japanese, name_english, description, description_short, display_order)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				name, nullString(p.NameJapanese), nullString(p.NameEnglish), nullString(p.Description), nullString(p.DescriptionShort), order)
			if isUniqueViolation(err) {
				return 0, fmt.Errorf("%w: %s %q", ErrDuplicate, label, name)
			}
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	return id, wrapErr("create", label, err)
}

// update has no updated_at column to maintain, so it does not go through
// Store.updateRow.
func (r refTable) update(ctx context.Context, s *Store, id int64, p UpdateReferenceTypeParams) error {
	label := r.spec().label
	if err := checkReferenceTexts(p.NameJapanese, p.NameEnglish, p.Description, p.DescriptionShort); err != nil {
		return err
	}
	var sets []string
	var args []any
	if p.Name != nil {
		name, err := validate.Required(r.nameCol, *p.Name)
		if err != nil {
			return err
		}
		if err := validate.MaxLength(r.nameCol, name, maxShortText); err != nil {
			return err
		}
		sets = append(sets, r.nameCol+" = ?")
		args = append(args, name)
	}
	for _, f := range []struct {
		col string
		v   *string
	}{
		{"name_japanese", p.NameJapanese},
		{"name_english", p.NameEnglish},
		{"description", p.Description},
		{"description_short", p.DescriptionShort},
	} {
		if f.v != nil {
			sets = append(sets, f.col+" = ?")
			args = append(args, nullString(f.v))
		}
	}
	if len(sets) == 0 {
		_, err := r.get(ctx, s.db, id)
		return err
	}

	query := `UPDATE ` + r.spec().table + ` SET ` + sets[0]
	for _, set := range sets[1:] {
		query += `, ` + set
	}
	res, err := s.db.ExecContext(ctx, query+` WHERE id = ?`, append(args, id)...)
	if isUniqueViolation(err) {
		return wrapErr("update", label, fmt.Errorf("%w: %s %q", ErrDuplicate, label, derefString(p.Name)))
	}
	if err != nil {
		return wrapErr("update", label, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrapErr("update", label, notFound(label, id))
	}
	return nil
}
