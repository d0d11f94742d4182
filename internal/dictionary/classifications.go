package dictionary

import (
	"context"
	"database/sql"
)

// ClassificationType is one of the six-writings (六書) categories.
type ClassificationType struct {
	ID               int64   `json:"id"`
	TypeName         string  `json:"type_name"`
	NameJapanese     *string `json:"name_japanese,omitempty"`
	NameEnglish      *string `json:"name_english,omitempty"`
	Description      *string `json:"description,omitempty"`
	DescriptionShort *string `json:"description_short,omitempty"`
	DisplayOrder     int     `json:"display_order"`
}

func (r refRow) classificationType() ClassificationType {
	return ClassificationType{
		ID:               r.id,
		TypeName:         r.name,
		NameJapanese:     r.nameJapanese,
		NameEnglish:      r.nameEnglish,
		Description:      r.description,
		DescriptionShort: r.descriptionShort,
		DisplayOrder:     r.displayOrder,
	}
}

// KanjiClassification tags a kanji with a classification type. The type's
// names are joined in for display.
type KanjiClassification struct {
	ID                   int64   `json:"id"`
	KanjiID              int64   `json:"kanji_id"`
	ClassificationTypeID int64   `json:"classification_type_id"`
	DisplayOrder         int     `json:"display_order"`
	TypeName             string  `json:"type_name"`
	NameJapanese         *string `json:"name_japanese,omitempty"`
	NameEnglish          *string `json:"name_english,omitempty"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

// ─── Classification types ────────────────────────────────────────────────────

// ListClassificationTypes returns every classification type in display order.
func (s *Store) ListClassificationTypes(ctx context.Context) ([]ClassificationType, error) {
	rows, err := classificationTypesTable.list(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]ClassificationType, len(rows))
	for i, r := range rows {
		out[i] = r.classificationType()
	}
	return out, nil
}

// GetClassificationType returns a classification type by id.
func (s *Store) GetClassificationType(ctx context.Context, id int64) (*ClassificationType, error) {
	r, err := classificationTypesTable.get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	ct := r.classificationType()
	return &ct, nil
}

// GetClassificationTypeByName returns a classification type by its type name.
func (s *Store) GetClassificationTypeByName(ctx context.Context, typeName string) (*ClassificationType, error) {
	r, err := classificationTypesTable.getByName(ctx, s.db, typeName)
	if err != nil {
		return nil, err
	}
	ct := r.classificationType()
	return &ct, nil
}

// CreateClassificationType appends a classification type.
func (s *Store) CreateClassificationType(ctx context.Context, p ReferenceTypeParams) (*ClassificationType, error) {
	id, err := classificationTypesTable.create(ctx, s, p)
	if err != nil {
		return nil, err
	}
	return s.GetClassificationType(ctx, id)
}

// UpdateClassificationType applies a partial update to a classification type.
func (s *Store) UpdateClassificationType(ctx context.Context, id int64, p UpdateReferenceTypeParams) (*ClassificationType, error) {
	if err := classificationTypesTable.update(ctx, s, id, p); err != nil {
		return nil, err
	}
	return s.GetClassificationType(ctx, id)
}

// DeleteClassificationType removes a classification type together with
// every kanji classification that used it.
func (s *Store) DeleteClassificationType(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityClassificationType, id)
}

// ─── Kanji classifications ───────────────────────────────────────────────────

const kanjiClassificationSelect = `SELECT kc.id, kc.kanji_id, kc.classification_type_id, kc.display_order,
		ct.type_name, ct.name_japanese, ct.name_english, kc.created_at, kc.updated_at
	FROM kanji_classifications kc
	JOIN classification_types ct ON ct.id = kc.classification_type_id`

func queryKanjiClassifications(ctx context.Context, q dbtx, where string, args ...any) ([]KanjiClassification, error) {
	rows, err := q.QueryContext(ctx, kanjiClassificationSelect+` `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KanjiClassification
	for rows.Next() {
		var kc KanjiClassification
		var ja, en sql.NullString
		if err := rows.Scan(&kc.ID, &kc.KanjiID, &kc.ClassificationTypeID, &kc.DisplayOrder,
			&kc.TypeName, &ja, &en, &kc.CreatedAt, &kc.UpdatedAt); err != nil {
			return nil, err
		}
		kc.NameJapanese = scanNullString(ja)
		kc.NameEnglish = scanNullString(en)
		out = append(out, kc)
	}
	return out, rows.Err()
}

// AddKanjiClassification tags a kanji with a classification type.
func (s *Store) AddKanjiClassification(ctx context.Context, kanjiID, typeID int64, position *int) (*KanjiClassification, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, "kanjis", "kanji", kanjiID); err != nil {
			return err
		}
		if err := ensureExists(ctx, tx, "classification_types", "classification type", typeID); err != nil {
			return err
		}
		var err error
		id, err = insertOrdered(ctx, tx, EntityKanjiClassification, kanjiID, position, func(order int) (int64, error) {
			now := Now()
			res, err := tx.ExecContext(ctx,
				`INSERT INTO kanji_classifications (kanji_id, classification_type_id, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?)`,
				kanjiID, typeID, order, now, now)
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", "kanji classification", err)
	}
	return s.GetKanjiClassification(ctx, id)
}

// GetKanjiClassification returns a kanji classification by id.
func (s *Store) GetKanjiClassification(ctx context.Context, id int64) (*KanjiClassification, error) {
	out, err := queryKanjiClassifications(ctx, s.db, `WHERE kc.id = ?`, id)
	if err != nil {
		return nil, wrapErr("get", "kanji classification", err)
	}
	if len(out) == 0 {
		return nil, wrapErr("get", "kanji classification", notFound("kanji classification", id))
	}
	return &out[0], nil
}

// ListKanjiClassifications returns the classifications of a kanji in
// display order.
func (s *Store) ListKanjiClassifications(ctx context.Context, kanjiID int64) ([]KanjiClassification, error) {
	out, err := queryKanjiClassifications(ctx, s.db, `WHERE kc.kanji_id = ? ORDER BY kc.display_order, kc.id`, kanjiID)
	return out, wrapErr("list", "kanji classification", err)
}

// PrimaryClassification returns the first classification of a kanji, or
// nil when it has none.
func (s *Store) PrimaryClassification(ctx context.Context, kanjiID int64) (*KanjiClassification, error) {
	out, err := queryKanjiClassifications(ctx, s.db,
		`WHERE kc.kanji_id = ? ORDER BY kc.display_order, kc.id LIMIT 1`, kanjiID)
	if err != nil {
		return nil, wrapErr("get", "kanji classification", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// DeleteKanjiClassification removes a classification from a kanji.
func (s *Store) DeleteKanjiClassification(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityKanjiClassification, id)
}

// ─── Position types ──────────────────────────────────────────────────────────

// PositionType names where a component sits inside a kanji (偏, 旁, 冠, ...).
type PositionType struct {
	ID               int64   `json:"id"`
	PositionName     string  `json:"position_name"`
	NameJapanese     *string `json:"name_japanese,omitempty"`
	NameEnglish      *string `json:"name_english,omitempty"`
	Description      *string `json:"description,omitempty"`
	DescriptionShort *string `json:"description_short,omitempty"`
	DisplayOrder     int     `json:"display_order"`
}

func (r refRow) positionType() PositionType {
	return PositionType{
		ID:               r.id,
		PositionName:     r.name,
		NameJapanese:     r.nameJapanese,
		NameEnglish:      r.nameEnglish,
		Description:      r.description,
		DescriptionShort: r.descriptionShort,
		DisplayOrder:     r.displayOrder,
	}
}

// ListPositionTypes returns every position type in display order.
func (s *Store) ListPositionTypes(ctx context.Context) ([]PositionType, error) {
	rows, err := positionTypesTable.list(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]PositionType, len(rows))
	for i, r := range rows {
		out[i] = r.positionType()
	}
	return out, nil
}

// GetPositionType returns a position type by id.
func (s *Store) GetPositionType(ctx context.Context, id int64) (*PositionType, error) {
	r, err := positionTypesTable.get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	pt := r.positionType()
	return &pt, nil
}

// GetPositionTypeByName returns a position type by its position name.
func (s *Store) GetPositionTypeByName(ctx context.Context, name string) (*PositionType, error) {
	r, err := positionTypesTable.getByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	pt := r.positionType()
	return &pt, nil
}

// CreatePositionType appends a position type.
func (s *Store) CreatePositionType(ctx context.Context, p ReferenceTypeParams) (*PositionType, error) {
	id, err := positionTypesTable.create(ctx, s, p)
	if err != nil {
		return nil, err
	}
	return s.GetPositionType(ctx, id)
}

// UpdatePositionType applies a partial update to a position type.
func (s *Store) UpdatePositionType(ctx context.Context, id int64, p UpdateReferenceTypeParams) (*PositionType, error) {
	if err := positionTypesTable.update(ctx, s, id, p); err != nil {
		return nil, err
	}
	return s.GetPositionType(ctx, id)
}

// DeletePositionType removes a position type. Occurrences that used it
// keep their place with no position.
func (s *Store) DeletePositionType(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityPositionType, id)
}
