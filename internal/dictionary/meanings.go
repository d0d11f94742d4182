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

// Meaning is one English meaning of a kanji.
type Meaning struct {
	ID             int64   `json:"id"`
	KanjiID        int64   `json:"kanji_id"`
	MeaningText    string  `json:"meaning_text"`
	AdditionalInfo *string `json:"additional_info,omitempty"`
	DisplayOrder   int     `json:"display_order"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// ReadingGroup groups meanings under the reading that carries them,
// e.g. "ニチ・ジツ" -> sun, day.
type ReadingGroup struct {
	ID           int64  `json:"id"`
	KanjiID      int64  `json:"kanji_id"`
	ReadingText  string `json:"reading_text"`
	DisplayOrder int    `json:"display_order"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// GroupMember places a meaning in a reading group. MeaningText and
// AdditionalInfo are joined from the meaning for display.
type GroupMember struct {
	ID             int64   `json:"id"`
	ReadingGroupID int64   `json:"reading_group_id"`
	MeaningID      int64   `json:"meaning_id"`
	DisplayOrder   int     `json:"display_order"`
	MeaningText    string  `json:"meaning_text"`
	AdditionalInfo *string `json:"additional_info,omitempty"`
}

// AddMeaningParams holds the input for AddMeaning. Position inserts the
// meaning at that index instead of appending it.
type AddMeaningParams struct {
	MeaningText    string
	AdditionalInfo *string
	Position       *int
}

// UpdateMeaningParams holds partial update fields for a meaning.
type UpdateMeaningParams struct {
	MeaningText    *string
	AdditionalInfo *string
}

// ensureExists fails with a NotFoundError when table has no row id.
func ensureExists(ctx context.Context, q dbtx, table, label string, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(label, id)
	}
	return err
}

// ─── Meanings ────────────────────────────────────────────────────────────────

const meaningColumns = `id, kanji_id, meaning_text, additional_info, display_order, created_at, updated_at`

func scanMeaning(r rowScanner) (Meaning, error) {
	var m Meaning
	var info sql.NullString
	if err := r.Scan(&m.ID, &m.KanjiID, &m.MeaningText, &info, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Meaning{}, err
	}
	m.AdditionalInfo = scanNullString(info)
	return m, nil
}

func queryMeanings(ctx context.Context, q dbtx, query string, args ...any) ([]Meaning, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Meaning
	for rows.Next() {
		m, err := scanMeaning(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddMeaning appends a meaning to a kanji.
func (s *Store) AddMeaning(ctx context.Context, kanjiID int64, p AddMeaningParams) (*Meaning, error) {
	text, err := validate.Required("meaning_text", p.MeaningText)
	if err != nil {
		return nil, err
	}
	if err := firstErr(validate.MaxLength("meaning_text", text, maxShortText), checkText("additional_info", p.AdditionalInfo, maxLongText)); err != nil {
		return nil, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, "kanjis", "kanji", kanjiID); err != nil {
			return err
		}
		id, err = insertOrdered(ctx, tx, EntityMeaning, kanjiID, p.Position, func(order int) (int64, error) {
			now := Now()
			res, err := tx.ExecContext(ctx,
				`INSERT INTO kanji_meanings (kanji_id, meaning_text, additional_info, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				kanjiID, text, nullString(p.AdditionalInfo), order, now, now)
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", "meaning", err)
	}
	return s.GetMeaning(ctx, id)
}

// GetMeaning returns a meaning by id.
func (s *Store) GetMeaning(ctx context.Context, id int64) (*Meaning, error) {
	m, err := scanMeaning(s.db.QueryRowContext(ctx, `SELECT `+meaningColumns+` FROM kanji_meanings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrapErr("get", "meaning", notFound("meaning", id))
	}
	if err != nil {
		return nil, wrapErr("get", "meaning", err)
	}
	return &m, nil
}

// ListMeanings returns the meanings of a kanji in display order.
func (s *Store) ListMeanings(ctx context.Context, kanjiID int64) ([]Meaning, error) {
	out, err := queryMeanings(ctx, s.db,
		`SELECT `+meaningColumns+` FROM kanji_meanings WHERE kanji_id = ? ORDER BY display_order, id`, kanjiID)
	return out, wrapErr("list", "meaning", err)
}

// UpdateMeaning applies a partial update to a meaning.
func (s *Store) UpdateMeaning(ctx context.Context, id int64, p UpdateMeaningParams) (*Meaning, error) {
	var sets []string
	var args []any
	if p.MeaningText != nil {
		text, err := validate.Required("meaning_text", *p.MeaningText)
		if err != nil {
			return nil, err
		}
		if err := validate.MaxLength("meaning_text", text, maxShortText); err != nil {
			return nil, err
		}
		sets = append(sets, "meaning_text = ?")
		args = append(args, text)
	}
	if p.AdditionalInfo != nil {
		if err := checkText("additional_info", p.AdditionalInfo, maxLongText); err != nil {
			return nil, err
		}
		sets = append(sets, "additional_info = ?")
		args = append(args, nullString(p.AdditionalInfo))
	}
	if len(sets) > 0 {
		if err := s.updateRow(ctx, "meaning", "kanji_meanings", id, sets, args); err != nil {
			return nil, err
		}
	}
	return s.GetMeaning(ctx, id)
}

// DeleteMeaning removes a meaning, compacting its siblings and every
// reading group it belonged to.
func (s *Store) DeleteMeaning(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityMeaning, id)
}

// ReorderMeanings sets the meaning order of a kanji.
func (s *Store) ReorderMeanings(ctx context.Context, kanjiID int64, ids []int64) error {
	return s.Reorder(ctx, EntityMeaning, kanjiID, ids)
}

// ─── Reading groups ──────────────────────────────────────────────────────────

const readingGroupColumns = `id, kanji_id, reading_text, display_order, created_at, updated_at`

func queryReadingGroups(ctx context.Context, q dbtx, query string, args ...any) ([]ReadingGroup, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReadingGroup
	for rows.Next() {
		var g ReadingGroup
		if err := rows.Scan(&g.ID, &g.KanjiID, &g.ReadingText, &g.DisplayOrder, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddReadingGroup appends a reading group to a kanji. Adding the first
// group switches the kanji's meanings to grouped display.
func (s *Store) AddReadingGroup(ctx context.Context, kanjiID int64, readingText string, position *int) (*ReadingGroup, error) {
	text, err := validate.Required("reading_text", readingText)
	if err != nil {
		return nil, err
	}
	if err := validate.MaxLength("reading_text", text, maxShortText); err != nil {
		return nil, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, "kanjis", "kanji", kanjiID); err != nil {
			return err
		}
		id, err = insertOrdered(ctx, tx, EntityReadingGroup, kanjiID, position, func(order int) (int64, error) {
			now := Now()
			res, err := tx.ExecContext(ctx,
				`INSERT INTO kanji_meaning_reading_groups (kanji_id, reading_text, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?)`,
				kanjiID, text, order, now, now)
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", "reading group", err)
	}
	return s.GetReadingGroup(ctx, id)
}

// GetReadingGroup returns a reading group by id.
func (s *Store) GetReadingGroup(ctx context.Context, id int64) (*ReadingGroup, error) {
	groups, err := queryReadingGroups(ctx, s.db, `SELECT `+readingGroupColumns+` FROM kanji_meaning_reading_groups WHERE id = ?`, id)
	if err != nil {
		return nil, wrapErr("get", "reading group", err)
	}
	if len(groups) == 0 {
		return nil, wrapErr("get", "reading group", notFound("reading group", id))
	}
	return &groups[0], nil
}

// ListReadingGroups returns the reading groups of a kanji in display order.
func (s *Store) ListReadingGroups(ctx context.Context, kanjiID int64) ([]ReadingGroup, error) {
	out, err := queryReadingGroups(ctx, s.db,
		`SELECT `+readingGroupColumns+` FROM kanji_meaning_reading_groups WHERE kanji_id = ? ORDER BY display_order, id`, kanjiID)
	return out, wrapErr("list", "reading group", err)
}

// UpdateReadingGroup changes the reading text of a group.
func (s *Store) UpdateReadingGroup(ctx context.Context, id int64, readingText string) (*ReadingGroup, error) {
	text, err := validate.Required("reading_text", readingText)
	if err != nil {
		return nil, err
	}
	if err := validate.MaxLength("reading_text", text, maxShortText); err != nil {
		return nil, err
	}
	if err := s.updateRow(ctx, "reading group", "kanji_meaning_reading_groups", id, []string{"reading_text = ?"}, []any{text}); err != nil {
		return nil, err
	}
	return s.GetReadingGroup(ctx, id)
}

// DeleteReadingGroup removes a group and its memberships. The meanings stay.
func (s *Store) DeleteReadingGroup(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityReadingGroup, id)
}

// ReorderReadingGroups sets the group order of a kanji.
func (s *Store) ReorderReadingGroups(ctx context.Context, kanjiID int64, ids []int64) error {
	return s.Reorder(ctx, EntityReadingGroup, kanjiID, ids)
}

// GroupingEnabled reports whether a kanji shows its meanings by reading group.
func (s *Store) GroupingEnabled(ctx context.Context, kanjiID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kanji_meaning_reading_groups WHERE kanji_id = ?`, kanjiID).Scan(&n)
	if err != nil {
		return false, wrapErr("count", "reading group", err)
	}
	return n > 0, nil
}

// DisableGrouping removes every reading group of a kanji. Meanings are kept.
func (s *Store) DisableGrouping(ctx context.Context, kanjiID int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kanji_meaning_reading_groups WHERE kanji_id = ?`, kanjiID)
	if err != nil {
		return 0, wrapErr("delete", "reading group", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DeleteEmptyGroups removes the reading groups of a kanji that have no
// members and compacts the rest.
func (s *Store) DeleteEmptyGroups(ctx context.Context, kanjiID int64) (int, error) {
	var removed int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM kanji_meaning_reading_groups
			 WHERE kanji_id = ?
			   AND id NOT IN (SELECT reading_group_id FROM kanji_meaning_group_members)`, kanjiID)
		if err != nil {
			return err
		}
		removed, _ = res.RowsAffected()
		return compact(ctx, tx, entities[EntityReadingGroup], kanjiID)
	})
	if err != nil {
		return 0, wrapErr("delete", "reading group", err)
	}
	return int(removed), nil
}

// ─── Group members ───────────────────────────────────────────────────────────

const groupMemberSelect = `SELECT gm.id, gm.reading_group_id, gm.meaning_id, gm.display_order, m.meaning_text, m.additional_info
	FROM kanji_meaning_group_members gm
	JOIN kanji_meanings m ON m.id = gm.meaning_id`

func queryGroupMembers(ctx context.Context, q dbtx, query string, args ...any) ([]GroupMember, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupMember
	for rows.Next() {
		var gm GroupMember
		var info sql.NullString
		if err := rows.Scan(&gm.ID, &gm.ReadingGroupID, &gm.MeaningID, &gm.DisplayOrder, &gm.MeaningText, &info); err != nil {
			return nil, err
		}
		gm.AdditionalInfo = scanNullString(info)
		out = append(out, gm)
	}
	return out, rows.Err()
}

// AssignMeaning appends a meaning to a reading group. Both must belong to
// the same kanji. Assigning a meaning that is already in the group
// returns the existing membership.
func (s *Store) AssignMeaning(ctx context.Context, groupID, meaningID int64) (*GroupMember, error) {
	var memberID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var groupKanji, meaningKanji int64
		err := tx.QueryRowContext(ctx, `SELECT kanji_id FROM kanji_meaning_reading_groups WHERE id = ?`, groupID).Scan(&groupKanji)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("reading group", groupID)
		}
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx, `SELECT kanji_id FROM kanji_meanings WHERE id = ?`, meaningID).Scan(&meaningKanji)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("meaning", meaningID)
		}
		if err != nil {
			return err
		}
		if groupKanji != meaningKanji {
			return validate.Errorf("meaning_id", "meaning %d belongs to a different kanji than reading group %d", meaningID, groupID)
		}

		err = tx.QueryRowContext(ctx,
			`SELECT id FROM kanji_meaning_group_members WHERE reading_group_id = ? AND meaning_id = ?`,
			groupID, meaningID).Scan(&memberID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		memberID, err = insertOrdered(ctx, tx, EntityGroupMember, groupID, nil, func(order int) (int64, error) {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO kanji_meaning_group_members (reading_group_id, meaning_id, display_order) VALUES (?, ?, ?)`,
				groupID, meaningID, order)
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", "group member", err)
	}

	members, err := queryGroupMembers(ctx, s.db, groupMemberSelect+` WHERE gm.id = ?`, memberID)
	if err != nil {
		return nil, wrapErr("get", "group member", err)
	}
	if len(members) == 0 {
		return nil, wrapErr("get", "group member", notFound("group member", memberID))
	}
	return &members[0], nil
}

// UnassignMeaning takes a meaning out of a reading group and compacts the
// remaining members.
func (s *Store) UnassignMeaning(ctx context.Context, groupID, meaningID int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var memberID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM kanji_meaning_group_members WHERE reading_group_id = ? AND meaning_id = ?`,
			groupID, meaningID).Scan(&memberID)
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Entity: "group member", Key: fmt.Sprintf("group %d / meaning %d", groupID, meaningID)}
		}
		if err != nil {
			return err
		}
		return deleteInTx(ctx, tx, EntityGroupMember, memberID)
	})
	return wrapErr("delete", "group member", err)
}

// ListGroupMembers returns the members of a reading group in display order.
func (s *Store) ListGroupMembers(ctx context.Context, groupID int64) ([]GroupMember, error) {
	out, err := queryGroupMembers(ctx, s.db,
		groupMemberSelect+` WHERE gm.reading_group_id = ? ORDER BY gm.display_order, gm.id`, groupID)
	return out, wrapErr("list", "group member", err)
}

// ListGroupMembersByKanji returns every membership of a kanji's reading
// groups, keyed by group id.
func (s *Store) ListGroupMembersByKanji(ctx context.Context, kanjiID int64) (map[int64][]GroupMember, error) {
	members, err := queryGroupMembers(ctx, s.db,
		groupMemberSelect+`
		 JOIN kanji_meaning_reading_groups g ON g.id = gm.reading_group_id
		 WHERE g.kanji_id = ?
		 ORDER BY g.display_order, gm.display_order, gm.id`, kanjiID)
	if err != nil {
		return nil, wrapErr("list", "group member", err)
	}
	out := make(map[int64][]GroupMember)
	for _, gm := range members {
		out[gm.ReadingGroupID] = append(out[gm.ReadingGroupID], gm)
	}
	return out, nil
}

// ReorderGroupMembers sets the member order of a reading group. ids are
// membership ids.
func (s *Store) ReorderGroupMembers(ctx context.Context, groupID int64, ids []int64) error {
	return s.Reorder(ctx, EntityGroupMember, groupID, ids)
}

// UnassignedMeanings returns the meanings of a kanji that are in no
// reading group.
func (s *Store) UnassignedMeanings(ctx context.Context, kanjiID int64) ([]Meaning, error) {
	out, err := queryMeanings(ctx, s.db,
		`SELECT `+meaningColumns+` FROM kanji_meanings
		 WHERE kanji_id = ?
		   AND id NOT IN (SELECT meaning_id FROM kanji_meaning_group_members)
		 ORDER BY display_order, id`, kanjiID)
	return out, wrapErr("list", "meaning", err)
}

// FormatMeanings renders meanings as "1. sun; 2. day".
func FormatMeanings(ms []Meaning) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = fmt.Sprintf("%d. %s", i+1, m.MeaningText)
	}
	return strings.Join(parts, "; ")
}
