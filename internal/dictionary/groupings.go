package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ComponentGrouping collects occurrences of one component under a name,
// e.g. the kanji where 氵 means water versus where it is phonetic.
type ComponentGrouping struct {
	ID                 int64   `json:"id"`
	ComponentID        int64   `json:"component_id"`
	Name               string  `json:"name"`
	Description        *string `json:"description,omitempty"`
	DisplayOrder       int     `json:"display_order"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
	OccurrenceCount    int     `json:"occurrence_count"`
	ComponentCharacter string  `json:"component_character"`
}

// GroupingMember is one occurrence inside a grouping, with the kanji it
// belongs to joined in.
type GroupingMember struct {
	ID                int64   `json:"id"`
	GroupingID        int64   `json:"grouping_id"`
	OccurrenceID      int64   `json:"occurrence_id"`
	DisplayOrder      int     `json:"display_order"`
	KanjiID           int64   `json:"kanji_id"`
	KanjiCharacter    string  `json:"kanji_character"`
	KanjiShortMeaning *string `json:"kanji_short_meaning,omitempty"`
}

// UpdateGroupingParams holds partial update fields for a grouping.
type UpdateGroupingParams struct {
	Name        *string
	Description *string
}

const groupingSelect = `SELECT g.id, g.component_id, g.name, g.description, g.display_order, g.created_at, g.updated_at,
		(SELECT COUNT(*) FROM component_grouping_members m WHERE m.grouping_id = g.id), c.character
	FROM component_groupings g
	JOIN components c ON c.id = g.component_id`

func queryGroupings(ctx context.Context, q dbtx, where string, args ...any) ([]ComponentGrouping, error) {
	rows, err := q.QueryContext(ctx, groupingSelect+` `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ComponentGrouping
	for rows.Next() {
		var g ComponentGrouping
		var desc sql.NullString
		if err := rows.Scan(&g.ID, &g.ComponentID, &g.Name, &desc, &g.DisplayOrder, &g.CreatedAt, &g.UpdatedAt,
			&g.OccurrenceCount, &g.ComponentCharacter); err != nil {
			return nil, err
		}
		g.Description = scanNullString(desc)
		out = append(out, g)
	}
	return out, rows.Err()
}

// CreateGrouping appends a grouping to a component.
func (s *Store) CreateGrouping(ctx context.Context, componentID int64, name string, description *string, position *int) (*ComponentGrouping, error) {
	n, err := validate.Required("name", name)
	if err != nil {
		return nil, err
	}
	if err := firstErr(validate.MaxLength("name", n, maxShortText), checkText("description", description, maxLongText)); err != nil {
		return nil, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, "components", "component", componentID); err != nil {
			return err
		}
		id, err = insertOrdered(ctx, tx, EntityGrouping, componentID, position, func(order int) (int64, error) {
			now := Now()
			res, err := tx.ExecContext(ctx,
				`INSERT INTO component_groupings (component_id, name, description, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				componentID, n, nullString(description), order, now, now)
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", "component grouping", err)
	}
	return s.GetGrouping(ctx, id)
}

// GetGrouping returns a grouping by id.
func (s *Store) GetGrouping(ctx context.Context, id int64) (*ComponentGrouping, error) {
	out, err := queryGroupings(ctx, s.db, `WHERE g.id = ?`, id)
	if err != nil {
		return nil, wrapErr("get", "component grouping", err)
	}
	if len(out) == 0 {
		return nil, wrapErr("get", "component grouping", notFound("component grouping", id))
	}
	return &out[0], nil
}

// ListGroupings returns the groupings of a component in display order.
func (s *Store) ListGroupings(ctx context.Context, componentID int64) ([]ComponentGrouping, error) {
	out, err := queryGroupings(ctx, s.db, `WHERE g.component_id = ? ORDER BY g.display_order, g.id`, componentID)
	return out, wrapErr("list", "component grouping", err)
}

// ListAllGroupings returns every grouping, by name.
func (s *Store) ListAllGroupings(ctx context.Context) ([]ComponentGrouping, error) {
	out, err := queryGroupings(ctx, s.db, `ORDER BY g.name, g.id`)
	return out, wrapErr("list", "component grouping", err)
}

// UpdateGrouping applies a partial update to a grouping.
func (s *Store) UpdateGrouping(ctx context.Context, id int64, p UpdateGroupingParams) (*ComponentGrouping, error) {
	if err := checkText("description", p.Description, maxLongText); err != nil {
		return nil, err
	}
	var sets []string
	var args []any
	if p.Name != nil {
		n, err := validate.Required("name", *p.Name)
		if err != nil {
			return nil, err
		}
		if err := validate.MaxLength("name", n, maxShortText); err != nil {
			return nil, err
		}
		sets = append(sets, "name = ?")
		args = append(args, n)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullString(p.Description))
	}
	if len(sets) > 0 {
		if err := s.updateRow(ctx, "component grouping", "component_groupings", id, sets, args); err != nil {
			return nil, err
		}
	}
	return s.GetGrouping(ctx, id)
}

// DeleteGrouping removes a grouping. Its occurrences stay on their kanji.
func (s *Store) DeleteGrouping(ctx context.Context, id int64) error {
	return s.Delete(ctx, EntityGrouping, id)
}

// ─── Grouping members ────────────────────────────────────────────────────────

const groupingMemberSelect = `SELECT m.id, m.grouping_id, m.occurrence_id, m.display_order, k.id, k.character, k.short_meaning
	FROM component_grouping_members m
	JOIN component_occurrences o ON o.id = m.occurrence_id
	JOIN kanjis k ON k.id = o.kanji_id`

func queryGroupingMembers(ctx context.Context, q dbtx, where string, args ...any) ([]GroupingMember, error) {
	rows, err := q.QueryContext(ctx, groupingMemberSelect+` `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupingMember
	for rows.Next() {
		var m GroupingMember
		var meaning sql.NullString
		if err := rows.Scan(&m.ID, &m.GroupingID, &m.OccurrenceID, &m.DisplayOrder, &m.KanjiID, &m.KanjiCharacter, &meaning); err != nil {
			return nil, err
		}
		m.KanjiShortMeaning = scanNullString(meaning)
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddGroupingMember appends an occurrence to a grouping. The occurrence must
// be of the grouping's component. Adding an occurrence twice returns the
// existing membership; one occurrence may sit in several groupings.
func (s *Store) AddGroupingMember(ctx context.Context, groupingID, occurrenceID int64) (*GroupingMember, error) {
	var memberID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var groupingComponent, occurrenceComponent int64
		err := tx.QueryRowContext(ctx, `SELECT component_id FROM component_groupings WHERE id = ?`, groupingID).Scan(&groupingComponent)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("component grouping", groupingID)
		}
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx, `SELECT component_id FROM component_occurrences WHERE id = ?`, occurrenceID).Scan(&occurrenceComponent)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("component occurrence", occurrenceID)
		}
		if err != nil {
			return err
		}
		if groupingComponent != occurrenceComponent {
			return validate.Errorf("occurrence_id", "occurrence %d is not an occurrence of this grouping's component", occurrenceID)
		}

		err = tx.QueryRowContext(ctx,
			`SELECT id FROM component_grouping_members WHERE grouping_id = ? AND occurrence_id = ?`,
			groupingID, occurrenceID).Scan(&memberID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		memberID, err = insertOrdered(ctx, tx, EntityGroupingMember, groupingID, nil, func(order int) (int64, error) {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO component_grouping_members (grouping_id, occurrence_id, display_order) VALUES (?, ?, ?)`,
				groupingID, occurrenceID, order)
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		})
		return err
	})
	if err != nil {
		return nil, wrapErr("create", "grouping member", err)
	}

	out, err := queryGroupingMembers(ctx, s.db, `WHERE m.id = ?`, memberID)
	if err != nil {
		return nil, wrapErr("get", "grouping member", err)
	}
	if len(out) == 0 {
		return nil, wrapErr("get", "grouping member", notFound("grouping member", memberID))
	}
	return &out[0], nil
}

// ListGroupingMembers returns the members of a grouping in display order.
func (s *Store) ListGroupingMembers(ctx context.Context, groupingID int64) ([]GroupingMember, error) {
	out, err := queryGroupingMembers(ctx, s.db, `WHERE m.grouping_id = ? ORDER BY m.display_order, m.id`, groupingID)
	return out, wrapErr("list", "grouping member", err)
}

// RemoveGroupingMember takes an occurrence out of a grouping and compacts
// the remaining members.
func (s *Store) RemoveGroupingMember(ctx context.Context, groupingID, occurrenceID int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var memberID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM component_grouping_members WHERE grouping_id = ? AND occurrence_id = ?`,
			groupingID, occurrenceID).Scan(&memberID)
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Entity: "grouping member", Key: fmt.Sprintf("grouping %d / occurrence %d", groupingID, occurrenceID)}
		}
		if err != nil {
			return err
		}
		return deleteInTx(ctx, tx, EntityGroupingMember, memberID)
	})
	return wrapErr("delete", "grouping member", err)
}

// ReorderGroupingMembers sets the member order of a grouping. Unlike the
// generic Reorder it takes occurrence ids, which is what callers see.
func (s *Store) ReorderGroupingMembers(ctx context.Context, groupingID int64, occurrenceIDs []int64) error {
	spec := entities[EntityGroupingMember]
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, occurrence_id FROM component_grouping_members WHERE grouping_id = ? ORDER BY display_order, id`, groupingID)
		if err != nil {
			return err
		}
		memberOf := make(map[int64]int64)
		var current []int64
		for rows.Next() {
			var id, occ int64
			if err := rows.Scan(&id, &occ); err != nil {
				rows.Close()
				return err
			}
			memberOf[occ] = id
			current = append(current, occ)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if err := checkPermutation("occurrence", current, occurrenceIDs); err != nil {
			return err
		}
		ids := make([]int64, len(occurrenceIDs))
		for i, occ := range occurrenceIDs {
			ids[i] = memberOf[occ]
		}
		return writeOrder(ctx, tx, spec, ids)
	})
	return wrapErr("reorder", spec.label, err)
}
