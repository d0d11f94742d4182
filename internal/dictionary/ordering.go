package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// Entity names a table the generic Reorder, Move and Delete operations act on.
type Entity string

const (
	EntityKanji               Entity = "kanji"
	EntityComponent           Entity = "component"
	EntityVocabulary          Entity = "vocabulary"
	EntityMeaning             Entity = "meaning"
	EntityReadingGroup        Entity = "reading_group"
	EntityGroupMember         Entity = "group_member"
	EntityOnReading           Entity = "on_reading"
	EntityKunReading          Entity = "kun_reading"
	EntityClassificationType  Entity = "classification_type"
	EntityKanjiClassification Entity = "kanji_classification"
	EntityPositionType        Entity = "position_type"
	EntityForm                Entity = "form"
	EntityOccurrence          Entity = "occurrence"
	EntityGrouping            Entity = "grouping"
	EntityGroupingMember      Entity = "grouping_member"
	EntityVocabKanji          Entity = "vocab_kanji"
)

// cascade names a foreign sibling set that loses rows when an entity row
// is deleted. parents selects the affected parent ids given the deleted id.
type cascade struct {
	child   Entity
	parents string
}

type entitySpec struct {
	label     string
	table     string
	parentCol string
	ordered   bool
	cascades  []cascade
}

var entities = map[Entity]entitySpec{
	EntityKanji: {label: "kanji", table: "kanjis", cascades: []cascade{
		{EntityVocabKanji, `SELECT DISTINCT vocab_id FROM vocab_kanji WHERE kanji_id = ?`},
		{EntityGroupingMember, `SELECT DISTINCT m.grouping_id FROM component_grouping_members m
			JOIN component_occurrences o ON o.id = m.occurrence_id WHERE o.kanji_id = ?`},
	}},
	EntityComponent: {label: "component", table: "components", cascades: []cascade{
		{EntityOccurrence, `SELECT DISTINCT kanji_id FROM component_occurrences WHERE component_id = ?`},
	}},
	EntityVocabulary: {label: "vocabulary", table: "vocabulary"},

	EntityMeaning: {label: "meaning", table: "kanji_meanings", parentCol: "kanji_id", ordered: true, cascades: []cascade{
		{EntityGroupMember, `SELECT DISTINCT reading_group_id FROM kanji_meaning_group_members WHERE meaning_id = ?`},
	}},
	EntityReadingGroup: {label: "reading group", table: "kanji_meaning_reading_groups", parentCol: "kanji_id", ordered: true},
	EntityGroupMember:  {label: "group member", table: "kanji_meaning_group_members", parentCol: "reading_group_id", ordered: true},
	EntityOnReading:    {label: "on reading", table: "on_readings", parentCol: "kanji_id", ordered: true},
	EntityKunReading:   {label: "kun reading", table: "kun_readings", parentCol: "kanji_id", ordered: true},
	EntityClassificationType: {label: "classification type", table: "classification_types", ordered: true, cascades: []cascade{
		{EntityKanjiClassification, `SELECT DISTINCT kanji_id FROM kanji_classifications WHERE classification_type_id = ?`},
	}},
	EntityKanjiClassification: {label: "kanji classification", table: "kanji_classifications", parentCol: "kanji_id", ordered: true},
	EntityPositionType:         {label: "position type", table: "position_types", ordered: true},
	EntityForm:                 {label: "component form", table: "component_forms", parentCol: "component_id", ordered: true},
	EntityOccurrence: {label: "component occurrence", table: "component_occurrences", parentCol: "kanji_id", ordered: true, cascades: []cascade{
		{EntityGroupingMember, `SELECT DISTINCT grouping_id FROM component_grouping_members WHERE occurrence_id = ?`},
	}},
	EntityGrouping:       {label: "component grouping", table: "component_groupings", parentCol: "component_id", ordered: true},
	EntityGroupingMember: {label: "grouping member", table: "component_grouping_members", parentCol: "grouping_id", ordered: true},
	EntityVocabKanji:     {label: "vocabulary kanji", table: "vocab_kanji", parentCol: "vocab_id", ordered: true},
}

// Entities lists every entity name, sorted.
func Entities() []Entity {
	out := make([]Entity, 0, len(entities))
	for e := range entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OrderedEntities lists the entities whose rows carry a display order, sorted.
func OrderedEntities() []Entity {
	var out []Entity
	for _, e := range Entities() {
		if entities[e].ordered {
			out = append(out, e)
		}
	}
	return out
}

// ParseEntity validates an entity name coming from user input.
func ParseEntity(s string) (Entity, error) {
	e := Entity(strings.TrimSpace(strings.ToLower(s)))
	if _, ok := entities[e]; !ok {
		names := make([]string, 0, len(entities))
		for _, n := range Entities() {
			names = append(names, string(n))
		}
		return "", validate.Errorf("entity", "must be one of %s, got %q", strings.Join(names, ", "), s)
	}
	return e, nil
}

func lookupOrdered(e Entity) (entitySpec, error) {
	spec, ok := entities[e]
	if !ok {
		return entitySpec{}, validate.Errorf("entity", "unknown entity %q", e)
	}
	if !spec.ordered {
		return entitySpec{}, validate.Errorf("entity", "%s rows have no display order", spec.label)
	}
	return spec, nil
}

// Direction is an arrow action on a sibling list.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a direction coming from user input.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down:
		return d, nil
	default:
		return "", validate.Errorf("direction", "must be up or down, got %q", s)
	}
}

// ─── Sibling queries ─────────────────────────────────────────────────────────

// siblingIDs returns the ids of one sibling set in display order.
func siblingIDs(ctx context.Context, q dbtx, spec entitySpec, parentID int64) ([]int64, error) {
	query := `SELECT id FROM ` + spec.table
	var args []any
	if spec.parentCol != "" {
		query += ` WHERE ` + spec.parentCol + ` = ?`
		args = append(args, parentID)
	}
	query += ` ORDER BY display_order, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// parentOf returns the parent id of row id; 0 for whole-table lists.
func parentOf(ctx context.Context, q dbtx, spec entitySpec, id int64) (int64, error) {
	col := "0"
	if spec.parentCol != "" {
		col = spec.parentCol
	}
	var parent int64
	err := q.QueryRowContext(ctx, `SELECT `+col+` FROM `+spec.table+` WHERE id = ?`, id).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound(spec.label, id)
	}
	return parent, err
}

// nextDisplayOrder returns the display order a row appended to the set gets.
func nextDisplayOrder(ctx context.Context, q dbtx, spec entitySpec, parentID int64) (int, error) {
	query := `SELECT COALESCE(MAX(display_order), -1) + 1 FROM ` + spec.table
	var args []any
	if spec.parentCol != "" {
		query += ` WHERE ` + spec.parentCol + ` = ?`
		args = append(args, parentID)
	}
	var next int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next display order: %w", err)
	}
	return next, nil
}

// writeOrder assigns display_order 0..n-1 to ids in one UPDATE.
func writeOrder(ctx context.Context, q dbtx, spec entitySpec, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var b strings.Builder
	args := make([]any, 0, len(ids)*3)
	b.WriteString(`UPDATE ` + spec.table + ` SET display_order = CASE id`)
	for i, id := range ids {
		b.WriteString(` WHEN ? THEN ?`)
		args = append(args, id, i)
	}
	b.WriteString(` END WHERE id IN (` + placeholders(len(ids)) + `)`)
	args = append(args, int64Args(ids)...)

	if _, err := q.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("write display order: %w", err)
	}
	return nil
}

// compact renumbers one sibling set so its orders are 0..n-1 again.
func compact(ctx context.Context, q dbtx, spec entitySpec, parentID int64) error {
	ids, err := siblingIDs(ctx, q, spec, parentID)
	if err != nil {
		return fmt.Errorf("list siblings: %w", err)
	}
	return writeOrder(ctx, q, spec, ids)
}

// placeAt moves the freshly appended row id to position within its set.
// A nil or out-of-range position leaves it at the end.
func placeAt(ctx context.Context, q dbtx, spec entitySpec, parentID, id int64, position *int) error {
	if position == nil {
		return nil
	}
	ids, err := siblingIDs(ctx, q, spec, parentID)
	if err != nil {
		return fmt.Errorf("list siblings: %w", err)
	}
	p := *position
	if p < 0 || p >= len(ids)-1 {
		return nil
	}
	out := make([]int64, 0, len(ids))
	for _, sid := range ids {
		if sid != id {
			out = append(out, sid)
		}
	}
	out = append(out[:p], append([]int64{id}, out[p:]...)...)
	return writeOrder(ctx, q, spec, out)
}

// insertOrdered appends a row to its sibling set inside tx and, when
// position is set, moves it there. insert receives the display order to
// write and returns the new row id.
func insertOrdered(ctx context.Context, tx *sql.Tx, e Entity, parentID int64, position *int, insert func(order int) (int64, error)) (int64, error) {
	spec := entities[e]
	order, err := nextDisplayOrder(ctx, tx, spec, parentID)
	if err != nil {
		return 0, err
	}
	id, err := insert(order)
	if err != nil {
		return 0, err
	}
	if err := placeAt(ctx, tx, spec, parentID, id, position); err != nil {
		return 0, err
	}
	return id, nil
}

// ─── Generic operations ──────────────────────────────────────────────────────

// Reorder rewrites the display order of one sibling set so that ids appear
// in the given order. ids must be exactly the current siblings. parentID
// is ignored for whole-table lists (classification and position types).
func (s *Store) Reorder(ctx context.Context, e Entity, parentID int64, ids []int64) error {
	spec, err := lookupOrdered(e)
	if err != nil {
		return err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := siblingIDs(ctx, tx, spec, parentID)
		if err != nil {
			return fmt.Errorf("list siblings: %w", err)
		}
		if err := checkPermutation(spec.label, current, ids); err != nil {
			return err
		}
		return writeOrder(ctx, tx, spec, ids)
	})
	return wrapErr("reorder", spec.label, err)
}

// Move swaps row id with its neighbour in the given direction. Moving the
// first row up or the last row down is a no-op.
func (s *Store) Move(ctx context.Context, e Entity, id int64, dir Direction) error {
	spec, err := lookupOrdered(e)
	if err != nil {
		return err
	}
	if dir != Up && dir != Down {
		return validate.Errorf("direction", "must be up or down, got %q", dir)
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		parent, err := parentOf(ctx, tx, spec, id)
		if err != nil {
			return err
		}
		ids, err := siblingIDs(ctx, tx, spec, parent)
		if err != nil {
			return fmt.Errorf("list siblings: %w", err)
		}
		idx := -1
		for i, sid := range ids {
			if sid == id {
				idx = i
				break
			}
		}
		target := idx - 1
		if dir == Down {
			target = idx + 1
		}
		if idx < 0 || target < 0 || target >= len(ids) {
			return nil
		}
		ids[idx], ids[target] = ids[target], ids[idx]
		return writeOrder(ctx, tx, spec, ids)
	})
	return wrapErr("move", spec.label, err)
}

// Delete removes row id of entity e. Ordered siblings are compacted, and
// so is every foreign sibling set the delete cascades into.
func (s *Store) Delete(ctx context.Context, e Entity, id int64) error {
	spec, ok := entities[e]
	if !ok {
		return validate.Errorf("entity", "unknown entity %q", e)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return deleteInTx(ctx, tx, e, id)
	})
	if err == nil {
		s.logger.Debug("deleted", "entity", string(e), "id", id)
	}
	return wrapErr("delete", spec.label, err)
}

func deleteInTx(ctx context.Context, tx *sql.Tx, e Entity, id int64) error {
	spec := entities[e]
	parent, err := parentOf(ctx, tx, spec, id)
	if err != nil {
		return err
	}

	affected := make(map[Entity][]int64, len(spec.cascades))
	for _, c := range spec.cascades {
		parents, err := queryIDs(ctx, tx, c.parents, id)
		if err != nil {
			return fmt.Errorf("collect %s parents: %w", entities[c.child].label, err)
		}
		affected[c.child] = parents
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+spec.table+` WHERE id = ?`, id); err != nil {
		return err
	}

	if spec.ordered {
		if err := compact(ctx, tx, spec, parent); err != nil {
			return err
		}
	}
	for _, c := range spec.cascades {
		for _, p := range affected[c.child] {
			if err := compact(ctx, tx, entities[c.child], p); err != nil {
				return err
			}
		}
	}
	return nil
}

// normalizeAllOrders compacts every sibling set in the database. Used after
// importing files that may carry gaps.
func normalizeAllOrders(ctx context.Context, tx *sql.Tx) error {
	for _, e := range OrderedEntities() {
		spec := entities[e]
		if spec.parentCol == "" {
			if err := compact(ctx, tx, spec, 0); err != nil {
				return fmt.Errorf("normalize %s: %w", spec.label, err)
			}
			continue
		}
		parents, err := queryIDs(ctx, tx, `SELECT DISTINCT `+spec.parentCol+` FROM `+spec.table)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", spec.label, err)
		}
		for _, p := range parents {
			if err := compact(ctx, tx, spec, p); err != nil {
				return fmt.Errorf("normalize %s: %w", spec.label, err)
			}
		}
	}
	return nil
}

func checkPermutation(label string, current, ids []int64) error {
	if len(ids) != len(current) {
		return fmt.Errorf("%w: %s list has %d rows, got %d ids", ErrInvalidOrder, label, len(current), len(ids))
	}
	want := make(map[int64]bool, len(current))
	for _, id := range current {
		want[id] = true
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !want[id] {
			return fmt.Errorf("%w: %s %d is not in this list", ErrInvalidOrder, label, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: %s %d listed twice", ErrInvalidOrder, label, id)
		}
		seen[id] = true
	}
	return nil
}

func queryIDs(ctx context.Context, q dbtx, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DisplayOrders returns the display_order values of one sibling set in
// list order. Callers use it to check the set is contiguous.
func (s *Store) DisplayOrders(ctx context.Context, e Entity, parentID int64) ([]int, error) {
	spec, err := lookupOrdered(e)
	if err != nil {
		return nil, err
	}
	query := `SELECT display_order FROM ` + spec.table
	var args []any
	if spec.parentCol != "" {
		query += ` WHERE ` + spec.parentCol + ` = ?`
		args = append(args, parentID)
	}
	query += ` ORDER BY display_order, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list orders", spec.label, err)
	}
	defer rows.Close()

	var orders []int
	for rows.Next() {
		var o int
		if err := rows.Scan(&o); err != nil {
			return nil, wrapErr("list orders", spec.label, err)
		}
		orders = append(orders, o)
	}
	return orders, wrapErr("list orders", spec.label, rows.Err())
}
