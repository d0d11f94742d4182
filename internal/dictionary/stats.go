package dictionary

import (
	"context"
	"fmt"
	"strings"
)

// Stats holds row counts per table.
type Stats struct {
	Kanji                int `json:"kanji"`
	Components           int `json:"components"`
	Vocabulary           int `json:"vocabulary"`
	Meanings             int `json:"meanings"`
	ReadingGroups        int `json:"reading_groups"`
	OnReadings           int `json:"on_readings"`
	KunReadings          int `json:"kun_readings"`
	KanjiClassifications int `json:"kanji_classifications"`
	ClassificationTypes  int `json:"classification_types"`
	PositionTypes        int `json:"position_types"`
	Forms                int `json:"forms"`
	Occurrences          int `json:"occurrences"`
	Groupings            int `json:"groupings"`
	VocabKanji           int `json:"vocab_kanji"`
	SchemaVersion        int `json:"schema_version"`
}

// Stats counts the rows of every table.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	counts := []struct {
		table string
		dst   *int
	}{
		{"kanjis", &st.Kanji},
		{"components", &st.Components},
		{"vocabulary", &st.Vocabulary},
		{"kanji_meanings", &st.Meanings},
		{"kanji_meaning_reading_groups", &st.ReadingGroups},
		{"on_readings", &st.OnReadings},
		{"kun_readings", &st.KunReadings},
		{"kanji_classifications", &st.KanjiClassifications},
		{"classification_types", &st.ClassificationTypes},
		{"position_types", &st.PositionTypes},
		{"component_forms", &st.Forms},
		{"component_occurrences", &st.Occurrences},
		{"component_groupings", &st.Groupings},
		{"vocab_kanji", &st.VocabKanji},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dst); err != nil {
			return nil, wrapErr("count", c.table, err)
		}
	}
	v, err := SchemaVersion(ctx, s.db)
	if err != nil {
		return nil, wrapErr("count", "schema", err)
	}
	st.SchemaVersion = v
	return st, nil
}

// String renders the counts one per line.
func (st *Stats) String() string {
	var b strings.Builder
	for _, line := range []struct {
		label string
		n     int
	}{
		{"Kanji", st.Kanji},
		{"Components", st.Components},
		{"Vocabulary", st.Vocabulary},
		{"Meanings", st.Meanings},
		{"Reading groups", st.ReadingGroups},
		{"On readings", st.OnReadings},
		{"Kun readings", st.KunReadings},
		{"Kanji classifications", st.KanjiClassifications},
		{"Classification types", st.ClassificationTypes},
		{"Position types", st.PositionTypes},
		{"Component forms", st.Forms},
		{"Component occurrences", st.Occurrences},
		{"Component groupings", st.Groupings},
		{"Vocabulary kanji", st.VocabKanji},
	} {
		fmt.Fprintf(&b, "%-22s %d\n", line.label+":", line.n)
	}
	fmt.Fprintf(&b, "%-22s %d\n", "Schema version:", st.SchemaVersion)
	return b.String()
}
