package dictionary

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed/*.yaml
var seedFS embed.FS

// ─── Seed data ───────────────────────────────────────────────────────────────

type seedPositionType struct {
	PositionName     string `yaml:"position_name"`
	NameJapanese     string `yaml:"name_japanese"`
	NameEnglish      string `yaml:"name_english"`
	Description      string `yaml:"description"`
	DescriptionShort string `yaml:"description_short"`
}

type seedKanji struct {
	Character      string  `yaml:"character"`
	StrokeCount    int     `yaml:"stroke_count"`
	ShortMeaning   string  `yaml:"short_meaning"`
	SearchKeywords string  `yaml:"search_keywords"`
	JLPTLevel      string  `yaml:"jlpt_level"`
	JoyoLevel      *string `yaml:"joyo_level"`
	KenteiLevel    string  `yaml:"kentei_level"`
	NotesPersonal  string  `yaml:"notes_personal"`
	Classification string  `yaml:"classification"`
}

type seedComponent struct {
	Character           string `yaml:"character"`
	StrokeCount         int    `yaml:"stroke_count"`
	ShortMeaning        string `yaml:"short_meaning"`
	SearchKeywords      string `yaml:"search_keywords"`
	Description         string `yaml:"description"`
	SourceKanji         string `yaml:"source_kanji"`
	CanBeRadical        bool   `yaml:"can_be_radical"`
	KangxiNumber        int    `yaml:"kangxi_number"`
	KangxiMeaning       string `yaml:"kangxi_meaning"`
	RadicalNameJapanese string `yaml:"radical_name_japanese"`
}

type seedOccurrence struct {
	Kanji     string `yaml:"kanji"`
	Component string `yaml:"component"`
	Position  string `yaml:"position"`
	IsRadical bool   `yaml:"is_radical"`
}

type seedReading struct {
	Kanji     string `yaml:"kanji"`
	Reading   string `yaml:"reading"`
	Okurigana string `yaml:"okurigana"`
	Level     string `yaml:"level"`
}

type seedMeaning struct {
	Kanji string `yaml:"kanji"`
	Text  string `yaml:"text"`
	Info  string `yaml:"info"`
}

type seedReadingGroup struct {
	Kanji    string   `yaml:"kanji"`
	Reading  string   `yaml:"reading"`
	Meanings []string `yaml:"meanings"`
}

type seedVocabKanji struct {
	Character string `yaml:"character"`
	Notes     string `yaml:"notes"`
}

type seedVocabulary struct {
	Word           string           `yaml:"word"`
	Kana           string           `yaml:"kana"`
	ShortMeaning   string           `yaml:"short_meaning"`
	SearchKeywords string           `yaml:"search_keywords"`
	JLPTLevel      string           `yaml:"jlpt_level"`
	IsCommon       bool             `yaml:"is_common"`
	Description    string           `yaml:"description"`
	Kanji          []seedVocabKanji `yaml:"kanji"`
}

// seedData is the union of every seed file.
type seedData struct {
	PositionTypes []seedPositionType `yaml:"position_types"`
	Kanji         []seedKanji        `yaml:"kanji"`
	Components    []seedComponent    `yaml:"components"`
	Occurrences   []seedOccurrence   `yaml:"occurrences"`
	OnReadings    []seedReading      `yaml:"on_readings"`
	KunReadings   []seedReading      `yaml:"kun_readings"`
	Meanings      []seedMeaning      `yaml:"meanings"`
	ReadingGroups []seedReadingGroup `yaml:"reading_groups"`
	Vocabulary    []seedVocabulary   `yaml:"vocabulary"`
}

func loadSeedData() (*seedData, error) {
	names, err := fs.Glob(seedFS, "seed/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	data := &seedData{}
	for _, name := range names {
		raw, err := seedFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return data, nil
}

// ─── Result ──────────────────────────────────────────────────────────────────

// SeedResult counts the rows Seed inserted.
type SeedResult struct {
	PositionTypes   int `json:"position_types"`
	Kanji           int `json:"kanji"`
	Components      int `json:"components"`
	Occurrences     int `json:"occurrences"`
	OnReadings      int `json:"on_readings"`
	KunReadings     int `json:"kun_readings"`
	Meanings        int `json:"meanings"`
	ReadingGroups   int `json:"reading_groups"`
	Classifications int `json:"classifications"`
	Vocabulary      int `json:"vocabulary"`
	VocabKanji      int `json:"vocab_kanji"`
}

// Total is the number of rows inserted across all tables.
func (r *SeedResult) Total() int {
	return r.PositionTypes + r.Kanji + r.Components + r.Occurrences + r.OnReadings + r.KunReadings +
		r.Meanings + r.ReadingGroups + r.Classifications + r.Vocabulary + r.VocabKanji
}

// Message summarizes the result, e.g. "Seeded 8 position types, 18 kanji".
// Tables that were skipped are left out.
func (r *SeedResult) Message() string {
	var parts []string
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(r.PositionTypes, "position types")
	add(r.Kanji, "kanji")
	add(r.Components, "components")
	add(r.OnReadings+r.KunReadings, "readings")
	if r.Meanings > 0 {
		m := fmt.Sprintf("%d meanings", r.Meanings)
		if r.ReadingGroups > 0 {
			m += fmt.Sprintf(" (%d grouped)", r.ReadingGroups)
		}
		parts = append(parts, m)
	}
	add(r.Classifications, "classifications")
	if r.Vocabulary > 0 {
		v := fmt.Sprintf("%d vocabulary", r.Vocabulary)
		if r.VocabKanji > 0 {
			v += fmt.Sprintf(" (%d kanji links)", r.VocabKanji)
		}
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return "Nothing to seed: every table already has data"
	}
	return "Seeded " + strings.Join(parts, ", ")
}

// ─── Seed ────────────────────────────────────────────────────────────────────

// Seed loads the built-in sample data. Each group of tables is filled only
// when it is empty, so seeding twice is harmless; ErrAlreadySeeded is
// returned when nothing was inserted.
func (s *Store) Seed(ctx context.Context) (*SeedResult, error) {
	data, err := loadSeedData()
	if err != nil {
		return nil, wrapErr("seed", "database", err)
	}

	res := &SeedResult{}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		sd := &seeder{ctx: ctx, tx: tx, data: data, res: res}
		steps := []struct {
			table string
			run   func() error
		}{
			{"position_types", sd.positionTypes},
			{"kanjis", sd.kanji},
			{"components", sd.components},
			{"on_readings", func() error { return sd.readings(OnReading, data.OnReadings, &res.OnReadings) }},
			{"kun_readings", func() error { return sd.readings(KunReading, data.KunReadings, &res.KunReadings) }},
			{"kanji_meanings", sd.meanings},
			{"kanji_classifications", sd.classifications},
			{"vocabulary", sd.vocabulary},
		}
		for _, step := range steps {
			empty, err := tableEmpty(ctx, tx, step.table)
			if err != nil {
				return err
			}
			if !empty {
				continue
			}
			if err := step.run(); err != nil {
				return fmt.Errorf("seed %s: %w", step.table, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("seed", "database", err)
	}
	if res.Total() == 0 {
		return res, wrapErr("seed", "database", ErrAlreadySeeded)
	}
	s.logger.Info("database seeded", "rows", res.Total())
	return res, nil
}

func tableEmpty(ctx context.Context, q dbtx, table string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	return n == 0, nil
}

// seeder inserts seed rows through a single transaction. Rows that refer to
// a kanji or component missing from the database are skipped.
type seeder struct {
	ctx  context.Context
	tx   *sql.Tx
	data *seedData
	res  *SeedResult
}

func (sd *seeder) exec(query string, args ...any) (int64, error) {
	r, err := sd.tx.ExecContext(sd.ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return r.LastInsertId()
}

// idsBy maps a text column to the lowest id holding each value.
func (sd *seeder) idsBy(table, column string) (map[string]int64, error) {
	rows, err := sd.tx.QueryContext(sd.ctx, `SELECT `+column+`, MIN(id) FROM `+table+` GROUP BY `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var id int64
		if err := rows.Scan(&key, &id); err != nil {
			return nil, err
		}
		out[key] = id
	}
	return out, rows.Err()
}

func (sd *seeder) positionTypes() error {
	for i, p := range sd.data.PositionTypes {
		_, err := sd.exec(
			`INSERT INTO position_types (position_name, name_japanese, name_english, description, description_short, display_order)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.PositionName, nullString(&p.NameJapanese), nullString(&p.NameEnglish),
			nullString(&p.Description), nullString(&p.DescriptionShort), i)
		if err != nil {
			return fmt.Errorf("position type %q: %w", p.PositionName, err)
		}
		sd.res.PositionTypes++
	}
	return nil
}

func (sd *seeder) kanji() error {
	now := Now()
	for _, k := range sd.data.Kanji {
		kentei := NormalizeKenteiLevel(k.KenteiLevel)
		_, err := sd.exec(
			`INSERT INTO kanjis (character, stroke_count, short_meaning, search_keywords, jlpt_level, joyo_level,
				kanji_kentei_level, notes_personal, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			k.Character, nullInt(&k.StrokeCount), nullString(&k.ShortMeaning), nullString(&k.SearchKeywords),
			nullString(&k.JLPTLevel), nullString(k.JoyoLevel), nullString(&kentei), nullString(&k.NotesPersonal), now, now)
		if err != nil {
			return fmt.Errorf("kanji %q: %w", k.Character, err)
		}
		sd.res.Kanji++
	}
	return nil
}

// components seeds components and then their occurrences. A radical
// occurrence also becomes the kanji's radical when it has none yet.
func (sd *seeder) components() error {
	kanjiIDs, err := sd.idsBy("kanjis", "character")
	if err != nil {
		return err
	}
	now := Now()
	for _, c := range sd.data.Components {
		var source *int64
		if id, ok := kanjiIDs[c.SourceKanji]; ok {
			source = &id
		}
		_, err := sd.exec(
			`INSERT INTO components (character, stroke_count, short_meaning, search_keywords, source_kanji_id, description,
				can_be_radical, kangxi_number, kangxi_meaning, radical_name_japanese, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Character, nullInt(&c.StrokeCount), nullString(&c.ShortMeaning), nullString(&c.SearchKeywords),
			nullInt64(source), nullString(&c.Description), boolToInt(c.CanBeRadical), nullInt(&c.KangxiNumber),
			nullString(&c.KangxiMeaning), nullString(&c.RadicalNameJapanese), now, now)
		if err != nil {
			return fmt.Errorf("component %q: %w", c.Character, err)
		}
		sd.res.Components++
	}

	componentIDs, err := sd.idsBy("components", "character")
	if err != nil {
		return err
	}
	positionIDs, err := sd.idsBy("position_types", "position_name")
	if err != nil {
		return err
	}
	for _, o := range sd.data.Occurrences {
		kanjiID, ok := kanjiIDs[o.Kanji]
		componentID, ok2 := componentIDs[o.Component]
		if !ok || !ok2 {
			continue
		}
		var position *int64
		if id, ok := positionIDs[o.Position]; ok {
			position = &id
		}
		order, err := nextDisplayOrder(sd.ctx, sd.tx, entities[EntityOccurrence], kanjiID)
		if err != nil {
			return err
		}
		_, err = sd.exec(
			`INSERT INTO component_occurrences (kanji_id, component_id, position_type_id, is_radical, display_order, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			kanjiID, componentID, nullInt64(position), boolToInt(o.IsRadical), order, now, now)
		if err != nil {
			return fmt.Errorf("occurrence %s in %s: %w", o.Component, o.Kanji, err)
		}
		if o.IsRadical {
			if _, err := sd.tx.ExecContext(sd.ctx,
				`UPDATE kanjis SET radical_id = ? WHERE id = ? AND radical_id IS NULL`, componentID, kanjiID); err != nil {
				return err
			}
		}
		sd.res.Occurrences++
	}
	return nil
}

func (sd *seeder) readings(kind ReadingKind, readings []seedReading, count *int) error {
	kanjiIDs, err := sd.idsBy("kanjis", "character")
	if err != nil {
		return err
	}
	orders := make(map[int64]int)
	now := Now()
	for _, r := range readings {
		kanjiID, ok := kanjiIDs[r.Kanji]
		if !ok {
			continue
		}
		level := r.Level
		if level == "" {
			level = ReadingLevels[0]
		}
		order := orders[kanjiID]
		if kind == KunReading {
			_, err = sd.exec(
				`INSERT INTO kun_readings (kanji_id, reading, okurigana, reading_level, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				kanjiID, r.Reading, nullString(&r.Okurigana), level, order, now, now)
		} else {
			_, err = sd.exec(
				`INSERT INTO on_readings (kanji_id, reading, reading_level, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				kanjiID, r.Reading, level, order, now, now)
		}
		if err != nil {
			return fmt.Errorf("reading %s of %s: %w", r.Reading, r.Kanji, err)
		}
		orders[kanjiID] = order + 1
		*count++
	}
	return nil
}

// meanings seeds meanings together with the reading groups that sort them.
func (sd *seeder) meanings() error {
	kanjiIDs, err := sd.idsBy("kanjis", "character")
	if err != nil {
		return err
	}
	now := Now()
	type key struct {
		kanjiID int64
		text    string
	}
	meaningIDs := make(map[key]int64)
	orders := make(map[int64]int)
	for _, m := range sd.data.Meanings {
		kanjiID, ok := kanjiIDs[m.Kanji]
		if !ok {
			continue
		}
		order := orders[kanjiID]
		id, err := sd.exec(
			`INSERT INTO kanji_meanings (kanji_id, meaning_text, additional_info, display_order, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			kanjiID, m.Text, nullString(&m.Info), order, now, now)
		if err != nil {
			return fmt.Errorf("meaning %q of %s: %w", m.Text, m.Kanji, err)
		}
		meaningIDs[key{kanjiID, m.Text}] = id
		orders[kanjiID] = order + 1
		sd.res.Meanings++
	}

	groupOrders := make(map[int64]int)
	for _, g := range sd.data.ReadingGroups {
		kanjiID, ok := kanjiIDs[g.Kanji]
		if !ok {
			continue
		}
		order := groupOrders[kanjiID]
		groupID, err := sd.exec(
			`INSERT INTO kanji_meaning_reading_groups (kanji_id, reading_text, display_order, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			kanjiID, g.Reading, order, now, now)
		if err != nil {
			return fmt.Errorf("reading group %s of %s: %w", g.Reading, g.Kanji, err)
		}
		groupOrders[kanjiID] = order + 1
		sd.res.ReadingGroups++

		memberOrder := 0
		for _, text := range g.Meanings {
			meaningID, ok := meaningIDs[key{kanjiID, text}]
			if !ok {
				continue
			}
			if _, err := sd.exec(
				`INSERT INTO kanji_meaning_group_members (reading_group_id, meaning_id, display_order) VALUES (?, ?, ?)`,
				groupID, meaningID, memberOrder); err != nil {
				return fmt.Errorf("group member %q: %w", text, err)
			}
			memberOrder++
		}
	}
	return nil
}

func (sd *seeder) classifications() error {
	kanjiIDs, err := sd.idsBy("kanjis", "character")
	if err != nil {
		return err
	}
	typeIDs, err := sd.idsBy("classification_types", "type_name")
	if err != nil {
		return err
	}
	now := Now()
	for _, k := range sd.data.Kanji {
		kanjiID, ok := kanjiIDs[k.Character]
		typeID, ok2 := typeIDs[k.Classification]
		if !ok || !ok2 {
			continue
		}
		if _, err := sd.exec(
			`INSERT INTO kanji_classifications (kanji_id, classification_type_id, display_order, created_at, updated_at)
			 VALUES (?, ?, 0, ?, ?)`,
			kanjiID, typeID, now, now); err != nil {
			return fmt.Errorf("classification of %s: %w", k.Character, err)
		}
		sd.res.Classifications++
	}
	return nil
}

// vocabulary seeds words together with their kanji links.
func (sd *seeder) vocabulary() error {
	kanjiIDs, err := sd.idsBy("kanjis", "character")
	if err != nil {
		return err
	}
	now := Now()
	for _, v := range sd.data.Vocabulary {
		vocabID, err := sd.exec(
			`INSERT INTO vocabulary (word, kana, short_meaning, search_keywords, jlpt_level, is_common, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.Word, nullString(&v.Kana), nullString(&v.ShortMeaning), nullString(&v.SearchKeywords),
			nullString(&v.JLPTLevel), boolToInt(v.IsCommon), nullString(&v.Description), now, now)
		if err != nil {
			return fmt.Errorf("vocabulary %q: %w", v.Word, err)
		}
		sd.res.Vocabulary++

		order := 0
		for _, link := range v.Kanji {
			kanjiID, ok := kanjiIDs[link.Character]
			if !ok {
				continue
			}
			if _, err := sd.exec(
				`INSERT INTO vocab_kanji (vocab_id, kanji_id, analysis_notes, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				vocabID, kanjiID, nullString(&link.Notes), order, now, now); err != nil {
				return fmt.Errorf("link %s to %q: %w", link.Character, v.Word, err)
			}
			order++
			sd.res.VocabKanji++
		}
	}
	return nil
}
