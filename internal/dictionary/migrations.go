package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Migration is one forward-only schema step. Up runs inside its own
// transaction together with the schema_migrations bookkeeping row.
type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, tx *sql.Tx) error
}

var defaultMigrations = []Migration{
	{
		Version:     1,
		Description: "create dictionary tables",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx, "v1", schemaV1)
		},
	},
	{
		Version:     2,
		Description: "insert classification types",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			for i, ct := range builtinClassificationTypes {
				_, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO classification_types
					 (type_name, name_japanese, name_english, description, description_short, display_order)
					 VALUES (?, ?, ?, ?, ?, ?)`,
					ct.TypeName, ct.NameJapanese, ct.NameEnglish, ct.Description, ct.DescriptionShort, i,
				)
				if err != nil {
					return fmt.Errorf("insert classification type %q: %w", ct.TypeName, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "add lookup indexes",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx, "v3", []string{
				`CREATE INDEX IF NOT EXISTS idx_meanings_kanji ON kanji_meanings(kanji_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_reading_groups_kanji ON kanji_meaning_reading_groups(kanji_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_group_members_group ON kanji_meaning_group_members(reading_group_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_on_readings_kanji ON on_readings(kanji_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_kun_readings_kanji ON kun_readings(kanji_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_kanji_classifications_kanji ON kanji_classifications(kanji_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_forms_component ON component_forms(component_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_occurrences_kanji ON component_occurrences(kanji_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_occurrences_component ON component_occurrences(component_id)`,
				`CREATE INDEX IF NOT EXISTS idx_groupings_component ON component_groupings(component_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_grouping_members_grouping ON component_grouping_members(grouping_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_vocab_kanji_vocab ON vocab_kanji(vocab_id, display_order)`,
				`CREATE INDEX IF NOT EXISTS idx_vocab_kanji_kanji ON vocab_kanji(kanji_id)`,
				`CREATE INDEX IF NOT EXISTS idx_components_kangxi ON components(kangxi_number)`,
			})
		},
	},
}

var schemaV1 = []string{
	`CREATE TABLE IF NOT EXISTS components (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		character             TEXT    NOT NULL,
		stroke_count          INTEGER,
		short_meaning         TEXT,
		search_keywords       TEXT,
		source_kanji_id       INTEGER REFERENCES kanjis(id) ON DELETE SET NULL,
		description           TEXT,
		can_be_radical        INTEGER NOT NULL DEFAULT 0,
		kangxi_number         INTEGER CHECK (kangxi_number IS NULL OR kangxi_number BETWEEN 1 AND 214),
		kangxi_meaning        TEXT,
		radical_name_japanese TEXT,
		created_at            TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at            TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS kanjis (
		id                        INTEGER PRIMARY KEY AUTOINCREMENT,
		character                 TEXT    NOT NULL UNIQUE,
		stroke_count              INTEGER CHECK (stroke_count IS NULL OR stroke_count BETWEEN 1 AND 64),
		short_meaning             TEXT,
		search_keywords           TEXT,
		radical_id                INTEGER REFERENCES components(id) ON DELETE SET NULL,
		jlpt_level                TEXT CHECK (jlpt_level IS NULL OR jlpt_level IN ('N5', 'N4', 'N3', 'N2', 'N1', 'non-jlpt')),
		joyo_level                TEXT CHECK (joyo_level IS NULL OR joyo_level IN ('elementary1', 'elementary2', 'elementary3', 'elementary4', 'elementary5', 'elementary6', 'secondary', 'non-joyo')),
		kanji_kentei_level        TEXT CHECK (kanji_kentei_level IS NULL OR kanji_kentei_level IN ('10', '9', '8', '7', '6', '5', '4', '3', 'pre2', '2', 'pre1', '1')),
		stroke_diagram_image      BLOB,
		stroke_gif_image          BLOB,
		notes_etymology           TEXT,
		notes_semantic            TEXT,
		notes_education_mnemonics TEXT,
		notes_personal            TEXT,
		identifier                INTEGER,
		radical_stroke_count      INTEGER,
		created_at                TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at                TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS position_types (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		position_name     TEXT    NOT NULL UNIQUE,
		name_japanese     TEXT,
		name_english      TEXT,
		description       TEXT,
		description_short TEXT,
		display_order     INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS classification_types (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		type_name         TEXT    NOT NULL UNIQUE,
		name_japanese     TEXT,
		name_english      TEXT,
		description       TEXT,
		description_short TEXT,
		display_order     INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS component_forms (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		component_id   INTEGER NOT NULL REFERENCES components(id) ON DELETE CASCADE,
		form_character TEXT    NOT NULL,
		form_name      TEXT,
		stroke_count   INTEGER,
		usage_notes    TEXT,
		display_order  INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at     TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS component_occurrences (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		kanji_id          INTEGER NOT NULL REFERENCES kanjis(id) ON DELETE CASCADE,
		component_id      INTEGER NOT NULL REFERENCES components(id) ON DELETE CASCADE,
		component_form_id INTEGER REFERENCES component_forms(id) ON DELETE SET NULL,
		position_type_id  INTEGER REFERENCES position_types(id) ON DELETE SET NULL,
		is_radical        INTEGER NOT NULL DEFAULT 0,
		analysis_notes    TEXT,
		display_order     INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at        TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS component_groupings (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		component_id  INTEGER NOT NULL REFERENCES components(id) ON DELETE CASCADE,
		name          TEXT    NOT NULL,
		description   TEXT,
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at    TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS component_grouping_members (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		grouping_id   INTEGER NOT NULL REFERENCES component_groupings(id) ON DELETE CASCADE,
		occurrence_id INTEGER NOT NULL REFERENCES component_occurrences(id) ON DELETE CASCADE,
		display_order INTEGER NOT NULL DEFAULT 0,
		UNIQUE (grouping_id, occurrence_id)
	)`,
	`CREATE TABLE IF NOT EXISTS kanji_meanings (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		kanji_id        INTEGER NOT NULL REFERENCES kanjis(id) ON DELETE CASCADE,
		meaning_text    TEXT    NOT NULL,
		additional_info TEXT,
		display_order   INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at      TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS kanji_meaning_reading_groups (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		kanji_id      INTEGER NOT NULL REFERENCES kanjis(id) ON DELETE CASCADE,
		reading_text  TEXT    NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at    TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS kanji_meaning_group_members (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		reading_group_id INTEGER NOT NULL REFERENCES kanji_meaning_reading_groups(id) ON DELETE CASCADE,
		meaning_id       INTEGER NOT NULL REFERENCES kanji_meanings(id) ON DELETE CASCADE,
		display_order    INTEGER NOT NULL DEFAULT 0,
		UNIQUE (reading_group_id, meaning_id)
	)`,
	`CREATE TABLE IF NOT EXISTS on_readings (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		kanji_id      INTEGER NOT NULL REFERENCES kanjis(id) ON DELETE CASCADE,
		reading       TEXT    NOT NULL,
		reading_level TEXT    NOT NULL DEFAULT '小' CHECK (reading_level IN ('小', '中', '高', '外')),
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at    TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS kun_readings (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		kanji_id      INTEGER NOT NULL REFERENCES kanjis(id) ON DELETE CASCADE,
		reading       TEXT    NOT NULL,
		okurigana     TEXT,
		reading_level TEXT    NOT NULL DEFAULT '小' CHECK (reading_level IN ('小', '中', '高', '外')),
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at    TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS kanji_classifications (
		id                     INTEGER PRIMARY KEY AUTOINCREMENT,
		kanji_id               INTEGER NOT NULL REFERENCES kanjis(id) ON DELETE CASCADE,
		classification_type_id INTEGER NOT NULL REFERENCES classification_types(id) ON DELETE CASCADE,
		display_order          INTEGER NOT NULL DEFAULT 0,
		created_at             TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at             TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS vocabulary (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		word            TEXT    NOT NULL,
		kana            TEXT,
		short_meaning   TEXT,
		search_keywords TEXT,
		jlpt_level      TEXT CHECK (jlpt_level IS NULL OR jlpt_level IN ('N5', 'N4', 'N3', 'N2', 'N1', 'non-jlpt')),
		is_common       INTEGER NOT NULL DEFAULT 0,
		description     TEXT,
		created_at      TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at      TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS vocab_kanji (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		vocab_id       INTEGER NOT NULL REFERENCES vocabulary(id) ON DELETE CASCADE,
		kanji_id       INTEGER NOT NULL REFERENCES kanjis(id) ON DELETE CASCADE,
		analysis_notes TEXT,
		display_order  INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at     TEXT    NOT NULL DEFAULT (datetime('now'))
	)`,
}

// builtinClassificationTypes are the six-writings categories every
// database starts with.
var builtinClassificationTypes = []ClassificationType{
	{TypeName: "pictograph", NameJapanese: strPtr("象形文字"), NameEnglish: strPtr("Pictograph"),
		Description: strPtr("Drawn from the shape of a concrete object"), DescriptionShort: strPtr("Picture of a thing")},
	{TypeName: "ideograph", NameJapanese: strPtr("指事文字"), NameEnglish: strPtr("Ideograph"),
		Description: strPtr("Indicates an abstract idea with marks or symbols"), DescriptionShort: strPtr("Abstract sign")},
	{TypeName: "compound_ideograph", NameJapanese: strPtr("会意文字"), NameEnglish: strPtr("Compound Ideograph"),
		Description: strPtr("Combines the meanings of two or more characters"), DescriptionShort: strPtr("Combined meanings")},
	{TypeName: "phono_semantic", NameJapanese: strPtr("形声文字"), NameEnglish: strPtr("Phono-semantic"),
		Description: strPtr("Pairs a meaning component with a sound component"), DescriptionShort: strPtr("Meaning plus sound")},
	{TypeName: "phonetic_loan", NameJapanese: strPtr("仮借字"), NameEnglish: strPtr("Phonetic Loan"),
		Description: strPtr("Borrowed for its sound to write an unrelated word"), DescriptionShort: strPtr("Borrowed sound")},
}

func strPtr(s string) *string { return &s }

func execAll(ctx context.Context, tx *sql.Tx, label string, statements []string) error {
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s statement: %w", label, err)
		}
	}
	return nil
}

// DefaultMigrations returns a copy of the built-in migration list.
func DefaultMigrations() []Migration {
	out := make([]Migration, len(defaultMigrations))
	copy(out, defaultMigrations)
	return out
}

// CurrentSchemaVersion is the version a fully migrated database reports.
func CurrentSchemaVersion() int {
	return maxMigrationVersion(defaultMigrations)
}

// RunMigrations applies every migration newer than the database's
// recorded version and returns how many ran.
func RunMigrations(ctx context.Context, db *sql.DB, migrations []Migration) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("run migrations: db is nil")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("ensure migration table: %w", err)
	}

	ordered := make([]Migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return 0, err
	}

	maxVersion := maxMigrationVersion(ordered)
	if current > maxVersion {
		return 0, fmt.Errorf("%w: db=%d code=%d", ErrSchemaTooNew, current, maxVersion)
	}

	applied := 0
	for _, migration := range ordered {
		if migration.Version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("begin migration v%d: %w", migration.Version, err)
		}

		if err := migration.Up(ctx, tx); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("migration v%d (%s): %w", migration.Version, migration.Description, err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO schema_migrations(version, applied_at) VALUES (?, ?)`, migration.Version, Now()); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("record schema migration v%d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit migration v%d: %w", migration.Version, err)
		}
		applied++
	}

	return applied, nil
}

// SchemaVersion returns the highest applied migration version, 0 for a
// database that has never been migrated.
func SchemaVersion(ctx context.Context, db dbtx) (int, error) {
	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

func maxMigrationVersion(migrations []Migration) int {
	max := 0
	for _, migration := range migrations {
		if migration.Version > max {
			max = migration.Version
		}
	}
	return max
}

// tableExists reports whether a table with the given name exists.
func tableExists(ctx context.Context, q dbtx, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query table %s: %w", table, err)
	}
	return n > 0, nil
}

// tableColumns lists the column names of table in declaration order.
func tableColumns(ctx context.Context, q dbtx, schema, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `PRAGMA `+schema+`.table_info(`+table+`)`)
	if err != nil {
		return nil, fmt.Errorf("query table info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dfltVal sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typeStr, &notNull, &dfltVal, &pk); err != nil {
			return nil, fmt.Errorf("scan table info %s: %w", table, err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info %s: %w", table, err)
	}
	return cols, nil
}
