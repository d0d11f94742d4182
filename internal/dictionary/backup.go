package dictionary

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ImportExtensions are the file extensions Import accepts.
var ImportExtensions = []string{".db", ".sqlite", ".sqlite3"}

// clearTables lists user tables children first. Reference tables
// (classification and position types) are not part of it.
var clearTables = []string{
	"component_grouping_members",
	"component_groupings",
	"component_occurrences",
	"component_forms",
	"kanji_classifications",
	"kanji_meaning_group_members",
	"kanji_meaning_reading_groups",
	"kanji_meanings",
	"on_readings",
	"kun_readings",
	"vocab_kanji",
	"vocabulary",
	"kanjis",
	"components",
}

// importTables is every table Import replaces, children first.
var importTables = append(append([]string{}, clearTables...), "position_types", "classification_types")

// ExportFileName returns the file name an export taken at t gets.
func ExportFileName(t time.Time) string {
	return "kanji-dictionary-" + t.Format("2006-01-02-15-04") + ".db"
}

// Snapshot returns a consistent copy of the whole database file.
func (s *Store) Snapshot(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "kanjidict-snapshot-*")
	if err != nil {
		return nil, wrapErr("export", "database", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return nil, wrapErr("export", "database", fmt.Errorf("vacuum into: %w", err))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapErr("export", "database", err)
	}
	return data, nil
}

// Export writes a snapshot to dir/ExportFileName(now) and returns the path.
func (s *Store) Export(ctx context.Context, dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", validate.Errorf("dir", "export directory must not be empty")
	}
	data, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", wrapErr("export", "database", err)
	}
	path := filepath.Join(dir, ExportFileName(time.Now()))
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", wrapErr("export", "database", fmt.Errorf("write %s: %w", path, err))
	}
	s.logger.Info("database exported", "path", path, "bytes", len(data))
	return path, nil
}

// ValidateImportFile checks that path looks like a dictionary database:
// a known extension, readable by SQLite, with a kanjis table.
func ValidateImportFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if err := validate.OneOf("file", ext, ImportExtensions); err != nil {
		return validate.Errorf("file", "must be a %s file, got %q", strings.Join(ImportExtensions, ", "), filepath.Base(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return validate.Errorf("file", "cannot read %s: %v", path, err)
	}
	if info.IsDir() {
		return validate.Errorf("file", "%s is a directory", path)
	}

	dsn, err := sqliteDSN(path, url.Values{"mode": {"ro"}})
	if err != nil {
		return validate.Errorf("file", "cannot open %s: %v", filepath.Base(path), err)
	}
	db, err := openDB("sqlite", dsn)
	if err != nil {
		return validate.Errorf("file", "cannot open %s: %v", filepath.Base(path), err)
	}
	defer db.Close()

	ok, err := tableExists(context.Background(), db, "kanjis")
	if err != nil {
		return validate.Errorf("file", "%s is not a SQLite database", filepath.Base(path))
	}
	if !ok {
		return validate.Errorf("file", "%s has no kanjis table", filepath.Base(path))
	}
	return nil
}

// Import replaces the contents of every table with the contents of the
// database at path. The file is copied and migrated first so older exports
// load into the current schema; the replacement runs in one transaction.
func (s *Store) Import(ctx context.Context, path string) error {
	if err := ValidateImportFile(path); err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "kanjidict-import-*")
	if err != nil {
		return wrapErr("import", "database", err)
	}
	defer os.RemoveAll(dir)

	candidate := filepath.Join(dir, "import.db")
	if err := copyFile(path, candidate); err != nil {
		return wrapErr("import", "database", err)
	}
	if err := migrateCandidate(ctx, candidate); err != nil {
		return wrapErr("import", "database", err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return wrapErr("import", "database", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `ATTACH DATABASE ? AS candidate`, candidate); err != nil {
		return wrapErr("import", "database", fmt.Errorf("attach: %w", err))
	}
	defer func() { _, _ = conn.ExecContext(context.Background(), `DETACH DATABASE candidate`) }()

	copied, err := replaceTables(ctx, conn)
	if err != nil {
		return wrapErr("import", "database", err)
	}
	s.logger.Info("database imported", "path", path, "rows", copied)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

func migrateCandidate(ctx context.Context, path string) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := RunMigrations(ctx, db, DefaultMigrations()); err != nil {
		return fmt.Errorf("migrate import file: %w", err)
	}
	// Leave a single self-contained file for ATTACH.
	if _, err := db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("checkpoint import file: %w", err)
	}
	return nil
}

// replaceTables copies every table from the attached candidate database
// into main. Foreign keys are checked at commit, which lets kanjis and
// components reference each other.
func replaceTables(ctx context.Context, conn *sql.Conn) (int64, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `PRAGMA defer_foreign_keys = ON`); err != nil {
		return 0, err
	}
	for _, table := range importTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM main.`+table); err != nil {
			return 0, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	var copied int64
	for i := len(importTables) - 1; i >= 0; i-- {
		table := importTables[i]
		cols, err := sharedColumns(ctx, tx, table)
		if err != nil {
			return 0, err
		}
		list := strings.Join(cols, ", ")
		res, err := tx.ExecContext(ctx, `INSERT INTO main.`+table+` (`+list+`) SELECT `+list+` FROM candidate.`+table)
		if err != nil {
			return 0, fmt.Errorf("copy %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		copied += n
	}

	if err := normalizeAllOrders(ctx, tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return copied, nil
}

// sharedColumns lists the columns table has in both main and candidate.
func sharedColumns(ctx context.Context, q dbtx, table string) ([]string, error) {
	mainCols, err := tableColumns(ctx, q, "main", table)
	if err != nil {
		return nil, err
	}
	candidateCols, err := tableColumns(ctx, q, "candidate", table)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(candidateCols))
	for _, c := range candidateCols {
		have[c] = true
	}
	var out []string
	for _, c := range mainCols {
		if have[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("table %s has no columns in common with the import file", table)
	}
	return out, nil
}

// Clear deletes all user data. Classification and position types stay.
func (s *Store) Clear(ctx context.Context) error {
	var deleted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range clearTables {
			res, err := tx.ExecContext(ctx, `DELETE FROM `+table)
			if err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
			n, _ := res.RowsAffected()
			deleted += n
		}
		return nil
	})
	if err != nil {
		return wrapErr("clear", "database", err)
	}
	s.logger.Info("database cleared", "rows", deleted)
	return nil
}
