// Package dictionary implements the kanji dictionary store.
//
// It keeps kanji, components, vocabulary and everything hanging off them
// in a single SQLite file. Every sibling list (meanings, readings, forms,
// occurrences, grouping members, ...) carries a display_order column that
// is kept contiguous from 0 after each create, delete, reorder or move.
package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DefaultFileName is the database file name inside the data directory.
const DefaultFileName = "kanji-dictionary.db"

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds dictionary store configuration.
type Config struct {
	DataDir  string
	FileName string
	Logger   *slog.Logger
}

// DefaultConfig returns the default configuration for the store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:  filepath.Join(home, ".kanjidict"),
		FileName: DefaultFileName,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the dictionary engine backed by SQLite.
type Store struct {
	db     *sql.DB
	cfg    Config
	path   string
	hooks  storeHooks
	logger *slog.Logger
}

// dbtx is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type storeHooks struct {
	beginTx func(ctx context.Context, db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func defaultStoreHooks() storeHooks {
	return storeHooks{
		beginTx: func(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
			return db.BeginTx(ctx, nil)
		},
		commit: func(tx *sql.Tx) error {
			return tx.Commit()
		},
	}
}

// pragmas are applied to every pooled connection through the DSN.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

// New creates a Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("dictionary: data dir must not be empty")
	}
	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("dictionary: create data dir: %w", err)
	}

	path := filepath.Join(cfg.DataDir, cfg.FileName)
	db, err := openSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("dictionary: open database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{db: db, cfg: cfg, path: path, hooks: defaultStoreHooks(), logger: logger}
	applied, err := RunMigrations(context.Background(), db, DefaultMigrations())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dictionary: migration: %w", err)
	}
	if applied > 0 {
		logger.Info("database migrated", "path", path, "applied", applied, "schema_version", CurrentSchemaVersion())
	}

	return s, nil
}

// openSQLite opens path with the store pragmas. A single connection keeps
// writers serialized; SQLite would otherwise fail lock upgrades inside
// deferred transactions with SQLITE_BUSY.
func openSQLite(path string) (*sql.DB, error) {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	dsn, err := sqliteDSN(path, q)
	if err != nil {
		return nil, err
	}
	db, err := openDB("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// sqliteDSN builds a file: URI for path. The path is percent-escaped so
// '?', '#' and '%' stay part of the file name instead of starting the query.
func sqliteDSN(path string, query url.Values) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths: file:///C:/...
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: query.Encode()}
	return u.String(), nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// withTx runs fn inside a transaction. fn must issue every statement
// through tx: the pool holds one connection.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.hooks.beginTx(ctx, s.db)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := s.hooks.commit(tx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// Now returns the current time formatted for SQLite.
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation checks if an error is a SQLite FOREIGN KEY violation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func stringArgs(vs []string) []any {
	args := make([]any, len(vs))
	for i, v := range vs {
		args[i] = v
	}
	return args
}

// nullString turns "" into NULL after trimming.
func nullString(v *string) any {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return t
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt64(v *int64) any {
	if v == nil || *v == 0 {
		return nil
	}
	return *v
}

func scanNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func scanNullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func scanNullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
