package dictionary_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ─── New / Initialization ───────────────────────────────────────────────────

func TestNew_CreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	s, err := dictionary.New(dictionary.Config{DataDir: dir})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(dir, dictionary.DefaultFileName), s.Path())
	assert.FileExists(t, s.Path())
}

func TestNew_EmptyDataDir(t *testing.T) {
	_, err := dictionary.New(dictionary.Config{})
	require.Error(t, err)
}

func TestNew_CustomFileName(t *testing.T) {
	dir := t.TempDir()
	s, err := dictionary.New(dictionary.Config{DataDir: dir, FileName: "study.db"})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, filepath.Join(dir, "study.db"), s.Path())
}

func TestNew_DataDirWithURICharacters(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("'?' is not allowed in Windows file names")
	}
	dir := filepath.Join(t.TempDir(), "kanji?study#1")
	s, err := dictionary.New(dictionary.Config{DataDir: dir})
	require.NoError(t, err)
	defer s.Close()

	mustKanji(t, s, "字")
	assert.FileExists(t, filepath.Join(dir, dictionary.DefaultFileName))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dir), "kanji"))
}

func TestNew_IdempotentReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s1, err := dictionary.New(dictionary.Config{DataDir: dir})
	require.NoError(t, err)
	mustKanji(t, s1, "日")
	require.NoError(t, s1.Close())

	s2, err := dictionary.New(dictionary.Config{DataDir: dir})
	require.NoError(t, err)
	defer s2.Close()

	k, err := s2.GetKanjiByCharacter(ctx, "日")
	require.NoError(t, err)
	assert.Equal(t, "日", k.Character)

	types, err := s2.ListClassificationTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 5, "reference rows must not be inserted twice")
}

func TestDefaultConfig(t *testing.T) {
	cfg := dictionary.DefaultConfig()
	assert.Equal(t, ".kanjidict", filepath.Base(cfg.DataDir))
	assert.Equal(t, "kanji-dictionary.db", cfg.FileName)
}

func TestClose_NilStore(t *testing.T) {
	var s *dictionary.Store
	assert.NoError(t, s.Close())
}

// ─── Errors ─────────────────────────────────────────────────────────────────

func TestRepositoryError_WrapsCause(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetKanji(context.Background(), 42)
	require.Error(t, err)

	var re *dictionary.RepositoryError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "get", re.Op)
	assert.Equal(t, "kanji", re.Entity)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
	assert.Contains(t, err.Error(), "kanji with id 42 not found")
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation", validate.Errorf("character", "is required"), true},
		{"not found", &dictionary.NotFoundError{Entity: "kanji", ID: 1}, true},
		{"duplicate", dictionary.ErrDuplicate, true},
		{"invalid order", dictionary.ErrInvalidOrder, true},
		{"already seeded", dictionary.ErrAlreadySeeded, true},
		{"wrapped validation", &dictionary.RepositoryError{Op: "create", Entity: "kanji", Err: validate.Errorf("x", "bad")}, true},
		{"unexpected", errors.New("disk I/O error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dictionary.IsUserError(tt.err))
		})
	}
}

func TestNotFoundError_Key(t *testing.T) {
	err := &dictionary.NotFoundError{Entity: "kanji", Key: "日"}
	assert.Equal(t, `kanji "日" not found`, err.Error())
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

// ─── Migrations ─────────────────────────────────────────────────────────────

func TestMigrations_SchemaVersion(t *testing.T) {
	s := newTestStore(t)
	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dictionary.CurrentSchemaVersion(), st.SchemaVersion)
	assert.Equal(t, 3, st.SchemaVersion)
}

func TestMigrations_RefusesNewerSchema(t *testing.T) {
	dir := t.TempDir()
	s, err := dictionary.New(dictionary.Config{DataDir: dir})
	require.NoError(t, err)
	path := s.Path()
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (99, '2030-01-01 00:00:00')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = dictionary.New(dictionary.Config{DataDir: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, dictionary.ErrSchemaTooNew)
}

func TestRunMigrations_AppliesInVersionOrder(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	var applied []int
	step := func(v int) dictionary.Migration {
		return dictionary.Migration{Version: v, Description: "step", Up: func(ctx context.Context, tx *sql.Tx) error {
			applied = append(applied, v)
			return nil
		}}
	}

	n, err := dictionary.RunMigrations(ctx, db, []dictionary.Migration{step(2), step(1)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2}, applied)

	n, err = dictionary.RunMigrations(ctx, db, []dictionary.Migration{step(1), step(2), step(3)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{1, 2, 3}, applied)

	v, err := dictionary.SchemaVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestRunMigrations_FailedStepRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	bad := dictionary.Migration{Version: 1, Description: "broken", Up: func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `CREATE TABLE t (id INTEGER)`); err != nil {
			return err
		}
		return errors.New("boom")
	}}
	_, err = dictionary.RunMigrations(ctx, db, []dictionary.Migration{bad})
	require.Error(t, err)

	v, err := dictionary.SchemaVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = 't'`).Scan(&n))
	assert.Zero(t, n, "table from the failed step must be rolled back")
}

func TestRunMigrations_NilDB(t *testing.T) {
	_, err := dictionary.RunMigrations(context.Background(), nil, dictionary.DefaultMigrations())
	require.Error(t, err)
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func TestStats_CountsAndString(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	mustMeanings(t, s, k.ID, "sun", "day")

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Kanji)
	assert.Equal(t, 2, st.Meanings)
	assert.Equal(t, 5, st.ClassificationTypes)
	assert.Zero(t, st.PositionTypes)

	out := st.String()
	assert.Contains(t, out, "Kanji:")
	assert.Contains(t, out, "Schema version:")
}
