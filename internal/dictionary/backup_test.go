package dictionary_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
	"github.com/HendryAvila/kanjidict/internal/validate"
)

func TestExportFileName(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "kanji-dictionary-2026-03-04-05-06.db", dictionary.ExportFileName(at))
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Seed(ctx)
	require.NoError(t, err)
	before, err := s.Stats(ctx)
	require.NoError(t, err)

	path, err := s.Export(ctx, filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)
	require.FileExists(t, path)
	assert.Contains(t, filepath.Base(path), "kanji-dictionary-")
	require.NoError(t, dictionary.ValidateImportFile(path))

	// Diverge from the export, then restore it.
	require.NoError(t, s.Clear(ctx))
	mustKanji(t, s, "鬱")

	require.NoError(t, s.Import(ctx, path))
	after, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = s.GetKanjiByCharacter(ctx, "鬱")
	assert.ErrorIs(t, err, dictionary.ErrNotFound)

	umi, err := s.GetKanjiByCharacter(ctx, "海")
	require.NoError(t, err)
	require.NotNil(t, umi.RadicalID)
}

func TestImport_PathWithURICharacters(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("'?' is not allowed in Windows file names")
	}
	ctx := context.Background()
	src := newTestStore(t)
	k := mustKanji(t, src, "絵")
	_, err := src.UpdateKanji(ctx, k.ID, dictionary.UpdateKanjiParams{StrokeDiagramImage: []byte{0x89, 'P', 'N', 'G'}})
	require.NoError(t, err)

	exported, err := src.Export(ctx, t.TempDir())
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)

	dir := t.TempDir()
	odd := filepath.Join(dir, "we?ird#name 100%.db")
	require.NoError(t, os.WriteFile(odd, data, 0o600))
	require.NoError(t, dictionary.ValidateImportFile(odd))

	dst := newTestStore(t)
	require.NoError(t, dst.Import(ctx, odd))
	got, err := dst.GetKanjiByCharacter(ctx, "絵")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got.StrokeDiagramImage)

	// Nothing may be created at a truncated path such as "we".
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name(), filepath.Base(odd)), "unexpected file %q", e.Name())
	}
}

func TestImport_MigratesOlderFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = dictionary.RunMigrations(ctx, db, dictionary.DefaultMigrations()[:1])
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO kanjis (character, created_at, updated_at) VALUES ('古', ?, ?)`, dictionary.Now(), dictionary.Now())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s := newTestStore(t)
	require.NoError(t, s.Import(ctx, path))

	k, err := s.GetKanjiByCharacter(ctx, "古")
	require.NoError(t, err)
	assert.Equal(t, "古", k.Character)

	types, err := s.ListClassificationTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 5)
}

func TestValidateImportFile(t *testing.T) {
	dir := t.TempDir()

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))

	garbage := filepath.Join(dir, "garbage.db")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a database file, just some text padding it out"), 0o644))

	other := filepath.Join(dir, "other.sqlite")
	db, err := sql.Open("sqlite", other)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE words (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	for name, path := range map[string]string{
		"wrong extension": text,
		"missing":         filepath.Join(dir, "missing.db"),
		"directory":       func() string { p := filepath.Join(dir, "folder.db"); require.NoError(t, os.Mkdir(p, 0o755)); return p }(),
		"not sqlite":      garbage,
		"no kanjis table": other,
	} {
		t.Run(name, func(t *testing.T) {
			err := dictionary.ValidateImportFile(path)
			require.Error(t, err)
			assert.True(t, validate.IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestImport_InvalidFileLeavesDataAlone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustKanji(t, s, "日")

	err := s.Import(ctx, filepath.Join(t.TempDir(), "nothing.db"))
	require.Error(t, err)

	n, err := s.CountKanji(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExport_EmptyDir(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Export(context.Background(), " ")
	assert.True(t, validate.IsValidation(err))
}

func TestClear_KeepsReferenceTables(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	res, err := s.Seed(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Kanji)
	assert.Zero(t, st.Components)
	assert.Zero(t, st.Vocabulary)
	assert.Zero(t, st.Meanings)
	assert.Zero(t, st.VocabKanji)
	assert.Equal(t, 5, st.ClassificationTypes)
	assert.Equal(t, res.PositionTypes, st.PositionTypes)
}
