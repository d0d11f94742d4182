package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/kanjidict/internal/config"
	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.DefaultConfig(t.TempDir())
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)
	s, cleanup, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()
	if s == nil {
		t.Fatal("server should not be nil")
	}
	if _, err := os.Stat(cfg.DatabasePath()); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestNew_BadDataDir(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.Database.DataDir = filepath.Join(blocker, "data")

	_, cleanup, err := New(cfg, nil)
	if err == nil {
		t.Fatal("expected error for a data dir below a file")
	}
	if cleanup == nil {
		t.Fatal("cleanup must never be nil")
	}
	cleanup()
}

func TestDictionaryTools_UniqueNames(t *testing.T) {
	store, err := dictionary.New(dictionary.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("dictionary.New: %v", err)
	}
	defer store.Close()

	seen := map[string]bool{}
	for _, tl := range dictionaryTools(store, t.TempDir()) {
		def := tl.Definition()
		if def.Name == "" || def.Description == "" {
			t.Errorf("tool %q lacks a name or description", def.Name)
		}
		if seen[def.Name] {
			t.Errorf("duplicate tool name %q", def.Name)
		}
		seen[def.Name] = true
	}
	for _, name := range []string{"kanji_create", "dict_reorder", "dict_delete", "db_export", "dict_stats"} {
		if !seen[name] {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestServerInstructions_NameTools(t *testing.T) {
	text := serverInstructions()
	for _, name := range []string{"kanji_get", "dict_reorder", "dict_move", "db_export", "db_seed"} {
		if !strings.Contains(text, name) {
			t.Errorf("instructions should mention %s", name)
		}
	}
}
