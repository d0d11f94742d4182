package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func logJSON(t *testing.T, log func(*slog.Logger)) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "debug", Format: "json", Stderr: &buf})
	require.NoError(t, err)
	defer closer.Close()

	log(logger)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNew_JSONToStderrWriter(t *testing.T) {
	t.Parallel()
	out := logJSON(t, func(l *slog.Logger) { l.Info("kanji created", "character", "日") })
	require.Equal(t, "kanji created", out["msg"])
	require.Equal(t, "日", out["character"])
}

func TestNew_TextIsDefault(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, _, err := New(Options{Stderr: &buf})
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "n", 3)
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "msg=shown n=3")
}

func TestNew_RotatingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "kanjidict.log")
	logger, closer, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)
	logger.Info("database seeded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "database seeded")
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	t.Parallel()
	_, _, err := New(Options{Level: "loud"})
	require.Error(t, err)
	_, _, err = New(Options{Format: "xml", Stderr: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestNewRotatingWriter_Defaults(t *testing.T) {
	t.Parallel()
	w, err := NewRotatingWriter(RotationConfig{File: filepath.Join(t.TempDir(), "a.log")})
	require.NoError(t, err)
	require.Equal(t, 10, w.MaxSize)
	require.Equal(t, 5, w.MaxBackups)

	_, err = NewRotatingWriter(RotationConfig{})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "": slog.LevelInfo, "INFO": slog.LevelInfo,
		"warn": slog.LevelWarn, "warning": slog.LevelWarn, "error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
}

// ─── Truncation ─────────────────────────────────────────────────────────────

func TestTruncatingHandler_LongString(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("鬱", MaxValueGraphemes+10)
	out := logJSON(t, func(l *slog.Logger) { l.Info("note", "notes_etymology", long) })
	got := out["notes_etymology"].(string)
	require.Equal(t, strings.Repeat("鬱", MaxValueGraphemes)+"…", got)
}

func TestTruncatingHandler_Bytes(t *testing.T) {
	t.Parallel()
	out := logJSON(t, func(l *slog.Logger) { l.Info("image", "stroke_diagram", []byte{1, 2, 3}) })
	require.Equal(t, "<3 bytes>", out["stroke_diagram"])
}

func TestTruncatingHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", MaxValueGraphemes*2)
	out := logJSON(t, func(l *slog.Logger) {
		l.With("component", long).Info("grouped", slog.Group("kanji", slog.String("notes", long)))
	})
	require.Len(t, []rune(out["component"].(string)), MaxValueGraphemes+1)
	group := out["kanji"].(map[string]any)
	require.Len(t, []rune(group["notes"].(string)), MaxValueGraphemes+1)
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	require.Equal(t, "short", Truncate("short", 10))
	require.Equal(t, "ab…", Truncate("abcdef", 2))
	// A family emoji is one grapheme made of several runes.
	require.Equal(t, "👨‍👩‍👧…", Truncate("👨‍👩‍👧👨‍👩‍👧", 1))
	require.Equal(t, "abc", Truncate("abc", 0))
}
