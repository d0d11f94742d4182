package dictionary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *dictionary.Store {
	t.Helper()
	s, err := dictionary.New(dictionary.Config{DataDir: t.TempDir()})
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

// mustKanji creates a kanji with the given character.
func mustKanji(t *testing.T, s *dictionary.Store, char string) *dictionary.Kanji {
	t.Helper()
	k, err := s.CreateKanji(context.Background(), dictionary.CreateKanjiParams{Character: char})
	require.NoError(t, err, "create kanji %q", char)
	return k
}

// mustComponent creates a component with the given character.
func mustComponent(t *testing.T, s *dictionary.Store, char string) *dictionary.Component {
	t.Helper()
	c, err := s.CreateComponent(context.Background(), dictionary.CreateComponentParams{Character: char})
	require.NoError(t, err, "create component %q", char)
	return c
}

// mustMeanings appends meanings to a kanji and returns their ids in order.
func mustMeanings(t *testing.T, s *dictionary.Store, kanjiID int64, texts ...string) []int64 {
	t.Helper()
	ids := make([]int64, len(texts))
	for i, text := range texts {
		m, err := s.AddMeaning(context.Background(), kanjiID, dictionary.AddMeaningParams{MeaningText: text})
		require.NoError(t, err, "add meaning %q", text)
		ids[i] = m.ID
	}
	return ids
}

// requireContiguous asserts a sibling set is numbered 0..n-1.
func requireContiguous(t *testing.T, s *dictionary.Store, e dictionary.Entity, parentID int64, n int) {
	t.Helper()
	orders, err := s.DisplayOrders(context.Background(), e, parentID)
	require.NoError(t, err)
	require.Len(t, orders, n)
	for i, o := range orders {
		require.Equal(t, i, o, "display orders of %s %d: %v", e, parentID, orders)
	}
}

func meaningTexts(ms []dictionary.Meaning) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.MeaningText
	}
	return out
}
