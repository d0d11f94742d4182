package dictionary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
	"github.com/HendryAvila/kanjidict/internal/validate"
)

func mustVocabulary(t *testing.T, s *dictionary.Store, p dictionary.CreateVocabularyParams) *dictionary.Vocabulary {
	t.Helper()
	v, err := s.CreateVocabulary(context.Background(), p)
	require.NoError(t, err, "create vocabulary %q", p.Word)
	return v
}

func vocabWords(vs []dictionary.Vocabulary) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Word
	}
	return out
}

func TestCreateVocabulary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.CreateVocabulary(ctx, dictionary.CreateVocabularyParams{
		Word:         " 日本 ",
		Kana:         ptr("にほん"),
		ShortMeaning: ptr("Japan"),
		JLPTLevel:    ptr("N5"),
		IsCommon:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "日本", v.Word)
	assert.True(t, v.IsCommon)
	assert.Nil(t, v.Description)

	got, err := s.GetVocabularyByWord(ctx, "日本")
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = s.GetVocabularyByWord(ctx, "中国")
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestCreateVocabulary_Validation(t *testing.T) {
	s := newTestStore(t)
	for name, p := range map[string]dictionary.CreateVocabularyParams{
		"empty word": {Word: "  "},
		"bad jlpt":   {Word: "日本", JLPTLevel: ptr("N6")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.CreateVocabulary(context.Background(), p)
			assert.True(t, validate.IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestUpdateVocabulary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	v := mustVocabulary(t, s, dictionary.CreateVocabularyParams{Word: "火山", Description: ptr("fire mountain")})

	got, err := s.UpdateVocabulary(ctx, v.ID, dictionary.UpdateVocabularyParams{
		Kana:        ptr("かざん"),
		IsCommon:    ptr(true),
		Description: ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "かざん", *got.Kana)
	assert.True(t, got.IsCommon)
	assert.Nil(t, got.Description, "empty string clears")

	_, err = s.UpdateVocabulary(ctx, 999, dictionary.UpdateVocabularyParams{Kana: ptr("x")})
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestVocabKanjiLinks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	hito := mustKanji(t, s, "人")
	hi := mustKanji(t, s, "日")
	v := mustVocabulary(t, s, dictionary.CreateVocabularyParams{Word: "人々"})

	first, err := s.LinkKanji(ctx, v.ID, hito.ID, ptr("person"), nil)
	require.NoError(t, err)
	assert.Equal(t, "人", first.KanjiCharacter)
	assert.Equal(t, 0, first.DisplayOrder)

	// The same kanji may be linked twice.
	second, err := s.LinkKanji(ctx, v.ID, hito.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.DisplayOrder)

	front, err := s.LinkKanji(ctx, v.ID, hi.ID, nil, ptr(0))
	require.NoError(t, err)
	assert.Equal(t, 0, front.DisplayOrder)

	links, err := s.ListVocabKanji(ctx, v.ID)
	require.NoError(t, err)
	chars := make([]string, len(links))
	for i, l := range links {
		chars[i] = l.KanjiCharacter
	}
	assert.Equal(t, []string{"日", "人", "人"}, chars)

	updated, err := s.UpdateVocabKanjiNotes(ctx, first.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.AnalysisNotes)

	require.NoError(t, s.UnlinkKanji(ctx, front.ID))
	requireContiguous(t, s, dictionary.EntityVocabKanji, v.ID, 2)

	words, err := s.ListVocabularyForKanji(ctx, hito.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"人々"}, vocabWords(words))

	_, err = s.LinkKanji(ctx, v.ID, 999, nil, nil)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
	_, err = s.LinkKanji(ctx, 999, hito.ID, nil, nil)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestSearchVocabulary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	hi := mustKanji(t, s, "日")
	kin := mustKanji(t, s, "金")

	nihon := mustVocabulary(t, s, dictionary.CreateVocabularyParams{Word: "日本", Kana: ptr("にほん"), ShortMeaning: ptr("Japan"), JLPTLevel: ptr("N5"), IsCommon: true, Description: ptr("the country")})
	kinyoubi := mustVocabulary(t, s, dictionary.CreateVocabularyParams{Word: "金曜日", Kana: ptr("きんようび"), ShortMeaning: ptr("Friday"), JLPTLevel: ptr("N5"), IsCommon: true})
	mustVocabulary(t, s, dictionary.CreateVocabularyParams{Word: "薔薇", Kana: ptr("ばら"), ShortMeaning: ptr("rose"), SearchKeywords: ptr("flower"), JLPTLevel: ptr("N1")})

	for _, l := range []struct{ vocab, kanji int64 }{{nihon.ID, hi.ID}, {kinyoubi.ID, kin.ID}, {kinyoubi.ID, hi.ID}} {
		_, err := s.LinkKanji(ctx, l.vocab, l.kanji, nil, nil)
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		f    dictionary.VocabularyFilters
		want []string
	}{
		{"all newest first", dictionary.VocabularyFilters{}, []string{"薔薇", "金曜日", "日本"}},
		{"word", dictionary.VocabularyFilters{Word: "日"}, []string{"金曜日", "日本"}},
		{"kana", dictionary.VocabularyFilters{Kana: "ばら"}, []string{"薔薇"}},
		{"search keywords", dictionary.VocabularyFilters{Search: "FLOWER"}, []string{"薔薇"}},
		{"jlpt", dictionary.VocabularyFilters{JLPTLevels: []string{"N1"}}, []string{"薔薇"}},
		{"not common", dictionary.VocabularyFilters{IsCommon: ptr(false)}, []string{"薔薇"}},
		{"contains both kanji", dictionary.VocabularyFilters{ContainsKanjiIDs: []int64{hi.ID, kin.ID}}, []string{"金曜日"}},
		{"description filled", dictionary.VocabularyFilters{Description: dictionary.Has}, []string{"日本"}},
		{"description empty", dictionary.VocabularyFilters{Description: dictionary.Missing, Limit: 1}, []string{"薔薇"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchVocabulary(ctx, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, vocabWords(got))
		})
	}

	_, err := s.SearchVocabulary(ctx, dictionary.VocabularyFilters{JLPTLevels: []string{"N9"}})
	assert.True(t, validate.IsValidation(err))
	_, err = s.SearchVocabulary(ctx, dictionary.VocabularyFilters{Description: "filled"})
	require.True(t, validate.IsValidation(err))
	assert.Contains(t, err.Error(), `must be "has" or "missing", got "filled"`)

	common, err := s.CommonWords(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, common, 2)

	n, err := s.CountVocabulary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDeleteVocabulary_RemovesLinks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	v := mustVocabulary(t, s, dictionary.CreateVocabularyParams{Word: "日本"})
	link, err := s.LinkKanji(ctx, v.ID, k.ID, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteVocabulary(ctx, v.ID))
	_, err = s.GetVocabKanji(ctx, link.ID)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)

	err = s.DeleteVocabulary(ctx, v.ID)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}
