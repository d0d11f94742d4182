package dictionary_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ─── Create / Get ───────────────────────────────────────────────────────────

func TestCreateKanji_Basic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	k, err := s.CreateKanji(ctx, dictionary.CreateKanjiParams{
		Character:    " 日 ",
		StrokeCount:  ptr(4),
		ShortMeaning: ptr("sun, day"),
		JLPTLevel:    ptr("N5"),
		JoyoLevel:    ptr("elementary1"),
		KenteiLevel:  ptr("10級"),
	})
	require.NoError(t, err)
	assert.NotZero(t, k.ID)
	assert.Equal(t, "日", k.Character)
	assert.Equal(t, 4, *k.StrokeCount)
	assert.Equal(t, "10", *k.KenteiLevel, "kentei labels are stored as keys")
	assert.NotEmpty(t, k.CreatedAt)
	assert.Nil(t, k.SearchKeywords)
}

func TestCreateKanji_Validation(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name string
		p    dictionary.CreateKanjiParams
	}{
		{"empty", dictionary.CreateKanjiParams{Character: ""}},
		{"whitespace", dictionary.CreateKanjiParams{Character: "   "}},
		{"two characters", dictionary.CreateKanjiParams{Character: "日本"}},
		{"stroke count zero", dictionary.CreateKanjiParams{Character: "日", StrokeCount: ptr(0)}},
		{"stroke count too large", dictionary.CreateKanjiParams{Character: "日", StrokeCount: ptr(65)}},
		{"bad jlpt", dictionary.CreateKanjiParams{Character: "日", JLPTLevel: ptr("N6")}},
		{"bad joyo", dictionary.CreateKanjiParams{Character: "日", JoyoLevel: ptr("grade1")}},
		{"bad kentei", dictionary.CreateKanjiParams{Character: "日", KenteiLevel: ptr("11級")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateKanji(context.Background(), tt.p)
			require.Error(t, err)
			assert.True(t, validate.IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestCreateKanji_AcceptsSupplementaryPlane(t *testing.T) {
	s := newTestStore(t)
	k := mustKanji(t, s, "𠮷")
	assert.Equal(t, "𠮷", k.Character)
}

func TestCreateKanji_Duplicate(t *testing.T) {
	s := newTestStore(t)
	mustKanji(t, s, "日")
	_, err := s.CreateKanji(context.Background(), dictionary.CreateKanjiParams{Character: "日"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dictionary.ErrDuplicate)
	assert.True(t, dictionary.IsUserError(err))
}

func TestCreateKanji_UnknownRadical(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateKanji(context.Background(), dictionary.CreateKanjiParams{Character: "海", RadicalID: ptr(int64(77))})
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestGetKanji_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetKanji(context.Background(), 1)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)

	_, err = s.GetKanjiByCharacter(context.Background(), "月")
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestListKanji_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := mustKanji(t, s, "日")
	b := mustKanji(t, s, "月")

	list, err := s.ListKanji(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	n, err := s.CountKanji(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	byIDs, err := s.GetKanjiByIDs(ctx, []int64{b.ID, a.ID, 999})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, a.ID, byIDs[0].ID)
}

// ─── Update ─────────────────────────────────────────────────────────────────

func TestUpdateKanji_Partial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k, err := s.CreateKanji(ctx, dictionary.CreateKanjiParams{Character: "日", ShortMeaning: ptr("sun"), StrokeCount: ptr(4)})
	require.NoError(t, err)

	got, err := s.UpdateKanji(ctx, k.ID, dictionary.UpdateKanjiParams{ShortMeaning: ptr("sun, day"), KenteiLevel: ptr("準2級")})
	require.NoError(t, err)
	assert.Equal(t, "sun, day", *got.ShortMeaning)
	assert.Equal(t, "pre2", *got.KenteiLevel)
	assert.Equal(t, 4, *got.StrokeCount, "untouched fields stay")

	got, err = s.UpdateKanji(ctx, k.ID, dictionary.UpdateKanjiParams{ShortMeaning: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, got.ShortMeaning, "empty string clears a text field")
}

func TestUpdateKanji_DuplicateCharacter(t *testing.T) {
	s := newTestStore(t)
	mustKanji(t, s, "日")
	k := mustKanji(t, s, "月")
	_, err := s.UpdateKanji(context.Background(), k.ID, dictionary.UpdateKanjiParams{Character: ptr("日")})
	assert.ErrorIs(t, err, dictionary.ErrDuplicate)
}

func TestUpdateKanji_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateKanji(context.Background(), 5, dictionary.UpdateKanjiParams{ShortMeaning: ptr("x")})
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestUpdateKanjiField(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "愛")

	got, err := s.UpdateKanjiField(ctx, k.ID, "strokeCount", float64(13))
	require.NoError(t, err)
	assert.Equal(t, 13, *got.StrokeCount)

	got, err = s.UpdateKanjiField(ctx, k.ID, "jlpt_level", "N3")
	require.NoError(t, err)
	assert.Equal(t, "N3", *got.JLPTLevel)

	got, err = s.UpdateKanjiField(ctx, k.ID, "kenteiLevel", "6級")
	require.NoError(t, err)
	assert.Equal(t, "6", *got.KenteiLevel)

	got, err = s.UpdateKanjiField(ctx, k.ID, "strokeDiagramImage", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.True(t, got.HasStrokeDiagram())

	got, err = s.UpdateKanjiField(ctx, k.ID, "jlptLevel", nil)
	require.NoError(t, err)
	assert.Nil(t, got.JLPTLevel, "nil clears the field")
}

func TestUpdateKanjiField_Rejects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "愛")

	tests := []struct {
		name  string
		field string
		value any
	}{
		{"unknown field", "colour", "red"},
		{"nil character", "character", nil},
		{"fractional strokes", "strokeCount", 1.5},
		{"text for number", "strokeCount", "ten"},
		{"number for text", "shortMeaning", 3},
		{"bad level", "joyoLevel", "college"},
		{"string for image", "strokeGifImage", "gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateKanjiField(ctx, k.ID, tt.field, tt.value)
			require.Error(t, err)
			assert.True(t, validate.IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestKanjiFieldNames_AllAccepted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "愛")
	for _, f := range dictionary.KanjiFieldNames() {
		if f == "character" {
			continue
		}
		_, err := s.UpdateKanjiField(ctx, k.ID, f, nil)
		assert.NoError(t, err, "field %s", f)
	}
}

// ─── Delete ─────────────────────────────────────────────────────────────────

func TestDeleteKanji_Cascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	mustMeanings(t, s, k.ID, "sun")
	_, err := s.AddReading(ctx, dictionary.OnReading, k.ID, dictionary.AddReadingParams{Reading: "ニチ"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteKanji(ctx, k.ID))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Kanji)
	assert.Zero(t, st.Meanings)
	assert.Zero(t, st.OnReadings)
}

// ─── Search ─────────────────────────────────────────────────────────────────

// seedSearchFixture creates a handful of kanji with varied attributes.
func seedSearchFixture(t *testing.T, s *dictionary.Store) map[string]*dictionary.Kanji {
	t.Helper()
	ctx := context.Background()
	out := make(map[string]*dictionary.Kanji)
	for _, p := range []dictionary.CreateKanjiParams{
		{Character: "日", StrokeCount: ptr(4), ShortMeaning: ptr("sun, day"), SearchKeywords: ptr("hi nichi"), JLPTLevel: ptr("N5"), JoyoLevel: ptr("elementary1"), KenteiLevel: ptr("10")},
		{Character: "海", StrokeCount: ptr(9), ShortMeaning: ptr("sea"), JLPTLevel: ptr("N4"), JoyoLevel: ptr("elementary2"), KenteiLevel: ptr("8")},
		{Character: "鬱", StrokeCount: ptr(29), ShortMeaning: ptr("gloom"), JLPTLevel: ptr("N1"), JoyoLevel: ptr("secondary"), KenteiLevel: ptr("pre1"),
			NotesEtymology: ptr(strings.Repeat("a", 210))},
		{Character: "薔", StrokeCount: ptr(16), ShortMeaning: ptr("rose")},
	} {
		k, err := s.CreateKanji(ctx, p)
		require.NoError(t, err)
		out[k.Character] = k
	}
	return out
}

func chars(ks []dictionary.Kanji) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.Character
	}
	return out
}

func TestSearchKanji_Filters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedSearchFixture(t, s)

	asc := dictionary.KanjiSort{Field: dictionary.SortStrokeCount, Asc: true}
	tests := []struct {
		name string
		f    dictionary.KanjiFilters
		want []string
	}{
		{"no filters", dictionary.KanjiFilters{}, []string{"日", "海", "薔", "鬱"}},
		{"search meaning", dictionary.KanjiFilters{Search: "sea"}, []string{"海"}},
		{"search full-width", dictionary.KanjiFilters{Search: "ｓｕｎ"}, []string{"日"}},
		{"character exact", dictionary.KanjiFilters{Character: "鬱"}, []string{"鬱"}},
		{"keywords", dictionary.KanjiFilters{SearchKeywords: "nichi"}, []string{"日"}},
		{"stroke range", dictionary.KanjiFilters{StrokeCountMin: ptr(5), StrokeCountMax: ptr(20)}, []string{"海", "薔"}},
		{"jlpt list", dictionary.KanjiFilters{JLPTLevels: []string{"N5", "N1"}}, []string{"日", "鬱"}},
		{"joyo list", dictionary.KanjiFilters{JoyoLevels: []string{"elementary2"}}, []string{"海"}},
		{"kentei list", dictionary.KanjiFilters{KenteiLevels: []string{"pre1"}}, []string{"鬱"}},
		{"long etymology", dictionary.KanjiFilters{NotesEtymology: dictionary.TextMedium}, []string{"鬱"}},
		{"empty etymology", dictionary.KanjiFilters{NotesEtymology: dictionary.TextEmpty}, []string{"日", "海", "薔"}},
		{"missing diagram", dictionary.KanjiFilters{StrokeDiagram: dictionary.Missing}, []string{"日", "海", "薔", "鬱"}},
		{"has diagram", dictionary.KanjiFilters{StrokeDiagram: dictionary.Has}, []string{}},
		{"limit", dictionary.KanjiFilters{Limit: 2}, []string{"日", "海"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchKanji(ctx, tt.f, asc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, chars(got))
		})
	}
}

func TestSearchKanji_ReadingsAndMeanings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ks := seedSearchFixture(t, s)

	_, err := s.AddReading(ctx, dictionary.KunReading, ks["日"].ID, dictionary.AddReadingParams{Reading: "ひ"})
	require.NoError(t, err)
	_, err = s.AddReading(ctx, dictionary.OnReading, ks["海"].ID, dictionary.AddReadingParams{Reading: "カイ"})
	require.NoError(t, err)
	mustMeanings(t, s, ks["海"].ID, "ocean")

	got, err := s.SearchKanji(ctx, dictionary.KanjiFilters{OnYomi: "カイ"}, dictionary.KanjiSort{})
	require.NoError(t, err)
	assert.Equal(t, []string{"海"}, chars(got))

	got, err = s.SearchKanji(ctx, dictionary.KanjiFilters{KunYomi: "ひ"}, dictionary.KanjiSort{})
	require.NoError(t, err)
	assert.Equal(t, []string{"日"}, chars(got))

	got, err = s.SearchKanji(ctx, dictionary.KanjiFilters{Meanings: "ocean"}, dictionary.KanjiSort{})
	require.NoError(t, err)
	assert.Equal(t, []string{"海"}, chars(got))
}

func TestSearchKanji_ComponentsAreAnded(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	water := mustComponent(t, s, "氵")
	mother := mustComponent(t, s, "毎")
	umi := mustKanji(t, s, "海")
	ike := mustKanji(t, s, "池")

	for _, o := range []struct {
		kanji     int64
		component int64
	}{{umi.ID, water.ID}, {umi.ID, mother.ID}, {ike.ID, water.ID}} {
		_, err := s.AddOccurrence(ctx, o.kanji, dictionary.AddOccurrenceParams{ComponentID: o.component})
		require.NoError(t, err)
	}

	got, err := s.SearchKanji(ctx, dictionary.KanjiFilters{ComponentIDs: []int64{water.ID}}, dictionary.KanjiSort{Field: dictionary.SortCharacter, Asc: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"海", "池"}, chars(got))

	got, err = s.SearchKanji(ctx, dictionary.KanjiFilters{ComponentIDs: []int64{water.ID, mother.ID}}, dictionary.KanjiSort{})
	require.NoError(t, err)
	assert.Equal(t, []string{"海"}, chars(got))
}

func TestSearchKanji_SortByLevelUsesDifficulty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedSearchFixture(t, s)

	got, err := s.SearchKanji(ctx, dictionary.KanjiFilters{}, dictionary.KanjiSort{Field: dictionary.SortJLPTLevel, Asc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"日", "海", "鬱", "薔"}, chars(got), "N5 before N1, unset last")

	got, err = s.SearchKanji(ctx, dictionary.KanjiFilters{}, dictionary.KanjiSort{Field: dictionary.SortJLPTLevel})
	require.NoError(t, err)
	assert.Equal(t, []string{"鬱", "海", "日", "薔"}, chars(got))
}

func TestSearchKanji_InvalidFilters(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SearchKanji(context.Background(), dictionary.KanjiFilters{JLPTLevels: []string{"N9"}}, dictionary.KanjiSort{})
	assert.True(t, validate.IsValidation(err))

	_, err = s.SearchKanji(context.Background(), dictionary.KanjiFilters{NotesPersonal: "huge"}, dictionary.KanjiSort{})
	assert.True(t, validate.IsValidation(err))

	_, err = s.SearchKanji(context.Background(), dictionary.KanjiFilters{}, dictionary.KanjiSort{Field: "random"})
	assert.True(t, validate.IsValidation(err))
}

func TestParseKanjiSortField(t *testing.T) {
	f, err := dictionary.ParseKanjiSortField("strokecount")
	require.NoError(t, err)
	assert.Equal(t, dictionary.SortStrokeCount, f)

	f, err = dictionary.ParseKanjiSortField("")
	require.NoError(t, err)
	assert.Equal(t, dictionary.SortCreatedAt, f)

	_, err = dictionary.ParseKanjiSortField("meaning")
	assert.Error(t, err)
}

func TestNormalizeKenteiLevel(t *testing.T) {
	for in, want := range map[string]string{
		"10級": "10", "準1級": "pre1", "準2級": "pre2", "2級": "2", "pre2": "pre2", " 3 ": "3",
	} {
		assert.Equal(t, want, dictionary.NormalizeKenteiLevel(in), in)
	}
}
