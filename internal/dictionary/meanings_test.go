package dictionary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ─── Meanings ───────────────────────────────────────────────────────────────

func TestAddMeaning_Basic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")

	m, err := s.AddMeaning(ctx, k.ID, dictionary.AddMeaningParams{MeaningText: " sun ", AdditionalInfo: ptr("The star at the center of our solar system")})
	require.NoError(t, err)
	assert.Equal(t, "sun", m.MeaningText)
	assert.Equal(t, k.ID, m.KanjiID)
	assert.Equal(t, 0, m.DisplayOrder)
	require.NotNil(t, m.AdditionalInfo)
}

func TestAddMeaning_Validation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")

	_, err := s.AddMeaning(ctx, k.ID, dictionary.AddMeaningParams{MeaningText: "  "})
	assert.True(t, validate.IsValidation(err))

	_, err = s.AddMeaning(ctx, 999, dictionary.AddMeaningParams{MeaningText: "sun"})
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestUpdateMeaning(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	ids := mustMeanings(t, s, k.ID, "sun")

	m, err := s.UpdateMeaning(ctx, ids[0], dictionary.UpdateMeaningParams{MeaningText: ptr("the sun"), AdditionalInfo: ptr("star")})
	require.NoError(t, err)
	assert.Equal(t, "the sun", m.MeaningText)
	assert.Equal(t, "star", *m.AdditionalInfo)

	_, err = s.UpdateMeaning(ctx, ids[0], dictionary.UpdateMeaningParams{MeaningText: ptr("")})
	assert.True(t, validate.IsValidation(err))
}

func TestFormatMeanings(t *testing.T) {
	ms := []dictionary.Meaning{{MeaningText: "sun"}, {MeaningText: "day"}}
	assert.Equal(t, "1. sun; 2. day", dictionary.FormatMeanings(ms))
	assert.Equal(t, "", dictionary.FormatMeanings(nil))
}

// ─── Reading groups ─────────────────────────────────────────────────────────

func TestReadingGroups_AssignAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	ids := mustMeanings(t, s, k.ID, "sun", "day", "Japan")

	enabled, err := s.GroupingEnabled(ctx, k.ID)
	require.NoError(t, err)
	assert.False(t, enabled)

	g1, err := s.AddReadingGroup(ctx, k.ID, "ニチ・ジツ", nil)
	require.NoError(t, err)
	g2, err := s.AddReadingGroup(ctx, k.ID, "ひ・か", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, g2.DisplayOrder)

	_, err = s.AssignMeaning(ctx, g1.ID, ids[0])
	require.NoError(t, err)
	_, err = s.AssignMeaning(ctx, g1.ID, ids[1])
	require.NoError(t, err)

	enabled, err = s.GroupingEnabled(ctx, k.ID)
	require.NoError(t, err)
	assert.True(t, enabled)

	members, err := s.ListGroupMembers(ctx, g1.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "sun", members[0].MeaningText)
	assert.Equal(t, "day", members[1].MeaningText)

	unassigned, err := s.UnassignedMeanings(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Japan"}, meaningTexts(unassigned))

	byKanji, err := s.ListGroupMembersByKanji(ctx, k.ID)
	require.NoError(t, err)
	assert.Len(t, byKanji[g1.ID], 2)
	assert.Empty(t, byKanji[g2.ID])
}

func TestAssignMeaning_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	ids := mustMeanings(t, s, k.ID, "sun")
	g, err := s.AddReadingGroup(ctx, k.ID, "ニチ", nil)
	require.NoError(t, err)

	first, err := s.AssignMeaning(ctx, g.ID, ids[0])
	require.NoError(t, err)
	second, err := s.AssignMeaning(ctx, g.ID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	members, err := s.ListGroupMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestAssignMeaning_OtherKanji(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	hi := mustKanji(t, s, "日")
	tsuki := mustKanji(t, s, "月")
	moon := mustMeanings(t, s, tsuki.ID, "moon")
	g, err := s.AddReadingGroup(ctx, hi.ID, "ニチ", nil)
	require.NoError(t, err)

	_, err = s.AssignMeaning(ctx, g.ID, moon[0])
	require.Error(t, err)
	assert.True(t, validate.IsValidation(err))

	_, err = s.AssignMeaning(ctx, 999, moon[0])
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestUnassignMeaning_Compacts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "金")
	ids := mustMeanings(t, s, k.ID, "gold", "metal", "money")
	g, err := s.AddReadingGroup(ctx, k.ID, "キン", nil)
	require.NoError(t, err)
	for _, id := range ids {
		_, err := s.AssignMeaning(ctx, g.ID, id)
		require.NoError(t, err)
	}

	require.NoError(t, s.UnassignMeaning(ctx, g.ID, ids[1]))
	requireContiguous(t, s, dictionary.EntityGroupMember, g.ID, 2)

	err = s.UnassignMeaning(ctx, g.ID, ids[1])
	assert.ErrorIs(t, err, dictionary.ErrNotFound)

	ms, err := s.ListMeanings(ctx, k.ID)
	require.NoError(t, err)
	assert.Len(t, ms, 3, "unassigning keeps the meaning")
}

func TestReorderGroupMembers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	ids := mustMeanings(t, s, k.ID, "sun", "day")
	g, err := s.AddReadingGroup(ctx, k.ID, "ニチ", nil)
	require.NoError(t, err)
	var memberIDs []int64
	for _, id := range ids {
		m, err := s.AssignMeaning(ctx, g.ID, id)
		require.NoError(t, err)
		memberIDs = append(memberIDs, m.ID)
	}

	require.NoError(t, s.ReorderGroupMembers(ctx, g.ID, []int64{memberIDs[1], memberIDs[0]}))
	members, err := s.ListGroupMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "day", members[0].MeaningText)
}

func TestDeleteEmptyGroups(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	ids := mustMeanings(t, s, k.ID, "sun")
	empty1, err := s.AddReadingGroup(ctx, k.ID, "ジツ", nil)
	require.NoError(t, err)
	full, err := s.AddReadingGroup(ctx, k.ID, "ニチ", nil)
	require.NoError(t, err)
	_, err = s.AddReadingGroup(ctx, k.ID, "か", nil)
	require.NoError(t, err)
	_, err = s.AssignMeaning(ctx, full.ID, ids[0])
	require.NoError(t, err)

	n, err := s.DeleteEmptyGroups(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	groups, err := s.ListReadingGroups(ctx, k.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, full.ID, groups[0].ID)
	assert.Equal(t, 0, groups[0].DisplayOrder)

	_, err = s.GetReadingGroup(ctx, empty1.ID)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestDisableGrouping_KeepsMeanings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	ids := mustMeanings(t, s, k.ID, "sun", "day")
	g, err := s.AddReadingGroup(ctx, k.ID, "ニチ", nil)
	require.NoError(t, err)
	_, err = s.AssignMeaning(ctx, g.ID, ids[0])
	require.NoError(t, err)

	n, err := s.DisableGrouping(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	enabled, err := s.GroupingEnabled(ctx, k.ID)
	require.NoError(t, err)
	assert.False(t, enabled)

	ms, err := s.ListMeanings(ctx, k.ID)
	require.NoError(t, err)
	assert.Len(t, ms, 2)
}

func TestUpdateReadingGroup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	g, err := s.AddReadingGroup(ctx, k.ID, "ニチ", nil)
	require.NoError(t, err)

	got, err := s.UpdateReadingGroup(ctx, g.ID, "ニチ・ジツ")
	require.NoError(t, err)
	assert.Equal(t, "ニチ・ジツ", got.ReadingText)

	_, err = s.UpdateReadingGroup(ctx, g.ID, " ")
	assert.True(t, validate.IsValidation(err))
}

// ─── Readings ───────────────────────────────────────────────────────────────

func TestReadings_OnAndKun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "高")

	on, err := s.AddReading(ctx, dictionary.OnReading, k.ID, dictionary.AddReadingParams{Reading: "コウ"})
	require.NoError(t, err)
	assert.Equal(t, dictionary.OnReading, on.Kind)
	assert.Equal(t, "小", on.ReadingLevel, "level defaults to 小")

	kun, err := s.AddReading(ctx, dictionary.KunReading, k.ID, dictionary.AddReadingParams{Reading: "たか", Okurigana: ptr("い"), ReadingLevel: "中"})
	require.NoError(t, err)
	assert.Equal(t, "たかい", kun.Full())
	assert.Equal(t, "中", kun.ReadingLevel)

	ons, err := s.ListReadings(ctx, dictionary.OnReading, k.ID)
	require.NoError(t, err)
	assert.Len(t, ons, 1)
	kuns, err := s.ListReadings(ctx, dictionary.KunReading, k.ID)
	require.NoError(t, err)
	assert.Len(t, kuns, 1)
}

func TestReadings_Validation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "高")

	_, err := s.AddReading(ctx, dictionary.OnReading, k.ID, dictionary.AddReadingParams{Reading: "コウ", Okurigana: ptr("い")})
	assert.True(t, validate.IsValidation(err), "on readings carry no okurigana")

	_, err = s.AddReading(ctx, dictionary.OnReading, k.ID, dictionary.AddReadingParams{Reading: "コウ", ReadingLevel: "大"})
	assert.True(t, validate.IsValidation(err))

	_, err = s.AddReading(ctx, dictionary.KunReading, k.ID, dictionary.AddReadingParams{Reading: ""})
	assert.True(t, validate.IsValidation(err))
}

func TestReadings_UpdateMoveDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "日")
	a, err := s.AddReading(ctx, dictionary.OnReading, k.ID, dictionary.AddReadingParams{Reading: "ニチ"})
	require.NoError(t, err)
	b, err := s.AddReading(ctx, dictionary.OnReading, k.ID, dictionary.AddReadingParams{Reading: "ジツ"})
	require.NoError(t, err)

	got, err := s.UpdateReading(ctx, dictionary.OnReading, b.ID, dictionary.UpdateReadingParams{ReadingLevel: ptr("中")})
	require.NoError(t, err)
	assert.Equal(t, "中", got.ReadingLevel)

	require.NoError(t, s.MoveReading(ctx, dictionary.OnReading, b.ID, dictionary.Up))
	list, err := s.ListReadings(ctx, dictionary.OnReading, k.ID)
	require.NoError(t, err)
	assert.Equal(t, "ジツ", list[0].Reading)

	require.NoError(t, s.DeleteReading(ctx, dictionary.OnReading, b.ID))
	requireContiguous(t, s, dictionary.EntityOnReading, k.ID, 1)

	_, err = s.GetReading(ctx, dictionary.KunReading, a.ID)
	assert.ErrorIs(t, err, dictionary.ErrNotFound, "kinds do not share ids")
}

func TestParseReadingKind(t *testing.T) {
	k, err := dictionary.ParseReadingKind("KUN")
	require.NoError(t, err)
	assert.Equal(t, dictionary.KunReading, k)

	_, err = dictionary.ParseReadingKind("nanori")
	assert.True(t, validate.IsValidation(err))
}
