package dictionary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

func TestGetKanjiDetail_Seeded(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Seed(ctx)
	require.NoError(t, err)

	hi, err := s.GetKanjiByCharacter(ctx, "日")
	require.NoError(t, err)
	d, err := s.GetKanjiDetail(ctx, hi.ID)
	require.NoError(t, err)

	require.Len(t, d.ReadingGroups, 2)
	assert.Equal(t, "ニチ・ジツ", d.ReadingGroups[0].ReadingText)
	assert.Len(t, d.ReadingGroups[0].Members, 2)
	assert.NotEmpty(t, d.OnReadings)
	assert.NotEmpty(t, d.KunReadings)
	require.Len(t, d.Classifications, 1)
	assert.Equal(t, "pictograph", d.Classifications[0].TypeName)
	assert.ElementsMatch(t, []string{"日本", "金曜日"}, vocabWords(d.Vocabulary))

	card := d.Format()
	assert.Contains(t, card, "日 (id")
	assert.Contains(t, card, "JLPT N5")
	assert.Contains(t, card, "Kentei 10")
	assert.Contains(t, card, "[ニチ・ジツ] sun; day")
	assert.Contains(t, card, "Classification: pictograph")
}

func TestGetKanjiDetail_Radical(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Seed(ctx)
	require.NoError(t, err)

	umi, err := s.GetKanjiByCharacter(ctx, "海")
	require.NoError(t, err)
	d, err := s.GetKanjiDetail(ctx, umi.ID)
	require.NoError(t, err)

	require.NotNil(t, d.Radical)
	assert.Equal(t, "氵", d.Radical.Character)
	require.Len(t, d.Occurrences, 1)
	assert.True(t, d.Occurrences[0].IsRadical)
	assert.Empty(t, d.ReadingGroups)

	card := d.Format()
	assert.Contains(t, card, "radical #85 氵")
	assert.Contains(t, card, "Components: 氵 (hen) [radical]")
	assert.Contains(t, card, "Meanings: 1. sea; 2. ocean")
}

func TestGetKanjiDetail_Bare(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "鬱")

	d, err := s.GetKanjiDetail(ctx, k.ID)
	require.NoError(t, err)
	assert.Nil(t, d.Radical)
	assert.Empty(t, d.Meanings)
	assert.Equal(t, "鬱 (id 1)\n", d.Format())

	_, err = s.GetKanjiDetail(ctx, 42)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}
