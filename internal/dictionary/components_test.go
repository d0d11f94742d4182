package dictionary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/kanjidict/internal/dictionary"
	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ─── Components ─────────────────────────────────────────────────────────────

func TestCreateComponent_Basic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mizu := mustKanji(t, s, "水")

	c, err := s.CreateComponent(ctx, dictionary.CreateComponentParams{
		Character:     "氵",
		StrokeCount:   ptr(3),
		ShortMeaning:  ptr("water"),
		SourceKanjiID: &mizu.ID,
		CanBeRadical:  true,
		KangxiNumber:  ptr(85),
		KangxiMeaning: ptr("water"),
	})
	require.NoError(t, err)
	assert.Equal(t, "氵", c.Character)
	assert.True(t, c.CanBeRadical)
	assert.Equal(t, mizu.ID, *c.SourceKanjiID)
	assert.Equal(t, "#85 氵 (water)", dictionary.FormatKangxi(*c))
}

func TestCreateComponent_AllowsDuplicateCharacter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	first := mustComponent(t, s, "口")
	mustComponent(t, s, "口")

	got, err := s.GetComponentByCharacter(ctx, "口")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "lookup by character returns the oldest")

	n, err := s.CountComponents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCreateComponent_Validation(t *testing.T) {
	s := newTestStore(t)
	for name, p := range map[string]dictionary.CreateComponentParams{
		"empty":           {Character: ""},
		"two characters":  {Character: "口口"},
		"kangxi zero":     {Character: "口", KangxiNumber: ptr(0)},
		"kangxi too high": {Character: "口", KangxiNumber: ptr(215)},
		"strokes":         {Character: "口", StrokeCount: ptr(-1)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.CreateComponent(context.Background(), p)
			assert.True(t, validate.IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestCreateComponent_UnknownSourceKanji(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateComponent(context.Background(), dictionary.CreateComponentParams{Character: "氵", SourceKanjiID: ptr(int64(50))})
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestUpdateComponent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := mustComponent(t, s, "心")

	got, err := s.UpdateComponent(ctx, c.ID, dictionary.UpdateComponentParams{CanBeRadical: ptr(true), KangxiNumber: ptr(61), ShortMeaning: ptr("heart")})
	require.NoError(t, err)
	assert.True(t, got.CanBeRadical)
	assert.Equal(t, 61, *got.KangxiNumber)
	assert.Equal(t, "heart", *got.ShortMeaning)

	byNumber, err := s.GetComponentByKangxiNumber(ctx, 61)
	require.NoError(t, err)
	assert.Equal(t, c.ID, byNumber.ID)

	_, err = s.GetComponentByKangxiNumber(ctx, 62)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

// componentFixture creates radicals 氵(85), 心(61), 木(75) and a plain 口.
func componentFixture(t *testing.T, s *dictionary.Store) map[string]*dictionary.Component {
	t.Helper()
	out := make(map[string]*dictionary.Component)
	for _, p := range []dictionary.CreateComponentParams{
		{Character: "氵", StrokeCount: ptr(3), ShortMeaning: ptr("water"), CanBeRadical: true, KangxiNumber: ptr(85), KangxiMeaning: ptr("water")},
		{Character: "心", StrokeCount: ptr(4), ShortMeaning: ptr("heart"), CanBeRadical: true, KangxiNumber: ptr(61), KangxiMeaning: ptr("heart")},
		{Character: "木", StrokeCount: ptr(4), ShortMeaning: ptr("tree"), CanBeRadical: true, KangxiNumber: ptr(75), KangxiMeaning: ptr("tree")},
		{Character: "口", StrokeCount: ptr(3), ShortMeaning: ptr("mouth"), SearchKeywords: ptr("opening, 85th")},
	} {
		c, err := s.CreateComponent(context.Background(), p)
		require.NoError(t, err)
		out[c.Character] = c
	}
	return out
}

func componentChars(cs []dictionary.Component) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Character
	}
	return out
}

func TestListRadicals_ByKangxiNumber(t *testing.T) {
	s := newTestStore(t)
	componentFixture(t, s)
	got, err := s.ListRadicals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"心", "木", "氵"}, componentChars(got))
}

func TestSearchComponents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	componentFixture(t, s)

	tests := []struct {
		name string
		f    dictionary.ComponentFilters
		want []string
	}{
		{"all newest first", dictionary.ComponentFilters{}, []string{"口", "木", "心", "氵"}},
		{"search meaning", dictionary.ComponentFilters{Search: "heart"}, []string{"心"}},
		{"search keywords", dictionary.ComponentFilters{Search: "opening"}, []string{"口"}},
		{"kangxi number", dictionary.ComponentFilters{KangxiSearch: "85"}, []string{"氵"}},
		{"kangxi full-width number", dictionary.ComponentFilters{KangxiSearch: "８５"}, []string{"氵"}},
		{"kangxi meaning", dictionary.ComponentFilters{KangxiSearch: "tre"}, []string{"木"}},
		{"not radical", dictionary.ComponentFilters{CanBeRadical: ptr(false)}, []string{"口"}},
		{"strokes", dictionary.ComponentFilters{StrokeCountMin: ptr(4)}, []string{"木", "心"}},
		{"limit", dictionary.ComponentFilters{Limit: 1}, []string{"口"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchComponents(ctx, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, componentChars(got))
		})
	}
}

func TestDeleteComponent_CascadesOccurrences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cs := componentFixture(t, s)
	k := mustKanji(t, s, "海")
	_, err := s.AddOccurrence(ctx, k.ID, dictionary.AddOccurrenceParams{ComponentID: cs["氵"].ID})
	require.NoError(t, err)
	_, err = s.AddOccurrence(ctx, k.ID, dictionary.AddOccurrenceParams{ComponentID: cs["口"].ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteComponent(ctx, cs["氵"].ID))

	occ, err := s.ListOccurrencesForKanji(ctx, k.ID)
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, "口", occ[0].ComponentCharacter)
	requireContiguous(t, s, dictionary.EntityOccurrence, k.ID, 1)
}

// ─── Forms ──────────────────────────────────────────────────────────────────

func TestForms(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	water := mustComponent(t, s, "水")

	primary, err := s.PrimaryForm(ctx, water.ID)
	require.NoError(t, err)
	assert.Nil(t, primary)

	full, err := s.AddForm(ctx, water.ID, dictionary.AddFormParams{FormCharacter: "水", FormName: ptr("full")})
	require.NoError(t, err)
	side, err := s.AddForm(ctx, water.ID, dictionary.AddFormParams{FormCharacter: "氵", FormName: ptr("left side"), Position: ptr(0)})
	require.NoError(t, err)

	primary, err = s.PrimaryForm(ctx, water.ID)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.Equal(t, side.ID, primary.ID, "inserted at position 0")

	got, err := s.UpdateForm(ctx, full.ID, dictionary.UpdateFormParams{UsageNotes: ptr("standalone")})
	require.NoError(t, err)
	assert.Equal(t, "standalone", *got.UsageNotes)

	counts, err := s.FormCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{water.ID: 2}, counts)

	require.NoError(t, s.DeleteForm(ctx, side.ID))
	requireContiguous(t, s, dictionary.EntityForm, water.ID, 1)

	_, err = s.AddForm(ctx, water.ID, dictionary.AddFormParams{FormCharacter: "ab"})
	assert.True(t, validate.IsValidation(err))
}

// ─── Occurrences ────────────────────────────────────────────────────────────

func TestOccurrences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	water := mustComponent(t, s, "水")
	side, err := s.AddForm(ctx, water.ID, dictionary.AddFormParams{FormCharacter: "氵"})
	require.NoError(t, err)
	hen, err := s.CreatePositionType(ctx, dictionary.ReferenceTypeParams{Name: "hen", NameJapanese: ptr("へん")})
	require.NoError(t, err)
	umi := mustKanji(t, s, "海")

	o, err := s.AddOccurrence(ctx, umi.ID, dictionary.AddOccurrenceParams{
		ComponentID:     water.ID,
		ComponentFormID: &side.ID,
		PositionTypeID:  &hen.ID,
		IsRadical:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "氵", o.DisplayCharacter())
	assert.Equal(t, "海", o.KanjiCharacter)
	require.NotNil(t, o.PositionName)
	assert.Equal(t, "hen", *o.PositionName)

	radical, err := s.RadicalOccurrence(ctx, umi.ID)
	require.NoError(t, err)
	require.NotNil(t, radical)
	assert.Equal(t, o.ID, radical.ID)

	forComponent, err := s.ListOccurrencesForComponent(ctx, water.ID)
	require.NoError(t, err)
	assert.Len(t, forComponent, 1)

	got, err := s.UpdateOccurrence(ctx, o.ID, dictionary.UpdateOccurrenceParams{ComponentFormID: ptr(int64(0)), IsRadical: ptr(false)})
	require.NoError(t, err)
	assert.Nil(t, got.ComponentFormID, "zero id clears the form")
	assert.Equal(t, "水", got.DisplayCharacter())

	radical, err = s.RadicalOccurrence(ctx, umi.ID)
	require.NoError(t, err)
	assert.Nil(t, radical)
}

func TestOccurrences_FormMustBelongToComponent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	water := mustComponent(t, s, "水")
	heart := mustComponent(t, s, "心")
	heartForm, err := s.AddForm(ctx, heart.ID, dictionary.AddFormParams{FormCharacter: "忄"})
	require.NoError(t, err)
	umi := mustKanji(t, s, "海")

	_, err = s.AddOccurrence(ctx, umi.ID, dictionary.AddOccurrenceParams{ComponentID: water.ID, ComponentFormID: &heartForm.ID})
	require.Error(t, err)
	assert.True(t, validate.IsValidation(err))

	_, err = s.AddOccurrence(ctx, umi.ID, dictionary.AddOccurrenceParams{ComponentID: 404})
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

// ─── Groupings ──────────────────────────────────────────────────────────────

func TestGroupings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	water := mustComponent(t, s, "氵")
	heart := mustComponent(t, s, "心")
	var occ []int64
	for _, ch := range []string{"海", "池", "泳"} {
		k := mustKanji(t, s, ch)
		o, err := s.AddOccurrence(ctx, k.ID, dictionary.AddOccurrenceParams{ComponentID: water.ID})
		require.NoError(t, err)
		occ = append(occ, o.ID)
	}
	ai := mustKanji(t, s, "愛")
	heartOcc, err := s.AddOccurrence(ctx, ai.ID, dictionary.AddOccurrenceParams{ComponentID: heart.ID})
	require.NoError(t, err)

	g, err := s.CreateGrouping(ctx, water.ID, "bodies of water", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "氵", g.ComponentCharacter)

	for _, id := range occ[:2] {
		_, err := s.AddGroupingMember(ctx, g.ID, id)
		require.NoError(t, err)
	}
	again, err := s.AddGroupingMember(ctx, g.ID, occ[0])
	require.NoError(t, err)
	assert.Equal(t, "海", again.KanjiCharacter)

	_, err = s.AddGroupingMember(ctx, g.ID, heartOcc.ID)
	assert.True(t, validate.IsValidation(err), "occurrence of another component")

	got, err := s.GetGrouping(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.OccurrenceCount)

	require.NoError(t, s.ReorderGroupingMembers(ctx, g.ID, []int64{occ[1], occ[0]}))
	members, err := s.ListGroupingMembers(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "池", members[0].KanjiCharacter)

	err = s.ReorderGroupingMembers(ctx, g.ID, []int64{occ[2], occ[0]})
	assert.ErrorIs(t, err, dictionary.ErrInvalidOrder)

	// Deleting an occurrence drops its membership and compacts the grouping.
	require.NoError(t, s.DeleteOccurrence(ctx, occ[1]))
	requireContiguous(t, s, dictionary.EntityGroupingMember, g.ID, 1)

	require.NoError(t, s.RemoveGroupingMember(ctx, g.ID, occ[0]))
	err = s.RemoveGroupingMember(ctx, g.ID, occ[0])
	assert.ErrorIs(t, err, dictionary.ErrNotFound)

	counts, err := s.GroupingCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[water.ID])
}

func TestGroupings_OneOccurrenceInSeveral(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	water := mustComponent(t, s, "氵")
	k := mustKanji(t, s, "海")
	o, err := s.AddOccurrence(ctx, k.ID, dictionary.AddOccurrenceParams{ComponentID: water.ID})
	require.NoError(t, err)

	a, err := s.CreateGrouping(ctx, water.ID, "sea", nil, nil)
	require.NoError(t, err)
	b, err := s.CreateGrouping(ctx, water.ID, "phonetic", ptr("water as a sound hint"), nil)
	require.NoError(t, err)
	_, err = s.AddGroupingMember(ctx, a.ID, o.ID)
	require.NoError(t, err)
	_, err = s.AddGroupingMember(ctx, b.ID, o.ID)
	require.NoError(t, err)

	all, err := s.ListAllGroupings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "phonetic", all[0].Name, "sorted by name")

	updated, err := s.UpdateGrouping(ctx, a.ID, dictionary.UpdateGroupingParams{Name: ptr("seas")})
	require.NoError(t, err)
	assert.Equal(t, "seas", updated.Name)

	require.NoError(t, s.DeleteGrouping(ctx, a.ID))
	occ, err := s.ListOccurrencesForKanji(ctx, k.ID)
	require.NoError(t, err)
	assert.Len(t, occ, 1, "deleting a grouping keeps the occurrence")
	requireContiguous(t, s, dictionary.EntityGrouping, water.ID, 1)
}

// ─── Reference types ────────────────────────────────────────────────────────

func TestClassificationTypes_Builtin(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	types, err := s.ListClassificationTypes(ctx)
	require.NoError(t, err)
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = ct.TypeName
	}
	assert.Equal(t, []string{"pictograph", "ideograph", "compound_ideograph", "phono_semantic", "phonetic_loan"}, names)

	ct, err := s.GetClassificationTypeByName(ctx, "phono_semantic")
	require.NoError(t, err)
	assert.Equal(t, "形声文字", *ct.NameJapanese)
}

func TestClassificationTypes_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ct, err := s.CreateClassificationType(ctx, dictionary.ReferenceTypeParams{Name: "kokuji", NameJapanese: ptr("国字")})
	require.NoError(t, err)
	assert.Equal(t, 5, ct.DisplayOrder)

	_, err = s.CreateClassificationType(ctx, dictionary.ReferenceTypeParams{Name: "kokuji"})
	assert.ErrorIs(t, err, dictionary.ErrDuplicate)

	got, err := s.UpdateClassificationType(ctx, ct.ID, dictionary.UpdateReferenceTypeParams{NameEnglish: ptr("Japanese-made")})
	require.NoError(t, err)
	assert.Equal(t, "Japanese-made", *got.NameEnglish)

	require.NoError(t, s.DeleteClassificationType(ctx, ct.ID))
	_, err = s.GetClassificationType(ctx, ct.ID)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestKanjiClassifications(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	k := mustKanji(t, s, "海")
	phono, err := s.GetClassificationTypeByName(ctx, "phono_semantic")
	require.NoError(t, err)
	compound, err := s.GetClassificationTypeByName(ctx, "compound_ideograph")
	require.NoError(t, err)

	primary, err := s.PrimaryClassification(ctx, k.ID)
	require.NoError(t, err)
	assert.Nil(t, primary)

	a, err := s.AddKanjiClassification(ctx, k.ID, phono.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "phono_semantic", a.TypeName)
	_, err = s.AddKanjiClassification(ctx, k.ID, compound.ID, ptr(0))
	require.NoError(t, err)

	primary, err = s.PrimaryClassification(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, "compound_ideograph", primary.TypeName)

	got, err := s.SearchKanji(ctx, dictionary.KanjiFilters{ClassificationTypeIDs: []int64{phono.ID, compound.ID}}, dictionary.KanjiSort{})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Deleting the type removes it from the kanji and compacts the rest.
	require.NoError(t, s.DeleteClassificationType(ctx, compound.ID))
	list, err := s.ListKanjiClassifications(ctx, k.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].DisplayOrder)

	_, err = s.AddKanjiClassification(ctx, k.ID, 999, nil)
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestPositionTypes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	hen, err := s.CreatePositionType(ctx, dictionary.ReferenceTypeParams{Name: "hen"})
	require.NoError(t, err)
	_, err = s.CreatePositionType(ctx, dictionary.ReferenceTypeParams{Name: "tsukuri"})
	require.NoError(t, err)
	_, err = s.CreatePositionType(ctx, dictionary.ReferenceTypeParams{Name: " "})
	assert.True(t, validate.IsValidation(err))

	require.NoError(t, s.Move(ctx, dictionary.EntityPositionType, hen.ID, dictionary.Down))
	list, err := s.ListPositionTypes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "tsukuri", list[0].PositionName)

	got, err := s.GetPositionTypeByName(ctx, "hen")
	require.NoError(t, err)
	assert.Equal(t, 1, got.DisplayOrder)

	updated, err := s.UpdatePositionType(ctx, hen.ID, dictionary.UpdateReferenceTypeParams{NameJapanese: ptr("へん")})
	require.NoError(t, err)
	assert.Equal(t, "へん", *updated.NameJapanese)

	require.NoError(t, s.DeletePositionType(ctx, hen.ID))
	requireContiguous(t, s, dictionary.EntityPositionType, 0, 1)
}
