package dictionary

import (
	"context"
	"fmt"
	"strings"
)

// ReadingGroupDetail is a reading group with its members in order.
type ReadingGroupDetail struct {
	ReadingGroup
	Members []GroupMember `json:"members"`
}

// KanjiDetail is everything the dictionary knows about one kanji.
type KanjiDetail struct {
	Kanji              Kanji                 `json:"kanji"`
	Radical            *Component            `json:"radical,omitempty"`
	Meanings           []Meaning             `json:"meanings"`
	ReadingGroups      []ReadingGroupDetail  `json:"reading_groups,omitempty"`
	UnassignedMeanings []Meaning             `json:"unassigned_meanings,omitempty"`
	OnReadings         []Reading             `json:"on_readings"`
	KunReadings        []Reading             `json:"kun_readings"`
	Classifications    []KanjiClassification `json:"classifications"`
	Occurrences        []Occurrence          `json:"components"`
	Vocabulary         []Vocabulary          `json:"vocabulary"`
}

// GetKanjiDetail loads a kanji with all of its child lists.
func (s *Store) GetKanjiDetail(ctx context.Context, id int64) (*KanjiDetail, error) {
	k, err := s.GetKanji(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &KanjiDetail{Kanji: *k}

	if k.RadicalID != nil {
		d.Radical, err = s.GetComponent(ctx, *k.RadicalID)
		if err != nil {
			return nil, err
		}
	}
	if d.Meanings, err = s.ListMeanings(ctx, id); err != nil {
		return nil, err
	}

	groups, err := s.ListReadingGroups(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		members, err := s.ListGroupMembersByKanji(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			d.ReadingGroups = append(d.ReadingGroups, ReadingGroupDetail{ReadingGroup: g, Members: members[g.ID]})
		}
		if d.UnassignedMeanings, err = s.UnassignedMeanings(ctx, id); err != nil {
			return nil, err
		}
	}

	if d.OnReadings, err = s.ListReadings(ctx, OnReading, id); err != nil {
		return nil, err
	}
	if d.KunReadings, err = s.ListReadings(ctx, KunReading, id); err != nil {
		return nil, err
	}
	if d.Classifications, err = s.ListKanjiClassifications(ctx, id); err != nil {
		return nil, err
	}
	if d.Occurrences, err = s.ListOccurrencesForKanji(ctx, id); err != nil {
		return nil, err
	}
	if d.Vocabulary, err = s.ListVocabularyForKanji(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

// Format renders the detail as a plain-text card.
func (d *KanjiDetail) Format() string {
	var b strings.Builder
	k := d.Kanji
	fmt.Fprintf(&b, "%s (id %d)", k.Character, k.ID)
	if k.ShortMeaning != nil {
		fmt.Fprintf(&b, " %s", *k.ShortMeaning)
	}
	b.WriteString("\n")

	var facts []string
	if k.StrokeCount != nil {
		facts = append(facts, fmt.Sprintf("%d strokes", *k.StrokeCount))
	}
	if k.JLPTLevel != nil {
		facts = append(facts, "JLPT "+*k.JLPTLevel)
	}
	if k.JoyoLevel != nil {
		facts = append(facts, "Joyo "+*k.JoyoLevel)
	}
	if k.KenteiLevel != nil {
		facts = append(facts, "Kentei "+*k.KenteiLevel)
	}
	if d.Radical != nil {
		facts = append(facts, "radical "+FormatKangxi(*d.Radical))
	}
	if len(facts) > 0 {
		b.WriteString(strings.Join(facts, " · ") + "\n")
	}

	if len(d.ReadingGroups) > 0 {
		b.WriteString("\nMeanings:\n")
		for _, g := range d.ReadingGroups {
			texts := make([]string, len(g.Members))
			for i, m := range g.Members {
				texts[i] = m.MeaningText
			}
			fmt.Fprintf(&b, "  [%s] %s\n", g.ReadingText, strings.Join(texts, "; "))
		}
		if len(d.UnassignedMeanings) > 0 {
			fmt.Fprintf(&b, "  [unassigned] %s\n", FormatMeanings(d.UnassignedMeanings))
		}
	} else if len(d.Meanings) > 0 {
		fmt.Fprintf(&b, "\nMeanings: %s\n", FormatMeanings(d.Meanings))
	}

	if len(d.OnReadings) > 0 {
		fmt.Fprintf(&b, "On: %s\n", joinReadings(d.OnReadings))
	}
	if len(d.KunReadings) > 0 {
		fmt.Fprintf(&b, "Kun: %s\n", joinReadings(d.KunReadings))
	}
	if len(d.Classifications) > 0 {
		names := make([]string, len(d.Classifications))
		for i, c := range d.Classifications {
			names[i] = c.TypeName
		}
		fmt.Fprintf(&b, "Classification: %s\n", strings.Join(names, ", "))
	}
	if len(d.Occurrences) > 0 {
		parts := make([]string, len(d.Occurrences))
		for i, o := range d.Occurrences {
			p := o.DisplayCharacter()
			if o.PositionName != nil {
				p += " (" + *o.PositionName + ")"
			}
			if o.IsRadical {
				p += " [radical]"
			}
			parts[i] = p
		}
		fmt.Fprintf(&b, "Components: %s\n", strings.Join(parts, ", "))
	}
	if len(d.Vocabulary) > 0 {
		words := make([]string, len(d.Vocabulary))
		for i, v := range d.Vocabulary {
			words[i] = v.Word
			if v.Kana != nil {
				words[i] += "（" + *v.Kana + "）"
			}
		}
		fmt.Fprintf(&b, "Vocabulary: %s\n", strings.Join(words, ", "))
	}
	return b.String()
}

func joinReadings(rs []Reading) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.Reading
		if r.Okurigana != nil {
			parts[i] += "." + *r.Okurigana
		}
		if r.ReadingLevel != ReadingLevels[0] {
			parts[i] += "(" + r.ReadingLevel + ")"
		}
	}
	return strings.Join(parts, "、")
}
