package validate_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// ─── SingleCharacter ─────────────────────────────────────────────────────────

func TestSingleCharacter_Accepts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"kanji", "日", "日"},
		{"hiragana", "あ", "あ"},
		{"katakana", "ア", "ア"},
		{"radical", "亻", "亻"},
		{"supplementary plane", "𠮟", "𠮟"},
		{"trimmed", "  水 ", "水"},
		{"decomposed dakuten is composed", "\u304b\u3099", "\u304c"},
		{"variation selector", "葛\U000E0100", "葛\U000E0100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validate.SingleCharacter("character", tt.input)
			if err != nil {
				t.Fatalf("SingleCharacter(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SingleCharacter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSingleCharacter_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"ideographic space", "　"},
		{"two kanji", "日本"},
		{"kanji and kana", "日ほ"},
		{"ascii word", "ab"},
		{"control", "\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validate.SingleCharacter("character", tt.input)
			if err == nil {
				t.Fatalf("SingleCharacter(%q) expected error", tt.input)
			}
			if !validate.IsValidation(err) {
				t.Errorf("error %v is not a validation error", err)
			}
		})
	}
}

func TestSingleCharacter_ErrorMentionsField(t *testing.T) {
	_, err := validate.SingleCharacter("form_character", "ab")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "form_character: must be a single character, got 2"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

// ─── Required / MaxLength / Optional ─────────────────────────────────────────

func TestRequired(t *testing.T) {
	if _, err := validate.Required("word", " \t "); err == nil {
		t.Error("expected error for whitespace-only input")
	}
	got, err := validate.Required("word", " 日本 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "日本" {
		t.Errorf("Required = %q, want %q", got, "日本")
	}
}

func TestMaxLength_CountsCharactersNotBytes(t *testing.T) {
	if err := validate.MaxLength("kana", "にほんご", 4); err != nil {
		t.Errorf("4 kana within max 4: %v", err)
	}
	if err := validate.MaxLength("kana", "にほんごで", 4); err == nil {
		t.Error("5 kana over max 4 should fail")
	}
}

func TestOptional(t *testing.T) {
	if validate.Optional("  ") != nil {
		t.Error("Optional(whitespace) should be nil")
	}
	if v := validate.Optional(" note "); v == nil || *v != "note" {
		t.Errorf("Optional(\" note \") = %v, want note", v)
	}
}

func TestFoldQuery(t *testing.T) {
	tests := map[string]string{
		"１２":   "12",
		" ｷ ":  "キ",
		"water": "water",
	}
	for in, want := range tests {
		if got := validate.FoldQuery(in); got != want {
			t.Errorf("FoldQuery(%q) = %q, want %q", in, got, want)
		}
	}
}

// ─── Numbers and enums ───────────────────────────────────────────────────────

func TestIntRange(t *testing.T) {
	for _, v := range []int{1, 32, 64} {
		if err := validate.IntRange("stroke_count", v, 1, 64); err != nil {
			t.Errorf("IntRange(%d) error: %v", v, err)
		}
	}
	for _, v := range []int{0, 65, -3} {
		if err := validate.IntRange("stroke_count", v, 1, 64); err == nil {
			t.Errorf("IntRange(%d) expected error", v)
		}
	}
}

func TestOneOfAndAllOf(t *testing.T) {
	levels := []string{"N5", "N4", "N3", "N2", "N1"}
	if err := validate.OneOf("jlpt_level", "N3", levels); err != nil {
		t.Errorf("OneOf(N3) error: %v", err)
	}
	if err := validate.OneOf("jlpt_level", "N6", levels); err == nil {
		t.Error("OneOf(N6) expected error")
	}
	if err := validate.AllOf("jlpt_levels", []string{"N5", "N1"}, levels); err != nil {
		t.Errorf("AllOf error: %v", err)
	}
	if err := validate.AllOf("jlpt_levels", []string{"N5", "X"}, levels); err == nil {
		t.Error("AllOf with X expected error")
	}
}

func TestIsValidation_SeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create kanji: %w", validate.Errorf("character", "is required"))
	if !validate.IsValidation(err) {
		t.Error("wrapped validation error not detected")
	}
	if validate.IsValidation(errors.New("disk full")) {
		t.Error("plain error reported as validation")
	}
	if validate.IsValidation(nil) {
		t.Error("nil reported as validation")
	}
}
