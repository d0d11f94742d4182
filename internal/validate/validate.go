// Package validate holds the input checks shared by the dictionary store
// and its tool surfaces.
//
// Every failure is a *Error so callers can tell a user mistake apart from
// an unexpected failure with IsValidation.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Error is a validation failure on a single input field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errorf builds a validation error for field.
func Errorf(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err (or anything it wraps) is a validation error.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// ─── Strings ─────────────────────────────────────────────────────────────────

// SingleCharacter trims s, normalizes it to NFC and requires exactly one
// user-perceived character. Kanji, kana, radicals and characters outside
// the BMP all count as one character; a base character followed by a
// variation selector is also one character.
func SingleCharacter(field, s string) (string, error) {
	v := norm.NFC.String(strings.TrimSpace(s))
	if v == "" {
		return "", Errorf(field, "is required")
	}
	if n := uniseg.GraphemeClusterCount(v); n != 1 {
		return "", Errorf(field, "must be a single character, got %d", n)
	}
	r, _ := utf8.DecodeRuneInString(v)
	if unicode.IsSpace(r) || unicode.IsControl(r) {
		return "", Errorf(field, "must be a visible character")
	}
	return v, nil
}

// Required trims s and rejects empty or whitespace-only input.
func Required(field, s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", Errorf(field, "is required")
	}
	return v, nil
}

// MaxLength rejects strings longer than max characters.
func MaxLength(field, s string, max int) error {
	if n := utf8.RuneCountInString(s); n > max {
		return Errorf(field, "must be at most %d characters, got %d", max, n)
	}
	return nil
}

// Optional trims s and returns nil for empty input so the store writes NULL.
func Optional(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}

// FoldQuery prepares free-text search input: full-width ASCII is folded to
// half-width and half-width katakana to full-width, then the result is
// trimmed. "１２" becomes "12".
func FoldQuery(s string) string {
	return strings.TrimSpace(width.Fold.String(norm.NFC.String(s)))
}

// ─── Numbers and enums ───────────────────────────────────────────────────────

// IntRange rejects v outside [min, max].
func IntRange(field string, v, min, max int) error {
	if v < min || v > max {
		return Errorf(field, "must be between %d and %d, got %d", min, max, v)
	}
	return nil
}

// OneOf rejects v unless it is one of allowed.
func OneOf(field, v string, allowed []string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return Errorf(field, "must be one of %s, got %q", strings.Join(allowed, ", "), v)
}

// AllOf applies OneOf to every element of vs.
func AllOf(field string, vs []string, allowed []string) error {
	for _, v := range vs {
		if err := OneOf(field, v, allowed); err != nil {
			return err
		}
	}
	return nil
}
