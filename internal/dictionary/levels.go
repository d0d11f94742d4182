package dictionary

import (
	"strings"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

// Level vocabularies accepted by the check constraints in the schema.
var (
	JLPTLevels    = []string{"N5", "N4", "N3", "N2", "N1", "non-jlpt"}
	JoyoLevels    = []string{"elementary1", "elementary2", "elementary3", "elementary4", "elementary5", "elementary6", "secondary", "non-joyo"}
	KenteiLevels  = []string{"10", "9", "8", "7", "6", "5", "4", "3", "pre2", "2", "pre1", "1"}
	ReadingLevels = []string{"小", "中", "高", "外"}
)

// Field length limits.
const (
	maxCharacterField = 16
	maxShortText      = 255
	maxLongText       = 20000
	minStrokeCount    = 1
	maxStrokeCount    = 64
)

// NormalizeKenteiLevel maps the printed Kanji Kentei labels onto the stored
// keys: "10級" -> "10", "準2級" -> "pre2". Keys pass through unchanged.
func NormalizeKenteiLevel(s string) string {
	v := strings.TrimSpace(s)
	v = strings.TrimSuffix(v, "級")
	if rest, ok := strings.CutPrefix(v, "準"); ok {
		v = "pre" + rest
	}
	return v
}

func checkLevel(field string, v *string, allowed []string) error {
	if v == nil || *v == "" {
		return nil
	}
	return validate.OneOf(field, *v, allowed)
}

func checkStrokeCount(field string, v *int) error {
	if v == nil {
		return nil
	}
	return validate.IntRange(field, *v, minStrokeCount, maxStrokeCount)
}

func checkText(field string, v *string, max int) error {
	if v == nil {
		return nil
	}
	return validate.MaxLength(field, *v, max)
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
