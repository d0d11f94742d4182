package dictionary

import "strings"

// whereClause collects AND-ed conditions and their arguments.
type whereClause struct {
	conditions []string
	args       []any
}

func (w *whereClause) add(cond string, args ...any) {
	w.conditions = append(w.conditions, cond)
	w.args = append(w.args, args...)
}

// like adds a LIKE '%term%' match across one or more columns (OR-ed).
func (w *whereClause) like(term string, cols ...string) {
	if term == "" || len(cols) == 0 {
		return
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " LIKE ?"
		w.args = append(w.args, "%"+term+"%")
	}
	w.conditions = append(w.conditions, "("+strings.Join(parts, " OR ")+")")
}

// in adds col IN (...) for a non-empty list.
func (w *whereClause) in(col string, values []string) {
	if len(values) == 0 {
		return
	}
	w.add(col+" IN ("+placeholders(len(values))+")", stringArgs(values)...)
}

// presence adds IS NULL / IS NOT NULL for "missing" / "has".
func (w *whereClause) presence(col string, mode Presence) {
	switch mode {
	case Has:
		w.add(col + " IS NOT NULL")
	case Missing:
		w.add(col + " IS NULL")
	}
}

func (w *whereClause) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// Presence filters a nullable column by whether it holds a value.
type Presence string

const (
	Has     Presence = "has"
	Missing Presence = "missing"
)

// TextLength filters a notes column by how much has been written.
type TextLength string

const (
	TextEmpty  TextLength = "empty"
	TextShort  TextLength = "short"
	TextMedium TextLength = "medium"
	TextLong   TextLength = "long"
)

// minLength returns the minimum character count for a length bucket.
func (l TextLength) minLength() int {
	switch l {
	case TextShort:
		return 50
	case TextMedium:
		return 200
	case TextLong:
		return 500
	default:
		return 0
	}
}

func (w *whereClause) textLength(col string, l TextLength) {
	switch l {
	case TextEmpty:
		w.add("(" + col + " IS NULL OR " + col + " = '')")
	case TextShort, TextMedium, TextLong:
		w.add("LENGTH("+col+") >= ?", l.minLength())
	}
}
