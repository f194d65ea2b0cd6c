package transaction

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred value type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// ColumnKinds infers a Kind per column over every record: integer when every
// value parses as an integer, float when the non-empty values all parse as
// finite numbers, string otherwise. A whole-number column with blank cells is
// a float, since an integer column cannot hold a missing value. The postal
// code column is always a string so leading zeros survive, and a column with
// no values at all is a string.
func (t *Table) ColumnKinds() []Kind {
	kinds := make([]Kind, len(t.Columns))
	for col := range t.Columns {
		if col == t.PostalIdx {
			kinds[col] = KindString
			continue
		}

		kind, seen, hasBlank := KindInt, false, false
		for _, r := range t.Records {
			v := strings.TrimSpace(r.Fields[col])
			if v == "" {
				hasBlank = true
				continue
			}
			seen = true
			if kind == KindInt {
				if _, err := strconv.ParseInt(v, 10, 64); err == nil {
					continue
				}
				kind = KindFloat
			}
			if f, err := strconv.ParseFloat(v, 64); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				kind = KindString
				break
			}
		}
		switch {
		case !seen:
			kind = KindString
		case kind == KindInt && hasBlank:
			kind = KindFloat
		}
		kinds[col] = kind
	}
	return kinds
}

// Typed converts a raw field to the Go value for kind. Empty fields are nil.
func Typed(raw string, kind Kind) any {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	switch kind {
	case KindInt:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return raw
}
