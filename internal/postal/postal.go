// Package postal extracts and normalises 6-digit postal codes, the join key
// between building footprints and resale transactions.
package postal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Length is the number of digits in a postal code.
const Length = 6

// Code is a zero-padded 6-digit postal code.
type Code string

// descriptionPattern matches the postal code cell of the HTML attribute table
// embedded in footprint descriptions. Only the digits after the POSTAL_COD
// label count; other 6-digit runs in the description are ignored.
var descriptionPattern = regexp.MustCompile(`(?is)<th>\s*POSTAL_COD\s*</th>\s*<td>\s*([0-9]{6})\s*</td>`)

var sixDigits = regexp.MustCompile(`\d{6}`)

// FromDescription extracts the postal code from a footprint description.
func FromDescription(desc string) (Code, bool) {
	m := descriptionPattern.FindStringSubmatch(desc)
	if m == nil {
		return "", false
	}
	return pad(m[1]), true
}

// FromDescriptionValue is FromDescription for an untyped attribute value, as
// decoded from GeoJSON properties. Nil never matches.
func FromDescriptionValue(v any) (Code, bool) {
	s, ok := stringify(v)
	if !ok {
		return "", false
	}
	return FromDescription(s)
}

// Normalize takes the first 6-digit run of a raw value and zero-pads it.
// Values without one, such as a 4-digit code, are not ok.
func Normalize(raw string) (Code, bool) {
	m := sixDigits.FindString(raw)
	if m == "" {
		return "", false
	}
	return pad(m), true
}

// NormalizeValue is Normalize for an untyped attribute value.
func NormalizeValue(v any) (Code, bool) {
	s, ok := stringify(v)
	if !ok {
		return "", false
	}
	return Normalize(s)
}

// Valid reports whether c is exactly 6 ASCII digits.
func (c Code) Valid() bool {
	if len(c) != Length {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < '0' || c[i] > '9' {
			return false
		}
	}
	return true
}

func (c Code) String() string { return string(c) }

func pad(digits string) Code {
	if len(digits) < Length {
		digits = strings.Repeat("0", Length-len(digits)) + digits
	}
	return Code(digits)
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return fmt.Sprint(t), true
	}
}
