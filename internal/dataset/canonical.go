package dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NotInformed replaces empty categorical values.
const NotInformed = "NAO INFORMADO"

func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Canonical folds accents, trims and upper-cases a categorical value so that
// "São Paulo" and "SAO PAULO " compare equal.
func Canonical(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(fold(s)), " "))
}

// Category is Canonical with empty values mapped to NotInformed.
func Category(s string) string {
	c := Canonical(s)
	if c == "" {
		return NotInformed
	}
	return c
}

// HeaderKey normalizes a column header: accents folded, lower case, spaces
// as underscores, dots dropped.
func HeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(fold(s)))
	s = strings.ReplaceAll(s, ".", "")
	return strings.Join(strings.Fields(s), "_")
}
