package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// NormalizeName produces the comparison key used to match member names:
// full-width forms are folded to their half-width equivalents, surrounding
// whitespace is trimmed, internal runs of whitespace collapse to one space
// and the result is case-folded.
func NormalizeName(name string) string {
	folded := width.Fold.String(name)
	collapsed := strings.Join(strings.Fields(folded), " ")
	return cases.Fold().String(collapsed)
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
