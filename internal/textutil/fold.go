package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the case-folded NFC form of value with surrounding whitespace
// removed.
func Fold(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(value))
}

// EqualFold reports whether a and b are equal under Fold.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// HasPrefixFold reports whether value starts with prefix under Fold.
func HasPrefixFold(value, prefix string) bool {
	return strings.HasPrefix(Fold(value), Fold(prefix))
}

// HeaderKey folds a column header and strips all interior whitespace, so
// "End Time EST" and "endtime est" produce the same key.
func HeaderKey(header string) string {
	return strings.Join(strings.Fields(Fold(strings.TrimPrefix(header, "\ufeff"))), "")
}

// Canonical returns the member of allowed equal to value under Fold, or
// false when none matches. Empty input never matches.
func Canonical(value string, allowed []string) (string, bool) {
	folded := Fold(value)
	if folded == "" {
		return "", false
	}
	for _, candidate := range allowed {
		if Fold(candidate) == folded {
			return candidate, true
		}
	}
	return "", false
}
