package widget

import (
	"strings"

	"golang.org/x/text/cases"
)

// indicatorPrefix is sent by the game in front of most indicator ids (IconSTANDING)
const indicatorPrefix = "icon"

// FoldID returns the case-folded form of an identifier for comparisons.
// The result is never stored back into a widget.
func FoldID(id string) string {
	return cases.Fold().String(strings.TrimSpace(id))
}

// normalizeID folds an id and drops a leading "Icon"
func normalizeID(id string) string {
	return strings.TrimPrefix(FoldID(id), indicatorPrefix)
}

// MatchID reports whether an incoming indicator id refers to a stored one.
// Matching ignores case and a leading "Icon" on either id.
func MatchID(stored, incoming string) bool {
	s := normalizeID(stored)
	in := normalizeID(incoming)
	if s == "" || in == "" {
		return false
	}
	return s == in
}
