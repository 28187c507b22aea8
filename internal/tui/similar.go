package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/jask/jasktodo/internal/store"
)

// nearDuplicate returns the text of the first task other than self whose text
// is within a small edit distance of text.
func nearDuplicate(snap store.Snapshot, self store.ID, text string) (string, bool) {
	want := normalizeText(text)
	if want == "" {
		return "", false
	}
	limit := 1 + utf8.RuneCountInString(want)/8
	for _, t := range snap.Tasks() {
		if t.ID == self {
			continue
		}
		other := normalizeText(t.Text)
		if other == "" {
			continue
		}
		if levenshtein.ComputeDistance(want, other) <= limit {
			return t.Text, true
		}
	}
	return "", false
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
