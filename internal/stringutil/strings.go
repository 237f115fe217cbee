// Package stringutil provides common string matching utilities.
package stringutil

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

// apostrophes matches the ASCII apostrophe and the typographic forms phone
// keyboards insert (U+2018, U+2019, U+02BC).
const apostrophes = "['\u2018\u2019\u02BC]"

// PhraseRegex builds one case-insensitive whole-word alternation from phrases.
// Blank phrases are skipped, and longer phrases are tried first so "panic
// attack" wins over a shorter overlap. An apostrophe in a phrase matches any
// apostrophe form. An empty list yields a regex that never matches.
func PhraseRegex(phrases []string) (*regexp.Regexp, error) {
	return phraseRegex(phrases, `\b`, `\b`)
}

// StandalonePhraseRegex is like PhraseRegex but also refuses a match joined
// to a neighbor by a hyphen, so "hi" does not match "hi-fi".
func StandalonePhraseRegex(phrases []string) (*regexp.Regexp, error) {
	return phraseRegex(phrases, `(?:^|[^\w-])`, `(?:[^\w-]|$)`)
}

func phraseRegex(phrases []string, left, right string) (*regexp.Regexp, error) {
	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, strings.ReplaceAll(regexp.QuoteMeta(p), "'", apostrophes))
		}
	}
	if len(cleaned) == 0 {
		return regexp.Compile(`[^\s\S]`)
	}

	slices.SortStableFunc(cleaned, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	return regexp.Compile(`(?i)` + left + `(?:` + strings.Join(cleaned, "|") + `)` + right)
}

// MustPhraseRegex is like PhraseRegex but panics on error.
// Use it only for built-in phrase tables.
func MustPhraseRegex(phrases []string) *regexp.Regexp {
	re, err := PhraseRegex(phrases)
	if err != nil {
		panic("stringutil: " + err.Error())
	}
	return re
}

// ContainsEitherFold reports whether a contains b or b contains a, ignoring
// case. Empty strings never match.
func ContainsEitherFold(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// ContainsFold reports whether s contains substr, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// CollapseSpace trims s and collapses internal whitespace runs to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
