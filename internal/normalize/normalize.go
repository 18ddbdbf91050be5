// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize provides the deterministic text normalization used for
// entity comparison keys and mention checks. All functions are pure and
// idempotent: normalizing an already-normalized string is a no-op.
// Implements: prd001-resolution (R2);
//
//	docs/ARCHITECTURE § Normalization.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// parentheticalPattern matches parenthesized suffixes like "(US)" or
	// "(CIA agent)" together with any whitespace preceding them.
	parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)`)

	// possessiveSPattern matches a trailing "'s" at a word end ("Stalin's").
	possessiveSPattern = regexp.MustCompile(`'s\b`)

	// possessivePluralPattern matches a trailing "s'" at a word end ("Marines'").
	possessivePluralPattern = regexp.MustCompile(`s'(\s|$)`)

	// nonAlnumPattern matches every character that is not a lowercase
	// letter, digit, or space.
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9 ]`)

	// mentionPossessivePattern matches possessive markers in running text,
	// covering both ASCII and typographic apostrophes.
	mentionPossessivePattern = regexp.MustCompile(`['’]\s*s?\b`)

	// nonAlnumToSpacePattern matches characters replaced by spaces during
	// mention-check normalization.
	nonAlnumToSpacePattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// articles are the leading articles stripped from comparison keys.
var articles = []string{"the ", "a ", "an "}

// stripArticles removes leading articles repeatedly so stacked articles
// ("the the") reduce to a stable form. Case-insensitive.
func stripArticles(s string) string {
	for stripped := true; stripped; {
		stripped = false
		for _, a := range articles {
			if len(s) >= len(a) && strings.EqualFold(s[:len(a)], a) {
				s = strings.TrimSpace(s[len(a):])
				stripped = true
			}
		}
	}
	return s
}

// ForComparison reduces an entity name to its canonical comparison key.
// The pipeline order is fixed: parentheticals, lowercase, leading articles,
// trailing possessives, punctuation, whitespace collapse, trim. Articles are
// stripped once more at the end so punctuation removal can never re-expose
// one (idempotence).
func ForComparison(name string) string {
	s := parentheticalPattern.ReplaceAllString(name, "")
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripArticles(s)
	s = possessiveSPattern.ReplaceAllString(s, "")
	s = possessivePluralPattern.ReplaceAllString(s, "s$1")
	s = nonAlnumPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return stripArticles(s)
}

// ForMentionCheck normalizes running transcript text for substring search.
// More aggressive than ForComparison: every non-alphanumeric run becomes a
// single space so punctuation never hides a mention.
func ForMentionCheck(text string) string {
	s := strings.ToLower(text)
	s = mentionPossessivePattern.ReplaceAllString(s, "")
	s = nonAlnumToSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanName strips parentheticals, leading articles, possessives, and
// punctuation from a raw name while preserving its original casing. Used to
// manufacture a display-worthy canonical name when no existing record
// matches.
func CleanName(name string) string {
	s := parentheticalPattern.ReplaceAllString(name, "")
	s = stripArticles(strings.TrimSpace(s))
	s = possessiveSPattern.ReplaceAllString(s, "")
	s = possessivePluralPattern.ReplaceAllString(s, "s$1")

	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
