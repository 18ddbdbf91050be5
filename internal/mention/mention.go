// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mention verifies that names actually occur in transcript text and
// keeps per-record mention counters. Verification guards the registry
// against hallucinated candidates: a proposed entity must literally appear
// in the source window before it is accepted.
// Implements: prd001-resolution (R6);
//
//	docs/ARCHITECTURE § Mention Scanning.
package mention

import (
	"regexp"
	"strings"

	"github.com/pdiddy/lore-engine/internal/normalize"
	"github.com/pdiddy/lore-engine/internal/registry"
)

// Contains reports whether nameOrAlias occurs within the transcript window.
// Both sides are mention-normalized first, so punctuation and possessive
// variation never hide an occurrence. A multi-word name also matches when
// one of its distinctive tokens occurs as a whole word: the model
// canonicalizes partial names to full formal forms, so "Harry S Truman" must
// verify against a chunk that only says "Truman". An empty name never
// matches.
func Contains(nameOrAlias, window string) bool {
	needle := normalize.ForMentionCheck(nameOrAlias)
	if needle == "" {
		return false
	}
	haystack := normalize.ForMentionCheck(window)
	if strings.Contains(haystack, needle) {
		return true
	}
	return tokenMatch(needle, haystack)
}

// UpdateCounts increments the mention count of every record whose canonical
// name or bound alias occurs in chunkText, either as a whole-word match of
// the full name or via a distinctive token of a multi-word name. Each record
// gains at most one count per call regardless of how often it occurs.
func UpdateCounts(reg *registry.Registry, chunkText string) {
	haystack := normalize.ForMentionCheck(chunkText)
	if haystack == "" {
		return
	}

	for _, k := range reg.Keys() {
		rec, ok := reg.Get(k)
		if !ok {
			continue
		}

		if mentioned(normalize.ForMentionCheck(rec.CanonicalName), haystack) {
			reg.IncrementMention(k)
			continue
		}
		for _, alias := range rec.Aliases {
			if mentioned(normalize.ForMentionCheck(alias), haystack) {
				reg.IncrementMention(k)
				break
			}
		}
	}
}

// mentioned reports whether a mention-normalized name occurs in haystack as
// a whole-word match or through a distinctive token.
func mentioned(needle, haystack string) bool {
	return wholeWordMatch(needle, haystack) || tokenMatch(needle, haystack)
}

// minTokenLen filters initials and particles out of token matching, so the
// "s" in "harry s truman" never matches on its own.
const minTokenLen = 3

// tokenMatch reports whether any distinctive token of a multi-word needle
// occurs as a whole word in haystack. Single-word needles never fall back
// here: their whole-word form is the name itself. Mirrors the resolver,
// which treats whole-token containment as a full match.
func tokenMatch(needle, haystack string) bool {
	tokens := strings.Fields(needle)
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		if len(tok) < minTokenLen {
			continue
		}
		if wholeWordMatch(tok, haystack) {
			return true
		}
	}
	return false
}

// wholeWordMatch reports whether needle occurs in haystack anchored on word
// boundaries. Both strings must already be mention-normalized.
func wholeWordMatch(needle, haystack string) bool {
	if needle == "" {
		return false
	}
	pattern := `\b` + regexp.QuoteMeta(needle) + `\b`
	matched, err := regexp.MatchString(pattern, haystack)
	return err == nil && matched
}
