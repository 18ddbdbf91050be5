// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decode turns raw extraction-backend text into candidate entities.
// Model output is noisy: sometimes clean JSON, sometimes JSON wrapped in
// markdown fences or prose, sometimes a bare array instead of the documented
// object. Parse runs a fixed fallback chain and either yields candidates or
// a decode failure; it never panics on malformed input.
// Implements: prd002-extraction (R3);
//
//	docs/ARCHITECTURE § Decoding.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// ErrNoStructure is returned when none of the fallback tiers produced a
// usable document.
var ErrNoStructure = errors.New("no recognizable entity structure in response")

// fencedBlockPattern captures the contents of a ```json fenced code block.
var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// wireEntity is the tolerant wire shape for one entity. The score is kept
// as a json.Number so a fractional or quoted value degrades to an invalid
// score for that candidate instead of failing the whole document.
type wireEntity struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Score       json.Number `json:"base_importance_score"`
	Aliases     []string    `json:"aliases"`
}

// wireDocument is the documented response shape.
type wireDocument struct {
	Entities []wireEntity `json:"entities"`
}

// Parse decodes raw backend text into candidates. Tiers, in order:
//
//  1. the whole text as a JSON document
//  2. the contents of a fenced code block
//  3. the first balanced {...} span
//  4. the first balanced [...] span
//
// A tier succeeds only if its text parses as JSON and has a usable shape
// (an object with an "entities" array, or a bare array of entities).
// Exhausting all tiers returns ErrNoStructure.
func Parse(raw string) ([]types.CandidateEntity, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty response: %w", ErrNoStructure)
	}

	attempts := []string{trimmed}
	if m := fencedBlockPattern.FindStringSubmatch(raw); m != nil {
		attempts = append(attempts, m[1])
	}
	if span, ok := balancedSpan(raw, '{', '}'); ok {
		attempts = append(attempts, span)
	}
	if span, ok := balancedSpan(raw, '[', ']'); ok {
		attempts = append(attempts, span)
	}

	for _, attempt := range attempts {
		if cands, ok := decodeDocument(attempt); ok {
			return cands, nil
		}
	}
	return nil, ErrNoStructure
}

// decodeDocument parses one candidate text as either the documented object
// or a bare entity array.
func decodeDocument(text string) ([]types.CandidateEntity, bool) {
	var doc wireDocument
	if err := json.Unmarshal([]byte(text), &doc); err == nil {
		// An object that parses but carries no "entities" key is not a
		// usable document; json.Unmarshal cannot tell the difference, so
		// check the raw shape.
		if hasEntitiesKey(text) {
			return convert(doc.Entities), true
		}
	}

	var bare []wireEntity
	if err := json.Unmarshal([]byte(text), &bare); err == nil {
		return convert(bare), true
	}
	return nil, false
}

// hasEntitiesKey reports whether text is a JSON object with an "entities"
// member.
func hasEntitiesKey(text string) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return false
	}
	_, ok := probe["entities"]
	return ok
}

// convert maps wire entities to candidates. An unparsable score becomes 0,
// which the pipeline later coerces to the default with a warning.
func convert(wires []wireEntity) []types.CandidateEntity {
	cands := make([]types.CandidateEntity, 0, len(wires))
	for _, w := range wires {
		score := 0
		if n, err := w.Score.Int64(); err == nil {
			score = int(n)
		}
		cands = append(cands, types.CandidateEntity{
			Name:                w.Name,
			Type:                w.Type,
			Description:         w.Description,
			BaseImportanceScore: score,
			Aliases:             w.Aliases,
		})
	}
	return cands
}

// balancedSpan returns the first balanced open..close span in s, skipping
// delimiters inside JSON string literals.
func balancedSpan(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
