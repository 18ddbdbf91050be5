// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify maps free-text entity type labels onto the fixed category
// set. The extraction backend is prompted to use the canonical names but
// routinely returns synonyms, plurals, and compound labels; this table-driven
// mapping absorbs the observed variations.
// Implements: prd001-resolution (R1);
//
//	docs/ARCHITECTURE § Classification.
package classify

import (
	"strings"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// synonyms maps lowercased type labels to their category.
var synonyms = map[string]types.Category{
	"characters":             types.CategoryCharacters,
	"character":              types.CategoryCharacters,
	"characters/individuals": types.CategoryCharacters,
	"individual":             types.CategoryCharacters,
	"individuals":            types.CategoryCharacters,
	"person":                 types.CategoryCharacters,
	"people":                 types.CategoryCharacters,

	"locations": types.CategoryLocations,
	"location":  types.CategoryLocations,
	"countries": types.CategoryLocations,
	"country":   types.CategoryLocations,
	"cities":    types.CategoryLocations,
	"city":      types.CategoryLocations,
	"places":    types.CategoryLocations,
	"place":     types.CategoryLocations,

	"organizations": types.CategoryOrganizations,
	"organization":  types.CategoryOrganizations,
	"agencies":      types.CategoryOrganizations,
	"agency":        types.CategoryOrganizations,
	"governments":   types.CategoryOrganizations,
	"government":    types.CategoryOrganizations,
	"corporations":  types.CategoryOrganizations,
	"corporation":   types.CategoryOrganizations,
	"groups":        types.CategoryOrganizations,
	"group":         types.CategoryOrganizations,
	"factions":      types.CategoryOrganizations,
	"faction":       types.CategoryOrganizations,
	"allies":        types.CategoryOrganizations,
	"powers":        types.CategoryOrganizations,

	"key objects": types.CategoryKeyObjects,
	"key object":  types.CategoryKeyObjects,
	"objects":     types.CategoryKeyObjects,
	"object":      types.CategoryKeyObjects,
	"artifacts":   types.CategoryKeyObjects,
	"artifact":    types.CategoryKeyObjects,
	"weapons":     types.CategoryKeyObjects,
	"weapon":      types.CategoryKeyObjects,

	"concepts/events":   types.CategoryConcepts,
	"concept/event":     types.CategoryConcepts,
	"concepts":          types.CategoryConcepts,
	"concept":           types.CategoryConcepts,
	"events":            types.CategoryConcepts,
	"event":             types.CategoryConcepts,
	"historical events": types.CategoryConcepts,
	"dates":             types.CategoryConcepts,
	"years":             types.CategoryConcepts,
	"periods":           types.CategoryConcepts,
	"period":            types.CategoryConcepts,
	"projects":          types.CategoryConcepts,
	"programs":          types.CategoryConcepts,
	"wars":              types.CategoryConcepts,
	"war":               types.CategoryConcepts,
	"conflicts":         types.CategoryConcepts,
	"eras":              types.CategoryConcepts,
	"era":               types.CategoryConcepts,
	"ages":              types.CategoryConcepts,
	"age":               types.CategoryConcepts,
	"campaigns":         types.CategoryConcepts,
	"campaign":          types.CategoryConcepts,
}

// ambiguousCompounds resolves slash-joined compound labels the backend emits
// to a fixed default branch. Location-ish compounds default to Locations.
var ambiguousCompounds = map[string]types.Category{
	"locations/organizations":   types.CategoryLocations,
	"locations/concepts/events": types.CategoryLocations,
}

// Classify maps a raw type label to a Category. The second return value is
// false when the label is unrecognized; an unrecognized type is a
// classification outcome the caller must check, not an error.
func Classify(raw string) (types.Category, bool) {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		return "", false
	}

	// Compound labels like "Characters, Organizations" carry the primary
	// hint before the first comma.
	if i := strings.Index(label, ","); i >= 0 {
		label = strings.TrimSpace(label[:i])
	}

	if cat, ok := ambiguousCompounds[label]; ok {
		return cat, true
	}
	if cat, ok := synonyms[label]; ok {
		return cat, true
	}

	// A bare year ("1945") names an event.
	if isYear(label) {
		return types.CategoryConcepts, true
	}

	return "", false
}

// isYear reports whether the label is a plausible four-digit year.
func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
