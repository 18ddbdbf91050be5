package classify

import (
	"testing"

	"github.com/pdiddy/lore-engine/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want types.Category
		ok   bool
	}{
		{"Characters", types.CategoryCharacters, true},
		{"character", types.CategoryCharacters, true},
		{"  Person ", types.CategoryCharacters, true},
		{"Locations", types.CategoryLocations, true},
		{"country", types.CategoryLocations, true},
		{"city", types.CategoryLocations, true},
		{"place", types.CategoryLocations, true},
		{"agency", types.CategoryOrganizations, true},
		{"Factions", types.CategoryOrganizations, true},
		{"corporation", types.CategoryOrganizations, true},
		{"Key Objects", types.CategoryKeyObjects, true},
		{"artifact", types.CategoryKeyObjects, true},
		{"weapon", types.CategoryKeyObjects, true},
		{"Concepts/Events", types.CategoryConcepts, true},
		{"concept/event", types.CategoryConcepts, true},
		{"era", types.CategoryConcepts, true},
		{"campaign", types.CategoryConcepts, true},
		{"1945", types.CategoryConcepts, true},

		// Compound labels: everything before the first comma is the hint.
		{"Characters, Organizations", types.CategoryCharacters, true},
		{"event, historical", types.CategoryConcepts, true},

		// Ambiguous slash compounds default to Locations.
		{"locations/organizations", types.CategoryLocations, true},
		{"Locations/Concepts/Events", types.CategoryLocations, true},

		// Unrecognized outcomes.
		{"", "", false},
		{"vibe", "", false},
		{"123", "", false},
		{"20456", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Classify(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Classify(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}
