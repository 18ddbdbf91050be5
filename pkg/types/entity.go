// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the lore-engine pipeline.
package types

// Category is one of the fixed entity categories tracked on the cheat sheet.
// Per prd001-resolution R1.1 the set is closed; free-text type labels from the
// extraction backend are mapped onto it by internal/classify.
type Category string

const (
	CategoryCharacters    Category = "Characters"
	CategoryLocations     Category = "Locations"
	CategoryOrganizations Category = "Organizations"
	CategoryKeyObjects    Category = "Key Objects"
	CategoryConcepts      Category = "Concepts/Events"
)

// Categories lists all valid categories in display order.
var Categories = []Category{
	CategoryCharacters,
	CategoryLocations,
	CategoryOrganizations,
	CategoryKeyObjects,
	CategoryConcepts,
}

// TranscriptChunk is one unit of transcribed text. Chunks arrive in strictly
// increasing index order and are immutable once created.
type TranscriptChunk struct {
	Index int    `json:"index" yaml:"index"`
	Text  string `json:"text" yaml:"text"`
}

// CandidateEntity is an unverified entity proposal decoded from one
// extraction response. Candidates are transient: they exist only between
// decoding and reconciliation and are never stored directly.
//
// The JSON tags match the wire contract the extraction backend is prompted
// to produce (prd002-extraction R2.1). Aliases is optional and defaults to
// empty.
type CandidateEntity struct {
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	Description         string   `json:"description"`
	BaseImportanceScore int      `json:"base_importance_score"`
	Aliases             []string `json:"aliases,omitempty"`
}

// EntityRecord is a canonical entity on the cheat sheet. Records are owned
// exclusively by the registry and mutated only through the reconciliation
// pipeline.
//
// Invariants (prd001-resolution R3):
//   - unique per (normalized canonical name, category) within a registry
//   - FirstMentionedIndex is set at creation and never changes
//   - MentionCount is monotonically non-decreasing
//   - BaseImportanceScore stays within 1..10
type EntityRecord struct {
	CanonicalName       string   `json:"canonical_name" yaml:"canonical_name"`
	Category            Category `json:"category" yaml:"category"`
	Description         string   `json:"description" yaml:"description"`
	BaseImportanceScore int      `json:"base_importance_score" yaml:"base_importance_score"`
	MentionCount        int      `json:"mention_count" yaml:"mention_count"`
	FirstMentionedIndex int      `json:"first_mentioned_index" yaml:"first_mentioned_index"`
	Aliases             []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Clone returns an independent copy of the record. Snapshot readers receive
// clones so they never observe a record mid-mutation.
func (r *EntityRecord) Clone() *EntityRecord {
	c := *r
	if r.Aliases != nil {
		c.Aliases = append([]string(nil), r.Aliases...)
	}
	return &c
}
