// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve maps noisy candidate names onto canonical entity names.
// Resolution runs three tiers in order: exact alias-map hit, fuzzy
// similarity search over existing records, and fallback canonicalization of
// the raw name. It never fails; an unmatched name manufactures a new
// canonical candidate.
// Implements: prd001-resolution (R5);
//
//	docs/ARCHITECTURE § Alias Resolution.
package resolve

import (
	"strings"

	"github.com/pdiddy/lore-engine/internal/normalize"
	"github.com/pdiddy/lore-engine/internal/registry"
	"github.com/pdiddy/lore-engine/pkg/types"
)

// DefaultThreshold is the minimum similarity ratio for a fuzzy match.
const DefaultThreshold = 0.88

// Resolver resolves candidate names against a registry.
type Resolver struct {
	reg       *registry.Registry
	threshold float64
}

// New creates a resolver over reg. A threshold of zero or less selects
// DefaultThreshold.
func New(reg *registry.Registry, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{reg: reg, threshold: threshold}
}

// Resolve returns the canonical name for a candidate name. cat restricts
// the fuzzy search to same-category records; an empty cat searches all
// categories. The returned name is never empty for a non-blank input.
//
// Ties at the maximum similarity resolve to the earliest-inserted record:
// registry iteration order is insertion order, and only a strictly better
// ratio displaces the current best.
func (r *Resolver) Resolve(name string, cat types.Category) string {
	norm := normalize.ForComparison(name)

	// Tier 1: exact alias hit.
	if canonical, ok := r.reg.CanonicalFor(norm); ok {
		return canonical
	}

	// Tier 2: fuzzy search over existing records.
	if norm != "" {
		bestRatio := 0.0
		var bestKey registry.Key
		found := false

		for _, k := range r.reg.Keys() {
			if cat != "" && k.Category != cat {
				continue
			}
			ratio := Similarity(norm, k.Name)
			if ratio > bestRatio {
				bestRatio = ratio
				bestKey = k
				found = true
			}
		}

		if found && bestRatio >= r.threshold {
			if rec, ok := r.reg.Get(bestKey); ok {
				r.reg.BindAlias(norm, rec.CanonicalName)
				return rec.CanonicalName
			}
		}
	}

	// Tier 3: no match; manufacture a canonical name from the raw input,
	// preserving its casing, and bind it to itself.
	canonical := normalize.CleanName(name)
	if canonical == "" {
		canonical = strings.TrimSpace(name)
	}
	r.reg.BindAlias(normalize.ForComparison(canonical), canonical)
	if norm != "" {
		r.reg.BindAlias(norm, canonical)
	}
	return canonical
}
