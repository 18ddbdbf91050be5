// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry owns the canonical entity set and the alias map for one
// engine session. The registry is the single mutable store in the engine:
// all writes funnel through the reconciliation pipeline on one goroutine,
// while display and chat readers take snapshots concurrently.
// Implements: prd001-resolution (R3, R4);
//
//	docs/ARCHITECTURE § Registry.
package registry

import (
	"sync"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// Key identifies a record: the normalized canonical name plus the category.
// Keys are computed by callers (the registry itself does no normalization).
type Key struct {
	Name     string
	Category types.Category
}

// Registry holds EntityRecords in insertion order together with the alias
// map. Records never leave the registry by reference: Get and Snapshot
// return clones, Put stores a clone. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []Key
	records map[Key]*types.EntityRecord
	aliases map[string]string // normalized alias → canonical name
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		records: make(map[Key]*types.EntityRecord),
		aliases: make(map[string]string),
	}
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Get returns a copy of the record at k.
func (r *Registry) Get(k Key) (*types.EntityRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[k]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Put stores a copy of rec at k, replacing any existing record. A new key
// is appended to the insertion order, which is the deterministic iteration
// order used for fuzzy-match tie-breaking.
func (r *Registry) Put(k Key, rec *types.EntityRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[k]; !ok {
		r.order = append(r.order, k)
	}
	r.records[k] = rec.Clone()
}

// Keys returns the record keys in insertion order.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Key(nil), r.order...)
}

// IncrementMention adds one to the mention count of the record at k.
// Counts only grow; there is no decrement.
func (r *Registry) IncrementMention(k Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[k]; ok {
		rec.MentionCount++
	}
}

// BindAlias maps a normalized alias to a canonical name. An alias already
// bound to a different canonical name keeps its existing binding; the
// return value reports whether the requested binding is now in effect
// (either newly created or already identical).
func (r *Registry) BindAlias(alias, canonical string) bool {
	if alias == "" || canonical == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.aliases[alias]; ok {
		return existing == canonical
	}
	r.aliases[alias] = canonical
	return true
}

// CanonicalFor returns the canonical name bound to a normalized alias.
func (r *Registry) CanonicalFor(alias string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.aliases[alias]
	return c, ok
}

// AliasCount returns the number of alias bindings, including self-bindings.
func (r *Registry) AliasCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.aliases)
}

// Snapshot returns cloned records in insertion order. The result is an
// independent copy safe to hold while the pipeline keeps mutating the
// registry.
func (r *Registry) Snapshot() []*types.EntityRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.EntityRecord, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.records[k].Clone())
	}
	return out
}
