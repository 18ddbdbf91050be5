// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed holds the ordered transcript chunk stream and an optional
// file tailer that appends chunks as new lines arrive on disk.
package feed

import (
	"sync"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// Feed is an append-only, in-memory sequence of transcript chunks. Chunk
// indices are assigned in arrival order starting at zero.
type Feed struct {
	mu     sync.RWMutex
	chunks []types.TranscriptChunk
}

// New creates an empty feed.
func New() *Feed {
	return &Feed{}
}

// Append adds a chunk and returns its assigned index.
func (f *Feed) Append(text string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := len(f.chunks)
	f.chunks = append(f.chunks, types.TranscriptChunk{Index: idx, Text: text})
	return idx
}

// Get returns the chunk at idx.
func (f *Feed) Get(idx int) (types.TranscriptChunk, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if idx < 0 || idx >= len(f.chunks) {
		return types.TranscriptChunk{}, false
	}
	return f.chunks[idx], true
}

// Len reports the number of chunks appended so far.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.chunks)
}

// Window returns the chunk at idx preceded by up to before prior chunks, in
// transcript order. An out-of-range idx yields nil.
func (f *Feed) Window(idx, before int) []types.TranscriptChunk {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if idx < 0 || idx >= len(f.chunks) {
		return nil
	}
	start := idx - before
	if start < 0 {
		start = 0
	}
	out := make([]types.TranscriptChunk, idx-start+1)
	copy(out, f.chunks[start:idx+1])
	return out
}

// Recent returns the last n chunks in transcript order.
func (f *Feed) Recent(n int) []types.TranscriptChunk {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if n <= 0 || len(f.chunks) == 0 {
		return nil
	}
	start := len(f.chunks) - n
	if start < 0 {
		start = 0
	}
	out := make([]types.TranscriptChunk, len(f.chunks)-start)
	copy(out, f.chunks[start:])
	return out
}
