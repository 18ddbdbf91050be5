// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lore-engine/internal/events"
)

func TestFeedAppendGet(t *testing.T) {
	f := New()
	assert.Equal(t, 0, f.Len())

	assert.Equal(t, 0, f.Append("Kael entered the tavern."))
	assert.Equal(t, 1, f.Append("Eldoria burned that night."))
	assert.Equal(t, 2, f.Len())

	chunk, ok := f.Get(1)
	require.True(t, ok)
	assert.Equal(t, 1, chunk.Index)
	assert.Equal(t, "Eldoria burned that night.", chunk.Text)

	_, ok = f.Get(2)
	assert.False(t, ok)
	_, ok = f.Get(-1)
	assert.False(t, ok)
}

func TestFeedWindow(t *testing.T) {
	f := New()
	for _, text := range []string{"zero", "one", "two", "three", "four", "five"} {
		f.Append(text)
	}

	window := f.Window(5, 4)
	require.Len(t, window, 5)
	assert.Equal(t, "one", window[0].Text)
	assert.Equal(t, "five", window[4].Text)

	// Fewer prior chunks than requested clamps to the start.
	window = f.Window(1, 4)
	require.Len(t, window, 2)
	assert.Equal(t, "zero", window[0].Text)

	assert.Nil(t, f.Window(6, 4))
	assert.Nil(t, f.Window(-1, 4))
}

func TestFeedRecent(t *testing.T) {
	f := New()
	f.Append("a")
	f.Append("b")
	f.Append("c")

	recent := f.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Text)
	assert.Equal(t, "c", recent[1].Text)

	assert.Len(t, f.Recent(10), 3)
	assert.Nil(t, f.Recent(0))
}

func TestTailerIngestsCompleteLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.txt")
	require.NoError(t, os.WriteFile(path, []byte("first chunk\nsecond chunk\npartial"), 0o644))

	f := New()
	tailer := NewTailer(f, path, events.NewLogger(false))
	tailer.drain()

	require.Equal(t, 2, f.Len())
	chunk, _ := f.Get(0)
	assert.Equal(t, "first chunk", chunk.Text)

	// Completing the held-back line makes it a chunk.
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString(" line done\n\nthird chunk\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	tailer.drain()
	require.Equal(t, 4, f.Len())
	chunk, _ = f.Get(2)
	assert.Equal(t, "partial line done", chunk.Text)
	chunk, _ = f.Get(3)
	assert.Equal(t, "third chunk", chunk.Text)
}

func TestTailerRunPicksUpAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.txt")
	require.NoError(t, os.WriteFile(path, []byte("opening scene\n"), 0o644))

	f := New()
	tailer := NewTailer(f, path, events.NewLogger(false))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tailer.Run(ctx) }()

	require.Eventually(t, func() bool { return f.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString("a stranger arrives\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.Eventually(t, func() bool { return f.Len() == 2 }, 2*time.Second, 10*time.Millisecond)
	chunk, _ := f.Get(1)
	assert.Equal(t, "a stranger arrives", chunk.Text)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
