// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lore-engine/internal/events"
	"github.com/pdiddy/lore-engine/internal/extract"
	"github.com/pdiddy/lore-engine/internal/feed"
	"github.com/pdiddy/lore-engine/internal/registry"
	"github.com/pdiddy/lore-engine/pkg/types"
)

type echoBackend struct {
	mu       sync.Mutex
	lastUser string
	err      error
}

func (e *echoBackend) Name() string { return "echo" }

func (e *echoBackend) Available(context.Context) error { return nil }

func (e *echoBackend) Complete(_ context.Context, req extract.Request) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	e.lastUser = req.User
	return "Kael is an exiled knight.", nil
}

func newAgent(backend extract.Backend) (*Agent, *feed.Feed, *registry.Registry) {
	f := feed.New()
	reg := registry.New()
	agent := New(backend, f, reg, events.NewLogger(false), "The Fall of Eldoria", "A fantasy drama.")
	return agent, f, reg
}

func TestAgentAnswersWithStoryState(t *testing.T) {
	backend := &echoBackend{}
	agent, f, reg := newAgent(backend)

	f.Append("Kael rode north.")
	reg.Put(registry.Key{Name: "kael", Category: types.CategoryCharacters},
		&types.EntityRecord{CanonicalName: "Kael", Category: types.CategoryCharacters, Description: "Exiled knight"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan Answer, 1)
	go agent.Run(ctx, out)

	require.True(t, agent.Ask("Who is Kael?"))

	select {
	case answer := <-out:
		require.NoError(t, answer.Err)
		assert.Equal(t, "Who is Kael?", answer.Query)
		assert.Equal(t, "Kael is an exiled knight.", answer.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("no answer received")
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Contains(t, backend.lastUser, "Kael rode north.")
	assert.Contains(t, backend.lastUser, `"name": "Kael"`)
	assert.True(t, strings.HasSuffix(backend.lastUser, "User question: Who is Kael?"))
}

func TestAgentSurvivesBackendError(t *testing.T) {
	backend := &echoBackend{err: errors.New("model offline")}
	agent, _, _ := newAgent(backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan Answer, 2)
	go agent.Run(ctx, out)

	require.True(t, agent.Ask("first"))

	select {
	case answer := <-out:
		require.Error(t, answer.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no answer received")
	}

	// The loop is still alive after the failure.
	backend.mu.Lock()
	backend.err = nil
	backend.mu.Unlock()
	require.True(t, agent.Ask("second"))

	select {
	case answer := <-out:
		require.NoError(t, answer.Err)
		assert.Equal(t, "second", answer.Query)
	case <-time.After(2 * time.Second):
		t.Fatal("no second answer received")
	}
}

func TestAgentStopsOnCancel(t *testing.T) {
	agent, _, _ := newAgent(&echoBackend{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agent.Run(ctx, make(chan Answer)) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop")
	}
}

func TestAskQueueFull(t *testing.T) {
	agent, _, _ := newAgent(&echoBackend{})
	// Nobody is draining the queue.
	for i := 0; i < 16; i++ {
		require.True(t, agent.Ask("q"))
	}
	assert.False(t, agent.Ask("overflow"))
}
