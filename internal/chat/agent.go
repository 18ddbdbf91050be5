// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat answers free-form questions about the story using the
// transcript history and the current entity snapshot. It runs beside the
// reconciliation pipeline and only ever reads engine state.
package chat

import (
	"context"
	"fmt"

	"github.com/pdiddy/lore-engine/internal/events"
	"github.com/pdiddy/lore-engine/internal/extract"
	"github.com/pdiddy/lore-engine/internal/feed"
	"github.com/pdiddy/lore-engine/internal/registry"
	"github.com/pdiddy/lore-engine/pkg/types"
)

// historyDepth is how many recent chunks are quoted to the model per
// question.
const historyDepth = 5

// Answer is the reply to one queued question.
type Answer struct {
	Query string
	Text  string
	Err   error
}

// Agent serializes questions through the extraction backend. Ask queues a
// question; answers come back on the channel passed to Run.
type Agent struct {
	backend extract.Backend
	feed    *feed.Feed
	reg     *registry.Registry
	log     *events.Logger
	title   string
	context string
	queries chan string
}

// New creates an agent over the shared engine state.
func New(backend extract.Backend, f *feed.Feed, reg *registry.Registry, log *events.Logger, title, externalContext string) *Agent {
	return &Agent{
		backend: backend,
		feed:    f,
		reg:     reg,
		log:     log,
		title:   title,
		context: externalContext,
		queries: make(chan string, 16),
	}
}

// Ask queues a question. It reports false when the queue is full rather
// than blocking the caller.
func (a *Agent) Ask(query string) bool {
	select {
	case a.queries <- query:
		return true
	default:
		return false
	}
}

// Run answers queued questions until ctx is cancelled, sending each Answer
// on out. A failed backend call produces an Answer with Err set; the loop
// keeps going.
func (a *Agent) Run(ctx context.Context, out chan<- Answer) error {
	for {
		select {
		case <-ctx.Done():
			a.log.Statusf("chat agent stopping")
			return ctx.Err()
		case query := <-a.queries:
			answer := a.answer(ctx, query)
			select {
			case out <- answer:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// answer resolves one question against the current story state.
func (a *Agent) answer(ctx context.Context, query string) Answer {
	req, err := extract.BuildChatRequest(extract.ChatInput{
		Title:           a.title,
		ExternalContext: a.context,
		Query:           query,
		Transcripts:     a.feed.Recent(historyDepth),
		Known:           derefAll(a.reg.Snapshot()),
	})
	if err != nil {
		return Answer{Query: query, Err: fmt.Errorf("building chat prompt: %w", err)}
	}
	a.log.Emit(events.TypePrompt, "chat prompt sent", map[string]string{"query": query})

	text, err := a.backend.Complete(ctx, req)
	if err != nil {
		a.log.Errorf("chat query failed: %v", err)
		return Answer{Query: query, Err: err}
	}
	a.log.Emit(events.TypeRawResponse, "chat response received", text)
	return Answer{Query: query, Text: text}
}

func derefAll(recs []*types.EntityRecord) []types.EntityRecord {
	out := make([]types.EntityRecord, len(recs))
	for i, r := range recs {
		out[i] = *r
	}
	return out
}
