// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pdiddy/lore-engine/internal/events"
	"github.com/pdiddy/lore-engine/internal/feed"
)

const defaultPollInterval = 2 * time.Second

// Consumer drives the pipeline over the chunk feed, one chunk at a time in
// index order. It polls for new chunks on a fixed interval when idle and
// checks for cancellation at every idle wait and after every chunk, so a
// shutdown can be delayed by at most one in-flight extraction call.
type Consumer struct {
	pipeline *Pipeline
	feed     *feed.Feed
	log      *events.Logger
	interval time.Duration

	// lastProcessed is atomic so LastProcessed can be read while Run is
	// still looping on its own goroutine.
	lastProcessed atomic.Int64
}

// NewConsumer creates a consumer over the pipeline and feed. An interval of
// zero or less selects the default of two seconds.
func NewConsumer(p *Pipeline, f *feed.Feed, log *events.Logger, interval time.Duration) *Consumer {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	c := &Consumer{
		pipeline: p,
		feed:     f,
		log:      log,
		interval: interval,
	}
	c.lastProcessed.Store(-1)
	return c
}

// LastProcessed returns the index of the most recently published chunk, or
// -1 before any chunk has been processed. Safe to call while Run is looping.
func (c *Consumer) LastProcessed() int {
	return int(c.lastProcessed.Load())
}

// Run verifies the backend is reachable, then loops until ctx is
// cancelled. Backend failures after startup degrade to per-chunk empty
// results inside the pipeline; nothing aborts the loop once entered.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.pipeline.backend.Available(ctx); err != nil {
		return fmt.Errorf("extraction backend %s unavailable: %w", c.pipeline.backend.Name(), err)
	}
	c.log.Statusf("consumer started with backend %s", c.pipeline.backend.Name())

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		processed := c.drainReady(ctx)
		if ctx.Err() != nil {
			c.log.Statusf("consumer stopping after chunk %d", c.LastProcessed())
			return ctx.Err()
		}
		if processed {
			continue
		}

		select {
		case <-ctx.Done():
			c.log.Statusf("consumer stopping after chunk %d", c.LastProcessed())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drainReady processes the next unprocessed chunk if one exists. It
// returns whether a chunk was processed, so the caller can re-check the
// feed immediately instead of sleeping behind a backlog.
func (c *Consumer) drainReady(ctx context.Context) bool {
	next := c.LastProcessed() + 1
	chunk, ok := c.feed.Get(next)
	if !ok {
		return false
	}

	c.log.Statusf("processing chunk %d", next)
	c.pipeline.Process(ctx, chunk)

	// The marker advances unconditionally once the pipeline returns, even
	// when the chunk yielded nothing; later chunks are never blocked.
	c.lastProcessed.Store(int64(next))
	return true
}
