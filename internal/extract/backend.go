// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract talks to a generative model to pull candidate narrative
// entities out of transcript text. The model is reached through a Backend
// so the engine and tests can swap implementations.
// Implements: prd002-extraction (R1-R4);
//
//	docs/ARCHITECTURE § Extraction.
package extract

import (
	"context"
	"fmt"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// Request is one completion exchange with a model.
type Request struct {
	System string
	User   string

	// ForceJSON asks the backend to constrain output to JSON where the
	// underlying API supports it. Output is still treated as untrusted.
	ForceJSON bool
}

// Backend abstracts the generative model API. Per Strategy pattern: the
// engine depends only on this interface and the concrete backend is chosen
// from configuration at startup.
type Backend interface {
	// Name identifies the backend in logs and status output.
	Name() string

	// Available verifies the backend can be reached with the current
	// configuration. Called once before the consumer loop starts.
	Available(ctx context.Context) error

	// Complete sends one request and returns the raw model text.
	Complete(ctx context.Context, req Request) (string, error)
}

// New constructs the backend named by cfg.Backend.
func New(cfg types.ExtractionConfig) (Backend, error) {
	switch cfg.Backend {
	case types.BackendOllama:
		return NewOllamaBackend(cfg), nil
	case types.BackendClaude:
		return NewClaudeBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown extraction backend %q", cfg.Backend)
	}
}
