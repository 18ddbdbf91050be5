// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/lore-engine/pkg/types"
)

const claudeDefaultModel = "claude-3-5-haiku-20241022"

// ErrAPIKeyRequired is returned when the claude backend is selected without
// an API key.
var ErrAPIKeyRequired = errors.New("API key required")

// claudeBackoffBase controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var claudeBackoffBase = time.Second

// ClaudeBackend calls the Anthropic Messages API.
type ClaudeBackend struct {
	client     anthropic.Client
	model      anthropic.Model
	maxRetries int
}

// NewClaudeBackend creates a backend for cfg. The API key comes from
// configuration (the secrets loader fills it in from the key file or
// environment before this point).
func NewClaudeBackend(cfg types.ExtractionConfig) (*ClaudeBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set the api key in the secrets file or LORE_ENGINE_EXTRACTION_API_KEY", ErrAPIKeyRequired)
	}

	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = claudeDefaultModel
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &ClaudeBackend{
		client:     anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:      model,
		maxRetries: maxRetries,
	}, nil
}

// Name identifies the backend in logs.
func (c *ClaudeBackend) Name() string {
	return fmt.Sprintf("claude (%s)", c.model)
}

// Available probes the API with a minimal request so a bad key fails at
// startup instead of on the first chunk.
func (c *ClaudeBackend) Available(ctx context.Context) error {
	_, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("probing Anthropic API: %w", err)
	}
	return nil
}

// Complete sends one exchange, retrying transient failures with
// exponential backoff.
func (c *ClaudeBackend) Complete(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * claudeBackoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			for _, block := range message.Content {
				if block.Type == "text" {
					return block.Text, nil
				}
			}
			return "", fmt.Errorf("no text content in Anthropic response")
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryable(err) {
			return "", fmt.Errorf("calling Anthropic API: %w", err)
		}
	}
	return "", fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// isRetryable reports whether the error is a rate limit, server error, or
// network timeout.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
