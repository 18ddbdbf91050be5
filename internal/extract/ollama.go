// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/lore-engine/internal/httputil"
	"github.com/pdiddy/lore-engine/pkg/types"
)

// OllamaBackend talks to a local Ollama server over its chat API.
type OllamaBackend struct {
	Host       string
	Model      string
	MaxRetries int
	Client     *http.Client
}

// NewOllamaBackend creates a backend for cfg. Host and Model fall back to
// the defaults when unset.
func NewOllamaBackend(cfg types.ExtractionConfig) *OllamaBackend {
	host := strings.TrimSuffix(cfg.Host, "/")
	if host == "" {
		host = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2:latest"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaBackend{
		Host:       host,
		Model:      model,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: timeout},
	}
}

// Name identifies the backend in logs.
func (o *OllamaBackend) Name() string {
	return fmt.Sprintf("ollama (%s)", o.Model)
}

// Available checks that the server answers its tags endpoint.
func (o *OllamaBackend) Available(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.Host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return fmt.Errorf("reaching Ollama at %s: %w", o.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama at %s returned %d", o.Host, resp.StatusCode)
	}
	return nil
}

// ollamaChatRequest is the request body for POST /api/chat.
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

// ollamaChatResponse is the non-streaming response body.
type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// Complete sends one chat exchange. Temperature stays low so repeated runs
// over the same transcript drift less.
func (o *OllamaBackend) Complete(ctx context.Context, req Request) (string, error) {
	body := ollamaChatRequest{
		Model: o.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream:  false,
		Options: ollamaOptions{Temperature: 0.2},
	}
	if req.ForceJSON {
		body.Format = "json"
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.Host+"/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(bodyBytes)), nil
	}

	resp, err := httputil.DoWithRetry(ctx, o.Client, httpReq, o.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Ollama returned %d: %s", resp.StatusCode, string(errBody))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding Ollama response: %w", err)
	}
	if chatResp.Message.Content == "" {
		return "", fmt.Errorf("Ollama returned empty message content")
	}
	return chatResp.Message.Content, nil
}
