// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads engine credentials from a directory of plain-text
// files. Each file holds one secret: the filename is the key name and the
// trimmed contents are the value. Only the engine's known key names are
// accepted; anything else in the directory is reported and ignored.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Key names the engine reads from the secrets directory.
const (
	KeyAnthropicAPIKey = "anthropic-api-key"
	KeyOllamaHost      = "ollama-host"
)

var knownKeys = map[string]bool{
	KeyAnthropicAPIKey: true,
	KeyOllamaHost:      true,
}

// Store holds the secrets loaded at startup. A nil Store is usable and
// empty.
type Store struct {
	values map[string]string
}

// Load reads the known key files in dir. A missing directory is not an
// error; Load returns an empty store. Unreadable files and unknown key
// names produce a warning on stderr but do not abort.
func Load(dir string) (*Store, error) {
	st := &Store{values: make(map[string]string)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !knownKeys[name] {
			fmt.Fprintf(os.Stderr, "warning: ignoring unknown secret %s\n", name)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			st.values[name] = value
		}
	}
	return st, nil
}

// Get returns the value for a key name, or "" when it was not loaded.
func (s *Store) Get(key string) string {
	if s == nil {
		return ""
	}
	return s.values[key]
}

// AnthropicAPIKey returns the Claude API key, or "".
func (s *Store) AnthropicAPIKey() string { return s.Get(KeyAnthropicAPIKey) }

// OllamaHost returns the Ollama base URL, or "".
func (s *Store) OllamaHost() string { return s.Get(KeyOllamaHost) }

// Keys returns the sorted names of the loaded secrets.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of loaded secrets.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}
