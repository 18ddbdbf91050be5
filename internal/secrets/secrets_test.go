// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyAnthropicAPIKey, "  sk-ant-abc123  \n")
				writeFile(t, dir, KeyOllamaHost, "http://gpu-box:11434\n")
				return dir
			},
			want: map[string]string{
				KeyAnthropicAPIKey: "sk-ant-abc123",
				KeyOllamaHost:      "http://gpu-box:11434",
			},
		},
		{
			name: "returns empty store for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyAnthropicAPIKey, "valid-key")
				writeFile(t, dir, KeyOllamaHost, "   \n\t  ")
				return dir
			},
			want: map[string]string{
				KeyAnthropicAPIKey: "valid-key",
			},
		},
		{
			name: "ignores unknown key names",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openai-api-key", "sk-other")
				writeFile(t, dir, "notes.txt", "remember to rotate keys")
				writeFile(t, dir, KeyAnthropicAPIKey, "sk-real")
				return dir
			},
			want: map[string]string{
				KeyAnthropicAPIKey: "sk-real",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, KeyAnthropicAPIKey, "sk-real")
				return dir
			},
			want: map[string]string{
				KeyAnthropicAPIKey: "sk-real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyAnthropicAPIKey, "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				KeyAnthropicAPIKey: "ak_123",
			},
		},
		{
			name: "returns empty store for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			st, err := Load(dir)
			require.NoError(t, err)
			require.Equal(t, len(tt.want), st.Len())
			for k, v := range tt.want {
				assert.Equal(t, v, st.Get(k))
			}
		})
	}
}

func TestStoreAccessors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, KeyAnthropicAPIKey, "sk-ant-abc123")
	writeFile(t, dir, KeyOllamaHost, "http://gpu-box:11434")

	st, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-abc123", st.AnthropicAPIKey())
	assert.Equal(t, "http://gpu-box:11434", st.OllamaHost())
	assert.Equal(t, []string{KeyAnthropicAPIKey, KeyOllamaHost}, st.Keys())
	assert.Equal(t, "", st.Get("no-such-key"))
}

func TestNilStoreIsEmpty(t *testing.T) {
	var st *Store
	assert.Equal(t, "", st.AnthropicAPIKey())
	assert.Equal(t, "", st.OllamaHost())
	assert.Equal(t, 0, st.Len())
	assert.Nil(t, st.Keys())
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, KeyOllamaHost, "http://localhost:11434")

	// Create a known key file then remove read permission.
	badPath := filepath.Join(dir, KeyAnthropicAPIKey)
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	st, err := Load(dir)
	require.NoError(t, err)
	// The readable file is still loaded; the bad one is skipped with a warning.
	assert.Equal(t, "http://localhost:11434", st.OllamaHost())
	assert.Equal(t, "", st.AnthropicAPIKey())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
