package types

import "time"

// ExtractionBackend identifies the LLM backend used for entity extraction.
type ExtractionBackend string

const (
	BackendOllama ExtractionBackend = "ollama"
	BackendClaude ExtractionBackend = "claude"
)

// ExtractionConfig holds settings for the extraction backend.
type ExtractionConfig struct {
	// Backend selects the extraction backend: ollama or claude.
	Backend ExtractionBackend `json:"backend" yaml:"backend"`

	// Model is the model identifier (e.g. "llama3.2:latest" or a Claude model).
	Model string `json:"model" yaml:"model"`

	// Host is the Ollama server base URL (default "http://localhost:11434").
	// Ignored by the claude backend.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// APIKey is the authentication key for hosted backends.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed backend calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout is the per-request timeout (default 120s; extraction calls are
	// slow and not cancellable mid-flight).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// EngineConfig holds settings for the reconciliation engine.
type EngineConfig struct {
	// Title is the content title passed to the extraction prompt.
	Title string `json:"title" yaml:"title"`

	// ContextFile is an optional path to a free-text file with external
	// context about the content (setting, era, known figures).
	ContextFile string `json:"context_file,omitempty" yaml:"context_file,omitempty"`

	// PollInterval is how long the consumer loop sleeps when no unprocessed
	// chunk is available (default 2s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// WindowSize is the number of preceding chunks included in the transcript
	// window alongside the current chunk (default 4).
	WindowSize int `json:"window_size" yaml:"window_size"`

	// FuzzyThreshold is the minimum similarity ratio for a fuzzy alias match
	// (default 0.88).
	FuzzyThreshold float64 `json:"fuzzy_threshold" yaml:"fuzzy_threshold"`
}

// FeedConfig holds settings for the transcript feed.
type FeedConfig struct {
	// TranscriptPath is the file the feed tails for new chunks, one chunk
	// per line.
	TranscriptPath string `json:"transcript_path" yaml:"transcript_path"`
}

// EventsConfig holds settings for engine event logging.
type EventsConfig struct {
	// LogFile is an optional path for the rotating event log. Empty disables
	// file logging; events still go to stderr.
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	// MaxSizeMB is the rotation threshold for the event log (default 10).
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept (default 3).
	MaxBackups int `json:"max_backups" yaml:"max_backups"`

	// DBPath is an optional SQLite database path for the session event log.
	// Empty disables the database sink.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`

	// Debug enables debug-type event records.
	Debug bool `json:"debug" yaml:"debug"`
}

// Config groups all component configurations.
type Config struct {
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Feed       FeedConfig       `json:"feed" yaml:"feed"`
	Events     EventsConfig     `json:"events" yaml:"events"`
}

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			Title:          "Unknown Content",
			PollInterval:   2 * time.Second,
			WindowSize:     4,
			FuzzyThreshold: 0.88,
		},
		Extraction: ExtractionConfig{
			Backend:    BackendOllama,
			Model:      "llama3.2:latest",
			Host:       "http://localhost:11434",
			MaxRetries: 3,
			Timeout:    120 * time.Second,
		},
		Events: EventsConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
