// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pdiddy/lore-engine/internal/events"
	"github.com/pdiddy/lore-engine/internal/secrets"
	"github.com/pdiddy/lore-engine/pkg/types"
)

// flagOrViper returns the flag value when the flag was set, otherwise the
// viper value, otherwise fallback.
func flagOrViper(cmd *cobra.Command, flag, viperKey, fallback string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	return fallback
}

// loadConfig assembles the full engine configuration from defaults, the
// config file, environment, flags, and the secrets directory.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	cfg := types.DefaultConfig()

	cfg.Engine.Title = flagOrViper(cmd, "title", "engine.title", cfg.Engine.Title)
	cfg.Engine.ContextFile = flagOrViper(cmd, "context-file", "engine.context_file", cfg.Engine.ContextFile)
	if cmd.Flags().Changed("poll-interval") {
		cfg.Engine.PollInterval, _ = cmd.Flags().GetDuration("poll-interval")
	} else if v := viper.GetDuration("engine.poll_interval"); v > 0 {
		cfg.Engine.PollInterval = v
	}
	if cmd.Flags().Changed("window") {
		cfg.Engine.WindowSize, _ = cmd.Flags().GetInt("window")
	} else if v := viper.GetInt("engine.window_size"); v > 0 {
		cfg.Engine.WindowSize = v
	}
	if v := viper.GetFloat64("engine.fuzzy_threshold"); v > 0 {
		cfg.Engine.FuzzyThreshold = v
	}

	cfg.Extraction.Backend = types.ExtractionBackend(flagOrViper(cmd, "backend", "extraction.backend", string(cfg.Extraction.Backend)))
	cfg.Extraction.Model = flagOrViper(cmd, "model", "extraction.model", cfg.Extraction.Model)
	if host := loadedSecrets.OllamaHost(); host != "" {
		cfg.Extraction.Host = host
	}
	cfg.Extraction.Host = flagOrViper(cmd, "host", "extraction.host", cfg.Extraction.Host)
	cfg.Extraction.APIKey = secretDefault(secrets.KeyAnthropicAPIKey, viper.GetString("extraction.api_key"))
	if v := viper.GetInt("extraction.max_retries"); v > 0 {
		cfg.Extraction.MaxRetries = v
	}
	if v := viper.GetDuration("extraction.timeout"); v > 0 {
		cfg.Extraction.Timeout = v
	}

	cfg.Feed.TranscriptPath = flagOrViper(cmd, "transcript", "feed.transcript_path", cfg.Feed.TranscriptPath)

	cfg.Events.LogFile = flagOrViper(cmd, "event-log", "events.log_file", cfg.Events.LogFile)
	cfg.Events.DBPath = flagOrViper(cmd, "event-db", "events.db_path", cfg.Events.DBPath)
	cfg.Events.Debug, _ = cmd.Flags().GetBool("debug")
	if !cfg.Events.Debug {
		cfg.Events.Debug = viper.GetBool("events.debug")
	}

	if cfg.Extraction.Backend != types.BackendOllama && cfg.Extraction.Backend != types.BackendClaude {
		return cfg, fmt.Errorf("unknown backend %q (want ollama or claude)", cfg.Extraction.Backend)
	}
	return cfg, nil
}

// buildLogger constructs the event logger from config: stderr always, a
// size-rotated log file and a SQLite event store when configured. The
// returned closer flushes the SQLite sink.
func buildLogger(cfg types.EventsConfig) (*events.Logger, func() error, error) {
	sinks := []events.Sink{events.NewWriterSink(os.Stderr)}
	closer := func() error { return nil }

	if cfg.LogFile != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		var w io.Writer = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxSize,
			MaxBackups: cfg.MaxBackups,
		}
		sinks = append(sinks, events.NewWriterSink(w))
	}

	if cfg.DBPath != "" {
		store, err := events.NewSQLiteSink(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, store)
		closer = store.Close
	}

	return events.NewLogger(cfg.Debug, sinks...), closer, nil
}

// loadExternalContext reads the free-text background file named by cfg, if
// any.
func loadExternalContext(cfg types.EngineConfig) (string, error) {
	if cfg.ContextFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(cfg.ContextFile)
	if err != nil {
		return "", fmt.Errorf("reading context file: %w", err)
	}
	return string(data), nil
}

// addEngineFlags registers the flags shared by run, process, and chat.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("transcript", "", "transcript file to follow (one chunk per line)")
	cmd.Flags().String("title", "", "title of the content being analyzed")
	cmd.Flags().String("context-file", "", "file with free-text background about the content")
	cmd.Flags().String("backend", "", "extraction backend: ollama or claude")
	cmd.Flags().String("model", "", "model identifier")
	cmd.Flags().String("host", "", "Ollama server base URL")
	cmd.Flags().Duration("poll-interval", 2*time.Second, "idle poll interval for new chunks")
	cmd.Flags().Int("window", 4, "number of prior chunks included as context")
	cmd.Flags().String("event-log", "", "rotated event log file path")
	cmd.Flags().String("event-db", "", "SQLite event store path")
}
