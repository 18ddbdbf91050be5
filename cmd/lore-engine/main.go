// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lore-engine CLI.
// Implements: prd001-resolution, prd002-extraction, prd003-observability
// (CLI surface). See docs/ARCHITECTURE § Engine Interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lore-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets *secrets.Store

// secretDefault returns fallback if non-empty, otherwise the secret value
// for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets.Get(key)
}

// rootCmd is the base command for the lore-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "lore-engine",
	Short: "Incremental entity resolution for narrative transcripts",
	Long: `lore-engine builds a live "cheat sheet" of narrative entities (characters,
locations, organizations, key objects, concepts/events) from a stream of
transcript chunks. An LLM proposes candidate entities per chunk; the engine
normalizes, deduplicates, mention-verifies, and merges them into a single
growing registry.

Use "run" to follow a transcript file live, "process" for a one-shot pass
over a finished transcript, and "chat" to ask questions about the story.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		st, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = st
		if st.Len() > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", st.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lore-engine.yaml or ~/.config/lore-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "emit debug event records")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lore-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lore-engine"))
		}
	}

	viper.SetEnvPrefix("LORE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
