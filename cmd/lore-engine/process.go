// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lore-engine/internal/engine"
	"github.com/pdiddy/lore-engine/internal/extract"
	"github.com/pdiddy/lore-engine/internal/feed"
	"github.com/pdiddy/lore-engine/internal/registry"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "One-shot pass over a finished transcript",
	Long: `Process reads the whole transcript file, reconciles every chunk in
order, prints the resulting cheat sheet, and optionally exports it. Unlike
run it exits when the transcript is exhausted.`,
	RunE: runProcess,
}

func init() {
	addEngineFlags(processCmd)
	processCmd.Flags().String("out", "", "optional cheat sheet export path (.yaml or .json)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Feed.TranscriptPath == "" {
		return fmt.Errorf("a transcript file is required: pass --transcript")
	}
	outPath, _ := cmd.Flags().GetString("out")

	log, closeLog, err := buildLogger(cfg.Events)
	if err != nil {
		return err
	}
	defer closeLog()

	externalContext, err := loadExternalContext(cfg.Engine)
	if err != nil {
		return err
	}

	backend, err := extract.New(cfg.Extraction)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := backend.Available(ctx); err != nil {
		return fmt.Errorf("extraction backend %s unavailable: %w", backend.Name(), err)
	}

	f := feed.New()
	if err := loadTranscript(f, cfg.Feed.TranscriptPath); err != nil {
		return err
	}
	if f.Len() == 0 {
		return fmt.Errorf("transcript %s has no chunks", cfg.Feed.TranscriptPath)
	}

	reg := registry.New()
	pipeline := engine.NewPipeline(reg, backend, f, log, cfg.Engine, externalContext, nil)

	for i := 0; i < f.Len(); i++ {
		chunk, _ := f.Get(i)
		log.Statusf("processing chunk %d/%d", i+1, f.Len())
		pipeline.Process(ctx, chunk)
		if ctx.Err() != nil {
			break
		}
	}

	snapshot := reg.Snapshot()
	engine.FormatTable(os.Stdout, snapshot)

	if outPath != "" {
		if err := engine.ExportFile(outPath, cfg.Engine.Title, snapshot); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "cheat sheet written to %s\n", outPath)
	}
	return nil
}

// loadTranscript appends every non-blank line of path as one chunk.
func loadTranscript(f *feed.Feed, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if text := strings.TrimSpace(scanner.Text()); text != "" {
			f.Append(text)
		}
	}
	return scanner.Err()
}
