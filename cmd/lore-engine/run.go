// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/lore-engine/internal/engine"
	"github.com/pdiddy/lore-engine/internal/extract"
	"github.com/pdiddy/lore-engine/internal/feed"
	"github.com/pdiddy/lore-engine/internal/registry"
	"github.com/pdiddy/lore-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Follow a transcript file and keep a live cheat sheet",
	Long: `Run tails the transcript file, reconciles each new chunk through the
extraction backend, and rewrites the cheat sheet export after every chunk.
It keeps running until interrupted; shutdown waits for any in-flight
extraction call to return.`,
	RunE: runRun,
}

func init() {
	addEngineFlags(runCmd)
	runCmd.Flags().String("out", "cheat-sheet.yaml", "cheat sheet export path (.yaml or .json)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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

	reg := registry.New()
	f := feed.New()
	tailer := feed.NewTailer(f, cfg.Feed.TranscriptPath, log)

	publish := func(chunkIndex int, snapshot []*types.EntityRecord) {
		if err := engine.ExportFile(outPath, cfg.Engine.Title, snapshot); err != nil {
			log.Errorf("exporting cheat sheet: %v", err)
		}
	}
	pipeline := engine.NewPipeline(reg, backend, f, log, cfg.Engine, externalContext, publish)
	consumer := engine.NewConsumer(pipeline, f, log, cfg.Engine.PollInterval)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tailer.Run(ctx) })
	g.Go(func() error { return consumer.Run(ctx) })

	err = g.Wait()
	engine.FormatTable(os.Stdout, reg.Snapshot())
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
