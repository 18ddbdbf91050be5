// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lore-engine/internal/chat"
	"github.com/pdiddy/lore-engine/internal/extract"
	"github.com/pdiddy/lore-engine/internal/feed"
	"github.com/pdiddy/lore-engine/internal/normalize"
	"github.com/pdiddy/lore-engine/internal/registry"
	"github.com/pdiddy/lore-engine/pkg/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about the story",
	Long: `Chat answers questions interactively using the transcript and an
exported cheat sheet. Questions are read from stdin, one per line; an empty
line or EOF exits.`,
	RunE: runChat,
}

func init() {
	addEngineFlags(chatCmd)
	chatCmd.Flags().String("sheet", "", "previously exported cheat sheet to load (.yaml)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := backend.Available(ctx); err != nil {
		return fmt.Errorf("extraction backend %s unavailable: %w", backend.Name(), err)
	}

	f := feed.New()
	if cfg.Feed.TranscriptPath != "" {
		if err := loadTranscript(f, cfg.Feed.TranscriptPath); err != nil {
			return err
		}
	}

	reg := registry.New()
	if sheetPath, _ := cmd.Flags().GetString("sheet"); sheetPath != "" {
		if err := loadSheet(reg, sheetPath); err != nil {
			return err
		}
	}

	agent := chat.New(backend, f, reg, log, cfg.Engine.Title, externalContext)
	answers := make(chan chat.Answer)
	go agent.Run(ctx, answers)

	fmt.Println("Ask about the story (empty line to exit).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			break
		}
		if !agent.Ask(query) {
			fmt.Println("busy, try again")
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case answer := <-answers:
			if answer.Err != nil {
				fmt.Printf("error: unable to process query: %v\n", answer.Err)
				continue
			}
			fmt.Println(answer.Text)
		}
	}
	return scanner.Err()
}

// loadSheet seeds the registry from an exported cheat sheet.
func loadSheet(reg *registry.Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading cheat sheet: %w", err)
	}

	var doc struct {
		Entities []*types.EntityRecord `yaml:"entities"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing cheat sheet: %w", err)
	}

	for _, rec := range doc.Entities {
		k := registry.Key{Name: normalize.ForComparison(rec.CanonicalName), Category: rec.Category}
		reg.Put(k, rec)
		reg.BindAlias(k.Name, rec.CanonicalName)
		for _, alias := range rec.Aliases {
			reg.BindAlias(normalize.ForComparison(alias), rec.CanonicalName)
		}
	}
	return nil
}
