// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// SortRecords orders a snapshot for display: importance descending, then
// mention count descending, then canonical name for stability.
func SortRecords(recs []*types.EntityRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].BaseImportanceScore != recs[j].BaseImportanceScore {
			return recs[i].BaseImportanceScore > recs[j].BaseImportanceScore
		}
		if recs[i].MentionCount != recs[j].MentionCount {
			return recs[i].MentionCount > recs[j].MentionCount
		}
		return recs[i].CanonicalName < recs[j].CanonicalName
	})
}

// cheatSheet is the exported document shape.
type cheatSheet struct {
	Title    string                `json:"title" yaml:"title"`
	Entities []*types.EntityRecord `json:"entities" yaml:"entities"`
}

// WriteYAML writes the snapshot as a YAML cheat sheet.
func WriteYAML(w io.Writer, title string, recs []*types.EntityRecord) error {
	SortRecords(recs)
	data, err := yaml.Marshal(cheatSheet{Title: title, Entities: recs})
	if err != nil {
		return fmt.Errorf("marshaling cheat sheet: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteJSON writes the snapshot as indented JSON.
func WriteJSON(w io.Writer, title string, recs []*types.EntityRecord) error {
	SortRecords(recs)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cheatSheet{Title: title, Entities: recs})
}

// ExportFile writes the snapshot to path, choosing the format from the
// file extension (.json for JSON, anything else YAML).
func ExportFile(path, title string, recs []*types.EntityRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return WriteJSON(f, title, recs)
	}
	return WriteYAML(f, title, recs)
}
