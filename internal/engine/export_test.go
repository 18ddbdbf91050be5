// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lore-engine/pkg/types"
)

func sampleRecords() []*types.EntityRecord {
	return []*types.EntityRecord{
		{CanonicalName: "1945", Category: types.CategoryConcepts, BaseImportanceScore: 4, MentionCount: 1},
		{CanonicalName: "Joseph Stalin", Category: types.CategoryCharacters, Description: "Soviet leader", BaseImportanceScore: 9, MentionCount: 3},
		{CanonicalName: "Harry S Truman", Category: types.CategoryCharacters, Description: "US president", BaseImportanceScore: 9, MentionCount: 5},
		{CanonicalName: "Los Alamos", Category: types.CategoryLocations, BaseImportanceScore: 6, MentionCount: 2},
	}
}

func TestSortRecords(t *testing.T) {
	recs := sampleRecords()
	SortRecords(recs)

	// Importance desc, then mentions desc, then name.
	assert.Equal(t, "Harry S Truman", recs[0].CanonicalName)
	assert.Equal(t, "Joseph Stalin", recs[1].CanonicalName)
	assert.Equal(t, "Los Alamos", recs[2].CanonicalName)
	assert.Equal(t, "1945", recs[3].CanonicalName)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, "Cold War Stories", sampleRecords()))

	var doc cheatSheet
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Cold War Stories", doc.Title)
	require.Len(t, doc.Entities, 4)
	assert.Equal(t, "Harry S Truman", doc.Entities[0].CanonicalName)
	assert.Equal(t, types.CategoryCharacters, doc.Entities[0].Category)
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "out", "sheet.json")
	require.NoError(t, ExportFile(jsonPath, "Cold War Stories", sampleRecords()))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc cheatSheet
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Entities, 4)

	yamlPath := filepath.Join(dir, "sheet.yaml")
	require.NoError(t, ExportFile(yamlPath, "Cold War Stories", sampleRecords()))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "canonical_name: Harry S Truman")
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(&buf, sampleRecords())
	out := buf.String()

	assert.Contains(t, out, "Characters")
	assert.Contains(t, out, "Locations")
	assert.Contains(t, out, "Concepts/Events")
	assert.NotContains(t, out, "Organizations", "empty categories are omitted")
	assert.Contains(t, out, "Harry S Truman")
	assert.Contains(t, out, "4 entities")

	buf.Reset()
	FormatTable(&buf, nil)
	assert.Contains(t, buf.String(), "No entities tracked yet.")
}
