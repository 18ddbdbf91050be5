package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWholeDocument(t *testing.T) {
	raw := `{"entities": [
		{"name": "Stalin", "type": "character", "description": "Soviet leader", "base_importance_score": 9},
		{"name": "1945", "type": "event", "description": "war ends", "base_importance_score": 6, "aliases": ["forty-five"]}
	]}`

	cands, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "Stalin", cands[0].Name)
	assert.Equal(t, 9, cands[0].BaseImportanceScore)
	assert.Equal(t, []string{"forty-five"}, cands[1].Aliases)
}

func TestParseBareArray(t *testing.T) {
	raw := `[{"name": "Truman", "type": "character", "description": "", "base_importance_score": 8}]`

	cands, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Truman", cands[0].Name)
}

func TestParseFencedBlock(t *testing.T) {
	raw := "Here are the entities you asked for:\n```json\n{\"entities\": [{\"name\": \"OSS\", \"type\": \"organization\", \"description\": \"spy agency\", \"base_importance_score\": 7}]}\n```\nLet me know if you need more."

	cands, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "OSS", cands[0].Name)
}

func TestParseEmbeddedObject(t *testing.T) {
	raw := `Sure! The result is {"entities": [{"name": "Los Alamos", "type": "location", "description": "lab site", "base_importance_score": 5}]} as requested.`

	cands, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Los Alamos", cands[0].Name)
}

func TestParseEmbeddedArray(t *testing.T) {
	raw := `The list: [{"name": "Walrider", "type": "key object", "description": "", "base_importance_score": 4}] done.`

	cands, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Walrider", cands[0].Name)
}

func TestParseBracesInsideStrings(t *testing.T) {
	raw := `{"entities": [{"name": "Project {X}", "type": "concept", "description": "odd name", "base_importance_score": 3}]}`

	cands, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Project {X}", cands[0].Name)
}

func TestParseInvalidScoreDegrades(t *testing.T) {
	raw := `{"entities": [{"name": "Stalin", "type": "character", "description": "", "base_importance_score": 7.5}]}`

	cands, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, 0, cands[0].BaseImportanceScore, "fractional score must degrade, not fail the document")
}

func TestParseMissingScore(t *testing.T) {
	raw := `{"entities": [{"name": "Hope", "type": "character", "description": ""}]}`

	cands, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, 0, cands[0].BaseImportanceScore)
}

func TestParseEmptyEntities(t *testing.T) {
	cands, err := Parse(`{"entities": []}`)
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n "},
		{"prose only", "I could not find any entities in this snippet."},
		{"object without entities", `{"results": [1, 2, 3]}`},
		{"unbalanced", `{"entities": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoStructure)
		})
	}
}
