// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package events

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu   sync.Mutex
	recs []Record
}

func (c *captureSink) Emit(rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
}

func (c *captureSink) records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.recs))
	copy(out, c.recs)
	return out
}

func TestLoggerFanOut(t *testing.T) {
	a := &captureSink{}
	b := &captureSink{}
	log := NewLogger(false, a, b)

	log.Statusf("processing chunk %d", 3)
	log.Emit(TypePrompt, "prompt sent", map[string]int{"chunk": 3})

	require.Len(t, a.records(), 2)
	require.Len(t, b.records(), 2)
	assert.Equal(t, TypeStatus, a.records()[0].Type)
	assert.Equal(t, "processing chunk 3", a.records()[0].Message)
	assert.Equal(t, TypePrompt, b.records()[1].Type)
	assert.False(t, a.records()[0].Time.IsZero())
}

func TestLoggerDebugFiltering(t *testing.T) {
	quiet := &captureSink{}
	NewLogger(false, quiet).Debugf("hidden")
	assert.Empty(t, quiet.records())

	verbose := &captureSink{}
	NewLogger(true, verbose).Debugf("visible")
	require.Len(t, verbose.records(), 1)
	assert.Equal(t, TypeDebug, verbose.records()[0].Type)
}

func TestLoggerNilSafe(t *testing.T) {
	var log *Logger
	assert.NotPanics(t, func() {
		log.Statusf("ignored")
		log.Errorf("ignored")
	})
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(false, NewWriterSink(&buf))

	log.Warningf("score out of range for %q", "Eldoria")
	log.Emit(TypeParsedEntities, "parsed", []string{"Kael", "Eldoria"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[warning]")
	assert.Contains(t, lines[0], `score out of range for "Eldoria"`)
	assert.Contains(t, lines[1], "[parsed_entities]")
	assert.Contains(t, lines[1], `data=["Kael","Eldoria"]`)
}

func TestSQLiteSinkRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs", "events.db")
	sink, err := NewSQLiteSink(dbPath)
	require.NoError(t, err)
	defer sink.Close()

	log := NewLogger(true, sink)
	log.Statusf("startup")
	log.Emit(TypeRawResponse, "backend reply", map[string]string{"model": "llama3.2:latest"})

	assert.Equal(t, 0, sink.Dropped())

	rows, err := sink.db.Query("SELECT type, message, data FROM events ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	var got []struct {
		typ, message string
		data         *string
	}
	for rows.Next() {
		var r struct {
			typ, message string
			data         *string
		}
		require.NoError(t, rows.Scan(&r.typ, &r.message, &r.data))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	require.Len(t, got, 2)
	assert.Equal(t, "status", got[0].typ)
	assert.Nil(t, got[0].data)
	assert.Equal(t, "raw_response", got[1].typ)
	require.NotNil(t, got[1].data)
	assert.Contains(t, *got[1].data, "llama3.2:latest")
}
