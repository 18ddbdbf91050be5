// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package events carries structured engine event records to logging and
// telemetry sinks. Emission is side-channel: sinks may drop or fail
// internally but never propagate errors back into pipeline control flow.
// Implements: prd003-observability (R1, R2);
//
//	docs/ARCHITECTURE § Observability.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// RecordType classifies an event record.
type RecordType string

const (
	TypeStatus         RecordType = "status"
	TypeWarning        RecordType = "warning"
	TypeError          RecordType = "error"
	TypeDebug          RecordType = "debug"
	TypePrompt         RecordType = "prompt"
	TypeRawResponse    RecordType = "raw_response"
	TypeParsedEntities RecordType = "parsed_entities"
)

// Record is one structured engine event.
type Record struct {
	Type    RecordType `json:"type"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Time    time.Time  `json:"time"`
}

// Sink consumes event records. Implementations must be safe for concurrent
// use; Emit must not block on slow consumers longer than a local write.
type Sink interface {
	Emit(rec Record)
}

// Logger stamps and fans records out to its sinks. The zero value discards
// everything, so components can always call through a nil-safe Logger.
type Logger struct {
	sinks []Sink
	debug bool
}

// NewLogger creates a logger over the given sinks.
func NewLogger(debug bool, sinks ...Sink) *Logger {
	return &Logger{sinks: sinks, debug: debug}
}

// Emit sends a record to every sink. Debug records are dropped unless the
// logger was created with debug enabled.
func (l *Logger) Emit(t RecordType, message string, data any) {
	if l == nil {
		return
	}
	if t == TypeDebug && !l.debug {
		return
	}
	rec := Record{Type: t, Message: message, Data: data, Time: time.Now().UTC()}
	for _, s := range l.sinks {
		s.Emit(rec)
	}
}

// Statusf emits a formatted status record.
func (l *Logger) Statusf(format string, args ...any) {
	l.Emit(TypeStatus, fmt.Sprintf(format, args...), nil)
}

// Warningf emits a formatted warning record.
func (l *Logger) Warningf(format string, args ...any) {
	l.Emit(TypeWarning, fmt.Sprintf(format, args...), nil)
}

// Errorf emits a formatted error record.
func (l *Logger) Errorf(format string, args ...any) {
	l.Emit(TypeError, fmt.Sprintf(format, args...), nil)
}

// Debugf emits a formatted debug record.
func (l *Logger) Debugf(format string, args ...any) {
	l.Emit(TypeDebug, fmt.Sprintf(format, args...), nil)
}

// WriterSink writes one line per record to an io.Writer. Writes are
// serialized; write errors are ignored (the sink is best-effort by
// contract).
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink over w. Pair with a lumberjack writer for a
// size-rotated event log file.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit writes the record as a single line. Data is JSON-encoded inline;
// records with unencodable data still log type and message.
func (s *WriterSink) Emit(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Data == nil {
		fmt.Fprintf(s.w, "%s [%s] %s\n", rec.Time.Format(time.RFC3339), rec.Type, rec.Message)
		return
	}
	data, err := json.Marshal(rec.Data)
	if err != nil {
		fmt.Fprintf(s.w, "%s [%s] %s\n", rec.Time.Format(time.RFC3339), rec.Type, rec.Message)
		return
	}
	fmt.Fprintf(s.w, "%s [%s] %s data=%s\n", rec.Time.Format(time.RFC3339), rec.Type, rec.Message, data)
}
