// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package diag carries the per-run context shared by every stage of
// glyph segmentation: a logger, and a sink collecting the warnings and
// failures found along the way so that a batch can report them all at
// the end rather than stopping at the first problem.
package diag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"
	"time"
)

// Error classes. Errors returned by the segmentation packages wrap
// one of these, so callers can use errors.Is or Classify.
var (
	ErrInput     = errors.New("input error")
	ErrNoContent = errors.New("no content")
	ErrOrdering  = errors.New("ordering error")
	ErrGeometry  = errors.New("geometric inconsistency")
	ErrInvariant = errors.New("invariant violation")
)

// Kind is a short classification of an event or error
type Kind string

const (
	KindUnknown   Kind = "unknown"
	KindInput     Kind = "input"
	KindNoContent Kind = "nocontent"
	KindOrdering  Kind = "ordering"
	KindGeometry  Kind = "geometry"
	KindInvariant Kind = "invariant"
	KindCancel    Kind = "cancel"
	KindIO        Kind = "io"
)

// Classify maps an error onto a Kind, using only the error classes
// above and standard library error types.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancel
	case errors.Is(err, ErrInvariant):
		return KindInvariant
	case errors.Is(err, ErrOrdering):
		return KindOrdering
	case errors.Is(err, ErrGeometry):
		return KindGeometry
	case errors.Is(err, ErrNoContent):
		return KindNoContent
	case errors.Is(err, ErrInput):
		return KindInput
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return KindIO
	}
	return KindUnknown
}

// Fatal reports whether an error of this kind should stop work on a
// table. No-content and geometry conditions are only warnings.
func (k Kind) Fatal() bool {
	return k != KindNoContent && k != KindGeometry
}

// Severity of an Event
type Severity string

const (
	Warning Severity = "warning"
	Failure Severity = "failure"
)

// Event is one structured diagnostic
type Event struct {
	Time     time.Time `json:"time"`
	Table    string    `json:"table,omitempty"`
	Kind     Kind      `json:"kind"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

type sink struct {
	mu     sync.Mutex
	events []Event
}

// Run is the context of one segmentation run. It is safe to use
// from several goroutines at once, and a nil *Run discards
// everything sent to it.
type Run struct {
	Logger *log.Logger
	table  string
	sink   *sink
	now    func() time.Time
}

// NullWriter enables non-verbose logging to be discarded
type NullWriter bool

func (w NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// NewRun creates a Run logging to logger. If logger is nil, log
// messages are discarded.
func NewRun(logger *log.Logger) *Run {
	if logger == nil {
		var n NullWriter
		logger = log.New(n, "", 0)
	}
	return &Run{Logger: logger, sink: &sink{}, now: time.Now}
}

// For returns a Run which shares the logger and event sink of r but
// tags every event with the given table identifier.
func (r *Run) For(table string) *Run {
	if r == nil {
		return nil
	}
	c := *r
	c.table = table
	return &c
}

// Table returns the table identifier the Run is tagged with, if any
func (r *Run) Table() string {
	if r == nil {
		return ""
	}
	return r.table
}

// Log records an item with the Logger. Arguments are handled as
// with fmt.Println.
func (r *Run) Log(v ...interface{}) {
	if r == nil {
		return
	}
	if r.table != "" {
		v = append([]interface{}{r.table + ":"}, v...)
	}
	r.Logger.Println(v...)
}

func (r *Run) emit(sev Severity, kind Kind, msg string) {
	if r == nil {
		return
	}
	e := Event{Time: r.now(), Table: r.table, Kind: kind, Severity: sev, Message: msg}
	r.sink.mu.Lock()
	r.sink.events = append(r.sink.events, e)
	r.sink.mu.Unlock()
	r.Log(string(sev), string(kind)+":", msg)
}

// Warn records a non-fatal event
func (r *Run) Warn(kind Kind, format string, a ...interface{}) {
	r.emit(Warning, kind, fmt.Sprintf(format, a...))
}

// Fail records an error which stopped work on a table
func (r *Run) Fail(err error) {
	if err == nil {
		return
	}
	r.emit(Failure, Classify(err), err.Error())
}

// Events returns a copy of every event recorded so far, ordered by
// table and then by the order they were recorded in.
func (r *Run) Events() []Event {
	if r == nil {
		return nil
	}
	r.sink.mu.Lock()
	events := make([]Event, len(r.sink.events))
	copy(events, r.sink.events)
	r.sink.mu.Unlock()
	sort.SliceStable(events, func(i, j int) bool { return events[i].Table < events[j].Table })
	return events
}

// Report is the summary of a run written at the end of a batch
type Report struct {
	Tables   int     `json:"tables"`
	Failed   int     `json:"failed"`
	Failures []Event `json:"failures"`
	Warnings []Event `json:"warnings"`
}

// Report summarises the events of the run. tables is the number of
// tables which were attempted.
func (r *Run) Report(tables int) Report {
	rep := Report{Tables: tables, Failures: []Event{}, Warnings: []Event{}}
	failed := make(map[string]bool)
	for _, e := range r.Events() {
		if e.Severity == Failure {
			rep.Failures = append(rep.Failures, e)
			failed[e.Table] = true
		} else {
			rep.Warnings = append(rep.Warnings, e)
		}
	}
	rep.Failed = len(failed)
	return rep
}

// WriteJSON writes the report as indented JSON
func (rep Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteText writes a human readable summary of the report
func (rep Report) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d tables processed, %d failed, %d warnings\n", rep.Tables, rep.Failed, len(rep.Warnings))
	if err != nil {
		return err
	}
	for _, e := range rep.Failures {
		_, err = fmt.Fprintf(w, "FAILED %s: [%s] %s\n", e.Table, e.Kind, e.Message)
		if err != nil {
			return err
		}
	}
	for _, e := range rep.Warnings {
		_, err = fmt.Fprintf(w, "warning %s: [%s] %s\n", e.Table, e.Kind, e.Message)
		if err != nil {
			return err
		}
	}
	return nil
}
