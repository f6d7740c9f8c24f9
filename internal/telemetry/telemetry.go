// Package telemetry carries analytics events to explicit sinks.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event names.
const (
	EventGenerateLead = "generate_lead"
	EventViewPost     = "view_item"
	EventSearch       = "search"
)

// Event is one analytics record.
type Event struct {
	Name   string         `json:"event"`
	Params map[string]any `json:"params,omitempty"`
	Time   time.Time      `json:"time"`
}

// Sink receives events. Emit must not block on slow consumers.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}

// Logger writes events to a slog logger.
type Logger struct {
	L *slog.Logger
}

func (s Logger) Emit(ctx context.Context, e Event) {
	attrs := make([]slog.Attr, 0, len(e.Params)+1)
	attrs = append(attrs, slog.String("event", e.Name))
	for k, v := range e.Params {
		attrs = append(attrs, slog.Any(k, v))
	}
	s.L.LogAttrs(ctx, slog.LevelInfo, "telemetry", attrs...)
}

// Multi fans an event out to several sinks in order.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		s.Emit(ctx, e)
	}
}

// Func adapts a function to a Sink.
type Func func(ctx context.Context, e Event)

func (f Func) Emit(ctx context.Context, e Event) { f(ctx, e) }

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// New stamps an event with the current time.
func New(name string, params map[string]any) Event {
	return Event{Name: name, Params: params, Time: time.Now().UTC()}
}
