package pipeline

import (
	"log/slog"
	"sync"
	"time"
)

// RunEventType classifies run events for filtering and routing.
type RunEventType string

const (
	EventRunStart    RunEventType = "run_start"
	EventMorphStart  RunEventType = "morph_start"
	EventMorphSkip   RunEventType = "morph_skip"
	EventMorphDone   RunEventType = "morph_done"
	EventMemoHit     RunEventType = "memo_hit"
	EventRunComplete RunEventType = "run_complete"
	EventRunError    RunEventType = "run_error"
)

// RunEvent is a single observation from a pipeline run. The Morph field
// names the executing step; for fused steps it is the joined constituent
// names except in run_error events, which name the failing constituent.
type RunEvent struct {
	Type     RunEventType
	Pipeline string
	Stage    string
	Morph    string
	Elapsed  time.Duration
	Error    error
}

// RunObserver receives events during a run. Single-method design (like
// http.Handler) so adding new event types never breaks existing
// observers.
type RunObserver interface {
	OnEvent(RunEvent)
}

// ObserverFunc adapts a plain function to the RunObserver interface.
type ObserverFunc func(RunEvent)

func (f ObserverFunc) OnEvent(e RunEvent) { f(e) }

// MultiObserver fans out events to multiple observers.
type MultiObserver []RunObserver

func (m MultiObserver) OnEvent(e RunEvent) {
	for _, obs := range m {
		obs.OnEvent(e)
	}
}

// LogObserver writes run events as structured slog lines.
type LogObserver struct {
	Logger *slog.Logger
}

func (o *LogObserver) OnEvent(e RunEvent) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{
		slog.String("event", string(e.Type)),
		slog.String("pipeline", e.Pipeline),
	}
	if e.Stage != "" {
		attrs = append(attrs, slog.String("stage", e.Stage))
	}
	if e.Morph != "" {
		attrs = append(attrs, slog.String("morph", e.Morph))
	}
	if e.Elapsed > 0 {
		attrs = append(attrs, slog.Duration("elapsed", e.Elapsed))
	}
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}

	if e.Error != nil {
		logger.LogAttrs(nil, slog.LevelWarn, "run", attrs...)
	} else {
		logger.LogAttrs(nil, slog.LevelInfo, "run", attrs...)
	}
}

// TraceCollector accumulates run events in memory for post-run analysis.
// Safe for concurrent use.
type TraceCollector struct {
	mu     sync.Mutex
	events []RunEvent
}

func (t *TraceCollector) OnEvent(e RunEvent) {
	t.mu.Lock()
	t.events = append(t.events, e)
	t.mu.Unlock()
}

// Events returns a copy of all collected events.
func (t *TraceCollector) Events() []RunEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]RunEvent, len(t.events))
	copy(out, t.events)
	return out
}

// EventsOfType returns only events matching the given type.
func (t *TraceCollector) EventsOfType(typ RunEventType) []RunEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []RunEvent
	for _, e := range t.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears collected events.
func (t *TraceCollector) Reset() {
	t.mu.Lock()
	t.events = nil
	t.mu.Unlock()
}
