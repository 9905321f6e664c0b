package pipelinelog

import (
	"log/slog"
	"sync"
	"time"
)

// Event is one observation from a pipeline stage. Zero-valued fields are
// omitted from the slog output.
type Event struct {
	Stage           string
	Source          string
	Query           string
	RawCount        *int
	NormalizedCount *int
	DroppedCount    *int
	DropReasons     map[string]int
	Error           string
	Duration        time.Duration
	At              time.Time
}

// Count returns a pointer to n, for the optional count fields.
func Count(n int) *int { return &n }

// Log is a request-scoped, append-only collector of pipeline events.
// Safe for concurrent use; every appended event is kept.
type Log struct {
	mu     sync.Mutex
	runID  string
	events []Event
	logger *slog.Logger
	now    func() time.Time
}

// New returns an empty log for one pipeline run. A nil logger disables
// console mirroring.
func New(runID string, logger *slog.Logger) *Log {
	return &Log{
		runID:  runID,
		logger: logger,
		now:    time.Now,
	}
}

// RunID identifies the run this log belongs to.
func (l *Log) RunID() string {
	return l.runID
}

// Add appends e and mirrors it to the console logger.
func (l *Log) Add(e Event) {
	if l == nil {
		return
	}
	if e.At.IsZero() {
		e.At = l.now()
	}

	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()

	if l.logger != nil {
		l.emit(e)
	}
}

// Events returns a copy of every event recorded so far.
func (l *Log) Events() []Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *Log) emit(e Event) {
	args := []any{"run_id", l.runID, "stage", e.Stage}
	if e.Source != "" {
		args = append(args, "source", e.Source)
	}
	if e.Query != "" {
		q := e.Query
		if len(q) > 100 {
			q = q[:100] + "..."
		}
		args = append(args, "query", q)
	}
	if e.RawCount != nil {
		args = append(args, "raw", *e.RawCount)
	}
	if e.NormalizedCount != nil {
		args = append(args, "normalized", *e.NormalizedCount)
	}
	if e.DroppedCount != nil {
		args = append(args, "dropped", *e.DroppedCount)
	}
	if len(e.DropReasons) > 0 {
		args = append(args, "reasons", e.DropReasons)
	}
	if e.Duration > 0 {
		args = append(args, "duration", e.Duration.Round(time.Millisecond))
	}
	if e.Error != "" {
		args = append(args, "error", e.Error)
		l.logger.Warn("pipeline", args...)
		return
	}
	l.logger.Info("pipeline", args...)
}
