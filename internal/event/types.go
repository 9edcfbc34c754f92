package event

import (
	"fmt"
	"sort"
	"time"
)

// RawEvent is one activity record as reported by the telemetry daemon.
// Window-bucket events carry App (and usually Title); web-bucket events
// carry URL. Produced by the fetch collaborator, never mutated here.
type RawEvent struct {
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
	App      string        `json:"app,omitempty"`
	Title    string        `json:"title,omitempty"`
	URL      string        `json:"url,omitempty"`
}

func (e RawEvent) End() time.Time {
	return e.Start.Add(e.Duration)
}

// Interval is a span of not-AFK time.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Duration() time.Duration {
	if iv.End.Before(iv.Start) {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// MalformedEventError marks an event the engine refuses to aggregate.
// Offenders are counted and skipped, never fatal to the day.
type MalformedEventError struct {
	Index  int
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event at index %d: %s", e.Index, e.Reason)
}

// Validate reports why an event is unusable, or nil.
func Validate(e RawEvent, index int) error {
	if e.Duration < 0 {
		return &MalformedEventError{Index: index, Reason: "negative duration"}
	}
	if e.Start.IsZero() {
		return &MalformedEventError{Index: index, Reason: "missing start time"}
	}
	if e.App == "" && e.URL == "" {
		return &MalformedEventError{Index: index, Reason: "neither app nor url set"}
	}
	return nil
}

// SortByStart orders events chronologically in place. The daemon does not
// guarantee ordering within a queried window, so callers sort before any
// pipeline stage runs.
func SortByStart(events []RawEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

// DayWindow returns the [midnight, next midnight) bounds of the civil day
// containing t, in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
