package focus

import (
	"time"

	"awsync/internal/event"
)

// Session is a contiguous block of attention on a single app after
// debouncing. Duration is the attributed time of its constituent events;
// Start/End span the first event's start to the last event's end.
type Session struct {
	App      string
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

func (s Session) Minutes() float64 {
	return s.Duration.Minutes()
}

// Segment groups a debounced stream into sessions: consecutive entries in
// the same app become one session. Adjacency is positional in the filtered
// stream - no gap-closing across removed time ranges. Zero-duration
// sessions are excluded.
func Segment(events []event.RawEvent) []Session {
	var sessions []Session
	for _, e := range events {
		if n := len(sessions); n > 0 && sessions[n-1].App == e.App {
			sessions[n-1].End = e.End()
			sessions[n-1].Duration += e.Duration
		} else {
			sessions = append(sessions, Session{
				App:      e.App,
				Start:    e.Start,
				End:      e.End(),
				Duration: e.Duration,
			})
		}
	}

	out := sessions[:0]
	for _, s := range sessions {
		if s.Duration > 0 {
			out = append(out, s)
		}
	}
	return out
}
