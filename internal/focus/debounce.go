// Package focus turns a day's raw window events into context-switching
// statistics and a bounded 0-100 focus score.
package focus

import (
	"time"

	"awsync/internal/event"
)

// Debounce filters instrumentation noise out of a chronologically sorted
// event stream. Adjacent events in the same app are merged first; any entry
// still shorter than threshold is then absorbed into the preceding kept
// entry (its duration re-attributed, so total time is conserved). A leading
// sub-threshold run has nothing to attach to and is dropped.
//
// Example, threshold 5s: [vscode 5s] [chrome 2s] [vscode 10m] collapses to
// a single vscode entry of 10m7s - the chrome flicker was never a real
// attention switch.
func Debounce(events []event.RawEvent, threshold time.Duration) []event.RawEvent {
	if len(events) == 0 {
		return nil
	}

	// Merge chronologically adjacent same-app events before applying the
	// threshold, so a run of short samples in one app counts as one entry.
	merged := make([]event.RawEvent, 0, len(events))
	for _, e := range events {
		if n := len(merged); n > 0 && merged[n-1].App == e.App {
			merged[n-1].Duration += e.Duration
		} else {
			merged = append(merged, e)
		}
	}

	out := make([]event.RawEvent, 0, len(merged))
	for _, m := range merged {
		n := len(out)
		switch {
		case n > 0 && out[n-1].App == m.App:
			// Absorbing noise in between can make neighbours same-app again.
			out[n-1].Duration += m.Duration
		case m.Duration < threshold:
			if n > 0 {
				out[n-1].Duration += m.Duration
			}
		default:
			out = append(out, m)
		}
	}
	return out
}
