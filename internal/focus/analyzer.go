package focus

import (
	"time"

	"awsync/internal/event"
)

// Metrics is the result of analyzing one day's window events.
type Metrics struct {
	MedianSessionMin float64
	SwitchesPerHour  float64
	Entropy          float64
	Sessions         int
	TotalMin         float64
	Score            float64
}

// Analyzer runs the full pipeline: sort, debounce, segment, statistics,
// score. Pure computation, safe for concurrent use across days.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze computes focus metrics for one day's window events. The input
// need not be sorted; it is copied before sorting. A day that yields no
// sessions (no events, or all noise) gets the configured neutral score -
// "no data" is deliberately not reported as either perfect or zero focus.
func (a *Analyzer) Analyze(events []event.RawEvent) Metrics {
	sorted := append([]event.RawEvent(nil), events...)
	event.SortByStart(sorted)

	threshold := time.Duration(a.cfg.NoiseThreshold * float64(time.Second))
	sessions := Segment(Debounce(sorted, threshold))

	if len(sessions) == 0 {
		return Metrics{Score: a.cfg.EmptyDayScore}
	}

	var total time.Duration
	for _, s := range sessions {
		total += s.Duration
	}

	in := Inputs{
		SwitchesPerHour:  SwitchesPerHour(sessions),
		MedianSessionMin: MedianSessionMinutes(sessions),
		Entropy:          Entropy(sessions),
	}

	return Metrics{
		MedianSessionMin: in.MedianSessionMin,
		SwitchesPerHour:  in.SwitchesPerHour,
		Entropy:          in.Entropy,
		Sessions:         len(sessions),
		TotalMin:         total.Minutes(),
		Score:            Score(a.cfg, in),
	}
}

// Interpret maps a score onto the human-readable bands shown by the score
// command.
func Interpret(score float64) string {
	switch {
	case score >= 80:
		return "Deep work - excellent focus"
	case score >= 60:
		return "Good focus - solid work session"
	case score >= 40:
		return "Moderate - some fragmentation"
	case score >= 20:
		return "Fragmented - many context switches"
	default:
		return "Severe fragmentation - constant switching"
	}
}
