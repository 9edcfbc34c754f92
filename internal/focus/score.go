package focus

import "math"

// Config carries the scoring knobs, passed explicitly at construction so
// instances are deterministic and test-isolated. Zero values are not
// usable; build it from config.FocusConfig.
type Config struct {
	NoiseThreshold     float64 // seconds; events shorter than this are noise
	SensitivityK       float64 // k in e^(-k * switches_per_hour)
	SessionBonusCapMin float64 // cap on the median-session bonus, minutes
	EmptyDayScore      float64 // score published for a day with no sessions
}

// Inputs are the three statistics the scorer combines. Transient; callers
// normally go through Analyzer rather than building these by hand.
type Inputs struct {
	SwitchesPerHour  float64
	MedianSessionMin float64
	Entropy          float64
}

// Score combines switch rate, median session length and app-time entropy
// into a single 0-100 value:
//
//	base    = 100 * e^(-k * switches_per_hour)
//	bonus   = min(cap, median_session_minutes)
//	penalty = entropy * 5
//	score   = clamp(base + bonus - penalty, 0, 100)
//
// At k=0.05 the base is ~100 at 0 switches/hour, ~37 at 20, ~8 at 50.
// The clamp is part of the contract: the raw sum can exceed 100 (bonus) or
// go negative (entropy penalty), but the published score never does.
func Score(cfg Config, in Inputs) float64 {
	base := 100 * math.Exp(-cfg.SensitivityK*in.SwitchesPerHour)
	bonus := math.Min(cfg.SessionBonusCapMin, in.MedianSessionMin)
	penalty := in.Entropy * 5

	return clamp(base+bonus-penalty, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
