package focus

import (
	"math"
	"sort"
)

// SwitchesPerHour is the context-switch rate over the observed window:
// n sessions mean n-1 switches, divided by total attended hours. A single
// session contributes zero switches; an empty window is 0, not NaN.
func SwitchesPerHour(sessions []Session) float64 {
	if len(sessions) < 2 {
		return 0
	}
	var total float64
	for _, s := range sessions {
		total += s.Duration.Hours()
	}
	if total <= 0 {
		return 0
	}
	return float64(len(sessions)-1) / total
}

// MedianSessionMinutes is the statistical median of session lengths in
// minutes, 0 when there are no sessions.
func MedianSessionMinutes(sessions []Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	mins := make([]float64, len(sessions))
	for i, s := range sessions {
		mins[i] = s.Minutes()
	}
	return median(mins)
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Entropy is the Shannon entropy, in bits, of how attended time is
// distributed across distinct apps: H = -sum(p_i * log2(p_i)) with
// p_i = time_i / total. Zero total time or a single app yields 0; the
// upper bound is log2 of the number of distinct apps.
func Entropy(sessions []Session) float64 {
	appTime := make(map[string]float64)
	var total float64
	for _, s := range sessions {
		d := s.Duration.Seconds()
		appTime[s.App] += d
		total += d
	}
	if total <= 0 {
		return 0
	}

	var h float64
	for _, d := range appTime {
		p := d / total
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	// Rounding error can leave a tiny negative for single-app input.
	if h < 0 {
		return 0
	}
	return h
}
