package focus

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sessionsOf(minutes ...float64) []Session {
	sessions := make([]Session, 0, len(minutes))
	offset := time.Duration(0)
	apps := []string{"code", "chrome", "slack", "terminal", "mail"}
	for i, m := range minutes {
		d := time.Duration(m * float64(time.Minute))
		sessions = append(sessions, Session{
			App:      apps[i%len(apps)],
			Start:    testDay.Add(offset),
			End:      testDay.Add(offset + d),
			Duration: d,
		})
		offset += d
	}
	return sessions
}

func TestSwitchesPerHour(t *testing.T) {
	// Spec scenario: sessions [10, 20, 90] min over a 2-hour window:
	// 2 switches / 2h = 1.
	assert.InDelta(t, 1.0, SwitchesPerHour(sessionsOf(10, 20, 90)), 1e-9)

	// A single session contributes zero switches.
	assert.Zero(t, SwitchesPerHour(sessionsOf(480)))
	assert.Zero(t, SwitchesPerHour(nil))

	// 5 sessions of 6 min each: 4 switches over 0.5h = 8/h.
	assert.InDelta(t, 8.0, SwitchesPerHour(sessionsOf(6, 6, 6, 6, 6)), 1e-9)
}

func TestMedianSessionMinutes(t *testing.T) {
	// Standard median for counts 1 through 4.
	assert.InDelta(t, 10.0, MedianSessionMinutes(sessionsOf(10)), 1e-9)
	assert.InDelta(t, 15.0, MedianSessionMinutes(sessionsOf(10, 20)), 1e-9)
	assert.InDelta(t, 20.0, MedianSessionMinutes(sessionsOf(10, 20, 90)), 1e-9)
	assert.InDelta(t, 25.0, MedianSessionMinutes(sessionsOf(10, 20, 30, 90)), 1e-9)

	assert.Zero(t, MedianSessionMinutes(nil))
}

func TestMedianUnsortedInput(t *testing.T) {
	assert.InDelta(t, 20.0, median([]float64{90, 10, 20}), 1e-9)
}

func TestEntropySingleApp(t *testing.T) {
	sessions := []Session{
		{App: "code", Duration: time.Hour},
		{App: "code", Duration: 30 * time.Minute},
	}
	assert.Zero(t, Entropy(sessions))
}

func TestEntropyEvenSplitIsMaximal(t *testing.T) {
	// Even split across n apps gives log2(n) bits.
	sessions := []Session{
		{App: "a", Duration: time.Hour},
		{App: "b", Duration: time.Hour},
	}
	assert.InDelta(t, 1.0, Entropy(sessions), 1e-9)

	four := []Session{
		{App: "a", Duration: time.Hour},
		{App: "b", Duration: time.Hour},
		{App: "c", Duration: time.Hour},
		{App: "d", Duration: time.Hour},
	}
	assert.InDelta(t, 2.0, Entropy(four), 1e-9)
}

func TestEntropyBounds(t *testing.T) {
	sessions := []Session{
		{App: "a", Duration: 10 * time.Minute},
		{App: "b", Duration: 20 * time.Minute},
		{App: "c", Duration: 90 * time.Minute},
	}
	h := Entropy(sessions)
	assert.GreaterOrEqual(t, h, 0.0)
	assert.LessOrEqual(t, h, math.Log2(3)+1e-9)

	// Uneven split carries less information than an even one.
	assert.Less(t, h, math.Log2(3))
}

func TestEntropyZeroTotal(t *testing.T) {
	assert.Zero(t, Entropy(nil))
	assert.Zero(t, Entropy([]Session{{App: "a"}}))
}
