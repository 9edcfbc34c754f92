package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"awsync/internal/event"
)

func TestAnalyzeEmptyDayNeutralScore(t *testing.T) {
	a := NewAnalyzer(testCfg())

	m := a.Analyze(nil)
	assert.InDelta(t, 50.0, m.Score, 1e-9)
	assert.Zero(t, m.Sessions)
	assert.Zero(t, m.SwitchesPerHour)
	assert.Zero(t, m.Entropy)
}

func TestAnalyzeAllNoiseIsEmptyDay(t *testing.T) {
	a := NewAnalyzer(testCfg())

	m := a.Analyze(run("a", 1.0, "b", 2.0))
	assert.InDelta(t, 50.0, m.Score, 1e-9)
	assert.Zero(t, m.Sessions)
}

func TestAnalyzeSingleUnbrokenSession(t *testing.T) {
	// One 8-hour session: 0 switches, 0 entropy, capped bonus, score 100.
	a := NewAnalyzer(testCfg())

	m := a.Analyze(run("code", 8*3600.0))
	assert.Equal(t, 1, m.Sessions)
	assert.Zero(t, m.SwitchesPerHour)
	assert.Zero(t, m.Entropy)
	assert.InDelta(t, 480.0, m.MedianSessionMin, 1e-9)
	assert.InDelta(t, 480.0, m.TotalMin, 1e-9)
	assert.InDelta(t, 100.0, m.Score, 1e-9)
}

func TestAnalyzeSortsUnorderedInput(t *testing.T) {
	a := NewAnalyzer(testCfg())

	ordered := run("code", 600.0, "chrome", 300.0, "code", 600.0)
	shuffled := []event.RawEvent{ordered[2], ordered[0], ordered[1]}

	assert.Equal(t, a.Analyze(ordered), a.Analyze(shuffled))
	// Input slice is not reordered in place.
	assert.Equal(t, "code", shuffled[0].App)
	assert.Equal(t, ordered[2].Start, shuffled[0].Start)
}

func TestAnalyzePipeline(t *testing.T) {
	a := NewAnalyzer(testCfg())

	// code 10m, 2s flicker to chrome, code 10m, then real chrome 5m:
	// debounce folds everything up to the genuine switch into one session.
	events := run("code", 600.0, "chrome", 2.0, "code", 600.0, "chrome", 300.0)
	m := a.Analyze(events)

	assert.Equal(t, 2, m.Sessions)
	assert.InDelta(t, (1202.0/60+5)/2, m.MedianSessionMin, 1e-9)
	assert.InDelta(t, 1502.0/60, m.TotalMin, 1e-9)
	assert.Greater(t, m.Entropy, 0.0)
	assert.GreaterOrEqual(t, m.Score, 0.0)
	assert.LessOrEqual(t, m.Score, 100.0)
}

func TestAnalyzeConcurrentUse(t *testing.T) {
	a := NewAnalyzer(testCfg())
	events := run("code", 600.0, "chrome", 300.0)
	want := a.Analyze(events)

	done := make(chan Metrics, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- a.Analyze(events) }()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}

func TestInterpretBands(t *testing.T) {
	assert.Contains(t, Interpret(95), "Deep work")
	assert.Contains(t, Interpret(65), "Good focus")
	assert.Contains(t, Interpret(45), "Moderate")
	assert.Contains(t, Interpret(25), "Fragmented")
	assert.Contains(t, Interpret(5), "Severe")
}
