package focus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCfg() Config {
	return Config{
		NoiseThreshold:     5,
		SensitivityK:       0.05,
		SessionBonusCapMin: 20,
		EmptyDayScore:      50,
	}
}

func TestScoreDeepWorkClampsAt100(t *testing.T) {
	// Zero switches, zero entropy, long median: 100 + 20 - 0, clamped.
	score := Score(testCfg(), Inputs{MedianSessionMin: 480})
	assert.InDelta(t, 100.0, score, 1e-9)
}

func TestScoreSessionBonusCapped(t *testing.T) {
	capped := Score(testCfg(), Inputs{SwitchesPerHour: 10, MedianSessionMin: 500})
	atCap := Score(testCfg(), Inputs{SwitchesPerHour: 10, MedianSessionMin: 20})
	assert.InDelta(t, atCap, capped, 1e-9)
}

func TestScoreExponentialDecay(t *testing.T) {
	cfg := testCfg()
	// At k=0.05: 20 switches/hour leaves a base near 37, 50 near 8.
	assert.InDelta(t, 100*math.Exp(-1), Score(cfg, Inputs{SwitchesPerHour: 20}), 1e-9)
	assert.InDelta(t, 100*math.Exp(-2.5), Score(cfg, Inputs{SwitchesPerHour: 50}), 1e-9)
}

func TestScoreEntropyPenalty(t *testing.T) {
	cfg := testCfg()
	without := Score(cfg, Inputs{SwitchesPerHour: 5, MedianSessionMin: 10})
	with := Score(cfg, Inputs{SwitchesPerHour: 5, MedianSessionMin: 10, Entropy: 2})
	assert.InDelta(t, 10.0, without-with, 1e-9)
}

func TestScoreClampsAtZero(t *testing.T) {
	// Huge entropy drives the raw formula negative; the contract is [0,100].
	score := Score(testCfg(), Inputs{SwitchesPerHour: 100, Entropy: 10})
	assert.Zero(t, score)
}

func TestScoreAlwaysBounded(t *testing.T) {
	cfg := testCfg()
	cases := []Inputs{
		{},
		{SwitchesPerHour: 1e9},
		{MedianSessionMin: 1e9},
		{Entropy: 1e9},
		{SwitchesPerHour: 0.5, MedianSessionMin: 35, Entropy: 0.2},
		{SwitchesPerHour: 60, MedianSessionMin: 1, Entropy: 4},
	}
	for _, in := range cases {
		score := Score(cfg, in)
		assert.GreaterOrEqual(t, score, 0.0, "inputs %+v", in)
		assert.LessOrEqual(t, score, 100.0, "inputs %+v", in)
	}
}

func TestScoreScenarioThreeSessions(t *testing.T) {
	// Sessions [10, 20, 90] min: 1 switch/hour, median 20, entropy from the
	// 10/20/90 split across three apps.
	sessions := sessionsOf(10, 20, 90)
	in := Inputs{
		SwitchesPerHour:  SwitchesPerHour(sessions),
		MedianSessionMin: MedianSessionMinutes(sessions),
		Entropy:          Entropy(sessions),
	}

	p1, p2, p3 := 10.0/120, 20.0/120, 90.0/120
	wantEntropy := -(p1*math.Log2(p1) + p2*math.Log2(p2) + p3*math.Log2(p3))
	assert.InDelta(t, wantEntropy, in.Entropy, 1e-9)

	want := 100*math.Exp(-0.05*1) + 20 - wantEntropy*5
	assert.InDelta(t, want, Score(testCfg(), in), 1e-9)
	assert.GreaterOrEqual(t, want, 0.0)
	assert.LessOrEqual(t, want, 100.0)
}
