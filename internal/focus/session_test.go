package focus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentMergesConsecutiveSameApp(t *testing.T) {
	events := run("code", 60.0, "code", 120.0, "chrome", 30.0)
	sessions := Segment(events)

	require.Len(t, sessions, 2)
	assert.Equal(t, "code", sessions[0].App)
	assert.Equal(t, 3*time.Minute, sessions[0].Duration)
	assert.Equal(t, events[0].Start, sessions[0].Start)
	assert.Equal(t, events[1].End(), sessions[0].End)

	assert.Equal(t, "chrome", sessions[1].App)
	assert.Equal(t, 30*time.Second, sessions[1].Duration)
}

func TestSegmentNoGapClosing(t *testing.T) {
	// Same app on both sides of a different-app entry stays two sessions;
	// only positional adjacency merges.
	events := run("code", 60.0, "chrome", 60.0, "code", 60.0)
	sessions := Segment(events)

	require.Len(t, sessions, 3)
	assert.Equal(t, []string{"code", "chrome", "code"},
		[]string{sessions[0].App, sessions[1].App, sessions[2].App})
}

func TestSegmentDropsZeroDuration(t *testing.T) {
	events := run("code", 60.0, "chrome", 0.0, "slack", 60.0)
	sessions := Segment(events)

	require.Len(t, sessions, 2)
	assert.Equal(t, "code", sessions[0].App)
	assert.Equal(t, "slack", sessions[1].App)
}

func TestSegmentChronologicalAndNonOverlapping(t *testing.T) {
	events := run("code", 600.0, "chrome", 300.0, "code", 600.0, "slack", 60.0)
	sessions := Segment(events)

	require.Len(t, sessions, 4)
	for i := 1; i < len(sessions); i++ {
		assert.False(t, sessions[i].Start.Before(sessions[i-1].End),
			"session %d overlaps its predecessor", i)
	}
}

func TestSegmentEmpty(t *testing.T) {
	assert.Empty(t, Segment(nil))
}
