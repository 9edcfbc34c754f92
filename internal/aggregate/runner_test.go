package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"awsync/internal/event"
)

type fakeSource struct {
	events map[string]DayEvents
	errOn  map[string]error
	calls  []string
}

func (f *fakeSource) DayEvents(_ context.Context, date time.Time) (DayEvents, error) {
	key := date.Format("2006-01-02")
	f.calls = append(f.calls, key)
	if err, ok := f.errOn[key]; ok {
		return DayEvents{}, err
	}
	return f.events[key], nil
}

type fakePublisher struct {
	published []Daily
	errOn     map[string]error
}

func (f *fakePublisher) Publish(_ context.Context, day Daily) error {
	key := day.Date.Format("2006-01-02")
	if err, ok := f.errOn[key]; ok {
		return err
	}
	f.published = append(f.published, day)
	return nil
}

func dayWith(app string, date time.Time) DayEvents {
	return DayEvents{Window: []event.RawEvent{{
		Start: date.Add(9 * time.Hour), Duration: time.Hour, App: app,
	}}}
}

func TestRunInclusiveRange(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) // mid-day input normalizes
	end := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)

	src := &fakeSource{}
	pub := &fakePublisher{}
	r := NewRunner(src, pub, testAggregator())

	results, err := r.Run(context.Background(), start, end, false)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"2024-01-15", "2024-01-16", "2024-01-17"}, src.calls)
	assert.Len(t, pub.published, 3)
	for _, res := range results {
		assert.NoError(t, res.Err)
	}
}

func TestRunRejectsInvertedRange(t *testing.T) {
	r := NewRunner(&fakeSource{}, nil, testAggregator())
	_, err := r.Run(context.Background(),
		time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true)
	assert.Error(t, err)
}

func TestRunDryRunSuppressesPublish(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{events: map[string]DayEvents{"2024-01-15": dayWith("code", date)}}
	pub := &fakePublisher{}
	r := NewRunner(src, pub, testAggregator())

	results, err := r.Run(context.Background(), date, date, true)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Aggregate still computed and returned, nothing published.
	assert.Equal(t, 1, results[0].Aggregate.Focus.Sessions)
	assert.Empty(t, pub.published)
}

func TestRunFetchFailureIsolatedPerDate(t *testing.T) {
	boom := errors.New("daemon unreachable")
	src := &fakeSource{errOn: map[string]error{"2024-01-16": boom}}
	pub := &fakePublisher{}
	r := NewRunner(src, pub, testAggregator())

	results, err := r.Run(context.Background(),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[2].Err)
	// The failed middle date did not stop the others from publishing.
	assert.Len(t, pub.published, 2)
}

func TestRunPublishFailureRecorded(t *testing.T) {
	boom := errors.New("503")
	src := &fakeSource{}
	pub := &fakePublisher{errOn: map[string]error{"2024-01-15": boom}}
	r := NewRunner(src, pub, testAggregator())

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	results, err := r.Run(context.Background(), date, date, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, boom)
	// The aggregate was computed before the publish failed.
	assert.InDelta(t, 50.0, results[0].Aggregate.FocusScore, 1e-9)
}

func TestRunDatesContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(&fakeSource{}, nil, testAggregator())
	results := r.RunDates(ctx, []time.Time{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}, true)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
