package aggregate

import (
	"context"
	"fmt"
	"log"
	"time"

	"awsync/internal/event"
)

// EventSource fetches one day's raw events. An empty DayEvents means "no
// activity", not an error.
type EventSource interface {
	DayEvents(ctx context.Context, date time.Time) (DayEvents, error)
}

// Publisher hands a finished aggregate to the analytics service. Publish
// must be idempotent per (date, metric): re-publishing a reprocessed day
// overwrites the prior value.
type Publisher interface {
	Publish(ctx context.Context, day Daily) error
}

// Result is the outcome for one date. Err is non-nil when fetching or
// publishing that date failed; the aggregate is still populated when the
// failure happened after computation.
type Result struct {
	Date      time.Time
	Aggregate Daily
	Err       error
}

// Runner iterates calendar dates, aggregating and publishing each
// independently. One date's failure never aborts the rest of the range.
type Runner struct {
	source     EventSource
	publisher  Publisher
	aggregator *Aggregator
}

func NewRunner(src EventSource, pub Publisher, agg *Aggregator) *Runner {
	return &Runner{source: src, publisher: pub, aggregator: agg}
}

// Run processes every date from start through end inclusive, oldest first.
// Dates are normalized to midnight in their own location. With dryRun set
// the aggregates are computed and returned but nothing is published.
func (r *Runner) Run(ctx context.Context, start, end time.Time, dryRun bool) ([]Result, error) {
	first, _ := event.DayWindow(start)
	last, _ := event.DayWindow(end)
	if last.Before(first) {
		return nil, fmt.Errorf("end date %s before start date %s",
			last.Format("2006-01-02"), first.Format("2006-01-02"))
	}

	var dates []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return r.RunDates(ctx, dates, dryRun), nil
}

// RunDates processes an explicit date list, one Result per date in order.
func (r *Runner) RunDates(ctx context.Context, dates []time.Time, dryRun bool) []Result {
	results := make([]Result, 0, len(dates))
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Date: date, Err: err})
			continue
		}
		results = append(results, r.runDate(ctx, date, dryRun))
	}
	return results
}

func (r *Runner) runDate(ctx context.Context, date time.Time, dryRun bool) Result {
	res := Result{Date: date}

	in, err := r.source.DayEvents(ctx, date)
	if err != nil {
		res.Err = fmt.Errorf("fetch events for %s: %w", date.Format("2006-01-02"), err)
		return res
	}

	res.Aggregate = r.aggregator.Day(date, in)
	if res.Aggregate.Rejected > 0 {
		log.Printf("Warning: %s: rejected %d malformed event(s)",
			date.Format("2006-01-02"), res.Aggregate.Rejected)
	}

	if dryRun || r.publisher == nil {
		return res
	}
	if err := r.publisher.Publish(ctx, res.Aggregate); err != nil {
		res.Err = fmt.Errorf("publish %s: %w", date.Format("2006-01-02"), err)
	}
	return res
}
