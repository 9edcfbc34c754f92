// Package aggregate computes one DailyAggregate per calendar day from the
// fetched event streams, and runs that computation over date ranges with
// per-date failure isolation.
package aggregate

import (
	"time"

	"awsync/internal/category"
	"awsync/internal/event"
	"awsync/internal/focus"
)

// DayEvents is one day's input, already filtered to that day by the fetch
// collaborator. Window events are AFK-filtered app focus records and feed
// the focus pipeline; Web events carry browser URLs for domain-rule
// categorization; Active is the not-AFK interval stream.
type DayEvents struct {
	Window []event.RawEvent
	Web    []event.RawEvent
	Active []event.Interval
}

// Daily is the finished per-day record. Immutable once returned; the
// engine keeps no reference to it.
type Daily struct {
	Date            time.Time
	ActiveSeconds   float64
	CategorySeconds map[string]float64
	FocusScore      float64
	Focus           focus.Metrics
	Rejected        int // malformed events excluded from aggregation
}

// Aggregator is the per-day computation. Pure: no I/O, no shared state,
// safe to run for many dates concurrently.
type Aggregator struct {
	categorizer *category.Categorizer
	analyzer    *focus.Analyzer
}

func NewAggregator(c *category.Categorizer, a *focus.Analyzer) *Aggregator {
	return &Aggregator{categorizer: c, analyzer: a}
}

// Day aggregates one day. Malformed events (negative duration, missing
// identity) are skipped and counted rather than failing the day. An event
// contributes its full duration to every tag it matches, so category
// totals are not mutually exclusive and may exceed active time.
func (g *Aggregator) Day(date time.Time, in DayEvents) Daily {
	day := Daily{
		Date:            date,
		CategorySeconds: make(map[string]float64),
	}

	for _, iv := range in.Active {
		day.ActiveSeconds += iv.Duration().Seconds()
	}

	window := g.keepValid(in.Window, &day)
	web := g.keepValid(in.Web, &day)

	for _, e := range window {
		g.tally(&day, e)
	}
	for _, e := range web {
		g.tally(&day, e)
	}

	day.Focus = g.analyzer.Analyze(window)
	day.FocusScore = day.Focus.Score
	return day
}

func (g *Aggregator) keepValid(events []event.RawEvent, day *Daily) []event.RawEvent {
	valid := make([]event.RawEvent, 0, len(events))
	for i, e := range events {
		if err := event.Validate(e, i); err != nil {
			day.Rejected++
			continue
		}
		valid = append(valid, e)
	}
	return valid
}

func (g *Aggregator) tally(day *Daily, e event.RawEvent) {
	for _, tag := range g.categorizer.Tags(e.App, e.URL) {
		day.CategorySeconds[tag] += e.Duration.Seconds()
	}
}
