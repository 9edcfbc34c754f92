// Package awclient is a REST client for a local ActivityWatch daemon. It
// discovers the window/AFK/web watcher buckets and assembles one day's
// DayEvents for the aggregation engine.
package awclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"awsync/internal/aggregate"
	"awsync/internal/event"
)

const (
	windowBucketPrefix = "aw-watcher-window_"
	afkBucketPrefix    = "aw-watcher-afk_"
	webBucketPrefix    = "aw-watcher-web"

	notAFKStatus = "not-afk"
)

type Client struct {
	base string
	http *http.Client
}

func New(apiBase string, timeout time.Duration) *Client {
	return &Client{
		base: apiBase,
		http: &http.Client{Timeout: timeout},
	}
}

// awEvent is the daemon's wire shape: ISO timestamp, duration in seconds,
// watcher-specific payload under "data".
type awEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Duration  float64   `json:"duration"`
	Data      struct {
		App    string `json:"app"`
		Title  string `json:"title"`
		URL    string `json:"url"`
		Status string `json:"status"`
	} `json:"data"`
}

// Buckets returns the IDs of all buckets the daemon knows about.
func (c *Client) Buckets(ctx context.Context) ([]string, error) {
	var buckets map[string]json.RawMessage
	if err := c.getJSON(ctx, "/buckets/", nil, &buckets); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// findBucket returns the first bucket ID with the given prefix, or "" when
// the corresponding watcher is not installed.
func (c *Client) findBucket(ctx context.Context, prefix string) (string, error) {
	ids, err := c.Buckets(ctx)
	if err != nil {
		return "", err
	}
	for _, id := range ids {
		if len(id) >= len(prefix) && id[:len(prefix)] == prefix {
			return id, nil
		}
	}
	return "", nil
}

// events fetches a bucket's events for [start, end).
func (c *Client) events(ctx context.Context, bucketID string, start, end time.Time) ([]awEvent, error) {
	params := url.Values{
		"start": {start.UTC().Format(time.RFC3339)},
		"end":   {end.UTC().Format(time.RFC3339)},
	}
	var events []awEvent
	if err := c.getJSON(ctx, "/buckets/"+url.PathEscape(bucketID)+"/events", params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// DayEvents implements aggregate.EventSource: window events (AFK-filtered
// when an AFK watcher exists), web events, and the not-AFK intervals for
// the civil day containing date. A missing watcher bucket contributes an
// empty stream - no activity, not an error.
func (c *Client) DayEvents(ctx context.Context, date time.Time) (aggregate.DayEvents, error) {
	start, end := event.DayWindow(date)
	var out aggregate.DayEvents

	afkBucket, err := c.findBucket(ctx, afkBucketPrefix)
	if err != nil {
		return out, err
	}
	if afkBucket != "" {
		afkEvents, err := c.events(ctx, afkBucket, start, end)
		if err != nil {
			return out, err
		}
		out.Active = notAFKIntervals(afkEvents)
	}

	windowBucket, err := c.findBucket(ctx, windowBucketPrefix)
	if err != nil {
		return out, err
	}
	if windowBucket != "" {
		winEvents, err := c.events(ctx, windowBucket, start, end)
		if err != nil {
			return out, err
		}
		out.Window = toRawEvents(winEvents)
		if afkBucket != "" {
			out.Window = FilterByIntervals(out.Window, out.Active)
		}
	}

	webBucket, err := c.findBucket(ctx, webBucketPrefix)
	if err != nil {
		return out, err
	}
	if webBucket != "" {
		webEvents, err := c.events(ctx, webBucket, start, end)
		if err != nil {
			return out, err
		}
		out.Web = toRawEvents(webEvents)
	}

	return out, nil
}

func toRawEvents(events []awEvent) []event.RawEvent {
	out := make([]event.RawEvent, 0, len(events))
	for _, e := range events {
		out = append(out, event.RawEvent{
			Start:    e.Timestamp,
			Duration: time.Duration(e.Duration * float64(time.Second)),
			App:      e.Data.App,
			Title:    e.Data.Title,
			URL:      e.Data.URL,
		})
	}
	return out
}

func notAFKIntervals(events []awEvent) []event.Interval {
	var intervals []event.Interval
	for _, e := range events {
		if e.Data.Status != notAFKStatus || e.Duration <= 0 {
			continue
		}
		intervals = append(intervals, event.Interval{
			Start: e.Timestamp,
			End:   e.Timestamp.Add(time.Duration(e.Duration * float64(time.Second))),
		})
	}
	return intervals
}

// FilterByIntervals clips events to the given intervals: an event keeps
// only the time it overlaps not-AFK time and is dropped when that is zero.
func FilterByIntervals(events []event.RawEvent, intervals []event.Interval) []event.RawEvent {
	if len(intervals) == 0 {
		return nil
	}
	out := make([]event.RawEvent, 0, len(events))
	for _, e := range events {
		var overlap time.Duration
		for _, iv := range intervals {
			overlap += overlapDuration(e.Start, e.End(), iv.Start, iv.End)
		}
		if overlap <= 0 {
			continue
		}
		e.Duration = overlap
		out = append(out, e)
	}
	return out
}

func overlapDuration(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("activitywatch request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("activitywatch %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("activitywatch %s: decode response: %w", path, err)
	}
	return nil
}
