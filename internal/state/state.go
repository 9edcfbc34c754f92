package state

import (
	"context"
	"time"

	"awsync/internal/aggregate"
)

// Store records which dates have been pushed to the analytics service and
// what was pushed, so scheduled runs can backfill gaps without re-fetching
// every day.
type Store interface {
	Init(ctx context.Context) error
	MarkSynced(ctx context.Context, day aggregate.Daily) error
	IsSynced(ctx context.Context, date time.Time) (bool, error)
	// UnsyncedDates returns the dates within lookback days before ref
	// (exclusive of ref's own day) that have no sync record, oldest first.
	UnsyncedDates(ctx context.Context, ref time.Time, lookback int) ([]time.Time, error)
	// Recent returns the newest records, most recent date first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	// Cleanup drops records older than keep days before ref.
	Cleanup(ctx context.Context, ref time.Time, keep int) error
	Close() error
}

// Record is one stored sync outcome.
type Record struct {
	Date          time.Time
	SyncedAt      time.Time
	ActiveSeconds float64
	FocusScore    float64
}
