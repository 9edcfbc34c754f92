package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"awsync/internal/aggregate"
	"awsync/internal/event"
	"awsync/internal/state"
)

const dateFormat = "2006-01-02"

type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteStore(dbPath string) state.Store {
	return &SQLiteStore{dbPath: dbPath}
}

const createSyncTableSQL = `
CREATE TABLE IF NOT EXISTS synced_days (
	date TEXT PRIMARY KEY,
	synced_at DATETIME NOT NULL,
	active_seconds REAL,
	focus_score REAL
);
CREATE INDEX IF NOT EXISTS idx_synced_days_synced_at ON synced_days (synced_at);
`

func (s *SQLiteStore) Init(ctx context.Context) error {
	dir := filepath.Dir(s.dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create db directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", s.dbPath+"?_journal=WAL&_timeout=5000&_fk=true")
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	s.db = db

	// SQLite is happiest with a single writer connection.
	s.db.SetMaxOpenConns(1)
	s.db.SetMaxIdleConns(1)
	s.db.SetConnMaxLifetime(time.Minute * 5)

	if err := s.db.PingContext(ctx); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createSyncTableSQL); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to create synced_days table: %w", err)
	}
	return nil
}

// MarkSynced upserts the record for the aggregate's date: re-syncing a day
// replaces its row rather than adding another.
func (s *SQLiteStore) MarkSynced(ctx context.Context, day aggregate.Daily) error {
	query := `INSERT INTO synced_days (date, synced_at, active_seconds, focus_score)
	          VALUES (?, ?, ?, ?)
	          ON CONFLICT(date) DO UPDATE SET
	            synced_at = excluded.synced_at,
	            active_seconds = excluded.active_seconds,
	            focus_score = excluded.focus_score`
	_, err := s.db.ExecContext(ctx, query,
		day.Date.Format(dateFormat), time.Now().UTC(), day.ActiveSeconds, day.FocusScore)
	if err != nil {
		return fmt.Errorf("failed to mark %s synced: %w", day.Date.Format(dateFormat), err)
	}
	return nil
}

func (s *SQLiteStore) IsSynced(ctx context.Context, date time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM synced_days WHERE date = ?`,
		date.Format(dateFormat)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query sync state: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) UnsyncedDates(ctx context.Context, ref time.Time, lookback int) ([]time.Time, error) {
	today, _ := event.DayWindow(ref)

	rows, err := s.db.QueryContext(ctx,
		`SELECT date FROM synced_days WHERE date >= ?`,
		today.AddDate(0, 0, -lookback).Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query synced dates: %w", err)
	}
	defer rows.Close()

	synced := make(map[string]bool)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan synced date: %w", err)
		}
		synced[d] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating synced dates: %w", err)
	}

	var unsynced []time.Time
	for i := lookback; i > 0; i-- { // oldest first
		d := today.AddDate(0, 0, -i)
		if !synced[d.Format(dateFormat)] {
			unsynced = append(unsynced, d)
		}
	}
	return unsynced, nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]state.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, synced_at, active_seconds, focus_score
		 FROM synced_days ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent records: %w", err)
	}
	defer rows.Close()

	var records []state.Record
	for rows.Next() {
		var r state.Record
		var dateStr string
		var active sql.NullFloat64
		var score sql.NullFloat64
		if err := rows.Scan(&dateStr, &r.SyncedAt, &active, &score); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		r.Date, err = time.Parse(dateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in synced_days: %w", dateStr, err)
		}
		r.ActiveSeconds = active.Float64
		r.FocusScore = score.Float64
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}
	return records, nil
}

// Cleanup drops rows older than keep days so the state DB never grows
// without bound.
func (s *SQLiteStore) Cleanup(ctx context.Context, ref time.Time, keep int) error {
	cutoff := ref.AddDate(0, 0, -keep).Format(dateFormat)
	res, err := s.db.ExecContext(ctx, `DELETE FROM synced_days WHERE date < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up sync state: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("Sync state cleanup removed %d old entries", n)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
