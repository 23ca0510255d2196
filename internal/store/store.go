// Package store persists finished runs to SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fjacquet/pgn-ratings/internal/aggregator"
	"fjacquet/pgn-ratings/internal/histogram"
	"fjacquet/pgn-ratings/internal/report"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrRunNotFound is returned by LoadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one finished aggregation run.
type Run struct {
	ID         string
	Source     string
	StartedAt  time.Time
	EndedAt    time.Time
	Summary    aggregator.RunSummary
	Categories []report.CategorySummary
	// Bins holds the non-empty bins of each category, keyed by name.
	Bins map[string][]histogram.Bin
}

// RunSink receives finished runs.
type RunSink interface {
	SaveRun(ctx context.Context, run Run) (string, error)
	Close() error
}

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

var _ RunSink = (*Store)(nil)

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("error creating store directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error migrating store: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			games INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			casual INTEGER NOT NULL,
			committed INTEGER NOT NULL,
			missing_ratings INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS category_summaries (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			low INTEGER NOT NULL,
			high INTEGER NOT NULL,
			total INTEGER NOT NULL,
			mean REAL,
			stddev REAL,
			median INTEGER,
			PRIMARY KEY (run_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS histogram_bins (
			run_id TEXT NOT NULL,
			category TEXT NOT NULL,
			value INTEGER NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, category, value)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores run with its summaries and bins in one transaction and
// returns the run ID. An empty run.ID gets a fresh UUID.
func (s *Store) SaveRun(ctx context.Context, run Run) (id string, err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, started_at, ended_at, games, skipped, casual, committed, missing_ratings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Source,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.EndedAt.UTC().Format(time.RFC3339Nano),
		run.Summary.Games,
		run.Summary.Skipped,
		run.Summary.Casual,
		run.Summary.Committed,
		run.Summary.MissingRatings,
	)
	if err != nil {
		return "", fmt.Errorf("error inserting run: %w", err)
	}

	for i, c := range run.Categories {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO category_summaries (run_id, position, name, low, high, total, mean, stddev, median)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, c.Name, c.Low, c.High, int64(c.Total), nullFloat(c.Mean), nullFloat(c.StdDev), nullInt(c.Median),
		)
		if err != nil {
			return "", fmt.Errorf("error inserting summary for %s: %w", c.Name, err)
		}
	}

	if err = s.insertBins(ctx, tx, run); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

func (s *Store) insertBins(ctx context.Context, tx *sql.Tx, run Run) error {
	if len(run.Bins) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO histogram_bins (run_id, category, value, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for name, bins := range run.Bins {
		for _, b := range bins {
			if _, err := stmt.ExecContext(ctx, run.ID, name, b.Value, int64(b.Count)); err != nil {
				return fmt.Errorf("error inserting bin %d of %s: %w", b.Value, name, err)
			}
		}
	}
	return nil
}

// LoadRun reads back a stored run.
func (s *Store) LoadRun(ctx context.Context, id string) (Run, error) {
	run := Run{ID: id, Bins: map[string][]histogram.Bin{}}
	var started, ended string
	err := s.db.QueryRowContext(ctx,
		`SELECT source, started_at, ended_at, games, skipped, casual, committed, missing_ratings
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.Source, &started, &ended,
		&run.Summary.Games, &run.Summary.Skipped, &run.Summary.Casual,
		&run.Summary.Committed, &run.Summary.MissingRatings)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, err
	}
	if run.EndedAt, err = time.Parse(time.RFC3339Nano, ended); err != nil {
		return Run{}, err
	}

	if run.Categories, err = s.loadSummaries(ctx, id); err != nil {
		return Run{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, value, count FROM histogram_bins WHERE run_id = ? ORDER BY category, value`, id)
	if err != nil {
		return Run{}, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		var b histogram.Bin
		var count int64
		if err := rows.Scan(&name, &b.Value, &count); err != nil {
			return Run{}, err
		}
		b.Count = uint64(count)
		run.Bins[name] = append(run.Bins[name], b)
	}
	return run, rows.Err()
}

func (s *Store) loadSummaries(ctx context.Context, id string) ([]report.CategorySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, low, high, total, mean, stddev, median
		 FROM category_summaries WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []report.CategorySummary
	for rows.Next() {
		var c report.CategorySummary
		var total int64
		var mean, stddev sql.NullFloat64
		var median sql.NullInt64
		if err := rows.Scan(&c.Name, &c.Low, &c.High, &total, &mean, &stddev, &median); err != nil {
			return nil, err
		}
		c.Total = uint64(total)
		if mean.Valid {
			c.Mean = &mean.Float64
		}
		if stddev.Valid {
			c.StdDev = &stddev.Float64
		}
		if median.Valid {
			m := int(median.Int64)
			c.Median = &m
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountRuns returns the number of stored runs.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
