package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/pgn-ratings/internal/aggregator"
	"fjacquet/pgn-ratings/internal/histogram"
	"fjacquet/pgn-ratings/internal/report"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "runs.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun() Run {
	mean, stddev, median := 1600.0, 100.0, 1500
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return Run{
		Source:    "games.pgn",
		StartedAt: started,
		EndedAt:   started.Add(2 * time.Second),
		Summary:   aggregator.RunSummary{Games: 3, Skipped: 1, Casual: 1, Committed: 2},
		Categories: []report.CategorySummary{
			{Name: "blitz", Low: 180, High: 480, Total: 2, Mean: &mean, StdDev: &stddev, Median: &median},
			{Name: "rapid", Low: 480, High: 1500},
		},
		Bins: map[string][]histogram.Bin{
			"blitz": {{Value: 1500, Count: 1}, {Value: 1700, Count: 1}},
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, sampleRun())
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "run ID should be a UUID")

	loaded, err := s.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, loaded.ID)
	assert.Equal(t, "games.pgn", loaded.Source)
	assert.True(t, loaded.StartedAt.Equal(sampleRun().StartedAt))
	assert.Equal(t, sampleRun().Summary, loaded.Summary)

	require.Len(t, loaded.Categories, 2)
	assert.Equal(t, "blitz", loaded.Categories[0].Name)
	require.NotNil(t, loaded.Categories[0].Mean)
	assert.InDelta(t, 1600.0, *loaded.Categories[0].Mean, 1e-9)
	require.NotNil(t, loaded.Categories[0].Median)
	assert.Equal(t, 1500, *loaded.Categories[0].Median)
	assert.Nil(t, loaded.Categories[1].Mean)
	assert.Nil(t, loaded.Categories[1].Median)

	assert.Equal(t, sampleRun().Bins["blitz"], loaded.Bins["blitz"])
	assert.NotContains(t, loaded.Bins, "rapid")
}

func TestSaveRun_KeepsExplicitID(t *testing.T) {
	s := openStore(t)
	run := sampleRun()
	run.ID = "fixed-id"

	id, err := s.SaveRun(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	_, err = s.SaveRun(context.Background(), run)
	assert.Error(t, err, "duplicate run IDs are rejected")

	n, err := s.CountRuns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "failed save must roll back")
}

func TestLoadRun_NotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.LoadRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.sqlite")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.SaveRun(context.Background(), sampleRun())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	n, err := s.CountRuns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMockRunSink(t *testing.T) {
	m := &MockRunSink{}
	id, err := m.SaveRun(context.Background(), sampleRun())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, m.Runs, 1)
	assert.Equal(t, id, m.Runs[0].ID)

	m.SaveRunError = errors.New("boom")
	_, err = m.SaveRun(context.Background(), sampleRun())
	assert.EqualError(t, err, "boom")

	require.NoError(t, m.Close())
	assert.True(t, m.Closed)
}
