package report

import (
	"testing"

	"fjacquet/pgn-ratings/internal/aggregator"
	"fjacquet/pgn-ratings/internal/category"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T) *category.Table {
	t.Helper()
	table, err := category.NewTable(category.DefaultConfig())
	require.NoError(t, err)
	return table
}

func mustCategory(t *testing.T, table *category.Table, name string) category.Category {
	t.Helper()
	c, ok := table.ByName(name)
	require.True(t, ok, "category %s", name)
	return c
}

func TestSummarize(t *testing.T) {
	table := newTable(t)
	blitz := mustCategory(t, table, "blitz")
	require.NoError(t, table.Increment(blitz, 1500))
	require.NoError(t, table.Increment(blitz, 1700))

	summaries := Summarize(table)
	require.Len(t, summaries, 5)

	assert.Equal(t, "ultrabullet", summaries[0].Name)
	assert.False(t, summaries[0].HasGames())
	assert.Nil(t, summaries[0].Mean)
	assert.Nil(t, summaries[0].StdDev)
	assert.Nil(t, summaries[0].Median)

	s := summaries[2]
	assert.Equal(t, "blitz", s.Name)
	assert.Equal(t, 180, s.Low)
	assert.Equal(t, 480, s.High)
	assert.Equal(t, uint64(2), s.Total)
	require.NotNil(t, s.Mean)
	require.NotNil(t, s.StdDev)
	require.NotNil(t, s.Median)
	assert.InDelta(t, 1600.0, *s.Mean, 1e-9)
	assert.InDelta(t, 100.0, *s.StdDev, 1e-9)
	assert.Equal(t, 1500, *s.Median)
}

func TestExport_AscendingAndSkipsEmpty(t *testing.T) {
	table := newTable(t)
	rapid := mustCategory(t, table, "rapid")
	for _, v := range []int{2000, 1200, 2000, 0} {
		require.NoError(t, table.Increment(rapid, v))
	}
	h, _ := table.Histogram(rapid)

	it := Export(h)
	var values []int
	var counts []uint64
	for bin, ok := it.Next(); ok; bin, ok = it.Next() {
		values = append(values, bin.Value)
		counts = append(counts, bin.Count)
	}
	assert.Equal(t, []int{0, 1200, 2000}, values)
	assert.Equal(t, []uint64{1, 1, 2}, counts)

	_, ok := it.Next()
	assert.False(t, ok, "exhausted sequence must stay exhausted")
}

func TestFormatSummaryLine(t *testing.T) {
	mean, stddev := 1600.0, 100.0
	tests := []struct {
		name     string
		summary  CategorySummary
		expected string
	}{
		{
			name:     "with games",
			summary:  CategorySummary{Name: "blitz", Total: 2, Mean: &mean, StdDev: &stddev},
			expected: "blitz: total 2, mean 1600.00, stddev 100.00",
		},
		{
			name:     "no games",
			summary:  CategorySummary{Name: "bullet"},
			expected: "bullet: total 0, mean No games, stddev No games",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSummaryLine(tt.summary))
		})
	}
}

func TestFormatStat_Rounding(t *testing.T) {
	v := 1512.3456
	assert.Equal(t, "1512.35", FormatStat(&v))
	assert.Equal(t, NoGames, FormatStat(nil))
}

func TestFormatRunLine(t *testing.T) {
	run := aggregator.RunSummary{Games: 10, Skipped: 3, Casual: 2}
	assert.Equal(t, "skipped 3, casual 2", FormatRunLine(run))
}
