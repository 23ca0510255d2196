// Package report turns filled category histograms into summaries, status
// lines and exported value/count tables.
package report

import (
	"fmt"

	"fjacquet/pgn-ratings/internal/aggregator"
	"fjacquet/pgn-ratings/internal/category"
	"fjacquet/pgn-ratings/internal/histogram"

	"github.com/shopspring/decimal"
)

// NoGames is printed in place of statistics for an empty category.
const NoGames = "No games"

// CategorySummary holds the statistics of one category. Mean, StdDev and
// Median are nil when the category saw no ratings.
type CategorySummary struct {
	Name   string   `json:"name" yaml:"name"`
	Low    int      `json:"low" yaml:"low"`
	High   int      `json:"high" yaml:"high"`
	Total  uint64   `json:"total" yaml:"total"`
	Mean   *float64 `json:"mean" yaml:"mean"`
	StdDev *float64 `json:"stddev" yaml:"stddev"`
	Median *int     `json:"median" yaml:"median"`
}

// HasGames reports whether the category received any rating.
func (s CategorySummary) HasGames() bool {
	return s.Total > 0
}

// Summarize computes one summary per category, in table order.
func Summarize(table *category.Table) []CategorySummary {
	cats := table.Categories()
	summaries := make([]CategorySummary, 0, len(cats))
	for _, c := range cats {
		h, _ := table.Histogram(c)
		summaries = append(summaries, summarizeHistogram(c, h))
	}
	return summaries
}

func summarizeHistogram(c category.Category, h *histogram.Histogram) CategorySummary {
	s := CategorySummary{Name: c.Name, Low: c.Low, High: c.High, Total: h.Total()}
	if mean, ok := h.Mean(); ok {
		s.Mean = &mean
	}
	if stddev, ok := h.StdDev(); ok {
		s.StdDev = &stddev
	}
	if median, ok := h.Percentile(50); ok {
		s.Median = &median
	}
	return s
}

// Export returns the lazy, ascending, non-restartable sequence of non-empty
// bins of h.
func Export(h *histogram.Histogram) *histogram.Iterator {
	return h.Iter()
}

// FormatStat renders an optional statistic with two decimals.
func FormatStat(v *float64) string {
	if v == nil {
		return NoGames
	}
	return decimal.NewFromFloat(*v).StringFixed(2)
}

// FormatSummaryLine renders "<name>: total <n>, mean <m>, stddev <s>".
func FormatSummaryLine(s CategorySummary) string {
	return fmt.Sprintf("%s: total %d, mean %s, stddev %s",
		s.Name, s.Total, FormatStat(s.Mean), FormatStat(s.StdDev))
}

// FormatRunLine renders the cumulative skip and casual counters.
func FormatRunLine(run aggregator.RunSummary) string {
	return fmt.Sprintf("skipped %d, casual %d", run.Skipped, run.Casual)
}
