// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/pgn-ratings/internal/container"
	"fjacquet/pgn-ratings/internal/histogram"
	"fjacquet/pgn-ratings/internal/logging"
	"fjacquet/pgn-ratings/internal/pgn"
	"fjacquet/pgn-ratings/internal/report"
	"fjacquet/pgn-ratings/internal/store"
)

// Result describes one completed run.
type Result struct {
	Games       int
	Files       []string
	SummaryFile string
	RunID       string
	Summaries   []report.CategorySummary
}

// ProcessStream reads every record of input into the container's histograms,
// then exports the category tables, writes the status lines to status and
// stores the optional summary document and run record. Any error is fatal
// for the run.
func ProcessStream(ctx context.Context, c *container.Container, input io.Reader, source string, status io.Writer) (Result, error) {
	log := c.GetLogger().WithField(logging.FieldInputFile, source)
	started := time.Now()

	agg := c.NewAggregator()
	games, err := pgn.NewReader(input, log).ReadAll(agg)
	if err != nil {
		log.WithError(err).Error("Failed to read games")
		return Result{}, fmt.Errorf("error reading %s: %w", source, err)
	}
	run := agg.Summary()
	log.Info("Finished reading games",
		logging.Field{Key: logging.FieldCount, Value: games},
		logging.Field{Key: logging.FieldSkipped, Value: run.Skipped},
		logging.Field{Key: logging.FieldCasual, Value: run.Casual})

	table := c.GetTable()
	exporter := c.GetExporter()
	result := Result{Games: games, Summaries: report.Summarize(table)}

	if result.Files, err = exporter.ExportAll(table); err != nil {
		return result, err
	}

	if err := exporter.WriteStatus(status, result.Summaries, run); err != nil {
		return result, fmt.Errorf("error writing status: %w", err)
	}

	doc := report.Document{
		Source:     source,
		MaxRating:  table.MaxRating(),
		Categories: result.Summaries,
		Run:        run,
	}
	if result.SummaryFile, err = exporter.WriteDocument(doc); err != nil {
		return result, err
	}

	if sink := c.GetRunSink(); sink != nil {
		rec := store.Run{
			Source:     source,
			StartedAt:  started,
			EndedAt:    time.Now(),
			Summary:    run,
			Categories: result.Summaries,
			Bins:       collectBins(c),
		}
		if result.RunID, err = sink.SaveRun(ctx, rec); err != nil {
			return result, fmt.Errorf("error saving run: %w", err)
		}
		log.Debug("Stored run", logging.Field{Key: logging.FieldRunID, Value: result.RunID})
	}

	return result, nil
}

func collectBins(c *container.Container) map[string][]histogram.Bin {
	table := c.GetTable()
	bins := make(map[string][]histogram.Bin)
	for _, cat := range table.Categories() {
		h, _ := table.Histogram(cat)
		if b := h.Bins(); len(b) > 0 {
			bins[cat.Name] = b
		}
	}
	return bins
}
