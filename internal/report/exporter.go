package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/pgn-ratings/internal/aggregator"
	"fjacquet/pgn-ratings/internal/category"
	"fjacquet/pgn-ratings/internal/fileutils"
	"fjacquet/pgn-ratings/internal/histogram"
	"fjacquet/pgn-ratings/internal/logging"

	"github.com/gocarina/gocsv"
)

// Options configures where and how histograms are exported.
type Options struct {
	Directory     string
	Extension     string
	Delimiter     rune
	SummaryFile   string
	SummaryFormat string
}

// DefaultOptions writes "<name>.data" files with comma-separated rows into
// the working directory and no summary document.
func DefaultOptions() Options {
	return Options{
		Directory:     ".",
		Extension:     ".data",
		Delimiter:     ',',
		SummaryFormat: FormatYAML,
	}
}

// Exporter writes histogram tables, status lines and summary documents.
type Exporter struct {
	opts      Options
	logger    logging.Logger
	generator *Generator
}

// NewExporter creates an Exporter. A nil logger falls back to the default logger.
func NewExporter(opts Options, logger logging.Logger) *Exporter {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	logger = logging.OrDefault(logger).WithField(logging.FieldComponent, "exporter")
	return &Exporter{
		opts:      opts,
		logger:    logger,
		generator: NewGenerator(logger),
	}
}

// PathFor returns the destination of the table of c.
func (e *Exporter) PathFor(c category.Category) string {
	return filepath.Join(e.opts.Directory, c.Name+e.opts.Extension)
}

// WriteHistogram writes the non-empty bins of h to w as header-less
// "value,count" rows and returns the number of rows.
func (e *Exporter) WriteHistogram(w io.Writer, h *histogram.Histogram) (int, error) {
	var rows []histogram.Bin
	it := Export(h)
	for bin, ok := it.Next(); ok; bin, ok = it.Next() {
		rows = append(rows, bin)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = e.opts.Delimiter
	safe := gocsv.NewSafeCSVWriter(csvWriter)
	if err := gocsv.MarshalCSVWithoutHeaders(rows, safe); err != nil {
		return 0, fmt.Errorf("error writing histogram rows: %w", err)
	}
	safe.Flush()
	if err := safe.Error(); err != nil {
		return 0, fmt.Errorf("error flushing histogram rows: %w", err)
	}
	return len(rows), nil
}

// ExportAll writes one table per category and returns the written paths in
// table order. Any I/O failure aborts the export.
func (e *Exporter) ExportAll(table *category.Table) ([]string, error) {
	if err := fileutils.EnsureDirectoryExists(e.opts.Directory); err != nil {
		return nil, fmt.Errorf("error preparing output directory: %w", err)
	}

	paths := make([]string, 0, len(table.Categories()))
	for _, c := range table.Categories() {
		h, _ := table.Histogram(c)
		path := e.PathFor(c)
		if err := e.exportOne(path, h); err != nil {
			e.logger.WithError(err).Error("Failed to export histogram",
				logging.Field{Key: logging.FieldCategory, Value: c.Name},
				logging.Field{Key: logging.FieldOutputFile, Value: path})
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (e *Exporter) exportOne(path string, h *histogram.Histogram) (err error) {
	file, err := fileutils.CreateFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing %s: %w", path, cerr)
		}
	}()

	rows, err := e.WriteHistogram(file, h)
	if err != nil {
		return err
	}
	e.logger.Debug("Exported histogram",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: rows})
	return nil
}

// WriteStatus writes one summary line per category followed by the run line.
func (e *Exporter) WriteStatus(w io.Writer, summaries []CategorySummary, run aggregator.RunSummary) error {
	for _, s := range summaries {
		if _, err := fmt.Fprintln(w, FormatSummaryLine(s)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, FormatRunLine(run))
	return err
}

// WriteDocument writes doc to the configured summary file. It returns an
// empty path when no summary file is configured.
func (e *Exporter) WriteDocument(doc Document) (string, error) {
	if e.opts.SummaryFile == "" {
		return "", nil
	}
	format := e.opts.SummaryFormat
	if format == "" {
		format = FormatYAML
	}
	data, err := e.generator.Generate(doc, format)
	if err != nil {
		return "", err
	}
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(e.opts.SummaryFile)); err != nil {
		return "", err
	}
	if err := os.WriteFile(e.opts.SummaryFile, data, 0600); err != nil {
		return "", fmt.Errorf("error writing summary file: %w", err)
	}
	return e.opts.SummaryFile, nil
}
