// Package container provides dependency injection for the pgn-ratings application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/pgn-ratings/internal/aggregator"
	"fjacquet/pgn-ratings/internal/category"
	"fjacquet/pgn-ratings/internal/config"
	"fjacquet/pgn-ratings/internal/logging"
	"fjacquet/pgn-ratings/internal/rating"
	"fjacquet/pgn-ratings/internal/report"
	"fjacquet/pgn-ratings/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. All fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger       logging.Logger
	config       *config.Config
	table        *category.Table
	strategies   []aggregator.ResolveStrategy
	ratingParser *rating.Parser
	exporter     *report.Exporter
	runSink      store.RunSink
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger := logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
	return NewContainerWithLogger(cfg, logger)
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)

	table, err := category.NewTable(category.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("error building category table: %w", err)
	}

	strategies, err := aggregator.NewStrategies(cfg.Classification.Strategies, table)
	if err != nil {
		return nil, err
	}

	var runSink store.RunSink
	if cfg.Store.SQLitePath != "" {
		s, err := store.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("error opening run store: %w", err)
		}
		runSink = s
		logger.Debug("Run store enabled", logging.Field{Key: logging.FieldOutputFile, Value: cfg.Store.SQLitePath})
	}

	c := &Container{
		logger:       logger,
		config:       cfg,
		table:        table,
		strategies:   strategies,
		ratingParser: rating.NewParser(logger),
		exporter:     report.NewExporter(cfg.ExportOptions(), logger),
		runSink:      runSink,
	}

	logger.Debug("Container initialized successfully",
		logging.Field{Key: logging.FieldCount, Value: len(table.Categories())},
		logging.Field{Key: logging.FieldStrategy, Value: cfg.Classification.Strategies})

	return c, nil
}

// NewAggregator returns a fresh aggregator over the container's table using
// the configured strategies, casual markers and rating parser.
func (c *Container) NewAggregator() *aggregator.GameAggregator {
	return aggregator.New(c.table, c.strategies, c.logger,
		aggregator.WithCasualMarkers(c.config.Classification.CasualMarkers...),
		aggregator.WithRatingParser(c.ratingParser))
}

// GetLogger returns the logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the configuration.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetTable returns the category table.
func (c *Container) GetTable() *category.Table {
	return c.table
}

// GetExporter returns the report exporter.
func (c *Container) GetExporter() *report.Exporter {
	return c.exporter
}

// GetRunSink returns the run sink, or nil when persistence is disabled.
func (c *Container) GetRunSink() store.RunSink {
	return c.runSink
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	if c.runSink == nil {
		return nil
	}
	return c.runSink.Close()
}
