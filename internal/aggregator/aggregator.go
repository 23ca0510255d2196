// Package aggregator implements the per-record state machine that turns PGN
// headers into histogram increments.
package aggregator

import (
	"slices"
	"strings"

	"fjacquet/pgn-ratings/internal/category"
	"fjacquet/pgn-ratings/internal/logging"
	"fjacquet/pgn-ratings/internal/pgn"
	"fjacquet/pgn-ratings/internal/rating"
)

// DefaultCasualMarkers are the Event substrings that mark a game as unrated.
var DefaultCasualMarkers = []string{"casual", "simul"}

// Header keys, compared case-insensitively.
var (
	eventKeys       = []string{"event"}
	timeControlKeys = []string{"timecontrol"}
	whiteRatingKeys = []string{"whiteelo", "white rating", "whiterating"}
	blackRatingKeys = []string{"blackelo", "black rating", "blackrating"}
)

// GameAggregator consumes header events for one record at a time and commits
// ratings into the histogram of the resolved category. It implements
// pgn.Visitor.
type GameAggregator struct {
	table         *category.Table
	ratings       *rating.Parser
	strategies    []ResolveStrategy
	casualMarkers []string
	logger        logging.Logger

	state   State
	record  GameRecord
	summary RunSummary
}

// Option configures a GameAggregator.
type Option func(*GameAggregator)

// WithCasualMarkers replaces the casual Event markers.
func WithCasualMarkers(markers ...string) Option {
	return func(a *GameAggregator) {
		a.casualMarkers = make([]string, 0, len(markers))
		for _, m := range markers {
			if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
				a.casualMarkers = append(a.casualMarkers, m)
			}
		}
	}
}

// WithRatingParser replaces the rating parser.
func WithRatingParser(p *rating.Parser) Option {
	return func(a *GameAggregator) {
		a.ratings = p
	}
}

// New creates a GameAggregator over table. With no strategies the time
// control classifier is used.
func New(table *category.Table, strategies []ResolveStrategy, logger logging.Logger, opts ...Option) *GameAggregator {
	logger = logging.OrDefault(logger).WithField(logging.FieldComponent, "aggregator")
	if len(strategies) == 0 {
		strategies, _ = NewStrategies([]string{StrategyTimeControl}, table)
	}
	a := &GameAggregator{
		table:         table,
		ratings:       rating.NewParser(logger),
		strategies:    strategies,
		casualMarkers: DefaultCasualMarkers,
		logger:        logger,
		record:        newGameRecord(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BeginGame starts a new record with no category and no ratings.
func (a *GameAggregator) BeginGame() {
	a.record = newGameRecord()
	a.state = CollectingHeaders
}

// Header stores the fields the aggregator cares about and ignores the rest.
func (a *GameAggregator) Header(key, value string) error {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case slices.Contains(eventKeys, k):
		a.setEvent(value)
	case slices.Contains(timeControlKeys, k):
		a.record.TimeControl = value
		a.record.HasTimeControl = true
	case slices.Contains(whiteRatingKeys, k):
		a.record.WhiteRating = a.ratings.Parse(value)
	case slices.Contains(blackRatingKeys, k):
		a.record.BlackRating = a.ratings.Parse(value)
	}
	return nil
}

func (a *GameAggregator) setEvent(value string) {
	a.record.Event = value
	if !a.record.Rated {
		return
	}
	event := strings.ToLower(value)
	for _, marker := range a.casualMarkers {
		if strings.Contains(event, marker) {
			a.record.Rated = false
			a.summary.Casual++
			return
		}
	}
}

// EndHeaders resolves the category and commits the ratings. Movetext is never
// needed, so it always asks the reader to skip it.
func (a *GameAggregator) EndHeaders() (pgn.Skip, error) {
	if a.state == RecordComplete {
		return pgn.Skip(true), nil
	}
	a.state = RecordComplete
	a.summary.Games++

	c, results := a.resolve()
	if c == nil {
		a.summary.Skipped++
		a.logger.Info("Skipping unclassified game",
			logging.Field{Key: logging.FieldGame, Value: a.summary.Games},
			logging.Field{Key: logging.FieldTimeControl, Value: a.record.TimeControl},
			logging.Field{Key: logging.FieldEvent, Value: a.record.Event},
			logging.Field{Key: logging.FieldReason, Value: results.Summary()})
		return pgn.Skip(true), nil
	}
	a.record.Category = c

	if err := a.commit(*c, "white", a.record.WhiteRating); err != nil {
		return pgn.Skip(true), err
	}
	if err := a.commit(*c, "black", a.record.BlackRating); err != nil {
		return pgn.Skip(true), err
	}
	return pgn.Skip(true), nil
}

// EndGame closes the record. A record whose header block never closed is
// completed first.
func (a *GameAggregator) EndGame() error {
	if a.state == CollectingHeaders {
		if _, err := a.EndHeaders(); err != nil {
			return err
		}
	}
	a.state = AwaitingRecord
	return nil
}

func (a *GameAggregator) resolve() (*category.Category, StrategyResults) {
	results := make(StrategyResults, 0, len(a.strategies))
	for _, s := range a.strategies {
		c, found, err := s.Resolve(a.record)
		results = append(results, StrategyResult{Strategy: s.Name(), Found: found, Error: err})
		if found {
			return &c, results
		}
	}
	return nil, results
}

func (a *GameAggregator) commit(c category.Category, side string, r rating.Rating) error {
	if !r.Valid {
		a.summary.MissingRatings++
		return nil
	}
	if err := a.table.Increment(c, r.Value); err != nil {
		a.logger.WithError(err).Error("Rating does not fit histogram",
			logging.Field{Key: logging.FieldGame, Value: a.summary.Games},
			logging.Field{Key: logging.FieldCategory, Value: c.Name},
			logging.Field{Key: logging.FieldSide, Value: side},
			logging.Field{Key: logging.FieldRating, Value: r.Value})
		return err
	}
	a.summary.Committed++
	return nil
}

// State returns the current protocol state.
func (a *GameAggregator) State() State { return a.state }

// Record returns a copy of the current record.
func (a *GameAggregator) Record() GameRecord { return a.record }

// Summary returns the run counters.
func (a *GameAggregator) Summary() RunSummary { return a.summary }

// Table returns the category table being filled.
func (a *GameAggregator) Table() *category.Table { return a.table }
