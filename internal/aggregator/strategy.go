package aggregator

import (
	"fmt"
	"strings"

	"fjacquet/pgn-ratings/internal/category"
	"fjacquet/pgn-ratings/internal/parsererror"
	"fjacquet/pgn-ratings/internal/speed"
)

// Strategy names accepted by NewStrategies.
const (
	StrategyTimeControl = "time_control"
	StrategyEventName   = "event_name"
)

// ResolveStrategy derives a speed category from the headers of one record.
// Each strategy implements one approach; the aggregator tries them in order.
type ResolveStrategy interface {
	// Resolve returns the category, whether one was found, and the reason
	// when it was not. The error is always a recoverable miss.
	Resolve(rec GameRecord) (category.Category, bool, error)

	// Name returns the name of this strategy for logging.
	Name() string
}

// TimeControlStrategy classifies the TimeControl header.
type TimeControlStrategy struct {
	classifier *speed.Classifier
}

// NewTimeControlStrategy creates a TimeControlStrategy.
func NewTimeControlStrategy(classifier *speed.Classifier) *TimeControlStrategy {
	return &TimeControlStrategy{classifier: classifier}
}

// Resolve implements ResolveStrategy.
func (s *TimeControlStrategy) Resolve(rec GameRecord) (category.Category, bool, error) {
	if !rec.HasTimeControl {
		return category.Category{}, false, &parsererror.ClassificationError{
			Reason: "no TimeControl header",
			Err:    parsererror.ErrMalformedTimeControl,
		}
	}
	c, err := s.classifier.Classify(rec.TimeControl)
	if err != nil {
		return category.Category{}, false, err
	}
	return c, true, nil
}

// Name implements ResolveStrategy.
func (s *TimeControlStrategy) Name() string { return StrategyTimeControl }

// EventNameStrategy picks the first category whose name appears in the Event
// header, e.g. "Rated Blitz game" resolves to blitz.
type EventNameStrategy struct {
	table *category.Table
}

// NewEventNameStrategy creates an EventNameStrategy.
func NewEventNameStrategy(table *category.Table) *EventNameStrategy {
	return &EventNameStrategy{table: table}
}

// Resolve implements ResolveStrategy.
func (s *EventNameStrategy) Resolve(rec GameRecord) (category.Category, bool, error) {
	event := strings.ToLower(rec.Event)
	for _, c := range s.table.Categories() {
		if strings.Contains(event, strings.ToLower(c.Name)) {
			return c, true, nil
		}
	}
	return category.Category{}, false, &parsererror.ClassificationError{
		TimeControl: rec.TimeControl,
		Reason:      fmt.Sprintf("event '%s' names no category", rec.Event),
		Err:         parsererror.ErrNoMatchingCategory,
	}
}

// Name implements ResolveStrategy.
func (s *EventNameStrategy) Name() string { return StrategyEventName }

// NewStrategies builds the named strategies in order.
func NewStrategies(names []string, table *category.Table) ([]ResolveStrategy, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one classification strategy is required")
	}
	classifier := speed.NewClassifier(table)
	strategies := make([]ResolveStrategy, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case StrategyTimeControl:
			strategies = append(strategies, NewTimeControlStrategy(classifier))
		case StrategyEventName:
			strategies = append(strategies, NewEventNameStrategy(table))
		default:
			return nil, fmt.Errorf("unknown classification strategy: %s", name)
		}
	}
	return strategies, nil
}

// StrategyResult records one strategy attempt for the miss diagnostic.
type StrategyResult struct {
	Strategy string
	Found    bool
	Error    error
}

// StrategyResults aggregates the attempts made for one record.
type StrategyResults []StrategyResult

// Summary returns a compact description such as
// "time_control:cannot classify time control '-': ..., event_name:no_match".
func (sr StrategyResults) Summary() string {
	parts := make([]string, 0, len(sr))
	for _, r := range sr {
		status := "no_match"
		switch {
		case r.Found:
			status = "success"
		case r.Error != nil:
			status = r.Error.Error()
		}
		parts = append(parts, r.Strategy+":"+status)
	}
	return strings.Join(parts, ", ")
}
