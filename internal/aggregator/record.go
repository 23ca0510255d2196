package aggregator

import (
	"fjacquet/pgn-ratings/internal/category"
	"fjacquet/pgn-ratings/internal/rating"
)

// State is the position of the aggregator in the per-record protocol.
type State int

const (
	AwaitingRecord State = iota
	CollectingHeaders
	RecordComplete
)

func (s State) String() string {
	switch s {
	case AwaitingRecord:
		return "awaiting_record"
	case CollectingHeaders:
		return "collecting_headers"
	case RecordComplete:
		return "record_complete"
	default:
		return "unknown"
	}
}

// GameRecord is the working state of the record being read.
type GameRecord struct {
	Category    *category.Category
	WhiteRating rating.Rating
	BlackRating rating.Rating
	Rated       bool

	Event          string
	TimeControl    string
	HasTimeControl bool
}

func newGameRecord() GameRecord {
	return GameRecord{Rated: true}
}

// RunSummary holds the counters of a whole run.
type RunSummary struct {
	Games          int `json:"games" yaml:"games"`
	Skipped        int `json:"skipped" yaml:"skipped"`
	Casual         int `json:"casual" yaml:"casual"`
	Committed      int `json:"committed" yaml:"committed"`
	MissingRatings int `json:"missing_ratings" yaml:"missing_ratings"`
}

// Classified returns the number of games that resolved to a category.
func (s RunSummary) Classified() int {
	return s.Games - s.Skipped
}
