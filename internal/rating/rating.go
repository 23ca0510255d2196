// Package rating extracts player ratings from raw PGN header values.
package rating

import (
	"strconv"
	"strings"

	"fjacquet/pgn-ratings/internal/logging"
)

// DefaultUnknownMarkers are the suffixes that mark a rating as unknown.
var DefaultUnknownMarkers = []string{"?"}

// Rating is a parsed rating. Valid is false when the side has no usable rating.
type Rating struct {
	Value int
	Valid bool
}

// Of returns a valid Rating holding v.
func Of(v int) Rating {
	return Rating{Value: v, Valid: true}
}

// Parser turns raw header values into ratings.
type Parser struct {
	logger         logging.Logger
	unknownMarkers []string
}

// Option configures a Parser.
type Option func(*Parser)

// WithUnknownMarkers replaces the set of suffixes treated as "rating unknown".
func WithUnknownMarkers(markers ...string) Option {
	return func(p *Parser) {
		p.unknownMarkers = markers
	}
}

// NewParser creates a Parser. A nil logger falls back to the default logger.
func NewParser(logger logging.Logger, opts ...Option) *Parser {
	p := &Parser{
		logger:         logging.OrDefault(logger),
		unknownMarkers: DefaultUnknownMarkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse validates raw and returns the rating it holds. Values ending in an
// unknown marker, negative values and values without digits are not usable.
func (p *Parser) Parse(raw string) Rating {
	cleaned, ok := p.clean(raw)
	if !ok {
		p.logger.Debug("Rating not usable",
			logging.Field{Key: logging.FieldRaw, Value: raw})
		return Rating{}
	}

	v, err := strconv.Atoi(cleaned)
	if err != nil {
		p.logger.Debug("Rating not usable",
			logging.Field{Key: logging.FieldRaw, Value: raw},
			logging.Field{Key: logging.FieldReason, Value: err.Error()})
		return Rating{}
	}

	if cleaned != raw {
		p.logger.Debug("Cleaned rating",
			logging.Field{Key: logging.FieldRaw, Value: raw},
			logging.Field{Key: logging.FieldRating, Value: v})
	}
	return Of(v)
}

func (p *Parser) clean(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || strings.HasPrefix(s, "-") {
		return "", false
	}
	for _, marker := range p.unknownMarkers {
		if marker != "" && strings.HasSuffix(s, marker) {
			return "", false
		}
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return "", false
	}
	return digits, true
}

var defaultParser = &Parser{logger: logging.NopLogger{}, unknownMarkers: DefaultUnknownMarkers}

// Parse parses raw with the default markers and no diagnostics.
func Parse(raw string) Rating {
	return defaultParser.Parse(raw)
}
