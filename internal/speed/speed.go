// Package speed derives a speed category from a PGN TimeControl value.
package speed

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fjacquet/pgn-ratings/internal/category"
	"fjacquet/pgn-ratings/internal/parsererror"
)

// ExpectedMoves is the number of moves assumed when turning an increment into
// game time.
const ExpectedMoves = 40

// TimeControl is a parsed "<initial>+<increment>" clock, both in seconds.
type TimeControl struct {
	Initial   int
	Increment int
}

// EstimatedSeconds returns the expected game length for one player.
// Clocks whose estimate does not fit in an int report false.
func (tc TimeControl) EstimatedSeconds() (int, bool) {
	if tc.Initial < 0 || tc.Increment < 0 {
		return 0, false
	}
	if tc.Increment > (math.MaxInt-tc.Initial)/ExpectedMoves {
		return 0, false
	}
	return tc.Initial + ExpectedMoves*tc.Increment, true
}

func (tc TimeControl) String() string {
	return fmt.Sprintf("%d+%d", tc.Initial, tc.Increment)
}

// ParseTimeControl parses "<initial>+<increment>". Anything else, including
// the "-" used for untimed games, is a *parsererror.ClassificationError
// wrapping parsererror.ErrMalformedTimeControl.
func ParseTimeControl(raw string) (TimeControl, error) {
	s := strings.TrimSpace(raw)
	initial, increment, found := strings.Cut(s, "+")
	if !found {
		return TimeControl{}, malformed(raw, "expected <initial>+<increment>")
	}

	ini, err := parseSeconds(initial)
	if err != nil {
		return TimeControl{}, malformed(raw, "initial time: "+err.Error())
	}
	inc, err := parseSeconds(increment)
	if err != nil {
		return TimeControl{}, malformed(raw, "increment: "+err.Error())
	}
	return TimeControl{Initial: ini, Increment: inc}, nil
}

func parseSeconds(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("'%s' is not a non-negative integer", s)
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("'%s' is out of range", s)
	}
	return v, nil
}

func malformed(raw, reason string) error {
	return &parsererror.ClassificationError{
		TimeControl: raw,
		Reason:      reason,
		Err:         parsererror.ErrMalformedTimeControl,
	}
}

// Classifier maps time controls onto a category table.
type Classifier struct {
	table *category.Table
}

// NewClassifier creates a Classifier over table.
func NewClassifier(table *category.Table) *Classifier {
	return &Classifier{table: table}
}

// Classify returns the category whose range contains the estimated length of
// raw. Misses are reported as *parsererror.ClassificationError.
func (c *Classifier) Classify(raw string) (category.Category, error) {
	tc, err := ParseTimeControl(raw)
	if err != nil {
		return category.Category{}, err
	}
	return c.ClassifyTimeControl(raw, tc)
}

// ClassifyTimeControl is Classify for an already parsed clock.
func (c *Classifier) ClassifyTimeControl(raw string, tc TimeControl) (category.Category, error) {
	seconds, ok := tc.EstimatedSeconds()
	if !ok {
		return category.Category{}, &parsererror.ClassificationError{
			TimeControl: raw,
			Reason:      "estimated length overflows",
			Err:         parsererror.ErrNoMatchingCategory,
		}
	}
	cat, ok := c.table.Lookup(seconds)
	if !ok {
		return category.Category{}, &parsererror.ClassificationError{
			TimeControl: raw,
			Reason:      fmt.Sprintf("estimated %ds is outside every category", seconds),
			Err:         parsererror.ErrNoMatchingCategory,
		}
	}
	return cat, nil
}
