// Package parsererror defines the error types shared by the reader, the
// classifier and the histogram accumulators.
package parsererror

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is wrapped by every accumulator range violation.
	ErrOutOfRange = errors.New("value out of histogram range")

	// ErrMalformedTimeControl marks a time control that is not "<initial>+<increment>".
	ErrMalformedTimeControl = errors.New("malformed time control")

	// ErrNoMatchingCategory marks an estimate outside every configured range.
	ErrNoMatchingCategory = errors.New("no matching speed category")

	// ErrUnknownCategory marks a category that does not belong to the table.
	ErrUnknownCategory = errors.New("unknown speed category")
)

// ParseError represents an error while reading the game stream
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: failed to parse %s='%s': %v",
			e.Parser, e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents an invalid category table or configuration
type ValidationError struct {
	Subject string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Subject, e.Reason)
}

// ClassificationError explains why a record could not be given a speed
// category. It is absorbed by the aggregator and only ever logged.
type ClassificationError struct {
	TimeControl string
	Reason      string
	Err         error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("cannot classify time control '%s': %s", e.TimeControl, e.Reason)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// RangeError is raised when a validated rating does not fit the histogram of
// its category. It means the configured maximum is wrong for the data and
// aborts the run.
type RangeError struct {
	Category string
	Value    int
	Max      int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("rating %d for category '%s' is outside [0, %d]", e.Value, e.Category, e.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// IsFatal reports whether err must abort the run. Classification misses are
// the only errors the engine recovers from.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassificationError
	return !errors.As(err, &ce)
}
