package store

import (
	"context"

	"github.com/google/uuid"
)

// MockRunSink is an in-memory RunSink for testing.
type MockRunSink struct {
	Runs   []Run
	Closed bool

	// Error flags for testing error conditions
	SaveRunError error
	CloseError   error
}

var _ RunSink = (*MockRunSink)(nil)

// SaveRun records run and returns its ID.
func (m *MockRunSink) SaveRun(_ context.Context, run Run) (string, error) {
	if m.SaveRunError != nil {
		return "", m.SaveRunError
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	m.Runs = append(m.Runs, run)
	return run.ID, nil
}

// Close marks the sink closed.
func (m *MockRunSink) Close() error {
	m.Closed = true
	return m.CloseError
}
