package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/pgn-ratings/internal/aggregator"
	"fjacquet/pgn-ratings/internal/logging"

	"gopkg.in/yaml.v3"
)

// Supported summary document formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Document is the machine-readable summary of one run.
type Document struct {
	Source     string                `json:"source" yaml:"source"`
	MaxRating  int                   `json:"max_rating" yaml:"max_rating"`
	Categories []CategorySummary     `json:"categories" yaml:"categories"`
	Run        aggregator.RunSummary `json:"run" yaml:"run"`
}

// Generator serializes summary documents.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator. A nil logger falls back to the default logger.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, "generator"),
	}
}

// Generate renders doc as yaml or json.
func (g *Generator) Generate(doc Document, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatYAML:
		return g.generateYAML(doc)
	case FormatJSON:
		return g.generateJSON(doc)
	default:
		return nil, fmt.Errorf("unsupported summary format: %s", format)
	}
}

func (g *Generator) generateJSON(doc Document) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON summary")
		return nil, fmt.Errorf("failed to marshal JSON summary: %w", err)
	}
	return append(out, '\n'), nil
}

func (g *Generator) generateYAML(doc Document) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML summary")
		return nil, fmt.Errorf("failed to marshal YAML summary: %w", err)
	}
	return out, nil
}
