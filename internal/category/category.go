// Package category holds the fixed, ordered table of speed categories and the
// rating histogram each category owns for the duration of a run.
package category

import (
	"fmt"
	"strings"

	"fjacquet/pgn-ratings/internal/histogram"
	"fjacquet/pgn-ratings/internal/parsererror"
)

// DefaultMaxRating is the largest rating a histogram accepts.
const DefaultMaxRating = 3500

// Category is a named half-open range [Low, High) of estimated game length
// in seconds.
type Category struct {
	Name string `json:"name" yaml:"name"`
	Low  int    `json:"low" yaml:"low"`
	High int    `json:"high" yaml:"high"`
}

// Contains reports whether seconds falls inside [Low, High).
func (c Category) Contains(seconds int) bool {
	return seconds >= c.Low && seconds < c.High
}

func (c Category) String() string {
	return fmt.Sprintf("%s[%d,%d)", c.Name, c.Low, c.High)
}

// Config is the startup configuration of a Table.
type Config struct {
	Categories []Category
	MaxRating  int
}

// DefaultConfig returns the five standard categories from ultrabullet to
// classical and the default rating ceiling.
func DefaultConfig() Config {
	return Config{
		Categories: []Category{
			{Name: "ultrabullet", Low: 0, High: 30},
			{Name: "bullet", Low: 30, High: 180},
			{Name: "blitz", Low: 180, High: 480},
			{Name: "rapid", Low: 480, High: 1500},
			{Name: "classical", Low: 1500, High: 21600},
		},
		MaxRating: DefaultMaxRating,
	}
}

// Validate checks names and ranges: names are non-empty and unique, ranges
// are non-empty, non-negative, ascending and pairwise disjoint.
func (cfg Config) Validate() error {
	if len(cfg.Categories) == 0 {
		return &parsererror.ValidationError{Subject: "category table", Reason: "no categories configured"}
	}
	if cfg.MaxRating < 0 {
		return &parsererror.ValidationError{Subject: "category table", Reason: fmt.Sprintf("negative maximum rating %d", cfg.MaxRating)}
	}

	seen := make(map[string]bool, len(cfg.Categories))
	for i, c := range cfg.Categories {
		name := strings.TrimSpace(c.Name)
		switch {
		case name == "":
			return &parsererror.ValidationError{Subject: "category table", Reason: fmt.Sprintf("category %d has no name", i)}
		case seen[name]:
			return &parsererror.ValidationError{Subject: "category table", Reason: fmt.Sprintf("duplicate category '%s'", name)}
		case c.Low < 0:
			return &parsererror.ValidationError{Subject: c.Name, Reason: fmt.Sprintf("negative lower bound %d", c.Low)}
		case c.Low >= c.High:
			return &parsererror.ValidationError{Subject: c.Name, Reason: fmt.Sprintf("empty range [%d,%d)", c.Low, c.High)}
		}
		if i > 0 {
			prev := cfg.Categories[i-1]
			if c.Low < prev.High {
				return &parsererror.ValidationError{Subject: c.Name, Reason: fmt.Sprintf("range overlaps or precedes '%s'", prev.Name)}
			}
		}
		seen[name] = true
	}
	return nil
}

// Table owns one histogram per category.
type Table struct {
	categories []Category
	histograms []*histogram.Histogram
	index      map[string]int
	maxRating  int
}

// NewTable validates cfg and allocates an empty histogram per category.
func NewTable(cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		categories: make([]Category, len(cfg.Categories)),
		histograms: make([]*histogram.Histogram, len(cfg.Categories)),
		index:      make(map[string]int, len(cfg.Categories)),
		maxRating:  cfg.MaxRating,
	}
	copy(t.categories, cfg.Categories)

	for i, c := range t.categories {
		h, err := histogram.New(cfg.MaxRating)
		if err != nil {
			return nil, fmt.Errorf("category '%s': %w", c.Name, err)
		}
		t.histograms[i] = h
		t.index[c.Name] = i
	}
	return t, nil
}

// MaxRating returns the histogram ceiling shared by every category.
func (t *Table) MaxRating() int {
	return t.maxRating
}

// Categories returns the categories in table order.
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Lookup returns the first category whose range contains seconds.
func (t *Table) Lookup(seconds int) (Category, bool) {
	for _, c := range t.categories {
		if c.Contains(seconds) {
			return c, true
		}
	}
	return Category{}, false
}

// ByName returns the category with the given name.
func (t *Table) ByName(name string) (Category, bool) {
	i, ok := t.index[name]
	if !ok {
		return Category{}, false
	}
	return t.categories[i], true
}

// Histogram returns the accumulator owned by c.
func (t *Table) Histogram(c Category) (*histogram.Histogram, bool) {
	i, ok := t.indexOf(c)
	if !ok {
		return nil, false
	}
	return t.histograms[i], true
}

// Increment records value in the histogram of c. A value outside
// [0, MaxRating] returns a *parsererror.RangeError.
func (t *Table) Increment(c Category, value int) error {
	i, ok := t.indexOf(c)
	if !ok {
		return fmt.Errorf("%w: %s", parsererror.ErrUnknownCategory, c)
	}
	if err := t.histograms[i].Increment(value); err != nil {
		return &parsererror.RangeError{Category: c.Name, Value: value, Max: t.maxRating}
	}
	return nil
}

// Reset empties every histogram.
func (t *Table) Reset() {
	for _, h := range t.histograms {
		h.Reset()
	}
}

func (t *Table) indexOf(c Category) (int, bool) {
	i, ok := t.index[c.Name]
	if !ok || t.categories[i] != c {
		return 0, false
	}
	return i, true
}
