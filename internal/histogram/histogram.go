// Package histogram provides an exact, bounded frequency table of integer
// values with summary statistics and an ascending bin iterator.
package histogram

import (
	"fmt"
	"math"

	"fjacquet/pgn-ratings/internal/parsererror"
)

// Bin is one non-empty histogram bucket.
type Bin struct {
	Value int    `csv:"value" json:"value" yaml:"value"`
	Count uint64 `csv:"count" json:"count" yaml:"count"`
}

// Histogram counts occurrences of integers in [0, max].
// The zero value is not usable; create one with New.
type Histogram struct {
	counts []uint64
	total  uint64
}

// New returns an empty histogram accepting values in [0, max].
func New(max int) (*Histogram, error) {
	if max < 0 {
		return nil, fmt.Errorf("histogram maximum must be non-negative, got %d", max)
	}
	return &Histogram{counts: make([]uint64, max+1)}, nil
}

// Max returns the largest value the histogram accepts.
func (h *Histogram) Max() int {
	return len(h.counts) - 1
}

// Increment records one occurrence of v.
func (h *Histogram) Increment(v int) error {
	if v < 0 || v >= len(h.counts) {
		return fmt.Errorf("%w: %d not in [0, %d]", parsererror.ErrOutOfRange, v, h.Max())
	}
	h.counts[v]++
	h.total++
	return nil
}

// Count returns how often v was recorded. Values outside the range report 0.
func (h *Histogram) Count(v int) uint64 {
	if v < 0 || v >= len(h.counts) {
		return 0
	}
	return h.counts[v]
}

// Total returns the number of recorded values.
func (h *Histogram) Total() uint64 {
	return h.total
}

// Reset discards every recorded value.
func (h *Histogram) Reset() {
	clear(h.counts)
	h.total = 0
}

// Mean returns the arithmetic mean, or false when the histogram is empty.
func (h *Histogram) Mean() (float64, bool) {
	if h.total == 0 {
		return 0, false
	}
	var sum float64
	for v, c := range h.counts {
		if c != 0 {
			sum += float64(v) * float64(c)
		}
	}
	return sum / float64(h.total), true
}

// StdDev returns the population standard deviation, or false when the
// histogram is empty.
func (h *Histogram) StdDev() (float64, bool) {
	mean, ok := h.Mean()
	if !ok {
		return 0, false
	}
	var sq float64
	for v, c := range h.counts {
		if c != 0 {
			d := float64(v) - mean
			sq += d * d * float64(c)
		}
	}
	return math.Sqrt(sq / float64(h.total)), true
}

// MinValue returns the smallest recorded value.
func (h *Histogram) MinValue() (int, bool) {
	for v, c := range h.counts {
		if c != 0 {
			return v, true
		}
	}
	return 0, false
}

// MaxValue returns the largest recorded value.
func (h *Histogram) MaxValue() (int, bool) {
	for v := len(h.counts) - 1; v >= 0; v-- {
		if h.counts[v] != 0 {
			return v, true
		}
	}
	return 0, false
}

// Percentile returns the nearest-rank percentile for p in (0, 100].
func (h *Histogram) Percentile(p float64) (int, bool) {
	if h.total == 0 || p <= 0 || p > 100 {
		return 0, false
	}
	rank := uint64(math.Ceil(p * float64(h.total) / 100))
	if rank == 0 {
		rank = 1
	}
	var seen uint64
	for v, c := range h.counts {
		seen += c
		if seen >= rank {
			return v, true
		}
	}
	return h.Max(), true
}

// Iter returns a fresh iterator over the non-empty bins in ascending order.
func (h *Histogram) Iter() *Iterator {
	return &Iterator{h: h}
}

// Bins drains a fresh iterator into a slice.
func (h *Histogram) Bins() []Bin {
	var bins []Bin
	it := h.Iter()
	for b, ok := it.Next(); ok; b, ok = it.Next() {
		bins = append(bins, b)
	}
	return bins
}

// Iterator walks the non-empty bins of a histogram once. It cannot be
// rewound; call Histogram.Iter again for another pass.
type Iterator struct {
	h    *Histogram
	next int
}

// Next returns the next non-empty bin, or false when the walk is over.
func (it *Iterator) Next() (Bin, bool) {
	for it.next < len(it.h.counts) {
		v := it.next
		it.next++
		if c := it.h.counts[v]; c != 0 {
			return Bin{Value: v, Count: c}, true
		}
	}
	return Bin{}, false
}
