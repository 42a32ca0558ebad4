// Package slicer translates position specifications such as "2,3,4,5" or "6:15" into
// extractors which pull the corresponding fields out of a parsed record.
package slicer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sif/acs/errors"
)

// A Slicer extracts a fixed sequence of 0-based positions from a record
type Slicer struct {
	spec      string
	positions []int
	max       int
}

// Parse builds a Slicer from a specification of comma-separated single positions
// and/or start:end ranges. Positions are 0-based, ranges are end-exclusive, and
// extraction follows specification order.
func Parse(spec string) (*Slicer, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("empty slice specification")
	}
	s := &Slicer{spec: spec, max: -1}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("slice specification %q has an empty element", spec)
		}
		if bounds := strings.SplitN(part, ":", 2); len(bounds) == 2 {
			start, err := parsePosition(bounds[0])
			if err != nil {
				return nil, fmt.Errorf("slice specification %q: %w", spec, err)
			}
			end, err := parsePosition(bounds[1])
			if err != nil {
				return nil, fmt.Errorf("slice specification %q: %w", spec, err)
			}
			if end < start {
				return nil, fmt.Errorf("slice specification %q: range %d:%d ends before it starts", spec, start, end)
			}
			for p := start; p < end; p++ {
				s.add(p)
			}
			continue
		}
		p, err := parsePosition(part)
		if err != nil {
			return nil, fmt.Errorf("slice specification %q: %w", spec, err)
		}
		s.add(p)
	}
	if len(s.positions) == 0 {
		return nil, fmt.Errorf("slice specification %q selects no positions", spec)
	}
	return s, nil
}

// MustParse is like Parse, but panics on error
func MustParse(spec string) *Slicer {
	s, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Range builds the Slicer for length cells starting at the 1-based position start
func Range(start int, length int) (*Slicer, error) {
	if start < 1 || length < 1 {
		return nil, fmt.Errorf("invalid range start=%d length=%d", start, length)
	}
	return Parse(fmt.Sprintf("%d:%d", start-1, start+length-1))
}

// Positions builds a Slicer from explicit positions
func Positions(positions ...int) (*Slicer, error) {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = strconv.Itoa(p)
	}
	return Parse(strings.Join(parts, ","))
}

// Concat composes two Slicers. The result extracts a's positions followed by b's.
func Concat(a *Slicer, b *Slicer) *Slicer {
	res := &Slicer{spec: a.spec + "," + b.spec, max: -1}
	for _, p := range a.positions {
		res.add(p)
	}
	for _, p := range b.positions {
		res.add(p)
	}
	return res
}

func parsePosition(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	if p < 0 {
		return 0, fmt.Errorf("negative position %d", p)
	}
	return p, nil
}

func (s *Slicer) add(p int) {
	s.positions = append(s.positions, p)
	if p > s.max {
		s.max = p
	}
}

// Len returns the number of elements extracted by this Slicer
func (s *Slicer) Len() int {
	return len(s.positions)
}

// Width returns the minimum record width this Slicer can be applied to
func (s *Slicer) Width() int {
	return s.max + 1
}

// Positions returns a copy of the positions extracted by this Slicer, in order
func (s *Slicer) Positions() []int {
	res := make([]int, len(s.positions))
	copy(res, s.positions)
	return res
}

// String returns the specification this Slicer was built from
func (s *Slicer) String() string {
	return s.spec
}

// Slice extracts this Slicer's positions from record. A record narrower than Width()
// produces an IncompatibleRecordError.
func (s *Slicer) Slice(record []string) ([]string, error) {
	if len(record) < s.Width() {
		return nil, errors.IncompatibleRecordError{Want: s.Width(), Got: len(record)}
	}
	res := make([]string, len(s.positions))
	for i, p := range s.positions {
		res[i] = record[p]
	}
	return res, nil
}
