package frame

import (
	"math"
	"strings"

	"github.com/go-sif/acs/errors"
	"github.com/go-sif/acs/moe"
	"github.com/go-sif/acs/schema"
)

// A Series is a named column of numbers. NaN represents a null value. A Series
// obtained from a Frame can find its margin of error column within that Frame.
type Series struct {
	Name  string
	data  []float64
	frame *Frame
}

// NewSeries returns a detached Series. The data slice is not copied.
func NewSeries(name string, data []float64) *Series {
	return &Series{Name: name, data: data}
}

func (s *Series) isOperandRef() {}

// Len returns the length of this Series
func (s *Series) Len() int {
	return len(s.data)
}

// At returns the i-th value of this Series
func (s *Series) At(i int) float64 {
	return s.data[i]
}

// Data returns a copy of the values of this Series
func (s *Series) Data() []float64 {
	res := make([]float64, len(s.data))
	copy(res, s.data)
	return res
}

// IsMargin returns true iff this Series holds margins of error
func (s *Series) IsMargin() bool {
	return strings.HasSuffix(s.Name, schema.MarginSuffix)
}

// M90 returns the 90% margins of this Series: itself if it is a margin column,
// otherwise the NAME_m90 column of its Frame
func (s *Series) M90() (*Series, error) {
	if s.IsMargin() {
		return s, nil
	}
	if s.frame == nil {
		return nil, errors.LookupError{Kind: "column", Key: s.Name + schema.MarginSuffix}
	}
	return s.frame.Column(s.Name + schema.MarginSuffix)
}

// Value returns the estimates of this Series: itself if it is an estimate column,
// otherwise the estimate column its margins belong to
func (s *Series) Value() (*Series, error) {
	if !s.IsMargin() {
		return s, nil
	}
	name := strings.TrimSuffix(s.Name, schema.MarginSuffix)
	if s.frame == nil {
		return nil, errors.LookupError{Kind: "column", Key: name}
	}
	return s.frame.Column(name)
}

func (s *Series) mapMargins(name string, fn func(m90 float64) float64) (*Series, error) {
	m, err := s.M90()
	if err != nil {
		return nil, err
	}
	out := make([]float64, m.Len())
	for i, v := range m.data {
		out[i] = fn(v)
	}
	return NewSeries(name, out), nil
}

// SE returns the standard errors implied by the margins of this Series
func (s *Series) SE() (*Series, error) {
	return s.mapMargins(s.Name+"_se", moe.StandardError)
}

// M95 returns margins at 95% confidence
func (s *Series) M95() (*Series, error) {
	return s.mapMargins(s.Name+"_m95", func(m90 float64) float64 {
		return moe.MarginAt(m90, moe.Confidence95)
	})
}

// M99 returns margins at 99% confidence
func (s *Series) M99() (*Series, error) {
	return s.mapMargins(s.Name+"_m99", func(m90 float64) float64 {
		return moe.MarginAt(m90, moe.Confidence99)
	})
}

// RSE returns relative standard errors, as percentages of the estimates
func (s *Series) RSE() (*Series, error) {
	v, err := s.Value()
	if err != nil {
		return nil, err
	}
	m, err := s.M90()
	if err != nil {
		return nil, err
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = moe.RelativeStandardError(v.data[i], m.data[i])
	}
	return NewSeries(v.Name+"_rse", out), nil
}

// nulls returns a Series of n NaN values
func nulls(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = math.NaN()
	}
	return res
}
