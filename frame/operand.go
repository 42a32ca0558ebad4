package frame

import (
	"fmt"
	"strings"

	"github.com/go-sif/acs/errors"
)

// OperandRef identifies an estimate and its margin of error. It is one of Named,
// Positional, Explicit, Values or *Series.
type OperandRef interface {
	isOperandRef()
}

// Named refers to an estimate column by name; its margin is the NAME_m90 column
type Named string

func (Named) isOperandRef() {}

// Positional refers to the estimate column whose name ends in the 3-digit, zero-padded
// position, e.g. Positional(2) finds B01001002
type Positional int

func (Positional) isOperandRef() {}

// Explicit names both the estimate column and the margin column
type Explicit struct {
	Value  string
	Margin string
}

func (Explicit) isOperandRef() {}

// Values supplies estimates and margins directly
type Values struct {
	Value []float64
	M90   []float64
}

func (Values) isOperandRef() {}

// Resolve finds the estimate and margin Series an OperandRef refers to
func (f *Frame) Resolve(ref OperandRef) (value *Series, m90 *Series, err error) {
	switch r := ref.(type) {
	case Named:
		value, err = f.Column(string(r))
		if err != nil {
			return nil, nil, err
		}
		m90, err = value.M90()
	case Positional:
		value, err = f.positional(int(r))
		if err != nil {
			return nil, nil, err
		}
		m90, err = value.M90()
	case Explicit:
		value, err = f.Column(r.Value)
		if err != nil {
			return nil, nil, err
		}
		m90, err = f.Column(r.Margin)
	case Values:
		if len(r.Value) != f.rows || len(r.M90) != f.rows {
			return nil, nil, fmt.Errorf("values have lengths %d and %d, frame has %d rows", len(r.Value), len(r.M90), f.rows)
		}
		value, m90 = NewSeries("value", r.Value), NewSeries("m90", r.M90)
	case *Series:
		if r.Len() != f.rows {
			return nil, nil, fmt.Errorf("series %s has length %d, frame has %d rows", r.Name, r.Len(), f.rows)
		}
		value = r
		m90, err = r.M90()
	default:
		return nil, nil, fmt.Errorf("unsupported operand reference %T", ref)
	}
	if err != nil {
		return nil, nil, err
	}
	return value, m90, nil
}

// positional returns the first estimate column whose name ends in the padded position
func (f *Frame) positional(pos int) (*Series, error) {
	suffix := fmt.Sprintf("%03d", pos)
	for _, name := range f.order {
		s, ok := f.series[name]
		if !ok || s.IsMargin() {
			continue
		}
		if strings.HasSuffix(name, suffix) {
			return s, nil
		}
	}
	return nil, errors.LookupError{Kind: "column position", Key: suffix}
}
