package frame

import (
	"fmt"

	"github.com/go-sif/acs/moe"
	"github.com/go-sif/acs/schema"
)

// SumM sums the referenced columns row by row, returning the sums and their margins
func (f *Frame) SumM(refs ...OperandRef) (value []float64, m90 []float64, err error) {
	if len(refs) == 0 {
		return nil, nil, fmt.Errorf("sum of no columns")
	}
	accs := make([]*moe.SumAccumulator, f.rows)
	for i := range accs {
		accs[i] = moe.CreateSumAccumulator()
	}
	for _, ref := range refs {
		v, m, err := f.Resolve(ref)
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < f.rows; i++ {
			accs[i].Accumulate(moe.Operand{Value: v.data[i], M90: m.data[i]})
		}
	}
	value, m90 = make([]float64, f.rows), make([]float64, f.rows)
	for i, acc := range accs {
		res := acc.Result()
		value[i], m90[i] = res.Value, res.M90
	}
	return value, m90, nil
}

// AddSumM adds the columns name and name_m90, holding the sum of the referenced columns
func (f *Frame) AddSumM(name string, refs ...OperandRef) error {
	value, m90, err := f.SumM(refs...)
	if err != nil {
		return err
	}
	return f.addPair(name, value, m90)
}

// SumColGroup sums the contiguous group of columns at positions first through last,
// inclusive
func (f *Frame) SumColGroup(first int, last int) (value []float64, m90 []float64, err error) {
	if last < first {
		return nil, nil, fmt.Errorf("column group %d-%d is empty", first, last)
	}
	refs := make([]OperandRef, 0, last-first+1)
	for p := first; p <= last; p++ {
		refs = append(refs, Positional(p))
	}
	return f.SumM(refs...)
}

// AddRSE adds a NAME_rse column for each named column, holding relative standard errors
func (f *Frame) AddRSE(names ...string) error {
	for _, name := range names {
		s, err := f.Column(name)
		if err != nil {
			return err
		}
		rse, err := s.RSE()
		if err != nil {
			return err
		}
		if err := f.SetSeries(name+"_rse", rse.data); err != nil {
			return err
		}
	}
	return nil
}

// Ratio divides n by d row by row. With subset, n is taken to be a subset of d; rows
// where the subset formula fails fall back to the ratio formula. Fallbacks counts those
// rows.
func (f *Frame) Ratio(n OperandRef, d OperandRef, subset bool) (value []float64, m90 []float64, fallbacks int, err error) {
	nv, nm, err := f.Resolve(n)
	if err != nil {
		return nil, nil, 0, err
	}
	dv, dm, err := f.Resolve(d)
	if err != nil {
		return nil, nil, 0, err
	}
	value, m90 = make([]float64, f.rows), make([]float64, f.rows)
	for i := 0; i < f.rows; i++ {
		res, fellBack := moe.RatioWithFallback(
			moe.Operand{Value: nv.data[i], M90: nm.data[i]},
			moe.Operand{Value: dv.data[i], M90: dm.data[i]},
			subset,
		)
		value[i], m90[i] = res.Value, res.M90
		if fellBack {
			fallbacks++
		}
	}
	return value, m90, fallbacks, nil
}

// AddRatio adds the columns name and name_m90, holding the ratio of n to d
func (f *Frame) AddRatio(name string, n OperandRef, d OperandRef, subset bool) error {
	value, m90, _, err := f.Ratio(n, d, subset)
	if err != nil {
		return err
	}
	return f.addPair(name, value, m90)
}

func (f *Frame) addPair(name string, value []float64, m90 []float64) error {
	if err := f.SetSeries(name, value); err != nil {
		return err
	}
	return f.SetSeries(name+schema.MarginSuffix, m90)
}

// MeltRow is one (geography, variable) cell of a melted Frame
type MeltRow struct {
	GVid     string
	Variable string
	Value    float64
	M90      float64
}

// Melt converts the data columns of this Frame into long form: one MeltRow per row and
// estimate column, variable by variable. Estimates without a margin column are skipped.
func (f *Frame) Melt() ([]MeltRow, error) {
	gvids, err := f.Text(schema.GVidColumn)
	if err != nil {
		return nil, err
	}
	var res []MeltRow
	for _, name := range f.order {
		s, ok := f.series[name]
		if !ok || s.IsMargin() {
			continue
		}
		m, ok := f.series[name+schema.MarginSuffix]
		if !ok {
			continue
		}
		for i := 0; i < f.rows; i++ {
			res = append(res, MeltRow{GVid: gvids[i], Variable: name, Value: s.data[i], M90: m.data[i]})
		}
	}
	return res, nil
}
