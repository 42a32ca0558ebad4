package moe

import "math"

// SumAccumulator sums Operands incrementally. Partial sums computed independently
// (e.g. one per jurisdiction) can be merged before taking the Result.
type SumAccumulator struct {
	sum       float64
	sumSquare float64
	count     int
}

// CreateSumAccumulator returns a new, empty SumAccumulator
func CreateSumAccumulator() *SumAccumulator {
	return &SumAccumulator{}
}

// Accumulate adds an Operand to this SumAccumulator
func (a *SumAccumulator) Accumulate(o Operand) {
	a.sum += o.Value
	a.sumSquare += o.M90 * o.M90
	a.count++
}

// Merge merges another SumAccumulator into this one
func (a *SumAccumulator) Merge(o *SumAccumulator) {
	a.sum += o.sum
	a.sumSquare += o.sumSquare
	a.count += o.count
}

// Count returns the number of Operands accumulated
func (a *SumAccumulator) Count() int {
	return a.count
}

// Result returns the sum and its propagated margin
func (a *SumAccumulator) Result() Operand {
	return Operand{Value: a.sum, M90: math.Sqrt(a.sumSquare)}
}
