// Package moe propagates the Census Bureau's published 90% margins of error through
// derived estimates, following the formulas in Appendix A of the ACS General Handbook
// ("Calculating MOEs for Derived Proportions" and "... for Derived Ratios").
//
// Numeric degeneracies never produce errors: null inputs, zero denominators and zero
// estimates propagate as NaN, so one bad cell does not abort a table.
package moe

import "math"

// Z90 is the standard-normal quantile for a 90% confidence interval
const Z90 = 1.645

// Confidence is a confidence level for margins of error
type Confidence int

const (
	// Confidence90 is the level at which margins are published
	Confidence90 Confidence = 90
	// Confidence95 is a 95% confidence level
	Confidence95 Confidence = 95
	// Confidence99 is a 99% confidence level
	Confidence99 Confidence = 99
)

// Z returns the z-factor for a Confidence level, or NaN for an unsupported level
func (c Confidence) Z() float64 {
	switch c {
	case Confidence90:
		return Z90
	case Confidence95:
		return 1.96
	case Confidence99:
		return 2.575
	}
	return math.NaN()
}

// An Operand is an estimate and its 90% margin of error. NaN represents null.
type Operand struct {
	Value float64
	M90   float64
}

// Null is an Operand with neither value nor margin
var Null = Operand{Value: math.NaN(), M90: math.NaN()}

// IsNull returns true iff either the value or the margin is null
func (o Operand) IsNull() bool {
	return math.IsNaN(o.Value) || math.IsNaN(o.M90)
}

// StandardError returns the standard error implied by a 90% margin
func StandardError(m90 float64) float64 {
	return m90 / Z90
}

// MarginAt converts a 90% margin to a margin at another Confidence level
func MarginAt(m90 float64, level Confidence) float64 {
	return StandardError(m90) * level.Z()
}

// RelativeStandardError returns the standard error as a percentage of the estimate.
// It is NaN when the estimate is zero or null.
func RelativeStandardError(value float64, m90 float64) float64 {
	if value == 0 || math.IsNaN(value) {
		return math.NaN()
	}
	return StandardError(m90) / value * 100
}

// Interval returns the lower and upper bounds of the confidence interval around an Operand
func (o Operand) Interval(level Confidence) (lower float64, upper float64) {
	m := MarginAt(o.M90, level)
	return o.Value - m, o.Value + m
}

// Sum adds Operands, assuming independent errors: the margin of the sum is the root of
// the sum of squared margins
func Sum(ops ...Operand) Operand {
	acc := CreateSumAccumulator()
	for _, o := range ops {
		acc.Accumulate(o)
	}
	return acc.Result()
}

// Ratio divides numerator by denominator. When subset is true the numerator is taken to
// be a subset of the denominator (a proportion).
func Ratio(numerator Operand, denominator Operand, subset bool) Operand {
	res, _ := RatioWithFallback(numerator, denominator, subset)
	return res
}

// RatioWithFallback is Ratio, additionally reporting whether the subset formula had a
// negative radicand and the non-subset formula was used instead. The handbook
// recommends that fallback as a conservative estimate of the margin.
func RatioWithFallback(numerator Operand, denominator Operand, subset bool) (Operand, bool) {
	if denominator.Value == 0 {
		return Null, false
	}
	rate := Round3(numerator.Value / denominator.Value)
	n2 := numerator.M90 * numerator.M90
	d2 := rate * rate * denominator.M90 * denominator.M90
	if subset {
		if radicand := n2 - d2; radicand >= 0 {
			return Operand{Value: rate, M90: math.Sqrt(radicand) / denominator.Value}, false
		}
		return Operand{Value: rate, M90: math.Sqrt(n2+d2) / denominator.Value}, true
	}
	return Operand{Value: rate, M90: math.Sqrt(n2+d2) / denominator.Value}, false
}

// Round3 rounds half-to-even to three decimal places
func Round3(v float64) float64 {
	return math.RoundToEven(v*1000) / 1000
}
