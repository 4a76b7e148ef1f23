package ranking

import (
	"math"
	"sort"
)

// meanStd returns the mean and sample standard deviation (ddof=1) over non-NaN values.
// ok is false when either statistic is undefined or not finite. A column whose present
// values are all equal reports a standard deviation of exactly zero.
func meanStd(values []float64) (mean, std float64, ok bool) {
	n := 0
	sum := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		n++
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if n == 0 {
		return math.NaN(), math.NaN(), false
	}
	mean = sum / float64(n)
	if lo == hi {
		return lo, 0, !math.IsInf(lo, 0)
	}
	if n < 2 {
		return mean, math.NaN(), false
	}
	ss := 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
	}
	std = math.Sqrt(ss / float64(n-1))
	if math.IsNaN(mean) || math.IsInf(mean, 0) || math.IsNaN(std) || math.IsInf(std, 0) {
		return mean, std, false
	}
	return mean, std, true
}

// quantile computes the q-th quantile of the non-NaN values with linear interpolation
// between closest ranks. ok is false when no values are present.
func quantile(values []float64, q float64) (float64, bool) {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return math.NaN(), false
	}
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], true
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, true
}
