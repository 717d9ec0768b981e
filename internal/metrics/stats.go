package metrics

import (
	"math"
	"sort"
)

// summary holds the descriptive statistics shared by several calculators.
type summary struct {
	Mean   float64
	Median float64
	Std    float64
	Min    float64
	Max    float64
	P95    float64
	Count  int
}

// summarize computes descriptive statistics over values. Returns a zero
// summary when values is empty; callers check Count before using it.
func summarize(values []float64) summary {
	n := len(values)
	if n == 0 {
		return summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return summary{
		Mean:   mean(sorted),
		Median: median(sorted),
		Std:    sampleStd(sorted),
		Min:    sorted[0],
		Max:    sorted[n-1],
		P95:    percentile(sorted, 0.95),
		Count:  n,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median expects values sorted ascending.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// sampleStd is the n-1 standard deviation. A single observation has no
// spread, so it reports 0 rather than NaN.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// percentile linearly interpolates between the two nearest ranks.
// Expects values sorted ascending and p in [0, 1].
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func ptr(v float64) *float64 {
	return &v
}
