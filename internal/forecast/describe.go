package forecast

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Confidence interval quantiles (central 95%).
const (
	ciLowerQuantile = 0.025
	ciUpperQuantile = 0.975
)

// Describe summarises raw terminal return multiples, one per simulated trial,
// into a Distribution. Quartiles and interval bounds interpolate between the
// two nearest ranks; the standard deviation is the sample (n-1) estimate.
func Describe(samples []float64) (Distribution, error) {
	if len(samples) < 2 {
		return nil, &InputError{Field: "samples", Reason: fmt.Sprintf("need at least 2 trials, got %d", len(samples))}
	}
	for i, v := range samples {
		if !finite(v) {
			return nil, &InputError{Field: "samples", Reason: fmt.Sprintf("trial %d is not finite", i)}
		}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	q := func(p float64) float64 {
		return quantile(p, sorted)
	}

	d := make(Distribution, DistributionLen)
	d[IdxCount] = float64(len(sorted))
	d[IdxMean] = stat.Mean(sorted, nil)
	d[IdxStd] = stat.StdDev(sorted, nil)
	d[IdxMin] = floats.Min(sorted)
	d[IdxP25] = q(0.25)
	d[IdxP50] = q(0.50)
	d[IdxP75] = q(0.75)
	d[IdxMax] = floats.Max(sorted)
	d[IdxCILower] = q(ciLowerQuantile)
	d[IdxCIUpper] = q(ciUpperQuantile)
	return d, nil
}

// quantile interpolates linearly at rank h = (n-1)p of sorted data.
// stat.LinInterp uses a different rank and puts the median of 1..10 at 5.
func quantile(p float64, sorted []float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}
