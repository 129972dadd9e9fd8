// Package stats computes rolling summary statistics over a time-filtered
// window of sensor readings. Summaries are recomputed fresh every
// orchestrator tick and handed to consumers by value.
package stats

import (
	"math"
	"sort"

	"github.com/JuanjoFuchs/hwinfo-tui/sensor"
)

// Summary holds the five windowed statistics for one sensor. HasData is the
// uniform "no-data" marker: when false, none of the numeric fields are
// meaningful and they must never be confused with a valid zero.
type Summary struct {
	Sensor  string
	Last    float64
	Min     float64
	Max     float64
	Mean    float64
	P95     float64
	Samples int
	HasData bool
}

// Compute summarizes the given window of readings for one sensor. Missing
// readings are excluded from every statistic; a window that is empty or
// holds only missing readings yields the uniform no-data summary.
func Compute(name string, window []sensor.Reading) Summary {
	values := make([]float64, 0, len(window))
	last := math.NaN()
	for _, r := range window {
		if r.Missing {
			continue
		}
		values = append(values, r.Value)
		last = r.Value
	}

	if len(values) == 0 {
		return Summary{Sensor: name}
	}

	minVal := values[0]
	maxVal := values[0]
	sum := 0.0
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		sum += v
	}

	return Summary{
		Sensor:  name,
		Last:    last,
		Min:     minVal,
		Max:     maxVal,
		Mean:    sum / float64(len(values)),
		P95:     Percentile95(values),
		Samples: len(values),
		HasData: true,
	}
}

// Percentile95 computes the 95th percentile with linear interpolation at
// rank r = 0.95*(n-1): the result interpolates between the sorted values at
// floor(r) and ceil(r), weighted by the fractional part of r. With one value
// the result is that value. The caller guarantees a non-empty slice.
//
// The rank formula is fixed; a nearest-rank percentile would produce
// different, non-reproducible results.
func Percentile95(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	r := 0.95 * float64(len(sorted)-1)
	lo := int(math.Floor(r))
	hi := int(math.Ceil(r))
	if lo == hi {
		return sorted[lo]
	}

	frac := r - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
