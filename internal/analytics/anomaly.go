package analytics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// DefaultAnomalyThreshold is the relative deviation, in percent of the series
// mean, above which a reading is flagged.
const DefaultAnomalyThreshold = 20.0

// DetectAnomalies flags readings that deviate from the series mean by more
// than DefaultAnomalyThreshold percent.
func DetectAnomalies(readings []float64) []bool {
	return DetectAnomaliesThreshold(readings, DefaultAnomalyThreshold)
}

// DetectAnomaliesThreshold flags readings whose deviation from the mean of the
// whole series is strictly greater than threshold percent of that mean.
//
// Fewer than two readings never produce a flag. When the mean is exactly zero
// the relative deviation of any non-zero reading is infinite, so non-zero
// readings are flagged and zero readings are not.
func DetectAnomaliesThreshold(readings []float64, threshold float64) []bool {
	flags := make([]bool, len(readings))
	for i, dev := range DeviationPercent(readings) {
		flags[i] = dev > threshold
	}
	return flags
}

// DeviationPercent returns |r - mean| / |mean| * 100 for every reading. The
// result is all zeros for fewer than two readings and +Inf for non-zero
// readings around a zero mean.
func DeviationPercent(readings []float64) []float64 {
	devs := make([]float64, len(readings))
	if len(readings) < 2 {
		return devs
	}

	baseline, err := stats.Mean(stats.Float64Data(readings))
	if err != nil {
		return devs
	}

	for i, r := range readings {
		switch {
		case baseline != 0:
			devs[i] = math.Abs((r-baseline)/baseline) * 100
		case r != 0:
			devs[i] = math.Inf(1)
		}
	}
	return devs
}

// Baseline returns the arithmetic mean used as the anomaly reference point,
// or 0 for an empty series.
func Baseline(readings []float64) float64 {
	mean, err := stats.Mean(stats.Float64Data(readings))
	if err != nil {
		return 0
	}
	return mean
}

// AnomalyScore maps a deviation onto [0, 1] relative to the threshold: 0.5 at
// the threshold, approaching 1 as the deviation grows.
func AnomalyScore(deviationPct, threshold float64) float64 {
	if deviationPct <= 0 || threshold <= 0 {
		return 0
	}
	if math.IsInf(deviationPct, 1) {
		return 1
	}
	ratio := deviationPct / threshold
	return ratio / (1 + ratio)
}
