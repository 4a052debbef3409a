package algo

import (
	"fmt"
	"math"

	"github.com/huangsam/bootup/schema"
)

// inverseErfcOneFifth is erfc^-1(0.2), which places p10 at a score of 0.9.
const inverseErfcOneFifth = 0.9061938024368232

// Score band ceilings just below the next band.
const (
	maxAverageScore = 0.8999999999999999
	maxPoorScore    = 0.49999999999999994
)

// LogNormalScore maps a value to [0, 1] on a log-normal curve where median
// scores 0.5 and p10 scores 0.9. Lower values score higher; value <= 0 scores 1.
// The result is banded so that rounding cannot move a value across the
// p10 or median boundary.
func LogNormalScore(p10, median, value float64) (float64, error) {
	switch {
	case median <= 0 || math.IsNaN(median):
		return 0, fmt.Errorf("%w: median must be greater than zero", schema.ErrInvalidCurve)
	case p10 <= 0 || math.IsNaN(p10):
		return 0, fmt.Errorf("%w: p10 must be greater than zero", schema.ErrInvalidCurve)
	case p10 >= median:
		return 0, fmt.Errorf("%w: p10 must be less than the median", schema.ErrInvalidCurve)
	case math.IsNaN(value):
		return 0, fmt.Errorf("%w: value is not a number", schema.ErrInvalidCurve)
	case value <= 0:
		return 1, nil
	}

	xLogRatio := math.Log(math.Max(math.SmallestNonzeroFloat64, value/median))
	p10LogRatio := -math.Log(math.Max(math.SmallestNonzeroFloat64, p10/median))
	standardizedX := xLogRatio * inverseErfcOneFifth / p10LogRatio
	complementaryPercentile := math.Erfc(standardizedX) / 2

	switch {
	case value <= p10:
		return clamp(complementaryPercentile, 0.9, 1), nil
	case value <= median:
		return clamp(complementaryPercentile, 0.5, maxAverageScore), nil
	default:
		return clamp(complementaryPercentile, 0, maxPoorScore), nil
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
