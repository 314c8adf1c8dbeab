package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-agents/internal/types"
)

// BollingerBands holds the three bands plus the derived bandwidth and %B.
type BollingerBands struct {
	Upper     float64
	Middle    float64
	Lower     float64
	Bandwidth float64
	PercentB  float64
}

// Bollinger computes Bollinger Bands over the trailing period closes with
// the given standard-deviation multiplier. Bandwidth is (upper-lower)/middle
// and %B is (close-lower)/(upper-lower). Returns an all-zero band when fewer
// than period bars exist.
func Bollinger(bars []types.Bar, period int, stdDevMultiplier float64) BollingerBands {
	if period <= 0 || len(bars) < period {
		return BollingerBands{Upper: 0, Middle: 0, Lower: 0, Bandwidth: 0, PercentB: 0}
	}

	middle := SMA(bars, period)

	variance := 0.0
	for _, bar := range bars[len(bars)-period:] {
		diff := bar.Close - middle
		variance += diff * diff
	}

	stdDev := math.Sqrt(variance / float64(period))

	upper := middle + stdDevMultiplier*stdDev
	lower := middle - stdDevMultiplier*stdDev

	bandwidth := 0.0
	if middle != 0 {
		bandwidth = (upper - lower) / middle
	}

	percentB := 0.0
	if upper != lower {
		percentB = (bars[len(bars)-1].Close - lower) / (upper - lower)
	}

	return BollingerBands{
		Upper:     upper,
		Middle:    middle,
		Lower:     lower,
		Bandwidth: bandwidth,
		PercentB:  percentB,
	}
}
