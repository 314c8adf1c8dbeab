package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-agents/internal/types"
)

// ATR computes the Average True Range over the trailing period. The true
// range of a bar is the maximum of high-low, |high-prevClose| and
// |low-prevClose|. Returns the warm-up default 0 when fewer than period+1
// bars exist.
func ATR(bars []types.Bar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 0
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += trueRange(bars[i], bars[i-1])
	}

	return sum / float64(period)
}

func trueRange(current, previous types.Bar) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}
