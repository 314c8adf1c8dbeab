package indicator

import "github.com/rxtech-lab/argo-agents/internal/types"

// SMA returns the simple moving average of the trailing period closes.
// Returns the warm-up default 0 when fewer than period bars exist.
func SMA(bars []types.Bar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	sum := 0.0
	for _, bar := range bars[len(bars)-period:] {
		sum += bar.Close
	}

	return sum / float64(period)
}

// EMA returns the exponential moving average of the closes, seeded with the
// SMA of the first period closes and rolled forward with the standard
// 2/(period+1) multiplier. Returns 0 when fewer than period bars exist.
func EMA(bars []types.Bar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	return emaSeries(closes, period)
}

// emaSeries computes the EMA over a raw value series. Callers guarantee
// len(values) >= period and period > 0.
func emaSeries(values []float64, period int) float64 {
	ema := mean(values[:period])

	multiplier := 2.0 / (float64(period) + 1.0)
	for _, v := range values[period:] {
		ema = v*multiplier + ema*(1.0-multiplier)
	}

	return ema
}
