package indicator

import "github.com/rxtech-lab/argo-agents/internal/types"

// RSI thresholds and warm-up default.
const (
	RSIOverboughtThreshold = 70.0
	RSIOversoldThreshold   = 30.0
	rsiNeutral             = 50.0
)

// RSIResult holds the RSI value with its threshold flags.
type RSIResult struct {
	Value      float64
	Overbought bool
	Oversold   bool
}

// RSI computes the Relative Strength Index using Wilder's smoothing: the
// initial average gain/loss is taken over the first period deltas, then
// rolled forward with avg = (avg*(period-1) + delta) / period. Returns the
// neutral default 50 with both flags false when fewer than period+1 bars
// exist.
func RSI(bars []types.Bar, period int) RSIResult {
	if period <= 0 || len(bars) < period+1 {
		return RSIResult{Value: rsiNeutral, Overbought: false, Oversold: false}
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= period; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close

		gain := 0.0
		loss := 0.0

		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	// A flat series has no gains and no losses; report neutral.
	if avgGain == 0 && avgLoss == 0 {
		return RSIResult{Value: rsiNeutral, Overbought: false, Oversold: false}
	}

	value := 100.0
	if avgLoss > 0 {
		rs := avgGain / avgLoss
		value = 100.0 - 100.0/(1.0+rs)
	}

	return RSIResult{
		Value:      value,
		Overbought: value >= RSIOverboughtThreshold,
		Oversold:   value <= RSIOversoldThreshold,
	}
}
