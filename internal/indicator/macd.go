package indicator

import "github.com/rxtech-lab/argo-agents/internal/types"

// MACD periods. The signal line is the EMA of the trailing signal-period
// window of MACD values.
const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
)

// MACDResult holds the MACD line, signal line, histogram and the crossover
// direction derived from the histogram sign.
type MACDResult struct {
	Line      float64
	Signal    float64
	Histogram float64
	Crossover Crossover
}

// MACD computes the Moving Average Convergence Divergence: EMA12 - EMA26,
// with the signal line taken as the EMA9 of the trailing 9 MACD values.
// Returns a zero result with CrossoverNone when fewer than 26 bars exist.
func MACD(bars []types.Bar) MACDResult {
	if len(bars) < macdSlowPeriod {
		return MACDResult{Line: 0, Signal: 0, Histogram: 0, Crossover: CrossoverNone}
	}

	line := macdLine(bars)

	window := make([]float64, 0, macdSignalPeriod)
	for i := len(bars) - macdSignalPeriod; i < len(bars); i++ {
		window = append(window, macdLine(bars[:i+1]))
	}

	signal := emaSeries(window, macdSignalPeriod)
	histogram := line - signal

	crossover := CrossoverNone

	switch {
	case histogram > 0:
		crossover = CrossoverBullish
	case histogram < 0:
		crossover = CrossoverBearish
	}

	return MACDResult{
		Line:      line,
		Signal:    signal,
		Histogram: histogram,
		Crossover: crossover,
	}
}

func macdLine(bars []types.Bar) float64 {
	if len(bars) < macdSlowPeriod {
		return 0
	}

	return EMA(bars, macdFastPeriod) - EMA(bars, macdSlowPeriod)
}
