package indicator

import "github.com/rxtech-lab/argo-agents/internal/types"

// Stochastic thresholds and warm-up default.
const (
	StochasticOverboughtThreshold = 80.0
	StochasticOversoldThreshold   = 20.0
	stochasticNeutral             = 50.0
)

// StochasticResult holds %K, %D and the threshold flags.
type StochasticResult struct {
	K          float64
	D          float64
	Overbought bool
	Oversold   bool
}

// Stochastic computes the stochastic oscillator: %K is the position of the
// latest close within the trailing period's high/low range, %D is the
// smoothing-bar SMA of %K. Returns the neutral default 50/50 with both flags
// false when fewer than period bars exist.
func Stochastic(bars []types.Bar, period, smoothing int) StochasticResult {
	if period <= 0 || smoothing <= 0 || len(bars) < period {
		return StochasticResult{K: stochasticNeutral, D: stochasticNeutral, Overbought: false, Oversold: false}
	}

	k := stochasticK(bars, period)

	kValues := make([]float64, 0, smoothing)
	for offset := smoothing - 1; offset >= 0; offset-- {
		window := bars[:len(bars)-offset]
		if len(window) < period {
			continue
		}

		kValues = append(kValues, stochasticK(window, period))
	}

	return StochasticResult{
		K:          k,
		D:          mean(kValues),
		Overbought: k >= StochasticOverboughtThreshold,
		Oversold:   k <= StochasticOversoldThreshold,
	}
}

func stochasticK(bars []types.Bar, period int) float64 {
	window := bars[len(bars)-period:]

	lowest := window[0].Low
	highest := window[0].High

	for _, bar := range window[1:] {
		if bar.Low < lowest {
			lowest = bar.Low
		}

		if bar.High > highest {
			highest = bar.High
		}
	}

	if highest == lowest {
		return stochasticNeutral
	}

	return (bars[len(bars)-1].Close - lowest) / (highest - lowest) * 100.0
}
