// Package indicator provides pure technical-indicator functions computed on
// demand over an ascending bar sequence. Every function returns a neutral
// warm-up default instead of an error when fewer bars than the requested
// period are available; callers must tolerate degraded output during warm-up.
package indicator

import "github.com/rxtech-lab/argo-agents/internal/types"

// Crossover is the MACD crossover direction derived from the histogram sign.
type Crossover string

const (
	CrossoverBullish Crossover = "BULLISH"
	CrossoverBearish Crossover = "BEARISH"
	CrossoverNone    Crossover = "NONE"
)

// Default periods for the indicator bundle.
const (
	DefaultRSIPeriod           = 14
	DefaultATRPeriod           = 14
	DefaultBollingerPeriod     = 20
	DefaultBollingerStdDev     = 2.0
	DefaultStochasticPeriod    = 14
	DefaultStochasticSmoothing = 3
)

// Bundle holds the full indicator snapshot for one bar window. Values are
// derived, never cached and never mutated.
type Bundle struct {
	SMA9   float64
	SMA20  float64
	SMA50  float64
	SMA100 float64
	SMA200 float64

	EMA9  float64
	EMA20 float64
	EMA50 float64

	RSI        RSIResult
	MACD       MACDResult
	ATR        float64
	Bollinger  BollingerBands
	Stochastic StochasticResult
}

// ComputeBundle recomputes the complete indicator bundle from the given bar
// window.
func ComputeBundle(bars []types.Bar) Bundle {
	return Bundle{
		SMA9:       SMA(bars, 9),
		SMA20:      SMA(bars, 20),
		SMA50:      SMA(bars, 50),
		SMA100:     SMA(bars, 100),
		SMA200:     SMA(bars, 200),
		EMA9:       EMA(bars, 9),
		EMA20:      EMA(bars, 20),
		EMA50:      EMA(bars, 50),
		RSI:        RSI(bars, DefaultRSIPeriod),
		MACD:       MACD(bars),
		ATR:        ATR(bars, DefaultATRPeriod),
		Bollinger:  Bollinger(bars, DefaultBollingerPeriod, DefaultBollingerStdDev),
		Stochastic: Stochastic(bars, DefaultStochasticPeriod, DefaultStochasticSmoothing),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
