// Package analysis derives qualitative trend state, volume regime and
// support/resistance levels from a bar window and its indicator bundle.
package analysis

import (
	"sort"

	"github.com/rxtech-lab/argo-agents/internal/indicator"
	"github.com/rxtech-lab/argo-agents/internal/types"
)

// Trend is the qualitative primary trend classification.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// VolumeRegime compares recent volume against the preceding baseline.
type VolumeRegime string

const (
	VolumeIncreasing VolumeRegime = "INCREASING"
	VolumeDecreasing VolumeRegime = "DECREASING"
	VolumeNeutral    VolumeRegime = "NEUTRAL"
)

const (
	strengthSeed = 0.5
	strengthStep = 0.1

	// Support/resistance points must be the strict extreme among themselves
	// and two neighbors on each side.
	levelSpan = 2

	recentVolumeWindow   = 5
	priorVolumeWindow    = 15
	volumeShiftThreshold = 0.10
)

// Result is the combined trend/volume analysis for one bar window.
type Result struct {
	Trend      Trend
	Strength   float64
	Support    []float64
	Resistance []float64
	Volume     VolumeRegime
}

// Analyze classifies the primary trend and volume regime and detects
// support/resistance levels for the given window.
func Analyze(bars []types.Bar, bundle indicator.Bundle) Result {
	support, resistance := Levels(bars)

	trend, strength := classifyTrend(bars, bundle)

	return Result{
		Trend:      trend,
		Strength:   strength,
		Support:    support,
		Resistance: resistance,
		Volume:     VolumeTrend(bars),
	}
}

// classifyTrend is BULLISH when price is above every available SMA, the MACD
// crossover is bullish and RSI is not overbought; BEARISH under the mirrored
// condition; otherwise NEUTRAL. The strength score is seeded at 0.5 and
// nudged 0.1 per corroborating signal toward the classified direction,
// clamped to [0,1]. SMAs still in warm-up (value 0) are ignored.
func classifyTrend(bars []types.Bar, bundle indicator.Bundle) (Trend, float64) {
	if len(bars) == 0 {
		return TrendNeutral, strengthSeed
	}

	price := bars[len(bars)-1].Close
	smas := availableSMAs(bundle)

	if len(smas) == 0 {
		return TrendNeutral, strengthSeed
	}

	aboveAll := true
	belowAll := true

	score := strengthSeed

	for _, sma := range smas {
		if price > sma {
			belowAll = false
			score += strengthStep
		} else {
			aboveAll = false
			score -= strengthStep
		}
	}

	switch bundle.MACD.Crossover {
	case indicator.CrossoverBullish:
		score += strengthStep
	case indicator.CrossoverBearish:
		score -= strengthStep
	case indicator.CrossoverNone:
	}

	if bundle.RSI.Oversold {
		score += strengthStep
	}

	if bundle.RSI.Overbought {
		score -= strengthStep
	}

	trend := TrendNeutral

	switch {
	case aboveAll && bundle.MACD.Crossover == indicator.CrossoverBullish && !bundle.RSI.Overbought:
		trend = TrendBullish
	case belowAll && bundle.MACD.Crossover == indicator.CrossoverBearish && !bundle.RSI.Oversold:
		trend = TrendBearish
	}

	strength := score
	if trend == TrendBearish {
		// Mirror the bullish-agreement score so a strongly bearish window
		// still reports high strength.
		strength = 1.0 - score
	}

	return trend, clamp01(strength)
}

// availableSMAs returns the bundle SMAs that are out of warm-up.
func availableSMAs(bundle indicator.Bundle) []float64 {
	smas := make([]float64, 0, 5)

	for _, sma := range []float64{bundle.SMA9, bundle.SMA20, bundle.SMA50, bundle.SMA100, bundle.SMA200} {
		if sma > 0 {
			smas = append(smas, sma)
		}
	}

	return smas
}

// Levels detects support levels as strict 5-point local minima of the lows
// and resistance levels as strict 5-point local maxima of the highs. Levels
// are deduplicated and sorted ascending.
func Levels(bars []types.Bar) (support, resistance []float64) {
	supportSet := make(map[float64]struct{})
	resistanceSet := make(map[float64]struct{})

	for i := levelSpan; i < len(bars)-levelSpan; i++ {
		if isLocalMinimum(bars, i) {
			supportSet[bars[i].Low] = struct{}{}
		}

		if isLocalMaximum(bars, i) {
			resistanceSet[bars[i].High] = struct{}{}
		}
	}

	return sortedLevels(supportSet), sortedLevels(resistanceSet)
}

func isLocalMinimum(bars []types.Bar, i int) bool {
	for offset := 1; offset <= levelSpan; offset++ {
		if bars[i].Low >= bars[i-offset].Low || bars[i].Low >= bars[i+offset].Low {
			return false
		}
	}

	return true
}

func isLocalMaximum(bars []types.Bar, i int) bool {
	for offset := 1; offset <= levelSpan; offset++ {
		if bars[i].High <= bars[i-offset].High || bars[i].High <= bars[i+offset].High {
			return false
		}
	}

	return true
}

func sortedLevels(set map[float64]struct{}) []float64 {
	levels := make([]float64, 0, len(set))
	for level := range set {
		levels = append(levels, level)
	}

	sort.Float64s(levels)

	return levels
}

// VolumeTrend compares the mean of the most recent 5 volumes against the
// mean of the preceding 15. A shift above 10% in either direction sets the
// regime; anything less is NEUTRAL.
func VolumeTrend(bars []types.Bar) VolumeRegime {
	if len(bars) < recentVolumeWindow+priorVolumeWindow {
		return VolumeNeutral
	}

	recentStart := len(bars) - recentVolumeWindow
	priorStart := recentStart - priorVolumeWindow

	recent := meanVolume(bars[recentStart:])
	prior := meanVolume(bars[priorStart:recentStart])

	if prior == 0 {
		return VolumeNeutral
	}

	change := (recent - prior) / prior

	switch {
	case change > volumeShiftThreshold:
		return VolumeIncreasing
	case change < -volumeShiftThreshold:
		return VolumeDecreasing
	default:
		return VolumeNeutral
	}
}

func meanVolume(bars []types.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}

	sum := 0.0
	for _, bar := range bars {
		sum += float64(bar.Volume)
	}

	return sum / float64(len(bars))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
