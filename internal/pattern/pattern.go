// Package pattern implements candlestick pattern recognition over an ordered
// bar sequence. Detection is pure and deterministic: the input is never
// mutated and at most one pattern is assigned per bar, chosen by a fixed
// priority order.
package pattern

import "github.com/rxtech-lab/argo-agents/internal/types"

// Single-bar pattern geometry thresholds.
const (
	// dojiBodyRatio: the body must be under 10% of the full range.
	dojiBodyRatio = 0.10
	// hammerShadowRatio: the dominant shadow must exceed 2x the body.
	hammerShadowRatio = 2.0
	// hammerOppositeRatio: the opposite shadow must stay under 0.5x the body.
	hammerOppositeRatio = 0.5
)

// twoBarLookbackStart is the first index at which two-bar patterns are
// evaluated, guaranteeing a stable lookback.
const twoBarLookbackStart = 2

// Detect returns a copy of bars annotated with recognized candlestick
// patterns. Already-labeled bars keep their label, which makes Detect
// idempotent. Priority is fixed: Doji, Hammer, Shooting Star, Bullish
// Engulfing, Bearish Engulfing, Bullish Harami, Bearish Harami. The first
// match wins and no match leaves the bar unlabeled.
func Detect(bars []types.Bar) []types.Bar {
	annotated := make([]types.Bar, len(bars))
	copy(annotated, bars)

	for i := range annotated {
		if annotated[i].Pattern != "" {
			continue
		}

		pattern, direction := classify(annotated, i)
		if pattern == "" {
			continue
		}

		annotated[i].Pattern = pattern
		annotated[i].PatternDirection = direction
	}

	return annotated
}

// classify evaluates the priority-ordered pattern checks for the bar at i.
func classify(bars []types.Bar, i int) (types.PatternType, types.PatternDirection) {
	bar := bars[i]

	switch {
	case isDoji(bar):
		return types.PatternDoji, types.PatternDirectionNeutral
	case isHammer(bar):
		return types.PatternHammer, types.PatternDirectionBullish
	case isShootingStar(bar):
		return types.PatternShootingStar, types.PatternDirectionBearish
	}

	if i < twoBarLookbackStart {
		return "", ""
	}

	previous := bars[i-1]

	switch {
	case isBullishEngulfing(bar, previous):
		return types.PatternBullishEngulfing, types.PatternDirectionBullish
	case isBearishEngulfing(bar, previous):
		return types.PatternBearishEngulfing, types.PatternDirectionBearish
	case isBullishHarami(bar, previous):
		return types.PatternBullishHarami, types.PatternDirectionBullish
	case isBearishHarami(bar, previous):
		return types.PatternBearishHarami, types.PatternDirectionBearish
	}

	return "", ""
}

func isDoji(bar types.Bar) bool {
	barRange := bar.Range()
	if barRange <= 0 {
		return false
	}

	return bar.Body() < barRange*dojiBodyRatio
}

func isHammer(bar types.Bar) bool {
	body := bar.Body()
	if body <= 0 {
		return false
	}

	return bar.LowerShadow() > body*hammerShadowRatio && bar.UpperShadow() < body*hammerOppositeRatio
}

func isShootingStar(bar types.Bar) bool {
	body := bar.Body()
	if body <= 0 {
		return false
	}

	return bar.UpperShadow() > body*hammerShadowRatio && bar.LowerShadow() < body*hammerOppositeRatio
}

// isBullishEngulfing: previous bar is bearish, current bar is bullish and its
// body fully engulfs and exceeds the previous body.
func isBullishEngulfing(current, previous types.Bar) bool {
	return previous.IsBearish() &&
		current.IsBullish() &&
		current.Open < previous.Close &&
		current.Close > previous.Open
}

func isBearishEngulfing(current, previous types.Bar) bool {
	return previous.IsBullish() &&
		current.IsBearish() &&
		current.Open > previous.Close &&
		current.Close < previous.Open
}

// isBullishHarami: previous bar is bearish and the current bullish body is
// fully contained within the previous body.
func isBullishHarami(current, previous types.Bar) bool {
	return previous.IsBearish() &&
		current.IsBullish() &&
		current.Open > previous.Close &&
		current.Close < previous.Open
}

func isBearishHarami(current, previous types.Bar) bool {
	return previous.IsBullish() &&
		current.IsBearish() &&
		current.Open < previous.Close &&
		current.Close > previous.Open
}
