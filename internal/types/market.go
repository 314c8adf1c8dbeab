package types

import "time"

// PatternType identifies a candlestick pattern recognized on a single bar.
type PatternType string

const (
	PatternDoji             PatternType = "doji"
	PatternHammer           PatternType = "hammer"
	PatternShootingStar     PatternType = "shooting_star"
	PatternBullishEngulfing PatternType = "bullish_engulfing"
	PatternBearishEngulfing PatternType = "bearish_engulfing"
	PatternBullishHarami    PatternType = "bullish_harami"
	PatternBearishHarami    PatternType = "bearish_harami"
)

// PatternDirection is the bias implied by a recognized pattern.
type PatternDirection string

const (
	PatternDirectionBullish PatternDirection = "bullish"
	PatternDirectionBearish PatternDirection = "bearish"
	PatternDirectionNeutral PatternDirection = "neutral"
)

// Bar is a single OHLCV sample for a symbol at a point in time.
// OHLCV fields are immutable once produced; Pattern and PatternDirection
// are derived annotations attached by the pattern detector.
type Bar struct {
	Symbol string    `yaml:"symbol" json:"symbol"`
	Time   time.Time `yaml:"time" json:"time"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume int64     `yaml:"volume" json:"volume"`

	// Pattern is empty when no candlestick pattern was recognized.
	Pattern          PatternType      `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	PatternDirection PatternDirection `yaml:"pattern_direction,omitempty" json:"pattern_direction,omitempty"`
}

// Body returns the absolute size of the bar's real body.
func (b Bar) Body() float64 {
	if b.Close >= b.Open {
		return b.Close - b.Open
	}

	return b.Open - b.Close
}

// Range returns the full high-low range of the bar.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// UpperShadow returns the distance between the high and the top of the body.
func (b Bar) UpperShadow() float64 {
	if b.Close >= b.Open {
		return b.High - b.Close
	}

	return b.High - b.Open
}

// LowerShadow returns the distance between the bottom of the body and the low.
func (b Bar) LowerShadow() float64 {
	if b.Close >= b.Open {
		return b.Open - b.Low
	}

	return b.Close - b.Low
}

// IsBullish reports whether the bar closed above its open.
func (b Bar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish reports whether the bar closed below its open.
func (b Bar) IsBearish() bool {
	return b.Close < b.Open
}
