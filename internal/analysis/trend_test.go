package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-agents/internal/indicator"
	"github.com/rxtech-lab/argo-agents/internal/types"
)

// AnalysisTestSuite is a test suite for trend, volume and level detection
type AnalysisTestSuite struct {
	suite.Suite
}

// TestAnalysisSuite runs the test suite
func TestAnalysisSuite(t *testing.T) {
	suite.Run(t, new(AnalysisTestSuite))
}

func barsFromCloses(closes ...float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	start := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

	for i, c := range closes {
		bars[i] = types.Bar{
			Symbol: "TEST",
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *AnalysisTestSuite) TestLevels() {
	// A V-shape: the trough at index 3 is a strict 5-point minimum, the peak
	// at index 7 a strict 5-point maximum.
	bars := barsFromCloses(105, 103, 101, 99, 101, 103, 105, 107, 105, 103, 101)

	support, resistance := Levels(bars)

	suite.Require().Len(support, 1)
	suite.InDelta(98.5, support[0], 1e-9)

	suite.Require().Len(resistance, 1)
	suite.InDelta(107.5, resistance[0], 1e-9)
}

func (suite *AnalysisTestSuite) TestLevelsMonotonicSeriesHasNone() {
	support, resistance := Levels(barsFromCloses(100, 101, 102, 103, 104, 105))

	suite.Empty(support)
	suite.Empty(resistance)
}

func (suite *AnalysisTestSuite) TestVolumeTrend() {
	tests := []struct {
		name         string
		recentVolume int64
		expected     VolumeRegime
	}{
		{
			name:         "Recent surge is increasing",
			recentVolume: 2000,
			expected:     VolumeIncreasing,
		},
		{
			name:         "Recent drought is decreasing",
			recentVolume: 500,
			expected:     VolumeDecreasing,
		},
		{
			name:         "Within threshold is neutral",
			recentVolume: 1050,
			expected:     VolumeNeutral,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			bars := barsFromCloses(make([]float64, 20)...)
			for i := range bars {
				bars[i].Close = 100
				bars[i].Volume = 1000
			}

			for i := len(bars) - recentVolumeWindow; i < len(bars); i++ {
				bars[i].Volume = tc.recentVolume
			}

			suite.Equal(tc.expected, VolumeTrend(bars))
		})
	}
}

func (suite *AnalysisTestSuite) TestVolumeTrendShortWindowIsNeutral() {
	suite.Equal(VolumeNeutral, VolumeTrend(barsFromCloses(100, 101, 102)))
}

func (suite *AnalysisTestSuite) TestClassifyTrend() {
	bars := barsFromCloses(100, 101, 102)
	price := bars[len(bars)-1].Close

	tests := []struct {
		name     string
		bundle   indicator.Bundle
		trend    Trend
		strength float64
	}{
		{
			name: "Price above all SMAs with bullish MACD",
			bundle: indicator.Bundle{
				SMA9:  price - 1,
				SMA20: price - 2,
				MACD:  indicator.MACDResult{Crossover: indicator.CrossoverBullish},
			},
			trend:    TrendBullish,
			strength: 0.8,
		},
		{
			name: "Overbought RSI blocks bullish",
			bundle: indicator.Bundle{
				SMA9:  price - 1,
				SMA20: price - 2,
				MACD:  indicator.MACDResult{Crossover: indicator.CrossoverBullish},
				RSI:   indicator.RSIResult{Value: 75, Overbought: true},
			},
			trend:    TrendNeutral,
			strength: 0.7,
		},
		{
			name: "Price below all SMAs with bearish MACD",
			bundle: indicator.Bundle{
				SMA9:  price + 1,
				SMA20: price + 2,
				MACD:  indicator.MACDResult{Crossover: indicator.CrossoverBearish},
			},
			trend:    TrendBearish,
			strength: 0.8,
		},
		{
			name: "Mixed SMAs stay neutral",
			bundle: indicator.Bundle{
				SMA9:  price - 1,
				SMA20: price + 1,
				MACD:  indicator.MACDResult{Crossover: indicator.CrossoverBullish},
			},
			trend:    TrendNeutral,
			strength: 0.6,
		},
		{
			name:     "No available SMAs stay neutral",
			bundle:   indicator.Bundle{},
			trend:    TrendNeutral,
			strength: 0.5,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			trend, strength := classifyTrend(bars, tc.bundle)
			suite.Equal(tc.trend, trend)
			suite.InDelta(tc.strength, strength, 1e-9)
		})
	}
}

func (suite *AnalysisTestSuite) TestAnalyze() {
	bars := barsFromCloses(105, 103, 101, 99, 101, 103, 105, 107, 105, 103, 104)
	result := Analyze(bars, indicator.ComputeBundle(bars))

	suite.NotEmpty(result.Support)
	suite.NotEmpty(result.Resistance)
	suite.Equal(VolumeNeutral, result.Volume)
	suite.GreaterOrEqual(result.Strength, 0.0)
	suite.LessOrEqual(result.Strength, 1.0)
}
