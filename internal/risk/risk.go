// Package risk computes volatility metrics, position-risk bounds and a
// weighted composite risk score for a proposed trade over a bar window.
package risk

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-agents/internal/analysis"
	"github.com/rxtech-lab/argo-agents/internal/indicator"
	"github.com/rxtech-lab/argo-agents/internal/types"
)

// Level is the four-level composite risk label.
type Level string

const (
	LevelLow     Level = "LOW"
	LevelMedium  Level = "MEDIUM"
	LevelHigh    Level = "HIGH"
	LevelExtreme Level = "EXTREME"
)

// Composite score weights.
const (
	weightVolatility = 0.25
	weightTrend      = 0.20
	weightVolume     = 0.15
	weightSizing     = 0.25
	weightRiskReward = 0.15
)

// Composite score thresholds.
const (
	levelLowMax    = 0.3
	levelMediumMax = 0.6
	levelHighMax   = 0.8
)

// Kelly fraction cap: never size beyond a quarter of the balance.
const kellyCap = 0.25

// Defaults applied when the caller supplies no history-derived parameters.
const (
	defaultAccountBalance = 10000.0
	defaultWinRate        = 0.55
	defaultAvgWin         = 2.0
	defaultAvgLoss        = 1.0
)

const (
	swingWindow = 20

	atrStopMultiplier   = 1.5
	atrTargetMultiplier = 2.0

	fallbackStopRatio   = 0.95
	fallbackTargetRatio = 1.10

	maxLeverage = 3.0

	// tradingDaysPerYear annualizes the return-series standard deviation.
	tradingDaysPerYear = 252.0
)

// Params are the trade parameters for a risk assessment. Optional fields
// fall back to package defaults.
type Params struct {
	EntryPrice   float64
	PositionSize float64

	StopLoss       optional.Option[float64]
	Target         optional.Option[float64]
	AccountBalance optional.Option[float64]

	WinRate optional.Option[float64]
	AvgWin  optional.Option[float64]
	AvgLoss optional.Option[float64]
}

// VolatilityMetrics are the raw volatility measurements for the window.
type VolatilityMetrics struct {
	// StdDev is the standard deviation of the simple return series.
	StdDev float64
	// Annualized is StdDev scaled by sqrt(252), clamped to [0,1].
	Annualized float64
	ATR        float64
	// SwingPct is the 20-bar high/low swing as a percentage of the low.
	SwingPct float64
}

// TechnicalContext is the trend/volume context folded into the assessment.
type TechnicalContext struct {
	Trend         analysis.Trend
	TrendStrength float64
	Support       []float64
	Resistance    []float64
	Volume        analysis.VolumeRegime
}

// PositionRisk are the sizing bounds for the proposed trade.
type PositionRisk struct {
	// KellyFraction is the capped Kelly criterion fraction of the balance.
	KellyFraction float64
	// MaxPositionValue is KellyFraction applied to the account balance.
	MaxPositionValue float64
	// RiskPerTrade is (entry - stop) * size.
	RiskPerTrade float64
	// SuggestedLeverage is 3x scaled down by volatility, floored at 1.
	SuggestedLeverage float64
	StopLoss          float64
	Target            float64
	RiskReward        float64
}

// Assessment is the full risk evaluation for one proposed trade.
type Assessment struct {
	Volatility VolatilityMetrics
	Technical  TechnicalContext
	Position   PositionRisk
	// Score is the weighted composite in [0,1].
	Score float64
	Level Level
}

// Assess evaluates the proposed trade against the bar window. Stop and
// target default to ATR-scaled offsets snapped to the nearest
// support/resistance level when not supplied.
func Assess(bars []types.Bar, params Params) Assessment {
	bundle := indicator.ComputeBundle(bars)
	technical := analysis.Analyze(bars, bundle)

	volatility := Volatility(bars)

	stop, target := DeriveStopTarget(bars, params.EntryPrice)
	stop = params.StopLoss.TakeOr(stop)
	target = params.Target.TakeOr(target)

	balance := params.AccountBalance.TakeOr(defaultAccountBalance)
	winRate := params.WinRate.TakeOr(defaultWinRate)
	avgWin := params.AvgWin.TakeOr(defaultAvgWin)
	avgLoss := params.AvgLoss.TakeOr(defaultAvgLoss)

	kelly := kellyFraction(winRate, avgWin, avgLoss)

	position := PositionRisk{
		KellyFraction:     kelly,
		MaxPositionValue:  kelly * balance,
		RiskPerTrade:      (params.EntryPrice - stop) * params.PositionSize,
		SuggestedLeverage: suggestedLeverage(volatility.Annualized),
		StopLoss:          stop,
		Target:            target,
		RiskReward:        riskReward(params.EntryPrice, stop, target),
	}

	score := compositeScore(volatility, technical, position, params)

	return Assessment{
		Volatility: volatility,
		Technical: TechnicalContext{
			Trend:         technical.Trend,
			TrendStrength: technical.Strength,
			Support:       technical.Support,
			Resistance:    technical.Resistance,
			Volume:        technical.Volume,
		},
		Position: position,
		Score:    score,
		Level:    levelFor(score),
	}
}

// Volatility computes the return-series standard deviation, ATR and the
// 20-bar swing percentage for the window.
func Volatility(bars []types.Bar) VolatilityMetrics {
	stdDev := returnStdDev(bars)

	return VolatilityMetrics{
		StdDev:     stdDev,
		Annualized: clamp01(stdDev * math.Sqrt(tradingDaysPerYear)),
		ATR:        indicator.ATR(bars, indicator.DefaultATRPeriod),
		SwingPct:   swingPct(bars),
	}
}

// DeriveStopTarget derives a stop below and a target above the entry from
// ATR-scaled offsets, snapped to the nearest support level below entry and
// the nearest resistance level above entry when those are tighter.
func DeriveStopTarget(bars []types.Bar, entry float64) (stop, target float64) {
	atr := indicator.ATR(bars, indicator.DefaultATRPeriod)

	if atr > 0 {
		stop = entry - atrStopMultiplier*atr
		target = entry + atrTargetMultiplier*atr
	} else {
		stop = entry * fallbackStopRatio
		target = entry * fallbackTargetRatio
	}

	support, resistance := analysis.Levels(bars)

	if nearest, ok := nearestBelow(support, entry); ok && nearest > stop {
		stop = nearest
	}

	if nearest, ok := nearestAbove(resistance, entry); ok && nearest < target {
		target = nearest
	}

	return stop, target
}

// kellyFraction is winRate/avgLoss - (1-winRate)/avgWin, clamped to
// [0, kellyCap].
func kellyFraction(winRate, avgWin, avgLoss float64) float64 {
	if avgWin <= 0 || avgLoss <= 0 {
		return 0
	}

	kelly := winRate/avgLoss - (1.0-winRate)/avgWin

	if kelly < 0 {
		return 0
	}

	if kelly > kellyCap {
		return kellyCap
	}

	return kelly
}

func suggestedLeverage(annualizedVol float64) float64 {
	leverage := maxLeverage * math.Max(0, 1.0-annualizedVol)
	if leverage < 1 {
		return 1
	}

	return leverage
}

func riskReward(entry, stop, target float64) float64 {
	riskPerUnit := entry - stop
	if riskPerUnit <= 0 {
		return 0
	}

	return (target - entry) / riskPerUnit
}

// compositeScore aggregates the per-factor risk scores with the fixed
// weights {volatility .25, trend .20, volume .15, sizing .25, r/r .15}.
func compositeScore(volatility VolatilityMetrics, technical analysis.Result, position PositionRisk, params Params) float64 {
	volRisk := volatility.Annualized
	trendRisk := 1.0 - technical.Strength
	volumeRisk := volumeRisk(technical.Volume)

	sizingRisk := 1.0
	if position.MaxPositionValue > 0 {
		sizingRisk = clamp01(params.EntryPrice * params.PositionSize / position.MaxPositionValue)
	}

	rrRisk := clamp01(1.0 - position.RiskReward/3.0)

	score := volRisk*weightVolatility +
		trendRisk*weightTrend +
		volumeRisk*weightVolume +
		sizingRisk*weightSizing +
		rrRisk*weightRiskReward

	return clamp01(score)
}

func volumeRisk(regime analysis.VolumeRegime) float64 {
	switch regime {
	case analysis.VolumeIncreasing:
		return 0.3
	case analysis.VolumeDecreasing:
		return 0.7
	default:
		return 0.5
	}
}

func levelFor(score float64) Level {
	switch {
	case score < levelLowMax:
		return LevelLow
	case score < levelMediumMax:
		return LevelMedium
	case score < levelHighMax:
		return LevelHigh
	default:
		return LevelExtreme
	}
}

func returnStdDev(bars []types.Bar) float64 {
	if len(bars) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(bars)-1)

	for i := 1; i < len(bars); i++ {
		if bars[i-1].Close == 0 {
			continue
		}

		returns = append(returns, bars[i].Close/bars[i-1].Close-1.0)
	}

	if len(returns) == 0 {
		return 0
	}

	avg := 0.0
	for _, r := range returns {
		avg += r
	}

	avg /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - avg
		variance += diff * diff
	}

	return math.Sqrt(variance / float64(len(returns)))
}

func swingPct(bars []types.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}

	window := bars
	if len(window) > swingWindow {
		window = window[len(window)-swingWindow:]
	}

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

	if lowest <= 0 {
		return 0
	}

	return (highest - lowest) / lowest * 100.0
}

func nearestBelow(levels []float64, price float64) (float64, bool) {
	found := false
	nearest := 0.0

	for _, level := range levels {
		if level < price && (!found || level > nearest) {
			nearest = level
			found = true
		}
	}

	return nearest, found
}

func nearestAbove(levels []float64, price float64) (float64, bool) {
	found := false
	nearest := 0.0

	for _, level := range levels {
		if level > price && (!found || level < nearest) {
			nearest = level
			found = true
		}
	}

	return nearest, found
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
