package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// SignalAction is the proposed trade direction.
type SignalAction string

const (
	SignalActionBuy  SignalAction = "BUY"
	SignalActionSell SignalAction = "SELL"
)

// SignalSource identifies the agent that produced a signal.
type SignalSource string

const (
	SignalSourceAnalysis SignalSource = "ANALYSIS"
	SignalSourceNews     SignalSource = "NEWS"
	SignalSourceTicker   SignalSource = "TICKER"
	SignalSourceTrading  SignalSource = "TRADING"
)

// SignalDetail carries the optional analysis context behind a signal.
type SignalDetail struct {
	Sentiment string   `yaml:"sentiment" json:"sentiment"`
	KeyEvents []string `yaml:"key_events" json:"keyEvents"`
	Reasoning string   `yaml:"reasoning" json:"reasoning"`
	// ImpactMagnitude is the predicted move in percent.
	ImpactMagnitude float64 `yaml:"impact_magnitude" json:"impactMagnitude"`
	// ImpactTimeframe is one of "immediate", "short-term" or "long-term".
	ImpactTimeframe string `yaml:"impact_timeframe" json:"impactTimeframe"`
}

// TradeSignal is a proposed BUY/SELL action produced by the analysis or news
// agents and consumed exactly once by the trading agent. Signals are
// ephemeral and never persisted by this package.
type TradeSignal struct {
	ID         string       `yaml:"id" json:"id"`
	Symbol     string       `yaml:"symbol" json:"symbol" validate:"required"`
	Action     SignalAction `yaml:"action" json:"action" validate:"required,oneof=BUY SELL"`
	Price      float64      `yaml:"price" json:"price" validate:"gte=0"`
	Confidence float64      `yaml:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	Time       time.Time    `yaml:"time" json:"time"`
	Source     SignalSource `yaml:"source" json:"source" validate:"required,oneof=ANALYSIS NEWS TICKER TRADING"`
	// Detail is present when the producing agent has analysis context to share.
	Detail optional.Option[SignalDetail] `yaml:"detail" json:"detail"`
}

// Validate validates the TradeSignal struct.
func (s *TradeSignal) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSignal, "invalid trade signal", err)
	}

	return nil
}
