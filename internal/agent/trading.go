package agent

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/risk"
	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// TradingAgent maintains the simulated portfolio: cash plus at most one
// position per symbol. It has no timer of its own; it reacts to signals and
// price updates forwarded by the orchestrator. Every trade mutates cash and
// the position map under one lock so partial trades are never observable.
type TradingAgent struct {
	baseAgent

	portfolioMu     chan struct{} // binary semaphore guarding cash and positions
	cash            decimal.Decimal
	positions       map[string]*types.Position
	windows         map[string][]types.Bar
	maxPositionSize float64
	minConfidence   float64
}

// NewTradingAgent creates a trading agent with the configured starting cash.
func NewTradingAgent(cfg TradingSettings, log *logger.Logger) *TradingAgent {
	agent := &TradingAgent{
		baseAgent:       newBaseAgent("trading", types.AgentTypeTrading, time.Minute, log),
		portfolioMu:     make(chan struct{}, 1),
		cash:            decimal.NewFromFloat(cfg.InitialCash),
		positions:       make(map[string]*types.Position),
		windows:         make(map[string][]types.Bar),
		maxPositionSize: cfg.MaxPositionSize,
		minConfidence:   cfg.MinConfidence,
	}
	agent.portfolioMu <- struct{}{}

	return agent
}

// Start implements Agent. The trading agent is event-driven, so Start only
// transitions it to ACTIVE.
func (t *TradingAgent) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Status == types.AgentStatusActive {
		return errors.Newf(errors.ErrCodeAgentAlreadyActive, "agent %s is already active", t.state.Name)
	}

	t.state.Status = types.AgentStatusActive
	t.state.LastUpdated = time.Now()

	t.log.Info("agent started", zap.String("agent", t.state.Name))

	return nil
}

// Stop implements Agent.
func (t *TradingAgent) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Status = types.AgentStatusInactive
	t.state.LastUpdated = time.Now()

	t.log.Info("agent stopped", zap.String("agent", t.state.Name))

	return nil
}

// SetMinConfidence adjusts the signal confidence gate.
func (t *TradingAgent) SetMinConfidence(minConfidence float64) {
	t.lockPortfolio()
	defer t.unlockPortfolio()

	t.minConfidence = minConfidence
}

// SetMaxPositionSize adjusts the per-symbol exposure cap.
func (t *TradingAgent) SetMaxPositionSize(maxPositionSize float64) {
	t.lockPortfolio()
	defer t.unlockPortfolio()

	t.maxPositionSize = maxPositionSize
}

// HandleSignal applies a trade signal to the portfolio. Signals below the
// confidence gate and sells with no open position are discarded without an
// event. A signal that cannot be applied (invalid, no funds) transitions the
// agent to ERROR and publishes an error event; the next successful trade
// restores ACTIVE.
func (t *TradingAgent) HandleSignal(signal types.TradeSignal) {
	if signal.Confidence < t.confidenceGate() {
		t.log.Debug("signal below confidence gate, discarded",
			zap.String("symbol", signal.Symbol),
			zap.String("action", string(signal.Action)),
			zap.Float64("confidence", signal.Confidence),
		)

		return
	}

	if err := t.execute(signal); err != nil {
		t.failCycle(err)

		return
	}

	t.mu.Lock()
	t.state.Status = types.AgentStatusActive
	t.state.LastUpdated = time.Now()
	t.mu.Unlock()
}

// HandlePriceUpdate refreshes the mark price of any open position for the
// symbol and extends the bar window used for risk assessment.
func (t *TradingAgent) HandlePriceUpdate(update PriceUpdate) {
	t.lockPortfolio()
	defer t.unlockPortfolio()

	window := t.windows[update.Symbol]

	if n := len(window); n > 0 && window[n-1].Time.Equal(update.Bar.Time) {
		window[n-1] = update.Bar
	} else {
		window = append(window, update.Bar)
	}

	if len(window) > DefaultTradingBarWindowLength {
		window = window[len(window)-DefaultTradingBarWindowLength:]
	}

	t.windows[update.Symbol] = window

	if position, ok := t.positions[update.Symbol]; ok {
		position.CurrentPrice = update.Bar.Close
		position.UnrealizedPnL = unrealizedPnL(*position)
	}
}

// UpdatePortfolioValue refreshes mark prices and the risk windows from a
// batch of bars, one per symbol.
func (t *TradingAgent) UpdatePortfolioValue(bars []types.Bar) {
	for _, bar := range bars {
		t.HandlePriceUpdate(PriceUpdate{Symbol: bar.Symbol, Bar: bar})
	}
}

// Positions returns a snapshot of all open positions.
func (t *TradingAgent) Positions() []types.Position {
	t.lockPortfolio()
	defer t.unlockPortfolio()

	snapshot := make([]types.Position, 0, len(t.positions))
	for _, position := range t.positions {
		snapshot = append(snapshot, *position)
	}

	return snapshot
}

// Position returns the open position for the symbol, if any.
func (t *TradingAgent) Position(symbol string) (types.Position, bool) {
	t.lockPortfolio()
	defer t.unlockPortfolio()

	position, ok := t.positions[symbol]
	if !ok {
		return types.Position{}, false
	}

	return *position, true
}

// Cash returns the current cash balance.
func (t *TradingAgent) Cash() float64 {
	t.lockPortfolio()
	defer t.unlockPortfolio()

	f, _ := t.cash.Float64()

	return f
}

// PortfolioValue returns cash plus the market value of all open positions.
func (t *TradingAgent) PortfolioValue() float64 {
	t.lockPortfolio()
	defer t.unlockPortfolio()

	total := t.cash

	for _, position := range t.positions {
		total = total.Add(decimal.NewFromInt(position.Quantity).Mul(decimal.NewFromFloat(position.CurrentPrice)))
	}

	f, _ := total.Float64()

	return f
}

func (t *TradingAgent) execute(signal types.TradeSignal) error {
	if err := signal.Validate(); err != nil {
		return err
	}

	if signal.Price <= 0 {
		return errors.Newf(errors.ErrCodeSignalRejected, "signal for %s has no usable price", signal.Symbol)
	}

	t.lockPortfolio()
	defer t.unlockPortfolio()

	switch signal.Action {
	case types.SignalActionBuy:
		return t.buy(signal)
	case types.SignalActionSell:
		return t.sell(signal)
	default:
		return errors.Newf(errors.ErrCodeSignalRejected, "unsupported action %s", signal.Action)
	}
}

// buy opens or extends the symbol's position. Sizing spends the smaller of
// available cash and the remaining per-symbol exposure headroom, floored to
// whole shares. The average price is the quantity-weighted fold of the old
// position and the new lot.
func (t *TradingAgent) buy(signal types.TradeSignal) error {
	position := t.positions[signal.Symbol]

	exposure := decimal.Zero
	if position != nil {
		exposure = decimal.NewFromInt(position.Quantity).Mul(decimal.NewFromFloat(position.AveragePrice))
	}

	headroom := decimal.NewFromFloat(t.maxPositionSize).Sub(exposure)
	budget := decimal.Min(t.cash, headroom)

	price := decimal.NewFromFloat(signal.Price)

	quantity := budget.Div(price).IntPart()
	if quantity <= 0 {
		return errors.Newf(errors.ErrCodeInsufficientFunds, "cannot afford any %s at %v", signal.Symbol, signal.Price)
	}

	cost := price.Mul(decimal.NewFromInt(quantity))

	if position == nil {
		position = &types.Position{
			Symbol:       signal.Symbol,
			Quantity:     quantity,
			AveragePrice: signal.Price,
			CurrentPrice: signal.Price,
		}
		t.positions[signal.Symbol] = position
	} else {
		oldCost := decimal.NewFromInt(position.Quantity).Mul(decimal.NewFromFloat(position.AveragePrice))
		newQuantity := position.Quantity + quantity
		average := oldCost.Add(cost).Div(decimal.NewFromInt(newQuantity))

		position.Quantity = newQuantity
		position.AveragePrice, _ = average.Float64()
		position.CurrentPrice = signal.Price
	}

	t.cash = t.cash.Sub(cost)
	position.UnrealizedPnL = unrealizedPnL(*position)

	t.logAssessment(signal, float64(quantity))
	t.publishTrade(signal, position.Quantity)

	return nil
}

// sell liquidates the whole position at the signal price. A sell with no
// open position, or an empty one, is a no-op.
func (t *TradingAgent) sell(signal types.TradeSignal) error {
	position, ok := t.positions[signal.Symbol]
	if !ok || position.Quantity <= 0 {
		t.log.Debug("sell with no open position, ignored",
			zap.String("symbol", signal.Symbol),
		)

		return nil
	}

	proceeds := decimal.NewFromInt(position.Quantity).Mul(decimal.NewFromFloat(signal.Price))
	t.cash = t.cash.Add(proceeds)

	delete(t.positions, signal.Symbol)

	t.publishTrade(signal, 0)

	return nil
}

// publishTrade emits a trade_executed event. Quantity is the post-trade
// position quantity.
func (t *TradingAgent) publishTrade(signal types.TradeSignal, quantity int64) {
	cash, _ := t.cash.Float64()

	t.bus.Publish(NewEvent(EventTypeTradeExecuted, t.Name(), TradeExecution{
		Symbol:   signal.Symbol,
		Action:   signal.Action,
		Price:    signal.Price,
		Quantity: quantity,
		Cash:     cash,
		Time:     time.Now(),
	}))

	t.log.Info("trade executed",
		zap.String("symbol", signal.Symbol),
		zap.String("action", string(signal.Action)),
		zap.Float64("price", signal.Price),
		zap.Int64("quantity", quantity),
		zap.Float64("cash", cash),
	)
}

// logAssessment runs a risk assessment over the symbol's bar window and logs
// it. The assessment is advisory; it never blocks the trade.
func (t *TradingAgent) logAssessment(signal types.TradeSignal, size float64) {
	window := t.windows[signal.Symbol]
	if len(window) < 2 {
		return
	}

	balance, _ := t.cash.Float64()

	assessment := risk.Assess(window, risk.Params{
		EntryPrice:     signal.Price,
		PositionSize:   size,
		AccountBalance: optional.Some(balance),
	})

	t.log.Info("risk assessment",
		zap.String("symbol", signal.Symbol),
		zap.String("level", string(assessment.Level)),
		zap.Float64("score", assessment.Score),
		zap.Float64("stopLoss", assessment.Position.StopLoss),
		zap.Float64("target", assessment.Position.Target),
		zap.Float64("riskReward", assessment.Position.RiskReward),
	)
}

func (t *TradingAgent) confidenceGate() float64 {
	t.lockPortfolio()
	defer t.unlockPortfolio()

	return t.minConfidence
}

func (t *TradingAgent) lockPortfolio() {
	<-t.portfolioMu
}

func (t *TradingAgent) unlockPortfolio() {
	t.portfolioMu <- struct{}{}
}

func unrealizedPnL(position types.Position) float64 {
	pnl := decimal.NewFromFloat(position.CurrentPrice).
		Sub(decimal.NewFromFloat(position.AveragePrice)).
		Mul(decimal.NewFromInt(position.Quantity))

	f, _ := pnl.Float64()

	return f
}
