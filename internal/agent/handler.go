package agent

import (
	"context"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/types"
)

// Handler runs a standalone trading agent without the full orchestrator.
// Useful for paper-trading against an external signal source: callers push
// signals and price updates directly instead of wiring the monitoring agents.
type Handler struct {
	trading *TradingAgent
}

// NewHandler creates a handler with a fresh trading agent.
func NewHandler(cfg TradingSettings, log *logger.Logger) *Handler {
	return &Handler{
		trading: NewTradingAgent(cfg, log),
	}
}

// Run starts the trading agent.
func (h *Handler) Run(ctx context.Context) error {
	return h.trading.Start(ctx)
}

// Stop stops the trading agent.
func (h *Handler) Stop() error {
	return h.trading.Stop()
}

// Signal applies a trade signal.
func (h *Handler) Signal(signal types.TradeSignal) {
	h.trading.HandleSignal(signal)
}

// PriceUpdate refreshes mark prices and the risk bar window.
func (h *Handler) PriceUpdate(update PriceUpdate) {
	h.trading.HandlePriceUpdate(update)
}

// Positions returns the open positions.
func (h *Handler) Positions() []types.Position {
	return h.trading.Positions()
}

// State returns the trading agent state.
func (h *Handler) State() types.AgentState {
	return h.trading.State()
}

// Events returns the trading agent's event stream.
func (h *Handler) Events() *EventBus {
	return h.trading.Events()
}
