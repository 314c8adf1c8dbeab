package agent

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/pricefeed"
)

// TickerAgent polls the price provider for every configured symbol and
// publishes a price_update event per successful quote. A failed quote for one
// symbol is logged and skipped; it never fails the cycle, so one bad symbol
// cannot silence the rest.
type TickerAgent struct {
	baseAgent

	provider pricefeed.Provider

	symbolsMu sync.Mutex
	symbols   []string
}

// NewTickerAgent creates a ticker agent polling the given symbols.
func NewTickerAgent(provider pricefeed.Provider, symbols []string, cfg TickerSettings, log *logger.Logger) *TickerAgent {
	return &TickerAgent{
		baseAgent: newBaseAgent("ticker", types.AgentTypeTicker, cfg.Interval.Std(), log),
		provider:  provider,
		symbols:   append([]string(nil), symbols...),
	}
}

// Start implements Agent.
func (t *TickerAgent) Start(ctx context.Context) error {
	return t.start(ctx, t.cycle)
}

// SetSymbols replaces the polled symbol set.
func (t *TickerAgent) SetSymbols(symbols []string) {
	t.symbolsMu.Lock()
	defer t.symbolsMu.Unlock()

	t.symbols = append([]string(nil), symbols...)
}

// SetInterval adjusts the poll interval; effective on the next Start.
func (t *TickerAgent) SetInterval(interval Duration) {
	t.setInterval(interval.Std())
}

func (t *TickerAgent) cycle(ctx context.Context) error {
	t.symbolsMu.Lock()
	symbols := append([]string(nil), t.symbols...)
	t.symbolsMu.Unlock()

	group, groupCtx := errgroup.WithContext(ctx)

	for _, symbol := range symbols {
		group.Go(func() error {
			bar, err := t.provider.Quote(groupCtx, symbol)
			if err != nil {
				t.log.Warn("quote fetch failed",
					zap.String("symbol", symbol),
					zap.Error(err),
				)

				return nil
			}

			t.bus.Publish(NewEvent(EventTypePriceUpdate, t.Name(), PriceUpdate{
				Symbol: symbol,
				Bar:    bar,
			}))

			return nil
		})
	}

	return group.Wait()
}
