package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/pattern"
	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/classify"
	"github.com/rxtech-lab/argo-agents/pkg/pricefeed"
)

// jitterTolerance absorbs timer drift when deciding whether a cycle fired
// early.
const jitterTolerance = time.Second

// AnalysisAgent periodically runs pattern detection and classification over a
// recent bar window per symbol and publishes a signal event for each
// actionable classification. Price updates from the ticker agent feed its bar
// cache so a provider round trip is only needed for cold symbols.
type AnalysisAgent struct {
	baseAgent

	provider   pricefeed.Provider
	classifier classify.Classifier

	mu        sync.Mutex
	symbols   []string
	window    int
	minBars   int
	bars      map[string][]types.Bar
	lastCycle time.Time
}

// NewAnalysisAgent creates an analysis agent over the given symbols.
func NewAnalysisAgent(provider pricefeed.Provider, classifier classify.Classifier, symbols []string, cfg AnalysisSettings, log *logger.Logger) *AnalysisAgent {
	return &AnalysisAgent{
		baseAgent:  newBaseAgent("analysis", types.AgentTypeAnalysis, cfg.Interval.Std(), log),
		provider:   provider,
		classifier: classifier,
		symbols:    append([]string(nil), symbols...),
		window:     cfg.Window,
		minBars:    cfg.MinBars,
		bars:       make(map[string][]types.Bar),
	}
}

// Start implements Agent.
func (a *AnalysisAgent) Start(ctx context.Context) error {
	return a.start(ctx, a.cycle)
}

// SetSymbols replaces the analyzed symbol set. Cached bars for removed
// symbols are dropped.
func (a *AnalysisAgent) SetSymbols(symbols []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.symbols = append([]string(nil), symbols...)

	keep := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		keep[symbol] = true
	}

	for symbol := range a.bars {
		if !keep[symbol] {
			delete(a.bars, symbol)
		}
	}
}

// SetInterval adjusts the analysis interval; effective on the next Start.
func (a *AnalysisAgent) SetInterval(interval Duration) {
	a.setInterval(interval.Std())
}

// HandlePriceUpdate folds a ticker price update into the symbol's bar cache.
// A bar with the same timestamp as the cached tail replaces it; newer bars
// append, and the cache is trimmed to the analysis window.
func (a *AnalysisAgent) HandlePriceUpdate(update PriceUpdate) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cached := a.bars[update.Symbol]

	if n := len(cached); n > 0 && cached[n-1].Time.Equal(update.Bar.Time) {
		cached[n-1] = update.Bar
	} else {
		cached = append(cached, update.Bar)
	}

	if len(cached) > a.window {
		cached = cached[len(cached)-a.window:]
	}

	a.bars[update.Symbol] = cached
}

func (a *AnalysisAgent) cycle(ctx context.Context) error {
	a.mu.Lock()

	// Skip cycles that fire early. Timer drift and manual restarts can
	// deliver ticks closer together than the configured interval; analyzing
	// the same window twice just burns classifier calls.
	if !a.lastCycle.IsZero() && time.Since(a.lastCycle) < a.pollInterval()-jitterTolerance {
		a.mu.Unlock()

		return nil
	}

	a.lastCycle = time.Now()
	symbols := append([]string(nil), a.symbols...)
	a.mu.Unlock()

	for _, symbol := range symbols {
		if err := a.analyzeSymbol(ctx, symbol); err != nil {
			return err
		}
	}

	return nil
}

func (a *AnalysisAgent) analyzeSymbol(ctx context.Context, symbol string) error {
	bars, err := a.symbolBars(ctx, symbol)
	if err != nil {
		return err
	}

	if len(bars) < a.minBars {
		a.log.Debug("insufficient history, skipping analysis",
			zap.String("symbol", symbol),
			zap.Int("bars", len(bars)),
		)

		return nil
	}

	labeled := pattern.Detect(bars)

	signal, err := a.classifier.Classify(ctx, symbol, labeled)
	if err != nil {
		return err
	}

	if signal.IsNone() {
		return nil
	}

	a.bus.Publish(NewEvent(EventTypeSignal, a.Name(), signal.Unwrap()))

	return nil
}

// symbolBars returns the cached window for the symbol, falling back to a
// provider fetch when the cache is cold.
func (a *AnalysisAgent) symbolBars(ctx context.Context, symbol string) ([]types.Bar, error) {
	a.mu.Lock()
	cached := append([]types.Bar(nil), a.bars[symbol]...)
	a.mu.Unlock()

	if len(cached) >= a.minBars {
		return cached, nil
	}

	bars, err := a.provider.Bars(ctx, symbol, a.window)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.bars[symbol] = append([]types.Bar(nil), bars...)
	a.mu.Unlock()

	return bars, nil
}
