package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/newsfeed"
	"github.com/rxtech-lab/argo-agents/pkg/pricefeed"
)

// NewsAgent polls the news API per symbol and converts high-confidence
// analyses with a directional market impact into trade signals. Overlapping
// fetches for the same symbol are prevented by MonitoringState; per-symbol
// fetch failures are logged and skipped without failing the cycle.
type NewsAgent struct {
	baseAgent

	fetcher  newsfeed.Fetcher
	provider pricefeed.Provider
	state    *MonitoringState

	symbols       []string
	minConfidence float64
}

// NewNewsAgent creates a news agent over the given symbols.
func NewNewsAgent(fetcher newsfeed.Fetcher, provider pricefeed.Provider, symbols []string, cfg NewsSettings, log *logger.Logger) *NewsAgent {
	return &NewsAgent{
		baseAgent:     newBaseAgent("news", types.AgentTypeNews, cfg.Interval.Std(), log),
		fetcher:       fetcher,
		provider:      provider,
		state:         NewMonitoringState(),
		symbols:       append([]string(nil), symbols...),
		minConfidence: cfg.MinConfidence,
	}
}

// Start implements Agent.
func (n *NewsAgent) Start(ctx context.Context) error {
	return n.start(ctx, n.cycle)
}

// SetSymbols replaces the monitored symbol set.
func (n *NewsAgent) SetSymbols(symbols []string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.symbols = append([]string(nil), symbols...)
}

// SetInterval adjusts the poll interval, floored at MinNewsInterval;
// effective on the next Start.
func (n *NewsAgent) SetInterval(interval Duration) {
	if interval.Std() < MinNewsInterval {
		interval = Duration(MinNewsInterval)
	}

	n.setInterval(interval.Std())
}

// SetMinConfidence adjusts the analysis confidence threshold.
func (n *NewsAgent) SetMinConfidence(minConfidence float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.minConfidence = minConfidence
}

// Monitoring exposes the per-symbol monitoring state.
func (n *NewsAgent) Monitoring() *MonitoringState {
	return n.state
}

func (n *NewsAgent) cycle(ctx context.Context) error {
	n.mu.Lock()
	symbols := append([]string(nil), n.symbols...)
	n.mu.Unlock()

	group, groupCtx := errgroup.WithContext(ctx)

	for _, symbol := range symbols {
		if !n.state.Begin(symbol) {
			n.log.Debug("news fetch already in flight, skipping",
				zap.String("symbol", symbol),
			)

			continue
		}

		group.Go(func() error {
			defer n.state.End(symbol)

			result, err := n.fetcher.Fetch(groupCtx, symbol)
			if err != nil {
				n.log.Warn("news fetch failed",
					zap.String("symbol", symbol),
					zap.Error(err),
				)

				return nil
			}

			signal := n.signalFromNews(groupCtx, result)
			if signal.IsSome() {
				n.bus.Publish(NewEvent(EventTypeSignal, n.Name(), signal.Unwrap()))
			}

			return nil
		})
	}

	return group.Wait()
}

// signalFromNews converts the highest-confidence directional analysis into a
// trade signal. Analyses with a stable impact, an unparseable impact string
// or confidence below the threshold never produce a signal.
func (n *NewsAgent) signalFromNews(ctx context.Context, result newsfeed.Result) optional.Option[types.TradeSignal] {
	n.mu.Lock()
	minConfidence := n.minConfidence
	n.mu.Unlock()

	var (
		best       *newsfeed.Article
		bestImpact newsfeed.Impact
	)

	for i := range result.Articles {
		article := &result.Articles[i]

		if article.Analysis.Confidence < minConfidence {
			continue
		}

		impact, err := newsfeed.ParseMarketImpact(article.Analysis.MarketImpact)
		if err != nil {
			n.log.Debug("unparseable market impact",
				zap.String("symbol", result.Symbol),
				zap.String("impact", article.Analysis.MarketImpact),
			)

			continue
		}

		if impact.Direction == newsfeed.ImpactStable {
			continue
		}

		if best == nil || article.Analysis.Confidence > best.Analysis.Confidence {
			best = article
			bestImpact = impact
		}
	}

	if best == nil {
		return optional.None[types.TradeSignal]()
	}

	action := types.SignalActionBuy
	if bestImpact.Direction == newsfeed.ImpactDown {
		action = types.SignalActionSell
	}

	price := 0.0

	if quote, err := n.provider.Quote(ctx, result.Symbol); err == nil {
		price = quote.Close
	} else {
		n.log.Warn("quote fetch for news signal failed",
			zap.String("symbol", result.Symbol),
			zap.Error(err),
		)
	}

	return optional.Some(types.TradeSignal{
		ID:         uuid.New().String(),
		Symbol:     result.Symbol,
		Action:     action,
		Price:      price,
		Confidence: best.Analysis.Confidence,
		Time:       time.Now(),
		Source:     types.SignalSourceNews,
		Detail: optional.Some(types.SignalDetail{
			Sentiment:       best.Analysis.Sentiment,
			KeyEvents:       []string{best.Title},
			Reasoning:       best.Analysis.MarketImpact,
			ImpactMagnitude: bestImpact.MagnitudePct,
			ImpactTimeframe: bestImpact.Timeframe,
		}),
	})
}
