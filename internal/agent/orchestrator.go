package agent

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/store"
	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/classify"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
	"github.com/rxtech-lab/argo-agents/pkg/newsfeed"
	"github.com/rxtech-lab/argo-agents/pkg/pricefeed"
)

// Worker interfaces owned by the orchestrator. Narrowing the concrete agents
// to these keeps the wiring testable with fakes.
type tickerWorker interface {
	Agent
	SetSymbols(symbols []string)
	SetInterval(interval Duration)
}

type analysisWorker interface {
	Agent
	HandlePriceUpdate(update PriceUpdate)
	SetSymbols(symbols []string)
	SetInterval(interval Duration)
}

type newsWorker interface {
	Agent
	SetSymbols(symbols []string)
	SetInterval(interval Duration)
	SetMinConfidence(minConfidence float64)
}

type tradingWorker interface {
	Agent
	HandleSignal(signal types.TradeSignal)
	HandlePriceUpdate(update PriceUpdate)
	Positions() []types.Position
	SetMinConfidence(minConfidence float64)
	SetMaxPositionSize(maxPositionSize float64)
}

// Orchestrator owns the four agents and the event wiring between them:
// ticker price updates feed the analysis and trading agents, and analysis and
// news signals feed the trading agent. All agent events are mirrored onto the
// orchestrator's own bus for external consumers. A persisted run-state store
// makes Start/Stop idempotent across processes.
type Orchestrator struct {
	mu      sync.Mutex
	running bool

	ticker   tickerWorker
	analysis analysisWorker
	news     newsWorker
	trading  tradingWorker

	runStore store.RunStateStore
	bus      *EventBus
	log      *logger.Logger

	forwardCancel context.CancelFunc
	forwardDone   sync.WaitGroup
	forwardSubs   []forwardSub
}

// forwardSub ties a subscription to the bus that owns it so stopForwarding
// can release it.
type forwardSub struct {
	bus *EventBus
	ch  <-chan Event
}

// NewOrchestrator builds the four agents from the config and providers. The
// run-state store must be injected with SetStore before Start.
func NewOrchestrator(cfg Config, provider pricefeed.Provider, classifier classify.Classifier, fetcher newsfeed.Fetcher, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		ticker:   NewTickerAgent(provider, cfg.Symbols, cfg.Ticker, log),
		analysis: NewAnalysisAgent(provider, classifier, cfg.Symbols, cfg.Analysis, log),
		news:     NewNewsAgent(fetcher, provider, cfg.Symbols, cfg.News, log),
		trading:  NewTradingAgent(cfg.Trading, log),
		bus:      NewEventBus(DefaultEventBusBufferSize),
		log:      log,
	}
}

// SetStore injects the run-state store.
func (o *Orchestrator) SetStore(runStore store.RunStateStore) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.runStore = runStore
}

// Events returns the orchestrator's aggregated event stream.
func (o *Orchestrator) Events() *EventBus {
	return o.bus
}

// Start starts all agents in dependency order after checking the persisted
// running flag. Starting an already running engine, locally or per the store,
// is a no-op. If any agent fails to start, the ones already started are
// stopped and the stopped state is persisted.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.runStore == nil {
		return errors.New(errors.ErrCodeStoreNotConfigured, "run-state store is not configured")
	}

	if o.running {
		o.log.Info("engine already running, start ignored")

		return nil
	}

	persisted, err := o.runStore.GetRunning(ctx)
	if err != nil {
		return err
	}

	if persisted {
		o.log.Info("engine persisted as running, start ignored")

		return nil
	}

	o.startForwarding()

	agents := []Agent{o.ticker, o.news, o.analysis, o.trading}

	for i, agent := range agents {
		if err := agent.Start(ctx); err != nil {
			o.log.Error("agent start failed, rolling back",
				zap.String("agent", agent.Name()),
				zap.Error(err),
			)

			for j := i - 1; j >= 0; j-- {
				if stopErr := agents[j].Stop(); stopErr != nil {
					o.log.Error("rollback stop failed",
						zap.String("agent", agents[j].Name()),
						zap.Error(stopErr),
					)
				}
			}

			o.stopForwarding()

			if persistErr := o.runStore.SetRunning(ctx, false); persistErr != nil {
				o.log.Error("failed to persist stopped state", zap.Error(persistErr))
			}

			return errors.Wrapf(errors.ErrCodeAgentStartFailed, err, "failed to start agent %s", agent.Name())
		}
	}

	if err := o.runStore.SetRunning(ctx, true); err != nil {
		for j := len(agents) - 1; j >= 0; j-- {
			_ = agents[j].Stop()
		}

		o.stopForwarding()

		return err
	}

	o.running = true

	o.log.Info("engine started")

	return nil
}

// Stop stops all agents in reverse start order. The stopped state is
// persisted even when an agent fails to stop; the first stop error is
// returned.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.runStore == nil {
		return errors.New(errors.ErrCodeStoreNotConfigured, "run-state store is not configured")
	}

	var firstErr error

	for _, agent := range []Agent{o.trading, o.analysis, o.news, o.ticker} {
		if err := agent.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	o.stopForwarding()

	if err := o.runStore.SetRunning(ctx, false); err != nil && firstErr == nil {
		firstErr = err
	}

	o.running = false

	o.log.Info("engine stopped")

	return firstErr
}

// Status returns the state of every agent.
func (o *Orchestrator) Status() []types.AgentState {
	return []types.AgentState{
		o.ticker.State(),
		o.analysis.State(),
		o.news.State(),
		o.trading.State(),
	}
}

// Positions returns the trading agent's open positions.
func (o *Orchestrator) Positions() []types.Position {
	return o.trading.Positions()
}

// UpdateConfig applies a partial configuration change to the running agents.
// Interval changes take effect on each agent's next start.
func (o *Orchestrator) UpdateConfig(update ConfigUpdate) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(update.Symbols) > 0 {
		o.ticker.SetSymbols(update.Symbols)
		o.analysis.SetSymbols(update.Symbols)
		o.news.SetSymbols(update.Symbols)
	}

	if update.TickerInterval != nil {
		o.ticker.SetInterval(Duration(*update.TickerInterval))
	}

	if update.AnalysisInterval != nil {
		o.analysis.SetInterval(Duration(*update.AnalysisInterval))
	}

	if update.NewsInterval != nil {
		o.news.SetInterval(Duration(*update.NewsInterval))
	}

	if update.NewsMinConfidence != nil {
		o.news.SetMinConfidence(*update.NewsMinConfidence)
	}

	if update.TradingMinConfidence != nil {
		o.trading.SetMinConfidence(*update.TradingMinConfidence)
	}

	if update.MaxPositionSize != nil {
		o.trading.SetMaxPositionSize(*update.MaxPositionSize)
	}
}

// startForwarding wires the agent event streams together. Each subscription
// runs on its own goroutine until stopForwarding cancels and releases it.
func (o *Orchestrator) startForwarding() {
	ctx, cancel := context.WithCancel(context.Background())
	o.forwardCancel = cancel

	o.subscribe(ctx, o.ticker.Events(), o.handleTickerEvent)
	o.subscribe(ctx, o.analysis.Events(), o.handleSignalEvent)
	o.subscribe(ctx, o.news.Events(), o.handleSignalEvent)
	o.subscribe(ctx, o.trading.Events(), o.mirror)
}

func (o *Orchestrator) subscribe(ctx context.Context, bus *EventBus, handle func(Event)) {
	ch := bus.Subscribe()
	o.forwardSubs = append(o.forwardSubs, forwardSub{bus: bus, ch: ch})
	o.forward(ctx, ch, handle)
}

// stopForwarding cancels the forwarding goroutines and unsubscribes from the
// agent buses so restarts do not accumulate stale subscribers.
func (o *Orchestrator) stopForwarding() {
	if o.forwardCancel != nil {
		o.forwardCancel()
		o.forwardCancel = nil
	}

	o.forwardDone.Wait()

	for _, sub := range o.forwardSubs {
		sub.bus.Unsubscribe(sub.ch)
	}

	o.forwardSubs = nil
}

func (o *Orchestrator) forward(ctx context.Context, events <-chan Event, handle func(Event)) {
	o.forwardDone.Add(1)

	go func() {
		defer o.forwardDone.Done()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}

				handle(event)
			}
		}
	}()
}

// handleTickerEvent routes price updates to the analysis and trading agents
// and mirrors every event externally.
func (o *Orchestrator) handleTickerEvent(event Event) {
	if event.Type == EventTypePriceUpdate {
		if update, ok := event.Payload.(PriceUpdate); ok {
			o.analysis.HandlePriceUpdate(update)
			o.trading.HandlePriceUpdate(update)
		}
	}

	o.mirror(event)
}

// handleSignalEvent routes trade signals to the trading agent and mirrors
// every event externally.
func (o *Orchestrator) handleSignalEvent(event Event) {
	if event.Type == EventTypeSignal {
		if signal, ok := event.Payload.(types.TradeSignal); ok {
			o.trading.HandleSignal(signal)
		}
	}

	o.mirror(event)
}

func (o *Orchestrator) mirror(event Event) {
	o.bus.Publish(event)
}
