package agent

import (
	"context"
	"sync"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
	"github.com/rxtech-lab/argo-agents/pkg/newsfeed"
)

// fakeProvider is a scripted pricefeed.Provider. Quotes and bars are served
// per symbol; symbols listed in failQuotes error on Quote.
type fakeProvider struct {
	mu         sync.Mutex
	quotes     map[string]types.Bar
	bars       map[string][]types.Bar
	failQuotes map[string]bool
	quoteCalls int
	barsCalls  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		quotes:     make(map[string]types.Bar),
		bars:       make(map[string][]types.Bar),
		failQuotes: make(map[string]bool),
	}
}

func (p *fakeProvider) Quote(_ context.Context, symbol string) (types.Bar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.quoteCalls++

	if p.failQuotes[symbol] {
		return types.Bar{}, errors.Newf(errors.ErrCodeQuoteFetchFailed, "scripted failure for %s", symbol)
	}

	quote, ok := p.quotes[symbol]
	if !ok {
		return types.Bar{}, errors.Newf(errors.ErrCodeDataNotFound, "no quote for %s", symbol)
	}

	return quote, nil
}

func (p *fakeProvider) Bars(_ context.Context, symbol string, limit int) ([]types.Bar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.barsCalls++

	bars := p.bars[symbol]
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	return append([]types.Bar(nil), bars...), nil
}

// fakeClassifier returns a scripted signal per symbol, or None.
type fakeClassifier struct {
	mu      sync.Mutex
	signals map[string]types.TradeSignal
	err     error
	calls   int
	seen    [][]types.Bar
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{signals: make(map[string]types.TradeSignal)}
}

func (c *fakeClassifier) Classify(_ context.Context, symbol string, bars []types.Bar) (optional.Option[types.TradeSignal], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	c.seen = append(c.seen, append([]types.Bar(nil), bars...))

	if c.err != nil {
		return optional.None[types.TradeSignal](), c.err
	}

	signal, ok := c.signals[symbol]
	if !ok {
		return optional.None[types.TradeSignal](), nil
	}

	return optional.Some(signal), nil
}

// fakeFetcher serves scripted news results and counts concurrent fetches.
type fakeFetcher struct {
	mu      sync.Mutex
	results map[string]newsfeed.Result
	err     error
	calls   int
	block   chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{results: make(map[string]newsfeed.Result)}
}

func (f *fakeFetcher) Fetch(_ context.Context, symbol string) (newsfeed.Result, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	err := f.err
	result := f.results[symbol]
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	if err != nil {
		return newsfeed.Result{}, err
	}

	result.Symbol = symbol

	return result, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

// fakeAgent is a minimal Agent used to test orchestrator wiring.
type fakeAgent struct {
	mu         sync.Mutex
	name       string
	agentType  types.AgentType
	status     types.AgentStatus
	bus        *EventBus
	startCalls int
	stopCalls  int
	startErr   error

	symbols       []string
	interval      Duration
	minConfidence float64
	maxPosition   float64

	signals []types.TradeSignal
	updates []PriceUpdate
}

func newFakeAgent(name string, agentType types.AgentType) *fakeAgent {
	return &fakeAgent{
		name:      name,
		agentType: agentType,
		status:    types.AgentStatusInactive,
		bus:       NewEventBus(16),
	}
}

func (a *fakeAgent) Name() string { return a.name }

func (a *fakeAgent) Type() types.AgentType { return a.agentType }

func (a *fakeAgent) Start(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.startCalls++

	if a.startErr != nil {
		return a.startErr
	}

	a.status = types.AgentStatusActive

	return nil
}

func (a *fakeAgent) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopCalls++
	a.status = types.AgentStatusInactive

	return nil
}

func (a *fakeAgent) State() types.AgentState {
	a.mu.Lock()
	defer a.mu.Unlock()

	return types.AgentState{
		Name:        a.name,
		Type:        a.agentType,
		Status:      a.status,
		LastUpdated: time.Now(),
	}
}

func (a *fakeAgent) Events() *EventBus { return a.bus }

func (a *fakeAgent) SetSymbols(symbols []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.symbols = append([]string(nil), symbols...)
}

func (a *fakeAgent) SetInterval(interval Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.interval = interval
}

func (a *fakeAgent) SetMinConfidence(minConfidence float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.minConfidence = minConfidence
}

func (a *fakeAgent) SetMaxPositionSize(maxPositionSize float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.maxPosition = maxPositionSize
}

func (a *fakeAgent) HandleSignal(signal types.TradeSignal) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.signals = append(a.signals, signal)
}

func (a *fakeAgent) HandlePriceUpdate(update PriceUpdate) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.updates = append(a.updates, update)
}

func (a *fakeAgent) Positions() []types.Position { return nil }

func (a *fakeAgent) receivedSignals() []types.TradeSignal {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]types.TradeSignal(nil), a.signals...)
}

func (a *fakeAgent) receivedUpdates() []PriceUpdate {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]PriceUpdate(nil), a.updates...)
}

func (a *fakeAgent) callCounts() (started, stopped int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.startCalls, a.stopCalls
}
