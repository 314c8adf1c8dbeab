package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/store"
	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// OrchestratorTestSuite is a test suite for the orchestrator
type OrchestratorTestSuite struct {
	suite.Suite
	ctx          context.Context
	ticker       *fakeAgent
	analysis     *fakeAgent
	news         *fakeAgent
	trading      *fakeAgent
	runStore     *store.MemoryStore
	orchestrator *Orchestrator
}

// TestOrchestratorSuite runs the test suite
func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

// SetupTest runs before each test
func (suite *OrchestratorTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.ticker = newFakeAgent("ticker", types.AgentTypeTicker)
	suite.analysis = newFakeAgent("analysis", types.AgentTypeAnalysis)
	suite.news = newFakeAgent("news", types.AgentTypeNews)
	suite.trading = newFakeAgent("trading", types.AgentTypeTrading)
	suite.runStore = store.NewMemoryStore()

	suite.orchestrator = &Orchestrator{
		ticker:   suite.ticker,
		analysis: suite.analysis,
		news:     suite.news,
		trading:  suite.trading,
		bus:      NewEventBus(DefaultEventBusBufferSize),
		log:      logger.NewNopLogger(),
	}
	suite.orchestrator.SetStore(suite.runStore)
}

func (suite *OrchestratorTestSuite) TestStartWithoutStoreFails() {
	suite.orchestrator.SetStore(nil)

	err := suite.orchestrator.Start(suite.ctx)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStoreNotConfigured))
}

func (suite *OrchestratorTestSuite) TestStartStartsAllAgentsAndPersists() {
	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))
	defer func() { _ = suite.orchestrator.Stop(suite.ctx) }()

	for _, agent := range []*fakeAgent{suite.ticker, suite.analysis, suite.news, suite.trading} {
		started, _ := agent.callCounts()
		suite.Equal(1, started)
	}

	running, err := suite.runStore.GetRunning(suite.ctx)
	suite.Require().NoError(err)
	suite.True(running)
}

func (suite *OrchestratorTestSuite) TestDoubleStartIsNoOp() {
	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))
	defer func() { _ = suite.orchestrator.Stop(suite.ctx) }()

	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))

	started, _ := suite.ticker.callCounts()
	suite.Equal(1, started)
}

func (suite *OrchestratorTestSuite) TestPersistedRunningMakesStartNoOp() {
	suite.Require().NoError(suite.runStore.SetRunning(suite.ctx, true))

	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))

	started, _ := suite.ticker.callCounts()
	suite.Zero(started)
}

func (suite *OrchestratorTestSuite) TestStartRollsBackOnAgentFailure() {
	suite.analysis.startErr = errors.New(errors.ErrCodeAgentStartFailed, "scripted failure")

	err := suite.orchestrator.Start(suite.ctx)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeAgentStartFailed))

	// Ticker and news started before analysis and must be rolled back.
	_, tickerStopped := suite.ticker.callCounts()
	suite.Equal(1, tickerStopped)

	_, newsStopped := suite.news.callCounts()
	suite.Equal(1, newsStopped)

	tradingStarted, _ := suite.trading.callCounts()
	suite.Zero(tradingStarted)

	running, err := suite.runStore.GetRunning(suite.ctx)
	suite.Require().NoError(err)
	suite.False(running)
}

func (suite *OrchestratorTestSuite) TestStopStopsAllAgentsAndPersists() {
	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))
	suite.Require().NoError(suite.orchestrator.Stop(suite.ctx))

	for _, agent := range []*fakeAgent{suite.ticker, suite.analysis, suite.news, suite.trading} {
		_, stopped := agent.callCounts()
		suite.Equal(1, stopped)
	}

	running, err := suite.runStore.GetRunning(suite.ctx)
	suite.Require().NoError(err)
	suite.False(running)

	// The engine can be started again after a stop.
	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))
	suite.Require().NoError(suite.orchestrator.Stop(suite.ctx))
}

func (suite *OrchestratorTestSuite) TestRestartDoesNotLeakSubscribers() {
	for i := 0; i < 3; i++ {
		suite.Require().NoError(suite.orchestrator.Start(suite.ctx))
		suite.Require().NoError(suite.orchestrator.Stop(suite.ctx))
	}

	for _, agent := range []*fakeAgent{suite.ticker, suite.analysis, suite.news, suite.trading} {
		suite.Zero(subscriberCount(agent.bus))
	}

	// Forwarding still works after the restarts, with a single delivery.
	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))
	defer func() { _ = suite.orchestrator.Stop(suite.ctx) }()

	suite.Equal(1, subscriberCount(suite.ticker.bus))

	update := PriceUpdate{Symbol: "AAPL", Bar: types.Bar{Symbol: "AAPL", Close: 100}}
	suite.ticker.bus.Publish(NewEvent(EventTypePriceUpdate, "ticker", update))

	suite.Eventually(func() bool {
		return len(suite.trading.receivedUpdates()) == 1
	}, time.Second, 10*time.Millisecond)
}

func (suite *OrchestratorTestSuite) TestForwardsPriceUpdates() {
	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))
	defer func() { _ = suite.orchestrator.Stop(suite.ctx) }()

	external := suite.orchestrator.Events().Subscribe()

	update := PriceUpdate{Symbol: "AAPL", Bar: types.Bar{Symbol: "AAPL", Close: 100}}
	suite.ticker.bus.Publish(NewEvent(EventTypePriceUpdate, "ticker", update))

	suite.Eventually(func() bool {
		return len(suite.analysis.receivedUpdates()) == 1 && len(suite.trading.receivedUpdates()) == 1
	}, time.Second, 10*time.Millisecond)

	select {
	case event := <-external:
		suite.Equal(EventTypePriceUpdate, event.Type)
	case <-time.After(time.Second):
		suite.FailNow("price update was not mirrored externally")
	}
}

func (suite *OrchestratorTestSuite) TestForwardsSignalsToTrading() {
	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))
	defer func() { _ = suite.orchestrator.Stop(suite.ctx) }()

	signal := types.TradeSignal{
		Symbol:     "AAPL",
		Action:     types.SignalActionBuy,
		Price:      100,
		Confidence: 0.9,
		Source:     types.SignalSourceAnalysis,
	}
	suite.analysis.bus.Publish(NewEvent(EventTypeSignal, "analysis", signal))

	newsSignal := signal
	newsSignal.Source = types.SignalSourceNews
	suite.news.bus.Publish(NewEvent(EventTypeSignal, "news", newsSignal))

	suite.Eventually(func() bool {
		return len(suite.trading.receivedSignals()) == 2
	}, time.Second, 10*time.Millisecond)
}

func (suite *OrchestratorTestSuite) TestMirrorsTradingEvents() {
	suite.Require().NoError(suite.orchestrator.Start(suite.ctx))
	defer func() { _ = suite.orchestrator.Stop(suite.ctx) }()

	external := suite.orchestrator.Events().Subscribe()

	suite.trading.bus.Publish(NewEvent(EventTypeTradeExecuted, "trading", TradeExecution{Symbol: "AAPL"}))

	select {
	case event := <-external:
		suite.Equal(EventTypeTradeExecuted, event.Type)
	case <-time.After(time.Second):
		suite.FailNow("trade event was not mirrored externally")
	}
}

func (suite *OrchestratorTestSuite) TestStatusAggregatesAllAgents() {
	states := suite.orchestrator.Status()

	suite.Require().Len(states, 4)
	suite.Equal(types.AgentTypeTicker, states[0].Type)
	suite.Equal(types.AgentTypeAnalysis, states[1].Type)
	suite.Equal(types.AgentTypeNews, states[2].Type)
	suite.Equal(types.AgentTypeTrading, states[3].Type)
}

func (suite *OrchestratorTestSuite) TestUpdateConfigPropagates() {
	interval := 2 * time.Minute
	confidence := 0.8
	maxPosition := 2500.0

	suite.orchestrator.UpdateConfig(ConfigUpdate{
		Symbols:              []string{"AAPL", "MSFT"},
		TickerInterval:       &interval,
		AnalysisInterval:     &interval,
		NewsInterval:         &interval,
		NewsMinConfidence:    &confidence,
		TradingMinConfidence: &confidence,
		MaxPositionSize:      &maxPosition,
	})

	suite.Equal([]string{"AAPL", "MSFT"}, suite.ticker.symbols)
	suite.Equal([]string{"AAPL", "MSFT"}, suite.analysis.symbols)
	suite.Equal([]string{"AAPL", "MSFT"}, suite.news.symbols)
	suite.Equal(Duration(interval), suite.ticker.interval)
	suite.Equal(Duration(interval), suite.news.interval)
	suite.InDelta(confidence, suite.news.minConfidence, 1e-9)
	suite.InDelta(confidence, suite.trading.minConfidence, 1e-9)
	suite.InDelta(maxPosition, suite.trading.maxPosition, 1e-9)
}
