package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// TickerAgentTestSuite is a test suite for the ticker agent
type TickerAgentTestSuite struct {
	suite.Suite
	provider *fakeProvider
}

// TestTickerAgentSuite runs the test suite
func TestTickerAgentSuite(t *testing.T) {
	suite.Run(t, new(TickerAgentTestSuite))
}

// SetupTest runs before each test
func (suite *TickerAgentTestSuite) SetupTest() {
	suite.provider = newFakeProvider()
	suite.provider.quotes["AAPL"] = types.Bar{Symbol: "AAPL", Time: time.Now(), Close: 100}
	suite.provider.quotes["MSFT"] = types.Bar{Symbol: "MSFT", Time: time.Now(), Close: 300}
}

func (suite *TickerAgentTestSuite) newAgent(symbols ...string) *TickerAgent {
	return NewTickerAgent(suite.provider, symbols, TickerSettings{
		Interval: Duration(time.Hour), // only the immediate cycle fires in tests
	}, logger.NewNopLogger())
}

func collectPriceUpdates(events <-chan Event, want int) []PriceUpdate {
	updates := make([]PriceUpdate, 0, want)
	deadline := time.After(2 * time.Second)

	for len(updates) < want {
		select {
		case event := <-events:
			if update, ok := event.Payload.(PriceUpdate); ok {
				updates = append(updates, update)
			}
		case <-deadline:
			return updates
		}
	}

	return updates
}

func (suite *TickerAgentTestSuite) TestPublishesPriceUpdatePerSymbol() {
	agent := suite.newAgent("AAPL", "MSFT")
	events := agent.Events().Subscribe()

	suite.Require().NoError(agent.Start(context.Background()))
	defer func() { suite.Require().NoError(agent.Stop()) }()

	updates := collectPriceUpdates(events, 2)
	suite.Require().Len(updates, 2)

	symbols := map[string]float64{}
	for _, update := range updates {
		symbols[update.Symbol] = update.Bar.Close
	}

	suite.InDelta(100.0, symbols["AAPL"], 1e-9)
	suite.InDelta(300.0, symbols["MSFT"], 1e-9)
}

func (suite *TickerAgentTestSuite) TestFailedSymbolIsSkipped() {
	suite.provider.failQuotes["MSFT"] = true

	agent := suite.newAgent("AAPL", "MSFT")
	events := agent.Events().Subscribe()

	suite.Require().NoError(agent.Start(context.Background()))
	defer func() { suite.Require().NoError(agent.Stop()) }()

	updates := collectPriceUpdates(events, 1)
	suite.Require().Len(updates, 1)
	suite.Equal("AAPL", updates[0].Symbol)

	// A per-symbol failure does not fail the cycle.
	suite.Eventually(func() bool {
		return agent.State().Status == types.AgentStatusActive
	}, time.Second, 10*time.Millisecond)
}

func (suite *TickerAgentTestSuite) TestDoubleStartFails() {
	agent := suite.newAgent("AAPL")

	suite.Require().NoError(agent.Start(context.Background()))
	defer func() { suite.Require().NoError(agent.Stop()) }()

	err := agent.Start(context.Background())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeAgentAlreadyActive))
}

func (suite *TickerAgentTestSuite) TestStopTransitionsToInactive() {
	agent := suite.newAgent("AAPL")

	suite.Require().NoError(agent.Start(context.Background()))
	suite.Require().NoError(agent.Stop())

	suite.Equal(types.AgentStatusInactive, agent.State().Status)

	// Restart after stop is allowed.
	suite.Require().NoError(agent.Start(context.Background()))
	suite.Require().NoError(agent.Stop())
}

func (suite *TickerAgentTestSuite) TestSetSymbolsReplacesSet() {
	agent := suite.newAgent("AAPL")
	agent.SetSymbols([]string{"MSFT"})

	events := agent.Events().Subscribe()

	suite.Require().NoError(agent.Start(context.Background()))
	defer func() { suite.Require().NoError(agent.Stop()) }()

	updates := collectPriceUpdates(events, 1)
	suite.Require().Len(updates, 1)
	suite.Equal("MSFT", updates[0].Symbol)
}
