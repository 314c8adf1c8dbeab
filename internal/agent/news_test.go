package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
	"github.com/rxtech-lab/argo-agents/pkg/newsfeed"
)

// NewsAgentTestSuite is a test suite for the news agent
type NewsAgentTestSuite struct {
	suite.Suite
	provider *fakeProvider
	fetcher  *fakeFetcher
	agent    *NewsAgent
	events   <-chan Event
}

// TestNewsAgentSuite runs the test suite
func TestNewsAgentSuite(t *testing.T) {
	suite.Run(t, new(NewsAgentTestSuite))
}

// SetupTest runs before each test
func (suite *NewsAgentTestSuite) SetupTest() {
	suite.provider = newFakeProvider()
	suite.provider.quotes["AAPL"] = types.Bar{Symbol: "AAPL", Time: time.Now(), Close: 150}

	suite.fetcher = newFakeFetcher()
	suite.agent = NewNewsAgent(suite.fetcher, suite.provider, []string{"AAPL"}, NewsSettings{
		Interval:      Duration(time.Hour),
		MinConfidence: 0.7,
	}, logger.NewNopLogger())
	suite.events = suite.agent.Events().Subscribe()
}

func article(title, impact string, confidence float64) newsfeed.Article {
	return newsfeed.Article{
		Title:       title,
		Source:      "wire",
		PublishedAt: time.Now(),
		Analysis: newsfeed.ArticleAnalysis{
			Sentiment:    "positive",
			MarketImpact: impact,
			Confidence:   confidence,
		},
	}
}

func (suite *NewsAgentTestSuite) nextSignal() types.TradeSignal {
	deadline := time.After(time.Second)

	for {
		select {
		case event := <-suite.events:
			if event.Type != EventTypeSignal {
				continue
			}

			signal, ok := event.Payload.(types.TradeSignal)
			suite.Require().True(ok)

			return signal
		case <-deadline:
			suite.FailNow("no signal event received")

			return types.TradeSignal{}
		}
	}
}

func (suite *NewsAgentTestSuite) expectNoSignal() {
	select {
	case event := <-suite.events:
		suite.NotEqual(EventTypeSignal, event.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func (suite *NewsAgentTestSuite) TestHighestConfidenceArticleWins() {
	suite.fetcher.results["AAPL"] = newsfeed.Result{
		Articles: []newsfeed.Article{
			article("mild upgrade", "up (1%) long-term", 0.75),
			article("blowout earnings", "up (5%) immediate", 0.95),
			article("low quality rumor", "up (9%) immediate", 0.4),
		},
	}

	suite.Require().NoError(suite.agent.cycle(context.Background()))

	signal := suite.nextSignal()
	suite.Equal("AAPL", signal.Symbol)
	suite.Equal(types.SignalActionBuy, signal.Action)
	suite.Equal(types.SignalSourceNews, signal.Source)
	suite.InDelta(0.95, signal.Confidence, 1e-9)
	suite.InDelta(150.0, signal.Price, 1e-9)

	suite.Require().True(signal.Detail.IsSome())
	detail := signal.Detail.Unwrap()
	suite.Equal([]string{"blowout earnings"}, detail.KeyEvents)
	suite.InDelta(5.0, detail.ImpactMagnitude, 1e-9)
	suite.Equal(newsfeed.TimeframeImmediate, detail.ImpactTimeframe)
}

func (suite *NewsAgentTestSuite) TestDownImpactSells() {
	suite.fetcher.results["AAPL"] = newsfeed.Result{
		Articles: []newsfeed.Article{
			article("guidance cut", "down (4%) short-term", 0.9),
		},
	}

	suite.Require().NoError(suite.agent.cycle(context.Background()))

	signal := suite.nextSignal()
	suite.Equal(types.SignalActionSell, signal.Action)
}

func (suite *NewsAgentTestSuite) TestStableAndWeakArticlesProduceNothing() {
	suite.fetcher.results["AAPL"] = newsfeed.Result{
		Articles: []newsfeed.Article{
			article("nothing burger", "stable (0%) long-term", 0.9),
			article("strong but vague", "garbage impact", 0.9),
			article("unconvincing", "up (5%) immediate", 0.5),
		},
	}

	suite.Require().NoError(suite.agent.cycle(context.Background()))
	suite.expectNoSignal()
}

func (suite *NewsAgentTestSuite) TestFetchErrorIsSwallowed() {
	suite.fetcher.err = errors.New(errors.ErrCodeNewsFetchFailed, "scripted failure")

	suite.Require().NoError(suite.agent.cycle(context.Background()))
	suite.expectNoSignal()
}

func (suite *NewsAgentTestSuite) TestInFlightSymbolIsSkipped() {
	suite.Require().True(suite.agent.Monitoring().Begin("AAPL"))

	suite.Require().NoError(suite.agent.cycle(context.Background()))
	suite.Zero(suite.fetcher.callCount())

	suite.agent.Monitoring().End("AAPL")

	suite.Require().NoError(suite.agent.cycle(context.Background()))
	suite.Equal(1, suite.fetcher.callCount())
}

func (suite *NewsAgentTestSuite) TestQuoteFailureStillSignalsWithZeroPrice() {
	suite.provider.failQuotes["AAPL"] = true
	suite.fetcher.results["AAPL"] = newsfeed.Result{
		Articles: []newsfeed.Article{
			article("blowout earnings", "up (5%) immediate", 0.95),
		},
	}

	suite.Require().NoError(suite.agent.cycle(context.Background()))

	signal := suite.nextSignal()
	suite.Zero(signal.Price)
}

func (suite *NewsAgentTestSuite) TestSetIntervalFloorsAtMinimum() {
	suite.agent.SetInterval(Duration(time.Minute))
	suite.Equal(MinNewsInterval, suite.agent.pollInterval())
}
