// Package newsfeed fetches per-symbol news with pre-computed analysis from
// an external news API.
package newsfeed

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// ArticleAnalysis is the provider's analysis attached to one article.
type ArticleAnalysis struct {
	Sentiment string   `json:"sentiment"`
	KeyTopics []string `json:"keyTopics"`
	// MarketImpact follows the grammar parsed by ParseMarketImpact.
	MarketImpact   string   `json:"marketImpact"`
	TradingSignals []string `json:"tradingSignals"`
	Confidence     float64  `json:"confidence"`
}

// Article is one news item for a symbol.
type Article struct {
	Title       string          `json:"title"`
	Source      string          `json:"source"`
	URL         string          `json:"url"`
	PublishedAt time.Time       `json:"publishedAt"`
	Analysis    ArticleAnalysis `json:"analysis"`
}

// Result is the news response for one symbol.
type Result struct {
	Symbol   string    `json:"symbol"`
	Articles []Article `json:"articles"`
}

// Fetcher fetches analyzed news for a symbol.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (Result, error)
}

// Client is a Fetcher backed by an HTTP news API.
type Client struct {
	client *resty.Client
}

// NewClient creates a news client for the given base URL. The API key is
// sent as a query parameter on every request.
func NewClient(baseURL, apiKey string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(defaultTimeout)

	if apiKey != "" {
		client.SetQueryParam("token", apiKey)
	}

	return &Client{client: client}
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, symbol string) (Result, error) {
	var result Result

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get("/news")
	if err != nil {
		return Result{}, errors.Wrapf(errors.ErrCodeNewsFetchFailed, err, "failed to fetch news for %s", symbol)
	}

	if resp.IsError() {
		return Result{}, errors.Newf(errors.ErrCodeNewsFetchFailed, "news API returned %s for %s", resp.Status(), symbol)
	}

	if result.Symbol == "" {
		result.Symbol = symbol
	}

	return result, nil
}
