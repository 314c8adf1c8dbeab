// Package pricefeed provides market data collaborators for the agent
// engine: a quote/bars interface with Binance and Polygon implementations.
package pricefeed

import (
	"context"

	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// ProviderType defines the type of price provider.
type ProviderType string

const (
	ProviderBinance ProviderType = "binance"
	ProviderPolygon ProviderType = "polygon"
)

// Provider fetches price samples for a symbol.
type Provider interface {
	// Quote returns the most recent OHLCV sample for the symbol.
	Quote(ctx context.Context, symbol string) (types.Bar, error)
	// Bars returns up to limit recent bars for the symbol, ascending by time.
	Bars(ctx context.Context, symbol string, limit int) ([]types.Bar, error)
}

// NewProvider creates a price provider based on the provider type.
func NewProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceProvider()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon provider requires API key string config")
		}

		return NewPolygonProvider(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported price provider: %s", providerType)
	}
}
