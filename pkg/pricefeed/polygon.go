package pricefeed

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// PolygonProvider fetches minute aggregates from the Polygon REST API.
type PolygonProvider struct {
	client *polygon.Client
}

// NewPolygonProvider creates a Polygon price provider.
func NewPolygonProvider(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon apiKey is required")
	}

	return &PolygonProvider{
		client: polygon.New(apiKey),
	}, nil
}

// Quote implements Provider using the most recent minute aggregate.
func (p *PolygonProvider) Quote(ctx context.Context, symbol string) (types.Bar, error) {
	bars, err := p.Bars(ctx, symbol, 1)
	if err != nil {
		return types.Bar{}, err
	}

	if len(bars) == 0 {
		return types.Bar{}, errors.Newf(errors.ErrCodeDataNotFound, "no aggregates returned for %s", symbol)
	}

	return bars[len(bars)-1], nil
}

// Bars implements Provider. Polygon aggregates are requested over a window
// wide enough to cover the limit even across market closures.
func (p *PolygonProvider) Bars(ctx context.Context, symbol string, limit int) ([]types.Bar, error) {
	now := time.Now()

	// Look back far enough for the requested number of minute bars; a week
	// covers weekends and holidays.
	from := now.Add(-7 * 24 * time.Hour)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Minute,
		From:       models.Millis(from),
		To:         models.Millis(now),
	}.WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	bars := make([]types.Bar, 0, limit)

	for iter.Next() {
		agg := iter.Item()

		bars = append(bars, types.Bar{
			Symbol: symbol,
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: int64(agg.Volume),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeBarsFetchFailed, err, "failed to list aggregates for %s", symbol)
	}

	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	return bars, nil
}
