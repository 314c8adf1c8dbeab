package pricefeed

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

const binanceInterval = "1m"

// BinanceProvider fetches klines from the public Binance API. No API key is
// required for market data endpoints.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates a Binance price provider.
func NewBinanceProvider() (Provider, error) {
	return &BinanceProvider{
		client: binance.NewClient("", ""),
	}, nil
}

// Quote implements Provider using the latest one-minute kline.
func (p *BinanceProvider) Quote(ctx context.Context, symbol string) (types.Bar, error) {
	bars, err := p.Bars(ctx, symbol, 1)
	if err != nil {
		return types.Bar{}, err
	}

	if len(bars) == 0 {
		return types.Bar{}, errors.Newf(errors.ErrCodeDataNotFound, "no klines returned for %s", symbol)
	}

	return bars[len(bars)-1], nil
}

// Bars implements Provider.
func (p *BinanceProvider) Bars(ctx context.Context, symbol string, limit int) ([]types.Bar, error) {
	klines, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(binanceInterval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeBarsFetchFailed, err, "failed to fetch klines for %s", symbol)
	}

	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		bars = append(bars, types.Bar{
			Symbol: symbol,
			Time:   time.UnixMilli(k.OpenTime),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: int64(volume),
		})
	}

	return bars, nil
}
