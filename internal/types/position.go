package types

import "github.com/shopspring/decimal"

// Position represents the current simulated holding for one symbol.
// At most one position exists per symbol and only the trading agent
// mutates it. Quantity never goes negative; a sell closes the whole
// position.
type Position struct {
	Symbol        string  `yaml:"symbol" json:"symbol"`
	Quantity      int64   `yaml:"quantity" json:"quantity"`
	AveragePrice  float64 `yaml:"average_price" json:"averagePrice"`
	CurrentPrice  float64 `yaml:"current_price" json:"currentPrice"`
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealizedPnL"`
}

// MarketValue returns the position value at the current price.
func (p Position) MarketValue() float64 {
	value := decimal.NewFromInt(p.Quantity).Mul(decimal.NewFromFloat(p.CurrentPrice))

	f, _ := value.Float64()

	return f
}

// CostBasis returns the total amount paid for the position.
func (p Position) CostBasis() float64 {
	cost := decimal.NewFromInt(p.Quantity).Mul(decimal.NewFromFloat(p.AveragePrice))

	f, _ := cost.Float64()

	return f
}
