package model

import "time"

// DefaultNetwork is assumed when an imported position does not name its chain.
const DefaultNetwork = "ethereum"

// Position is one holding of a token within a portfolio.
// AveragePrice, CurrentValue, ProfitLoss and ProfitLossPercent are derived and
// only ever written together by Revalue.
type Position struct {
	ID                string    `json:"id"`
	ContractAddress   string    `json:"contractAddress"`
	TokenName         string    `json:"tokenName"`
	TokenSymbol       string    `json:"tokenSymbol"`
	Network           string    `json:"network"`
	Quantity          float64   `json:"quantity"`
	InvestedAmount    float64   `json:"investedAmount"`
	AveragePrice      float64   `json:"averagePrice"`
	CurrentPrice      float64   `json:"currentPrice"`
	CurrentValue      float64   `json:"currentValue"`
	ProfitLoss        float64   `json:"profitLoss"`
	ProfitLossPercent float64   `json:"profitLossPercent"`
	LogoURL           string    `json:"logoUrl,omitempty"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// Revalue sets the current price and recomputes every derived valuation field
// from quantity, invested amount and the new price.
func (p *Position) Revalue(price float64) {
	p.CurrentPrice = price
	p.AveragePrice = AveragePrice(p.InvestedAmount, p.Quantity)
	p.CurrentValue = price * p.Quantity
	p.ProfitLoss = p.CurrentValue - p.InvestedAmount
	p.ProfitLossPercent = ProfitLossPercent(price, p.AveragePrice)
}

// AveragePrice is the cost basis per token. Zero quantity yields zero.
func AveragePrice(invested, quantity float64) float64 {
	if quantity == 0 {
		return 0
	}
	return invested / quantity
}

// ProfitLossPercent is the move of price relative to the average price, in percent.
// A zero average price has no meaningful percentage and yields zero.
func ProfitLossPercent(price, average float64) float64 {
	if average == 0 {
		return 0
	}
	return (price - average) / average * 100
}

// PriceBase is the reference price for percentage alerts: the average price,
// or the current price when no cost basis is known.
func (p Position) PriceBase() float64 {
	if p.AveragePrice != 0 {
		return p.AveragePrice
	}
	return p.CurrentPrice
}
