package model

import "time"

// Default portfolio created on first load when no portfolios exist.
const (
	DefaultPortfolioID   = "default"
	DefaultPortfolioName = "My Portfolio"
)

// Portfolio is a named container of positions. Positions keep insertion order.
type Portfolio struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Positions []Position `json:"positions"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate the result without touching a shared snapshot.
func (p Portfolio) Clone() Portfolio {
	out := p
	out.Positions = make([]Position, len(p.Positions))
	copy(out.Positions, p.Positions)
	return out
}

// PositionIndex returns the index of the position with the given ID, or -1.
func (p Portfolio) PositionIndex(positionID string) int {
	for i := range p.Positions {
		if p.Positions[i].ID == positionID {
			return i
		}
	}
	return -1
}

// PortfolioSummary aggregates the valuation of every position in a portfolio.
type PortfolioSummary struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	PositionCount     int     `json:"positionCount"`
	TotalInvested     float64 `json:"totalInvested"`
	TotalValue        float64 `json:"totalValue"`
	TotalProfitLoss   float64 `json:"totalProfitLoss"`
	ProfitLossPercent float64 `json:"profitLossPercent"`
}

// Summarize totals the portfolio's positions.
func (p Portfolio) Summarize() PortfolioSummary {
	s := PortfolioSummary{
		ID:            p.ID,
		Name:          p.Name,
		PositionCount: len(p.Positions),
	}
	for _, pos := range p.Positions {
		s.TotalInvested += pos.InvestedAmount
		s.TotalValue += pos.CurrentValue
	}
	s.TotalProfitLoss = s.TotalValue - s.TotalInvested
	if s.TotalInvested > 0 {
		s.ProfitLossPercent = s.TotalProfitLoss / s.TotalInvested * 100
	}
	return s
}

// ClonePortfolios deep-copies a portfolio collection.
func ClonePortfolios(in []Portfolio) []Portfolio {
	out := make([]Portfolio, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
