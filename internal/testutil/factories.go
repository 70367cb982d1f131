package testutil

import (
	"time"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// Fixed timestamp used by builders so results are comparable across runs.
var BaseTime = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build()
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithPosition(testutil.NewPosition().Build()).
//	    Build()
type PortfolioBuilder struct {
	ID        string
	Name      string
	Positions []model.Position
	CreatedAt time.Time
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:        MakeID(),
		Name:      MakePortfolioName("Test Portfolio"),
		Positions: []model.Position{},
		CreatedAt: BaseTime,
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithPosition appends a position.
func (b *PortfolioBuilder) WithPosition(p model.Position) *PortfolioBuilder {
	b.Positions = append(b.Positions, p)
	return b
}

// WithCreatedAt sets the creation time.
func (b *PortfolioBuilder) WithCreatedAt(at time.Time) *PortfolioBuilder {
	b.CreatedAt = at
	return b
}

func (b *PortfolioBuilder) Build() model.Portfolio {
	return model.Portfolio{
		ID:        b.ID,
		Name:      b.Name,
		Positions: append([]model.Position{}, b.Positions...),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.CreatedAt,
	}
}

// PositionBuilder provides a fluent interface for creating test positions.
// Build revalues the position, so derived fields are always consistent.
//
// Example usage:
//
//	pos := testutil.NewPosition().
//	    WithToken("0xAA", "TKA").
//	    WithHolding(100, 50).
//	    WithPrice(0.75).
//	    Build()
type PositionBuilder struct {
	ID              string
	ContractAddress string
	TokenSymbol     string
	TokenName       string
	Network         string
	Quantity        float64
	InvestedAmount  float64
	CurrentPrice    float64
}

// NewPosition creates a PositionBuilder: 100 tokens bought for $50, priced at $0.5.
func NewPosition() *PositionBuilder {
	symbol := MakeSymbol("TK")
	return &PositionBuilder{
		ID:              MakeID(),
		ContractAddress: MakeAddress(),
		TokenSymbol:     symbol,
		TokenName:       symbol + " Token",
		Network:         model.DefaultNetwork,
		Quantity:        100,
		InvestedAmount:  50,
		CurrentPrice:    0.5,
	}
}

func (b *PositionBuilder) WithID(id string) *PositionBuilder {
	b.ID = id
	return b
}

// WithToken sets the contract address and symbol.
func (b *PositionBuilder) WithToken(address, symbol string) *PositionBuilder {
	b.ContractAddress = address
	b.TokenSymbol = symbol
	b.TokenName = symbol + " Token"
	return b
}

// WithHolding sets quantity and invested amount.
func (b *PositionBuilder) WithHolding(quantity, invested float64) *PositionBuilder {
	b.Quantity = quantity
	b.InvestedAmount = invested
	return b
}

func (b *PositionBuilder) WithPrice(price float64) *PositionBuilder {
	b.CurrentPrice = price
	return b
}

func (b *PositionBuilder) Build() model.Position {
	p := model.Position{
		ID:              b.ID,
		ContractAddress: b.ContractAddress,
		TokenName:       b.TokenName,
		TokenSymbol:     b.TokenSymbol,
		Network:         b.Network,
		Quantity:        b.Quantity,
		InvestedAmount:  b.InvestedAmount,
		LastUpdated:     BaseTime,
	}
	p.Revalue(b.CurrentPrice)
	return p
}

// AlertBuilder provides a fluent interface for creating test alerts.
//
// Example usage:
//
//	alert := testutil.NewAlert(pos).WithTarget(1.5).Recurring().Build()
type AlertBuilder struct {
	alert model.Alert
}

// NewAlert creates a one-time absolute alert on pos with sound enabled and a
// target 50% above its current price.
func NewAlert(pos model.Position) *AlertBuilder {
	return &AlertBuilder{alert: model.Alert{
		ID:              MakeID(),
		PositionID:      pos.ID,
		TokenSymbol:     pos.TokenSymbol,
		TokenName:       pos.TokenName,
		ContractAddress: pos.ContractAddress,
		TargetPrice:     pos.CurrentPrice * 1.5,
		Kind:            model.AlertKindPrice,
		IsOneTime:       true,
		SoundEnabled:    true,
		SoundFile:       model.DefaultSoundID,
		Volume:          model.DefaultAlertVolume,
		CreatedAt:       BaseTime,
	}}
}

func (b *AlertBuilder) WithID(id string) *AlertBuilder {
	b.alert.ID = id
	return b
}

func (b *AlertBuilder) WithTarget(target float64) *AlertBuilder {
	b.alert.TargetPrice = target
	return b
}

// Recurring makes the alert fire on every crossing.
func (b *AlertBuilder) Recurring() *AlertBuilder {
	b.alert.IsOneTime = false
	return b
}

func (b *AlertBuilder) Triggered() *AlertBuilder {
	b.alert.Triggered = true
	return b
}

// WithChannels selects the browser and email channels.
func (b *AlertBuilder) WithChannels(browser, email bool) *AlertBuilder {
	b.alert.BrowserNotification = browser
	b.alert.EmailNotification = email
	return b
}

func (b *AlertBuilder) WithCreatedAt(at time.Time) *AlertBuilder {
	b.alert.CreatedAt = at
	return b
}

func (b *AlertBuilder) Build() model.Alert {
	return b.alert
}
