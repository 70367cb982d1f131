package model

import (
	"math"
	"time"
)

// AlertKind tags how the target price of an alert was configured.
type AlertKind string

const (
	AlertKindPrice      AlertKind = "price"
	AlertKindTakeProfit AlertKind = "take profit"
	AlertKindStopLoss   AlertKind = "stop loss"
)

// Valid reports whether k is a known alert kind.
func (k AlertKind) Valid() bool {
	switch k {
	case AlertKindPrice, AlertKindTakeProfit, AlertKindStopLoss:
		return true
	}
	return false
}

// IsPercentage reports whether the target is derived from a percentage offset.
func (k AlertKind) IsPercentage() bool {
	return k == AlertKindTakeProfit || k == AlertKindStopLoss
}

// Built-in sounds and defaults applied to new alerts.
const (
	DefaultSoundID     = "default"
	DefaultAlertVolume = 0.5
)

// Alert is a standing watch on one position's price. TargetPrice is always an
// absolute USD price; for percentage alerts it is fixed when the alert is created.
type Alert struct {
	ID                  string     `json:"id"`
	PositionID          string     `json:"positionId"`
	TokenSymbol         string     `json:"tokenSymbol"`
	TokenName           string     `json:"tokenName"`
	ContractAddress     string     `json:"contractAddress"`
	TargetPrice         float64    `json:"targetPrice"`
	Kind                AlertKind  `json:"alertType"`
	PercentageValue     *float64   `json:"percentageValue,omitempty"`
	IsOneTime           bool       `json:"isOneTime"`
	SoundEnabled        bool       `json:"soundEnabled"`
	SoundFile           string     `json:"soundFile,omitempty"`
	Volume              float64    `json:"volume"`
	BrowserNotification bool       `json:"browserNotification"`
	EmailNotification   bool       `json:"emailNotification"`
	Triggered           bool       `json:"triggered"`
	CreatedAt           time.Time  `json:"createdAt"`
	LastTriggered       *time.Time `json:"lastTriggered,omitempty"`
}

// PercentageTarget derives an absolute target from a base price and a
// percentage magnitude. The sign of pct is ignored; the kind decides the side.
func PercentageTarget(kind AlertKind, base, pct float64) float64 {
	p := math.Abs(pct)
	if kind == AlertKindStopLoss {
		return base * (1 - p/100)
	}
	return base * (1 + p/100)
}

// PercentageKind picks take profit or stop loss from the sign of a percentage input.
func PercentageKind(pct float64) AlertKind {
	if pct < 0 {
		return AlertKindStopLoss
	}
	return AlertKindTakeProfit
}

// Direction says on which side of the target a price landed.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// DirectionOf returns above when price is at or past target, below otherwise.
func DirectionOf(price, target float64) Direction {
	if price >= target {
		return DirectionAbove
	}
	return DirectionBelow
}

// Emoji used in notification titles and email subjects.
func (d Direction) Emoji() string {
	if d == DirectionAbove {
		return "🚀"
	}
	return "📉"
}

// AlertEvent describes a single alert firing.
type AlertEvent struct {
	Alert       Alert     `json:"alert"`
	PortfolioID string    `json:"portfolioId"`
	Position    Position  `json:"position"`
	OldPrice    float64   `json:"oldPrice"`
	NewPrice    float64   `json:"newPrice"`
	Direction   Direction `json:"direction"`
	FiredAt     time.Time `json:"firedAt"`
}

// AlertView joins an alert with the position it watches. Orphaned alerts,
// whose position no longer exists, report the network as "Unknown".
type AlertView struct {
	Alert
	Network      string   `json:"network"`
	PortfolioID  string   `json:"portfolioId,omitempty"`
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
	Orphaned     bool     `json:"orphaned"`
}

// UnknownNetwork labels alerts whose position was deleted.
const UnknownNetwork = "Unknown"

// Alert status filter values.
const (
	AlertStatusAll       = "all"
	AlertStatusActive    = "active"
	AlertStatusTriggered = "triggered"
)

// AlertFilters narrows an alert listing. Empty fields match everything.
type AlertFilters struct {
	Kinds      []AlertKind
	Status     string
	PositionID string
	SortDir    string
}

// Match reports whether a passes the filters.
func (f AlertFilters) Match(a Alert) bool {
	if f.PositionID != "" && a.PositionID != f.PositionID {
		return false
	}
	switch f.Status {
	case AlertStatusActive:
		if a.Triggered {
			return false
		}
	case AlertStatusTriggered:
		if !a.Triggered {
			return false
		}
	}
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if a.Kind == k {
			return true
		}
	}
	return false
}
