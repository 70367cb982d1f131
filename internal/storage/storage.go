// Package storage persists portfolios, alerts and email settings to either
// local device storage or the hosted relational store.
package storage

import (
	"context"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// Backend is a persistence tier. Every save replaces the owner's full collection.
type Backend interface {
	Name() string

	LoadPortfolios(ctx context.Context, owner string) ([]model.Portfolio, error)
	SavePortfolios(ctx context.Context, owner string, portfolios []model.Portfolio) error

	LoadAlerts(ctx context.Context, owner string) ([]model.Alert, error)
	SaveAlerts(ctx context.Context, owner string, alerts []model.Alert) error

	LoadEmailSettings(ctx context.Context, owner string) (model.EmailSettings, error)
	SaveEmailSettings(ctx context.Context, owner string, settings model.EmailSettings) error

	Ping(ctx context.Context) error
}

// Tier names reported by Backend.Name.
const (
	TierLocal  = "local"
	TierHosted = "hosted"
)
