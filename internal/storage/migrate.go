package storage

import (
	"context"
	"fmt"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// Upserter is the write surface the migration needs on the hosted tier.
type Upserter interface {
	UpsertPortfolios(ctx context.Context, owner string, portfolios []model.Portfolio) error
	UpsertAlerts(ctx context.Context, owner string, alerts []model.Alert) error
	SaveEmailSettings(ctx context.Context, owner string, settings model.EmailSettings) error
}

// MigrationReport counts what was copied to the hosted tier.
type MigrationReport struct {
	Portfolios    int  `json:"portfolios"`
	Alerts        int  `json:"alerts"`
	EmailSettings bool `json:"emailSettings"`
}

// Migrator copies local records to the hosted tier once a user signs in.
type Migrator struct {
	local  *LocalStore
	hosted Upserter
	logger logger.Logger
}

func NewMigrator(local *LocalStore, hosted Upserter, logger logger.Logger) *Migrator {
	return &Migrator{
		local:  local,
		hosted: hosted,
		logger: logger.With("component", "migration"),
	}
}

// MigrateLocal upserts local portfolios, alerts and email settings into the
// hosted tier under userID and then clears those local records. Local data is
// only cleared when every write succeeded.
func (m *Migrator) MigrateLocal(ctx context.Context, userID string) (MigrationReport, error) {
	var report MigrationReport

	var portfolios []model.Portfolio
	hasPortfolios, err := m.local.Get(KeyPortfolios, &portfolios)
	if err != nil {
		return report, err
	}
	var alerts []model.Alert
	hasAlerts, err := m.local.Get(KeyAlerts, &alerts)
	if err != nil {
		return report, err
	}
	var settings model.EmailSettings
	hasSettings, err := m.local.Get(KeyEmailSettings, &settings)
	if err != nil {
		return report, err
	}

	if hasPortfolios && len(portfolios) > 0 {
		if err := m.hosted.UpsertPortfolios(ctx, userID, portfolios); err != nil {
			return report, fmt.Errorf("failed to migrate portfolios: %w", err)
		}
		report.Portfolios = len(portfolios)
	}
	if hasAlerts && len(alerts) > 0 {
		if err := m.hosted.UpsertAlerts(ctx, userID, alerts); err != nil {
			return report, fmt.Errorf("failed to migrate alerts: %w", err)
		}
		report.Alerts = len(alerts)
	}
	if hasSettings {
		if err := m.hosted.SaveEmailSettings(ctx, userID, settings); err != nil {
			return report, fmt.Errorf("failed to migrate email settings: %w", err)
		}
		report.EmailSettings = true
	}

	if err := m.local.Clear(KeyPortfolios, KeyAlerts, KeyEmailSettings); err != nil {
		return report, err
	}

	m.logger.Infof("migrated local data for user %s: %d portfolios, %d alerts, email settings %t",
		userID, report.Portfolios, report.Alerts, report.EmailSettings)
	return report, nil
}
