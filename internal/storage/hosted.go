package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// HostedStore persists per-user collections in the portfolios, alerts and
// email_settings tables. Queries are written with ? placeholders and rebound
// for the connected driver.
type HostedStore struct {
	db *sqlx.DB
}

// NewHostedStore creates a HostedStore over an already migrated database.
func NewHostedStore(db *sqlx.DB) *HostedStore {
	return &HostedStore{db: db}
}

func (s *HostedStore) Name() string { return TierHosted }

// Ping checks database connectivity.
func (s *HostedStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type portfolioRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Positions string    `db:"positions"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type alertRow struct {
	ID                  string     `db:"id"`
	UserID              string     `db:"user_id"`
	PositionID          string     `db:"position_id"`
	TokenSymbol         string     `db:"token_symbol"`
	TokenName           string     `db:"token_name"`
	ContractAddress     string     `db:"contract_address"`
	TargetPrice         float64    `db:"target_price"`
	AlertType           string     `db:"alert_type"`
	PercentageValue     *float64   `db:"percentage_value"`
	IsOneTime           bool       `db:"is_one_time"`
	SoundEnabled        bool       `db:"sound_enabled"`
	SoundFile           string     `db:"sound_file"`
	Volume              float64    `db:"volume"`
	BrowserNotification bool       `db:"browser_notification"`
	EmailNotification   bool       `db:"email_notification"`
	Triggered           bool       `db:"triggered"`
	CreatedAt           time.Time  `db:"created_at"`
	LastTriggered       *time.Time `db:"last_triggered"`
}

type emailSettingsRow struct {
	UserID         string    `db:"user_id"`
	Enabled        bool      `db:"enabled"`
	EmailAddresses string    `db:"email_addresses"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// LoadPortfolios returns the owner's portfolios in creation order.
func (s *HostedStore) LoadPortfolios(ctx context.Context, owner string) ([]model.Portfolio, error) {
	query := s.db.Rebind(`
		SELECT id, user_id, name, positions, created_at, updated_at
		FROM portfolios
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`)

	var rows []portfolioRow
	if err := s.db.SelectContext(ctx, &rows, query, owner); err != nil {
		return nil, fmt.Errorf("failed to query portfolios table: %w", err)
	}

	portfolios := make([]model.Portfolio, 0, len(rows))
	for _, r := range rows {
		p := model.Portfolio{
			ID:        r.ID,
			Name:      r.Name,
			CreatedAt: r.CreatedAt.UTC(),
			UpdatedAt: r.UpdatedAt.UTC(),
		}
		if err := sonic.UnmarshalString(r.Positions, &p.Positions); err != nil {
			return nil, fmt.Errorf("failed to decode positions of portfolio %s: %w", r.ID, err)
		}
		if p.Positions == nil {
			p.Positions = []model.Position{}
		}
		portfolios = append(portfolios, p)
	}
	return portfolios, nil
}

// SavePortfolios replaces the owner's portfolios: rows missing from the
// collection are deleted and the rest are upserted, in one transaction.
func (s *HostedStore) SavePortfolios(ctx context.Context, owner string, portfolios []model.Portfolio) error {
	ids := make([]string, len(portfolios))
	for i, p := range portfolios {
		ids[i] = p.ID
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := deleteMissing(ctx, tx, "portfolios", owner, ids); err != nil {
			return err
		}
		return upsertPortfolios(ctx, tx, owner, portfolios)
	})
}

// UpsertPortfolios inserts or updates the given portfolios without deleting others.
func (s *HostedStore) UpsertPortfolios(ctx context.Context, owner string, portfolios []model.Portfolio) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return upsertPortfolios(ctx, tx, owner, portfolios)
	})
}

func upsertPortfolios(ctx context.Context, tx *sqlx.Tx, owner string, portfolios []model.Portfolio) error {
	query := tx.Rebind(`
		INSERT INTO portfolios (id, user_id, name, positions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			name = excluded.name,
			positions = excluded.positions,
			updated_at = excluded.updated_at
	`)

	for _, p := range portfolios {
		positions := p.Positions
		if positions == nil {
			positions = []model.Position{}
		}
		encoded, err := sonic.MarshalString(positions)
		if err != nil {
			return fmt.Errorf("failed to encode positions of portfolio %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, p.ID, owner, p.Name, encoded, p.CreatedAt.UTC(), p.UpdatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to upsert portfolio %s: %w", p.ID, err)
		}
	}
	return nil
}

// LoadAlerts returns the owner's alerts, newest first.
func (s *HostedStore) LoadAlerts(ctx context.Context, owner string) ([]model.Alert, error) {
	query := s.db.Rebind(`
		SELECT id, user_id, position_id, token_symbol, token_name, contract_address,
			target_price, alert_type, percentage_value, is_one_time, sound_enabled,
			sound_file, volume, browser_notification, email_notification, triggered,
			created_at, last_triggered
		FROM alerts
		WHERE user_id = ?
		ORDER BY created_at DESC, id ASC
	`)

	var rows []alertRow
	if err := s.db.SelectContext(ctx, &rows, query, owner); err != nil {
		return nil, fmt.Errorf("failed to query alerts table: %w", err)
	}

	alerts := make([]model.Alert, 0, len(rows))
	for _, r := range rows {
		a := model.Alert{
			ID:                  r.ID,
			PositionID:          r.PositionID,
			TokenSymbol:         r.TokenSymbol,
			TokenName:           r.TokenName,
			ContractAddress:     r.ContractAddress,
			TargetPrice:         r.TargetPrice,
			Kind:                model.AlertKind(r.AlertType),
			PercentageValue:     r.PercentageValue,
			IsOneTime:           r.IsOneTime,
			SoundEnabled:        r.SoundEnabled,
			SoundFile:           r.SoundFile,
			Volume:              r.Volume,
			BrowserNotification: r.BrowserNotification,
			EmailNotification:   r.EmailNotification,
			Triggered:           r.Triggered,
			CreatedAt:           r.CreatedAt.UTC(),
		}
		if r.LastTriggered != nil {
			t := r.LastTriggered.UTC()
			a.LastTriggered = &t
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// SaveAlerts replaces the owner's alerts.
func (s *HostedStore) SaveAlerts(ctx context.Context, owner string, alerts []model.Alert) error {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := deleteMissing(ctx, tx, "alerts", owner, ids); err != nil {
			return err
		}
		return upsertAlerts(ctx, tx, owner, alerts)
	})
}

// UpsertAlerts inserts or updates the given alerts without deleting others.
func (s *HostedStore) UpsertAlerts(ctx context.Context, owner string, alerts []model.Alert) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return upsertAlerts(ctx, tx, owner, alerts)
	})
}

func upsertAlerts(ctx context.Context, tx *sqlx.Tx, owner string, alerts []model.Alert) error {
	query := tx.Rebind(`
		INSERT INTO alerts (
			id, user_id, position_id, token_symbol, token_name, contract_address,
			target_price, alert_type, percentage_value, is_one_time, sound_enabled,
			sound_file, volume, browser_notification, email_notification, triggered,
			created_at, last_triggered
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			position_id = excluded.position_id,
			token_symbol = excluded.token_symbol,
			token_name = excluded.token_name,
			contract_address = excluded.contract_address,
			target_price = excluded.target_price,
			alert_type = excluded.alert_type,
			percentage_value = excluded.percentage_value,
			is_one_time = excluded.is_one_time,
			sound_enabled = excluded.sound_enabled,
			sound_file = excluded.sound_file,
			volume = excluded.volume,
			browser_notification = excluded.browser_notification,
			email_notification = excluded.email_notification,
			triggered = excluded.triggered,
			last_triggered = excluded.last_triggered
	`)

	for _, a := range alerts {
		var lastTriggered *time.Time
		if a.LastTriggered != nil {
			t := a.LastTriggered.UTC()
			lastTriggered = &t
		}
		_, err := tx.ExecContext(ctx, query,
			a.ID, owner, a.PositionID, a.TokenSymbol, a.TokenName, a.ContractAddress,
			a.TargetPrice, string(a.Kind), a.PercentageValue, a.IsOneTime, a.SoundEnabled,
			a.SoundFile, a.Volume, a.BrowserNotification, a.EmailNotification, a.Triggered,
			a.CreatedAt.UTC(), lastTriggered,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert alert %s: %w", a.ID, err)
		}
	}
	return nil
}

// LoadEmailSettings returns the owner's settings, or zero settings when none are stored.
func (s *HostedStore) LoadEmailSettings(ctx context.Context, owner string) (model.EmailSettings, error) {
	query := s.db.Rebind(`
		SELECT user_id, enabled, email_addresses, updated_at
		FROM email_settings
		WHERE user_id = ?
	`)

	var row emailSettingsRow
	err := s.db.GetContext(ctx, &row, query, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EmailSettings{EmailAddresses: []model.EmailAddress{}}, nil
	}
	if err != nil {
		return model.EmailSettings{}, fmt.Errorf("failed to query email_settings table: %w", err)
	}

	settings := model.EmailSettings{Enabled: row.Enabled}
	if err := sonic.UnmarshalString(row.EmailAddresses, &settings.EmailAddresses); err != nil {
		return model.EmailSettings{}, fmt.Errorf("failed to decode email addresses: %w", err)
	}
	return settings, nil
}

// SaveEmailSettings upserts the owner's settings row.
func (s *HostedStore) SaveEmailSettings(ctx context.Context, owner string, settings model.EmailSettings) error {
	addresses := settings.EmailAddresses
	if addresses == nil {
		addresses = []model.EmailAddress{}
	}
	encoded, err := sonic.MarshalString(addresses)
	if err != nil {
		return fmt.Errorf("failed to encode email addresses: %w", err)
	}

	query := s.db.Rebind(`
		INSERT INTO email_settings (user_id, enabled, email_addresses, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = excluded.enabled,
			email_addresses = excluded.email_addresses,
			updated_at = excluded.updated_at
	`)
	if _, err := s.db.ExecContext(ctx, query, owner, settings.Enabled, encoded, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert email settings: %w", err)
	}
	return nil
}

func (s *HostedStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// deleteMissing removes the owner's rows of table whose id is not in keep.
func deleteMissing(ctx context.Context, tx *sqlx.Tx, table, owner string, keep []string) error {
	var (
		query string
		args  []any
		err   error
	)
	if len(keep) == 0 {
		query = "DELETE FROM " + table + " WHERE user_id = ?"
		args = []any{owner}
	} else {
		query, args, err = sqlx.In("DELETE FROM "+table+" WHERE user_id = ? AND id NOT IN (?)", owner, keep)
		if err != nil {
			return fmt.Errorf("failed to build delete for %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to delete stale rows from %s: %w", table, err)
	}
	return nil
}
