package storage

import (
	"context"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// LocalOwner is the owner key used for the single-namespace local tier.
const LocalOwner = "local"

// Identity reports the signed-in user, or "" when nobody is signed in.
type Identity interface {
	CurrentUserID() string
}

// Selector routes every call to the hosted tier when it is configured and a
// user is signed in, and to local storage otherwise. The choice is made per
// call. Failed hosted writes and reads fall back to local storage.
type Selector struct {
	local  *LocalStore
	hosted Backend
	auth   Identity
	logger logger.Logger
}

// NewSelector creates a Selector. Pass a nil hosted backend to disable the hosted tier.
func NewSelector(local *LocalStore, hosted Backend, auth Identity, logger logger.Logger) *Selector {
	return &Selector{
		local:  local,
		hosted: hosted,
		auth:   auth,
		logger: logger.With("component", "storage"),
	}
}

// Local returns the local tier for device-only records such as preferences.
func (s *Selector) Local() *LocalStore {
	return s.local
}

// HostedConfigured reports whether a hosted tier exists.
func (s *Selector) HostedConfigured() bool {
	return s.hosted != nil
}

// Active returns the backend and owner key for the current call.
func (s *Selector) Active() (Backend, string) {
	if s.hosted != nil && s.auth != nil {
		if userID := s.auth.CurrentUserID(); userID != "" {
			return s.hosted, userID
		}
	}
	return s.local, LocalOwner
}

// ActiveTier names the tier the next call would use.
func (s *Selector) ActiveTier() string {
	b, _ := s.Active()
	return b.Name()
}

func (s *Selector) LoadPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	b, owner := s.Active()
	out, err := b.LoadPortfolios(ctx, owner)
	if err != nil && b != Backend(s.local) {
		s.logger.Warnf("hosted portfolio load failed, using local storage: %v", err)
		return s.local.LoadPortfolios(ctx, LocalOwner)
	}
	return out, err
}

func (s *Selector) SavePortfolios(ctx context.Context, portfolios []model.Portfolio) error {
	b, owner := s.Active()
	err := b.SavePortfolios(ctx, owner, portfolios)
	if err != nil && b != Backend(s.local) {
		s.logger.Warnf("hosted portfolio save failed, writing to local storage: %v", err)
		return s.local.SavePortfolios(ctx, LocalOwner, portfolios)
	}
	return err
}

func (s *Selector) LoadAlerts(ctx context.Context) ([]model.Alert, error) {
	b, owner := s.Active()
	out, err := b.LoadAlerts(ctx, owner)
	if err != nil && b != Backend(s.local) {
		s.logger.Warnf("hosted alert load failed, using local storage: %v", err)
		return s.local.LoadAlerts(ctx, LocalOwner)
	}
	return out, err
}

func (s *Selector) SaveAlerts(ctx context.Context, alerts []model.Alert) error {
	b, owner := s.Active()
	err := b.SaveAlerts(ctx, owner, alerts)
	if err != nil && b != Backend(s.local) {
		s.logger.Warnf("hosted alert save failed, writing to local storage: %v", err)
		return s.local.SaveAlerts(ctx, LocalOwner, alerts)
	}
	return err
}

func (s *Selector) LoadEmailSettings(ctx context.Context) (model.EmailSettings, error) {
	b, owner := s.Active()
	out, err := b.LoadEmailSettings(ctx, owner)
	if err != nil && b != Backend(s.local) {
		s.logger.Warnf("hosted email settings load failed, using local storage: %v", err)
		return s.local.LoadEmailSettings(ctx, LocalOwner)
	}
	return out, err
}

func (s *Selector) SaveEmailSettings(ctx context.Context, settings model.EmailSettings) error {
	b, owner := s.Active()
	err := b.SaveEmailSettings(ctx, owner, settings)
	if err != nil && b != Backend(s.local) {
		s.logger.Warnf("hosted email settings save failed, writing to local storage: %v", err)
		return s.local.SaveEmailSettings(ctx, LocalOwner, settings)
	}
	return err
}
