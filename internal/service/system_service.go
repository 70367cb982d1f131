package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/database"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/storage"
)

// Pinger checks a storage tier.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LoopStatus reports the price loop state.
type LoopStatus interface {
	Active() bool
	Running() bool
}

// TierReporter names the tier the next storage call would use.
type TierReporter interface {
	ActiveTier() string
}

// SystemService handles system-related operations
type SystemService struct {
	local      Pinger
	hosted     *sqlx.DB
	loop       LoopStatus
	tiers      TierReporter
	identity   storage.Identity
	appVersion string
}

// NewSystemService creates a new SystemService. hosted is nil when the hosted tier is disabled.
func NewSystemService(local Pinger, hosted *sqlx.DB, loop LoopStatus, tiers TierReporter, identity storage.Identity, appVersion string) *SystemService {
	return &SystemService{
		local:      local,
		hosted:     hosted,
		loop:       loop,
		tiers:      tiers,
		identity:   identity,
		appVersion: appVersion,
	}
}

// CheckHealth reports the state of both storage tiers and the price loop.
// The status is unhealthy when the local store or a configured hosted store is unreachable.
func (s *SystemService) CheckHealth(ctx context.Context) model.HealthInfo {
	info := model.HealthInfo{
		Status:      "healthy",
		LocalStore:  "available",
		HostedStore: "disabled",
		PriceLoop:   "stopped",
		SignedIn:    s.identity.CurrentUserID() != "",
		ActiveTier:  s.tiers.ActiveTier(),
	}

	switch {
	case s.loop.Running():
		info.PriceLoop = "running"
	case s.loop.Active():
		info.PriceLoop = "idle"
	}

	if err := s.local.Ping(ctx); err != nil {
		info.Status = "unhealthy"
		info.LocalStore = "unavailable"
		info.Error = err.Error()
	}
	if s.hosted != nil {
		info.HostedStore = "connected"
		if err := database.HealthCheck(ctx, s.hosted); err != nil {
			info.Status = "unhealthy"
			info.HostedStore = "disconnected"
			info.Error = err.Error()
		}
	}
	return info
}

// CheckVersion returns the build version and, with a hosted store, its schema version.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	info := model.VersionInfo{AppVersion: s.appVersion, HostedEnabled: s.hosted != nil}
	if s.hosted == nil {
		return info, nil
	}
	v, err := database.SchemaVersion(ctx, s.hosted)
	if err != nil {
		return info, err
	}
	info.SchemaVersion = &v
	return info, nil
}
