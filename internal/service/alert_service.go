package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// AlertStore loads and saves the full alert collection of the current owner.
type AlertStore interface {
	LoadAlerts(ctx context.Context) ([]model.Alert, error)
	SaveAlerts(ctx context.Context, alerts []model.Alert) error
}

// PositionFinder resolves the position an alert watches.
type PositionFinder interface {
	FindPosition(positionID string) (model.Position, string, bool)
}

// AlertService owns the in-memory alert collection with the same
// copy-persist-swap discipline as PortfolioService.
type AlertService struct {
	store     AlertStore
	positions PositionFinder
	clock     clock.Clock
	logger    logger.Logger

	mu     sync.RWMutex
	alerts []model.Alert
}

func NewAlertService(store AlertStore, positions PositionFinder, clk clock.Clock, logger logger.Logger) *AlertService {
	return &AlertService{
		store:     store,
		positions: positions,
		clock:     clk,
		logger:    logger.With("component", "alert-service"),
	}
}

// Load replaces the collection with the stored one.
func (s *AlertService) Load(ctx context.Context) error {
	alerts, err := s.store.LoadAlerts(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieve, err)
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	s.mu.Lock()
	s.alerts = alerts
	s.mu.Unlock()
	s.logger.Infof("loaded %d alerts", len(alerts))
	return nil
}

// Alerts returns a copy of every alert.
func (s *AlertService) Alerts() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.alerts)
}

func (s *AlertService) Alert(id string) (model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := alertIndex(s.alerts, id)
	if i < 0 {
		return model.Alert{}, apperrors.ErrAlertNotFound
	}
	return s.alerts[i], nil
}

// CreateAlert adds an alert on an existing position. Percentage alerts get an
// absolute target computed once from the position's price base.
func (s *AlertService) CreateAlert(ctx context.Context, req request.CreateAlertRequest) (model.Alert, error) {
	pos, _, ok := s.positions.FindPosition(req.PositionID)
	if !ok {
		return model.Alert{}, apperrors.ErrPositionNotFound
	}

	kind := resolveKind(req.AlertType, req.PercentageValue)
	var target float64
	if kind.IsPercentage() {
		if req.PercentageValue == nil {
			return model.Alert{}, errors.New("percentage is required")
		}
		base := pos.PriceBase()
		if !validPrice(base) {
			return model.Alert{}, fmt.Errorf("%w: no price base for %s", apperrors.ErrInvalidPrice, pos.TokenSymbol)
		}
		target = model.PercentageTarget(kind, base, *req.PercentageValue)
	} else {
		if req.TargetPrice == nil {
			return model.Alert{}, errors.New("target price is required")
		}
		target = *req.TargetPrice
	}

	alert := model.Alert{
		ID:                  uuid.New().String(),
		PositionID:          pos.ID,
		TokenSymbol:         pos.TokenSymbol,
		TokenName:           pos.TokenName,
		ContractAddress:     pos.ContractAddress,
		TargetPrice:         target,
		Kind:                kind,
		IsOneTime:           boolOr(req.IsOneTime, true),
		SoundEnabled:        boolOr(req.SoundEnabled, true),
		SoundFile:           stringOr(req.SoundFile, model.DefaultSoundID),
		Volume:              floatOr(req.Volume, model.DefaultAlertVolume),
		BrowserNotification: req.BrowserNotification,
		EmailNotification:   req.EmailNotification,
		CreatedAt:           s.clock.Now().UTC(),
	}
	if kind.IsPercentage() {
		pct := *req.PercentageValue
		alert.PercentageValue = &pct
	}

	if err := s.insert(ctx, alert); err != nil {
		return model.Alert{}, err
	}
	s.logger.Infof("created %s alert %s for %s at %v", alert.Kind, alert.ID, alert.TokenSymbol, alert.TargetPrice)
	return alert, nil
}

// ImportAlert adds an alert exactly as described by an import entry. The
// position is not required to exist; such alerts show up as orphaned.
func (s *AlertService) ImportAlert(ctx context.Context, in model.ImportAlert) (model.Alert, error) {
	if !(in.TargetPrice > 0) || math.IsInf(in.TargetPrice, 0) {
		return model.Alert{}, errors.New("target price must be greater than 0")
	}
	kind := in.AlertType
	if kind == "" {
		kind = model.AlertKindPrice
	}
	if !kind.Valid() {
		return model.Alert{}, fmt.Errorf("unknown alert type %q", in.AlertType)
	}
	volume := floatOr(in.Volume, model.DefaultAlertVolume)
	if volume == 0 {
		volume = model.DefaultAlertVolume
	}

	alert := model.Alert{
		ID:                  uuid.New().String(),
		PositionID:          in.PositionID,
		TokenSymbol:         in.TokenSymbol,
		TokenName:           in.TokenName,
		ContractAddress:     in.ContractAddress,
		TargetPrice:         in.TargetPrice,
		Kind:                kind,
		PercentageValue:     in.PercentageValue,
		IsOneTime:           boolOr(in.IsOneTime, true),
		SoundEnabled:        boolOr(in.SoundEnabled, true),
		SoundFile:           stringOr(in.SoundFile, model.DefaultSoundID),
		Volume:              volume,
		BrowserNotification: in.BrowserNotification,
		EmailNotification:   in.EmailNotification,
		CreatedAt:           s.clock.Now().UTC(),
	}
	if err := s.insert(ctx, alert); err != nil {
		return model.Alert{}, err
	}
	return alert, nil
}

// UpdateAlert applies a user edit and re-arms the alert.
func (s *AlertService) UpdateAlert(ctx context.Context, id string, req request.UpdateAlertRequest) (model.Alert, error) {
	var out model.Alert
	err := s.mutate(ctx, func(next []model.Alert) ([]model.Alert, error) {
		i := alertIndex(next, id)
		if i < 0 {
			return nil, apperrors.ErrAlertNotFound
		}
		a := &next[i]
		if req.TargetPrice != nil {
			a.TargetPrice = *req.TargetPrice
		}
		if req.IsOneTime != nil {
			a.IsOneTime = *req.IsOneTime
		}
		if req.SoundEnabled != nil {
			a.SoundEnabled = *req.SoundEnabled
		}
		if req.SoundFile != nil {
			a.SoundFile = *req.SoundFile
		}
		if req.Volume != nil {
			a.Volume = *req.Volume
		}
		if req.BrowserNotification != nil {
			a.BrowserNotification = *req.BrowserNotification
		}
		if req.EmailNotification != nil {
			a.EmailNotification = *req.EmailNotification
		}
		a.Triggered = false
		out = *a
		return next, nil
	})
	return out, err
}

func (s *AlertService) DeleteAlert(ctx context.Context, id string) error {
	return s.mutate(ctx, func(next []model.Alert) ([]model.Alert, error) {
		i := alertIndex(next, id)
		if i < 0 {
			return nil, apperrors.ErrAlertNotFound
		}
		return append(next[:i], next[i+1:]...), nil
	})
}

// PendingForPosition returns the untriggered alerts watching positionID.
func (s *AlertService) PendingForPosition(_ context.Context, positionID string) ([]model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Alert
	for _, a := range s.alerts {
		if a.PositionID == positionID && !a.Triggered {
			out = append(out, a)
		}
	}
	return out, nil
}

// MarkFired stamps the alert's last trigger time. One-time alerts are disarmed.
func (s *AlertService) MarkFired(ctx context.Context, alertID string, at time.Time) error {
	return s.mutate(ctx, func(next []model.Alert) ([]model.Alert, error) {
		i := alertIndex(next, alertID)
		if i < 0 {
			return nil, apperrors.ErrAlertNotFound
		}
		fired := at
		next[i].LastTriggered = &fired
		if next[i].IsOneTime {
			next[i].Triggered = true
		}
		return next, nil
	})
}

// Views joins alerts with their positions and applies filters. Alerts whose
// position is gone are kept and flagged as orphaned.
func (s *AlertService) Views(filters model.AlertFilters) []model.AlertView {
	alerts := s.Alerts()

	out := make([]model.AlertView, 0, len(alerts))
	for _, a := range alerts {
		if !filters.Match(a) {
			continue
		}
		view := model.AlertView{Alert: a}
		if pos, portfolioID, ok := s.positions.FindPosition(a.PositionID); ok {
			price := pos.CurrentPrice
			view.Network = pos.Network
			view.PortfolioID = portfolioID
			view.CurrentPrice = &price
		} else {
			view.Network = model.UnknownNetwork
			view.Orphaned = true
		}
		out = append(out, view)
	}

	slices.SortStableFunc(out, func(a, b model.AlertView) int {
		if filters.SortDir == "asc" {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *AlertService) insert(ctx context.Context, alert model.Alert) error {
	return s.mutate(ctx, func(next []model.Alert) ([]model.Alert, error) {
		return append(next, alert), nil
	})
}

func (s *AlertService) mutate(ctx context.Context, fn func(next []model.Alert) ([]model.Alert, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(slices.Clone(s.alerts))
	if err != nil {
		return err
	}
	if err := s.store.SaveAlerts(ctx, next); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToPersist, err)
	}
	s.alerts = next
	return nil
}

// resolveKind maps the requested alert type to a kind. A percentage alert
// with a negative value is always a stop loss.
func resolveKind(alertType string, pct *float64) model.AlertKind {
	kind := model.AlertKind(strings.ToLower(strings.TrimSpace(alertType)))
	switch {
	case kind == "" && pct == nil:
		return model.AlertKindPrice
	case kind == "":
		return model.PercentageKind(*pct)
	case kind.IsPercentage() && pct != nil && *pct < 0:
		return model.AlertKindStopLoss
	}
	return kind
}

func alertIndex(alerts []model.Alert, id string) int {
	for i := range alerts {
		if alerts[i].ID == id {
			return i
		}
	}
	return -1
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
