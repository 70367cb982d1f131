package service

import (
	"fmt"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/notify"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/storage"
)

// PreferencesService keeps device-level UI settings. They always live in local
// storage, whoever is signed in.
type PreferencesService struct {
	local KeyValueStore
}

func NewPreferencesService(local KeyValueStore) *PreferencesService {
	return &PreferencesService{local: local}
}

// Preferences returns the stored settings with defaults for missing records.
func (s *PreferencesService) Preferences() (model.Preferences, error) {
	prefs := model.Preferences{AlertVolume: model.DefaultAlertVolume}
	if _, err := s.local.Get(storage.KeySidebarCollapsed, &prefs.SidebarCollapsed); err != nil {
		return model.Preferences{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieve, err)
	}
	if _, err := s.local.Get(storage.KeyAlertVolume, &prefs.AlertVolume); err != nil {
		return model.Preferences{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieve, err)
	}
	prefs.AlertVolume = notify.ClampVolume(prefs.AlertVolume)
	return prefs, nil
}

// AlertVolume is the default volume for sound tests and new alerts.
func (s *PreferencesService) AlertVolume() float64 {
	prefs, err := s.Preferences()
	if err != nil {
		return model.DefaultAlertVolume
	}
	return prefs.AlertVolume
}

func (s *PreferencesService) UpdatePreferences(req request.UpdatePreferencesRequest) (model.Preferences, error) {
	if req.SidebarCollapsed != nil {
		if err := s.local.Set(storage.KeySidebarCollapsed, *req.SidebarCollapsed); err != nil {
			return model.Preferences{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToPersist, err)
		}
	}
	if req.AlertVolume != nil {
		if err := s.local.Set(storage.KeyAlertVolume, notify.ClampVolume(*req.AlertVolume)); err != nil {
			return model.Preferences{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToPersist, err)
		}
	}
	return s.Preferences()
}
