package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// EmailSettingsStore loads and saves the email settings of the current owner.
type EmailSettingsStore interface {
	LoadEmailSettings(ctx context.Context) (model.EmailSettings, error)
	SaveEmailSettings(ctx context.Context, settings model.EmailSettings) error
}

// Verifier sends the verification message for a new address. *notify.EmailChannel satisfies it.
type Verifier interface {
	SendVerification(ctx context.Context, address string) error
}

// EmailSettingsService manages notification recipients.
type EmailSettingsService struct {
	store    EmailSettingsStore
	verifier Verifier
	clock    clock.Clock
	logger   logger.Logger

	mu       sync.RWMutex
	settings model.EmailSettings
}

func NewEmailSettingsService(store EmailSettingsStore, verifier Verifier, clk clock.Clock, logger logger.Logger) *EmailSettingsService {
	return &EmailSettingsService{
		store:    store,
		verifier: verifier,
		clock:    clk,
		logger:   logger.With("component", "email-settings"),
		settings: model.EmailSettings{EmailAddresses: []model.EmailAddress{}},
	}
}

func (s *EmailSettingsService) Load(ctx context.Context) error {
	settings, err := s.store.LoadEmailSettings(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieve, err)
	}
	if settings.EmailAddresses == nil {
		settings.EmailAddresses = []model.EmailAddress{}
	}
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// Settings returns the current settings. It is the email channel's settings source.
func (s *EmailSettingsService) Settings(_ context.Context) (model.EmailSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone(), nil
}

// AddAddress adds a recipient and runs the verification step. An address whose
// verification fails stays on the list unverified.
func (s *EmailSettingsService) AddAddress(ctx context.Context, req request.AddEmailAddressRequest) (model.EmailSettings, error) {
	address := strings.TrimSpace(req.Email)
	if err := validation.ValidateEmail(address); err != nil {
		return model.EmailSettings{}, apperrors.ErrInvalidEmail
	}

	current, _ := s.Settings(ctx)
	if addressIndex(current, address) >= 0 {
		return model.EmailSettings{}, apperrors.ErrEmailAlreadyAdded
	}
	if len(current.EmailAddresses) >= model.MaxEmailAddresses {
		return model.EmailSettings{}, apperrors.ErrEmailLimitReached
	}

	verified := true
	if err := s.verifier.SendVerification(ctx, address); err != nil {
		s.logger.Warnf("verification of %s failed: %v", address, err)
		verified = false
	}

	return s.mutate(ctx, func(next *model.EmailSettings) error {
		// Re-check: a concurrent add may have won while verification ran.
		if addressIndex(*next, address) >= 0 {
			return apperrors.ErrEmailAlreadyAdded
		}
		if len(next.EmailAddresses) >= model.MaxEmailAddresses {
			return apperrors.ErrEmailLimitReached
		}
		next.EmailAddresses = append(next.EmailAddresses, model.EmailAddress{
			Email:    address,
			Verified: verified,
			AddedAt:  s.clock.Now().UTC(),
		})
		return nil
	})
}

// RemoveAddress drops a recipient. Removing the last verified address turns
// email notifications off.
func (s *EmailSettingsService) RemoveAddress(ctx context.Context, address string) (model.EmailSettings, error) {
	return s.mutate(ctx, func(next *model.EmailSettings) error {
		i := addressIndex(*next, strings.TrimSpace(address))
		if i < 0 {
			return apperrors.ErrEmailNotFound
		}
		next.EmailAddresses = append(next.EmailAddresses[:i], next.EmailAddresses[i+1:]...)
		if len(next.VerifiedAddresses()) == 0 {
			next.Enabled = false
		}
		return nil
	})
}

// SetEnabled switches email notifications. Enabling needs a verified address.
func (s *EmailSettingsService) SetEnabled(ctx context.Context, req request.UpdateEmailSettingsRequest) (model.EmailSettings, error) {
	return s.mutate(ctx, func(next *model.EmailSettings) error {
		if req.Enabled == nil {
			return nil
		}
		if *req.Enabled && len(next.VerifiedAddresses()) == 0 {
			return apperrors.ErrNoVerifiedEmail
		}
		next.Enabled = *req.Enabled
		return nil
	})
}

func (s *EmailSettingsService) mutate(ctx context.Context, fn func(next *model.EmailSettings) error) (model.EmailSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings.Clone()
	if err := fn(&next); err != nil {
		return model.EmailSettings{}, err
	}
	if err := s.store.SaveEmailSettings(ctx, next); err != nil {
		return model.EmailSettings{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToPersist, err)
	}
	s.settings = next
	return next.Clone(), nil
}

func addressIndex(settings model.EmailSettings, address string) int {
	for i, a := range settings.EmailAddresses {
		if strings.EqualFold(a.Email, address) {
			return i
		}
	}
	return -1
}
