package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/auth"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/storage"
)

// Reloader re-reads its state from the active storage tier.
type Reloader interface {
	Load(ctx context.Context) error
}

// LocalMigrator copies local records to the hosted tier. *storage.Migrator satisfies it.
type LocalMigrator interface {
	MigrateLocal(ctx context.Context, userID string) (storage.MigrationReport, error)
}

// AuthService connects the identity session to storage: signing in migrates
// local data to the hosted tier and reloads every collection, signing out
// reloads from local storage.
type AuthService struct {
	session   *auth.Session
	migrator  LocalMigrator
	reloaders []Reloader
	logger    logger.Logger

	mu            sync.Mutex
	lastMigration *storage.MigrationReport
}

// NewAuthService registers the sign-in listener on session. migrator may be nil
// when no hosted tier is configured.
func NewAuthService(session *auth.Session, migrator LocalMigrator, logger logger.Logger, reloaders ...Reloader) *AuthService {
	s := &AuthService{
		session:   session,
		migrator:  migrator,
		reloaders: reloaders,
		logger:    logger.With("component", "auth"),
	}
	session.OnSignIn(s.onSignIn)
	return s
}

func (s *AuthService) onSignIn(ctx context.Context, user auth.User) error {
	s.mu.Lock()
	s.lastMigration = nil
	s.mu.Unlock()
	if s.migrator != nil {
		report, err := s.migrator.MigrateLocal(ctx, user.ID)
		if err != nil {
			// Local data stays in place and is retried on the next sign-in.
			s.logger.Errorf("migration of local data for %s failed: %v", user.ID, err)
		} else {
			s.mu.Lock()
			s.lastMigration = &report
			s.mu.Unlock()
			s.logger.Infof("migrated %d portfolios and %d alerts for %s", report.Portfolios, report.Alerts, user.ID)
		}
	}
	return s.reload(ctx)
}

// SignIn records the user, migrates and reloads.
func (s *AuthService) SignIn(ctx context.Context, userID, email string) (auth.User, *storage.MigrationReport, error) {
	user, err := s.session.SignIn(ctx, userID, email)
	if err != nil {
		return user, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return user, s.lastMigration, nil
}

// SignOut forgets the user and reloads from local storage.
func (s *AuthService) SignOut(ctx context.Context) error {
	s.session.SignOut()
	return s.reload(ctx)
}

func (s *AuthService) Current() (auth.User, bool) {
	return s.session.CurrentUser()
}

func (s *AuthService) reload(ctx context.Context) error {
	for _, r := range s.reloaders {
		if err := r.Load(ctx); err != nil {
			return fmt.Errorf("failed to reload state: %w", err)
		}
	}
	return nil
}
