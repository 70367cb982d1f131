package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// Record keys of the local store.
const (
	KeyPortfolios       = "crypto-portfolios"
	KeyAlerts           = "crypto-alerts"
	KeyEmailSettings    = "crypto-email-settings"
	KeyAdminSession     = "crypto-admin-session"
	KeySidebarCollapsed = "crypto-sidebar-collapsed"
	KeyAlertVolume      = "crypto-alert-volume"
)

// LocalStore keeps named JSON records as files in a directory. It has a single
// namespace: the owner argument of Backend methods is ignored.
type LocalStore struct {
	dir string
	mu  sync.RWMutex
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create local data dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Name() string { return TierLocal }

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get decodes the record stored under key into v. It reports false when the record does not exist.
func (s *LocalStore) Get(key string, v any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Set replaces the record stored under key. The write goes to a temp file first
// so a crash never leaves a half-written record.
func (s *LocalStore) Set(key string, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Clear removes the given records. Missing records are ignored.
func (s *LocalStore) Clear(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

func (s *LocalStore) LoadPortfolios(_ context.Context, _ string) ([]model.Portfolio, error) {
	var out []model.Portfolio
	if _, err := s.Get(KeyPortfolios, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LocalStore) SavePortfolios(_ context.Context, _ string, portfolios []model.Portfolio) error {
	return s.Set(KeyPortfolios, portfolios)
}

func (s *LocalStore) LoadAlerts(_ context.Context, _ string) ([]model.Alert, error) {
	var out []model.Alert
	if _, err := s.Get(KeyAlerts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LocalStore) SaveAlerts(_ context.Context, _ string, alerts []model.Alert) error {
	return s.Set(KeyAlerts, alerts)
}

func (s *LocalStore) LoadEmailSettings(_ context.Context, _ string) (model.EmailSettings, error) {
	var out model.EmailSettings
	if _, err := s.Get(KeyEmailSettings, &out); err != nil {
		return model.EmailSettings{}, err
	}
	return out, nil
}

func (s *LocalStore) SaveEmailSettings(_ context.Context, _ string, settings model.EmailSettings) error {
	return s.Set(KeyEmailSettings, settings)
}

// Ping checks that the data directory is still reachable.
func (s *LocalStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("local data dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local data dir %s is not a directory", s.dir)
	}
	return nil
}
