package testutil

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/ratelimit"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/storage"
)

// NewTestSelector wires a local-only storage selector over a temp directory.
func NewTestSelector(t *testing.T) *storage.Selector {
	t.Helper()
	return storage.NewSelector(SetupLocalStore(t), nil, nil, logger.NewNopLogger())
}

// NewTestPortfolioService creates a loaded PortfolioService backed by a fresh
// local store. Seed portfolios are saved before loading.
func NewTestPortfolioService(t *testing.T, prices *MockPriceClient, clk clock.Clock, seed ...model.Portfolio) (*service.PortfolioService, *storage.Selector) {
	t.Helper()

	store := NewTestSelector(t)
	if len(seed) > 0 {
		if err := store.SavePortfolios(t.Context(), seed); err != nil {
			t.Fatalf("Failed to seed portfolios: %v", err)
		}
	}
	svc := service.NewPortfolioService(store, prices, ratelimit.NewUnlimited(), NewRecordingPublisher(), clk, logger.NewNopLogger())
	if err := svc.Load(t.Context()); err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	return svc, store
}

// NewTestAlertService creates a loaded AlertService over store.
func NewTestAlertService(t *testing.T, store *storage.Selector, positions service.PositionFinder, clk clock.Clock, seed ...model.Alert) *service.AlertService {
	t.Helper()

	if len(seed) > 0 {
		if err := store.SaveAlerts(t.Context(), seed); err != nil {
			t.Fatalf("Failed to seed alerts: %v", err)
		}
	}
	svc := service.NewAlertService(store, positions, clk, logger.NewNopLogger())
	if err := svc.Load(t.Context()); err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	return svc
}

// MakeID generates a unique ID for testing.
func MakeID() string {
	return uuid.New().String()
}

// MakeAddress generates a random EVM-shaped contract address.
//
// Example usage:
//
//	addr := testutil.MakeAddress()
//	// Returns: "0x3f2a..." with 40 hex digits
func MakeAddress() string {
	const hex = "0123456789abcdef"
	var b strings.Builder
	b.WriteString("0x")
	for range 40 {
		b.WriteByte(hex[rand.Intn(len(hex))]) //nolint:gosec // Test data only
	}
	return b.String()
}

// MakeSymbol generates a token symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("PEPE")
//	// Returns: "PEPE1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))] //nolint:gosec // Test data only
	}
	return string(b)
}
