package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/storage"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/testutil"
)

// TestLocalStore tests the file-backed record store.
//
// WHY: Signed-out users keep everything in this store. A record that reads
// back differently, or a Clear that leaves data behind, shows up as lost or
// resurrected portfolios.
func TestLocalStore(t *testing.T) {
	t.Run("Get reports a missing record", func(t *testing.T) {
		store := testutil.SetupLocalStore(t)

		var v []model.Portfolio
		found, err := store.Get(storage.KeyPortfolios, &v)

		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if found {
			t.Error("Expected no record on a fresh store")
		}
	})

	t.Run("Set then Get returns the record", func(t *testing.T) {
		store := testutil.SetupLocalStore(t)
		pos := testutil.NewPosition().WithHolding(100, 50).WithPrice(0.75).Build()
		want := []model.Portfolio{testutil.NewPortfolio().WithName("Main").WithPosition(pos).Build()}

		if err := store.SavePortfolios(context.Background(), storage.LocalOwner, want); err != nil {
			t.Fatalf("SavePortfolios() returned unexpected error: %v", err)
		}
		got, err := store.LoadPortfolios(context.Background(), storage.LocalOwner)
		if err != nil {
			t.Fatalf("LoadPortfolios() returned unexpected error: %v", err)
		}

		if len(got) != 1 || got[0].Name != "Main" || len(got[0].Positions) != 1 {
			t.Fatalf("Unexpected portfolios: %+v", got)
		}
		if got[0].Positions[0].CurrentValue != pos.CurrentValue {
			t.Errorf("Expected current value %v, got %v", pos.CurrentValue, got[0].Positions[0].CurrentValue)
		}
	})

	t.Run("Set leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		store, err := storage.NewLocalStore(dir)
		if err != nil {
			t.Fatalf("NewLocalStore() returned unexpected error: %v", err)
		}

		if err := store.Set(storage.KeyAlertVolume, 0.4); err != nil {
			t.Fatalf("Set() returned unexpected error: %v", err)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 || entries[0].Name() != storage.KeyAlertVolume+".json" {
			t.Errorf("Expected only the record file, got %v", entries)
		}
	})

	t.Run("Get fails on a corrupt record", func(t *testing.T) {
		dir := t.TempDir()
		store, _ := storage.NewLocalStore(dir)
		if err := os.WriteFile(filepath.Join(dir, storage.KeyAlerts+".json"), []byte("{not json"), 0o600); err != nil {
			t.Fatalf("Failed to write corrupt record: %v", err)
		}

		if _, err := store.LoadAlerts(context.Background(), storage.LocalOwner); err == nil {
			t.Error("Expected a decode error")
		}
	})

	t.Run("Clear removes records and ignores missing ones", func(t *testing.T) {
		store := testutil.SetupLocalStore(t)
		if err := store.Set(storage.KeyAlerts, []model.Alert{}); err != nil {
			t.Fatalf("Set() returned unexpected error: %v", err)
		}

		if err := store.Clear(storage.KeyAlerts, storage.KeyEmailSettings); err != nil {
			t.Fatalf("Clear() returned unexpected error: %v", err)
		}

		var v []model.Alert
		if found, _ := store.Get(storage.KeyAlerts, &v); found {
			t.Error("Expected the alerts record to be gone")
		}
	})

	t.Run("Ping fails once the directory is gone", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")
		store, _ := storage.NewLocalStore(dir)

		if err := store.Ping(context.Background()); err != nil {
			t.Fatalf("Ping() returned unexpected error: %v", err)
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Fatalf("Failed to remove data dir: %v", err)
		}
		if err := store.Ping(context.Background()); err == nil {
			t.Error("Expected Ping() to fail")
		}
	})
}
