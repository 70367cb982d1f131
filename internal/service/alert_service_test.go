package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/testutil"
)

// TestAlertService_CreateAlert tests alert creation on a held position.
//
// WHY: Percentage alerts are stored as absolute targets. A target computed
// from the wrong base fires at a price the user never asked for.
func TestAlertService_CreateAlert(t *testing.T) {
	// 100 tokens for $50: average 0.5, current 0.8.
	pos := testutil.NewPosition().WithHolding(100, 50).WithPrice(0.8).Build()
	p := testutil.NewPortfolio().WithPosition(pos).Build()

	setup := func(t *testing.T) (*clock.Mock, func(request.CreateAlertRequest) (model.Alert, error)) {
		t.Helper()
		clk := clock.NewMock()
		portfolios, store := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clk, p)
		svc := testutil.NewTestAlertService(t, store, portfolios, clk)
		return clk, func(req request.CreateAlertRequest) (model.Alert, error) {
			return svc.CreateAlert(context.Background(), req)
		}
	}

	t.Run("absolute target with defaults", func(t *testing.T) {
		_, create := setup(t)

		a, err := create(request.CreateAlertRequest{PositionID: pos.ID, TargetPrice: ptr(1.2)})

		if err != nil {
			t.Fatalf("CreateAlert() returned unexpected error: %v", err)
		}
		if a.Kind != model.AlertKindPrice || !near(a.TargetPrice, 1.2) {
			t.Errorf("Expected price alert at 1.2, got %s at %v", a.Kind, a.TargetPrice)
		}
		if !a.IsOneTime || !a.SoundEnabled || a.SoundFile != model.DefaultSoundID || !near(a.Volume, 0.5) {
			t.Errorf("Expected defaults, got %+v", a)
		}
		if a.TokenSymbol != pos.TokenSymbol || a.ContractAddress != pos.ContractAddress {
			t.Errorf("Expected token copied from the position, got %s/%s", a.TokenSymbol, a.ContractAddress)
		}
		if a.Triggered {
			t.Error("Expected a new alert to be armed")
		}
	})

	t.Run("take profit is computed from the average price", func(t *testing.T) {
		_, create := setup(t)

		a, err := create(request.CreateAlertRequest{PositionID: pos.ID, PercentageValue: ptr(50.0)})

		if err != nil {
			t.Fatalf("CreateAlert() returned unexpected error: %v", err)
		}
		if a.Kind != model.AlertKindTakeProfit || !near(a.TargetPrice, 0.75) {
			t.Errorf("Expected take profit at 0.75, got %s at %v", a.Kind, a.TargetPrice)
		}
		if a.PercentageValue == nil || *a.PercentageValue != 50 {
			t.Errorf("Expected percentage 50 kept, got %v", a.PercentageValue)
		}
	})

	t.Run("negative percentage is a stop loss", func(t *testing.T) {
		_, create := setup(t)

		a, _ := create(request.CreateAlertRequest{
			PositionID: pos.ID, AlertType: "take profit", PercentageValue: ptr(-20.0),
		})

		if a.Kind != model.AlertKindStopLoss || !near(a.TargetPrice, 0.4) {
			t.Errorf("Expected stop loss at 0.4, got %s at %v", a.Kind, a.TargetPrice)
		}
	})

	t.Run("unknown position", func(t *testing.T) {
		_, create := setup(t)

		_, err := create(request.CreateAlertRequest{PositionID: "missing", TargetPrice: ptr(1.0)})

		if !errors.Is(err, apperrors.ErrPositionNotFound) {
			t.Errorf("Expected ErrPositionNotFound, got %v", err)
		}
	})

	t.Run("created at comes from the clock", func(t *testing.T) {
		clk, create := setup(t)
		clk.Add(time.Hour)

		a, _ := create(request.CreateAlertRequest{PositionID: pos.ID, TargetPrice: ptr(1.0)})

		if !a.CreatedAt.Equal(clk.Now().UTC()) {
			t.Errorf("Expected %v, got %v", clk.Now().UTC(), a.CreatedAt)
		}
	})
}

// TestAlertService_Lifecycle tests firing, re-arming and removal.
//
// WHY: A one-time alert that is not disarmed after firing would ring on
// every price cycle.
func TestAlertService_Lifecycle(t *testing.T) {
	pos := testutil.NewPosition().Build()
	p := testutil.NewPortfolio().WithPosition(pos).Build()

	t.Run("one-time alert is disarmed when fired", func(t *testing.T) {
		clk := clock.NewMock()
		portfolios, store := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clk, p)
		a := testutil.NewAlert(pos).Build()
		svc := testutil.NewTestAlertService(t, store, portfolios, clk, a)

		if err := svc.MarkFired(context.Background(), a.ID, testutil.BaseTime); err != nil {
			t.Fatalf("MarkFired() returned unexpected error: %v", err)
		}

		got, _ := svc.Alert(a.ID)
		if !got.Triggered {
			t.Error("Expected alert to be triggered")
		}
		if got.LastTriggered == nil || !got.LastTriggered.Equal(testutil.BaseTime) {
			t.Errorf("Expected last triggered %v, got %v", testutil.BaseTime, got.LastTriggered)
		}
		pending, _ := svc.PendingForPosition(context.Background(), pos.ID)
		if len(pending) != 0 {
			t.Errorf("Expected no pending alerts, got %d", len(pending))
		}
	})

	t.Run("recurring alert stays armed", func(t *testing.T) {
		clk := clock.NewMock()
		portfolios, store := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clk, p)
		a := testutil.NewAlert(pos).Recurring().Build()
		svc := testutil.NewTestAlertService(t, store, portfolios, clk, a)

		_ = svc.MarkFired(context.Background(), a.ID, testutil.BaseTime)

		pending, _ := svc.PendingForPosition(context.Background(), pos.ID)
		if len(pending) != 1 {
			t.Errorf("Expected 1 pending alert, got %d", len(pending))
		}
	})

	t.Run("edit re-arms a triggered alert", func(t *testing.T) {
		clk := clock.NewMock()
		portfolios, store := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clk, p)
		a := testutil.NewAlert(pos).Triggered().Build()
		svc := testutil.NewTestAlertService(t, store, portfolios, clk, a)

		got, err := svc.UpdateAlert(context.Background(), a.ID, request.UpdateAlertRequest{
			TargetPrice: ptr(2.0),
			SoundFile:   ptr("chime"),
		})

		if err != nil {
			t.Fatalf("UpdateAlert() returned unexpected error: %v", err)
		}
		if got.Triggered || !near(got.TargetPrice, 2) || got.SoundFile != "chime" {
			t.Errorf("Unexpected alert after edit: %+v", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		clk := clock.NewMock()
		portfolios, store := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clk, p)
		a := testutil.NewAlert(pos).Build()
		svc := testutil.NewTestAlertService(t, store, portfolios, clk, a)

		if err := svc.DeleteAlert(context.Background(), a.ID); err != nil {
			t.Fatalf("DeleteAlert() returned unexpected error: %v", err)
		}
		if err := svc.DeleteAlert(context.Background(), a.ID); !errors.Is(err, apperrors.ErrAlertNotFound) {
			t.Errorf("Expected ErrAlertNotFound, got %v", err)
		}

		stored, _ := store.LoadAlerts(context.Background())
		if len(stored) != 0 {
			t.Errorf("Expected no stored alerts, got %d", len(stored))
		}
	})
}

// TestAlertService_Views tests the joined alert listing.
//
// WHY: Deleting a position must not hide its alerts; the user has to be able
// to find and remove them.
func TestAlertService_Views(t *testing.T) {
	pos := testutil.NewPosition().Build()
	p := testutil.NewPortfolio().WithPosition(pos).Build()
	older := testutil.NewAlert(pos).WithCreatedAt(testutil.BaseTime).Build()
	newer := testutil.NewAlert(pos).Triggered().WithCreatedAt(testutil.BaseTime.Add(time.Hour)).Build()
	orphan := testutil.NewAlert(testutil.NewPosition().Build()).WithCreatedAt(testutil.BaseTime.Add(2 * time.Hour)).Build()

	clk := clock.NewMock()
	portfolios, store := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clk, p)
	svc := testutil.NewTestAlertService(t, store, portfolios, clk, older, newer, orphan)

	t.Run("newest first with orphans flagged", func(t *testing.T) {
		views := svc.Views(model.AlertFilters{})

		if len(views) != 3 {
			t.Fatalf("Expected 3 views, got %d", len(views))
		}
		if views[0].ID != orphan.ID || views[2].ID != older.ID {
			t.Errorf("Expected newest first, got %s, %s, %s", views[0].ID, views[1].ID, views[2].ID)
		}
		if !views[0].Orphaned || views[0].Network != model.UnknownNetwork || views[0].CurrentPrice != nil {
			t.Errorf("Expected orphaned view, got %+v", views[0])
		}
		if views[2].Orphaned || views[2].PortfolioID != p.ID || views[2].CurrentPrice == nil {
			t.Errorf("Expected joined view, got %+v", views[2])
		}
	})

	t.Run("ascending", func(t *testing.T) {
		views := svc.Views(model.AlertFilters{SortDir: "asc"})

		if views[0].ID != older.ID {
			t.Errorf("Expected oldest first, got %s", views[0].ID)
		}
	})

	t.Run("status and position filters", func(t *testing.T) {
		active := svc.Views(model.AlertFilters{Status: model.AlertStatusActive, PositionID: pos.ID})

		if len(active) != 1 || active[0].ID != older.ID {
			t.Errorf("Expected only the armed alert, got %d views", len(active))
		}
	})
}

// TestAlertService_ImportAlert tests the import write path.
func TestAlertService_ImportAlert(t *testing.T) {
	clk := clock.NewMock()
	portfolios, store := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clk)
	svc := testutil.NewTestAlertService(t, store, portfolios, clk)

	t.Run("missing position is allowed", func(t *testing.T) {
		a, err := svc.ImportAlert(context.Background(), model.ImportAlert{
			PositionID: "gone", TokenSymbol: "T", TargetPrice: 0.15, Volume: ptr(0.0),
		})

		if err != nil {
			t.Fatalf("ImportAlert() returned unexpected error: %v", err)
		}
		if a.Kind != model.AlertKindPrice || !near(a.Volume, model.DefaultAlertVolume) || !a.IsOneTime {
			t.Errorf("Expected defaults, got %+v", a)
		}
	})

	t.Run("target must be positive", func(t *testing.T) {
		if _, err := svc.ImportAlert(context.Background(), model.ImportAlert{TargetPrice: 0}); err == nil {
			t.Error("Expected error for zero target, got nil")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := svc.ImportAlert(context.Background(), model.ImportAlert{TargetPrice: 1, AlertType: "moon"}); err == nil {
			t.Error("Expected error for unknown type, got nil")
		}
	})
}
