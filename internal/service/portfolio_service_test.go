package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/benbjohnson/clock"
	"go.uber.org/ratelimit"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// failingStore keeps whatever was loaded but refuses every save.
type failingStore struct {
	portfolios []model.Portfolio
}

func (s *failingStore) LoadPortfolios(context.Context) ([]model.Portfolio, error) {
	return s.portfolios, nil
}

func (s *failingStore) SavePortfolios(context.Context, []model.Portfolio) error {
	return errors.New("disk full")
}

// TestPortfolioService_Load tests first-run and reload behavior.
//
// WHY: A new user must always land on a usable portfolio, and a reload after
// sign-in must not lose the user's selection when it still exists.
func TestPortfolioService_Load(t *testing.T) {
	t.Run("creates the default portfolio when storage is empty", func(t *testing.T) {
		// Setup
		svc, store := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock())

		// Execute
		portfolios := svc.Portfolios()

		// Assert
		if len(portfolios) != 1 {
			t.Fatalf("Expected 1 portfolio, got %d", len(portfolios))
		}
		if portfolios[0].ID != model.DefaultPortfolioID || portfolios[0].Name != model.DefaultPortfolioName {
			t.Errorf("Expected default portfolio, got %s/%s", portfolios[0].ID, portfolios[0].Name)
		}
		if svc.ActiveID() != model.DefaultPortfolioID {
			t.Errorf("Expected default to be active, got '%s'", svc.ActiveID())
		}
		saved, err := store.LoadPortfolios(context.Background())
		if err != nil || len(saved) != 1 {
			t.Errorf("Expected the default portfolio to be saved, got %d (%v)", len(saved), err)
		}
	})

	t.Run("first stored portfolio becomes active", func(t *testing.T) {
		p1 := testutil.NewPortfolio().WithName("First").Build()
		p2 := testutil.NewPortfolio().WithName("Second").Build()

		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock(), p1, p2)

		if svc.ActiveID() != p1.ID {
			t.Errorf("Expected '%s' active, got '%s'", p1.ID, svc.ActiveID())
		}
		if got := svc.Portfolios(); got[0].Name != "First" || got[1].Name != "Second" {
			t.Errorf("Expected stored order, got %s, %s", got[0].Name, got[1].Name)
		}
	})

	t.Run("reload keeps an active portfolio that still exists", func(t *testing.T) {
		p1 := testutil.NewPortfolio().Build()
		p2 := testutil.NewPortfolio().Build()
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock(), p1, p2)
		if err := svc.SetActive(p2.ID); err != nil {
			t.Fatalf("SetActive() returned unexpected error: %v", err)
		}

		if err := svc.Load(context.Background()); err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		if svc.ActiveID() != p2.ID {
			t.Errorf("Expected '%s' to stay active, got '%s'", p2.ID, svc.ActiveID())
		}
	})
}

// TestPortfolioService_Portfolios tests portfolio CRUD.
//
// WHY: Deleting the last portfolio would leave positions with nowhere to go,
// and the active selection must always point at an existing portfolio.
func TestPortfolioService_Portfolios(t *testing.T) {
	t.Run("new portfolio becomes active", func(t *testing.T) {
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock())

		p, err := svc.CreatePortfolio(context.Background(), request.CreatePortfolioRequest{Name: "  Degen Bags "})

		if err != nil {
			t.Fatalf("CreatePortfolio() returned unexpected error: %v", err)
		}
		if p.Name != "Degen Bags" {
			t.Errorf("Expected trimmed name, got '%s'", p.Name)
		}
		if svc.ActiveID() != p.ID {
			t.Errorf("Expected new portfolio active, got '%s'", svc.ActiveID())
		}
		if len(svc.Portfolios()) != 2 {
			t.Errorf("Expected 2 portfolios, got %d", len(svc.Portfolios()))
		}
	})

	t.Run("rename", func(t *testing.T) {
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock())

		p, err := svc.RenamePortfolio(context.Background(), model.DefaultPortfolioID, request.UpdatePortfolioRequest{Name: ptr("Main")})

		if err != nil {
			t.Fatalf("RenamePortfolio() returned unexpected error: %v", err)
		}
		if p.Name != "Main" {
			t.Errorf("Expected 'Main', got '%s'", p.Name)
		}
	})

	t.Run("the last portfolio cannot be deleted", func(t *testing.T) {
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock())

		err := svc.DeletePortfolio(context.Background(), model.DefaultPortfolioID)

		if !errors.Is(err, apperrors.ErrLastPortfolio) {
			t.Errorf("Expected ErrLastPortfolio, got %v", err)
		}
		if len(svc.Portfolios()) != 1 {
			t.Error("Expected the portfolio to survive")
		}
	})

	t.Run("deleting the active portfolio selects the first remaining", func(t *testing.T) {
		p1 := testutil.NewPortfolio().Build()
		p2 := testutil.NewPortfolio().Build()
		p3 := testutil.NewPortfolio().Build()
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock(), p1, p2, p3)
		_ = svc.SetActive(p2.ID)

		if err := svc.DeletePortfolio(context.Background(), p2.ID); err != nil {
			t.Fatalf("DeletePortfolio() returned unexpected error: %v", err)
		}

		if svc.ActiveID() != p1.ID {
			t.Errorf("Expected '%s' active, got '%s'", p1.ID, svc.ActiveID())
		}
	})

	t.Run("deleting another portfolio keeps the selection", func(t *testing.T) {
		p1 := testutil.NewPortfolio().Build()
		p2 := testutil.NewPortfolio().Build()
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock(), p1, p2)
		_ = svc.SetActive(p2.ID)

		_ = svc.DeletePortfolio(context.Background(), p1.ID)

		if svc.ActiveID() != p2.ID {
			t.Errorf("Expected '%s' active, got '%s'", p2.ID, svc.ActiveID())
		}
	})

	t.Run("unknown portfolio", func(t *testing.T) {
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock())

		if err := svc.SetActive("missing"); !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
		if _, err := svc.Portfolio("missing"); !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})

	t.Run("a failed save leaves the snapshot untouched", func(t *testing.T) {
		store := &failingStore{portfolios: []model.Portfolio{testutil.NewPortfolio().Build()}}
		svc := service.NewPortfolioService(store, testutil.NewMockPriceClient(), ratelimit.NewUnlimited(),
			testutil.NewRecordingPublisher(), clock.NewMock(), logger.NewNopLogger())
		if err := svc.Load(context.Background()); err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		_, err := svc.CreatePortfolio(context.Background(), request.CreatePortfolioRequest{Name: "Lost"})

		if !errors.Is(err, apperrors.ErrFailedToPersist) {
			t.Errorf("Expected ErrFailedToPersist, got %v", err)
		}
		if len(svc.Portfolios()) != 1 {
			t.Errorf("Expected 1 portfolio, got %d", len(svc.Portfolios()))
		}
	})
}

// TestPortfolioService_Positions tests adding, editing and removing positions.
//
// WHY: Every valuation field is derived from quantity, invested amount and
// price; an edit that forgets one of them shows the user a wrong P/L.
func TestPortfolioService_Positions(t *testing.T) {
	const addr = "0x6B175474E89094C44Da98b954EedeAC495271d0F"

	t.Run("adds a looked-up token valued at the current price", func(t *testing.T) {
		// Setup
		prices := testutil.NewMockPriceClient().WithQuote(addr, "DAI", 0.75)
		svc, _ := testutil.NewTestPortfolioService(t, prices, clock.NewMock())

		// Execute
		pos, err := svc.AddPosition(context.Background(), model.DefaultPortfolioID, request.CreatePositionRequest{
			ContractAddress: addr,
			Quantity:        100,
			InvestedAmount:  50,
		})

		// Assert
		if err != nil {
			t.Fatalf("AddPosition() returned unexpected error: %v", err)
		}
		if pos.TokenSymbol != "DAI" || pos.Network != model.DefaultNetwork {
			t.Errorf("Expected token metadata from the lookup, got %s on %s", pos.TokenSymbol, pos.Network)
		}
		if !near(pos.AveragePrice, 0.5) || !near(pos.CurrentValue, 75) || !near(pos.ProfitLoss, 25) || !near(pos.ProfitLossPercent, 50) {
			t.Errorf("Unexpected valuation: %+v", pos)
		}
		p, _ := svc.Portfolio(model.DefaultPortfolioID)
		if len(p.Positions) != 1 {
			t.Errorf("Expected 1 position, got %d", len(p.Positions))
		}
	})

	t.Run("unknown token adds nothing", func(t *testing.T) {
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock())

		_, err := svc.AddPosition(context.Background(), model.DefaultPortfolioID, request.CreatePositionRequest{
			ContractAddress: addr, Quantity: 1,
		})

		if !errors.Is(err, apperrors.ErrTokenNotFound) {
			t.Errorf("Expected ErrTokenNotFound, got %v", err)
		}
		p, _ := svc.Portfolio(model.DefaultPortfolioID)
		if len(p.Positions) != 0 {
			t.Errorf("Expected no positions, got %d", len(p.Positions))
		}
	})

	t.Run("unknown portfolio is checked before the lookup", func(t *testing.T) {
		prices := testutil.NewMockPriceClient().WithQuote(addr, "DAI", 1)
		svc, _ := testutil.NewTestPortfolioService(t, prices, clock.NewMock())

		_, err := svc.AddPosition(context.Background(), "missing", request.CreatePositionRequest{ContractAddress: addr, Quantity: 1})

		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
		if prices.QueryCount() != 0 {
			t.Errorf("Expected no lookups, got %d", prices.QueryCount())
		}
	})

	t.Run("edit re-fetches the price and recomputes", func(t *testing.T) {
		pos := testutil.NewPosition().WithToken(addr, "DAI").WithHolding(100, 50).WithPrice(0.5).Build()
		p := testutil.NewPortfolio().WithPosition(pos).Build()
		prices := testutil.NewMockPriceClient().WithQuote(addr, "DAI", 2)
		svc, _ := testutil.NewTestPortfolioService(t, prices, clock.NewMock(), p)

		got, err := svc.UpdatePosition(context.Background(), p.ID, pos.ID, request.UpdatePositionRequest{
			Quantity:       ptr(200.0),
			InvestedAmount: ptr(100.0),
		})

		if err != nil {
			t.Fatalf("UpdatePosition() returned unexpected error: %v", err)
		}
		if !near(got.CurrentPrice, 2) || !near(got.CurrentValue, 400) || !near(got.AveragePrice, 0.5) || !near(got.ProfitLoss, 300) {
			t.Errorf("Unexpected valuation: %+v", got)
		}
	})

	t.Run("edit keeps the stored price when the lookup fails", func(t *testing.T) {
		pos := testutil.NewPosition().WithToken(addr, "DAI").WithHolding(100, 50).WithPrice(0.8).Build()
		p := testutil.NewPortfolio().WithPosition(pos).Build()
		prices := testutil.NewMockPriceClient().WithError(apperrors.ErrPriceSource)
		svc, _ := testutil.NewTestPortfolioService(t, prices, clock.NewMock(), p)

		got, err := svc.UpdatePosition(context.Background(), p.ID, pos.ID, request.UpdatePositionRequest{Quantity: ptr(50.0)})

		if err != nil {
			t.Fatalf("UpdatePosition() returned unexpected error: %v", err)
		}
		if !near(got.CurrentPrice, 0.8) || !near(got.CurrentValue, 40) || !near(got.AveragePrice, 1) {
			t.Errorf("Unexpected valuation: %+v", got)
		}
	})

	t.Run("edit with an explicit price skips the lookup", func(t *testing.T) {
		pos := testutil.NewPosition().WithToken(addr, "DAI").Build()
		p := testutil.NewPortfolio().WithPosition(pos).Build()
		prices := testutil.NewMockPriceClient()
		svc, _ := testutil.NewTestPortfolioService(t, prices, clock.NewMock(), p)

		got, _ := svc.UpdatePosition(context.Background(), p.ID, pos.ID, request.UpdatePositionRequest{CurrentPrice: ptr(3.0)})

		if !near(got.CurrentPrice, 3) {
			t.Errorf("Expected price 3, got %v", got.CurrentPrice)
		}
		if prices.QueryCount() != 0 {
			t.Errorf("Expected no lookups, got %d", prices.QueryCount())
		}
	})

	t.Run("delete", func(t *testing.T) {
		pos := testutil.NewPosition().Build()
		p := testutil.NewPortfolio().WithPosition(pos).Build()
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock(), p)

		if err := svc.DeletePosition(context.Background(), p.ID, pos.ID); err != nil {
			t.Fatalf("DeletePosition() returned unexpected error: %v", err)
		}
		if err := svc.DeletePosition(context.Background(), p.ID, pos.ID); !errors.Is(err, apperrors.ErrPositionNotFound) {
			t.Errorf("Expected ErrPositionNotFound, got %v", err)
		}
	})

	t.Run("price updates reject invalid prices", func(t *testing.T) {
		pos := testutil.NewPosition().Build()
		p := testutil.NewPortfolio().WithPosition(pos).Build()
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock(), p)

		for _, price := range []float64{0, -1, math.Inf(1)} {
			if _, err := svc.UpdatePositionPrice(context.Background(), p.ID, pos.ID, price); !errors.Is(err, apperrors.ErrInvalidPrice) {
				t.Errorf("Expected ErrInvalidPrice for %v, got %v", price, err)
			}
		}
	})

	t.Run("mutations publish the new collection", func(t *testing.T) {
		pub := testutil.NewRecordingPublisher()
		svc := service.NewPortfolioService(testutil.NewTestSelector(t), testutil.NewMockPriceClient(),
			ratelimit.NewUnlimited(), pub, clock.NewMock(), logger.NewNopLogger())
		_ = svc.Load(context.Background())

		_, _ = svc.CreatePortfolio(context.Background(), request.CreatePortfolioRequest{Name: "Two"})

		if pub.Count(realtime.EventPortfolioUpdated) != 1 {
			t.Errorf("Expected 1 update event, got %d", pub.Count(realtime.EventPortfolioUpdated))
		}
	})
}

// TestPortfolioService_ImportPosition tests the import write path.
//
// WHY: Imports bypass the price lookup, so the average price must be derived
// from the invested amount exactly as the admin documented it.
func TestPortfolioService_ImportPosition(t *testing.T) {
	t.Run("adds to the first portfolio with a derived average", func(t *testing.T) {
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock())

		pos, err := svc.ImportPosition(context.Background(), model.ImportPosition{
			ContractAddress: "0xAA",
			TokenSymbol:     "T",
			Quantity:        100,
			InvestedAmount:  50,
		})

		if err != nil {
			t.Fatalf("ImportPosition() returned unexpected error: %v", err)
		}
		if !near(pos.AveragePrice, 0.5) {
			t.Errorf("Expected average 0.5, got %v", pos.AveragePrice)
		}
		if pos.Network != model.DefaultNetwork {
			t.Errorf("Expected default network, got '%s'", pos.Network)
		}
		p, _ := svc.Portfolio(model.DefaultPortfolioID)
		if len(p.Positions) != 1 {
			t.Errorf("Expected exactly one position, got %d", len(p.Positions))
		}
	})

	t.Run("an explicit average price wins", func(t *testing.T) {
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock())

		pos, _ := svc.ImportPosition(context.Background(), model.ImportPosition{
			ContractAddress: "0xAA", Quantity: 100, InvestedAmount: 50,
			AveragePrice: ptr(0.4), CurrentPrice: ptr(0.8),
		})

		if !near(pos.AveragePrice, 0.4) || !near(pos.ProfitLossPercent, 100) {
			t.Errorf("Unexpected valuation: %+v", pos)
		}
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		svc, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clock.NewMock())

		if _, err := svc.ImportPosition(context.Background(), model.ImportPosition{ContractAddress: "0xAA"}); err == nil {
			t.Error("Expected error for zero quantity, got nil")
		}
	})
}

// TestPortfolioService_RefreshPortfolio tests the manual refresh.
//
// WHY: One unpriced token must not block the refresh of the others.
func TestPortfolioService_RefreshPortfolio(t *testing.T) {
	t.Run("revalues priced positions and reports the rest", func(t *testing.T) {
		a := testutil.NewPosition().WithToken("0xA", "AAA").WithHolding(10, 10).WithPrice(1).Build()
		b := testutil.NewPosition().WithToken("0xB", "BBB").Build()
		p := testutil.NewPortfolio().WithPosition(a).WithPosition(b).Build()
		prices := testutil.NewMockPriceClient().WithQuote("0xA", "AAA", 2).WithNotFound("0xB")
		svc, _ := testutil.NewTestPortfolioService(t, prices, clock.NewMock(), p)

		report, err := svc.RefreshPortfolio(context.Background(), p.ID)

		if err != nil {
			t.Fatalf("RefreshPortfolio() returned unexpected error: %v", err)
		}
		if report.Updated != 1 {
			t.Errorf("Expected 1 update, got %d", report.Updated)
		}
		if len(report.Failed) != 1 || report.Failed[0] != "BBB" {
			t.Errorf("Expected BBB to fail, got %v", report.Failed)
		}
		if !near(report.Portfolio.Positions[0].CurrentValue, 20) {
			t.Errorf("Expected value 20, got %v", report.Portfolio.Positions[0].CurrentValue)
		}
		if prices.QueryCount() != 2 {
			t.Errorf("Expected 2 lookups, got %d", prices.QueryCount())
		}
	})
}
