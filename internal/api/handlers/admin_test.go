package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/testutil"
)

func TestAdminHandler(t *testing.T) {
	setupHandler := func(t *testing.T) (*AdminHandler, *service.AdminService, *service.PortfolioService) {
		t.Helper()
		clk := clock.NewMock()
		clk.Set(testutil.BaseTime)
		portfolios, store := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clk)
		alerts := testutil.NewTestAlertService(t, store, portfolios, clk)
		key, err := service.SessionKey("")
		if err != nil {
			t.Fatalf("SessionKey() returned unexpected error: %v", err)
		}
		svc := service.NewAdminService(service.AdminConfig{
			Password:   "hunter2",
			Email:      "admin@example.com",
			SessionTTL: time.Hour,
		}, key, store.Local(), portfolios, alerts, clk, logger.NewNopLogger())
		return NewAdminHandler(svc), svc, portfolios
	}

	t.Run("POST login returns a verifiable token", func(t *testing.T) {
		handler, svc, _ := setupHandler(t)

		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewJSONRequest(http.MethodPost, "/api/admin/login", `{"password":"hunter2"}`, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var session model.AdminSession
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&session)

		if _, err := svc.Verify(session.Token); err != nil {
			t.Errorf("Expected the token to verify, got %v", err)
		}
	})

	t.Run("POST login with a wrong password returns 401", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewJSONRequest(http.MethodPost, "/api/admin/login", `{"password":"guess"}`, nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("POST login without a password returns 400", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewJSONRequest(http.MethodPost, "/api/admin/login", `{}`, nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("POST logout invalidates the session", func(t *testing.T) {
		handler, svc, _ := setupHandler(t)
		session, err := svc.Login(t.Context(), requestPassword("hunter2"))
		if err != nil {
			t.Fatalf("Login() returned unexpected error: %v", err)
		}

		w := httptest.NewRecorder()
		handler.Logout(w, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d", w.Code)
		}
		if _, err := svc.Verify(session.Token); err == nil {
			t.Error("Expected the old token to be rejected")
		}
	})

	t.Run("POST password reset for another address returns 422", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		w := httptest.NewRecorder()
		handler.PasswordReset(w, testutil.NewJSONRequest(http.MethodPost, "/", `{"email":"someone@example.com"}`, nil))

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d", w.Code)
		}
	})

	t.Run("POST password reset for the admin address returns 202", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		w := httptest.NewRecorder()
		handler.PasswordReset(w, testutil.NewJSONRequest(http.MethodPost, "/", `{"email":"Admin@Example.com"}`, nil))

		if w.Code != http.StatusAccepted {
			t.Errorf("Expected 202, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET template returns one entry of each kind", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		w := httptest.NewRecorder()
		handler.ImportTemplate(w, httptest.NewRequest(http.MethodGet, "/api/admin/import/template", nil))

		var doc model.ImportRequest
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&doc)

		if len(doc.AddPosition) != 1 || len(doc.AddAlerts) != 1 {
			t.Errorf("Unexpected template: %+v", doc)
		}
	})

	t.Run("POST import reports each entry", func(t *testing.T) {
		handler, _, portfolios := setupHandler(t)

		body := `{"addPosition":[
			{"contractAddress":"` + testutil.MakeAddress() + `","tokenSymbol":"PEPE","quantity":10,"investedAmount":5,"currentPrice":1},
			{"contractAddress":"","tokenSymbol":"BAD","quantity":1}
		]}`
		w := httptest.NewRecorder()
		handler.Import(w, testutil.NewJSONRequest(http.MethodPost, "/api/admin/import", body, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var report model.ImportReport
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&report)

		if report.Added != 1 || report.Failed != 1 || len(report.Results) != 2 {
			t.Errorf("Unexpected report: %+v", report)
		}
		if p, _ := portfolios.Portfolio(model.DefaultPortfolioID); len(p.Positions) != 1 {
			t.Errorf("Expected 1 imported position, got %d", len(p.Positions))
		}
	})

	t.Run("POST import rejects malformed JSON", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		w := httptest.NewRecorder()
		handler.Import(w, testutil.NewJSONRequest(http.MethodPost, "/api/admin/import", `{"addPosition":`, nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func requestPassword(p string) request.AdminLoginRequest {
	return request.AdminLoginRequest{Password: p}
}
