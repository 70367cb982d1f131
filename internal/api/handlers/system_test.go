package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/storage"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/testutil"
)

type idleLoop struct{}

func (idleLoop) Active() bool  { return true }
func (idleLoop) Running() bool { return false }

type localTier struct{}

func (localTier) ActiveTier() string { return storage.TierLocal }

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("permission denied") }

func TestSystemHandler_Health(t *testing.T) {
	t.Run("returns healthy status with a local store", func(t *testing.T) {
		svc := service.NewSystemService(testutil.SetupLocalStore(t), nil, idleLoop{}, localTier{}, &testutil.StaticIdentity{}, "test")
		handler := NewSystemHandler(svc)

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.HealthInfo
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Status != "healthy" {
			t.Errorf("Expected status 'healthy', got '%s'", response.Status)
		}
		if response.HostedStore != "disabled" || response.PriceLoop != "idle" {
			t.Errorf("Unexpected health: %+v", response)
		}
	})

	t.Run("returns 503 when the hosted store is disconnected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := service.NewSystemService(testutil.SetupLocalStore(t), db, idleLoop{}, localTier{}, &testutil.StaticIdentity{}, "test")
		handler := NewSystemHandler(svc)

		// Close the database connection to simulate failure
		db.Close()

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", w.Code)
		}

		var response model.HealthInfo
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.HostedStore != "disconnected" || response.Error == "" {
			t.Errorf("Expected a disconnected hosted store with an error, got %+v", response)
		}
	})

	t.Run("returns 503 when the local store fails", func(t *testing.T) {
		svc := service.NewSystemService(failingPinger{}, nil, idleLoop{}, localTier{}, &testutil.StaticIdentity{}, "test")

		w := httptest.NewRecorder()
		NewSystemHandler(svc).Health(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", w.Code)
		}
	})
}

func TestSystemHandler_Version(t *testing.T) {
	t.Run("returns the app version without a hosted store", func(t *testing.T) {
		svc := service.NewSystemService(testutil.SetupLocalStore(t), nil, idleLoop{}, localTier{}, &testutil.StaticIdentity{}, "1.2.3")

		w := httptest.NewRecorder()
		NewSystemHandler(svc).Version(w, httptest.NewRequest(http.MethodGet, "/api/system/version", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.VersionInfo
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.AppVersion != "1.2.3" || response.HostedEnabled || response.SchemaVersion != nil {
			t.Errorf("Unexpected version: %+v", response)
		}
	})

	t.Run("includes the schema version of the hosted store", func(t *testing.T) {
		svc := service.NewSystemService(testutil.SetupLocalStore(t), testutil.SetupTestDB(t), idleLoop{}, localTier{},
			&testutil.StaticIdentity{}, "1.2.3")

		w := httptest.NewRecorder()
		NewSystemHandler(svc).Version(w, httptest.NewRequest(http.MethodGet, "/api/system/version", nil))

		var response model.VersionInfo
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if !response.HostedEnabled || response.SchemaVersion == nil || *response.SchemaVersion < 1 {
			t.Errorf("Expected a schema version, got %+v", response)
		}
	})
}
