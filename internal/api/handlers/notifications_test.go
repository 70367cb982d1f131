package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benbjohnson/clock"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/notify"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/testutil"
)

func TestNotificationHandler(t *testing.T) {
	setupHandler := func(t *testing.T) (*NotificationHandler, *notify.BrowserNotifier, *testutil.RecordingPublisher) {
		t.Helper()
		pub := testutil.NewRecordingPublisher()
		notifier := notify.NewBrowserNotifier(notify.NewPermissionState(), pub, clock.NewMock())
		return NewNotificationHandler(notifier, pub), notifier, pub
	}

	decode := func(t *testing.T, w *httptest.ResponseRecorder) PermissionResponse {
		t.Helper()
		var resp PermissionResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		return resp
	}

	t.Run("GET permission starts at default", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		w := httptest.NewRecorder()
		handler.Permission(w, httptest.NewRequest(http.MethodGet, "/api/notifications/permission", nil))

		if got := decode(t, w).Permission; got != notify.PermissionDefault {
			t.Errorf("Expected default, got %s", got)
		}
	})

	t.Run("POST permission settles on the first answer", func(t *testing.T) {
		handler, _, pub := setupHandler(t)

		w := httptest.NewRecorder()
		handler.RequestPermission(w, testutil.NewJSONRequest(http.MethodPost, "/", `{"permission":"denied"}`, nil))
		if w.Code != http.StatusOK || decode(t, w).Permission != notify.PermissionDenied {
			t.Fatalf("Expected denied, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		handler.RequestPermission(w, testutil.NewJSONRequest(http.MethodPost, "/", `{"permission":"granted"}`, nil))
		if got := decode(t, w).Permission; got != notify.PermissionDenied {
			t.Errorf("Expected denied to stand, got %s", got)
		}

		if pub.Count(realtime.EventPermissionRequested) != 2 {
			t.Errorf("Expected 2 permission events, got %d", pub.Count(realtime.EventPermissionRequested))
		}
	})

	t.Run("POST permission rejects other answers", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		w := httptest.NewRecorder()
		handler.RequestPermission(w, testutil.NewJSONRequest(http.MethodPost, "/", `{"permission":"default"}`, nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("dismiss closes an open notification", func(t *testing.T) {
		handler, notifier, pub := setupHandler(t)
		if _, err := notifier.Permission().Request(notify.PermissionGranted); err != nil {
			t.Fatalf("Request() returned unexpected error: %v", err)
		}
		note, shown := notifier.Show("PEPE Price Alert 🚀", "PEPE has reached $0.75")
		if !shown {
			t.Fatal("Expected the notification to be shown")
		}

		req := testutil.NewRequestWithURLParams(http.MethodPost, "/", map[string]string{"notificationId": note.ID})
		w := httptest.NewRecorder()
		handler.DismissNotification(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		if len(notifier.Open()) != 0 {
			t.Errorf("Expected no open notifications, got %d", len(notifier.Open()))
		}
		if pub.Count(realtime.EventNotificationClose) != 1 {
			t.Errorf("Expected one close event, got %d", pub.Count(realtime.EventNotificationClose))
		}

		w = httptest.NewRecorder()
		handler.DismissNotification(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404 on second dismiss, got %d", w.Code)
		}
	})
}
