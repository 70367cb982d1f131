package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/notify"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// NotificationHandler exposes the desktop notification permission and the
// notifications currently on screen.
type NotificationHandler struct {
	notifier  *notify.BrowserNotifier
	publisher realtime.Publisher
}

func NewNotificationHandler(notifier *notify.BrowserNotifier, publisher realtime.Publisher) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, publisher: publisher}
}

// PermissionResponse reports the notification permission.
type PermissionResponse struct {
	Permission notify.Permission `json:"permission"`
}

// Permission handles GET requests for the current permission state.
//
// Endpoint: GET /api/notifications/permission
// Response: 200 OK with PermissionResponse
func (h *NotificationHandler) Permission(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, PermissionResponse{Permission: h.notifier.Permission().Current()})
}

// RequestPermission handles POST requests carrying the user's answer to the
// permission prompt. Only the first answer counts; later ones return the
// state already settled.
//
// Endpoint: POST /api/notifications/permission
// Request Body: PermissionRequest (permission: granted or denied)
// Response: 200 OK with PermissionResponse
// Error: 400 Bad Request if the answer is not granted or denied
func (h *NotificationHandler) RequestPermission(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.PermissionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidatePermission(req); err != nil {
		respondValidation(w, err)
		return
	}

	state, err := h.notifier.Permission().Request(notify.Permission(req.Permission))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid permission", err.Error())
		return
	}

	resp := PermissionResponse{Permission: state}
	h.publisher.Publish(realtime.EventPermissionRequested, resp)
	response.RespondJSON(w, http.StatusOK, resp)
}

// Notifications handles GET requests for the notifications still open.
//
// Endpoint: GET /api/notifications
// Response: 200 OK with array of Notification
func (h *NotificationHandler) Notifications(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.notifier.Open())
}

// DismissNotification handles POST requests when the user closes a
// notification before it times out.
//
// Endpoint: POST /api/notifications/{notificationId}/dismiss
// Response: 204 No Content
// Error: 404 Not Found if the notification is not open
func (h *NotificationHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.notifier.Dismiss(chi.URLParam(r, "notificationId")); err != nil {
		respondServiceError(w, err, "failed to dismiss notification")
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}
