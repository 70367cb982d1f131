package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// AlertHandler handles HTTP requests for price alerts.
type AlertHandler struct {
	alertService *service.AlertService
}

// NewAlertHandler creates a new AlertHandler with the provided service dependency.
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// Alerts handles GET requests to list alerts joined with their positions.
// Alerts whose position was deleted are included with network "Unknown".
//
// Endpoint: GET /api/alerts
// Query Parameters:
//   - kind: comma-separated alert kinds (price, take profit, stop loss)
//   - status: all (default), active or triggered
//   - positionId: only alerts on this position
//   - sort: desc (default, newest first) or asc
//
// Response: 200 OK with array of AlertView
// Error: 400 Bad Request if a filter is invalid
func (h *AlertHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters, err := request.ParseAlertFilters(q.Get("kind"), q.Get("status"), q.Get("positionId"), q.Get("sort"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.alertService.Views(*filters))
}

// CreateAlert handles POST requests to create an alert on a position.
// Percentage alerts are stored with the absolute target computed now.
//
// Endpoint: POST /api/alerts
// Request Body: CreateAlertRequest
// Response: 201 Created with Alert
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the position does not exist
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAlertRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateAlert(req); err != nil {
		respondValidation(w, err)
		return
	}

	alert, err := h.alertService.CreateAlert(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to create alert")
		return
	}

	response.RespondJSON(w, http.StatusCreated, alert)
}

// UpdateAlert handles PUT requests to edit an alert. Any edit re-arms it.
//
// Endpoint: PUT /api/alerts/{alertId}
// Request Body: UpdateAlertRequest (all fields optional)
// Response: 200 OK with updated Alert
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the alert does not exist
func (h *AlertHandler) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")

	req, err := parseJSON[request.UpdateAlertRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateAlert(req); err != nil {
		respondValidation(w, err)
		return
	}

	alert, err := h.alertService.UpdateAlert(r.Context(), alertID, req)
	if err != nil {
		respondServiceError(w, err, "failed to update alert")
		return
	}

	response.RespondJSON(w, http.StatusOK, alert)
}

// DeleteAlert handles DELETE requests to remove an alert.
//
// Endpoint: DELETE /api/alerts/{alertId}
// Response: 204 No Content
// Error: 404 Not Found if the alert does not exist
func (h *AlertHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")

	if err := h.alertService.DeleteAlert(r.Context(), alertID); err != nil {
		respondServiceError(w, err, "failed to delete alert")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
