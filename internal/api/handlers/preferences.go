package handlers

import (
	"net/http"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

type PreferencesHandler struct {
	preferences *service.PreferencesService
}

func NewPreferencesHandler(preferences *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{preferences: preferences}
}

// Preferences handles GET requests for the device UI settings.
//
// Endpoint: GET /api/preferences
// Response: 200 OK with Preferences
func (h *PreferencesHandler) Preferences(w http.ResponseWriter, _ *http.Request) {
	prefs, err := h.preferences.Preferences()
	if err != nil {
		respondServiceError(w, err, "failed to get preferences")
		return
	}
	response.RespondJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences handles PUT requests to change the device UI settings.
//
// Endpoint: PUT /api/preferences
// Request Body: UpdatePreferencesRequest (all fields optional)
// Response: 200 OK with Preferences
// Error: 400 Bad Request if validation fails
func (h *PreferencesHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdatePreferencesRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdatePreferences(req); err != nil {
		respondValidation(w, err)
		return
	}

	prefs, err := h.preferences.UpdatePreferences(req)
	if err != nil {
		respondServiceError(w, err, "failed to update preferences")
		return
	}
	response.RespondJSON(w, http.StatusOK, prefs)
}
