package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// EmailSettingsHandler handles the email notification settings.
type EmailSettingsHandler struct {
	emailService *service.EmailSettingsService
}

func NewEmailSettingsHandler(emailService *service.EmailSettingsService) *EmailSettingsHandler {
	return &EmailSettingsHandler{emailService: emailService}
}

// Settings handles GET requests for the email settings.
//
// Endpoint: GET /api/email-settings
// Response: 200 OK with EmailSettings
func (h *EmailSettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.emailService.Settings(r.Context())
	if err != nil {
		respondServiceError(w, err, "failed to get email settings")
		return
	}
	response.RespondJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT requests to switch email notifications on or off.
//
// Endpoint: PUT /api/email-settings
// Request Body: UpdateEmailSettingsRequest (enabled)
// Response: 200 OK with EmailSettings
// Error: 422 Unprocessable Entity if enabling without a verified address
func (h *EmailSettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateEmailSettingsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settings, err := h.emailService.SetEnabled(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to update email settings")
		return
	}
	response.RespondJSON(w, http.StatusOK, settings)
}

// AddAddress handles POST requests to add a recipient. The verification
// message is sent before the response; an address whose verification failed
// is added unverified.
//
// Endpoint: POST /api/email-settings/addresses
// Request Body: AddEmailAddressRequest (email)
// Response: 201 Created with EmailSettings
// Error: 400 Bad Request if the address is malformed
// Error: 409 Conflict if the address is already on the list
// Error: 422 Unprocessable Entity if the address limit is reached
func (h *EmailSettingsHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AddEmailAddressRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAddEmailAddress(req); err != nil {
		respondValidation(w, err)
		return
	}

	settings, err := h.emailService.AddAddress(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to add email address")
		return
	}
	response.RespondJSON(w, http.StatusCreated, settings)
}

// RemoveAddress handles DELETE requests to remove a recipient.
//
// Endpoint: DELETE /api/email-settings/addresses/{address}
// Response: 200 OK with EmailSettings
// Error: 404 Not Found if the address is not on the list
func (h *EmailSettingsHandler) RemoveAddress(w http.ResponseWriter, r *http.Request) {
	address, err := url.PathUnescape(chi.URLParam(r, "address"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid email address", err.Error())
		return
	}

	settings, err := h.emailService.RemoveAddress(r.Context(), address)
	if err != nil {
		respondServiceError(w, err, "failed to remove email address")
		return
	}
	response.RespondJSON(w, http.StatusOK, settings)
}
