package handlers

import (
	"io"
	"net/http"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// AdminHandler handles the password-gated admin tools.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Login handles POST requests with the admin password.
//
// Endpoint: POST /api/admin/login
// Request Body: AdminLoginRequest (password)
// Response: 200 OK with AdminSession including the token to send as X-Admin-Token
// Error: 400 Bad Request if the password is missing
// Error: 401 Unauthorized if the password is wrong
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AdminLoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAdminLogin(req); err != nil {
		respondValidation(w, err)
		return
	}

	session, err := h.adminService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to log in")
		return
	}
	response.RespondJSON(w, http.StatusOK, session)
}

// Logout handles POST requests to end the admin session. Every token issued
// so far stops working.
//
// Endpoint: POST /api/admin/logout
// Response: 204 No Content
func (h *AdminHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	if err := h.adminService.Logout(); err != nil {
		respondServiceError(w, err, "failed to log out")
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// PasswordReset handles POST requests for a reset mail to the admin address.
//
// Endpoint: POST /api/admin/password-reset
// Request Body: PasswordResetRequest (email, optional)
// Response: 202 Accepted
// Error: 422 Unprocessable Entity if the email is not the admin address
func (h *AdminHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.PasswordResetRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.adminService.SendPasswordReset(r.Context(), req); err != nil {
		respondServiceError(w, err, "failed to send password reset")
		return
	}
	response.RespondJSON(w, http.StatusAccepted, map[string]string{
		"message": "Password reset instructions sent",
	})
}

// ImportTemplate handles GET requests for an example import document.
//
// Endpoint: GET /api/admin/import/template
// Response: 200 OK with ImportRequest
func (h *AdminHandler) ImportTemplate(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, service.ImportTemplate())
}

// Import handles POST requests with an import document. Entries are applied
// one by one and reported individually.
//
// Endpoint: POST /api/admin/import
// Request Body: ImportRequest (addPosition, addAlerts)
// Response: 200 OK with ImportReport
// Error: 400 Bad Request if the body is not valid JSON
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	report, err := h.adminService.Import(r.Context(), raw)
	if err != nil {
		respondServiceError(w, err, "failed to import")
		return
	}
	response.RespondJSON(w, http.StatusOK, report)
}
