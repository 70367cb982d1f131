package handlers

import (
	"net/http"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/auth"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/storage"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// AuthHandler handles the signed-in user session. Authentication itself
// happens at the identity provider; this endpoint only records the result.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SessionResponse describes the current user. Migration is set only on the
// sign-in that moved local data to the hosted store.
type SessionResponse struct {
	SignedIn  bool                     `json:"signedIn"`
	User      *auth.User               `json:"user,omitempty"`
	Migration *storage.MigrationReport `json:"migration,omitempty"`
}

// Session handles GET requests for the current user.
//
// Endpoint: GET /api/auth/session
// Response: 200 OK with SessionResponse
func (h *AuthHandler) Session(w http.ResponseWriter, _ *http.Request) {
	user, ok := h.authService.Current()
	if !ok {
		response.RespondJSON(w, http.StatusOK, SessionResponse{})
		return
	}
	response.RespondJSON(w, http.StatusOK, SessionResponse{SignedIn: true, User: &user})
}

// SignIn handles POST requests after the identity provider authenticated a
// user. Local data is migrated to the hosted store and every collection is
// reloaded from there.
//
// Endpoint: POST /api/auth/session
// Request Body: SignInRequest (userId, email)
// Response: 200 OK with SessionResponse
// Error: 400 Bad Request if validation fails
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SignInRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSignIn(req); err != nil {
		respondValidation(w, err)
		return
	}

	user, migration, err := h.authService.SignIn(r.Context(), req.UserID, req.Email)
	if err != nil {
		respondServiceError(w, err, "failed to sign in")
		return
	}
	response.RespondJSON(w, http.StatusOK, SessionResponse{SignedIn: true, User: &user, Migration: migration})
}

// SignOut handles DELETE requests. State is reloaded from local storage.
//
// Endpoint: DELETE /api/auth/session
// Response: 204 No Content
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context()); err != nil {
		respondServiceError(w, err, "failed to sign out")
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}
