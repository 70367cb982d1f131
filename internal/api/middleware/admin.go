package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// AdminTokenHeader carries the token returned by the admin login.
const AdminTokenHeader = "X-Admin-Token"

// AdminVerifier checks admin tokens. *service.AdminService satisfies it.
type AdminVerifier interface {
	Verify(token string) (model.AdminSession, error)
}

type adminSessionKey struct{}

// RequireAdmin rejects requests without a live admin token. The token is read
// from the X-Admin-Token header, or from a Bearer Authorization header.
//
// Example usage in router:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.RequireAdmin(adminService))
//	    r.Post("/import", adminHandler.Import)
//	})
func RequireAdmin(verifier AdminVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := verifier.Verify(AdminToken(r))
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, "admin session required", err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), adminSessionKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminToken extracts the admin token from a request.
func AdminToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(AdminTokenHeader)); tok != "" {
		return tok
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// AdminSessionFrom returns the session RequireAdmin stored on the context.
func AdminSessionFrom(ctx context.Context) (model.AdminSession, bool) {
	s, ok := ctx.Value(adminSessionKey{}).(model.AdminSession)
	return s, ok
}
