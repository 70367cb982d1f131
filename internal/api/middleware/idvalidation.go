// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// ValidateIDParam returns a middleware that checks the named URL parameter is
// present and is a valid ID. Returns 400 Bad Request otherwise.
//
// Example usage in router:
//
//	r.Route("/{portfolioId}", func(r chi.Router) {
//	    r.Use(middleware.ValidateIDParam("portfolioId"))
//	    r.Put("/", handler.UpdatePortfolio)
//	    r.Delete("/", handler.DeletePortfolio)
//	})
func ValidateIDParam(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, param)

			if id == "" {
				response.RespondError(w, http.StatusBadRequest, param+" is required", "")
				return
			}

			if err := validation.ValidateID(id); err != nil {
				response.RespondError(w, http.StatusBadRequest, "invalid "+param, err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
