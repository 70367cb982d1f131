package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/dexscreener"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// TokenHandler looks tokens up on the price source.
type TokenHandler struct {
	prices dexscreener.Client
}

func NewTokenHandler(prices dexscreener.Client) *TokenHandler {
	return &TokenHandler{prices: prices}
}

// LookupToken handles GET requests for the metadata and current price of a
// token, used by the add-position form before the position is saved.
//
// Endpoint: GET /api/tokens/{address}
// Response: 200 OK with TokenInfo
// Error: 400 Bad Request if the address is malformed
// Error: 404 Not Found if the price source has no trading pair for it
// Error: 502 Bad Gateway if the price source cannot be reached
func (h *TokenHandler) LookupToken(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(chi.URLParam(r, "address"))

	if err := validation.ValidateContractAddress(address); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid contract address", err.Error())
		return
	}

	info, err := h.prices.Lookup(r.Context(), address)
	if err != nil {
		respondServiceError(w, err, "failed to look up token")
		return
	}

	response.RespondJSON(w, http.StatusOK, info)
}
