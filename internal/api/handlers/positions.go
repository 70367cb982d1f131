package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// PositionHandler handles HTTP requests for the holdings inside a portfolio.
type PositionHandler struct {
	portfolioService *service.PortfolioService
}

// NewPositionHandler creates a new PositionHandler with the provided service dependency.
func NewPositionHandler(portfolioService *service.PortfolioService) *PositionHandler {
	return &PositionHandler{
		portfolioService: portfolioService,
	}
}

// CreatePosition handles POST requests to add a token to a portfolio.
// The token is looked up on the price source first; its name, symbol,
// network and current price come from there.
//
// Endpoint: POST /api/portfolios/{portfolioId}/positions
// Request Body: CreatePositionRequest (contractAddress, quantity, investedAmount)
// Response: 201 Created with Position
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the portfolio does not exist or the token is unknown
// Error: 502 Bad Gateway if the price source cannot be reached
func (h *PositionHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	req, err := parseJSON[request.CreatePositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePosition(req); err != nil {
		respondValidation(w, err)
		return
	}

	pos, err := h.portfolioService.AddPosition(r.Context(), portfolioID, req)
	if err != nil {
		respondServiceError(w, err, "failed to add position")
		return
	}

	response.RespondJSON(w, http.StatusCreated, pos)
}

// UpdatePosition handles PUT requests to edit a position. All derived values
// are recomputed from the edited quantity, invested amount and price.
//
// Endpoint: PUT /api/portfolios/{portfolioId}/positions/{positionId}
// Request Body: UpdatePositionRequest (all fields optional)
// Response: 200 OK with updated Position
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the portfolio or position does not exist
func (h *PositionHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")
	positionID := chi.URLParam(r, "positionId")

	req, err := parseJSON[request.UpdatePositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdatePosition(req); err != nil {
		respondValidation(w, err)
		return
	}

	pos, err := h.portfolioService.UpdatePosition(r.Context(), portfolioID, positionID, req)
	if err != nil {
		respondServiceError(w, err, "failed to update position")
		return
	}

	response.RespondJSON(w, http.StatusOK, pos)
}

// DeletePosition handles DELETE requests to remove a position. Alerts on the
// position are kept and show up as orphaned.
//
// Endpoint: DELETE /api/portfolios/{portfolioId}/positions/{positionId}
// Response: 204 No Content
// Error: 404 Not Found if the portfolio or position does not exist
func (h *PositionHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")
	positionID := chi.URLParam(r, "positionId")

	if err := h.portfolioService.DeletePosition(r.Context(), portfolioID, positionID); err != nil {
		respondServiceError(w, err, "failed to delete position")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
