package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	exportService    *service.ExportService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService, exportService *service.ExportService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		exportService:    exportService,
	}
}

// PortfolioResponse is a portfolio with its positions and totals.
type PortfolioResponse struct {
	model.Portfolio
	Summary model.PortfolioSummary `json:"summary"`
	Active  bool                   `json:"active"`
}

// PortfoliosResponse lists every portfolio and names the active one.
type PortfoliosResponse struct {
	Portfolios        []PortfolioResponse `json:"portfolios"`
	ActivePortfolioID string              `json:"activePortfolioId"`
}

func (h *PortfolioHandler) toResponse(p model.Portfolio, activeID string) PortfolioResponse {
	return PortfolioResponse{Portfolio: p, Summary: p.Summarize(), Active: p.ID == activeID}
}

// Portfolios handles GET requests to list all portfolios.
//
// Endpoint: GET /api/portfolios
// Response: 200 OK with PortfoliosResponse
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, _ *http.Request) {
	activeID := h.portfolioService.ActiveID()
	portfolios := h.portfolioService.Portfolios()

	resp := PortfoliosResponse{
		Portfolios:        make([]PortfolioResponse, len(portfolios)),
		ActivePortfolioID: activeID,
	}
	for i, p := range portfolios {
		resp.Portfolios[i] = h.toResponse(p, activeID)
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// CreatePortfolio handles POST requests to create a portfolio. The new
// portfolio becomes the active one.
//
// Endpoint: POST /api/portfolios
// Request Body: CreatePortfolioRequest (name)
// Response: 201 Created with PortfolioResponse
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if the portfolio cannot be saved
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		respondValidation(w, err)
		return
	}

	p, err := h.portfolioService.CreatePortfolio(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to create portfolio")
		return
	}

	response.RespondJSON(w, http.StatusCreated, h.toResponse(p, p.ID))
}

// ActivePortfolio handles GET requests for the portfolio shown by default.
//
// Endpoint: GET /api/portfolios/active
// Response: 200 OK with PortfolioResponse
// Error: 404 Not Found if no portfolio exists
func (h *PortfolioHandler) ActivePortfolio(w http.ResponseWriter, _ *http.Request) {
	p, err := h.portfolioService.Active()
	if err != nil {
		respondServiceError(w, err, "failed to get active portfolio")
		return
	}
	response.RespondJSON(w, http.StatusOK, h.toResponse(p, p.ID))
}

// SetActivePortfolio handles PUT requests to switch the active portfolio.
//
// Endpoint: PUT /api/portfolios/active
// Request Body: SetActivePortfolioRequest (portfolioId)
// Response: 200 OK with PortfolioResponse
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) SetActivePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetActivePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetActivePortfolio(req); err != nil {
		respondValidation(w, err)
		return
	}

	if err := h.portfolioService.SetActive(req.PortfolioID); err != nil {
		respondServiceError(w, err, "failed to set active portfolio")
		return
	}
	h.ActivePortfolio(w, r)
}

// UpdatePortfolio handles PUT requests to rename a portfolio.
//
// Endpoint: PUT /api/portfolios/{portfolioId}
// Request Body: UpdatePortfolioRequest (name)
// Response: 200 OK with PortfolioResponse
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	req, err := parseJSON[request.UpdatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdatePortfolio(req); err != nil {
		respondValidation(w, err)
		return
	}

	p, err := h.portfolioService.RenamePortfolio(r.Context(), portfolioID, req)
	if err != nil {
		respondServiceError(w, err, "failed to update portfolio")
		return
	}
	response.RespondJSON(w, http.StatusOK, h.toResponse(p, h.portfolioService.ActiveID()))
}

// DeletePortfolio handles DELETE requests to remove a portfolio and its positions.
//
// Endpoint: DELETE /api/portfolios/{portfolioId}
// Response: 204 No Content
// Error: 404 Not Found if the portfolio does not exist
// Error: 409 Conflict if it is the last portfolio
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	if err := h.portfolioService.DeletePortfolio(r.Context(), portfolioID); err != nil {
		respondServiceError(w, err, "failed to delete portfolio")
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// RefreshResponse reports a manual price refresh.
type RefreshResponse struct {
	Portfolio PortfolioResponse `json:"portfolio"`
	Updated   int               `json:"updated"`
	Failed    []string          `json:"failed"`
}

// RefreshPortfolio handles POST requests to re-fetch the price of every
// position in a portfolio. Tokens the price source cannot price are listed
// in failed and keep their stored price.
//
// Endpoint: POST /api/portfolios/{portfolioId}/refresh
// Response: 200 OK with RefreshResponse
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) RefreshPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	report, err := h.portfolioService.RefreshPortfolio(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, err, "failed to refresh portfolio")
		return
	}

	failed := report.Failed
	if failed == nil {
		failed = []string{}
	}
	response.RespondJSON(w, http.StatusOK, RefreshResponse{
		Portfolio: h.toResponse(report.Portfolio, h.portfolioService.ActiveID()),
		Updated:   report.Updated,
		Failed:    failed,
	})
}

// ExportPortfolio handles GET requests to download a portfolio as CSV.
//
// Endpoint: GET /api/portfolios/{portfolioId}/export
// Response: 200 OK with a text/csv attachment
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) ExportPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	file, err := h.exportService.ExportPortfolio(portfolioID)
	if err != nil {
		respondServiceError(w, err, "failed to export portfolio")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}
