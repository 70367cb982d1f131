package handlers

import (
	"net/http"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health checks the storage tiers and the price loop.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with HealthInfo
// Error: 503 Service Unavailable with HealthInfo if a store is unreachable
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	info := h.systemService.CheckHealth(r.Context())
	if info.Status != "healthy" {
		response.RespondJSON(w, http.StatusServiceUnavailable, info)
		return
	}
	response.RespondJSON(w, http.StatusOK, info)
}

// Version handles GET requests to retrieve version information.
// Returns the application version and, when a hosted store is configured,
// its applied schema version.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfo
// Error: 500 Internal Server Error if version check fails
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	version, err := h.systemService.CheckVersion(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to get version information", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, version)
}
