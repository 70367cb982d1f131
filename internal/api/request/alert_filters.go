package request

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// ParseAlertFilters extracts and validates alert list filters from query parameters.
//
// All parameters are optional:
//   - kinds: comma-separated alert kinds (price, take profit, stop loss)
//   - status: all, active or triggered (defaults to all)
//   - positionId: only alerts watching this position
//   - sortDir: "asc" or "desc" by creation time (defaults to "desc")
func ParseAlertFilters(kindsParam, statusParam, positionParam, sortDirParam string) (*model.AlertFilters, error) {
	filters := &model.AlertFilters{
		PositionID: strings.TrimSpace(positionParam),
	}

	if kindsParam != "" {
		for _, kind := range strings.Split(kindsParam, ",") {
			k := model.AlertKind(strings.TrimSpace(strings.ToLower(kind)))
			if !k.Valid() {
				return nil, fmt.Errorf("invalid alert kind: %s", kind)
			}
			filters.Kinds = append(filters.Kinds, k)
		}
	}

	switch status := strings.ToLower(statusParam); status {
	case "":
		filters.Status = model.AlertStatusAll
	case model.AlertStatusAll, model.AlertStatusActive, model.AlertStatusTriggered:
		filters.Status = status
	default:
		return nil, fmt.Errorf("invalid status: must be 'all', 'active' or 'triggered'")
	}

	if sortDirParam != "" {
		sortDir := strings.ToLower(sortDirParam)
		if sortDir != "asc" && sortDir != "desc" {
			return nil, fmt.Errorf("invalid sortDir: must be 'asc' or 'desc'")
		}
		filters.SortDir = sortDir
	} else {
		filters.SortDir = "desc" // Default
	}

	return filters, nil
}
