package validation

import (
	"strings"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

//nolint:gocyclo // One branch per field keeps the messages next to their rules
func ValidateCreateAlert(req request.CreateAlertRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.PositionID) == "" {
		errors["positionId"] = "position ID is required"
	}

	kind := model.AlertKind(strings.ToLower(req.AlertType))
	switch {
	case req.AlertType == "" && req.PercentageValue == nil:
		kind = model.AlertKindPrice
	case req.AlertType == "":
		kind = model.AlertKindTakeProfit
	case !kind.Valid():
		errors["alertType"] = "alert type must be 'price', 'take profit' or 'stop loss'"
	}

	if kind == model.AlertKindPrice {
		if req.TargetPrice == nil {
			errors["targetPrice"] = "target price is required"
		} else if !finite(*req.TargetPrice) || *req.TargetPrice <= 0 {
			errors["targetPrice"] = "target price must be greater than 0"
		}
	}
	if kind.IsPercentage() {
		if req.PercentageValue == nil {
			errors["percentageValue"] = "percentage is required"
		} else if !finite(*req.PercentageValue) || *req.PercentageValue == 0 {
			errors["percentageValue"] = "percentage must be a non-zero number"
		}
	}

	if req.Volume != nil && !validVolume(*req.Volume) {
		errors["volume"] = "volume must be between 0 and 1"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateUpdateAlert(req request.UpdateAlertRequest) error {
	errors := make(map[string]string)

	if req.TargetPrice != nil && (!finite(*req.TargetPrice) || *req.TargetPrice <= 0) {
		errors["targetPrice"] = "target price must be greater than 0"
	}
	if req.Volume != nil && !validVolume(*req.Volume) {
		errors["volume"] = "volume must be between 0 and 1"
	}
	if req.SoundFile != nil && strings.TrimSpace(*req.SoundFile) == "" {
		errors["soundFile"] = "sound cannot be empty"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
