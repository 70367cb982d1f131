package validation

import (
	"math"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
)

func ValidateCreatePosition(req request.CreatePositionRequest) error {
	errors := make(map[string]string)

	if err := ValidateContractAddress(req.ContractAddress); err != nil {
		errors["contractAddress"] = err.Error()
	}
	if !finite(req.Quantity) || req.Quantity <= 0 {
		errors["quantity"] = "quantity must be greater than 0"
	}
	if !finite(req.InvestedAmount) || req.InvestedAmount < 0 {
		errors["investedAmount"] = "invested amount cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateUpdatePosition(req request.UpdatePositionRequest) error {
	errors := make(map[string]string)

	if req.Quantity != nil && (!finite(*req.Quantity) || *req.Quantity <= 0) {
		errors["quantity"] = "quantity must be greater than 0"
	}
	if req.InvestedAmount != nil && (!finite(*req.InvestedAmount) || *req.InvestedAmount < 0) {
		errors["investedAmount"] = "invested amount cannot be negative"
	}
	if req.CurrentPrice != nil && (!finite(*req.CurrentPrice) || *req.CurrentPrice <= 0) {
		errors["currentPrice"] = "current price must be greater than 0"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
