package validation

import (
	"strings"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
)

func ValidateAddEmailAddress(req request.AddEmailAddressRequest) error {
	if err := ValidateEmail(strings.TrimSpace(req.Email)); err != nil {
		return &Error{Fields: map[string]string{"email": err.Error()}}
	}
	return nil
}

func ValidateUpdatePreferences(req request.UpdatePreferencesRequest) error {
	if req.AlertVolume != nil && !validVolume(*req.AlertVolume) {
		return &Error{Fields: map[string]string{"alertVolume": "volume must be between 0 and 1"}}
	}
	return nil
}

func ValidatePermission(req request.PermissionRequest) error {
	switch req.Permission {
	case "granted", "denied":
		return nil
	}
	return &Error{Fields: map[string]string{"permission": "permission must be 'granted' or 'denied'"}}
}

func ValidateAdminLogin(req request.AdminLoginRequest) error {
	if req.Password == "" {
		return &Error{Fields: map[string]string{"password": "password is required"}}
	}
	return nil
}

func ValidateSignIn(req request.SignInRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UserID) == "" {
		errors["userId"] = "user ID is required"
	}
	if req.Email != "" && ValidateEmail(req.Email) != nil {
		errors["email"] = ErrInvalidEmail.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
