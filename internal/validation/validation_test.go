package validation_test

import (
	"errors"
	"testing"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

func ptr[T any](v T) *T { return &v }

func fieldError(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *validation.Error, got %v", err)
	}
	if _, ok := vErr.Fields[field]; !ok {
		t.Errorf("Expected error on field '%s', got %v", field, vErr.Fields)
	}
}

// TestValidateContractAddress tests the address check run before price lookups.
//
// WHY: A malformed EVM address always comes back from the price source as "no
// match", so rejecting it early gives the user a precise error instead.
func TestValidateContractAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid EVM address", "0x6B175474E89094C44Da98b954EedeAC495271d0F", false},
		{"lowercase EVM address", "0x6b175474e89094c44da98b954eedeac495271d0f", false},
		{"short hex", "0xAA", true},
		{"non-hex characters", "0xZZ175474E89094C44Da98b954EedeAC495271d0F", true},
		{"non-EVM chain address", "So11111111111111111111111111111111111111112", false},
		{"empty", "", true},
		{"embedded space", "abc def", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateContractAddress(tt.address)
			if tt.wantErr && !errors.Is(err, validation.ErrInvalidAddress) {
				t.Errorf("Expected ErrInvalidAddress, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"a.b+c@sub.example.io", true},
		{"user@example", false},
		{"user example@x.com", false},
		{"@example.com", false},
		{"user@@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := validation.ValidateEmail(tt.email)
			if tt.valid && err != nil {
				t.Errorf("Expected '%s' to be valid, got %v", tt.email, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected '%s' to be rejected", tt.email)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	t.Run("accepts the default portfolio", func(t *testing.T) {
		if err := validation.ValidateID("default"); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("accepts a UUID", func(t *testing.T) {
		if err := validation.ValidateID("5f1f0c1e-7c1d-4a43-9a53-0f8d2b9b3f11"); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("rejects anything else", func(t *testing.T) {
		if err := validation.ValidateID("not-an-id"); !errors.Is(err, validation.ErrInvalidID) {
			t.Errorf("Expected ErrInvalidID, got %v", err)
		}
	})
}

// TestValidateCreatePosition tests position input rules.
//
// WHY: Quantity is a divisor in the average-price computation and must never be
// zero once a position exists.
func TestValidateCreatePosition(t *testing.T) {
	valid := request.CreatePositionRequest{
		ContractAddress: "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		Quantity:        100,
		InvestedAmount:  50,
	}

	t.Run("valid request", func(t *testing.T) {
		if err := validation.ValidateCreatePosition(valid); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("zero quantity", func(t *testing.T) {
		req := valid
		req.Quantity = 0
		fieldError(t, validation.ValidateCreatePosition(req), "quantity")
	})

	t.Run("negative invested amount", func(t *testing.T) {
		req := valid
		req.InvestedAmount = -1
		fieldError(t, validation.ValidateCreatePosition(req), "investedAmount")
	})

	t.Run("zero invested amount is allowed", func(t *testing.T) {
		req := valid
		req.InvestedAmount = 0
		if err := validation.ValidateCreatePosition(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("bad address", func(t *testing.T) {
		req := valid
		req.ContractAddress = "0x123"
		fieldError(t, validation.ValidateCreatePosition(req), "contractAddress")
	})
}

func TestValidateUpdatePosition(t *testing.T) {
	t.Run("empty update is valid", func(t *testing.T) {
		if err := validation.ValidateUpdatePosition(request.UpdatePositionRequest{}); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("zero price rejected", func(t *testing.T) {
		err := validation.ValidateUpdatePosition(request.UpdatePositionRequest{CurrentPrice: ptr(0.0)})
		fieldError(t, err, "currentPrice")
	})
}

// TestValidateCreateAlert tests absolute and percentage alert input.
//
// WHY: The target of a percentage alert is derived once at creation; a missing
// or zero percentage would silently create an alert at the base price.
func TestValidateCreateAlert(t *testing.T) {
	t.Run("absolute alert requires a target", func(t *testing.T) {
		err := validation.ValidateCreateAlert(request.CreateAlertRequest{PositionID: "p", AlertType: "price"})
		fieldError(t, err, "targetPrice")
	})

	t.Run("absolute alert defaults the kind", func(t *testing.T) {
		err := validation.ValidateCreateAlert(request.CreateAlertRequest{PositionID: "p", TargetPrice: ptr(1.5)})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("percentage alert requires a percentage", func(t *testing.T) {
		err := validation.ValidateCreateAlert(request.CreateAlertRequest{PositionID: "p", AlertType: "stop loss"})
		fieldError(t, err, "percentageValue")
	})

	t.Run("percentage without kind is accepted", func(t *testing.T) {
		err := validation.ValidateCreateAlert(request.CreateAlertRequest{PositionID: "p", PercentageValue: ptr(-20.0)})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		err := validation.ValidateCreateAlert(request.CreateAlertRequest{PositionID: "p", AlertType: "percentage", PercentageValue: ptr(5.0)})
		fieldError(t, err, "alertType")
	})

	t.Run("volume out of range", func(t *testing.T) {
		err := validation.ValidateCreateAlert(request.CreateAlertRequest{PositionID: "p", TargetPrice: ptr(1.0), Volume: ptr(1.5)})
		fieldError(t, err, "volume")
	})

	t.Run("missing position", func(t *testing.T) {
		err := validation.ValidateCreateAlert(request.CreateAlertRequest{TargetPrice: ptr(1.0)})
		fieldError(t, err, "positionId")
	})
}

func TestValidateSettings(t *testing.T) {
	t.Run("email address", func(t *testing.T) {
		err := validation.ValidateAddEmailAddress(request.AddEmailAddressRequest{Email: "nope"})
		fieldError(t, err, "email")
	})

	t.Run("preferences volume", func(t *testing.T) {
		err := validation.ValidateUpdatePreferences(request.UpdatePreferencesRequest{AlertVolume: ptr(-0.1)})
		fieldError(t, err, "alertVolume")
	})

	t.Run("permission answer", func(t *testing.T) {
		fieldError(t, validation.ValidatePermission(request.PermissionRequest{Permission: "default"}), "permission")
		if err := validation.ValidatePermission(request.PermissionRequest{Permission: "granted"}); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("portfolio name", func(t *testing.T) {
		fieldError(t, validation.ValidateCreatePortfolio(request.CreatePortfolioRequest{Name: "   "}), "name")
		fieldError(t, validation.ValidateUpdatePortfolio(request.UpdatePortfolioRequest{Name: ptr("")}), "name")
	})
}
