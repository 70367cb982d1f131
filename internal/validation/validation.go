package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// Common validation errors
var (
	ErrInvalidUUID    = fmt.Errorf("invalid UUID format")
	ErrInvalidID      = fmt.Errorf("invalid ID format")
	ErrInvalidAddress = fmt.Errorf("invalid contract address")
	ErrInvalidEmail   = fmt.Errorf("Please enter a valid email address")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateID accepts generated UUIDs and the well-known default portfolio ID.
func ValidateID(id string) error {
	if id == model.DefaultPortfolioID {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return nil
}

// ValidateContractAddress checks an address before it is sent to the price source.
// Addresses starting with 0x must be well-formed EVM addresses; other chains
// only need a non-empty value without whitespace.
func ValidateContractAddress(address string) error {
	if address == "" || strings.ContainsAny(address, " \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if strings.HasPrefix(strings.ToLower(address), "0x") && !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	return nil
}

// ValidateEmail applies the address syntax check used for notification recipients.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validVolume(v float64) bool {
	return v >= 0 && v <= 1
}
