package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// MockPriceClient is a mock implementation of dexscreener.Client for testing.
// It returns configured quotes per contract address instead of calling the API.
// Unknown addresses are reported as not found.
type MockPriceClient struct {
	mu sync.Mutex
	// Quotes holds the token info returned per contract address
	Quotes map[string]model.TokenInfo
	// Errors holds per-address errors, checked before Quotes
	Errors map[string]error
	// MockError is returned for every address when set
	MockError error
	// Queries records every looked-up address in call order
	Queries []string
}

// NewMockPriceClient creates a mock price client with no quotes.
func NewMockPriceClient() *MockPriceClient {
	return &MockPriceClient{
		Quotes: make(map[string]model.TokenInfo),
		Errors: make(map[string]error),
	}
}

// Lookup returns the configured quote for address.
func (m *MockPriceClient) Lookup(_ context.Context, address string) (model.TokenInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, address)
	if strings.TrimSpace(address) == "" {
		return model.TokenInfo{}, apperrors.ErrInvalidAddress
	}
	if m.MockError != nil {
		return model.TokenInfo{}, m.MockError
	}
	if err, ok := m.Errors[address]; ok {
		return model.TokenInfo{}, err
	}
	info, ok := m.Quotes[address]
	if !ok {
		return model.TokenInfo{}, apperrors.ErrTokenNotFound
	}
	return info, nil
}

// WithQuote configures a quote for address with generated metadata.
func (m *MockPriceClient) WithQuote(address, symbol string, price float64) *MockPriceClient {
	return m.WithToken(address, model.TokenInfo{
		TokenName:    symbol + " Token",
		TokenSymbol:  symbol,
		Network:      model.DefaultNetwork,
		CurrentPrice: price,
	})
}

// WithToken configures the full token info for address.
func (m *MockPriceClient) WithToken(address string, info model.TokenInfo) *MockPriceClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Errors, address)
	m.Quotes[address] = info
	return m
}

// WithNotFound makes address return zero pairs.
func (m *MockPriceClient) WithNotFound(address string) *MockPriceClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[address] = apperrors.ErrTokenNotFound
	return m
}

// WithError configures the mock to return the specified error for every address.
func (m *MockPriceClient) WithError(err error) *MockPriceClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MockError = err
	return m
}

// SetPrice changes the quoted price of address, keeping its metadata.
func (m *MockPriceClient) SetPrice(address string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info := m.Quotes[address]
	info.CurrentPrice = price
	m.Quotes[address] = info
}

// QueryCount returns how many lookups were made.
func (m *MockPriceClient) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}
