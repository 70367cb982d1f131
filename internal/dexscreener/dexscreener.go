// Package dexscreener looks up token prices by contract address on the public
// DexScreener search API.
package dexscreener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"resty.dev/v3"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

const (
	_searchURL = "/latest/dex/search"
)

// Client is the price source used by the price loop and the position service.
type Client interface {
	Lookup(ctx context.Context, contractAddress string) (model.TokenInfo, error)
}

// SearchClient queries DexScreener and reports the first matching pair.
type SearchClient struct {
	c      *resty.Client
	logger logger.Logger
}

// NewSearchClient creates a client against baseURL with the given request timeout.
func NewSearchClient(baseURL string, timeout time.Duration, logger logger.Logger) *SearchClient {
	client := resty.New().
		SetLogger(logger).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &SearchClient{
		c:      client,
		logger: logger,
	}
}

// Close releases the underlying HTTP client.
func (s *SearchClient) Close() error {
	return s.c.Close()
}

// Lookup fetches the first trading pair for contractAddress.
//
// Returns:
//   - apperrors.ErrTokenNotFound when the response holds no pairs or the first
//     pair lacks a parsable price
//   - an error wrapping apperrors.ErrPriceSource on transport failure or a non-2xx status
func (s *SearchClient) Lookup(ctx context.Context, contractAddress string) (model.TokenInfo, error) {
	if strings.TrimSpace(contractAddress) == "" {
		return model.TokenInfo{}, apperrors.ErrInvalidAddress
	}

	req := s.c.R().
		SetQueryParam("q", contractAddress).
		SetResult(&SearchResponse{}).
		SetError(&ErrorResponse{}).
		SetContext(ctx)

	resp, err := req.Get(_searchURL)
	if err != nil {
		return model.TokenInfo{}, fmt.Errorf("%w: %v", apperrors.ErrPriceSource, err)
	}
	defer resp.Body.Close()

	s.logger.Debugf("got response %s status: %s, %s", resp.Request.URL, resp.Status(), resp.Duration())

	if !resp.IsSuccess() {
		return model.TokenInfo{}, fmt.Errorf("%w: unexpected status %s", apperrors.ErrPriceSource, resp.Status())
	}

	result, ok := resp.Result().(*SearchResponse)
	if !ok || result == nil {
		return model.TokenInfo{}, apperrors.ErrTokenNotFound
	}
	return ParsePair(*result)
}

// ParsePair converts the first pair of a search response into TokenInfo.
// Any deviation from the expected shape is reported as apperrors.ErrTokenNotFound.
func ParsePair(r SearchResponse) (model.TokenInfo, error) {
	if len(r.Pairs) == 0 {
		return model.TokenInfo{}, apperrors.ErrTokenNotFound
	}
	pair := r.Pairs[0]

	price, err := decimal.NewFromString(strings.TrimSpace(pair.PriceUsd))
	if err != nil {
		return model.TokenInfo{}, apperrors.ErrTokenNotFound
	}

	info := model.TokenInfo{
		TokenName:    pair.BaseToken.Name,
		TokenSymbol:  pair.BaseToken.Symbol,
		Network:      pair.ChainID,
		CurrentPrice: price.InexactFloat64(),
	}
	if pair.Info != nil {
		info.LogoURL = pair.Info.ImageURL
	}
	return info, nil
}
