package request

// CreatePositionRequest adds a holding. Token name, symbol, network and the
// current price come from the price source, not the caller.
type CreatePositionRequest struct {
	ContractAddress string  `json:"contractAddress"`
	Quantity        float64 `json:"quantity"`
	InvestedAmount  float64 `json:"investedAmount"`
}

// UpdatePositionRequest edits a holding. When CurrentPrice is nil the service
// re-fetches the price and falls back to the stored one.
type UpdatePositionRequest struct {
	Quantity       *float64 `json:"quantity,omitempty"`
	InvestedAmount *float64 `json:"investedAmount,omitempty"`
	CurrentPrice   *float64 `json:"currentPrice,omitempty"`
}
