package model

// TokenInfo is what the price source reports for a contract address.
type TokenInfo struct {
	TokenName    string  `json:"tokenName"`
	TokenSymbol  string  `json:"tokenSymbol"`
	Network      string  `json:"network"`
	CurrentPrice float64 `json:"currentPrice"`
	LogoURL      string  `json:"logoUrl,omitempty"`
}
