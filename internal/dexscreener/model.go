package dexscreener

// SearchResponse is the body of the search-by-address endpoint.
type SearchResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Pair is one trading pair record. Only the fields the tracker consumes are decoded.
type Pair struct {
	ChainID   string    `json:"chainId"`
	DexID     string    `json:"dexId"`
	PairAddr  string    `json:"pairAddress"`
	BaseToken BaseToken `json:"baseToken"`
	PriceUsd  string    `json:"priceUsd"`
	Info      *PairInfo `json:"info,omitempty"`
}

// BaseToken identifies the token being priced.
type BaseToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// PairInfo carries optional presentation data.
type PairInfo struct {
	ImageURL string `json:"imageUrl"`
}

// ErrorResponse is returned by the API on non-2xx statuses.
type ErrorResponse struct {
	Message string `json:"message"`
}
