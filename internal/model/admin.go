package model

import "time"

// AdminSession is the stored result of a successful admin login.
type AdminSession struct {
	ID        string    `json:"id"`
	IsAdmin   bool      `json:"isAdmin"`
	LoginTime time.Time `json:"loginTime"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ImportRequest is the admin bulk import document.
type ImportRequest struct {
	AddPosition []ImportPosition `json:"addPosition"`
	AddAlerts   []ImportAlert    `json:"addAlerts"`
}

// ImportPosition is one position entry of an import. Optional numbers are
// pointers so absent fields can be told apart from zero.
type ImportPosition struct {
	ContractAddress string   `json:"contractAddress"`
	TokenName       string   `json:"tokenName"`
	TokenSymbol     string   `json:"tokenSymbol"`
	Network         string   `json:"network,omitempty"`
	Quantity        float64  `json:"quantity"`
	InvestedAmount  float64  `json:"investedAmount"`
	AveragePrice    *float64 `json:"averagePrice,omitempty"`
	CurrentPrice    *float64 `json:"currentPrice,omitempty"`
	LogoURL         string   `json:"logoUrl,omitempty"`
}

// ImportAlert is one alert entry of an import.
type ImportAlert struct {
	PositionID          string    `json:"positionId"`
	TokenSymbol         string    `json:"tokenSymbol"`
	TokenName           string    `json:"tokenName"`
	ContractAddress     string    `json:"contractAddress"`
	TargetPrice         float64   `json:"targetPrice"`
	AlertType           AlertKind `json:"alertType,omitempty"`
	PercentageValue     *float64  `json:"percentageValue"`
	IsOneTime           *bool     `json:"isOneTime,omitempty"`
	SoundEnabled        *bool     `json:"soundEnabled,omitempty"`
	SoundFile           string    `json:"soundFile,omitempty"`
	Volume              *float64  `json:"volume,omitempty"`
	BrowserNotification bool      `json:"browserNotification"`
	EmailNotification   bool      `json:"emailNotification"`
}

// ImportReport lists one line per imported item, in input order.
type ImportReport struct {
	Results []string `json:"results"`
	Added   int      `json:"added"`
	Failed  int      `json:"failed"`
}
