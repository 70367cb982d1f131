package request

// CreateAlertRequest represents the request body for creating an alert.
//
// AlertType is "price" (TargetPrice required) or one of the percentage kinds
// "take profit" and "stop loss" (PercentageValue required). With AlertType left
// empty, a PercentageValue picks the kind from its sign.
type CreateAlertRequest struct {
	PositionID          string   `json:"positionId"`
	AlertType           string   `json:"alertType"`
	TargetPrice         *float64 `json:"targetPrice,omitempty"`
	PercentageValue     *float64 `json:"percentageValue,omitempty"`
	IsOneTime           *bool    `json:"isOneTime,omitempty"`
	SoundEnabled        *bool    `json:"soundEnabled,omitempty"`
	SoundFile           string   `json:"soundFile,omitempty"`
	Volume              *float64 `json:"volume,omitempty"`
	BrowserNotification bool     `json:"browserNotification"`
	EmailNotification   bool     `json:"emailNotification"`
}

// UpdateAlertRequest edits an alert. Any edit re-arms it.
type UpdateAlertRequest struct {
	TargetPrice         *float64 `json:"targetPrice,omitempty"`
	IsOneTime           *bool    `json:"isOneTime,omitempty"`
	SoundEnabled        *bool    `json:"soundEnabled,omitempty"`
	SoundFile           *string  `json:"soundFile,omitempty"`
	Volume              *float64 `json:"volume,omitempty"`
	BrowserNotification *bool    `json:"browserNotification,omitempty"`
	EmailNotification   *bool    `json:"emailNotification,omitempty"`
}
