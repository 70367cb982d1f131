package model

// HealthInfo reports the state of the process and its storage tiers.
type HealthInfo struct {
	Status      string `json:"status"`
	LocalStore  string `json:"localStore"`
	HostedStore string `json:"hostedStore"`
	PriceLoop   string `json:"priceLoop"`
	SignedIn    bool   `json:"signedIn"`
	ActiveTier  string `json:"activeTier"`
	Error       string `json:"error,omitempty"`
}

// VersionInfo reports the build and the hosted schema version.
type VersionInfo struct {
	AppVersion    string `json:"appVersion"`
	SchemaVersion *int64 `json:"schemaVersion,omitempty"`
	HostedEnabled bool   `json:"hostedEnabled"`
}
