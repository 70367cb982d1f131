package model

// Preferences are device-level UI settings kept in local storage.
type Preferences struct {
	SidebarCollapsed bool    `json:"sidebarCollapsed"`
	AlertVolume      float64 `json:"alertVolume"`
}
