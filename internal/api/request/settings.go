package request

type AddEmailAddressRequest struct {
	Email string `json:"email"`
}

type UpdateEmailSettingsRequest struct {
	Enabled *bool `json:"enabled,omitempty"`
}

type UpdatePreferencesRequest struct {
	SidebarCollapsed *bool    `json:"sidebarCollapsed,omitempty"`
	AlertVolume      *float64 `json:"alertVolume,omitempty"`
}

// PermissionRequest carries the user's answer to the notification prompt:
// "granted" or "denied".
type PermissionRequest struct {
	Permission string `json:"permission"`
}

// TestSoundRequest plays a sound once. A nil volume uses the saved default.
type TestSoundRequest struct {
	Volume *float64 `json:"volume,omitempty"`
}
