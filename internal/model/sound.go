package model

import "time"

// Sound describes a playable alert sound, built in or uploaded.
type Sound struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BuiltIn     bool      `json:"builtIn"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt,omitempty"`
}
