package dto

import "time"

// ExportRequest selects the export encoding; csv when omitted.
type ExportRequest struct {
	Format string `json:"format"`
}

// ExportResponse describes a generated export.
type ExportResponse struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	Format    string    `json:"format"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expiresAt"`
}
