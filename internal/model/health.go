package model

import "time"

// LocalHealth describes the upload root.
type LocalHealth struct {
	Available      bool    `json:"available"`
	Root           string  `json:"root"`
	TotalFiles     int64   `json:"totalFiles"`
	TotalSizeBytes int64   `json:"totalSizeBytes"`
	TotalSizeMB    float64 `json:"totalSizeMB"`
	HumanSize      string  `json:"humanSize"`
	FreeSpaceMB    float64 `json:"freeSpaceMB"`
	SkippedEntries int     `json:"skippedEntries"`
}

// CloudHealth describes cloud client readiness.
type CloudHealth struct {
	ClientReady  bool   `json:"clientReady"`
	StorageReady bool   `json:"storageReady"`
	Error        string `json:"error,omitempty"`
}

// StorageHealthReport is computed on demand and never persisted.
type StorageHealthReport struct {
	Local     LocalHealth `json:"local"`
	Cloud     CloudHealth `json:"cloud"`
	CheckedAt time.Time   `json:"checkedAt"`
}
