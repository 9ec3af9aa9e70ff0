package models

import "time"

// FormDocument describes metadata for an uploaded form or document.
// The binary content itself lives in object storage under StorageKey.
type FormDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	StorageKey  string    `json:"storageKey"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
