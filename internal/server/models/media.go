package models

import "time"

const (
	MediaPending   = "pending"
	MediaCompleted = "completed"
)

// Media is an object uploaded to the bucket by an administrator. The row is
// created pending when the upload URL is handed out and completed once the
// client confirms the upload.
type Media struct {
	ID          string    `json:"id"`
	StorageKey  string    `json:"key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Status      string    `json:"status"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
