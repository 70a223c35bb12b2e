package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UploadRecord is the audit trail row written after every file import
// attempt, successful or not.
type UploadRecord struct {
	ID           string    `json:"id"`
	FileName     string    `json:"file_name"`
	FileType     string    `json:"file_type"`
	RecordsAdded int       `json:"records_added"`
	Status       string    `json:"upload_status"` // Success | Failed
	ErrorMessage string    `json:"error_message,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func NewUploadRecord(fileName, fileType string, recordsAdded int, status, errorMessage string) *UploadRecord {
	return &UploadRecord{
		ID:           uuid.New().String(),
		FileName:     fileName,
		FileType:     fileType,
		RecordsAdded: recordsAdded,
		Status:       status,
		ErrorMessage: errorMessage,
		UploadedAt:   time.Now(),
	}
}

type UploadHistoryRepositoryInterface interface {
	Record(ctx context.Context, rec *UploadRecord) error
	List(ctx context.Context, limit int) ([]*UploadRecord, error)
}
