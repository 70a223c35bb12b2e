package database

import (
	"context"
	"database/sql"

	"github.com/calebrws/investor-portal/internal/entity"
)

type UploadHistoryRepository struct {
	DB *sql.DB
}

func NewUploadHistoryRepository(db *sql.DB) *UploadHistoryRepository {
	return &UploadHistoryRepository{DB: db}
}

func (r *UploadHistoryRepository) Record(ctx context.Context, rec *entity.UploadRecord) error {
	query := `
		INSERT INTO upload_history (id, file_name, file_type, records_added, upload_status, error_message, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.FileName,
		rec.FileType,
		rec.RecordsAdded,
		rec.Status,
		rec.ErrorMessage,
		rec.UploadedAt,
	)
	return err
}

func (r *UploadHistoryRepository) List(ctx context.Context, limit int) ([]*entity.UploadRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, file_name, file_type, records_added, upload_status, error_message, uploaded_at
		FROM upload_history
		ORDER BY uploaded_at DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*entity.UploadRecord
	for rows.Next() {
		var rec entity.UploadRecord
		err := rows.Scan(&rec.ID, &rec.FileName, &rec.FileType, &rec.RecordsAdded,
			&rec.Status, &rec.ErrorMessage, &rec.UploadedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
