package database

import (
	"context"
	"database/sql"

	"github.com/calebrws/investor-portal/internal/entity"
)

type DataChunkRepository struct {
	DB *sql.DB
}

func NewDataChunkRepository(db *sql.DB) *DataChunkRepository {
	return &DataChunkRepository{DB: db}
}

func (r *DataChunkRepository) Replace(ctx context.Context, investorID, dataType string, chunks []*entity.DataChunk) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM data_chunks WHERE investor_id = $1 AND data_type = $2`,
		investorID, dataType)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO data_chunks (id, investor_id, data_type, chunk_text, chunk_hash, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chunk_hash) DO NOTHING
	`
	for _, chunk := range chunks {
		_, err = tx.ExecContext(ctx, query,
			chunk.ID,
			chunk.InvestorID,
			chunk.DataType,
			chunk.ChunkText,
			chunk.ChunkHash,
			chunk.Metadata,
			chunk.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *DataChunkRepository) ListByInvestor(ctx context.Context, investorID string, dataTypes []string) ([]*entity.DataChunk, error) {
	query := `
		SELECT id, investor_id, data_type, chunk_text, chunk_hash, metadata, created_at
		FROM data_chunks
		WHERE investor_id = $1 AND data_type = ANY($2)
		ORDER BY data_type, created_at
	`

	rows, err := r.DB.QueryContext(ctx, query, investorID, dataTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*entity.DataChunk
	for rows.Next() {
		var c entity.DataChunk
		err := rows.Scan(&c.ID, &c.InvestorID, &c.DataType, &c.ChunkText,
			&c.ChunkHash, &c.Metadata, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}
