package database

import (
	"context"
	"database/sql"

	"github.com/calebrws/investor-portal/internal/entity"
)

type ChatHistoryRepository struct {
	DB *sql.DB
}

func NewChatHistoryRepository(db *sql.DB) *ChatHistoryRepository {
	return &ChatHistoryRepository{DB: db}
}

func (r *ChatHistoryRepository) Append(ctx context.Context, entry *entity.ChatEntry) error {
	query := `
		INSERT INTO chat_history (id, investor_id, user_message, bot_response, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.InvestorID,
		entry.UserMessage,
		entry.BotResponse,
		entry.CreatedAt,
	)
	return err
}

func (r *ChatHistoryRepository) ListByInvestor(ctx context.Context, investorID string, limit int) ([]*entity.ChatEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, investor_id, user_message, bot_response, created_at
		FROM chat_history
		WHERE investor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.DB.QueryContext(ctx, query, investorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*entity.ChatEntry
	for rows.Next() {
		var e entity.ChatEntry
		err := rows.Scan(&e.ID, &e.InvestorID, &e.UserMessage, &e.BotResponse, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
