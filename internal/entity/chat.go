package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DataChunk is a pre-rendered slice of an investor's rows, stored as plain
// text so the assistant can feed it to the model as grounding context.
type DataChunk struct {
	ID         string    `json:"id"`
	InvestorID string    `json:"investor_id"`
	DataType   string    `json:"data_type"` // leads | enrollments
	ChunkText  string    `json:"chunk_text"`
	ChunkHash  string    `json:"chunk_hash"`
	Metadata   string    `json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewDataChunk(investorID, dataType, chunkText, chunkHash, metadata string) *DataChunk {
	return &DataChunk{
		ID:         uuid.New().String(),
		InvestorID: investorID,
		DataType:   dataType,
		ChunkText:  chunkText,
		ChunkHash:  chunkHash,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
}

// ChatEntry is one question/answer exchange kept per investor.
type ChatEntry struct {
	ID          string    `json:"id"`
	InvestorID  string    `json:"investor_id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	CreatedAt   time.Time `json:"timestamp"`
}

func NewChatEntry(investorID, userMessage, botResponse string) *ChatEntry {
	return &ChatEntry{
		ID:          uuid.New().String(),
		InvestorID:  investorID,
		UserMessage: userMessage,
		BotResponse: botResponse,
		CreatedAt:   time.Now(),
	}
}

type DataChunkRepositoryInterface interface {
	// Replace swaps out every chunk of the given type for the investor in
	// one transaction, so a refresh never leaves stale rows behind.
	Replace(ctx context.Context, investorID, dataType string, chunks []*DataChunk) error
	ListByInvestor(ctx context.Context, investorID string, dataTypes []string) ([]*DataChunk, error)
}

type ChatHistoryRepositoryInterface interface {
	Append(ctx context.Context, entry *ChatEntry) error
	ListByInvestor(ctx context.Context, investorID string, limit int) ([]*ChatEntry, error)
}
