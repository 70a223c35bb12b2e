package usecase

import (
	"context"

	"github.com/calebrws/investor-portal/internal/infra/ingest"
	"github.com/calebrws/investor-portal/internal/infra/queue"
)

// FileParser parses a whole upload before anything is written.
type FileParser interface {
	ParseFile(path string) ([]ingest.Row, error)
}

// QueueProducerInterface publishes import-completed events consumed by the
// assistant refresh worker. May be nil when no broker is configured.
type QueueProducerInterface interface {
	PublishImportCompleted(ctx context.Context, payload queue.ImportCompletedPayload) error
}

// EmailService sends the post-import report to the operator.
type EmailService interface {
	SendImportReport(to, investorName, kind string, imported, skipped, failed int) error
}
