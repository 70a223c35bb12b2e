package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calebrws/investor-portal/internal/entity"
	"github.com/calebrws/investor-portal/internal/infra/ingest"
	"github.com/calebrws/investor-portal/internal/infra/queue"
)

// ImportFileUseCase drives one spreadsheet into the leads or enrollments
// table. The whole file is parsed before any write, so a file-level failure
// leaves nothing behind; after that, partial success is the normal outcome.
type ImportFileUseCase struct {
	InvestorRepo   entity.InvestorRepositoryInterface
	LeadRepo       entity.LeadRepositoryInterface
	EnrollmentRepo entity.EnrollmentRepositoryInterface
	UploadHistory  entity.UploadHistoryRepositoryInterface
	Parser         FileParser
	Queue          QueueProducerInterface // nil when no broker is configured
	Email          EmailService           // nil when mail is not configured
	ReportTo       string
	Log            *zap.Logger
	Now            func() time.Time
}

func NewImportFileUseCase(
	investorRepo entity.InvestorRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	enrollmentRepo entity.EnrollmentRepositoryInterface,
	uploadHistory entity.UploadHistoryRepositoryInterface,
	parser FileParser,
	producer QueueProducerInterface,
	email EmailService,
	reportTo string,
	log *zap.Logger,
) *ImportFileUseCase {
	return &ImportFileUseCase{
		InvestorRepo:   investorRepo,
		LeadRepo:       leadRepo,
		EnrollmentRepo: enrollmentRepo,
		UploadHistory:  uploadHistory,
		Parser:         parser,
		Queue:          producer,
		Email:          email,
		ReportTo:       reportTo,
		Log:            log,
		Now:            time.Now,
	}
}

func (uc *ImportFileUseCase) Execute(ctx context.Context, input ImportFileInput) (*ImportResult, error) {
	if !input.Kind.Valid() {
		return nil, &DomainError{
			Code:    CodeInvalidInput,
			Message: fmt.Sprintf("unknown record kind %q", input.Kind),
		}
	}

	investor, err := uc.InvestorRepo.FindByName(ctx, input.InvestorName)
	if err != nil {
		if errors.Is(err, entity.ErrInvestorNotFound) {
			return nil, &DomainError{
				Code:    CodeInvestorNotFound,
				Message: fmt.Sprintf("investor %s not found", input.InvestorName),
			}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	fileName := filepath.Base(input.Path)

	// Parse everything up front; a corrupt file aborts before any write.
	rows, err := uc.Parser.ParseFile(input.Path)
	if err != nil {
		uc.recordHistory(ctx, fileName, input.Kind, 0, "Failed", err.Error())
		code := CodeImportFailed
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			code = CodeUnsupportedFile
		}
		return nil, &DomainError{
			Code:    code,
			Message: fmt.Sprintf("could not read %s: %v", fileName, err),
		}
	}

	result := &ImportResult{}
	dateFallbacks := 0

	for _, row := range rows {
		rec, skip := ExtractRecord(row, input.Kind, uc.Now)
		if skip {
			result.RecordsSkipped++
			continue
		}
		if rec.DateFellBack {
			dateFallbacks++
		}

		if err := uc.persist(ctx, investor, input.Kind, rec); err != nil {
			// A single bad row never aborts the batch.
			result.RecordsFailed++
			uc.Log.Warn("row persistence failed",
				zap.String("file", fileName),
				zap.String("insured_name", rec.InsuredName),
				zap.Error(err))
			continue
		}
		result.RecordsImported++
	}

	if dateFallbacks > 0 {
		// Logged once per file, not per row: the fallback is accepted
		// behavior, not an error.
		uc.Log.Warn("unparsable Created dates replaced with today",
			zap.String("file", fileName),
			zap.Int("rows", dateFallbacks))
	}

	uc.recordHistory(ctx, fileName, input.Kind, result.RecordsImported, "Success", "")
	uc.notify(ctx, investor, input.Kind, fileName, result)

	uc.Log.Info("import finished",
		zap.String("file", fileName),
		zap.String("investor", investor.Name),
		zap.String("kind", string(input.Kind)),
		zap.Int("imported", result.RecordsImported),
		zap.Int("skipped", result.RecordsSkipped),
		zap.Int("failed", result.RecordsFailed))

	return result, nil
}

func (uc *ImportFileUseCase) persist(ctx context.Context, investor *entity.Investor, kind RecordKind, rec *CandidateRecord) error {
	switch kind {
	case KindLead:
		lead := entity.NewLead(investor.ID, rec.InsuredName, rec.Date, rec.Notes)
		if err := uc.LeadRepo.Create(ctx, lead); err != nil {
			return err
		}
		// Inserts default to active; the tags hint is a follow-up update.
		if rec.StatusHint == entity.LeadStatusConverted {
			if err := uc.LeadRepo.UpdateStatus(ctx, lead.ID, entity.LeadStatusConverted); err != nil {
				uc.Log.Warn("status follow-up failed", zap.String("lead_id", lead.ID), zap.Error(err))
			}
		}
		return nil

	case KindEnrollment:
		enrollment := entity.NewEnrollment(rec.InsuredName, rec.Date, entity.DefaultLaborCost, rec.Notes)
		return uc.EnrollmentRepo.Create(ctx, enrollment)
	}
	return fmt.Errorf("unknown record kind %q", kind)
}

func (uc *ImportFileUseCase) recordHistory(ctx context.Context, fileName string, kind RecordKind, added int, status, errMsg string) {
	if uc.UploadHistory == nil {
		return
	}
	fileType := strings.TrimPrefix(strings.ToUpper(filepath.Ext(fileName)), ".")
	rec := entity.NewUploadRecord(fileName, fileType, added, status, errMsg)
	if err := uc.UploadHistory.Record(ctx, rec); err != nil {
		uc.Log.Warn("upload history write failed", zap.Error(err))
	}
}

func (uc *ImportFileUseCase) notify(ctx context.Context, investor *entity.Investor, kind RecordKind, fileName string, result *ImportResult) {
	if uc.Queue != nil {
		err := uc.Queue.PublishImportCompleted(ctx, queue.ImportCompletedPayload{
			InvestorID:      investor.ID,
			InvestorName:    investor.Name,
			Kind:            string(kind),
			FileName:        fileName,
			RecordsImported: result.RecordsImported,
		})
		if err != nil {
			// Import already committed; a missed refresh event is not fatal.
			uc.Log.Warn("import event publish failed", zap.Error(err))
		}
	}

	if uc.Email != nil && uc.ReportTo != "" {
		err := uc.Email.SendImportReport(uc.ReportTo, investor.Name, string(kind),
			result.RecordsImported, result.RecordsSkipped, result.RecordsFailed)
		if err != nil {
			uc.Log.Warn("import report email failed", zap.Error(err))
		}
	}
}
