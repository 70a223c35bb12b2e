package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/calebrws/investor-portal/internal/entity"
)

// ReconcileUseCase links leads and enrollments that share an insured name,
// run once after every enrollment-kind import. Both steps carry IS NULL
// guards in SQL, so running it again on reconciled data changes nothing.
type ReconcileUseCase struct {
	LeadRepo       entity.LeadRepositoryInterface
	EnrollmentRepo entity.EnrollmentRepositoryInterface
	Log            *zap.Logger
}

func NewReconcileUseCase(
	leadRepo entity.LeadRepositoryInterface,
	enrollmentRepo entity.EnrollmentRepositoryInterface,
	log *zap.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		LeadRepo:       leadRepo,
		EnrollmentRepo: enrollmentRepo,
		Log:            log,
	}
}

// Execute runs the two set-based passes. Matching is exact equality on the
// stored, already-sanitized name; when duplicate names exist, which pair wins
// is deliberately unspecified.
func (uc *ReconcileUseCase) Execute(ctx context.Context) error {
	enrollmentsLinked, err := uc.EnrollmentRepo.AdoptUnlinkedLeads(ctx)
	if err != nil {
		return fmt.Errorf("linking enrollments to leads: %w", err)
	}

	leadsConverted, err := uc.LeadRepo.MarkConvertedWhereEnrolled(ctx)
	if err != nil {
		return fmt.Errorf("marking enrolled leads converted: %w", err)
	}

	if enrollmentsLinked > 0 || leadsConverted > 0 {
		uc.Log.Info("reconciliation pass",
			zap.Int64("enrollments_linked", enrollmentsLinked),
			zap.Int64("leads_converted", leadsConverted))
	}
	return nil
}
