package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReconcileRunsBothPassesInOrder(t *testing.T) {
	ctx := context.Background()

	leadRepo := new(MockLeadRepository)
	enrollmentRepo := new(MockEnrollmentRepository)

	enrollmentRepo.On("AdoptUnlinkedLeads", ctx).Return(int64(3), nil)
	leadRepo.On("MarkConvertedWhereEnrolled", ctx).Return(int64(3), nil)

	uc := NewReconcileUseCase(leadRepo, enrollmentRepo, zap.NewNop())
	require.NoError(t, uc.Execute(ctx))

	enrollmentRepo.AssertExpectations(t)
	leadRepo.AssertExpectations(t)
}

func TestReconcileNothingToLink(t *testing.T) {
	ctx := context.Background()

	leadRepo := new(MockLeadRepository)
	enrollmentRepo := new(MockEnrollmentRepository)

	// Second run over already-reconciled data touches zero rows.
	enrollmentRepo.On("AdoptUnlinkedLeads", ctx).Return(int64(0), nil)
	leadRepo.On("MarkConvertedWhereEnrolled", ctx).Return(int64(0), nil)

	uc := NewReconcileUseCase(leadRepo, enrollmentRepo, zap.NewNop())
	assert.NoError(t, uc.Execute(ctx))
}

func TestReconcileStopsWhenAdoptFails(t *testing.T) {
	ctx := context.Background()

	leadRepo := new(MockLeadRepository)
	enrollmentRepo := new(MockEnrollmentRepository)

	enrollmentRepo.On("AdoptUnlinkedLeads", ctx).Return(int64(0), errors.New("deadlock"))

	uc := NewReconcileUseCase(leadRepo, enrollmentRepo, zap.NewNop())
	err := uc.Execute(ctx)

	require.Error(t, err)
	leadRepo.AssertNotCalled(t, "MarkConvertedWhereEnrolled", ctx)
}
