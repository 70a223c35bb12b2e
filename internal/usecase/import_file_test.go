package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calebrws/investor-portal/internal/entity"
	"github.com/calebrws/investor-portal/internal/infra/ingest"
	"github.com/calebrws/investor-portal/internal/infra/queue"
)

// MockInvestorRepository
type MockInvestorRepository struct {
	mock.Mock
}

func (m *MockInvestorRepository) Create(ctx context.Context, investor *entity.Investor) error {
	args := m.Called(ctx, investor)
	return args.Error(0)
}

func (m *MockInvestorRepository) FindByName(ctx context.Context, name string) (*entity.Investor, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Investor), args.Error(1)
}

func (m *MockInvestorRepository) FindByID(ctx context.Context, id string) (*entity.Investor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Investor), args.Error(1)
}

func (m *MockInvestorRepository) List(ctx context.Context) ([]*entity.Investor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Investor), args.Error(1)
}

func (m *MockInvestorRepository) Update(ctx context.Context, id string, name *string, leadCost *decimal.Decimal) error {
	args := m.Called(ctx, id, name, leadCost)
	return args.Error(0)
}

func (m *MockInvestorRepository) Contributions(ctx context.Context, investorID string) ([]*entity.InvestorContribution, error) {
	args := m.Called(ctx, investorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.InvestorContribution), args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLeadRepository) Link(ctx context.Context, leadID, enrollmentID string) error {
	args := m.Called(ctx, leadID, enrollmentID)
	return args.Error(0)
}

func (m *MockLeadRepository) MarkConvertedWhereEnrolled(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) TotalCost(ctx context.Context, investorID string) (decimal.Decimal, error) {
	args := m.Called(ctx, investorID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockEnrollmentRepository
type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) List(ctx context.Context, limit, offset int) ([]*entity.Enrollment, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) ListByInvestor(ctx context.Context, investorID string) ([]*entity.Enrollment, error) {
	args := m.Called(ctx, investorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) AdoptUnlinkedLeads(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEnrollmentRepository) TotalLaborCost(ctx context.Context, investorID string) (decimal.Decimal, error) {
	args := m.Called(ctx, investorID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockUploadHistoryRepository
type MockUploadHistoryRepository struct {
	mock.Mock
}

func (m *MockUploadHistoryRepository) Record(ctx context.Context, rec *entity.UploadRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockUploadHistoryRepository) List(ctx context.Context, limit int) ([]*entity.UploadRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.UploadRecord), args.Error(1)
}

// MockFileParser
type MockFileParser struct {
	mock.Mock
}

func (m *MockFileParser) ParseFile(path string) ([]ingest.Row, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ingest.Row), args.Error(1)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishImportCompleted(ctx context.Context, payload queue.ImportCompletedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendImportReport(to, investorName, kind string, imported, skipped, failed int) error {
	args := m.Called(to, investorName, kind, imported, skipped, failed)
	return args.Error(0)
}

func testInvestor() *entity.Investor {
	return &entity.Investor{
		ID:       "inv-1",
		Name:     "Eric",
		LeadCost: decimal.NewFromFloat(42.00),
	}
}

func importRows() []ingest.Row {
	return []ingest.Row{
		row(map[string]string{
			"First Name": "John", "Last Name": "Smith",
			"Created": "2024-07-15T10:30:00Z", "Tags": "web",
		}),
		row(map[string]string{
			"First Name": " ", "Last Name": "",
		}),
		row(map[string]string{
			"First Name": "Jane", "Last Name": "Doe",
			"Created": "garbage", "Tags": "Enrollment done",
		}),
	}
}

func newImportUC(
	investorRepo *MockInvestorRepository,
	leadRepo *MockLeadRepository,
	enrollmentRepo *MockEnrollmentRepository,
	uploadRepo *MockUploadHistoryRepository,
	parser *MockFileParser,
) *ImportFileUseCase {
	uc := NewImportFileUseCase(
		investorRepo, leadRepo, enrollmentRepo, uploadRepo,
		parser, nil, nil, "", zap.NewNop(),
	)
	uc.Now = fixedNow
	return uc
}

func TestImportLeadsMixedRows(t *testing.T) {
	ctx := context.Background()

	investorRepo := new(MockInvestorRepository)
	leadRepo := new(MockLeadRepository)
	enrollmentRepo := new(MockEnrollmentRepository)
	uploadRepo := new(MockUploadHistoryRepository)
	parser := new(MockFileParser)

	investorRepo.On("FindByName", ctx, "Eric").Return(testInvestor(), nil)
	parser.On("ParseFile", "uploads/eric_leads.csv").Return(importRows(), nil)
	leadRepo.On("Create", ctx, mock.Anything).Return(nil)
	// Only the row tagged with an enrollment gets a status follow-up.
	leadRepo.On("UpdateStatus", ctx, mock.Anything, entity.LeadStatusConverted).Return(nil)
	uploadRepo.On("Record", ctx, mock.Anything).Return(nil)

	uc := newImportUC(investorRepo, leadRepo, enrollmentRepo, uploadRepo, parser)

	result, err := uc.Execute(ctx, ImportFileInput{
		Path:         "uploads/eric_leads.csv",
		InvestorName: "Eric",
		Kind:         KindLead,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordsImported)
	assert.Equal(t, 1, result.RecordsSkipped)
	assert.Equal(t, 0, result.RecordsFailed)

	leadRepo.AssertNumberOfCalls(t, "Create", 2)
	leadRepo.AssertNumberOfCalls(t, "UpdateStatus", 1)
	uploadRepo.AssertCalled(t, "Record", ctx, mock.MatchedBy(func(rec *entity.UploadRecord) bool {
		return rec.Status == "Success" && rec.RecordsAdded == 2 && rec.FileType == "CSV"
	}))
}

func TestImportEnrollmentsUsesDefaultLaborCost(t *testing.T) {
	ctx := context.Background()

	investorRepo := new(MockInvestorRepository)
	leadRepo := new(MockLeadRepository)
	enrollmentRepo := new(MockEnrollmentRepository)
	uploadRepo := new(MockUploadHistoryRepository)
	parser := new(MockFileParser)

	investorRepo.On("FindByName", ctx, "Phillip").Return(testInvestor(), nil)
	parser.On("ParseFile", mock.Anything).Return(importRows()[:1], nil)
	enrollmentRepo.On("Create", ctx, mock.MatchedBy(func(e *entity.Enrollment) bool {
		return e.LaborCost.Equal(decimal.NewFromFloat(15.00)) && e.InsuredName == "John Smith"
	})).Return(nil)
	uploadRepo.On("Record", ctx, mock.Anything).Return(nil)

	uc := newImportUC(investorRepo, leadRepo, enrollmentRepo, uploadRepo, parser)

	result, err := uc.Execute(ctx, ImportFileInput{
		Path:         "uploads/phillip_enrollments.csv",
		InvestorName: "Phillip",
		Kind:         KindEnrollment,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsImported)
	enrollmentRepo.AssertExpectations(t)
}

func TestImportUnknownInvestor(t *testing.T) {
	ctx := context.Background()

	investorRepo := new(MockInvestorRepository)
	parser := new(MockFileParser)

	investorRepo.On("FindByName", ctx, "Nobody").Return(nil, entity.ErrInvestorNotFound)

	uc := newImportUC(investorRepo, new(MockLeadRepository), new(MockEnrollmentRepository),
		new(MockUploadHistoryRepository), parser)

	_, err := uc.Execute(ctx, ImportFileInput{
		Path:         "uploads/x.csv",
		InvestorName: "Nobody",
		Kind:         KindLead,
	})

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeInvestorNotFound, domainErr.Code)
	parser.AssertNotCalled(t, "ParseFile", mock.Anything)
}

func TestImportInvalidKind(t *testing.T) {
	uc := newImportUC(new(MockInvestorRepository), new(MockLeadRepository),
		new(MockEnrollmentRepository), new(MockUploadHistoryRepository), new(MockFileParser))

	_, err := uc.Execute(context.Background(), ImportFileInput{
		Path:         "uploads/x.csv",
		InvestorName: "Eric",
		Kind:         RecordKind("payments"),
	})

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeInvalidInput, domainErr.Code)
}

func TestImportUnsupportedFormat(t *testing.T) {
	ctx := context.Background()

	investorRepo := new(MockInvestorRepository)
	uploadRepo := new(MockUploadHistoryRepository)
	parser := new(MockFileParser)

	investorRepo.On("FindByName", ctx, "Eric").Return(testInvestor(), nil)
	parser.On("ParseFile", "uploads/x.pdf").Return(nil, ingest.ErrUnsupportedFormat)
	uploadRepo.On("Record", ctx, mock.Anything).Return(nil)

	uc := newImportUC(investorRepo, new(MockLeadRepository), new(MockEnrollmentRepository),
		uploadRepo, parser)

	_, err := uc.Execute(ctx, ImportFileInput{
		Path:         "uploads/x.pdf",
		InvestorName: "Eric",
		Kind:         KindLead,
	})

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeUnsupportedFile, domainErr.Code)
	// Failures still leave an audit row.
	uploadRepo.AssertCalled(t, "Record", ctx, mock.MatchedBy(func(rec *entity.UploadRecord) bool {
		return rec.Status == "Failed"
	}))
}

func TestImportRowFailureDoesNotAbortBatch(t *testing.T) {
	ctx := context.Background()

	investorRepo := new(MockInvestorRepository)
	leadRepo := new(MockLeadRepository)
	uploadRepo := new(MockUploadHistoryRepository)
	parser := new(MockFileParser)

	investorRepo.On("FindByName", ctx, "Eric").Return(testInvestor(), nil)
	parser.On("ParseFile", mock.Anything).Return(importRows(), nil)
	leadRepo.On("Create", ctx, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.InsuredName == "John Smith"
	})).Return(errors.New("connection reset"))
	leadRepo.On("Create", ctx, mock.Anything).Return(nil)
	leadRepo.On("UpdateStatus", ctx, mock.Anything, entity.LeadStatusConverted).Return(nil)
	uploadRepo.On("Record", ctx, mock.Anything).Return(nil)

	uc := newImportUC(investorRepo, leadRepo, new(MockEnrollmentRepository), uploadRepo, parser)

	result, err := uc.Execute(ctx, ImportFileInput{
		Path:         "uploads/eric_leads.csv",
		InvestorName: "Eric",
		Kind:         KindLead,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsImported)
	assert.Equal(t, 1, result.RecordsSkipped)
	assert.Equal(t, 1, result.RecordsFailed)
}

func TestImportPublishesEventAndSendsReport(t *testing.T) {
	ctx := context.Background()

	investorRepo := new(MockInvestorRepository)
	leadRepo := new(MockLeadRepository)
	uploadRepo := new(MockUploadHistoryRepository)
	parser := new(MockFileParser)
	producer := new(MockQueueProducer)
	email := new(MockEmailService)

	investorRepo.On("FindByName", ctx, "Eric").Return(testInvestor(), nil)
	parser.On("ParseFile", mock.Anything).Return(importRows()[:1], nil)
	leadRepo.On("Create", ctx, mock.Anything).Return(nil)
	uploadRepo.On("Record", ctx, mock.Anything).Return(nil)
	producer.On("PublishImportCompleted", ctx, mock.MatchedBy(func(p queue.ImportCompletedPayload) bool {
		return p.InvestorID == "inv-1" && p.Kind == "lead" && p.RecordsImported == 1
	})).Return(nil)
	email.On("SendImportReport", "ops@example.com", "Eric", "lead", 1, 0, 0).Return(nil)

	uc := NewImportFileUseCase(
		investorRepo, leadRepo, new(MockEnrollmentRepository), uploadRepo,
		parser, producer, email, "ops@example.com", zap.NewNop(),
	)
	uc.Now = fixedNow

	_, err := uc.Execute(ctx, ImportFileInput{
		Path:         "uploads/eric_leads.csv",
		InvestorName: "Eric",
		Kind:         KindLead,
	})

	require.NoError(t, err)
	producer.AssertExpectations(t)
	email.AssertExpectations(t)
}
