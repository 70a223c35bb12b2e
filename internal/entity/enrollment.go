package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultLaborCost is the fixed operational cost applied to imported
// enrollments unless a caller overrides it.
var DefaultLaborCost = decimal.NewFromFloat(15.00)

// Enrollment is a completed conversion event. It is linked to an investor
// only indirectly, through its originating lead.
type Enrollment struct {
	ID             string          `json:"id"`
	InsuredName    string          `json:"insured_name"`
	EnrollmentDate string          `json:"enrollment_date"` // YYYY-MM-DD
	LaborCost      decimal.Decimal `json:"labor_cost"`
	LeadID         *string         `json:"lead_id,omitempty"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Joined read-model fields (through leads).
	InvestorID   *string `json:"investor_id,omitempty"`
	InvestorName *string `json:"investor_name,omitempty"`
}

func NewEnrollment(insuredName, enrollmentDate string, laborCost decimal.Decimal, notes string) *Enrollment {
	if enrollmentDate == "" {
		enrollmentDate = time.Now().Format("2006-01-02")
	}
	return &Enrollment{
		ID:             uuid.New().String(),
		InsuredName:    insuredName,
		EnrollmentDate: enrollmentDate,
		LaborCost:      laborCost,
		Notes:          notes,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

type EnrollmentRepositoryInterface interface {
	Create(ctx context.Context, enrollment *Enrollment) error
	List(ctx context.Context, limit, offset int) ([]*Enrollment, error)
	// ListByInvestor resolves the investor through the linked lead.
	ListByInvestor(ctx context.Context, investorID string) ([]*Enrollment, error)
	// AdoptUnlinkedLeads is the reconcile step that points every enrollment
	// without a lead_id at the first unlinked lead sharing its insured_name.
	// Returns the number of enrollments updated.
	AdoptUnlinkedLeads(ctx context.Context) (int64, error)
	TotalLaborCost(ctx context.Context, investorID string) (decimal.Decimal, error)
}
