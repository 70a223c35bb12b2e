package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LeadStatusActive    = "active"
	LeadStatusConverted = "converted"
)

// Lead is a prospective customer attributed to exactly one investor. Cost is
// copied from the investor's lead_cost when the lead is created and never
// changes afterwards, even if the investor's rate does.
type Lead struct {
	ID           string          `json:"id"`
	InvestorID   string          `json:"investor_id"`
	InsuredName  string          `json:"insured_name"`
	LeadDate     string          `json:"lead_date"` // YYYY-MM-DD
	Cost         decimal.Decimal `json:"cost"`
	Status       string          `json:"status"`
	Notes        string          `json:"notes"`
	EnrollmentID *string         `json:"enrollment_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Joined read-model fields.
	InvestorName string `json:"investor_name,omitempty"`
}

func NewLead(investorID, insuredName, leadDate, notes string) *Lead {
	if leadDate == "" {
		leadDate = time.Now().Format("2006-01-02")
	}
	return &Lead{
		ID:          uuid.New().String(),
		InvestorID:  investorID,
		InsuredName: insuredName,
		LeadDate:    leadDate,
		Status:      LeadStatusActive,
		Notes:       notes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// LeadFilter narrows List results. Zero values mean "no filter".
type LeadFilter struct {
	InvestorID string
	Status     string
}

type LeadRepositoryInterface interface {
	// Create persists the lead, snapshotting the owning investor's current
	// lead_cost into lead.Cost.
	Create(ctx context.Context, lead *Lead) error
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// Link sets enrollment_id and marks the lead converted, and sets the
	// enrollment's lead_id back-reference.
	Link(ctx context.Context, leadID, enrollmentID string) error
	// MarkConvertedWhereEnrolled is the reconcile step that flips every
	// still-unlinked lead with a same-name enrollment to converted. Returns
	// the number of leads updated.
	MarkConvertedWhereEnrolled(ctx context.Context) (int64, error)
	TotalCost(ctx context.Context, investorID string) (decimal.Decimal, error)
}
