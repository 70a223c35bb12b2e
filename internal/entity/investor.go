package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvestorNotFound = errors.New("investor not found")
	ErrInvestorExists   = errors.New("investor already exists")
)

// Investor is a stakeholder whose contributed leads are tracked for cost/ROI
// reporting. LeadCost is the rate snapshotted onto every lead at creation.
type Investor struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	LeadCost  decimal.Decimal `json:"lead_cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewInvestor(name string, leadCost decimal.Decimal) (*Investor, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if leadCost.IsNegative() {
		return nil, errors.New("lead_cost must not be negative")
	}

	return &Investor{
		ID:        uuid.New().String(),
		Name:      name,
		LeadCost:  leadCost,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// InvestorContribution is the per-investor aggregate shown on dashboards.
type InvestorContribution struct {
	InvestorID       string          `json:"investor_id"`
	InvestorName     string          `json:"investor_name"`
	LeadCost         decimal.Decimal `json:"lead_cost"`
	TotalLeads       int             `json:"total_leads"`
	TotalContributed decimal.Decimal `json:"total_contributed"`
	ConvertedLeads   int             `json:"converted_leads"`
	ActiveLeads      int             `json:"active_leads"`
	ConversionRate   float64         `json:"conversion_rate"`
}

type InvestorRepositoryInterface interface {
	Create(ctx context.Context, investor *Investor) error
	// FindByName resolves case-insensitively; returns ErrInvestorNotFound
	// when no investor carries the name.
	FindByName(ctx context.Context, name string) (*Investor, error)
	FindByID(ctx context.Context, id string) (*Investor, error)
	List(ctx context.Context) ([]*Investor, error)
	Update(ctx context.Context, id string, name *string, leadCost *decimal.Decimal) error
	// Contributions aggregates lead totals per investor. Empty investorID
	// returns all investors.
	Contributions(ctx context.Context, investorID string) ([]*InvestorContribution, error)
}
