package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/calebrws/investor-portal/internal/entity"
)

type InvestorRepository struct {
	DB *sql.DB
}

func NewInvestorRepository(db *sql.DB) *InvestorRepository {
	return &InvestorRepository{DB: db}
}

func (r *InvestorRepository) Create(ctx context.Context, investor *entity.Investor) error {
	query := `
		INSERT INTO investors (id, name, lead_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		investor.ID,
		investor.Name,
		investor.LeadCost,
		investor.CreatedAt,
		investor.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return entity.ErrInvestorExists
		}
		return err
	}
	return nil
}

func (r *InvestorRepository) FindByName(ctx context.Context, name string) (*entity.Investor, error) {
	query := `
		SELECT id, name, lead_cost, created_at, updated_at
		FROM investors
		WHERE LOWER(name) = LOWER($1)
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, name))
}

func (r *InvestorRepository) FindByID(ctx context.Context, id string) (*entity.Investor, error) {
	query := `
		SELECT id, name, lead_cost, created_at, updated_at
		FROM investors
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *InvestorRepository) scanOne(row *sql.Row) (*entity.Investor, error) {
	var inv entity.Investor
	err := row.Scan(&inv.ID, &inv.Name, &inv.LeadCost, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrInvestorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvestorRepository) List(ctx context.Context) ([]*entity.Investor, error) {
	query := `
		SELECT id, name, lead_cost, created_at, updated_at
		FROM investors
		ORDER BY name
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var investors []*entity.Investor
	for rows.Next() {
		var inv entity.Investor
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.LeadCost, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		investors = append(investors, &inv)
	}
	return investors, rows.Err()
}

// Update applies name and rate edits. Nil means "leave unchanged". Existing
// leads keep their snapshotted cost regardless of rate changes.
func (r *InvestorRepository) Update(ctx context.Context, id string, name *string, leadCost *decimal.Decimal) error {
	query := `
		UPDATE investors
		SET name = COALESCE($2, name),
		    lead_cost = COALESCE($3, lead_cost),
		    updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query, id, name, leadCost)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrInvestorNotFound
	}
	return nil
}

func (r *InvestorRepository) Contributions(ctx context.Context, investorID string) ([]*entity.InvestorContribution, error) {
	query := `
		SELECT i.id, i.name, i.lead_cost,
		       COUNT(l.id) AS total_leads,
		       COALESCE(SUM(l.cost), 0) AS total_contributed,
		       COUNT(CASE WHEN l.status = 'converted' THEN 1 END) AS converted_leads,
		       COUNT(CASE WHEN l.status = 'active' THEN 1 END) AS active_leads
		FROM investors i
		LEFT JOIN leads l ON i.id = l.investor_id
	`
	args := []any{}
	if investorID != "" {
		query += ` WHERE i.id = $1`
		args = append(args, investorID)
	}
	query += ` GROUP BY i.id, i.name, i.lead_cost ORDER BY total_contributed DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributions []*entity.InvestorContribution
	for rows.Next() {
		var c entity.InvestorContribution
		err := rows.Scan(&c.InvestorID, &c.InvestorName, &c.LeadCost,
			&c.TotalLeads, &c.TotalContributed, &c.ConvertedLeads, &c.ActiveLeads)
		if err != nil {
			return nil, err
		}
		if c.TotalLeads > 0 {
			c.ConversionRate = float64(c.ConvertedLeads) / float64(c.TotalLeads) * 100
		}
		contributions = append(contributions, &c)
	}
	return contributions, rows.Err()
}
