package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/calebrws/investor-portal/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	var cost decimal.Decimal
	err := r.DB.QueryRowContext(ctx,
		`SELECT lead_cost FROM investors WHERE id = $1`, lead.InvestorID,
	).Scan(&cost)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrInvestorNotFound
	}
	if err != nil {
		return err
	}
	lead.Cost = cost

	query := `
		INSERT INTO leads (id, investor_id, insured_name, lead_date, cost, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.InvestorID,
		lead.InsuredName,
		lead.LeadDate,
		lead.Cost,
		lead.Status,
		lead.Notes,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	query := `
		SELECT l.id, l.investor_id, l.insured_name, l.lead_date, l.cost, l.status,
		       l.notes, l.enrollment_id, l.created_at, l.updated_at, i.name
		FROM leads l
		JOIN investors i ON l.investor_id = i.id
	`
	var (
		conditions []string
		args       []any
	)
	if filter.InvestorID != "" {
		args = append(args, filter.InvestorID)
		conditions = append(conditions, fmt.Sprintf("l.investor_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY l.lead_date DESC, l.created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		var lead entity.Lead
		err := rows.Scan(&lead.ID, &lead.InvestorID, &lead.InsuredName, &lead.LeadDate,
			&lead.Cost, &lead.Status, &lead.Notes, &lead.EnrollmentID,
			&lead.CreatedAt, &lead.UpdatedAt, &lead.InvestorName)
		if err != nil {
			return nil, err
		}
		leads = append(leads, &lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New("lead not found")
	}
	return nil
}

func (r *LeadRepository) Link(ctx context.Context, leadID, enrollmentID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE leads
		SET enrollment_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`, leadID, enrollmentID, entity.LeadStatusConverted)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE enrollments
		SET lead_id = $2, updated_at = NOW()
		WHERE id = $1
	`, enrollmentID, leadID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *LeadRepository) MarkConvertedWhereEnrolled(ctx context.Context) (int64, error) {
	query := `
		UPDATE leads l
		SET enrollment_id = (
			SELECT e.id FROM enrollments e
			WHERE e.insured_name = l.insured_name
			ORDER BY e.created_at
			LIMIT 1
		),
		    status = $1,
		    updated_at = NOW()
		WHERE l.enrollment_id IS NULL
		  AND EXISTS (
			SELECT 1 FROM enrollments e WHERE e.insured_name = l.insured_name
		  )
	`

	res, err := r.DB.ExecContext(ctx, query, entity.LeadStatusConverted)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *LeadRepository) TotalCost(ctx context.Context, investorID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(cost), 0) FROM leads`
	args := []any{}
	if investorID != "" {
		query += ` WHERE investor_id = $1`
		args = append(args, investorID)
	}

	var total decimal.Decimal
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}
