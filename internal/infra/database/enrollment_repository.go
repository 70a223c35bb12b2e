package database

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/calebrws/investor-portal/internal/entity"
)

type EnrollmentRepository struct {
	DB *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, insured_name, enrollment_date, labor_cost, lead_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.DB.ExecContext(ctx, query,
		enrollment.ID,
		enrollment.InsuredName,
		enrollment.EnrollmentDate,
		enrollment.LaborCost,
		enrollment.LeadID,
		enrollment.Notes,
		enrollment.CreatedAt,
		enrollment.UpdatedAt,
	)
	return err
}

const enrollmentColumns = `
	e.id, e.insured_name, e.enrollment_date, e.labor_cost, e.lead_id,
	e.notes, e.created_at, e.updated_at, i.id, i.name
`

func (r *EnrollmentRepository) List(ctx context.Context, limit, offset int) ([]*entity.Enrollment, error) {
	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments e
		LEFT JOIN leads l ON e.lead_id = l.id
		LEFT JOIN investors i ON l.investor_id = i.id
		ORDER BY e.enrollment_date DESC, e.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEnrollments(rows)
}

func (r *EnrollmentRepository) ListByInvestor(ctx context.Context, investorID string) ([]*entity.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments e
		JOIN leads l ON e.lead_id = l.id
		JOIN investors i ON l.investor_id = i.id
		WHERE l.investor_id = $1
		ORDER BY e.enrollment_date DESC, e.created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, investorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEnrollments(rows)
}

func scanEnrollments(rows *sql.Rows) ([]*entity.Enrollment, error) {
	var enrollments []*entity.Enrollment
	for rows.Next() {
		var e entity.Enrollment
		err := rows.Scan(&e.ID, &e.InsuredName, &e.EnrollmentDate, &e.LaborCost,
			&e.LeadID, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
			&e.InvestorID, &e.InvestorName)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}

func (r *EnrollmentRepository) AdoptUnlinkedLeads(ctx context.Context) (int64, error) {
	query := `
		UPDATE enrollments e
		SET lead_id = (
			SELECT l.id FROM leads l
			WHERE l.insured_name = e.insured_name
			  AND l.enrollment_id IS NULL
			ORDER BY l.created_at
			LIMIT 1
		),
		    updated_at = NOW()
		WHERE e.lead_id IS NULL
		  AND EXISTS (
			SELECT 1 FROM leads l
			WHERE l.insured_name = e.insured_name
			  AND l.enrollment_id IS NULL
		  )
	`

	res, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *EnrollmentRepository) TotalLaborCost(ctx context.Context, investorID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(e.labor_cost), 0) FROM enrollments e`
	args := []any{}
	if investorID != "" {
		query += `
			JOIN leads l ON e.lead_id = l.id
			WHERE l.investor_id = $1`
		args = append(args, investorID)
	}

	var total decimal.Decimal
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}
