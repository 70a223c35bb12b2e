package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so the call is safe on every startup.
//
// leads.enrollment_id and enrollments.lead_id cross-reference each other;
// only the enrollments side carries a declared FK to avoid a circular
// constraint at creation time.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS investors (
		id UUID PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		lead_cost NUMERIC(12,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id UUID PRIMARY KEY,
		investor_id UUID NOT NULL REFERENCES investors(id),
		insured_name TEXT NOT NULL,
		lead_date TEXT NOT NULL,
		cost NUMERIC(12,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		notes TEXT NOT NULL DEFAULT '',
		enrollment_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS enrollments (
		id UUID PRIMARY KEY,
		insured_name TEXT NOT NULL,
		enrollment_date TEXT NOT NULL,
		labor_cost NUMERIC(12,2) NOT NULL DEFAULT 15.00,
		lead_id UUID REFERENCES leads(id),
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		investor_id UUID REFERENCES investors(id),
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS upload_history (
		id UUID PRIMARY KEY,
		file_name TEXT NOT NULL,
		file_type TEXT NOT NULL,
		records_added INTEGER NOT NULL DEFAULT 0,
		upload_status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS data_chunks (
		id UUID PRIMARY KEY,
		investor_id UUID NOT NULL REFERENCES investors(id),
		data_type TEXT NOT NULL,
		chunk_text TEXT NOT NULL,
		chunk_hash TEXT UNIQUE NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_history (
		id UUID PRIMARY KEY,
		investor_id UUID NOT NULL REFERENCES investors(id),
		user_message TEXT NOT NULL,
		bot_response TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_investor ON leads (investor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_insured_name ON leads (insured_name)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_insured_name ON enrollments (insured_name)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
