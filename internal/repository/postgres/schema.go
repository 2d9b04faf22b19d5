package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables and indexes when they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, prefix string) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Profiles + ` (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			full_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Companies + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL,
			name TEXT NOT NULL,
			logo_url TEXT,
			contact_details TEXT,
			color_scheme JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Templates + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			company_id UUID REFERENCES ` + tables.Companies + `(id) ON DELETE SET NULL,
			name TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			recipient_company TEXT NOT NULL DEFAULT '',
			template_data JSONB NOT NULL DEFAULT '{}'::jsonb,
			is_shared BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Transmittals + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			company_id UUID REFERENCES ` + tables.Companies + `(id) ON DELETE SET NULL,
			transmittal_number TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft'
				CHECK (status IN ('draft', 'sent', 'received', 'pending')),
			recipient_company TEXT NOT NULL DEFAULT '',
			project_name TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			project_details JSONB NOT NULL,
			items JSONB NOT NULL DEFAULT '[]'::jsonb,
			table_columns JSONB NOT NULL DEFAULT '[]'::jsonb,
			notes TEXT,
			follow_up_date TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.TransmittalHistory + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			transmittal_id UUID NOT NULL REFERENCES ` + tables.Transmittals + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			action TEXT NOT NULL,
			previous_status TEXT,
			new_status TEXT NOT NULL,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.TransmittalSequences + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			year INTEGER NOT NULL,
			current_sequence INTEGER NOT NULL DEFAULT 0 CHECK (current_sequence >= 0),
			user_code TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, year)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `transmittals_user_created ON ` + tables.Transmittals + `(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `transmittals_company ON ` + tables.Transmittals + `(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `history_transmittal ON ` + tables.TransmittalHistory + `(transmittal_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `templates_user ON ` + tables.Templates + `(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `companies_owner ON ` + tables.Companies + `(owner_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropAllTables drops every table, children first.
func DropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearUserData deletes every row owned by userID, keeping the schema.
func ClearUserData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, userID string) error {
	deletes := []string{
		"DELETE FROM " + tables.TransmittalHistory + " WHERE user_id = $1",
		"DELETE FROM " + tables.Transmittals + " WHERE user_id = $1",
		"DELETE FROM " + tables.Templates + " WHERE user_id = $1",
		"DELETE FROM " + tables.TransmittalSequences + " WHERE user_id = $1",
		"DELETE FROM " + tables.Companies + " WHERE owner_id = $1",
	}
	for _, stmt := range deletes {
		if _, err := pool.Exec(ctx, stmt, userID); err != nil {
			return fmt.Errorf("clear user data: %w", err)
		}
	}
	return nil
}
