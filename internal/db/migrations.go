package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'billing_status') THEN
			CREATE TYPE billing_status AS ENUM ('draft', 'confirmed', 'locked', 'cancelled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('active', 'expired', 'terminated', 'period_undefined');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		company_type VARCHAR(16) NOT NULL,
		warehouse_code VARCHAR(32),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_companies_code ON companies (code);`,
	`CREATE TABLE IF NOT EXISTS company_rules (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL REFERENCES companies(id),
		requires_po BOOLEAN NOT NULL DEFAULT FALSE,
		requires_attachment BOOLEAN NOT NULL DEFAULT FALSE,
		attachment_note TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS code_mappings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(32) NOT NULL DEFAULT 'warehouse',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL REFERENCES companies(id),
		item_name VARCHAR(255) NOT NULL,
		contract_start DATE,
		contract_end DATE,
		monthly_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		billing_cycle VARCHAR(16) NOT NULL DEFAULT 'monthly',
		billing_timing TEXT,
		auto_renewal BOOLEAN NOT NULL DEFAULT TRUE,
		renewal_period_months INT NOT NULL DEFAULT 12,
		reverse_billing BOOLEAN NOT NULL DEFAULT FALSE,
		default_outsourcing_company_id UUID REFERENCES companies(id),
		default_outsourcing_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		outsourcing_amount_zero BOOLEAN NOT NULL DEFAULT FALSE,
		status contract_status NOT NULL DEFAULT 'active',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_company_id ON contracts (company_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE TABLE IF NOT EXISTS contract_history (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		change_type VARCHAR(16) NOT NULL,
		effective_date DATE NOT NULL,
		old_amount NUMERIC(18,2),
		new_amount NUMERIC(18,2),
		reason TEXT,
		created_by VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_history_lookup ON contract_history (contract_id, change_type, effective_date);`,
	`CREATE TABLE IF NOT EXISTS monthly_billings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		target_month DATE NOT NULL,
		cover_months INT NOT NULL DEFAULT 1,
		calculated_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		override_amount NUMERIC(18,2),
		final_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		vat_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		outsourcing_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		outsourcing_defaulted BOOLEAN NOT NULL DEFAULT FALSE,
		profit NUMERIC(18,2) NOT NULL DEFAULT 0,
		suggested_date DATE,
		sales_date DATE,
		request_date DATE,
		status billing_status NOT NULL DEFAULT 'draft',
		warnings JSONB,
		has_warnings BOOLEAN NOT NULL DEFAULT FALSE,
		provenance JSONB,
		memo TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		locked_at TIMESTAMPTZ,
		locked_by VARCHAR(255)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_billing_contract_month
		ON monthly_billings (contract_id, target_month)
		WHERE status <> 'cancelled';`,
	`CREATE INDEX IF NOT EXISTS idx_billings_target_month ON monthly_billings (target_month);`,
	`CREATE INDEX IF NOT EXISTS idx_billings_status ON monthly_billings (status);`,
	`CREATE TABLE IF NOT EXISTS outsourcing_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		billing_id UUID REFERENCES monthly_billings(id),
		company_id UUID REFERENCES companies(id),
		target_month DATE NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		source_note TEXT,
		purchase_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_outsourcing_entries_lookup ON outsourcing_entries (contract_id, target_month);`,
	`CREATE TABLE IF NOT EXISTS holidays (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		holiday_date DATE NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
