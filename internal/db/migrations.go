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
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'booking_status') THEN
			CREATE TYPE booking_status AS ENUM ('created', 'scheduled', 'collected', 'sanitised', 'graded', 'completed', 'cancelled');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'job_status') THEN
			CREATE TYPE job_status AS ENUM ('booked', 'routed', 'en_route', 'arrived', 'collected', 'warehouse', 'sanitised', 'graded', 'completed', 'cancelled');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('admin', 'client', 'reseller', 'driver');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tenant_id UUID NOT NULL,
		reseller_id UUID,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_clients_tenant_id ON clients (tenant_id);`,
	`CREATE INDEX IF NOT EXISTS idx_clients_reseller_id ON clients (reseller_id);`,
	`CREATE INDEX IF NOT EXISTS idx_clients_email ON clients (email);`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tenant_id UUID NOT NULL,
		role user_role NOT NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email);`,
	`CREATE INDEX IF NOT EXISTS idx_users_tenant_id ON users (tenant_id);`,
	`CREATE TABLE IF NOT EXISTS invites (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tenant_id UUID NOT NULL,
		email VARCHAR(255) NOT NULL,
		role user_role NOT NULL,
		token VARCHAR(64) NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		accepted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invites_token ON invites (token);`,
	`CREATE INDEX IF NOT EXISTS idx_invites_tenant_id ON invites (tenant_id);`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tenant_id UUID NOT NULL,
		client_id UUID REFERENCES clients(id) ON DELETE SET NULL,
		created_by UUID NOT NULL,
		status booking_status NOT NULL DEFAULT 'created',
		job_id UUID,
		scheduled_date TIMESTAMPTZ,
		collected_at TIMESTAMPTZ,
		sanitised_at TIMESTAMPTZ,
		graded_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		estimated_co2e NUMERIC(12,3) NOT NULL DEFAULT 0,
		estimated_buyback NUMERIC(12,2) NOT NULL DEFAULT 0,
		charity_percent INTEGER NOT NULL DEFAULT 0,
		site_address TEXT,
		contact_name VARCHAR(255),
		contact_phone VARCHAR(32),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_tenant_id ON bookings (tenant_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_client_id ON bookings (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_created_by ON bookings (created_by);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings (status);`,
	`CREATE TABLE IF NOT EXISTS booking_assets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		category VARCHAR(64) NOT NULL,
		quantity INTEGER NOT NULL,
		make VARCHAR(128),
		model VARCHAR(128),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_booking_assets_booking_id ON booking_assets (booking_id);`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		erp_job_number VARCHAR(32) NOT NULL,
		booking_id UUID REFERENCES bookings(id) ON DELETE SET NULL,
		tenant_id UUID NOT NULL,
		status job_status NOT NULL DEFAULT 'booked',
		driver_id UUID,
		scheduled_date TIMESTAMPTZ,
		completed_date TIMESTAMPTZ,
		co2e_saved NUMERIC(12,3) NOT NULL DEFAULT 0,
		travel_emissions NUMERIC(12,3) NOT NULL DEFAULT 0,
		buyback_value NUMERIC(12,2) NOT NULL DEFAULT 0,
		charity_percent INTEGER NOT NULL DEFAULT 0,
		site_address TEXT,
		contact_name VARCHAR(255),
		contact_phone VARCHAR(32),
		loading_bay TEXT,
		security_notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_erp_job_number ON jobs (erp_job_number);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_booking_id ON jobs (booking_id);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_tenant_id ON jobs (tenant_id);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_driver_id ON jobs (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);`,
	`CREATE TABLE IF NOT EXISTS job_assets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		category VARCHAR(64) NOT NULL,
		quantity INTEGER NOT NULL,
		make VARCHAR(128),
		model VARCHAR(128),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_job_assets_job_id ON job_assets (job_id);`,
	`CREATE TABLE IF NOT EXISTS booking_status_history (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		status booking_status NOT NULL,
		changed_by UUID,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_booking_status_history_booking_id ON booking_status_history (booking_id);`,
	`CREATE TABLE IF NOT EXISTS job_status_history (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		status job_status NOT NULL,
		changed_by UUID,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_job_status_history_job_id ON job_status_history (job_id);`,
	`CREATE TABLE IF NOT EXISTS evidence (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		status job_status NOT NULL,
		photos TEXT[] NOT NULL DEFAULT '{}',
		signature TEXT,
		seal_numbers TEXT[] NOT NULL DEFAULT '{}',
		notes TEXT,
		uploaded_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	// one evidence record per job status milestone, ever
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_evidence_job_id_status ON evidence (job_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_evidence_job_id ON evidence (job_id);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL,
		tenant_id UUID NOT NULL,
		kind VARCHAR(40) NOT NULL,
		message TEXT NOT NULL,
		read_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_bookings_updated_at') THEN
			CREATE TRIGGER trg_bookings_updated_at
				BEFORE UPDATE ON bookings
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_jobs_updated_at') THEN
			CREATE TRIGGER trg_jobs_updated_at
				BEFORE UPDATE ON jobs
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_clients_updated_at') THEN
			CREATE TRIGGER trg_clients_updated_at
				BEFORE UPDATE ON clients
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_users_updated_at') THEN
			CREATE TRIGGER trg_users_updated_at
				BEFORE UPDATE ON users
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
