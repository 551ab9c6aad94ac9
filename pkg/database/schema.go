package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the clinic schema. Every statement is idempotent so
// it is safe to run on each startup.
func (db *DB) CreateSchema(ctx context.Context) error {
	log := db.logger.WithComponent("database")
	log.Info("Creating database schema...")

	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`); err != nil {
		return fmt.Errorf("failed to create extensions: %w", err)
	}

	// order matters for foreign keys
	tables := []string{
		createUsersTable,
		createRolesTable,
		createUserRolesTable,
		createDepartmentsTable,
		createStudentsTable,
		createDoctorsTable,
		createAdminsTable,
		createAppointmentsTable,
		createNotificationsTable,
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		createUsersIndexes,
		createAppointmentsIndexes,
		createNotificationsIndexes,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	log.Info("Database schema created successfully")
	return nil
}

const (
	createUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) NOT NULL,
			password_hash TEXT NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			phone_number VARCHAR(20),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			refresh_token TEXT,
			refresh_token_expiry_time TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			CONSTRAINT users_email_key UNIQUE (email)
		);`

	createRolesTable = `
		CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(50) NOT NULL,
			description VARCHAR(200) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT roles_name_key UNIQUE (name)
		);`

	createUserRolesTable = `
		CREATE TABLE IF NOT EXISTS user_roles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT user_roles_user_id_role_id_key UNIQUE (user_id, role_id)
		);`

	createDepartmentsTable = `
		CREATE TABLE IF NOT EXISTS departments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			description VARCHAR(500),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT departments_name_key UNIQUE (name)
		);`

	createStudentsTable = `
		CREATE TABLE IF NOT EXISTS students (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			matric_number VARCHAR(50) NOT NULL,
			date_of_birth DATE NOT NULL,
			gender VARCHAR(10) NOT NULL,
			address TEXT,
			faculty VARCHAR(100),
			department VARCHAR(100),
			year_of_study INTEGER NOT NULL DEFAULT 0,
			blood_group VARCHAR(5),
			genotype VARCHAR(5),
			allergies TEXT,
			emergency_contact_name VARCHAR(200),
			emergency_contact_phone VARCHAR(20),
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			CONSTRAINT students_matric_number_key UNIQUE (matric_number),
			CONSTRAINT students_user_id_key UNIQUE (user_id)
		);`

	createDoctorsTable = `
		CREATE TABLE IF NOT EXISTS doctors (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			department_id UUID NOT NULL REFERENCES departments(id),
			specialization VARCHAR(200) NOT NULL,
			license_number VARCHAR(50) NOT NULL,
			qualifications TEXT,
			years_of_experience INTEGER NOT NULL DEFAULT 0,
			rating NUMERIC(3,2) NOT NULL DEFAULT 0,
			total_reviews INTEGER NOT NULL DEFAULT 0,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			CONSTRAINT doctors_license_number_key UNIQUE (license_number),
			CONSTRAINT doctors_user_id_key UNIQUE (user_id)
		);`

	createAdminsTable = `
		CREATE TABLE IF NOT EXISTS admins (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT admins_user_id_key UNIQUE (user_id)
		);`

	createAppointmentsTable = `
		CREATE TABLE IF NOT EXISTS appointments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id UUID NOT NULL REFERENCES students(id),
			doctor_id UUID NOT NULL REFERENCES doctors(id),
			appointment_date TIMESTAMPTZ NOT NULL,
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'Pending',
			reason_for_visit TEXT NOT NULL,
			cancellation_reason TEXT,
			rejection_reason TEXT,
			notes TEXT,
			completed_at TIMESTAMPTZ,
			cancelled_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			CONSTRAINT appointments_status_check CHECK (status IN ('Pending', 'Confirmed', 'Completed', 'Cancelled', 'Rejected'))
		);`

	createNotificationsTable = `
		CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title VARCHAR(200) NOT NULL,
			message TEXT NOT NULL,
			type VARCHAR(50) NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			read_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`
)

const (
	createUsersIndexes = `
		CREATE INDEX IF NOT EXISTS idx_users_is_deleted ON users(is_deleted);`

	createAppointmentsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_appointments_student_id ON appointments(student_id);
		CREATE INDEX IF NOT EXISTS idx_appointments_doctor_id ON appointments(doctor_id);
		CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(appointment_date);
		CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments(status);`

	createNotificationsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);
		CREATE INDEX IF NOT EXISTS idx_notifications_is_read ON notifications(is_read);`
)
