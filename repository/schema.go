package repository

import "database/sql"

// Migrate creates the tables the realtime core reads and writes. Statements
// are idempotent so the server can bootstrap a fresh database on startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		user_id TEXT PRIMARY KEY REFERENCES users(id),
		specialties TEXT,
		is_available BOOLEAN NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES users(id),
		doctor_id TEXT NOT NULL REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		chat_id TEXT NOT NULL REFERENCES chats(id),
		sender_id TEXT NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		attachments TEXT[],
		message_type TEXT NOT NULL DEFAULT 'text',
		read_flag BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		user_id TEXT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS taxis (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL REFERENCES users(id),
		vehicle_type TEXT NOT NULL,
		plate_number TEXT NOT NULL,
		current_lat DOUBLE PRECISION,
		current_lng DOUBLE PRECISION,
		is_available BOOLEAN NOT NULL DEFAULT true,
		last_location_update TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		passenger_id TEXT NOT NULL REFERENCES users(id),
		taxi_id TEXT NOT NULL REFERENCES taxis(id),
		pickup_lat DOUBLE PRECISION NOT NULL,
		pickup_lng DOUBLE PRECISION NOT NULL,
		destination_lat DOUBLE PRECISION NOT NULL,
		destination_lng DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		estimated_arrival TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

func Migrate(db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
