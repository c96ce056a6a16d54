package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/config"
)

func NewDB(cfg *config.Config) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSslMode)

	db, err := sql.Open("pgx", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema when missing. The users/vehicles/slots/records
// layout mirrors the seeded relational model; slots are never created or
// destroyed after seeding.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            SERIAL PRIMARY KEY,
			username      TEXT UNIQUE NOT NULL,
			password_hash TEXT,
			first_name    TEXT NOT NULL,
			last_name     TEXT NOT NULL,
			email         TEXT UNIQUE NOT NULL,
			provider      TEXT NOT NULL DEFAULT 'local',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id           SERIAL PRIMARY KEY,
			plate_number TEXT UNIQUE NOT NULL,
			vehicle_type TEXT NOT NULL,
			owner_name   TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			user_id      INTEGER REFERENCES users(id),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS parking_slots (
			id          SERIAL PRIMARY KEY,
			slot_type   TEXT NOT NULL,
			is_occupied BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS parking_records (
			id         SERIAL PRIMARY KEY,
			vehicle_id INTEGER NOT NULL REFERENCES vehicles(id),
			slot_id    INTEGER NOT NULL REFERENCES parking_slots(id),
			entry_time TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			exit_time  TIMESTAMPTZ,
			total_fee  DOUBLE PRECISION
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}
