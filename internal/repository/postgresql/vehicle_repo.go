package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/repository"
)

const pgUniqueViolation = "23505"

type pgVehicleRepository struct {
	db *sql.DB
}

func NewPgVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &pgVehicleRepository{db: db}
}

func (r *pgVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	query := `INSERT INTO vehicles (plate_number, vehicle_type, owner_name, phone_number, user_id, created_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`

	var userIDVal sql.NullInt64
	if vehicle.UserID.Valid {
		userIDVal = sql.NullInt64{Int64: vehicle.UserID.Int64, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		vehicle.PlateNumber, vehicle.VehicleType, vehicle.OwnerName, vehicle.PhoneNumber, userIDVal,
	).Scan(&vehicle.ID, &vehicle.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: plate number '%s' is already registered", repository.ErrDuplicateEntry, vehicle.PlateNumber)
		}
		return nil, fmt.Errorf("VehicleRepository.Create: %w", err)
	}
	vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) FindByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{}
	query := `SELECT id, plate_number, vehicle_type, owner_name, phone_number, user_id, created_at
	           FROM vehicles WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID, &vehicle.PlateNumber, &vehicle.VehicleType,
		&vehicle.OwnerName, &vehicle.PhoneNumber, &vehicle.UserID, &vehicle.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByID: %w", err)
	}
	vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) FindAll(ctx context.Context) ([]domain.Vehicle, error) {
	query := `SELECT id, plate_number, vehicle_type, owner_name, phone_number, user_id, created_at
	           FROM vehicles ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.PlateNumber, &v.VehicleType, &v.OwnerName, &v.PhoneNumber, &v.UserID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("VehicleRepository.FindAll scan: %w", err)
		}
		v.CreatedAt = v.CreatedAt.In(time.UTC)
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindAll rows: %w", err)
	}
	return vehicles, nil
}
