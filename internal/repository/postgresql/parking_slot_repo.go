package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/repository"
)

type pgParkingSlotRepository struct {
	db *sql.DB
}

func NewPgParkingSlotRepository(db *sql.DB) repository.ParkingSlotRepository {
	return &pgParkingSlotRepository{db: db}
}

func (r *pgParkingSlotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error) {
	slot := &domain.ParkingSlot{}
	query := `SELECT id, slot_type, is_occupied FROM parking_slots WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(&slot.ID, &slot.SlotType, &slot.IsOccupied)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSlotRepository.FindByID: %w", err)
	}
	return slot, nil
}

func (r *pgParkingSlotRepository) FindAvailable(ctx context.Context, slotType string) ([]domain.ParkingSlot, error) {
	query := `SELECT id, slot_type, is_occupied FROM parking_slots WHERE is_occupied = FALSE`
	args := []any{}
	if slotType != "" {
		query += ` AND slot_type = $1`
		args = append(args, slotType)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.FindAvailable: %w", err)
	}
	defer rows.Close()

	var slots []domain.ParkingSlot
	for rows.Next() {
		var s domain.ParkingSlot
		if err := rows.Scan(&s.ID, &s.SlotType, &s.IsOccupied); err != nil {
			return nil, fmt.Errorf("ParkingSlotRepository.FindAvailable scan: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.FindAvailable rows: %w", err)
	}
	return slots, nil
}

// SetOccupied writes the flag unconditionally, so repeating a set is a no-op
// rather than an error.
func (r *pgParkingSlotRepository) SetOccupied(ctx context.Context, id int, occupied bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE parking_slots SET is_occupied = $1 WHERE id = $2`, occupied, id)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.SetOccupied: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.SetOccupied rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingSlotRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_slots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ParkingSlotRepository.Count: %w", err)
	}
	return count, nil
}

func (r *pgParkingSlotRepository) Seed(ctx context.Context, slotTypes []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.Seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, slotType := range slotTypes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO parking_slots (slot_type) VALUES ($1)`, slotType); err != nil {
			return fmt.Errorf("ParkingSlotRepository.Seed insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ParkingSlotRepository.Seed commit: %w", err)
	}
	return nil
}
