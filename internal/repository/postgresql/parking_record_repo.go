package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/repository"
)

type pgParkingRecordRepository struct {
	db *sql.DB
}

func NewPgParkingRecordRepository(db *sql.DB) repository.ParkingRecordRepository {
	return &pgParkingRecordRepository{db: db}
}

// Open claims the slot and inserts the record inside one transaction, so the
// occupied flag and the open-record set cannot disagree. The guarded UPDATE
// doubles as the double-booking check: a concurrent caller that lost the race
// sees zero affected rows.
func (r *pgParkingRecordRepository) Open(ctx context.Context, vehicleID, slotID int, entryTime time.Time) (*domain.ParkingRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.Open begin: %w", err)
	}
	defer tx.Rollback()

	var alreadyParked bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parking_records WHERE vehicle_id = $1 AND exit_time IS NULL)`,
		vehicleID,
	).Scan(&alreadyParked)
	if err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.Open check vehicle: %w", err)
	}
	if alreadyParked {
		return nil, fmt.Errorf("%w: vehicle %d", repository.ErrVehicleAlreadyParked, vehicleID)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE parking_slots SET is_occupied = TRUE WHERE id = $1 AND is_occupied = FALSE`,
		slotID,
	)
	if err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.Open claim slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.Open rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM parking_slots WHERE id = $1)`, slotID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("ParkingRecordRepository.Open check slot: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: parking slot %d", repository.ErrNotFound, slotID)
		}
		return nil, fmt.Errorf("%w: slot %d", repository.ErrSlotUnavailable, slotID)
	}

	record := &domain.ParkingRecord{VehicleID: vehicleID, SlotID: slotID}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO parking_records (vehicle_id, slot_id, entry_time) VALUES ($1, $2, $3)
		  RETURNING id, entry_time`,
		vehicleID, slotID, entryTime,
	).Scan(&record.ID, &record.EntryTime)
	if err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.Open insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.Open commit: %w", err)
	}
	record.EntryTime = record.EntryTime.In(time.UTC)
	return record, nil
}

// Close stamps exit time and fee and frees the slot in one transaction. The
// exit_time IS NULL guard makes a second close fail instead of overwriting.
func (r *pgParkingRecordRepository) Close(ctx context.Context, id int, exitTime time.Time, totalFee float64) (*domain.ParkingRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.Close begin: %w", err)
	}
	defer tx.Rollback()

	record := &domain.ParkingRecord{}
	err = tx.QueryRowContext(ctx,
		`UPDATE parking_records SET exit_time = $1, total_fee = $2
		  WHERE id = $3 AND exit_time IS NULL
		  RETURNING id, vehicle_id, slot_id, entry_time, exit_time, total_fee`,
		exitTime, totalFee, id,
	).Scan(&record.ID, &record.VehicleID, &record.SlotID, &record.EntryTime, &record.ExitTime, &record.TotalFee)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM parking_records WHERE id = $1)`, id,
			).Scan(&exists); err != nil {
				return nil, fmt.Errorf("ParkingRecordRepository.Close check record: %w", err)
			}
			if exists {
				return nil, fmt.Errorf("%w: record %d", repository.ErrAlreadyClosed, id)
			}
			return nil, fmt.Errorf("%w: parking record %d", repository.ErrNotFound, id)
		}
		return nil, fmt.Errorf("ParkingRecordRepository.Close update: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE parking_slots SET is_occupied = FALSE WHERE id = $1`, record.SlotID,
	); err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.Close free slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.Close commit: %w", err)
	}
	record.EntryTime = record.EntryTime.In(time.UTC)
	if record.ExitTime.Valid {
		record.ExitTime.Time = record.ExitTime.Time.In(time.UTC)
	}
	return record, nil
}

const recordDetailSelect = `SELECT pr.id, pr.vehicle_id, pr.slot_id, pr.entry_time, pr.exit_time, pr.total_fee,
	       v.plate_number, v.vehicle_type, ps.slot_type
	  FROM parking_records pr
	  JOIN vehicles v ON pr.vehicle_id = v.id
	  JOIN parking_slots ps ON pr.slot_id = ps.id`

func (r *pgParkingRecordRepository) FindDetailByID(ctx context.Context, id int) (*domain.ParkingRecordDetail, error) {
	detail := &domain.ParkingRecordDetail{}
	err := r.db.QueryRowContext(ctx, recordDetailSelect+` WHERE pr.id = $1`, id).Scan(
		&detail.ID, &detail.VehicleID, &detail.SlotID, &detail.EntryTime, &detail.ExitTime, &detail.TotalFee,
		&detail.PlateNumber, &detail.VehicleType, &detail.SlotType,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingRecordRepository.FindDetailByID: %w", err)
	}
	normalizeDetail(detail)
	return detail, nil
}

func (r *pgParkingRecordRepository) FindOpen(ctx context.Context) ([]domain.ParkingRecordDetail, error) {
	return r.findDetails(ctx, recordDetailSelect+` WHERE pr.exit_time IS NULL ORDER BY pr.entry_time`)
}

func (r *pgParkingRecordRepository) FindAll(ctx context.Context) ([]domain.ParkingRecordDetail, error) {
	return r.findDetails(ctx, recordDetailSelect+` ORDER BY pr.entry_time`)
}

func (r *pgParkingRecordRepository) findDetails(ctx context.Context, query string) ([]domain.ParkingRecordDetail, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.findDetails: %w", err)
	}
	defer rows.Close()

	var details []domain.ParkingRecordDetail
	for rows.Next() {
		var d domain.ParkingRecordDetail
		if err := rows.Scan(
			&d.ID, &d.VehicleID, &d.SlotID, &d.EntryTime, &d.ExitTime, &d.TotalFee,
			&d.PlateNumber, &d.VehicleType, &d.SlotType,
		); err != nil {
			return nil, fmt.Errorf("ParkingRecordRepository.findDetails scan: %w", err)
		}
		normalizeDetail(&d)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.findDetails rows: %w", err)
	}
	return details, nil
}

func normalizeDetail(d *domain.ParkingRecordDetail) {
	d.EntryTime = d.EntryTime.In(time.UTC)
	if d.ExitTime.Valid {
		d.ExitTime.Time = d.ExitTime.Time.In(time.UTC)
	}
}
