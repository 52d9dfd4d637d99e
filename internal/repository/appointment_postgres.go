package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"turnoplus/internal/domain"
)

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) AppointmentRepository {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) Book(ctx context.Context, dto domain.CreateAppointmentDTO) (*domain.Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Compare-and-set claim: only succeeds while the block is still free.
	// Concurrent bookers of the same slot all run this update; exactly one
	// sees a row, the rest fall through to ErrBlockNotFound.
	claim := `
		UPDATE appointment_blocks b
		SET is_booked = TRUE
		FROM availability_windows w
		WHERE b.window_id = w.id
		  AND w.doctor_id = $1
		  AND b.start_at = $2
		  AND b.end_at = $3
		  AND b.is_booked = FALSE
		RETURNING b.id
	`

	var blockID int64
	err = tx.QueryRow(ctx, claim, dto.DoctorID, dto.StartAt, dto.EndAt).Scan(&blockID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBlockNotFound
		}
		return nil, fmt.Errorf("failed to claim appointment block: %w", err)
	}

	appointment := domain.Appointment{
		DoctorID:  dto.DoctorID,
		PatientID: dto.PatientID,
		BlockID:   blockID,
		StartAt:   dto.StartAt,
		EndAt:     dto.EndAt,
		Status:    domain.AppointmentStatusPending,
		Notes:     dto.Notes,
	}

	insert := `
		INSERT INTO appointments (doctor_id, patient_id, block_id, start_at, end_at, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx,
		insert,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.BlockID,
		appointment.StartAt,
		appointment.EndAt,
		appointment.Status,
		appointment.Notes,
	).Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &appointment, nil
}

const appointmentColumns = `
	a.id, a.doctor_id, a.patient_id, a.block_id, a.start_at, a.end_at,
	a.status, a.notes, a.created_at, a.updated_at,
	d.full_name, p.full_name
`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.BlockID,
		&a.StartAt,
		&a.EndAt,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.DoctorName,
		&a.PatientName,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN users d ON d.id = a.doctor_id
		JOIN users p ON p.id = a.patient_id
		WHERE a.id = $1
	`

	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return appointment, nil
}

func appointmentConditions(filter domain.AppointmentFilter) (string, []interface{}) {
	var conditions string
	var args []interface{}
	argPos := 1

	if filter.DoctorID != nil {
		conditions += fmt.Sprintf(" AND a.doctor_id = $%d", argPos)
		args = append(args, *filter.DoctorID)
		argPos++
	}

	if filter.PatientID != nil {
		conditions += fmt.Sprintf(" AND a.patient_id = $%d", argPos)
		args = append(args, *filter.PatientID)
		argPos++
	}

	if filter.Status != nil {
		conditions += fmt.Sprintf(" AND a.status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}

	if filter.ExcludeStatus != nil {
		conditions += fmt.Sprintf(" AND a.status != $%d", argPos)
		args = append(args, *filter.ExcludeStatus)
		argPos++
	}

	if filter.StartDate != nil {
		conditions += fmt.Sprintf(" AND a.start_at >= $%d", argPos)
		args = append(args, *filter.StartDate)
		argPos++
	}

	if filter.EndDate != nil {
		conditions += fmt.Sprintf(" AND a.start_at < $%d", argPos)
		args = append(args, *filter.EndDate)
		argPos++
	}

	return conditions, args
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN users d ON d.id = a.doctor_id
		JOIN users p ON p.id = a.patient_id
		WHERE 1=1
	`

	conditions, args := appointmentConditions(filter)
	query += conditions
	query += " ORDER BY a.start_at"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []domain.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment row: %w", err)
		}
		appointments = append(appointments, *appointment)
	}

	return appointments, nil
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	query := `SELECT COUNT(*) FROM appointments a WHERE 1=1`

	conditions, args := appointmentConditions(filter)
	query += conditions

	var total int
	err := r.db.QueryRow(ctx, query, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	return total, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id int64, from []domain.AppointmentStatus, to domain.AppointmentStatus, releaseBlock bool) (*domain.Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	statuses := make([]string, 0, len(from))
	for _, s := range from {
		statuses = append(statuses, string(s))
	}

	// Conditional transition: the row must still be in one of the expected
	// statuses, otherwise no row is updated and the caller maps the current
	// state to the right error.
	query := `
		UPDATE appointments
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
		RETURNING block_id
	`

	var blockID int64
	err = tx.QueryRow(ctx, query, id, to, statuses).Scan(&blockID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}

	if releaseBlock {
		_, err = tx.Exec(ctx, `
			UPDATE appointment_blocks SET is_booked = FALSE WHERE id = $1
		`, blockID)
		if err != nil {
			return nil, fmt.Errorf("failed to release appointment block: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *AppointmentRepo) CountInRange(ctx context.Context, from, to time.Time, excludeStatus domain.AppointmentStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE start_at >= $1 AND start_at < $2 AND status != $3
	`

	var total int
	err := r.db.QueryRow(ctx, query, from, to, excludeStatus).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments in range: %w", err)
	}

	return total, nil
}
