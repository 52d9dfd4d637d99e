package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"turnoplus/internal/domain"
)

type AvailabilityRepo struct {
	db *pgxpool.Pool
}

func NewAvailabilityRepository(db *pgxpool.Pool) AvailabilityRepository {
	return &AvailabilityRepo{db: db}
}

func (r *AvailabilityRepo) CreateWindow(ctx context.Context, doctorID int64, startAt, endAt time.Time, blocks []domain.AppointmentBlock) (*domain.AvailabilityWindow, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	window := domain.AvailabilityWindow{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    endAt,
	}

	query := `
		INSERT INTO availability_windows (doctor_id, start_at, end_at, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query, doctorID, startAt, endAt).Scan(
		&window.ID,
		&window.CreatedAt,
		&window.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create availability window: %w", err)
	}

	window.Blocks, err = insertBlocks(ctx, tx, window.ID, blocks)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &window, nil
}

func insertBlocks(ctx context.Context, tx pgx.Tx, windowID int64, blocks []domain.AppointmentBlock) ([]domain.AppointmentBlock, error) {
	query := `
		INSERT INTO appointment_blocks (window_id, start_at, end_at, is_booked)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id
	`

	inserted := make([]domain.AppointmentBlock, 0, len(blocks))
	for _, block := range blocks {
		block.WindowID = windowID
		block.IsBooked = false

		err := tx.QueryRow(ctx, query, windowID, block.StartAt, block.EndAt).Scan(&block.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create appointment block: %w", err)
		}
		inserted = append(inserted, block)
	}

	return inserted, nil
}

func (r *AvailabilityRepo) GetWindowByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error) {
	query := `
		SELECT id, doctor_id, start_at, end_at, created_at, updated_at
		FROM availability_windows
		WHERE id = $1
	`

	var window domain.AvailabilityWindow
	err := r.db.QueryRow(ctx, query, id).Scan(
		&window.ID,
		&window.DoctorID,
		&window.StartAt,
		&window.EndAt,
		&window.CreatedAt,
		&window.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAvailabilityNotFound
		}
		return nil, fmt.Errorf("failed to get availability window: %w", err)
	}

	window.Blocks, err = r.blocksForWindows(ctx, []int64{window.ID})
	if err != nil {
		return nil, err
	}

	return &window, nil
}

func (r *AvailabilityRepo) ListWindows(ctx context.Context, filter domain.AvailabilityFilter) ([]domain.AvailabilityWindow, error) {
	query := `
		SELECT id, doctor_id, start_at, end_at, created_at, updated_at
		FROM availability_windows
		WHERE doctor_id = $1
	`

	args := []interface{}{filter.DoctorID}
	argPos := 2

	if filter.From != nil {
		query += fmt.Sprintf(" AND end_at > $%d", argPos)
		args = append(args, *filter.From)
		argPos++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND start_at < $%d", argPos)
		args = append(args, *filter.To)
		argPos++
	}

	query += " ORDER BY start_at"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}
	defer rows.Close()

	var windows []domain.AvailabilityWindow
	var ids []int64
	for rows.Next() {
		var window domain.AvailabilityWindow
		err := rows.Scan(
			&window.ID,
			&window.DoctorID,
			&window.StartAt,
			&window.EndAt,
			&window.CreatedAt,
			&window.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan availability window row: %w", err)
		}
		windows = append(windows, window)
		ids = append(ids, window.ID)
	}

	if len(windows) == 0 {
		return windows, nil
	}

	blocks, err := r.blocksForWindows(ctx, ids)
	if err != nil {
		return nil, err
	}

	byWindow := make(map[int64][]domain.AppointmentBlock)
	for _, block := range blocks {
		byWindow[block.WindowID] = append(byWindow[block.WindowID], block)
	}
	for i := range windows {
		windows[i].Blocks = byWindow[windows[i].ID]
	}

	return windows, nil
}

func (r *AvailabilityRepo) blocksForWindows(ctx context.Context, windowIDs []int64) ([]domain.AppointmentBlock, error) {
	query := `
		SELECT id, window_id, start_at, end_at, is_booked
		FROM appointment_blocks
		WHERE window_id = ANY($1)
		ORDER BY start_at
	`

	rows, err := r.db.Query(ctx, query, windowIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment blocks: %w", err)
	}
	defer rows.Close()

	var blocks []domain.AppointmentBlock
	for rows.Next() {
		var block domain.AppointmentBlock
		err := rows.Scan(
			&block.ID,
			&block.WindowID,
			&block.StartAt,
			&block.EndAt,
			&block.IsBooked,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment block row: %w", err)
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

func (r *AvailabilityRepo) AnyOverlapping(ctx context.Context, doctorID int64, startAt, endAt time.Time, excludeWindowID int64) (bool, error) {
	// Half-open interval test: [s1,e1) overlaps [s2,e2) iff s1 < e2 AND s2 < e1.
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM availability_windows
			WHERE doctor_id = $1
			  AND start_at < $3
			  AND $2 < end_at
			  AND id != $4
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, doctorID, startAt, endAt, excludeWindowID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check window overlap: %w", err)
	}

	return exists, nil
}

func (r *AvailabilityRepo) ReplaceWindow(ctx context.Context, window domain.AvailabilityWindow, blocks []domain.AppointmentBlock) (*domain.AvailabilityWindow, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var booked bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment_blocks WHERE window_id = $1 AND is_booked = TRUE
		)
	`, window.ID).Scan(&booked)
	if err != nil {
		return nil, fmt.Errorf("failed to check booked blocks: %w", err)
	}
	if booked {
		return nil, domain.ErrWindowHasBookings
	}

	tag, err := tx.Exec(ctx, `
		UPDATE availability_windows
		SET start_at = $1, end_at = $2, updated_at = NOW()
		WHERE id = $3
	`, window.StartAt, window.EndAt, window.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update availability window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrAvailabilityNotFound
	}

	_, err = tx.Exec(ctx, `DELETE FROM appointment_blocks WHERE window_id = $1`, window.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete appointment blocks: %w", err)
	}

	window.Blocks, err = insertBlocks(ctx, tx, window.ID, blocks)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &window, nil
}

func (r *AvailabilityRepo) DeleteUnbooked(ctx context.Context, windowID int64) (*domain.DeleteUnbookedResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM availability_windows WHERE id = $1)`, windowID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability window: %w", err)
	}
	if !exists {
		return nil, domain.ErrAvailabilityNotFound
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM appointment_blocks
		WHERE window_id = $1 AND is_booked = FALSE
	`, windowID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete unbooked blocks: %w", err)
	}

	result := domain.DeleteUnbookedResult{Removed: int(tag.RowsAffected())}

	var remaining int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM appointment_blocks WHERE window_id = $1`, windowID).Scan(&remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to count remaining blocks: %w", err)
	}

	if remaining == 0 {
		_, err = tx.Exec(ctx, `DELETE FROM availability_windows WHERE id = $1`, windowID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete availability window: %w", err)
		}
	} else {
		var window domain.AvailabilityWindow
		err = tx.QueryRow(ctx, `
			SELECT id, doctor_id, start_at, end_at, created_at, updated_at
			FROM availability_windows
			WHERE id = $1
		`, windowID).Scan(
			&window.ID,
			&window.DoctorID,
			&window.StartAt,
			&window.EndAt,
			&window.CreatedAt,
			&window.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get availability window: %w", err)
		}
		result.Window = &window
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if result.Window != nil {
		result.Window.Blocks, err = r.blocksForWindows(ctx, []int64{windowID})
		if err != nil {
			return nil, err
		}
	}

	return &result, nil
}

func (r *AvailabilityRepo) DeleteBlock(ctx context.Context, blockID int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM appointment_blocks
		WHERE id = $1 AND is_booked = FALSE
	`, blockID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBlockNotFound
	}

	return nil
}

// ListAvailableBlocks returns free blocks in [from, to) starting strictly
// after notBefore. The strict comparison keeps a block whose start equals
// notBefore out of the listing; booking rejects that same instant.
func (r *AvailabilityRepo) ListAvailableBlocks(ctx context.Context, doctorID int64, from, to, notBefore time.Time) ([]domain.AppointmentBlock, error) {
	query := `
		SELECT b.id, b.window_id, b.start_at, b.end_at, b.is_booked
		FROM appointment_blocks b
		JOIN availability_windows w ON w.id = b.window_id
		WHERE w.doctor_id = $1
		  AND b.is_booked = FALSE
		  AND b.start_at >= $2
		  AND b.start_at < $3
		  AND b.start_at > $4
		ORDER BY b.start_at
	`

	rows, err := r.db.Query(ctx, query, doctorID, from, to, notBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list available blocks: %w", err)
	}
	defer rows.Close()

	var blocks []domain.AppointmentBlock
	for rows.Next() {
		var block domain.AppointmentBlock
		err := rows.Scan(
			&block.ID,
			&block.WindowID,
			&block.StartAt,
			&block.EndAt,
			&block.IsBooked,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment block row: %w", err)
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}
