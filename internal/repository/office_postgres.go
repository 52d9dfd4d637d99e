package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"turnoplus/internal/domain"
)

type OfficeRepo struct {
	db *pgxpool.Pool
}

func NewOfficeRepository(db *pgxpool.Pool) OfficeRepository {
	return &OfficeRepo{db: db}
}

func (r *OfficeRepo) Create(ctx context.Context, dto domain.CreateOfficeDTO) (int64, error) {
	var id int64

	query := `
		INSERT INTO offices (name, location, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, dto.Name, dto.Location).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create office: %w", err)
	}

	return id, nil
}

func (r *OfficeRepo) GetByID(ctx context.Context, id int64) (*domain.Office, error) {
	query := `
		SELECT id, name, location, is_active, created_at, updated_at
		FROM offices
		WHERE id = $1
	`

	var office domain.Office
	err := r.db.QueryRow(ctx, query, id).Scan(
		&office.ID,
		&office.Name,
		&office.Location,
		&office.IsActive,
		&office.CreatedAt,
		&office.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrOfficeNotFound
		}
		return nil, fmt.Errorf("failed to get office: %w", err)
	}

	return &office, nil
}

func (r *OfficeRepo) Update(ctx context.Context, id int64, dto domain.UpdateOfficeDTO) error {
	query := `
		UPDATE offices
		SET
			name = COALESCE($2, name),
			location = COALESCE($3, location),
			is_active = COALESCE($4, is_active),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, dto.Name, dto.Location, dto.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update office: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOfficeNotFound
	}

	return nil
}

func (r *OfficeRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM offices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete office: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOfficeNotFound
	}

	return nil
}

func (r *OfficeRepo) List(ctx context.Context) ([]domain.Office, error) {
	query := `
		SELECT id, name, location, is_active, created_at, updated_at
		FROM offices
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", err)
	}
	defer rows.Close()

	var offices []domain.Office
	for rows.Next() {
		var office domain.Office
		err := rows.Scan(
			&office.ID,
			&office.Name,
			&office.Location,
			&office.IsActive,
			&office.CreatedAt,
			&office.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan office row: %w", err)
		}
		offices = append(offices, office)
	}

	return offices, nil
}
