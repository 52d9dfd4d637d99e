package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"turnoplus/internal/domain"
)

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &UserRepo{db: db}
}

const userColumns = `
	id, email, password_hash, full_name, role, is_active, created_at, updated_at,
	specialty, license_number, years_experience, office_id,
	document_type, document_number, address, phone, date_of_birth,
	medical_record_number, emergency_contact, obra_social_name, obra_social_number
`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Specialty,
		&user.LicenseNumber,
		&user.YearsExperience,
		&user.OfficeID,
		&user.DocumentType,
		&user.DocumentNumber,
		&user.Address,
		&user.Phone,
		&user.DateOfBirth,
		&user.MedicalRecordNumber,
		&user.EmergencyContact,
		&user.ObraSocialName,
		&user.ObraSocialNumber,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) Create(ctx context.Context, dto domain.CreateUserDTO, passwordHash string) (int64, error) {
	var id int64

	query := `
		INSERT INTO users (
			email, password_hash, full_name, role, is_active,
			specialty, license_number, years_experience, office_id,
			document_type, document_number, address, phone, date_of_birth,
			medical_record_number, emergency_contact, obra_social_name, obra_social_number,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		dto.Email,
		passwordHash,
		dto.FullName,
		dto.Role,
		dto.Specialty,
		dto.LicenseNumber,
		dto.YearsExperience,
		dto.OfficeID,
		dto.DocumentType,
		dto.DocumentNumber,
		dto.Address,
		dto.Phone,
		dto.DateOfBirth,
		dto.MedicalRecordNumber,
		dto.EmergencyContact,
		dto.ObraSocialName,
		dto.ObraSocialNumber,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepo) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	query := `
		UPDATE users
		SET
			email = COALESCE($2, email),
			full_name = COALESCE($3, full_name),
			is_active = COALESCE($4, is_active),
			specialty = COALESCE($5, specialty),
			license_number = COALESCE($6, license_number),
			years_experience = COALESCE($7, years_experience),
			office_id = COALESCE($8, office_id),
			document_number = COALESCE($9, document_number),
			address = COALESCE($10, address),
			phone = COALESCE($11, phone),
			date_of_birth = COALESCE($12, date_of_birth),
			emergency_contact = COALESCE($13, emergency_contact),
			obra_social_name = COALESCE($14, obra_social_name),
			obra_social_number = COALESCE($15, obra_social_number),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(
		ctx,
		query,
		id,
		dto.Email,
		dto.FullName,
		dto.IsActive,
		dto.Specialty,
		dto.LicenseNumber,
		dto.YearsExperience,
		dto.OfficeID,
		dto.DocumentNumber,
		dto.Address,
		dto.Phone,
		dto.DateOfBirth,
		dto.EmergencyContact,
		dto.ObraSocialName,
		dto.ObraSocialNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	countQuery := `SELECT COUNT(*) FROM users WHERE 1=1`
	selectQuery := `SELECT ` + userColumns + ` FROM users WHERE 1=1`

	var conditions string
	var args []interface{}
	argPos := 1

	if filter.Role != nil {
		conditions += fmt.Sprintf(" AND role = $%d", argPos)
		args = append(args, *filter.Role)
		argPos++
	}

	countQuery += conditions
	selectQuery += conditions

	selectQuery += fmt.Sprintf(" ORDER BY full_name LIMIT $%d OFFSET $%d", argPos, argPos+1)

	var total int
	err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *user)
	}

	return users, total, nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return total, nil
}

func (r *UserRepo) CountByRole(ctx context.Context, role domain.UserRole, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}

	var total int
	err := r.db.QueryRow(ctx, query, role).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}

	return total, nil
}
