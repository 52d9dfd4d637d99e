package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"turnoplus/internal/domain"
)

type MedicalRecordRepo struct {
	db *pgxpool.Pool
}

func NewMedicalRecordRepository(db *pgxpool.Pool) MedicalRecordRepository {
	return &MedicalRecordRepo{db: db}
}

func (r *MedicalRecordRepo) Create(ctx context.Context, doctorID int64, dto domain.CreateMedicalRecordDTO) (int64, error) {
	var id int64

	query := `
		INSERT INTO medical_records (patient_id, doctor_id, appointment_id, diagnosis, treatment, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		dto.PatientID,
		doctorID,
		dto.AppointmentID,
		dto.Diagnosis,
		dto.Treatment,
		dto.Notes,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create medical record: %w", err)
	}

	return id, nil
}

func (r *MedicalRecordRepo) GetByID(ctx context.Context, id int64) (*domain.MedicalRecord, error) {
	query := `
		SELECT r.id, r.patient_id, r.doctor_id, r.appointment_id, r.diagnosis, r.treatment, r.notes,
		       r.created_at, r.updated_at, d.full_name
		FROM medical_records r
		JOIN users d ON d.id = r.doctor_id
		WHERE r.id = $1
	`

	var record domain.MedicalRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.PatientID,
		&record.DoctorID,
		&record.AppointmentID,
		&record.Diagnosis,
		&record.Treatment,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.DoctorName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}

	record.Attachments, err = r.ListAttachments(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *MedicalRecordRepo) Update(ctx context.Context, id int64, dto domain.UpdateMedicalRecordDTO) error {
	query := `
		UPDATE medical_records
		SET
			diagnosis = COALESCE($2, diagnosis),
			treatment = COALESCE($3, treatment),
			notes = COALESCE($4, notes),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, dto.Diagnosis, dto.Treatment, dto.Notes)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (r *MedicalRecordRepo) List(ctx context.Context, filter domain.MedicalRecordFilter) ([]domain.MedicalRecord, int, error) {
	countQuery := `SELECT COUNT(*) FROM medical_records r WHERE 1=1`
	selectQuery := `
		SELECT r.id, r.patient_id, r.doctor_id, r.appointment_id, r.diagnosis, r.treatment, r.notes,
		       r.created_at, r.updated_at, d.full_name
		FROM medical_records r
		JOIN users d ON d.id = r.doctor_id
		WHERE 1=1
	`

	var conditions string
	var args []interface{}
	argPos := 1

	if filter.PatientID != nil {
		conditions += fmt.Sprintf(" AND r.patient_id = $%d", argPos)
		args = append(args, *filter.PatientID)
		argPos++
	}

	if filter.DoctorID != nil {
		conditions += fmt.Sprintf(" AND r.doctor_id = $%d", argPos)
		args = append(args, *filter.DoctorID)
		argPos++
	}

	countQuery += conditions
	selectQuery += conditions

	selectQuery += fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)

	var total int
	err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count medical records: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list medical records: %w", err)
	}
	defer rows.Close()

	var records []domain.MedicalRecord
	for rows.Next() {
		var record domain.MedicalRecord
		err := rows.Scan(
			&record.ID,
			&record.PatientID,
			&record.DoctorID,
			&record.AppointmentID,
			&record.Diagnosis,
			&record.Treatment,
			&record.Notes,
			&record.CreatedAt,
			&record.UpdatedAt,
			&record.DoctorName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan medical record row: %w", err)
		}
		records = append(records, record)
	}

	return records, total, nil
}

func (r *MedicalRecordRepo) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM medical_records`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count medical records: %w", err)
	}

	return total, nil
}

func (r *MedicalRecordRepo) AddAttachment(ctx context.Context, attachment domain.RecordAttachment) (int64, error) {
	var id int64

	query := `
		INSERT INTO record_attachments (record_id, file_name, content_type, size, url, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		attachment.RecordID,
		attachment.FileName,
		attachment.ContentType,
		attachment.Size,
		attachment.URL,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to add record attachment: %w", err)
	}

	return id, nil
}

func (r *MedicalRecordRepo) ListAttachments(ctx context.Context, recordID int64) ([]domain.RecordAttachment, error) {
	query := `
		SELECT id, record_id, file_name, content_type, size, url, created_at
		FROM record_attachments
		WHERE record_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list record attachments: %w", err)
	}
	defer rows.Close()

	var attachments []domain.RecordAttachment
	for rows.Next() {
		var attachment domain.RecordAttachment
		err := rows.Scan(
			&attachment.ID,
			&attachment.RecordID,
			&attachment.FileName,
			&attachment.ContentType,
			&attachment.Size,
			&attachment.URL,
			&attachment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record attachment row: %w", err)
		}
		attachments = append(attachments, attachment)
	}

	return attachments, nil
}
