package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bedfinder-data/internal/domain"
)

// PostgresHospitalsRepository 医院Repository实现
type PostgresHospitalsRepository struct {
	db *sql.DB
}

// NewPostgresHospitalsRepository 创建医院Repository
func NewPostgresHospitalsRepository(db *sql.DB) *PostgresHospitalsRepository {
	return &PostgresHospitalsRepository{db: db}
}

// 确保实现了接口
var _ HospitalsRepository = (*PostgresHospitalsRepository)(nil)

const hospitalColumns = `
	id::text,
	name,
	address,
	city,
	phone,
	email,
	latitude,
	longitude,
	image_url,
	rating,
	COALESCE(emergency_available, false)
`

// ListHospitals 获取全部医院（稳定排序，保证两次读取结构一致）
func (r *PostgresHospitalsRepository) ListHospitals(ctx context.Context) ([]*domain.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	defer rows.Close()

	hospitals := make([]*domain.Hospital, 0)
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hospitals: %w", err)
	}

	return hospitals, nil
}

// GetHospital 获取单个医院
func (r *PostgresHospitalsRepository) GetHospital(ctx context.Context, hospitalID string) (*domain.Hospital, error) {
	if hospitalID == "" {
		return nil, sql.ErrNoRows
	}

	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id = $1`

	h, err := scanHospital(r.db.QueryRowContext(ctx, query, hospitalID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return h, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHospital(row rowScanner) (*domain.Hospital, error) {
	var h domain.Hospital
	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Address,
		&h.City,
		&h.Phone,
		&h.Email,
		&h.Latitude,
		&h.Longitude,
		&h.ImageURL,
		&h.Rating,
		&h.EmergencyAvailable,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
