package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bedfinder-data/internal/domain"
)

// PostgresBedsRepository 床位库存Repository实现
type PostgresBedsRepository struct {
	db *sql.DB
}

// NewPostgresBedsRepository 创建床位库存Repository
func NewPostgresBedsRepository(db *sql.DB) *PostgresBedsRepository {
	return &PostgresBedsRepository{db: db}
}

// 确保实现了接口
var _ BedsRepository = (*PostgresBedsRepository)(nil)

// ListByHospital 按医院查询床位行（JOIN bed_types 取床型名）
func (r *PostgresBedsRepository) ListByHospital(ctx context.Context, hospitalID string) ([]*domain.HospitalBedRecord, error) {
	if hospitalID == "" {
		return []*domain.HospitalBedRecord{}, nil
	}

	query := `
		SELECT hb.id::text,
		       hb.hospital_id::text,
		       bt.name,
		       hb.total_beds,
		       hb.available_beds
		  FROM hospital_beds hb
		  JOIN bed_types bt ON bt.id = hb.bed_type_id
		 WHERE hb.hospital_id = $1
		 ORDER BY bt.name, hb.id
	`

	rows, err := r.db.QueryContext(ctx, query, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospital beds: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.HospitalBedRecord, 0)
	for rows.Next() {
		var rec domain.HospitalBedRecord
		if err := rows.Scan(&rec.ID, &rec.HospitalID, &rec.BedTypeName, &rec.TotalBeds, &rec.AvailableBeds); err != nil {
			return nil, fmt.Errorf("failed to scan hospital bed: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hospital beds: %w", err)
	}

	return records, nil
}

// GetBedRecord 获取单条床位行
func (r *PostgresBedsRepository) GetBedRecord(ctx context.Context, bedRecordID string) (*domain.HospitalBedRecord, error) {
	if bedRecordID == "" {
		return nil, sql.ErrNoRows
	}

	query := `
		SELECT hb.id::text,
		       hb.hospital_id::text,
		       bt.name,
		       hb.total_beds,
		       hb.available_beds
		  FROM hospital_beds hb
		  JOIN bed_types bt ON bt.id = hb.bed_type_id
		 WHERE hb.id = $1
	`

	var rec domain.HospitalBedRecord
	err := r.db.QueryRowContext(ctx, query, bedRecordID).Scan(
		&rec.ID, &rec.HospitalID, &rec.BedTypeName, &rec.TotalBeds, &rec.AvailableBeds,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get hospital bed: %w", err)
	}
	return &rec, nil
}

// UpdateAvailability 单字段更新，按记录 id + 所属医院双重限定
// Returns rows affected: 0 against an existing record means the caller does
// not own it.
func (r *PostgresBedsRepository) UpdateAvailability(ctx context.Context, bedRecordID, hospitalID string, availableBeds int) (int64, error) {
	if bedRecordID == "" || hospitalID == "" {
		return 0, fmt.Errorf("bed record id and hospital id are required")
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE hospital_beds SET available_beds = $1 WHERE id = $2 AND hospital_id = $3`,
		availableBeds, bedRecordID, hospitalID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update available beds: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}
