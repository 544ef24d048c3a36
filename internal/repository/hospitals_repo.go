package repository

import (
	"context"

	"bedfinder-data/internal/domain"
)

// HospitalsRepository 医院Repository接口
// 使用强类型领域模型，不使用map[string]any
type HospitalsRepository interface {
	ListHospitals(ctx context.Context) ([]*domain.Hospital, error)
	GetHospital(ctx context.Context, hospitalID string) (*domain.Hospital, error)
}

// BedsRepository 床位库存Repository接口
// One HospitalBedRecord is the unit of update; there is no batch write.
type BedsRepository interface {
	// ListByHospital returns the bed breakdown joined with the bed_types
	// name. A hospital with no rows yields an empty slice, not an error.
	ListByHospital(ctx context.Context, hospitalID string) ([]*domain.HospitalBedRecord, error)
	GetBedRecord(ctx context.Context, bedRecordID string) (*domain.HospitalBedRecord, error)
	// UpdateAvailability issues a single-field update scoped by record id
	// AND owning hospital. It returns the number of rows touched so the
	// caller can tell an ownership rejection from a missing record.
	UpdateAvailability(ctx context.Context, bedRecordID, hospitalID string, availableBeds int) (int64, error)
}
