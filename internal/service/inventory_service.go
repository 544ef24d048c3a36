package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bedfinder-data/internal/domain"
	"bedfinder-data/internal/repository"

	"go.uber.org/zap"
)

// Availability buckets derived from available/total.
const (
	StatusAvailable = "available" // ratio >= 0.5
	StatusLimited   = "limited"   // 0.2 <= ratio < 0.5
	StatusFull      = "full"      // ratio < 0.2
)

// HospitalWithBeds 医院 + 床位明细的展示结构
type HospitalWithBeds struct {
	Hospital domain.Hospital
	Beds     []*domain.HospitalBedRecord
}

// TotalAvailable 汇总可用床位
func (h *HospitalWithBeds) TotalAvailable() int {
	sum := 0
	for _, b := range h.Beds {
		sum += b.AvailableBeds
	}
	return sum
}

// TotalBeds 汇总总床位
func (h *HospitalWithBeds) TotalBeds() int {
	sum := 0
	for _, b := range h.Beds {
		sum += b.TotalBeds
	}
	return sum
}

// AvailabilityStatus buckets an available/total pair. Deterministic, fixed
// thresholds; total <= 0 counts as full.
func AvailabilityStatus(available, total int) string {
	if total <= 0 {
		return StatusFull
	}
	ratio := float64(available) / float64(total)
	switch {
	case ratio >= 0.5:
		return StatusAvailable
	case ratio >= 0.2:
		return StatusLimited
	default:
		return StatusFull
	}
}

// FilterByCity keeps hospitals whose city matches (case-insensitive). Pure:
// returns a fresh slice, never mutates the input. Empty city keeps everything.
func FilterByCity(list []*HospitalWithBeds, city string) []*HospitalWithBeds {
	city = strings.TrimSpace(city)
	if city == "" {
		return append([]*HospitalWithBeds(nil), list...)
	}
	out := make([]*HospitalWithBeds, 0, len(list))
	for _, h := range list {
		if strings.EqualFold(h.Hospital.City, city) {
			out = append(out, h)
		}
	}
	return out
}

// FilterByText keeps hospitals whose name or address contains the query
// (case-insensitive substring). Composable with FilterByCity in either order.
func FilterByText(list []*HospitalWithBeds, query string) []*HospitalWithBeds {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]*HospitalWithBeds(nil), list...)
	}
	out := make([]*HospitalWithBeds, 0, len(list))
	for _, h := range list {
		if strings.Contains(strings.ToLower(h.Hospital.Name), query) ||
			strings.Contains(strings.ToLower(h.Hospital.Address), query) {
			out = append(out, h)
		}
	}
	return out
}

// DistinctCities 提取去重后的城市列表（保持首次出现顺序）
func DistinctCities(list []*HospitalWithBeds) []string {
	seen := make(map[string]bool, len(list))
	cities := make([]string, 0, len(list))
	for _, h := range list {
		if h.Hospital.City == "" || seen[h.Hospital.City] {
			continue
		}
		seen[h.Hospital.City] = true
		cities = append(cities, h.Hospital.City)
	}
	return cities
}

// ValidateAvailability is the local writer constraint: 0 <= value <= total.
// Decided before any write is issued.
func ValidateAvailability(value, total int) error {
	if value < 0 || value > total {
		return fmt.Errorf("%w: available beds must be between 0 and %d", domain.ErrValidation, total)
	}
	return nil
}

// InventoryService 床位库存读写服务接口
type InventoryService interface {
	ListHospitalsWithBeds(ctx context.Context) ([]*HospitalWithBeds, error)
	ListBedsForHospital(ctx context.Context, hospitalID string) ([]*domain.HospitalBedRecord, error)
	// UpdateAvailability validates locally, then writes exactly one record
	// scoped by the caller's hospital. On success the returned record is the
	// caller's in-memory merge target: it matches the stored row exactly.
	UpdateAvailability(ctx context.Context, sess *domain.Session, bedRecordID string, newValue int) (*domain.HospitalBedRecord, error)
}

type inventoryService struct {
	hospitals repository.HospitalsRepository
	beds      repository.BedsRepository
	logger    *zap.Logger
}

// NewInventoryService 创建 InventoryService 实例
func NewInventoryService(hospitals repository.HospitalsRepository, beds repository.BedsRepository, logger *zap.Logger) InventoryService {
	return &inventoryService{
		hospitals: hospitals,
		beds:      beds,
		logger:    logger,
	}
}

// ListHospitalsWithBeds 读取全部医院及各自床位明细
// A hospital without bed rows gets an empty breakdown, never an error.
func (s *inventoryService) ListHospitalsWithBeds(ctx context.Context) ([]*HospitalWithBeds, error) {
	hospitals, err := s.hospitals.ListHospitals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*HospitalWithBeds, 0, len(hospitals))
	for _, h := range hospitals {
		beds, err := s.beds.ListByHospital(ctx, h.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load beds for hospital %s: %w", h.ID, err)
		}
		out = append(out, &HospitalWithBeds{Hospital: *h, Beds: beds})
	}
	return out, nil
}

// ListBedsForHospital 按医院读取床位明细（staff dashboard 视图）
func (s *inventoryService) ListBedsForHospital(ctx context.Context, hospitalID string) ([]*domain.HospitalBedRecord, error) {
	if hospitalID == "" {
		return nil, fmt.Errorf("%w: hospital id is required", domain.ErrValidation)
	}
	return s.beds.ListByHospital(ctx, hospitalID)
}

// UpdateAvailability 校验并写入一条床位记录
func (s *inventoryService) UpdateAvailability(ctx context.Context, sess *domain.Session, bedRecordID string, newValue int) (*domain.HospitalBedRecord, error) {
	if bedRecordID == "" {
		return nil, fmt.Errorf("%w: bed record id is required", domain.ErrValidation)
	}
	// Negative values never leave the validation step.
	if newValue < 0 {
		return nil, fmt.Errorf("%w: available beds must not be negative", domain.ErrValidation)
	}

	if sess == nil || sess.Profile == nil || !sess.Profile.IsStaff() || !sess.Profile.HospitalID.Valid {
		return nil, fmt.Errorf("%w: bed updates require hospital staff", domain.ErrAuthorization)
	}
	hospitalID := sess.Profile.HospitalID.String

	rec, err := s.beds.GetBedRecord(ctx, bedRecordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: bed record %s", domain.ErrNotFound, bedRecordID)
		}
		return nil, err
	}

	// Upper bound is checked against the stored total before the write.
	if err := ValidateAvailability(newValue, rec.TotalBeds); err != nil {
		return nil, err
	}

	affected, err := s.beds.UpdateAvailability(ctx, bedRecordID, hospitalID, newValue)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Record exists but is not scoped to the caller's hospital.
		s.logger.Warn("Bed update rejected: record not owned by caller's hospital",
			zap.String("user_id", sess.Identity.UserID),
			zap.String("bed_record_id", bedRecordID),
			zap.String("hospital_id", hospitalID),
		)
		return nil, fmt.Errorf("%w: bed record %s belongs to another hospital", domain.ErrAuthorization, bedRecordID)
	}

	s.logger.Info("Bed availability updated",
		zap.String("user_id", sess.Identity.UserID),
		zap.String("bed_record_id", bedRecordID),
		zap.Int("available_beds", newValue),
	)

	updated := *rec
	updated.AvailableBeds = newValue
	return &updated, nil
}
