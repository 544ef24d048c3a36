package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"bedfinder-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeHospitalsRepo struct {
	hospitals []*domain.Hospital
	err       error
}

func (f *fakeHospitalsRepo) ListHospitals(ctx context.Context) ([]*domain.Hospital, error) {
	return f.hospitals, f.err
}

func (f *fakeHospitalsRepo) GetHospital(ctx context.Context, hospitalID string) (*domain.Hospital, error) {
	for _, h := range f.hospitals {
		if h.ID == hospitalID {
			return h, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeBedsRepo struct {
	byHospital map[string][]*domain.HospitalBedRecord
	records    map[string]*domain.HospitalBedRecord
	updateRows int64
	updateErr  error

	updateCalls int
}

func (f *fakeBedsRepo) ListByHospital(ctx context.Context, hospitalID string) ([]*domain.HospitalBedRecord, error) {
	return f.byHospital[hospitalID], nil
}

func (f *fakeBedsRepo) GetBedRecord(ctx context.Context, bedRecordID string) (*domain.HospitalBedRecord, error) {
	rec, ok := f.records[bedRecordID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rec, nil
}

func (f *fakeBedsRepo) UpdateAvailability(ctx context.Context, bedRecordID, hospitalID string, availableBeds int) (int64, error) {
	f.updateCalls++
	return f.updateRows, f.updateErr
}

func staffSession(hospitalID string) *domain.Session {
	return &domain.Session{
		Identity: domain.Identity{UserID: "user-1", Email: "staff@example.com"},
		Profile: &domain.UserProfile{
			ID:         "user-1",
			Role:       domain.RoleHospitalStaff,
			HospitalID: sql.NullString{String: hospitalID, Valid: true},
		},
	}
}

func TestAvailabilityStatus_Thresholds(t *testing.T) {
	assert.Equal(t, StatusAvailable, AvailabilityStatus(5, 10))
	assert.Equal(t, StatusAvailable, AvailabilityStatus(10, 10))
	assert.Equal(t, StatusLimited, AvailabilityStatus(2, 10))
	assert.Equal(t, StatusLimited, AvailabilityStatus(4, 10))
	assert.Equal(t, StatusFull, AvailabilityStatus(1, 10))
	assert.Equal(t, StatusFull, AvailabilityStatus(0, 10))
	assert.Equal(t, StatusFull, AvailabilityStatus(0, 0))

	// 6/10 is available; dropping to 1/10 recomputes to full.
	assert.Equal(t, StatusAvailable, AvailabilityStatus(6, 10))
	assert.Equal(t, StatusFull, AvailabilityStatus(1, 10))
}

func hospitals(t *testing.T) []*HospitalWithBeds {
	t.Helper()
	return []*HospitalWithBeds{
		{Hospital: domain.Hospital{ID: "h1", Name: "City General", Address: "12 Main Street", City: "Springfield"}},
		{Hospital: domain.Hospital{ID: "h2", Name: "Mercy Hospital", Address: "4 Elm Avenue", City: "Shelbyville"}},
		{Hospital: domain.Hospital{ID: "h3", Name: "General Clinic", Address: "9 Main Road", City: "springfield"}},
	}
}

func TestFilters_CommutativeIntersection(t *testing.T) {
	list := hospitals(t)

	cityFirst := FilterByText(FilterByCity(list, "Springfield"), "main")
	textFirst := FilterByCity(FilterByText(list, "main"), "Springfield")

	require.Equal(t, cityFirst, textFirst)
	require.Len(t, cityFirst, 2)
	assert.Equal(t, "h1", cityFirst[0].Hospital.ID)
	assert.Equal(t, "h3", cityFirst[1].Hospital.ID)
}

func TestFilters_DoNotMutateSource(t *testing.T) {
	list := hospitals(t)

	_ = FilterByCity(list, "Shelbyville")
	_ = FilterByText(list, "mercy")

	require.Len(t, list, 3)
	assert.Equal(t, "h1", list[0].Hospital.ID)
}

func TestFilterByText_MatchesNameAndAddress(t *testing.T) {
	list := hospitals(t)

	byName := FilterByText(list, "MERCY")
	require.Len(t, byName, 1)
	assert.Equal(t, "h2", byName[0].Hospital.ID)

	byAddress := FilterByText(list, "elm")
	require.Len(t, byAddress, 1)
	assert.Equal(t, "h2", byAddress[0].Hospital.ID)
}

func TestDistinctCities(t *testing.T) {
	list := hospitals(t)
	cities := DistinctCities(list)
	// Case-sensitive distinct, first occurrence order.
	assert.Equal(t, []string{"Springfield", "Shelbyville", "springfield"}, cities)
}

func TestHospitalWithBeds_Totals(t *testing.T) {
	h := &HospitalWithBeds{
		Beds: []*domain.HospitalBedRecord{
			{TotalBeds: 10, AvailableBeds: 6},
			{TotalBeds: 5, AvailableBeds: 1},
		},
	}
	assert.Equal(t, 7, h.TotalAvailable())
	assert.Equal(t, 15, h.TotalBeds())
}

func TestListHospitalsWithBeds_EmptyBreakdownTolerated(t *testing.T) {
	hosp := &fakeHospitalsRepo{hospitals: []*domain.Hospital{
		{ID: "h1", Name: "City General", City: "Springfield"},
		{ID: "h2", Name: "Mercy Hospital", City: "Shelbyville"},
	}}
	beds := &fakeBedsRepo{byHospital: map[string][]*domain.HospitalBedRecord{
		"h1": {{ID: "b1", HospitalID: "h1", BedTypeName: "ICU", TotalBeds: 10, AvailableBeds: 6}},
		// h2 has no bed rows at all
	}}
	svc := NewInventoryService(hosp, beds, zap.NewNop())

	list, err := svc.ListHospitalsWithBeds(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, list[0].Beds, 1)
	assert.Empty(t, list[1].Beds)
}

func TestListHospitalsWithBeds_Idempotent(t *testing.T) {
	hosp := &fakeHospitalsRepo{hospitals: []*domain.Hospital{{ID: "h1", Name: "City General"}}}
	beds := &fakeBedsRepo{byHospital: map[string][]*domain.HospitalBedRecord{
		"h1": {{ID: "b1", HospitalID: "h1", BedTypeName: "ICU", TotalBeds: 10, AvailableBeds: 6}},
	}}
	svc := NewInventoryService(hosp, beds, zap.NewNop())

	first, err := svc.ListHospitalsWithBeds(context.Background())
	require.NoError(t, err)
	second, err := svc.ListHospitalsWithBeds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUpdateAvailability_RejectsOutOfRangeBeforeWrite(t *testing.T) {
	beds := &fakeBedsRepo{
		records: map[string]*domain.HospitalBedRecord{
			"b1": {ID: "b1", HospitalID: "h1", BedTypeName: "ICU", TotalBeds: 10, AvailableBeds: 6},
		},
	}
	svc := NewInventoryService(&fakeHospitalsRepo{}, beds, zap.NewNop())

	// Above total: read happens, write does not.
	_, err := svc.UpdateAvailability(context.Background(), staffSession("h1"), "b1", 12)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, beds.updateCalls)

	// Negative: rejected before any repository call.
	_, err = svc.UpdateAvailability(context.Background(), staffSession("h1"), "b1", -1)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, beds.updateCalls)
}

func TestUpdateAvailability_BoundaryValuesSucceed(t *testing.T) {
	for _, value := range []int{0, 10} {
		beds := &fakeBedsRepo{
			records: map[string]*domain.HospitalBedRecord{
				"b1": {ID: "b1", HospitalID: "h1", BedTypeName: "ICU", TotalBeds: 10, AvailableBeds: 6},
			},
			updateRows: 1,
		}
		svc := NewInventoryService(&fakeHospitalsRepo{}, beds, zap.NewNop())

		updated, err := svc.UpdateAvailability(context.Background(), staffSession("h1"), "b1", value)
		require.NoError(t, err)
		assert.Equal(t, value, updated.AvailableBeds)
		assert.Equal(t, 1, beds.updateCalls)
	}
}

func TestUpdateAvailability_MergeMatchesStoredRow(t *testing.T) {
	beds := &fakeBedsRepo{
		records: map[string]*domain.HospitalBedRecord{
			"b1": {ID: "b1", HospitalID: "h1", BedTypeName: "ICU", TotalBeds: 10, AvailableBeds: 6},
		},
		updateRows: 1,
	}
	svc := NewInventoryService(&fakeHospitalsRepo{}, beds, zap.NewNop())

	updated, err := svc.UpdateAvailability(context.Background(), staffSession("h1"), "b1", 1)
	require.NoError(t, err)
	assert.Equal(t, "b1", updated.ID)
	assert.Equal(t, "ICU", updated.BedTypeName)
	assert.Equal(t, 10, updated.TotalBeds)
	assert.Equal(t, 1, updated.AvailableBeds)
	// Source record untouched: callers merge the returned copy.
	assert.Equal(t, 6, beds.records["b1"].AvailableBeds)
	// Status recomputes from the merged state without a re-fetch.
	assert.Equal(t, StatusFull, AvailabilityStatus(updated.AvailableBeds, updated.TotalBeds))
}

func TestUpdateAvailability_OwnershipRejection(t *testing.T) {
	beds := &fakeBedsRepo{
		records: map[string]*domain.HospitalBedRecord{
			"b1": {ID: "b1", HospitalID: "h2", BedTypeName: "ICU", TotalBeds: 10, AvailableBeds: 6},
		},
		updateRows: 0, // scoped update touches nothing
	}
	svc := NewInventoryService(&fakeHospitalsRepo{}, beds, zap.NewNop())

	_, err := svc.UpdateAvailability(context.Background(), staffSession("h1"), "b1", 3)
	require.ErrorIs(t, err, domain.ErrAuthorization)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateAvailability_MissingRecord(t *testing.T) {
	beds := &fakeBedsRepo{records: map[string]*domain.HospitalBedRecord{}}
	svc := NewInventoryService(&fakeHospitalsRepo{}, beds, zap.NewNop())

	_, err := svc.UpdateAvailability(context.Background(), staffSession("h1"), "missing", 3)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateAvailability_RequiresStaffProfile(t *testing.T) {
	beds := &fakeBedsRepo{
		records: map[string]*domain.HospitalBedRecord{
			"b1": {ID: "b1", HospitalID: "h1", TotalBeds: 10, AvailableBeds: 6},
		},
	}
	svc := NewInventoryService(&fakeHospitalsRepo{}, beds, zap.NewNop())

	patient := &domain.Session{
		Identity: domain.Identity{UserID: "user-2"},
		Profile:  &domain.UserProfile{ID: "user-2", Role: domain.RolePatient},
	}
	_, err := svc.UpdateAvailability(context.Background(), patient, "b1", 3)
	require.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = svc.UpdateAvailability(context.Background(), nil, "b1", 3)
	require.ErrorIs(t, err, domain.ErrAuthorization)
	assert.Equal(t, 0, beds.updateCalls)
}

func TestUpdateAvailability_RepoErrorPassedThrough(t *testing.T) {
	boom := errors.New("connection reset")
	beds := &fakeBedsRepo{
		records: map[string]*domain.HospitalBedRecord{
			"b1": {ID: "b1", HospitalID: "h1", TotalBeds: 10, AvailableBeds: 6},
		},
		updateErr: boom,
	}
	svc := NewInventoryService(&fakeHospitalsRepo{}, beds, zap.NewNop())

	_, err := svc.UpdateAvailability(context.Background(), staffSession("h1"), "b1", 3)
	require.ErrorIs(t, err, boom)
}
