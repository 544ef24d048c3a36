package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bedfinder-data/internal/domain"
	"bedfinder-data/internal/service"

	"go.uber.org/zap"
)

func searchFixture() []*service.HospitalWithBeds {
	return []*service.HospitalWithBeds{
		{
			Hospital: domain.Hospital{ID: "h1", Name: "City General", Address: "12 Main Street", City: "Springfield"},
			Beds: []*domain.HospitalBedRecord{
				{ID: "b1", HospitalID: "h1", BedTypeName: "ICU", TotalBeds: 10, AvailableBeds: 6},
				{ID: "b2", HospitalID: "h1", BedTypeName: "General", TotalBeds: 20, AvailableBeds: 2},
			},
		},
		{
			Hospital: domain.Hospital{ID: "h2", Name: "Mercy Hospital", Address: "4 Elm Avenue", City: "Shelbyville"},
			Beds:     []*domain.HospitalBedRecord{},
		},
	}
}

func getHospitals(t *testing.T, target string, inv *fakeInventoryService) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHospitalsHandler(inv, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHospitals_ListWithDerivedMetrics(t *testing.T) {
	w := getHospitals(t, "/data/api/v1/hospitals", &fakeInventoryService{list: searchFixture()})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp Result[[]hospitalPayload]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Code != ResultSuccess || len(resp.Result) != 2 {
		t.Fatalf("unexpected envelope: %s", w.Body.String())
	}

	h1 := resp.Result[0]
	if h1.TotalAvailable != 8 || h1.TotalBeds != 30 {
		t.Fatalf("expected totals 8/30, got %d/%d", h1.TotalAvailable, h1.TotalBeds)
	}
	if h1.AvailabilityStatus != service.StatusLimited {
		t.Fatalf("expected limited (8/30), got %s", h1.AvailabilityStatus)
	}

	// Zero bed rows yields an empty breakdown, not an error.
	h2 := resp.Result[1]
	if h2.Beds == nil || len(h2.Beds) != 0 {
		t.Fatalf("expected empty breakdown for h2, got: %v", h2.Beds)
	}
	if h2.AvailabilityStatus != service.StatusFull {
		t.Fatalf("expected full for empty breakdown, got %s", h2.AvailabilityStatus)
	}
}

func TestHospitals_CityAndTextFiltersCompose(t *testing.T) {
	w := getHospitals(t, "/data/api/v1/hospitals?city=springfield&q=main", &fakeInventoryService{list: searchFixture()})

	var resp Result[[]hospitalPayload]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Result) != 1 || resp.Result[0].ID != "h1" {
		t.Fatalf("expected only h1, got: %s", w.Body.String())
	}

	// Same pair, no text match.
	w = getHospitals(t, "/data/api/v1/hospitals?city=springfield&q=elm", &fakeInventoryService{list: searchFixture()})
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Result) != 0 {
		t.Fatalf("expected empty intersection, got: %s", w.Body.String())
	}
}

func TestHospitals_Cities(t *testing.T) {
	w := getHospitals(t, "/data/api/v1/cities", &fakeInventoryService{list: searchFixture()})

	body := w.Body.String()
	if !strings.Contains(body, "Springfield") || !strings.Contains(body, "Shelbyville") {
		t.Fatalf("expected both cities, got: %s", body)
	}
}

func TestHospitals_BedsSubresource(t *testing.T) {
	inv := &fakeInventoryService{beds: []*domain.HospitalBedRecord{
		{ID: "b1", HospitalID: "h1", BedTypeName: "ICU", TotalBeds: 10, AvailableBeds: 1},
	}}
	w := getHospitals(t, "/data/api/v1/hospitals/h1/beds", inv)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"status":"full"`) {
		t.Fatalf("expected per-record status, got: %s", w.Body.String())
	}
}

func TestHospitals_UnknownSubpathIs404(t *testing.T) {
	w := getHospitals(t, "/data/api/v1/hospitals/h1/rooms", &fakeInventoryService{})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
