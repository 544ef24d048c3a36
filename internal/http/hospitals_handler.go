package httpapi

import (
	"net/http"
	"strings"

	"bedfinder-data/internal/domain"
	"bedfinder-data/internal/service"

	"go.uber.org/zap"
)

// HospitalsHandler 医院搜索/浏览 Handler（公开读路径）
type HospitalsHandler struct {
	inventory service.InventoryService
	logger    *zap.Logger
}

// NewHospitalsHandler 创建医院搜索 Handler
func NewHospitalsHandler(inventory service.InventoryService, logger *zap.Logger) *HospitalsHandler {
	return &HospitalsHandler{
		inventory: inventory,
		logger:    logger,
	}
}

// hospitalPayload is the display-ready projection: raw breakdown plus the
// derived totals and availability bucket.
type hospitalPayload struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Address            string       `json:"address"`
	City               string       `json:"city"`
	Phone              string       `json:"phone,omitempty"`
	Email              string       `json:"email,omitempty"`
	Latitude           *float64     `json:"latitude,omitempty"`
	Longitude          *float64     `json:"longitude,omitempty"`
	ImageURL           string       `json:"image_url,omitempty"`
	Rating             *float64     `json:"rating,omitempty"`
	EmergencyAvailable bool         `json:"emergency_available"`
	Beds               []bedPayload `json:"beds"`
	TotalAvailable     int          `json:"totalAvailable"`
	TotalBeds          int          `json:"totalBeds"`
	AvailabilityStatus string       `json:"availabilityStatus"`
}

type bedPayload struct {
	ID            string `json:"id"`
	BedType       string `json:"bed_type"`
	TotalBeds     int    `json:"total_beds"`
	AvailableBeds int    `json:"available_beds"`
	Status        string `json:"status"`
}

func toHospitalPayload(h *service.HospitalWithBeds) hospitalPayload {
	beds := make([]bedPayload, 0, len(h.Beds))
	for _, b := range h.Beds {
		beds = append(beds, toBedPayload(b))
	}
	p := hospitalPayload{
		ID:                 h.Hospital.ID,
		Name:               h.Hospital.Name,
		Address:            h.Hospital.Address,
		City:               h.Hospital.City,
		EmergencyAvailable: h.Hospital.EmergencyAvailable,
		Beds:               beds,
		TotalAvailable:     h.TotalAvailable(),
		TotalBeds:          h.TotalBeds(),
		AvailabilityStatus: service.AvailabilityStatus(h.TotalAvailable(), h.TotalBeds()),
	}
	if h.Hospital.Phone.Valid {
		p.Phone = h.Hospital.Phone.String
	}
	if h.Hospital.Email.Valid {
		p.Email = h.Hospital.Email.String
	}
	if h.Hospital.Latitude.Valid {
		v := h.Hospital.Latitude.Float64
		p.Latitude = &v
	}
	if h.Hospital.Longitude.Valid {
		v := h.Hospital.Longitude.Float64
		p.Longitude = &v
	}
	if h.Hospital.ImageURL.Valid {
		p.ImageURL = h.Hospital.ImageURL.String
	}
	if h.Hospital.Rating.Valid {
		v := h.Hospital.Rating.Float64
		p.Rating = &v
	}
	return p
}

func toBedPayload(b *domain.HospitalBedRecord) bedPayload {
	return bedPayload{
		ID:            b.ID,
		BedType:       b.BedTypeName,
		TotalBeds:     b.TotalBeds,
		AvailableBeds: b.AvailableBeds,
		Status:        service.AvailabilityStatus(b.AvailableBeds, b.TotalBeds),
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *HospitalsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	switch {
	case r.URL.Path == "/data/api/v1/hospitals":
		h.ListHospitals(w, r)
	case r.URL.Path == "/data/api/v1/cities":
		h.ListCities(w, r)
	case strings.HasPrefix(r.URL.Path, "/data/api/v1/hospitals/"):
		rest := strings.TrimPrefix(r.URL.Path, "/data/api/v1/hospitals/")
		id, tail, _ := strings.Cut(rest, "/")
		if id == "" || tail != "beds" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.ListHospitalBeds(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListHospitals 列出医院及床位明细，支持 city= 与 q= 组合过滤
func (h *HospitalsHandler) ListHospitals(w http.ResponseWriter, r *http.Request) {
	list, err := h.inventory.ListHospitalsWithBeds(r.Context())
	if err != nil {
		h.logger.Error("Failed to list hospitals", zap.Error(err))
		writeError(w, err)
		return
	}

	// Both filters are pure; order does not matter.
	list = service.FilterByCity(list, r.URL.Query().Get("city"))
	list = service.FilterByText(list, r.URL.Query().Get("q"))

	payload := make([]hospitalPayload, 0, len(list))
	for _, item := range list {
		payload = append(payload, toHospitalPayload(item))
	}
	writeJSON(w, http.StatusOK, Ok(payload))
}

// ListCities 返回去重城市列表（搜索页下拉框）
func (h *HospitalsHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	list, err := h.inventory.ListHospitalsWithBeds(r.Context())
	if err != nil {
		h.logger.Error("Failed to list cities", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(service.DistinctCities(list)))
}

// ListHospitalBeds 按医院返回床位明细
func (h *HospitalsHandler) ListHospitalBeds(w http.ResponseWriter, r *http.Request, hospitalID string) {
	beds, err := h.inventory.ListBedsForHospital(r.Context(), hospitalID)
	if err != nil {
		h.logger.Error("Failed to list hospital beds",
			zap.String("hospital_id", hospitalID),
			zap.Error(err),
		)
		writeError(w, err)
		return
	}

	payload := make([]bedPayload, 0, len(beds))
	for _, b := range beds {
		payload = append(payload, toBedPayload(b))
	}
	writeJSON(w, http.StatusOK, Ok(payload))
}
