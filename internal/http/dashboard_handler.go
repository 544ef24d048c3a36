package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"bedfinder-data/internal/domain"
	"bedfinder-data/internal/service"

	"go.uber.org/zap"
)

// DashboardHandler 院方运营面板 Handler（staff 专用路径）
type DashboardHandler struct {
	authService service.AuthService
	inventory   service.InventoryService
	logger      *zap.Logger
}

// NewDashboardHandler 创建面板 Handler
func NewDashboardHandler(authService service.AuthService, inventory service.InventoryService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		authService: authService,
		inventory:   inventory,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := h.authService.Resolve(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case r.URL.Path == "/dashboard/api/v1/beds":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListBeds(w, r, sess)
	case r.URL.Path == "/dashboard/api/v1/beds/export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ExportBeds(w, r, sess)
	case strings.HasPrefix(r.URL.Path, "/dashboard/api/v1/beds/"):
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/dashboard/api/v1/beds/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.UpdateBed(w, r, sess, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func staffHospitalID(sess *domain.Session) (string, error) {
	if sess.Profile == nil || !sess.Profile.IsStaff() {
		return "", fmt.Errorf("%w: dashboard is for hospital staff", domain.ErrAuthorization)
	}
	if !sess.Profile.HospitalID.Valid {
		return "", fmt.Errorf("%w: staff profile has no hospital", domain.ErrAuthorization)
	}
	return sess.Profile.HospitalID.String, nil
}

// ListBeds 返回本院床位明细
func (h *DashboardHandler) ListBeds(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	hospitalID, err := staffHospitalID(sess)
	if err != nil {
		writeError(w, err)
		return
	}

	beds, err := h.inventory.ListBedsForHospital(r.Context(), hospitalID)
	if err != nil {
		h.logger.Error("Failed to list dashboard beds",
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

// UpdateBed 更新一条床位记录的可用数（一次保存 = 一条记录）
func (h *DashboardHandler) UpdateBed(w http.ResponseWriter, r *http.Request, sess *domain.Session, bedRecordID string) {
	var body struct {
		AvailableBeds *int `json:"available_beds"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil || body.AvailableBeds == nil {
		writeJSON(w, http.StatusBadRequest, Fail("available_beds is required"))
		return
	}

	updated, err := h.inventory.UpdateAvailability(r.Context(), sess, bedRecordID, *body.AvailableBeds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toBedPayload(updated)))
}

// ExportBeds 导出本院床位库存 Excel
func (h *DashboardHandler) ExportBeds(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	hospitalID, err := staffHospitalID(sess)
	if err != nil {
		writeError(w, err)
		return
	}

	beds, err := h.inventory.ListBedsForHospital(r.Context(), hospitalID)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := GenerateBedInventoryExport(beds)
	if err != nil {
		h.logger.Error("Failed to generate bed inventory export",
			zap.String("hospital_id", hospitalID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}

	filename := fmt.Sprintf("bed-inventory-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
