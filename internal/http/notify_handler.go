package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"bedfinder-data/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotifyHandler is the contact-notification sink. Responses are raw
// success/error JSON, not the Result envelope, so external callers get a
// stable webhook-style shape. Stateless; the structured log line is the
// only side effect.
type NotifyHandler struct {
	logger *zap.Logger
}

// NewNotifyHandler 创建通知接收 Handler
func NewNotifyHandler(logger *zap.Logger) *NotifyHandler {
	return &NotifyHandler{logger: logger}
}

func notifyCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-Info, Apikey")
}

type notifyResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ServeHTTP 实现 http.Handler 接口
func (h *NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	notifyCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		h.writeFailure(w, http.StatusInternalServerError, "Failed to process contact request")
		return
	}

	var req domain.ContactRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Error("Contact request body decode failed", zap.Error(err))
		h.writeFailure(w, http.StatusInternalServerError, "Failed to process contact request")
		return
	}

	if req.HospitalID == "" || req.PatientName == "" || req.PatientPhone == "" || req.BedType == "" {
		h.writeFailure(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	requestID := uuid.NewString()

	h.logger.Info("Hospital contact request",
		zap.String("request_id", requestID),
		zap.String("hospital_id", req.HospitalID),
		zap.String("patient_name", req.PatientName),
		zap.String("patient_phone", req.PatientPhone),
		zap.String("patient_email", req.PatientEmail),
		zap.String("bed_type", req.BedType),
		zap.String("urgency", req.Urgency),
		zap.String("message", req.Message),
		zap.String("timestamp", timestamp),
	)

	writeJSON(w, http.StatusOK, notifyResponse{
		Success:   true,
		Message:   "Hospital contact request submitted successfully",
		RequestID: requestID,
		Timestamp: timestamp,
	})
}

func (h *NotifyHandler) writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, notifyResponse{Success: false, Error: msg})
}
