package service

import (
	"context"
	"fmt"
	"time"

	"bedfinder-data/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ContactService 联系请求分发服务接口
type ContactService interface {
	// ContactHospital relays a patient's contact intent to the notification
	// endpoint with the caller's bearer token. No idempotency: duplicate
	// submissions produce duplicate acknowledgments.
	ContactHospital(ctx context.Context, token string, req domain.ContactRequest) (*domain.ContactAck, error)
}

type contactService struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewContactService 创建联系请求分发服务
// baseURL is the notification endpoint host; the sink path is fixed.
func NewContactService(baseURL string, logger *zap.Logger) ContactService {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &contactService{
		httpClient: client,
		logger:     logger,
	}
}

type notifyError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ContactHospital 校验并转发联系请求
func (s *contactService) ContactHospital(ctx context.Context, token string, req domain.ContactRequest) (*domain.ContactAck, error) {
	if req.HospitalID == "" || req.PatientName == "" || req.PatientPhone == "" || req.BedType == "" {
		return nil, fmt.Errorf("%w: hospitalId, patientName, patientPhone and bedType are required", domain.ErrValidation)
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyEmergency
	}
	if !domain.ValidUrgency(req.Urgency) {
		return nil, fmt.Errorf("%w: unknown urgency %q", domain.ErrValidation, req.Urgency)
	}

	var ack domain.ContactAck
	var failure notifyError
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(req).
		SetResult(&ack).
		SetError(&failure).
		Post("/functions/v1/contact-hospital")
	if err != nil {
		s.logger.Error("Contact dispatch failed",
			zap.String("hospital_id", req.HospitalID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrDispatch, err)
	}

	if resp.IsError() {
		reason := failure.Error
		if reason == "" {
			reason = resp.Status()
		}
		s.logger.Error("Contact dispatch rejected",
			zap.String("hospital_id", req.HospitalID),
			zap.Int("status", resp.StatusCode()),
			zap.String("reason", reason),
		)
		return nil, fmt.Errorf("%w: %s", domain.ErrDispatch, reason)
	}

	s.logger.Info("Contact request dispatched",
		zap.String("hospital_id", req.HospitalID),
		zap.String("bed_type", req.BedType),
		zap.String("urgency", req.Urgency),
		zap.String("request_id", ack.RequestID),
	)
	return &ack, nil
}
