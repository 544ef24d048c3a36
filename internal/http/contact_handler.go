package httpapi

import (
	"net/http"

	"bedfinder-data/internal/domain"
	"bedfinder-data/internal/service"

	"go.uber.org/zap"
)

// ContactHandler 联系请求分发 Handler
// Requires an authenticated identity; the dispatcher itself does not check.
type ContactHandler struct {
	authService    service.AuthService
	contactService service.ContactService
	logger         *zap.Logger
}

// NewContactHandler 创建联系请求 Handler
func NewContactHandler(authService service.AuthService, contactService service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		authService:    authService,
		contactService: contactService,
		logger:         logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/contact/api/v1/contact-hospital" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token := bearerToken(r)
	if _, err := h.authService.Resolve(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	var req domain.ContactRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	ack, err := h.contactService.ContactHospital(r.Context(), token, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(ack))
}
