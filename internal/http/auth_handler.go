package httpapi

import (
	"database/sql"
	"net/http"

	"bedfinder-data/internal/domain"
	"bedfinder-data/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 认证授权 Handler
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler 创建认证授权 Handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/api/v1/signup":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SignUp(w, r)
	case "/auth/api/v1/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Login(w, r)
	case "/auth/api/v1/logout":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Logout(w, r)
	case "/auth/api/v1/forgot-password":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ForgotPassword(w, r)
	case "/auth/api/v1/reset-password":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ResetPassword(w, r)
	case "/auth/api/v1/session":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Session(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// sessionPayload is the wire shape of a resolved session.
type sessionPayload struct {
	AccessToken string          `json:"accessToken,omitempty"`
	UserID      string          `json:"userId"`
	Email       string          `json:"email"`
	Profile     *profilePayload `json:"profile"`
}

type profilePayload struct {
	ID         string  `json:"id"`
	Role       string  `json:"role"`
	HospitalID *string `json:"hospital_id"`
	Phone      *string `json:"phone"`
	FullName   *string `json:"full_name"`
	AvatarURL  *string `json:"avatar_url"`
}

func toSessionPayload(sess *domain.Session, includeToken bool) sessionPayload {
	p := sessionPayload{
		UserID: sess.Identity.UserID,
		Email:  sess.Identity.Email,
	}
	if includeToken {
		p.AccessToken = sess.Identity.Token
	}
	if sess.Profile != nil {
		p.Profile = &profilePayload{
			ID:         sess.Profile.ID,
			Role:       sess.Profile.Role,
			HospitalID: nullToPtr(sess.Profile.HospitalID),
			Phone:      nullToPtr(sess.Profile.Phone),
			FullName:   nullToPtr(sess.Profile.FullName),
			AvatarURL:  nullToPtr(sess.Profile.AvatarURL),
		}
	}
	return p
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// SignUp 注册
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	sess, err := h.authService.SignUp(r.Context(), service.SignUpRequest{
		Email:    body.Email,
		Password: body.Password,
		FullName: body.FullName,
		Phone:    body.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toSessionPayload(sess, true)))
}

// Login 登录
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	sess, err := h.authService.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toSessionPayload(sess, true)))
}

// Logout 注销：无条件成功
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	_ = h.authService.SignOut(r.Context(), bearerToken(r))
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"signedOut": true}))
}

// ForgotPassword 发起密码重置：不暴露邮箱是否存在
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.authService.ResetPassword(r.Context(), body.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{
		"message": "If the email exists, a reset link has been sent",
	}))
}

// ResetPassword 用重置令牌设置新口令
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.authService.CompleteReset(r.Context(), body.Token, body.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"reset": true}))
}

// Session 返回当前会话（依赖视图在此之后才渲染 ready）
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.authService.Resolve(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toSessionPayload(sess, false)))
}
