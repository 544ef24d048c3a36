package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes 注册认证路由
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("/auth/api/v1/", h)
}

// RegisterDataRoutes 注册公开读路由（医院搜索/浏览）
func (r *Router) RegisterDataRoutes(h *HospitalsHandler) {
	r.Handle("/data/api/v1/hospitals", h)
	r.Handle("/data/api/v1/hospitals/", h)
	r.Handle("/data/api/v1/cities", h)
}

// RegisterDashboardRoutes 注册院方面板路由（staff 专用）
func (r *Router) RegisterDashboardRoutes(h *DashboardHandler) {
	r.Handle("/dashboard/api/v1/beds", h)
	r.Handle("/dashboard/api/v1/beds/", h)
}

// RegisterContactRoutes 注册联系请求路由
func (r *Router) RegisterContactRoutes(contact *ContactHandler, notify *NotifyHandler) {
	r.Handle("/contact/api/v1/contact-hospital", contact)
	// Sink route: external clients post contact requests here directly.
	r.Handle("/functions/v1/contact-hospital", notify)
}

// RegisterHealthRoute 健康检查
func (r *Router) RegisterHealthRoute() {
	r.mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
