package handler

import (
	"log/slog"
	"net/http"

	"github.com/contactform/backend/pkg/auth"
)

// Routes lists the components mounted by Handler.Routes.
type Routes struct {
	Messages *MessageHandler
	Pages    *PagesHandler
	Gate     auth.Gate
	// RateLimiter guards the public submission endpoint; nil disables it.
	RateLimiter *RateLimiter
	Logger      *slog.Logger
}

// Routes builds the complete HTTP handler: API, pages, fallbacks and the
// middleware chain.
func (h *Handler) Routes(rt Routes) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)

	var create http.Handler = http.HandlerFunc(rt.Messages.Create)
	if rt.RateLimiter != nil {
		create = rt.RateLimiter.Middleware(create)
	}
	mux.Handle("POST /api/message", create)

	// Admin API
	requireAdmin := auth.RequireBearer(rt.Gate)
	mux.Handle("GET /api/messages", requireAdmin(http.HandlerFunc(rt.Messages.List)))
	mux.Handle("PATCH /api/messages/{id}", requireAdmin(http.HandlerFunc(rt.Messages.UpdateStatus)))

	// Pages; the admin pages do their own credential check client-side.
	mux.HandleFunc("GET /{$}", rt.Pages.Page("index.html"))
	mux.HandleFunc("GET /admin", rt.Pages.Page("admin/dashboard.html"))
	mux.HandleFunc("GET /admin/dashboard", rt.Pages.Page("admin/dashboard.html"))
	mux.HandleFunc("GET /admin/login", rt.Pages.Page("admin/login.html"))
	mux.HandleFunc("/", rt.Pages.Static)

	return RequestLogger(Recoverer(rt.Logger)(SecurityHeaders(h.CORS(mux))))
}
