package httpadapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"adreward/internal/core/port"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Views       port.ViewUseCase
	Ledger      port.LedgerUseCase
	Stats       port.StatsUseCase
	Accounts    port.AccountUseCase
	Ads         port.AdUseCase
	Maintenance port.MaintenanceUseCase
}

// Handler contains dependencies and routes. It is an inbound adapter for HTTP
// serving the watch-and-earn UI and the admin console. Routes are registered
// on a chi.Router for convenient method handling.
type Handler struct {
	svc    Services
	logger *slog.Logger
	router chi.Router

	// countdown, when set, is the lifetime of server-driven countdowns
	// started on click.
	countdown context.Context
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc Services, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, h.logRequests, middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", h.handleRegister)
		r.Post("/sessions", h.handleLogin)

		r.Get("/ads", h.handleListAds)
		r.Get("/ads/{adID}", h.handleGetAd)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", h.handleProfile)
			r.Patch("/", h.handleUpdateProfile)
			r.Get("/stats", h.handleUserStats)
			r.Get("/earnings", h.handleUserEarnings)
			r.Get("/records", h.handleUserRecords)

			r.Post("/views", h.handleStartView)
			r.Route("/views/current", func(r chi.Router) {
				r.Get("/", h.handleSession)
				r.Delete("/", h.handleCancelView)
				r.Post("/click", h.handleClick)
				r.Post("/tick", h.handleTick)
				r.Post("/complete", h.handleCompleteView)
			})
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/overview", h.handleStatsOverview)
			r.Get("/realtime", h.handleRealTime)
			r.Get("/ads", h.handleAdPerformance)
			r.Get("/ads/{adID}", h.handleAdStats)
			r.Get("/income", h.handleIncomeReport)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/ads", h.handleListAllAds)
			r.Post("/ads", h.handleCreateAd)
			r.Patch("/ads/{adID}", h.handleUpdateAd)
			r.Patch("/users/{userID}/status", h.handleSetStatus)
			r.Post("/maintenance/daily-reset", h.handleDailyReset)
		})
	})
	h.router = r
	return h
}

// AutoCountdown makes a click start a server-side countdown that runs
// until the view ends or ctx is done.
func (h *Handler) AutoCountdown(ctx context.Context) {
	h.countdown = ctx
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
