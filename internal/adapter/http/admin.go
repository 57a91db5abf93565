package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	"adreward/internal/core/domain"
)

const adminRealm = "adreward admin"

// requireAdmin checks HTTP basic credentials against the admin accounts.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			h.unauthorized(w)
			return
		}
		admin, err := h.svc.Accounts.AdminLogin(r.Context(), username, password)
		if errors.Is(err, domain.ErrUnauthorized) {
			h.unauthorized(w)
			return
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.logger.Debug("admin request",
			slog.String("admin", admin.Username),
			slog.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+adminRealm+`"`)
	h.respond(w, http.StatusUnauthorized, errorResponse{Error: domain.ErrAdminUnauthorized.Error()})
}

func (h *Handler) handleDailyReset(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Maintenance.Reset(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, report)
}
