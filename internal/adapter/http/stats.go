package httpadapter

import "net/http"

func (h *Handler) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	stats, err := h.svc.Stats.UserStats(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, stats)
}

func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats.PlatformStats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, stats)
}

func (h *Handler) handleRealTime(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats.RealTime(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, stats)
}

func (h *Handler) handleAdPerformance(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats.AdPerformance(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, nonNil(stats))
}

func (h *Handler) handleAdStats(w http.ResponseWriter, r *http.Request) {
	adID, ok := h.pathID(w, r, "adID")
	if !ok {
		return
	}
	stats, err := h.svc.Stats.AdStats(r.Context(), adID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, stats)
}

// handleIncomeReport groups earnings between the from and to query
// parameters, both YYYY-MM-DD and inclusive.
func (h *Handler) handleIncomeReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.svc.Stats.IncomeReport(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, report)
}
