package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"adreward/internal/core/domain"
)

type startViewRequest struct {
	AdID int64 `json:"adId"`
}

// handleStartView opens a view session for the user on the ad in the
// body. Ineligible ads are answered with 409 and the reason.
func (h *Handler) handleStartView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	var req startViewRequest
	if !h.decode(w, r, &req) {
		return
	}
	start, err := h.svc.Views.StartView(r.Context(), req.AdID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, start)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	p, err := h.svc.Views.Session(userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, p)
}

// handleClick records the click on the user's current ad. With the
// automatic countdown enabled the click that started the view also starts
// ticking the session on the server.
func (h *Handler) handleClick(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	p, err := h.svc.Views.Click(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if h.countdown != nil && p.Started {
		go h.runCountdown(userID)
	}
	h.respond(w, http.StatusOK, p)
}

func (h *Handler) runCountdown(userID int64) {
	err := h.svc.Views.RunCountdown(h.countdown, userID)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrNoActiveSession) {
		return
	}
	// The client learns the outcome by polling the session or its records.
	h.logger.Info("countdown ended without credit",
		slog.Int64("user_id", userID),
		slog.String("reason", err.Error()))
}

// handleTick advances a client-driven countdown. Sessions ticked by the
// server answer 409.
func (h *Handler) handleTick(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	p, err := h.svc.Views.Tick(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, p)
}

// handleCompleteView credits the current view. Completing too early is
// answered with 422 and the failed attempt is recorded.
func (h *Handler) handleCompleteView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	res, err := h.svc.Views.CompleteView(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, res)
}

func (h *Handler) handleCancelView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.svc.Views.CancelView(r.Context(), userID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
