package httpadapter

import (
	"net/http"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type profileRequest struct {
	Nickname string `json:"nickname"`
}

type statusRequest struct {
	Status domain.UserStatus `json:"status"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req port.Registration
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Accounts.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Accounts.Login(r.Context(), req.Phone, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, user)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	user, err := h.svc.Accounts.Profile(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	var req profileRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Accounts.UpdateProfile(r.Context(), userID, req.Nickname)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, user)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Accounts.SetStatus(r.Context(), userID, req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, user)
}

func (h *Handler) handleUserEarnings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	limit, ok := h.queryLimit(w, r)
	if !ok {
		return
	}
	earnings, err := h.svc.Ledger.UserEarnings(r.Context(), userID, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, nonNil(earnings))
}

func (h *Handler) handleUserRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	limit, ok := h.queryLimit(w, r)
	if !ok {
		return
	}
	records, err := h.svc.Ledger.UserViewRecords(r.Context(), userID, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, nonNil(records))
}

// nonNil makes empty listings encode as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
