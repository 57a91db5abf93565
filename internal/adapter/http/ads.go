package httpadapter

import (
	"net/http"

	"adreward/internal/core/port"
)

// handleListAds returns the ads a user can watch right now.
func (h *Handler) handleListAds(w http.ResponseWriter, r *http.Request) {
	ads, err := h.svc.Ads.ListAds(r.Context(), true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, nonNil(ads))
}

func (h *Handler) handleListAllAds(w http.ResponseWriter, r *http.Request) {
	ads, err := h.svc.Ads.ListAds(r.Context(), false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, nonNil(ads))
}

func (h *Handler) handleGetAd(w http.ResponseWriter, r *http.Request) {
	adID, ok := h.pathID(w, r, "adID")
	if !ok {
		return
	}
	ad, err := h.svc.Ads.GetAd(r.Context(), adID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, ad)
}

func (h *Handler) handleCreateAd(w http.ResponseWriter, r *http.Request) {
	var in port.AdInput
	if !h.decode(w, r, &in) {
		return
	}
	ad, err := h.svc.Ads.CreateAd(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, ad)
}

func (h *Handler) handleUpdateAd(w http.ResponseWriter, r *http.Request) {
	adID, ok := h.pathID(w, r, "adID")
	if !ok {
		return
	}
	var patch port.AdPatch
	if !h.decode(w, r, &patch) {
		return
	}
	ad, err := h.svc.Ads.UpdateAd(r.Context(), adID, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, ad)
}
