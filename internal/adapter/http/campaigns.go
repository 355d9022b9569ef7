package httpadapter

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.CreateCampaign(r.Context(), principalFrom(r.Context()), req.draft())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/campaigns/"+c.ID)
	writeJSON(w, http.StatusCreated, toCampaignResponse(c), h.logger)
}

// handleListCampaigns accepts optional seller_id (admins only), status,
// limit and offset query parameters.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := port.CampaignFilter{
		SellerID: q.Get("seller_id"),
		Status:   domain.Status(q.Get("status")),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, r, &domain.ValidationError{Field: name, Message: name + " must be a non-negative integer"})
			return
		}
		*dst = n
	}

	list, err := h.svc.ListCampaigns(r.Context(), filter, principalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := campaignListResponse{Campaigns: make([]campaignResponse, 0, len(list))}
	for i := range list {
		resp.Campaigns = append(resp.Campaigns, toCampaignResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCampaign(r.Context(), chi.URLParam(r, "id"), principalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaignResponse(c), h.logger)
}

func (h *Handler) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCampaign(r.Context(), chi.URLParam(r, "id"), principalFrom(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transitionFunc func(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error)

// handleTransition serves the approve, reject, pause and resume commands,
// which share a shape and differ only in the usecase call.
func (h *Handler) handleTransition(apply transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := apply(r.Context(), chi.URLParam(r, "id"), principalFrom(r.Context()))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCampaignResponse(c), h.logger)
	}
}
