package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleCampaignStats reconciles a campaign's spend against its clicks.
func (h *Handler) handleCampaignStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context(), chi.URLParam(r, "id"), principalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		CampaignID:      stats.CampaignID,
		Clicks:          stats.Clicks,
		ChargedTotal:    stats.ChargedTotal,
		SpentAmount:     stats.SpentAmount,
		TotalBudget:     stats.TotalBudget,
		RemainingBudget: stats.RemainingBudget,
		Reconciled:      stats.Reconciled,
	}, h.logger)
}

func (h *Handler) handleCampaignHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	changes, err := h.svc.GetHistory(r.Context(), id, principalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := historyResponse{CampaignID: id, Changes: make([]statusChangeResponse, 0, len(changes))}
	for _, c := range changes {
		resp.Changes = append(resp.Changes, statusChangeResponse{From: c.From, To: c.To, Actor: c.Actor, At: c.At})
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}
