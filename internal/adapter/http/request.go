package httpadapter

import (
	"net/http"
)

// handleSelectAds returns the campaigns to render for one ad slot. The
// viewer is described in the body; no authentication is required. An
// empty slot is 204 No Content.
func (h *Handler) handleSelectAds(w http.ResponseWriter, r *http.Request) {
	var req selectAdsRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	campaigns, err := h.svc.SelectCampaigns(r.Context(), req.selection())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(campaigns) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	resp := selectAdsResponse{Ads: make([]adResponse, 0, len(campaigns))}
	for _, c := range campaigns {
		resp.Ads = append(resp.Ads, toAdResponse(c))
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}
