package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marketplace-ads/internal/core/domain"
)

// handleAdClick bills a click and redirects the viewer to the promoted
// item. The viewer is taken from the viewer_id, country and age query
// parameters. A click that cannot be charged still redirects; only an
// unknown campaign yields 404. Internal errors with no landing page are
// logged and treated as 404 to avoid leaking information.
func (h *Handler) handleAdClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing campaign id", http.StatusBadRequest)
		return
	}
	res, err := h.svc.RecordClick(r.Context(), id, viewerFromQuery(r))
	switch {
	case err == nil, errors.Is(err, domain.ErrNotEligible):
	case errors.Is(err, domain.ErrNotFound):
		http.NotFound(w, r)
		return
	default:
		h.logger.ErrorContext(r.Context(), "click error", slog.String("campaign_id", id), slog.Any("error", err))
	}
	if res == nil || res.LandingURL == "" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, res.LandingURL, http.StatusFound)
}

func viewerFromQuery(r *http.Request) domain.Viewer {
	q := r.URL.Query()
	v := domain.Viewer{ID: q.Get("viewer_id"), Country: q.Get("country")}
	if age, err := strconv.Atoi(q.Get("age")); err == nil && age >= 0 {
		v.Age = &age
	}
	return v
}
