package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
	"marketplace-ads/internal/metrics"
)

const (
	// MaxSelectLimit caps how many campaigns one ad request may return.
	MaxSelectLimit = 50

	otherPlacement = "other"
)

// SelectCampaigns returns ACTIVE, in-window, unexhausted campaigns the
// viewer matches, newest first. It never writes campaign state; strict
// matches are only reported to the reach estimator.
func (u *AdUseCase) SelectCampaigns(ctx context.Context, req port.SelectionReq) (out []domain.Campaign, err error) {
	ctx, span := u.startSpan(ctx, "SelectCampaigns",
		attribute.String("placement", req.Placement),
		attribute.Int("limit", req.Limit),
	)
	defer func() { endSpan(span, err) }()

	if req.Limit <= 0 {
		return nil, nil
	}
	limit := min(req.Limit, MaxSelectLimit)

	now := u.now()
	candidates, err := u.repo.ListServableCampaigns(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list servable campaigns: %w", err)
	}
	slices.SortStableFunc(candidates, domain.NewestFirst)

	placement := u.placementLabel(req.Placement)
	out = make([]domain.Campaign, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		// The store snapshot may be stale.
		if !c.Servable(now) {
			continue
		}
		if len(out) == limit {
			// Not served, but the strict audience still counts towards reach.
			if c.Targeting.Matches(req.Viewer) {
				u.observeReach(ctx, c, req.Viewer)
			}
			continue
		}
		match := u.matcher.Match(ctx, req.Viewer, c, now)
		if match == domain.NoMatch {
			continue
		}
		if match == domain.StrictMatch {
			u.observeReach(ctx, c, req.Viewer)
		}
		metrics.CampaignsServed.WithLabelValues(placement, match.String()).Inc()
		out = append(out, c)
	}
	span.SetAttributes(attribute.Int("campaigns.selected", len(out)))
	return out, nil
}

// placementLabel keeps the metric label set bounded: placements outside
// the configured list are reported as "other".
func (u *AdUseCase) placementLabel(p string) string {
	if slices.Contains(u.placements, p) {
		return p
	}
	return otherPlacement
}

func (u *AdUseCase) observeReach(ctx context.Context, c domain.Campaign, v domain.Viewer) {
	if u.reach == nil || v.ID == "" || !c.Targeting.ExpandAudience || !c.Targeting.IsTargeted() {
		return
	}
	if err := u.reach.Observe(ctx, c.ID, v.ID, u.now()); err != nil {
		u.logger.Warn("observe reach", slog.String("campaign_id", c.ID), slog.Any("error", err))
	}
}
