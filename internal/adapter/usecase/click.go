package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
	"marketplace-ads/internal/metrics"
)

// RecordClick re-validates the campaign and bills the click through the
// ledger. Refused clicks return domain.ErrNotEligible with a result that
// still carries the landing URL; nothing is written for them.
func (u *AdUseCase) RecordClick(ctx context.Context, id string, viewer domain.Viewer) (res *port.ClickResult, err error) {
	ctx, span := u.startSpan(ctx, "RecordClick", attribute.String("campaign.id", id))
	defer func() { endSpan(span, err) }()

	now := u.now()
	var seen *domain.Campaign
	charge, err := u.ledger.ChargeClick(ctx, id, viewer.ID, func(c domain.Campaign) error {
		seen = &c
		if c.Status != domain.StatusActive || !c.InWindow(now) {
			return domain.ErrNotEligible
		}
		return nil
	})

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, err
	case errors.Is(err, domain.ErrNotEligible):
		return u.refuseClick(seen, "status or window")
	case err != nil:
		if seen != nil {
			return u.landing(seen), fmt.Errorf("charge click: %w", err)
		}
		return nil, fmt.Errorf("charge click: %w", err)
	case charge.Click == nil:
		return u.refuseClick(&charge.Campaign, "budget exhausted")
	}

	metrics.ClicksCharged.Inc()
	metrics.ClickChargeAmount.Add(float64(charge.Charged))
	u.logger.Debug("click charged",
		slog.String("campaign_id", id),
		slog.Int64("charged", charge.Charged),
		slog.Int64("remaining", charge.Remaining),
	)
	u.publishClick(ctx, *charge.Click)

	res = u.landing(&charge.Campaign)
	res.Charged = charge.Charged
	return res, nil
}

func (u *AdUseCase) refuseClick(c *domain.Campaign, reason string) (*port.ClickResult, error) {
	metrics.ClicksNotEligible.Inc()
	u.logger.Debug("click not charged", slog.String("campaign_id", c.ID), slog.String("reason", reason))
	return u.landing(c), domain.ErrNotEligible
}

func (u *AdUseCase) landing(c *domain.Campaign) *port.ClickResult {
	return &port.ClickResult{
		CampaignID:      c.ID,
		RemainingBudget: c.Remaining(),
		LandingURL:      u.catalog.ItemURL(c.Item),
	}
}
