package usecase

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200

	// maxStatsAttempts bounds re-reads while clicks keep landing between
	// the campaign read and the click totals read.
	maxStatsAttempts = 3
)

// GetCampaign returns a campaign to its owner or an admin.
func (u *AdUseCase) GetCampaign(ctx context.Context, id string, actor domain.Principal) (c *domain.Campaign, err error) {
	ctx, span := u.startSpan(ctx, "GetCampaign", attribute.String("campaign.id", id))
	defer func() { endSpan(span, err) }()

	return u.loadVisible(ctx, id, actor)
}

func (u *AdUseCase) ListCampaigns(ctx context.Context, filter port.CampaignFilter, actor domain.Principal) (out []domain.Campaign, err error) {
	ctx, span := u.startSpan(ctx, "ListCampaigns")
	defer func() { endSpan(span, err) }()

	switch {
	case actor.IsAdmin():
	case actor.Role == domain.RoleSeller && actor.ID != "":
		filter.SellerID = actor.ID
	default:
		return nil, domain.ErrForbidden
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", filter.Status)}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	filter.Limit = min(filter.Limit, maxListLimit)
	filter.Offset = max(filter.Offset, 0)
	// Filter and page on the status each campaign has after lazy expiry,
	// so the result does not depend on which reads persisted it already.
	filter.Now = u.now()

	list, err := u.repo.ListCampaigns(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	out = make([]domain.Campaign, 0, len(list))
	for i := range list {
		c, err := u.expireIfDue(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// GetStats reconciles the stored spend with the click log.
func (u *AdUseCase) GetStats(ctx context.Context, id string, actor domain.Principal) (resp *port.StatsResp, err error) {
	ctx, span := u.startSpan(ctx, "GetStats", attribute.String("campaign.id", id))
	defer func() { endSpan(span, err) }()

	c, err := u.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	var totals port.ClickTotals
	for range maxStatsAttempts {
		if totals, err = u.repo.GetClickTotals(ctx, id); err != nil {
			return nil, fmt.Errorf("click totals: %w", err)
		}
		if totals.Amount == c.SpentAmount {
			break
		}
		if c, err = u.load(ctx, id); err != nil {
			return nil, err
		}
	}
	return &port.StatsResp{
		CampaignID:      c.ID,
		Clicks:          totals.Count,
		ChargedTotal:    totals.Amount,
		SpentAmount:     c.SpentAmount,
		TotalBudget:     c.TotalBudget,
		RemainingBudget: c.Remaining(),
		Reconciled:      totals.Amount == c.SpentAmount,
	}, nil
}

func (u *AdUseCase) GetHistory(ctx context.Context, id string, actor domain.Principal) (out []domain.StatusChange, err error) {
	ctx, span := u.startSpan(ctx, "GetHistory", attribute.String("campaign.id", id))
	defer func() { endSpan(span, err) }()

	if _, err = u.loadVisible(ctx, id, actor); err != nil {
		return nil, err
	}
	out, err = u.repo.ListStatusChanges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	slices.SortStableFunc(out, func(a, b domain.StatusChange) int { return a.At.Compare(b.At) })
	return out, nil
}

func (u *AdUseCase) loadVisible(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error) {
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = requireOwnerOrAdmin(actor, c); err != nil {
		return nil, err
	}
	return u.expireIfDue(ctx, c)
}
