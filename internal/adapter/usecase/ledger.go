package usecase

import (
	"context"
	"time"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

// ChargeResult is the outcome of charging one click. Charged is zero and
// Click nil when the budget was already exhausted.
type ChargeResult struct {
	Charged    int64
	SpentAfter int64
	Remaining  int64
	Exhausted  bool
	Click      *domain.ClickEvent
	Campaign   domain.Campaign
}

// Ledger turns clicks into charges against a campaign budget. The
// read-compute-write runs inside the store's per-campaign critical
// section, so concurrent clicks never overspend and the click log always
// sums to the stored spend.
type Ledger struct {
	repo port.CampaignRepository
	now  func() time.Time
}

func NewLedger(repo port.CampaignRepository, now func() time.Time) *Ledger {
	return &Ledger{repo: repo, now: now}
}

// ChargeClick bills the next click of campaignID. guard sees the fresh
// campaign state before any charge is computed; its error aborts the
// charge and is returned unchanged. A missing campaign yields
// domain.ErrNotFound.
func (l *Ledger) ChargeClick(ctx context.Context, campaignID, viewerID string, guard func(domain.Campaign) error) (*ChargeResult, error) {
	outcome, err := l.repo.ChargeClick(ctx, campaignID, func(c domain.Campaign) (*domain.ClickEvent, error) {
		if guard != nil {
			if err := guard(c); err != nil {
				return nil, err
			}
		}
		amount := domain.ComputeCharge(c)
		if amount == 0 {
			return nil, nil
		}
		return &domain.ClickEvent{
			ID:            newID(),
			CampaignID:    c.ID,
			ViewerID:      viewerID,
			ChargedAmount: amount,
			CreatedAt:     l.now(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, domain.ErrNotFound
	}

	res := &ChargeResult{
		SpentAfter: outcome.Campaign.SpentAmount,
		Remaining:  outcome.Campaign.Remaining(),
		Exhausted:  outcome.Campaign.Exhausted(),
		Click:      outcome.Click,
		Campaign:   outcome.Campaign,
	}
	if outcome.Click != nil {
		res.Charged = outcome.Click.ChargedAmount
	}
	return res, nil
}
