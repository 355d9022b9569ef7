package port

import (
	"context"
	"errors"
	"time"

	"marketplace-ads/internal/core/domain"
)

// ErrChargeConflict is returned by stores using optimistic concurrency
// when a charge keeps losing the race for the same campaign.
var ErrChargeConflict = errors.New("charge conflict: retries exhausted")

// ChargeFunc decides the click to record for the current, freshly read
// state of a campaign. Returning a nil event records nothing; returning an
// error aborts the charge without writing.
type ChargeFunc func(c domain.Campaign) (*domain.ClickEvent, error)

// ChargeOutcome is the campaign state after a charge attempt and the
// click that was recorded, if any.
type ChargeOutcome struct {
	Campaign domain.Campaign
	Click    *domain.ClickEvent
}

// ClickTotals aggregates the click ledger of one campaign.
type ClickTotals struct {
	Count  int64
	Amount int64
}

// CampaignRepository defines the persistence layer for the campaign
// engine. It is an outbound port in hexagonal architecture.
// Implementations must be concurrency-safe: ChargeClick is linearizable
// per campaign and TransitionStatus is a compare-and-swap on status.
// Lookups of missing campaigns return nil without an error.
type CampaignRepository interface {
	// CreateCampaign stores a new campaign together with its initial
	// status change.
	CreateCampaign(ctx context.Context, c *domain.Campaign, change domain.StatusChange) error
	// GetCampaign returns a campaign by id.
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	// ListCampaigns returns campaigns matching filter, newest first.
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, error)
	// ListServableCampaigns returns ACTIVE campaigns whose window contains
	// now and whose budget is not exhausted, newest first with ties broken
	// by id. The result may be a slightly stale snapshot.
	ListServableCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error)
	// TransitionStatus moves a campaign from change.From to change.To and
	// appends change to its history, atomically. It returns nil when the
	// campaign no longer exists or is no longer in change.From.
	TransitionStatus(ctx context.Context, change domain.StatusChange) (*domain.Campaign, error)
	// DeleteCampaign removes a campaign that is still in status expected.
	// It reports false when the campaign is gone or its status moved.
	// Click events and status history are kept.
	DeleteCampaign(ctx context.Context, id string, expected domain.Status) (bool, error)
	// ChargeClick runs charge against the current campaign state in a
	// per-campaign critical section and, when charge returns an event,
	// adds its amount to the spend and records it in the same atomic
	// step. It returns nil when the campaign does not exist.
	ChargeClick(ctx context.Context, campaignID string, charge ChargeFunc) (*ChargeOutcome, error)
	// GetClickTotals returns the click count and charged sum of a campaign.
	GetClickTotals(ctx context.Context, campaignID string) (ClickTotals, error)
	// ListStatusChanges returns the status history of a campaign, oldest
	// first.
	ListStatusChanges(ctx context.Context, campaignID string) ([]domain.StatusChange, error)
}
