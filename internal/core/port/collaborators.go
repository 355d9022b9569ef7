package port

import (
	"context"
	"time"

	"marketplace-ads/internal/core/domain"
)

// Catalog is the marketplace catalog as seen by the campaign engine.
type Catalog interface {
	// ItemExists reports whether item exists and belongs to sellerID.
	ItemExists(ctx context.Context, sellerID string, item domain.ItemRef) (bool, error)
	// ItemURL returns the page a click on a campaign lands on.
	ItemURL(item domain.ItemRef) string
}

// EventPublisher forwards committed engine events downstream. Failures
// never undo the state change that produced the event.
type EventPublisher interface {
	PublishClick(ctx context.Context, click domain.ClickEvent) error
	PublishStatusChange(ctx context.Context, change domain.StatusChange) error
}

// ReachEstimator counts distinct strict-match viewers per campaign over a
// trailing window.
type ReachEstimator interface {
	Observe(ctx context.Context, campaignID, viewerID string, at time.Time) error
	Estimate(ctx context.Context, campaignID string, now time.Time) (int64, error)
}

// ReachPolicy decides whether a campaign's strict audience is too small
// to spend its budget, which lets expandAudience campaigns broaden.
type ReachPolicy interface {
	Insufficient(ctx context.Context, c domain.Campaign, now time.Time) (bool, error)
}
