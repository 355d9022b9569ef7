package port

import (
	"context"
	"time"

	"marketplace-ads/internal/core/domain"
)

// AdUseCase defines the business operations exposed by the campaign
// engine. This interface is the primary port into the application domain;
// transports (HTTP, RPC, CLI) call it with validated input and map the
// domain errors it returns.
type AdUseCase interface {
	// CreateCampaign validates a seller's submission and stores it in
	// PENDING_APPROVAL with nothing spent. It returns a
	// *domain.ValidationError for rejected input.
	CreateCampaign(ctx context.Context, actor domain.Principal, draft domain.CampaignDraft) (*domain.Campaign, error)

	// GetCampaign returns a campaign visible to the owner or an admin,
	// ending it first when its window has closed.
	GetCampaign(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error)

	// ListCampaigns returns campaigns newest first. Sellers only ever see
	// their own campaigns; admins may filter by seller.
	ListCampaigns(ctx context.Context, filter CampaignFilter, actor domain.Principal) ([]domain.Campaign, error)

	ApproveCampaign(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error)
	RejectCampaign(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error)
	PauseCampaign(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error)
	ResumeCampaign(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, id string, actor domain.Principal) error

	// SelectCampaigns returns the campaigns that may be shown to viewer at
	// a placement. It never changes spend or status.
	SelectCampaigns(ctx context.Context, req SelectionReq) ([]domain.Campaign, error)

	// RecordClick bills one click. When the campaign cannot be charged it
	// returns domain.ErrNotEligible together with a result whose
	// LandingURL is still set, because the viewer is always forwarded to
	// the promoted item.
	RecordClick(ctx context.Context, id string, viewer domain.Viewer) (*ClickResult, error)

	// GetStats returns the spend reconciliation report of a campaign.
	GetStats(ctx context.Context, id string, actor domain.Principal) (*StatsResp, error)

	// GetHistory returns the persisted status transitions of a campaign,
	// oldest first.
	GetHistory(ctx context.Context, id string, actor domain.Principal) ([]domain.StatusChange, error)
}

// SelectionReq is an ad request for one placement. Placement is an opaque
// slot name used for observability; it does not narrow the candidates.
type SelectionReq struct {
	Placement string
	Viewer    domain.Viewer
	Limit     int
}

// ClickResult is the post-charge state returned to the click transport.
type ClickResult struct {
	CampaignID      string
	Charged         int64
	RemainingBudget int64
	LandingURL      string
}

// StatsResp reconciles a campaign's stored spend with its click ledger.
// Reconciled is false only if the two sums disagree, which the ledger
// makes unreachable.
type StatsResp struct {
	CampaignID      string
	Clicks          int64
	ChargedTotal    int64
	SpentAmount     int64
	TotalBudget     int64
	RemainingBudget int64
	Reconciled      bool
}

// CampaignFilter narrows ListCampaigns. Zero values mean "any".
type CampaignFilter struct {
	SellerID string
	Status   domain.Status
	// Now makes Status match the effective status at that instant: a
	// campaign whose window closed before Now counts as ENDED whatever its
	// stored status. Zero matches the stored status.
	Now    time.Time
	Limit  int
	Offset int
}
