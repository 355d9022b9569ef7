package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"marketplace-ads/internal/core/domain"
)

// maxExpiryAttempts bounds how often lazy expiry re-reads a campaign
// whose status moved under it.
const maxExpiryAttempts = 3

// CreateCampaign validates draft and stores it in PENDING_APPROVAL.
func (u *AdUseCase) CreateCampaign(ctx context.Context, actor domain.Principal, draft domain.CampaignDraft) (c *domain.Campaign, err error) {
	ctx, span := u.startSpan(ctx, "CreateCampaign", attribute.String("seller.id", actor.ID))
	defer func() { endSpan(span, err) }()

	if actor.Role != domain.RoleSeller || actor.ID == "" {
		return nil, domain.ErrForbidden
	}
	if err = draft.Validate(); err != nil {
		return nil, err
	}
	owned, err := u.catalog.ItemExists(ctx, actor.ID, draft.Item)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	if !owned {
		return nil, &domain.ValidationError{Field: "item", Message: "item does not exist or is not owned by the seller"}
	}

	now := u.now()
	c = &domain.Campaign{
		ID:             newID(),
		SellerID:       actor.ID,
		Item:           draft.Item,
		Title:          draft.Title,
		Description:    draft.Description,
		Creative:       draft.Creative,
		TotalBudget:    draft.TotalBudget,
		MaxCPC:         draft.EffectiveMaxCPC(),
		StartAt:        draft.StartAt.UTC(),
		EndAt:          draft.EndAt.UTC(),
		Targeting:      draft.Targeting,
		TargetAudience: draft.TargetAudience,
		Status:         domain.StatusPendingApproval,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	change := domain.StatusChange{
		CampaignID: c.ID,
		To:         domain.StatusPendingApproval,
		Actor:      actor.ID,
		At:         now,
	}
	if err = u.repo.CreateCampaign(ctx, c, change); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	u.publishStatusChange(ctx, change)
	return c, nil
}

func (u *AdUseCase) ApproveCampaign(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error) {
	return u.transition(ctx, id, actor, domain.ActionApprove, requireAdmin)
}

func (u *AdUseCase) RejectCampaign(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error) {
	return u.transition(ctx, id, actor, domain.ActionReject, requireAdmin)
}

func (u *AdUseCase) PauseCampaign(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error) {
	return u.transition(ctx, id, actor, domain.ActionPause, requireOwner)
}

func (u *AdUseCase) ResumeCampaign(ctx context.Context, id string, actor domain.Principal) (*domain.Campaign, error) {
	return u.transition(ctx, id, actor, domain.ActionResume, requireOwner)
}

// DeleteCampaign hard-deletes a campaign that has not ended. Its clicks
// and status history stay in the store.
func (u *AdUseCase) DeleteCampaign(ctx context.Context, id string, actor domain.Principal) (err error) {
	ctx, span := u.startSpan(ctx, "DeleteCampaign", attribute.String("campaign.id", id))
	defer func() { endSpan(span, err) }()

	c, err := u.load(ctx, id)
	if err != nil {
		return err
	}
	if err = requireOwner(actor, c); err != nil {
		return err
	}
	if c, err = u.expireIfDue(ctx, c); err != nil {
		return err
	}
	if err = domain.CanDelete(c.Status); err != nil {
		return fmt.Errorf("delete campaign in %s: %w", c.Status, err)
	}
	deleted, err := u.repo.DeleteCampaign(ctx, id, c.Status)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if !deleted {
		if _, err = u.load(ctx, id); err != nil {
			return err
		}
		return domain.ErrInvalidState
	}
	u.logger.Info("campaign deleted",
		slog.String("campaign_id", id),
		slog.String("status", string(c.Status)),
		slog.String("actor", actor.ID),
	)
	return nil
}

// transition applies action to the campaign after authorize accepts the
// actor. The status write is a compare-and-swap, so of two racing callers
// exactly one succeeds and the other gets ErrInvalidState.
func (u *AdUseCase) transition(ctx context.Context, id string, actor domain.Principal, action domain.Action,
	authorize func(domain.Principal, *domain.Campaign) error,
) (c *domain.Campaign, err error) {
	ctx, span := u.startSpan(ctx, "Transition",
		attribute.String("campaign.id", id),
		attribute.String("campaign.action", string(action)),
	)
	defer func() { endSpan(span, err) }()

	if c, err = u.load(ctx, id); err != nil {
		return nil, err
	}
	if err = authorize(actor, c); err != nil {
		return nil, err
	}
	if c, err = u.expireIfDue(ctx, c); err != nil {
		return nil, err
	}
	to, err := domain.NextStatus(c.Status, action)
	if err != nil {
		return nil, fmt.Errorf("%s campaign in %s: %w", action, c.Status, err)
	}
	change := domain.StatusChange{
		CampaignID: c.ID,
		From:       c.Status,
		To:         to,
		Actor:      actor.ID,
		At:         u.now(),
	}
	updated, err := u.repo.TransitionStatus(ctx, change)
	if err != nil {
		return nil, fmt.Errorf("transition campaign: %w", err)
	}
	if updated == nil {
		if _, err = u.load(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s campaign: status changed concurrently: %w", action, domain.ErrInvalidState)
	}
	u.publishStatusChange(ctx, change)
	return updated, nil
}

// expireIfDue persists the lazy ENDED transition for a campaign whose
// window has closed. Losing the race to another writer re-reads the
// campaign and tries again.
func (u *AdUseCase) expireIfDue(ctx context.Context, c *domain.Campaign) (*domain.Campaign, error) {
	now := u.now()
	for range maxExpiryAttempts {
		if c.Status == domain.StatusEnded || !c.Expired(now) {
			return c, nil
		}
		to, err := domain.NextStatus(c.Status, domain.ActionExpire)
		if err != nil {
			return nil, err
		}
		change := domain.StatusChange{
			CampaignID: c.ID,
			From:       c.Status,
			To:         to,
			Actor:      domain.SystemActor,
			At:         now,
		}
		updated, err := u.repo.TransitionStatus(ctx, change)
		if err != nil {
			return nil, fmt.Errorf("expire campaign: %w", err)
		}
		if updated != nil {
			u.publishStatusChange(ctx, change)
			return updated, nil
		}
		if c, err = u.load(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func requireAdmin(p domain.Principal, _ *domain.Campaign) error {
	if !p.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func requireOwner(p domain.Principal, c *domain.Campaign) error {
	if !p.Owns(c) {
		return domain.ErrForbidden
	}
	return nil
}

func requireOwnerOrAdmin(p domain.Principal, c *domain.Campaign) error {
	if p.IsAdmin() || p.Owns(c) {
		return nil
	}
	return domain.ErrForbidden
}
