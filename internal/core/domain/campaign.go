package domain

import (
	"strings"
	"time"
)

// Status is the stored lifecycle state of a campaign.
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusActive          Status = "ACTIVE"
	StatusPaused          Status = "PAUSED"
	StatusEnded           Status = "ENDED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusActive, StatusPaused, StatusEnded:
		return true
	}
	return false
}

// CreativeType is the media kind of a campaign creative.
type CreativeType string

const (
	CreativeImage CreativeType = "IMAGE"
	CreativeVideo CreativeType = "VIDEO"
)

// Creative is the advertisement shown to viewers. URL is an opaque
// reference owned by creative storage; the engine never resolves it.
type Creative struct {
	Type CreativeType
	URL  string
}

// ItemKind distinguishes the two kinds of promotable catalog items.
type ItemKind string

const (
	ItemProduct ItemKind = "product"
	ItemService ItemKind = "service"
)

// ItemRef points at exactly one product or one service. A campaign
// promotes a single item, so the kind makes "both" and "neither"
// unrepresentable.
type ItemRef struct {
	Kind ItemKind
	ID   string
}

// Campaign is a seller's paid CPC promotion of one catalog item.
// Money is stored in integer minor units (e.g. cents).
type Campaign struct {
	ID          string
	SellerID    string
	Item        ItemRef
	Title       string
	Description string
	Creative    Creative

	TotalBudget int64
	SpentAmount int64
	MaxCPC      int64 // fixed at creation

	StartAt time.Time
	EndAt   time.Time

	Targeting      Targeting
	TargetAudience *int64 // estimate of addressable viewers

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remaining returns the unspent part of the budget, never negative.
func (c *Campaign) Remaining() int64 {
	if r := c.TotalBudget - c.SpentAmount; r > 0 {
		return r
	}
	return 0
}

// Exhausted reports whether no budget is left to charge.
func (c *Campaign) Exhausted() bool {
	return c.SpentAmount >= c.TotalBudget
}

// InWindow reports whether now lies within [StartAt, EndAt].
func (c *Campaign) InWindow(now time.Time) bool {
	return !now.Before(c.StartAt) && !now.After(c.EndAt)
}

// Expired reports whether the campaign window closed before now.
func (c *Campaign) Expired(now time.Time) bool {
	return c.EndAt.Before(now)
}

// EffectiveStatus is the stored status with lazy expiry applied: ENDED
// once the window has closed, even before that is persisted.
func (c *Campaign) EffectiveStatus(now time.Time) Status {
	if c.Expired(now) {
		return StatusEnded
	}
	return c.Status
}

// Servable is the derived "can be shown and charged" predicate: stored
// status ACTIVE, inside its window and with budget remaining. Time and
// budget expiry are evaluated here rather than persisted.
func (c *Campaign) Servable(now time.Time) bool {
	return c.Status == StatusActive && c.InWindow(now) && !c.Exhausted()
}

// ComputeCharge returns the amount a single click costs the campaign:
// the bid, capped by what is left of the budget. It is zero once the
// budget is exhausted, so spend can never pass TotalBudget.
func ComputeCharge(c Campaign) int64 {
	charge := min(c.MaxCPC, c.TotalBudget-c.SpentAmount)
	if charge < 0 {
		return 0
	}
	return charge
}

// NewestFirst orders campaigns by creation time descending, breaking ties
// by id. It is the serving order of ad selection and campaign listings.
func NewestFirst(a, b Campaign) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
