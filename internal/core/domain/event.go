package domain

import (
	"time"
)

// ClickEvent is the append-only record of a charged click. The sum of
// ChargedAmount over a campaign's clicks always equals its SpentAmount.
type ClickEvent struct {
	ID            string
	CampaignID    string
	ViewerID      string
	ChargedAmount int64
	CreatedAt     time.Time
}

// StatusChange is one persisted lifecycle transition. From is empty for
// the initial submission.
type StatusChange struct {
	CampaignID string
	From       Status
	To         Status
	Actor      string
	At         time.Time
}
