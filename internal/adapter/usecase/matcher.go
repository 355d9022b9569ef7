package usecase

import (
	"context"
	"log/slog"
	"time"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

// Matcher classifies a viewer against a campaign's targeting. Viewers
// outside the strict audience are broadened only for campaigns that opted
// into expansion and only while the reach policy reports the strict
// audience as too small. A nil policy never broadens.
type Matcher struct {
	policy port.ReachPolicy
	logger *slog.Logger
}

func NewMatcher(policy port.ReachPolicy, logger *slog.Logger) *Matcher {
	return &Matcher{policy: policy, logger: logger}
}

func (m *Matcher) Match(ctx context.Context, v domain.Viewer, c domain.Campaign, now time.Time) domain.MatchResult {
	if !c.Targeting.IsTargeted() || c.Targeting.Matches(v) {
		return domain.StrictMatch
	}
	if !c.Targeting.ExpandAudience || m.policy == nil {
		return domain.NoMatch
	}
	insufficient, err := m.policy.Insufficient(ctx, c, now)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("reach policy failed", slog.String("campaign_id", c.ID), slog.Any("error", err))
		}
		return domain.NoMatch
	}
	if insufficient {
		return domain.BroadenedMatch
	}
	return domain.NoMatch
}
