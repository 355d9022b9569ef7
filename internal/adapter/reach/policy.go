// Package reach estimates how many strict-match viewers a campaign
// reaches and decides when expandAudience campaigns may broaden.
package reach

import (
	"context"
	"fmt"
	"math"
	"time"

	"marketplace-ads/internal/config/configs"
	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

// EstimatePolicy reports reach as insufficient while the estimated strict
// audience over the window is below MinRatio of the campaign's declared
// target audience, or below MinViewers when none was declared.
type EstimatePolicy struct {
	estimator  port.ReachEstimator
	minRatio   float64
	minViewers int64
}

var _ port.ReachPolicy = (*EstimatePolicy)(nil)

func NewEstimatePolicy(estimator port.ReachEstimator, cfg configs.Reach) *EstimatePolicy {
	return &EstimatePolicy{estimator: estimator, minRatio: cfg.MinRatio, minViewers: cfg.MinViewers}
}

func (p *EstimatePolicy) Threshold(c domain.Campaign) int64 {
	if c.TargetAudience != nil {
		return int64(math.Ceil(float64(*c.TargetAudience) * p.minRatio))
	}
	return p.minViewers
}

func (p *EstimatePolicy) Insufficient(ctx context.Context, c domain.Campaign, now time.Time) (bool, error) {
	threshold := p.Threshold(c)
	if threshold <= 0 {
		return false, nil
	}
	reached, err := p.estimator.Estimate(ctx, c.ID, now)
	if err != nil {
		return false, fmt.Errorf("estimate reach of %s: %w", c.ID, err)
	}
	return reached < threshold, nil
}
