package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
	"marketplace-ads/internal/core/port/mocks"
	"marketplace-ads/internal/metrics"
)

func ids(cs []domain.Campaign) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestSelectNewestFirstAndLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var created []string
	for range 3 {
		c := f.activeCampaign(t, draft())
		created = append(created, c.ID)
		f.clock.Advance(time.Minute)
	}

	got, err := f.svc.SelectCampaigns(ctx, port.SelectionReq{Placement: "home", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{created[2], created[1], created[0]}, ids(got))

	got, err = f.svc.SelectCampaigns(ctx, port.SelectionReq{Placement: "home", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.svc.SelectCampaigns(ctx, port.SelectionReq{Placement: "home", Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectSkipsUnservable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.svc.CreateCampaign(ctx, seller, draft())
	require.NoError(t, err)

	paused := f.activeCampaign(t, draft())
	_, err = f.svc.PauseCampaign(ctx, paused.ID, seller)
	require.NoError(t, err)

	small := draft()
	small.TotalBudget = 10
	exhausted := f.activeCampaign(t, small)
	_, err = f.svc.RecordClick(ctx, exhausted.ID, domain.Viewer{})
	require.NoError(t, err)

	live := f.activeCampaign(t, draft())

	got, err := f.svc.SelectCampaigns(ctx, port.SelectionReq{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{live.ID}, ids(got))
	assert.NotContains(t, ids(got), pending.ID)

	before, _ := f.repo.GetCampaign(ctx, live.ID)
	f.clock.Advance(48 * time.Hour)
	got, err = f.svc.SelectCampaigns(ctx, port.SelectionReq{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got, "expired campaigns are not served")

	after, _ := f.repo.GetCampaign(ctx, live.ID)
	assert.Equal(t, before, after, "selection never mutates campaigns")
}

func usOnly(expand bool) domain.CampaignDraft {
	d := draft()
	d.Targeting = domain.Targeting{Countries: []string{"us"}, ExpandAudience: expand}
	return d
}

func TestSelectTargeting(t *testing.T) {
	ctx := context.Background()
	us := domain.Viewer{ID: "u1", Country: "US"}
	fr := domain.Viewer{ID: "u2", Country: "FR"}

	t.Run("strict", func(t *testing.T) {
		f := newFixture(t)
		c := f.activeCampaign(t, usOnly(false))

		got, err := f.svc.SelectCampaigns(ctx, port.SelectionReq{Viewer: us, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, []string{c.ID}, ids(got))

		got, err = f.svc.SelectCampaigns(ctx, port.SelectionReq{Viewer: fr, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("expand with insufficient reach", func(t *testing.T) {
		policy := mocks.NewMockReachPolicy(t)
		policy.EXPECT().Insufficient(mock.Anything, mock.Anything, t0).Return(true, nil).Once()
		f := newFixture(t, WithReach(nil, policy))
		c := f.activeCampaign(t, usOnly(true))

		got, err := f.svc.SelectCampaigns(ctx, port.SelectionReq{Viewer: fr, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, []string{c.ID}, ids(got))
	})

	t.Run("expand with sufficient reach", func(t *testing.T) {
		policy := mocks.NewMockReachPolicy(t)
		policy.EXPECT().Insufficient(mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
		f := newFixture(t, WithReach(nil, policy))
		f.activeCampaign(t, usOnly(true))

		got, err := f.svc.SelectCampaigns(ctx, port.SelectionReq{Viewer: fr, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("policy failure keeps strict audience", func(t *testing.T) {
		policy := mocks.NewMockReachPolicy(t)
		policy.EXPECT().Insufficient(mock.Anything, mock.Anything, mock.Anything).Return(false, assert.AnError).Once()
		f := newFixture(t, WithReach(nil, policy))
		f.activeCampaign(t, usOnly(true))

		got, err := f.svc.SelectCampaigns(ctx, port.SelectionReq{Viewer: fr, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("strict match feeds reach estimator", func(t *testing.T) {
		est := &recordingEstimator{}
		f := newFixture(t, WithReach(est, nil))
		c := f.activeCampaign(t, usOnly(true))

		_, err := f.svc.SelectCampaigns(ctx, port.SelectionReq{Viewer: us, Limit: 5})
		require.NoError(t, err)
		_, err = f.svc.SelectCampaigns(ctx, port.SelectionReq{Viewer: fr, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, []string{c.ID + "/u1"}, est.seen)
	})

	t.Run("campaigns past the limit still feed reach", func(t *testing.T) {
		est := &recordingEstimator{}
		f := newFixture(t, WithReach(est, nil))
		older := f.activeCampaign(t, usOnly(true))
		f.clock.Advance(time.Minute)
		newer := f.activeCampaign(t, usOnly(true))

		got, err := f.svc.SelectCampaigns(ctx, port.SelectionReq{Viewer: us, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{newer.ID}, ids(got))
		assert.Equal(t, []string{newer.ID + "/u1", older.ID + "/u1"}, est.seen)
	})
}

func TestSelectPlacementLabel(t *testing.T) {
	f := newFixture(t, WithPlacements("home", "search_top"))
	ctx := context.Background()
	f.activeCampaign(t, draft())

	served := func(placement string) float64 {
		return testutil.ToFloat64(metrics.CampaignsServed.WithLabelValues(placement, domain.StrictMatch.String()))
	}
	home, other := served("home"), served(otherPlacement)

	_, err := f.svc.SelectCampaigns(ctx, port.SelectionReq{Placement: "home", Limit: 1})
	require.NoError(t, err)
	_, err = f.svc.SelectCampaigns(ctx, port.SelectionReq{Placement: "slot-8f3a91", Limit: 1})
	require.NoError(t, err)

	assert.Equal(t, home+1, served("home"))
	assert.Equal(t, other+1, served(otherPlacement))
	assert.Equal(t, "search_top", f.svc.placementLabel("search_top"))
	assert.Equal(t, otherPlacement, f.svc.placementLabel("slot-8f3a91"))
	assert.Equal(t, otherPlacement, f.svc.placementLabel(""))
}

type recordingEstimator struct {
	seen []string
}

func (r *recordingEstimator) Observe(_ context.Context, campaignID, viewerID string, _ time.Time) error {
	r.seen = append(r.seen, campaignID+"/"+viewerID)
	return nil
}

func (r *recordingEstimator) Estimate(context.Context, string, time.Time) (int64, error) {
	return int64(len(r.seen)), nil
}

func TestMatcher(t *testing.T) {
	ctx := context.Background()
	m := NewMatcher(nil, nil)
	age := func(v int) *int { return &v }

	c := domain.Campaign{Targeting: domain.Targeting{AgeMin: age(18), AgeMax: age(30)}}
	assert.Equal(t, domain.StrictMatch, m.Match(ctx, domain.Viewer{Age: age(18)}, c, t0))
	assert.Equal(t, domain.StrictMatch, m.Match(ctx, domain.Viewer{Age: age(30)}, c, t0))
	assert.Equal(t, domain.NoMatch, m.Match(ctx, domain.Viewer{Age: age(31)}, c, t0))
	assert.Equal(t, domain.NoMatch, m.Match(ctx, domain.Viewer{}, c, t0))

	untargeted := domain.Campaign{}
	assert.Equal(t, domain.StrictMatch, m.Match(ctx, domain.Viewer{}, untargeted, t0))

	openEnded := domain.Campaign{Targeting: domain.Targeting{AgeMin: age(65)}}
	assert.Equal(t, domain.StrictMatch, m.Match(ctx, domain.Viewer{Age: age(99)}, openEnded, t0))

	c.Targeting.ExpandAudience = true
	assert.Equal(t, domain.NoMatch, m.Match(ctx, domain.Viewer{Age: age(50)}, c, t0), "nil policy never broadens")
}
