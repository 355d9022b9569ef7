package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port/mocks"
)

func TestCreateCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.CreateCampaign(ctx, seller, draft())
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, domain.StatusPendingApproval, c.Status)
	assert.Zero(t, c.SpentAmount)
	assert.Equal(t, int64(10), c.MaxCPC)
	assert.Equal(t, seller.ID, c.SellerID)

	history, err := f.svc.GetHistory(ctx, c.ID, seller)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.Status(""), history[0].From)
	assert.Equal(t, domain.StatusPendingApproval, history[0].To)
}

func TestCreateCampaignDerivesMaxCPC(t *testing.T) {
	f := newFixture(t)
	d := draft()
	d.MaxCPC = nil
	d.TotalBudget = 1000
	d.TargetAudience = int64Ptr(300)

	c, err := f.svc.CreateCampaign(context.Background(), seller, d)
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.MaxCPC) // ceil(1000 / 300)
}

func TestCreateCampaignRejects(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*domain.CampaignDraft)
		field string
	}{
		{"end before start", func(d *domain.CampaignDraft) { d.EndAt = d.StartAt }, "end_at"},
		{"zero budget", func(d *domain.CampaignDraft) { d.TotalBudget = 0 }, "total_budget"},
		{"cpc above budget", func(d *domain.CampaignDraft) { d.MaxCPC = int64Ptr(101) }, "max_cpc"},
		{"zero cpc", func(d *domain.CampaignDraft) { d.MaxCPC = int64Ptr(0) }, "max_cpc"},
		{"age range inverted", func(d *domain.CampaignDraft) {
			d.Targeting.AgeMin, d.Targeting.AgeMax = intPtr(40), intPtr(30)
		}, "target_age"},
		{"missing creative", func(d *domain.CampaignDraft) { d.Creative.URL = "" }, "creative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			d := draft()
			tc.edit(&d)
			_, err := f.svc.CreateCampaign(context.Background(), seller, d)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCreateCampaignItemNotOwned(t *testing.T) {
	f := newFixture(t)
	f.catalog.EXPECT().
		ItemExists(mock.Anything, other.ID, mock.Anything).
		Return(false, nil)

	_, err := f.svc.CreateCampaign(context.Background(), other, draft())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "item", verr.Field)

	_, err = f.svc.CreateCampaign(context.Background(), admin, draft())
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApproveTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCampaign(ctx, seller, draft())
	require.NoError(t, err)

	approved, err := f.svc.ApproveCampaign(ctx, c.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, approved.Status)

	_, err = f.svc.ApproveCampaign(ctx, c.ID, admin)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRacingAdminsExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCampaign(ctx, seller, draft())
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		invalid int
	)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = f.svc.ApproveCampaign(ctx, c.ID, admin)
			} else {
				_, err = f.svc.RejectCampaign(ctx, c.ID, admin)
			}
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidState)
				invalid++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 9, invalid)
}

func TestLifecycleGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCampaign(ctx, seller, draft())
	require.NoError(t, err)

	_, err = f.svc.ApproveCampaign(ctx, c.ID, seller)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.PauseCampaign(ctx, c.ID, seller)
	require.ErrorIs(t, err, domain.ErrInvalidState, "pending campaigns cannot be paused")

	_, err = f.svc.ApproveCampaign(ctx, c.ID, admin)
	require.NoError(t, err)

	_, err = f.svc.PauseCampaign(ctx, c.ID, other)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.PauseCampaign(ctx, c.ID, admin)
	require.ErrorIs(t, err, domain.ErrForbidden)

	paused, err := f.svc.PauseCampaign(ctx, c.ID, seller)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, paused.Status)

	_, err = f.svc.PauseCampaign(ctx, c.ID, seller)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	resumed, err := f.svc.ResumeCampaign(ctx, c.ID, seller)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, resumed.Status)

	_, err = f.svc.ApproveCampaign(ctx, "missing", admin)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteEndedCampaignFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCampaign(ctx, seller, draft())
	require.NoError(t, err)
	_, err = f.svc.RejectCampaign(ctx, c.ID, admin)
	require.NoError(t, err)

	err = f.svc.DeleteCampaign(ctx, c.ID, seller)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	still, err := f.svc.GetCampaign(ctx, c.ID, seller)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, still.Status)
}

func TestDeleteCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.activeCampaign(t, draft())
	_, err := f.svc.RecordClick(ctx, c.ID, domain.Viewer{ID: "v1"})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DeleteCampaign(ctx, c.ID, other), domain.ErrForbidden)
	require.NoError(t, f.svc.DeleteCampaign(ctx, c.ID, seller))

	_, err = f.svc.GetCampaign(ctx, c.ID, seller)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, f.svc.DeleteCampaign(ctx, c.ID, seller), domain.ErrNotFound)

	totals, err := f.repo.GetClickTotals(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), totals.Amount, "click log survives deletion")
}

func TestLazyExpiryPersistsEnded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.activeCampaign(t, draft())

	f.clock.Advance(25 * time.Hour)

	got, err := f.svc.GetCampaign(ctx, c.ID, seller)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, got.Status)

	_, err = f.svc.PauseCampaign(ctx, c.ID, seller)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	history, err := f.svc.GetHistory(ctx, c.ID, admin)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, domain.StatusActive, last.From)
	assert.Equal(t, domain.StatusEnded, last.To)
	assert.Equal(t, domain.SystemActor, last.Actor)
}

func TestHistoryOnlyHoldsLegalTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.activeCampaign(t, draft())

	_, _ = f.svc.PauseCampaign(ctx, c.ID, seller)
	_, _ = f.svc.PauseCampaign(ctx, c.ID, seller)
	_, _ = f.svc.ApproveCampaign(ctx, c.ID, admin)
	_, _ = f.svc.ResumeCampaign(ctx, c.ID, seller)
	_, _ = f.svc.RejectCampaign(ctx, c.ID, admin)
	f.clock.Advance(48 * time.Hour)
	_, _ = f.svc.ResumeCampaign(ctx, c.ID, seller)

	history, err := f.svc.GetHistory(ctx, c.ID, seller)
	require.NoError(t, err)
	require.Len(t, history, 5)
	prev := domain.Status("")
	for _, h := range history {
		assert.Equal(t, prev, h.From)
		assert.True(t, domain.LegalTransition(h.From, h.To), "%s -> %s", h.From, h.To)
		prev = h.To
	}
	assert.Equal(t, domain.StatusEnded, prev)
}

func TestStatusChangesArePublished(t *testing.T) {
	pub := mocks.NewMockEventPublisher(t)
	f := newFixture(t, WithPublisher(pub))
	ctx := context.Background()

	pub.EXPECT().
		PublishStatusChange(mock.Anything, mock.MatchedBy(func(c domain.StatusChange) bool {
			return c.To == domain.StatusPendingApproval
		})).
		Return(nil).
		Once()
	pub.EXPECT().
		PublishStatusChange(mock.Anything, mock.MatchedBy(func(c domain.StatusChange) bool {
			return c.From == domain.StatusPendingApproval && c.To == domain.StatusActive && c.Actor == admin.ID
		})).
		Return(assert.AnError).
		Once()

	c, err := f.svc.CreateCampaign(ctx, seller, draft())
	require.NoError(t, err)
	// a publishing failure does not undo the transition
	approved, err := f.svc.ApproveCampaign(ctx, c.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, approved.Status)
}
