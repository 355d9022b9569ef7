package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port/mocks"
)

// TestConcurrentClicks fires more clicks than the budget can pay for and
// checks that exactly the affordable ones are billed.
func TestConcurrentClicks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.activeCampaign(t, draft()) // budget 100, max cpc 10

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		charged     []int64
		notEligible int
	)
	for i := range 15 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.RecordClick(ctx, c.ID, domain.Viewer{ID: "viewer"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				charged = append(charged, res.Charged)
			case errors.Is(err, domain.ErrNotEligible):
				notEligible++
				assert.NotEmpty(t, res.LandingURL, "click %d must still navigate", i)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, charged, 10)
	for _, amount := range charged {
		assert.Equal(t, int64(10), amount)
	}
	assert.Equal(t, 5, notEligible)

	stats, err := f.svc.GetStats(ctx, c.ID, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.SpentAmount)
	assert.Equal(t, int64(100), stats.ChargedTotal)
	assert.Equal(t, int64(10), stats.Clicks)
	assert.Zero(t, stats.RemainingBudget)
	assert.True(t, stats.Reconciled)
}

func TestClickChargesRemainderThenRefuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := draft()
	d.TotalBudget = 25
	c := f.activeCampaign(t, d)

	var got []int64
	for range 3 {
		res, err := f.svc.RecordClick(ctx, c.ID, domain.Viewer{})
		require.NoError(t, err)
		got = append(got, res.Charged)
	}
	assert.Equal(t, []int64{10, 10, 5}, got)

	res, err := f.svc.RecordClick(ctx, c.ID, domain.Viewer{})
	require.ErrorIs(t, err, domain.ErrNotEligible)
	assert.Equal(t, "/products/p-42", res.LandingURL)
	assert.Zero(t, res.RemainingBudget)
}

func TestClickNotEligible(t *testing.T) {
	ctx := context.Background()

	t.Run("pending", func(t *testing.T) {
		f := newFixture(t)
		c, err := f.svc.CreateCampaign(ctx, seller, draft())
		require.NoError(t, err)

		res, err := f.svc.RecordClick(ctx, c.ID, domain.Viewer{})
		require.ErrorIs(t, err, domain.ErrNotEligible)
		assert.Zero(t, res.Charged)
	})

	t.Run("paused", func(t *testing.T) {
		f := newFixture(t)
		c := f.activeCampaign(t, draft())
		_, err := f.svc.PauseCampaign(ctx, c.ID, seller)
		require.NoError(t, err)

		_, err = f.svc.RecordClick(ctx, c.ID, domain.Viewer{})
		require.ErrorIs(t, err, domain.ErrNotEligible)
	})

	t.Run("expired", func(t *testing.T) {
		f := newFixture(t)
		c := f.activeCampaign(t, draft())
		f.clock.Advance(48 * time.Hour)

		res, err := f.svc.RecordClick(ctx, c.ID, domain.Viewer{})
		require.ErrorIs(t, err, domain.ErrNotEligible)
		assert.Equal(t, "/products/p-42", res.LandingURL)

		stored, err := f.repo.GetCampaign(ctx, c.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.SpentAmount)
		assert.Equal(t, domain.StatusActive, stored.Status, "clicks never persist expiry")
	})

	t.Run("not started", func(t *testing.T) {
		f := newFixture(t)
		d := draft()
		d.StartAt = t0.Add(time.Hour)
		c := f.activeCampaign(t, d)

		_, err := f.svc.RecordClick(ctx, c.ID, domain.Viewer{})
		require.ErrorIs(t, err, domain.ErrNotEligible)
	})

	t.Run("unknown", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RecordClick(ctx, "missing", domain.Viewer{})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestClickIsPublished(t *testing.T) {
	pub := mocks.NewMockEventPublisher(t)
	pub.EXPECT().PublishStatusChange(mock.Anything, mock.Anything).Return(nil)
	f := newFixture(t, WithPublisher(pub))
	ctx := context.Background()
	c := f.activeCampaign(t, draft())

	pub.EXPECT().
		PublishClick(mock.Anything, mock.AnythingOfType("domain.ClickEvent")).
		Run(func(_ context.Context, click domain.ClickEvent) {
			assert.Equal(t, c.ID, click.CampaignID)
			assert.Equal(t, "v-9", click.ViewerID)
			assert.Equal(t, int64(10), click.ChargedAmount)
		}).
		Return(nil).
		Once()

	res, err := f.svc.RecordClick(ctx, c.ID, domain.Viewer{ID: "v-9"})
	require.NoError(t, err)
	assert.Equal(t, int64(90), res.RemainingBudget)
}
