package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-ads/internal/adapter/storetest"
	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCampaign(id string, created time.Time) *domain.Campaign {
	return &domain.Campaign{
		ID:          id,
		SellerID:    "seller-1",
		Item:        domain.ItemRef{Kind: domain.ItemProduct, ID: "p-1"},
		Title:       "Spring sale",
		Creative:    domain.Creative{Type: domain.CreativeImage, URL: "img/1.png"},
		TotalBudget: 100,
		MaxCPC:      10,
		StartAt:     t0.Add(-time.Hour),
		EndAt:       t0.Add(time.Hour),
		Status:      domain.StatusActive,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func seed(t *testing.T, r *CampaignRepository, c *domain.Campaign) {
	t.Helper()
	change := domain.StatusChange{CampaignID: c.ID, To: domain.StatusPendingApproval, Actor: c.SellerID, At: c.CreatedAt}
	require.NoError(t, r.CreateCampaign(context.Background(), c, change))
}

func chargeFixed(amount int64) func(domain.Campaign) (*domain.ClickEvent, error) {
	return func(c domain.Campaign) (*domain.ClickEvent, error) {
		a := min(amount, c.TotalBudget-c.SpentAmount)
		if a <= 0 {
			return nil, nil
		}
		return &domain.ClickEvent{ID: "clk", CampaignID: c.ID, ChargedAmount: a, CreatedAt: t0}, nil
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewCampaignRepository()
	c := newCampaign("c1", t0)
	c.Targeting.Countries = []string{"US"}
	seed(t, r, c)

	got, err := r.GetCampaign(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Spring sale", got.Title)

	// returned copies do not alias stored state
	got.Targeting.Countries[0] = "FR"
	again, _ := r.GetCampaign(ctx, "c1")
	assert.Equal(t, []string{"US"}, again.Targeting.Countries)

	missing, err := r.GetCampaign(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = r.CreateCampaign(ctx, newCampaign("c1", t0), domain.StatusChange{CampaignID: "c1"})
	require.Error(t, err)
}

func TestListOrderingAndFilter(t *testing.T) {
	ctx := context.Background()
	r := NewCampaignRepository()
	seed(t, r, newCampaign("b", t0))
	seed(t, r, newCampaign("a", t0))
	newer := newCampaign("c", t0.Add(time.Minute))
	newer.SellerID = "seller-2"
	seed(t, r, newer)

	all, err := r.ListServableCampaigns(ctx, t0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{all[0].ID, all[1].ID, all[2].ID})

	own, err := r.ListCampaigns(ctx, port.CampaignFilter{SellerID: "seller-1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "b", own[0].ID)
}

func TestTransitionIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	r := NewCampaignRepository()
	c := newCampaign("c1", t0)
	c.Status = domain.StatusPendingApproval
	seed(t, r, c)

	change := domain.StatusChange{CampaignID: "c1", From: domain.StatusPendingApproval, To: domain.StatusActive, Actor: "admin", At: t0}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.TransitionStatus(ctx, change)
			assert.NoError(t, err)
			if got != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	history, err := r.ListStatusChanges(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusActive, history[1].To)
}

func TestConcurrentChargesNeverOverspend(t *testing.T) {
	ctx := context.Background()
	r := NewCampaignRepository()
	seed(t, r, newCampaign("c1", t0))

	var wg sync.WaitGroup
	for range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.ChargeClick(ctx, "c1", chargeFixed(7))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, _ := r.GetCampaign(ctx, "c1")
	totals, err := r.GetClickTotals(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.SpentAmount)
	assert.Equal(t, got.SpentAmount, totals.Amount)
	assert.Equal(t, int64(15), totals.Count) // 14 x 7 + 1 x 2
}

func TestChargeFuncErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	r := NewCampaignRepository()
	seed(t, r, newCampaign("c1", t0))

	boom := errors.New("refused")
	_, err := r.ChargeClick(ctx, "c1", func(domain.Campaign) (*domain.ClickEvent, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	got, _ := r.GetCampaign(ctx, "c1")
	assert.Zero(t, got.SpentAmount)

	out, err := r.ChargeClick(ctx, "missing", chargeFixed(1))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDeleteKeepsLedgerAndHistory(t *testing.T) {
	ctx := context.Background()
	r := NewCampaignRepository()
	seed(t, r, newCampaign("c1", t0))
	_, err := r.ChargeClick(ctx, "c1", chargeFixed(10))
	require.NoError(t, err)

	ok, err := r.DeleteCampaign(ctx, "c1", domain.StatusPaused)
	require.NoError(t, err)
	assert.False(t, ok, "status mismatch must not delete")

	ok, err = r.DeleteCampaign(ctx, "c1", domain.StatusActive)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := r.GetCampaign(ctx, "c1")
	assert.Nil(t, got)
	totals, _ := r.GetClickTotals(ctx, "c1")
	assert.Equal(t, int64(10), totals.Amount)
	history, _ := r.ListStatusChanges(ctx, "c1")
	assert.Len(t, history, 1)
}

func TestCampaignRepositoryBehaviour(t *testing.T) {
	storetest.Run(t, func(*testing.T) port.CampaignRepository {
		return NewCampaignRepository()
	})
}
