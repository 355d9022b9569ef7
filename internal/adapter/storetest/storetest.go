// Package storetest holds behaviour tests shared by every
// port.CampaignRepository implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

// Base is a millisecond-aligned reference time every store can round-trip.
var Base = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

// Campaign returns an ACTIVE, serving campaign with budget 100 and max
// CPC 10.
func Campaign(id string) *domain.Campaign {
	age := 18
	return &domain.Campaign{
		ID:          id,
		SellerID:    "seller-1",
		Item:        domain.ItemRef{Kind: domain.ItemProduct, ID: "p-" + id},
		Title:       "Campaign " + id,
		Description: "desc",
		Creative:    domain.Creative{Type: domain.CreativeVideo, URL: "v/" + id + ".mp4"},
		TotalBudget: 100,
		MaxCPC:      10,
		StartAt:     Base.Add(-time.Hour),
		EndAt:       Base.Add(time.Hour),
		Targeting:   domain.Targeting{Countries: []string{"US", "CA"}, AgeMin: &age, ExpandAudience: true},
		Status:      domain.StatusActive,
		CreatedAt:   Base,
		UpdatedAt:   Base,
	}
}

// Run exercises a fresh repository from newRepo in every subtest.
func Run(t *testing.T, newRepo func(t *testing.T) port.CampaignRepository) {
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, newRepo(t)) })
	t.Run("List", func(t *testing.T) { testList(t, newRepo(t)) })
	t.Run("ListEffectiveStatus", func(t *testing.T) { testListEffectiveStatus(t, newRepo(t)) })
	t.Run("Servable", func(t *testing.T) { testServable(t, newRepo(t)) })
	t.Run("Transition", func(t *testing.T) { testTransition(t, newRepo(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newRepo(t)) })
	t.Run("Charge", func(t *testing.T) { testCharge(t, newRepo(t)) })
	t.Run("ConcurrentCharge", func(t *testing.T) { testConcurrentCharge(t, newRepo(t)) })
}

func create(t *testing.T, repo port.CampaignRepository, c *domain.Campaign) {
	t.Helper()
	change := domain.StatusChange{CampaignID: c.ID, To: domain.StatusPendingApproval, Actor: c.SellerID, At: c.CreatedAt}
	require.NoError(t, repo.CreateCampaign(context.Background(), c, change))
}

// Charge bills up to amount, stopping at the remaining budget.
func Charge(amount int64) port.ChargeFunc {
	var n int
	var mu sync.Mutex
	return func(c domain.Campaign) (*domain.ClickEvent, error) {
		a := min(amount, c.TotalBudget-c.SpentAmount)
		if a <= 0 {
			return nil, nil
		}
		mu.Lock()
		n++
		id := fmt.Sprintf("%s-click-%d-%d", c.ID, c.SpentAmount, n)
		mu.Unlock()
		return &domain.ClickEvent{ID: id, CampaignID: c.ID, ViewerID: "v", ChargedAmount: a, CreatedAt: Base}, nil
	}
}

func testRoundTrip(t *testing.T, repo port.CampaignRepository) {
	ctx := context.Background()
	c := Campaign("rt")
	c.Item = domain.ItemRef{Kind: domain.ItemService, ID: "svc-9"}
	audience := int64(5000)
	c.TargetAudience = &audience
	create(t, repo, c)

	got, err := repo.GetCampaign(ctx, "rt")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *c, *got)

	missing, err := repo.GetCampaign(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	plain := Campaign("plain")
	plain.Targeting = domain.Targeting{}
	create(t, repo, plain)
	got, err = repo.GetCampaign(ctx, "plain")
	require.NoError(t, err)
	assert.False(t, got.Targeting.IsTargeted())
	assert.Nil(t, got.TargetAudience)
}

func testList(t *testing.T, repo port.CampaignRepository) {
	ctx := context.Background()
	for i, id := range []string{"b", "a", "c", "d"} {
		c := Campaign(id)
		c.CreatedAt = Base.Add(time.Duration(i/2) * time.Minute)
		if id == "d" {
			c.SellerID = "seller-2"
			c.Status = domain.StatusPaused
		}
		create(t, repo, c)
	}

	all, err := repo.ListCampaigns(ctx, port.CampaignFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "a", "b"}, ids(all))

	own, err := repo.ListCampaigns(ctx, port.CampaignFilter{SellerID: "seller-1", Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(own))

	paused, err := repo.ListCampaigns(ctx, port.CampaignFilter{Status: domain.StatusPaused})
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, ids(paused))
}

func testListEffectiveStatus(t *testing.T, repo port.CampaignRepository) {
	ctx := context.Background()

	live := Campaign("live")
	live.CreatedAt = Base.Add(-time.Minute)
	create(t, repo, live)

	rejected := Campaign("rejected")
	rejected.Status = domain.StatusEnded
	rejected.CreatedAt = Base.Add(-2 * time.Minute)
	create(t, repo, rejected)

	for i, id := range []string{"x1", "x2", "x3"} {
		c := Campaign(id)
		c.EndAt = Base.Add(-30 * time.Minute)
		c.CreatedAt = Base.Add(time.Duration(i) * time.Minute)
		create(t, repo, c)
	}

	stored, err := repo.ListCampaigns(ctx, port.CampaignFilter{Status: domain.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, []string{"x3", "x2", "x1", "live"}, ids(stored))

	active, err := repo.ListCampaigns(ctx, port.CampaignFilter{Status: domain.StatusActive, Now: Base, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, ids(active))

	ended, err := repo.ListCampaigns(ctx, port.CampaignFilter{Status: domain.StatusEnded, Now: Base})
	require.NoError(t, err)
	assert.Equal(t, []string{"x3", "x2", "x1", "rejected"}, ids(ended))
}

func testServable(t *testing.T, repo port.CampaignRepository) {
	ctx := context.Background()
	create(t, repo, Campaign("live"))

	paused := Campaign("paused")
	paused.Status = domain.StatusPaused
	create(t, repo, paused)

	future := Campaign("future")
	future.StartAt = Base.Add(time.Minute)
	create(t, repo, future)

	spent := Campaign("spent")
	create(t, repo, spent)
	for range 10 {
		_, err := repo.ChargeClick(ctx, "spent", Charge(10))
		require.NoError(t, err)
	}

	got, err := repo.ListServableCampaigns(ctx, Base)
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, ids(got))

	got, err = repo.ListServableCampaigns(ctx, Base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testTransition(t *testing.T, repo port.CampaignRepository) {
	ctx := context.Background()
	c := Campaign("tr")
	c.Status = domain.StatusPendingApproval
	create(t, repo, c)

	approve := domain.StatusChange{
		CampaignID: "tr",
		From:       domain.StatusPendingApproval,
		To:         domain.StatusActive,
		Actor:      "admin",
		At:         Base.Add(time.Second),
	}
	got, err := repo.TransitionStatus(ctx, approve)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, approve.At, got.UpdatedAt)

	stale, err := repo.TransitionStatus(ctx, approve)
	require.NoError(t, err)
	assert.Nil(t, stale)

	missing, err := repo.TransitionStatus(ctx, domain.StatusChange{CampaignID: "nope", From: domain.StatusActive, To: domain.StatusPaused})
	require.NoError(t, err)
	assert.Nil(t, missing)

	history, err := repo.ListStatusChanges(ctx, "tr")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.Status(""), history[0].From)
	assert.Equal(t, domain.StatusPendingApproval, history[0].To)
	assert.Equal(t, approve, history[1])
}

func testDelete(t *testing.T, repo port.CampaignRepository) {
	ctx := context.Background()
	create(t, repo, Campaign("del"))
	_, err := repo.ChargeClick(ctx, "del", Charge(10))
	require.NoError(t, err)

	ok, err := repo.DeleteCampaign(ctx, "del", domain.StatusPaused)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeleteCampaign(ctx, "del", domain.StatusActive)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetCampaign(ctx, "del")
	require.NoError(t, err)
	assert.Nil(t, got)

	totals, err := repo.GetClickTotals(ctx, "del")
	require.NoError(t, err)
	assert.Equal(t, port.ClickTotals{Count: 1, Amount: 10}, totals)

	history, err := repo.ListStatusChanges(ctx, "del")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	ok, err = repo.DeleteCampaign(ctx, "del", domain.StatusActive)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testCharge(t *testing.T, repo port.CampaignRepository) {
	ctx := context.Background()
	c := Campaign("ch")
	c.TotalBudget = 25
	create(t, repo, c)

	var charged []int64
	for range 4 {
		out, err := repo.ChargeClick(ctx, "ch", Charge(10))
		require.NoError(t, err)
		require.NotNil(t, out)
		if out.Click != nil {
			charged = append(charged, out.Click.ChargedAmount)
		}
	}
	assert.Equal(t, []int64{10, 10, 5}, charged)

	got, err := repo.GetCampaign(ctx, "ch")
	require.NoError(t, err)
	assert.Equal(t, int64(25), got.SpentAmount)

	refused := errors.New("refused")
	_, err = repo.ChargeClick(ctx, "ch", func(domain.Campaign) (*domain.ClickEvent, error) { return nil, refused })
	require.ErrorIs(t, err, refused)

	out, err := repo.ChargeClick(ctx, "missing", Charge(10))
	require.NoError(t, err)
	assert.Nil(t, out)

	totals, err := repo.GetClickTotals(ctx, "ch")
	require.NoError(t, err)
	assert.Equal(t, port.ClickTotals{Count: 3, Amount: 25}, totals)
}

func testConcurrentCharge(t *testing.T, repo port.CampaignRepository) {
	ctx := context.Background()
	create(t, repo, Campaign("cc"))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		charged int
	)
	charge := Charge(10)
	for range 15 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := repo.ChargeClick(ctx, "cc", charge)
			if !assert.NoError(t, err) {
				return
			}
			if out.Click != nil {
				mu.Lock()
				charged++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, charged)
	got, err := repo.GetCampaign(ctx, "cc")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.SpentAmount)
	totals, err := repo.GetClickTotals(ctx, "cc")
	require.NoError(t, err)
	assert.Equal(t, got.SpentAmount, totals.Amount)
	assert.Equal(t, int64(10), totals.Count)
}

func ids(cs []domain.Campaign) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
