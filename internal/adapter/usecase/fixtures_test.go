package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-ads/internal/adapter/memory"
	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port/mocks"
)

var (
	t0     = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	seller = domain.Principal{ID: "seller-1", Role: domain.RoleSeller}
	other  = domain.Principal{ID: "seller-2", Role: domain.RoleSeller}
	admin  = domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc     *AdUseCase
	repo    *memory.CampaignRepository
	catalog *mocks.MockCatalog
	clock   *fakeClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:    memory.NewCampaignRepository(),
		catalog: mocks.NewMockCatalog(t),
		clock:   &fakeClock{now: t0},
	}
	f.catalog.EXPECT().
		ItemExists(mock.Anything, seller.ID, mock.Anything).
		Return(true, nil).
		Maybe()
	f.catalog.EXPECT().
		ItemURL(mock.Anything).
		RunAndReturn(func(item domain.ItemRef) string { return "/" + string(item.Kind) + "s/" + item.ID }).
		Maybe()

	base := []Option{
		WithClock(f.clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	f.svc = NewAdUseCase(f.repo, f.catalog, append(base, opts...)...)
	return f
}

func draft() domain.CampaignDraft {
	cpc := int64(10)
	return domain.CampaignDraft{
		Item:        domain.ItemRef{Kind: domain.ItemProduct, ID: "p-42"},
		Title:       "Winter boots",
		Creative:    domain.Creative{Type: domain.CreativeImage, URL: "creatives/boots.png"},
		TotalBudget: 100,
		MaxCPC:      &cpc,
		StartAt:     t0.Add(-time.Hour),
		EndAt:       t0.Add(24 * time.Hour),
	}
}

// activeCampaign submits d as seller and approves it.
func (f *fixture) activeCampaign(t *testing.T, d domain.CampaignDraft) *domain.Campaign {
	t.Helper()
	ctx := context.Background()
	c, err := f.svc.CreateCampaign(ctx, seller, d)
	require.NoError(t, err)
	c, err = f.svc.ApproveCampaign(ctx, c.ID, admin)
	require.NoError(t, err)
	return c
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
