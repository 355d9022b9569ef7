package db

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-ads/internal/adapter/memory"
	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

func TestSeedThroughRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCampaignRepository()

	require.NoError(t, Seed(ctx, repo, slog.New(slog.NewTextHandler(io.Discard, nil))))

	all, err := repo.ListCampaigns(ctx, port.CampaignFilter{SellerID: DemoSellerID})
	require.NoError(t, err)
	require.Len(t, all, len(demoCountries))

	var pending int
	for _, c := range all {
		if c.Status == domain.StatusPendingApproval {
			pending++
		}
		totals, err := repo.GetClickTotals(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.SpentAmount, totals.Amount)
	}
	assert.Equal(t, 1, pending)

	require.NoError(t, Seed(ctx, repo, slog.New(slog.NewTextHandler(io.Discard, nil))))
	again, err := repo.ListCampaigns(ctx, port.CampaignFilter{SellerID: DemoSellerID})
	require.NoError(t, err)
	assert.Len(t, again, len(demoCountries))
}
