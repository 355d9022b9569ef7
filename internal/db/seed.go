package db

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

// DemoSellerID owns every seeded campaign.
const DemoSellerID = "demo-seller"

var demoCountries = [][]string{nil, {"US"}, {"US", "CA"}, {"DE", "FR"}, nil}

// Seed stores a handful of demo campaigns through repo: most approved
// and serving, one still waiting for approval. Some carry clicks so the
// stats endpoint has data. A store that already holds demo campaigns is
// left alone.
func Seed(ctx context.Context, repo port.CampaignRepository, logger *slog.Logger) error {
	existing, err := repo.ListCampaigns(ctx, port.CampaignFilter{SellerID: DemoSellerID, Limit: 1})
	if err != nil {
		return fmt.Errorf("check demo data: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("demo data already present")
		return nil
	}

	r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 42))
	now := time.Now().UTC()

	for i := range len(demoCountries) {
		kind := domain.ItemProduct
		if i%2 == 1 {
			kind = domain.ItemService
		}
		c := &domain.Campaign{
			ID:          uuid.Must(uuid.NewV7()).String(),
			SellerID:    DemoSellerID,
			Item:        domain.ItemRef{Kind: kind, ID: fmt.Sprintf("demo-%s-%d", kind, i+1)},
			Title:       fmt.Sprintf("Demo campaign %d", i+1),
			Creative:    domain.Creative{Type: domain.CreativeImage, URL: fmt.Sprintf("demo/creative-%d.png", i+1)},
			TotalBudget: 50_000, // 500.00
			MaxCPC:      int64(25 + r.IntN(50)),
			StartAt:     now.AddDate(0, 0, -1),
			EndAt:       now.AddDate(0, 1, 0),
			Targeting: domain.Targeting{
				Countries:      demoCountries[i],
				ExpandAudience: i == 2,
			},
			Status:    domain.StatusPendingApproval,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
			UpdatedAt: now,
		}
		submit := domain.StatusChange{CampaignID: c.ID, To: domain.StatusPendingApproval, Actor: DemoSellerID, At: c.CreatedAt}
		if err := repo.CreateCampaign(ctx, c, submit); err != nil {
			return fmt.Errorf("seed campaign %d: %w", i+1, err)
		}
		if i == len(demoCountries)-1 {
			continue
		}

		approve := domain.StatusChange{
			CampaignID: c.ID,
			From:       domain.StatusPendingApproval,
			To:         domain.StatusActive,
			Actor:      domain.SystemActor,
			At:         now,
		}
		if _, err := repo.TransitionStatus(ctx, approve); err != nil {
			return fmt.Errorf("seed approve %d: %w", i+1, err)
		}
		for range r.IntN(5) {
			if _, err := repo.ChargeClick(ctx, c.ID, demoClick(now)); err != nil {
				return fmt.Errorf("seed click %d: %w", i+1, err)
			}
		}
	}
	logger.Info("demo data seeded", slog.Int("campaigns", len(demoCountries)))
	return nil
}

func demoClick(at time.Time) port.ChargeFunc {
	return func(c domain.Campaign) (*domain.ClickEvent, error) {
		amount := domain.ComputeCharge(c)
		if amount == 0 {
			return nil, nil
		}
		return &domain.ClickEvent{
			ID:            uuid.Must(uuid.NewV7()).String(),
			CampaignID:    c.ID,
			ViewerID:      "demo-viewer",
			ChargedAmount: amount,
			CreatedAt:     at,
		}, nil
	}
}
