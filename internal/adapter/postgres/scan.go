package postgres

import (
	"github.com/jackc/pgx/v5"

	"marketplace-ads/internal/core/domain"
)

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var (
		c                domain.Campaign
		product, service *string
		creativeType     string
		status           string
	)
	err := row.Scan(
		&c.ID,
		&c.SellerID,
		&product,
		&service,
		&c.Title,
		&c.Description,
		&creativeType,
		&c.Creative.URL,
		&c.TotalBudget,
		&c.SpentAmount,
		&c.MaxCPC,
		&c.StartAt,
		&c.EndAt,
		&c.Targeting.Countries,
		&c.Targeting.AgeMin,
		&c.Targeting.AgeMax,
		&c.TargetAudience,
		&c.Targeting.ExpandAudience,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}
	c.Item = itemFromColumns(product, service)
	c.Creative.Type = domain.CreativeType(creativeType)
	c.Status = domain.Status(status)
	c.StartAt, c.EndAt = c.StartAt.UTC(), c.EndAt.UTC()
	c.CreatedAt, c.UpdatedAt = c.CreatedAt.UTC(), c.UpdatedAt.UTC()
	if len(c.Targeting.Countries) == 0 {
		c.Targeting.Countries = nil
	}
	return c, nil
}

func itemColumns(item domain.ItemRef) (product, service *string) {
	id := item.ID
	if item.Kind == domain.ItemService {
		return nil, &id
	}
	return &id, nil
}

func itemFromColumns(product, service *string) domain.ItemRef {
	if service != nil {
		return domain.ItemRef{Kind: domain.ItemService, ID: *service}
	}
	if product != nil {
		return domain.ItemRef{Kind: domain.ItemProduct, ID: *product}
	}
	return domain.ItemRef{}
}
