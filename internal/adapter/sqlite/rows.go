package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-ads/internal/core/domain"
)

type campaignRow struct {
	ID              string         `db:"id"`
	SellerID        string         `db:"seller_id"`
	ProductRef      sql.NullString `db:"product_ref"`
	ServiceRef      sql.NullString `db:"service_ref"`
	Title           string         `db:"title"`
	Description     string         `db:"description"`
	CreativeType    string         `db:"creative_type"`
	CreativeURL     string         `db:"creative_url"`
	TotalBudget     int64          `db:"total_budget"`
	SpentAmount     int64          `db:"spent_amount"`
	MaxCPC          int64          `db:"max_cpc"`
	StartAt         int64          `db:"start_at"`
	EndAt           int64          `db:"end_at"`
	TargetCountries string         `db:"target_countries"`
	TargetAgeMin    sql.NullInt64  `db:"target_age_min"`
	TargetAgeMax    sql.NullInt64  `db:"target_age_max"`
	TargetAudience  sql.NullInt64  `db:"target_audience"`
	ExpandAudience  bool           `db:"expand_audience"`
	Status          string         `db:"status"`
	CreatedAt       int64          `db:"created_at"`
	UpdatedAt       int64          `db:"updated_at"`
}

func toRow(c *domain.Campaign) (campaignRow, error) {
	countries := c.Targeting.Countries
	if countries == nil {
		countries = []string{}
	}
	encoded, err := json.Marshal(countries)
	if err != nil {
		return campaignRow{}, fmt.Errorf("encode countries: %w", err)
	}
	row := campaignRow{
		ID:              c.ID,
		SellerID:        c.SellerID,
		Title:           c.Title,
		Description:     c.Description,
		CreativeType:    string(c.Creative.Type),
		CreativeURL:     c.Creative.URL,
		TotalBudget:     c.TotalBudget,
		SpentAmount:     c.SpentAmount,
		MaxCPC:          c.MaxCPC,
		StartAt:         c.StartAt.UnixMilli(),
		EndAt:           c.EndAt.UnixMilli(),
		TargetCountries: string(encoded),
		TargetAgeMin:    nullInt(c.Targeting.AgeMin),
		TargetAgeMax:    nullInt(c.Targeting.AgeMax),
		ExpandAudience:  c.Targeting.ExpandAudience,
		Status:          string(c.Status),
		CreatedAt:       c.CreatedAt.UnixMilli(),
		UpdatedAt:       c.UpdatedAt.UnixMilli(),
	}
	if c.TargetAudience != nil {
		row.TargetAudience = sql.NullInt64{Int64: *c.TargetAudience, Valid: true}
	}
	ref := sql.NullString{String: c.Item.ID, Valid: true}
	if c.Item.Kind == domain.ItemService {
		row.ServiceRef = ref
	} else {
		row.ProductRef = ref
	}
	return row, nil
}

func (r campaignRow) toDomain() (domain.Campaign, error) {
	c := domain.Campaign{
		ID:          r.ID,
		SellerID:    r.SellerID,
		Title:       r.Title,
		Description: r.Description,
		Creative:    domain.Creative{Type: domain.CreativeType(r.CreativeType), URL: r.CreativeURL},
		TotalBudget: r.TotalBudget,
		SpentAmount: r.SpentAmount,
		MaxCPC:      r.MaxCPC,
		StartAt:     fromMillis(r.StartAt),
		EndAt:       fromMillis(r.EndAt),
		Targeting: domain.Targeting{
			AgeMin:         intPtr(r.TargetAgeMin),
			AgeMax:         intPtr(r.TargetAgeMax),
			ExpandAudience: r.ExpandAudience,
		},
		Status:    domain.Status(r.Status),
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
	switch {
	case r.ServiceRef.Valid:
		c.Item = domain.ItemRef{Kind: domain.ItemService, ID: r.ServiceRef.String}
	case r.ProductRef.Valid:
		c.Item = domain.ItemRef{Kind: domain.ItemProduct, ID: r.ProductRef.String}
	}
	if r.TargetAudience.Valid {
		v := r.TargetAudience.Int64
		c.TargetAudience = &v
	}
	var countries []string
	if err := json.Unmarshal([]byte(r.TargetCountries), &countries); err != nil {
		return c, fmt.Errorf("decode countries of %s: %w", r.ID, err)
	}
	if len(countries) > 0 {
		c.Targeting.Countries = countries
	}
	return c, nil
}

type statusChangeRow struct {
	CampaignID string         `db:"campaign_id"`
	FromStatus sql.NullString `db:"from_status"`
	ToStatus   string         `db:"to_status"`
	Actor      string         `db:"actor"`
	ChangedAt  int64          `db:"changed_at"`
}

func (r statusChangeRow) toDomain() domain.StatusChange {
	return domain.StatusChange{
		CampaignID: r.CampaignID,
		From:       domain.Status(r.FromStatus.String),
		To:         domain.Status(r.ToStatus),
		Actor:      r.Actor,
		At:         fromMillis(r.ChangedAt),
	}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
