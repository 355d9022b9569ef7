package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	minTargetAge = 0
	maxTargetAge = 120
)

var countryCode = regexp.MustCompile(`^[A-Z]{2}$`)

// CampaignDraft is a seller's campaign submission before validation.
// MaxCPC may be omitted when TargetAudience is given; it is then derived
// once from the budget and never recomputed.
type CampaignDraft struct {
	Item           ItemRef
	Title          string
	Description    string
	Creative       Creative
	TotalBudget    int64
	MaxCPC         *int64
	TargetAudience *int64
	StartAt        time.Time
	EndAt          time.Time
	Targeting      Targeting
}

// Validate checks the submission and normalises country codes in place.
// Ownership of the promoted item is checked by the caller against the
// catalog.
func (d *CampaignDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return invalid("title", "title is required")
	}
	switch d.Item.Kind {
	case ItemProduct, ItemService:
	default:
		return invalid("item", "item must reference a product or a service")
	}
	if strings.TrimSpace(d.Item.ID) == "" {
		return invalid("item", "item id is required")
	}
	switch d.Creative.Type {
	case CreativeImage, CreativeVideo:
	default:
		return invalid("creative", "creative type must be IMAGE or VIDEO")
	}
	if strings.TrimSpace(d.Creative.URL) == "" {
		return invalid("creative", "creative is required")
	}
	if d.TotalBudget <= 0 {
		return invalid("total_budget", "total budget must be positive")
	}
	if d.TargetAudience != nil && *d.TargetAudience <= 0 {
		return invalid("target_audience", "target audience must be positive")
	}
	if d.MaxCPC != nil {
		if *d.MaxCPC <= 0 {
			return invalid("max_cpc", "max cpc must be positive")
		}
		if *d.MaxCPC > d.TotalBudget {
			return invalid("max_cpc", "max cpc must not exceed total budget")
		}
	} else if d.TargetAudience == nil {
		return invalid("max_cpc", "max cpc or target audience is required")
	}
	if d.StartAt.IsZero() || d.EndAt.IsZero() {
		return invalid("end_at", "start and end are required")
	}
	if !d.EndAt.After(d.StartAt) {
		return invalid("end_at", "end must be after start")
	}
	if err := d.validateTargeting(); err != nil {
		return err
	}
	return nil
}

func (d *CampaignDraft) validateTargeting() error {
	t := &d.Targeting
	countries := make([]string, 0, len(t.Countries))
	for _, c := range t.Countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if !countryCode.MatchString(c) {
			return invalid("target_countries", fmt.Sprintf("invalid country code %q", c))
		}
		if !slices.Contains(countries, c) {
			countries = append(countries, c)
		}
	}
	t.Countries = countries

	for _, age := range []*int{t.AgeMin, t.AgeMax} {
		if age != nil && (*age < minTargetAge || *age > maxTargetAge) {
			return invalid("target_age", "age bounds must be within 0-120")
		}
	}
	if t.AgeMin != nil && t.AgeMax != nil && *t.AgeMin > *t.AgeMax {
		return invalid("target_age", "minimum age must not exceed maximum age")
	}
	return nil
}

// EffectiveMaxCPC returns the supplied bid, or derives one as
// ceil(TotalBudget / TargetAudience). The derived bid is at least one
// minor unit and never above the budget. Call after Validate.
func (d *CampaignDraft) EffectiveMaxCPC() int64 {
	if d.MaxCPC != nil {
		return *d.MaxCPC
	}
	bid := decimal.NewFromInt(d.TotalBudget).
		Div(decimal.NewFromInt(*d.TargetAudience)).
		Ceil().
		IntPart()
	return max(1, min(bid, d.TotalBudget))
}
