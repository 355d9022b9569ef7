package httpadapter

import (
	"time"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

// createCampaignRequest is the seller's submission. Exactly one of
// ProductID and ServiceID names the promoted item.
type createCampaignRequest struct {
	ProductID      string           `json:"product_id" validate:"required_without=ServiceID,excluded_with=ServiceID"`
	ServiceID      string           `json:"service_id"`
	Title          string           `json:"title" validate:"required,max=200"`
	Description    string           `json:"description" validate:"max=2000"`
	CreativeType   string           `json:"creative_type" validate:"required,oneof=IMAGE VIDEO"`
	CreativeURL    string           `json:"creative_url" validate:"required"`
	TotalBudget    int64            `json:"total_budget" validate:"gt=0"`
	MaxCPC         *int64           `json:"max_cpc" validate:"omitempty,gt=0"`
	TargetAudience *int64           `json:"target_audience" validate:"omitempty,gt=0"`
	StartAt        time.Time        `json:"start_at" validate:"required"`
	EndAt          time.Time        `json:"end_at" validate:"required"`
	Targeting      domain.Targeting `json:"targeting"`
}

func (r createCampaignRequest) draft() domain.CampaignDraft {
	item := domain.ItemRef{Kind: domain.ItemProduct, ID: r.ProductID}
	if r.ServiceID != "" {
		item = domain.ItemRef{Kind: domain.ItemService, ID: r.ServiceID}
	}
	return domain.CampaignDraft{
		Item:           item,
		Title:          r.Title,
		Description:    r.Description,
		Creative:       domain.Creative{Type: domain.CreativeType(r.CreativeType), URL: r.CreativeURL},
		TotalBudget:    r.TotalBudget,
		MaxCPC:         r.MaxCPC,
		TargetAudience: r.TargetAudience,
		StartAt:        r.StartAt,
		EndAt:          r.EndAt,
		Targeting:      r.Targeting,
	}
}

type creativeResponse struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type campaignResponse struct {
	ID              string           `json:"id"`
	SellerID        string           `json:"seller_id"`
	ProductID       string           `json:"product_id,omitempty"`
	ServiceID       string           `json:"service_id,omitempty"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Creative        creativeResponse `json:"creative"`
	TotalBudget     int64            `json:"total_budget"`
	SpentAmount     int64            `json:"spent_amount"`
	RemainingBudget int64            `json:"remaining_budget"`
	MaxCPC          int64            `json:"max_cpc"`
	TargetAudience  *int64           `json:"target_audience,omitempty"`
	StartAt         time.Time        `json:"start_at"`
	EndAt           time.Time        `json:"end_at"`
	Targeting       domain.Targeting `json:"targeting"`
	Status          domain.Status    `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func toCampaignResponse(c *domain.Campaign) campaignResponse {
	resp := campaignResponse{
		ID:              c.ID,
		SellerID:        c.SellerID,
		Title:           c.Title,
		Description:     c.Description,
		Creative:        creativeResponse{Type: string(c.Creative.Type), URL: c.Creative.URL},
		TotalBudget:     c.TotalBudget,
		SpentAmount:     c.SpentAmount,
		RemainingBudget: c.Remaining(),
		MaxCPC:          c.MaxCPC,
		TargetAudience:  c.TargetAudience,
		StartAt:         c.StartAt,
		EndAt:           c.EndAt,
		Targeting:       c.Targeting,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if resp.Targeting.Countries == nil {
		resp.Targeting.Countries = []string{}
	}
	switch c.Item.Kind {
	case domain.ItemProduct:
		resp.ProductID = c.Item.ID
	case domain.ItemService:
		resp.ServiceID = c.Item.ID
	}
	return resp
}

type campaignListResponse struct {
	Campaigns []campaignResponse `json:"campaigns"`
}

type viewerRequest struct {
	ID      string `json:"id"`
	Country string `json:"country" validate:"omitempty,len=2"`
	Age     *int   `json:"age" validate:"omitempty,min=0,max=150"`
}

func (v viewerRequest) viewer() domain.Viewer {
	return domain.Viewer{ID: v.ID, Country: v.Country, Age: v.Age}
}

// defaultSelectLimit fills one ad slot when the request names no limit.
const defaultSelectLimit = 1

type selectAdsRequest struct {
	Placement string        `json:"placement" validate:"max=100"`
	Limit     *int          `json:"limit" validate:"omitempty,gte=0"`
	Viewer    viewerRequest `json:"viewer"`
}

func (r selectAdsRequest) selection() port.SelectionReq {
	limit := defaultSelectLimit
	if r.Limit != nil {
		limit = *r.Limit
	}
	return port.SelectionReq{Placement: r.Placement, Viewer: r.Viewer.viewer(), Limit: limit}
}

// adResponse is a servable campaign as rendered in an ad slot. ClickURL
// is the tracking link that bills the click and forwards to the item.
type adResponse struct {
	CampaignID  string           `json:"campaign_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Creative    creativeResponse `json:"creative"`
	ProductID   string           `json:"product_id,omitempty"`
	ServiceID   string           `json:"service_id,omitempty"`
	ClickURL    string           `json:"click_url"`
}

func toAdResponse(c domain.Campaign) adResponse {
	ad := adResponse{
		CampaignID:  c.ID,
		Title:       c.Title,
		Description: c.Description,
		Creative:    creativeResponse{Type: string(c.Creative.Type), URL: c.Creative.URL},
		ClickURL:    "/api/v1/ads/click/" + c.ID,
	}
	if c.Item.Kind == domain.ItemService {
		ad.ServiceID = c.Item.ID
	} else {
		ad.ProductID = c.Item.ID
	}
	return ad
}

type selectAdsResponse struct {
	Ads []adResponse `json:"ads"`
}

type statsResponse struct {
	CampaignID      string `json:"campaign_id"`
	Clicks          int64  `json:"clicks"`
	ChargedTotal    int64  `json:"charged_total"`
	SpentAmount     int64  `json:"spent_amount"`
	TotalBudget     int64  `json:"total_budget"`
	RemainingBudget int64  `json:"remaining_budget"`
	Reconciled      bool   `json:"reconciled"`
}

type statusChangeResponse struct {
	From  domain.Status `json:"from,omitempty"`
	To    domain.Status `json:"to"`
	Actor string        `json:"actor"`
	At    time.Time     `json:"at"`
}

type historyResponse struct {
	CampaignID string                 `json:"campaign_id"`
	Changes    []statusChangeResponse `json:"changes"`
}
