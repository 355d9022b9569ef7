// Package memory is a process-local Campaign Store. Charges serialise on
// a mutex per campaign; the map lock is only held to find or insert an
// entry, so clicks on different campaigns never contend.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

type entry struct {
	mu       sync.Mutex
	campaign domain.Campaign
	deleted  bool
}

// CampaignRepository implements port.CampaignRepository in memory.
type CampaignRepository struct {
	mu        sync.RWMutex
	campaigns map[string]*entry

	// clicks maps campaign id to *clickLog.
	clicks sync.Map

	historyMu sync.Mutex
	history   map[string][]domain.StatusChange
}

type clickLog struct {
	mu     sync.Mutex
	events []domain.ClickEvent
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{
		campaigns: make(map[string]*entry),
		history:   make(map[string][]domain.StatusChange),
	}
}

func (r *CampaignRepository) lookup(id string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.campaigns[id]
}

func (r *CampaignRepository) CreateCampaign(_ context.Context, c *domain.Campaign, change domain.StatusChange) error {
	r.mu.Lock()
	if _, ok := r.campaigns[c.ID]; ok {
		r.mu.Unlock()
		return errDuplicate(c.ID)
	}
	r.campaigns[c.ID] = &entry{campaign: cloneCampaign(*c)}
	r.mu.Unlock()

	r.appendHistory(change)
	return nil
}

func (r *CampaignRepository) GetCampaign(_ context.Context, id string) (*domain.Campaign, error) {
	e := r.lookup(id)
	if e == nil {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, nil
	}
	c := cloneCampaign(e.campaign)
	return &c, nil
}

func (r *CampaignRepository) ListCampaigns(_ context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	all := r.snapshot(func(c *domain.Campaign) bool {
		if filter.SellerID != "" && c.SellerID != filter.SellerID {
			return false
		}
		switch {
		case filter.Status == "":
			return true
		case filter.Now.IsZero():
			return c.Status == filter.Status
		default:
			return c.EffectiveStatus(filter.Now) == filter.Status
		}
	})
	slices.SortFunc(all, domain.NewestFirst)

	start := min(filter.Offset, len(all))
	end := len(all)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, end)
	}
	return all[start:end], nil
}

func (r *CampaignRepository) ListServableCampaigns(_ context.Context, now time.Time) ([]domain.Campaign, error) {
	out := r.snapshot(func(c *domain.Campaign) bool { return c.Servable(now) })
	slices.SortFunc(out, domain.NewestFirst)
	return out, nil
}

func (r *CampaignRepository) snapshot(keep func(*domain.Campaign) bool) []domain.Campaign {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.campaigns))
	for _, e := range r.campaigns {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]domain.Campaign, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted && keep(&e.campaign) {
			out = append(out, cloneCampaign(e.campaign))
		}
		e.mu.Unlock()
	}
	return out
}

func (r *CampaignRepository) TransitionStatus(_ context.Context, change domain.StatusChange) (*domain.Campaign, error) {
	e := r.lookup(change.CampaignID)
	if e == nil {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted || e.campaign.Status != change.From {
		return nil, nil
	}
	e.campaign.Status = change.To
	e.campaign.UpdatedAt = change.At
	// Appended under the entry lock so history order matches status order.
	r.appendHistory(change)

	c := cloneCampaign(e.campaign)
	return &c, nil
}

func (r *CampaignRepository) DeleteCampaign(_ context.Context, id string, expected domain.Status) (bool, error) {
	e := r.lookup(id)
	if e == nil {
		return false, nil
	}
	e.mu.Lock()
	if e.deleted || e.campaign.Status != expected {
		e.mu.Unlock()
		return false, nil
	}
	e.deleted = true
	e.mu.Unlock()

	r.mu.Lock()
	delete(r.campaigns, id)
	r.mu.Unlock()
	return true, nil
}

func (r *CampaignRepository) ChargeClick(_ context.Context, campaignID string, charge port.ChargeFunc) (*port.ChargeOutcome, error) {
	e := r.lookup(campaignID)
	if e == nil {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, nil
	}

	click, err := charge(cloneCampaign(e.campaign))
	if err != nil {
		return nil, err
	}
	if click != nil {
		if click.ChargedAmount <= 0 || e.campaign.SpentAmount+click.ChargedAmount > e.campaign.TotalBudget {
			return nil, errOverspend(campaignID)
		}
		e.campaign.SpentAmount += click.ChargedAmount
		e.campaign.UpdatedAt = click.CreatedAt

		v, _ := r.clicks.LoadOrStore(campaignID, &clickLog{})
		log := v.(*clickLog)
		log.mu.Lock()
		log.events = append(log.events, *click)
		log.mu.Unlock()
	}
	return &port.ChargeOutcome{Campaign: cloneCampaign(e.campaign), Click: click}, nil
}

func (r *CampaignRepository) GetClickTotals(_ context.Context, campaignID string) (port.ClickTotals, error) {
	var totals port.ClickTotals
	v, ok := r.clicks.Load(campaignID)
	if !ok {
		return totals, nil
	}
	log := v.(*clickLog)
	log.mu.Lock()
	defer log.mu.Unlock()
	for _, ev := range log.events {
		totals.Count++
		totals.Amount += ev.ChargedAmount
	}
	return totals, nil
}

func (r *CampaignRepository) ListStatusChanges(_ context.Context, campaignID string) ([]domain.StatusChange, error) {
	r.historyMu.Lock()
	defer r.historyMu.Unlock()
	return slices.Clone(r.history[campaignID]), nil
}

func (r *CampaignRepository) appendHistory(change domain.StatusChange) {
	r.historyMu.Lock()
	r.history[change.CampaignID] = append(r.history[change.CampaignID], change)
	r.historyMu.Unlock()
}

// cloneCampaign copies the slices and pointers a caller could mutate.
func cloneCampaign(c domain.Campaign) domain.Campaign {
	c.Targeting.Countries = slices.Clone(c.Targeting.Countries)
	if c.Targeting.AgeMin != nil {
		v := *c.Targeting.AgeMin
		c.Targeting.AgeMin = &v
	}
	if c.Targeting.AgeMax != nil {
		v := *c.Targeting.AgeMax
		c.Targeting.AgeMax = &v
	}
	if c.TargetAudience != nil {
		v := *c.TargetAudience
		c.TargetAudience = &v
	}
	return c
}
