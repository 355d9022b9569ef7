package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

const campaignColumns = `id, seller_id, product_ref, service_ref, title, description,
	creative_type, creative_url, total_budget, spent_amount, max_cpc, start_at, end_at,
	target_countries, target_age_min, target_age_max, target_audience, expand_audience,
	status, created_at, updated_at`

// ErrOverspend means a charge would have pushed spend past the budget.
// The ledger never asks for one, so seeing it points at a bug.
var ErrOverspend = errors.New("postgres: charge exceeds remaining budget")

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CampaignRepository implements port.CampaignRepository using pgxpool.
// Charges lock the campaign row with SELECT ... FOR UPDATE, so clicks on
// one campaign queue on its row while other campaigns proceed.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

func (r *CampaignRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()
	return fn(tx)
}

func (r *CampaignRepository) CreateCampaign(ctx context.Context, c *domain.Campaign, change domain.StatusChange) error {
	product, service := itemColumns(c.Item)
	countries := c.Targeting.Countries
	if countries == nil {
		countries = []string{}
	}
	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO campaigns (`+campaignColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
			c.ID, c.SellerID, product, service, c.Title, c.Description,
			string(c.Creative.Type), c.Creative.URL, c.TotalBudget, c.SpentAmount, c.MaxCPC, c.StartAt, c.EndAt,
			countries, c.Targeting.AgeMin, c.Targeting.AgeMax, c.TargetAudience, c.Targeting.ExpandAudience,
			string(c.Status), c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert campaign: %w", err)
		}
		return insertStatusChange(ctx, tx, change)
	})
}

func (r *CampaignRepository) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return getCampaign(ctx, r.pool, id, false)
}

func (r *CampaignRepository) ListCampaigns(ctx context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	var (
		where []string
		args  []any
	)
	if filter.SellerID != "" {
		args = append(args, filter.SellerID)
		where = append(where, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		cond := fmt.Sprintf("status = $%d", len(args))
		if !filter.Now.IsZero() {
			args = append(args, filter.Now)
			cond = effectiveStatusCond(cond, filter.Status, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, cond)
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return queryCampaigns(ctx, r.pool, query, args...)
}

func (r *CampaignRepository) ListServableCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	return queryCampaigns(ctx, r.pool, `SELECT `+campaignColumns+` FROM campaigns
WHERE status = 'ACTIVE'
  AND start_at <= $1 AND end_at >= $1
  AND spent_amount < total_budget
ORDER BY created_at DESC, id`, now)
}

func (r *CampaignRepository) TransitionStatus(ctx context.Context, change domain.StatusChange) (*domain.Campaign, error) {
	var out *domain.Campaign
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `UPDATE campaigns SET status = $3, updated_at = $4
WHERE id = $1 AND status = $2
RETURNING `+campaignColumns,
			change.CampaignID, string(change.From), string(change.To), change.At)
		c, err := scanCampaign(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if err = insertStatusChange(ctx, tx, change); err != nil {
			return err
		}
		out = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CampaignRepository) DeleteCampaign(ctx context.Context, id string, expected domain.Status) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1 AND status = $2`, id, string(expected))
	if err != nil {
		return false, fmt.Errorf("delete campaign: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CampaignRepository) ChargeClick(ctx context.Context, campaignID string, charge port.ChargeFunc) (*port.ChargeOutcome, error) {
	var out *port.ChargeOutcome
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		c, err := getCampaign(ctx, tx, campaignID, true)
		if err != nil || c == nil {
			return err
		}
		click, err := charge(*c)
		if err != nil {
			return err
		}
		if click != nil {
			tag, err := tx.Exec(ctx, `UPDATE campaigns
SET spent_amount = spent_amount + $2, updated_at = $3
WHERE id = $1 AND spent_amount + $2 <= total_budget`,
				campaignID, click.ChargedAmount, click.CreatedAt)
			if err != nil {
				return fmt.Errorf("update spend: %w", err)
			}
			if tag.RowsAffected() != 1 {
				return ErrOverspend
			}
			_, err = tx.Exec(ctx, `INSERT INTO click_events (id, campaign_id, viewer_id, charged_amount, created_at)
VALUES ($1,$2,$3,$4,$5)`,
				click.ID, click.CampaignID, click.ViewerID, click.ChargedAmount, click.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert click: %w", err)
			}
			c.SpentAmount += click.ChargedAmount
			c.UpdatedAt = click.CreatedAt
		}
		out = &port.ChargeOutcome{Campaign: *c, Click: click}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CampaignRepository) GetClickTotals(ctx context.Context, campaignID string) (port.ClickTotals, error) {
	var totals port.ClickTotals
	err := r.pool.QueryRow(ctx,
		`SELECT count(*), COALESCE(sum(charged_amount), 0) FROM click_events WHERE campaign_id = $1`,
		campaignID).Scan(&totals.Count, &totals.Amount)
	if err != nil {
		return totals, fmt.Errorf("click totals: %w", err)
	}
	return totals, nil
}

func (r *CampaignRepository) ListStatusChanges(ctx context.Context, campaignID string) ([]domain.StatusChange, error) {
	rows, err := r.pool.Query(ctx, `SELECT campaign_id, COALESCE(from_status, ''), to_status, actor, changed_at
FROM campaign_status_changes WHERE campaign_id = $1 ORDER BY id`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StatusChange, error) {
		var (
			sc       domain.StatusChange
			from, to string
		)
		err := row.Scan(&sc.CampaignID, &from, &to, &sc.Actor, &sc.At)
		sc.From, sc.To, sc.At = domain.Status(from), domain.Status(to), sc.At.UTC()
		return sc, err
	})
}

// effectiveStatusCond extends a stored status condition with lazy expiry:
// a closed window reads as ENDED.
func effectiveStatusCond(cond string, status domain.Status, nowParam string) string {
	if status == domain.StatusEnded {
		return "(" + cond + " OR end_at < " + nowParam + ")"
	}
	return cond + " AND end_at >= " + nowParam
}

func getCampaign(ctx context.Context, q querier, id string, forUpdate bool) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	c, err := scanCampaign(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func queryCampaigns(ctx context.Context, q querier, query string, args ...any) ([]domain.Campaign, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		return scanCampaign(row)
	})
}

func insertStatusChange(ctx context.Context, q querier, change domain.StatusChange) error {
	var from *string
	if change.From != "" {
		s := string(change.From)
		from = &s
	}
	_, err := q.Exec(ctx, `INSERT INTO campaign_status_changes (campaign_id, from_status, to_status, actor, changed_at)
VALUES ($1,$2,$3,$4,$5)`, change.CampaignID, from, string(change.To), change.Actor, change.At)
	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}
