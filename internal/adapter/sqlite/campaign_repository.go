package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

const (
	campaignColumns = `id, seller_id, product_ref, service_ref, title, description,
	creative_type, creative_url, total_budget, spent_amount, max_cpc, start_at, end_at,
	target_countries, target_age_min, target_age_max, target_audience, expand_audience,
	status, created_at, updated_at`

	defaultChargeAttempts = 20
)

// CampaignRepository implements port.CampaignRepository on SQLite. Charges
// use optimistic concurrency: the spend update only applies while
// spent_amount and status still hold the values the charge was computed
// from, and a lost race re-reads the campaign and recomputes.
type CampaignRepository struct {
	db             *sqlx.DB
	chargeAttempts int
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

type Option func(*CampaignRepository)

// WithChargeAttempts bounds the optimistic retries of one charge.
func WithChargeAttempts(n int) Option {
	return func(r *CampaignRepository) {
		if n > 0 {
			r.chargeAttempts = n
		}
	}
}

func NewCampaignRepository(db *sqlx.DB, opts ...Option) *CampaignRepository {
	r := &CampaignRepository{db: db, chargeAttempts: defaultChargeAttempts}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *CampaignRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

func (r *CampaignRepository) CreateCampaign(ctx context.Context, c *domain.Campaign, change domain.StatusChange) error {
	row, err := toRow(c)
	if err != nil {
		return err
	}
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO campaigns (`+campaignColumns+`) VALUES (
	:id, :seller_id, :product_ref, :service_ref, :title, :description,
	:creative_type, :creative_url, :total_budget, :spent_amount, :max_cpc, :start_at, :end_at,
	:target_countries, :target_age_min, :target_age_max, :target_audience, :expand_audience,
	:status, :created_at, :updated_at)`, row)
		if err != nil {
			return fmt.Errorf("insert campaign: %w", err)
		}
		return insertStatusChange(ctx, tx, change)
	})
}

func (r *CampaignRepository) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return getCampaign(ctx, r.db, id)
}

func (r *CampaignRepository) ListCampaigns(ctx context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	var (
		where []string
		args  []any
	)
	if filter.SellerID != "" {
		where = append(where, "seller_id = ?")
		args = append(args, filter.SellerID)
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		switch {
		case filter.Now.IsZero():
			where = append(where, "status = ?")
		case filter.Status == domain.StatusEnded:
			where = append(where, "(status = ? OR end_at < ?)")
			args = append(args, filter.Now.UnixMilli())
		default:
			where = append(where, "status = ? AND end_at >= ?")
			args = append(args, filter.Now.UnixMilli())
		}
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, max(filter.Offset, 0))
	}
	return r.selectCampaigns(ctx, query, args...)
}

func (r *CampaignRepository) ListServableCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	ms := now.UnixMilli()
	return r.selectCampaigns(ctx, `SELECT `+campaignColumns+` FROM campaigns
WHERE status = 'ACTIVE'
  AND start_at <= ? AND end_at >= ?
  AND spent_amount < total_budget
ORDER BY created_at DESC, id`, ms, ms)
}

func (r *CampaignRepository) selectCampaigns(ctx context.Context, query string, args ...any) ([]domain.Campaign, error) {
	var rows []campaignRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select campaigns: %w", err)
	}
	out := make([]domain.Campaign, 0, len(rows))
	for _, row := range rows {
		c, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CampaignRepository) TransitionStatus(ctx context.Context, change domain.StatusChange) (*domain.Campaign, error) {
	var out *domain.Campaign
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			string(change.To), change.At.UnixMilli(), change.CampaignID, string(change.From))
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		if err = insertStatusChange(ctx, tx, change); err != nil {
			return err
		}
		out, err = getCampaign(ctx, tx, change.CampaignID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CampaignRepository) DeleteCampaign(ctx context.Context, id string, expected domain.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ? AND status = ?`, id, string(expected))
	if err != nil {
		return false, fmt.Errorf("delete campaign: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *CampaignRepository) ChargeClick(ctx context.Context, campaignID string, charge port.ChargeFunc) (*port.ChargeOutcome, error) {
	for range r.chargeAttempts {
		c, err := r.GetCampaign(ctx, campaignID)
		if err != nil || c == nil {
			return nil, err
		}
		click, err := charge(*c)
		if err != nil {
			return nil, err
		}
		if click == nil {
			return &port.ChargeOutcome{Campaign: *c}, nil
		}
		applied, err := r.applyCharge(ctx, c, click)
		if err != nil {
			return nil, err
		}
		if !applied {
			continue
		}
		c.SpentAmount += click.ChargedAmount
		c.UpdatedAt = fromMillis(click.CreatedAt.UnixMilli())
		return &port.ChargeOutcome{Campaign: *c, Click: click}, nil
	}
	return nil, port.ErrChargeConflict
}

// applyCharge adds click to the spend of seen if the stored row still
// matches it, and records the click in the same transaction.
func (r *CampaignRepository) applyCharge(ctx context.Context, seen *domain.Campaign, click *domain.ClickEvent) (applied bool, err error) {
	err = r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE campaigns
SET spent_amount = spent_amount + ?, updated_at = ?
WHERE id = ? AND spent_amount = ? AND status = ? AND spent_amount + ? <= total_budget`,
			click.ChargedAmount, click.CreatedAt.UnixMilli(),
			seen.ID, seen.SpentAmount, string(seen.Status), click.ChargedAmount)
		if err != nil {
			return fmt.Errorf("update spend: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO click_events (id, campaign_id, viewer_id, charged_amount, created_at)
VALUES (?, ?, ?, ?, ?)`,
			click.ID, click.CampaignID, click.ViewerID, click.ChargedAmount, click.CreatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("insert click: %w", err)
		}
		applied = true
		return nil
	})
	return applied, err
}

func (r *CampaignRepository) GetClickTotals(ctx context.Context, campaignID string) (port.ClickTotals, error) {
	var totals port.ClickTotals
	err := r.db.QueryRowxContext(ctx,
		`SELECT count(*), COALESCE(sum(charged_amount), 0) FROM click_events WHERE campaign_id = ?`,
		campaignID).Scan(&totals.Count, &totals.Amount)
	if err != nil {
		return totals, fmt.Errorf("click totals: %w", err)
	}
	return totals, nil
}

func (r *CampaignRepository) ListStatusChanges(ctx context.Context, campaignID string) ([]domain.StatusChange, error) {
	var rows []statusChangeRow
	err := r.db.SelectContext(ctx, &rows, `SELECT campaign_id, from_status, to_status, actor, changed_at
FROM campaign_status_changes WHERE campaign_id = ? ORDER BY id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("select status changes: %w", err)
	}
	out := make([]domain.StatusChange, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func getCampaign(ctx context.Context, q sqlx.QueryerContext, id string) (*domain.Campaign, error) {
	var row campaignRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	c, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func insertStatusChange(ctx context.Context, tx *sqlx.Tx, change domain.StatusChange) error {
	from := sql.NullString{String: string(change.From), Valid: change.From != ""}
	_, err := tx.ExecContext(ctx, `INSERT INTO campaign_status_changes (campaign_id, from_status, to_status, actor, changed_at)
VALUES (?, ?, ?, ?, ?)`, change.CampaignID, from, string(change.To), change.Actor, change.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}
