package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
	"marketplace-ads/internal/metrics"
)

const tracerName = "marketplace-ads/usecase"

// AdUseCase implements port.AdUseCase. It owns the campaign lifecycle,
// the budget ledger and the serving read path, and talks to storage only
// through the injected CampaignRepository.
type AdUseCase struct {
	repo      port.CampaignRepository
	catalog   port.Catalog
	publisher port.EventPublisher
	reach     port.ReachEstimator

	matcher *Matcher
	ledger  *Ledger

	// placements are the ad slots reported by name in metrics.
	placements []string

	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

var _ port.AdUseCase = (*AdUseCase)(nil)

// Option customises an AdUseCase.
type Option func(*AdUseCase)

// WithPublisher forwards lifecycle and click events to p.
func WithPublisher(p port.EventPublisher) Option {
	return func(u *AdUseCase) { u.publisher = p }
}

// WithReach enables audience expansion. Selection feeds strict-match
// viewers to estimator, and policy decides when reach is insufficient.
func WithReach(estimator port.ReachEstimator, policy port.ReachPolicy) Option {
	return func(u *AdUseCase) {
		u.reach = estimator
		u.matcher.policy = policy
	}
}

// WithPlacements names the ad slots that get their own metric label.
func WithPlacements(names ...string) Option {
	return func(u *AdUseCase) { u.placements = names }
}

func WithLogger(l *slog.Logger) Option {
	return func(u *AdUseCase) { u.logger = l }
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(u *AdUseCase) { u.now = now }
}

// NewAdUseCase wires the engine around a store and a catalog. Without
// WithReach the matcher never broadens an audience.
func NewAdUseCase(repo port.CampaignRepository, catalog port.Catalog, opts ...Option) *AdUseCase {
	u := &AdUseCase{
		repo:    repo,
		catalog: catalog,
		matcher: &Matcher{},
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	u.matcher.logger = u.logger
	u.ledger = NewLedger(repo, u.now)
	return u
}

func (u *AdUseCase) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return u.tracer.Start(ctx, "AdUseCase."+name, trace.WithAttributes(attrs...))
}

// endSpan marks unexpected failures on the span. Expected domain outcomes
// such as a refused click stay unset.
func endSpan(span trace.Span, err error) {
	if err != nil && !isDomainError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isDomainError(err error) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidState) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrNotEligible)
}

func (u *AdUseCase) load(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := u.repo.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (u *AdUseCase) publishStatusChange(ctx context.Context, change domain.StatusChange) {
	from := string(change.From)
	if from == "" {
		from = "NONE"
	}
	metrics.LifecycleTransitions.WithLabelValues(from, string(change.To)).Inc()
	u.logger.Info("campaign status changed",
		slog.String("campaign_id", change.CampaignID),
		slog.String("from", string(change.From)),
		slog.String("to", string(change.To)),
		slog.String("actor", change.Actor),
	)
	if u.publisher == nil {
		return
	}
	if err := u.publisher.PublishStatusChange(ctx, change); err != nil {
		metrics.EventsPublishFailed.Inc()
		u.logger.Warn("publish status change", slog.String("campaign_id", change.CampaignID), slog.Any("error", err))
	}
}

func (u *AdUseCase) publishClick(ctx context.Context, click domain.ClickEvent) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.PublishClick(ctx, click); err != nil {
		metrics.EventsPublishFailed.Inc()
		u.logger.Warn("publish click", slog.String("campaign_id", click.CampaignID), slog.Any("error", err))
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
