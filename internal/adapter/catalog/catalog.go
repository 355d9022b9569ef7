// Package catalog resolves promoted items against the marketplace catalog
// service.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"marketplace-ads/internal/config/configs"
	"marketplace-ads/internal/core/domain"
	"marketplace-ads/internal/core/port"
)

const defaultLookupAttempts = 3

// ErrUnexpectedStatus wraps catalog replies that are neither found nor
// not found.
var ErrUnexpectedStatus = errors.New("catalog: unexpected status")

// HTTPCatalog asks the catalog service whether a seller owns an item with
// GET {base}/sellers/{seller}/{kind}s/{id}. 200 means owned, 404 means
// unknown or owned by someone else.
type HTTPCatalog struct {
	base     *url.URL
	pages    string
	client   *http.Client
	attempts uint
	logger   *slog.Logger
}

var _ port.Catalog = (*HTTPCatalog)(nil)

// Option customises an HTTPCatalog.
type Option func(*HTTPCatalog)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPCatalog) { h.client = c }
}

// WithAttempts bounds lookups on transport errors and 5xx replies.
func WithAttempts(n uint) Option {
	return func(h *HTTPCatalog) { h.attempts = max(n, 1) }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *HTTPCatalog) { h.logger = l }
}

// NewHTTPCatalog builds a catalog client from cfg. cfg.BaseURL must be set.
func NewHTTPCatalog(cfg configs.Catalog, opts ...Option) (*HTTPCatalog, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("catalog url %q must be absolute", cfg.BaseURL)
	}
	h := &HTTPCatalog{
		base:  base,
		pages: strings.TrimRight(cfg.PageBaseURL, "/"),
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		attempts: defaultLookupAttempts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *HTTPCatalog) ItemExists(ctx context.Context, sellerID string, item domain.ItemRef) (bool, error) {
	target := h.base.JoinPath("sellers", sellerID, string(item.Kind)+"s", item.ID).String()

	owned, err := backoff.Retry(ctx, func() (bool, error) {
		return h.lookup(ctx, target)
	},
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxTries(h.attempts),
	)
	if err != nil {
		h.logger.WarnContext(ctx, "catalog lookup failed",
			slog.String("seller_id", sellerID),
			slog.String("item_id", item.ID),
			slog.Any("error", err),
		)
		return false, err
	}
	return owned, nil
}

func (h *HTTPCatalog) lookup(ctx context.Context, target string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, backoff.Permanent(fmt.Errorf("build catalog request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return false, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	default:
		return false, backoff.Permanent(fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}
}

func (h *HTTPCatalog) ItemURL(item domain.ItemRef) string {
	return itemURL(h.pages, item)
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return b
}

func itemURL(pages string, item domain.ItemRef) string {
	return pages + "/" + string(item.Kind) + "s/" + url.PathEscape(item.ID)
}
