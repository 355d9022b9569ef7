package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ads_http_requests_total", Help: "HTTP requests"},
		[]string{"method", "route", "status"},
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ads_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ClicksCharged = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ads_clicks_charged_total", Help: "Clicks billed against a campaign budget"},
	)
	ClickChargeAmount = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ads_click_charge_minor_units_total", Help: "Sum of click charges in minor currency units"},
	)
	ClicksNotEligible = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ads_clicks_not_eligible_total", Help: "Clicks that were not billed"},
	)
	CampaignsServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ads_campaigns_served_total", Help: "Campaigns returned by ad selection"},
		[]string{"placement", "match"},
	)
	LifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ads_lifecycle_transitions_total", Help: "Persisted campaign status changes"},
		[]string{"from", "to"},
	)
	EventsPublishFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ads_events_publish_failed_total", Help: "Ad events that could not be published"},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequestsTotal, APIRequestDuration,
		ClicksCharged, ClickChargeAmount, ClicksNotEligible,
		CampaignsServed, LifecycleTransitions, EventsPublishFailed,
	)
}

func Handler() http.Handler { return promhttp.Handler() }
