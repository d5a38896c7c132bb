package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	OnboardingCompleted  prometheus.Counter
	EvidenceReviews      *prometheus.CounterVec
	CampaignsSubmitted   prometheus.Counter
	InvestmentsCommitted prometheus.Counter
	NotificationsSent    *prometheus.CounterVec
}

// New creates the metrics on a dedicated registry, so tests can build as
// many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raven_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "raven_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		OnboardingCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "raven_onboarding_completed_total",
			Help: "Completed startup onboarding wizards",
		}),
		EvidenceReviews: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raven_evidence_reviews_total",
			Help: "Evidence reviews by resulting status",
		}, []string{"status"}),
		CampaignsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "raven_campaigns_submitted_total",
			Help: "Campaigns submitted for review",
		}),
		InvestmentsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "raven_investments_committed_total",
			Help: "Incubator investments marked as committed",
		}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raven_notifications_sent_total",
			Help: "Notifications delivered by channel",
		}, []string{"channel"}),
	}
}

func (m *Metrics) IncOnboardingCompleted() {
	if m == nil {
		return
	}
	m.OnboardingCompleted.Inc()
}

func (m *Metrics) ObserveEvidenceReview(status string) {
	if m == nil {
		return
	}
	m.EvidenceReviews.WithLabelValues(status).Inc()
}

func (m *Metrics) IncCampaignSubmitted() {
	if m == nil {
		return
	}
	m.CampaignsSubmitted.Inc()
}

func (m *Metrics) IncInvestmentCommitted() {
	if m == nil {
		return
	}
	m.InvestmentsCommitted.Inc()
}

func (m *Metrics) IncNotification(channel string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(channel).Inc()
}

// Middleware records request counts and latency keyed by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
