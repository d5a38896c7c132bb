package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.IncOnboardingCompleted()
		m.ObserveEvidenceReview("APPROVED")
		m.IncCampaignSubmitted()
		m.IncInvestmentCommitted()
		m.IncNotification("email")
	})
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.IncOnboardingCompleted()
	m.ObserveEvidenceReview("APPROVED")
	m.ObserveEvidenceReview("APPROVED")
	m.ObserveEvidenceReview("REJECTED")
	m.IncNotification("websocket")

	require.Equal(t, 1.0, testutil.ToFloat64(m.OnboardingCompleted))
	require.Equal(t, 2.0, testutil.ToFloat64(m.EvidenceReviews.WithLabelValues("APPROVED")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.EvidenceReviews.WithLabelValues("REJECTED")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("websocket")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/campaigns/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/campaigns/5", nil))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/campaigns/:id", "200")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "raven_http_requests_total")
}
