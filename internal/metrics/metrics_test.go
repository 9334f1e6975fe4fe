package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET /api/projects", http.MethodGet, 200, 15*time.Millisecond)
	m.ObserveRequest("GET /api/projects", http.MethodGet, 200, 5*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET /api/projects", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
}

func TestObserveRepairAndCounters(t *testing.T) {
	m := New()
	m.ObserveRepair("experience-highlights", "repaired")
	m.ObserveRepair("experience-highlights", "repaired")
	m.ObserveRepair("experience-highlights", "canonical")
	m.VisitRecorded()
	m.UploadFinished("stored")
	m.UploadFinished("rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.repairs.WithLabelValues("experience-highlights", "repaired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.repairs.WithLabelValues("experience-highlights", "canonical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.visits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("rejected")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.VisitRecorded()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfolio_visits_recorded_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
