package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument_UsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/api/prescriptions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/prescriptions/"+id, nil))
	}

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/api/prescriptions/{id}", "404"))
	assert.Equal(t, float64(3), got)
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.GateDecision("dashboard", "redirect_sign_in")
	m.PrescriptionStatusUpdated("DISPENSED")
	m.PrescriptionStatusUpdated("DISPENSED")
	m.LabResultRecorded(true)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.gateDecisions.WithLabelValues("dashboard", "redirect_sign_in")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.prescriptionStatus.WithLabelValues("DISPENSED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.labResults.WithLabelValues("true")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.GateDecision("x", "y") })
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.LabResultRecorded(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `health_dashboard_lab_orders_results_total{completed="false"} 1`)
}
