package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersRecord(t *testing.T) {
	m := New()

	m.CaseSaved("create")
	m.CaseSaved("create")
	m.ObserveStore("get_all_cases", time.Now(), errors.New("boom"))
	m.ViewRecomputed(7)
	m.IntakeRecord("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.casesSaved.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("get_all_cases")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.viewSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.intakeRecords.WithLabelValues("ok")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.CaseSaved("create")
	m.ObserveStore("x", time.Now(), nil)
	m.ViewRecomputed(1)
	m.IntakeRecord("failed")
	m.Published("created")
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Published("updated")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "issues_bus_published_total"))
}
