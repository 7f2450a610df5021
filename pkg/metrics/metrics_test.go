package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObservesReports(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.ObserveReport("activity", "overview", time.Now(), nil)
	r.ObserveReport("activity", "overview", time.Now(), errors.New("boom"))
	r.SnapshotPersisted(true)
	r.SnapshotPersisted(false)

	require.Equal(t, 2, testutil.CollectAndCount(r.reportDur))
	require.Equal(t, 1.0, testutil.ToFloat64(r.persisted.WithLabelValues("failed")))
}

func TestRecorder_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewRecorder(reg)
	require.NoError(t, err)
	b, err := NewRecorder(reg)
	require.NoError(t, err)
	require.Same(t, a.reportDur, b.reportDur)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveReport("activity", "roles", time.Now(), nil)
	r.SnapshotPersisted(true)
}

func TestHTTP_CountsRequestsAndServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p, err := NewHTTP(HTTPOptions{Registerer: reg, Gatherer: reg})
	require.NoError(t, err)

	e := gin.New()
	p.Use(e)
	e.GET("/ping/:id", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1.0, testutil.ToFloat64(p.reqCnt.WithLabelValues("200", "GET", "/ping/:id", "")))

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "req_total")
}
