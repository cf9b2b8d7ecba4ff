package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/moviedata/reception/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSet_RegistersWithoutConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { NewSet(reg) })

	// A second registration of the same group must collide.
	assert.Panics(t, func() { NewReceptionMetrics(reg) })
}

func TestReceptionMetrics(t *testing.T) {
	m := NewReceptionMetrics(prometheus.NewRegistry())

	m.ReviewScored()
	m.ReviewScored()
	m.ReviewSkipped("classifier_error")
	m.ProfileBuilt(domain.FilmTypePolarizing, 250*time.Millisecond)
	m.ProfileBuilt("", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReviewsScored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsSkipped.WithLabelValues("classifier_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Profiles.WithLabelValues("polarizing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Profiles.WithLabelValues("none")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ProfileDuration))
}

func TestClassifierMetrics(t *testing.T) {
	m := NewClassifierMetrics(prometheus.NewRegistry())

	m.ObserveRequest("http", "ok", 10*time.Millisecond)
	m.ObserveRequest("http", "error", time.Second)
	m.ObserveRequest("vader", "ok", time.Microsecond)
	m.BreakerStateChanged(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("http", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("http", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState))
}

func TestCacheMetrics(t *testing.T) {
	m := NewCacheMetrics(prometheus.NewRegistry())

	m.Hit("memory")
	m.Miss("memory")
	m.Miss("redis")
	m.MemoryEntries(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hits.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misses.WithLabelValues("redis")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Entries))
}

func TestRedisAndDBMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRedisMetrics(reg)
	d := NewDBMetrics(reg)

	r.CommandDone("get", false, time.Millisecond)
	r.CommandDone("get", true, time.Millisecond)
	r.DialFailed()
	r.BreakerStateChanged("open", 2)
	d.QueryDone("SELECT", false, time.Millisecond)
	d.QueryDone("UPDATE", true, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.OpsTotal.WithLabelValues("get", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.OpsTotal.WithLabelValues("get", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ConnectionErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.BreakerState))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.ErrorsTotal.WithLabelValues("UPDATE")))
	assert.Equal(t, 0.0, testutil.ToFloat64(d.ErrorsTotal.WithLabelValues("SELECT")))
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())
	e := echo.New()
	e.Use(m.Middleware())
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.POST("/api/reception", ok)
	e.POST("/api/films/:id/reception", func(c echo.Context) error { return c.NoContent(http.StatusNotFound) })
	e.GET("/health/live", ok)

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/api/reception"},
		{http.MethodPost, "/api/films/42/reception"},
		{http.MethodPost, "/api/films/43/reception"},
		{http.MethodGet, "/health/live"},
		{http.MethodGet, "/api/unknown"},
	} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(r.method, r.path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("analyze", "POST", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("analyze_film", "POST", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight.WithLabelValues("analyze")))
}

func TestOperation(t *testing.T) {
	op, ok := Operation("/api/films/:id")
	assert.True(t, ok)
	assert.Equal(t, "film", op)

	_, ok = Operation("/api/films/7")
	assert.False(t, ok)
	_, ok = Operation("/health/ready")
	assert.False(t, ok)
}

func TestHandler_ExposesNamespace(t *testing.T) {
	reg := NewRegistry()
	m := NewReceptionMetrics(reg)
	m.ReviewScored()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), "reception_reviews_scored_total 1"))
	assert.Contains(t, string(body), "go_goroutines")
}
