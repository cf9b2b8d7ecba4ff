package httpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moviedata/reception/internal/domain"
	"github.com/moviedata/reception/internal/platform/config"
)

type mockAppService struct {
	storage       bool
	analyzeFn     func(ctx context.Context, reviews []string) domain.ReceptionProfile
	getFilmFn     func(ctx context.Context, id int64) (*domain.Film, error)
	listFilmsFn   func(ctx context.Context, filmType domain.FilmType) ([]domain.Film, error)
	importFilmFn  func(ctx context.Context, title, url string, reviews []string) (*domain.Film, error)
	analyzeFilmFn func(ctx context.Context, id int64) (*domain.Film, error)
}

func (m *mockAppService) Analyze(ctx context.Context, reviews []string) domain.ReceptionProfile {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, reviews)
	}
	return domain.ReceptionProfile{Error: domain.NoSentimentDataMessage}
}

func (m *mockAppService) StorageEnabled() bool { return m.storage }

func (m *mockAppService) GetFilm(ctx context.Context, id int64) (*domain.Film, error) {
	if m.getFilmFn != nil {
		return m.getFilmFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) ListFilms(ctx context.Context, filmType domain.FilmType) ([]domain.Film, error) {
	if m.listFilmsFn != nil {
		return m.listFilmsFn(ctx, filmType)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) ImportFilm(ctx context.Context, title, url string, reviews []string) (*domain.Film, error) {
	if m.importFilmFn != nil {
		return m.importFilmFn(ctx, title, url, reviews)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) AnalyzeFilm(ctx context.Context, id int64) (*domain.Film, error) {
	if m.analyzeFilmFn != nil {
		return m.analyzeFilmFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		APIRateLimit:    1000,
		APIBurst:        1000,
		MaxBatchReviews: 5,
	}
}

func newTestServer(t *testing.T, app appService, opts ...func(*testServerOptions)) *Server {
	t.Helper()
	o := testServerOptions{cfg: testConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	return NewServer(o.cfg, app, nil, o.metricsHandler, o.healthChecks)
}

type testServerOptions struct {
	cfg            *config.Config
	metricsHandler http.Handler
	healthChecks   []HealthCheck
}

func withHealthChecks(checks ...HealthCheck) func(*testServerOptions) {
	return func(o *testServerOptions) { o.healthChecks = checks }
}

func withConfig(mutate func(*config.Config)) func(*testServerOptions) {
	return func(o *testServerOptions) { mutate(o.cfg) }
}

func withMetricsHandler(h http.Handler) func(*testServerOptions) {
	return func(o *testServerOptions) { o.metricsHandler = h }
}

func doRequest(srv *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}
