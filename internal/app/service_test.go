package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/moviedata/reception/internal/catalog"
	"github.com/moviedata/reception/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockEngine struct {
	calls     atomic.Int32
	processFn func(ctx context.Context, reviews []string) domain.ReceptionProfile
}

func (m *mockEngine) Process(ctx context.Context, reviews []string) domain.ReceptionProfile {
	m.calls.Add(1)
	if m.processFn != nil {
		return m.processFn(ctx, reviews)
	}
	return profileFor(reviews)
}

// profileFor returns a polarizing profile for non-empty input and the
// no-data profile otherwise.
func profileFor(reviews []string) domain.ReceptionProfile {
	if len(reviews) == 0 {
		return domain.ReceptionProfile{Error: domain.NoSentimentDataMessage, Keywords: []string{}}
	}
	return domain.ReceptionProfile{
		FilmType:     domain.FilmTypePolarizing,
		TotalReviews: len(reviews),
		Sentiments:   make([]float64, len(reviews)),
	}
}

type mockFilmRepo struct {
	mu            sync.Mutex
	getFn         func(ctx context.Context, id int64) (*domain.Film, error)
	listFn        func(ctx context.Context, filmType domain.FilmType) ([]domain.Film, error)
	listPendingFn func(ctx context.Context, limit int) ([]domain.Film, error)
	upsertFn      func(ctx context.Context, title, url string, reviews []string) (*domain.Film, error)
	saved         map[int64]domain.ReceptionProfile
	savedAt       map[int64]time.Time
	saveErr       error
}

func (m *mockFilmRepo) Upsert(ctx context.Context, title, url string, reviews []string) (*domain.Film, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, title, url, reviews)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockFilmRepo) Get(ctx context.Context, id int64) (*domain.Film, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrFilmNotFound
}

func (m *mockFilmRepo) List(ctx context.Context, filmType domain.FilmType) ([]domain.Film, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filmType)
	}
	return nil, nil
}

func (m *mockFilmRepo) ListPending(ctx context.Context, limit int) ([]domain.Film, error) {
	if m.listPendingFn != nil {
		return m.listPendingFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockFilmRepo) SaveProfile(_ context.Context, id int64, profile domain.ReceptionProfile, analyzedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.saved == nil {
		m.saved = map[int64]domain.ReceptionProfile{}
		m.savedAt = map[int64]time.Time{}
	}
	m.saved[id] = profile
	m.savedAt[id] = analyzedAt
	return nil
}

func pendingFilm(id int64, reviews ...string) *domain.Film {
	return &domain.Film{ID: id, Title: fmt.Sprintf("film-%d", id), Reviews: reviews}
}

// --- Tests ---

func TestService_Analyze(t *testing.T) {
	svc := NewService(&mockEngine{}, nil, Options{})
	p := svc.Analyze(context.Background(), []string{"a", "b"})
	assert.Equal(t, 2, p.TotalReviews)
	assert.False(t, svc.StorageEnabled())
}

func TestService_StorageDisabled(t *testing.T) {
	svc := NewService(&mockEngine{}, nil, Options{})
	ctx := context.Background()

	_, err := svc.GetFilm(ctx, 1)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.ListFilms(ctx, "")
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.ImportFilm(ctx, "t", "u", nil)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.AnalyzeFilm(ctx, 1)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.AnalyzePending(ctx, 10)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestService_AnalyzeFilm(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	repo := &mockFilmRepo{getFn: func(_ context.Context, id int64) (*domain.Film, error) {
		return pendingFilm(id, "r1", "r2", "r3"), nil
	}}
	svc := NewService(&mockEngine{}, repo, Options{Clock: clock})

	film, err := svc.AnalyzeFilm(context.Background(), 7)
	require.NoError(t, err)

	require.NotNil(t, film.Profile)
	assert.Equal(t, domain.FilmTypePolarizing, film.FilmType)
	assert.Nil(t, film.Reviews)
	assert.Equal(t, clock.Now(), *film.AnalyzedAt)
	assert.Equal(t, 3, repo.saved[7].TotalReviews)
	assert.Equal(t, clock.Now(), repo.savedAt[7])
}

func TestService_AnalyzeFilm_AlreadyAnalyzed(t *testing.T) {
	engine := &mockEngine{}
	stored := domain.ReceptionProfile{FilmType: domain.FilmTypeDivisive}
	repo := &mockFilmRepo{getFn: func(_ context.Context, id int64) (*domain.Film, error) {
		return &domain.Film{ID: id, Profile: &stored, FilmType: stored.FilmType}, nil
	}}
	svc := NewService(engine, repo, Options{})

	film, err := svc.AnalyzeFilm(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.FilmTypeDivisive, film.FilmType)
	assert.Zero(t, engine.calls.Load())
	assert.Empty(t, repo.saved)
}

func TestService_AnalyzeFilm_Errors(t *testing.T) {
	repo := &mockFilmRepo{}
	svc := NewService(&mockEngine{}, repo, Options{})

	_, err := svc.AnalyzeFilm(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrFilmNotFound)

	repo.getFn = func(_ context.Context, id int64) (*domain.Film, error) { return pendingFilm(id, "r"), nil }
	repo.saveErr = errors.New("db down")
	_, err = svc.AnalyzeFilm(context.Background(), 1)
	assert.ErrorContains(t, err, "db down")
}

func TestService_AnalyzeFilm_ConcurrentCallsShareWork(t *testing.T) {
	release := make(chan struct{})
	engine := &mockEngine{processFn: func(_ context.Context, reviews []string) domain.ReceptionProfile {
		<-release
		return profileFor(reviews)
	}}
	repo := &mockFilmRepo{getFn: func(_ context.Context, id int64) (*domain.Film, error) {
		return pendingFilm(id, "r"), nil
	}}
	svc := NewService(engine, repo, Options{})

	var wg sync.WaitGroup
	for range 5 {
		wg.Go(func() {
			_, err := svc.AnalyzeFilm(context.Background(), 1)
			assert.NoError(t, err)
		})
	}
	assert.Eventually(t, func() bool { return engine.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, engine.calls.Load(), int32(5))
	assert.Len(t, repo.saved, 1)
}

func TestService_AnalyzePending(t *testing.T) {
	films := map[int64]*domain.Film{
		1: pendingFilm(1, "a", "b"),
		2: pendingFilm(2),
		3: pendingFilm(3, "c"),
	}
	var gotLimit int
	repo := &mockFilmRepo{
		listPendingFn: func(_ context.Context, limit int) ([]domain.Film, error) {
			gotLimit = limit
			return []domain.Film{*films[1], *films[2], *films[3], {ID: 99}}, nil
		},
		getFn: func(_ context.Context, id int64) (*domain.Film, error) {
			if f, ok := films[id]; ok {
				return f, nil
			}
			return nil, domain.ErrFilmNotFound
		},
	}
	svc := NewService(&mockEngine{}, repo, Options{})

	summary, err := svc.AnalyzePending(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Analyzed)
	assert.Equal(t, 1, summary.NoData)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.ByType[domain.FilmTypePolarizing])
	assert.NotEmpty(t, summary.RunID)
}

func TestService_AnalyzePending_ListError(t *testing.T) {
	repo := &mockFilmRepo{listPendingFn: func(context.Context, int) ([]domain.Film, error) {
		return nil, errors.New("db down")
	}}
	_, err := NewService(&mockEngine{}, repo, Options{}).AnalyzePending(context.Background(), 1)
	assert.ErrorContains(t, err, "db down")
}

const (
	reviewsKey = "Рецензии 100 зрителей"
	profileKey = "Анализ_рецензий"
)

func TestService_ProcessCatalog(t *testing.T) {
	records := []catalog.Record{
		{Title: "with reviews", Details: map[string]any{reviewsKey: []any{"x", "y"}, "Страна": "СССР"}},
		{Title: "no reviews", Details: map[string]any{"Страна": "СССР"}},
		{Title: "bad reviews", Details: map[string]any{reviewsKey: "not a list"}},
		{Title: "empty reviews", Details: map[string]any{reviewsKey: []any{}}},
	}
	svc := NewService(&mockEngine{}, nil, Options{ReviewsKey: reviewsKey, ProfileKey: profileKey, FilmWorkers: 2})

	summary, err := svc.ProcessCatalog(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Analyzed)
	assert.Equal(t, 1, summary.NoData)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)

	assert.NotContains(t, records[0].Details, reviewsKey)
	profile, ok := records[0].Details[profileKey].(domain.ReceptionProfile)
	require.True(t, ok)
	assert.Equal(t, 2, profile.TotalReviews)
	assert.Equal(t, "СССР", records[0].Details["Страна"])

	assert.NotContains(t, records[1].Details, profileKey)
	assert.Contains(t, records[2].Details, reviewsKey, "failed records are left untouched")
	assert.NotContains(t, records[3].Details, reviewsKey)
}

func TestService_ProcessCatalog_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []catalog.Record{{Details: map[string]any{reviewsKey: []any{"x"}}}}
	svc := NewService(&mockEngine{}, nil, Options{ReviewsKey: reviewsKey, ProfileKey: profileKey})

	_, err := svc.ProcessCatalog(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, records[0].Details, reviewsKey)
}
