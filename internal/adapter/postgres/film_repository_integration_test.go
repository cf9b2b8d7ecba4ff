package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/moviedata/reception/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() domain.ReceptionProfile {
	return domain.ReceptionProfile{
		Keywords:        []string{"фильм", "сюжет"},
		Softmax:         0.5123,
		MeanSentiment:   0.4321,
		MedianSentiment: 0.5,
		StdDeviation:    0.2,
		DistributionRatios: map[domain.Bucket]float64{
			domain.BucketStrongPositive: 0.5,
			domain.BucketWeakPositive:   0.5,
		},
		FilmType:     domain.FilmTypeMildlyPositive,
		TotalReviews: 2,
		Sentiments:   []float64{0.7, 0.3},
	}
}

func TestFilmRepo_UpsertAndGet(t *testing.T) {
	repo := NewFilmRepo(setupTestDB(t))
	ctx := context.Background()

	film, err := repo.Upsert(ctx, "Сталкер", "https://example.org/stalker", []string{"a", "b"})
	require.NoError(t, err)
	assert.NotZero(t, film.ID)
	assert.Equal(t, []string{"a", "b"}, film.Reviews)
	assert.False(t, film.Analyzed())

	got, err := repo.Get(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, film.Title, got.Title)
	assert.Equal(t, film.URL, got.URL)
	assert.Equal(t, film.Reviews, got.Reviews)
}

func TestFilmRepo_Get_NotFound(t *testing.T) {
	repo := NewFilmRepo(setupTestDB(t))
	_, err := repo.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrFilmNotFound)
}

func TestFilmRepo_SaveProfileClearsReviews(t *testing.T) {
	repo := NewFilmRepo(setupTestDB(t))
	ctx := context.Background()

	film, err := repo.Upsert(ctx, "Solaris", "", []string{"review"})
	require.NoError(t, err)

	analyzedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveProfile(ctx, film.ID, sampleProfile(), analyzedAt))

	got, err := repo.Get(ctx, film.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Nil(t, got.Reviews)
	assert.Equal(t, domain.FilmTypeMildlyPositive, got.FilmType)
	assert.Equal(t, domain.FilmTypeMildlyPositive, got.Profile.FilmType)
	assert.InDelta(t, 0.432, got.Profile.MeanSentiment, 1e-9)
	require.NotNil(t, got.AnalyzedAt)
	assert.True(t, analyzedAt.Equal(*got.AnalyzedAt))
}

func TestFilmRepo_SaveProfile_NotFound(t *testing.T) {
	repo := NewFilmRepo(setupTestDB(t))
	err := repo.SaveProfile(context.Background(), 42, sampleProfile(), time.Now())
	assert.ErrorIs(t, err, domain.ErrFilmNotFound)
}

func TestFilmRepo_UpsertResetsProfile(t *testing.T) {
	repo := NewFilmRepo(setupTestDB(t))
	ctx := context.Background()

	film, err := repo.Upsert(ctx, "Mirror", "u", []string{"old"})
	require.NoError(t, err)
	require.NoError(t, repo.SaveProfile(ctx, film.ID, sampleProfile(), time.Now()))

	again, err := repo.Upsert(ctx, "Mirror", "u", []string{"new"})
	require.NoError(t, err)
	assert.Equal(t, film.ID, again.ID)
	assert.Equal(t, []string{"new"}, again.Reviews)
	assert.Nil(t, again.Profile)
	assert.Empty(t, again.FilmType)
	assert.Nil(t, again.AnalyzedAt)
}

func TestFilmRepo_ListAndPending(t *testing.T) {
	repo := NewFilmRepo(setupTestDB(t))
	ctx := context.Background()

	a, err := repo.Upsert(ctx, "A", "", []string{"x"})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, "B", "", []string{"y"})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, "C", "", []string{"z"})
	require.NoError(t, err)
	require.NoError(t, repo.SaveProfile(ctx, a.ID, sampleProfile(), time.Now()))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mild, err := repo.List(ctx, domain.FilmTypeMildlyPositive)
	require.NoError(t, err)
	require.Len(t, mild, 1)
	assert.Equal(t, "A", mild[0].Title)

	pending, err := repo.ListPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "B", pending[0].Title)

	pending, err = repo.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestFilmRepo_NoDataProfile(t *testing.T) {
	repo := NewFilmRepo(setupTestDB(t))
	ctx := context.Background()

	film, err := repo.Upsert(ctx, "Empty", "", []string{"short"})
	require.NoError(t, err)

	profile := domain.ReceptionProfile{Error: domain.NoSentimentDataMessage, Keywords: []string{}, TotalReviews: 0}
	require.NoError(t, repo.SaveProfile(ctx, film.ID, profile, time.Now()))

	got, err := repo.Get(ctx, film.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.False(t, got.Profile.HasData())
	assert.Empty(t, got.FilmType)
}
