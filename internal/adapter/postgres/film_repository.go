package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moviedata/reception/internal/domain"
)

type FilmRepo struct {
	pool *pgxpool.Pool
}

var _ domain.FilmRepository = (*FilmRepo)(nil)

func NewFilmRepo(pool *pgxpool.Pool) *FilmRepo {
	return &FilmRepo{pool: pool}
}

const filmColumns = `id, title, url, reviews, profile, film_type, analyzed_at, created_at, updated_at`

// Upsert stores reviews for (title, url). New reviews invalidate any stored
// profile so the film becomes pending again.
func (r *FilmRepo) Upsert(ctx context.Context, title, url string, reviews []string) (*domain.Film, error) {
	if reviews == nil {
		reviews = []string{}
	}
	encoded, err := json.Marshal(reviews)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reviews: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO films (title, url, reviews)
		VALUES ($1, $2, $3)
		ON CONFLICT (title, url) DO UPDATE SET
			reviews     = EXCLUDED.reviews,
			profile     = NULL,
			film_type   = NULL,
			analyzed_at = NULL,
			updated_at  = NOW()
		RETURNING `+filmColumns, title, url, encoded)

	film, err := scanFilm(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert film: %w", err)
	}
	return film, nil
}

func (r *FilmRepo) Get(ctx context.Context, id int64) (*domain.Film, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+filmColumns+` FROM films WHERE id = $1`, id)
	film, err := scanFilm(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFilmNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get film: %w", err)
	}
	return film, nil
}

func (r *FilmRepo) List(ctx context.Context, filmType domain.FilmType) ([]domain.Film, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filmType == "" {
		rows, err = r.pool.Query(ctx, `SELECT `+filmColumns+` FROM films ORDER BY id`)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+filmColumns+` FROM films WHERE film_type = $1 ORDER BY id`, string(filmType))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	return collectFilms(rows)
}

func (r *FilmRepo) ListPending(ctx context.Context, limit int) ([]domain.Film, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+filmColumns+` FROM films
		WHERE profile IS NULL AND reviews IS NOT NULL
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending films: %w", err)
	}
	return collectFilms(rows)
}

// SaveProfile stores the profile and clears the raw reviews.
func (r *FilmRepo) SaveProfile(ctx context.Context, id int64, profile domain.ReceptionProfile, analyzedAt time.Time) error {
	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	var filmType *string
	if profile.FilmType != "" {
		ft := string(profile.FilmType)
		filmType = &ft
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE films SET
			profile     = $2,
			film_type   = $3,
			analyzed_at = $4,
			reviews     = NULL,
			updated_at  = NOW()
		WHERE id = $1`, id, encoded, filmType, analyzedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFilmNotFound
	}
	return nil
}

func collectFilms(rows pgx.Rows) ([]domain.Film, error) {
	films, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Film, error) {
		f, err := scanFilm(row)
		if err != nil {
			return domain.Film{}, err
		}
		return *f, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan films: %w", err)
	}
	return films, nil
}

func scanFilm(row pgx.Row) (*domain.Film, error) {
	var (
		f        domain.Film
		reviews  []byte
		profile  []byte
		filmType *string
	)
	if err := row.Scan(&f.ID, &f.Title, &f.URL, &reviews, &profile, &filmType, &f.AnalyzedAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}

	if reviews != nil {
		if err := json.Unmarshal(reviews, &f.Reviews); err != nil {
			return nil, fmt.Errorf("failed to decode reviews of film %d: %w", f.ID, err)
		}
	}
	if profile != nil {
		var p domain.ReceptionProfile
		if err := json.Unmarshal(profile, &p); err != nil {
			return nil, fmt.Errorf("failed to decode profile of film %d: %w", f.ID, err)
		}
		f.Profile = &p
	}
	if filmType != nil {
		f.FilmType = domain.FilmType(*filmType)
	}
	return &f, nil
}
