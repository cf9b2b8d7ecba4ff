package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/moviedata/reception/internal/catalog"
	"github.com/moviedata/reception/internal/domain"
	"github.com/moviedata/reception/internal/platform/correlation"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrStorageDisabled is returned by film operations when no repository is
// configured.
var ErrStorageDisabled = errors.New("film storage is not configured")

type Options struct {
	// ReviewsKey and ProfileKey name the catalog detail entries.
	ReviewsKey string
	ProfileKey string
	// FilmWorkers bounds how many films are analyzed at once. Defaults to 1.
	FilmWorkers int
	Clock       clockwork.Clock
}

// Service is the only component that references multiple domain components.
type Service struct {
	engine       domain.ReceptionEngine
	films        domain.FilmRepository
	reviewsKey   string
	profileKey   string
	filmWorkers  int
	clock        clockwork.Clock
	analyzeGroup singleflight.Group
}

// NewService creates the application layer service. films may be nil when
// storage is not configured.
func NewService(engine domain.ReceptionEngine, films domain.FilmRepository, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Service{
		engine:      engine,
		films:       films,
		reviewsKey:  opts.ReviewsKey,
		profileKey:  opts.ProfileKey,
		filmWorkers: max(opts.FilmWorkers, 1),
		clock:       opts.Clock,
	}
}

// StorageEnabled reports whether film operations are available.
func (s *Service) StorageEnabled() bool { return s.films != nil }

// Analyze builds a profile for an ad-hoc batch of reviews.
func (s *Service) Analyze(ctx context.Context, reviews []string) domain.ReceptionProfile {
	return s.engine.Process(ctx, reviews)
}

func (s *Service) GetFilm(ctx context.Context, id int64) (*domain.Film, error) {
	if s.films == nil {
		return nil, ErrStorageDisabled
	}
	return s.films.Get(ctx, id)
}

func (s *Service) ListFilms(ctx context.Context, filmType domain.FilmType) ([]domain.Film, error) {
	if s.films == nil {
		return nil, ErrStorageDisabled
	}
	return s.films.List(ctx, filmType)
}

func (s *Service) ImportFilm(ctx context.Context, title, url string, reviews []string) (*domain.Film, error) {
	if s.films == nil {
		return nil, ErrStorageDisabled
	}
	return s.films.Upsert(ctx, title, url, reviews)
}

// AnalyzeFilm builds and stores the profile of a stored film. Concurrent calls
// for the same film share one analysis. A film that was already analyzed is
// returned unchanged.
func (s *Service) AnalyzeFilm(ctx context.Context, id int64) (*domain.Film, error) {
	if s.films == nil {
		return nil, ErrStorageDisabled
	}

	v, err, _ := s.analyzeGroup.Do(strconv.FormatInt(id, 10), func() (any, error) {
		film, err := s.films.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if film.Analyzed() {
			return film, nil
		}

		profile := s.engine.Process(ctx, film.Reviews)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis of film %d interrupted: %w", id, err)
		}

		analyzedAt := s.clock.Now().UTC()
		if err := s.films.SaveProfile(ctx, id, profile, analyzedAt); err != nil {
			return nil, err
		}

		slog.InfoContext(ctx, "Film analyzed", "film_id", id, "film_type", string(profile.FilmType), "total_reviews", profile.TotalReviews)

		film.Profile = &profile
		film.FilmType = profile.FilmType
		film.AnalyzedAt = &analyzedAt
		film.Reviews = nil
		return film, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Film), nil
}

// RunSummary counts the outcome of a batch run.
type RunSummary struct {
	RunID    string
	Total    int
	Analyzed int
	NoData   int
	Skipped  int
	Failed   int
	ByType   map[domain.FilmType]int
}

func newRunSummary() *RunSummary {
	return &RunSummary{
		RunID:  uuid.NewString(),
		ByType: make(map[domain.FilmType]int),
	}
}

func (r *RunSummary) record(p domain.ReceptionProfile) {
	r.Analyzed++
	if !p.HasData() {
		r.NoData++
		return
	}
	r.ByType[p.FilmType]++
}

// AnalyzePending analyzes up to limit films that have reviews but no
// profile. Per-film failures are logged and counted.
func (s *Service) AnalyzePending(ctx context.Context, limit int) (*RunSummary, error) {
	if s.films == nil {
		return nil, ErrStorageDisabled
	}

	summary := newRunSummary()
	ctx = correlation.WithID(ctx, summary.RunID[:8])

	pending, err := s.films.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending films: %w", err)
	}
	summary.Total = len(pending)

	start := s.clock.Now()
	for _, film := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		analyzed, err := s.AnalyzeFilm(ctx, film.ID)
		if err != nil {
			summary.Failed++
			slog.ErrorContext(ctx, "Film analysis failed", "film_id", film.ID, "error", err)
			continue
		}
		summary.record(*analyzed.Profile)
	}

	slog.InfoContext(ctx, "Pending films analyzed",
		"total", summary.Total, "analyzed", summary.Analyzed, "failed", summary.Failed,
		"elapsed_seconds", s.clock.Since(start).Seconds())
	return summary, nil
}

// ProcessCatalog analyzes every record whose details hold reviews under the
// reviews key, replacing them with the profile under the profile key.
// Records are modified in place.
func (s *Service) ProcessCatalog(ctx context.Context, records []catalog.Record) (*RunSummary, error) {
	summary := newRunSummary()
	summary.Total = len(records)
	ctx = correlation.WithID(ctx, summary.RunID[:8])

	type outcome struct {
		profile domain.ReceptionProfile
		state   int
	}
	const (
		stateSkipped = iota
		stateAnalyzed
		stateFailed
	)
	outcomes := make([]outcome, len(records))

	start := s.clock.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.filmWorkers)
	for i := range records {
		rec := &records[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			reviews, err := rec.Reviews(s.reviewsKey)
			if errors.Is(err, catalog.ErrNoReviews) {
				outcomes[i].state = stateSkipped
				return nil
			}
			if err != nil {
				outcomes[i].state = stateFailed
				slog.ErrorContext(gctx, "Film analysis failed", "film_index", i, "title", rec.Title, "error", err)
				return nil
			}

			profile := s.engine.Process(gctx, reviews)
			if err := gctx.Err(); err != nil {
				return err
			}
			rec.ReplaceReviews(s.reviewsKey, s.profileKey, profile)
			outcomes[i] = outcome{profile: profile, state: stateAnalyzed}
			slog.DebugContext(gctx, "Film analyzed", "film_index", i, "title", rec.Title, "film_type", string(profile.FilmType))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("catalog run interrupted: %w", err)
	}

	for _, o := range outcomes {
		switch o.state {
		case stateSkipped:
			summary.Skipped++
		case stateFailed:
			summary.Failed++
		case stateAnalyzed:
			summary.record(o.profile)
		}
	}

	slog.InfoContext(ctx, "Catalog processed",
		"total", summary.Total, "analyzed", summary.Analyzed, "skipped", summary.Skipped,
		"failed", summary.Failed, "no_data", summary.NoData,
		"elapsed_seconds", s.clock.Since(start).Seconds())
	return summary, nil
}
