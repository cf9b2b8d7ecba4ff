package domain

import (
	"context"
	"time"
)

// Film is a stored film record. Reviews are cleared once a profile is saved.
type Film struct {
	ID         int64
	Title      string
	URL        string
	Reviews    []string
	Profile    *ReceptionProfile
	FilmType   FilmType
	AnalyzedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Analyzed reports whether a profile has been stored for the film.
func (f *Film) Analyzed() bool { return f.Profile != nil }

type FilmRepository interface {
	Upsert(ctx context.Context, title, url string, reviews []string) (*Film, error)
	Get(ctx context.Context, id int64) (*Film, error)
	// List returns all films, or only those of filmType when it is non-empty.
	List(ctx context.Context, filmType FilmType) ([]Film, error)
	// ListPending returns films that have reviews but no profile.
	ListPending(ctx context.Context, limit int) ([]Film, error)
	SaveProfile(ctx context.Context, id int64, profile ReceptionProfile, analyzedAt time.Time) error
}
