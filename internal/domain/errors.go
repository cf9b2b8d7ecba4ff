package domain

import "errors"

// NoSentimentDataMessage is stored in ReceptionProfile.Error when no review
// could be scored.
const NoSentimentDataMessage = "No valid sentiment data"

var (
	ErrNoSentimentData       = errors.New("no valid sentiment data")
	ErrFilmNotFound          = errors.New("film not found")
	ErrInvalidVerdict        = errors.New("invalid classifier verdict")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)
