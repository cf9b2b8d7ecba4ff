package reception

import "unicode/utf8"

const (
	// MinReviewLength is the rune count a review must exceed to be scored.
	MinReviewLength = 100
	// MaxClassifierInput is the number of runes passed to the classifier.
	MaxClassifierInput = 512
)

// FilterReviews returns, in order, the reviews longer than MinReviewLength runes.
func FilterReviews(reviews []string) []string {
	kept := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if utf8.RuneCountInString(r) > MinReviewLength {
			kept = append(kept, r)
		}
	}
	return kept
}

// Truncate returns the first n runes of text.
func Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
