// Package keywords ranks the representative terms of a film's reviews.
//
// Each review is case-folded, stripped of punctuation and split into words.
// Words of three runes or fewer and stop words are dropped, and the rest are
// grouped by Snowball stem (Russian for Cyrillic words, English for Latin
// ones). Stems are scored by TF-IDF over the review set: raw term counts,
// smoothed inverse document frequency ln((1+n)/(1+df))+1, L2-normalized per
// review and summed across reviews. Each stem is reported as its most
// frequent surface word, so "прекрасный" and "прекрасная" count together and
// surface as whichever occurs more often.
//
// Results are sorted by score descending with lexicographic tie-breaking.
// An Extractor is safe for concurrent use.
package keywords

import (
	"slices"
	"strings"
)

// DefaultLimit is the number of terms returned when no limit is configured.
const DefaultLimit = 15

// Keyword is a ranked term with its corpus-wide TF-IDF weight and the number
// of reviews it occurs in. Term is the most frequent word form of Stem.
type Keyword struct {
	Term  string  `json:"term"`
	Stem  string  `json:"stem"`
	Score float64 `json:"score"`
	Docs  int     `json:"docs"`
}

type Options struct {
	Limit int
	// LanguageStopwords extends the fixed stop-word set with the Russian
	// and English lists of github.com/bbalet/stopwords.
	LanguageStopwords bool
}

type Extractor struct {
	limit      int
	normalizer *Normalizer
}

func NewExtractor(opts Options) *Extractor {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Extractor{
		limit:      limit,
		normalizer: NewNormalizer(opts.LanguageStopwords),
	}
}

// Rank returns the top keywords of texts. It never returns nil.
func (e *Extractor) Rank(texts []string) []Keyword {
	docs := make([][]string, 0, len(texts))
	surfaces := make(map[string]map[string]int)
	for _, t := range texts {
		words := e.normalizer.words(t)
		if len(words) == 0 {
			continue
		}
		doc := make([]string, len(words))
		for i, w := range words {
			doc[i] = w.stem
			forms := surfaces[w.stem]
			if forms == nil {
				forms = make(map[string]int)
				surfaces[w.stem] = forms
			}
			forms[w.surface]++
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return []Keyword{}
	}

	candidates := scoreTFIDF(docs, len(texts))
	for i := range candidates {
		candidates[i].Stem = candidates[i].Term
		candidates[i].Term = mostFrequentForm(surfaces[candidates[i].Stem])
	}
	slices.SortStableFunc(candidates, cmpKeyword)

	if len(candidates) > e.limit {
		candidates = candidates[:e.limit]
	}
	return candidates
}

// Extract returns the terms of Rank.
func (e *Extractor) Extract(texts []string) []string {
	ranked := e.Rank(texts)
	terms := make([]string, len(ranked))
	for i, kw := range ranked {
		terms[i] = kw.Term
	}
	return terms
}

func cmpKeyword(a, b Keyword) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Term, b.Term)
}

// mostFrequentForm picks the most common word form, the lexicographically
// smallest on ties.
func mostFrequentForm(forms map[string]int) string {
	var best string
	bestCount := 0
	for form, n := range forms {
		if n > bestCount || (n == bestCount && form < best) {
			best, bestCount = form, n
		}
	}
	return best
}
