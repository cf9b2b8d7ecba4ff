package keywords

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	minWordRunes = 4
	minStemRunes = 2
)

// Normalizer turns a review into its stemmed terms.
type Normalizer struct {
	language *languageStopwords
}

// NewNormalizer returns a Normalizer. With withLanguageStopwords the fixed
// stop-word set is extended by the per-language lists.
func NewNormalizer(withLanguageStopwords bool) *Normalizer {
	n := &Normalizer{}
	if withLanguageStopwords {
		n.language = &languageStopwords{}
	}
	return n
}

// Clean case-folds text, composes it to NFC and removes every rune that is
// not a letter, digit, mark, underscore or whitespace.
func Clean(text string) string {
	// cases.Caser keeps state and must not be shared between goroutines.
	lower := cases.Lower(language.Und).String(text)
	lower = norm.NFC.String(lower)

	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, lower)
}

// word is a content word of a review and the stem it is grouped under.
type word struct {
	stem    string
	surface string
}

// Terms returns the stems of the content words of text, in order.
func (n *Normalizer) Terms(text string) []string {
	words := n.words(text)
	terms := make([]string, len(words))
	for i, w := range words {
		terms[i] = w.stem
	}
	return terms
}

func (n *Normalizer) words(text string) []word {
	fields := strings.Fields(Clean(text))
	words := make([]word, 0, len(fields))

	for _, w := range fields {
		if utf8.RuneCountInString(w) < minWordRunes || isFixedStopword(w) {
			continue
		}
		s := scriptOf(w)
		if n.language != nil && n.language.contains(w, s) {
			continue
		}
		stem := stemWord(w, s)
		if utf8.RuneCountInString(stem) < minStemRunes {
			continue
		}
		words = append(words, word{stem: stem, surface: w})
	}
	return words
}
