package keywords

import (
	"strings"
	"sync"

	"github.com/bbalet/stopwords"
)

// fixedStopwords are dropped before stemming. Words of three runes or fewer
// never reach this check.
var fixedStopwords = map[string]struct{}{
	"фильм": {}, "очень": {}, "это": {}, "который": {}, "весь": {}, "быть": {}, "этот": {},
	"film": {}, "movie": {}, "very": {}, "this": {}, "that": {}, "which": {}, "whole": {}, "these": {},
}

func isFixedStopword(word string) bool {
	_, ok := fixedStopwords[word]
	return ok
}

// languageStopwords answers stop-word lookups against the bbalet lists,
// which only expose a string cleaner, so each word is probed once and the
// answer memoized.
type languageStopwords struct {
	seen sync.Map // "lang:word" -> bool
}

func (l *languageStopwords) contains(word string, s script) bool {
	code := s.stopwordCode()
	if code == "" {
		return false
	}

	key := code + ":" + word
	if v, ok := l.seen.Load(key); ok {
		return v.(bool)
	}

	stop := strings.TrimSpace(stopwords.CleanString(word, code, false)) == ""
	l.seen.Store(key, stop)
	return stop
}
