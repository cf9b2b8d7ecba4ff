package keywords

import (
	"unicode"

	"github.com/kljensen/snowball"
)

type script int

const (
	scriptOther script = iota
	scriptCyrillic
	scriptLatin
)

// scriptOf classifies a word by its letters. Any Cyrillic letter makes the
// word Cyrillic; a word with only Latin letters is Latin.
func scriptOf(word string) script {
	latin := false
	for _, r := range word {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			return scriptCyrillic
		case unicode.Is(unicode.Latin, r):
			latin = true
		}
	}
	if latin {
		return scriptLatin
	}
	return scriptOther
}

func (s script) snowballLanguage() string {
	switch s {
	case scriptCyrillic:
		return "russian"
	case scriptLatin:
		return "english"
	default:
		return ""
	}
}

func (s script) stopwordCode() string {
	switch s {
	case scriptCyrillic:
		return "ru"
	case scriptLatin:
		return "en"
	default:
		return ""
	}
}

// stemWord reduces word with the Snowball stemmer for its script. Words the
// stemmer cannot handle are returned unchanged.
func stemWord(word string, s script) string {
	lang := s.snowballLanguage()
	if lang == "" {
		return word
	}
	stem, err := snowball.Stem(word, lang, true)
	if err != nil || stem == "" {
		return word
	}
	return stem
}
