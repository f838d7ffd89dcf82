package plagiarism

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CommonWords lists the most common English words in frequency order.
// The first N entries become stop-words when exclusion is enabled.
var CommonWords = []string{
	"the", "be", "to", "of", "and", "a", "in", "that", "have", "i",
	"it", "for", "not", "on", "with", "he", "as", "you", "do", "at",
	"this", "but", "his", "by", "from", "they", "we", "say", "her", "she",
	"or", "an", "will", "my", "one", "all", "would", "there", "their", "what",
	"so", "up", "out", "if", "about", "who", "get", "which", "go", "me",
	"when", "make", "can", "like", "time", "no", "just", "him", "know", "take",
}

// Normalizer folds raw words into their comparable form and classifies
// them. A Normalizer is not safe for concurrent use.
type Normalizer struct {
	lower     cases.Caser
	stopWords map[string]struct{}
}

// NewNormalizer builds a normalizer that treats the first excludeCount
// common words as stop-words. Zero or negative disables exclusion; counts
// beyond the list length exclude the whole list.
func NewNormalizer(excludeCount int) *Normalizer {
	excludeCount = min(max(excludeCount, 0), len(CommonWords))

	stopWords := make(map[string]struct{}, excludeCount)
	for _, word := range CommonWords[:excludeCount] {
		stopWords[word] = struct{}{}
	}

	return &Normalizer{
		lower:     cases.Lower(language.Und),
		stopWords: stopWords,
	}
}

// Normalize lowercases the word and drops every character that is not a letter
func (n *Normalizer) Normalize(raw string) string {
	lowered := n.lower.String(raw)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, lowered)
}

// IsValid reports whether a normalized word takes part in matching
func (n *Normalizer) IsValid(normalized string) bool {
	if normalized == "" {
		return false
	}
	_, stop := n.stopWords[normalized]
	return !stop
}

// StopWordCount returns the size of the active stop-word set
func (n *Normalizer) StopWordCount() int {
	return len(n.stopWords)
}
