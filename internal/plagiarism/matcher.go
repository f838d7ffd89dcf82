package plagiarism

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how documents are cut into comparison windows
type Strategy string

const (
	// StrategySliding walks a cursor over the first document and opens
	// windows only where a word of both documents matches exactly
	StrategySliding Strategy = "sliding"
	// StrategyPartition compares fixed non-overlapping chunks pairwise
	StrategyPartition Strategy = "partition"
)

// ParseStrategy converts a config value into a Strategy
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(value) {
	case StrategySliding, StrategyPartition:
		return Strategy(value), nil
	case "":
		return StrategySliding, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want %q or %q)", value, StrategySliding, StrategyPartition)
	}
}

// Options tunes a comparison
type Options struct {
	// WindowSize is the number of valid tokens compared at a time
	WindowSize int `json:"windowSize"`
	// Threshold is the minimum number of aligned words for a match and
	// the number of context tokens printed on each side of it
	Threshold int `json:"threshold"`
	// ExcludeCount suppresses that many of the most common English words
	ExcludeCount int         `json:"excludeCount"`
	Highlight    bool        `json:"highlight"`
	Strategy     Strategy    `json:"strategy"`
	CacheSize    int         `json:"cacheSize"`
	CachePolicy  CachePolicy `json:"cachePolicy"`
}

// DefaultOptions returns the stock matching options
func DefaultOptions() Options {
	return Options{
		WindowSize:   7,
		Threshold:    6,
		ExcludeCount: 0,
		Highlight:    false,
		Strategy:     StrategySliding,
		CacheSize:    DefaultCacheSize,
		CachePolicy:  CachePolicyLRU,
	}
}

// MaxWindowSize bounds the window; the alignment table grows with its square
const MaxWindowSize = 1000

// ErrUnreachableThreshold marks options under which no window can ever be accepted
var ErrUnreachableThreshold = errors.New("threshold exceeds window size, no match can be accepted")

// Validate rejects options the matcher cannot run with. A threshold above
// the window size is runnable but never matches; it is reported through
// Warnings instead.
func (o Options) Validate() error {
	if o.WindowSize <= 0 {
		return fmt.Errorf("window size must be greater than 0, got %d", o.WindowSize)
	}
	if o.WindowSize > MaxWindowSize {
		return fmt.Errorf("window size must be at most %d, got %d", MaxWindowSize, o.WindowSize)
	}
	if o.Threshold <= 0 {
		return fmt.Errorf("threshold must be greater than 0, got %d", o.Threshold)
	}
	if o.ExcludeCount < 0 {
		return fmt.Errorf("exclude count must not be negative, got %d", o.ExcludeCount)
	}
	if o.CacheSize <= 0 {
		return fmt.Errorf("cache size must be greater than 0, got %d", o.CacheSize)
	}
	if _, err := ParseStrategy(string(o.Strategy)); err != nil {
		return err
	}
	if _, err := ParseCachePolicy(string(o.CachePolicy)); err != nil {
		return err
	}
	return nil
}

// Warnings lists conditions that are valid but make matching pointless
func (o Options) Warnings() []error {
	var warnings []error
	if o.Threshold > o.WindowSize {
		warnings = append(warnings, fmt.Errorf("%w (threshold %d, window size %d)", ErrUnreachableThreshold, o.Threshold, o.WindowSize))
	}
	return warnings
}

// Match is an accepted alignment between two windows
type Match struct {
	Pairs []Pair `json:"pairs"`
}

// Len returns the number of aligned pairs
func (m Match) Len() int {
	return len(m.Pairs)
}

// First returns the earliest aligned pair
func (m Match) First() Pair {
	return m.Pairs[0]
}

// Last returns the latest aligned pair
func (m Match) Last() Pair {
	return m.Pairs[len(m.Pairs)-1]
}

// windowKey identifies a window pair by the normalized words it holds, so
// repeated passages reuse earlier alignments
type windowKey struct {
	a string
	b string
}

// Matcher finds accepted matches between documents. Its cache lives as
// long as the Matcher. A Matcher is not safe for concurrent use.
type Matcher struct {
	opts  Options
	cache *Cache[windowKey, []alignment]

	comparisons uint64
}

// NewMatcher creates a matcher; options are expected to be validated
func NewMatcher(opts Options) *Matcher {
	return &Matcher{
		opts:  opts,
		cache: NewCache[windowKey, []alignment](opts.CacheSize, opts.CachePolicy),
	}
}

// Options returns the options the matcher runs with
func (m *Matcher) Options() Options {
	return m.opts
}

// Normalizer returns a normalizer configured with the matcher's exclusion count
func (m *Matcher) Normalizer() *Normalizer {
	return NewNormalizer(m.opts.ExcludeCount)
}

// CacheStats returns the state of the alignment cache
func (m *Matcher) CacheStats() CacheStats {
	return m.cache.Stats()
}

// Comparisons returns how many window pairs went through the LCS so far
func (m *Matcher) Comparisons() uint64 {
	return m.comparisons
}

// Match collects every accepted match between doc1 and doc2
func (m *Matcher) Match(doc1, doc2 *Document) []Match {
	var matches []Match
	// the callback never fails
	_ = m.Each(doc1, doc2, func(match Match) error {
		matches = append(matches, match)
		return nil
	})
	return matches
}

// Each calls fn for every accepted match in document order of doc1 and
// stops at the first error fn returns
func (m *Matcher) Each(doc1, doc2 *Document, fn func(Match) error) error {
	if doc1 == nil || doc2 == nil {
		return nil
	}
	switch m.opts.Strategy {
	case StrategyPartition:
		return m.eachPartition(doc1.Valid, doc2.Valid, fn)
	default:
		return m.eachSliding(doc1.Valid, doc2.Valid, fn)
	}
}

// eachSliding advances the cursor over valid1 one token at a time and
// jumps a full window past every accepted match
func (m *Matcher) eachSliding(valid1, valid2 []Token, fn func(Match) error) error {
	size := m.opts.WindowSize
	for i1 := 0; i1 <= len(valid1)-size; {
		accepted := false
		for i2 := range valid2 {
			if valid1[i1].Normalized != valid2[i2].Normalized {
				continue
			}
			match, ok := m.compare(windowAt(valid1, i1, size), windowAt(valid2, i2, size))
			if !ok {
				continue
			}
			if err := fn(match); err != nil {
				return err
			}
			accepted = true
			break
		}
		if accepted {
			i1 += size
		} else {
			i1++
		}
	}
	return nil
}

// eachPartition compares every chunk of valid1 with every chunk of valid2
// and moves to the next chunk of valid1 after its first accepted match
func (m *Matcher) eachPartition(valid1, valid2 []Token, fn func(Match) error) error {
	windows2 := Partition(valid2, m.opts.WindowSize)
	for _, w1 := range Partition(valid1, m.opts.WindowSize) {
		if len(w1.Tokens) < m.opts.Threshold {
			continue
		}
		for _, w2 := range windows2 {
			if LCSLength(w1.Tokens, w2.Tokens) < m.opts.Threshold {
				continue
			}
			match, ok := m.compare(w1, w2)
			if !ok {
				continue
			}
			if err := fn(match); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// compare aligns two windows and reports whether the result is accepted
func (m *Matcher) compare(w1, w2 Window) (Match, bool) {
	m.comparisons++

	key := windowKey{a: contentKey(w1.Tokens), b: contentKey(w2.Tokens)}
	offsets, ok := m.cache.Get(key)
	if !ok {
		offsets = align(w1.Tokens, w2.Tokens)
		m.cache.Put(key, offsets)
	}

	// NewMatcher does not validate, so an empty alignment is rejected even
	// under a zero threshold
	if len(offsets) < m.opts.Threshold || len(offsets) == 0 {
		return Match{}, false
	}
	return Match{Pairs: pairsFor(w1.Tokens, w2.Tokens, offsets)}, true
}

// contentKey joins normalized words with a separator letters cannot contain
func contentKey(tokens []Token) string {
	var b strings.Builder
	for i, token := range tokens {
		if i > 0 {
			b.WriteByte(0)
		}
		b.WriteString(token.Normalized)
	}
	return b.String()
}
