package plagiarism

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

const sharedRun = "alpha beta gamma delta epsilon zeta eta"

func parsePair(opts Options, text1, text2 string) (*Matcher, *Document, *Document) {
	m := NewMatcher(opts)
	return m, ParseText(text1, m.Normalizer()), ParseText(text2, m.Normalizer())
}

func TestMatcherFindsSharedRunWithContext(t *testing.T) {
	text1 := "aa ab ac ad ae af ag ah ai aj " + sharedRun + " ba bb bc bd be bf bg bh bi bj"
	m, doc1, doc2 := parsePair(DefaultOptions(), text1, sharedRun)

	matches := m.Match(doc1, doc2)
	if len(matches) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(matches))
	}
	match := matches[0]
	if match.Len() != 7 {
		t.Fatalf("expected the whole run to align, got %d pairs", match.Len())
	}
	if match.First().A.Index != 10 || match.Last().A.Index != 16 {
		t.Fatalf("match covers %d..%d, want 10..16", match.First().A.Index, match.Last().A.Index)
	}

	ex := NewFormatter(m.Options()).Excerpt(match, doc1, doc2)
	if ex.Start1 != 4 || ex.End1 != 22 {
		t.Fatalf("FILE1 context = %d..%d, want 6 tokens each side (4..22)", ex.Start1, ex.End1)
	}
	if ex.Start2 != 0 || ex.End2 != 6 {
		t.Fatalf("FILE2 context = %d..%d, want clipped 0..6", ex.Start2, ex.End2)
	}
	want1 := "ae af ag ah ai aj " + sharedRun + " ba bb bc bd be bf"
	if ex.Text1 != want1 {
		t.Fatalf("FILE1 text = %q, want %q", ex.Text1, want1)
	}
	if ex.Text2 != sharedRun {
		t.Fatalf("FILE2 text = %q", ex.Text2)
	}
}

func TestMatcherNoSharedWords(t *testing.T) {
	m, doc1, doc2 := parsePair(DefaultOptions(),
		"one two three four five six seven eight",
		"alpha beta gamma delta epsilon zeta eta theta")

	if matches := m.Match(doc1, doc2); len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
	if m.Comparisons() != 0 {
		t.Fatalf("no window should be compared without a shared word, got %d", m.Comparisons())
	}
}

func TestMatcherShortDocuments(t *testing.T) {
	m, doc1, doc2 := parsePair(DefaultOptions(), "alpha beta gamma", sharedRun)
	if matches := m.Match(doc1, doc2); len(matches) != 0 {
		t.Fatalf("a document shorter than the window opens no windows, got %d matches", len(matches))
	}
	if matches := m.Match(nil, doc2); matches != nil {
		t.Fatalf("nil document should yield nothing, got %v", matches)
	}
}

func TestMatcherThresholdAboveWindowNeverMatches(t *testing.T) {
	opts := DefaultOptions()
	opts.Threshold = opts.WindowSize + 1
	if len(opts.Warnings()) != 1 {
		t.Fatalf("expected an unreachable threshold warning")
	}
	if !errors.Is(opts.Warnings()[0], ErrUnreachableThreshold) {
		t.Fatalf("unexpected warning: %v", opts.Warnings()[0])
	}

	m, doc1, doc2 := parsePair(opts, sharedRun, sharedRun)
	if matches := m.Match(doc1, doc2); len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestMatcherSlidingJumpsPastMatches(t *testing.T) {
	m, doc1, doc2 := parsePair(DefaultOptions(), sharedRun+" "+sharedRun, sharedRun)

	matches := m.Match(doc1, doc2)
	if len(matches) != 2 {
		t.Fatalf("expected one match per copy of the run, got %d", len(matches))
	}
	if matches[1].First().A.Index != 7 {
		t.Fatalf("second match should start at index 7, got %d", matches[1].First().A.Index)
	}

	// the second copy has the same content as the first
	if hits := m.CacheStats().Hits; hits == 0 {
		t.Fatal("expected the repeated window pair to hit the cache")
	}
}

func TestMatcherToleratesInsertions(t *testing.T) {
	text2 := "alpha beta INSERTED gamma delta epsilon zeta eta"
	m, doc1, doc2 := parsePair(DefaultOptions(), sharedRun, text2)

	matches := m.Match(doc1, doc2)
	if len(matches) != 1 {
		t.Fatalf("expected one match, got %d", len(matches))
	}
	// the window of doc2 holds 7 tokens, so eta falls outside it
	if matches[0].Len() != 6 {
		t.Fatalf("expected 6 aligned words, got %d", matches[0].Len())
	}
}

func TestMatcherExcludeCountRemovesStopWords(t *testing.T) {
	text := "the cat and the dog of the house in the town"
	opts := DefaultOptions()
	opts.Threshold = 4
	opts.WindowSize = 5

	m, doc1, doc2 := parsePair(opts, text, text)
	if len(m.Match(doc1, doc2)) == 0 {
		t.Fatal("expected identical texts to match")
	}

	opts.ExcludeCount = 10
	m, doc1, doc2 = parsePair(opts, text, text)
	if got := len(doc1.Valid); got != 4 {
		t.Fatalf("expected 4 valid tokens after excluding stop-words, got %d", got)
	}
	if len(m.Match(doc1, doc2)) != 0 {
		t.Fatal("expected no window once stop-words shrink the text below the window size")
	}
}

func TestMatcherPartitionStrategy(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = StrategyPartition

	m, doc1, doc2 := parsePair(opts,
		sharedRun+" aa ab ac ad ae af ag",
		sharedRun+" qa qb qc")

	matches := m.Match(doc1, doc2)
	if len(matches) != 1 {
		t.Fatalf("expected one aligned chunk, got %d", len(matches))
	}
	if matches[0].Len() != 7 {
		t.Fatalf("expected 7 pairs, got %d", matches[0].Len())
	}
}

func TestMatcherPartitionMissesUnalignedCopies(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = StrategyPartition

	m, doc1, doc2 := parsePair(opts, sharedRun, "qa qb qc "+sharedRun)
	if matches := m.Match(doc1, doc2); len(matches) != 0 {
		t.Fatalf("fixed chunks split the copy, expected no match, got %d", len(matches))
	}

	opts.Strategy = StrategySliding
	m, doc1, doc2 = parsePair(opts, sharedRun, "qa qb qc "+sharedRun)
	if matches := m.Match(doc1, doc2); len(matches) != 1 {
		t.Fatalf("sliding windows should find the copy, got %d", len(matches))
	}
}

func TestMatcherCacheStaysBounded(t *testing.T) {
	var b1, b2 strings.Builder
	for i := 0; i < 200; i++ {
		word := fmt.Sprintf("w%s", strings.Repeat("x", i%13+1))
		b1.WriteString(word + " ")
		b2.WriteString(word + " filler ")
	}

	opts := DefaultOptions()
	opts.CacheSize = 8
	opts.Threshold = 1
	m, doc1, doc2 := parsePair(opts, b1.String(), b2.String())
	m.Match(doc1, doc2)

	stats := m.CacheStats()
	if stats.Entries > 8 {
		t.Fatalf("cache holds %d entries, capacity 8", stats.Entries)
	}
	if stats.Evictions == 0 {
		t.Fatal("expected evictions with a tiny cache")
	}
}

func TestMatcherEachStopsOnError(t *testing.T) {
	m, doc1, doc2 := parsePair(DefaultOptions(), sharedRun+" "+sharedRun, sharedRun)

	stop := errors.New("stop")
	calls := 0
	err := m.Each(doc1, doc2, func(Match) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one callback, got %d", calls)
	}
}

func TestOptionsValidate(t *testing.T) {
	valid := DefaultOptions()
	if err := valid.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero window", func(o *Options) { o.WindowSize = 0 }},
		{"oversized window", func(o *Options) { o.WindowSize = MaxWindowSize + 1 }},
		{"max int window", func(o *Options) { o.WindowSize = math.MaxInt }},
		{"negative threshold", func(o *Options) { o.Threshold = -1 }},
		{"negative exclude", func(o *Options) { o.ExcludeCount = -2 }},
		{"zero cache", func(o *Options) { o.CacheSize = 0 }},
		{"unknown strategy", func(o *Options) { o.Strategy = "random" }},
		{"unknown policy", func(o *Options) { o.CachePolicy = "fifo" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			if err := opts.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(""); err != nil || s != StrategySliding {
		t.Fatalf("empty strategy = %q, %v", s, err)
	}
	if s, err := ParseStrategy("partition"); err != nil || s != StrategyPartition {
		t.Fatalf("partition strategy = %q, %v", s, err)
	}
	if _, err := ParseStrategy("diagonal"); err == nil {
		t.Fatal("expected unknown strategy to be rejected")
	}
}

func TestMatcherRejectsEmptyAlignmentWithoutValidation(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = StrategyPartition
	opts.WindowSize = 3
	opts.Threshold = 0
	m, doc1, doc2 := parsePair(opts, "alpha beta gamma", "delta epsilon zeta")

	if matches := m.Match(doc1, doc2); len(matches) != 0 {
		t.Fatalf("disjoint windows must not match, got %d", len(matches))
	}
	if m.Comparisons() != 1 {
		t.Fatalf("expected the pair to be aligned once, got %d comparisons", m.Comparisons())
	}
}
