package plagiarism

import "testing"

func TestNormalize(t *testing.T) {
	n := NewNormalizer(0)
	tests := []struct {
		raw  string
		want string
	}{
		{"The", "the"},
		{"fox.", "fox"},
		{"don't", "dont"},
		{"--", ""},
		{"42", ""},
		{"ÉCOLE", "école"},
		{"(Quoted)", "quoted"},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.raw); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNewNormalizerExcludesMostCommonWords(t *testing.T) {
	n := NewNormalizer(3)
	if n.StopWordCount() != 3 {
		t.Fatalf("expected 3 stop-words, got %d", n.StopWordCount())
	}
	for _, word := range []string{"the", "be", "to"} {
		if n.IsValid(word) {
			t.Fatalf("expected %q to be a stop-word", word)
		}
	}
	if !n.IsValid("of") {
		t.Fatal("expected the fourth common word to stay valid")
	}
	if n.IsValid("") {
		t.Fatal("empty words are never valid")
	}
}

func TestNewNormalizerClampsExcludeCount(t *testing.T) {
	if got := NewNormalizer(-5).StopWordCount(); got != 0 {
		t.Fatalf("negative count should disable exclusion, got %d", got)
	}
	if got := NewNormalizer(1000).StopWordCount(); got != len(CommonWords) {
		t.Fatalf("oversized count should exclude the whole list, got %d", got)
	}
}

func TestCommonWordsAreDistinct(t *testing.T) {
	seen := make(map[string]bool, len(CommonWords))
	for _, word := range CommonWords {
		if seen[word] {
			t.Fatalf("duplicate common word %q", word)
		}
		seen[word] = true
	}
}

func TestRaisingExcludeCountNeverAddsValidTokens(t *testing.T) {
	text := `The time has come, the walrus said, to talk of many things:
of shoes and ships and sealing wax, of cabbages and kings.
And why the sea is boiling hot, and whether pigs have wings.`

	previous := len(ParseText(text, NewNormalizer(0)).Valid)
	for exclude := 1; exclude <= len(CommonWords)+1; exclude++ {
		valid := len(ParseText(text, NewNormalizer(exclude)).Valid)
		if valid > previous {
			t.Fatalf("exclude=%d produced %d valid tokens, more than %d", exclude, valid, previous)
		}
		previous = valid
	}
}
