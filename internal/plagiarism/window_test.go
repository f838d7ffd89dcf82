package plagiarism

import (
	"math"
	"testing"
)

func TestPartition(t *testing.T) {
	tokens := tokensOf("a b c d e f g h i j")

	windows := Partition(tokens, 4)
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	wantStarts := []int{0, 4, 8}
	wantLens := []int{4, 4, 2}
	for i, w := range windows {
		if w.Start != wantStarts[i] || len(w.Tokens) != wantLens[i] {
			t.Fatalf("window %d = start %d len %d, want start %d len %d", i, w.Start, len(w.Tokens), wantStarts[i], wantLens[i])
		}
	}
}

func TestPartitionEdgeCases(t *testing.T) {
	if got := Partition(nil, 3); got != nil {
		t.Fatalf("expected no windows for empty input, got %d", len(got))
	}
	if got := Partition(tokensOf("a b"), 0); got != nil {
		t.Fatalf("expected no windows for size 0, got %d", len(got))
	}
	if got := Partition(tokensOf("a b"), 5); len(got) != 1 || len(got[0].Tokens) != 2 {
		t.Fatalf("expected one short window, got %+v", got)
	}
}

func TestWindowAtClipsToEnd(t *testing.T) {
	tokens := tokensOf("a b c d e")
	w := windowAt(tokens, 3, 7)
	if w.Start != 3 || len(w.Tokens) != 2 {
		t.Fatalf("unexpected window: start %d len %d", w.Start, len(w.Tokens))
	}
}

func TestPartitionHugeSize(t *testing.T) {
	tokens := tokensOf("alpha beta gamma")
	windows := Partition(tokens, math.MaxInt)
	if len(windows) != 1 || len(windows[0].Tokens) != 3 {
		t.Fatalf("expected one window holding every token, got %+v", windows)
	}
}
