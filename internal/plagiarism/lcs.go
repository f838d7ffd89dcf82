package plagiarism

// Pair aligns a token of the first sequence with an equal token of the second
type Pair struct {
	A Token `json:"a"`
	B Token `json:"b"`
}

// alignment is a pair of offsets into two windows
type alignment struct {
	I int
	J int
}

// LCS returns one longest common subsequence of a and b under normalized
// equality. When both ways of shrinking a pair of prefixes give the same
// length the choice is arbitrary, so only the length is stable across
// implementations.
func LCS(a, b []Token) []Pair {
	return pairsFor(a, b, align(a, b))
}

// LCSLength returns the length of the longest common subsequence of a and b
func LCSLength(a, b []Token) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1].Normalized == b[j-1].Normalized {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// align fills the (n+1)x(m+1) prefix table and walks it back from the end
func align(a, b []Token) []alignment {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1].Normalized == b[j-1].Normalized {
				table[i][j] = table[i-1][j-1] + 1
			} else {
				table[i][j] = max(table[i-1][j], table[i][j-1])
			}
		}
	}

	length := table[n][m]
	if length == 0 {
		return nil
	}

	result := make([]alignment, length)
	k := length - 1
	for i, j := n, m; i > 0 && j > 0; {
		switch {
		case a[i-1].Normalized == b[j-1].Normalized:
			result[k] = alignment{I: i - 1, J: j - 1}
			k--
			i--
			j--
		case table[i-1][j] >= table[i][j-1]:
			i--
		default:
			j--
		}
	}
	return result
}

func pairsFor(a, b []Token, offsets []alignment) []Pair {
	if len(offsets) == 0 {
		return nil
	}
	pairs := make([]Pair, len(offsets))
	for k, off := range offsets {
		pairs[k] = Pair{A: a[off.I], B: b[off.J]}
	}
	return pairs
}
