package plagiarism

// Summary condenses the matches of one comparison
type Summary struct {
	Matches        int     `json:"matches"`
	MatchedTokens1 int     `json:"matchedTokens1"`
	MatchedTokens2 int     `json:"matchedTokens2"`
	ValidTokens1   int     `json:"validTokens1"`
	ValidTokens2   int     `json:"validTokens2"`
	Coverage1      float64 `json:"coverage1"`
	Coverage2      float64 `json:"coverage2"`
	Similarity     float64 `json:"similarity"`
	Risk           string  `json:"risk"`
}

// Summarize measures how much of each document the matches cover.
// Coverage is distinct matched tokens over valid tokens; similarity is the
// larger of the two coverages so a short text copied into a long one still
// scores high.
func Summarize(matches []Match, doc1, doc2 *Document) Summary {
	matched1 := make(map[int]struct{})
	matched2 := make(map[int]struct{})
	for _, match := range matches {
		for _, pair := range match.Pairs {
			matched1[pair.A.Index] = struct{}{}
			matched2[pair.B.Index] = struct{}{}
		}
	}

	summary := Summary{
		Matches:        len(matches),
		MatchedTokens1: len(matched1),
		MatchedTokens2: len(matched2),
	}
	if doc1 != nil {
		summary.ValidTokens1 = len(doc1.Valid)
	}
	if doc2 != nil {
		summary.ValidTokens2 = len(doc2.Valid)
	}

	summary.Coverage1 = ratio(summary.MatchedTokens1, summary.ValidTokens1)
	summary.Coverage2 = ratio(summary.MatchedTokens2, summary.ValidTokens2)
	summary.Similarity = max(summary.Coverage1, summary.Coverage2)
	summary.Risk = GetRiskLevel(summary.Similarity)

	return summary
}

// GetRiskLevel returns risk level based on similarity score
func GetRiskLevel(score float64) string {
	if score < 0.3 {
		return "clean"
	} else if score < 0.6 {
		return "suspicious"
	} else if score < 0.85 {
		return "highly suspicious"
	}
	return "near copy"
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0.0
	}
	score := float64(part) / float64(whole)
	// Clamp to [0, 1]
	if score > 1.0 {
		score = 1.0
	}
	return score
}
