package plagiarism

import (
	"fmt"
	"io"
	"strings"
)

// ANSI escape sequences used for highlighted reports
const (
	ColorBlue   = "\033[94m"
	ColorGreen  = "\033[92m"
	ColorYellow = "\033[93m"
	ColorReset  = "\033[0m"
)

// SideStyle holds the markers for one document's report line
type SideStyle struct {
	LabelStart string
	LabelEnd   string
	MatchStart string
	MatchEnd   string
}

// DefaultStyles returns the highlight markers for FILE1 and FILE2
func DefaultStyles() [2]SideStyle {
	return [2]SideStyle{
		{LabelStart: ColorBlue, LabelEnd: ColorReset, MatchStart: ColorYellow, MatchEnd: ColorReset},
		{LabelStart: ColorGreen, LabelEnd: ColorReset, MatchStart: ColorYellow, MatchEnd: ColorReset},
	}
}

// Excerpt is the rendered context of one match. Start and End are
// inclusive indices into the full token sequence of each document.
type Excerpt struct {
	Line1   int    `json:"line1"`
	Start1  int    `json:"start1"`
	End1    int    `json:"end1"`
	Text1   string `json:"text1"`
	Line2   int    `json:"line2"`
	Start2  int    `json:"start2"`
	End2    int    `json:"end2"`
	Text2   string `json:"text2"`
	Matched int    `json:"matched"`
}

// Formatter renders matches with a fixed context margin
type Formatter struct {
	Margin    int
	Highlight bool
	Styles    [2]SideStyle
}

// NewFormatter creates a formatter from matching options; the threshold
// doubles as the context margin
func NewFormatter(opts Options) *Formatter {
	return &Formatter{
		Margin:    opts.Threshold,
		Highlight: opts.Highlight,
		Styles:    DefaultStyles(),
	}
}

// Excerpt computes the context ranges of match and renders both sides
func (f *Formatter) Excerpt(match Match, doc1, doc2 *Document) Excerpt {
	first, last := match.First(), match.Last()

	start1, end1 := f.contextRange(first.A.Index, last.A.Index, doc1.Len())
	start2, end2 := f.contextRange(first.B.Index, last.B.Index, doc2.Len())

	matched1 := make(map[int]struct{}, match.Len())
	matched2 := make(map[int]struct{}, match.Len())
	for _, pair := range match.Pairs {
		matched1[pair.A.Index] = struct{}{}
		matched2[pair.B.Index] = struct{}{}
	}

	return Excerpt{
		Line1:   first.A.Line,
		Start1:  start1,
		End1:    end1,
		Text1:   f.render(doc1.Tokens[start1:end1+1], matched1, f.Styles[0]),
		Line2:   first.B.Line,
		Start2:  start2,
		End2:    end2,
		Text2:   f.render(doc2.Tokens[start2:end2+1], matched2, f.Styles[1]),
		Matched: match.Len(),
	}
}

// Format renders match as a report block
func (f *Formatter) Format(match Match, doc1, doc2 *Document) string {
	return f.FormatExcerpt(f.Excerpt(match, doc1, doc2))
}

// FormatExcerpt renders an excerpt as a report block: one labelled line per
// document followed by a blank line
func (f *Formatter) FormatExcerpt(ex Excerpt) string {
	if f.Highlight {
		s1, s2 := f.Styles[0], f.Styles[1]
		return fmt.Sprintf("%s[FILE1-%d]%s %s\n%s[FILE2-%d]%s %s\n\n",
			s1.LabelStart, ex.Line1, s1.LabelEnd, ex.Text1,
			s2.LabelStart, ex.Line2, s2.LabelEnd, ex.Text2)
	}
	return fmt.Sprintf("[FILE1-%d] %s\n[FILE2-%d] %s\n\n", ex.Line1, ex.Text1, ex.Line2, ex.Text2)
}

// Write formats match onto w
func (f *Formatter) Write(w io.Writer, match Match, doc1, doc2 *Document) error {
	if _, err := io.WriteString(w, f.Format(match, doc1, doc2)); err != nil {
		return fmt.Errorf("failed to write match report: %w", err)
	}
	return nil
}

// contextRange widens [first, last] by the margin and clips it to the document
func (f *Formatter) contextRange(first, last, length int) (int, int) {
	start := max(0, first-f.Margin)
	end := min(length-1, last+f.Margin)
	return start, end
}

func (f *Formatter) render(tokens []Token, matched map[int]struct{}, style SideStyle) string {
	words := make([]string, len(tokens))
	for i, token := range tokens {
		words[i] = f.word(token, matched, style)
	}
	return strings.Join(words, " ")
}

func (f *Formatter) word(token Token, matched map[int]struct{}, style SideStyle) string {
	if !f.Highlight {
		return token.Raw
	}
	if _, ok := matched[token.Index]; !ok {
		return token.Raw
	}
	return style.MatchStart + token.Raw + style.MatchEnd
}
