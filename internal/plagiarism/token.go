package plagiarism

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single input line read by the tokenizer
const maxLineSize = 1024 * 1024

// Token is a single whitespace-delimited word of a document
type Token struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Line       int    `json:"line"`
	Index      int    `json:"index"`
	Valid      bool   `json:"valid"`
}

// Document holds the full token sequence of a text and the valid-only view
// used for matching. Valid tokens keep their Index into Tokens.
type Document struct {
	Tokens []Token
	Valid  []Token
}

// Len returns the number of tokens in the full sequence
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Tokens)
}

// ParseDocument reads r line by line and tokenizes it with the normalizer
func ParseDocument(r io.Reader, n *Normalizer) (*Document, error) {
	return parse(r, n, maxLineSize)
}

// ParseText tokenizes an in-memory text
func ParseText(text string, n *Normalizer) *Document {
	// A limit larger than the text means the scanner cannot overflow
	doc, err := parse(strings.NewReader(text), n, max(maxLineSize, len(text)+1))
	if err != nil {
		return &Document{}
	}
	return doc
}

func parse(r io.Reader, n *Normalizer, limit int) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), limit)

	doc := &Document{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		for _, word := range strings.Fields(scanner.Text()) {
			normalized := n.Normalize(word)
			doc.Tokens = append(doc.Tokens, Token{
				Raw:        word,
				Normalized: normalized,
				Line:       lineNo,
				Index:      len(doc.Tokens),
				Valid:      n.IsValid(normalized),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read document at line %d: %w", lineNo+1, err)
	}

	doc.Valid = make([]Token, 0, len(doc.Tokens))
	for _, token := range doc.Tokens {
		if token.Valid {
			doc.Valid = append(doc.Valid, token)
		}
	}

	return doc, nil
}
