package plagiarism

// Window is a contiguous run of valid tokens. Start is the offset of the
// first token within the document's valid sequence.
type Window struct {
	Start  int
	Tokens []Token
}

// Partition splits tokens into consecutive non-overlapping windows of size
// tokens. The last window holds the remainder and may be shorter.
func Partition(tokens []Token, size int) []Window {
	if size <= 0 || len(tokens) == 0 {
		return nil
	}

	windows := make([]Window, 0, len(tokens)/size+1)
	for start := 0; start < len(tokens); start += size {
		end := start + min(size, len(tokens)-start)
		windows = append(windows, Window{
			Start:  start,
			Tokens: tokens[start:end],
		})
	}
	return windows
}

// windowAt returns the window of at most size tokens starting at start
func windowAt(tokens []Token, start, size int) Window {
	end := start + min(size, len(tokens)-start)
	return Window{
		Start:  start,
		Tokens: tokens[start:end],
	}
}
