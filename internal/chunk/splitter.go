// Package chunk splits passage text into overlapping character windows for
// embedding. Splitting is deterministic: the same text and settings always
// produce the same chunks, which keeps index entry IDs stable across runs.
package chunk

import (
	"strings"
	"unicode"
)

// Defaults tuned for paragraph-length philosophical prose.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Splitter divides text into chunks of at most Size characters with Overlap
// characters repeated between consecutive chunks. Break points prefer
// paragraph boundaries, then sentence ends, then word boundaries, falling
// back to a hard cut for unbroken text.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter with the given chunk size and overlap.
// Out-of-range values fall back to the defaults.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}
	return &Splitter{size: size, overlap: overlap}
}

// Size returns the configured chunk size in characters.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap in characters.
func (s *Splitter) Overlap() int { return s.overlap }

// Split divides text into overlapping chunks.
// Empty or whitespace-only text yields no chunks; text that fits in a single
// chunk is returned as-is.
func (s *Splitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{}
	}

	runes := []rune(trimmed)
	if len(runes) <= s.size {
		return []string{trimmed}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.breakPoint(runes, start, end)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}

		if end == len(runes) {
			break
		}

		next := end - s.overlap
		if next <= start {
			// Overlap would stall progress on a short chunk
			next = start + 1
		}
		start = next
	}

	return chunks
}

// breakPoint picks the best split position in (start, limit].
// Searches backward through the window tail for a paragraph break, then a
// sentence end, then any whitespace. A window with no boundary at all is cut
// hard at the limit.
func (s *Splitter) breakPoint(runes []rune, start, limit int) int {
	// Only consider boundaries in the tail of the window; breaking too early
	// produces tiny chunks.
	floor := start + s.size/2
	if floor < start+1 {
		floor = start + 1
	}

	for i := limit; i > floor; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}

	for i := limit; i > floor; i-- {
		if isSentenceEnd(runes[i-1]) && (i == len(runes) || unicode.IsSpace(runes[i])) {
			return i
		}
	}

	for i := limit; i > floor; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}

	return limit
}

// isSentenceEnd reports whether r terminates a sentence.
func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ':':
		return true
	default:
		return false
	}
}
