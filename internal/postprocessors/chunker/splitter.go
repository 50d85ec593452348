package chunker

import (
	"strings"
	"unicode/utf8"
)

// span is a byte range of the text being split, with its length in runes.
type span struct {
	start, end int
	runes      int
}

// splitter breaks text at the most significant separator present, merges
// small pieces up to size runes and carries up to overlap runes of trailing
// pieces into the next chunk. Separators stay at the start of the piece
// they precede and whitespace is kept, so every chunk is an exact
// substring of the input.
type splitter struct {
	size    int
	overlap int
}

func newSplitter(size, overlap int) *splitter {
	if size < 2 {
		size = 2
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}
	return &splitter{size: size, overlap: overlap}
}

// split returns chunk byte ranges in order.
func (s *splitter) split(text string, separators []string) []span {
	if text == "" {
		return nil
	}
	return s.splitSpan(text, newSpan(text, 0, len(text)), separators)
}

func (s *splitter) splitSpan(text string, sp span, separators []string) []span {
	piece := text[sp.start:sp.end]

	sep, rest, found := "", []string(nil), false
	for i, candidate := range separators {
		if candidate != "" && strings.Contains(piece, candidate) {
			sep, rest, found = candidate, separators[i+1:], true
			break
		}
	}

	var pieces []span
	if found {
		pieces = splitKeepingSeparator(text, sp, sep)
	} else {
		pieces = splitRunes(text, sp)
	}

	var out, small []span
	for _, p := range pieces {
		if p.runes < s.size {
			small = append(small, p)
			continue
		}
		if len(small) > 0 {
			out = append(out, s.merge(small)...)
			small = nil
		}
		if found {
			out = append(out, s.splitSpan(text, p, rest)...)
		} else {
			out = append(out, p)
		}
	}
	if len(small) > 0 {
		out = append(out, s.merge(small)...)
	}
	return out
}

// merge joins contiguous pieces into chunks of at most size runes.
func (s *splitter) merge(pieces []span) []span {
	var chunks, current []span
	total := 0
	for _, p := range pieces {
		if total+p.runes > s.size && len(current) > 0 {
			chunks = append(chunks, join(current, total))
			for total > s.overlap || (total+p.runes > s.size && total > 0) {
				total -= current[0].runes
				current = current[1:]
			}
		}
		current = append(current, p)
		total += p.runes
	}
	if len(current) > 0 {
		chunks = append(chunks, join(current, total))
	}
	return chunks
}

func join(pieces []span, runes int) span {
	return span{start: pieces[0].start, end: pieces[len(pieces)-1].end, runes: runes}
}

func newSpan(text string, start, end int) span {
	return span{start: start, end: end, runes: utf8.RuneCountInString(text[start:end])}
}

// splitKeepingSeparator cuts sp before every non-overlapping occurrence of
// sep. Empty pieces are dropped.
func splitKeepingSeparator(text string, sp span, sep string) []span {
	piece := text[sp.start:sp.end]
	cuts := []int{0}
	for off := 0; ; {
		i := strings.Index(piece[off:], sep)
		if i < 0 {
			break
		}
		cuts = append(cuts, off+i)
		off += i + len(sep)
	}
	cuts = append(cuts, len(piece))

	out := make([]span, 0, len(cuts))
	for i := 1; i < len(cuts); i++ {
		if cuts[i] > cuts[i-1] {
			out = append(out, newSpan(text, sp.start+cuts[i-1], sp.start+cuts[i]))
		}
	}
	return out
}

// splitRunes cuts sp into single characters.
func splitRunes(text string, sp span) []span {
	out := make([]span, 0, sp.runes)
	for i, r := range text[sp.start:sp.end] {
		start := sp.start + i
		out = append(out, span{start: start, end: start + utf8.RuneLen(r), runes: 1})
	}
	return out
}
