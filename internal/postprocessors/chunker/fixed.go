package chunker

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

const (
	// DefaultChunkSize is the default characters per fixed chunk.
	DefaultChunkSize = 1000

	// DefaultOverlap is the default overlap between fixed chunks.
	DefaultOverlap = 200
)

// Ensure Fixed implements the interface.
var _ driven.DocumentChunker = (*Fixed)(nil)

// Fixed splits files into fixed-size character windows, ignoring structure.
type Fixed struct {
	chunkSize int
	overlap   int
}

// Option configures a Fixed chunker.
type Option func(*Fixed)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(f *Fixed) {
		if size > 0 {
			f.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(f *Fixed) {
		if overlap >= 0 {
			f.overlap = overlap
		}
	}
}

// NewFixed creates a fixed-window chunker.
func NewFixed(opts ...Option) *Fixed {
	f := &Fixed{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.overlap >= f.chunkSize {
		f.overlap = f.chunkSize / 4
	}
	return f
}

// Name returns the strategy name.
func (f *Fixed) Name() string {
	return "fixed"
}

// Split chunks every eligible file into windows.
func (f *Fixed) Split(ctx context.Context, files domain.FileMap) ([]domain.Segment, error) {
	return splitFiles(ctx, f.Name(), files, f.spans)
}

func (f *Fixed) spans(_, content string) []span {
	// Byte offset of every rune, plus the end.
	offsets := make([]int, 0, len(content)+1)
	for i := range content {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(content))
	total := len(offsets) - 1

	if total <= f.chunkSize {
		return []span{{start: 0, end: len(content), runes: total}}
	}

	var out []span
	step := f.chunkSize - f.overlap
	for start := 0; start < total; start += step {
		end := start + f.chunkSize
		if end > total {
			end = total
		}
		out = append(out, span{start: offsets[start], end: offsets[end], runes: end - start})
		if end == total {
			break
		}
	}
	return out
}
