// Package chunker splits repository files into overlapping segments sized
// for embedding.
package chunker

import (
	"context"
	"unicode/utf8"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// Default tiers for the recursive strategy, in characters.
const (
	DefaultSmallFileThreshold = 100
	DefaultLargeFileThreshold = 5000

	DefaultMediumChunkSize = 2000
	DefaultMediumOverlap   = 200
	DefaultLargeChunkSize  = 3000
	DefaultLargeOverlap    = 300
)

// Ensure Recursive implements the interface.
var _ driven.DocumentChunker = (*Recursive)(nil)

// Recursive splits code at language-aware boundaries (class and function
// headers, blank lines, newlines, spaces) with size tiers chosen per file.
type Recursive struct {
	smallThreshold int
	largeThreshold int
	medium         *splitter
	large          *splitter
}

// RecursiveOption configures a Recursive chunker.
type RecursiveOption func(*recursiveConfig)

type recursiveConfig struct {
	smallThreshold, largeThreshold int
	mediumSize, mediumOverlap      int
	largeSize, largeOverlap        int
}

// WithSmallFileThreshold sets the size below which a file is kept whole.
func WithSmallFileThreshold(n int) RecursiveOption {
	return func(c *recursiveConfig) {
		if n >= 0 {
			c.smallThreshold = n
		}
	}
}

// WithLargeFileThreshold sets the size at which the large tier applies.
func WithLargeFileThreshold(n int) RecursiveOption {
	return func(c *recursiveConfig) {
		if n > 0 {
			c.largeThreshold = n
		}
	}
}

// WithMediumTier sets the chunk size and overlap for medium files.
func WithMediumTier(size, overlap int) RecursiveOption {
	return func(c *recursiveConfig) {
		if size > 0 {
			c.mediumSize, c.mediumOverlap = size, overlap
		}
	}
}

// WithLargeTier sets the chunk size and overlap for large files.
func WithLargeTier(size, overlap int) RecursiveOption {
	return func(c *recursiveConfig) {
		if size > 0 {
			c.largeSize, c.largeOverlap = size, overlap
		}
	}
}

// NewRecursive creates a recursive chunker.
func NewRecursive(opts ...RecursiveOption) *Recursive {
	cfg := recursiveConfig{
		smallThreshold: DefaultSmallFileThreshold,
		largeThreshold: DefaultLargeFileThreshold,
		mediumSize:     DefaultMediumChunkSize,
		mediumOverlap:  DefaultMediumOverlap,
		largeSize:      DefaultLargeChunkSize,
		largeOverlap:   DefaultLargeOverlap,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Recursive{
		smallThreshold: cfg.smallThreshold,
		largeThreshold: cfg.largeThreshold,
		medium:         newSplitter(cfg.mediumSize, cfg.mediumOverlap),
		large:          newSplitter(cfg.largeSize, cfg.largeOverlap),
	}
}

// Name returns the strategy name.
func (r *Recursive) Name() string {
	return "recursive"
}

// Split chunks every eligible file. Files are visited in path order, so the
// output is deterministic.
func (r *Recursive) Split(ctx context.Context, files domain.FileMap) ([]domain.Segment, error) {
	return splitFiles(ctx, r.Name(), files, r.spans)
}

func (r *Recursive) spans(ext, content string) []span {
	n := utf8.RuneCountInString(content)
	switch {
	case n < r.smallThreshold:
		return []span{{start: 0, end: len(content), runes: n}}
	case n < r.largeThreshold:
		return r.medium.split(content, SeparatorsFor(ext))
	default:
		return r.large.split(content, SeparatorsFor(ext))
	}
}
