package postprocessors

import (
	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/postprocessors/chunker"
)

// RegisterDefaults registers the built-in chunking strategies.
func RegisterDefaults(r *Registry) {
	r.Register("recursive", buildRecursive)
	r.Register("fixed", buildFixed)
}

// NewChunker builds the chunker selected by settings using the default
// registry.
func NewChunker(settings domain.ChunkerSettings) (driven.DocumentChunker, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	name := settings.Strategy
	if name == "" {
		name = "recursive"
	}
	settings.Strategy = name
	return r.Build(name, settings.Config())
}

// buildRecursive creates a recursive chunker from generic config.
// Supported config keys:
//   - small_file_threshold (int): keep files shorter than this whole (default: 100)
//   - large_file_threshold (int): switch to the large tier at this size (default: 5000)
//   - medium_chunk_size, medium_overlap (int): default 2000 / 200
//   - large_chunk_size, large_overlap (int): default 3000 / 300
func buildRecursive(cfg map[string]any) (driven.DocumentChunker, error) {
	var opts []chunker.RecursiveOption

	if cfg != nil {
		if n := getIntFromConfig(cfg, "small_file_threshold"); n > 0 {
			opts = append(opts, chunker.WithSmallFileThreshold(n))
		}
		if n := getIntFromConfig(cfg, "large_file_threshold"); n > 0 {
			opts = append(opts, chunker.WithLargeFileThreshold(n))
		}
		if size := getIntFromConfig(cfg, "medium_chunk_size"); size > 0 {
			opts = append(opts, chunker.WithMediumTier(size, getIntOr(cfg, "medium_overlap", chunker.DefaultMediumOverlap)))
		}
		if size := getIntFromConfig(cfg, "large_chunk_size"); size > 0 {
			opts = append(opts, chunker.WithLargeTier(size, getIntOr(cfg, "large_overlap", chunker.DefaultLargeOverlap)))
		}
	}

	return chunker.NewRecursive(opts...), nil
}

// buildFixed creates a fixed-window chunker from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildFixed(cfg map[string]any) (driven.DocumentChunker, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
	}

	return chunker.NewFixed(opts...), nil
}

func getIntOr(cfg map[string]any, key string, def int) int {
	if _, ok := cfg[key]; !ok {
		return def
	}
	return getIntFromConfig(cfg, key)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
