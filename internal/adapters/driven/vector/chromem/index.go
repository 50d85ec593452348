// Package chromem implements the vector index on chromem-go with maximal
// marginal relevance reranking.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Search defaults.
const (
	DefaultK      = 50
	DefaultLambda = 0.5
)

// Metadata keys stored with each chromem document.
const (
	metaSource   = "source"
	metaFileName = "filename"
	metaDir      = "dir"
	metaType     = "type"
	metaIndex    = "index"
	metaStart    = "start"
	metaEnd      = "end"
)

// errNoEmbedder is returned if chromem ever tries to embed text itself.
// Embeddings are always supplied by the caller.
var errNoEmbedder = errors.New("chromem: embeddings must be precomputed")

func noEmbed(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedder
}

// Index keeps one chromem collection per name. Normalised embeddings are
// mirrored in memory so MMR can compare candidates with each other.
type Index struct {
	db *chromem.DB

	mu      sync.RWMutex
	vectors map[string]map[string][]float32 // collection -> id -> unit vector
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{
		db:      chromem.NewDB(),
		vectors: make(map[string]map[string][]float32),
	}
}

// Add inserts entries into a collection, creating it if needed.
func (x *Index) Add(ctx context.Context, collection string, entries []driven.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	coll, err := x.db.GetOrCreateCollection(collection, nil, noEmbed)
	if err != nil {
		return fmt.Errorf("chromem: collection %q: %w", collection, err)
	}

	docs := make([]chromem.Document, len(entries))
	unit := make(map[string][]float32, len(entries))
	for i, e := range entries {
		if len(e.Embedding) == 0 {
			return fmt.Errorf("%w: segment %s has no embedding", domain.ErrInvalidInput, e.Segment.ID)
		}
		v := normalize(e.Embedding)
		docs[i] = chromem.Document{
			ID:        e.Segment.ID,
			Content:   e.Segment.Text,
			Embedding: v,
			Metadata:  segmentMetadata(e.Segment),
		}
		unit[e.Segment.ID] = v
	}

	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("chromem: add documents: %w", err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.vectors[collection] == nil {
		x.vectors[collection] = make(map[string][]float32, len(unit))
	}
	for id, v := range unit {
		x.vectors[collection][id] = v
	}
	logger.Debug("chromem: %d entries in %q", coll.Count(), collection)
	return nil
}

// Search returns up to K segments chosen by maximal marginal relevance
// among the FetchK nearest neighbours of query.
func (x *Index) Search(ctx context.Context, collection string, query []float32, opts driven.SearchOptions) ([]driven.VectorHit, error) {
	coll := x.db.GetCollection(collection, noEmbed)
	if coll == nil || coll.Count() == 0 {
		return nil, nil
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrInvalidInput)
	}

	k, fetchK, lambda := resolveOptions(opts, coll.Count())
	results, err := coll.QueryEmbedding(ctx, normalize(query), fetchK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}

	x.mu.RLock()
	vectors := x.vectors[collection]
	candidates := make([]candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, candidate{
			hit:    driven.VectorHit{Segment: resultSegment(r), Similarity: float64(r.Similarity)},
			vector: vectors[r.ID],
		})
	}
	x.mu.RUnlock()

	return selectMMR(candidates, k, lambda), nil
}

// Count returns the number of entries in a collection.
func (x *Index) Count(collection string) int {
	coll := x.db.GetCollection(collection, noEmbed)
	if coll == nil {
		return 0
	}
	return coll.Count()
}

// Drop removes a collection.
func (x *Index) Drop(_ context.Context, collection string) error {
	x.mu.Lock()
	delete(x.vectors, collection)
	x.mu.Unlock()

	if x.db.GetCollection(collection, noEmbed) == nil {
		return nil
	}
	if err := x.db.DeleteCollection(collection); err != nil {
		return fmt.Errorf("chromem: drop %q: %w", collection, err)
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	x.mu.Lock()
	x.vectors = make(map[string]map[string][]float32)
	x.mu.Unlock()
	return x.db.Reset()
}

// resolveOptions applies defaults: k=50, fetchK=4k, lambda=0.5, with k and
// fetchK capped at the collection size.
func resolveOptions(opts driven.SearchOptions, size int) (k, fetchK int, lambda float64) {
	k = opts.K
	if k <= 0 {
		k = DefaultK
	}
	fetchK = opts.FetchK
	if fetchK <= 0 {
		fetchK = 4 * k
	}
	if fetchK < k {
		fetchK = k
	}
	lambda = opts.Lambda
	if lambda < 0 || lambda > 1 {
		lambda = DefaultLambda
	}
	return min(k, size), min(fetchK, size), lambda
}

func segmentMetadata(s domain.Segment) map[string]string {
	return map[string]string{
		metaSource:   s.SourcePath,
		metaFileName: s.FileName,
		metaDir:      s.Directory,
		metaType:     s.FileType,
		metaIndex:    strconv.Itoa(s.Index),
		metaStart:    strconv.Itoa(s.Start),
		metaEnd:      strconv.Itoa(s.End),
	}
}

func resultSegment(r chromem.Result) domain.Segment {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(r.Metadata[key])
		return n
	}
	return domain.Segment{
		ID:         r.ID,
		Text:       r.Content,
		SourcePath: r.Metadata[metaSource],
		FileName:   r.Metadata[metaFileName],
		Directory:  r.Metadata[metaDir],
		FileType:   r.Metadata[metaType],
		Index:      atoi(metaIndex),
		Start:      atoi(metaStart),
		End:        atoi(metaEnd),
	}
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
