package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/embedding"
	"ai-chatbot-be/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const module = "retrieval"

var ErrIndexUnavailable = errors.New("retrieval index unavailable")

// SnapshotStore persists the served generation so a restart does not need a rebuild.
type SnapshotStore interface {
	Save(ctx context.Context, docs []Document) error
	Load(ctx context.Context) ([]Document, error)
}

type Options struct {
	ChunkSize    int
	ChunkOverlap int
	// Concurrency bounds parallel embedding calls during a rebuild.
	Concurrency int
	Snapshot    SnapshotStore
}

// generation is an immutable pairing of documents and their vectors.
// Either every document carries a normalized embedding of length dim, or none does.
type generation struct {
	docs    []Document
	vectors bool
	dim     int
	builtAt time.Time
}

// Index serves similarity search over the latest complete generation.
// Readers load the generation pointer once per query, so a concurrent rebuild
// is never partially visible.
type Index struct {
	embedder embedding.EmbeddingProvider
	logger   logger.ILogger
	opts     Options

	current   atomic.Pointer[generation]
	rebuildMu sync.Mutex
}

// NewIndex builds an empty index. embedder may be nil, in which case every
// search uses the keyword scorer.
func NewIndex(embedder embedding.EmbeddingProvider, log logger.ILogger, opts Options) *Index {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 300
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 50
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Index{embedder: embedder, logger: log, opts: opts}
}

// Size is the document count of the serving generation.
func (ix *Index) Size() int {
	gen := ix.current.Load()
	if gen == nil {
		return 0
	}
	return len(gen.docs)
}

// HasVectors reports whether searches currently run against embeddings.
func (ix *Index) HasVectors() bool {
	gen := ix.current.Load()
	return gen != nil && gen.vectors
}

func (ix *Index) collect(src Sources) ([]Document, Stats) {
	var docs []Document
	var stats Stats

	for _, f := range src.FAQs {
		docs = append(docs, faqDocument(f))
		stats.FAQCount++
	}
	for _, c := range src.Catalog {
		if !c.Available {
			continue
		}
		docs = append(docs, catalogDocument(c))
		stats.CatalogCount++
	}
	for _, d := range src.Documents {
		chunks := utils.SplitWords(d.Text, ix.opts.ChunkSize, ix.opts.ChunkOverlap)
		docs = append(docs, chunkDocuments(d, chunks)...)
		stats.DocCount += len(chunks)
	}
	return docs, stats
}

// Rebuild replaces the serving generation with one built from src.
// On embedding failure the previous vector generation keeps serving and the
// returned Stats carries the error with zero counts. Only one rebuild runs at a time.
func (ix *Index) Rebuild(ctx context.Context, src Sources) Stats {
	ix.rebuildMu.Lock()
	defer ix.rebuildMu.Unlock()

	start := time.Now()
	docs, stats := ix.collect(src)
	ix.logger.Info(module, "Starting index rebuild", map[string]interface{}{
		"faqs": stats.FAQCount, "menu": stats.CatalogCount, "docs": stats.DocCount,
	})

	if len(docs) == 0 {
		ix.logger.Warn(module, "No documents found to index", nil)
		ix.current.Store(&generation{vectors: true, builtAt: time.Now()})
		return stats
	}

	dim, err := ix.embedAll(ctx, docs)
	if err != nil {
		ix.logger.Error(module, "Index rebuild failed", map[string]interface{}{"error": err.Error()})
		// Keep a keyword corpus around when there is no vector generation to protect.
		if !ix.HasVectors() {
			ix.current.Store(&generation{docs: stripEmbeddings(docs), builtAt: time.Now()})
		}
		return Stats{Error: err.Error()}
	}

	ix.current.Store(&generation{docs: docs, vectors: true, dim: dim, builtAt: time.Now()})
	ix.logger.Info(module, "Index rebuilt", map[string]interface{}{
		"documents": len(docs), "dimension": dim, "duration_ms": time.Since(start).Milliseconds(),
	})

	if ix.opts.Snapshot != nil {
		if err := ix.opts.Snapshot.Save(ctx, docs); err != nil {
			ix.logger.Warn(module, "Failed to persist index snapshot", map[string]interface{}{"error": err.Error()})
		}
	}
	return stats
}

func stripEmbeddings(docs []Document) []Document {
	for i := range docs {
		docs[i].Embedding = nil
	}
	return docs
}

// embedAll fills docs[i].Embedding in place and returns the shared dimension.
func (ix *Index) embedAll(ctx context.Context, docs []Document) (int, error) {
	if ix.embedder == nil {
		return 0, fmt.Errorf("%w: no embedding provider configured", ErrIndexUnavailable)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Concurrency)
	for i := range docs {
		i := i
		g.Go(func() error {
			res, err := ix.embedder.Generate(gctx, docs[i].Text, embedding.TaskRetrievalDocument)
			if err != nil {
				return fmt.Errorf("%w: embed document %d: %v", ErrIndexUnavailable, i, err)
			}
			docs[i].Embedding = embedding.Normalize(res.Embedding.Values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	dim := len(docs[0].Embedding)
	for i := range docs {
		if len(docs[i].Embedding) == 0 || len(docs[i].Embedding) != dim {
			return 0, fmt.Errorf("%w: inconsistent embedding dimension at document %d", ErrIndexUnavailable, i)
		}
	}
	return dim, nil
}

// Restore loads a persisted generation. A missing or empty snapshot is not an error.
func (ix *Index) Restore(ctx context.Context) error {
	if ix.opts.Snapshot == nil {
		return nil
	}
	docs, err := ix.opts.Snapshot.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	dim := len(docs[0].Embedding)
	for i := range docs {
		if dim == 0 || len(docs[i].Embedding) != dim {
			return fmt.Errorf("snapshot document %d has an invalid embedding", i)
		}
		docs[i].Embedding = embedding.Normalize(docs[i].Embedding)
	}

	ix.rebuildMu.Lock()
	defer ix.rebuildMu.Unlock()
	ix.current.Store(&generation{docs: docs, vectors: true, dim: dim, builtAt: time.Now()})
	ix.logger.Info(module, "Loaded index snapshot", map[string]interface{}{"documents": len(docs)})
	return nil
}

// Search returns at most topK hits scoring at least minScore, best first.
// It never fails: without vectors, or when the query cannot be embedded,
// the keyword scorer answers instead.
func (ix *Index) Search(ctx context.Context, query string, topK int, minScore float64) []Hit {
	if topK <= 0 {
		return nil
	}
	gen := ix.current.Load()
	if gen == nil || len(gen.docs) == 0 {
		return nil
	}

	if gen.vectors && ix.embedder != nil {
		hits, err := ix.vectorSearch(ctx, gen, query, topK, minScore)
		if err == nil {
			return hits
		}
		ix.logger.Warn(module, "Vector search unavailable, using keyword fallback", map[string]interface{}{"error": err.Error()})
	}
	return keywordSearch(gen.docs, query, topK, minScore)
}

func (ix *Index) vectorSearch(ctx context.Context, gen *generation, query string, topK int, minScore float64) ([]Hit, error) {
	res, err := ix.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	q := embedding.Normalize(res.Embedding.Values)
	if len(q) != gen.dim {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d", ErrIndexUnavailable, len(q), gen.dim)
	}

	hits := make([]Hit, 0, topK)
	for _, d := range gen.docs {
		score := innerProduct(q, d.Embedding)
		if score > 1 {
			score = 1
		}
		if score < 0 || score < minScore {
			continue
		}
		hits = append(hits, Hit{Document: d, Score: score})
	}
	return rank(hits, topK), nil
}

func innerProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// rank sorts by descending score, keeping document order among equal scores.
func rank(hits []Hit, topK int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
