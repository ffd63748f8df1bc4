package corpus

import (
	"context"
	"fmt"
	"sort"

	"github.com/castrumai/examai/internal/model"
)

// matchThreshold is the minimum inner-product similarity for a file name to
// be accepted as a semantic match for a free-text keyword.
const matchThreshold = 0.4

// Embedder produces fixed-dimension embedding vectors, order-preserving for
// batches.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// FileMatcher resolves free-text keywords to corpus file names by comparing
// the keyword's embedding against a precomputed cache of per-file-name
// embeddings. The cache is built once at startup and never mutated.
type FileMatcher struct {
	embedder Embedder
	files    []string
	vectors  [][]float32
}

// NewFileMatcher embeds every canonical corpus file name and returns an
// immutable matcher. Vectors are assumed pre-normalized by the embedding
// service, so inner product is cosine similarity.
func NewFileMatcher(ctx context.Context, embedder Embedder) (*FileMatcher, error) {
	files := AllFiles()
	vectors, err := embedder.EmbedBatch(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("embed corpus file names: %w", err)
	}
	if len(vectors) != len(files) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d file names", len(vectors), len(files))
	}
	return &FileMatcher{embedder: embedder, files: files, vectors: vectors}, nil
}

// Match returns up to topN canonical file names whose similarity to the
// keyword exceeds the acceptance threshold, best first. Zero matches is an
// error, not an empty result.
func (m *FileMatcher) Match(ctx context.Context, keyword string, topN int) ([]string, error) {
	qv, err := m.embedder.Embed(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("embed keyword: %w", err)
	}

	type scored struct {
		file  string
		score float64
	}
	var hits []scored
	for i, fv := range m.vectors {
		s := innerProduct(qv, fv)
		if s > matchThreshold {
			hits = append(hits, scored{file: m.files[i], score: s})
		}
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %q", model.ErrNoFileMatch, keyword)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if topN > 0 && len(hits) > topN {
		hits = hits[:topN]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.file
	}
	return out, nil
}

func innerProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
