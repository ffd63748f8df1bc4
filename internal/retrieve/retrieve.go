// Package retrieve resolves topic descriptors to corpus filters and fetches
// ranked source passages from the similarity-search service.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/castrumai/examai/internal/corpus"
	"github.com/castrumai/examai/internal/model"
)

const (
	// scopedThreshold favors recall when the caller named an exact topic
	// group or file; the filter already constrains the search space.
	scopedThreshold = 0.3
	// freeTextThreshold favors precision for free-text keywords, where the
	// scope was inferred rather than named.
	freeTextThreshold = 0.7
	// maxFetch is a generous ceiling on returned passages; the service's own
	// ranking limit applies below it.
	maxFetch = 50
	// maxFileMatches bounds semantic file matching for free-text keywords.
	maxFileMatches = 3
)

// Query is one retrieval call against the similarity-search service.
type Query struct {
	Vector       []float32
	Threshold    float64
	GroupFilters []string
	FileFilters  []string
	Limit        int
}

// Searcher is the similarity-search service boundary. Implementations return
// every passage ranked above the threshold, best first, up to Limit.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]model.Passage, error)
}

// Resolution is the outcome of resolving a topic descriptor: the filters to
// scope retrieval by, the sub-topic catalogue to anchor questions to, and
// whether the caller named the scope exactly.
type Resolution struct {
	GroupFilters []string
	FileFilters  []string
	SubTopics    []string
	Scoped       bool
}

// Retriever turns a topic descriptor into a set of relevant passages.
type Retriever struct {
	searcher Searcher
	embedder corpus.Embedder
	matcher  *corpus.FileMatcher
}

// New creates a Retriever.
func New(searcher Searcher, embedder corpus.Embedder, matcher *corpus.FileMatcher) *Retriever {
	return &Retriever{searcher: searcher, embedder: embedder, matcher: matcher}
}

// Resolve maps a topic descriptor to concrete corpus filters. The descriptor
// is, in order of precedence: an exact topic-group id, an exact
// (case-insensitive) file name, a comma-separated list of group ids (all must
// be valid), or a free-text keyword resolved by semantic file match.
func (r *Retriever) Resolve(ctx context.Context, topic string) (Resolution, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Resolution{}, fmt.Errorf("%w: empty topic descriptor", model.ErrUnknownTopic)
	}

	if corpus.IsGroup(topic) {
		subs, err := corpus.SubTopics(topic)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{GroupFilters: []string{topic}, SubTopics: subs, Scoped: true}, nil
	}

	if canonical, ok := corpus.CanonicalFile(topic); ok {
		group, _ := corpus.GroupForFile(canonical)
		subs, err := corpus.SubTopics(group)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{FileFilters: []string{canonical}, SubTopics: subs, Scoped: true}, nil
	}

	if strings.Contains(topic, ",") {
		var groups []string
		var subs []string
		seen := make(map[string]bool)
		for _, part := range strings.Split(topic, ",") {
			id := strings.TrimSpace(part)
			if !corpus.IsGroup(id) {
				return Resolution{}, fmt.Errorf("%w: %q in list %q", model.ErrUnknownTopic, id, topic)
			}
			groups = append(groups, id)
			ts, err := corpus.SubTopics(id)
			if err != nil {
				return Resolution{}, err
			}
			for _, t := range ts {
				if !seen[t] {
					seen[t] = true
					subs = append(subs, t)
				}
			}
		}
		return Resolution{GroupFilters: groups, SubTopics: subs, Scoped: true}, nil
	}

	// Free-text keyword: semantic file match against the embedding cache.
	files, err := r.matcher.Match(ctx, topic, maxFileMatches)
	if err != nil {
		return Resolution{}, err
	}
	subs, err := corpus.SubTopicsForFiles(files)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{FileFilters: files, SubTopics: subs, Scoped: false}, nil
}

// Fetch resolves the topic descriptor and issues a single retrieval call.
// Zero passages is a hard failure: generation without source material is
// meaningless.
func (r *Retriever) Fetch(ctx context.Context, topic string) ([]model.Passage, Resolution, error) {
	res, err := r.Resolve(ctx, topic)
	if err != nil {
		return nil, Resolution{}, err
	}

	qv, err := r.embedder.Embed(ctx, topic)
	if err != nil {
		return nil, Resolution{}, fmt.Errorf("embed topic query: %w", err)
	}

	threshold := freeTextThreshold
	if res.Scoped {
		threshold = scopedThreshold
	}

	passages, err := r.searcher.Search(ctx, Query{
		Vector:       qv,
		Threshold:    threshold,
		GroupFilters: res.GroupFilters,
		FileFilters:  res.FileFilters,
		Limit:        maxFetch,
	})
	if err != nil {
		return nil, Resolution{}, fmt.Errorf("similarity search: %w", err)
	}
	if len(passages) == 0 {
		return nil, Resolution{}, fmt.Errorf("%w: %q (threshold %.2f)", model.ErrNoPassages, topic, threshold)
	}

	slog.Debug("retrieved passages",
		"topic", topic,
		"count", len(passages),
		"threshold", threshold,
		"groups", res.GroupFilters,
		"files", res.FileFilters,
	)
	return passages, res, nil
}
