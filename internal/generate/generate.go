package generate

import (
	"context"

	"github.com/castrumai/examai/internal/llm"
	"github.com/castrumai/examai/internal/model"
	"github.com/castrumai/examai/internal/retrieve"
)

// PassageFetcher resolves a topic descriptor and returns relevant source
// passages. Satisfied by *retrieve.Retriever.
type PassageFetcher interface {
	Fetch(ctx context.Context, topic string) ([]model.Passage, retrieve.Resolution, error)
}

// Generator produces exam questions from retrieved corpus material.
type Generator struct {
	completer llm.Completer
	fetcher   PassageFetcher
	batchSize int
}

// New creates a Generator. batchSize <= 0 selects the default.
func New(completer llm.Completer, fetcher PassageFetcher, batchSize int) *Generator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Generator{completer: completer, fetcher: fetcher, batchSize: batchSize}
}
