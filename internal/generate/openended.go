package generate

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/castrumai/examai/internal/llm"
	"github.com/castrumai/examai/internal/model"
	"github.com/castrumai/examai/internal/rubric"
)

type generatedQuestion struct {
	Topic    string `json:"topic"`
	Question string `json:"question"`
}

type openEndedBatchResponse struct {
	Questions         []generatedQuestion `json:"questions"`
	EvaluationRubrics []model.RawRubric   `json:"evaluation_rubrics"`
}

type openEndedBatch struct {
	questions []generatedQuestion
	rubrics   []model.RawRubric
}

// OpenEnded generates n open-ended questions with compiled rubrics for the
// given topic descriptor. Batches run concurrently; a batch whose output is
// malformed or of the wrong cardinality is dropped (not retried), so fewer
// than n questions may come back. A question/rubric count mismatch after
// aggregation is a hard failure of the whole request.
func (g *Generator) OpenEnded(ctx context.Context, topic string, n int, previous []string) ([]model.OpenEndedQuestion, error) {
	passages, res, err := g.fetcher.Fetch(ctx, topic)
	if err != nil {
		return nil, err
	}
	topics, err := AllocateTopics(res.SubTopics, n)
	if err != nil {
		return nil, err
	}

	batches := splitBatches(topics, g.batchSize)
	parsed := make([]openEndedBatch, len(batches))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, batchTopics := range batches {
		i, batchTopics := i, batchTopics
		eg.Go(func() error {
			prompt := buildOpenEndedBatchPrompt(batchTopics, passages, previous)
			raw, err := g.completer.Complete(egCtx, authorSystemPrompt, prompt, true)
			if err != nil {
				return err
			}
			parsed[i] = parseOpenEndedBatch(raw, len(batchTopics))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var questions []generatedQuestion
	var rubrics []model.RawRubric
	for _, b := range parsed {
		questions = append(questions, b.questions...)
		rubrics = append(rubrics, b.rubrics...)
	}
	if len(questions) != len(rubrics) {
		// No partial commit on a broken aggregation.
		return nil, &model.CountMismatchError{What: "rubrics", Want: len(questions), Got: len(rubrics)}
	}

	out := make([]model.OpenEndedQuestion, len(questions))
	for i, q := range questions {
		out[i] = model.OpenEndedQuestion{
			SubTopic: q.Topic,
			Text:     q.Question,
			Rubric:   rubric.Compile(rubrics[i], q.Question),
		}
	}

	slog.Info("generated open-ended questions",
		"topic", topic, "requested", n, "produced", len(out), "batches", len(batches))
	return out, nil
}

// parseOpenEndedBatch validates one batch response against its expected
// cardinality. Malformed or misaligned output drops the whole batch; its
// questions are simply absent from the final result.
func parseOpenEndedBatch(raw string, want int) openEndedBatch {
	var resp openEndedBatchResponse
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &resp); err != nil {
		slog.Warn("dropping open-ended batch: unparsable output", "error", err, "topics", want)
		return openEndedBatch{}
	}
	if len(resp.Questions) != want || len(resp.EvaluationRubrics) != want {
		slog.Warn("dropping open-ended batch: cardinality mismatch",
			"want", want, "questions", len(resp.Questions), "rubrics", len(resp.EvaluationRubrics))
		return openEndedBatch{}
	}
	return openEndedBatch{questions: resp.Questions, rubrics: resp.EvaluationRubrics}
}
