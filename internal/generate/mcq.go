package generate

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/castrumai/examai/internal/llm"
	"github.com/castrumai/examai/internal/model"
)

type mcqBatchResponse struct {
	Questions []string   `json:"questions"`
	Options   [][]string `json:"options"`
}

// MultipleChoice generates n lettered multiple-choice questions with
// numChoices options each. The generator model always places the correct
// option first; FinalizeChoices shuffles each list independently and derives
// the answer letter. Malformed batches are dropped.
func (g *Generator) MultipleChoice(ctx context.Context, topic string, n, numChoices int, previous []string) ([]model.ChoiceQuestion, error) {
	passages, res, err := g.fetcher.Fetch(ctx, topic)
	if err != nil {
		return nil, err
	}
	topics, err := AllocateTopics(res.SubTopics, n)
	if err != nil {
		return nil, err
	}

	batches := splitBatches(topics, g.batchSize)
	parsed := make([][]model.ChoiceQuestion, len(batches))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, batchTopics := range batches {
		i, batchTopics := i, batchTopics
		eg.Go(func() error {
			prompt := buildMCQBatchPrompt(batchTopics, numChoices, passages, previous)
			raw, err := g.completer.Complete(egCtx, authorSystemPrompt, prompt, true)
			if err != nil {
				return err
			}
			batch, err := parseMCQBatch(raw, len(batchTopics), numChoices)
			if err != nil {
				slog.Warn("dropping MCQ batch", "error", err, "topics", len(batchTopics))
				return nil
			}
			parsed[i] = batch
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []model.ChoiceQuestion
	for _, batch := range parsed {
		out = append(out, batch...)
	}

	slog.Info("generated multiple-choice questions",
		"topic", topic, "requested", n, "produced", len(out), "choices", numChoices)
	return out, nil
}

func parseMCQBatch(raw string, wantQuestions, wantChoices int) ([]model.ChoiceQuestion, error) {
	var resp mcqBatchResponse
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &resp); err != nil {
		return nil, err
	}
	if len(resp.Questions) != wantQuestions || len(resp.Options) != wantQuestions {
		return nil, &model.CountMismatchError{What: "mcq batch questions", Want: wantQuestions, Got: len(resp.Questions)}
	}

	out := make([]model.ChoiceQuestion, 0, len(resp.Questions))
	for i, q := range resp.Questions {
		if len(resp.Options[i]) != wantChoices {
			return nil, &model.CountMismatchError{What: "options", Want: wantChoices, Got: len(resp.Options[i])}
		}
		lettered, correct, err := FinalizeChoices(resp.Options[i])
		if err != nil {
			return nil, err
		}
		out = append(out, model.ChoiceQuestion{
			Text:          q,
			Choices:       lettered,
			CorrectLetter: correct,
		})
	}
	return out, nil
}
