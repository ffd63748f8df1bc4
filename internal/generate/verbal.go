package generate

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/castrumai/examai/internal/llm"
	"github.com/castrumai/examai/internal/model"
	"github.com/castrumai/examai/internal/rubric"
)

// verbalMaxAttempts bounds retries per topic on malformed single-question
// output.
const verbalMaxAttempts = 3

type verbalResponse struct {
	Question         string          `json:"question"`
	EvaluationRubric model.RawRubric `json:"evaluation_rubric"`
}

// Verbal generates n verbal questions, one completion call per question.
// Each topic gets up to three attempts on malformed output before being
// given up on; the request fails if the final count does not match n.
func (g *Generator) Verbal(ctx context.Context, topic string, n int, previous []string) ([]model.OpenEndedQuestion, error) {
	passages, res, err := g.fetcher.Fetch(ctx, topic)
	if err != nil {
		return nil, err
	}
	topics, err := AllocateTopics(res.SubTopics, n)
	if err != nil {
		return nil, err
	}

	results := make([]*model.OpenEndedQuestion, len(topics))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, subTopic := range topics {
		i, subTopic := i, subTopic
		eg.Go(func() error {
			q, err := g.verbalQuestion(egCtx, subTopic, passages, previous)
			if err != nil {
				return err
			}
			results[i] = q
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []model.OpenEndedQuestion
	for _, q := range results {
		if q != nil {
			out = append(out, *q)
		}
	}
	if len(out) != n {
		return nil, &model.CountMismatchError{What: "verbal questions", Want: n, Got: len(out)}
	}

	slog.Info("generated verbal questions", "topic", topic, "count", len(out))
	return out, nil
}

// verbalQuestion makes bounded attempts at one well-formed question for a
// single sub-topic. Exhausting the attempts abandons the topic (nil, nil);
// transport errors abort immediately.
func (g *Generator) verbalQuestion(ctx context.Context, subTopic string, passages []model.Passage, previous []string) (*model.OpenEndedQuestion, error) {
	prompt := buildVerbalPrompt(subTopic, passages, previous)

	for attempt := 1; attempt <= verbalMaxAttempts; attempt++ {
		raw, err := g.completer.Complete(ctx, authorSystemPrompt, prompt, true)
		if err != nil {
			return nil, err
		}

		var resp verbalResponse
		if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &resp); err != nil || strings.TrimSpace(resp.Question) == "" {
			slog.Warn("malformed verbal question output",
				"sub_topic", subTopic, "attempt", attempt, "error", err)
			continue
		}

		return &model.OpenEndedQuestion{
			SubTopic: subTopic,
			Text:     resp.Question,
			Rubric:   rubric.Compile(resp.EvaluationRubric, resp.Question),
		}, nil
	}

	slog.Warn("giving up on verbal question topic", "sub_topic", subTopic, "attempts", verbalMaxAttempts)
	return nil, nil
}
