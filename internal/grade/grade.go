// Package grade evaluates student answers against compiled rubrics through a
// judge model, batch by batch, with a fail-closed policy on malformed judge
// output.
package grade

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/castrumai/examai/internal/llm"
	"github.com/castrumai/examai/internal/model"
)

// DefaultBatchSize is the number of answers per judge call.
const DefaultBatchSize = 10

// Grader re-batches (question, rubric, answer) triples and applies the
// two-step grading protocol through a judge model.
type Grader struct {
	judge     llm.Completer
	batchSize int
}

// New creates a Grader. batchSize <= 0 selects the default.
func New(judge llm.Completer, batchSize int) *Grader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Grader{judge: judge, batchSize: batchSize}
}

type judgeBatchResponse struct {
	Results    []string `json:"results"`
	Reasonings []string `json:"reasonings"`
}

// Grade evaluates every item and returns verdicts in input order. Batches
// run concurrently. A batch whose judge output is unparsable or of the wrong
// cardinality is recorded as wrong for every item with the failure cause as
// reasoning; this is fail-closed, not a retry. A global count mismatch after
// reconciliation is a hard failure.
func (g *Grader) Grade(ctx context.Context, items []model.GradeItem) ([]model.GradeOutcome, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("nothing to grade")
	}

	type span struct{ start, end int }
	var spans []span
	for start := 0; start < len(items); start += g.batchSize {
		end := start + g.batchSize
		if end > len(items) {
			end = len(items)
		}
		spans = append(spans, span{start, end})
	}

	outcomes := make([]model.GradeOutcome, len(items))
	eg, egCtx := errgroup.WithContext(ctx)
	for _, sp := range spans {
		sp := sp
		eg.Go(func() error {
			batch := items[sp.start:sp.end]
			results, err := g.gradeBatch(egCtx, batch)
			if err != nil {
				return err
			}
			copy(outcomes[sp.start:sp.end], results)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Reconciliation sanity check: every slot must hold a verdict.
	graded := 0
	for _, o := range outcomes {
		if o.Result != "" {
			graded++
		}
	}
	if graded != len(items) {
		return nil, &model.CountMismatchError{What: "grading results", Want: len(items), Got: graded}
	}

	slog.Info("graded answers", "count", len(items), "batches", len(spans))
	return outcomes, nil
}

// gradeBatch issues one judge call. Malformed output fails the whole batch
// closed to wrong.
func (g *Grader) gradeBatch(ctx context.Context, batch []model.GradeItem) ([]model.GradeOutcome, error) {
	prompt := buildJudgePrompt(batch)
	raw, err := g.judge.Complete(ctx, judgeSystemPrompt, prompt, true)
	if err != nil {
		return nil, err
	}

	var resp judgeBatchResponse
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &resp); err != nil {
		return failClosed(len(batch), fmt.Sprintf("judge output was not valid JSON: %v", err)), nil
	}
	if len(resp.Results) != len(batch) || len(resp.Reasonings) != len(batch) {
		return failClosed(len(batch), fmt.Sprintf(
			"judge returned %d results and %d reasonings for %d answers",
			len(resp.Results), len(resp.Reasonings), len(batch))), nil
	}

	out := make([]model.GradeOutcome, len(batch))
	for i := range batch {
		out[i] = model.GradeOutcome{
			Result:    normalizeVerdict(resp.Results[i]),
			Reasoning: resp.Reasonings[i],
		}
	}
	return out, nil
}

// failClosed records an entire batch as wrong with the failure cause.
func failClosed(n int, cause string) []model.GradeOutcome {
	slog.Warn("grading batch failed closed", "size", n, "cause", cause)
	out := make([]model.GradeOutcome, n)
	for i := range out {
		out[i] = model.GradeOutcome{Result: model.VerdictWrong, Reasoning: "grading failed: " + cause}
	}
	return out
}

// normalizeVerdict maps judge output onto the two verdicts. Anything that is
// not an unambiguous "correct" is wrong.
func normalizeVerdict(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), model.VerdictCorrect) {
		return model.VerdictCorrect
	}
	return model.VerdictWrong
}

// GradeChoices grades multiple-choice answers deterministically against the
// answer key: the student's letter (first letter of the answer,
// case-insensitive) must equal the correct letter.
func GradeChoices(questions, correctLetters, answers []string) ([]model.GradeOutcome, error) {
	if len(correctLetters) != len(questions) || len(answers) != len(questions) {
		return nil, &model.CountMismatchError{What: "answers", Want: len(questions), Got: len(answers)}
	}
	out := make([]model.GradeOutcome, len(questions))
	for i := range questions {
		got := answerLetter(answers[i])
		want := strings.ToUpper(strings.TrimSpace(correctLetters[i]))
		if got != "" && got == want {
			out[i] = model.GradeOutcome{
				Result:    model.VerdictCorrect,
				Reasoning: fmt.Sprintf("selected option %s matches the answer key", got),
			}
		} else {
			out[i] = model.GradeOutcome{
				Result:    model.VerdictWrong,
				Reasoning: fmt.Sprintf("selected option %q does not match the answer key %s", strings.TrimSpace(answers[i]), want),
			}
		}
	}
	return out, nil
}

func answerLetter(answer string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ""
	}
	return strings.ToUpper(answer[:1])
}
