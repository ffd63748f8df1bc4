package grade

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/castrumai/examai/internal/model"
)

type fakeJudge struct {
	mu        sync.Mutex
	responses []string
	calls     int
	err       error
}

func (f *fakeJudge) Complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	resp := f.responses[f.calls%len(f.responses)]
	f.calls++
	return resp, nil
}

func items(n int) []model.GradeItem {
	out := make([]model.GradeItem, n)
	for i := range out {
		out[i] = model.GradeItem{
			Question: "Q",
			Rubric:   model.CompiledRubric{AcceptCriteria: []string{"the answer contains 'x'"}},
			Answer:   "A",
		}
	}
	return out
}

func TestGradeParsesVerdicts(t *testing.T) {
	judge := &fakeJudge{responses: []string{
		`{"results": ["correct", "WRONG", "Correct"], "reasonings": ["ok", "missed it", "ok"]}`,
	}}
	g := New(judge, 10)

	got, err := g.Grade(context.Background(), items(3))
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	want := []string{model.VerdictCorrect, model.VerdictWrong, model.VerdictCorrect}
	for i, w := range want {
		if got[i].Result != w {
			t.Errorf("outcome[%d] = %q, want %q", i, got[i].Result, w)
		}
	}
	if got[1].Reasoning != "missed it" {
		t.Errorf("reasoning[1] = %q", got[1].Reasoning)
	}
}

func TestGradeFailsClosedOnUnparsableOutput(t *testing.T) {
	judge := &fakeJudge{responses: []string{"I think they all did great!"}}
	g := New(judge, 10)

	got, err := g.Grade(context.Background(), items(2))
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	for i, o := range got {
		if o.Result != model.VerdictWrong {
			t.Errorf("outcome[%d] = %q, want wrong (fail closed)", i, o.Result)
		}
		if !strings.HasPrefix(o.Reasoning, "grading failed: ") {
			t.Errorf("reasoning[%d] = %q, want failure cause", i, o.Reasoning)
		}
	}
}

func TestGradeFailsClosedOnCardinalityMismatch(t *testing.T) {
	judge := &fakeJudge{responses: []string{
		`{"results": ["correct"], "reasonings": ["ok"]}`,
	}}
	g := New(judge, 10)

	got, err := g.Grade(context.Background(), items(3))
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	for i, o := range got {
		if o.Result != model.VerdictWrong {
			t.Errorf("outcome[%d] = %q, want wrong", i, o.Result)
		}
	}
}

func TestGradeBatchesKeepInputOrder(t *testing.T) {
	// 5 items at batch size 2: batches [0,1], [2,3], [4]. Scripted responses
	// are consumed in call order, but each lands at its span's offset.
	judge := &fakeJudge{responses: []string{
		`{"results": ["correct", "wrong"], "reasonings": ["a", "b"]}`,
	}}
	g := New(judge, 2)

	got, err := g.Grade(context.Background(), items(5))
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d outcomes, want 5", len(got))
	}
	// Whatever the batch scheduling, every slot must hold a verdict.
	for i, o := range got {
		if o.Result == "" {
			t.Errorf("outcome[%d] missing", i)
		}
	}
	if judge.calls != 3 {
		t.Errorf("judge called %d times, want 3", judge.calls)
	}
}

func TestGradeTransportErrorAborts(t *testing.T) {
	judge := &fakeJudge{err: errors.New("connection refused")}
	g := New(judge, 10)

	if _, err := g.Grade(context.Background(), items(2)); err == nil {
		t.Error("expected transport error to abort grading")
	}
}

func TestGradeEmptyInput(t *testing.T) {
	g := New(&fakeJudge{responses: []string{"{}"}}, 10)
	if _, err := g.Grade(context.Background(), nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestNormalizeVerdict(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"correct", model.VerdictCorrect},
		{"Correct", model.VerdictCorrect},
		{" CORRECT ", model.VerdictCorrect},
		{"wrong", model.VerdictWrong},
		{"incorrect", model.VerdictWrong},
		{"mostly correct", model.VerdictWrong},
		{"", model.VerdictWrong},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeVerdict(tt.in); got != tt.want {
				t.Errorf("normalizeVerdict(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGradeChoices(t *testing.T) {
	questions := []string{"Q1", "Q2", "Q3", "Q4"}
	correct := []string{"A", "B", "C", "D"}
	answers := []string{"A", "b) London", "D", ""}

	got, err := GradeChoices(questions, correct, answers)
	if err != nil {
		t.Fatalf("GradeChoices: %v", err)
	}
	want := []string{model.VerdictCorrect, model.VerdictCorrect, model.VerdictWrong, model.VerdictWrong}
	for i, w := range want {
		if got[i].Result != w {
			t.Errorf("outcome[%d] = %q, want %q", i, got[i].Result, w)
		}
	}
}

func TestGradeChoicesCountMismatch(t *testing.T) {
	_, err := GradeChoices([]string{"Q1", "Q2"}, []string{"A", "B"}, []string{"A"})
	if !model.IsInconsistency(err) {
		t.Errorf("got %v, want count mismatch", err)
	}
}

func TestJudgePromptStatesProtocol(t *testing.T) {
	// Scenario: answer matches an accept criterion and a reject criterion.
	// The protocol the prompt states must make the reject check win; assert
	// the prompt carries both the precedence rule and the AND semantics.
	if !strings.Contains(judgeSystemPrompt, "absolute precedence") {
		t.Error("system prompt missing reject precedence rule")
	}
	if !strings.Contains(judgeSystemPrompt, "ALL of its sub-conditions") {
		t.Error("system prompt missing AND conjunction semantics")
	}

	prompt := buildJudgePrompt([]model.GradeItem{{
		Question: "Explain stall recovery.",
		Rubric: model.CompiledRubric{
			KeyConcept:     "stall recovery",
			AcceptCriteria: []string{"the answer contains 'reduce angle of attack'"},
			RejectCriteria: []string{"the answer contains 'pull back on the stick'"},
		},
		Answer: "Reduce angle of attack and pull back on the stick.",
	}})
	if !strings.Contains(prompt, "reduce angle of attack") || !strings.Contains(prompt, "pull back on the stick") {
		t.Error("prompt missing rubric criteria")
	}
	if !strings.Contains(prompt, "Reject criteria (absolute precedence):") {
		t.Error("prompt missing reject criteria section")
	}
}
