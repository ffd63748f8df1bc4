package model

import (
	"errors"
	"testing"
)

func TestCheckConsistency(t *testing.T) {
	score := 80.0
	tests := []struct {
		name    string
		rec     ExamRecord
		wantErr bool
	}{
		{"empty record", ExamRecord{}, false},
		{"questions only", ExamRecord{Questions: []string{"q1", "q2"}}, false},
		{"fully aligned", ExamRecord{
			Questions:  []string{"q1", "q2"},
			Answers:    []string{"a1", "a2"},
			Results:    []string{"correct", "wrong"},
			Reasonings: []string{"r1", "r2"},
			TotalScore: &score,
		}, false},
		{"answers trailing", ExamRecord{
			Questions: []string{"q1", "q2", "q3"},
			Answers:   []string{"a1"},
		}, false},
		{"answers exceed questions", ExamRecord{
			Questions: []string{"q1"},
			Answers:   []string{"a1", "a2"},
		}, true},
		{"results misaligned", ExamRecord{
			Questions: []string{"q1", "q2"},
			Results:   []string{"correct"},
		}, true},
		{"choices misaligned", ExamRecord{
			Questions: []string{"q1", "q2"},
			Choices:   [][]string{{"A) x"}},
		}, true},
		{"rubrics misaligned", ExamRecord{
			Questions: []string{"q1"},
			Rubrics:   []CompiledRubric{{}, {}},
		}, true},
		{"answers before questions", ExamRecord{
			Answers: []string{"a1", "a2"},
		}, false},
		{"soft deleted", ExamRecord{PlagiarismViolations: "kept"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.CheckConsistency()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckConsistency() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsInconsistency(err) {
				t.Errorf("consistency failure %v should be an inconsistency", err)
			}
		})
	}
}

func TestChoiceCount(t *testing.T) {
	tests := []struct {
		name string
		rec  ExamRecord
		want int
	}{
		{"no choices", ExamRecord{}, 0},
		{"empty lists", ExamRecord{Choices: [][]string{{}, {}}}, 0},
		{"first populated", ExamRecord{Choices: [][]string{{"A) x", "B) y", "C) z"}}}, 3},
		{"skips empty head", ExamRecord{Choices: [][]string{{}, {"A) x", "B) y"}}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.ChoiceCount(); got != tt.want {
				t.Errorf("ChoiceCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountMismatchError(t *testing.T) {
	err := &CountMismatchError{What: "rubrics", Want: 5, Got: 3}
	want := "data inconsistency: rubrics count 3 does not match expected 5"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	wrapped := errors.Join(errors.New("outer"), err)
	if !IsInconsistency(wrapped) {
		t.Error("IsInconsistency should see through wrapping")
	}
	if IsInconsistency(ErrRecordNotFound) {
		t.Error("ErrRecordNotFound is not an inconsistency")
	}
}
