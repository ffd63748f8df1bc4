package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/castrumai/examai/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testKey() model.Key {
	return model.Key{
		ExamName:     "midterm",
		StudentName:  "ayse",
		QuestionType: model.QuestionTypeOpenEnded,
	}
}

func TestGetMissingRecord(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get(context.Background(), testKey()); !errors.Is(err, model.ErrRecordNotFound) {
		t.Errorf("got %v, want ErrRecordNotFound", err)
	}
}

func TestUpsertAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	score := 50.0

	in := &model.ExamRecord{
		ExamName:     "midterm",
		StudentName:  "ayse",
		QuestionType: model.QuestionTypeOpenEnded,
		Questions:    []string{"q1", "q2"},
		Rubrics: []model.CompiledRubric{
			{KeyConcept: "lift", AcceptCriteria: []string{"the answer contains 'Bernoulli'"}},
			{KeyConcept: "drag"},
		},
		Answers:              []string{"a1", "a2"},
		Results:              []string{"correct", "wrong"},
		Reasonings:           []string{"ok", "missed"},
		TotalScore:           &score,
		PlagiarismViolations: "none",
	}

	stored, err := s.Upsert(ctx, in)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if stored.ID == 0 {
		t.Error("stored record has no id")
	}

	got, err := s.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got.Questions, in.Questions) {
		t.Errorf("Questions = %v, want %v", got.Questions, in.Questions)
	}
	if !reflect.DeepEqual(got.Rubrics, in.Rubrics) {
		t.Errorf("Rubrics = %v, want %v", got.Rubrics, in.Rubrics)
	}
	if got.TotalScore == nil || *got.TotalScore != score {
		t.Errorf("TotalScore = %v, want %f", got.TotalScore, score)
	}
	if got.PlagiarismViolations != "none" {
		t.Errorf("PlagiarismViolations = %q", got.PlagiarismViolations)
	}
}

func TestUpsertReplacesExistingRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &model.ExamRecord{
		ExamName: "midterm", StudentName: "ayse", QuestionType: model.QuestionTypeOpenEnded,
		Questions: []string{"q1"},
	}
	if _, err := s.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	second := &model.ExamRecord{
		ExamName: "midterm", StudentName: "ayse", QuestionType: model.QuestionTypeOpenEnded,
		Questions: []string{"q1", "q2"},
		Answers:   []string{"a1", "a2"},
	}
	stored, err := s.Upsert(ctx, second)
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if len(stored.Questions) != 2 || len(stored.Answers) != 2 {
		t.Errorf("record not replaced: %v", stored)
	}

	keys, err := s.ListKeys(ctx)
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("got %d keys, want 1 (upsert must not duplicate rows)", len(keys))
	}
}

func TestUpsertRejectsInconsistentRecord(t *testing.T) {
	s := newTestStore(t)

	bad := &model.ExamRecord{
		ExamName: "midterm", StudentName: "ayse", QuestionType: model.QuestionTypeOpenEnded,
		Questions: []string{"q1"},
		Results:   []string{"correct", "wrong"},
	}
	if _, err := s.Upsert(context.Background(), bad); !model.IsInconsistency(err) {
		t.Errorf("got %v, want inconsistency rejection", err)
	}
}

func TestKeyIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []*model.ExamRecord{
		{ExamName: "midterm", StudentName: "ayse", QuestionType: model.QuestionTypeOpenEnded, Questions: []string{"oe"}},
		{ExamName: "midterm", StudentName: "ayse", QuestionType: model.QuestionTypeMultipleChoice, Questions: []string{"mc"}},
		{ExamName: "final", StudentName: "ayse", QuestionType: model.QuestionTypeOpenEnded, Questions: []string{"final oe"}},
	}
	for _, rec := range records {
		if _, err := s.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	got, err := s.Get(ctx, model.Key{ExamName: "midterm", StudentName: "ayse", QuestionType: model.QuestionTypeMultipleChoice})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Questions[0] != "mc" {
		t.Errorf("wrong record fetched: %v", got.Questions)
	}

	keys, _ := s.ListKeys(ctx)
	if len(keys) != 3 {
		t.Errorf("got %d keys, want 3", len(keys))
	}
}

func TestSoftDeletedStateSurvivesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &model.ExamRecord{
		ExamName: "midterm", StudentName: "ayse", QuestionType: model.QuestionTypeOpenEnded,
		Questions: []string{"q1"}, Answers: []string{"a1"},
		PlagiarismViolations: "copied from source",
	}
	if _, err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Soft delete: null every array, keep the row.
	rec.Questions = nil
	rec.Answers = nil
	rec.TotalScore = nil
	if _, err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("soft-delete Upsert: %v", err)
	}

	got, err := s.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("Get after soft delete: %v (soft-deleted record must remain readable)", err)
	}
	if got.Questions != nil || got.Answers != nil || got.TotalScore != nil {
		t.Errorf("arrays not null after soft delete: %+v", got)
	}
	if got.PlagiarismViolations != "copied from source" {
		t.Errorf("plagiarism violations lost: %q", got.PlagiarismViolations)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Delete(ctx, testKey()); !errors.Is(err, model.ErrRecordNotFound) {
		t.Errorf("deleting missing record: got %v, want ErrRecordNotFound", err)
	}

	rec := &model.ExamRecord{
		ExamName: "midterm", StudentName: "ayse", QuestionType: model.QuestionTypeOpenEnded,
		Questions: []string{"q1"},
	}
	if _, err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Delete(ctx, testKey()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, testKey()); !errors.Is(err, model.ErrRecordNotFound) {
		t.Errorf("record still readable after hard delete: %v", err)
	}
}

func TestEmptyVsNilArrays(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &model.ExamRecord{
		ExamName: "midterm", StudentName: "ayse", QuestionType: model.QuestionTypeOpenEnded,
		Questions: []string{},
	}
	if _, err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := s.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Questions == nil {
		t.Error("empty array collapsed to nil; empty and absent are distinct states")
	}
	if len(got.Questions) != 0 {
		t.Errorf("Questions = %v, want empty", got.Questions)
	}
}
