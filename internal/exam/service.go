// Package exam implements the operations on exam records: generation,
// evaluation, and the read/update surface over the record store. Every
// mutation follows the store's read-modify-write protocol: read the whole
// record, mutate in memory, upsert the whole record.
package exam

import (
	"context"
	"errors"

	"github.com/castrumai/examai/internal/model"
)

// RecordStore is the document-store boundary: whole-record reads and
// upserts keyed by (exam_name, student_name, question_type).
type RecordStore interface {
	Get(ctx context.Context, key model.Key) (*model.ExamRecord, error)
	Upsert(ctx context.Context, rec *model.ExamRecord) (*model.ExamRecord, error)
	Delete(ctx context.Context, key model.Key) error
}

// QuestionGenerator produces exam questions. Satisfied by
// *generate.Generator.
type QuestionGenerator interface {
	OpenEnded(ctx context.Context, topic string, n int, previous []string) ([]model.OpenEndedQuestion, error)
	MultipleChoice(ctx context.Context, topic string, n, numChoices int, previous []string) ([]model.ChoiceQuestion, error)
	Verbal(ctx context.Context, topic string, n int, previous []string) ([]model.OpenEndedQuestion, error)
}

// AnswerGrader applies the rubric grading protocol. Satisfied by
// *grade.Grader.
type AnswerGrader interface {
	Grade(ctx context.Context, items []model.GradeItem) ([]model.GradeOutcome, error)
}

// Service ties the record store, generator, and grader together.
type Service struct {
	store     RecordStore
	generator QuestionGenerator
	grader    AnswerGrader
}

// NewService creates a Service.
func NewService(store RecordStore, generator QuestionGenerator, grader AnswerGrader) *Service {
	return &Service{store: store, generator: generator, grader: grader}
}

// Record returns the full record for a key.
func (s *Service) Record(ctx context.Context, key model.Key) (*model.ExamRecord, error) {
	return s.store.Get(ctx, key)
}

// DeleteRecord removes the record row entirely.
func (s *Service) DeleteRecord(ctx context.Context, key model.Key) error {
	return s.store.Delete(ctx, key)
}

// UpsertRecord writes a caller-assembled record for its key.
func (s *Service) UpsertRecord(ctx context.Context, rec *model.ExamRecord) (*model.ExamRecord, error) {
	return s.store.Upsert(ctx, rec)
}

// getOrNew reads the record for key, or starts a fresh one if absent.
func (s *Service) getOrNew(ctx context.Context, key model.Key) (*model.ExamRecord, error) {
	rec, err := s.store.Get(ctx, key)
	if errors.Is(err, model.ErrRecordNotFound) {
		return &model.ExamRecord{
			ExamName:     key.ExamName,
			StudentName:  key.StudentName,
			QuestionType: key.QuestionType,
		}, nil
	}
	return rec, err
}

// padTo extends arr with empty entries so index idx is addressable. This is
// the one sanctioned way a parallel array grows ahead of its peers.
func padTo(arr []string, idx int) []string {
	for len(arr) <= idx {
		arr = append(arr, "")
	}
	return arr
}
