package exam

import (
	"context"
	"fmt"

	"github.com/castrumai/examai/internal/model"
)

// GenerateOpenEnded generates n open-ended questions on topic and appends
// them, with their compiled rubrics, to the record for key. Questions already
// on the record are passed to the generator as the novelty list.
func (s *Service) GenerateOpenEnded(ctx context.Context, key model.Key, topic string, n int) (*model.ExamRecord, error) {
	if n <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", n)
	}
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.OpenEnded(ctx, topic, n, rec.Questions)
	if err != nil {
		return nil, err
	}

	alignRubrics(rec)
	for _, q := range generated {
		rec.Questions = append(rec.Questions, q.Text)
		rec.Rubrics = append(rec.Rubrics, q.Rubric)
	}
	return s.store.Upsert(ctx, rec)
}

// GenerateVerbal generates n verbal questions on topic and appends them to
// the record for key. Verbal questions carry rubrics like open-ended ones;
// the difference is how answers arrive, not how questions are graded.
func (s *Service) GenerateVerbal(ctx context.Context, key model.Key, topic string, n int) (*model.ExamRecord, error) {
	if n <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", n)
	}
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.Verbal(ctx, topic, n, rec.Questions)
	if err != nil {
		return nil, err
	}

	alignRubrics(rec)
	for _, q := range generated {
		rec.Questions = append(rec.Questions, q.Text)
		rec.Rubrics = append(rec.Rubrics, q.Rubric)
	}
	return s.store.Upsert(ctx, rec)
}

// GenerateMultipleChoice generates n multiple-choice questions with
// numChoices options each and appends them, with their shuffled option lists
// and answer-key letters, to the record for key. A record that already holds
// choices fixes the cardinality: a request with a different numChoices is
// rejected before any model call.
func (s *Service) GenerateMultipleChoice(ctx context.Context, key model.Key, topic string, n, numChoices int) (*model.ExamRecord, error) {
	if n <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", n)
	}
	if numChoices < 2 {
		return nil, fmt.Errorf("choice count must be at least 2, got %d", numChoices)
	}
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing := rec.ChoiceCount(); existing != 0 && existing != numChoices {
		return nil, fmt.Errorf("%w: existing %d, requested %d", model.ErrChoiceCountMismatch, existing, numChoices)
	}

	generated, err := s.generator.MultipleChoice(ctx, topic, n, numChoices, rec.Questions)
	if err != nil {
		return nil, err
	}

	alignChoices(rec)
	for _, q := range generated {
		rec.Questions = append(rec.Questions, q.Text)
		rec.Choices = append(rec.Choices, q.Choices)
		rec.CorrectAnswers = append(rec.CorrectAnswers, q.CorrectLetter)
	}
	return s.store.Upsert(ctx, rec)
}

// alignRubrics pads the rubric array with empty rubrics up to the current
// question count, so appends to a record whose earlier questions were written
// without rubrics keep the parallel arrays aligned.
func alignRubrics(rec *model.ExamRecord) {
	if len(rec.Questions) == 0 {
		return
	}
	for len(rec.Rubrics) < len(rec.Questions) {
		rec.Rubrics = append(rec.Rubrics, model.CompiledRubric{})
	}
}

// alignChoices does the same for the choices and answer-key arrays.
func alignChoices(rec *model.ExamRecord) {
	if len(rec.Questions) == 0 {
		return
	}
	for len(rec.Choices) < len(rec.Questions) {
		rec.Choices = append(rec.Choices, []string{})
	}
	rec.CorrectAnswers = padTo(rec.CorrectAnswers, len(rec.Questions)-1)
}
