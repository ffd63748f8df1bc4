package exam

import (
	"context"
	"fmt"

	"github.com/castrumai/examai/internal/model"
)

// AppendQuestion adds one question to the end of the record, creating the
// record if needed.
func (s *Service) AppendQuestion(ctx context.Context, key model.Key, question string) (*model.ExamRecord, error) {
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.Questions = append(rec.Questions, question)
	return s.store.Upsert(ctx, rec)
}

// AppendAnswer adds one answer to the end of the record, creating the record
// if needed.
func (s *Service) AppendAnswer(ctx context.Context, key model.Key, answer string) (*model.ExamRecord, error) {
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.Answers = append(rec.Answers, answer)
	return s.store.Upsert(ctx, rec)
}

// UpdateQuestion sets the question at idx, extending the array if needed.
// When correctAnswer is non-nil the answer key at idx is updated too.
func (s *Service) UpdateQuestion(ctx context.Context, key model.Key, idx int, value string, correctAnswer *string) (*model.ExamRecord, error) {
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d", model.ErrIndexOutOfRange, idx)
	}
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.Questions = padTo(rec.Questions, idx)
	rec.Questions[idx] = value
	if correctAnswer != nil {
		rec.CorrectAnswers = padTo(rec.CorrectAnswers, idx)
		rec.CorrectAnswers[idx] = *correctAnswer
	}
	return s.store.Upsert(ctx, rec)
}

// UpdateAllQuestions replaces the question list. A non-nil correctAnswers
// replaces the answer key and must match the question count.
func (s *Service) UpdateAllQuestions(ctx context.Context, key model.Key, questions, correctAnswers []string) (*model.ExamRecord, error) {
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.Questions = questions
	if correctAnswers != nil {
		if len(correctAnswers) != len(questions) {
			return nil, &model.CountMismatchError{What: "correct_answers", Want: len(questions), Got: len(correctAnswers)}
		}
		rec.CorrectAnswers = correctAnswers
	}
	return s.store.Upsert(ctx, rec)
}

// UpdateChoice replaces the text of one option, re-applying its letter
// prefix. Both indexes must address existing entries.
func (s *Service) UpdateChoice(ctx context.Context, key model.Key, questionIdx, choiceIdx int, value string) (*model.ExamRecord, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if questionIdx < 0 || questionIdx >= len(rec.Choices) {
		return nil, fmt.Errorf("%w: question %d", model.ErrIndexOutOfRange, questionIdx)
	}
	if choiceIdx < 0 || choiceIdx >= len(rec.Choices[questionIdx]) {
		return nil, fmt.Errorf("%w: choice %d", model.ErrIndexOutOfRange, choiceIdx)
	}
	rec.Choices[questionIdx][choiceIdx] = fmt.Sprintf("%c) %s", 'A'+choiceIdx, value)
	return s.store.Upsert(ctx, rec)
}

// UpdateQuestionChoices replaces the full option list of one question,
// extending the choices array with empty lists if needed.
func (s *Service) UpdateQuestionChoices(ctx context.Context, key model.Key, questionIdx int, choices []string) (*model.ExamRecord, error) {
	if questionIdx < 0 {
		return nil, fmt.Errorf("%w: %d", model.ErrIndexOutOfRange, questionIdx)
	}
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Choices == nil {
		return nil, model.ErrNoChoices
	}
	for len(rec.Choices) <= questionIdx {
		rec.Choices = append(rec.Choices, []string{})
	}
	rec.Choices[questionIdx] = choices
	return s.store.Upsert(ctx, rec)
}

// UpdateAllChoices replaces every question's option list.
func (s *Service) UpdateAllChoices(ctx context.Context, key model.Key, choices [][]string) (*model.ExamRecord, error) {
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.Choices = choices
	return s.store.Upsert(ctx, rec)
}

// UpdateAnswer sets the answer at idx, creating the record and extending the
// answer array if needed.
func (s *Service) UpdateAnswer(ctx context.Context, key model.Key, idx int, answer string) (*model.ExamRecord, error) {
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d", model.ErrIndexOutOfRange, idx)
	}
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.Answers = padTo(rec.Answers, idx)
	rec.Answers[idx] = answer
	return s.store.Upsert(ctx, rec)
}

// UpdateAnswersBulk replaces the answer list.
func (s *Service) UpdateAnswersBulk(ctx context.Context, key model.Key, answers []string) (*model.ExamRecord, error) {
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.Answers = answers
	return s.store.Upsert(ctx, rec)
}

// UpdateResult sets the result at an existing index. Results never extend;
// they are written in full by evaluation.
func (s *Service) UpdateResult(ctx context.Context, key model.Key, idx int, result string) (*model.ExamRecord, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Results == nil || idx < 0 || idx >= len(rec.Results) {
		return nil, fmt.Errorf("%w: result %d", model.ErrIndexOutOfRange, idx)
	}
	rec.Results[idx] = result
	return s.store.Upsert(ctx, rec)
}

// UpdateResultsBulk replaces the result list.
func (s *Service) UpdateResultsBulk(ctx context.Context, key model.Key, results []string) (*model.ExamRecord, error) {
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.Results = results
	return s.store.Upsert(ctx, rec)
}

// UpdateCorrectAnswer sets the answer key at idx, extending if needed.
func (s *Service) UpdateCorrectAnswer(ctx context.Context, key model.Key, idx int, correctAnswer string) (*model.ExamRecord, error) {
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d", model.ErrIndexOutOfRange, idx)
	}
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.CorrectAnswers = padTo(rec.CorrectAnswers, idx)
	rec.CorrectAnswers[idx] = correctAnswer
	return s.store.Upsert(ctx, rec)
}

// UpdateAllCorrectAnswers replaces the answer key list.
func (s *Service) UpdateAllCorrectAnswers(ctx context.Context, key model.Key, correctAnswers []string) (*model.ExamRecord, error) {
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.CorrectAnswers = correctAnswers
	return s.store.Upsert(ctx, rec)
}

// SetPlagiarismViolations records plagiarism findings for a key, creating
// the record if needed.
func (s *Service) SetPlagiarismViolations(ctx context.Context, key model.Key, text string) (*model.ExamRecord, error) {
	rec, err := s.getOrNew(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.PlagiarismViolations = text
	return s.store.Upsert(ctx, rec)
}

// DeleteQuestion removes the question at idx and its entry in every
// parallel array.
func (s *Service) DeleteQuestion(ctx context.Context, key model.Key, idx int) (*model.ExamRecord, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(rec.Questions) == 0 {
		return nil, model.ErrEmptyRecord
	}
	if idx < 0 || idx >= len(rec.Questions) {
		return nil, fmt.Errorf("%w: %d of %d questions", model.ErrIndexOutOfRange, idx, len(rec.Questions))
	}

	rec.Questions = removeAt(rec.Questions, idx)
	rec.CorrectAnswers = removeAt(rec.CorrectAnswers, idx)
	rec.Answers = removeAt(rec.Answers, idx)
	rec.Results = removeAt(rec.Results, idx)
	rec.Reasonings = removeAt(rec.Reasonings, idx)
	rec.Choices = removeAt(rec.Choices, idx)
	rec.Rubrics = removeAt(rec.Rubrics, idx)

	return s.store.Upsert(ctx, rec)
}

// DeleteAllQuestions soft-deletes the record: every array field and the
// total score become null, but the row survives. This state is distinct
// from an absent record.
func (s *Service) DeleteAllQuestions(ctx context.Context, key model.Key) (*model.ExamRecord, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(rec.Questions) == 0 {
		return nil, model.ErrEmptyRecord
	}

	rec.Questions = nil
	rec.Choices = nil
	rec.CorrectAnswers = nil
	rec.Rubrics = nil
	rec.Answers = nil
	rec.Results = nil
	rec.Reasonings = nil
	rec.TotalScore = nil

	return s.store.Upsert(ctx, rec)
}

func removeAt[T any](arr []T, idx int) []T {
	if arr == nil || idx >= len(arr) {
		return arr
	}
	return append(arr[:idx], arr[idx+1:]...)
}
