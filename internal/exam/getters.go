package exam

import (
	"context"
	"fmt"

	"github.com/castrumai/examai/internal/model"
)

// Point reads over the record store. An absent array on an existing record
// reads the same as an absent record: there is nothing at that address.

func (s *Service) Questions(ctx context.Context, key model.Key) ([]string, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Questions == nil {
		return nil, fmt.Errorf("%w: no questions", model.ErrRecordNotFound)
	}
	return rec.Questions, nil
}

func (s *Service) Question(ctx context.Context, key model.Key, idx int) (string, error) {
	questions, err := s.Questions(ctx, key)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(questions) {
		return "", fmt.Errorf("%w: question %d of %d", model.ErrIndexOutOfRange, idx, len(questions))
	}
	return questions[idx], nil
}

// QuestionCount returns 0 for an absent record or an empty question list.
func (s *Service) QuestionCount(ctx context.Context, key model.Key) (int, error) {
	rec, err := s.store.Get(ctx, key)
	if err == model.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(rec.Questions), nil
}

func (s *Service) AllChoices(ctx context.Context, key model.Key) ([][]string, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Choices == nil {
		return nil, fmt.Errorf("%w: no choices", model.ErrRecordNotFound)
	}
	return rec.Choices, nil
}

func (s *Service) ChoicesForQuestion(ctx context.Context, key model.Key, questionIdx int) ([]string, error) {
	choices, err := s.AllChoices(ctx, key)
	if err != nil {
		return nil, err
	}
	if questionIdx < 0 || questionIdx >= len(choices) {
		return nil, fmt.Errorf("%w: question %d of %d", model.ErrIndexOutOfRange, questionIdx, len(choices))
	}
	return choices[questionIdx], nil
}

func (s *Service) Choice(ctx context.Context, key model.Key, questionIdx, choiceIdx int) (string, error) {
	qChoices, err := s.ChoicesForQuestion(ctx, key, questionIdx)
	if err != nil {
		return "", err
	}
	if choiceIdx < 0 || choiceIdx >= len(qChoices) {
		return "", fmt.Errorf("%w: choice %d of %d", model.ErrIndexOutOfRange, choiceIdx, len(qChoices))
	}
	return qChoices[choiceIdx], nil
}

func (s *Service) Answers(ctx context.Context, key model.Key) ([]string, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Answers == nil {
		return nil, fmt.Errorf("%w: no answers", model.ErrRecordNotFound)
	}
	return rec.Answers, nil
}

func (s *Service) Answer(ctx context.Context, key model.Key, idx int) (string, error) {
	answers, err := s.Answers(ctx, key)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(answers) {
		return "", fmt.Errorf("%w: answer %d of %d", model.ErrIndexOutOfRange, idx, len(answers))
	}
	return answers[idx], nil
}

func (s *Service) Results(ctx context.Context, key model.Key) ([]string, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Results == nil {
		return nil, fmt.Errorf("%w: no results", model.ErrRecordNotFound)
	}
	return rec.Results, nil
}

func (s *Service) Result(ctx context.Context, key model.Key, idx int) (string, error) {
	results, err := s.Results(ctx, key)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(results) {
		return "", fmt.Errorf("%w: result %d of %d", model.ErrIndexOutOfRange, idx, len(results))
	}
	return results[idx], nil
}

func (s *Service) CorrectAnswers(ctx context.Context, key model.Key) ([]string, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.CorrectAnswers == nil {
		return nil, fmt.Errorf("%w: no correct answers", model.ErrRecordNotFound)
	}
	return rec.CorrectAnswers, nil
}

func (s *Service) CorrectAnswer(ctx context.Context, key model.Key, idx int) (string, error) {
	correct, err := s.CorrectAnswers(ctx, key)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(correct) {
		return "", fmt.Errorf("%w: correct answer %d of %d", model.ErrIndexOutOfRange, idx, len(correct))
	}
	return correct[idx], nil
}

func (s *Service) TotalScore(ctx context.Context, key model.Key) (float64, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if rec.TotalScore == nil {
		return 0, fmt.Errorf("%w: no total score", model.ErrRecordNotFound)
	}
	return *rec.TotalScore, nil
}

func (s *Service) PlagiarismViolations(ctx context.Context, key model.Key) (string, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return rec.PlagiarismViolations, nil
}
