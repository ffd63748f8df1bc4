package exam

import (
	"context"
	"fmt"

	"github.com/castrumai/examai/internal/grade"
	"github.com/castrumai/examai/internal/model"
)

// Evaluate grades every answer on the record for key and persists results,
// reasonings, and the total score (percentage of correct answers).
// Multiple-choice exams are graded deterministically against the answer key;
// open-ended and verbal exams go through the rubric judge. The answer count
// must match the question count: evaluation never grades a partial exam.
func (s *Service) Evaluate(ctx context.Context, key model.Key) (*model.ExamRecord, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(rec.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", model.ErrRecordNotFound)
	}
	if len(rec.Answers) != len(rec.Questions) {
		return nil, &model.CountMismatchError{What: "answers", Want: len(rec.Questions), Got: len(rec.Answers)}
	}

	var outcomes []model.GradeOutcome
	switch rec.QuestionType {
	case model.QuestionTypeMultipleChoice:
		outcomes, err = s.gradeMultipleChoice(rec)
	default:
		outcomes, err = s.gradeAgainstRubrics(ctx, rec)
	}
	if err != nil {
		return nil, err
	}
	if len(outcomes) != len(rec.Questions) {
		return nil, &model.CountMismatchError{What: "grading results", Want: len(rec.Questions), Got: len(outcomes)}
	}

	results := make([]string, len(outcomes))
	reasonings := make([]string, len(outcomes))
	correct := 0
	for i, o := range outcomes {
		results[i] = o.Result
		reasonings[i] = o.Reasoning
		if o.Result == model.VerdictCorrect {
			correct++
		}
	}
	score := 100 * float64(correct) / float64(len(outcomes))

	rec.Results = results
	rec.Reasonings = reasonings
	rec.TotalScore = &score
	return s.store.Upsert(ctx, rec)
}

func (s *Service) gradeMultipleChoice(rec *model.ExamRecord) ([]model.GradeOutcome, error) {
	if len(rec.CorrectAnswers) != len(rec.Questions) {
		return nil, &model.CountMismatchError{What: "correct_answers", Want: len(rec.Questions), Got: len(rec.CorrectAnswers)}
	}
	return grade.GradeChoices(rec.Questions, rec.CorrectAnswers, rec.Answers)
}

func (s *Service) gradeAgainstRubrics(ctx context.Context, rec *model.ExamRecord) ([]model.GradeOutcome, error) {
	if len(rec.Rubrics) != len(rec.Questions) {
		return nil, &model.CountMismatchError{What: "rubrics", Want: len(rec.Questions), Got: len(rec.Rubrics)}
	}
	items := make([]model.GradeItem, len(rec.Questions))
	for i := range rec.Questions {
		items[i] = model.GradeItem{
			Question: rec.Questions[i],
			Rubric:   rec.Rubrics[i],
			Answer:   rec.Answers[i],
		}
	}
	return s.grader.Grade(ctx, items)
}
