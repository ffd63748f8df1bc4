package model

// QuestionType identifies which kind of exam a record belongs to.
type QuestionType string

const (
	// QuestionTypeOpenEnded is a free-text exam graded against compiled rubrics.
	QuestionTypeOpenEnded QuestionType = "Open Ended"
	// QuestionTypeMultipleChoice is a lettered-choice exam graded by answer key.
	QuestionTypeMultipleChoice QuestionType = "Multiple Choice"
	// QuestionTypeVerbal is a spoken exam; answers arrive as transcripts.
	QuestionTypeVerbal QuestionType = "Verbal"
)

// Verdict values produced by the grader.
const (
	VerdictCorrect = "correct"
	VerdictWrong   = "wrong"
)

// Passage is one retrieved chunk of source material. Passages live only for
// the duration of a single generation request and are never persisted.
type Passage struct {
	SourceFile string  `json:"source_file"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// RawRubric is the evidence the generator model proposes for one question,
// before compilation.
type RawRubric struct {
	KeyConcept  string   `json:"key_concept"`
	AcceptRules []string `json:"accept_rules"`
	RejectRules []string `json:"reject_rules"`
}

// CompiledRubric is the canonical, checkable grading contract. AcceptCriteria
// entries are either atomic "the answer contains ..." statements or a single
// AND-joined clause for completeness-style questions.
type CompiledRubric struct {
	KeyConcept     string   `json:"key_concept"`
	AcceptCriteria []string `json:"accept_criteria"`
	RejectCriteria []string `json:"reject_criteria"`
}

// OpenEndedQuestion pairs a generated question with its compiled rubric.
type OpenEndedQuestion struct {
	SubTopic string         `json:"sub_topic"`
	Text     string         `json:"text"`
	Rubric   CompiledRubric `json:"rubric"`
}

// ChoiceQuestion is a finalized multiple-choice question. Choices carry their
// display letter prefix ("A) ...") and CorrectLetter indexes the post-shuffle
// order.
type ChoiceQuestion struct {
	Text          string   `json:"text"`
	Choices       []string `json:"choices"`
	CorrectLetter string   `json:"correct_letter"`
}

// GradeItem is one (question, rubric, answer) triple submitted for grading.
type GradeItem struct {
	SubTopic string
	Question string
	Rubric   CompiledRubric
	Answer   string
}

// GradeOutcome is the grader's verdict and reasoning for one item.
type GradeOutcome struct {
	Result    string `json:"result"`
	Reasoning string `json:"reasoning"`
}

// Key identifies an exam record.
type Key struct {
	ExamName     string
	StudentName  string
	QuestionType QuestionType
}

// ExamRecord is the unit of persistence, keyed by
// (exam_name, student_name, question_type). All populated parallel arrays
// must have equal length; a soft-deleted record keeps its row with every
// array field nil.
type ExamRecord struct {
	ID                   int64            `json:"id"`
	ExamName             string           `json:"exam_name"`
	StudentName          string           `json:"student_name"`
	QuestionType         QuestionType     `json:"question_type"`
	Questions            []string         `json:"questions"`
	Choices              [][]string       `json:"choices,omitempty"`
	CorrectAnswers       []string         `json:"correct_answers,omitempty"`
	Rubrics              []CompiledRubric `json:"rubrics,omitempty"`
	Answers              []string         `json:"answers"`
	Results              []string         `json:"results"`
	Reasonings           []string         `json:"reasonings"`
	TotalScore           *float64         `json:"total_score,omitempty"`
	PlagiarismViolations string           `json:"plagiarism_violations,omitempty"`
}

// ChoiceCount reports the established choice cardinality of an MCQ record,
// or 0 if no choices are stored yet.
func (r *ExamRecord) ChoiceCount() int {
	for _, c := range r.Choices {
		if len(c) > 0 {
			return len(c)
		}
	}
	return 0
}

// CheckConsistency verifies the parallel-array invariant. Generation-side
// arrays (choices, correct answers, rubrics) and grading-side arrays
// (results, reasonings) must match the question count exactly when populated.
// Answers may trail behind the question count while an exam is in progress,
// but may never exceed it. Nil arrays are not considered populated.
func (r *ExamRecord) CheckConsistency() error {
	if r.Questions == nil {
		// Nothing to anchor the invariant to yet. Answers can legitimately
		// arrive before questions on a fresh record.
		return nil
	}
	n := len(r.Questions)
	exact := []struct {
		name string
		l    int
		set  bool
	}{
		{"choices", len(r.Choices), r.Choices != nil},
		{"correct_answers", len(r.CorrectAnswers), r.CorrectAnswers != nil},
		{"rubrics", len(r.Rubrics), r.Rubrics != nil},
		{"results", len(r.Results), r.Results != nil},
		{"reasonings", len(r.Reasonings), r.Reasonings != nil},
	}
	for _, a := range exact {
		if a.set && a.l != n {
			return &CountMismatchError{What: a.name, Want: n, Got: a.l}
		}
	}
	if r.Answers != nil && len(r.Answers) > n {
		return &CountMismatchError{What: "answers", Want: n, Got: len(r.Answers)}
	}
	return nil
}
