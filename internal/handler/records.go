package handler

import (
	"errors"
	"net/http"

	"github.com/castrumai/examai/internal/model"
)

// recordKeyRequest is the body fragment addressing a record. MCQ-only
// endpoints omit QuestionType and force it instead.
type recordKeyRequest struct {
	ExamName     string `json:"exam_name"`
	StudentName  string `json:"student_name"`
	QuestionType string `json:"question_type,omitempty"`
}

func (r recordKeyRequest) key(forcedType model.QuestionType) (model.Key, error) {
	key := model.Key{
		ExamName:     r.ExamName,
		StudentName:  r.StudentName,
		QuestionType: forcedType,
	}
	if key.QuestionType == "" {
		key.QuestionType = model.QuestionType(r.QuestionType)
	}
	if key.ExamName == "" || key.StudentName == "" || key.QuestionType == "" {
		return model.Key{}, errors.New("exam_name, student_name and question_type are required")
	}
	return key, nil
}

// --- record CRUD ---

type upsertRecordRequest struct {
	recordKeyRequest
	Questions            []string               `json:"questions"`
	Choices              [][]string             `json:"choices"`
	CorrectAnswers       []string               `json:"correct_answers"`
	Rubrics              []model.CompiledRubric `json:"rubrics"`
	Answers              []string               `json:"answers"`
	Results              []string               `json:"results"`
	Reasonings           []string               `json:"reasonings"`
	TotalScore           *float64               `json:"total_score"`
	PlagiarismViolations string                 `json:"plagiarism_violations"`
}

func (h *Handler) handleUpsertRecord(w http.ResponseWriter, r *http.Request) {
	var req upsertRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpsertRecord(r.Context(), &model.ExamRecord{
		ExamName:             key.ExamName,
		StudentName:          key.StudentName,
		QuestionType:         key.QuestionType,
		Questions:            req.Questions,
		Choices:              req.Choices,
		CorrectAnswers:       req.CorrectAnswers,
		Rubrics:              req.Rubrics,
		Answers:              req.Answers,
		Results:              req.Results,
		Reasonings:           req.Reasonings,
		TotalScore:           req.TotalScore,
		PlagiarismViolations: req.PlagiarismViolations,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	var req recordKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	if err := h.svc.DeleteRecord(r.Context(), key); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "exam record deleted"})
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.Record(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

// --- getters ---

func (h *Handler) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	idx, err := indexFromQuery(r, "index")
	if err != nil {
		badRequest(w, err)
		return
	}
	question, err := h.svc.Question(r.Context(), key, idx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"question": question})
}

func (h *Handler) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	questions, err := h.svc.Questions(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *Handler) handleGetCount(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	count, err := h.svc.QuestionCount(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleGetChoice(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, model.QuestionTypeMultipleChoice)
	if err != nil {
		badRequest(w, err)
		return
	}
	questionIdx, err := indexFromQuery(r, "question_index")
	if err != nil {
		badRequest(w, err)
		return
	}
	choiceIdx, err := indexFromQuery(r, "choice_index")
	if err != nil {
		badRequest(w, err)
		return
	}
	choice, err := h.svc.Choice(r.Context(), key, questionIdx, choiceIdx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"choice": choice})
}

func (h *Handler) handleGetChoices(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, model.QuestionTypeMultipleChoice)
	if err != nil {
		badRequest(w, err)
		return
	}
	questionIdx, err := indexFromQuery(r, "question_index")
	if err != nil {
		badRequest(w, err)
		return
	}
	choices, err := h.svc.ChoicesForQuestion(r.Context(), key, questionIdx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"choices": choices})
}

func (h *Handler) handleGetAllChoices(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, model.QuestionTypeMultipleChoice)
	if err != nil {
		badRequest(w, err)
		return
	}
	choices, err := h.svc.AllChoices(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"choices": choices})
}

func (h *Handler) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	idx, err := indexFromQuery(r, "index")
	if err != nil {
		badRequest(w, err)
		return
	}
	answer, err := h.svc.Answer(r.Context(), key, idx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (h *Handler) handleGetAnswers(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	answers, err := h.svc.Answers(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"answers": answers})
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	idx, err := indexFromQuery(r, "index")
	if err != nil {
		badRequest(w, err)
		return
	}
	result, err := h.svc.Result(r.Context(), key, idx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (h *Handler) handleGetResults(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	results, err := h.svc.Results(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) handleGetCorrectAnswer(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	idx, err := indexFromQuery(r, "index")
	if err != nil {
		badRequest(w, err)
		return
	}
	correct, err := h.svc.CorrectAnswer(r.Context(), key, idx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"correct_answer": correct})
}

func (h *Handler) handleGetCorrectAnswers(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	correct, err := h.svc.CorrectAnswers(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"correct_answers": correct})
}

func (h *Handler) handleGetScore(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	score, err := h.svc.TotalScore(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"total_score": score})
}

func (h *Handler) handleGetPlagiarismViolations(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	violations, err := h.svc.PlagiarismViolations(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"plagiarism_violations": violations})
}

// --- appends ---

type appendQuestionRequest struct {
	recordKeyRequest
	Question string `json:"question"`
}

func (h *Handler) handleAppendQuestion(w http.ResponseWriter, r *http.Request) {
	var req appendQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	if req.Question == "" {
		badRequest(w, errors.New("question cannot be empty"))
		return
	}
	rec, err := h.svc.AppendQuestion(r.Context(), key, req.Question)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type appendAnswerRequest struct {
	recordKeyRequest
	Answer string `json:"answer"`
}

func (h *Handler) handleAppendAnswer(w http.ResponseWriter, r *http.Request) {
	var req appendAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	if req.Answer == "" {
		badRequest(w, errors.New("answer cannot be empty"))
		return
	}
	rec, err := h.svc.AppendAnswer(r.Context(), key, req.Answer)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

// --- updates ---

type updateQuestionRequest struct {
	recordKeyRequest
	QuestionIndex int     `json:"question_index"`
	Value         string  `json:"value"`
	CorrectAnswer *string `json:"correct_answer"`
}

func (h *Handler) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req updateQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateQuestion(r.Context(), key, req.QuestionIndex, req.Value, req.CorrectAnswer)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateAllQuestionsRequest struct {
	recordKeyRequest
	Questions      []string `json:"questions"`
	CorrectAnswers []string `json:"correct_answers"`
}

func (h *Handler) handleUpdateAllQuestions(w http.ResponseWriter, r *http.Request) {
	var req updateAllQuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateAllQuestions(r.Context(), key, req.Questions, req.CorrectAnswers)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateChoiceRequest struct {
	recordKeyRequest
	QuestionIndex int    `json:"question_index"`
	ChoiceIndex   int    `json:"choice_index"`
	Value         string `json:"value"`
}

func (h *Handler) handleUpdateChoice(w http.ResponseWriter, r *http.Request) {
	var req updateChoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key(model.QuestionTypeMultipleChoice)
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateChoice(r.Context(), key, req.QuestionIndex, req.ChoiceIndex, req.Value)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateQuestionChoicesRequest struct {
	recordKeyRequest
	QuestionIndex int      `json:"question_index"`
	Choices       []string `json:"choices"`
}

func (h *Handler) handleUpdateQuestionChoices(w http.ResponseWriter, r *http.Request) {
	var req updateQuestionChoicesRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key(model.QuestionTypeMultipleChoice)
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateQuestionChoices(r.Context(), key, req.QuestionIndex, req.Choices)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateAllChoicesRequest struct {
	recordKeyRequest
	Choices [][]string `json:"choices"`
}

func (h *Handler) handleUpdateAllChoices(w http.ResponseWriter, r *http.Request) {
	var req updateAllChoicesRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key(model.QuestionTypeMultipleChoice)
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateAllChoices(r.Context(), key, req.Choices)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateAnswerRequest struct {
	recordKeyRequest
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

func (h *Handler) handleUpdateAnswer(w http.ResponseWriter, r *http.Request) {
	var req updateAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateAnswer(r.Context(), key, req.Index, req.Answer)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateAnswersBulkRequest struct {
	recordKeyRequest
	Answers []string `json:"answers"`
}

func (h *Handler) handleUpdateAnswersBulk(w http.ResponseWriter, r *http.Request) {
	var req updateAnswersBulkRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateAnswersBulk(r.Context(), key, req.Answers)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateResultRequest struct {
	recordKeyRequest
	Index  int    `json:"index"`
	Result string `json:"result"`
}

func (h *Handler) handleUpdateResult(w http.ResponseWriter, r *http.Request) {
	var req updateResultRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateResult(r.Context(), key, req.Index, req.Result)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateResultsBulkRequest struct {
	recordKeyRequest
	Results []string `json:"results"`
}

func (h *Handler) handleUpdateResultsBulk(w http.ResponseWriter, r *http.Request) {
	var req updateResultsBulkRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateResultsBulk(r.Context(), key, req.Results)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateCorrectAnswerRequest struct {
	recordKeyRequest
	Index         int    `json:"index"`
	CorrectAnswer string `json:"correct_answer"`
}

func (h *Handler) handleUpdateCorrectAnswer(w http.ResponseWriter, r *http.Request) {
	var req updateCorrectAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateCorrectAnswer(r.Context(), key, req.Index, req.CorrectAnswer)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type updateAllCorrectAnswersRequest struct {
	recordKeyRequest
	CorrectAnswers []string `json:"correct_answers"`
}

func (h *Handler) handleUpdateAllCorrectAnswers(w http.ResponseWriter, r *http.Request) {
	var req updateAllCorrectAnswersRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.UpdateAllCorrectAnswers(r.Context(), key, req.CorrectAnswers)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

type plagiarismViolationRequest struct {
	recordKeyRequest
	ViolationText string `json:"violation_text"`
}

func (h *Handler) handleUpdatePlagiarismViolation(w http.ResponseWriter, r *http.Request) {
	var req plagiarismViolationRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key("")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.SetPlagiarismViolations(r.Context(), key, req.ViolationText)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"plagiarism_violations": rec.PlagiarismViolations})
}

// --- deletes ---

func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	idx, err := indexFromQuery(r, "index")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.DeleteQuestion(r.Context(), key, idx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (h *Handler) handleDeleteAllQuestions(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r, "")
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.DeleteAllQuestions(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec})
}
