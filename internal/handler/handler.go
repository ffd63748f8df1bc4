// Package handler exposes the exam service over a JSON HTTP API. Every route
// sits behind the API-key middleware; record addressing uses the
// (exam_name, student_name, question_type) key throughout.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/castrumai/examai/internal/exam"
	"github.com/castrumai/examai/internal/llm"
	"github.com/castrumai/examai/internal/model"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	svc         *exam.Service
	transcriber llm.Transcriber
	auth        AuthConfig
}

// New creates a new Handler. transcriber may be nil; the audio-answer
// endpoint then reports the capability as unavailable.
func New(svc *exam.Service, transcriber llm.Transcriber, auth AuthConfig) *Handler {
	return &Handler{svc: svc, transcriber: transcriber, auth: auth}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.requireAPIKey)

	r.Post("/generate/open-ended", h.handleGenerateOpenEnded)
	r.Post("/generate/mcq", h.handleGenerateMCQ)
	r.Post("/generate/verbal", h.handleGenerateVerbal)
	r.Post("/evaluate", h.handleEvaluate)

	r.Post("/exam-record", h.handleUpsertRecord)
	r.Delete("/exam-record", h.handleDeleteRecord)

	r.Get("/record", h.handleGetRecord)
	r.Get("/question", h.handleGetQuestion)
	r.Get("/questions", h.handleGetQuestions)
	r.Get("/count", h.handleGetCount)
	r.Get("/choice", h.handleGetChoice)
	r.Get("/choices", h.handleGetChoices)
	r.Get("/choices/all", h.handleGetAllChoices)
	r.Get("/answer", h.handleGetAnswer)
	r.Get("/answers", h.handleGetAnswers)
	r.Get("/result", h.handleGetResult)
	r.Get("/results", h.handleGetResults)
	r.Get("/correct-answer", h.handleGetCorrectAnswer)
	r.Get("/correct-answers", h.handleGetCorrectAnswers)
	r.Get("/score", h.handleGetScore)
	r.Get("/plagiarism-violations", h.handleGetPlagiarismViolations)

	r.Post("/question", h.handleAppendQuestion)
	r.Post("/answer", h.handleAppendAnswer)
	r.Post("/answer/audio", h.handleAudioAnswer)

	r.Put("/update/question", h.handleUpdateQuestion)
	r.Put("/update/questions/all", h.handleUpdateAllQuestions)
	r.Put("/update/choice", h.handleUpdateChoice)
	r.Put("/update/question/choices", h.handleUpdateQuestionChoices)
	r.Put("/update/choices/all", h.handleUpdateAllChoices)
	r.Put("/update/answer", h.handleUpdateAnswer)
	r.Put("/update/answers/bulk", h.handleUpdateAnswersBulk)
	r.Put("/update/result", h.handleUpdateResult)
	r.Put("/update/results/bulk", h.handleUpdateResultsBulk)
	r.Put("/update/correct-answer", h.handleUpdateCorrectAnswer)
	r.Put("/update/correct-answers/all", h.handleUpdateAllCorrectAnswers)
	r.Put("/update/plagiarism-violation", h.handleUpdatePlagiarismViolation)

	r.Delete("/question", h.handleDeleteQuestion)
	r.Delete("/questions/all", h.handleDeleteAllQuestions)
}

// keyFromQuery builds a record key from query parameters. question_type may
// be forced by the route (MCQ-only endpoints).
func keyFromQuery(r *http.Request, forcedType model.QuestionType) (model.Key, error) {
	q := r.URL.Query()
	key := model.Key{
		ExamName:     q.Get("exam_name"),
		StudentName:  q.Get("student_name"),
		QuestionType: forcedType,
	}
	if key.QuestionType == "" {
		key.QuestionType = model.QuestionType(q.Get("question_type"))
	}
	if key.ExamName == "" || key.StudentName == "" || key.QuestionType == "" {
		return model.Key{}, errors.New("exam_name, student_name and question_type are required")
	}
	return key, nil
}

// indexFromQuery parses a required non-negative integer query parameter.
func indexFromQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return idx, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// respondError maps service errors onto HTTP statuses: absent records and
// addresses are 404, caller mistakes are 400, data inconsistencies are 422,
// everything else is 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrRecordNotFound),
		errors.Is(err, model.ErrIndexOutOfRange):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrUnknownTopic),
		errors.Is(err, model.ErrNoSubTopics),
		errors.Is(err, model.ErrNoFileMatch),
		errors.Is(err, model.ErrChoiceCountMismatch),
		errors.Is(err, model.ErrEmptyRecord),
		errors.Is(err, model.ErrNoChoices):
		badRequest(w, err)
	case model.IsInconsistency(err):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
