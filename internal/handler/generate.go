package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/castrumai/examai/internal/model"
)

type generateRequest struct {
	ExamName          string `json:"exam_name"`
	StudentName       string `json:"student_name"`
	Topic             string `json:"topic"`
	NumberOfQuestions int    `json:"number_of_questions"`
	NumberOfChoices   int    `json:"number_of_choices,omitempty"`
}

func (r generateRequest) key(questionType model.QuestionType) (model.Key, error) {
	if r.ExamName == "" || r.StudentName == "" {
		return model.Key{}, errors.New("exam_name and student_name are required")
	}
	if r.Topic == "" {
		return model.Key{}, errors.New("topic is required")
	}
	return model.Key{
		ExamName:     r.ExamName,
		StudentName:  r.StudentName,
		QuestionType: questionType,
	}, nil
}

func (h *Handler) handleGenerateOpenEnded(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key(model.QuestionTypeOpenEnded)
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.GenerateOpenEnded(r.Context(), key, req.Topic, req.NumberOfQuestions)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "open-ended questions generated and appended",
		"record":  rec,
	})
}

func (h *Handler) handleGenerateMCQ(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key(model.QuestionTypeMultipleChoice)
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.GenerateMultipleChoice(r.Context(), key, req.Topic, req.NumberOfQuestions, req.NumberOfChoices)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "multiple choice questions generated and appended",
		"record":  rec,
	})
}

func (h *Handler) handleGenerateVerbal(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	key, err := req.key(model.QuestionTypeVerbal)
	if err != nil {
		badRequest(w, err)
		return
	}
	rec, err := h.svc.GenerateVerbal(r.Context(), key, req.Topic, req.NumberOfQuestions)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "verbal questions generated and appended",
		"record":  rec,
	})
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
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
	rec, err := h.svc.Evaluate(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":     "answers evaluated and saved",
		"results":     rec.Results,
		"total_score": rec.TotalScore,
	})
}

// maxAudioUpload caps verbal answer uploads at 25 MB, the transcription
// API's own file limit.
const maxAudioUpload = 25 << 20

// handleAudioAnswer accepts a multipart upload with an audio file, runs it
// through transcription, and stores the transcript as the answer at the given
// index of the student's verbal exam.
func (h *Handler) handleAudioAnswer(w http.ResponseWriter, r *http.Request) {
	if h.transcriber == nil {
		respondJSON(w, http.StatusNotImplemented, errorResponse{Error: "audio transcription is not configured"})
		return
	}

	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		badRequest(w, errors.New("invalid multipart form: "+err.Error()))
		return
	}
	key := model.Key{
		ExamName:     r.FormValue("exam_name"),
		StudentName:  r.FormValue("student_name"),
		QuestionType: model.QuestionTypeVerbal,
	}
	if key.ExamName == "" || key.StudentName == "" {
		badRequest(w, errors.New("exam_name and student_name are required"))
		return
	}
	idx, err := strconv.Atoi(r.FormValue("index"))
	if err != nil || idx < 0 {
		badRequest(w, errors.New("index must be a non-negative integer"))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		badRequest(w, errors.New("audio file is required"))
		return
	}
	defer file.Close()

	transcript, err := h.transcriber.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, err)
		return
	}

	rec, err := h.svc.UpdateAnswer(r.Context(), key, idx, transcript)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transcript": transcript,
		"record":     rec,
	})
}
