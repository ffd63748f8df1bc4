package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/castrumai/examai/internal/exam"
	"github.com/castrumai/examai/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *exam.Service) {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := exam.NewService(st, nil, nil)
	h := New(svc, nil, AuthConfig{Key: "sekrit"})

	r := chi.NewRouter()
	h.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func do(t *testing.T, method, url, apiKey, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if apiKey != "" {
		req.Header.Set(DefaultAPIKeyHeader, apiKey)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAPIKeyRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		apiKey string
		want   int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusUnauthorized},
		{"correct key", "sekrit", http.StatusBadRequest}, // passes auth, fails validation
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodGet, srv.URL+"/record", tt.apiKey, "")
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAuthConfigMatches(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekrit"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		cfg       AuthConfig
		presented string
		want      bool
	}{
		{"plaintext match", AuthConfig{Key: "sekrit"}, "sekrit", true},
		{"plaintext mismatch", AuthConfig{Key: "sekrit"}, "other", false},
		{"hash match", AuthConfig{KeyHash: string(hash)}, "sekrit", true},
		{"hash mismatch", AuthConfig{KeyHash: string(hash)}, "other", false},
		{"hash wins over key", AuthConfig{Key: "other", KeyHash: string(hash)}, "sekrit", true},
		{"nothing configured", AuthConfig{}, "anything", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.matches(tt.presented); got != tt.want {
				t.Errorf("matches(%q) = %v, want %v", tt.presented, got, tt.want)
			}
		})
	}
}

func TestRecordLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	// Missing record reads as 404.
	resp := do(t, http.MethodGet, srv.URL+"/record?exam_name=midterm&student_name=ayse&question_type=Open+Ended", "sekrit", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET missing record: status = %d, want 404", resp.StatusCode)
	}

	// Create it.
	body := `{"exam_name":"midterm","student_name":"ayse","question_type":"Open Ended","questions":["q1","q2"]}`
	resp = do(t, http.MethodPost, srv.URL+"/exam-record", "sekrit", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /exam-record: status = %d", resp.StatusCode)
	}

	// Read it back.
	resp = do(t, http.MethodGet, srv.URL+"/questions?exam_name=midterm&student_name=ayse&question_type=Open+Ended", "sekrit", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /questions: status = %d", resp.StatusCode)
	}

	// Inconsistent write is rejected as unprocessable.
	bad := `{"exam_name":"midterm","student_name":"ayse","question_type":"Open Ended","questions":["q1"],"results":["correct","wrong"]}`
	resp = do(t, http.MethodPost, srv.URL+"/exam-record", "sekrit", bad)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("inconsistent record: status = %d, want 422", resp.StatusCode)
	}

	// Delete, then confirm it is gone.
	resp = do(t, http.MethodDelete, srv.URL+"/exam-record", "sekrit", `{"exam_name":"midterm","student_name":"ayse","question_type":"Open Ended"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("DELETE /exam-record: status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodDelete, srv.URL+"/exam-record", "sekrit", `{"exam_name":"midterm","student_name":"ayse","question_type":"Open Ended"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE: status = %d, want 404", resp.StatusCode)
	}
}

func TestAudioAnswerUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/answer/audio", "sekrit", "")
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501 when no transcriber is wired", resp.StatusCode)
	}
}
