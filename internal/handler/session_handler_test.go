package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduprep/exam-engine/internal/middleware"
	"github.com/eduprep/exam-engine/internal/service"
	"github.com/eduprep/exam-engine/internal/validator"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

// newSessionTestRouter builds a router around a SessionHandler with an empty
// session registry and stubbed auth, enough for the request-shape paths.
func newSessionTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	h := NewSessionHandler(service.NewSessionService(nil, nil, nil, nil, zerolog.Nop()))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &middleware.Claims{UserID: "student-1"})
		c.Set(middleware.ContextKeyBearer, "tok")
	})
	r.POST("/exams/:exam_id/session/answer", h.SelectAnswer)
	r.POST("/exams/:exam_id/session/position", h.Navigate)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	return w, env
}

func TestSelectAnswerValidatesBody(t *testing.T) {
	r := newSessionTestRouter(t)
	path := "/exams/" + uuid.NewString() + "/session/answer"

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing answer", `{"question_id":"` + uuid.NewString() + `"}`, "answer"},
		{"missing question id", `{"answer":"B"}`, "question_id"},
		{"malformed question id", `{"question_id":"not-a-uuid","answer":"B"}`, "question_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := postJSON(t, r, path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
			if _, ok := env.Error.Fields[tt.wantField]; !ok {
				t.Errorf("fields = %v, want a message for %q", env.Error.Fields, tt.wantField)
			}
		})
	}
}

func TestSelectAnswerWithoutActiveSession(t *testing.T) {
	r := newSessionTestRouter(t)
	path := "/exams/" + uuid.NewString() + "/session/answer"

	body := `{"question_id":"` + uuid.NewString() + `","answer":"B"}`
	w, env := postJSON(t, r, path, body)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if env.Error == nil || env.Error.Code != "SESSION_NOT_FOUND" {
		t.Errorf("error = %+v, want SESSION_NOT_FOUND", env.Error)
	}
}

func TestNavigateValidatesBody(t *testing.T) {
	r := newSessionTestRouter(t)
	path := "/exams/" + uuid.NewString() + "/session/position"

	for _, body := range []string{`{}`, `{"index":-1}`} {
		w, env := postJSON(t, r, path, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, w.Code)
		}
		if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
			t.Fatalf("body %s: error = %+v, want VALIDATION_ERROR", body, env.Error)
		}
		if _, ok := env.Error.Fields["index"]; !ok {
			t.Errorf("body %s: fields = %v, want a message for index", body, env.Error.Fields)
		}
	}

	// Index zero is a legal value and must survive the required check.
	w, env := postJSON(t, r, path, `{"index":0}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("index 0: status = %d, want 404 (no session), got error %+v", w.Code, env.Error)
	}
}
