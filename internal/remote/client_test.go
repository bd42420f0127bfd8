package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduprep/exam-engine/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, zerolog.Nop())
}

func TestFetchExamPaperSendsBearer(t *testing.T) {
	examID := uuid.New()
	qID := uuid.New()

	var gotAuth string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.ExamPaper{
			Exam: model.Exam{ID: examID, Name: "Physics Final", Minutes: 45},
			Questions: []model.Question{
				{ID: model.QuestionID(qID), Text: "q", Options: []string{"A"}, CorrectOption: "A"},
			},
		})
	})

	paper, err := c.FetchExamPaper(context.Background(), examID, "tok-123")
	if err != nil {
		t.Fatalf("FetchExamPaper: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if paper.Exam.Name != "Physics Final" || len(paper.Questions) != 1 {
		t.Errorf("paper decoded wrong: %+v", paper)
	}
}

func TestFetchExamPaperRejectsEmptyQuestionList(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.ExamPaper{Exam: model.Exam{Name: "Empty"}})
	})

	if _, err := c.FetchExamPaper(context.Background(), uuid.New(), "tok"); err == nil {
		t.Error("empty question list accepted")
	}
}

func TestClientRefusesEmptyBearer(t *testing.T) {
	called := false
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.FetchExamPaper(context.Background(), uuid.New(), "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
	if called {
		t.Error("request sent without a credential")
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := c.FetchResult(context.Background(), uuid.New(), "user-1", "tok")
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.wantErr)
		}
	}
}

func TestSubmitResultPostsJSON(t *testing.T) {
	examID := uuid.New()

	var gotMethod, gotPath string
	var gotBody model.ExamResult
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	})

	result := model.ExamResult{
		ExamName:       "Physics Final",
		TotalQuestions: 10,
		CorrectCount:   7,
		WrongCount:     2,
		TotalMarks:     6.5,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := c.SubmitResult(context.Background(), examID, "tok", result); err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if want := "/api/v1/exams/" + examID.String() + "/results"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if gotBody.TotalMarks != 6.5 || gotBody.CorrectCount != 7 {
		t.Errorf("body decoded wrong: %+v", gotBody)
	}
}

func TestSubmitResultServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := c.SubmitResult(context.Background(), uuid.New(), "tok", model.ExamResult{})
	if err == nil {
		t.Fatal("server error not surfaced")
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
		t.Errorf("5xx mapped to a sentinel: %v", err)
	}
}
