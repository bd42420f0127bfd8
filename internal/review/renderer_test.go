package review

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eduprep/exam-engine/internal/mathspan"
	"github.com/eduprep/exam-engine/internal/model"
	"github.com/eduprep/exam-engine/internal/scoring"
)

func passthroughDelegate() mathspan.Delegate {
	return mathspan.DelegateFunc(func(n string) (string, error) { return n, nil })
}

func strPtr(s string) *string { return &s }

func TestRenderMarksUnanswered(t *testing.T) {
	r := NewRenderer(passthroughDelegate())

	result := model.ExamResult{
		ExamName:       "History Quiz",
		TotalQuestions: 2,
		UserAnswers: []model.UserAnswerRecord{
			{QuestionID: model.QuestionID(uuid.New()), QuestionText: "q1", SelectedAnswer: strPtr("B"), CorrectAnswer: "A"},
			{QuestionID: model.QuestionID(uuid.New()), QuestionText: "q2", CorrectAnswer: "C"},
		},
	}

	review := r.Render(result)
	if len(review.Questions) != 2 {
		t.Fatalf("got %d rows, want 2", len(review.Questions))
	}

	if !review.Questions[0].Answered {
		t.Error("answered question reported as unanswered")
	}
	if review.Questions[1].Answered {
		t.Error("unanswered question reported as answered")
	}
	if review.Questions[1].AnswerHTML[0].HTML != NotAnsweredMarker {
		t.Errorf("unanswered row shows %q, want the marker", review.Questions[1].AnswerHTML[0].HTML)
	}
}

func TestRenderShowsCorrectionOnlyWhenWrong(t *testing.T) {
	r := NewRenderer(passthroughDelegate())

	result := model.ExamResult{
		UserAnswers: []model.UserAnswerRecord{
			{QuestionID: model.QuestionID(uuid.New()), QuestionText: "right", SelectedAnswer: strPtr("A"), CorrectAnswer: "A", IsCorrect: true},
			{QuestionID: model.QuestionID(uuid.New()), QuestionText: "wrong", SelectedAnswer: strPtr("B"), CorrectAnswer: "A"},
			{QuestionID: model.QuestionID(uuid.New()), QuestionText: "skipped", CorrectAnswer: "A"},
		},
	}

	review := r.Render(result)

	if review.Questions[0].CorrectHTML != nil {
		t.Error("correct answer shown for a correct selection")
	}
	for i := 1; i < 3; i++ {
		if len(review.Questions[i].CorrectHTML) == 0 {
			t.Errorf("row %d missing the correct answer", i)
		}
		if review.Questions[i].CorrectHTML[0].HTML != "A" {
			t.Errorf("row %d correction = %q, want A", i, review.Questions[i].CorrectHTML[0].HTML)
		}
	}
}

func TestRenderDelegatesMathSpans(t *testing.T) {
	r := NewRenderer(mathspan.DelegateFunc(func(n string) (string, error) {
		return "[" + n + "]", nil
	}))

	result := model.ExamResult{
		UserAnswers: []model.UserAnswerRecord{
			{
				QuestionID:     model.QuestionID(uuid.New()),
				QuestionText:   "Evaluate $$x^2** now",
				SelectedAnswer: strPtr("4"),
				CorrectAnswer:  "4",
				IsCorrect:      true,
			},
		},
	}

	row := r.Render(result).Questions[0]
	if len(row.QuestionHTML) != 3 {
		t.Fatalf("got %d question segments, want 3", len(row.QuestionHTML))
	}
	if row.QuestionHTML[1].Kind != mathspan.KindMath || row.QuestionHTML[1].HTML != "[x^2]" {
		t.Errorf("math segment not delegated: %+v", row.QuestionHTML[1])
	}
}

func TestRenderIsIdempotentOverScoringOutput(t *testing.T) {
	exam := model.Exam{Name: "Round Trip", NegativeMarkRate: 0.25}
	questions := []model.Question{
		{ID: model.QuestionID(uuid.New()), Text: "first", Options: []string{"A", "B"}, CorrectOption: "A"},
		{ID: model.QuestionID(uuid.New()), Text: "second", Options: []string{"A", "B"}, CorrectOption: "B"},
	}
	answers := map[model.QuestionID]string{
		questions[0].ID: "A",
		questions[1].ID: "A",
	}

	result := scoring.Score(exam, questions, answers, time.Now().UTC(), false)

	r := NewRenderer(passthroughDelegate())
	first := r.Render(result)
	second := r.Render(result)

	if !reflect.DeepEqual(first, second) {
		t.Error("re-rendering the same result produced different output")
	}
	if first.CorrectCount != 1 || first.WrongCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", first.CorrectCount, first.WrongCount)
	}
	if first.TotalMarks != 0.75 {
		t.Errorf("TotalMarks = %v, want 0.75", first.TotalMarks)
	}
}
