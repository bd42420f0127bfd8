package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eduprep/exam-engine/internal/model"
)

func makeQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            model.QuestionID(uuid.New()),
			Text:          fmt.Sprintf("question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: "A",
		}
	}
	return qs
}

func TestScoreNegativeMarking(t *testing.T) {
	exam := model.Exam{Name: "Algebra Midterm", NegativeMarkRate: 0.25}
	questions := makeQuestions(10)

	// 6 correct, 3 wrong, 1 unanswered.
	answers := map[model.QuestionID]string{}
	for i := 0; i < 6; i++ {
		answers[questions[i].ID] = "A"
	}
	for i := 6; i < 9; i++ {
		answers[questions[i].ID] = "B"
	}

	result := Score(exam, questions, answers, time.Now(), false)

	if result.CorrectCount != 6 || result.WrongCount != 3 {
		t.Fatalf("counts = %d correct / %d wrong, want 6/3", result.CorrectCount, result.WrongCount)
	}
	if result.TotalMarks != 5.25 {
		t.Errorf("TotalMarks = %v, want 5.25", result.TotalMarks)
	}
	if result.TotalQuestions != 10 {
		t.Errorf("TotalQuestions = %d, want 10", result.TotalQuestions)
	}
}

func TestScoreAllUnanswered(t *testing.T) {
	exam := model.Exam{Name: "Empty Attempt", NegativeMarkRate: 0.5}
	questions := makeQuestions(5)

	result := Score(exam, questions, nil, time.Now(), true)

	if result.CorrectCount != 0 || result.WrongCount != 0 {
		t.Fatalf("counts = %d/%d, want 0/0", result.CorrectCount, result.WrongCount)
	}
	if result.TotalMarks != 0 {
		t.Errorf("TotalMarks = %v, want 0", result.TotalMarks)
	}
	if !result.IsAutoSubmitted {
		t.Error("IsAutoSubmitted not carried through")
	}
	for i, rec := range result.UserAnswers {
		if rec.SelectedAnswer != nil {
			t.Errorf("record %d has a selection, want none", i)
		}
		if rec.IsCorrect {
			t.Errorf("record %d marked correct without a selection", i)
		}
	}
}

func TestScoreEmitsRecordPerQuestionInOrder(t *testing.T) {
	exam := model.Exam{Name: "Order Check"}
	questions := makeQuestions(4)

	answers := map[model.QuestionID]string{
		questions[2].ID: "A",
	}

	result := Score(exam, questions, answers, time.Now(), false)

	if len(result.UserAnswers) != len(questions) {
		t.Fatalf("got %d records, want %d", len(result.UserAnswers), len(questions))
	}
	for i, rec := range result.UserAnswers {
		if rec.QuestionID != questions[i].ID {
			t.Errorf("record %d out of order", i)
		}
	}
	if !result.UserAnswers[2].IsCorrect {
		t.Error("answered question not marked correct")
	}
	if result.UserAnswers[2].SelectedAnswer == nil || *result.UserAnswers[2].SelectedAnswer != "A" {
		t.Error("selection not carried into record")
	}
}

func TestScoreCanGoNegative(t *testing.T) {
	exam := model.Exam{Name: "Harsh Marking", NegativeMarkRate: 1}
	questions := makeQuestions(3)

	answers := map[model.QuestionID]string{
		questions[0].ID: "B",
		questions[1].ID: "C",
	}

	result := Score(exam, questions, answers, time.Now(), false)
	if result.TotalMarks != -2 {
		t.Errorf("TotalMarks = %v, want -2", result.TotalMarks)
	}
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	// 1 correct, 2 wrong at rate 1/3 → 1 − 0.666... = 0.33 after rounding.
	exam := model.Exam{Name: "Rounding", NegativeMarkRate: 1.0 / 3.0}
	questions := makeQuestions(3)

	answers := map[model.QuestionID]string{
		questions[0].ID: "A",
		questions[1].ID: "B",
		questions[2].ID: "C",
	}

	result := Score(exam, questions, answers, time.Now(), false)
	if result.TotalMarks != 0.33 {
		t.Errorf("TotalMarks = %v, want 0.33", result.TotalMarks)
	}
}

func TestScoreRoundsHalfAwayFromZero(t *testing.T) {
	// 1 correct, 1 wrong at rate 0.875 leaves exactly 0.125, which must
	// round up, not to even.
	exam := model.Exam{Name: "Half Cent", NegativeMarkRate: 0.875}
	questions := makeQuestions(2)

	answers := map[model.QuestionID]string{
		questions[0].ID: "A",
		questions[1].ID: "B",
	}

	result := Score(exam, questions, answers, time.Now(), false)
	if result.TotalMarks != 0.13 {
		t.Errorf("TotalMarks = %v, want 0.13", result.TotalMarks)
	}

	// Mirror case on the negative side: one wrong answer at rate 0.125.
	exam.NegativeMarkRate = 0.125
	result = Score(exam, questions, map[model.QuestionID]string{questions[0].ID: "B"}, time.Now(), false)
	if result.TotalMarks != -0.13 {
		t.Errorf("TotalMarks = %v, want -0.13", result.TotalMarks)
	}
}

func TestScoreDoesNotMutateInputs(t *testing.T) {
	exam := model.Exam{Name: "Purity"}
	questions := makeQuestions(2)
	answers := map[model.QuestionID]string{questions[0].ID: "A"}

	_ = Score(exam, questions, answers, time.Now(), false)
	_ = Score(exam, questions, answers, time.Now(), false)

	if len(answers) != 1 {
		t.Errorf("answers map mutated: %v", answers)
	}
}
