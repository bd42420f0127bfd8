// Package scoring computes exam results from a question set and the final
// answer snapshot. It is pure: no clock, no I/O, no mutation of its inputs,
// so it can be unit tested in isolation and re-run deterministically.
package scoring

import (
	"math"
	"time"

	"github.com/eduprep/exam-engine/internal/model"
)

// Score grades an attempt.
//
// For every question, in the original order, one UserAnswerRecord is emitted
// whether or not it was answered. A question counts as wrong only when a
// selection exists and differs from the correct option; unanswered questions
// count neither correct nor wrong. The total is
//
//	correctCount − wrongCount × negativeMarkRate
//
// rounded to two decimals, half away from zero (math.Round semantics; an
// exact half like 0.125 rounds to 0.13 and -0.125 to -0.13).
func Score(exam model.Exam, questions []model.Question, answers map[model.QuestionID]string, submittedAt time.Time, autoSubmitted bool) model.ExamResult {
	records := make([]model.UserAnswerRecord, 0, len(questions))
	correct, wrong := 0, 0

	for _, q := range questions {
		rec := model.UserAnswerRecord{
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			CorrectAnswer: q.CorrectOption,
		}

		if selected, ok := answers[q.ID]; ok {
			sel := selected
			rec.SelectedAnswer = &sel
			rec.IsCorrect = selected == q.CorrectOption
			if rec.IsCorrect {
				correct++
			} else {
				wrong++
			}
		}

		records = append(records, rec)
	}

	return model.ExamResult{
		ExamName:        exam.Name,
		TotalQuestions:  len(questions),
		CorrectCount:    correct,
		WrongCount:      wrong,
		TotalMarks:      round2(float64(correct) - float64(wrong)*exam.NegativeMarkRate),
		UserAnswers:     records,
		IsAutoSubmitted: autoSubmitted,
		SubmittedAt:     submittedAt,
	}
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
