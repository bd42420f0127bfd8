// Package review turns a stored exam result into display-ready rows for the
// post-submission review screen. Rendering is read-only and idempotent: the
// same result always produces the same output.
package review

import (
	"github.com/eduprep/exam-engine/internal/mathspan"
	"github.com/eduprep/exam-engine/internal/model"
)

// NotAnsweredMarker is shown in place of a selection the student never made.
const NotAnsweredMarker = "Not answered"

// QuestionReview is one question's row on the review screen.
type QuestionReview struct {
	QuestionID   model.QuestionID           `json:"question_id"`
	QuestionHTML []mathspan.RenderedSegment `json:"question_html"`
	// AnswerHTML renders what the student picked, or the not-answered
	// marker.
	AnswerHTML []mathspan.RenderedSegment `json:"answer_html"`
	Answered   bool                       `json:"answered"`
	IsCorrect  bool                       `json:"is_correct"`
	// CorrectHTML is populated only when the student was wrong or did not
	// answer; a correct answer needs no correction.
	CorrectHTML []mathspan.RenderedSegment `json:"correct_html,omitempty"`
}

// ResultReview is the full review screen payload.
type ResultReview struct {
	ExamName       string           `json:"exam_name"`
	TotalQuestions int              `json:"total_questions"`
	CorrectCount   int              `json:"correct_count"`
	WrongCount     int              `json:"wrong_count"`
	TotalMarks     float64          `json:"total_marks"`
	AutoSubmitted  bool             `json:"auto_submitted"`
	Questions      []QuestionReview `json:"questions"`
}

// Renderer builds review payloads, delegating math spans to the shared
// math-span renderer.
type Renderer struct {
	text *mathspan.Renderer
}

// NewRenderer creates a review renderer on top of a math delegate.
func NewRenderer(delegate mathspan.Delegate) *Renderer {
	return &Renderer{text: mathspan.NewRenderer(delegate)}
}

// Render replays a stored result into review rows, one per question in the
// original order.
func (r *Renderer) Render(result model.ExamResult) ResultReview {
	questions := make([]QuestionReview, 0, len(result.UserAnswers))

	for _, rec := range result.UserAnswers {
		row := QuestionReview{
			QuestionID:   rec.QuestionID,
			QuestionHTML: r.text.Render(rec.QuestionText),
			Answered:     rec.Answered(),
			IsCorrect:    rec.IsCorrect,
		}

		if rec.Answered() {
			row.AnswerHTML = r.text.Render(*rec.SelectedAnswer)
		} else {
			row.AnswerHTML = r.text.Render(NotAnsweredMarker)
		}

		if !rec.IsCorrect {
			row.CorrectHTML = r.text.Render(rec.CorrectAnswer)
		}

		questions = append(questions, row)
	}

	return ResultReview{
		ExamName:       result.ExamName,
		TotalQuestions: result.TotalQuestions,
		CorrectCount:   result.CorrectCount,
		WrongCount:     result.WrongCount,
		TotalMarks:     result.TotalMarks,
		AutoSubmitted:  result.IsAutoSubmitted,
		Questions:      questions,
	}
}
