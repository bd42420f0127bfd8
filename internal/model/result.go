package model

import "time"

// UserAnswerRecord captures the outcome of one question at submission time.
// Records are produced for every question, answered or not, in the original
// question order.
type UserAnswerRecord struct {
	QuestionID     QuestionID `json:"question_id"`
	QuestionText   string     `json:"question_text"`
	SelectedAnswer *string    `json:"selected_answer"`
	CorrectAnswer  string     `json:"correct_answer"`
	IsCorrect      bool       `json:"is_correct"`
}

// Answered reports whether the student selected anything for this question.
func (r UserAnswerRecord) Answered() bool {
	return r.SelectedAnswer != nil
}

// ExamResult is the write-once outcome of an exam attempt. It is created
// exactly once by the scoring engine, sent to the remote store, and later
// re-fetched for review.
type ExamResult struct {
	ExamName        string             `json:"exam_name"`
	TotalQuestions  int                `json:"total_questions"`
	CorrectCount    int                `json:"correct_count"`
	WrongCount      int                `json:"wrong_count"`
	TotalMarks      float64            `json:"total_marks"`
	UserAnswers     []UserAnswerRecord `json:"user_answers"`
	IsAutoSubmitted bool               `json:"is_auto_submitted"`
	SubmittedAt     time.Time          `json:"submitted_at"`
}
