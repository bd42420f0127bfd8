package session

import (
	"errors"

	"github.com/eduprep/exam-engine/internal/model"
)

// ErrUnknownQuestion is returned when a selection targets a question ID that
// is not part of the loaded question set.
var ErrUnknownQuestion = errors.New("question is not part of this exam")

// AnswerRegistry holds the student's current selection per question. At most
// one selection exists per question; re-selecting overwrites. The registry is
// not safe for concurrent use on its own — the owning Engine serializes
// access.
type AnswerRegistry struct {
	known      map[model.QuestionID]struct{}
	selections map[model.QuestionID]string
}

// NewAnswerRegistry creates a registry that accepts only the given questions.
func NewAnswerRegistry(questions []model.Question) *AnswerRegistry {
	known := make(map[model.QuestionID]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	return &AnswerRegistry{
		known:      known,
		selections: make(map[model.QuestionID]string),
	}
}

// Select records optionText as the selection for questionID, replacing any
// prior selection. Unknown question IDs are rejected.
func (r *AnswerRegistry) Select(questionID model.QuestionID, optionText string) error {
	if _, ok := r.known[questionID]; !ok {
		return ErrUnknownQuestion
	}
	r.selections[questionID] = optionText
	return nil
}

// Get returns the current selection and whether one exists.
func (r *AnswerRegistry) Get(questionID model.QuestionID) (string, bool) {
	sel, ok := r.selections[questionID]
	return sel, ok
}

// AnsweredCount returns how many questions currently have a selection.
func (r *AnswerRegistry) AnsweredCount() int {
	return len(r.selections)
}

// Snapshot returns a copy of the current selections. The scoring engine
// consumes the snapshot so later mutation (there is none after submission,
// but the type does not know that) cannot affect a computed result.
func (r *AnswerRegistry) Snapshot() map[model.QuestionID]string {
	out := make(map[model.QuestionID]string, len(r.selections))
	for k, v := range r.selections {
		out[k] = v
	}
	return out
}
