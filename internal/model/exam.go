package model

import (
	"github.com/google/uuid"
)

// QuestionID identifies a question within an exam. It is a distinct type so
// the answer registry and scoring engine cannot be fed arbitrary strings.
type QuestionID uuid.UUID

// ParseQuestionID parses a question ID from its string form.
func ParseQuestionID(s string) (QuestionID, error) {
	id, err := uuid.Parse(s)
	return QuestionID(id), err
}

func (id QuestionID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText implements encoding.TextMarshaler so QuestionID serializes as a
// plain UUID string in JSON objects and map keys.
func (id QuestionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *QuestionID) UnmarshalText(b []byte) error {
	parsed, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = QuestionID(parsed)
	return nil
}

// Exam holds the metadata of a single exam. Immutable once loaded for a
// session.
type Exam struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Subject          string    `json:"subject"`
	Topic            string    `json:"topic"`
	QuestionCount    int       `json:"question_count"`
	Hours            int       `json:"hours"`
	Minutes          int       `json:"minutes"`
	NegativeMarkRate float64   `json:"negative_mark_rate"`
}

// DurationSeconds returns the allotted time in whole seconds.
func (e Exam) DurationSeconds() int {
	return e.Hours*3600 + e.Minutes*60
}

// Question is a single multiple-choice question. The correct option is part
// of the payload delivered by the upstream exam API before submission; that
// trust decision belongs to the upstream contract and is preserved here.
type Question struct {
	ID               QuestionID `json:"id"`
	Text             string     `json:"text"`
	Options          []string   `json:"options"`
	CorrectOption    string     `json:"correct_option"`
	ImageURL         string     `json:"image_url,omitempty"`
	Explanation      string     `json:"explanation,omitempty"`
	ExplanationImage string     `json:"explanation_image,omitempty"`
}

// ExamPaper is the full payload fetched from the upstream exam API at session
// start: exam metadata plus the ordered question list.
type ExamPaper struct {
	Exam      Exam       `json:"exam"`
	Questions []Question `json:"questions"`
}
