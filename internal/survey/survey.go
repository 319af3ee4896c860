package survey

import "time"

// Form is the one questionnaire attached to a training session.
type Form struct {
	ID         string     `json:"id"`
	TrainingID string     `json:"training_id"`
	Title      string     `json:"title"`
	CreatedAt  time.Time  `json:"created_at"`
	Questions  []Question `json:"questions,omitempty"`
}

// Question is one ordered entry on a form.
type Question struct {
	ID       string           `json:"id"`
	FormID   string           `json:"form_id"`
	Text     string           `json:"text"`
	Position int              `json:"position"`
	Answers  []PossibleAnswer `json:"answers,omitempty"`
}

// PossibleAnswer is one fixed choice for a question.
type PossibleAnswer struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Position   int    `json:"position"`
}

// UserAnswer records one participant's choice for one question. The
// (employee, question) pair is unique; re-submitting overwrites.
type UserAnswer struct {
	EmployeeID string    `json:"employee_id"`
	QuestionID string    `json:"question_id"`
	AnswerID   string    `json:"answer_id"`
	CreatedAt  time.Time `json:"created_at"`
}
