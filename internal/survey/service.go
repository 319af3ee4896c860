package survey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrms/internal/presence"
)

// Sentinel errors let the transport map submission failures to the right
// terminal state.
var (
	ErrFormNotFound = errors.New("no questionnaire for this training")
	ErrNotEligible  = errors.New("incomplete attendance")
)

// Store is the persistence surface the service needs.
type Store interface {
	GetFormByTraining(ctx context.Context, trainingID string) (*Form, error)
	SaveAnswer(ctx context.Context, ua UserAnswer) error
}

// Gater decides full-attendance access.
type Gater interface {
	Gate(ctx context.Context, employeeID, trainingID string, start, end time.Time) (presence.GateResult, error)
}

// Service guards questionnaire submission behind the full-attendance gate.
type Service struct {
	store Store
	gater Gater
}

// NewService creates a service.
func NewService(store Store, gater Gater) *Service {
	return &Service{store: store, gater: gater}
}

// AnswerInput is one (question, chosen answer) pair.
type AnswerInput struct {
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id"`
}

// Submit stores a participant's answers for a training's form. The employee
// must pass the full-attendance gate over the training's date range; answers
// for questions outside the form are rejected before anything is written.
func (s *Service) Submit(ctx context.Context, employeeID, trainingID string, start, end time.Time, answers []AnswerInput) error {
	if len(answers) == 0 {
		return errors.New("no answers submitted")
	}

	gate, err := s.gater.Gate(ctx, employeeID, trainingID, start, end)
	if err != nil {
		return err
	}
	if gate.Decision != presence.GateGranted {
		return fmt.Errorf("%w: missing %v", ErrNotEligible, gate.MissingDates)
	}

	form, err := s.store.GetFormByTraining(ctx, trainingID)
	if err != nil {
		return err
	}
	if form == nil {
		return ErrFormNotFound
	}
	valid := make(map[string]map[string]bool, len(form.Questions))
	for _, q := range form.Questions {
		choices := make(map[string]bool, len(q.Answers))
		for _, a := range q.Answers {
			choices[a.ID] = true
		}
		valid[q.ID] = choices
	}
	for _, in := range answers {
		choices, ok := valid[in.QuestionID]
		if !ok {
			return fmt.Errorf("question %s is not on this form", in.QuestionID)
		}
		if !choices[in.AnswerID] {
			return fmt.Errorf("answer %s does not belong to question %s", in.AnswerID, in.QuestionID)
		}
	}

	for _, in := range answers {
		if err := s.store.SaveAnswer(ctx, UserAnswer{
			EmployeeID: employeeID,
			QuestionID: in.QuestionID,
			AnswerID:   in.AnswerID,
		}); err != nil {
			return fmt.Errorf("save answer for question %s: %w", in.QuestionID, err)
		}
	}
	return nil
}
