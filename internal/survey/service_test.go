package survey

import (
	"context"
	"errors"
	"testing"
	"time"

	"hrms/internal/presence"
)

type fakeStore struct {
	form  *Form
	saved []UserAnswer
}

func (f *fakeStore) GetFormByTraining(context.Context, string) (*Form, error) {
	return f.form, nil
}

func (f *fakeStore) SaveAnswer(_ context.Context, ua UserAnswer) error {
	f.saved = append(f.saved, ua)
	return nil
}

type fakeGater struct {
	result presence.GateResult
	err    error
}

func (f *fakeGater) Gate(context.Context, string, string, time.Time, time.Time) (presence.GateResult, error) {
	return f.result, f.err
}

func testForm() *Form {
	return &Form{
		ID:         "f1",
		TrainingID: "t1",
		Questions: []Question{
			{ID: "q1", FormID: "f1", Text: "Useful?", Answers: []PossibleAnswer{
				{ID: "a1", QuestionID: "q1", Text: "Yes"},
				{ID: "a2", QuestionID: "q1", Text: "No"},
			}},
			{ID: "q2", FormID: "f1", Text: "Pace?", Answers: []PossibleAnswer{
				{ID: "a3", QuestionID: "q2", Text: "Good"},
			}},
		},
	}
}

var testRange = struct{ start, end time.Time }{
	start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	end:   time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
}

func TestSubmitGranted(t *testing.T) {
	store := &fakeStore{form: testForm()}
	svc := NewService(store, &fakeGater{result: presence.GateResult{Decision: presence.GateGranted}})

	err := svc.Submit(context.Background(), "e1", "t1", testRange.start, testRange.end, []AnswerInput{
		{QuestionID: "q1", AnswerID: "a2"},
		{QuestionID: "q2", AnswerID: "a3"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(store.saved) != 2 {
		t.Fatalf("saved %d answers, want 2", len(store.saved))
	}
}

func TestSubmitDeniedByGate(t *testing.T) {
	store := &fakeStore{form: testForm()}
	svc := NewService(store, &fakeGater{result: presence.GateResult{
		Decision:     presence.GateDenied,
		MissingDates: []string{"2024-03-03"},
	}})

	err := svc.Submit(context.Background(), "e1", "t1", testRange.start, testRange.end, []AnswerInput{
		{QuestionID: "q1", AnswerID: "a1"},
	})
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible", err)
	}
	if len(store.saved) != 0 {
		t.Error("answers written despite denial")
	}
}

func TestSubmitVerificationError(t *testing.T) {
	store := &fakeStore{form: testForm()}
	svc := NewService(store, &fakeGater{err: errors.New("store down")})

	err := svc.Submit(context.Background(), "e1", "t1", testRange.start, testRange.end, []AnswerInput{
		{QuestionID: "q1", AnswerID: "a1"},
	})
	if err == nil || errors.Is(err, ErrNotEligible) {
		t.Fatalf("verification failure must not read as denial, got %v", err)
	}
}

func TestSubmitRejectsForeignAnswers(t *testing.T) {
	store := &fakeStore{form: testForm()}
	svc := NewService(store, &fakeGater{result: presence.GateResult{Decision: presence.GateGranted}})
	ctx := context.Background()

	if err := svc.Submit(ctx, "e1", "t1", testRange.start, testRange.end, []AnswerInput{
		{QuestionID: "q9", AnswerID: "a1"},
	}); err == nil {
		t.Error("unknown question accepted")
	}
	if err := svc.Submit(ctx, "e1", "t1", testRange.start, testRange.end, []AnswerInput{
		{QuestionID: "q1", AnswerID: "a3"},
	}); err == nil {
		t.Error("answer from another question accepted")
	}
	if len(store.saved) != 0 {
		t.Error("partial writes on validation failure")
	}
}

func TestSubmitNoForm(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeGater{result: presence.GateResult{Decision: presence.GateGranted}})
	err := svc.Submit(context.Background(), "e1", "t1", testRange.start, testRange.end, []AnswerInput{
		{QuestionID: "q1", AnswerID: "a1"},
	})
	if !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("err = %v, want ErrFormNotFound", err)
	}
}
