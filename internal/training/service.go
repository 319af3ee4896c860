package training

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hrms/internal/presence"
)

// Store is the persistence surface the service needs. *Repository satisfies
// it; tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, t Training) (Training, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AddParticipation(ctx context.Context, employeeID, trainingID string) error
}

// Marker backfills presence for sessions that already ended.
type Marker interface {
	AutoMarkIfPast(ctx context.Context, trainingID string, start, end time.Time, employeeIDs []string, now time.Time) (*presence.WriteReport, error)
}

// Service owns training creation: field validation, roster enrollment and
// the auto-mark backfill for sessions entered after the fact.
type Service struct {
	store  Store
	marker Marker
	now    func() time.Time
}

// NewService creates a service.
func NewService(store Store, marker Marker) *Service {
	return &Service{store: store, marker: marker, now: time.Now}
}

// CreateInput carries a new session and its initial roster.
type CreateInput struct {
	Theme       string
	Location    string
	Type        string
	Status      string
	StartDate   time.Time
	EndDate     time.Time
	TrainerID   *string
	EmployeeIDs []string
}

// Create validates and persists a session, enrolls the roster, and when the
// end date is already past backfills PRESENT for every roster member across
// the full range. The returned report is non-nil only when auto-mark ran.
func (s *Service) Create(ctx context.Context, in CreateInput) (Training, *presence.WriteReport, error) {
	if in.Theme == "" || in.Location == "" || in.Type == "" {
		return Training{}, nil, errors.New("theme, location and type are required")
	}
	if in.Status == "" {
		in.Status = StatusPendingValidation
	}
	if !ValidStatus(in.Status) {
		return Training{}, nil, fmt.Errorf("unknown training status %q", in.Status)
	}
	start, end := presence.Day(in.StartDate), presence.Day(in.EndDate)
	if start.After(end) {
		return Training{}, nil, errors.New("start date is after end date")
	}

	t, err := s.store.Create(ctx, Training{
		Theme:     in.Theme,
		Location:  in.Location,
		Type:      in.Type,
		Status:    in.Status,
		StartDate: start,
		EndDate:   end,
		TrainerID: in.TrainerID,
	})
	if err != nil {
		return Training{}, nil, err
	}

	for _, empID := range in.EmployeeIDs {
		if err := s.store.AddParticipation(ctx, empID, t.ID); err != nil {
			// The session itself exists; report enrollment trouble to the
			// caller rather than leaving it to a console log.
			return t, nil, fmt.Errorf("enroll employee %s: %w", empID, err)
		}
	}

	report, err := s.marker.AutoMarkIfPast(ctx, t.ID, start, end, in.EmployeeIDs, s.now())
	if err != nil {
		log.Printf("auto-mark for training %s failed: %v", t.ID, err)
		return t, nil, nil
	}
	return t, report, nil
}

// SetStatus applies a coordinator action (validate, reject, complete).
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("unknown training status %q", status)
	}
	return s.store.UpdateStatus(ctx, id, status)
}
