package training

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"hrms/internal/presence"
)

type fakeStore struct {
	created        []Training
	participations map[string][]string // training id -> employee ids
	statuses       map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{participations: make(map[string][]string), statuses: make(map[string]string)}
}

func (f *fakeStore) Create(_ context.Context, t Training) (Training, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	f.created = append(f.created, t)
	return t, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id, status string) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeStore) AddParticipation(_ context.Context, employeeID, trainingID string) error {
	f.participations[trainingID] = append(f.participations[trainingID], employeeID)
	return nil
}

type fakeMarker struct {
	calls []markCall
}

type markCall struct {
	trainingID  string
	start, end  time.Time
	employeeIDs []string
	now         time.Time
}

func (f *fakeMarker) AutoMarkIfPast(_ context.Context, trainingID string, start, end time.Time, employeeIDs []string, now time.Time) (*presence.WriteReport, error) {
	f.calls = append(f.calls, markCall{trainingID, start, end, employeeIDs, now})
	if len(employeeIDs) == 0 || !presence.Day(end).Before(presence.Day(now)) {
		return nil, nil
	}
	n := len(employeeIDs) * len(presence.ExpandRange(start, end))
	return &presence.WriteReport{Attempted: n, Applied: n}, nil
}

func day(s string) time.Time {
	t, err := presence.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService(store *fakeStore, marker *fakeMarker, now string) *Service {
	svc := NewService(store, marker)
	svc.now = func() time.Time { return day(now) }
	return svc
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeMarker{}, "2024-03-10")
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{name: "missing theme", in: CreateInput{Location: "HQ", Type: "internal", StartDate: day("2024-03-01"), EndDate: day("2024-03-02")}},
		{name: "missing location", in: CreateInput{Theme: "Go", Type: "internal", StartDate: day("2024-03-01"), EndDate: day("2024-03-02")}},
		{name: "bad status", in: CreateInput{Theme: "Go", Location: "HQ", Type: "internal", Status: "archived", StartDate: day("2024-03-01"), EndDate: day("2024-03-02")}},
		{name: "inverted range", in: CreateInput{Theme: "Go", Location: "HQ", Type: "internal", StartDate: day("2024-03-05"), EndDate: day("2024-03-02")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Create(ctx, tt.in); err == nil {
				t.Error("invalid input accepted")
			}
		})
	}
}

func TestCreatePastSessionAutoMarks(t *testing.T) {
	store := newFakeStore()
	marker := &fakeMarker{}
	svc := newTestService(store, marker, "2024-03-10")

	created, report, err := svc.Create(context.Background(), CreateInput{
		Theme: "Go", Location: "HQ", Type: "internal",
		StartDate: day("2024-03-01"), EndDate: day("2024-03-02"),
		EmployeeIDs: []string{"e1", "e2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != StatusPendingValidation {
		t.Errorf("default status = %s", created.Status)
	}
	if got := store.participations[created.ID]; len(got) != 2 {
		t.Errorf("roster = %v, want 2 members", got)
	}
	if report == nil || report.Attempted != 4 {
		t.Fatalf("report = %+v, want 4 auto-mark attempts (2 employees x 2 days)", report)
	}
	if len(marker.calls) != 1 || marker.calls[0].trainingID != created.ID {
		t.Fatalf("marker calls = %+v", marker.calls)
	}
}

func TestCreateFutureSessionSkipsAutoMark(t *testing.T) {
	store := newFakeStore()
	marker := &fakeMarker{}
	svc := newTestService(store, marker, "2024-03-10")

	_, report, err := svc.Create(context.Background(), CreateInput{
		Theme: "Go", Location: "HQ", Type: "internal",
		StartDate: day("2024-03-15"), EndDate: day("2024-03-16"),
		EmployeeIDs: []string{"e1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if report != nil {
		t.Fatalf("future session got auto-mark report %+v", report)
	}
}

func TestSetStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMarker{}, "2024-03-10")

	if err := svc.SetStatus(context.Background(), "t1", StatusApproved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if store.statuses["t1"] != StatusApproved {
		t.Errorf("status not written")
	}
	if err := svc.SetStatus(context.Background(), "t1", "cancelled"); err == nil {
		t.Error("unknown status accepted")
	}
}
