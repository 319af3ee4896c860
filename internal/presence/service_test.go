package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeStore keeps records in a map keyed by the composite id.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]Record
	failOn  map[string]error // key -> error to inject on Upsert
	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]Record), failOn: make(map[string]error)}
}

func key(employeeID, trainingID string, date time.Time) string {
	return employeeID + "|" + trainingID + "|" + Day(date).Format(DayLayout)
}

func (f *fakeStore) Upsert(_ context.Context, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(rec.EmployeeID, rec.TrainingID, rec.Date)
	if err, ok := f.failOn[k]; ok {
		return err
	}
	f.records[k] = rec
	return nil
}

func (f *fakeStore) ListByTraining(_ context.Context, trainingID string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var res []Record
	for _, rec := range f.records {
		if rec.TrainingID == trainingID {
			res = append(res, rec)
		}
	}
	return res, nil
}

func (f *fakeStore) ListForEmployeeTraining(_ context.Context, employeeID, trainingID string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var res []Record
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID && rec.TrainingID == trainingID {
			res = append(res, rec)
		}
	}
	return res, nil
}

func TestMarkAllWritesEveryPair(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 4)

	dates := ExpandRange(day("2024-03-01"), day("2024-03-02"))
	report, err := svc.MarkAll(context.Background(), "t1", []string{"e1", "e2"}, dates, StatusPresent)
	if err != nil {
		t.Fatalf("MarkAll: %v", err)
	}
	if report.Attempted != 4 || report.Applied != 4 || !report.Ok() {
		t.Fatalf("report = %+v, want 4 applied of 4", report)
	}
	for _, emp := range []string{"e1", "e2"} {
		for _, d := range dates {
			rec, ok := store.records[key(emp, "t1", d)]
			if !ok || rec.Status != StatusPresent {
				t.Errorf("missing PRESENT record for %s %s", emp, d.Format(DayLayout))
			}
		}
	}
}

func TestMarkAllIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 4)
	dates := ExpandRange(day("2024-03-01"), day("2024-03-03"))

	for i := 0; i < 2; i++ {
		if _, err := svc.MarkAll(context.Background(), "t1", []string{"e1"}, dates, StatusPresent); err != nil {
			t.Fatalf("MarkAll pass %d: %v", i, err)
		}
	}
	if len(store.records) != 3 {
		t.Fatalf("got %d records after double write, want 3", len(store.records))
	}
}

func TestMarkAllPartialFailureDoesNotAbort(t *testing.T) {
	store := newFakeStore()
	store.failOn[key("e2", "t1", day("2024-03-01"))] = errors.New("connection reset")
	svc := NewService(store, 2)

	dates := []time.Time{day("2024-03-01")}
	report, err := svc.MarkAll(context.Background(), "t1", []string{"e1", "e2", "e3"}, dates, StatusPresent)
	if err != nil {
		t.Fatalf("MarkAll must settle despite failures, got %v", err)
	}
	if report.Applied != 2 || len(report.Failures) != 1 {
		t.Fatalf("report = %+v, want 2 applied and 1 failure", report)
	}
	f := report.Failures[0]
	if f.EmployeeID != "e2" || f.Date != "2024-03-01" {
		t.Errorf("failure identifies wrong cell: %+v", f)
	}
	for _, emp := range []string{"e1", "e3"} {
		if _, ok := store.records[key(emp, "t1", dates[0])]; !ok {
			t.Errorf("record for %s lost to sibling failure", emp)
		}
	}
}

func TestMarkCellsRejectsBadInput(t *testing.T) {
	svc := NewService(newFakeStore(), 2)
	ctx := context.Background()

	if _, err := svc.MarkCells(ctx, "", []Cell{{EmployeeID: "e1", Date: day("2024-03-01"), Status: StatusPresent}}); err == nil {
		t.Error("missing training id accepted")
	}
	if _, err := svc.MarkCells(ctx, "t1", nil); err == nil {
		t.Error("empty cell set accepted")
	}
	if _, err := svc.MarkCells(ctx, "t1", []Cell{{EmployeeID: "e1", Date: day("2024-03-01"), Status: "LATE"}}); err == nil {
		t.Error("unknown status accepted")
	}
	if _, err := svc.MarkAll(ctx, "t1", nil, []time.Time{day("2024-03-01")}, StatusPresent); err == nil {
		t.Error("empty roster accepted")
	}
}

func TestGate(t *testing.T) {
	start, end := day("2024-03-01"), day("2024-03-03")
	mark := func(store *fakeStore, emp string, days ...string) {
		for _, d := range days {
			store.records[key(emp, "t1", day(d))] = Record{
				EmployeeID: emp, TrainingID: "t1", Date: day(d), Status: StatusPresent,
			}
		}
	}

	t.Run("one missing day denies", func(t *testing.T) {
		store := newFakeStore()
		mark(store, "e1", "2024-03-01", "2024-03-02")
		svc := NewService(store, 2)
		res, err := svc.Gate(context.Background(), "e1", "t1", start, end)
		if err != nil {
			t.Fatalf("Gate: %v", err)
		}
		if res.Decision != GateDenied {
			t.Fatalf("decision = %s, want denied", res.Decision)
		}
		if len(res.MissingDates) != 1 || res.MissingDates[0] != "2024-03-03" {
			t.Errorf("missing dates = %v, want [2024-03-03]", res.MissingDates)
		}
	})

	t.Run("full attendance grants", func(t *testing.T) {
		store := newFakeStore()
		mark(store, "e1", "2024-03-01", "2024-03-02", "2024-03-03")
		svc := NewService(store, 2)
		res, err := svc.Gate(context.Background(), "e1", "t1", start, end)
		if err != nil {
			t.Fatalf("Gate: %v", err)
		}
		if res.Decision != GateGranted || len(res.MissingDates) != 0 {
			t.Fatalf("result = %+v, want granted", res)
		}
	})

	t.Run("absent record denies", func(t *testing.T) {
		store := newFakeStore()
		mark(store, "e1", "2024-03-01", "2024-03-02")
		store.records[key("e1", "t1", day("2024-03-03"))] = Record{
			EmployeeID: "e1", TrainingID: "t1", Date: day("2024-03-03"), Status: StatusAbsent,
		}
		svc := NewService(store, 2)
		res, err := svc.Gate(context.Background(), "e1", "t1", start, end)
		if err != nil {
			t.Fatalf("Gate: %v", err)
		}
		if res.Decision != GateDenied {
			t.Fatalf("ABSENT day must deny, got %+v", res)
		}
	})

	t.Run("store failure is a verification error", func(t *testing.T) {
		store := newFakeStore()
		store.listErr = errors.New("timeout")
		svc := NewService(store, 2)
		if _, err := svc.Gate(context.Background(), "e1", "t1", start, end); err == nil {
			t.Fatal("store failure must surface as error, not denial")
		}
	})
}

func TestAutoMarkIfPast(t *testing.T) {
	now := day("2024-03-10")

	t.Run("past session backfills roster", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, 4)
		report, err := svc.AutoMarkIfPast(context.Background(), "t1",
			day("2024-03-01"), day("2024-03-02"), []string{"e1", "e2"}, now)
		if err != nil {
			t.Fatalf("AutoMarkIfPast: %v", err)
		}
		if report == nil || report.Attempted != 4 || report.Applied != 4 {
			t.Fatalf("report = %+v, want 4 PRESENT writes", report)
		}
		for _, rec := range store.records {
			if rec.Status != StatusPresent {
				t.Errorf("auto-mark wrote %s, want PRESENT", rec.Status)
			}
		}
	})

	t.Run("skipped when session not over", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, 4)
		report, err := svc.AutoMarkIfPast(context.Background(), "t1",
			day("2024-03-09"), day("2024-03-10"), []string{"e1"}, now)
		if err != nil || report != nil {
			t.Fatalf("end date today must not auto-mark, got %+v, %v", report, err)
		}
		if len(store.records) != 0 {
			t.Errorf("records written for a running session")
		}
	})

	t.Run("skipped for empty roster", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, 4)
		report, err := svc.AutoMarkIfPast(context.Background(), "t1",
			day("2024-03-01"), day("2024-03-02"), nil, now)
		if err != nil || report != nil {
			t.Fatalf("empty roster must not auto-mark, got %+v, %v", report, err)
		}
	})
}

func TestBuildSheetFillsMissingAsAbsent(t *testing.T) {
	store := newFakeStore()
	store.records[key("e1", "t1", day("2024-03-01"))] = Record{
		EmployeeID: "e1", TrainingID: "t1", Date: day("2024-03-01"), Status: StatusPresent,
	}
	svc := NewService(store, 2)

	sheet, err := svc.BuildSheet(context.Background(), "t1", day("2024-03-01"), day("2024-03-02"), []string{"e1", "e2"})
	if err != nil {
		t.Fatalf("BuildSheet: %v", err)
	}
	if len(sheet.Dates) != 2 || len(sheet.Rows) != 2 {
		t.Fatalf("sheet shape = %dx%d, want 2x2", len(sheet.Rows), len(sheet.Dates))
	}
	if sheet.Rows[0].Days["2024-03-01"] != StatusPresent {
		t.Errorf("marked cell lost: %+v", sheet.Rows[0])
	}
	if sheet.Rows[0].Days["2024-03-02"] != StatusAbsent {
		t.Errorf("missing cell for e1 = %s, want ABSENT", sheet.Rows[0].Days["2024-03-02"])
	}
	if sheet.Rows[1].Days["2024-03-01"] != StatusAbsent {
		t.Errorf("unmarked employee should read ABSENT")
	}
}
