package presence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Store is the persistence surface the service needs. *Repository satisfies
// it; tests substitute an in-memory fake.
type Store interface {
	Upsert(ctx context.Context, rec Record) error
	ListByTraining(ctx context.Context, trainingID string) ([]Record, error)
	ListForEmployeeTraining(ctx context.Context, employeeID, trainingID string) ([]Record, error)
}

// Service coordinates batch marking, sheet assembly and the attendance gate.
type Service struct {
	store       Store
	concurrency int
}

// NewService creates a service backed by a store.
func NewService(store Store, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Service{store: store, concurrency: concurrency}
}

// Cell is one (employee, date) mark.
type Cell struct {
	EmployeeID string    `json:"employee_id"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
}

// Failure records one cell that could not be persisted.
type Failure struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Error      string `json:"error"`
}

// WriteReport aggregates the outcome of a batch mark. A batch settles every
// cell regardless of individual failures; the report tells the caller exactly
// which cells need re-attempting.
type WriteReport struct {
	Attempted int       `json:"attempted"`
	Applied   int       `json:"applied"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Ok reports whether every cell was persisted.
func (r WriteReport) Ok() bool { return len(r.Failures) == 0 }

// MarkAll upserts status for every (employee, date) pair in employeeIDs×dates
// for one training. Writes run concurrently with bounded fan-out; a failing
// pair never aborts the rest.
func (s *Service) MarkAll(ctx context.Context, trainingID string, employeeIDs []string, dates []time.Time, status string) (WriteReport, error) {
	if len(employeeIDs) == 0 {
		return WriteReport{}, errors.New("at least one employee required")
	}
	if len(dates) == 0 {
		return WriteReport{}, errors.New("at least one date required")
	}
	cells := make([]Cell, 0, len(employeeIDs)*len(dates))
	for _, emp := range employeeIDs {
		for _, d := range dates {
			cells = append(cells, Cell{EmployeeID: emp, Date: d, Status: status})
		}
	}
	return s.MarkCells(ctx, trainingID, cells)
}

// MarkCells upserts an explicit per-cell status map, used by the editable
// attendance sheet.
func (s *Service) MarkCells(ctx context.Context, trainingID string, cells []Cell) (WriteReport, error) {
	if trainingID == "" {
		return WriteReport{}, errors.New("training id required")
	}
	if len(cells) == 0 {
		return WriteReport{}, errors.New("no cells to mark")
	}
	for _, c := range cells {
		if !ValidStatus(c.Status) {
			return WriteReport{}, fmt.Errorf("unknown presence status %q", c.Status)
		}
	}

	report := WriteReport{Attempted: len(cells)}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, cell := range cells {
		cell := cell
		g.Go(func() error {
			err := s.store.Upsert(ctx, Record{
				EmployeeID: cell.EmployeeID,
				TrainingID: trainingID,
				Date:       Day(cell.Date),
				Status:     cell.Status,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				writesTotal.WithLabelValues("error").Inc()
				report.Failures = append(report.Failures, Failure{
					EmployeeID: cell.EmployeeID,
					Date:       Day(cell.Date).Format(DayLayout),
					Error:      err.Error(),
				})
				return nil
			}
			writesTotal.WithLabelValues("ok").Inc()
			report.Applied++
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(report.Failures, func(i, j int) bool {
		if report.Failures[i].EmployeeID != report.Failures[j].EmployeeID {
			return report.Failures[i].EmployeeID < report.Failures[j].EmployeeID
		}
		return report.Failures[i].Date < report.Failures[j].Date
	})
	return report, nil
}

// SheetRow is one employee line in an attendance sheet.
type SheetRow struct {
	EmployeeID string            `json:"employee_id"`
	Days       map[string]string `json:"days"`
}

// Sheet is the roster × date grid for one training. Dates the roster was
// never marked for read as ABSENT.
type Sheet struct {
	TrainingID string     `json:"training_id"`
	Dates      []string   `json:"dates"`
	Rows       []SheetRow `json:"rows"`
}

// BuildSheet aggregates the training's records into a per-employee grid over
// the full inclusive date range.
func (s *Service) BuildSheet(ctx context.Context, trainingID string, start, end time.Time, employeeIDs []string) (Sheet, error) {
	records, err := s.store.ListByTraining(ctx, trainingID)
	if err != nil {
		return Sheet{}, err
	}
	marked := make(map[string]string, len(records))
	for _, rec := range records {
		marked[rec.EmployeeID+"|"+Day(rec.Date).Format(DayLayout)] = rec.Status
	}

	days := ExpandRange(start, end)
	sheet := Sheet{TrainingID: trainingID, Dates: make([]string, len(days))}
	for i, d := range days {
		sheet.Dates[i] = d.Format(DayLayout)
	}
	for _, emp := range employeeIDs {
		row := SheetRow{EmployeeID: emp, Days: make(map[string]string, len(days))}
		for _, d := range sheet.Dates {
			status, ok := marked[emp+"|"+d]
			if !ok {
				status = StatusAbsent
			}
			row.Days[d] = status
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// Gate decisions.
const (
	GateGranted = "granted"
	GateDenied  = "denied"
)

// GateResult is the outcome of a full-attendance check. Decision is denied
// as soon as one date in the range lacks a PRESENT record; MissingDates lists
// every such date.
type GateResult struct {
	Decision     string   `json:"decision"`
	MissingDates []string `json:"missing_dates,omitempty"`
}

// Gate requires a PRESENT record for every day from start to end inclusive.
// A store failure is a verification error, returned as err and distinct from
// a denial.
func (s *Service) Gate(ctx context.Context, employeeID, trainingID string, start, end time.Time) (GateResult, error) {
	records, err := s.store.ListForEmployeeTraining(ctx, employeeID, trainingID)
	if err != nil {
		return GateResult{}, fmt.Errorf("verify presences: %w", err)
	}
	present := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.Status == StatusPresent {
			present[Day(rec.Date).Format(DayLayout)] = true
		}
	}

	result := GateResult{Decision: GateGranted}
	for _, d := range ExpandRange(start, end) {
		day := d.Format(DayLayout)
		if !present[day] {
			result.Decision = GateDenied
			result.MissingDates = append(result.MissingDates, day)
		}
	}
	return result, nil
}

// AutoMarkIfPast backfills PRESENT for the whole roster across the full date
// range when the training already ended before now. It is an assumption of
// full attendance for sessions entered after the fact, not a measurement.
// Returns nil when the conditions do not hold.
func (s *Service) AutoMarkIfPast(ctx context.Context, trainingID string, start, end time.Time, employeeIDs []string, now time.Time) (*WriteReport, error) {
	if len(employeeIDs) == 0 || !Day(end).Before(Day(now)) {
		return nil, nil
	}
	report, err := s.MarkAll(ctx, trainingID, employeeIDs, ExpandRange(start, end), StatusPresent)
	if err != nil {
		return nil, err
	}
	if !report.Ok() {
		log.Printf("auto-mark training %s: %d of %d writes failed", trainingID, len(report.Failures), report.Attempted)
	}
	return &report, nil
}
