package presence

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository persists presence records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert creates or overwrites the record for its composite key.
func (r *Repository) Upsert(ctx context.Context, rec Record) error {
	if rec.EmployeeID == "" || rec.TrainingID == "" {
		return errors.New("employee and training required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO presences (employee_id, training_id, date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, training_id, date) DO UPDATE SET status = EXCLUDED.status
	`, rec.EmployeeID, rec.TrainingID, Day(rec.Date), rec.Status)
	return err
}

// ListByTraining returns all records for one training.
func (r *Repository) ListByTraining(ctx context.Context, trainingID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT employee_id, training_id, date, status, created_at
		FROM presences
		WHERE training_id = $1
		ORDER BY date, employee_id
	`, trainingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListForEmployeeTraining returns one employee's records for one training.
func (r *Repository) ListForEmployeeTraining(ctx context.Context, employeeID, trainingID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT employee_id, training_id, date, status, created_at
		FROM presences
		WHERE employee_id = $1 AND training_id = $2
		ORDER BY date
	`, employeeID, trainingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Get returns a single record, or nil when the day was never marked.
func (r *Repository) Get(ctx context.Context, employeeID, trainingID string, date time.Time) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT employee_id, training_id, date, status, created_at
		FROM presences
		WHERE employee_id = $1 AND training_id = $2 AND date = $3
	`, employeeID, trainingID, Day(date))
	var rec Record
	if err := row.Scan(&rec.EmployeeID, &rec.TrainingID, &rec.Date, &rec.Status, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// TrainingPresences groups one employee's records under the training they
// belong to, with enough training metadata for a profile view.
type TrainingPresences struct {
	TrainingID string    `json:"training_id"`
	Theme      string    `json:"theme"`
	Location   string    `json:"location"`
	Type       string    `json:"type"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Presences  []Record  `json:"presences"`
}

// ListByEmployeeGrouped returns an employee's presences grouped per training.
func (r *Repository) ListByEmployeeGrouped(ctx context.Context, employeeID string) ([]TrainingPresences, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.theme, t.location, t.type, t.start_date, t.end_date,
		       p.employee_id, p.date, p.status, p.created_at
		FROM presences p
		JOIN trainings t ON t.id = p.training_id
		WHERE p.employee_id = $1
		ORDER BY t.start_date, t.id, p.date
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []TrainingPresences
	for rows.Next() {
		var tp TrainingPresences
		var rec Record
		if err := rows.Scan(&tp.TrainingID, &tp.Theme, &tp.Location, &tp.Type, &tp.StartDate, &tp.EndDate,
			&rec.EmployeeID, &rec.Date, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.TrainingID = tp.TrainingID
		if n := len(res); n > 0 && res[n-1].TrainingID == tp.TrainingID {
			res[n-1].Presences = append(res[n-1].Presences, rec)
			continue
		}
		tp.Presences = []Record{rec}
		res = append(res, tp)
	}
	return res, rows.Err()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.EmployeeID, &rec.TrainingID, &rec.Date, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
