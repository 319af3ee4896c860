package training

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"hrms/internal/presence"
)

// Repository persists trainings, trainers and participations in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const trainingCols = `id, theme, location, type, status, start_date, end_date, trainer_id, created_at`

func scanTraining(row interface{ Scan(...any) error }) (Training, error) {
	var t Training
	err := row.Scan(&t.ID, &t.Theme, &t.Location, &t.Type, &t.Status, &t.StartDate, &t.EndDate, &t.TrainerID, &t.CreatedAt)
	return t, err
}

// Create inserts a training session.
func (r *Repository) Create(ctx context.Context, t Training) (Training, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusPendingValidation
	}
	t.StartDate, t.EndDate = presence.Day(t.StartDate), presence.Day(t.EndDate)
	t.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trainings (id, theme, location, type, status, start_date, end_date, trainer_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, t.ID, t.Theme, t.Location, t.Type, t.Status, t.StartDate, t.EndDate, t.TrainerID, t.CreatedAt)
	if err != nil {
		return Training{}, err
	}
	return t, nil
}

// Update overwrites the session's editable fields.
func (r *Repository) Update(ctx context.Context, t Training) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE trainings
		SET theme = $2, location = $3, type = $4, status = $5, start_date = $6, end_date = $7, trainer_id = $8
		WHERE id = $1
	`, t.ID, t.Theme, t.Location, t.Type, t.Status, presence.Day(t.StartDate), presence.Day(t.EndDate), t.TrainerID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus sets only the lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE trainings SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Get returns a training by id, nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Training, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+trainingCols+` FROM trainings WHERE id = $1`, id)
	t, err := scanTraining(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// List returns all trainings, most recent first.
func (r *Repository) List(ctx context.Context) ([]Training, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+trainingCols+` FROM trainings ORDER BY start_date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Training
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// Delete removes a training and cascades to roster, presences and form.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// StatsByStatus returns session counts per lifecycle status.
func (r *Repository) StatsByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM trainings GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// -------- Trainers --------

// CreateTrainer inserts a trainer.
func (r *Repository) CreateTrainer(ctx context.Context, t Trainer) (Trainer, error) {
	if t.CIN == "" || t.Name == "" {
		return Trainer{}, errors.New("trainer cin and name required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trainers (id, cin, name, type, created_at) VALUES ($1,$2,$3,$4,$5)
	`, t.ID, t.CIN, t.Name, t.Type, t.CreatedAt)
	if err != nil {
		return Trainer{}, err
	}
	return t, nil
}

// UpdateTrainer overwrites a trainer's fields.
func (r *Repository) UpdateTrainer(ctx context.Context, t Trainer) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE trainers SET cin = $2, name = $3, type = $4 WHERE id = $1
	`, t.ID, t.CIN, t.Name, t.Type)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetTrainer returns a trainer by id, nil when absent.
func (r *Repository) GetTrainer(ctx context.Context, id string) (*Trainer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, cin, name, type, created_at FROM trainers WHERE id = $1`, id)
	var t Trainer
	if err := row.Scan(&t.ID, &t.CIN, &t.Name, &t.Type, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListTrainers returns all trainers.
func (r *Repository) ListTrainers(ctx context.Context) ([]Trainer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, cin, name, type, created_at FROM trainers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Trainer
	for rows.Next() {
		var t Trainer
		if err := rows.Scan(&t.ID, &t.CIN, &t.Name, &t.Type, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// -------- Participations --------

// AddParticipation enrolls an employee on a training's roster. Re-adding is
// a no-op.
func (r *Repository) AddParticipation(ctx context.Context, employeeID, trainingID string) error {
	if employeeID == "" || trainingID == "" {
		return errors.New("employee and training required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO participations (employee_id, training_id)
		VALUES ($1, $2)
		ON CONFLICT (employee_id, training_id) DO NOTHING
	`, employeeID, trainingID)
	return err
}

// DeleteParticipation removes an employee from the roster. Day-level
// presences are kept; roster membership is independent of marking.
func (r *Repository) DeleteParticipation(ctx context.Context, employeeID, trainingID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM participations WHERE employee_id = $1 AND training_id = $2
	`, employeeID, trainingID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListParticipants returns the roster with employee profiles joined.
func (r *Repository) ListParticipants(ctx context.Context, trainingID string) ([]Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.cin, e.first_name, e.last_name, e.email, e.function
		FROM participations p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.training_id = $1
		ORDER BY e.last_name, e.first_name
	`, trainingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.EmployeeID, &p.CIN, &p.FirstName, &p.LastName, &p.Email, &p.Function); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// ListParticipantIDs returns just the roster employee ids.
func (r *Repository) ListParticipantIDs(ctx context.Context, trainingID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT employee_id FROM participations WHERE training_id = $1 ORDER BY employee_id
	`, trainingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}
