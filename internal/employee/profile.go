package employee

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// AddDiploma attaches a diploma to an employee.
func (r *Repository) AddDiploma(ctx context.Context, d Diploma) (Diploma, error) {
	if d.EmployeeID == "" || d.Title == "" {
		return Diploma{}, errors.New("employee and title required")
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO diplomas (id, employee_id, title, school, year) VALUES ($1,$2,$3,$4,$5)
	`, d.ID, d.EmployeeID, d.Title, d.School, d.Year)
	if err != nil {
		return Diploma{}, err
	}
	return d, nil
}

// ListDiplomas returns an employee's diplomas.
func (r *Repository) ListDiplomas(ctx context.Context, employeeID string) ([]Diploma, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, employee_id, title, school, year FROM diplomas WHERE employee_id = $1 ORDER BY year
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Diploma
	for rows.Next() {
		var d Diploma
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.Title, &d.School, &d.Year); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// DeleteDiploma removes one diploma.
func (r *Repository) DeleteDiploma(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM diplomas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddExperience attaches a prior position to an employee.
func (r *Repository) AddExperience(ctx context.Context, e Experience) (Experience, error) {
	if e.EmployeeID == "" || e.Company == "" {
		return Experience{}, errors.New("employee and company required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO experiences (id, employee_id, company, role, start_date, end_date)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.ID, e.EmployeeID, e.Company, e.Role, e.StartDate, e.EndDate)
	if err != nil {
		return Experience{}, err
	}
	return e, nil
}

// ListExperiences returns an employee's prior positions.
func (r *Repository) ListExperiences(ctx context.Context, employeeID string) ([]Experience, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, employee_id, company, role, start_date, end_date
		FROM experiences WHERE employee_id = $1 ORDER BY start_date
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Experience
	for rows.Next() {
		var e Experience
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Company, &e.Role, &e.StartDate, &e.EndDate); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// DeleteExperience removes one prior position.
func (r *Repository) DeleteExperience(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM experiences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
