package employee

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists employees and departments in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const employeeCols = `id, cin, first_name, last_name, email, function, department_id, hire_date, birth_date, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.CIN, &e.FirstName, &e.LastName, &e.Email, &e.Function,
		&e.DepartmentID, &e.HireDate, &e.BirthDate, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Create inserts a new employee.
func (r *Repository) Create(ctx context.Context, e Employee) (Employee, error) {
	if e.CIN == "" {
		return Employee{}, errors.New("cin required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employees (id, cin, first_name, last_name, email, function, department_id, hire_date, birth_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, e.ID, e.CIN, e.FirstName, e.LastName, e.Email, e.Function, e.DepartmentID, e.HireDate, e.BirthDate, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

// Update overwrites the mutable profile fields. Identity (id, cin) stays.
func (r *Repository) Update(ctx context.Context, e Employee) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE employees
		SET first_name = $2, last_name = $3, email = $4, function = $5,
		    department_id = $6, hire_date = $7, birth_date = $8, updated_at = NOW()
		WHERE id = $1
	`, e.ID, e.FirstName, e.LastName, e.Email, e.Function, e.DepartmentID, e.HireDate, e.BirthDate)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Get returns an employee by id, nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Employee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeCols+` FROM employees WHERE id = $1`, id)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// GetByCIN returns an employee by national id, nil when absent. The QCM
// access check identifies trainees this way.
func (r *Repository) GetByCIN(ctx context.Context, cin string) (*Employee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeCols+` FROM employees WHERE cin = $1`, cin)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// GetByEmail returns an employee by email, nil when absent.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeCols+` FROM employees WHERE email = $1`, email)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// List returns employees, optionally filtered by department.
func (r *Repository) List(ctx context.Context, departmentID string) ([]Employee, error) {
	query := `SELECT ` + employeeCols + ` FROM employees`
	args := []any{}
	if departmentID != "" {
		query += ` WHERE department_id = $1`
		args = append(args, departmentID)
	}
	query += ` ORDER BY last_name, first_name`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// Delete removes an employee and cascades to profile sub-resources.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// -------- Departments --------

// CreateDepartment inserts a department.
func (r *Repository) CreateDepartment(ctx context.Context, d Department) (Department, error) {
	if d.Name == "" {
		return Department{}, errors.New("department name required")
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO departments (id, name, description, created_at) VALUES ($1,$2,$3,$4)
	`, d.ID, d.Name, d.Description, d.CreatedAt)
	if err != nil {
		return Department{}, err
	}
	return d, nil
}

// UpdateDepartment renames a department.
func (r *Repository) UpdateDepartment(ctx context.Context, d Department) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE departments SET name = $2, description = $3 WHERE id = $1
	`, d.ID, d.Name, d.Description)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetDepartment returns a department by id, nil when absent.
func (r *Repository) GetDepartment(ctx context.Context, id string) (*Department, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM departments WHERE id = $1`, id)
	var d Department
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// ListDepartments returns all departments.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// DeleteDepartment removes a department.
func (r *Repository) DeleteDepartment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByDepartment returns employee headcount per department.
func (r *Repository) CountByDepartment(ctx context.Context) ([]DepartmentCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.name, COUNT(e.id)
		FROM departments d
		LEFT JOIN employees e ON e.department_id = d.id
		GROUP BY d.id, d.name
		ORDER BY d.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []DepartmentCount
	for rows.Next() {
		var c DepartmentCount
		if err := rows.Scan(&c.DepartmentID, &c.Name, &c.Count); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
