package employee

import "time"

// Department groups employees; the SPA calls these "services".
type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Employee is a staff record. The id and CIN are immutable once created;
// profile fields are mutable.
type Employee struct {
	ID           string     `json:"id"`
	CIN          string     `json:"cin"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Function     string     `json:"function"`
	DepartmentID *string    `json:"department_id,omitempty"`
	HireDate     *time.Time `json:"hire_date,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Diploma is one degree held by an employee.
type Diploma struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Title      string `json:"title"`
	School     string `json:"school"`
	Year       *int   `json:"year,omitempty"`
}

// Experience is one prior position held by an employee.
type Experience struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	Company    string     `json:"company"`
	Role       string     `json:"role"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// DepartmentCount is one slice of the employees-per-department stat.
type DepartmentCount struct {
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
	Count        int    `json:"count"`
}
