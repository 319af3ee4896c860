package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hrms/internal/employee"
	"hrms/internal/presence"
)

type employeeRequest struct {
	CIN          string  `json:"cin" binding:"required"`
	FirstName    string  `json:"first_name" binding:"required"`
	LastName     string  `json:"last_name" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	Function     string  `json:"function"`
	DepartmentID *string `json:"department_id"`
	HireDate     string  `json:"hire_date"`
	BirthDate    string  `json:"birth_date"`
}

func parseOptionalDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := presence.ParseDay(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateEmployee registers a new employee.
func (h *Handler) CreateEmployee(c *gin.Context) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hire, err := parseOptionalDay(req.HireDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hire_date must be YYYY-MM-DD"})
		return
	}
	birth, err := parseOptionalDay(req.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "birth_date must be YYYY-MM-DD"})
		return
	}

	created, err := h.employees.Create(c.Request.Context(), employee.Employee{
		CIN:          req.CIN,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Function:     req.Function,
		DepartmentID: req.DepartmentID,
		HireDate:     hire,
		BirthDate:    birth,
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateEmployee overwrites profile fields; identity stays.
func (h *Handler) UpdateEmployee(c *gin.Context) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hire, err := parseOptionalDay(req.HireDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hire_date must be YYYY-MM-DD"})
		return
	}
	birth, err := parseOptionalDay(req.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "birth_date must be YYYY-MM-DD"})
		return
	}

	err = h.employees.Update(c.Request.Context(), employee.Employee{
		ID:           c.Param("id"),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Function:     req.Function,
		DepartmentID: req.DepartmentID,
		HireDate:     hire,
		BirthDate:    birth,
	})
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetEmployee returns one employee.
func (h *Handler) GetEmployee(c *gin.Context) {
	emp, err := h.employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	c.JSON(http.StatusOK, emp)
}

// GetEmployeeByCIN looks an employee up by national id.
func (h *Handler) GetEmployeeByCIN(c *gin.Context) {
	emp, err := h.employees.GetByCIN(c.Request.Context(), c.Param("cin"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no employee with this CIN"})
		return
	}
	c.JSON(http.StatusOK, emp)
}

// ListEmployees returns employees, optionally filtered by department.
func (h *Handler) ListEmployees(c *gin.Context) {
	emps, err := h.employees.List(c.Request.Context(), c.Query("department_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if emps == nil {
		emps = []employee.Employee{}
	}
	c.JSON(http.StatusOK, emps)
}

// DeleteEmployee removes an employee.
func (h *Handler) DeleteEmployee(c *gin.Context) {
	err := h.employees.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// EmployeePresences returns an employee's presences grouped per training.
func (h *Handler) EmployeePresences(c *gin.Context) {
	grouped, err := h.presences.ListByEmployeeGrouped(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if grouped == nil {
		grouped = []presence.TrainingPresences{}
	}
	c.JSON(http.StatusOK, grouped)
}

// -------- Departments --------

type departmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateDepartment adds a department.
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.employees.CreateDepartment(c.Request.Context(), employee.Department{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateDepartment renames a department.
func (h *Handler) UpdateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.employees.UpdateDepartment(c.Request.Context(), employee.Department{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
	})
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDepartments returns all departments.
func (h *Handler) ListDepartments(c *gin.Context) {
	deps, err := h.employees.ListDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if deps == nil {
		deps = []employee.Department{}
	}
	c.JSON(http.StatusOK, deps)
}

// DeleteDepartment removes a department.
func (h *Handler) DeleteDepartment(c *gin.Context) {
	err := h.employees.DeleteDepartment(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// DepartmentStats returns employee headcount per department.
func (h *Handler) DepartmentStats(c *gin.Context) {
	stats, err := h.employees.CountByDepartment(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stats == nil {
		stats = []employee.DepartmentCount{}
	}
	c.JSON(http.StatusOK, stats)
}

// -------- Profile sub-resources --------

type diplomaRequest struct {
	Title  string `json:"title" binding:"required"`
	School string `json:"school"`
	Year   *int   `json:"year"`
}

// AddDiploma attaches a diploma to an employee.
func (h *Handler) AddDiploma(c *gin.Context) {
	var req diplomaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.employees.AddDiploma(c.Request.Context(), employee.Diploma{
		EmployeeID: c.Param("id"),
		Title:      req.Title,
		School:     req.School,
		Year:       req.Year,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListDiplomas returns an employee's diplomas.
func (h *Handler) ListDiplomas(c *gin.Context) {
	diplomas, err := h.employees.ListDiplomas(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if diplomas == nil {
		diplomas = []employee.Diploma{}
	}
	c.JSON(http.StatusOK, diplomas)
}

// DeleteDiploma removes a diploma.
func (h *Handler) DeleteDiploma(c *gin.Context) {
	err := h.employees.DeleteDiploma(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "diploma not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type experienceRequest struct {
	Company   string `json:"company" binding:"required"`
	Role      string `json:"role"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// AddExperience attaches a prior position to an employee.
func (h *Handler) AddExperience(c *gin.Context) {
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := parseOptionalDay(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := parseOptionalDay(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	created, err := h.employees.AddExperience(c.Request.Context(), employee.Experience{
		EmployeeID: c.Param("id"),
		Company:    req.Company,
		Role:       req.Role,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListExperiences returns an employee's prior positions.
func (h *Handler) ListExperiences(c *gin.Context) {
	exps, err := h.employees.ListExperiences(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if exps == nil {
		exps = []employee.Experience{}
	}
	c.JSON(http.StatusOK, exps)
}

// DeleteExperience removes a prior position.
func (h *Handler) DeleteExperience(c *gin.Context) {
	err := h.employees.DeleteExperience(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "experience not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
