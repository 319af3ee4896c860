package httpapi

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hrms/internal/presence"
	"hrms/internal/survey"
)

// EnsureForm attaches a questionnaire to a training if it has none yet.
func (h *Handler) EnsureForm(c *gin.Context) {
	t, err := h.trainings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	form, err := h.surveys.EnsureForm(c.Request.Context(), t.ID, t.Theme)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, form)
}

// GetForm returns a training's questionnaire with questions and choices.
func (h *Handler) GetForm(c *gin.Context) {
	form, err := h.surveys.GetFormByTraining(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if form == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no questionnaire for this training"})
		return
	}
	c.JSON(http.StatusOK, form)
}

type questionRequest struct {
	Text     string   `json:"text" binding:"required"`
	Position int      `json:"position"`
	Answers  []string `json:"answers" binding:"required,min=2"`
}

// AddQuestion appends a question with its possible answers to a form.
func (h *Handler) AddQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := h.surveys.AddQuestion(c.Request.Context(), c.Param("id"), req.Text, req.Position, req.Answers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, q)
}

// DeleteQuestion removes a question and its choices.
func (h *Handler) DeleteQuestion(c *gin.Context) {
	err := h.surveys.DeleteQuestion(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAnswers returns every submitted answer for a form.
func (h *Handler) ListAnswers(c *gin.Context) {
	answers, err := h.surveys.ListAnswers(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if answers == nil {
		answers = []survey.UserAnswer{}
	}
	c.JSON(http.StatusOK, answers)
}

// -------- QCM access (public, CIN-identified) --------

type qcmAccessRequest struct {
	CIN        string `json:"cin" binding:"required"`
	TrainingID string `json:"training_id" binding:"required"`
}

// QCMAccess runs the full-attendance gate for a trainee identified by CIN.
// The three failure states are distinct: unknown employee or training (404),
// incomplete attendance (403 with the missing dates), and a verification
// error against the store (502).
func (h *Handler) QCMAccess(c *gin.Context) {
	var req qcmAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp, err := h.employees.GetByCIN(c.Request.Context(), req.CIN)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification failed: " + err.Error()})
		return
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no employee with this CIN"})
		return
	}
	t, err := h.trainings.Get(c.Request.Context(), req.TrainingID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification failed: " + err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}

	gate, err := h.presenceSvc.Gate(c.Request.Context(), emp.ID, t.ID, t.StartDate, t.EndDate)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification failed: " + err.Error()})
		return
	}
	if gate.Decision != presence.GateGranted {
		c.JSON(http.StatusForbidden, gin.H{
			"decision":      gate.Decision,
			"missing_dates": gate.MissingDates,
			"error":         "attendance required on every session date",
		})
		return
	}

	form, err := h.surveys.GetFormByTraining(c.Request.Context(), t.ID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification failed: " + err.Error()})
		return
	}
	resp := gin.H{"decision": gate.Decision, "employee_id": emp.ID}
	if form != nil {
		resp["form"] = form
	}
	c.JSON(http.StatusOK, resp)
}

type qcmSubmitRequest struct {
	CIN        string               `json:"cin" binding:"required"`
	TrainingID string               `json:"training_id" binding:"required"`
	Answers    []survey.AnswerInput `json:"answers" binding:"required,min=1"`
}

// QCMSubmit stores a trainee's questionnaire answers after re-checking the
// gate server-side.
func (h *Handler) QCMSubmit(c *gin.Context) {
	var req qcmSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp, err := h.employees.GetByCIN(c.Request.Context(), req.CIN)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification failed: " + err.Error()})
		return
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no employee with this CIN"})
		return
	}
	t, err := h.trainings.Get(c.Request.Context(), req.TrainingID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification failed: " + err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}

	err = h.surveySvc.Submit(c.Request.Context(), emp.ID, t.ID, t.StartDate, t.EndDate, req.Answers)
	switch {
	case errors.Is(err, survey.ErrNotEligible):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, survey.ErrFormNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusCreated)
	}
}
