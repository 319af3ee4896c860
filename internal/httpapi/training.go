package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hrms/internal/presence"
	"hrms/internal/queue"
	"hrms/internal/training"
)

type trainingRequest struct {
	Theme       string   `json:"theme" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	Status      string   `json:"status"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	TrainerID   *string  `json:"trainer_id"`
	EmployeeIDs []string `json:"employee_ids"`
	WithForm    bool     `json:"with_form"`
	Notify      bool     `json:"notify"`
}

// CreateTraining creates a session with its initial roster. Sessions whose
// end date already passed get their roster auto-marked PRESENT; the write
// report is returned so the coordinator sees any cells that failed. WithForm
// attaches an empty questionnaire, Notify queues invitation mail.
func (h *Handler) CreateTraining(c *gin.Context) {
	var req trainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := presence.ParseDay(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := presence.ParseDay(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	created, report, err := h.trainingSvc.Create(c.Request.Context(), training.CreateInput{
		Theme:       req.Theme,
		Location:    req.Location,
		Type:        req.Type,
		Status:      req.Status,
		StartDate:   start,
		EndDate:     end,
		TrainerID:   req.TrainerID,
		EmployeeIDs: req.EmployeeIDs,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.WithForm {
		if _, err := h.surveys.EnsureForm(c.Request.Context(), created.ID, created.Theme); err != nil {
			log.Printf("create form for training %s: %v", created.ID, err)
		}
	}
	if req.Notify {
		h.queueInvitations(c, created, req.EmployeeIDs)
	}

	resp := gin.H{"training": created}
	if report != nil {
		resp["auto_mark"] = report
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) queueInvitations(c *gin.Context, t training.Training, employeeIDs []string) {
	for _, empID := range employeeIDs {
		job := queue.InvitationJob{
			EmployeeID: empID,
			TrainingID: t.ID,
			Theme:      t.Theme,
			Location:   t.Location,
			StartDate:  t.StartDate.Format(presence.DayLayout),
			EndDate:    t.EndDate.Format(presence.DayLayout),
			QCMURL:     h.cfg.QCMBaseURL + "/" + t.ID,
		}
		body, err := json.Marshal(job)
		if err != nil {
			continue
		}
		if err := h.q.Publish(c.Request.Context(), queue.Message{Type: "invitation", Body: body}); err != nil {
			log.Printf("queue invitation for %s: %v", empID, err)
		}
	}
}

// ListTrainings returns all sessions.
func (h *Handler) ListTrainings(c *gin.Context) {
	trainings, err := h.trainings.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if trainings == nil {
		trainings = []training.Training{}
	}
	c.JSON(http.StatusOK, trainings)
}

// GetTraining returns one session.
func (h *Handler) GetTraining(c *gin.Context) {
	t, err := h.trainings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTraining overwrites the session's editable fields.
func (h *Handler) UpdateTraining(c *gin.Context) {
	var req trainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := presence.ParseDay(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := presence.ParseDay(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start date is after end date"})
		return
	}
	status := req.Status
	if status == "" {
		status = training.StatusPendingValidation
	}
	if !training.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown training status"})
		return
	}

	err = h.trainings.Update(c.Request.Context(), training.Training{
		ID:        c.Param("id"),
		Theme:     req.Theme,
		Location:  req.Location,
		Type:      req.Type,
		Status:    status,
		StartDate: start,
		EndDate:   end,
		TrainerID: req.TrainerID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteTraining removes a session.
func (h *Handler) DeleteTraining(c *gin.Context) {
	err := h.trainings.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetTrainingStatus applies a coordinator action (validate, reject, complete).
func (h *Handler) SetTrainingStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.trainingSvc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// TrainingStats returns session counts per lifecycle status.
func (h *Handler) TrainingStats(c *gin.Context) {
	stats, err := h.trainings.StatsByStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stats == nil {
		stats = []training.StatusCount{}
	}
	c.JSON(http.StatusOK, stats)
}

// -------- Trainers --------

type trainerRequest struct {
	CIN  string `json:"cin" binding:"required"`
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
}

// CreateTrainer registers a trainer.
func (h *Handler) CreateTrainer(c *gin.Context) {
	var req trainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.trainings.CreateTrainer(c.Request.Context(), training.Trainer{
		CIN:  req.CIN,
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateTrainer overwrites a trainer's fields.
func (h *Handler) UpdateTrainer(c *gin.Context) {
	var req trainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.trainings.UpdateTrainer(c.Request.Context(), training.Trainer{
		ID:   c.Param("id"),
		CIN:  req.CIN,
		Name: req.Name,
		Type: req.Type,
	})
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "trainer not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTrainer returns one trainer.
func (h *Handler) GetTrainer(c *gin.Context) {
	t, err := h.trainings.GetTrainer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trainer not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// ListTrainers returns all trainers.
func (h *Handler) ListTrainers(c *gin.Context) {
	trainers, err := h.trainings.ListTrainers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if trainers == nil {
		trainers = []training.Trainer{}
	}
	c.JSON(http.StatusOK, trainers)
}

// -------- Participants --------

type participantsRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"required"`
	Notify      bool     `json:"notify"`
}

// AddParticipants enrolls employees on a session's roster.
func (h *Handler) AddParticipants(c *gin.Context) {
	var req participantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.EmployeeIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one employee required"})
		return
	}

	t, err := h.trainings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}

	for _, empID := range req.EmployeeIDs {
		if err := h.trainings.AddParticipation(c.Request.Context(), empID, t.ID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "enroll " + empID + ": " + err.Error()})
			return
		}
	}
	if req.Notify {
		h.queueInvitations(c, *t, req.EmployeeIDs)
	}
	c.Status(http.StatusNoContent)
}

// ListParticipants returns the roster with employee profiles.
func (h *Handler) ListParticipants(c *gin.Context) {
	participants, err := h.trainings.ListParticipants(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if participants == nil {
		participants = []training.Participant{}
	}
	c.JSON(http.StatusOK, participants)
}

// DeleteParticipation removes one employee from the roster.
func (h *Handler) DeleteParticipation(c *gin.Context) {
	err := h.trainings.DeleteParticipation(c.Request.Context(), c.Param("employeeID"), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "participation not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
