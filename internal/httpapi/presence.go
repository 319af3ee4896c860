package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hrms/internal/export"
	"hrms/internal/presence"
)

// ListPresences returns the raw presence rows for a training.
func (h *Handler) ListPresences(c *gin.Context) {
	records, err := h.presences.ListByTraining(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []presence.Record{}
	}
	c.JSON(http.StatusOK, records)
}

// PresenceSheet returns the roster x date grid for a training. Unmarked
// cells read ABSENT.
func (h *Handler) PresenceSheet(c *gin.Context) {
	t, err := h.trainings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	roster, err := h.trainings.ListParticipantIDs(c.Request.Context(), t.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sheet, err := h.presenceSvc.BuildSheet(c.Request.Context(), t.ID, t.StartDate, t.EndDate, roster)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sheet)
}

// GetPresence returns one record by (employee, date), 404 when that day was
// never marked.
func (h *Handler) GetPresence(c *gin.Context) {
	employeeID := c.Query("employee_id")
	dateStr := c.Query("date")
	if employeeID == "" || dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_id and date query params required"})
		return
	}
	date, err := presence.ParseDay(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	rec, err := h.presences.Get(c.Request.Context(), employeeID, c.Param("id"), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "presence not marked for this date"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

type markRequest struct {
	Cells []markCell `json:"cells" binding:"required"`
}

type markCell struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

// MarkPresences applies an explicit per-cell status map from the editable
// sheet. The response reports exactly which cells failed, if any.
func (h *Handler) MarkPresences(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cells := make([]presence.Cell, 0, len(req.Cells))
	for _, in := range req.Cells {
		date, err := presence.ParseDay(in.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD: " + in.Date})
			return
		}
		cells = append(cells, presence.Cell{EmployeeID: in.EmployeeID, Date: date, Status: in.Status})
	}
	report, err := h.presenceSvc.MarkCells(c.Request.Context(), c.Param("id"), cells)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

type autoMarkRequest struct {
	Date        string   `json:"date" binding:"required"`
	EmployeeIDs []string `json:"employee_ids" binding:"required"`
}

// AutoMarkDay marks a set of employees PRESENT for one session day, the
// server-side batch the sheet uses instead of per-cell calls.
func (h *Handler) AutoMarkDay(c *gin.Context) {
	var req autoMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := presence.ParseDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	report, err := h.presenceSvc.MarkAll(c.Request.Context(), c.Param("id"), req.EmployeeIDs,
		[]time.Time{date}, presence.StatusPresent)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportPresenceSheet streams the training's attendance grid as XLSX.
func (h *Handler) ExportPresenceSheet(c *gin.Context) {
	t, err := h.trainings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	roster, err := h.trainings.ListParticipants(c.Request.Context(), t.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ids := make([]string, len(roster))
	for i, p := range roster {
		ids[i] = p.EmployeeID
	}
	sheet, err := h.presenceSvc.BuildSheet(c.Request.Context(), t.ID, t.StartDate, t.EndDate, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	f, err := export.AttendanceSheet(*t, sheet, roster)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="attendance-`+t.ID+`.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		log.Printf("write xlsx: %v", err)
	}
}
