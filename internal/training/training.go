package training

import "time"

// Lifecycle statuses for a training session. The transition graph is driven
// by coordinator actions through dedicated endpoints; the stored value is
// validated against this set on every write.
const (
	StatusPendingValidation = "pending-validation"
	StatusRejected          = "rejected"
	StatusApproved          = "approved"
	StatusCompleted         = "completed"
)

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPendingValidation, StatusRejected, StatusApproved, StatusCompleted:
		return true
	}
	return false
}

// Trainer runs training sessions; internal staff or an external contractor.
type Trainer struct {
	ID        string    `json:"id"`
	CIN       string    `json:"cin"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Training is a scheduled internal training session (a "formation") with a
// date-only range and a roster tracked through participations.
type Training struct {
	ID        string    `json:"id"`
	Theme     string    `json:"theme"`
	Location  string    `json:"location"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TrainerID *string   `json:"trainer_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant is a roster member with their employee profile joined in.
type Participant struct {
	EmployeeID string `json:"employee_id"`
	CIN        string `json:"cin"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Function   string `json:"function"`
}

// StatusCount is one slice of the trainings-by-status stat.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
