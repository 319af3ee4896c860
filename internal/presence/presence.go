package presence

import "time"

// Presence statuses. A row only exists once a day has been marked; a missing
// row reads as ABSENT everywhere (sheet and gate alike).
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
)

// ValidStatus reports whether s is a known presence status.
func ValidStatus(s string) bool {
	return s == StatusPresent || s == StatusAbsent
}

// Record is one (employee, training, date) attendance entry.
type Record struct {
	EmployeeID string    `json:"employee_id"`
	TrainingID string    `json:"training_id"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
