package programs

import "time"

// Program es un programa de salud (p.ej. "Diabetes tipo 2", "Control prenatal").
type Program struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string // doctor id
	CreatedAt   time.Time
}

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentWithdrawn EnrollmentStatus = "WITHDRAWN"
)

// Enrollment: inscripción de un cliente en un programa.
// Única por (client, program) mientras está ACTIVE.
type Enrollment struct {
	ID         string
	ClientID   string
	ProgramID  string
	Status     EnrollmentStatus
	Notes      string
	EnrolledBy string // doctor id
	EnrolledAt time.Time
}
