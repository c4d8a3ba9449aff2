package visits

import "time"

// Visit es una consulta médica de un cliente con un doctor.
type Visit struct {
	ID        string
	ClientID  string
	DoctorID  string
	VisitDate time.Time
	Reason    string
	Diagnosis string
	Notes     string
	CreatedAt time.Time
}
