package prescriptions

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusDispensed Status = "DISPENSED"
	StatusCancelled Status = "CANCELLED"
)

// ValidStatuses en el orden en que se listan al cliente.
var ValidStatuses = []Status{StatusPending, StatusDispensed, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ValidStatusNames devuelve ValidStatuses como []string (para respuestas de error).
func ValidStatusNames() []string {
	out := make([]string, 0, len(ValidStatuses))
	for _, s := range ValidStatuses {
		out = append(out, string(s))
	}
	return out
}

type Medicine struct {
	ID          string
	Name        string
	GenericName string
	Form        string // tablet, syrup, injection...
	Strength    string // "500 mg"
	CreatedAt   time.Time
}

type Prescription struct {
	ID       string
	VisitID  string
	ClientID string
	DoctorID string
	Status   Status
	Notes    string

	IssuedAt  time.Time
	UpdatedAt time.Time

	Items []Item
}

// Item es una línea de la receta.
type Item struct {
	ID             string
	PrescriptionID string
	MedicineID     string
	Dosage         string
	Frequency      string
	Duration       string
	Quantity       int
	Instructions   string
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
