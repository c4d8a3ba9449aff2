package doctors

import (
	"strings"
	"time"
)

// Doctor es el perfil clínico asociado a una identidad del proveedor (UserID = subject).
type Doctor struct {
	ID     string
	UserID string

	Email          string
	FirstName      string
	LastName       string
	Specialization string
	LicenseNumber  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}
