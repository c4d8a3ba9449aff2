package clients

import (
	"strings"
	"time"
)

type Gender string

const (
	GenderFemale  Gender = "FEMALE"
	GenderMale    Gender = "MALE"
	GenderOther   Gender = "OTHER"
	GenderUnknown Gender = "UNKNOWN"
)

// Client es el paciente gestionado desde el dashboard.
type Client struct {
	ID string

	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Gender      Gender

	Phone   string
	Email   string
	Address string

	CreatedBy string // doctor id
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
