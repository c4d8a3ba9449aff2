package laborders

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityRoutine Priority = "ROUTINE"
	PriorityUrgent  Priority = "URGENT"
	PriorityStat    Priority = "STAT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityRoutine, PriorityUrgent, PriorityStat:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var ValidStatuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// LabOrder es una orden de laboratorio. Tests son los parámetros esperados
// (p.ej. "glucose", "hba1c"); puede estar vacía.
type LabOrder struct {
	ID       string
	ClientID string
	DoctorID string
	VisitID  string // opcional

	Tests    []string
	Priority Priority
	Status   Status
	Notes    string

	OrderedAt   time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

type Result struct {
	ID         string
	LabOrderID string

	Parameter      string
	Value          string
	Unit           string
	ReferenceRange string
	IsAbnormal     bool
	Notes          string
	VerifiedBy     string

	ResultedAt time.Time
}

func normalizeTest(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
