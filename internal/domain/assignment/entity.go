package assignment

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceAssignment - one collaborator assigned to one funeral service, with
// the supplemental payment owed for that service. Written by the scheduling
// side of the back office; the payroll engine reads it within a period's
// date range.
type ServiceAssignment struct {
	ID             string
	OrganizationID string
	CollaboratorID string
	ServiceID      string
	ExtraAmount    decimal.Decimal
	AssignedAt     time.Time
	CreatedAt      time.Time
}

// AssignmentSummary - per-collaborator aggregate over a date range, the raw
// input to payroll record computation.
type AssignmentSummary struct {
	CollaboratorID string
	ServiceCount   int
	ExtrasTotal    decimal.Decimal
	DaysWorked     int
}
