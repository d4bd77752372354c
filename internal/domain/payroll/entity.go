package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodState enum. Only forward edges exist:
// open -> closed -> processed -> paid.
type PeriodState string

const (
	PeriodStateOpen      PeriodState = "open"
	PeriodStateClosed    PeriodState = "closed"
	PeriodStateProcessed PeriodState = "processed"
	PeriodStatePaid      PeriodState = "paid"
)

// CanTransitionTo reports whether the state machine allows moving from s to
// next. closed -> processed and processed -> paid are driven by external
// pipelines; the engine only validates the edge.
func (s PeriodState) CanTransitionTo(next PeriodState) bool {
	switch s {
	case PeriodStateOpen:
		return next == PeriodStateClosed
	case PeriodStateClosed:
		return next == PeriodStateProcessed
	case PeriodStateProcessed:
		return next == PeriodStatePaid
	default:
		return false
	}
}

// PayrollPeriod - a fixed date range over which payroll is computed and
// settled. Aggregate totals are derived from child records at query time,
// never stored on the row.
type PayrollPeriod struct {
	ID             string
	OrganizationID string
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	State          PeriodState
	ClosedAt       *time.Time
	ClosedBy       *string
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PeriodTotals - aggregates recomputed from child records.
type PeriodTotals struct {
	TotalGross        decimal.Decimal
	TotalDeductions   decimal.Decimal
	TotalNet          decimal.Decimal
	CollaboratorCount int
	ApprovedCount     int
}

// PeriodWithTotals - a period joined with its derived aggregates.
type PeriodWithTotals struct {
	PayrollPeriod
	Totals PeriodTotals
}

// PayrollRecord - one per (period, collaborator). BaseSalary, DaysWorked,
// ServiceCount and ExtrasTotal are captured from the directory and the
// assignment ledger at computation time; Bonuses, Commissions, Deductions and
// Advances are entered manually and survive recomputation.
type PayrollRecord struct {
	ID             string
	PeriodID       string
	CollaboratorID string

	BaseSalary   decimal.Decimal
	DaysWorked   int
	ServiceCount int
	ExtrasTotal  decimal.Decimal
	Bonuses      decimal.Decimal
	Commissions  decimal.Decimal
	Deductions   decimal.Decimal
	Advances     decimal.Decimal

	GrossTotal      decimal.Decimal
	TotalDeductions decimal.Decimal
	NetTotal        decimal.Decimal

	Approved   bool
	ApprovedAt *time.Time
	ApprovedBy *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	CollaboratorName *string
	EmploymentType   *string
}

// ReceiptStatus enum, coarser than the record's approval flag. issued is the
// state at generation; sent and paid are external status updates.
type ReceiptStatus string

const (
	ReceiptStatusPending ReceiptStatus = "pending"
	ReceiptStatusIssued  ReceiptStatus = "issued"
	ReceiptStatusSent    ReceiptStatus = "sent"
	ReceiptStatusPaid    ReceiptStatus = "paid"
)

// CanTransitionTo reports whether a receipt status edge is allowed.
func (s ReceiptStatus) CanTransitionTo(next ReceiptStatus) bool {
	switch s {
	case ReceiptStatusPending:
		return next == ReceiptStatusIssued
	case ReceiptStatusIssued:
		return next == ReceiptStatusSent
	case ReceiptStatusSent:
		return next == ReceiptStatusPaid
	default:
		return false
	}
}

// PaymentReceipt - immutable financial snapshot of an approved payroll
// record, issued exactly once. Later edits to the record never flow back into
// an issued receipt.
type PaymentReceipt struct {
	ID              string
	PayrollRecordID string
	PeriodID        string
	CollaboratorID  string

	CollaboratorName string
	TaxID            string
	PaymentMethod    string

	GrossTotal      decimal.Decimal
	TotalDeductions decimal.Decimal
	NetTotal        decimal.Decimal

	VerificationCode string
	Status           ReceiptStatus
	IssuedAt         time.Time
	SentAt           *time.Time
	PaidAt           *time.Time
	CreatedAt        time.Time

	// Joined fields
	PeriodName *string
}
