package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access for periods, records and receipts.
// Records and receipts are scoped to an organization through their period, so
// every method takes organizationID to prevent cross-organization access.
//
// The uniqueness invariants (one record per period x collaborator, one
// receipt per record, globally unique verification codes) are enforced by
// database constraints; methods surface violations as domain errors instead
// of re-checking in Go.
type PayrollRepository interface {
	// Periods
	CreatePeriod(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)
	GetPeriodByID(ctx context.Context, id string, organizationID string) (PayrollPeriod, error)
	ListPeriods(ctx context.Context, organizationID string, filter PeriodFilter) ([]PeriodWithTotals, int64, error)
	GetPeriodTotals(ctx context.Context, periodID string, organizationID string) (PeriodTotals, error)
	// ClosePeriod performs the one-way open -> closed transition as a single
	// conditional update. Returns ErrInvalidTransition when the period exists
	// but is not open.
	ClosePeriod(ctx context.Context, id string, organizationID string, closedBy string, notes *string) (PayrollPeriod, error)
	// UpdatePeriodState applies an external forward edge (closed -> processed,
	// processed -> paid) with the same conditional-update shape.
	UpdatePeriodState(ctx context.Context, id string, organizationID string, from, to PeriodState) error
	DeletePeriod(ctx context.Context, id string, organizationID string) error

	// Records
	// UpsertComputedRecord atomically inserts or refreshes the computed fields
	// (base_salary, days_worked, service_count, extras_total) of the record
	// for (period, collaborator). Manual adjustment fields are never touched
	// on the update path. Reports whether a new row was inserted.
	UpsertComputedRecord(ctx context.Context, record PayrollRecord) (bool, error)
	GetRecordByID(ctx context.Context, id string, organizationID string) (PayrollRecord, error)
	ListRecords(ctx context.Context, periodID string, organizationID string, filter RecordFilter) ([]PayrollRecord, int64, error)
	UpdateRecordAdjustments(ctx context.Context, organizationID string, req UpdateAdjustmentsRequest) error
	// ApproveRecord stamps approval only when the record is still unapproved.
	// Reports whether this call performed the approval; re-approving is a
	// no-op that leaves approved_at untouched.
	ApproveRecord(ctx context.Context, id string, organizationID string, approvedBy string, approvedAt time.Time) (bool, error)
	ApproveAllRecords(ctx context.Context, periodID string, organizationID string, approvedBy string, approvedAt time.Time) (int, error)
	ListApprovedRecordsWithoutReceipt(ctx context.Context, periodID string, organizationID string) ([]PayrollRecord, error)

	// Receipts
	CreateReceipt(ctx context.Context, receipt PaymentReceipt) (PaymentReceipt, error)
	GetReceiptByID(ctx context.Context, id string, organizationID string) (PaymentReceipt, error)
	GetReceiptByRecordID(ctx context.Context, recordID string, organizationID string) (PaymentReceipt, error)
	// GetReceiptByVerificationCode is intentionally unscoped: the code is the
	// credential a collaborator uses to confirm receipt authenticity.
	GetReceiptByVerificationCode(ctx context.Context, code string) (PaymentReceipt, error)
	ListReceipts(ctx context.Context, periodID string, organizationID string) ([]PaymentReceipt, error)
	UpdateReceiptStatus(ctx context.Context, id string, organizationID string, from, to ReceiptStatus, at time.Time) error
}
