package payroll

import (
	"context"
)

// PayrollService is the payroll period processing engine. Organization and
// actor identities are explicit parameters on every call; the engine never
// reads them from ambient state and does not authenticate them.
type PayrollService interface {
	// Period store
	CreatePeriod(ctx context.Context, organizationID string, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriod(ctx context.Context, organizationID string, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, organizationID string, filter PeriodFilter) (ListPeriodResponse, error)
	DeletePeriod(ctx context.Context, organizationID string, id string) error

	// Record computer
	ComputePeriod(ctx context.Context, organizationID string, periodID string, req ComputePayrollRequest) (ComputeResult, error)
	GetRecord(ctx context.Context, organizationID string, id string) (RecordResponse, error)
	ListRecords(ctx context.Context, organizationID string, periodID string, filter RecordFilter) (ListRecordResponse, error)
	UpdateRecordAdjustments(ctx context.Context, organizationID string, req UpdateAdjustmentsRequest) (RecordResponse, error)

	// Approval gate
	ApproveRecord(ctx context.Context, organizationID string, recordID string, actorID string) (RecordResponse, error)
	ApproveAllRecords(ctx context.Context, organizationID string, periodID string, actorID string) (ApproveAllResult, error)

	// Receipt generator
	GenerateReceipt(ctx context.Context, organizationID string, recordID string) (ReceiptResponse, error)
	GenerateAllReceipts(ctx context.Context, organizationID string, periodID string) (GenerateAllResult, error)
	GetReceipt(ctx context.Context, organizationID string, id string) (ReceiptResponse, error)
	GetReceiptByRecord(ctx context.Context, organizationID string, recordID string) (ReceiptResponse, error)
	GetReceiptByVerificationCode(ctx context.Context, code string) (ReceiptResponse, error)
	ListReceipts(ctx context.Context, organizationID string, periodID string) ([]ReceiptResponse, error)
	UpdateReceiptStatus(ctx context.Context, organizationID string, req UpdateReceiptStatusRequest) (ReceiptResponse, error)

	// Period closer
	ClosePeriod(ctx context.Context, organizationID string, periodID string, actorID string, req ClosePeriodRequest) (PeriodResponse, error)
	MarkPeriodProcessed(ctx context.Context, organizationID string, periodID string) error
	MarkPeriodPaid(ctx context.Context, organizationID string, periodID string) error
}
