package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/memento-hq/funeraria-backend-go/internal/pkg/validator"
)

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"` // "2006-01-02"
	EndDate   string `json:"end_date"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodFilter struct {
	State     *string `json:"state,omitempty"`
	Year      *int    `json:"year,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
	SortBy    string  `json:"sort_by"`
	SortOrder string  `json:"sort_order"`
}

type PeriodResponse struct {
	ID                string          `json:"id"`
	OrganizationID    string          `json:"organization_id"`
	Name              string          `json:"name"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	State             string          `json:"state"`
	TotalGross        decimal.Decimal `json:"total_gross"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	TotalNet          decimal.Decimal `json:"total_net"`
	CollaboratorCount int             `json:"collaborator_count"`
	ApprovedCount     int             `json:"approved_count"`
	ClosedAt          *string         `json:"closed_at,omitempty"`
	ClosedBy          *string         `json:"closed_by,omitempty"`
	Notes             *string         `json:"notes,omitempty"`
}

type ListPeriodResponse struct {
	Data       []PeriodResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type ClosePeriodRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// ========== COMPUTATION DTOs ==========

type ComputePayrollRequest struct {
	IncludeInactive bool `json:"include_inactive"`
}

// ComputeResult reports how many records the run inserted versus refreshed.
// Re-running against unchanged inputs yields created = 0.
type ComputeResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ========== RECORD DTOs ==========

type UpdateAdjustmentsRequest struct {
	ID          string           `json:"-"`
	Bonuses     *decimal.Decimal `json:"bonuses,omitempty"`
	Commissions *decimal.Decimal `json:"commissions,omitempty"`
	Deductions  *decimal.Decimal `json:"deductions,omitempty"`
	Advances    *decimal.Decimal `json:"advances,omitempty"`
}

func (r *UpdateAdjustmentsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Bonuses == nil && r.Commissions == nil && r.Deductions == nil && r.Advances == nil {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "at least one adjustment field is required"})
	}
	if r.Bonuses != nil && r.Bonuses.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "bonuses", Message: "must be non-negative"})
	}
	if r.Commissions != nil && r.Commissions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "commissions", Message: "must be non-negative"})
	}
	if r.Deductions != nil && r.Deductions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "deductions", Message: "must be non-negative"})
	}
	if r.Advances != nil && r.Advances.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "advances", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordFilter struct {
	Approved *bool `json:"approved,omitempty"`
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
}

type RecordResponse struct {
	ID               string          `json:"id"`
	PeriodID         string          `json:"period_id"`
	CollaboratorID   string          `json:"collaborator_id"`
	CollaboratorName string          `json:"collaborator_name,omitempty"`
	EmploymentType   string          `json:"employment_type,omitempty"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	DaysWorked       int             `json:"days_worked"`
	ServiceCount     int             `json:"service_count"`
	ExtrasTotal      decimal.Decimal `json:"extras_total"`
	Bonuses          decimal.Decimal `json:"bonuses"`
	Commissions      decimal.Decimal `json:"commissions"`
	Deductions       decimal.Decimal `json:"deductions"`
	Advances         decimal.Decimal `json:"advances"`
	GrossTotal       decimal.Decimal `json:"gross_total"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetTotal         decimal.Decimal `json:"net_total"`
	Approved         bool            `json:"approved"`
	ApprovedAt       *string         `json:"approved_at,omitempty"`
	ApprovedBy       *string         `json:"approved_by,omitempty"`
}

type ListRecordResponse struct {
	Data       []RecordResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type ApproveAllResult struct {
	Approved int `json:"approved"`
}

// ========== RECEIPT DTOs ==========

type ReceiptResponse struct {
	ID               string          `json:"id"`
	PayrollRecordID  string          `json:"payroll_record_id"`
	PeriodID         string          `json:"period_id"`
	PeriodName       *string         `json:"period_name,omitempty"`
	CollaboratorID   string          `json:"collaborator_id"`
	CollaboratorName string          `json:"collaborator_name"`
	TaxID            string          `json:"tax_id"`
	PaymentMethod    string          `json:"payment_method"`
	GrossTotal       decimal.Decimal `json:"gross_total"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetTotal         decimal.Decimal `json:"net_total"`
	VerificationCode string          `json:"verification_code"`
	Status           string          `json:"status"`
	IssuedAt         string          `json:"issued_at"`
	SentAt           *string         `json:"sent_at,omitempty"`
	PaidAt           *string         `json:"paid_at,omitempty"`
}

type GenerateAllResult struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
}

type UpdateReceiptStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdateReceiptStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	switch ReceiptStatus(r.Status) {
	case ReceiptStatusSent, ReceiptStatusPaid:
	default:
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'sent' or 'paid'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
