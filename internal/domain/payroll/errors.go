package payroll

import "errors"

var (
	ErrInvalidPeriodRange       = errors.New("period end date is before start date")
	ErrPeriodNotFound           = errors.New("payroll period not found")
	ErrPeriodHasRecords         = errors.New("payroll period has records and cannot be deleted")
	ErrRecordNotFound           = errors.New("payroll record not found")
	ErrRecordApproved           = errors.New("payroll record already approved, cannot modify")
	ErrRecordNotApproved        = errors.New("payroll record is not approved")
	ErrReceiptNotFound          = errors.New("payment receipt not found")
	ErrReceiptAlreadyExists     = errors.New("payment receipt already exists for this record")
	ErrInvalidTransition        = errors.New("invalid payroll period state transition")
	ErrInvalidReceiptTransition = errors.New("invalid payment receipt status transition")
	ErrConflict                 = errors.New("concurrent write detected on payroll data")
)
