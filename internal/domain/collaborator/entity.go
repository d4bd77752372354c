package collaborator

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentType enum
type EmploymentType string

const (
	EmploymentTypeEmployee      EmploymentType = "employee"
	EmploymentTypeFeeForService EmploymentType = "fee_for_service"
)

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
)

// Collaborator - a staff member assignable to funeral services, either a
// salaried employee or a fee-for-service worker. The directory is maintained
// by the staff administration side of the back office; the payroll engine
// only reads it.
type Collaborator struct {
	ID             string
	OrganizationID string
	FullName       string
	TaxID          string
	EmploymentType EmploymentType
	PaymentMethod  PaymentMethod
	BaseSalary     decimal.Decimal
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsSalaried reports whether the collaborator draws a fixed base salary.
// Fee-for-service workers are paid through per-service extras only.
func (c Collaborator) IsSalaried() bool {
	return c.EmploymentType == EmploymentTypeEmployee
}
