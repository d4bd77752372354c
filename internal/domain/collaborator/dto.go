package collaborator

import "github.com/shopspring/decimal"

type CollaboratorResponse struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	FullName       string          `json:"full_name"`
	TaxID          string          `json:"tax_id"`
	EmploymentType string          `json:"employment_type"`
	PaymentMethod  string          `json:"payment_method"`
	BaseSalary     decimal.Decimal `json:"base_salary"`
	Active         bool            `json:"active"`
}
