package assignment

import "github.com/shopspring/decimal"

type AssignmentResponse struct {
	ID             string          `json:"id"`
	CollaboratorID string          `json:"collaborator_id"`
	ServiceID      string          `json:"service_id"`
	ExtraAmount    decimal.Decimal `json:"extra_amount"`
	AssignedAt     string          `json:"assigned_at"`
}
