package booking

import (
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/validator"
)

type CreateBookingRequest struct {
	ResourceType string  `json:"resource_type"`
	ResourceID   string  `json:"resource_id"`
	ServiceRef   *string `json:"service_ref,omitempty"`
	StartsAt     string  `json:"starts_at"` // RFC3339
	EndsAt       string  `json:"ends_at"`
	Notes        *string `json:"notes,omitempty"`
}

func (r *CreateBookingRequest) Validate() error {
	var errs validator.ValidationErrors

	switch ResourceType(r.ResourceType) {
	case ResourceTypeRoom, ResourceTypeVehicle, ResourceTypeCollaborator:
	default:
		errs = append(errs, validator.ValidationError{Field: "resource_type", Message: "must be 'room', 'vehicle' or 'collaborator'"})
	}
	if validator.IsEmpty(r.ResourceID) {
		errs = append(errs, validator.ValidationError{Field: "resource_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDateTime(r.StartsAt); !ok {
		errs = append(errs, validator.ValidationError{Field: "starts_at", Message: "must be a valid RFC3339 timestamp"})
	}
	if _, ok := validator.IsValidDateTime(r.EndsAt); !ok {
		errs = append(errs, validator.ValidationError{Field: "ends_at", Message: "must be a valid RFC3339 timestamp"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BookingResponse struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	ResourceType   string  `json:"resource_type"`
	ResourceID     string  `json:"resource_id"`
	ServiceRef     *string `json:"service_ref,omitempty"`
	StartsAt       string  `json:"starts_at"`
	EndsAt         string  `json:"ends_at"`
	Notes          *string `json:"notes,omitempty"`
	CreatedBy      string  `json:"created_by"`
}
