package booking

import "time"

// ResourceType enum - the kinds of resources the agenda can double-book.
type ResourceType string

const (
	ResourceTypeRoom         ResourceType = "room"
	ResourceTypeVehicle      ResourceType = "vehicle"
	ResourceTypeCollaborator ResourceType = "collaborator"
)

// Booking - a reservation of one resource for a time window. Windows are
// half-open [StartsAt, EndsAt): two bookings that merely touch do not
// conflict.
type Booking struct {
	ID             string
	OrganizationID string
	ResourceType   ResourceType
	ResourceID     string
	ServiceRef     *string
	StartsAt       time.Time
	EndsAt         time.Time
	Notes          *string
	CreatedBy      string
	CreatedAt      time.Time
}
