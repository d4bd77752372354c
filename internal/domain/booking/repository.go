package booking

import (
	"context"
	"time"
)

type BookingRepository interface {
	Create(ctx context.Context, b Booking) (Booking, error)
	GetByID(ctx context.Context, id string, organizationID string) (Booking, error)
	// HasOverlap reports whether any booking of the same resource intersects
	// the half-open window [startsAt, endsAt).
	HasOverlap(ctx context.Context, organizationID string, resourceType ResourceType, resourceID string, startsAt, endsAt time.Time) (bool, error)
	ListByResource(ctx context.Context, organizationID string, resourceType ResourceType, resourceID string, from, to time.Time) ([]Booking, error)
	Delete(ctx context.Context, id string, organizationID string) error
}
