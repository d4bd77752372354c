package booking

import (
	"context"
	"time"
)

type BookingService interface {
	Create(ctx context.Context, organizationID string, actorID string, req CreateBookingRequest) (BookingResponse, error)
	Get(ctx context.Context, organizationID string, id string) (BookingResponse, error)
	ListByResource(ctx context.Context, organizationID string, resourceType string, resourceID string, from, to time.Time) ([]BookingResponse, error)
	Cancel(ctx context.Context, organizationID string, id string) error
}
