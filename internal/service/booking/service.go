package booking

import (
	"context"
	"time"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/booking"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/validator"
)

type BookingServiceImpl struct {
	bookingRepo booking.BookingRepository
}

func NewBookingService(bookingRepo booking.BookingRepository) booking.BookingService {
	return &BookingServiceImpl{bookingRepo: bookingRepo}
}

func (s *BookingServiceImpl) Create(ctx context.Context, organizationID string, actorID string, req booking.CreateBookingRequest) (booking.BookingResponse, error) {
	if err := req.Validate(); err != nil {
		return booking.BookingResponse{}, err
	}

	startsAt, _ := validator.IsValidDateTime(req.StartsAt)
	endsAt, _ := validator.IsValidDateTime(req.EndsAt)
	if !endsAt.After(startsAt) {
		return booking.BookingResponse{}, booking.ErrInvalidBookingRange
	}

	resourceType := booking.ResourceType(req.ResourceType)

	// The overlap check and insert are not atomic; a clash slipping through
	// here is tolerated because bookings are operator-entered and rare.
	overlap, err := s.bookingRepo.HasOverlap(ctx, organizationID, resourceType, req.ResourceID, startsAt, endsAt)
	if err != nil {
		return booking.BookingResponse{}, err
	}
	if overlap {
		return booking.BookingResponse{}, booking.ErrBookingConflict
	}

	created, err := s.bookingRepo.Create(ctx, booking.Booking{
		OrganizationID: organizationID,
		ResourceType:   resourceType,
		ResourceID:     req.ResourceID,
		ServiceRef:     req.ServiceRef,
		StartsAt:       startsAt.UTC(),
		EndsAt:         endsAt.UTC(),
		Notes:          req.Notes,
		CreatedBy:      actorID,
	})
	if err != nil {
		return booking.BookingResponse{}, err
	}

	return mapToBookingResponse(created), nil
}

func (s *BookingServiceImpl) Get(ctx context.Context, organizationID string, id string) (booking.BookingResponse, error) {
	b, err := s.bookingRepo.GetByID(ctx, id, organizationID)
	if err != nil {
		return booking.BookingResponse{}, err
	}

	return mapToBookingResponse(b), nil
}

func (s *BookingServiceImpl) ListByResource(ctx context.Context, organizationID string, resourceType string, resourceID string, from, to time.Time) ([]booking.BookingResponse, error) {
	bookings, err := s.bookingRepo.ListByResource(ctx, organizationID, booking.ResourceType(resourceType), resourceID, from, to)
	if err != nil {
		return nil, err
	}

	result := make([]booking.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, mapToBookingResponse(b))
	}

	return result, nil
}

func (s *BookingServiceImpl) Cancel(ctx context.Context, organizationID string, id string) error {
	return s.bookingRepo.Delete(ctx, id, organizationID)
}

func mapToBookingResponse(b booking.Booking) booking.BookingResponse {
	return booking.BookingResponse{
		ID:             b.ID,
		OrganizationID: b.OrganizationID,
		ResourceType:   string(b.ResourceType),
		ResourceID:     b.ResourceID,
		ServiceRef:     b.ServiceRef,
		StartsAt:       b.StartsAt.Format(time.RFC3339),
		EndsAt:         b.EndsAt.Format(time.RFC3339),
		Notes:          b.Notes,
		CreatedBy:      b.CreatedBy,
	}
}
