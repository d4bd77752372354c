package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/booking"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/database"
)

type bookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) booking.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO resource_bookings (organization_id, resource_type, resource_id, service_ref, starts_at, ends_at, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, organization_id, resource_type, resource_id, service_ref, starts_at, ends_at, notes, created_by, created_at
	`

	var created booking.Booking
	err := q.QueryRow(ctx, query,
		b.OrganizationID, b.ResourceType, b.ResourceID, b.ServiceRef, b.StartsAt, b.EndsAt, b.Notes, b.CreatedBy,
	).Scan(
		&created.ID, &created.OrganizationID, &created.ResourceType, &created.ResourceID,
		&created.ServiceRef, &created.StartsAt, &created.EndsAt, &created.Notes, &created.CreatedBy, &created.CreatedAt,
	)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("failed to create booking: %w", err)
	}

	return created, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string, organizationID string) (booking.Booking, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, resource_type, resource_id, service_ref, starts_at, ends_at, notes, created_by, created_at
		FROM resource_bookings
		WHERE id = $1 AND organization_id = $2
	`

	var b booking.Booking
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&b.ID, &b.OrganizationID, &b.ResourceType, &b.ResourceID,
		&b.ServiceRef, &b.StartsAt, &b.EndsAt, &b.Notes, &b.CreatedBy, &b.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return booking.Booking{}, booking.ErrBookingNotFound
		}
		return booking.Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}

	return b, nil
}

func (r *bookingRepository) HasOverlap(ctx context.Context, organizationID string, resourceType booking.ResourceType, resourceID string, startsAt, endsAt time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	// Half-open interval overlap: bookings that merely touch do not count.
	query := `
		SELECT EXISTS(
			SELECT 1 FROM resource_bookings
			WHERE organization_id = $1 AND resource_type = $2 AND resource_id = $3
				AND starts_at < $5 AND ends_at > $4
		)
	`

	var overlap bool
	err := q.QueryRow(ctx, query, organizationID, resourceType, resourceID, startsAt, endsAt).Scan(&overlap)
	if err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	return overlap, nil
}

func (r *bookingRepository) ListByResource(ctx context.Context, organizationID string, resourceType booking.ResourceType, resourceID string, from, to time.Time) ([]booking.Booking, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, resource_type, resource_id, service_ref, starts_at, ends_at, notes, created_by, created_at
		FROM resource_bookings
		WHERE organization_id = $1 AND resource_type = $2 AND resource_id = $3
			AND starts_at < $5 AND ends_at > $4
		ORDER BY starts_at
	`

	rows, err := q.Query(ctx, query, organizationID, resourceType, resourceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []booking.Booking
	for rows.Next() {
		var b booking.Booking
		if err := rows.Scan(
			&b.ID, &b.OrganizationID, &b.ResourceType, &b.ResourceID,
			&b.ServiceRef, &b.StartsAt, &b.EndsAt, &b.Notes, &b.CreatedBy, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string, organizationID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM resource_bookings WHERE id = $1 AND organization_id = $2 RETURNING id`

	var deletedID string
	err := q.QueryRow(ctx, query, id, organizationID).Scan(&deletedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return booking.ErrBookingNotFound
		}
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	return nil
}
