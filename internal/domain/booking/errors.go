package booking

import "errors"

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBookingConflict     = errors.New("resource already booked in this time window")
	ErrInvalidBookingRange = errors.New("booking end is not after its start")
)
