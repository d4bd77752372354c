package response

import (
	"errors"
	"net/http"

	"github.com/memento-hq/funeraria-backend-go/internal/domain/booking"
	"github.com/memento-hq/funeraria-backend-go/internal/domain/collaborator"
	"github.com/memento-hq/funeraria-backend-go/internal/domain/payroll"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrInvalidPeriodRange):
		BadRequest(w, "Period end date must not precede its start date", nil)
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPeriodHasRecords):
		Conflict(w, "Payroll period still has records")
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrRecordApproved):
		Conflict(w, "Payroll record is already approved")
	case errors.Is(err, payroll.ErrRecordNotApproved):
		BadRequest(w, "Payroll record is not approved yet", nil)
	case errors.Is(err, payroll.ErrReceiptNotFound):
		NotFound(w, "Payment receipt not found")
	case errors.Is(err, payroll.ErrReceiptAlreadyExists):
		Conflict(w, "Payment receipt already exists for this record")
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, "Payroll period state does not allow this operation")
	case errors.Is(err, payroll.ErrInvalidReceiptTransition):
		Conflict(w, "Receipt status does not allow this operation")
	case errors.Is(err, payroll.ErrConflict):
		Conflict(w, "Conflicting concurrent update, please retry")

	// Collaborator domain errors
	case errors.Is(err, collaborator.ErrCollaboratorNotFound):
		NotFound(w, "Collaborator not found")

	// Booking domain errors
	case errors.Is(err, booking.ErrBookingNotFound):
		NotFound(w, "Booking not found")
	case errors.Is(err, booking.ErrBookingConflict):
		Conflict(w, "Resource is already booked in this time window")
	case errors.Is(err, booking.ErrInvalidBookingRange):
		BadRequest(w, "Booking end must be after its start", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
