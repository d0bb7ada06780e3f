package wizard

import (
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking-wizard/internal/booking"
)

var (
	ErrFinalStep    = errors.New("already on the final step, confirm the booking instead")
	ErrFirstStep    = errors.New("already on the first step")
	ErrNotFinalStep = errors.New("booking can only be confirmed on the final step")
	ErrComplete     = errors.New("booking is already complete")
	ErrWrongStep    = errors.New("not available on the current step")
	ErrMovieNeeded  = errors.New("this flow needs a preselected movie")
	ErrUnknownFlow  = errors.New("unknown wizard flow")
	ErrBadDraft     = errors.New("stored wizard draft is invalid")
	ErrNotOwner     = errors.New("wizard session belongs to another customer")

	ErrUnknownTheater    = errors.New("unknown theater")
	ErrUnknownDate       = errors.New("date is outside the booking window")
	ErrUnknownShowtime   = errors.New("unknown showtime")
	ErrUnknownConcession = errors.New("unknown concession item")
	ErrUnknownPayment    = errors.New("unknown payment method")

	// ErrSignInRequired is returned by Confirm without a signed-in identity.
	ErrSignInRequired = booking.ErrSignInRequired
)

// ValidationError is a step whose required fields are missing.  The step
// does not change.
type ValidationError struct {
	Step    StepKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// FetchError is a failed booked-seats lookup while entering the seat step.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not load booked seats, please try again: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Message returns the text shown to the customer.
func (e *FetchError) Message() string { return "could not load booked seats, please try again" }

var stepMessages = map[StepKind]string{
	StepTheaterDate: "please select a theater and a date",
	StepTheater:     "please select a theater",
	StepDate:        "please select a date",
	StepMovie:       "please select a movie",
	StepShowtime:    "please select a showtime",
	StepSeats:       "please select at least one seat",
	StepPayment:     "please select a payment method",
}
