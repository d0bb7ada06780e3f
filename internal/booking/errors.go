package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrSignInRequired blocks submission without a signed-in identity.
	ErrSignInRequired = errors.New("please sign in before booking")
	// ErrIncomplete means a required selection is missing.
	ErrIncomplete = errors.New("booking is missing required selections")
	// ErrSeatTaken is a booking rejected because a seat was taken in the
	// meantime.  The customer should pick other seats.
	ErrSeatTaken = errors.New("seat already booked")
	// ErrPartial means the booking was created but some tickets were not.
	ErrPartial = errors.New("some tickets were not created")
)

// Stage names a step of the submission pipeline.
type Stage string

const (
	StageValidate Stage = "validate"
	StageBooking  Stage = "booking"
	StageTickets  Stage = "tickets"
)

// StageError reports the stage a submission stopped at.  Message is safe to
// show to the customer.
type StageError struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s stage: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s stage: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error { return e.Err }
