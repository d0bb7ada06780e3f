package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-wizard/internal/backend"
	"github.com/iliyamo/cinema-booking-wizard/internal/booking"
	"github.com/iliyamo/cinema-booking-wizard/internal/repository"
	"github.com/iliyamo/cinema-booking-wizard/internal/session"
	"github.com/iliyamo/cinema-booking-wizard/internal/wizard"
)

// errorBody is the JSON shape of every error response.  State is the
// wizard as it stands after the failed operation, so clients can keep
// showing the customer's selections.
type errorBody struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Partial   bool           `json:"partial,omitempty"`
	BookingID string         `json:"booking_id,omitempty"`
	State     *stateResponse `json:"state,omitempty"`
}

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	var (
		ve       *wizard.ValidationError
		fe       *wizard.FetchError
		stageErr *booking.StageError
		apiErr   *backend.APIError
	)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, backend.ErrMovieNotFound):
		return http.StatusNotFound, "movie_not_found"
	case errors.Is(err, repository.ErrDisabled):
		return http.StatusNotFound, "disabled"
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, "validation"
	case errors.As(err, &fe):
		return http.StatusBadGateway, "fetch_failed"
	case errors.Is(err, wizard.ErrNotOwner):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, session.ErrLocked):
		return http.StatusConflict, "busy"
	case errors.Is(err, wizard.ErrSignInRequired):
		return http.StatusUnauthorized, "sign_in_required"
	case errors.Is(err, booking.ErrSeatTaken):
		return http.StatusConflict, "seat_taken"
	case errors.Is(err, booking.ErrPartial):
		return http.StatusBadGateway, "partial_failure"
	case errors.As(err, &stageErr):
		return http.StatusBadGateway, "booking_failed"
	case errors.Is(err, wizard.ErrComplete):
		return http.StatusConflict, "complete"
	case errors.Is(err, wizard.ErrFinalStep), errors.Is(err, wizard.ErrFirstStep),
		errors.Is(err, wizard.ErrNotFinalStep), errors.Is(err, wizard.ErrWrongStep):
		return http.StatusConflict, "invalid_step"
	case errors.Is(err, wizard.ErrUnknownTheater), errors.Is(err, wizard.ErrUnknownDate),
		errors.Is(err, wizard.ErrUnknownShowtime), errors.Is(err, wizard.ErrUnknownConcession),
		errors.Is(err, wizard.ErrUnknownPayment), errors.Is(err, wizard.ErrUnknownFlow),
		errors.Is(err, wizard.ErrMovieNeeded):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// message picks the customer facing text for err.
func message(err error) string {
	var (
		ve       *wizard.ValidationError
		fe       *wizard.FetchError
		stageErr *booking.StageError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &fe):
		return fe.Message()
	case errors.As(err, &stageErr):
		return stageErr.Message
	case errors.Is(err, session.ErrNotFound):
		return "wizard session not found or expired"
	case errors.Is(err, session.ErrLocked):
		return "another request for this booking is in progress"
	}
	if status, _ := classify(err); status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func errorFor(err error, state *stateResponse) (int, errorBody) {
	status, code := classify(err)
	return status, errorBody{
		Error:   code,
		Message: message(err),
		Partial: errors.Is(err, booking.ErrPartial),
		State:   state,
	}
}

func writeError(c echo.Context, err error, state *stateResponse) error {
	status, body := errorFor(err, state)
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: msg})
}
