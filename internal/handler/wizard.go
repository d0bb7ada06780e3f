package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-wizard/internal/identity"
	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
	"github.com/iliyamo/cinema-booking-wizard/internal/model"
	"github.com/iliyamo/cinema-booking-wizard/internal/session"
	"github.com/iliyamo/cinema-booking-wizard/internal/wizard"
)

// MovieLookup resolves movies with their ticket price.
type MovieLookup interface {
	Get(ctx context.Context, id int64) (model.Movie, error)
	NowPlaying(ctx context.Context) ([]model.Movie, error)
}

// WizardHandler serves the booking wizard.  The draft lives in the session
// store between requests; each request takes the session lock, restores the
// draft with the caller's identity, applies one operation and stores it
// again.
type WizardHandler struct {
	store      session.Store
	seats      wizard.SeatSource
	submitter  wizard.Submitter
	movies     MovieLookup
	windowDays int
	now        func() time.Time
	log        logger.Logger
	validate   *validator.Validate

	// lockWait is how long a request waits for a busy session.
	lockWait time.Duration
	// submitTimeout bounds a confirmation once it is detached from the
	// client connection.
	submitTimeout time.Duration
}

const (
	defaultLockWait      = 2 * time.Second
	defaultSubmitTimeout = time.Minute
	lockPoll             = 25 * time.Millisecond
)

func NewWizardHandler(store session.Store, seats wizard.SeatSource, submitter wizard.Submitter, movies MovieLookup, windowDays int, log logger.Logger) *WizardHandler {
	return &WizardHandler{
		store:      store,
		seats:      seats,
		submitter:  submitter,
		movies:     movies,
		windowDays: windowDays,
		now:        time.Now,
		log:        log,
		validate:   validator.New(),

		lockWait:      defaultLockWait,
		submitTimeout: defaultSubmitTimeout,
	}
}

// stateResponse is the wizard as returned to clients.  SeatGrid is set once
// booked seats were loaded for the selected screening.
type stateResponse struct {
	SessionID string `json:"session_id"`
	wizard.Summary
	DateWindow []model.DateOption `json:"date_window"`
	SeatGrid   []model.Seat       `json:"seat_grid,omitempty"`
}

func (h *WizardHandler) deps() wizard.Deps {
	return wizard.Deps{Seats: h.seats, Submitter: h.submitter, Now: h.now, WindowDays: h.windowDays}
}

func stateOf(sessionID string, w *wizard.Wizard) *stateResponse {
	st := &stateResponse{SessionID: sessionID, Summary: w.Summary(), DateWindow: w.DateWindow()}
	if w.Snapshot().SnapshotKey != "" {
		st.SeatGrid = w.Seats()
	}
	return st
}

func (h *WizardHandler) bind(c echo.Context, into any) error {
	if err := c.Bind(into); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(into); err != nil {
		return badRequest(c, err.Error())
	}
	return nil
}

type createRequest struct {
	Flow    string `json:"flow" validate:"required,oneof=movie_first theater_first"`
	MovieID int64  `json:"movie_id" validate:"omitempty,gt=0"`
}

// Create handles POST /v1/wizards.  The movie-first flow needs movie_id.
func (h *WizardHandler) Create(c echo.Context) error {
	var req createRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	flow, _ := wizard.FlowByName(req.Flow)

	var opts []wizard.Option
	if req.MovieID > 0 {
		mv, err := h.movies.Get(ctx, req.MovieID)
		if err != nil {
			h.log.Warnf(ctx, "handler.WizardHandler.Create: movie %d: %v", req.MovieID, err)
			return writeError(c, err, nil)
		}
		opts = append(opts, wizard.WithMovie(mv))
	}

	w, err := wizard.New(flow, identity.FromContext(ctx), h.deps(), opts...)
	if err != nil {
		return writeError(c, err, nil)
	}
	d := w.Snapshot()
	d.SessionID = session.NewID()
	if err := h.store.Save(ctx, d); err != nil {
		h.log.Errorf(ctx, "handler.WizardHandler.Create: save draft: %v", err)
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusCreated, stateOf(d.SessionID, w))
}

// lock waits up to lockWait for the session lock.
func (h *WizardHandler) lock(ctx context.Context, sessionID string) (func(), error) {
	deadline := time.Now().Add(h.lockWait)
	for {
		unlock, err := h.store.Lock(ctx, sessionID)
		if !errors.Is(err, session.ErrLocked) || time.Now().After(deadline) {
			return unlock, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPoll):
		}
	}
}

func (h *WizardHandler) load(c echo.Context) (*wizard.Wizard, error) {
	ctx := c.Request().Context()
	d, err := h.store.Get(ctx, c.Param("id"))
	if err != nil {
		return nil, err
	}
	return wizard.Restore(d, identity.FromContext(ctx), h.deps())
}

func (h *WizardHandler) save(ctx context.Context, sessionID string, w *wizard.Wizard) error {
	d := w.Snapshot()
	d.SessionID = sessionID
	if err := h.store.Save(ctx, d); err != nil {
		h.log.Errorf(ctx, "handler.WizardHandler.save: session %s: %v", sessionID, err)
		return err
	}
	return nil
}

// apply restores the draft, runs op and stores the result.  The draft is
// stored even when op fails so the last message survives.
func (h *WizardHandler) apply(c echo.Context, status int, op func(ctx context.Context, w *wizard.Wizard) error) error {
	ctx := c.Request().Context()
	sessionID := c.Param("id")
	unlock, err := h.lock(ctx, sessionID)
	if err != nil {
		return writeError(c, err, nil)
	}
	defer unlock()
	w, err := h.load(c)
	if err != nil {
		return writeError(c, err, nil)
	}
	opErr := op(ctx, w)
	if err := h.save(ctx, sessionID, w); err != nil {
		return writeError(c, err, nil)
	}
	if opErr != nil {
		return writeError(c, opErr, stateOf(sessionID, w))
	}
	return c.JSON(status, stateOf(sessionID, w))
}

// Get handles GET /v1/wizards/:id.
func (h *WizardHandler) Get(c echo.Context) error {
	w, err := h.load(c)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, stateOf(c.Param("id"), w))
}

// Delete handles DELETE /v1/wizards/:id: leaving the flow discards the draft.
func (h *WizardHandler) Delete(c echo.Context) error {
	if _, err := h.load(c); err != nil {
		return writeError(c, err, nil)
	}
	if err := h.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err, nil)
	}
	return c.NoContent(http.StatusNoContent)
}

type theaterRequest struct {
	TheaterID int `json:"theater_id" validate:"required,gt=0"`
}

func (h *WizardHandler) SelectTheater(c echo.Context) error {
	var req theaterRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	return h.apply(c, http.StatusOK, func(_ context.Context, w *wizard.Wizard) error {
		return w.SelectTheater(req.TheaterID)
	})
}

type dateRequest struct {
	Date string `json:"date" validate:"required"`
}

func (h *WizardHandler) SelectDate(c echo.Context) error {
	var req dateRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	return h.apply(c, http.StatusOK, func(_ context.Context, w *wizard.Wizard) error {
		return w.SelectDate(req.Date)
	})
}

type movieRequest struct {
	MovieID int64 `json:"movie_id" validate:"required,gt=0"`
}

// SelectMovie looks the movie up first so the draft carries its price.
func (h *WizardHandler) SelectMovie(c echo.Context) error {
	var req movieRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	return h.apply(c, http.StatusOK, func(ctx context.Context, w *wizard.Wizard) error {
		mv, err := h.movies.Get(ctx, req.MovieID)
		if err != nil {
			return err
		}
		return w.SelectMovie(mv)
	})
}

type timeRequest struct {
	Time string `json:"time" validate:"required"`
}

func (h *WizardHandler) SelectTime(c echo.Context) error {
	var req timeRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	return h.apply(c, http.StatusOK, func(_ context.Context, w *wizard.Wizard) error {
		return w.SelectTime(req.Time)
	})
}

type paymentRequest struct {
	Method string `json:"method" validate:"required"`
}

func (h *WizardHandler) SelectPayment(c echo.Context) error {
	var req paymentRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	return h.apply(c, http.StatusOK, func(_ context.Context, w *wizard.Wizard) error {
		return w.SelectPayment(req.Method)
	})
}

// ToggleSeat handles POST /v1/wizards/:id/seats/:seat.  Clicking a booked
// or unknown seat is not an error; the grid simply stays as it was.
func (h *WizardHandler) ToggleSeat(c echo.Context) error {
	seat := c.Param("seat")
	return h.apply(c, http.StatusOK, func(_ context.Context, w *wizard.Wizard) error {
		_, err := w.ToggleSeat(seat)
		return err
	})
}

type concessionRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=20"`
}

func (h *WizardHandler) SetConcession(c echo.Context) error {
	var req concessionRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	key := c.Param("key")
	return h.apply(c, http.StatusOK, func(_ context.Context, w *wizard.Wizard) error {
		return w.SetConcession(key, *req.Quantity)
	})
}

func (h *WizardHandler) Advance(c echo.Context) error {
	return h.apply(c, http.StatusOK, func(ctx context.Context, w *wizard.Wizard) error {
		return w.Advance(ctx)
	})
}

func (h *WizardHandler) Retreat(c echo.Context) error {
	return h.apply(c, http.StatusOK, func(_ context.Context, w *wizard.Wizard) error {
		return w.Retreat()
	})
}

// Confirm handles POST /v1/wizards/:id/confirm.  A partial failure answers
// 502 with partial=true and the id of the booking that was cancelled.
//
// The session stays locked for the whole submission, so a second confirm
// waits and then sees the completed draft.  Once started, the submission
// runs to the end even if the client goes away.
func (h *WizardHandler) Confirm(c echo.Context) error {
	sessionID := c.Param("id")
	unlock, err := h.lock(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err, nil)
	}
	defer unlock()
	w, err := h.load(c)
	if err != nil {
		return writeError(c, err, nil)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), h.submitTimeout)
	defer cancel()
	res, confirmErr := w.Confirm(ctx)
	if err := h.save(ctx, sessionID, w); err != nil {
		return writeError(c, err, nil)
	}
	state := stateOf(sessionID, w)
	if confirmErr != nil {
		status, body := errorFor(confirmErr, state)
		body.BookingID = res.BookingID
		return c.JSON(status, body)
	}
	return c.JSON(http.StatusOK, state)
}
