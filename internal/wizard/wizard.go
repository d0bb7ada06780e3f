// Package wizard implements the booking wizard: a linear, flow driven state
// machine over one booking draft.
package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/cinema-booking-wizard/internal/backend"
	"github.com/iliyamo/cinema-booking-wizard/internal/booking"
	"github.com/iliyamo/cinema-booking-wizard/internal/catalog"
	"github.com/iliyamo/cinema-booking-wizard/internal/identity"
	"github.com/iliyamo/cinema-booking-wizard/internal/model"
	"github.com/iliyamo/cinema-booking-wizard/internal/pricing"
	"github.com/iliyamo/cinema-booking-wizard/internal/seatmap"
)

// SeatSource looks up seats already booked for a screening.
type SeatSource interface {
	BookedSeats(ctx context.Context, token string, q backend.BookedSeatsQuery) ([]string, error)
}

// Submitter runs the submission pipeline.
type Submitter interface {
	Submit(ctx context.Context, req booking.Request) (booking.Result, error)
}

// Deps are the collaborators of a wizard.
type Deps struct {
	Seats      SeatSource
	Submitter  Submitter
	Now        func() time.Time
	WindowDays int
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// Wizard drives one booking draft through a flow.  It is not safe for
// concurrent use; callers hold the session lock while it runs.
type Wizard struct {
	flow   Flow
	id     identity.Identity
	deps   Deps
	window []model.DateOption
	d      model.BookingDraft
}

// Option customises a new wizard.
type Option func(*Wizard)

// WithMovie preselects the movie.
func WithMovie(m model.Movie) Option {
	return func(w *Wizard) {
		mv := m
		w.d.Movie = &mv
	}
}

// New starts an empty draft on step 1.  A flow without a movie step needs
// WithMovie.
func New(flow Flow, id identity.Identity, deps Deps, opts ...Option) (*Wizard, error) {
	if _, ok := FlowByName(flow.Name); !ok {
		return nil, ErrUnknownFlow
	}
	w := &Wizard{
		flow: flow,
		id:   id,
		deps: deps,
		d: model.BookingDraft{
			Owner:         id.Phone,
			Flow:          flow.Name,
			Step:          1,
			SelectedSeats: []string{},
			Concessions:   catalog.EmptyConcessions(),
			BookedSeats:   []string{},
		},
	}
	for _, o := range opts {
		o(w)
	}
	if !flow.Has(StepMovie) && w.d.Movie == nil {
		return nil, ErrMovieNeeded
	}
	w.window = catalog.BuildDateWindow(deps.now(), deps.WindowDays)
	w.touch()
	return w, nil
}

// Restore rebuilds a wizard from a stored draft for the identity of the
// current request.  A draft belongs to the first signed-in customer that
// touches it; anyone else gets ErrNotOwner.
func Restore(d model.BookingDraft, id identity.Identity, deps Deps) (*Wizard, error) {
	flow, ok := FlowByName(d.Flow)
	if !ok {
		return nil, ErrUnknownFlow
	}
	if d.Owner != "" && d.Owner != id.Phone {
		return nil, ErrNotOwner
	}
	if d.Owner == "" {
		d.Owner = id.Phone
	}
	if d.Step < 1 || d.Step > flow.Len() {
		return nil, ErrBadDraft
	}
	if d.Concessions == nil {
		d.Concessions = catalog.EmptyConcessions()
	}
	if d.SelectedSeats == nil {
		d.SelectedSeats = []string{}
	}
	if d.BookedSeats == nil {
		d.BookedSeats = []string{}
	}
	return &Wizard{
		flow:   flow,
		id:     id,
		deps:   deps,
		window: catalog.BuildDateWindow(deps.now(), deps.WindowDays),
		d:      d,
	}, nil
}

// Snapshot returns a copy of the draft for storage.
func (w *Wizard) Snapshot() model.BookingDraft {
	d := w.d
	d.SelectedSeats = append([]string{}, w.d.SelectedSeats...)
	d.BookedSeats = append([]string{}, w.d.BookedSeats...)
	d.Concessions = make(map[string]int, len(w.d.Concessions))
	for k, v := range w.d.Concessions {
		d.Concessions[k] = v
	}
	return d
}

func (w *Wizard) Flow() Flow                     { return w.flow }
func (w *Wizard) Step() int                      { return w.d.Step }
func (w *Wizard) Current() StepKind              { return w.flow.At(w.d.Step) }
func (w *Wizard) Complete() bool                 { return w.d.Complete }
func (w *Wizard) Message() string                { return w.d.Message }
func (w *Wizard) DateWindow() []model.DateOption { return w.window }

// Advance validates the current step and moves to the next one.  Entering
// the seat step loads the booked seats for the selected screening first,
// unless they were already loaded for the same screening.
func (w *Wizard) Advance(ctx context.Context) error {
	if w.d.Complete {
		return ErrComplete
	}
	if w.d.Step >= w.flow.Len() {
		return ErrFinalStep
	}
	if err := w.validate(w.Current()); err != nil {
		return w.fail(err)
	}
	if w.flow.At(w.d.Step+1) == StepSeats {
		if err := w.loadBookedSeats(ctx); err != nil {
			return w.fail(err)
		}
	}
	w.d.Step++
	w.d.Message = ""
	w.touch()
	return nil
}

// Retreat moves back one step without validation or fetching.
func (w *Wizard) Retreat() error {
	if w.d.Complete {
		return ErrComplete
	}
	if w.d.Step <= 1 {
		return ErrFirstStep
	}
	w.d.Step--
	w.d.Message = ""
	w.touch()
	return nil
}

func (w *Wizard) loadBookedSeats(ctx context.Context) error {
	q := w.query()
	if w.d.SnapshotKey == q.Key() {
		return nil
	}
	if w.deps.Seats == nil {
		return &FetchError{Err: errors.New("no seat source configured")}
	}
	booked, err := w.deps.Seats.BookedSeats(ctx, w.id.Token, q)
	if err != nil {
		return &FetchError{Err: err}
	}
	w.d.BookedSeats = seatmap.SortSeatIDs(booked)
	w.d.SnapshotKey = q.Key()
	return nil
}

func (w *Wizard) query() backend.BookedSeatsQuery {
	q := backend.BookedSeatsQuery{Date: w.d.Date, Time: w.d.Time}
	if w.d.Movie != nil {
		q.MovieID = w.d.Movie.ID
	}
	if w.d.Theater != nil {
		q.Address = w.d.Theater.Address
	}
	return q
}

// tupleChanged drops the booked seats snapshot and the seat selection once
// the screening they belong to is no longer the selected one.
func (w *Wizard) tupleChanged() {
	if w.d.SnapshotKey == "" || w.d.SnapshotKey == w.query().Key() {
		return
	}
	w.d.SnapshotKey = ""
	w.d.BookedSeats = []string{}
	w.d.SelectedSeats = []string{}
}

func (w *Wizard) validate(kind StepKind) error {
	ok := true
	switch kind {
	case StepTheaterDate:
		ok = w.d.Theater != nil && w.d.Date != ""
	case StepTheater:
		ok = w.d.Theater != nil
	case StepDate:
		ok = w.d.Date != ""
	case StepMovie:
		ok = w.d.Movie != nil
	case StepShowtime:
		ok = w.d.Time != ""
	case StepSeats:
		ok = len(w.d.SelectedSeats) > 0
	case StepPayment:
		ok = w.d.PaymentMethod != ""
	}
	if !ok {
		return &ValidationError{Step: kind, Message: stepMessages[kind]}
	}
	return nil
}

func (w *Wizard) fail(err error) error {
	var ve *ValidationError
	var fe *FetchError
	switch {
	case errors.As(err, &ve):
		w.d.Message = ve.Message
	case errors.As(err, &fe):
		w.d.Message = fe.Message()
	default:
		w.d.Message = err.Error()
	}
	w.touch()
	return err
}

func (w *Wizard) touch() { w.d.UpdatedAt = w.deps.now().UTC() }

func (w *Wizard) editable() error {
	if w.d.Complete {
		return ErrComplete
	}
	return nil
}

func (w *Wizard) SelectTheater(id int) error {
	if err := w.editable(); err != nil {
		return err
	}
	t, ok := catalog.TheaterByID(id)
	if !ok {
		return ErrUnknownTheater
	}
	w.d.Theater = &t
	w.tupleChanged()
	w.touch()
	return nil
}

// SelectDate accepts a label from the current date window.
func (w *Wizard) SelectDate(label string) error {
	if err := w.editable(); err != nil {
		return err
	}
	if !catalog.IsInWindow(label, w.window) {
		return ErrUnknownDate
	}
	w.d.Date = label
	w.tupleChanged()
	w.touch()
	return nil
}

// SelectMovie sets the movie and with it the ticket price.
func (w *Wizard) SelectMovie(m model.Movie) error {
	if err := w.editable(); err != nil {
		return err
	}
	mv := m
	w.d.Movie = &mv
	w.tupleChanged()
	w.touch()
	return nil
}

func (w *Wizard) SelectTime(t string) error {
	if err := w.editable(); err != nil {
		return err
	}
	if !catalog.IsShowtime(t) {
		return ErrUnknownShowtime
	}
	w.d.Time = t
	w.tupleChanged()
	w.touch()
	return nil
}

// ToggleSeat flips the selection of an available seat on the seat step.
// Booked or malformed seats are left alone and report false.
func (w *Wizard) ToggleSeat(id string) (bool, error) {
	if err := w.editable(); err != nil {
		return false, err
	}
	if w.Current() != StepSeats {
		return false, ErrWrongStep
	}
	if !seatmap.IsValidSeatID(id) {
		return false, nil
	}
	if _, booked := seatmap.BookedSet(w.d.BookedSeats)[id]; booked {
		return false, nil
	}
	for i, s := range w.d.SelectedSeats {
		if s == id {
			w.d.SelectedSeats = append(w.d.SelectedSeats[:i:i], w.d.SelectedSeats[i+1:]...)
			w.touch()
			return true, nil
		}
	}
	w.d.SelectedSeats = seatmap.SortSeatIDs(append(w.d.SelectedSeats, id))
	w.touch()
	return true, nil
}

// SetConcession sets a quantity; negative quantities become zero.
func (w *Wizard) SetConcession(key string, qty int) error {
	if err := w.editable(); err != nil {
		return err
	}
	if !catalog.IsConcession(key) {
		return ErrUnknownConcession
	}
	if qty < 0 {
		qty = 0
	}
	w.d.Concessions[key] = qty
	w.touch()
	return nil
}

func (w *Wizard) IncConcession(key string) error {
	return w.SetConcession(key, w.d.Concessions[key]+1)
}

func (w *Wizard) DecConcession(key string) error {
	return w.SetConcession(key, w.d.Concessions[key]-1)
}

func (w *Wizard) SelectPayment(method string) error {
	if err := w.editable(); err != nil {
		return err
	}
	if !w.flow.Has(StepPayment) {
		return ErrWrongStep
	}
	if !catalog.IsPaymentMethod(method) {
		return ErrUnknownPayment
	}
	w.d.PaymentMethod = method
	w.touch()
	return nil
}

// Seats is the seat grid of the selected screening.
func (w *Wizard) Seats() []model.Seat {
	return seatmap.View(seatmap.BookedSet(w.d.BookedSeats), w.d.SelectedSeats)
}

func (w *Wizard) Totals() model.Totals {
	var price int64
	if w.d.Movie != nil {
		price = w.d.Movie.TicketPrice
	}
	return pricing.CalculateTotal(len(w.d.SelectedSeats), price, w.d.Concessions, catalog.ConcessionPrices())
}

// Confirm submits the booking from the final step.  Only a fully successful
// submission completes the wizard; any failure leaves the draft editable.
func (w *Wizard) Confirm(ctx context.Context) (booking.Result, error) {
	if w.d.Complete {
		return booking.Result{}, ErrComplete
	}
	if w.d.Step != w.flow.Len() {
		return booking.Result{}, ErrNotFinalStep
	}
	for _, kind := range w.flow.Steps {
		if err := w.validate(kind); err != nil {
			return booking.Result{}, w.fail(err)
		}
	}
	if w.d.Movie == nil {
		return booking.Result{}, w.fail(&ValidationError{Step: StepMovie, Message: stepMessages[StepMovie]})
	}
	if !w.id.Present() {
		return booking.Result{}, w.fail(ErrSignInRequired)
	}

	res, err := w.deps.Submitter.Submit(ctx, booking.Request{
		Identity:    w.id,
		Movie:       *w.d.Movie,
		Theater:     *w.d.Theater,
		Date:        w.d.Date,
		Time:        w.d.Time,
		Seats:       w.d.SelectedSeats,
		Concessions: w.d.Concessions,
	})
	if err != nil {
		var stageErr *booking.StageError
		if errors.As(err, &stageErr) {
			w.d.Message = stageErr.Message
		} else {
			w.d.Message = err.Error()
		}
		w.touch()
		return res, err
	}
	w.d.Complete = true
	w.d.BookingID = res.BookingID
	w.d.Message = res.Message
	w.touch()
	return res, nil
}
