// Package booking runs the submission pipeline: one booking record and then
// one ticket per selected seat against the booking backend.
package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-booking-wizard/internal/backend"
	"github.com/iliyamo/cinema-booking-wizard/internal/catalog"
	"github.com/iliyamo/cinema-booking-wizard/internal/identity"
	"github.com/iliyamo/cinema-booking-wizard/internal/idgen"
	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
	"github.com/iliyamo/cinema-booking-wizard/internal/model"
	"github.com/iliyamo/cinema-booking-wizard/internal/pricing"
	"github.com/iliyamo/cinema-booking-wizard/internal/queue"
	"github.com/iliyamo/cinema-booking-wizard/internal/seatmap"
)

// User facing messages.
const (
	MsgCompleted     = "booking completed"
	MsgBookingFailed = "booking could not be created"
	MsgPartial       = "some tickets were not created"
)

// Outcome of a submission.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeRejected  Outcome = "rejected"
	OutcomePartial   Outcome = "partial"
)

// API is the part of the booking backend the pipeline talks to.
type API interface {
	CreateBooking(ctx context.Context, token string, req backend.BookingRequest) error
	CreateTicket(ctx context.Context, token string, req backend.TicketRequest) error
	CancelBooking(ctx context.Context, token, bookingID string) error
}

// Journal keeps a record of every submission run.
type Journal interface {
	Record(ctx context.Context, rec model.SubmissionRecord) error
}

// Publisher announces submission runs to other services.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Request is everything a submission needs.  The per seat price is
// Movie.TicketPrice.
type Request struct {
	Identity    identity.Identity
	Movie       model.Movie
	Theater     model.Theater
	Date        string
	Time        string
	Seats       []string
	Concessions map[string]int
}

// Result describes a finished run.  FailedSeats is set for partial runs.
type Result struct {
	BookingID   string
	Outcome     Outcome
	Totals      model.Totals
	Seats       []string
	FailedSeats []string
	Compensated bool
	Message     string
}

// Pipeline submits bookings.  Journal and Publisher are optional.
type Pipeline struct {
	api     API
	ids     idgen.Generator
	journal Journal
	events  Publisher
	log     logger.Logger
	now     func() time.Time
}

// Option customises a Pipeline.
type Option func(*Pipeline)

func WithJournal(j Journal) Option       { return func(p *Pipeline) { p.journal = j } }
func WithPublisher(pub Publisher) Option { return func(p *Pipeline) { p.events = pub } }
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(api API, ids idgen.Generator, log logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{api: api, ids: ids, log: log, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Submit creates the booking and then its tickets.  Nothing is retried.
//
// A rejected booking returns a *StageError for StageBooking and no ticket is
// requested.  When some tickets fail the booking is cancelled once and a
// *StageError for StageTickets wrapping ErrPartial is returned alongside the
// result.
func (p *Pipeline) Submit(ctx context.Context, req Request) (Result, error) {
	if !req.Identity.Present() {
		return Result{}, &StageError{Stage: StageValidate, Message: ErrSignInRequired.Error(), Err: ErrSignInRequired}
	}
	if req.Movie.ID == 0 || req.Theater.ID == 0 || req.Date == "" || req.Time == "" || len(req.Seats) == 0 {
		return Result{}, &StageError{Stage: StageValidate, Message: ErrIncomplete.Error(), Err: ErrIncomplete}
	}

	seats := seatmap.SortSeatIDs(req.Seats)
	foods := BuildFoodItems(req.Concessions, catalog.Concessions())
	totals := pricing.CalculateTotal(len(seats), req.Movie.TicketPrice, req.Concessions, catalog.ConcessionPrices())
	bookingID := p.ids.BookingID()

	res := Result{BookingID: bookingID, Totals: totals, Seats: seats}
	ctx = logger.WithContext(ctx, "booking_id", bookingID)

	seatLines := make([]backend.SeatStatus, 0, len(seats))
	for _, s := range seats {
		seatLines = append(seatLines, backend.SeatStatus{SeatID: s, Status: backend.SeatBooked})
	}
	err := p.api.CreateBooking(ctx, req.Identity.Token, backend.BookingRequest{
		BookingID:   bookingID,
		UserID:      req.Identity.Phone,
		MovieID:     req.Movie.ID,
		MovieTitle:  req.Movie.Title,
		Seats:       seatLines,
		Address:     req.Theater.Address,
		Foods:       foodLines(foods),
		TotalPrice:  totals.Total,
		Date:        req.Date,
		Time:        req.Time,
		BookingTime: p.now().UTC(),
		OrderStatus: backend.OrderOrdered,
		PosterPath:  req.Movie.PosterPath,
	})
	if err != nil {
		stageErr := bookingStageError(err)
		p.log.Warnf(ctx, "booking.Pipeline.Submit: create booking: %v", err)
		res.Outcome = OutcomeRejected
		res.Message = stageErr.Message
		p.record(ctx, req, res, StageBooking)
		return res, stageErr
	}

	res.FailedSeats = p.createTickets(ctx, req.Identity.Token, bookingID, req.Movie.TicketPrice, seats)
	if len(res.FailedSeats) == 0 {
		res.Outcome = OutcomeCompleted
		res.Message = MsgCompleted
		p.log.Infow(ctx, "booking completed", "seats", len(seats), "total", totals.Total)
		p.record(ctx, req, res, "")
		p.publish(ctx, req, res)
		return res, nil
	}

	res.Outcome = OutcomePartial
	res.Message = MsgPartial
	if err := p.api.CancelBooking(ctx, req.Identity.Token, bookingID); err != nil {
		p.log.Errorf(ctx, "booking.Pipeline.Submit: cancel partial booking: %v", err)
	} else {
		res.Compensated = true
	}
	p.log.Errorf(ctx, "booking.Pipeline.Submit: %d of %d tickets failed: %v (compensated=%t)",
		len(res.FailedSeats), len(seats), res.FailedSeats, res.Compensated)
	p.record(ctx, req, res, StageTickets)
	p.publish(ctx, req, res)
	return res, &StageError{Stage: StageTickets, Message: MsgPartial, Err: ErrPartial}
}

// createTickets issues every ticket request concurrently and waits for all
// of them.  A failure never cancels the others.  Failed seats are returned
// in display order.
func (p *Pipeline) createTickets(ctx context.Context, token, bookingID string, price int64, seats []string) []string {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed = make(map[string]struct{})
	)
	for _, seat := range seats {
		g.Go(func() error {
			err := p.api.CreateTicket(ctx, token, backend.TicketRequest{
				TicketID:    idgen.TicketID(bookingID, seat),
				BookingID:   bookingID,
				TicketPrice: price,
				SeatID:      seat,
				Status:      backend.TicketUpcoming,
			})
			if err != nil {
				p.log.Warnf(ctx, "booking.Pipeline.createTickets: seat %s: %v", seat, err)
				mu.Lock()
				failed[seat] = struct{}{}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []string
	for _, s := range seats {
		if _, ok := failed[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// bookingStageError turns a create-booking failure into the message shown
// to the customer.  Conflicts become ErrSeatTaken.
func bookingStageError(err error) *StageError {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		return &StageError{Stage: StageBooking, Message: MsgBookingFailed, Err: err}
	}
	msg := apiErr.Message
	if msg == "" {
		msg = MsgBookingFailed
	}
	if apiErr.Status == 409 || strings.Contains(strings.ToLower(apiErr.Message), "already booked") {
		return &StageError{Stage: StageBooking, Message: msg, Err: errors.Join(ErrSeatTaken, err)}
	}
	return &StageError{Stage: StageBooking, Message: msg, Err: err}
}

func (p *Pipeline) record(ctx context.Context, req Request, res Result, stage Stage) {
	if p.journal == nil {
		return
	}
	err := p.journal.Record(ctx, model.SubmissionRecord{
		BookingID:   res.BookingID,
		UserPhone:   req.Identity.Phone,
		MovieID:     req.Movie.ID,
		Address:     req.Theater.Address,
		ShowDate:    req.Date,
		ShowTime:    req.Time,
		Seats:       res.Seats,
		TotalPrice:  res.Totals.Total,
		Outcome:     string(res.Outcome),
		Stage:       string(stage),
		FailedSeats: res.FailedSeats,
		Compensated: res.Compensated,
		Message:     res.Message,
		CreatedAt:   p.now().UTC(),
	})
	if err != nil {
		p.log.Warnf(ctx, "booking.Pipeline.record: %v", err)
	}
}

func (p *Pipeline) publish(ctx context.Context, req Request, res Result) {
	if p.events == nil {
		return
	}
	err := p.events.Publish(ctx, queue.BookingEvent{
		BookingID:   res.BookingID,
		UserPhone:   req.Identity.Phone,
		MovieID:     req.Movie.ID,
		MovieTitle:  req.Movie.Title,
		Address:     req.Theater.Address,
		ShowDate:    req.Date,
		ShowTime:    req.Time,
		Seats:       res.Seats,
		TotalPrice:  res.Totals.Total,
		Outcome:     string(res.Outcome),
		FailedSeats: res.FailedSeats,
		Compensated: res.Compensated,
		OccurredAt:  p.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		p.log.Warnf(ctx, "booking.Pipeline.publish: %v", err)
	}
}
