package backend

import (
	"context"
	"sync"
)

// BookingMock is an in-memory stand-in for BookingClient.  It records every
// call; the Fail* fields make individual calls fail.
type BookingMock struct {
	mock sync.Mutex

	Booked map[string][]string // booked seats per BookedSeatsQuery.Key()

	FailBookedSeats error
	FailBooking     error
	FailTickets     map[string]error // keyed by seat id
	FailCancel      error

	// BeforeBooking runs at the start of CreateBooking, outside the mock's
	// lock, so tests can stall or cancel mid-submission.
	BeforeBooking func(ctx context.Context)

	SeatQueries []BookedSeatsQuery
	Bookings    []BookingRequest
	Tickets     []TicketRequest
	Canceled    []string

	// bookingResolved is set once CreateBooking returned; tickets created
	// before that point are counted in TicketsBeforeBooking.
	bookingResolved      bool
	TicketsBeforeBooking int
}

func (c *BookingMock) BookedSeats(ctx context.Context, token string, q BookedSeatsQuery) ([]string, error) {
	c.mock.Lock()
	defer c.mock.Unlock()
	c.SeatQueries = append(c.SeatQueries, q)
	if c.FailBookedSeats != nil {
		return nil, c.FailBookedSeats
	}
	return append([]string(nil), c.Booked[q.Key()]...), nil
}

func (c *BookingMock) CreateBooking(ctx context.Context, token string, req BookingRequest) error {
	if c.BeforeBooking != nil {
		c.BeforeBooking(ctx)
	}
	c.mock.Lock()
	defer c.mock.Unlock()
	c.Bookings = append(c.Bookings, req)
	c.bookingResolved = true
	return c.FailBooking
}

func (c *BookingMock) CreateTicket(ctx context.Context, token string, req TicketRequest) error {
	c.mock.Lock()
	defer c.mock.Unlock()
	if !c.bookingResolved {
		c.TicketsBeforeBooking++
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Tickets = append(c.Tickets, req)
	if err, ok := c.FailTickets[req.SeatID]; ok {
		return err
	}
	return nil
}

func (c *BookingMock) CancelBooking(ctx context.Context, token, bookingID string) error {
	c.mock.Lock()
	defer c.mock.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Canceled = append(c.Canceled, bookingID)
	return c.FailCancel
}

// BookingCount returns the number of CreateBooking calls so far.
func (c *BookingMock) BookingCount() int {
	c.mock.Lock()
	defer c.mock.Unlock()
	return len(c.Bookings)
}

// TicketCount returns the number of CreateTicket calls so far.
func (c *BookingMock) TicketCount() int {
	c.mock.Lock()
	defer c.mock.Unlock()
	return len(c.Tickets)
}
