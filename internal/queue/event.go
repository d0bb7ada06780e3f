// Package queue defines the booking events exchanged over the message broker
// together with the publisher and the ops-log consumer.
package queue

// Routing keys of the booking events.  Each key is also the name of the
// durable queue bound to it.
const (
	RoutingSubmitted      = "booking.submitted"
	RoutingPartialFailure = "booking.partial_failure"
)

// BookingEvent is published after every submission that reached the
// backend.  It carries enough to log, notify, or reconcile without asking
// the booking backend again.
type BookingEvent struct {
	BookingID   string   `json:"booking_id"`
	UserPhone   string   `json:"user_phone"`
	MovieID     int64    `json:"movie_id"`
	MovieTitle  string   `json:"movie_title"`
	Address     string   `json:"address"`
	ShowDate    string   `json:"show_date"`
	ShowTime    string   `json:"show_time"`
	Seats       []string `json:"seats"`
	TotalPrice  int64    `json:"total_price"`
	Outcome     string   `json:"outcome"`
	FailedSeats []string `json:"failed_seats,omitempty"`
	Compensated bool     `json:"compensated,omitempty"`
	OccurredAt  string   `json:"occurred_at"`
}

// RoutingKey picks the queue an event goes to.
func (ev BookingEvent) RoutingKey() string {
	if len(ev.FailedSeats) > 0 {
		return RoutingPartialFailure
	}
	return RoutingSubmitted
}
