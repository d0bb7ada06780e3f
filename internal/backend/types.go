package backend

import (
	"fmt"
	"time"
)

// BookedSeatsQuery scopes a booked-seats lookup to one screening.
type BookedSeatsQuery struct {
	MovieID int64
	Date    string
	Time    string
	Address string
}

// Key identifies the screening the query is about.
func (q BookedSeatsQuery) Key() string {
	return fmt.Sprintf("%d|%s|%s|%s", q.MovieID, q.Date, q.Time, q.Address)
}

type bookedSeatsResponse struct {
	BookingSeats []struct {
		SeatID string `json:"seat_id"`
	} `json:"bookingSeats"`
}

// SeatStatus is a seat line of a booking request.
type SeatStatus struct {
	SeatID string `json:"seat_id"`
	Status string `json:"status"`
}

// FoodLine is a concession line of a booking request.
type FoodLine struct {
	FoodID    string `json:"food_id"`
	FoodName  string `json:"food_name"`
	FoodPrice int64  `json:"food_price"`
	Quantity  int    `json:"quantity"`
}

// BookingRequest is the body of POST /booking/create.
type BookingRequest struct {
	BookingID   string       `json:"bookingId"`
	UserID      string       `json:"userId"`
	MovieID     int64        `json:"movieID"`
	MovieTitle  string       `json:"movieTitle"`
	Seats       []SeatStatus `json:"seats"`
	Address     string       `json:"address"`
	Foods       []FoodLine   `json:"foods"`
	TotalPrice  int64        `json:"total_price"`
	Date        string       `json:"date"`
	Time        string       `json:"time"`
	BookingTime time.Time    `json:"booking_time"`
	OrderStatus string       `json:"order_status"`
	PosterPath  string       `json:"poster_path"`
}

// TicketRequest is the body of POST /tickets/create.
type TicketRequest struct {
	TicketID    string `json:"ticket_id"`
	BookingID   string `json:"booking_id"`
	TicketPrice int64  `json:"ticket_price"`
	SeatID      string `json:"seat_id"`
	Status      string `json:"status"`
}

// Status values sent to the backend.
const (
	SeatBooked     = "booked"
	OrderOrdered   = "ordered"
	TicketUpcoming = "upcoming"
)

// APIError is a non-success HTTP response.  Message is the server's
// "message" field when the body carried one.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status code %d", e.Op, e.Status)
}
