// Package backend talks to the external booking/ticket REST API and the
// movie metadata API.  Only the request/response contracts are known here;
// no booking rules live in this package.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// BookingClient calls the booking/ticket API.  Every call forwards the
// customer's bearer token.
type BookingClient struct {
	baseURL string
	client  *http.Client
}

// NewBookingClient returns a client for the API rooted at baseURL
// (e.g. "https://backend.example.com/api").
func NewBookingClient(baseURL string, timeout time.Duration) *BookingClient {
	return &BookingClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BookedSeats returns the seat ids already booked for the screening.  A
// body without a usable bookingSeats list counts as no booked seats.
func (c *BookingClient) BookedSeats(ctx context.Context, token string, q BookedSeatsQuery) ([]string, error) {
	v := url.Values{}
	v.Set("movieID", strconv.FormatInt(q.MovieID, 10))
	v.Set("date", q.Date)
	v.Set("time", q.Time)
	v.Set("address", q.Address)

	status, body, err := c.do(ctx, http.MethodGet, "/booking/getBookingSeats?"+v.Encode(), token, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch booked seats: %w", err)
	}
	if status < 200 || status > 299 {
		return nil, apiError("fetch booked seats", status, body)
	}

	var resp bookedSeatsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return []string{}, nil
	}
	seats := make([]string, 0, len(resp.BookingSeats))
	for _, s := range resp.BookingSeats {
		if s.SeatID != "" {
			seats = append(seats, s.SeatID)
		}
	}
	return seats, nil
}

// CreateBooking posts a booking.  Only 201 Created counts as success.
func (c *BookingClient) CreateBooking(ctx context.Context, token string, req BookingRequest) error {
	status, body, err := c.do(ctx, http.MethodPost, "/booking/create", token, req)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	if status != http.StatusCreated {
		return apiError("create booking", status, body)
	}
	return nil
}

// CreateTicket posts one ticket.  Only 201 Created counts as success.
func (c *BookingClient) CreateTicket(ctx context.Context, token string, req TicketRequest) error {
	status, body, err := c.do(ctx, http.MethodPost, "/tickets/create", token, req)
	if err != nil {
		return fmt.Errorf("create ticket %s: %w", req.TicketID, err)
	}
	if status != http.StatusCreated {
		return apiError("create ticket "+req.TicketID, status, body)
	}
	return nil
}

// CancelBooking marks a booking as canceled.
func (c *BookingClient) CancelBooking(ctx context.Context, token, bookingID string) error {
	status, body, err := c.do(ctx, http.MethodPatch, "/booking/cancelBooking/"+url.PathEscape(bookingID), token, nil)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if status < 200 || status > 299 {
		return apiError("cancel booking", status, body)
	}
	return nil
}

// TicketPrice returns the backend's ticket price for a movie.  A missing
// or zero price is reported as ErrNoPrice.
func (c *BookingClient) TicketPrice(ctx context.Context, movieID int64) (int64, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/movies/"+strconv.FormatInt(movieID, 10)+"/price", "", nil)
	if err != nil {
		return 0, fmt.Errorf("fetch ticket price: %w", err)
	}
	if status != http.StatusOK {
		return 0, apiError("fetch ticket price", status, body)
	}
	var resp struct {
		TicketPrice int64 `json:"ticket_price"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("fetch ticket price: %w", err)
	}
	if resp.TicketPrice <= 0 {
		return 0, ErrNoPrice
	}
	return resp.TicketPrice, nil
}

// ErrNoPrice means the backend has no ticket price for the movie.
var ErrNoPrice = errors.New("no ticket price")

// do sends one request and returns status and body.
func (c *BookingClient) do(ctx context.Context, method, path, token string, payload any) (int, []byte, error) {
	var rdr io.Reader
	if payload != nil {
		bs, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		rdr = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func apiError(op string, status int, body []byte) *APIError {
	var msg struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &msg)
	return &APIError{Op: op, Status: status, Message: msg.Message}
}
