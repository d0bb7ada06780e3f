package model

import "time"

// BookingDraft is the serialisable state of one wizard session.  It is
// written to the draft store between requests and dropped as soon as the
// customer leaves the flow or the booking completes.
//
// Fields:
//
//	SessionID     - wizard session identifier.
//	Owner         - phone of the customer the draft belongs to, once known.
//	Flow          - name of the step flow the wizard runs.
//	Step          - current 1-based step index.
//	Theater       - selected theater (nil until chosen).
//	Date          - selected date label.
//	Movie         - selected or preselected movie.
//	Time          - selected showtime.
//	SelectedSeats - selected seat ids, kept display ordered.
//	Concessions   - quantity per concession key.
//	PaymentMethod - chosen payment method (payment flows only).
//	BookedSeats   - seats already booked for the snapshot tuple.
//	SnapshotKey   - the (movie, date, time, address) tuple BookedSeats belongs to.
//	BookingID     - assigned on submission.
//	Complete      - true once a submission fully succeeded.
//	Message       - last user facing message.
//	UpdatedAt     - last modification time.
type BookingDraft struct {
	SessionID     string         `json:"session_id"`
	Owner         string         `json:"owner,omitempty"`
	Flow          string         `json:"flow"`
	Step          int            `json:"step"`
	Theater       *Theater       `json:"theater,omitempty"`
	Date          string         `json:"date,omitempty"`
	Movie         *Movie         `json:"movie,omitempty"`
	Time          string         `json:"time,omitempty"`
	SelectedSeats []string       `json:"selected_seats"`
	Concessions   map[string]int `json:"concessions"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	BookedSeats   []string       `json:"booked_seats"`
	SnapshotKey   string         `json:"snapshot_key,omitempty"`
	BookingID     string         `json:"booking_id,omitempty"`
	Complete      bool           `json:"complete"`
	Message       string         `json:"message,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
