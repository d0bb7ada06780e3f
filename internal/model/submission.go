package model

import "time"

// SubmissionRecord is one run of the submission pipeline as kept in the
// submission journal.  Partial runs are the ones operators reconcile.
//
// Fields:
//
//	BookingID   - id generated for the run.
//	UserPhone   - customer the booking was made for.
//	MovieID     - booked movie.
//	Address     - theater the booking is for.
//	ShowDate    - date label of the screening.
//	ShowTime    - showtime of the screening.
//	Seats       - seats requested, display ordered.
//	TotalPrice  - grand total sent to the backend.
//	Outcome     - completed, rejected, partial or failed.
//	Stage       - stage the run stopped at (empty when completed).
//	FailedSeats - seats whose ticket could not be created.
//	Compensated - true when a partial booking was cancelled again.
//	Message     - user facing message of the run.
//	CreatedAt   - when the run finished.
type SubmissionRecord struct {
	BookingID   string
	UserPhone   string
	MovieID     int64
	Address     string
	ShowDate    string
	ShowTime    string
	Seats       []string
	TotalPrice  int64
	Outcome     string
	Stage       string
	FailedSeats []string
	Compensated bool
	Message     string
	CreatedAt   time.Time
}
