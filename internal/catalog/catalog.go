// Package catalog holds the fixed data the booking wizard offers: theaters,
// showtimes, the rolling date window, the concession menu and the accepted
// payment methods.
package catalog

import (
	"fmt"
	"time"

	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

// DefaultTicketPrice is used whenever the backend has no price for a movie
// or the price lookup fails.
const DefaultTicketPrice int64 = 90000

// DefaultWindowDays is the length of the date window offered to customers.
const DefaultWindowDays = 7

var theaters = []model.Theater{
	{ID: 1, Name: "KKT Cinema - District 1", Address: "123 Nguyen Hue, District 1, HCMC"},
	{ID: 2, Name: "KKT Cinema - District 7", Address: "456 Nguyen Thi Thap, District 7, HCMC"},
	{ID: 3, Name: "KKT Cinema - Thu Duc", Address: "789 Vo Van Ngan, Thu Duc City, HCMC"},
}

var showtimes = []model.Showtime{
	{ID: 1, Time: "10:00"},
	{ID: 2, Time: "12:30"},
	{ID: 3, Time: "15:00"},
	{ID: 4, Time: "17:30"},
	{ID: 5, Time: "20:00"},
	{ID: 6, Time: "22:30"},
}

// Theaters returns the theaters in display order.  The slice is a copy.
func Theaters() []model.Theater {
	out := make([]model.Theater, len(theaters))
	copy(out, theaters)
	return out
}

// Showtimes returns the daily showtimes in display order.  The slice is a copy.
func Showtimes() []model.Showtime {
	out := make([]model.Showtime, len(showtimes))
	copy(out, showtimes)
	return out
}

// TheaterByID looks a theater up by id.
func TheaterByID(id int) (model.Theater, bool) {
	for _, t := range theaters {
		if t.ID == id {
			return t, true
		}
	}
	return model.Theater{}, false
}

// IsShowtime reports whether t is one of the offered showtimes.
func IsShowtime(t string) bool {
	for _, s := range showtimes {
		if s.Time == t {
			return true
		}
	}
	return false
}

// BuildDateWindow returns days entries starting at today.  A non-positive
// days falls back to DefaultWindowDays.  Labels are short weekday plus
// day/month, e.g. "Mon 1/6".
func BuildDateWindow(today time.Time, days int) []model.DateOption {
	if days <= 0 {
		days = DefaultWindowDays
	}
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	out := make([]model.DateOption, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		out = append(out, model.DateOption{
			ID:       i + 1,
			Label:    DateLabel(d),
			FullDate: d,
		})
	}
	return out
}

// DateLabel formats a day the way the date window labels it.
func DateLabel(d time.Time) string {
	return fmt.Sprintf("%s %d/%d", d.Format("Mon"), d.Day(), int(d.Month()))
}

// IsInWindow reports whether label is one of the window's labels.
func IsInWindow(label string, window []model.DateOption) bool {
	for _, d := range window {
		if d.Label == label {
			return true
		}
	}
	return false
}
