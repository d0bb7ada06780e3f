// Package idgen issues booking and ticket identifiers.
package idgen

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Prefix starts every booking id.
const Prefix = "KKT"

// Generator issues booking ids.
type Generator interface {
	BookingID() string
}

// UUID generates "KKT" followed by 12 upper-case hex digits taken from a
// random v4 UUID (48 random bits), so ids need no collision check.
type UUID struct{}

func (UUID) BookingID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return Prefix + strings.ToUpper(hex[:12])
}

// TicketID derives the id of the ticket for seatID within a booking.
func TicketID(bookingID, seatID string) string {
	return bookingID + "-" + seatID
}

// Sequence hands out a fixed list of ids in order and then repeats the
// last one.  Used where ids must be predictable.
type Sequence struct {
	mu  sync.Mutex
	ids []string
	n   int
}

func NewSequence(ids ...string) *Sequence {
	return &Sequence{ids: ids}
}

func (s *Sequence) BookingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ids) == 0 {
		return Prefix + "000000000000"
	}
	i := s.n
	if i >= len(s.ids) {
		i = len(s.ids) - 1
	}
	s.n++
	return s.ids[i]
}
