// Package pricing computes the price breakdown of a booking draft.
package pricing

import "github.com/iliyamo/cinema-booking-wizard/internal/model"

// CalculateTotal returns the ticket subtotal (seatCount x ticketPrice), the
// concession subtotal over the keys known to prices, and their sum.
// Quantities below zero count as zero.
func CalculateTotal(seatCount int, ticketPrice int64, concessions map[string]int, prices map[string]int64) model.Totals {
	if seatCount < 0 {
		seatCount = 0
	}
	t := model.Totals{TicketTotal: int64(seatCount) * ticketPrice}
	for key, price := range prices {
		qty := concessions[key]
		if qty <= 0 {
			continue
		}
		t.ConcessionsTotal += int64(qty) * price
	}
	t.Total = t.TicketTotal + t.ConcessionsTotal
	return t
}
