package wizard

import (
	"github.com/iliyamo/cinema-booking-wizard/internal/booking"
	"github.com/iliyamo/cinema-booking-wizard/internal/catalog"
	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

// Summary is the read model of a wizard for display.
type Summary struct {
	Flow          string           `json:"flow"`
	Step          int              `json:"step"`
	StepKind      StepKind         `json:"step_kind"`
	Steps         []StepKind       `json:"steps"`
	Theater       *model.Theater   `json:"theater,omitempty"`
	Date          string           `json:"date,omitempty"`
	Movie         *model.Movie     `json:"movie,omitempty"`
	Time          string           `json:"time,omitempty"`
	Seats         []string         `json:"seats"`
	Concessions   []model.FoodItem `json:"concessions"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Totals        model.Totals     `json:"totals"`
	BookingID     string           `json:"booking_id,omitempty"`
	Complete      bool             `json:"complete"`
	Message       string           `json:"message,omitempty"`
}

func (w *Wizard) Summary() Summary {
	return Summary{
		Flow:          w.flow.Name,
		Step:          w.d.Step,
		StepKind:      w.Current(),
		Steps:         w.flow.Steps,
		Theater:       w.d.Theater,
		Date:          w.d.Date,
		Movie:         w.d.Movie,
		Time:          w.d.Time,
		Seats:         append([]string{}, w.d.SelectedSeats...),
		Concessions:   booking.BuildFoodItems(w.d.Concessions, catalog.Concessions()),
		PaymentMethod: w.d.PaymentMethod,
		Totals:        w.Totals(),
		BookingID:     w.d.BookingID,
		Complete:      w.d.Complete,
		Message:       w.d.Message,
	}
}
