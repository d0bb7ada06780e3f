package wizard

// StepKind identifies what a wizard step collects.
type StepKind string

const (
	StepTheaterDate StepKind = "theater_date"
	StepTheater     StepKind = "theater"
	StepDate        StepKind = "date"
	StepMovie       StepKind = "movie"
	StepShowtime    StepKind = "showtime"
	StepSeats       StepKind = "seats"
	StepConcessions StepKind = "concessions"
	StepPayment     StepKind = "payment"
)

// Flow is an ordered list of steps sharing one transition discipline.
type Flow struct {
	Name  string
	Steps []StepKind
}

var (
	// MovieFirstFlow starts from a preselected movie.
	MovieFirstFlow = Flow{
		Name:  "movie_first",
		Steps: []StepKind{StepTheaterDate, StepShowtime, StepSeats, StepConcessions, StepPayment},
	}
	// TheaterFirstFlow picks the theater first and the movie later.
	TheaterFirstFlow = Flow{
		Name:  "theater_first",
		Steps: []StepKind{StepTheater, StepDate, StepMovie, StepShowtime, StepSeats, StepConcessions},
	}
)

var flows = map[string]Flow{
	MovieFirstFlow.Name:   MovieFirstFlow,
	TheaterFirstFlow.Name: TheaterFirstFlow,
}

// FlowByName looks up a shipped flow.
func FlowByName(name string) (Flow, bool) {
	f, ok := flows[name]
	return f, ok
}

// Len is the number of steps.
func (f Flow) Len() int { return len(f.Steps) }

// At returns the kind of the 1-based step.
func (f Flow) At(step int) StepKind {
	if step < 1 || step > len(f.Steps) {
		return ""
	}
	return f.Steps[step-1]
}

// Has reports whether the flow contains kind.
func (f Flow) Has(kind StepKind) bool {
	for _, k := range f.Steps {
		if k == kind {
			return true
		}
	}
	return false
}
