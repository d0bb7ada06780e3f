package model

// Movie is a catalog movie as the wizard needs it.  Metadata comes from
// the external movie API and TicketPrice from the backend price endpoint
// (or the default price when that lookup fails).
type Movie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
	TicketPrice int64  `json:"ticket_price"`
}
