package model

// Seat is one cell of the auditorium grid.  ID is the row letter followed
// by the seat number ("A1".."H10").
type Seat struct {
	ID          string `json:"id"`
	Row         string `json:"row"`
	Number      int    `json:"number"`
	IsAvailable bool   `json:"is_available"`
	IsSelected  bool   `json:"is_selected"`
}
