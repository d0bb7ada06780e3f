package model

import "time"

// Theater is one of the fixed venues a booking can be made at.  The
// booking backend identifies a theater by its Address string, so the
// address must stay stable across releases.
//
// Fields:
//
//	ID      - numeric identifier used by the wizard API.
//	Name    - display name shown to customers.
//	Address - street address; sent to the backend as the venue key.
type Theater struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Showtime is a fixed time-of-day slot (HH:MM) offered every day.
type Showtime struct {
	ID   int    `json:"id"`
	Time string `json:"time"`
}

// DateOption is one entry of the rolling booking window.  Label is what
// the customer picks and what is sent to the backend; FullDate is the
// calendar day it stands for.
type DateOption struct {
	ID       int       `json:"id"`
	Label    string    `json:"label"`
	FullDate time.Time `json:"full_date"`
}
