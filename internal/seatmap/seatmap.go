// Package seatmap builds the fixed 8x10 auditorium grid and reconciles it
// against the set of seats the backend reports as already booked.
package seatmap

import (
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

// Rows are the row labels front to back.
var Rows = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// SeatsPerRow is the number of seats in every row.
const SeatsPerRow = 10

// Capacity is the total number of seats in the grid.
const Capacity = 8 * SeatsPerRow

// GenerateSeats returns the grid in row-major order (A1..A10, B1..B10, ...).
// A seat is available unless its id is in booked.  Ids in booked that do
// not name a grid seat are ignored.
func GenerateSeats(booked map[string]struct{}) []model.Seat {
	seats := make([]model.Seat, 0, Capacity)
	for _, row := range Rows {
		for n := 1; n <= SeatsPerRow; n++ {
			id := row + strconv.Itoa(n)
			_, taken := booked[id]
			seats = append(seats, model.Seat{
				ID:          id,
				Row:         row,
				Number:      n,
				IsAvailable: !taken,
			})
		}
	}
	return seats
}

// BookedSet turns a list of seat ids into a lookup set.
func BookedSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// parse splits a seat id into row index and seat number.
func parse(id string) (int, int, bool) {
	if len(id) < 2 {
		return 0, 0, false
	}
	row := -1
	for i, r := range Rows {
		if r == id[:1] {
			row = i
			break
		}
	}
	if row < 0 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil || n < 1 || n > SeatsPerRow || strconv.Itoa(n) != id[1:] {
		return 0, 0, false
	}
	return row, n, true
}

// IsValidSeatID reports whether id names a seat of the grid.
func IsValidSeatID(id string) bool {
	_, _, ok := parse(id)
	return ok
}

// SortSeatIDs returns the valid, unique ids of ids ordered by row and then
// by seat number, so "A2" comes before "A10".
func SortSeatIDs(ids []string) []string {
	out := lo.Uniq(lo.Filter(ids, func(id string, _ int) bool { return IsValidSeatID(id) }))
	sort.Slice(out, func(i, j int) bool {
		ri, ni, _ := parse(out[i])
		rj, nj, _ := parse(out[j])
		if ri != rj {
			return ri < rj
		}
		return ni < nj
	})
	return out
}

// View marks the selected seats on a generated grid.
func View(booked map[string]struct{}, selected []string) []model.Seat {
	seats := GenerateSeats(booked)
	sel := BookedSet(selected)
	for i := range seats {
		_, seats[i].IsSelected = sel[seats[i].ID]
	}
	return seats
}
