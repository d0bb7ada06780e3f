package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSeatsEmptyBookedSet(t *testing.T) {
	seats := GenerateSeats(nil)

	require.Len(t, seats, 80)
	assert.Equal(t, "A1", seats[0].ID)
	assert.Equal(t, "A10", seats[9].ID)
	assert.Equal(t, "B1", seats[10].ID)
	assert.Equal(t, "H10", seats[79].ID)
	seen := map[string]bool{}
	for _, s := range seats {
		assert.True(t, s.IsAvailable, s.ID)
		assert.False(t, seen[s.ID], "duplicate %s", s.ID)
		seen[s.ID] = true
		assert.GreaterOrEqual(t, s.Number, 1)
		assert.LessOrEqual(t, s.Number, 10)
	}
}

func TestGenerateSeatsMarksExactlyBookedSeats(t *testing.T) {
	booked := BookedSet([]string{"A1", "C7", "H10", "Z9", "A11", "", "a1"})

	seats := GenerateSeats(booked)

	unavailable := []string{}
	for _, s := range seats {
		if !s.IsAvailable {
			unavailable = append(unavailable, s.ID)
		}
	}
	assert.Equal(t, []string{"A1", "C7", "H10"}, unavailable)
}

func TestIsValidSeatID(t *testing.T) {
	for _, id := range []string{"A1", "A10", "H5"} {
		assert.True(t, IsValidSeatID(id), id)
	}
	for _, id := range []string{"", "A", "A0", "A11", "I1", "a1", "A01", "AA1"} {
		assert.False(t, IsValidSeatID(id), id)
	}
}

func TestSortSeatIDs(t *testing.T) {
	got := SortSeatIDs([]string{"B5", "A10", "A2", "bogus", "A2", "H1"})

	assert.Equal(t, []string{"A2", "A10", "B5", "H1"}, got)
}

func TestView(t *testing.T) {
	seats := View(BookedSet([]string{"A1"}), []string{"A3"})

	assert.False(t, seats[0].IsAvailable)
	assert.True(t, seats[2].IsSelected)
	assert.False(t, seats[1].IsSelected)
}
