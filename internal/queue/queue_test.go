package queue

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingKey(t *testing.T) {
	ev := BookingEvent{BookingID: "KKT0123456789AB"}
	assert.Equal(t, RoutingSubmitted, ev.RoutingKey())

	ev.FailedSeats = []string{"A2"}
	assert.Equal(t, RoutingPartialFailure, ev.RoutingKey())
}

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	ev := BookingEvent{
		BookingID:  "KKT0123456789AB",
		UserPhone:  "0900000000",
		MovieID:    42,
		MovieTitle: "Dune",
		Address:    "KKT Cinema - District 1",
		ShowDate:   "Mon 1/6",
		ShowTime:   "12:30",
		Seats:      []string{"A1", "A2"},
		TotalPrice: 320000,
		Outcome:    "completed",
		OccurredAt: "2025-01-06T10:00:00Z",
	}
	require.NoError(t, WriteLine(&buf, ev))
	line := buf.String()
	assert.Contains(t, line, "booking_id=KKT0123456789AB")
	assert.Contains(t, line, "seats=[A1,A2]")
	assert.NotContains(t, line, "failed=")

	buf.Reset()
	ev.Outcome = "partial"
	ev.FailedSeats = []string{"A2"}
	ev.Compensated = true
	require.NoError(t, WriteLine(&buf, ev))
	assert.Contains(t, buf.String(), "failed=[A2] | compensated=true")
}

func TestHandleAppendsToLogFile(t *testing.T) {
	dir := t.TempDir()
	c := &Consumer{logDir: dir}
	require.NoError(t, c.handle([]byte(`{"booking_id":"KKT1","outcome":"completed","seats":["B3"]}`)))
	require.NoError(t, c.handle([]byte(`{"booking_id":"KKT2","outcome":"completed","seats":["B4"]}`)))
	assert.Error(t, c.handle([]byte(`not json`)))
}
